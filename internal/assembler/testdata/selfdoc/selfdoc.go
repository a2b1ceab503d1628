// Package selfdoc has a handler whose result documents itself.
package selfdoc

import (
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Zachacious/go-routedoc/routedoc"
)

type Report struct {
	Total int `json:"total"`
}

func (Report) Responses(g *routedoc.Generator) (*openapi3.Responses, error) {
	return g.ResponsesFor(reflect.TypeFor[string]())
}

//routedoc:get("/report")
func GetReport() Report {
	return Report{}
}

//routedoc:post("/upload", data = "<body>")
func Upload(body []byte, accept routedoc.Accept) routedoc.Accepted[struct{}] {
	return routedoc.Accepted[struct{}]{}
}
