// Package route parses route directives into structured route descriptors.
//
// A directive names an HTTP method and carries the route template plus
// optional named arguments:
//
//	get("/user/<id>?<q>", format = "json", data = "<body>")
//	protect_post("/session", data = "<login>")
//	route(PATCH, path = "/user/<id>")
//
// Two parsers share the Parser interface. Structured is authoritative.
// Fallback splits the argument string by hand and exists for introspection
// when the structured tokenizer cannot be used; both agree on every input the
// fallback understands.
package route

import (
	"strconv"
	"strings"
)

// Route is the descriptor of one handler's route.
type Route struct {
	Method    Method
	Template  *Template
	MediaType *MediaType
	// DataParam names the handler argument bound to the request body.
	DataParam string
}

// New builds a route from a method and a template string.
func New(method Method, template string) (*Route, error) {
	t, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	return &Route{Method: method, Template: t}, nil
}

func (r *Route) PathParams() []string { return r.Template.PathParams() }
func (r *Route) PathMultiParam() (string, bool) { return r.Template.PathMultiParam() }
func (r *Route) QueryParams() []string { return r.Template.QueryParams() }
func (r *Route) QueryMultiParams() []string { return r.Template.QueryMultiParams() }
func (r *Route) OpenAPIPath() string { return r.Template.OpenAPIPath() }

// Attribute renders the route back into directive form.
func (r *Route) Attribute() Attribute {
	args := []string{strconv.Quote(r.Template.String())}
	if r.MediaType != nil {
		args = append(args, "format = "+strconv.Quote(r.MediaType.String()))
	}
	if r.DataParam != "" {
		args = append(args, "data = "+strconv.Quote("<"+r.DataParam+">"))
	}
	return Attribute{Name: r.Method.Keyword(), Args: strings.Join(args, ", ")}
}

func (r *Route) String() string {
	return r.Attribute().String()
}
