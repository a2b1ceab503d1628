package routedoc

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// SpecHandler serves spec as JSON. The document is encoded once; a nil
// document or an encoding failure is served as a 500 on every request.
func SpecHandler(spec *openapi3.T) http.Handler {
	if spec == nil {
		return staticHandler("", nil, errNilDocument)
	}
	body, err := json.Marshal(spec)
	return staticHandler("application/json", body, err)
}

// SpecYAMLHandler serves spec as YAML.
func SpecYAMLHandler(spec *openapi3.T) http.Handler {
	if spec == nil {
		return staticHandler("", nil, errNilDocument)
	}
	body, err := MarshalYAML(spec)
	return staticHandler("application/yaml", body, err)
}

// MarshalYAML encodes spec as YAML.
func MarshalYAML(spec *openapi3.T) ([]byte, error) {
	return yaml.Marshal(spec)
}

var errNilDocument = errors.New("no document")

func staticHandler(contentType string, body []byte, err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, "cannot encode OpenAPI document: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	})
}

// Serve registers the JSON document at the settings' JSON path on mux.
func Serve(mux *http.ServeMux, spec *openapi3.T, settings *Settings) {
	if settings == nil {
		settings = NewSettings()
	}
	settings = settings.withDefaults()
	mux.Handle(settings.JSONPath, SpecHandler(spec))
}
