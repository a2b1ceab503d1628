package routedoc

import (
	"context"
	"net/http"
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
)

// Capabilities describe a type from outside of it, for types whose methods
// cannot be added (standard library or third party types). Nil fields fall
// through to the documenter interfaces and then to the defaults.
type Capabilities struct {
	// Schema replaces the derived schema wherever the type appears.
	Schema *openapi3.Schema

	PathParameter      func(g *Generator, name string) (*openapi3.Parameter, error)
	PathMultiParameter func(g *Generator, name string) (*openapi3.Parameter, error)
	FormParameter      func(g *Generator, name string, required bool) (*openapi3.Parameter, error)
	FormParameters     func(g *Generator, name string, required bool) ([]*openapi3.Parameter, error)
	RequestBody        func(g *Generator) (*openapi3.RequestBody, error)
	RequestInput       func(g *Generator, name string, required bool) (RequestInput, error)
	Responses          func(g *Generator) (*openapi3.Responses, error)
}

// TypeRegistry maps Go types to Capabilities.
type TypeRegistry struct {
	types map[reflect.Type]Capabilities
}

// NewTypeRegistry returns a registry that already knows the request plumbing
// types of net/http and context, which document nothing.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{types: make(map[reflect.Type]Capabilities)}
	none := Capabilities{
		RequestInput: func(*Generator, string, bool) (RequestInput, error) { return NoInput(), nil },
	}
	Register[context.Context](r, none)
	Register[*http.Request](r, none)
	Register[http.ResponseWriter](r, none)
	Register[http.Header](r, none)
	return r
}

// Register sets the capabilities for t, replacing any earlier entry.
func (r *TypeRegistry) Register(t reflect.Type, c Capabilities) {
	r.types[t] = c
}

// Register sets the capabilities for T.
func Register[T any](r *TypeRegistry, c Capabilities) {
	r.Register(reflect.TypeFor[T](), c)
}

// Lookup returns the capabilities registered for t.
func (r *TypeRegistry) Lookup(t reflect.Type) (Capabilities, bool) {
	if r == nil || t == nil {
		return Capabilities{}, false
	}
	c, ok := r.types[t]
	return c, ok
}
