package routedoc

import (
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
)

// Documenter interfaces let a type describe its own contribution to an
// operation. They are looked up on the zero value and on a pointer to the zero
// value of the argument's type, after pointer indirection has been removed, so
// implementations must not depend on receiver state.

// ParamDocumenter describes a type bound to a single path segment.
type ParamDocumenter interface {
	PathParameter(g *Generator, name string) (*openapi3.Parameter, error)
}

// SegmentsDocumenter describes a type bound to a trailing <name..> segment.
type SegmentsDocumenter interface {
	PathMultiParameter(g *Generator, name string) (*openapi3.Parameter, error)
}

// FormFieldDocumenter describes a type bound to one query value.
type FormFieldDocumenter interface {
	FormParameter(g *Generator, name string, required bool) (*openapi3.Parameter, error)
}

// FormDocumenter describes a type that expands into several query values.
type FormDocumenter interface {
	FormParameters(g *Generator, name string, required bool) ([]*openapi3.Parameter, error)
}

// DataDocumenter describes a type bound to the request body.
type DataDocumenter interface {
	RequestBody(g *Generator) (*openapi3.RequestBody, error)
}

// RequestDocumenter describes any other handler argument, such as a guard
// that reads headers or authenticates the caller.
type RequestDocumenter interface {
	RequestInput(g *Generator, name string, required bool) (RequestInput, error)
}

// ResponseDocumenter describes the responses a handler result can produce.
type ResponseDocumenter interface {
	Responses(g *Generator) (*openapi3.Responses, error)
}

// InputKind tells what a RequestInput adds to an operation.
type InputKind int

const (
	InputNone InputKind = iota
	InputParameter
	InputSecurity
	InputServer
)

// RequestInput is what a request argument contributes to its operation.
type RequestInput struct {
	Kind      InputKind
	Parameter *openapi3.Parameter

	SchemeName  string
	Scheme      *openapi3.SecurityScheme
	Requirement openapi3.SecurityRequirement

	Server *openapi3.Server
}

// NoInput documents nothing.
func NoInput() RequestInput { return RequestInput{} }

// ParameterInput documents a header, cookie or query parameter.
func ParameterInput(p *openapi3.Parameter) RequestInput {
	return RequestInput{Kind: InputParameter, Parameter: p}
}

// SecurityInput registers scheme under name and requires it for the operation.
func SecurityInput(name string, scheme *openapi3.SecurityScheme, requirement openapi3.SecurityRequirement) RequestInput {
	return RequestInput{Kind: InputSecurity, SchemeName: name, Scheme: scheme, Requirement: requirement}
}

// ServerInput adds an operation level server.
func ServerInput(server *openapi3.Server) RequestInput {
	return RequestInput{Kind: InputServer, Server: server}
}

// HeaderParameter builds a string header parameter.
func HeaderParameter(name, description string, required bool) *openapi3.Parameter {
	p := openapi3.NewHeaderParameter(name).WithDescription(description).WithRequired(required)
	p.Schema = openapi3.NewStringSchema().NewRef()
	return p
}

// implements reports whether t, or a pointer to t, implements I. The returned
// value is a zero value of t or a pointer to a zero t.
func implements[I any](t reflect.Type) (I, bool) {
	var none I
	if t == nil || t.Kind() == reflect.Interface {
		return none, false
	}
	if i, ok := reflect.Zero(t).Interface().(I); ok {
		return i, true
	}
	if i, ok := reflect.New(t).Interface().(I); ok {
		return i, true
	}
	return none, false
}
