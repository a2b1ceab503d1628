package routedoc

import (
	"net/http"
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
)

// JSON is a value read from or written as an application/json body.
type JSON[T any] struct{ Value T }

func (JSON[T]) RequestBody(g *Generator) (*openapi3.RequestBody, error) {
	schema, err := JSONSchema[T](g)
	if err != nil {
		return nil, err
	}
	return openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithJSONSchemaRef(schema)), nil
}

func (JSON[T]) Responses(g *Generator) (*openapi3.Responses, error) {
	schema, err := JSONSchema[T](g)
	if err != nil {
		return nil, err
	}
	return g.contentResponses(http.StatusOK, "application/json", schema), nil
}

// Form is a value read from a multipart/form-data body, or from the query
// string when bound to a query token.
type Form[T any] struct{ Value T }

func (Form[T]) RequestBody(g *Generator) (*openapi3.RequestBody, error) {
	schema, err := JSONSchemaNoRef[T](g)
	if err != nil {
		return nil, err
	}
	return openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithSchemaRef(schema, []string{"multipart/form-data"})), nil
}

func (Form[T]) FormParameters(g *Generator, name string, required bool) ([]*openapi3.Parameter, error) {
	schema, err := JSONSchemaNoRef[T](g)
	if err != nil {
		return nil, err
	}
	return g.nestedFormParameters(name, g.Resolve(schema), required), nil
}

// NoContent is an empty 204 response.
type NoContent struct{}

func (NoContent) Responses(*Generator) (*openapi3.Responses, error) {
	return statusOnly(http.StatusNoContent), nil
}

// Created is a 201 response carrying T.
type Created[T any] struct{ Value T }

func (Created[T]) Responses(g *Generator) (*openapi3.Responses, error) {
	return withStatus[T](g, http.StatusCreated)
}

// Accepted is a 202 response carrying T.
type Accepted[T any] struct{ Value T }

func (Accepted[T]) Responses(g *Generator) (*openapi3.Responses, error) {
	return withStatus[T](g, http.StatusAccepted)
}

// BadRequest is a 400 response carrying T.
type BadRequest[T any] struct{ Value T }

func (BadRequest[T]) Responses(g *Generator) (*openapi3.Responses, error) {
	return withStatus[T](g, http.StatusBadRequest)
}

// Unauthorized is a 401 response carrying T.
type Unauthorized[T any] struct{ Value T }

func (Unauthorized[T]) Responses(g *Generator) (*openapi3.Responses, error) {
	return withStatus[T](g, http.StatusUnauthorized)
}

// Forbidden is a 403 response carrying T.
type Forbidden[T any] struct{ Value T }

func (Forbidden[T]) Responses(g *Generator) (*openapi3.Responses, error) {
	return withStatus[T](g, http.StatusForbidden)
}

// NotFound is a 404 response carrying T.
type NotFound[T any] struct{ Value T }

func (NotFound[T]) Responses(g *Generator) (*openapi3.Responses, error) {
	return withStatus[T](g, http.StatusNotFound)
}

// Conflict is a 409 response carrying T.
type Conflict[T any] struct{ Value T }

func (Conflict[T]) Responses(g *Generator) (*openapi3.Responses, error) {
	return withStatus[T](g, http.StatusConflict)
}

// withStatus documents T under status. An empty struct documents no content.
func withStatus[T any](g *Generator, status int) (*openapi3.Responses, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Struct && t.NumField() == 0 {
		return statusOnly(status), nil
	}
	r, err := g.ResponsesFor(t)
	if err != nil {
		return nil, err
	}
	SetStatusCode(r, status)
	return r, nil
}

// Redirect is a response pointing the client elsewhere.
type Redirect struct {
	Status   int
	Location string
}

var redirectStatuses = []int{http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect}

func (Redirect) Responses(*Generator) (*openapi3.Responses, error) {
	r := openapi3.NewResponsesWithCapacity(len(redirectStatuses))
	for _, status := range redirectStatuses {
		resp := EnsureStatusCodeExists(r, status)
		resp.Headers = openapi3.Headers{
			"Location": &openapi3.HeaderRef{Value: &openapi3.Header{Parameter: openapi3.Parameter{
				Description: "The redirect target.",
				Schema:      openapi3.NewStringSchema().WithFormat("uri-reference").NewRef(),
			}}},
		}
	}
	return r, nil
}

// RawHTML is a text/html response.
type RawHTML string

func (RawHTML) Responses(g *Generator) (*openapi3.Responses, error) {
	return rawResponses(g, "text/html")
}

// RawJSON is an application/json response that is already encoded.
type RawJSON string

func (RawJSON) Responses(g *Generator) (*openapi3.Responses, error) {
	return rawResponses(g, "application/json")
}

// RawXML is a text/xml response.
type RawXML string

func (RawXML) Responses(g *Generator) (*openapi3.Responses, error) {
	return rawResponses(g, "text/xml")
}

// RawText is a text/plain response.
type RawText string

func (RawText) Responses(g *Generator) (*openapi3.Responses, error) {
	return rawResponses(g, "text/plain")
}

func rawResponses(g *Generator, contentType string) (*openapi3.Responses, error) {
	r, err := g.ResponsesFor(reflect.TypeFor[string]())
	if err != nil {
		return nil, err
	}
	SetContentType(r, contentType)
	return r, nil
}

// TextStream is a streamed text/plain response.
type TextStream <-chan string

func (TextStream) Responses(g *Generator) (*openapi3.Responses, error) {
	return g.contentResponses(http.StatusOK, "text/plain", openapi3.NewStringSchema().NewRef()), nil
}

// EventStream is a server-sent events response.
type EventStream <-chan string

func (EventStream) Responses(g *Generator) (*openapi3.Responses, error) {
	return g.contentResponses(http.StatusOK, "text/event-stream", openapi3.NewStringSchema().NewRef()), nil
}

// ByteStream is a streamed application/octet-stream response.
type ByteStream <-chan []byte

func (ByteStream) Responses(g *Generator) (*openapi3.Responses, error) {
	return g.contentResponses(http.StatusOK, "application/octet-stream", openapi3.NewStringSchema().WithFormat("binary").NewRef()), nil
}

// Optional is a response that may be missing, documented as R plus 404.
type Optional[R any] struct {
	Value R
	Found bool
}

func (Optional[R]) Responses(g *Generator) (*openapi3.Responses, error) {
	r, err := g.ResponsesFor(reflect.TypeFor[R]())
	if err != nil {
		return nil, err
	}
	EnsureStatusCodeExists(r, http.StatusNotFound)
	return r, nil
}

// Accept is the request's Accept header.
type Accept string

func (Accept) RequestInput(_ *Generator, _ string, required bool) (RequestInput, error) {
	return ParameterInput(HeaderParameter("Accept", "The media types the client accepts.", required)), nil
}

// ContentType is the request's Content-Type header.
type ContentType string

func (ContentType) RequestInput(_ *Generator, _ string, required bool) (RequestInput, error) {
	return ParameterInput(HeaderParameter("Content-Type", "The media type of the request body.", required)), nil
}
