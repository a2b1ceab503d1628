package routedoc

import (
	"net/http"
	"reflect"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

// ResponsesFunc documents the responses of a handler.
type ResponsesFunc func(g *Generator) (*openapi3.Responses, error)

// ResponsesOf documents a handler returning T.
func ResponsesOf[T any]() ResponsesFunc {
	t := reflect.TypeFor[T]()
	return func(g *Generator) (*openapi3.Responses, error) {
		return g.ResponsesFor(t)
	}
}

// Results documents a handler with several results, typically a value and an
// error. A status documented by an earlier result wins; content types of the
// same status are combined.
func Results(fns ...ResponsesFunc) ResponsesFunc {
	return func(g *Generator) (*openapi3.Responses, error) {
		out := openapi3.NewResponsesWithCapacity(len(fns))
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			r, err := fn(g)
			if err != nil {
				return nil, err
			}
			out = ProduceAnyResponses(out, r)
		}
		if out.Len() == 0 {
			EnsureStatusCodeExists(out, http.StatusOK)
		}
		return out, nil
	}
}

var errorType = reflect.TypeFor[error]()

// isError reports whether t, or a pointer to t, implements error.
func isError(t reflect.Type) bool {
	if t.Implements(errorType) {
		return true
	}
	return t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(errorType)
}

// ResponsesFor documents a handler result of type t. A nil t stands for a
// handler without results.
func (g *Generator) ResponsesFor(t reflect.Type) (*openapi3.Responses, error) {
	if t == nil {
		return statusOnly(http.StatusOK), nil
	}
	if c, ok := g.settings.Types.Lookup(t); ok && c.Responses != nil {
		return c.Responses(g)
	}

	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base != t {
		if c, ok := g.settings.Types.Lookup(base); ok && c.Responses != nil {
			return c.Responses(g)
		}
	}
	if d, ok := implements[ResponseDocumenter](base); ok {
		return d.Responses(g)
	}
	if isError(t) || isError(base) {
		return statusOnly(http.StatusInternalServerError), nil
	}

	switch {
	case base.Kind() == reflect.String:
		return g.contentResponses(http.StatusOK, "text/plain", openapi3.NewStringSchema().NewRef()), nil
	case base.Kind() == reflect.Slice && base.Elem().Kind() == reflect.Uint8:
		return g.contentResponses(http.StatusOK, "application/octet-stream", openapi3.NewStringSchema().WithFormat("binary").NewRef()), nil
	}
	schema, err := g.SchemaFor(base)
	if err != nil {
		return nil, err
	}
	return g.contentResponses(http.StatusOK, "application/json", schema), nil
}

func (g *Generator) contentResponses(status int, contentType string, schema *openapi3.SchemaRef) *openapi3.Responses {
	r := openapi3.NewResponsesWithCapacity(1)
	AddSchemaResponse(r, status, contentType, schema)
	return r
}

func statusOnly(status int) *openapi3.Responses {
	r := openapi3.NewResponsesWithCapacity(1)
	EnsureStatusCodeExists(r, status)
	return r
}

func statusDescription(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Response"
}

// EnsureStatusCodeExists adds an empty response for status if there is none.
func EnsureStatusCodeExists(r *openapi3.Responses, status int) *openapi3.Response {
	key := strconv.Itoa(status)
	if ref := r.Value(key); ref != nil && ref.Value != nil {
		return ref.Value
	}
	resp := openapi3.NewResponse().WithDescription(statusDescription(status))
	r.Set(key, &openapi3.ResponseRef{Value: resp})
	return resp
}

// AddSchemaResponse documents content of the given type for status.
func AddSchemaResponse(r *openapi3.Responses, status int, contentType string, schema *openapi3.SchemaRef) {
	AddContentResponse(r, status, contentType, openapi3.NewMediaType().WithSchemaRef(schema))
}

// AddContentResponse adds a media type to the response for status. An
// existing media type with the same name is kept.
func AddContentResponse(r *openapi3.Responses, status int, contentType string, media *openapi3.MediaType) {
	resp := EnsureStatusCodeExists(r, status)
	if resp.Content == nil {
		resp.Content = openapi3.NewContent()
	}
	if _, ok := resp.Content[contentType]; !ok {
		resp.Content[contentType] = media
	}
}

// SetStatusCode collapses every response into a single one for status.
func SetStatusCode(r *openapi3.Responses, status int) {
	var combined *openapi3.Response
	for _, key := range sortedKeys(r) {
		resp := r.Value(key).Value
		r.Delete(key)
		if resp == nil {
			continue
		}
		if combined == nil {
			combined = resp
			continue
		}
		combineResponse(combined, resp)
	}
	if combined == nil {
		combined = openapi3.NewResponse()
	}
	if combined.Description == nil || *combined.Description == "" || isStatusText(*combined.Description) {
		combined.WithDescription(statusDescription(status))
	}
	r.Set(strconv.Itoa(status), &openapi3.ResponseRef{Value: combined})
}

// SetContentType replaces the media types of every response with one media
// type of the given name. The first media type's schema is kept.
func SetContentType(r *openapi3.Responses, contentType string) {
	for _, ref := range r.Map() {
		resp := ref.Value
		if resp == nil {
			continue
		}
		var media *openapi3.MediaType
		for _, name := range sortedMediaTypes(resp.Content) {
			media = resp.Content[name]
			break
		}
		if media == nil {
			media = openapi3.NewMediaType()
		}
		resp.Content = openapi3.Content{contentType: media}
	}
}

// ChangeAllResponsesToDefault collapses every response into the default
// response.
func ChangeAllResponsesToDefault(r *openapi3.Responses) {
	var combined *openapi3.Response
	for _, key := range sortedKeys(r) {
		resp := r.Value(key).Value
		r.Delete(key)
		if resp == nil {
			continue
		}
		if combined == nil {
			combined = resp
			continue
		}
		combineResponse(combined, resp)
	}
	if combined == nil {
		combined = openapi3.NewResponse().WithDescription("Default response")
	}
	r.Set("default", &openapi3.ResponseRef{Value: combined})
}

// ProduceAnyResponses combines the responses of two alternatives: a status
// present in a wins, and the media types of shared statuses are united.
func ProduceAnyResponses(a, b *openapi3.Responses) *openapi3.Responses {
	if a == nil {
		a = openapi3.NewResponsesWithCapacity(0)
	}
	if b == nil {
		return a
	}
	for _, key := range sortedKeys(b) {
		ref := b.Value(key)
		existing := a.Value(key)
		if existing == nil || existing.Value == nil {
			a.Set(key, ref)
			continue
		}
		if ref.Value != nil {
			combineResponse(existing.Value, ref.Value)
		}
	}
	return a
}

// combineResponse adds the media types and headers of src that dst lacks.
func combineResponse(dst, src *openapi3.Response) {
	for name, media := range src.Content {
		if dst.Content == nil {
			dst.Content = openapi3.NewContent()
		}
		if _, ok := dst.Content[name]; !ok {
			dst.Content[name] = media
		}
	}
	for name, header := range src.Headers {
		if dst.Headers == nil {
			dst.Headers = make(openapi3.Headers)
		}
		if _, ok := dst.Headers[name]; !ok {
			dst.Headers[name] = header
		}
	}
}

func isStatusText(s string) bool {
	for code := 100; code < 600; code++ {
		if text := http.StatusText(code); text != "" && text == s {
			return true
		}
	}
	return false
}

func sortedKeys(r *openapi3.Responses) []string {
	m := r.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMediaTypes(c openapi3.Content) []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
