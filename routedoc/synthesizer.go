package routedoc

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Zachacious/go-routedoc/route"
)

// Handler is everything known about one annotated handler.
type Handler struct {
	// Name is the qualified handler name, such as "users.GetUser".
	Name  string
	Route *route.Route

	// OperationID defaults to Name. Unless ExplicitOperationID is set it is
	// flattened when the document is finished.
	OperationID         string
	ExplicitOperationID bool

	Title       string
	Description string
	Tags        []string
	Deprecated  bool
	// Skip leaves the handler out of the document.
	Skip bool
	// Ignore lists arguments that are not documented.
	Ignore []string

	Args      []Arg
	Responses ResponsesFunc
}

// AddHandler documents h as one operation. Any failure is returned as a
// *HandlerError.
func (g *Generator) AddHandler(h Handler) error {
	if h.Skip {
		g.logger.Debug("handler skipped", "handler", h.Name)
		return nil
	}
	if g.finished {
		return ErrGeneratorFinished
	}
	op, err := g.operation(h)
	if err != nil {
		return &HandlerError{Handler: h.Name, Err: err}
	}
	err = g.AddOperation(OperationInfo{
		Path:                h.Route.OpenAPIPath(),
		Method:              h.Route.Method,
		Operation:           op,
		Source:              h.Name,
		ExplicitOperationID: h.ExplicitOperationID,
	})
	if err != nil {
		return &HandlerError{Handler: h.Name, Err: err}
	}
	return nil
}

func (g *Generator) operation(h Handler) (*openapi3.Operation, error) {
	if h.Route == nil || h.Route.Template == nil {
		return nil, errors.New("handler has no route")
	}

	args := make(map[string]Arg, len(h.Args))
	for _, a := range h.Args {
		args[a.Name] = a
	}
	ignored := func(name string) bool { return slices.Contains(h.Ignore, name) }
	bound := make(map[string]bool)

	op := openapi3.NewOperation()
	op.OperationID = h.OperationID
	if op.OperationID == "" {
		op.OperationID = h.Name
	}
	op.Summary = h.Title
	op.Description = h.Description
	op.Deprecated = h.Deprecated
	if len(h.Tags) > 0 {
		op.Tags = slices.Clone(h.Tags)
	}

	for _, seg := range h.Route.Template.Segments {
		if !seg.Dynamic {
			continue
		}
		bound[seg.Value] = true
		if ignored(seg.Value) {
			continue
		}
		a, ok := args[seg.Value]
		if !ok {
			return nil, fmt.Errorf("path parameter <%s> has no matching handler argument", seg.Value)
		}
		var p *openapi3.Parameter
		var err error
		if seg.Multi {
			p, err = g.PathMultiParameter(a)
		} else {
			p, err = g.PathParameter(a)
		}
		if err != nil {
			return nil, fmt.Errorf("path parameter %s: %w", seg.Value, err)
		}
		addParameter(op, p)
	}

	for _, seg := range h.Route.Template.Query {
		if !seg.Dynamic {
			continue
		}
		bound[seg.Value] = true
		if ignored(seg.Value) {
			continue
		}
		a, ok := args[seg.Value]
		if !ok {
			return nil, fmt.Errorf("query parameter <%s> has no matching handler argument", seg.Value)
		}
		params, err := g.FormParameters(a, !a.IsOptional())
		if err != nil {
			return nil, fmt.Errorf("query parameter %s: %w", seg.Value, err)
		}
		for _, p := range params {
			addParameter(op, p)
		}
	}

	if data := h.Route.DataParam; data != "" {
		bound[data] = true
		if !ignored(data) {
			a, ok := args[data]
			if !ok {
				return nil, fmt.Errorf("data parameter <%s> has no matching handler argument", data)
			}
			body, err := g.RequestBody(a)
			if err != nil {
				return nil, fmt.Errorf("request body %s: %w", data, err)
			}
			if body != nil {
				if h.Route.MediaType != nil {
					rekeyContent(body, h.Route.MediaType.String())
				}
				op.RequestBody = &openapi3.RequestBodyRef{Value: body}
			}
		}
	}

	for _, a := range h.Args {
		if bound[a.Name] || ignored(a.Name) {
			continue
		}
		in, err := g.RequestInput(a)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", a.Name, err)
		}
		switch in.Kind {
		case InputParameter:
			if in.Parameter != nil {
				addParameter(op, in.Parameter)
			}
		case InputSecurity:
			if in.Scheme != nil {
				g.AddSecurityScheme(in.SchemeName, in.Scheme)
			}
			if in.Requirement != nil {
				if op.Security == nil {
					op.Security = openapi3.NewSecurityRequirements()
				}
				op.Security.With(in.Requirement)
			}
		case InputServer:
			if in.Server != nil {
				if op.Servers == nil {
					op.Servers = &openapi3.Servers{}
				}
				*op.Servers = append(*op.Servers, in.Server)
			}
		}
	}

	if h.Responses == nil {
		op.Responses = statusOnly(http.StatusOK)
	} else {
		responses, err := h.Responses(g)
		if err != nil {
			return nil, fmt.Errorf("responses: %w", err)
		}
		if responses == nil || responses.Len() == 0 {
			responses = statusOnly(http.StatusOK)
		}
		op.Responses = responses
	}
	return op, nil
}

// addParameter appends p unless a parameter with the same location and name
// is already present.
func addParameter(op *openapi3.Operation, p *openapi3.Parameter) {
	if p == nil || op.Parameters.GetByInAndName(p.In, p.Name) != nil {
		return
	}
	op.AddParameter(p)
}

// rekeyContent moves the body's first media type under contentType.
func rekeyContent(body *openapi3.RequestBody, contentType string) {
	if _, ok := body.Content[contentType]; ok && len(body.Content) == 1 {
		return
	}
	names := make([]string, 0, len(body.Content))
	for name := range body.Content {
		names = append(names, name)
	}
	sort.Strings(names)
	media := openapi3.NewMediaType()
	if len(names) > 0 {
		media = body.Content[names[0]]
	}
	body.Content = openapi3.Content{contentType: media}
}
