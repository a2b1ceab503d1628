// Package assembler builds a preview of a package's OpenAPI document straight
// from the analyzed model, without compiling or running the package. Types are
// described from go/types; the routedoc wrapper types and the request
// plumbing types of the standard library are documented by the same code the
// generated file runs.
package assembler

import (
	"context"
	"fmt"
	"go/types"
	"log/slog"
	"net/http"
	"reflect"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Zachacious/go-routedoc/internal/analyzer"
	"github.com/Zachacious/go-routedoc/internal/config"
	"github.com/Zachacious/go-routedoc/internal/model"
	"github.com/Zachacious/go-routedoc/routedoc"
)

const routedocPath = "github.com/Zachacious/go-routedoc/routedoc"

// knownTypes maps non-generic named types to their run time counterparts.
var knownTypes = map[string]reflect.Type{
	"context.Context":         reflect.TypeFor[context.Context](),
	"net/http.Request":        reflect.TypeFor[http.Request](),
	"net/http.ResponseWriter": reflect.TypeFor[http.ResponseWriter](),
	"net/http.Header":         reflect.TypeFor[http.Header](),

	routedocPath + ".NoContent":   reflect.TypeFor[routedoc.NoContent](),
	routedocPath + ".Redirect":    reflect.TypeFor[routedoc.Redirect](),
	routedocPath + ".RawHTML":     reflect.TypeFor[routedoc.RawHTML](),
	routedocPath + ".RawJSON":     reflect.TypeFor[routedoc.RawJSON](),
	routedocPath + ".RawXML":      reflect.TypeFor[routedoc.RawXML](),
	routedocPath + ".RawText":     reflect.TypeFor[routedoc.RawText](),
	routedocPath + ".TextStream":  reflect.TypeFor[routedoc.TextStream](),
	routedocPath + ".EventStream": reflect.TypeFor[routedoc.EventStream](),
	routedocPath + ".ByteStream":  reflect.TypeFor[routedoc.ByteStream](),
	routedocPath + ".Accept":      reflect.TypeFor[routedoc.Accept](),
	routedocPath + ".ContentType": reflect.TypeFor[routedoc.ContentType](),
}

// statusWrappers are the generic wrappers documenting their type argument
// under a fixed status.
var statusWrappers = map[string]int{
	"Created":      http.StatusCreated,
	"Accepted":     http.StatusAccepted,
	"BadRequest":   http.StatusBadRequest,
	"Unauthorized": http.StatusUnauthorized,
	"Forbidden":    http.StatusForbidden,
	"NotFound":     http.StatusNotFound,
	"Conflict":     http.StatusConflict,
}

// documenterMethods are the methods a type implements to document itself.
// The preview cannot call them.
var documenterMethods = []string{
	"PathParameter", "PathMultiParameter", "FormParameter", "FormParameters",
	"RequestBody", "RequestInput", "Responses",
}

var errorIface = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

type assembler struct {
	sg     *analyzer.SchemaGenerator
	logger *slog.Logger
	warned map[string]bool
}

// BuildSpec constructs the preview document of every handler in apiModel.
func BuildSpec(apiModel *model.APIModel, cfg *config.Config, logger *slog.Logger) (*openapi3.T, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	settings := routedoc.NewSettings()
	settings.JSONPath = cfg.JSONPath
	settings.Logger = logger
	g := routedoc.NewGenerator(settings)
	g.SetInfo(cfg.Info)
	schemes := cfg.Schemes()
	for _, name := range cfg.SchemeNames() {
		g.AddSecurityScheme(name, schemes[name].Value)
	}

	a := &assembler{
		sg:     analyzer.NewSchemaGenerator(),
		logger: logger,
		warned: make(map[string]bool),
	}
	for _, h := range apiModel.Handlers {
		if err := g.AddHandler(a.handler(h)); err != nil {
			return nil, fmt.Errorf("%s: %w", h.Pos, err)
		}
	}

	schemas := a.sg.Schemas()
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g.RegisterSchema(name, schemas[name].Value)
	}
	return g.IntoOpenAPI()
}

func (a *assembler) handler(h *model.Handler) routedoc.Handler {
	rh := routedoc.Handler{
		Name:                h.Name,
		Route:               h.Route,
		OperationID:         h.OpenAPI.OperationID,
		ExplicitOperationID: h.OpenAPI.OperationID != "",
		Title:               h.Doc.Title,
		Description:         h.Doc.Description,
		Tags:                h.OpenAPI.Tags,
		Deprecated:          h.OpenAPI.Deprecated,
		Skip:                h.OpenAPI.Skip,
		Ignore:              h.OpenAPI.Ignore,
	}
	if h.OpenAPI.Skip {
		return rh
	}

	params := make(map[string]bool)
	for _, name := range h.Route.PathParams() {
		params[name] = true
	}
	for _, name := range h.Route.QueryParams() {
		params[name] = true
	}
	for _, name := range h.Route.QueryMultiParams() {
		params[name] = true
	}
	for _, p := range h.Params {
		rh.Args = append(rh.Args, a.arg(p, params[p.Name]))
	}

	switch len(h.Results) {
	case 0:
	case 1:
		rh.Responses = a.responsesFunc(h.Results[0].Type)
	default:
		fns := make([]routedoc.ResponsesFunc, len(h.Results))
		for i, r := range h.Results {
			fns[i] = a.responsesFunc(r.Type)
		}
		rh.Responses = routedoc.Results(fns...)
	}
	return rh
}

// arg describes one parameter. Parameters bound to a path or query token get
// an inline schema; anything else is only built when asked for, so types such
// as database handles never reach the components.
func (a *assembler) arg(p model.Param, param bool) routedoc.Arg {
	if rt, ok := runtimeType(p.Type); ok {
		return routedoc.Arg{Name: p.Name, Type: rt}
	}
	base := deref(p.Type)
	a.warnDocumenter(base)

	caps := &routedoc.Capabilities{
		RequestBody: func(*routedoc.Generator) (*openapi3.RequestBody, error) {
			return a.requestBody(base), nil
		},
		RequestInput: func(*routedoc.Generator, string, bool) (routedoc.RequestInput, error) {
			return routedoc.NoInput(), nil
		},
	}
	if param {
		inner := base
		if name, arg, ok := generic(base); ok && (name == "JSON" || name == "Form") {
			inner = arg
		}
		caps.Schema = a.sg.InlineSchema(inner)
	}
	return routedoc.Arg{Name: p.Name, Static: caps, Optional: p.Optional()}
}

func (a *assembler) requestBody(t types.Type) *openapi3.RequestBody {
	contentType := "application/json"
	var schema *openapi3.SchemaRef
	switch name, arg, ok := generic(t); {
	case ok && name == "JSON":
		schema = a.sg.GenerateSchema(arg)
	case ok && name == "Form":
		contentType = "multipart/form-data"
		schema = a.sg.InlineSchema(arg).NewRef()
	case isString(t):
		contentType = "application/octet-stream"
		schema = openapi3.NewStringSchema().NewRef()
	case isBytes(t):
		contentType = "application/octet-stream"
		schema = openapi3.NewStringSchema().WithFormat("binary").NewRef()
	default:
		schema = a.sg.GenerateSchema(t)
	}
	return openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithSchemaRef(schema, []string{contentType}))
}

func (a *assembler) responsesFunc(t types.Type) routedoc.ResponsesFunc {
	return func(g *routedoc.Generator) (*openapi3.Responses, error) {
		return a.responses(g, t)
	}
}

func (a *assembler) responses(g *routedoc.Generator, t types.Type) (*openapi3.Responses, error) {
	if rt, ok := runtimeType(t); ok {
		return g.ResponsesFor(rt)
	}
	base := deref(t)
	a.warnDocumenter(base)
	if types.Implements(t, errorIface) || types.Implements(types.NewPointer(t), errorIface) {
		return g.ResponsesFor(reflect.TypeFor[error]())
	}
	if name, arg, ok := generic(base); ok {
		switch name {
		case "JSON":
			return contentResponses(http.StatusOK, "application/json", a.sg.GenerateSchema(arg)), nil
		case "Optional":
			r, err := a.responses(g, arg)
			if err != nil {
				return nil, err
			}
			routedoc.EnsureStatusCodeExists(r, http.StatusNotFound)
			return r, nil
		}
		if status, ok := statusWrappers[name]; ok {
			if isEmptyStruct(arg) {
				r := openapi3.NewResponsesWithCapacity(1)
				routedoc.EnsureStatusCodeExists(r, status)
				return r, nil
			}
			r, err := a.responses(g, arg)
			if err != nil {
				return nil, err
			}
			routedoc.SetStatusCode(r, status)
			return r, nil
		}
	}

	switch {
	case isString(base):
		return g.ResponsesFor(reflect.TypeFor[string]())
	case isBytes(base):
		return g.ResponsesFor(reflect.TypeFor[[]byte]())
	}
	return contentResponses(http.StatusOK, "application/json", a.sg.GenerateSchema(base)), nil
}

func contentResponses(status int, contentType string, schema *openapi3.SchemaRef) *openapi3.Responses {
	r := openapi3.NewResponsesWithCapacity(1)
	routedoc.AddSchemaResponse(r, status, contentType, schema)
	return r
}

// warnDocumenter logs once per type when t documents itself with methods the
// preview cannot run.
func (a *assembler) warnDocumenter(t types.Type) {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || a.warned[named.String()] {
		return
	}
	if pkg := named.Obj().Pkg(); pkg == nil || pkg.Path() == routedocPath {
		return
	}
	mset := types.NewMethodSet(types.NewPointer(named))
	for _, m := range documenterMethods {
		if sel := mset.Lookup(named.Obj().Pkg(), m); sel != nil {
			a.warned[named.String()] = true
			a.logger.Warn("type documents itself at run time, preview shows its default shape",
				"type", named.String(), "method", m)
			return
		}
	}
}

// runtimeType returns the reflect type of t when t is one of knownTypes, or a
// pointer to one.
func runtimeType(t types.Type) (reflect.Type, bool) {
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		rt, ok := runtimeType(ptr.Elem())
		if !ok {
			return nil, false
		}
		return reflect.PointerTo(rt), true
	}
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil || named.TypeArgs().Len() > 0 {
		return nil, false
	}
	rt, ok := knownTypes[named.Obj().Pkg().Path()+"."+named.Obj().Name()]
	return rt, ok
}

// generic splits an instantiated routedoc wrapper such as JSON[Pet] into its
// name and type argument.
func generic(t types.Type) (string, types.Type, bool) {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.TypeArgs().Len() != 1 {
		return "", nil, false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != routedocPath {
		return "", nil, false
	}
	return obj.Name(), named.TypeArgs().At(0), true
}

func deref(t types.Type) types.Type {
	for {
		ptr, ok := types.Unalias(t).(*types.Pointer)
		if !ok {
			return t
		}
		t = ptr.Elem()
	}
}

func isString(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsString != 0
}

func isBytes(t types.Type) bool {
	s, ok := t.Underlying().(*types.Slice)
	if !ok {
		return false
	}
	b, ok := s.Elem().Underlying().(*types.Basic)
	return ok && b.Kind() == types.Byte
}

func isEmptyStruct(t types.Type) bool {
	s, ok := t.Underlying().(*types.Struct)
	return ok && s.NumFields() == 0
}
