package routedoc

import (
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Zachacious/go-routedoc/route"
)

// OpenAPIVersion is the version written to every generated document.
const OpenAPIVersion = "3.0.3"

type operationKey struct {
	path   string
	method route.Method
}

// Generator accumulates operations, schemas and security schemes for one
// document. It is not safe for concurrent use. IntoOpenAPI consumes it.
type Generator struct {
	settings *Settings
	logger   *slog.Logger

	doc             *openapi3.T
	schemas         openapi3.Schemas
	securitySchemes openapi3.SecuritySchemes

	refs       map[reflect.Type]*openapi3.SchemaRef
	inlineRefs map[reflect.Type]*openapi3.SchemaRef
	typeNames  map[reflect.Type]string
	nameTypes  map[string]reflect.Type

	sources     map[operationKey]string
	explicitIDs map[*openapi3.Operation]bool
	finished    bool
}

// NewGenerator returns an empty Generator. A nil settings uses NewSettings.
func NewGenerator(settings *Settings) *Generator {
	if settings == nil {
		settings = NewSettings()
	}
	settings = settings.withDefaults()
	return &Generator{
		settings: settings,
		logger:   settings.Logger,
		doc: &openapi3.T{
			OpenAPI: OpenAPIVersion,
			Info: &openapi3.Info{
				Title:   "API Documentation",
				Version: "1.0.0",
			},
			Paths: openapi3.NewPaths(),
		},
		schemas:         make(openapi3.Schemas),
		securitySchemes: make(openapi3.SecuritySchemes),
		refs:            make(map[reflect.Type]*openapi3.SchemaRef),
		inlineRefs:      make(map[reflect.Type]*openapi3.SchemaRef),
		typeNames:       make(map[reflect.Type]string),
		nameTypes:       make(map[string]reflect.Type),
		sources:         make(map[operationKey]string),
		explicitIDs:     make(map[*openapi3.Operation]bool),
	}
}

// Settings returns the settings the generator was built with.
func (g *Generator) Settings() *Settings { return g.settings }

// OperationInfo is one operation ready to be placed in the document.
type OperationInfo struct {
	// Path uses OpenAPI {name} placeholders.
	Path      string
	Method    route.Method
	Operation *openapi3.Operation
	// Source names the handler that produced the operation.
	Source string
	// ExplicitOperationID keeps Operation.OperationID exactly as written.
	ExplicitOperationID bool
}

// AddOperation places an operation in the document. Adding a second operation
// for the same path and method fails with a DuplicateOperationError.
func (g *Generator) AddOperation(info OperationInfo) error {
	if g.finished {
		return ErrGeneratorFinished
	}
	method, err := route.ParseMethod(string(info.Method))
	if err != nil {
		return err
	}
	if info.Operation == nil {
		info.Operation = openapi3.NewOperation()
	}

	item := g.doc.Paths.Value(info.Path)
	if item == nil {
		item = &openapi3.PathItem{}
		g.doc.Paths.Set(info.Path, item)
	}
	key := operationKey{path: info.Path, method: method}
	if item.GetOperation(method.String()) != nil {
		return &DuplicateOperationError{
			Path:      info.Path,
			Method:    method,
			Existing:  g.sources[key],
			Duplicate: info.Source,
		}
	}
	item.SetOperation(method.String(), info.Operation)
	g.sources[key] = info.Source
	if info.ExplicitOperationID {
		g.explicitIDs[info.Operation] = true
	}
	return nil
}

// AddSecurityScheme registers a security scheme. The first scheme registered
// under a name is kept.
func (g *Generator) AddSecurityScheme(name string, scheme *openapi3.SecurityScheme) {
	if _, ok := g.securitySchemes[name]; ok {
		return
	}
	g.securitySchemes[name] = &openapi3.SecuritySchemeRef{Value: scheme}
}

// SetInfo replaces the document's info object.
func (g *Generator) SetInfo(info *openapi3.Info) {
	if info != nil {
		g.doc.Info = info
	}
}

// AddServer appends a document level server.
func (g *Generator) AddServer(server *openapi3.Server) {
	g.doc.AddServer(server)
}

// AddTag adds a document level tag unless one with the same name exists.
func (g *Generator) AddTag(tag *openapi3.Tag) {
	if tag == nil || g.doc.Tags.Get(tag.Name) != nil {
		return
	}
	g.doc.Tags = append(g.doc.Tags, tag)
}

// IntoOpenAPI finishes the document. Operation ids that were not given
// explicitly are flattened with FlattenOperationID. The generator cannot be
// used afterwards.
func (g *Generator) IntoOpenAPI() (*openapi3.T, error) {
	if g.finished {
		return nil, ErrGeneratorFinished
	}
	g.finished = true

	for _, path := range g.doc.Paths.InMatchingOrder() {
		for _, op := range g.doc.Paths.Value(path).Operations() {
			if !g.explicitIDs[op] {
				op.OperationID = FlattenOperationID(op.OperationID)
			}
		}
	}

	if len(g.schemas) > 0 || len(g.securitySchemes) > 0 {
		g.doc.Components = &openapi3.Components{}
		if len(g.schemas) > 0 {
			g.doc.Components.Schemas = g.schemas
		}
		if len(g.securitySchemes) > 0 {
			g.doc.Components.SecuritySchemes = g.securitySchemes
		}
	}
	g.logger.Debug("document finished",
		"paths", g.doc.Paths.Len(),
		"schemas", len(g.schemas),
		"securitySchemes", len(g.securitySchemes))
	return g.doc, nil
}

// SchemaNames lists the component schemas registered so far, sorted.
func (g *Generator) SchemaNames() []string {
	names := make([]string, 0, len(g.schemas))
	for name := range g.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var operationIDReplacer = strings.NewReplacer("::", "_", ".", "_", "/", "_", "-", "_")

// FlattenOperationID turns a qualified handler name into an operation id:
// "::users::get_user" and "users.GetUser" become "users_get_user" and
// "users_GetUser".
func FlattenOperationID(id string) string {
	id = strings.TrimLeft(id, ":./")
	return operationIDReplacer.Replace(id)
}
