package routedoc

import (
	"errors"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

const componentPrefix = "#/components/schemas/"

// JSONSchema returns the schema of T. Named struct types are registered as
// component schemas and returned as references.
func JSONSchema[T any](g *Generator) (*openapi3.SchemaRef, error) {
	return g.SchemaFor(reflect.TypeFor[T]())
}

// JSONSchemaNoRef returns the schema of T written in place at the top level.
// Nested named structs are still registered as components.
func JSONSchemaNoRef[T any](g *Generator) (*openapi3.SchemaRef, error) {
	return g.SchemaNoRefFor(reflect.TypeFor[T]())
}

// SchemaFor returns the schema of t. Repeated calls for the same type return
// the same *SchemaRef.
func (g *Generator) SchemaFor(t reflect.Type) (*openapi3.SchemaRef, error) {
	return g.schemaFor(t, g.settings.InlineSchemas)
}

// SchemaNoRefFor is SchemaFor with the top level schema inlined.
func (g *Generator) SchemaNoRefFor(t reflect.Type) (*openapi3.SchemaRef, error) {
	return g.schemaFor(t, true)
}

// RegisterSchema adds a named component schema and returns a reference to it.
// An existing schema with the same name is kept.
func (g *Generator) RegisterSchema(name string, schema *openapi3.Schema) *openapi3.SchemaRef {
	if g.settings.InlineSchemas {
		return schema.NewRef()
	}
	if _, ok := g.schemas[name]; !ok {
		g.schemas[name] = schema.NewRef()
	}
	return openapi3.NewSchemaRef(componentPrefix+name, g.schemas[name].Value)
}

// Schema looks up a registered component schema by name.
func (g *Generator) Schema(name string) *openapi3.Schema {
	if ref := g.schemas[name]; ref != nil {
		return ref.Value
	}
	return nil
}

// Resolve returns the schema behind ref, following a component reference.
func (g *Generator) Resolve(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref == nil {
		return nil
	}
	if ref.Value != nil {
		return ref.Value
	}
	return g.Schema(strings.TrimPrefix(ref.Ref, componentPrefix))
}

func (g *Generator) schemaFor(t reflect.Type, inline bool) (*openapi3.SchemaRef, error) {
	if t == nil {
		return nil, &SchemaGenerationError{Type: "<nil>", Err: errors.New("no type given")}
	}
	cache := g.refs
	if inline {
		cache = g.inlineRefs
	}
	if ref, ok := cache[t]; ok {
		return ref, nil
	}

	if c, ok := g.settings.Types.Lookup(t); ok && c.Schema != nil {
		ref := cloneSchema(c.Schema).NewRef()
		cache[t] = ref
		return ref, nil
	}

	exportComponents := !g.settings.InlineSchemas
	opts := []openapi3gen.Option{
		openapi3gen.UseAllExportedFields(),
		openapi3gen.CreateTypeNameGenerator(g.schemaName),
		openapi3gen.CreateComponentSchemas(openapi3gen.ExportComponentSchemasOptions{
			ExportComponentSchemas: exportComponents,
			ExportTopLevelSchema:   exportComponents && !inline,
			ExportGenerics:         true,
		}),
		openapi3gen.SchemaCustomizer(g.customizeSchema),
	}

	gen := openapi3gen.NewGenerator(opts...)
	ref, err := gen.GenerateSchemaRef(t)
	if err != nil {
		return nil, &SchemaGenerationError{Type: t.String(), Err: err}
	}
	if ref == nil {
		return nil, &SchemaGenerationError{Type: t.String(), Err: errors.New("type has no JSON representation")}
	}

	// Component refs point at the registered component; everything else is
	// written in place.
	found := make(map[string][]*openapi3.SchemaRef)
	for r := range gen.SchemaRefs {
		name, isComponent := strings.CutPrefix(r.Ref, componentPrefix)
		if !isComponent {
			r.Ref = ""
			continue
		}
		found[name] = append(found[name], r)
		if r.Value != nil && r.Value.Properties != nil {
			if existing, ok := g.schemas[name]; !ok || existing.Value.Properties == nil {
				g.schemas[name] = withoutNullable(r.Value).NewRef()
			}
		}
	}
	for name, refs := range found {
		if _, ok := g.schemas[name]; !ok {
			g.schemas[name] = openapi3.NewObjectSchema().NewRef()
		}
		for _, r := range refs {
			r.Value = g.schemas[name].Value
		}
	}

	cache[t] = ref
	return ref, nil
}

// customizeSchema applies registered schema overrides and lists the
// properties of struct schemas that are always present.
func (g *Generator) customizeSchema(_ string, t reflect.Type, _ reflect.StructTag, schema *openapi3.Schema) error {
	if c, ok := g.settings.Types.Lookup(t); ok && c.Schema != nil {
		nullable := schema.Nullable
		*schema = *cloneSchema(c.Schema)
		schema.Nullable = schema.Nullable || nullable
		return nil
	}
	if t.Kind() == reflect.Struct && len(schema.Properties) > 0 {
		schema.Required = requiredFields(t, schema.Properties)
	}
	return nil
}

// requiredFields lists the JSON names of fields that are neither pointers nor
// tagged omitempty.
func requiredFields(t reflect.Type, props openapi3.Schemas) []string {
	var required []string
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || (f.Anonymous && f.Type.Kind() == reflect.Struct) {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, ok := props[name]; !ok || slices.Contains(required, name) {
			continue
		}
		if f.Type.Kind() == reflect.Pointer || slices.Contains(strings.Split(opts, ","), "omitempty") {
			continue
		}
		required = append(required, name)
	}
	return required
}

// schemaName names the component schema of a struct type. Types from
// different packages that share a name are told apart by a package prefix,
// then by a numeric suffix.
func (g *Generator) schemaName(t reflect.Type) string {
	simple := sanitizeSchemaName(t.Name())
	if simple == "" {
		simple = "Object"
	}
	if name, ok := g.typeNames[t]; ok {
		return name
	}

	name := simple
	if existing, ok := g.nameTypes[name]; ok && existing != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if existing, ok := g.nameTypes[name]; ok && existing != t {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, taken := g.nameTypes[candidate]; !taken {
					name = candidate
					break
				}
			}
		}
	}
	g.typeNames[t] = name
	g.nameTypes[name] = t
	return name
}

// pkgPrefix turns the last element of an import path into a name prefix.
func pkgPrefix(pkgPath string) string {
	if i := strings.LastIndexByte(pkgPath, '/'); i >= 0 {
		pkgPath = pkgPath[i+1:]
	}
	if pkgPath == "" {
		return ""
	}
	pkgPath = strings.NewReplacer("-", "_", ".", "_").Replace(pkgPath)
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}

// sanitizeSchemaName flattens generic instantiations: "Page[pkg.User]" becomes
// "PageUser" and "Page[[]pkg.User]" becomes "PageUserList".
func sanitizeSchemaName(name string) string {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name
	}
	base, inner := name[:open], name[open+1:len(name)-1]

	var b strings.Builder
	b.WriteString(base)
	for _, arg := range splitTypeArgs(inner) {
		arg = strings.TrimSpace(arg)
		list := strings.HasPrefix(arg, "[]")
		arg = strings.TrimLeft(arg, "[]*")
		head := arg
		if i := strings.IndexByte(arg, '['); i >= 0 {
			head = arg[:i]
		}
		if dot := strings.LastIndexByte(head, '.'); dot >= 0 {
			arg = arg[dot+1:]
		}
		b.WriteString(sanitizeSchemaName(arg))
		if list {
			b.WriteString("List")
		}
	}
	return b.String()
}

// splitTypeArgs splits a type argument list at top level commas.
func splitTypeArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}

func withoutNullable(s *openapi3.Schema) *openapi3.Schema {
	if !s.Nullable {
		return s
	}
	c := *s
	c.Nullable = false
	return &c
}

func cloneSchema(s *openapi3.Schema) *openapi3.Schema {
	c := *s
	return &c
}
