package analyzer

import (
	"fmt"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/tools/go/types/typeutil"
)

const componentPrefix = "#/components/schemas/"

// SchemaGenerator turns Go types into OpenAPI schema definitions without
// running the program. Named struct types become component schemas, named
// the same way the runtime generator names them.
type SchemaGenerator struct {
	// Component refs by type. The entry is stored before the schema is
	// built, which ends recursion.
	schemas typeutil.Map
	names   map[string]types.Type
}

func NewSchemaGenerator() *SchemaGenerator {
	return &SchemaGenerator{names: make(map[string]types.Type)}
}

// Schemas returns the component schemas generated so far.
func (sg *SchemaGenerator) Schemas() openapi3.Schemas {
	out := make(openapi3.Schemas, sg.schemas.Len())
	sg.schemas.Iterate(func(_ types.Type, v any) {
		ref := v.(*openapi3.SchemaRef)
		out[strings.TrimPrefix(ref.Ref, componentPrefix)] = &openapi3.SchemaRef{Value: ref.Value}
	})
	return out
}

// GenerateSchema is the main entry point for creating a schema from a Go type.
func (sg *SchemaGenerator) GenerateSchema(t types.Type) *openapi3.SchemaRef {
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		return sg.GenerateSchema(ptr.Elem())
	}
	if isTimeType(t) {
		return openapi3.NewDateTimeSchema().NewRef()
	}

	named, ok := t.(*types.Named)
	if !ok {
		return &openapi3.SchemaRef{Value: sg.buildSchema(t)}
	}
	if _, isStruct := named.Underlying().(*types.Struct); !isStruct {
		return &openapi3.SchemaRef{Value: sg.buildSchema(t)}
	}
	if ref := sg.schemas.At(t); ref != nil {
		return ref.(*openapi3.SchemaRef)
	}

	schemaRef := &openapi3.SchemaRef{Ref: componentPrefix + sg.schemaName(named)}
	sg.schemas.Set(t, schemaRef)
	schemaRef.Value = sg.buildSchema(t)
	return schemaRef
}

// InlineSchema returns the schema of t without a component ref at the top.
// Unlike GenerateSchema it does not register t itself as a component.
func (sg *SchemaGenerator) InlineSchema(t types.Type) *openapi3.Schema {
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		return sg.InlineSchema(ptr.Elem())
	}
	if ref := sg.schemas.At(t); ref != nil {
		c := *ref.(*openapi3.SchemaRef).Value
		return &c
	}
	if isTimeType(t) {
		return openapi3.NewDateTimeSchema()
	}
	return sg.buildSchema(t)
}

// buildSchema does the actual work of converting a type to a schema.
func (sg *SchemaGenerator) buildSchema(t types.Type) *openapi3.Schema {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		return sg.schemaForBasic(u)
	case *types.Struct:
		return sg.schemaForStruct(u)
	case *types.Slice:
		if isByte(u.Elem()) {
			return openapi3.NewBytesSchema()
		}
		schema := openapi3.NewArraySchema()
		schema.Items = sg.GenerateSchema(u.Elem())
		return schema
	case *types.Array:
		schema := openapi3.NewArraySchema()
		schema.Items = sg.GenerateSchema(u.Elem())
		n := uint64(u.Len())
		schema.MinItems, schema.MaxItems = n, &n
		return schema
	case *types.Map:
		schema := openapi3.NewObjectSchema()
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: sg.GenerateSchema(u.Elem())}
		return schema
	case *types.Interface:
		return &openapi3.Schema{}
	default:
		schema := openapi3.NewObjectSchema()
		schema.Description = fmt.Sprintf("Unsupported type: %s", t)
		return schema
	}
}

func (sg *SchemaGenerator) schemaForBasic(b *types.Basic) *openapi3.Schema {
	switch b.Kind() {
	case types.String:
		return openapi3.NewStringSchema()
	case types.Bool:
		return openapi3.NewBoolSchema()
	case types.Int32, types.Uint32, types.Int16, types.Uint16, types.Int8, types.Uint8:
		return openapi3.NewInt32Schema()
	case types.Int, types.Int64, types.Uint, types.Uint64, types.Uintptr:
		return openapi3.NewInt64Schema()
	case types.Float32, types.Float64:
		return openapi3.NewFloat64Schema()
	default:
		schema := openapi3.NewStringSchema()
		schema.Description = "Type " + b.Name()
		return schema
	}
}

func (sg *SchemaGenerator) schemaForStruct(s *types.Struct) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	for i := 0; i < s.NumFields(); i++ {
		field := s.Field(i)
		name, opts, _ := strings.Cut(reflect.StructTag(s.Tag(i)).Get("json"), ",")
		if name == "-" {
			continue
		}

		// Untagged embedded structs are flattened into the parent.
		if field.Embedded() && name == "" {
			if inner, ok := structOf(field.Type()); ok {
				embedded := sg.schemaForStruct(inner)
				for prop, ref := range embedded.Properties {
					schema.WithPropertyRef(prop, ref)
				}
				schema.Required = append(schema.Required, embedded.Required...)
				continue
			}
		}
		if !field.Exported() {
			continue
		}
		if name == "" {
			name = field.Name()
		}

		ref := sg.GenerateSchema(field.Type())
		if _, ptr := types.Unalias(field.Type()).(*types.Pointer); ptr {
			if ref.Ref == "" {
				ref.Value.Nullable = true
			}
		} else if !strings.Contains(opts, "omitempty") {
			schema.Required = append(schema.Required, name)
		}
		schema.WithPropertyRef(name, ref)
	}
	return schema
}

// schemaName names the component of a named struct type, prefixing the
// package name and then a counter when names collide.
func (sg *SchemaGenerator) schemaName(named *types.Named) string {
	simple := typeName(named)
	name := simple
	if prev, ok := sg.names[name]; ok && !types.Identical(prev, named) {
		if pkg := named.Obj().Pkg(); pkg != nil {
			name = pkgPrefix(pkg.Path()) + simple
		}
		if prev, ok := sg.names[name]; ok && !types.Identical(prev, named) {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, taken := sg.names[candidate]; !taken {
					name = candidate
					break
				}
			}
		}
	}
	sg.names[name] = named
	return name
}

// typeName flattens a type into an identifier: Page[[]User] is PageUserList.
func typeName(t types.Type) string {
	switch t := types.Unalias(t).(type) {
	case *types.Named:
		name := t.Obj().Name()
		args := t.TypeArgs()
		for i := 0; i < args.Len(); i++ {
			name += typeName(args.At(i))
		}
		return name
	case *types.Pointer:
		return typeName(t.Elem())
	case *types.Slice:
		return typeName(t.Elem()) + "List"
	case *types.Basic:
		return t.Name()
	default:
		return "Object"
	}
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

func structOf(t types.Type) (*types.Struct, bool) {
	if ptr, ok := types.Unalias(t).(*types.Pointer); ok {
		t = ptr.Elem()
	}
	s, ok := t.Underlying().(*types.Struct)
	return s, ok
}

func isByte(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Kind() == types.Byte
}

func isTimeType(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	return named.Obj().Pkg().Path() == "time" && named.Obj().Name() == "Time"
}
