package routedoc

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// Arg is one handler argument.
type Arg struct {
	// Name is the parameter name as written in the route.
	Name string
	Type reflect.Type
	// Static takes precedence over the registry and the documenter interfaces.
	// It describes arguments whose Go type is not available at run time.
	Static *Capabilities
	// Optional marks the argument as not required even if Type is not a pointer.
	Optional bool
}

// ArgOf describes an argument of type T.
func ArgOf[T any](name string) Arg {
	return Arg{Name: name, Type: reflect.TypeFor[T]()}
}

// IsOptional reports whether the argument may be absent from the request.
func (a Arg) IsOptional() bool {
	return a.Optional || (a.Type != nil && a.Type.Kind() == reflect.Pointer)
}

func (a Arg) base() reflect.Type {
	t := a.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func (a Arg) typeName() string {
	if a.Type == nil {
		return "<static>"
	}
	return a.Type.String()
}

// capabilities returns the capability sets that apply to a, most specific first.
func (g *Generator) capabilities(a Arg) []Capabilities {
	var out []Capabilities
	if a.Static != nil {
		out = append(out, *a.Static)
	}
	if c, ok := g.settings.Types.Lookup(a.Type); ok {
		out = append(out, c)
	}
	if base := a.base(); base != a.Type {
		if c, ok := g.settings.Types.Lookup(base); ok {
			out = append(out, c)
		}
	}
	return out
}

// argSchema returns the schema of the argument's type written in place.
func (g *Generator) argSchema(a Arg) (*openapi3.SchemaRef, error) {
	if a.Static != nil && a.Static.Schema != nil {
		return cloneSchema(a.Static.Schema).NewRef(), nil
	}
	if a.Type == nil {
		return openapi3.NewStringSchema().NewRef(), nil
	}
	return g.SchemaNoRefFor(a.base())
}

// PathParameter documents a value bound to a single <name> segment.
func (g *Generator) PathParameter(a Arg) (*openapi3.Parameter, error) {
	p, err := g.pathParameter(a)
	if err != nil || p == nil {
		return p, err
	}
	p.In = openapi3.ParameterInPath
	p.Required = true
	return p, nil
}

func (g *Generator) pathParameter(a Arg) (*openapi3.Parameter, error) {
	for _, c := range g.capabilities(a) {
		if c.PathParameter != nil {
			return c.PathParameter(g, a.Name)
		}
	}
	if d, ok := implements[ParamDocumenter](a.base()); ok {
		return d.PathParameter(g, a.Name)
	}
	schema, err := g.argSchema(a)
	if err != nil {
		return nil, err
	}
	p := openapi3.NewPathParameter(a.Name)
	p.Schema = schema
	return p, nil
}

// PathMultiParameter documents a value bound to a trailing <name..> segment.
func (g *Generator) PathMultiParameter(a Arg) (*openapi3.Parameter, error) {
	var (
		p   *openapi3.Parameter
		err error
	)
	found := false
	for _, c := range g.capabilities(a) {
		if c.PathMultiParameter != nil {
			p, err = c.PathMultiParameter(g, a.Name)
			found = true
			break
		}
	}
	if !found {
		if d, ok := implements[SegmentsDocumenter](a.base()); ok {
			p, err = d.PathMultiParameter(g, a.Name)
		} else {
			p = openapi3.NewPathParameter(a.Name)
			p.Schema = openapi3.NewStringSchema().NewRef()
			p.Description = "The remaining path segments."
		}
	}
	if err != nil || p == nil {
		return p, err
	}
	p.In = openapi3.ParameterInPath
	p.Required = true
	return p, nil
}

// FormParameters documents a value bound to a <name> query token. Struct
// shaped values expand into one parameter per property.
func (g *Generator) FormParameters(a Arg, required bool) ([]*openapi3.Parameter, error) {
	for _, c := range g.capabilities(a) {
		if c.FormParameters != nil {
			return c.FormParameters(g, a.Name, required)
		}
		if c.FormParameter != nil {
			p, err := c.FormParameter(g, a.Name, required)
			return single(p, err)
		}
	}
	base := a.base()
	if d, ok := implements[FormDocumenter](base); ok {
		return d.FormParameters(g, a.Name, required)
	}
	if d, ok := implements[FormFieldDocumenter](base); ok {
		return single(d.FormParameter(g, a.Name, required))
	}

	schema, err := g.argSchema(a)
	if err != nil {
		return nil, err
	}
	if base != timeType {
		if resolved := g.Resolve(schema); resolved != nil && resolved.Type.Is(openapi3.TypeObject) && len(resolved.Properties) > 0 {
			return g.nestedFormParameters(a.Name, resolved, required), nil
		}
	}
	p := openapi3.NewQueryParameter(a.Name).WithRequired(required)
	p.Schema = schema
	return []*openapi3.Parameter{p}, nil
}

var timeType = reflect.TypeFor[time.Time]()

// nestedFormParameters turns each property of an object schema into a query
// parameter. A property inherits the required flag of the form unless its
// schema is nullable.
func (g *Generator) nestedFormParameters(name string, schema *openapi3.Schema, required bool) []*openapi3.Parameter {
	if len(schema.Properties) == 0 {
		p := openapi3.NewQueryParameter(name).WithRequired(required)
		p.Schema = schema.NewRef()
		return []*openapi3.Parameter{p}
	}

	names := make([]string, 0, len(schema.Properties))
	for n := range schema.Properties {
		names = append(names, n)
	}
	sort.Strings(names)

	params := make([]*openapi3.Parameter, 0, len(names))
	for _, n := range names {
		prop := schema.Properties[n]
		p := openapi3.NewQueryParameter(n)
		p.Schema = prop
		nullable := false
		if v := g.Resolve(prop); v != nil {
			p.Description = v.Description
			nullable = v.Nullable
		}
		if prop.Value != nil {
			nullable = prop.Value.Nullable
		}
		p.Required = required && !nullable
		params = append(params, p)
	}
	return params
}

// RequestBody documents the argument named by a route's data attribute.
func (g *Generator) RequestBody(a Arg) (*openapi3.RequestBody, error) {
	body, err := g.requestBody(a)
	if err != nil || body == nil {
		return body, err
	}
	if a.IsOptional() {
		body.Required = false
	}
	return body, nil
}

func (g *Generator) requestBody(a Arg) (*openapi3.RequestBody, error) {
	for _, c := range g.capabilities(a) {
		if c.RequestBody != nil {
			return c.RequestBody(g)
		}
	}
	base := a.base()
	if d, ok := implements[DataDocumenter](base); ok {
		return d.RequestBody(g)
	}
	if base != nil {
		switch {
		case base.Kind() == reflect.String:
			return binaryBody(openapi3.NewStringSchema()), nil
		case base.Kind() == reflect.Slice && base.Elem().Kind() == reflect.Uint8:
			return binaryBody(openapi3.NewStringSchema().WithFormat("binary")), nil
		}
	}

	var (
		schema *openapi3.SchemaRef
		err    error
	)
	if a.Static != nil && a.Static.Schema != nil {
		schema = cloneSchema(a.Static.Schema).NewRef()
	} else if base != nil {
		schema, err = g.SchemaFor(base)
	} else {
		return nil, fmt.Errorf("no type information for body argument %q", a.Name)
	}
	if err != nil {
		return nil, err
	}
	return openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithJSONSchemaRef(schema)), nil
}

func binaryBody(schema *openapi3.Schema) *openapi3.RequestBody {
	return openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithSchema(schema, []string{"application/octet-stream"}))
}

// RequestInput documents any argument that is not part of the route syntax.
func (g *Generator) RequestInput(a Arg) (RequestInput, error) {
	required := !a.IsOptional()
	for _, c := range g.capabilities(a) {
		if c.RequestInput != nil {
			in, err := c.RequestInput(g, a.Name, required)
			return optionalInput(required, in, err)
		}
	}
	if d, ok := implements[RequestDocumenter](a.base()); ok {
		in, err := d.RequestInput(g, a.Name, required)
		return optionalInput(required, in, err)
	}
	g.logger.Debug("argument documents nothing", "arg", a.Name, "type", a.typeName())
	return NoInput(), nil
}

// optionalInput clears the required flag of a parameter documented for an
// optional argument.
func optionalInput(required bool, in RequestInput, err error) (RequestInput, error) {
	if err == nil && !required && in.Kind == InputParameter && in.Parameter != nil {
		in.Parameter.Required = false
	}
	return in, err
}

func single(p *openapi3.Parameter, err error) ([]*openapi3.Parameter, error) {
	if err != nil || p == nil {
		return nil, err
	}
	return []*openapi3.Parameter{p}, nil
}
