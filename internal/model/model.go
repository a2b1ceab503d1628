package model

import (
	"go/token"
	"go/types"
	"sort"

	"github.com/Zachacious/go-routedoc/internal/docs"
	"github.com/Zachacious/go-routedoc/route"
)

// APIModel is everything discovered in one annotated package.
type APIModel struct {
	// PkgPath is the import path of the analyzed package.
	PkgPath string
	// PkgName is the package clause name, used for the generated file.
	PkgName string
	// Dir is the directory the generated file is written to.
	Dir string
	// Handlers are ordered by source position.
	Handlers []*Handler
	// Imports maps import paths referenced by handler signatures to the
	// package name used for them in generated code.
	Imports map[string]string
}

// Handler returns the handler declared by the function name.
func (m *APIModel) Handler(name string) *Handler {
	for _, h := range m.Handlers {
		if h.Func == name {
			return h
		}
	}
	return nil
}

// ImportPaths returns the import paths in sorted order.
func (m *APIModel) ImportPaths() []string {
	paths := make([]string, 0, len(m.Imports))
	for p := range m.Imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Handler is one function carrying a route directive.
type Handler struct {
	// Func is the function name.
	Func string
	// Name is the qualified name, "pkg.Func".
	Name string
	Pos  token.Position

	// Attr is the raw route directive.
	Attr  route.Attribute
	Route *route.Route
	// Parser names the parser that accepted Attr.
	Parser string

	Doc     docs.Comment
	OpenAPI OpenAPIAttr

	Params  []Param
	Results []Result
}

// OpenAPIAttr holds the options of an openapi(...) directive.
type OpenAPIAttr struct {
	Tags        []string
	OperationID string
	Deprecated  bool
	Skip        bool
	Ignore      []string
}

// Param is one function parameter.
type Param struct {
	Name string
	Type types.Type
	// Expr is Type as Go source in the handler's package.
	Expr string
}

// Optional reports whether the parameter is pointer-shaped.
func (p Param) Optional() bool {
	_, ok := p.Type.(*types.Pointer)
	return ok
}

// Result is one function result.
type Result struct {
	Type types.Type
	Expr string
}
