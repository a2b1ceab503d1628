// Package routedoc builds OpenAPI 3.0 documents for annotated route handlers.
//
// The routedoc command reads //routedoc: directives from handler doc comments
// and generates code that describes every handler to a Generator:
//
//	g := routedoc.NewGenerator(settings)
//	err := g.AddHandler(routedoc.Handler{
//		Name:      "users.GetUser",
//		Route:     route.MustParse("get", `"/user/<id>?<verbose>"`),
//		Args:      []routedoc.Arg{routedoc.ArgOf[int]("id"), routedoc.ArgOf[*bool]("verbose")},
//		Responses: routedoc.ResponsesOf[routedoc.JSON[User]](),
//	})
//	doc, err := g.IntoOpenAPI()
//
// How a Go type contributes parameters, request bodies and responses is
// decided per type: first by a Capabilities entry in the Settings'
// TypeRegistry, then by the documenter interfaces the type implements
// (ParamDocumenter, DataDocumenter, ResponseDocumenter, ...), and finally by
// built-in defaults. Pointer types are optional: their parameters and bodies
// are not required.
//
// Documents built for separately mounted route groups are combined with
// MergeSpecs or a Mount.
package routedoc
