package analyzer

import (
	"errors"
	"fmt"
	"go/ast"
	"go/types"
	"slices"

	"github.com/Zachacious/go-routedoc/internal/docs"
	"github.com/Zachacious/go-routedoc/internal/model"
	"github.com/Zachacious/go-routedoc/route"
)

// fileHandlers scans the top-level function declarations of one file for
// route directives.
func (a *Analyzer) fileHandlers(file *ast.File) ([]*model.Handler, error) {
	info := a.pkg.TypesInfo
	attached := make(map[*ast.CommentGroup]bool)

	var handlers []*model.Handler
	for _, decl := range file.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Doc == nil {
			continue
		}
		attrs, err := directives(a.pkg.Fset, funcDecl.Doc, a.directive)
		if err != nil {
			return nil, err
		}
		if len(attrs) == 0 {
			continue
		}
		attached[funcDecl.Doc] = true

		h, err := a.registerFunction(info, funcDecl, attrs)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}

	a.reportFloating(file, attached)
	return handlers, nil
}

// registerFunction builds the handler model of one annotated function.
func (a *Analyzer) registerFunction(info *types.Info, funcDecl *ast.FuncDecl, attrs []route.Attribute) (*model.Handler, error) {
	pos := a.pkg.Fset.Position(funcDecl.Pos())
	name := funcDecl.Name.Name
	if funcDecl.Recv != nil {
		return nil, fmt.Errorf("%s: %s: route directives are only supported on package-level functions", pos, name)
	}
	if funcDecl.Type.TypeParams != nil {
		return nil, fmt.Errorf("%s: %s: generic handlers are not supported", pos, name)
	}
	fn, ok := info.Defs[funcDecl.Name].(*types.Func)
	if !ok {
		return nil, fmt.Errorf("%s: %s: no type information", pos, name)
	}

	h := &model.Handler{
		Func: name,
		Name: a.pkg.Name + "." + name,
		Pos:  pos,
		Doc:  docs.FromCommentGroup(funcDecl.Doc),
	}
	seenOpenAPI := false
	for _, attr := range attrs {
		switch {
		case attr.Name == openAPIDirective:
			if seenOpenAPI {
				return nil, &route.ParseError{Attr: attr.Name, Pos: attr.Pos, Offset: -1,
					Err: errors.New("only one openapi directive is allowed per handler")}
			}
			seenOpenAPI = true
			opts, err := parseOpenAPI(attr)
			if err != nil {
				return nil, err
			}
			h.OpenAPI = opts
		case route.IsRouteAttribute(attr.Name):
			if h.Route != nil {
				return nil, &route.ParseError{Attr: attr.Name, Pos: attr.Pos, Offset: -1,
					Err: errors.New("a handler carries at most one route directive")}
			}
			r, parser, err := parseRoute(attr)
			if err != nil {
				return nil, err
			}
			if parser != fmt.Sprint(route.Structured) {
				a.logger.Warn("route directive accepted by the fallback parser only", "pos", attr.Pos.String(), "directive", attr.String())
			}
			h.Attr, h.Route, h.Parser = attr, r, parser
		default:
			return nil, &route.ParseError{Attr: attr.Name, Pos: attr.Pos, Offset: -1,
				Err: fmt.Errorf("unknown directive %q", attr.Name)}
		}
	}
	if h.Route == nil {
		return nil, fmt.Errorf("%s: %s has an openapi directive but no route directive", pos, name)
	}

	sig := fn.Type().(*types.Signature)
	if sig.Variadic() {
		return nil, fmt.Errorf("%s: %s: variadic handlers are not supported", pos, name)
	}
	for i := 0; i < sig.Params().Len(); i++ {
		v := sig.Params().At(i)
		h.Params = append(h.Params, model.Param{Name: v.Name(), Type: v.Type()})
	}
	for i := 0; i < sig.Results().Len(); i++ {
		h.Results = append(h.Results, model.Result{Type: sig.Results().At(i).Type()})
	}

	if err := checkBindings(h); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", pos, name, err)
	}
	return h, nil
}

// checkBindings verifies that every name the route binds is a parameter of
// the function, unless the handler is skipped or the name is ignored.
func checkBindings(h *model.Handler) error {
	if h.OpenAPI.Skip {
		return nil
	}
	bound := func(name string) bool {
		return slices.ContainsFunc(h.Params, func(p model.Param) bool { return p.Name == name })
	}
	names := append(h.Route.PathParams(), h.Route.QueryParams()...)
	names = append(names, h.Route.QueryMultiParams()...)
	if multi, ok := h.Route.PathMultiParam(); ok {
		names = append(names, multi)
	}
	if h.Route.DataParam != "" {
		names = append(names, h.Route.DataParam)
	}
	for _, name := range names {
		if slices.Contains(h.OpenAPI.Ignore, name) {
			continue
		}
		if !bound(name) {
			return fmt.Errorf("route binds <%s> but the function has no parameter named %s", name, name)
		}
	}
	return nil
}
