package analyzer

import (
	"go/ast"
	"go/types"
	"strconv"

	"github.com/Zachacious/go-routedoc/internal/model"
	"golang.org/x/tools/go/ast/astutil"
)

// Packages the generated code always imports under their own names.
var reservedImports = map[string]string{
	"github.com/Zachacious/go-routedoc/routedoc": "routedoc",
	"github.com/Zachacious/go-routedoc/route":    "route",
	"github.com/getkin/kin-openapi/openapi3":     "openapi3",
}

// importSet assigns package names to the imports generated code needs to
// spell handler signatures.
type importSet struct {
	self  *types.Package
	names map[string]string // path -> name
	taken map[string]string // name -> path
}

func newImportSet(self *types.Package) *importSet {
	s := &importSet{
		self:  self,
		names: make(map[string]string),
		taken: make(map[string]string),
	}
	for path, name := range reservedImports {
		s.taken[name] = path
	}
	return s
}

func (s *importSet) qualifier(p *types.Package) string {
	if p == s.self || (s.self != nil && p.Path() == s.self.Path()) {
		return ""
	}
	if name, ok := s.names[p.Path()]; ok {
		return name
	}
	if name, ok := reservedImports[p.Path()]; ok {
		s.names[p.Path()] = name
		return name
	}
	name := p.Name()
	for i := 2; s.taken[name] != "" || (s.self != nil && s.self.Scope().Lookup(name) != nil); i++ {
		name = p.Name() + strconv.Itoa(i)
	}
	s.names[p.Path()] = name
	s.taken[name] = p.Path()
	return name
}

// render fills in the Go source form of the handler's signature types.
func (s *importSet) render(h *model.Handler) {
	for i := range h.Params {
		h.Params[i].Expr = types.TypeString(h.Params[i].Type, s.qualifier)
	}
	for i := range h.Results {
		h.Results[i].Expr = types.TypeString(h.Results[i].Type, s.qualifier)
	}
}

// reportFloating warns about directives in comments that are not the doc
// comment of a function declaration.
func (a *Analyzer) reportFloating(file *ast.File, attached map[*ast.CommentGroup]bool) {
	for _, group := range file.Comments {
		if attached[group] {
			continue
		}
		for _, c := range group.List {
			if _, ok := directiveText(c, a.directive); !ok {
				continue
			}
			path, _ := astutil.PathEnclosingInterval(file, c.Pos(), c.End())
			owner := describeEnclosing(path)
			for _, decl := range file.Decls {
				if gd, ok := decl.(*ast.GenDecl); ok && gd.Doc == group {
					owner = gd.Tok.String() + " declaration"
				}
			}
			a.logger.Warn("directive is not attached to a function declaration",
				"pos", a.pkg.Fset.Position(c.Pos()).String(),
				"enclosing", owner,
			)
		}
	}
}

// describeEnclosing names the innermost declaration in an astutil path.
func describeEnclosing(path []ast.Node) string {
	for _, n := range path {
		switch n := n.(type) {
		case *ast.FuncDecl:
			return "func " + n.Name.Name
		case *ast.GenDecl:
			return n.Tok.String() + " declaration"
		}
	}
	return "file scope"
}
