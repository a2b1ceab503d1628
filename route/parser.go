package route

import (
	"go/token"
	"strings"
)

// Attribute is the raw syntax of one route directive.
type Attribute struct {
	// Name is the directive keyword: a method, "protect_<method>" or "route".
	Name string
	// Args is the text between the outer parentheses.
	Args string
	Pos  token.Position
}

func (a Attribute) String() string {
	return a.Name + "(" + a.Args + ")"
}

// SplitAttribute splits `name(args)` into an Attribute. ok is false when the
// text has no parenthesised argument list.
func SplitAttribute(text string) (attr Attribute, ok bool) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '(')
	end := strings.LastIndexByte(text, ')')
	if open <= 0 || end < open {
		return Attribute{}, false
	}
	return Attribute{
		Name: strings.TrimSpace(text[:open]),
		Args: text[open+1 : end],
	}, true
}

// Parser turns a route directive into a Route.
type Parser interface {
	Parse(attr Attribute) (*Route, error)
}

var (
	// Structured tokenizes the argument list and validates it strictly.
	Structured Parser = structuredParser{}
	// Fallback splits the argument string on top-level commas.
	Fallback Parser = fallbackParser{}
)

// Parse parses attr with the Structured parser.
func Parse(attr Attribute) (*Route, error) {
	return Structured.Parse(attr)
}

// MustParse is like Parse but panics on error. It is meant for generated code
// whose directives were already validated.
func MustParse(name, args string) *Route {
	r, err := Parse(Attribute{Name: name, Args: args})
	if err != nil {
		panic(err)
	}
	return r
}

// IsRouteAttribute reports whether name is a keyword Parse understands.
func IsRouteAttribute(name string) bool {
	if name == "route" {
		return true
	}
	_, err := ParseMethod(strings.TrimPrefix(name, "protect_"))
	return err == nil
}

type structuredParser struct{}

func (structuredParser) Parse(attr Attribute) (*Route, error) {
	metas, err := ParseMeta(attr.Args)
	if err != nil {
		return nil, attrError(attr, -1, err)
	}

	method, err := ParseMethod(attr.Name)
	if err != nil {
		if m, ok := strings.CutPrefix(attr.Name, "protect_"); ok {
			if method, err = ParseMethod(m); err != nil {
				return nil, attrErrorf(attr, -1, "unknown HTTP method in protect directive: '%s'", m)
			}
		} else if attr.Name == "route" {
			return parseGenericRoute(attr, metas)
		} else {
			return nil, attrError(attr, -1, err)
		}
	}

	if len(metas) == 0 || !metas[0].Positional() {
		return nil, attrErrorf(attr, -1, "expected at least 1 positional argument")
	}
	path := metas[0]
	if path.Kind != StringValue {
		return nil, attrErrorf(attr, path.Offset, "expected a path string, found %s", path.Value)
	}
	return buildRoute(attr, method, path, metas[1:])
}

// parseGenericRoute handles route(METHOD, path = "...").
func parseGenericRoute(attr Attribute, metas []Meta) (*Route, error) {
	if len(metas) == 0 || !metas[0].Positional() {
		return nil, attrErrorf(attr, -1, "expected at least 1 positional argument")
	}
	first := metas[0]
	if first.Kind == StringValue && strings.HasPrefix(first.Value, "/") {
		return nil, attrErrorf(attr, first.Offset,
			"expected an HTTP method but found path %q; use route(METHOD, path = \"...\") or a method directive", first.Value)
	}
	method, err := ParseMethod(first.Value)
	if err != nil {
		return nil, attrError(attr, first.Offset, err)
	}

	var path *Meta
	rest := make([]Meta, 0, len(metas)-1)
	for i := range metas[1:] {
		m := metas[1+i]
		if m.Name == "path" {
			if path != nil {
				return nil, attrErrorf(attr, m.Offset, "duplicate field `path`")
			}
			path = &m
			continue
		}
		rest = append(rest, m)
	}
	if path == nil {
		return nil, attrErrorf(attr, -1, "missing field `path`")
	}
	return buildRoute(attr, method, *path, rest)
}

func buildRoute(attr Attribute, method Method, path Meta, named []Meta) (*Route, error) {
	tmpl, err := ParseTemplate(path.Value)
	if err != nil {
		return nil, attrError(attr, path.Offset, err)
	}
	r := &Route{Method: method, Template: tmpl}

	seen := make(map[string]bool)
	for _, m := range named {
		if m.Positional() {
			return nil, attrErrorf(attr, m.Offset, "unexpected positional argument %s", m.Value)
		}
		if seen[m.Name] {
			return nil, attrErrorf(attr, m.Offset, "duplicate field `%s`", m.Name)
		}
		seen[m.Name] = true

		switch m.Name {
		case "format":
			mt, err := ParseMediaType(m.Value)
			if err != nil {
				return nil, attrError(attr, m.Offset, err)
			}
			r.MediaType = mt
		case "data":
			r.DataParam = trimAngleBrackets(m.Value)
			if r.DataParam == "" {
				return nil, attrErrorf(attr, m.Offset, "data parameter must not be empty")
			}
		}
	}
	return r, nil
}

func trimAngleBrackets(s string) string {
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func (structuredParser) String() string { return "structured" }
