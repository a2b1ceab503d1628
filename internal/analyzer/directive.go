package analyzer

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/Zachacious/go-routedoc/internal/model"
	"github.com/Zachacious/go-routedoc/route"
)

// openAPIDirective is the directive name carrying documentation options.
const openAPIDirective = "openapi"

// directiveText returns the text after "//<prefix>:" and whether c is a
// directive line.
func directiveText(c *ast.Comment, prefix string) (string, bool) {
	return strings.CutPrefix(c.Text, "//"+prefix+":")
}

// directives returns the directives written in a doc comment.
func directives(fset *token.FileSet, doc *ast.CommentGroup, prefix string) ([]route.Attribute, error) {
	if doc == nil {
		return nil, nil
	}
	var attrs []route.Attribute
	for _, c := range doc.List {
		text, ok := directiveText(c, prefix)
		if !ok {
			continue
		}
		pos := fset.Position(c.Pos())
		attr, ok := route.SplitAttribute(text)
		if !ok {
			if name := strings.TrimSpace(text); name == openAPIDirective {
				attrs = append(attrs, route.Attribute{Name: name, Pos: pos})
				continue
			}
			return nil, &route.ParseError{Attr: strings.TrimSpace(text), Pos: pos, Offset: -1,
				Err: errors.New("expected name(arguments)")}
		}
		attr.Pos = pos
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// parseRoute parses attr with the structured parser and falls back to the
// lenient one. It reports which parser accepted the directive.
func parseRoute(attr route.Attribute) (*route.Route, string, error) {
	r, err := route.Structured.Parse(attr)
	if err == nil {
		return r, fmt.Sprint(route.Structured), nil
	}
	if fr, ferr := route.Fallback.Parse(attr); ferr == nil {
		// Generated code always uses the structured parser, so only accept the
		// fallback result when its canonical form parses strictly.
		if _, rerr := route.Parse(fr.Attribute()); rerr == nil {
			return fr, fmt.Sprint(route.Fallback), nil
		}
	}
	return nil, "", err
}

// parseOpenAPI reads the options of an openapi(...) directive:
//
//	openapi(tag = "Users", operation_id = "getUser", deprecated, skip, ignore = "<db>")
func parseOpenAPI(attr route.Attribute) (model.OpenAPIAttr, error) {
	var out model.OpenAPIAttr
	metas, err := route.ParseMeta(attr.Args)
	if err != nil {
		var pe *route.ParseError
		if errors.As(err, &pe) {
			pe.Attr, pe.Pos = attr.Name, attr.Pos
			return out, pe
		}
		return out, err
	}

	fail := func(m route.Meta, format string, args ...any) error {
		return &route.ParseError{Attr: attr.Name, Pos: attr.Pos, Offset: m.Offset, Err: fmt.Errorf(format, args...)}
	}
	for _, m := range metas {
		name := m.Name
		if m.Positional() {
			if m.Kind != route.IdentValue {
				return out, fail(m, "unexpected positional argument %q", m.Value)
			}
			name = m.Value
		}
		switch name {
		case "tag":
			if m.Positional() || m.Kind != route.StringValue {
				return out, fail(m, "tag expects a string")
			}
			out.Tags = append(out.Tags, m.Value)
		case "operation_id":
			if m.Positional() || m.Kind != route.StringValue || m.Value == "" {
				return out, fail(m, "operation_id expects a non-empty string")
			}
			out.OperationID = m.Value
		case "ignore":
			if m.Positional() || m.Kind != route.StringValue {
				return out, fail(m, "ignore expects a string")
			}
			out.Ignore = append(out.Ignore, strings.Trim(m.Value, "<>"))
		case "deprecated", "skip":
			v := true
			if !m.Positional() {
				b, err := strconv.ParseBool(m.Value)
				if err != nil || m.Kind != route.IdentValue {
					return out, fail(m, "%s expects true or false", name)
				}
				v = b
			}
			if name == "skip" {
				out.Skip = v
			} else {
				out.Deprecated = v
			}
		default:
			return out, fail(m, "unknown option %q", name)
		}
	}
	return out, nil
}
