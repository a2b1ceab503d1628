package route

import (
	"fmt"
	"strings"
	"unicode"
)

// Segment is one path segment or query token of a template.
type Segment struct {
	// Value is the literal text, or the placeholder name when Dynamic is set.
	Value   string
	Dynamic bool
	// Multi marks a <name..> placeholder.
	Multi bool
}

func (s Segment) String() string {
	switch {
	case !s.Dynamic:
		return s.Value
	case s.Multi:
		return "<" + s.Value + "..>"
	default:
		return "<" + s.Value + ">"
	}
}

// Template is a parsed route path with its optional query part.
type Template struct {
	Segments      []Segment
	TrailingSlash bool
	Query         []Segment
}

// ParseTemplate parses a route template such as "/user/<id>/<rest..>?<q>&<opts..>".
func ParseTemplate(s string) (*Template, error) {
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("path %q must start with '/'", s)
	}

	path, query, hasQuery := strings.Cut(s, "?")
	t := &Template{}

	if rest := path[1:]; rest != "" {
		parts := strings.Split(rest, "/")
		if parts[len(parts)-1] == "" {
			t.TrailingSlash = true
			parts = parts[:len(parts)-1]
		}
		for _, part := range parts {
			if part == "" {
				return nil, fmt.Errorf("path %q contains an empty segment", path)
			}
			seg, err := parseSegment(part)
			if err != nil {
				return nil, err
			}
			if !seg.Dynamic && strings.ContainsAny(seg.Value, "{}") {
				return nil, fmt.Errorf("literal segment %q must not contain '{' or '}'", seg.Value)
			}
			t.Segments = append(t.Segments, seg)
		}
	}

	if hasQuery {
		for _, part := range strings.Split(query, "&") {
			if part == "" {
				continue
			}
			seg, err := parseSegment(part)
			if err != nil {
				return nil, err
			}
			t.Query = append(t.Query, seg)
		}
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseSegment(raw string) (Segment, error) {
	if !strings.HasPrefix(raw, "<") || !strings.HasSuffix(raw, ">") {
		if strings.ContainsAny(raw, "<>") {
			return Segment{}, fmt.Errorf("parameter in %q must span the whole segment", raw)
		}
		return Segment{Value: raw}, nil
	}

	name := raw[1 : len(raw)-1]
	multi := strings.HasSuffix(name, "..")
	name = strings.TrimSuffix(name, "..")
	if !isIdent(name) {
		return Segment{}, fmt.Errorf("invalid parameter name %q in %q", name, raw)
	}
	return Segment{Value: name, Dynamic: true, Multi: multi}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func (t *Template) validate() error {
	seen := make(map[string]bool)
	check := func(section string, segs []Segment) error {
		for i, seg := range segs {
			if !seg.Dynamic {
				continue
			}
			if seen[seg.Value] {
				return fmt.Errorf("parameter <%s> is declared more than once", seg.Value)
			}
			seen[seg.Value] = true
			if seg.Multi && i != len(segs)-1 {
				return fmt.Errorf("multi-segment parameter <%s..> must be the last %s", seg.Value, section)
			}
		}
		return nil
	}
	if err := check("path segment", t.Segments); err != nil {
		return err
	}
	return check("query token", t.Query)
}

// PathParams returns the single-segment path placeholders in order.
func (t *Template) PathParams() []string {
	return names(t.Segments, false)
}

// PathMultiParam returns the trailing <name..> path placeholder, if any.
func (t *Template) PathMultiParam() (string, bool) {
	if n := names(t.Segments, true); len(n) > 0 {
		return n[0], true
	}
	return "", false
}

// QueryParams returns the single-value query placeholders in order.
func (t *Template) QueryParams() []string {
	return names(t.Query, false)
}

// QueryMultiParams returns the <name..> query placeholders.
func (t *Template) QueryMultiParams() []string {
	return names(t.Query, true)
}

func names(segs []Segment, multi bool) []string {
	var out []string
	for _, s := range segs {
		if s.Dynamic && s.Multi == multi {
			out = append(out, s.Value)
		}
	}
	return out
}

// String renders the template in route syntax. Parsing the result yields an
// equal Template.
func (t *Template) String() string {
	var b strings.Builder
	b.WriteString(t.Path())
	if len(t.Query) > 0 {
		b.WriteByte('?')
		for i, q := range t.Query {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(q.String())
		}
	}
	return b.String()
}

// Path renders the path part in route syntax, without the query.
func (t *Template) Path() string {
	return t.render(Segment.String)
}

// OpenAPIPath renders the path part with {name} placeholders. Multi-segment
// placeholders render the same way as single ones.
func (t *Template) OpenAPIPath() string {
	return t.render(func(s Segment) string {
		if s.Dynamic {
			return "{" + s.Value + "}"
		}
		return s.Value
	})
}

func (t *Template) render(seg func(Segment) string) string {
	var b strings.Builder
	b.WriteByte('/')
	for i, s := range t.Segments {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(seg(s))
	}
	if t.TrailingSlash && len(t.Segments) > 0 {
		b.WriteByte('/')
	}
	return b.String()
}

// FromOpenAPIPath converts {name} placeholders back to <name>. Whether a
// placeholder was multi-segment is not recoverable from the OpenAPI form.
func FromOpenAPIPath(s string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			break
		}
		b.WriteString(s[:open])
		b.WriteString("<" + s[open+1:open+end] + ">")
		s = s[open+end+1:]
	}
	b.WriteString(s)
	return b.String()
}
