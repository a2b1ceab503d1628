package route

import (
	"strconv"
	"strings"
)

type fallbackParser struct{}

func (fallbackParser) String() string { return "fallback" }

func (fallbackParser) Parse(attr Attribute) (*Route, error) {
	var method Method
	switch m, protected := strings.CutPrefix(attr.Name, "protect_"); {
	case protected:
		var err error
		if method, err = ParseMethod(m); err != nil {
			return nil, attrErrorf(attr, -1, "unknown HTTP method in protect directive: '%s'", m)
		}
	case attr.Name == "route":
		return nil, attrErrorf(attr, -1, "route(...) directives are not supported by the fallback parser")
	default:
		var err error
		if method, err = ParseMethod(attr.Name); err != nil {
			return nil, attrError(attr, -1, err)
		}
	}

	var (
		path      string
		hasPath   bool
		mediaType *MediaType
		data      string
	)
	for _, part := range splitArgs(attr.Args) {
		if !hasPath && len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			path, hasPath = unquoteLoose(part), true
			continue
		}
		if val, ok := namedValue(part, "format"); ok {
			mt, err := ParseMediaType(val)
			if err != nil {
				return nil, attrError(attr, -1, err)
			}
			mediaType = mt
			continue
		}
		if val, ok := namedValue(part, "data"); ok {
			data = trimAngleBrackets(val)
		}
	}
	if !hasPath {
		return nil, attrErrorf(attr, -1, "expected at least 1 positional argument")
	}

	tmpl, err := ParseTemplate(path)
	if err != nil {
		return nil, attrError(attr, -1, err)
	}
	return &Route{Method: method, Template: tmpl, MediaType: mediaType, DataParam: data}, nil
}

// splitArgs splits s on commas outside double quotes, honouring backslash
// escapes. Parts are trimmed and a trailing empty part is dropped.
func splitArgs(s string) []string {
	var (
		parts    []string
		current  strings.Builder
		inQuotes bool
		escape   bool
	)
	for _, c := range s {
		switch {
		case escape:
			escape = false
		case c == '\\':
			escape = true
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(c)
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

// namedValue extracts the value of a `name = "value"` part.
func namedValue(part, name string) (string, bool) {
	rest, ok := strings.CutPrefix(part, name)
	if !ok {
		return "", false
	}
	rest, ok = strings.CutPrefix(strings.TrimSpace(rest), "=")
	if !ok {
		return "", false
	}
	return strings.Trim(strings.TrimSpace(rest), `"'`), true
}

func unquoteLoose(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return strings.Trim(s, `"`)
}
