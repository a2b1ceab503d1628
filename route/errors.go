package route

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// ParseError reports malformed or missing route directive syntax.
type ParseError struct {
	// Attr is the directive name, e.g. "get" or "protect_post".
	Attr string
	// Pos locates the directive in source, when known.
	Pos token.Position
	// Offset is the byte offset inside the argument text, or -1.
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "invalid %s attribute", e.Attr)
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func attrError(attr Attribute, offset int, err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.Attr == "" {
			pe.Attr = attr.Name
		}
		if !pe.Pos.IsValid() {
			pe.Pos = attr.Pos
		}
		return pe
	}
	return &ParseError{Attr: attr.Name, Pos: attr.Pos, Offset: offset, Err: err}
}

func attrErrorf(attr Attribute, offset int, format string, args ...any) *ParseError {
	return attrError(attr, offset, fmt.Errorf(format, args...))
}
