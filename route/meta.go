package route

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// ValueKind classifies a directive argument value.
type ValueKind int

const (
	StringValue ValueKind = iota
	IdentValue
	NumberValue
)

// Meta is one argument of a directive: either positional (Name is empty) or
// a `name = value` pair.
type Meta struct {
	Name   string
	Value  string
	Kind   ValueKind
	Offset int
}

// Positional reports whether the argument has no name.
func (m Meta) Positional() bool { return m.Name == "" }

// ParseMeta tokenizes a comma separated directive argument list such as
// `"/users/<id>", format = "json", data = "<body>"`.
func ParseMeta(args string) ([]Meta, error) {
	p := &metaParser{}
	p.s.Init(strings.NewReader(args))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanRawStrings
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = &ParseError{Offset: s.Pos().Offset, Err: errors.New(msg)}
		}
	}

	var metas []Meta
	p.next()
	for p.tok != scanner.EOF && p.err == nil {
		m, err := p.item()
		if err != nil {
			return nil, err
		}
		metas = append(metas, m)

		switch p.tok {
		case ',':
			p.next()
		case scanner.EOF:
		default:
			return nil, p.errorf("expected ',' but found %q", p.text)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return metas, nil
}

type metaParser struct {
	s    scanner.Scanner
	tok  rune
	text string
	off  int
	err  *ParseError
}

func (p *metaParser) next() {
	p.tok = p.s.Scan()
	p.text = p.s.TokenText()
	p.off = p.s.Position.Offset
}

func (p *metaParser) errorf(format string, args ...any) *ParseError {
	if p.err != nil {
		return p.err
	}
	return &ParseError{Offset: p.off, Err: fmt.Errorf(format, args...)}
}

func (p *metaParser) item() (Meta, error) {
	if p.tok != scanner.Ident {
		return p.value()
	}
	name, off := p.text, p.off
	p.next()
	if p.tok != '=' {
		return Meta{Value: name, Kind: IdentValue, Offset: off}, nil
	}
	p.next()
	m, err := p.value()
	if err != nil {
		return Meta{}, err
	}
	m.Name, m.Offset = name, off
	return m, nil
}

func (p *metaParser) value() (Meta, error) {
	m := Meta{Offset: p.off}
	switch p.tok {
	case scanner.String, scanner.RawString, scanner.Char:
		v, err := strconv.Unquote(p.text)
		if err != nil {
			return Meta{}, p.errorf("malformed string literal %s", p.text)
		}
		m.Value, m.Kind = v, StringValue
	case scanner.Int, scanner.Float:
		m.Value, m.Kind = p.text, NumberValue
	case scanner.Ident:
		m.Value, m.Kind = p.text, IdentValue
	case scanner.EOF:
		return Meta{}, p.errorf("unexpected end of arguments")
	default:
		return Meta{}, p.errorf("unexpected %q", p.text)
	}
	p.next()
	return m, nil
}
