package route

import (
	"fmt"
	"strings"
)

// Method is an HTTP method a route can be declared for.
type Method string

const (
	Get     Method = "GET"
	Put     Method = "PUT"
	Post    Method = "POST"
	Delete  Method = "DELETE"
	Options Method = "OPTIONS"
	Head    Method = "HEAD"
	Trace   Method = "TRACE"
	Connect Method = "CONNECT"
	Patch   Method = "PATCH"
)

// Methods lists every supported method in declaration order.
var Methods = []Method{Get, Put, Post, Delete, Options, Head, Trace, Connect, Patch}

// ParseMethod resolves a method keyword, ignoring case.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown HTTP method: '%s'", s)
}

func (m Method) String() string { return string(m) }

// Keyword is the lowercase form used in route directives.
func (m Method) Keyword() string { return strings.ToLower(string(m)) }
