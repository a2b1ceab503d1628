package route

import (
	"fmt"
	"mime"
	"strings"
)

// MediaType is the optional format constraint of a route.
type MediaType struct {
	Type    string
	Subtype string
	Params  map[string]string
}

var mediaShorthands = map[string]string{
	"any":          "*/*",
	"binary":       "application/octet-stream",
	"bytes":        "application/octet-stream",
	"css":          "text/css; charset=utf-8",
	"csv":          "text/csv; charset=utf-8",
	"event-stream": "text/event-stream",
	"form":         "application/x-www-form-urlencoded",
	"form-data":    "multipart/form-data",
	"gif":          "image/gif",
	"html":         "text/html; charset=utf-8",
	"javascript":   "application/javascript",
	"jpeg":         "image/jpeg",
	"json":         "application/json",
	"msgpack":      "application/msgpack",
	"pdf":          "application/pdf",
	"plain":        "text/plain; charset=utf-8",
	"png":          "image/png",
	"svg":          "image/svg+xml",
	"text":         "text/plain; charset=utf-8",
	"webp":         "image/webp",
	"xml":          "text/xml; charset=utf-8",
}

// ParseMediaType accepts either a shorthand name ("json", "form", ...) or a
// full "type/subtype" media type with optional parameters.
func ParseMediaType(s string) (*MediaType, error) {
	raw := strings.TrimSpace(s)
	if full, ok := mediaShorthands[strings.ToLower(raw)]; ok {
		raw = full
	} else if !strings.Contains(raw, "/") {
		return nil, fmt.Errorf("unknown media type: '%s'", s)
	}

	mt, params, err := mime.ParseMediaType(raw)
	if err != nil {
		return nil, fmt.Errorf("unknown media type: '%s'", s)
	}
	top, sub, ok := strings.Cut(mt, "/")
	if !ok || top == "" || sub == "" {
		return nil, fmt.Errorf("unknown media type: '%s'", s)
	}
	if len(params) == 0 {
		params = nil
	}
	return &MediaType{Type: top, Subtype: sub, Params: params}, nil
}

// Essence is "type/subtype" without parameters, as used for OpenAPI content keys.
func (m *MediaType) Essence() string {
	return m.Type + "/" + m.Subtype
}

func (m *MediaType) String() string {
	if len(m.Params) == 0 {
		return m.Essence()
	}
	return mime.FormatMediaType(m.Essence(), m.Params)
}
