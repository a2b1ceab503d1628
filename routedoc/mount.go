package routedoc

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Zachacious/go-routedoc/route"
)

// Endpoint is one routable handler as listed by generated code.
type Endpoint struct {
	Route *route.Route
	// Name is the qualified handler name.
	Name    string
	Handler any
}

// Path returns the endpoint's path in route syntax.
func (e Endpoint) Path() string {
	if e.Route == nil || e.Route.Template == nil {
		return ""
	}
	return e.Route.Template.Path()
}

// Group is a set of endpoints together with their document.
type Group struct {
	Endpoints []Endpoint
	Spec      *openapi3.T
}

// Mount collects groups mounted under prefixes into one document.
type Mount struct {
	basePath  string
	merger    Merger
	spec      *openapi3.T
	endpoints []Endpoint
}

// NewMount starts an empty document served below basePath.
func NewMount(basePath string, settings *Settings) *Mount {
	if settings == nil {
		settings = NewSettings()
	}
	settings = settings.withDefaults()
	return &Mount{
		basePath: basePath,
		merger:   Merger{Logger: settings.Logger},
		spec: &openapi3.T{
			OpenAPI: OpenAPIVersion,
			Paths:   openapi3.NewPaths(),
		},
	}
}

// Add mounts group under prefix.
func (m *Mount) Add(prefix string, group Group) error {
	if err := m.merger.Merge(m.spec, prefix, group.Spec); err != nil {
		return err
	}
	for _, e := range group.Endpoints {
		m.endpoints = append(m.endpoints, prefixEndpoint(prefix, e))
	}
	return nil
}

func prefixEndpoint(prefix string, e Endpoint) Endpoint {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" || e.Route == nil || e.Route.Template == nil {
		return e
	}
	r := *e.Route
	t := *e.Route.Template
	segs := make([]route.Segment, 0, len(t.Segments)+strings.Count(prefix, "/"))
	for _, part := range strings.Split(strings.TrimPrefix(prefix, "/"), "/") {
		if part != "" {
			segs = append(segs, route.Segment{Value: part})
		}
	}
	t.Segments = append(segs, t.Segments...)
	r.Template = &t
	e.Route = &r
	return e
}

// Spec returns the merged document. A server for the base path is added when
// the document declares none.
func (m *Mount) Spec() *openapi3.T {
	if len(m.spec.Servers) == 0 && m.basePath != "" {
		m.spec.AddServer(&openapi3.Server{URL: m.basePath})
	}
	if m.spec.Info == nil {
		m.spec.Info = &openapi3.Info{Title: "API Documentation", Version: "1.0.0"}
	}
	return m.spec
}

// Endpoints returns every mounted endpoint with its prefixed route.
func (m *Mount) Endpoints() []Endpoint {
	return m.endpoints
}
