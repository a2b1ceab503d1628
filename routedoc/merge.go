package routedoc

import (
	"errors"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Merger combines documents generated for separately mounted route groups.
// The base document wins every conflict.
type Merger struct {
	Logger *slog.Logger
}

// MergeSpecs merges fragment into base, prefixing every fragment path with
// prefix.
func MergeSpecs(base *openapi3.T, prefix string, fragment *openapi3.T) error {
	return (&Merger{}).Merge(base, prefix, fragment)
}

// Merge merges fragment into base, prefixing every fragment path with prefix.
func (m *Merger) Merge(base *openapi3.T, prefix string, fragment *openapi3.T) error {
	if base == nil {
		return errors.New("routedoc: cannot merge into a nil document")
	}
	if fragment == nil {
		return nil
	}

	base.OpenAPI = MergeString(base.OpenAPI, fragment.OpenAPI)
	base.Info = mergeInfo(base.Info, fragment.Info)
	base.Servers = MergeSlice(base.Servers, fragment.Servers)
	base.Security = MergeSlice(base.Security, fragment.Security)
	base.Tags = MergeTags(base.Tags, fragment.Tags)
	base.ExternalDocs = MergeOption(base.ExternalDocs, fragment.ExternalDocs)
	base.Extensions = MergeMap(base.Extensions, fragment.Extensions)
	base.Components = mergeComponents(base.Components, fragment.Components)

	if fragment.Paths.Len() == 0 {
		return nil
	}
	if base.Paths == nil {
		base.Paths = openapi3.NewPaths()
	}
	return m.mergePaths(base.Paths, prefix, fragment.Paths)
}

// MergeString returns a unless it is empty.
func MergeString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// MergeOption returns a unless it is nil.
func MergeOption[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}

// MergeSlice returns the elements of a followed by those of b.
func MergeSlice[S ~[]E, E any](a, b S) S {
	if len(b) == 0 {
		return a
	}
	return append(slices.Clip(a), b...)
}

// MergeMap returns the union of a and b. Keys of a win.
func MergeMap[M ~map[K]V, K comparable, V any](a, b M) M {
	if len(b) == 0 {
		return a
	}
	if a == nil {
		a = make(M, len(b))
	}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			a[k] = v
		}
	}
	return a
}

// MergeTags merges tags by name. Tags of a win; tags only in b are appended
// in their order.
func MergeTags(a, b openapi3.Tags) openapi3.Tags {
	for _, tag := range b {
		if tag == nil || a.Get(tag.Name) != nil {
			continue
		}
		a = append(a, tag)
	}
	return a
}

// MergePaths adds the paths of fragment to base under prefix.
func MergePaths(base *openapi3.Paths, prefix string, fragment *openapi3.Paths) error {
	return (&Merger{}).mergePaths(base, prefix, fragment)
}

var pathParamPattern = regexp.MustCompile(`\{[^}]*\}`)

// templateKey blanks out parameter names so equivalent templates compare equal.
func templateKey(path string) string {
	return pathParamPattern.ReplaceAllString(path, "{}")
}

func (m *Merger) mergePaths(base *openapi3.Paths, prefix string, fragment *openapi3.Paths) error {
	logger := m.logger()
	prefix = strings.TrimSuffix(prefix, "/")

	templates := make(map[string]string, base.Len())
	for path := range base.Map() {
		templates[templateKey(path)] = path
	}

	paths := make([]string, 0, fragment.Len())
	for path := range fragment.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := fragment.Value(path)
		key := prefix + path
		existing := base.Value(key)
		if existing == nil {
			if other, ok := templates[templateKey(key)]; ok && other != key {
				logger.Warn("path differs from an existing path only in parameter names",
					"path", key, "existing", other)
			} else {
				templates[templateKey(key)] = key
			}
			base.Set(key, copyPathItem(item))
			continue
		}
		if item == nil {
			continue
		}

		existing.Summary = MergeString(existing.Summary, item.Summary)
		existing.Description = MergeString(existing.Description, item.Description)
		existing.Servers = MergeSlice(existing.Servers, item.Servers)
		for _, p := range item.Parameters {
			if p.Value != nil && existing.Parameters.GetByInAndName(p.Value.In, p.Value.Name) != nil {
				continue
			}
			existing.Parameters = append(existing.Parameters, p)
		}
		existing.Extensions = MergeMap(existing.Extensions, item.Extensions)

		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			if existing.GetOperation(method) != nil {
				logger.Debug("operation dropped during merge", "path", key, "method", method)
				continue
			}
			existing.SetOperation(method, ops[method])
		}
	}
	return nil
}

// copyPathItem returns a copy of item whose slices and maps later merges can
// grow without touching item.
func copyPathItem(item *openapi3.PathItem) *openapi3.PathItem {
	if item == nil {
		return &openapi3.PathItem{}
	}
	c := *item
	c.Servers = slices.Clip(c.Servers)
	c.Parameters = slices.Clip(c.Parameters)
	c.Extensions = maps.Clone(c.Extensions)
	return &c
}

func (m *Merger) logger() *slog.Logger {
	if m == nil || m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

func mergeInfo(a, b *openapi3.Info) *openapi3.Info {
	if b == nil {
		return a
	}
	if a == nil {
		a = &openapi3.Info{}
	}
	a.Title = MergeString(a.Title, b.Title)
	a.Description = MergeString(a.Description, b.Description)
	a.TermsOfService = MergeString(a.TermsOfService, b.TermsOfService)
	a.Version = MergeString(a.Version, b.Version)
	a.Contact = MergeOption(a.Contact, b.Contact)
	a.License = MergeOption(a.License, b.License)
	a.Extensions = MergeMap(a.Extensions, b.Extensions)
	return a
}

func mergeComponents(a, b *openapi3.Components) *openapi3.Components {
	if b == nil {
		return a
	}
	if a == nil {
		a = &openapi3.Components{}
	}
	a.Schemas = MergeMap(a.Schemas, b.Schemas)
	a.Parameters = MergeMap(a.Parameters, b.Parameters)
	a.Headers = MergeMap(a.Headers, b.Headers)
	a.RequestBodies = MergeMap(a.RequestBodies, b.RequestBodies)
	a.Responses = MergeMap(a.Responses, b.Responses)
	a.SecuritySchemes = MergeMap(a.SecuritySchemes, b.SecuritySchemes)
	a.Examples = MergeMap(a.Examples, b.Examples)
	a.Links = MergeMap(a.Links, b.Links)
	a.Callbacks = MergeMap(a.Callbacks, b.Callbacks)
	a.Extensions = MergeMap(a.Extensions, b.Extensions)
	return a
}
