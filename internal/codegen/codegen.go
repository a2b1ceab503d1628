// Package codegen writes the Go file that documents a package's annotated
// handlers at run time.
package codegen

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	"github.com/Zachacious/go-routedoc/internal/config"
	"github.com/Zachacious/go-routedoc/internal/model"
	"github.com/Zachacious/go-routedoc/routedoc"
)

// fixedImports are always imported by the generated file.
var fixedImports = map[string]bool{
	"github.com/getkin/kin-openapi/openapi3":     true,
	"github.com/Zachacious/go-routedoc/route":    true,
	"github.com/Zachacious/go-routedoc/routedoc": true,
}

type importSpec struct {
	Name string
	Path string
}

type argData struct {
	Name string
	Expr string
}

type handlerData struct {
	Func        string
	Name        string
	RouteVar    string
	HandlerFunc string
	RouteName   string
	RouteArgs   string
	OperationID string
	Title       string
	Description string
	Tags        []string
	Deprecated  bool
	Skip        bool
	Ignore      []string
	Args        []argData
	Responses   string
}

type setData struct {
	Name     string
	Ident    string
	Handlers []*handlerData
}

type fileData struct {
	Package  string
	Imports  []importSpec
	JSONPath string
	Info     string
	Schemes  []string
	Handlers []*handlerData
	Sets     []setData
}

// Generate renders the generated file for m. Every route set in cfg gets a
// Spec, an Endpoints and a Group function.
func Generate(m *model.APIModel, cfg *config.Config) ([]byte, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	data, err := buildFileData(m, cfg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	filename := filepath.Join(m.Dir, cfg.Output)
	src, err := imports.Process(filename, buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return src, nil
}

// Write generates the file and writes it into the package directory. It
// returns the path written.
func Write(m *model.APIModel, cfg *config.Config) (string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	src, err := Generate(m, cfg)
	if err != nil {
		return "", err
	}
	out := filepath.Join(m.Dir, cfg.Output)
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func buildFileData(m *model.APIModel, cfg *config.Config) (*fileData, error) {
	data := &fileData{
		Package:  m.PkgName,
		JSONPath: cfg.JSONPath,
		Info:     infoLiteral(cfg.Info),
	}
	if data.JSONPath == "" {
		data.JSONPath = routedoc.DefaultJSONPath
	}
	for _, p := range m.ImportPaths() {
		if fixedImports[p] {
			continue
		}
		data.Imports = append(data.Imports, importSpec{Name: m.Imports[p], Path: p})
	}
	schemes := cfg.Schemes()
	for _, name := range cfg.SchemeNames() {
		data.Schemes = append(data.Schemes,
			fmt.Sprintf("g.AddSecurityScheme(%q, %s)", name, schemeLiteral(schemes[name].Value)))
	}

	byFunc := make(map[string]*handlerData)
	idents := make(map[string]string)
	for _, set := range cfg.RouteSets {
		ident := exportedIdent(set.Name)
		if prev, ok := idents[ident]; ok {
			return nil, fmt.Errorf("route sets %q and %q generate the same name %s", prev, set.Name, ident)
		}
		idents[ident] = set.Name

		sd := setData{Name: set.Name, Ident: ident}
		names := set.Handlers
		if len(names) == 0 {
			for _, h := range m.Handlers {
				names = append(names, h.Func)
			}
		}
		for _, name := range names {
			hd, ok := byFunc[name]
			if !ok {
				h := m.Handler(name)
				if h == nil {
					return nil, fmt.Errorf("route set %q lists unknown handler %q", set.Name, name)
				}
				hd = newHandlerData(h)
				byFunc[name] = hd
				data.Handlers = append(data.Handlers, hd)
			}
			sd.Handlers = append(sd.Handlers, hd)
		}
		data.Sets = append(data.Sets, sd)
	}
	return data, nil
}

func newHandlerData(h *model.Handler) *handlerData {
	attr := h.Route.Attribute()
	hd := &handlerData{
		Func:        h.Func,
		Name:        h.Name,
		RouteVar:    "routedoc" + h.Func + "Route",
		HandlerFunc: "routedoc" + h.Func + "Handler",
		RouteName:   attr.Name,
		RouteArgs:   attr.Args,
		OperationID: h.OpenAPI.OperationID,
		Title:       h.Doc.Title,
		Description: h.Doc.Description,
		Tags:        h.OpenAPI.Tags,
		Deprecated:  h.OpenAPI.Deprecated,
		Skip:        h.OpenAPI.Skip,
		Ignore:      h.OpenAPI.Ignore,
	}
	for _, p := range h.Params {
		hd.Args = append(hd.Args, argData{Name: p.Name, Expr: p.Expr})
	}
	switch len(h.Results) {
	case 0:
	case 1:
		hd.Responses = responsesOf(h.Results[0].Expr)
	default:
		parts := make([]string, len(h.Results))
		for i, r := range h.Results {
			parts[i] = responsesOf(r.Expr)
		}
		hd.Responses = "routedoc.Results(" + strings.Join(parts, ", ") + ")"
	}
	return hd
}

func responsesOf(expr string) string {
	return "routedoc.ResponsesOf[" + expr + "]()"
}

// exportedIdent turns a route set name into an exported Go identifier:
// "public api" becomes "PublicApi" and "API" stays "API".
func exportedIdent(name string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	ident := b.String()
	if ident == "" || !unicode.IsLetter([]rune(ident)[0]) {
		ident = "Set" + ident
	}
	return ident
}

// literal renders a composite literal from non-empty string fields.
func literal(typ string, fields ...string) string {
	var parts []string
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] != "" {
			parts = append(parts, fields[i]+": "+strconv.Quote(fields[i+1]))
		}
	}
	return "&" + typ + "{" + strings.Join(parts, ", ") + "}"
}

func infoLiteral(info *openapi3.Info) string {
	if info == nil {
		return ""
	}
	fields := []string{
		"Title", info.Title,
		"Description", info.Description,
		"TermsOfService", info.TermsOfService,
		"Version", info.Version,
	}
	lit := literal("openapi3.Info", fields...)
	var extra []string
	if c := info.Contact; c != nil {
		extra = append(extra, "Contact: "+literal("openapi3.Contact", "Name", c.Name, "URL", c.URL, "Email", c.Email))
	}
	if l := info.License; l != nil {
		extra = append(extra, "License: "+literal("openapi3.License", "Name", l.Name, "URL", l.URL))
	}
	return withFields(lit, extra...)
}

// withFields appends already rendered fields to a composite literal.
func withFields(lit string, fields ...string) string {
	if len(fields) == 0 {
		return lit
	}
	body := strings.TrimSuffix(lit, "}")
	if !strings.HasSuffix(body, "{") {
		body += ", "
	}
	return body + strings.Join(fields, ", ") + "}"
}

func schemeLiteral(s *openapi3.SecurityScheme) string {
	lit := literal("openapi3.SecurityScheme",
		"Type", s.Type,
		"Description", s.Description,
		"Name", s.Name,
		"In", s.In,
		"Scheme", s.Scheme,
		"BearerFormat", s.BearerFormat,
		"OpenIdConnectUrl", s.OpenIdConnectUrl,
	)
	if s.Flows == nil {
		return lit
	}
	return withFields(lit, "Flows: "+flowsLiteral(s.Flows))
}

func flowsLiteral(f *openapi3.OAuthFlows) string {
	var fields []string
	for _, flow := range []struct {
		name string
		flow *openapi3.OAuthFlow
	}{
		{"Implicit", f.Implicit},
		{"Password", f.Password},
		{"ClientCredentials", f.ClientCredentials},
		{"AuthorizationCode", f.AuthorizationCode},
	} {
		if flow.flow != nil {
			fields = append(fields, flow.name+": "+flowLiteral(flow.flow))
		}
	}
	return withFields("&openapi3.OAuthFlows{}", fields...)
}

func flowLiteral(f *openapi3.OAuthFlow) string {
	lit := literal("openapi3.OAuthFlow",
		"AuthorizationURL", f.AuthorizationURL,
		"TokenURL", f.TokenURL,
		"RefreshURL", f.RefreshURL,
	)
	scopes := make([]string, 0, len(f.Scopes))
	for _, name := range slices.Sorted(maps.Keys(f.Scopes)) {
		scopes = append(scopes, strconv.Quote(name)+": "+strconv.Quote(f.Scopes[name]))
	}
	return withFields(lit, "Scopes: openapi3.StringMap{"+strings.Join(scopes, ", ")+"}")
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

// importName returns the explicit name for an import when it differs from
// the last path element.
func importName(spec importSpec) string {
	if spec.Name == path.Base(spec.Path) {
		return ""
	}
	return spec.Name + " "
}

var fileTemplate = template.Must(template.New("routedoc").Funcs(template.FuncMap{
	"q":          strconv.Quote,
	"quoteList":  quoteList,
	"importName": importName,
}).Parse(fileSource))

const fileSource = `// Code generated by routedoc. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Zachacious/go-routedoc/route"
	"github.com/Zachacious/go-routedoc/routedoc"
{{- range .Imports}}
	{{importName .}}{{q .Path}}
{{- end}}
)

var (
{{- range .Handlers}}
	{{.RouteVar}} = route.MustParse({{q .RouteName}}, {{q .RouteArgs}})
{{- end}}
)

// RoutedocSettings returns the settings the generated Spec and Group
// functions use when given nil.
func RoutedocSettings() *routedoc.Settings {
	settings := routedoc.NewSettings()
	settings.JSONPath = {{q .JSONPath}}
	return settings
}

func routedocSetup(g *routedoc.Generator) {
{{- if .Info}}
	g.SetInfo({{.Info}})
{{- end}}
{{- range .Schemes}}
	{{.}}
{{- end}}
}
{{range .Handlers}}
func {{.HandlerFunc}}() routedoc.Handler {
	return routedoc.Handler{
		Name:  {{q .Name}},
		Route: {{.RouteVar}},
{{- if .OperationID}}
		OperationID:         {{q .OperationID}},
		ExplicitOperationID: true,
{{- end}}
{{- if .Title}}
		Title: {{q .Title}},
{{- end}}
{{- if .Description}}
		Description: {{q .Description}},
{{- end}}
{{- if .Tags}}
		Tags: {{quoteList .Tags}},
{{- end}}
{{- if .Deprecated}}
		Deprecated: true,
{{- end}}
{{- if .Skip}}
		Skip: true,
{{- end}}
{{- if .Ignore}}
		Ignore: {{quoteList .Ignore}},
{{- end}}
{{- if .Args}}
		Args: []routedoc.Arg{
{{- range .Args}}
			routedoc.ArgOf[{{.Expr}}]({{q .Name}}),
{{- end}}
		},
{{- end}}
{{- if .Responses}}
		Responses: {{.Responses}},
{{- end}}
	}
}
{{end}}
{{- range .Sets}}
// {{.Ident}}Spec builds the OpenAPI document of the {{q .Name}} route set.
func {{.Ident}}Spec(settings *routedoc.Settings) (*openapi3.T, error) {
	if settings == nil {
		settings = RoutedocSettings()
	}
	g := routedoc.NewGenerator(settings)
	routedocSetup(g)
	for _, h := range []routedoc.Handler{
{{- range .Handlers}}
		{{.HandlerFunc}}(),
{{- end}}
	} {
		if err := g.AddHandler(h); err != nil {
			return nil, err
		}
	}
	return g.IntoOpenAPI()
}

// {{.Ident}}Endpoints lists the handlers of the {{q .Name}} route set.
func {{.Ident}}Endpoints() []routedoc.Endpoint {
	return []routedoc.Endpoint{
{{- range .Handlers}}
		{Route: {{.RouteVar}}, Name: {{q .Name}}, Handler: {{.Func}}},
{{- end}}
	}
}

// {{.Ident}}Group returns the {{q .Name}} route set ready for routedoc.Mount.
func {{.Ident}}Group(settings *routedoc.Settings) (routedoc.Group, error) {
	spec, err := {{.Ident}}Spec(settings)
	if err != nil {
		return routedoc.Group{}, err
	}
	return routedoc.Group{Endpoints: {{.Ident}}Endpoints(), Spec: spec}, nil
}
{{end}}`
