package routedoc

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachacious/go-routedoc/route"
)

type Filter struct {
	Name  string `json:"name"`
	Limit *int   `json:"limit"`
	Sort  string `json:"sort,omitempty"`
}

type apiKey struct{}

func (apiKey) RequestInput(*Generator, string, bool) (RequestInput, error) {
	scheme := openapi3.NewSecurityScheme().WithType("apiKey").WithIn("header").WithName("X-API-Key")
	return SecurityInput("ApiKey", scheme, openapi3.NewSecurityRequirement().Authenticate("ApiKey")), nil
}

type tenant struct{}

func (tenant) RequestInput(*Generator, string, bool) (RequestInput, error) {
	return ServerInput(&openapi3.Server{URL: "https://{tenant}.example.com"}), nil
}

type slug string

func (slug) PathParameter(_ *Generator, name string) (*openapi3.Parameter, error) {
	p := openapi3.NewPathParameter(name).WithDescription("A URL friendly name.")
	p.Schema = openapi3.NewStringSchema().WithPattern("^[a-z0-9-]+$").NewRef()
	return p, nil
}

func buildOperation(t *testing.T, h Handler) (*openapi3.T, *openapi3.Operation) {
	t.Helper()
	g := NewGenerator(nil)
	require.NoError(t, g.AddHandler(h))
	doc, err := g.IntoOpenAPI()
	require.NoError(t, err)
	item := doc.Paths.Value(h.Route.OpenAPIPath())
	require.NotNil(t, item, "path %s", h.Route.OpenAPIPath())
	op := item.GetOperation(h.Route.Method.String())
	require.NotNil(t, op)
	return doc, op
}

func TestAddHandlerPathAndQuery(t *testing.T) {
	_, op := buildOperation(t, Handler{
		Name:        "users.GetUser",
		Route:       route.MustParse("get", `"/user/<id>?<verbose>&<lang>"`),
		Title:       "Get a user",
		Description: "Returns one user.",
		Tags:        []string{"users"},
		Args: []Arg{
			ArgOf[int]("id"),
			ArgOf[string]("verbose"),
			ArgOf[*string]("lang"),
		},
		Responses: ResponsesOf[JSON[User]](),
	})

	assert.Equal(t, "users_GetUser", op.OperationID)
	assert.Equal(t, "Get a user", op.Summary)
	assert.Equal(t, "Returns one user.", op.Description)
	assert.Equal(t, []string{"users"}, op.Tags)

	id := op.Parameters.GetByInAndName("path", "id")
	require.NotNil(t, id)
	assert.True(t, id.Required)
	assert.True(t, id.Schema.Value.Type.Is(openapi3.TypeInteger))

	verbose := op.Parameters.GetByInAndName("query", "verbose")
	require.NotNil(t, verbose)
	assert.True(t, verbose.Required)

	lang := op.Parameters.GetByInAndName("query", "lang")
	require.NotNil(t, lang)
	assert.False(t, lang.Required)

	ok := op.Responses.Status(http.StatusOK)
	require.NotNil(t, ok)
	assert.Equal(t, "#/components/schemas/User", ok.Value.Content.Get("application/json").Schema.Ref)
}

func TestAddHandlerNestedForm(t *testing.T) {
	_, op := buildOperation(t, Handler{
		Name:  "users.List",
		Route: route.MustParse("get", `"/users?<filter>"`),
		Args:  []Arg{ArgOf[Filter]("filter")},
	})

	require.Len(t, op.Parameters, 3)
	names := []string{op.Parameters[0].Value.Name, op.Parameters[1].Value.Name, op.Parameters[2].Value.Name}
	assert.Equal(t, []string{"limit", "name", "sort"}, names)
	assert.True(t, op.Parameters.GetByInAndName("query", "name").Required)
	assert.False(t, op.Parameters.GetByInAndName("query", "limit").Required)
	sort := op.Parameters.GetByInAndName("query", "sort")
	assert.True(t, sort.Required, "omitempty does not make a form field optional")
	assert.False(t, sort.Schema.Value.Nullable)

	_, optional := buildOperation(t, Handler{
		Name:  "users.List",
		Route: route.MustParse("get", `"/users?<filter>"`),
		Args:  []Arg{ArgOf[*Filter]("filter")},
	})
	for _, p := range optional.Parameters {
		assert.False(t, p.Value.Required, p.Value.Name)
	}
}

func TestAddHandlerRequestBody(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		_, op := buildOperation(t, Handler{
			Name:  "users.Create",
			Route: route.MustParse("post", `"/users", data = "<user>"`),
			Args:  []Arg{ArgOf[User]("user")},
		})
		require.NotNil(t, op.RequestBody)
		body := op.RequestBody.Value
		assert.True(t, body.Required)
		media := body.Content.Get("application/json")
		require.NotNil(t, media)
		assert.Equal(t, "#/components/schemas/User", media.Schema.Ref)
	})

	t.Run("optional", func(t *testing.T) {
		_, op := buildOperation(t, Handler{
			Name:  "users.Create",
			Route: route.MustParse("post", `"/users", data = "<user>"`),
			Args:  []Arg{ArgOf[*User]("user")},
		})
		assert.False(t, op.RequestBody.Value.Required)
	})

	t.Run("raw bytes and strings", func(t *testing.T) {
		for _, arg := range []Arg{ArgOf[string]("raw"), ArgOf[[]byte]("raw")} {
			_, op := buildOperation(t, Handler{
				Name:  "upload",
				Route: route.MustParse("put", `"/upload", data = "<raw>"`),
				Args:  []Arg{arg},
			})
			assert.NotNil(t, op.RequestBody.Value.Content.Get("application/octet-stream"), arg.Type.String())
		}
	})

	t.Run("format rekeys content", func(t *testing.T) {
		_, op := buildOperation(t, Handler{
			Name:  "users.Import",
			Route: route.MustParse("post", `"/users/import", format = "msgpack", data = "<user>"`),
			Args:  []Arg{ArgOf[User]("user")},
		})
		content := op.RequestBody.Value.Content
		require.Len(t, content, 1)
		require.NotNil(t, content["application/msgpack"])
		assert.Equal(t, "#/components/schemas/User", content["application/msgpack"].Schema.Ref)
	})

	t.Run("form body", func(t *testing.T) {
		_, op := buildOperation(t, Handler{
			Name:  "users.Upload",
			Route: route.MustParse("post", `"/users/form", data = "<user>"`),
			Args:  []Arg{ArgOf[Form[User]]("user")},
		})
		assert.NotNil(t, op.RequestBody.Value.Content.Get("multipart/form-data"))
	})
}

func TestAddHandlerRequestInputs(t *testing.T) {
	doc, op := buildOperation(t, Handler{
		Name:  "admin.Stats",
		Route: route.MustParse("get", `"/admin/stats"`),
		Args: []Arg{
			ArgOf[context.Context]("ctx"),
			ArgOf[*http.Request]("req"),
			ArgOf[apiKey]("key"),
			ArgOf[Accept]("accept"),
			ArgOf[*ContentType]("contentType"),
			ArgOf[tenant]("tenant"),
		},
	})

	accept := op.Parameters.GetByInAndName("header", "Accept")
	require.NotNil(t, accept)
	assert.True(t, accept.Required)
	contentType := op.Parameters.GetByInAndName("header", "Content-Type")
	require.NotNil(t, contentType)
	assert.False(t, contentType.Required)
	assert.Len(t, op.Parameters, 2)

	require.NotNil(t, op.Security)
	require.Len(t, *op.Security, 1)
	assert.Contains(t, (*op.Security)[0], "ApiKey")
	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.SecuritySchemes, "ApiKey")

	require.NotNil(t, op.Servers)
	require.Len(t, *op.Servers, 1)
	assert.Equal(t, "https://{tenant}.example.com", (*op.Servers)[0].URL)
}

func TestAddHandlerPathDocumenterAndSegments(t *testing.T) {
	_, op := buildOperation(t, Handler{
		Name:  "files.Get",
		Route: route.MustParse("get", `"/files/<name>/<rest..>"`),
		Args:  []Arg{ArgOf[slug]("name"), ArgOf[string]("rest")},
	})

	name := op.Parameters.GetByInAndName("path", "name")
	require.NotNil(t, name)
	assert.True(t, name.Required)
	assert.Equal(t, "A URL friendly name.", name.Description)
	assert.Equal(t, "^[a-z0-9-]+$", name.Schema.Value.Pattern)

	rest := op.Parameters.GetByInAndName("path", "rest")
	require.NotNil(t, rest)
	assert.True(t, rest.Required)
}

func TestAddHandlerOpenAPIAttributes(t *testing.T) {
	_, op := buildOperation(t, Handler{
		Name:                "users.Legacy",
		Route:               route.MustParse("get", `"/legacy/<id>?<debug>"`),
		OperationID:         "legacyLookup",
		ExplicitOperationID: true,
		Deprecated:          true,
		Ignore:              []string{"debug"},
		Args:                []Arg{ArgOf[int]("id")},
	})
	assert.Equal(t, "legacyLookup", op.OperationID)
	assert.True(t, op.Deprecated)
	assert.Nil(t, op.Parameters.GetByInAndName("query", "debug"))
	assert.NotNil(t, op.Responses.Status(http.StatusOK))
}

func TestAddHandlerSkip(t *testing.T) {
	g := NewGenerator(nil)
	require.NoError(t, g.AddHandler(Handler{
		Name:  "internal.Health",
		Route: route.MustParse("get", `"/health"`),
		Skip:  true,
	}))
	doc, err := g.IntoOpenAPI()
	require.NoError(t, err)
	assert.Nil(t, doc.Paths.Value("/health"))
}

func TestAddHandlerErrors(t *testing.T) {
	t.Run("unbound path parameter", func(t *testing.T) {
		g := NewGenerator(nil)
		err := g.AddHandler(Handler{
			Name:  "users.Get",
			Route: route.MustParse("get", `"/users/<id>"`),
		})
		var handlerErr *HandlerError
		require.True(t, errors.As(err, &handlerErr))
		assert.Equal(t, "users.Get", handlerErr.Handler)
		assert.Contains(t, err.Error(), "path parameter <id> has no matching handler argument")
	})

	t.Run("duplicate operation", func(t *testing.T) {
		g := NewGenerator(nil)
		h := Handler{Name: "a", Route: route.MustParse("get", `"/x"`)}
		require.NoError(t, g.AddHandler(h))
		h.Name = "b"
		err := g.AddHandler(h)
		var dup *DuplicateOperationError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "a", dup.Existing)
	})

	t.Run("schema failure", func(t *testing.T) {
		g := NewGenerator(nil)
		err := g.AddHandler(Handler{
			Name:  "events.Post",
			Route: route.MustParse("post", `"/events", data = "<fn>"`),
			Args:  []Arg{ArgOf[func()]("fn")},
		})
		var schemaErr *SchemaGenerationError
		require.True(t, errors.As(err, &schemaErr))
	})
}

func TestAddHandlerRegistryCapabilities(t *testing.T) {
	settings := NewSettings()
	Register[Celsius](settings.Types, Capabilities{
		FormParameter: func(_ *Generator, name string, required bool) (*openapi3.Parameter, error) {
			p := openapi3.NewQueryParameter(name).WithRequired(required).WithDescription("Degrees Celsius.")
			p.Schema = openapi3.NewFloat64Schema().NewRef()
			return p, nil
		},
	})
	g := NewGenerator(settings)
	require.NoError(t, g.AddHandler(Handler{
		Name:  "weather.Above",
		Route: route.MustParse("get", `"/weather?<min>"`),
		Args:  []Arg{ArgOf[*Celsius]("min")},
	}))
	doc, err := g.IntoOpenAPI()
	require.NoError(t, err)
	p := doc.Paths.Value("/weather").Get.Parameters.GetByInAndName("query", "min")
	require.NotNil(t, p)
	assert.Equal(t, "Degrees Celsius.", p.Description)
	assert.False(t, p.Required)
}

func TestAddHandlerStaticCapabilities(t *testing.T) {
	_, op := buildOperation(t, Handler{
		Name:  "orders.Get",
		Route: route.MustParse("get", `"/orders/<id>?<expand>"`),
		Args: []Arg{
			{Name: "id", Static: &Capabilities{Schema: openapi3.NewUUIDSchema()}},
			{Name: "expand", Optional: true, Static: &Capabilities{Schema: openapi3.NewBoolSchema()}},
		},
	})
	id := op.Parameters.GetByInAndName("path", "id")
	require.NotNil(t, id)
	assert.Equal(t, "uuid", id.Schema.Value.Format)
	expand := op.Parameters.GetByInAndName("query", "expand")
	require.NotNil(t, expand)
	assert.False(t, expand.Required)
}

func TestGeneratedDocumentValidates(t *testing.T) {
	g := NewGenerator(nil)
	require.NoError(t, g.AddHandler(Handler{
		Name:  "teams.Update",
		Route: route.MustParse("put", `"/teams/<id>?<filter>"`),
		Args: []Arg{
			ArgOf[int]("id"),
			ArgOf[Filter]("filter"),
			ArgOf[JSON[Team]]("team"),
		},
		Responses: ResponsesOf[JSON[Page[User]]](),
	}))
	g.RegisterSchema("Token", openapi3.NewStringSchema())
	doc, err := g.IntoOpenAPI()
	require.NoError(t, err)

	require.NoError(t, doc.Validate(context.Background()))

	op := doc.Paths.Value("/teams/{id}").Put
	body := op.RequestBody.Value.Content.Get("application/json").Schema
	assert.Equal(t, "#/components/schemas/Team", body.Ref)
	assert.Same(t, g.Schema("Team"), body.Value)
}
