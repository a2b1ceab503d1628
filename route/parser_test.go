package route

import (
	"errors"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredParse(t *testing.T) {
	t.Run("method directive with query", func(t *testing.T) {
		r, err := Parse(Attribute{Name: "get", Args: `"/user/<id>?<q>"`})
		require.NoError(t, err)
		assert.Equal(t, Get, r.Method)
		assert.Equal(t, []string{"id"}, r.PathParams())
		assert.Equal(t, []string{"q"}, r.QueryParams())
		assert.Nil(t, r.MediaType)
		assert.Empty(t, r.DataParam)
	})

	t.Run("format and data", func(t *testing.T) {
		r, err := Parse(Attribute{Name: "post", Args: `"/users", format = "json", data = "<user>"`})
		require.NoError(t, err)
		assert.Equal(t, Post, r.Method)
		require.NotNil(t, r.MediaType)
		assert.Equal(t, "application/json", r.MediaType.Essence())
		assert.Equal(t, "user", r.DataParam)
	})

	t.Run("protect prefix", func(t *testing.T) {
		r, err := Parse(Attribute{Name: "protect_delete", Args: `"/users/<id>"`})
		require.NoError(t, err)
		assert.Equal(t, Delete, r.Method)
	})

	t.Run("generic route form", func(t *testing.T) {
		r, err := Parse(Attribute{Name: "route", Args: `PATCH, path = "/users/<id>", data = "<patch>"`})
		require.NoError(t, err)
		assert.Equal(t, Patch, r.Method)
		assert.Equal(t, "/users/{id}", r.OpenAPIPath())
		assert.Equal(t, "patch", r.DataParam)
	})

	t.Run("unknown named fields are ignored", func(t *testing.T) {
		r, err := Parse(Attribute{Name: "get", Args: `"/", rank = 2`})
		require.NoError(t, err)
		assert.Equal(t, "/", r.Template.String())
	})

	t.Run("raw string path", func(t *testing.T) {
		r, err := Parse(Attribute{Name: "get", Args: "`/files/<path..>`"})
		require.NoError(t, err)
		multi, ok := r.PathMultiParam()
		assert.True(t, ok)
		assert.Equal(t, "path", multi)
	})
}

func TestStructuredParseErrors(t *testing.T) {
	tests := []struct {
		name string
		attr Attribute
		want string
	}{
		{"unknown method", Attribute{Name: "fetch", Args: `"/"`}, "unknown HTTP method: 'fetch'"},
		{"unknown protect method", Attribute{Name: "protect_fetch", Args: `"/"`}, "unknown HTTP method in protect directive: 'fetch'"},
		{"zero arguments", Attribute{Name: "get", Args: ``}, "expected at least 1 positional argument"},
		{"named first", Attribute{Name: "get", Args: `format = "json"`}, "expected at least 1 positional argument"},
		{"bad path", Attribute{Name: "get", Args: `"users"`}, "must start with '/'"},
		{"path not a string", Attribute{Name: "get", Args: `users`}, "expected a path string"},
		{"unknown media type", Attribute{Name: "get", Args: `"/", format = "nope"`}, "unknown media type: 'nope'"},
		{"duplicate field", Attribute{Name: "get", Args: `"/", data = "<a>", data = "<b>"`}, "duplicate field `data`"},
		{"extra positional", Attribute{Name: "get", Args: `"/", "/other"`}, "unexpected positional argument"},
		{"route with path first", Attribute{Name: "route", Args: `"/users"`}, "expected an HTTP method but found path"},
		{"route missing path", Attribute{Name: "route", Args: `GET`}, "missing field `path`"},
		{"route zero arguments", Attribute{Name: "route", Args: ``}, "expected at least 1 positional argument"},
		{"unterminated string", Attribute{Name: "get", Args: `"/users`}, "literal not terminated"},
		{"missing comma", Attribute{Name: "get", Args: `"/" data = "<a>"`}, "expected ','"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.attr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.attr.Name, pe.Attr)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	pos := token.Position{Filename: "users.go", Line: 12, Column: 1}
	_, err := Parse(Attribute{Name: "get", Args: `"/", format = "nope"`, Pos: pos})
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, pos, pe.Pos)
	assert.Equal(t, 5, pe.Offset)
	assert.Equal(t, "users.go:12:1: invalid get attribute at offset 5: unknown media type: 'nope'", err.Error())
}

func TestFallbackParse(t *testing.T) {
	r, err := Fallback.Parse(Attribute{Name: "get", Args: `"/user/<id>?<q>", format = "application/json", data = "<a>"`})
	require.NoError(t, err)
	assert.Equal(t, Get, r.Method)
	assert.Equal(t, []string{"id"}, r.PathParams())
	assert.Equal(t, []string{"q"}, r.QueryParams())
	assert.Equal(t, "application/json", r.MediaType.Essence())
	assert.Equal(t, "a", r.DataParam)

	_, err = Fallback.Parse(Attribute{Name: "route", Args: `GET, path = "/"`})
	require.Error(t, err)

	_, err = Fallback.Parse(Attribute{Name: "get", Args: `format = "json"`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected at least 1 positional argument")

	_, err = Fallback.Parse(Attribute{Name: "get", Args: `"/", format = "nope"`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown media type: 'nope'")
}

func TestSplitArgs(t *testing.T) {
	parts := splitArgs(`"/user/<id>?<q>", format = "application/json", data = "<a>"`)
	assert.Equal(t, []string{`"/user/<id>?<q>"`, `format = "application/json"`, `data = "<a>"`}, parts)

	parts = splitArgs(`"/a,b", data = "<x>",`)
	assert.Equal(t, []string{`"/a,b"`, `data = "<x>"`}, parts)

	parts = splitArgs(`"/say\",hi"`)
	assert.Equal(t, []string{`"/say\",hi"`}, parts)
}

func TestParsersAgree(t *testing.T) {
	inputs := []Attribute{
		{Name: "get", Args: `"/"`},
		{Name: "get", Args: `"/user/<id>?<q>"`},
		{Name: "post", Args: `"/users", data = "<user>"`},
		{Name: "put", Args: `"/users/<id>", format = "json", data = "<user>"`},
		{Name: "delete", Args: `"/files/<path..>"`},
		{Name: "patch", Args: `"/a/<b>/c?<d>&e=f&<g..>"`},
		{Name: "protect_get", Args: `"/secret/<id>?<verbose>"`},
		{Name: "head", Args: `"/search?<q>&<page>", rank = 3`},
	}
	for _, attr := range inputs {
		t.Run(attr.String(), func(t *testing.T) {
			primary, err := Structured.Parse(attr)
			require.NoError(t, err)
			fallback, err := Fallback.Parse(attr)
			require.NoError(t, err)

			assert.Equal(t, primary.PathParams(), fallback.PathParams())
			assert.Equal(t, primary.QueryParams(), fallback.QueryParams())
			assert.Equal(t, primary, fallback)
		})
	}
}

func TestRouteRoundTrip(t *testing.T) {
	inputs := []Attribute{
		{Name: "get", Args: `"/user/<id>?<q>"`},
		{Name: "post", Args: `"/users", format = "json", data = "<user>"`},
		{Name: "route", Args: `PUT, path = "/files/<path..>"`},
	}
	for _, attr := range inputs {
		t.Run(attr.String(), func(t *testing.T) {
			first, err := Parse(attr)
			require.NoError(t, err)
			second, err := Parse(first.Attribute())
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestSplitAttribute(t *testing.T) {
	attr, ok := SplitAttribute(`get("/users/<id>", data = "<x>")`)
	require.True(t, ok)
	assert.Equal(t, "get", attr.Name)
	assert.Equal(t, `"/users/<id>", data = "<x>"`, attr.Args)

	_, ok = SplitAttribute("get")
	assert.False(t, ok)
	_, ok = SplitAttribute(`("/")`)
	assert.False(t, ok)
}

func TestIsRouteAttribute(t *testing.T) {
	for _, name := range []string{"get", "POST", "protect_patch", "route"} {
		assert.True(t, IsRouteAttribute(name), name)
	}
	for _, name := range []string{"openapi", "protect_route", "fetch"} {
		assert.False(t, IsRouteAttribute(name), name)
	}
}

func TestMustParse(t *testing.T) {
	assert.NotPanics(t, func() { MustParse("get", `"/ok"`) })
	assert.Panics(t, func() { MustParse("get", `"nope"`) })
}
