package routedoc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachacious/go-routedoc/route"
)

func finishedDoc(t *testing.T) *Generator {
	t.Helper()
	g := NewGenerator(nil)
	require.NoError(t, g.AddHandler(Handler{
		Name:  "ping",
		Route: route.MustParse("get", `"/ping"`),
	}))
	return g
}

func TestSpecHandler(t *testing.T) {
	doc, err := finishedDoc(t).IntoOpenAPI()
	require.NoError(t, err)
	h := SpecHandler(doc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "3.0.3", body["openapi"])
	assert.Contains(t, body["paths"], "/ping")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/openapi.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/openapi.json", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestSpecHandlerNilDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	SpecHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSpecYAMLHandler(t *testing.T) {
	doc, err := finishedDoc(t).IntoOpenAPI()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	SpecYAMLHandler(doc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(rec.Body.String(), "openapi: 3.0.3"), rec.Body.String())
	assert.Contains(t, rec.Body.String(), "/ping:")
}

func TestServe(t *testing.T) {
	doc, err := finishedDoc(t).IntoOpenAPI()
	require.NoError(t, err)

	mux := http.NewServeMux()
	Serve(mux, doc, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DefaultJSONPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	settings := NewSettings()
	settings.JSONPath = "/docs/spec.json"
	mux = http.NewServeMux()
	Serve(mux, doc, settings)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/spec.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
