package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var petstore = filepath.Join("..", "..", "internal", "analyzer", "testdata", "petstore")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPreviewJSON(t *testing.T) {
	target := filepath.Join(t.TempDir(), "openapi.json")
	out, err := execute(t, "preview", petstore, "-o", target, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Analysis complete. Found 6 handlers.")
	assert.Contains(t, out, "Successfully generated OpenAPI spec at: "+target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Contains(t, doc.Paths, "/pets")
	assert.Contains(t, doc.Paths["/pets/{id}"], "delete")
	assert.NotContains(t, doc.Paths, "/files/{path}")
}

func TestPreviewUnknownFormat(t *testing.T) {
	_, err := execute(t, "preview", petstore, "--format", "toml")
	assert.ErrorContains(t, err, `unknown format "toml"`)
}

func TestRoutes(t *testing.T) {
	out, err := execute(t, "routes", petstore)
	require.NoError(t, err)
	assert.Contains(t, out, "HANDLER")
	assert.Contains(t, out, "ListPets")
	assert.Contains(t, out, "/pets/{id}")
	assert.Contains(t, out, "structured")
	assert.Contains(t, out, "(skipped)")
	assert.NotContains(t, out, "Starting analysis")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "routedoc version dev")
}
