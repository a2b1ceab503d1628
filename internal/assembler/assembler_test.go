package assembler

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachacious/go-routedoc/internal/analyzer"
	"github.com/Zachacious/go-routedoc/internal/config"
)

func build(t *testing.T, dir string, cfg *config.Config) (*openapi3.T, string) {
	t.Helper()
	a, err := analyzer.New(dir, nil, nil)
	require.NoError(t, err)
	m, err := a.Analyze(context.Background())
	require.NoError(t, err)

	var logs bytes.Buffer
	spec, err := BuildSpec(m, cfg, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	return spec, logs.String()
}

func TestBuildSpecPetstore(t *testing.T) {
	cfg := config.Default()
	cfg.SecuritySchemes = map[string]any{
		"BearerAuth": map[string]any{"type": "http", "scheme": "bearer"},
	}
	spec, _ := build(t, filepath.Join("..", "analyzer", "testdata", "petstore"), cfg)

	assert.Equal(t, "API Documentation", spec.Info.Title)
	require.NotNil(t, spec.Components)
	assert.Contains(t, spec.Components.SecuritySchemes, "BearerAuth")
	assert.Contains(t, spec.Components.Schemas, "Pet")
	assert.Contains(t, spec.Components.Schemas, "NewPet")
	assert.NotContains(t, spec.Components.Schemas, "ListFilter")

	pets := spec.Paths.Find("/pets")
	require.NotNil(t, pets)

	list := pets.Get
	require.NotNil(t, list)
	assert.Equal(t, "petstore_ListPets", list.OperationID)
	assert.Equal(t, "List pets", list.Summary)
	assert.Equal(t, []string{"Pets"}, list.Tags)
	require.NotNil(t, list.Parameters.GetByInAndName(openapi3.ParameterInQuery, "species"))
	assert.True(t, list.Parameters.GetByInAndName(openapi3.ParameterInQuery, "species").Required)
	require.NotNil(t, list.Parameters.GetByInAndName(openapi3.ParameterInQuery, "limit"))
	assert.False(t, list.Parameters.GetByInAndName(openapi3.ParameterInQuery, "limit").Required)
	ok := list.Responses.Status(200)
	require.NotNil(t, ok)
	items := ok.Value.Content.Get("application/json").Schema.Value.Items
	assert.Equal(t, "#/components/schemas/Pet", items.Ref)
	assert.NotNil(t, list.Responses.Status(500))

	create := pets.Post
	require.NotNil(t, create)
	assert.True(t, create.Deprecated)
	assert.Equal(t, "Adds a pet to the store.", create.Description)
	require.NotNil(t, create.RequestBody)
	assert.True(t, create.RequestBody.Value.Required)
	assert.Equal(t, "#/components/schemas/NewPet",
		create.RequestBody.Value.Content.Get("application/json").Schema.Ref)
	assert.Nil(t, create.Responses.Status(200))
	require.NotNil(t, create.Responses.Status(201))
	assert.Equal(t, "#/components/schemas/Pet",
		create.Responses.Status(201).Value.Content.Get("application/json").Schema.Ref)

	byID := spec.Paths.Find("/pets/{id}")
	require.NotNil(t, byID)
	get := byID.Get
	require.NotNil(t, get)
	assert.Equal(t, "findPet", get.OperationID)
	id := get.Parameters.GetByInAndName(openapi3.ParameterInPath, "id")
	require.NotNil(t, id)
	assert.True(t, id.Required)
	assert.Equal(t, "int64", id.Schema.Value.Format)
	verbose := get.Parameters.GetByInAndName(openapi3.ParameterInQuery, "verbose")
	require.NotNil(t, verbose)
	assert.False(t, verbose.Required)
	assert.NotNil(t, get.Responses.Status(200))
	assert.NotNil(t, get.Responses.Status(404))

	require.NotNil(t, byID.Delete)
	assert.NotNil(t, byID.Delete.Responses.Status(204))

	assert.Nil(t, spec.Paths.Find("/files/{path}"))

	health := spec.Paths.Find("/health")
	require.NotNil(t, health)
	assert.NotNil(t, health.Get.Responses.Status(200).Value.Content.Get("text/plain"))
}

func TestBuildSpecSelfDocumentingTypes(t *testing.T) {
	spec, logs := build(t, filepath.Join("testdata", "selfdoc"), nil)

	assert.Contains(t, logs, "type documents itself at run time")
	assert.Contains(t, logs, "selfdoc.Report")

	report := spec.Paths.Find("/report")
	require.NotNil(t, report)
	assert.Equal(t, "#/components/schemas/Report",
		report.Get.Responses.Status(200).Value.Content.Get("application/json").Schema.Ref)

	upload := spec.Paths.Find("/upload").Post
	require.NotNil(t, upload)
	body := upload.RequestBody.Value.Content.Get("application/octet-stream")
	require.NotNil(t, body)
	assert.Equal(t, "binary", body.Schema.Value.Format)
	assert.NotNil(t, upload.Parameters.GetByInAndName(openapi3.ParameterInHeader, "Accept"))
	assert.NotNil(t, upload.Responses.Status(202))
	assert.Nil(t, upload.Responses.Status(200))
}
