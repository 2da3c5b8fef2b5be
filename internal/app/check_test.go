package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"

	"github.com/pjm0616/flow-jsonschema/internal/adapters"
)

const checkSchemaIndex = `{
  "Config": {"type":"object","properties":{"name":{"type":"string"},"retries":{"type":"number"}},"required":["name","retries"],"additionalProperties":false}
}
`

func writeCheckFixture(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func checkService() Service {
	return Service{Validator: adapters.NewJSONSchemaEngineAdapter()}
}

func TestCheckValidDocument(t *testing.T) {
	index := writeCheckFixture(t, "schemas.json", checkSchemaIndex)
	doc := writeCheckFixture(t, "doc.json", `{"name": "prod", "retries": 3}`)

	result, err := checkService().Check(context.Background(), CheckRequest{
		SchemaIndexPath: index,
		TypeName:        "Config",
		DocumentPath:    doc,
	})

	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Empty(t, result.Errors)
}

func TestCheckInvalidDocumentReportsRecords(t *testing.T) {
	index := writeCheckFixture(t, "schemas.json", checkSchemaIndex)
	doc := writeCheckFixture(t, "doc.json", `{"name": 1, "retries": "x"}`)

	result, err := checkService().Check(context.Background(), CheckRequest{
		SchemaIndexPath: index,
		TypeName:        "Config",
		DocumentPath:    doc,
		AllErrors:       true,
	})

	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Greater(t, len(result.Errors), 1)
	for _, record := range result.Errors {
		require.NotEmpty(t, record.Message)
		require.NotEmpty(t, record.SchemaPath)
	}
}

func TestCheckFirstErrorMode(t *testing.T) {
	index := writeCheckFixture(t, "schemas.json", checkSchemaIndex)
	doc := writeCheckFixture(t, "doc.json", `{"name": 1, "retries": "x"}`)

	result, err := checkService().Check(context.Background(), CheckRequest{
		SchemaIndexPath: index,
		TypeName:        "Config",
		DocumentPath:    doc,
	})

	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
}

func TestCheckUnknownTypeName(t *testing.T) {
	index := writeCheckFixture(t, "schemas.json", checkSchemaIndex)
	doc := writeCheckFixture(t, "doc.json", `{}`)

	_, err := checkService().Check(context.Background(), CheckRequest{
		SchemaIndexPath: index,
		TypeName:        "Nope",
		DocumentPath:    doc,
	})

	require.Error(t, err)
	require.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestCheckMissingInputs(t *testing.T) {
	index := writeCheckFixture(t, "schemas.json", checkSchemaIndex)

	_, err := checkService().Check(context.Background(), CheckRequest{
		SchemaIndexPath: index,
		TypeName:        "  ",
		DocumentPath:    "doc.json",
	})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = checkService().Check(context.Background(), CheckRequest{
		SchemaIndexPath: filepath.Join(t.TempDir(), "absent.json"),
		TypeName:        "Config",
		DocumentPath:    "doc.json",
	})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	_, err = checkService().Check(context.Background(), CheckRequest{
		SchemaIndexPath: index,
		TypeName:        "Config",
		DocumentPath:    filepath.Join(t.TempDir(), "absent.json"),
	})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}
