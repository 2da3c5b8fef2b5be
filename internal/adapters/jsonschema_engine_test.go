package adapters

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pjm0616/flow-jsonschema/internal/core"
	"github.com/pjm0616/flow-jsonschema/internal/parser"
)

func compileSchemaJSON(t *testing.T, typeText string) []byte {
	t.Helper()
	node, err := parser.ParseTypeText("src/fixture.js", typeText)
	require.NoError(t, err)
	fragment, err := core.NewSchemaCompiler().Compile(node)
	require.NoError(t, err)
	data, err := json.Marshal(fragment)
	require.NoError(t, err)
	return data
}

func TestValidateAcceptsMatchingValue(t *testing.T) {
	schema := compileSchemaJSON(t, "{| name: string, retries: number |}")
	engine := NewJSONSchemaEngineAdapter()

	records, err := engine.Validate(schema, map[string]any{
		"name":    "prod",
		"retries": float64(3),
	}, true)

	require.NoError(t, err)
	require.Empty(t, records)
}

func TestValidateTupleReportsPositionalFailure(t *testing.T) {
	schema := compileSchemaJSON(t, "[string, number, 1 | 2]")
	engine := NewJSONSchemaEngineAdapter()

	valid, err := engine.Validate(schema, []any{"a", float64(1), float64(2)}, true)
	require.NoError(t, err)
	require.Empty(t, valid)

	records, err := engine.Validate(schema, []any{"a", float64(1), float64(3)}, true)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	found := false
	for _, record := range records {
		if strings.HasPrefix(record.SchemaPath, "/items/2") {
			found = true
			require.Equal(t, "/2", record.DataPath)
		}
	}
	require.True(t, found, "failure must be located under the third tuple slot, got %+v", records)
}

func TestValidateExactObjectRejectsExtraProperty(t *testing.T) {
	schema := compileSchemaJSON(t, "{| id: string |}")
	engine := NewJSONSchemaEngineAdapter()

	records, err := engine.Validate(schema, map[string]any{
		"id":    "a",
		"extra": true,
	}, true)

	require.NoError(t, err)
	require.NotEmpty(t, records)
}

func TestValidateInexactObjectAllowsExtraProperty(t *testing.T) {
	schema := compileSchemaJSON(t, "{id: string}")
	engine := NewJSONSchemaEngineAdapter()

	records, err := engine.Validate(schema, map[string]any{
		"id":    "a",
		"extra": true,
	}, true)

	require.NoError(t, err)
	require.Empty(t, records)
}

func TestValidateFirstErrorModeTruncates(t *testing.T) {
	schema := compileSchemaJSON(t, "{a: string, b: number}")
	engine := NewJSONSchemaEngineAdapter()
	value := map[string]any{"a": float64(1), "b": "x"}

	all, err := engine.Validate(schema, value, true)
	require.NoError(t, err)
	require.Greater(t, len(all), 1, "both properties should fail in all-errors mode")

	first, err := engine.Validate(schema, value, false)
	require.NoError(t, err)
	require.Len(t, first, 1)
}

func TestValidateNullableValue(t *testing.T) {
	schema := compileSchemaJSON(t, "?string")
	engine := NewJSONSchemaEngineAdapter()

	records, err := engine.Validate(schema, nil, true)
	require.NoError(t, err)
	require.Empty(t, records)

	records, err = engine.Validate(schema, "text", true)
	require.NoError(t, err)
	require.Empty(t, records)

	records, err = engine.Validate(schema, float64(1), true)
	require.NoError(t, err)
	require.NotEmpty(t, records)
}

func TestValidateRejectsMalformedSchema(t *testing.T) {
	engine := NewJSONSchemaEngineAdapter()

	_, err := engine.Validate([]byte("{"), "anything", true)

	require.Error(t, err)
}
