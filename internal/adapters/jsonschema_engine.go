package adapters

import (
	"bytes"
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pjm0616/flow-jsonschema/internal/ports"
	"github.com/pjm0616/flow-jsonschema/internal/types"
)

// JSONSchemaEngineAdapter wraps the external JSON Schema validation
// engine. It compiles the schema document, runs it against a decoded
// value, and flattens the engine's hierarchical failure into the flat
// error records the rest of the system understands.
type JSONSchemaEngineAdapter struct{}

func NewJSONSchemaEngineAdapter() JSONSchemaEngineAdapter {
	return JSONSchemaEngineAdapter{}
}

func (a JSONSchemaEngineAdapter) Validate(schemaJSON []byte, value any, allErrors bool) ([]types.ValidationErrorRecord, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to load schema document").
			WithCause(err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to compile schema document").
			WithCause(err)
	}

	err = schema.Validate(value)
	if err == nil {
		return nil, nil
	}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("schema validation engine failed").
			WithCause(err)
	}
	records := flattenValidationError(validationErr)
	if !allErrors && len(records) > 1 {
		records = records[:1]
	}
	return records, nil
}

// flattenValidationError walks the engine's cause tree and keeps the
// leaves, which carry the most specific keyword locations.
func flattenValidationError(err *jsonschema.ValidationError) []types.ValidationErrorRecord {
	if len(err.Causes) == 0 {
		return []types.ValidationErrorRecord{{
			Keyword:    keywordOf(err.KeywordLocation),
			DataPath:   err.InstanceLocation,
			SchemaPath: err.KeywordLocation,
			Message:    err.Message,
		}}
	}
	var records []types.ValidationErrorRecord
	for _, cause := range err.Causes {
		records = append(records, flattenValidationError(cause)...)
	}
	return records
}

// keywordOf extracts the last non-index segment of a keyword location
// such as "/items/2/anyOf/0/type".
func keywordOf(location string) string {
	segments := strings.Split(location, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := segments[i]
		if segment == "" {
			continue
		}
		if strings.IndexFunc(segment, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return segment
		}
	}
	return ""
}

var _ ports.SchemaValidatorPort = JSONSchemaEngineAdapter{}
