package adapters

import (
	"encoding/json"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ReadSchemaIndex loads a generated schemas.json document.
func ReadSchemaIndex(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read schema index: " + path).
			WithCause(err)
	}
	var index map[string]json.RawMessage
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse schema index: " + path).
			WithCause(err)
	}
	return index, nil
}

// ReadJSONDocument loads and decodes an arbitrary JSON value.
func ReadJSONDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read document: " + path).
			WithCause(err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse document: " + path).
			WithCause(err)
	}
	return value, nil
}
