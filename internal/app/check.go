package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/pjm0616/flow-jsonschema/internal/adapters"
	"github.com/pjm0616/flow-jsonschema/internal/types"
)

type CheckRequest struct {
	SchemaIndexPath string
	TypeName        string
	DocumentPath    string
	AllErrors       bool
}

type CheckResult struct {
	Valid  bool
	Errors []types.ValidationErrorRecord
}

// Check validates a JSON document against one generated type schema,
// using the external validation engine behind SchemaValidatorPort.
func (s Service) Check(ctx context.Context, req CheckRequest) (CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return CheckResult{}, err
	}
	typeName := strings.TrimSpace(req.TypeName)
	if typeName == "" {
		return CheckResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("type name is required")
	}

	index, err := adapters.ReadSchemaIndex(req.SchemaIndexPath)
	if err != nil {
		return CheckResult{}, err
	}
	schema, ok := index[typeName]
	if !ok {
		return CheckResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("type " + typeName + " not present in schema index " + req.SchemaIndexPath)
	}

	value, err := adapters.ReadJSONDocument(req.DocumentPath)
	if err != nil {
		return CheckResult{}, err
	}

	records, err := s.Validator.Validate(schema, value, req.AllErrors)
	if err != nil {
		return CheckResult{}, err
	}
	return CheckResult{Valid: len(records) == 0, Errors: records}, nil
}
