package ports

import "github.com/pjm0616/flow-jsonschema/internal/types"

// SchemaValidatorPort is the external JSON Schema validation engine,
// treated as a black box: given a schema document and a decoded value
// it reports validity plus structured error records. When allErrors is
// false only the first failure is reported.
type SchemaValidatorPort interface {
	Validate(schemaJSON []byte, value any, allErrors bool) ([]types.ValidationErrorRecord, error)
}

// OverridesPort looks up per-type generation overrides.
type OverridesPort interface {
	Lookup(name string) (types.TypeOverride, bool)
}
