package ports

import "github.com/pjm0616/flow-jsonschema/internal/types"

// ValidatorWriterPort emits the generated artifacts of one run: the
// validator source module and the name→schema index document.
type ValidatorWriterPort interface {
	WriteValidatorModule(entries []types.RegistryEntry) error
	WriteSchemaIndex(entries []types.RegistryEntry) error
}
