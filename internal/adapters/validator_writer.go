package adapters

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/pjm0616/flow-jsonschema/internal/ports"
	"github.com/pjm0616/flow-jsonschema/internal/types"
)

// ValidatorWriterAdapter emits the generated validator module
// (validators.js, delegating schema execution to ajv) and the
// name→schema index (schemas.json) consumed by the check command.
type ValidatorWriterAdapter struct {
	Dir string
}

func NewValidatorWriterAdapter(dir string) ValidatorWriterAdapter {
	return ValidatorWriterAdapter{Dir: dir}
}

type validatorEntry struct {
	Name       string
	SchemaJSON string
	Snippet    string
}

var validatorTemplate = template.Must(template.New("validators").Parse(`// @flow
// Code generated by flow-jsonschema. DO NOT EDIT.
'use strict';

const Ajv = require('ajv');

const schemas = {
{{- range .Entries}}
  {{printf "%q" .Name}}: {{.SchemaJSON}},
{{- end}}
};

// Compiled-validator cache, keyed by type name and error mode. Owned by
// this module instance; cleared explicitly via resetValidatorCache.
const validatorCache = new Map();

function compiledFor(name, allErrors) {
  const key = name + (allErrors ? ':all' : ':first');
  let validate = validatorCache.get(key);
  if (!validate) {
    const ajv = new Ajv({allErrors: !!allErrors});
    validate = ajv.compile(schemas[name]);
    validatorCache.set(key, validate);
  }
  return validate;
}

class ValidationError extends Error {
  constructor(typeName, errors) {
    super('value does not match type ' + typeName);
    this.typeName = typeName;
    this.errors = errors || [];
  }
}

function check(name, value, options) {
  const validate = compiledFor(name, options && options.allErrors);
  return validate(value) === true;
}

function assert(name, value, options) {
  const validate = compiledFor(name, options && options.allErrors);
  if (validate(value) !== true) {
    throw new ValidationError(name, validate.errors);
  }
  return value;
}

function resetValidatorCache() {
  validatorCache.clear();
}

module.exports.schemas = schemas;
module.exports.ValidationError = ValidationError;
module.exports.resetValidatorCache = resetValidatorCache;
{{- range .Entries}}
module.exports.check{{.Name}} = (value, options) => check({{printf "%q" .Name}}, value, options);
module.exports.assert{{.Name}} = (value, options) => assert({{printf "%q" .Name}}, value, options);
{{- end}}

/*::
{{- range .Entries}}
{{.Snippet}}
{{- end}}
*/
`))

func (a ValidatorWriterAdapter) WriteValidatorModule(entries []types.RegistryEntry) error {
	ordered := sortedEntries(entries)
	data := struct{ Entries []validatorEntry }{}
	for _, entry := range ordered {
		schemaJSON, err := json.MarshalIndent(entry.Schema, "  ", "  ")
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to marshal schema for " + entry.Name).
				WithCause(err)
		}
		data.Entries = append(data.Entries, validatorEntry{
			Name:       entry.Name,
			SchemaJSON: string(schemaJSON),
			Snippet:    entry.SourceSnippet,
		})
	}

	var buf bytes.Buffer
	if err := validatorTemplate.Execute(&buf, data); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to render validator module").
			WithCause(err)
	}
	path, err := a.ensurePath("validators.js")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func (a ValidatorWriterAdapter) WriteSchemaIndex(entries []types.RegistryEntry) error {
	ordered := sortedEntries(entries)
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, entry := range ordered {
		schemaJSON, err := json.Marshal(entry.Schema)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to marshal schema for " + entry.Name).
				WithCause(err)
		}
		name, err := json.Marshal(entry.Name)
		if err != nil {
			return err
		}
		buf.WriteString("  ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(schemaJSON)
		if i < len(ordered)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	path, err := a.ensurePath("schemas.json")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func (a ValidatorWriterAdapter) ensurePath(name string) (string, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory: " + a.Dir).
			WithCause(err)
	}
	return filepath.Join(a.Dir, name), nil
}

func sortedEntries(entries []types.RegistryEntry) []types.RegistryEntry {
	ordered := append([]types.RegistryEntry(nil), entries...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})
	return ordered
}

var _ ports.ValidatorWriterPort = ValidatorWriterAdapter{}
