package types

import (
	"bytes"
	"encoding/json"
)

// SchemaProperty is one named property of an object schema. Properties
// are kept as an ordered slice so that the emitted `properties` object
// preserves declaration order.
type SchemaProperty struct {
	Name   string
	Schema SchemaFragment
}

// SchemaFragment is the JSON-Schema-shaped result of compiling one
// TypeNode. Two fragments are equal iff they are structurally equal.
// At most one of Items and TupleItems is set: Items describes
// homogeneous arrays, TupleItems positional tuple validation.
type SchemaFragment struct {
	Type                 string
	Enum                 []any
	Properties           []SchemaProperty
	Required             []string
	Items                *SchemaFragment
	TupleItems           []SchemaFragment
	AnyOf                []SchemaFragment
	PatternProperties    map[string]SchemaFragment
	AdditionalProperties *bool
}

// MarshalJSON emits schema keywords in a fixed order (type, enum,
// properties, required, items, anyOf, patternProperties,
// additionalProperties) and preserves property declaration order, so
// generated documents diff cleanly across runs.
func (f SchemaFragment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKey := func(key string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(key)
		buf.WriteString(`":`)
	}
	writeValue := func(key string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		writeKey(key)
		buf.Write(data)
		return nil
	}

	if f.Type != "" {
		if err := writeValue("type", f.Type); err != nil {
			return nil, err
		}
	}
	if f.Enum != nil {
		if err := writeValue("enum", f.Enum); err != nil {
			return nil, err
		}
	}
	if f.Properties != nil {
		writeKey("properties")
		buf.WriteByte('{')
		for i, prop := range f.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(prop.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			data, err := json.Marshal(prop.Schema)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
	}
	if len(f.Required) > 0 {
		if err := writeValue("required", f.Required); err != nil {
			return nil, err
		}
	}
	if f.Items != nil {
		if err := writeValue("items", f.Items); err != nil {
			return nil, err
		}
	} else if f.TupleItems != nil {
		if err := writeValue("items", f.TupleItems); err != nil {
			return nil, err
		}
	}
	if f.AnyOf != nil {
		if err := writeValue("anyOf", f.AnyOf); err != nil {
			return nil, err
		}
	}
	if f.PatternProperties != nil {
		if err := writeValue("patternProperties", f.PatternProperties); err != nil {
			return nil, err
		}
	}
	if f.AdditionalProperties != nil {
		if err := writeValue("additionalProperties", *f.AdditionalProperties); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RegistryEntry records one successfully resolved exported type for the
// duration of a single generation run. Entries are immutable once
// created and owned by the assembler; nothing persists across runs.
type RegistryEntry struct {
	Name          string
	SourcePath    string
	SourceSnippet string
	Schema        SchemaFragment
}
