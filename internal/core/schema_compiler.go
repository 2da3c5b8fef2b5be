package core

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/pjm0616/flow-jsonschema/internal/types"
)

// SchemaCompiler translates a type expression AST into a JSON Schema
// fragment. Compilation is pure: no I/O, no mutation of the input node,
// and structurally equal inputs always produce structurally equal
// output. Constructs with no JSON Schema representation fail with an
// unsupported-type error, which aborts the entire enclosing named type;
// callers catch it at the per-type boundary and skip that type.
type SchemaCompiler struct{}

func NewSchemaCompiler() SchemaCompiler {
	return SchemaCompiler{}
}

func (c SchemaCompiler) Compile(node types.TypeNode) (types.SchemaFragment, error) {
	switch n := node.(type) {
	case *types.Literal:
		return types.SchemaFragment{
			Type: string(n.Kind),
			Enum: []any{n.Value},
		}, nil
	case *types.Primitive:
		return c.compilePrimitive(n)
	case *types.Nullable:
		inner, err := c.Compile(n.Inner)
		if err != nil {
			return types.SchemaFragment{}, err
		}
		return types.SchemaFragment{
			AnyOf: []types.SchemaFragment{{Type: "null"}, inner},
		}, nil
	case *types.ObjectShape:
		return c.compileObject(n)
	case *types.Tuple:
		items := make([]types.SchemaFragment, 0, len(n.Elements))
		for _, element := range n.Elements {
			item, err := c.Compile(element)
			if err != nil {
				return types.SchemaFragment{}, err
			}
			items = append(items, item)
		}
		return types.SchemaFragment{Type: "array", TupleItems: items}, nil
	case *types.Union:
		alternatives := make([]types.SchemaFragment, 0, len(n.Alternatives))
		for _, alternative := range n.Alternatives {
			compiled, err := c.Compile(alternative)
			if err != nil {
				return types.SchemaFragment{}, err
			}
			alternatives = append(alternatives, compiled)
		}
		return types.SchemaFragment{AnyOf: alternatives}, nil
	case *types.Generic:
		return c.compileGeneric(n)
	default:
		return types.SchemaFragment{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unknown type node %T", node))
	}
}

func (c SchemaCompiler) compilePrimitive(n *types.Primitive) (types.SchemaFragment, error) {
	switch n.Kind {
	case types.PrimitiveString, types.PrimitiveNumber, types.PrimitiveBoolean, types.PrimitiveNull:
		return types.SchemaFragment{Type: string(n.Kind)}, nil
	case types.PrimitiveAny:
		// Matches anything.
		return types.SchemaFragment{}, nil
	case types.PrimitiveVoid:
		return types.SchemaFragment{}, unsupportedType("void has no JSON representation")
	default:
		return types.SchemaFragment{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unknown primitive kind %q", n.Kind))
	}
}

func (c SchemaCompiler) compileObject(n *types.ObjectShape) (types.SchemaFragment, error) {
	if n.HasCallSignature {
		return types.SchemaFragment{}, unsupportedType("object with call signature")
	}
	if n.Indexer != nil {
		if len(n.Properties) > 0 {
			// Deliberately rejected: validating named properties and an
			// indexer against the same keys is ambiguous.
			return types.SchemaFragment{}, unsupportedType("object mixing indexer and named properties")
		}
		valueSchema, err := c.Compile(n.Indexer.ValueType)
		if err != nil {
			return types.SchemaFragment{}, err
		}
		return types.SchemaFragment{
			Type:                 "object",
			PatternProperties:    map[string]types.SchemaFragment{".*": valueSchema},
			AdditionalProperties: boolPtr(false),
		}, nil
	}

	properties := make([]types.SchemaProperty, 0, len(n.Properties))
	var required []string
	for _, prop := range n.Properties {
		compiled, err := c.Compile(prop.Type)
		if err != nil {
			return types.SchemaFragment{}, err
		}
		properties = append(properties, types.SchemaProperty{Name: prop.Name, Schema: compiled})
		if !prop.Optional {
			required = append(required, prop.Name)
		}
	}
	// Properties keep declaration order; required is sorted separately
	// for stable diffs.
	sort.Strings(required)
	fragment := types.SchemaFragment{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
	if n.Exact {
		fragment.AdditionalProperties = boolPtr(false)
	}
	return fragment, nil
}

func (c SchemaCompiler) compileGeneric(n *types.Generic) (types.SchemaFragment, error) {
	switch n.Name {
	case "Array":
		if len(n.Args) != 1 {
			return types.SchemaFragment{}, unsupportedType(
				fmt.Sprintf("Array expects one type argument, got %d", len(n.Args)))
		}
		item, err := c.Compile(n.Args[0])
		if err != nil {
			return types.SchemaFragment{}, err
		}
		return types.SchemaFragment{Type: "array", Items: &item}, nil
	case "$Exact":
		if len(n.Args) != 1 {
			return types.SchemaFragment{}, unsupportedType(
				fmt.Sprintf("$Exact expects one type argument, got %d", len(n.Args)))
		}
		inner, err := c.Compile(n.Args[0])
		if err != nil {
			return types.SchemaFragment{}, err
		}
		if inner.Type == "object" {
			inner.AdditionalProperties = boolPtr(false)
		}
		return inner, nil
	default:
		return types.SchemaFragment{}, unsupportedType(
			fmt.Sprintf("unsupported generic type %q", n.Name))
	}
}

func unsupportedType(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeUnimplemented).
		WithMsg(msg)
}

// IsUnsupportedType reports whether err is the recoverable
// unsupported-construct failure that callers handle by skipping the
// enclosing named type.
func IsUnsupportedType(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeUnimplemented
}

func boolPtr(value bool) *bool {
	return &value
}
