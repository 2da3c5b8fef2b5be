package parser

import (
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pjm0616/flow-jsonschema/internal/types"
)

func TestParseTypeText(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect types.TypeNode
	}{
		{
			name:   "string primitive",
			input:  "string",
			expect: &types.Primitive{Kind: types.PrimitiveString},
		},
		{
			name:   "mixed maps to any",
			input:  "mixed",
			expect: &types.Primitive{Kind: types.PrimitiveAny},
		},
		{
			name:   "nullable shorthand",
			input:  "?string",
			expect: &types.Nullable{Inner: &types.Primitive{Kind: types.PrimitiveString}},
		},
		{
			name:   "string literal",
			input:  `"on"`,
			expect: &types.Literal{Kind: types.LiteralString, Value: "on"},
		},
		{
			name:   "single quoted string literal",
			input:  "'off'",
			expect: &types.Literal{Kind: types.LiteralString, Value: "off"},
		},
		{
			name:   "number literal",
			input:  "42",
			expect: &types.Literal{Kind: types.LiteralNumber, Value: float64(42)},
		},
		{
			name:   "negative number literal",
			input:  "-1.5",
			expect: &types.Literal{Kind: types.LiteralNumber, Value: float64(-1.5)},
		},
		{
			name:   "boolean literal",
			input:  "true",
			expect: &types.Literal{Kind: types.LiteralBoolean, Value: true},
		},
		{
			name:  "union of literals",
			input: "1 | 2",
			expect: &types.Union{Alternatives: []types.TypeNode{
				&types.Literal{Kind: types.LiteralNumber, Value: float64(1)},
				&types.Literal{Kind: types.LiteralNumber, Value: float64(2)},
			}},
		},
		{
			name:  "union with leading pipe",
			input: "| 'a' | 'b'",
			expect: &types.Union{Alternatives: []types.TypeNode{
				&types.Literal{Kind: types.LiteralString, Value: "a"},
				&types.Literal{Kind: types.LiteralString, Value: "b"},
			}},
		},
		{
			name:  "tuple",
			input: "[string, number]",
			expect: &types.Tuple{Elements: []types.TypeNode{
				&types.Primitive{Kind: types.PrimitiveString},
				&types.Primitive{Kind: types.PrimitiveNumber},
			}},
		},
		{
			name:  "tuple with union element",
			input: "[string, number, 1 | 2]",
			expect: &types.Tuple{Elements: []types.TypeNode{
				&types.Primitive{Kind: types.PrimitiveString},
				&types.Primitive{Kind: types.PrimitiveNumber},
				&types.Union{Alternatives: []types.TypeNode{
					&types.Literal{Kind: types.LiteralNumber, Value: float64(1)},
					&types.Literal{Kind: types.LiteralNumber, Value: float64(2)},
				}},
			}},
		},
		{
			name:  "array generic",
			input: "Array<string>",
			expect: &types.Generic{Name: "Array", Args: []types.TypeNode{
				&types.Primitive{Kind: types.PrimitiveString},
			}},
		},
		{
			name:  "postfix array shorthand",
			input: "string[]",
			expect: &types.Generic{Name: "Array", Args: []types.TypeNode{
				&types.Primitive{Kind: types.PrimitiveString},
			}},
		},
		{
			name:  "nested postfix array shorthand",
			input: "number[][]",
			expect: &types.Generic{Name: "Array", Args: []types.TypeNode{
				&types.Generic{Name: "Array", Args: []types.TypeNode{
					&types.Primitive{Kind: types.PrimitiveNumber},
				}},
			}},
		},
		{
			name:  "inexact object",
			input: "{name: string, age?: number}",
			expect: &types.ObjectShape{Properties: []types.Property{
				{Name: "name", Type: &types.Primitive{Kind: types.PrimitiveString}},
				{Name: "age", Type: &types.Primitive{Kind: types.PrimitiveNumber}, Optional: true},
			}},
		},
		{
			name:  "exact object",
			input: "{| id: string |}",
			expect: &types.ObjectShape{
				Exact: true,
				Properties: []types.Property{
					{Name: "id", Type: &types.Primitive{Kind: types.PrimitiveString}},
				},
			},
		},
		{
			name:  "quoted property key",
			input: `{"content-type": string}`,
			expect: &types.ObjectShape{Properties: []types.Property{
				{Name: "content-type", Type: &types.Primitive{Kind: types.PrimitiveString}},
			}},
		},
		{
			name:  "indexer",
			input: "{[key: string]: number}",
			expect: &types.ObjectShape{Indexer: &types.Indexer{
				KeyType:   &types.Primitive{Kind: types.PrimitiveString},
				ValueType: &types.Primitive{Kind: types.PrimitiveNumber},
			}},
		},
		{
			name:  "unnamed indexer key",
			input: "{[string]: number}",
			expect: &types.ObjectShape{Indexer: &types.Indexer{
				KeyType:   &types.Primitive{Kind: types.PrimitiveString},
				ValueType: &types.Primitive{Kind: types.PrimitiveNumber},
			}},
		},
		{
			name:  "exact generic wrapper",
			input: "$Exact<{a: string}>",
			expect: &types.Generic{Name: "$Exact", Args: []types.TypeNode{
				&types.ObjectShape{Properties: []types.Property{
					{Name: "a", Type: &types.Primitive{Kind: types.PrimitiveString}},
				}},
			}},
		},
		{
			name:   "qualified name",
			input:  "React.Node",
			expect: &types.Generic{Name: "React.Node"},
		},
		{
			name:   "function type",
			input:  "(x: number) => string",
			expect: &types.ObjectShape{HasCallSignature: true},
		},
		{
			name:   "function type with optional parameter",
			input:  "(x?: number, ...rest: Array<string>) => void",
			expect: &types.ObjectShape{HasCallSignature: true},
		},
		{
			name:  "parenthesized union",
			input: "(string | number)",
			expect: &types.Union{Alternatives: []types.TypeNode{
				&types.Primitive{Kind: types.PrimitiveString},
				&types.Primitive{Kind: types.PrimitiveNumber},
			}},
		},
		{
			name:  "array of parenthesized union",
			input: "(string | number)[]",
			expect: &types.Generic{Name: "Array", Args: []types.TypeNode{
				&types.Union{Alternatives: []types.TypeNode{
					&types.Primitive{Kind: types.PrimitiveString},
					&types.Primitive{Kind: types.PrimitiveNumber},
				}},
			}},
		},
		{
			name:  "method shorthand is a callable property",
			input: "{reset(): void, count: number}",
			expect: &types.ObjectShape{Properties: []types.Property{
				{Name: "reset", Type: &types.ObjectShape{HasCallSignature: true}},
				{Name: "count", Type: &types.Primitive{Kind: types.PrimitiveNumber}},
			}},
		},
		{
			name:  "object with call signature member",
			input: "{(x: string): number, tag: string}",
			expect: &types.ObjectShape{
				HasCallSignature: true,
				Properties: []types.Property{
					{Name: "tag", Type: &types.Primitive{Kind: types.PrimitiveString}},
				},
			},
		},
		{
			name:  "semicolon separated members",
			input: "{a: string; b: number}",
			expect: &types.ObjectShape{Properties: []types.Property{
				{Name: "a", Type: &types.Primitive{Kind: types.PrimitiveString}},
				{Name: "b", Type: &types.Primitive{Kind: types.PrimitiveNumber}},
			}},
		},
		{
			name:  "nested structures",
			input: "{| items: Array<{| id: number |}>, mode: 'fast' | 'slow' |}",
			expect: &types.ObjectShape{
				Exact: true,
				Properties: []types.Property{
					{Name: "items", Type: &types.Generic{Name: "Array", Args: []types.TypeNode{
						&types.ObjectShape{
							Exact: true,
							Properties: []types.Property{
								{Name: "id", Type: &types.Primitive{Kind: types.PrimitiveNumber}},
							},
						},
					}}},
					{Name: "mode", Type: &types.Union{Alternatives: []types.TypeNode{
						&types.Literal{Kind: types.LiteralString, Value: "fast"},
						&types.Literal{Kind: types.LiteralString, Value: "slow"},
					}}},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTypeText("lib/config.js", tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Errorf("AST mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTypeTextErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "unterminated object", input: "{a: string"},
		{name: "unterminated tuple", input: "[string"},
		{name: "trailing garbage", input: "string string"},
		{name: "dangling question mark", input: "?"},
		{name: "object member without type", input: "{a}"},
		{name: "minus without number", input: "-foo"},
		{name: "parameter list without arrow", input: "(x: number)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTypeText("lib/config.js", tt.input)
			require.Error(t, err)
			require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
		})
	}
}

func TestParseTypeTextErrorMentionsPosition(t *testing.T) {
	_, err := ParseTypeText("src/api.js", "{a: string,\n b: }")

	require.Error(t, err)
	var builder *errbuilder.ErrBuilder
	require.ErrorAs(t, err, &builder)
	require.True(t, strings.HasPrefix(builder.Msg, "src/api.js:2:"),
		"error should point at the offending file position, got %q", builder.Msg)
	require.Contains(t, builder.Msg, "syntax error")
}
