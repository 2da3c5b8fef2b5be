package types

// TypeNode is one node of a parsed type expression. Nodes are immutable
// once constructed; compilation never mutates them.
type TypeNode interface {
	typeNode()
}

type LiteralKind string

const (
	LiteralString  LiteralKind = "string"
	LiteralNumber  LiteralKind = "number"
	LiteralBoolean LiteralKind = "boolean"
)

// Literal is a singleton type admitting exactly one value.
type Literal struct {
	Kind  LiteralKind
	Value any
}

type PrimitiveKind string

const (
	PrimitiveString  PrimitiveKind = "string"
	PrimitiveNumber  PrimitiveKind = "number"
	PrimitiveBoolean PrimitiveKind = "boolean"
	PrimitiveNull    PrimitiveKind = "null"
	PrimitiveAny     PrimitiveKind = "any"
	PrimitiveVoid    PrimitiveKind = "void"
)

type Primitive struct {
	Kind PrimitiveKind
}

// Nullable is the `?T` shorthand: the inner type or null.
type Nullable struct {
	Inner TypeNode
}

type Property struct {
	Name     string
	Type     TypeNode
	Optional bool
}

// Indexer is a `[key: K]: V` member. The key type is kept only for
// display; key-type constraints are not validated.
type Indexer struct {
	KeyType   TypeNode
	ValueType TypeNode
}

// ObjectShape is an object type. Properties preserve declaration order.
// Exact objects forbid properties beyond the declared ones.
type ObjectShape struct {
	Properties       []Property
	Exact            bool
	Indexer          *Indexer
	HasCallSignature bool
}

type Tuple struct {
	Elements []TypeNode
}

type Union struct {
	Alternatives []TypeNode
}

// Generic is a named type application such as Array<T> or $Exact<T>.
// A bare type name parses as a Generic with no arguments.
type Generic struct {
	Name string
	Args []TypeNode
}

func (*Literal) typeNode()     {}
func (*Primitive) typeNode()   {}
func (*Nullable) typeNode()    {}
func (*ObjectShape) typeNode() {}
func (*Tuple) typeNode()       {}
func (*Union) typeNode()       {}
func (*Generic) typeNode()     {}
