package parser

import (
	"fmt"
	"strconv"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/pjm0616/flow-jsonschema/internal/types"
)

// Parser is a recursive-descent parser for the type-syntax text the
// oracle returns from position queries. It produces the TypeNode AST
// consumed by the schema compiler.
type Parser struct {
	lex  *lexer
	path string

	curToken  token
	peekToken token
}

// ParseTypeText parses a complete type expression. The path is used
// only for error reporting.
func ParseTypeText(path string, text string) (types.TypeNode, error) {
	p := &Parser{lex: newLexer(text), path: path}
	p.nextToken()
	p.nextToken()
	node, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != tokenEOF {
		return nil, p.syntaxError("unexpected trailing %q", p.curToken.Literal)
	}
	return node, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lex.nextToken()
}

func (p *Parser) expect(t tokenType) error {
	if p.curToken.Type != t {
		return p.syntaxError("expected %q, got %q", string(t), p.curToken.Literal)
	}
	p.nextToken()
	return nil
}

func (p *Parser) syntaxError(format string, args ...any) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("%s:%d:%d: syntax error: %s",
			p.path, p.curToken.Line, p.curToken.Column, fmt.Sprintf(format, args...)))
}

// parseType handles unions. The oracle may print a leading pipe when
// formatting a union across lines.
func (p *Parser) parseType() (types.TypeNode, error) {
	if p.curToken.Type == tokenPipe {
		p.nextToken()
	}
	first, err := p.parseNonUnionType()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != tokenPipe {
		return first, nil
	}
	alternatives := []types.TypeNode{first}
	for p.curToken.Type == tokenPipe {
		p.nextToken()
		next, err := p.parseNonUnionType()
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, next)
	}
	return &types.Union{Alternatives: alternatives}, nil
}

func (p *Parser) parseNonUnionType() (types.TypeNode, error) {
	if p.curToken.Type == tokenQuestion {
		p.nextToken()
		inner, err := p.parseNonUnionType()
		if err != nil {
			return nil, err
		}
		return &types.Nullable{Inner: inner}, nil
	}

	node, err := p.parseAtomicType()
	if err != nil {
		return nil, err
	}
	// Postfix array shorthand: T[].
	for p.curToken.Type == tokenLBracket && p.peekToken.Type == tokenRBracket {
		p.nextToken()
		p.nextToken()
		node = &types.Generic{Name: "Array", Args: []types.TypeNode{node}}
	}
	return node, nil
}

func (p *Parser) parseAtomicType() (types.TypeNode, error) {
	switch p.curToken.Type {
	case tokenLBrace:
		return p.parseObject(false, tokenRBrace)
	case tokenLExact:
		return p.parseObject(true, tokenRExact)
	case tokenLBracket:
		return p.parseTuple()
	case tokenLParen:
		return p.parseParenOrFunction()
	case tokenString:
		value := p.curToken.Literal
		p.nextToken()
		return &types.Literal{Kind: types.LiteralString, Value: value}, nil
	case tokenNumber:
		return p.parseNumberLiteral(false)
	case tokenMinus:
		p.nextToken()
		if p.curToken.Type != tokenNumber {
			return nil, p.syntaxError("expected number after '-', got %q", p.curToken.Literal)
		}
		return p.parseNumberLiteral(true)
	case tokenIdent:
		return p.parseNamedType()
	default:
		return nil, p.syntaxError("unexpected %q", p.curToken.Literal)
	}
}

func (p *Parser) parseNumberLiteral(negative bool) (types.TypeNode, error) {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		return nil, p.syntaxError("invalid number literal %q", p.curToken.Literal)
	}
	if negative {
		value = -value
	}
	p.nextToken()
	return &types.Literal{Kind: types.LiteralNumber, Value: value}, nil
}

// parseNamedType handles keywords, boolean literals, and (possibly
// qualified, possibly parameterized) named types.
func (p *Parser) parseNamedType() (types.TypeNode, error) {
	name := p.curToken.Literal
	p.nextToken()

	switch name {
	case "string", "number", "boolean", "null", "void", "any":
		return &types.Primitive{Kind: types.PrimitiveKind(name)}, nil
	case "mixed":
		// mixed admits every value, same as any on the JSON side.
		return &types.Primitive{Kind: types.PrimitiveAny}, nil
	case "true":
		return &types.Literal{Kind: types.LiteralBoolean, Value: true}, nil
	case "false":
		return &types.Literal{Kind: types.LiteralBoolean, Value: false}, nil
	}

	for p.curToken.Type == tokenDot {
		p.nextToken()
		if p.curToken.Type != tokenIdent {
			return nil, p.syntaxError("expected identifier after '.', got %q", p.curToken.Literal)
		}
		name += "." + p.curToken.Literal
		p.nextToken()
	}

	var args []types.TypeNode
	if p.curToken.Type == tokenLT {
		p.nextToken()
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.curToken.Type == tokenComma {
				p.nextToken()
				continue
			}
			break
		}
		if err := p.expect(tokenGT); err != nil {
			return nil, err
		}
	}
	return &types.Generic{Name: name, Args: args}, nil
}

func (p *Parser) parseTuple() (types.TypeNode, error) {
	p.nextToken()
	var elements []types.TypeNode
	for p.curToken.Type != tokenRBracket {
		element, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
		if p.curToken.Type == tokenComma {
			p.nextToken()
		}
	}
	p.nextToken()
	return &types.Tuple{Elements: elements}, nil
}

// parseParenOrFunction disambiguates a parenthesized type from function
// parameters. Anything shaped like `(...) => T` is a callable and is
// represented as an object shape with a call signature, which the
// compiler rejects.
func (p *Parser) parseParenOrFunction() (types.TypeNode, error) {
	p.nextToken()
	sawParams := false
	var inner types.TypeNode

	for p.curToken.Type != tokenRParen {
		if p.curToken.Type == tokenSpread {
			sawParams = true
			p.nextToken()
		}
		// `name: Type` (or `name?: Type`) can only be a function
		// parameter.
		if p.curToken.Type == tokenIdent &&
			(p.peekToken.Type == tokenColon || p.peekToken.Type == tokenQuestion) {
			sawParams = true
			p.nextToken()
			if p.curToken.Type == tokenQuestion {
				p.nextToken()
			}
			if err := p.expect(tokenColon); err != nil {
				return nil, err
			}
		}
		parsed, err := p.parseType()
		if err != nil {
			return nil, err
		}
		inner = parsed
		if p.curToken.Type == tokenComma {
			sawParams = true
			p.nextToken()
		}
	}
	p.nextToken()

	if p.curToken.Type == tokenArrow {
		p.nextToken()
		if _, err := p.parseNonUnionType(); err != nil {
			return nil, err
		}
		return &types.ObjectShape{HasCallSignature: true}, nil
	}
	if sawParams || inner == nil {
		return nil, p.syntaxError("expected '=>' after parameter list")
	}
	return inner, nil
}

func (p *Parser) parseObject(exact bool, closing tokenType) (types.TypeNode, error) {
	p.nextToken()
	shape := &types.ObjectShape{Exact: exact}

	for p.curToken.Type != closing {
		if p.curToken.Type == tokenEOF {
			return nil, p.syntaxError("unterminated object type")
		}
		if err := p.parseObjectMember(shape); err != nil {
			return nil, err
		}
		if p.curToken.Type == tokenComma || p.curToken.Type == tokenSemi {
			p.nextToken()
		}
	}
	p.nextToken()
	return shape, nil
}

func (p *Parser) parseObjectMember(shape *types.ObjectShape) error {
	switch p.curToken.Type {
	case tokenLBracket:
		// Indexer: [key: K]: V
		p.nextToken()
		if p.curToken.Type == tokenIdent && p.peekToken.Type == tokenColon {
			p.nextToken()
			p.nextToken()
		}
		keyType, err := p.parseType()
		if err != nil {
			return err
		}
		if err := p.expect(tokenRBracket); err != nil {
			return err
		}
		if err := p.expect(tokenColon); err != nil {
			return err
		}
		valueType, err := p.parseType()
		if err != nil {
			return err
		}
		shape.Indexer = &types.Indexer{KeyType: keyType, ValueType: valueType}
		return nil
	case tokenLParen, tokenLT:
		// Call signature member: (args): R or <T>(args): R.
		if err := p.skipCallSignature(); err != nil {
			return err
		}
		shape.HasCallSignature = true
		return nil
	case tokenSpread:
		return p.syntaxError("unexpected spread in expanded type")
	case tokenIdent, tokenString, tokenNumber:
		name := p.curToken.Literal
		p.nextToken()
		if p.curToken.Type == tokenLParen || p.curToken.Type == tokenLT {
			// Method shorthand: m(): R. The property value is callable.
			if err := p.skipCallSignature(); err != nil {
				return err
			}
			shape.Properties = append(shape.Properties, types.Property{
				Name: name,
				Type: &types.ObjectShape{HasCallSignature: true},
			})
			return nil
		}
		optional := false
		if p.curToken.Type == tokenQuestion {
			optional = true
			p.nextToken()
		}
		if err := p.expect(tokenColon); err != nil {
			return err
		}
		propType, err := p.parseType()
		if err != nil {
			return err
		}
		shape.Properties = append(shape.Properties, types.Property{
			Name:     name,
			Type:     propType,
			Optional: optional,
		})
		return nil
	default:
		return p.syntaxError("unexpected %q in object type", p.curToken.Literal)
	}
}

// skipCallSignature consumes `<...>(...)` up to and including the
// return type. The shape is recorded but never compiled, so parameter
// structure is not retained.
func (p *Parser) skipCallSignature() error {
	if p.curToken.Type == tokenLT {
		depth := 1
		p.nextToken()
		for depth > 0 {
			switch p.curToken.Type {
			case tokenLT:
				depth++
			case tokenGT:
				depth--
			case tokenEOF:
				return p.syntaxError("unterminated type parameter list")
			}
			p.nextToken()
		}
	}
	if p.curToken.Type != tokenLParen {
		return p.syntaxError("expected '(' in call signature, got %q", p.curToken.Literal)
	}
	depth := 1
	p.nextToken()
	for depth > 0 {
		switch p.curToken.Type {
		case tokenLParen:
			depth++
		case tokenRParen:
			depth--
		case tokenEOF:
			return p.syntaxError("unterminated call signature")
		}
		p.nextToken()
	}
	if p.curToken.Type == tokenColon {
		p.nextToken()
		if _, err := p.parseType(); err != nil {
			return err
		}
	}
	return nil
}
