package parser

import (
	"unicode"
	"unicode/utf8"
)

type tokenType string

const (
	tokenEOF      tokenType = "EOF"
	tokenIllegal  tokenType = "ILLEGAL"
	tokenIdent    tokenType = "IDENT"
	tokenString   tokenType = "STRING"
	tokenNumber   tokenType = "NUMBER"
	tokenLParen   tokenType = "("
	tokenRParen   tokenType = ")"
	tokenLBrace   tokenType = "{"
	tokenRBrace   tokenType = "}"
	tokenLExact   tokenType = "{|"
	tokenRExact   tokenType = "|}"
	tokenLBracket tokenType = "["
	tokenRBracket tokenType = "]"
	tokenLT       tokenType = "<"
	tokenGT       tokenType = ">"
	tokenComma    tokenType = ","
	tokenColon    tokenType = ":"
	tokenSemi     tokenType = ";"
	tokenQuestion tokenType = "?"
	tokenPipe     tokenType = "|"
	tokenArrow    tokenType = "=>"
	tokenDot      tokenType = "."
	tokenSpread   tokenType = "..."
	tokenMinus    tokenType = "-"
)

type token struct {
	Type    tokenType
	Literal string
	Line    int
	Column  int
}

// lexer tokenizes the type-syntax text returned by the oracle.
type lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *lexer) nextToken() token {
	l.skipWhitespace()

	line, column := l.line, l.column
	tok := func(t tokenType, literal string) token {
		return token{Type: t, Literal: literal, Line: line, Column: column}
	}

	switch {
	case l.ch == 0:
		return tok(tokenEOF, "")
	case l.ch == '(':
		l.readChar()
		return tok(tokenLParen, "(")
	case l.ch == ')':
		l.readChar()
		return tok(tokenRParen, ")")
	case l.ch == '{':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return tok(tokenLExact, "{|")
		}
		l.readChar()
		return tok(tokenLBrace, "{")
	case l.ch == '}':
		l.readChar()
		return tok(tokenRBrace, "}")
	case l.ch == '[':
		l.readChar()
		return tok(tokenLBracket, "[")
	case l.ch == ']':
		l.readChar()
		return tok(tokenRBracket, "]")
	case l.ch == '<':
		l.readChar()
		return tok(tokenLT, "<")
	case l.ch == '>':
		l.readChar()
		return tok(tokenGT, ">")
	case l.ch == ',':
		l.readChar()
		return tok(tokenComma, ",")
	case l.ch == ':':
		l.readChar()
		return tok(tokenColon, ":")
	case l.ch == ';':
		l.readChar()
		return tok(tokenSemi, ";")
	case l.ch == '?':
		l.readChar()
		return tok(tokenQuestion, "?")
	case l.ch == '|':
		if l.peekChar() == '}' {
			l.readChar()
			l.readChar()
			return tok(tokenRExact, "|}")
		}
		l.readChar()
		return tok(tokenPipe, "|")
	case l.ch == '=':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return tok(tokenArrow, "=>")
		}
		l.readChar()
		return tok(tokenIllegal, "=")
	case l.ch == '.':
		if l.peekChar() == '.' {
			l.readChar()
			l.readChar()
			if l.ch == '.' {
				l.readChar()
			}
			return tok(tokenSpread, "...")
		}
		l.readChar()
		return tok(tokenDot, ".")
	case l.ch == '-':
		l.readChar()
		return tok(tokenMinus, "-")
	case l.ch == '"' || l.ch == '\'':
		literal, ok := l.readString(l.ch)
		if !ok {
			return tok(tokenIllegal, literal)
		}
		return tok(tokenString, literal)
	case unicode.IsDigit(l.ch):
		return tok(tokenNumber, l.readNumber())
	case isIdentStart(l.ch):
		return tok(tokenIdent, l.readIdent())
	default:
		ch := l.ch
		l.readChar()
		return tok(tokenIllegal, string(ch))
	}
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString consumes a quoted string literal and returns its unquoted
// value. Only simple escapes are handled; the oracle prints type text,
// not arbitrary source.
func (l *lexer) readString(quote rune) (string, bool) {
	l.readChar()
	var out []rune
	for l.ch != quote {
		if l.ch == 0 {
			return string(out), false
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, l.ch)
			}
			l.readChar()
			continue
		}
		out = append(out, l.ch)
		l.readChar()
	}
	l.readChar()
	return string(out), true
}

func (l *lexer) readNumber() string {
	start := l.position
	for unicode.IsDigit(l.ch) || l.ch == '.' || l.ch == 'e' || l.ch == 'E' ||
		((l.ch == '+' || l.ch == '-') && (l.input[l.position-1] == 'e' || l.input[l.position-1] == 'E')) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *lexer) readIdent() string {
	start := l.position
	for isIdentStart(l.ch) || unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$'
}
