package parser

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/pjm0616/flow-jsonschema/internal/types"
)

// ReExport is an `export type {X} from './other'` specifier (or a local
// `export type {X}` alias when Module is empty), possibly renaming the
// exported name with `as`.
type ReExport struct {
	ExportedName string
	LocalName    string
	Module       string
	Line         int
}

// ModuleExports is everything the scanner found in one module:
// exported type alias declarations, re-export specifiers, and
// non-exported local type aliases (needed to resolve local re-exports).
type ModuleExports struct {
	Declarations []types.ExportedType
	ReExports    []ReExport
	Locals       []types.ExportedType
}

// ScanExports walks a module's source text for type alias declarations
// and type re-export specifiers. Positions are 1-based, pointing at the
// declared name, which is where the oracle is asked for the expanded
// type. The snippet is the minimal source span of the declaration.
func ScanExports(path string, source string) (ModuleExports, error) {
	lines := strings.Split(source, "\n")
	var out ModuleExports

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(trimmed, "export type"):
			rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "export type"))
			if strings.HasPrefix(rest, "{") {
				specs, err := parseReExportSpecifiers(path, rest, i+1)
				if err != nil {
					return ModuleExports{}, err
				}
				out.ReExports = append(out.ReExports, specs...)
				continue
			}
			decl, endLine, ok := scanDeclaration(path, lines, i, "export type")
			if ok {
				out.Declarations = append(out.Declarations, decl)
				i = endLine
			}
		case strings.HasPrefix(trimmed, "type "):
			decl, endLine, ok := scanDeclaration(path, lines, i, "type")
			if ok {
				out.Locals = append(out.Locals, decl)
				i = endLine
			}
		}
	}
	return out, nil
}

// scanDeclaration captures one `type Name = ...;` declaration starting
// at line index start. Returns the declaration and the index of its
// last line.
func scanDeclaration(path string, lines []string, start int, prefix string) (types.ExportedType, int, bool) {
	raw := lines[start]
	trimmed := strings.TrimSpace(raw)
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
	name := leadingIdent(rest)
	if name == "" {
		return types.ExportedType{}, start, false
	}

	// Column of the declared name within the raw line (1-based).
	typeIdx := strings.Index(raw, "type")
	nameIdx := strings.Index(raw[typeIdx+len("type"):], name)
	column := typeIdx + len("type") + nameIdx + 1

	snippet, endLine := captureSpan(lines, start)
	return types.ExportedType{
		Name:      name,
		LocalName: name,
		File:      path,
		Line:      start + 1,
		Column:    column,
		Snippet:   snippet,
	}, endLine, true
}

// captureSpan consumes source lines until the terminating semicolon at
// bracket depth zero, returning the joined span and its last line
// index. A declaration without a terminator runs to end of file.
func captureSpan(lines []string, start int) (string, int) {
	depth := 0
	var quote byte
	var span []string
	for i := start; i < len(lines); i++ {
		line := lines[i]
		for j := 0; j < len(line); j++ {
			ch := line[j]
			if quote != 0 {
				if ch == '\\' {
					j++
				} else if ch == quote {
					quote = 0
				}
				continue
			}
			// An arrow's '>' is not a bracket.
			if ch == '=' && j+1 < len(line) && line[j+1] == '>' {
				j++
				continue
			}
			switch ch {
			case '\'', '"':
				quote = ch
			case '{', '[', '(', '<':
				depth++
			case '}', ']', ')', '>':
				depth--
			case ';':
				if depth == 0 {
					span = append(span, line[:j+1])
					return strings.Join(span, "\n"), i
				}
			}
		}
		span = append(span, line)
	}
	return strings.TrimRight(strings.Join(span, "\n"), " \t\n"), len(lines) - 1
}

// parseReExportSpecifiers parses `{A, B as C} from './mod';` clauses.
func parseReExportSpecifiers(path string, rest string, line int) ([]ReExport, error) {
	closing := strings.Index(rest, "}")
	if closing < 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(path + ": unterminated export specifier list")
	}
	list := rest[1:closing]
	tail := strings.TrimSpace(rest[closing+1:])

	module := ""
	if strings.HasPrefix(tail, "from") {
		quoted := strings.TrimSpace(strings.TrimPrefix(tail, "from"))
		if len(quoted) < 2 || (quoted[0] != '\'' && quoted[0] != '"') {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(path + ": malformed re-export module specifier")
		}
		end := strings.IndexByte(quoted[1:], quoted[0])
		if end < 0 {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(path + ": malformed re-export module specifier")
		}
		module = quoted[1 : end+1]
	}

	var specs []ReExport
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		local, exported := part, part
		if idx := strings.Index(part, " as "); idx >= 0 {
			local = strings.TrimSpace(part[:idx])
			exported = strings.TrimSpace(part[idx+len(" as "):])
		}
		specs = append(specs, ReExport{
			ExportedName: exported,
			LocalName:    local,
			Module:       module,
			Line:         line,
		})
	}
	return specs, nil
}

func leadingIdent(s string) string {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		isIdent := ch == '_' || ch == '$' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(i > 0 && ch >= '0' && ch <= '9')
		if !isIdent {
			return s[:i]
		}
	}
	return s
}
