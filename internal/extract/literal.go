package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/types"
)

// literal is a recognized constant argument.
type literal struct {
	Text string
	Span types.Span // covers only the content, quotes excluded
}

// stringLiteral extracts a constant string from a PHP string node.
// Interpolated strings report ok=false: a dynamic target is never a
// pattern occurrence.
func stringLiteral(node *tree_sitter.Node, content []byte) (literal, bool) {
	if node == nil {
		return literal{}, false
	}
	switch node.Kind() {
	case "string":
		// Single-quoted, always constant.
		return innerLiteral(node, content, decodeSingleQuoted)
	case "encapsed_string":
		// Double-quoted, constant only without interpolation.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			switch child.Kind() {
			case "string_content", "escape_sequence", `"`:
			default:
				return literal{}, false
			}
		}
		return innerLiteral(node, content, decodeDoubleQuoted)
	}
	return literal{}, false
}

// innerLiteral returns the decoded content between the quotes. The span
// still covers the raw source range; empty strings keep a zero-width
// span just after the opening quote.
func innerLiteral(node *tree_sitter.Node, content []byte, decode func(string) string) (literal, bool) {
	start := node.StartByte()
	end := node.EndByte()
	if end-start < 2 {
		return literal{}, false
	}

	span := parser.SpanOf(node)
	span.StartByte++
	span.EndByte--
	span.Col++
	if span.EndCol > 0 {
		span.EndCol--
	}
	return literal{
		Text: decode(string(content[start+1 : end-1])),
		Span: span,
	}, true
}

// decodeSingleQuoted resolves the two escapes PHP recognizes inside
// single quotes. Any other backslash stays literal.
func decodeSingleQuoted(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) && (raw[i+1] == '\'' || raw[i+1] == '\\') {
			i++
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// decodeDoubleQuoted resolves PHP's double-quoted escape table: the
// named escapes, hex and octal byte escapes, and \u{...} codepoints.
// Unrecognized escapes keep their backslash, matching PHP.
func decodeDoubleQuoted(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			b.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case '"', '\\', '$':
			b.WriteByte(c)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'f':
			b.WriteByte('\f')
		case 'e':
			b.WriteByte(0x1b)
		case 'x':
			n, width := hexByte(raw[i+1:], 2)
			if width == 0 {
				b.WriteString(`\x`)
				break
			}
			b.WriteByte(byte(n))
			i += width
		case 'u':
			if i+1 < len(raw) && raw[i+1] == '{' {
				if end := strings.IndexByte(raw[i+1:], '}'); end > 1 {
					if n, width := hexByte(raw[i+2:], end-1); width == end-1 {
						b.WriteRune(rune(n))
						i += end + 1
						break
					}
				}
			}
			b.WriteString(`\u`)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n, width := 0, 0
			for width < 3 && i+width < len(raw) && raw[i+width] >= '0' && raw[i+width] <= '7' {
				n = n*8 + int(raw[i+width]-'0')
				width++
			}
			b.WriteByte(byte(n))
			i += width - 1
		default:
			b.WriteByte('\\')
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hexByte reads up to max hex digits, returning the value and how many
// digits were consumed.
func hexByte(s string, max int) (int, int) {
	n, width := 0, 0
	for width < max && width < len(s) {
		c := s[width]
		switch {
		case c >= '0' && c <= '9':
			n = n*16 + int(c-'0')
		case c >= 'a' && c <= 'f':
			n = n*16 + int(c-'a'+10)
		case c >= 'A' && c <= 'F':
			n = n*16 + int(c-'A'+10)
		default:
			return n, width
		}
		width++
	}
	return n, width
}

// classConstant extracts Foo::class arguments, returning the class name
// text as written (leading backslash preserved for the resolver).
func classConstant(node *tree_sitter.Node, content []byte) (literal, bool) {
	if node == nil || node.Kind() != "class_constant_access_expression" {
		return literal{}, false
	}
	// Shape: scope :: name, where name must be the class keyword.
	scope := node.Child(0)
	member := node.Child(node.ChildCount() - 1)
	if scope == nil || member == nil {
		return literal{}, false
	}
	if string(content[member.StartByte():member.EndByte()]) != "class" {
		return literal{}, false
	}
	return literal{
		Text: string(content[scope.StartByte():scope.EndByte()]),
		Span: parser.SpanOf(scope),
	}, true
}

// argumentExpr unwraps an argument node to the expression it carries.
func argumentExpr(arguments *tree_sitter.Node, index int) *tree_sitter.Node {
	if arguments == nil {
		return nil
	}
	seen := 0
	for i := uint(0); i < arguments.ChildCount(); i++ {
		child := arguments.Child(i)
		if child.Kind() != "argument" {
			continue
		}
		if seen == index {
			// Named arguments nest the value after the name and colon.
			return child.Child(child.ChildCount() - 1)
		}
		seen++
	}
	return nil
}

// argumentCount counts real argument children.
func argumentCount(arguments *tree_sitter.Node) int {
	if arguments == nil {
		return 0
	}
	count := 0
	for i := uint(0); i < arguments.ChildCount(); i++ {
		if arguments.Child(i).Kind() == "argument" {
			count++
		}
	}
	return count
}

// arrayStringElements extracts every constant string element of an array
// literal. Non-literal elements are skipped, not fatal: middleware arrays
// routinely mix aliases with class constants.
func arrayStringElements(node *tree_sitter.Node, content []byte) []literal {
	if node.Kind() != "array_creation_expression" {
		return nil
	}
	var out []literal
	for i := uint(0); i < node.ChildCount(); i++ {
		element := node.Child(i)
		if element.Kind() != "array_element_initializer" {
			continue
		}
		value := element.Child(element.ChildCount() - 1)
		if value == nil {
			continue
		}
		if lit, ok := stringLiteral(value, content); ok {
			out = append(out, lit)
			continue
		}
		if lit, ok := classConstant(value, content); ok {
			out = append(out, lit)
		}
	}
	return out
}

// nodeText returns the raw source of a node.
func nodeText(node *tree_sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// StringLiteral is the exported form of the constant-string check, used
// by registry scans.
func StringLiteral(node *tree_sitter.Node, content []byte) (string, types.Span, bool) {
	lit, ok := stringLiteral(node, content)
	return lit.Text, lit.Span, ok
}

// ClassConstant is the exported form of the Foo::class check.
func ClassConstant(node *tree_sitter.Node, content []byte) (string, types.Span, bool) {
	lit, ok := classConstant(node, content)
	return lit.Text, lit.Span, ok
}

// Argument returns the index-th argument expression of a call's
// arguments node, or nil.
func Argument(arguments *tree_sitter.Node, index int) *tree_sitter.Node {
	return argumentExpr(arguments, index)
}

// NodeText returns the raw source of a node.
func NodeText(node *tree_sitter.Node, content []byte) string {
	return nodeText(node, content)
}

// bareScopeName strips a leading backslash and namespace qualifiers from
// a scope reference so \Illuminate\Support\Facades\Route matches the
// Route rule table.
func bareScopeName(scope string) string {
	scope = strings.TrimPrefix(scope, `\`)
	if idx := strings.LastIndex(scope, `\`); idx >= 0 {
		return scope[idx+1:]
	}
	return scope
}
