package extract

import (
	"sort"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/types"
)

// Blade tag recognition rides on the HTML grammar: component tags are
// ordinary elements whose names carry the x- or livewire: prefix.
// Directives and echoes are Blade-only syntax the grammar cannot see, so
// those come from a text scan over the same buffer.
const bladeTagQuery = `
    (start_tag (tag_name) @tag)
    (self_closing_tag (tag_name) @tag)
`

var (
	bladeQueryOnce sync.Once
	bladeQuery     *tree_sitter.Query
)

func compiledBladeQuery() *tree_sitter.Query {
	bladeQueryOnce.Do(func() {
		query, _ := tree_sitter.NewQuery(parser.HTMLLanguage(), bladeTagQuery)
		if query == nil {
			debug.CatastrophicError("failed to compile Blade tag query\n")
			return
		}
		bladeQuery = query
	})
	return bladeQuery
}

func bladePatterns(fileID types.FileID, path string, res *parser.Result) []types.PatternOccurrence {
	var out []types.PatternOccurrence

	if query := compiledBladeQuery(); query != nil {
		qc := tree_sitter.NewQueryCursor()
		defer qc.Close()
		matches := qc.Matches(query, res.Tree.RootNode(), res.Content)

		for {
			match := matches.Next()
			if match == nil {
				break
			}
			for _, c := range match.Captures {
				node := c.Node
				if occ, ok := bladeTag(fileID, path, &node, res.Content); ok {
					out = append(out, occ)
				}
			}
		}
	}

	out = append(out, scanBladeText(fileID, path, res.Content)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ArgSpan.StartByte < out[j].ArgSpan.StartByte
	})

	debug.LogExtract("%s: %d occurrences\n", path, len(out))
	return out
}

func bladeTag(fileID types.FileID, path string, nameNode *tree_sitter.Node, content []byte) (types.PatternOccurrence, bool) {
	name := nodeText(nameNode, content)
	span := parser.SpanOf(nameNode)

	callSpan := span
	if tag := nameNode.Parent(); tag != nil {
		callSpan = parser.SpanOf(tag)
	}

	occ := types.PatternOccurrence{
		File:     fileID,
		Path:     path,
		ArgSpan:  span,
		CallSpan: callSpan,
	}

	switch {
	case name == "x-slot" || strings.HasPrefix(name, "x-slot:"):
		occ.Kind = types.PatternBladeSlot
		occ.Target = strings.TrimPrefix(strings.TrimPrefix(name, "x-slot"), ":")
	case strings.HasPrefix(name, "x-"):
		occ.Kind = types.PatternBladeComponent
		occ.Target = strings.TrimPrefix(name, "x-")
	case strings.HasPrefix(name, "livewire:"):
		occ.Kind = types.PatternBladeLivewire
		occ.Target = strings.TrimPrefix(name, "livewire:")
	default:
		return types.PatternOccurrence{}, false
	}

	if occ.Target == "" {
		return types.PatternOccurrence{}, false
	}
	return occ, true
}

// lineIndex converts byte offsets to rows and columns without rescanning.
type lineIndex struct {
	starts []uint // byte offset of each line start
}

func newLineIndex(content []byte) *lineIndex {
	starts := []uint{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, uint(i)+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (li *lineIndex) point(offset uint) (row, col uint) {
	i := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	return uint(i), offset - li.starts[i]
}

func (li *lineIndex) span(start, end uint) types.Span {
	row, col := li.point(start)
	endRow, endCol := li.point(end)
	return types.Span{
		StartByte: start, EndByte: end,
		Row: row, Col: col,
		EndRow: endRow, EndCol: endCol,
	}
}

// scanBladeText recognizes directives, echoes, and comments in raw
// template text.
func scanBladeText(fileID types.FileID, path string, content []byte) []types.PatternOccurrence {
	var out []types.PatternOccurrence
	li := newLineIndex(content)
	src := string(content)

	i := 0
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "{{--"):
			// Blade comment, nothing inside counts.
			end := strings.Index(src[i+4:], "--}}")
			if end < 0 {
				return out
			}
			i += 4 + end + 4

		case strings.HasPrefix(src[i:], "{{"):
			occ, next, ok := scanEcho(fileID, path, li, src, i, "{{", "}}")
			if ok {
				out = append(out, occ)
			}
			i = next

		case strings.HasPrefix(src[i:], "{!!"):
			occ, next, ok := scanEcho(fileID, path, li, src, i, "{!!", "!!}")
			if ok {
				out = append(out, occ)
			}
			i = next

		case src[i] == '@':
			occ, viewOcc, next, ok := scanDirective(fileID, path, li, src, i)
			if !ok {
				i = next
				continue
			}
			if occ.Target == "verbatim" {
				// Echo syntax inside @verbatim is literal output.
				end := strings.Index(src[next:], "@endverbatim")
				if end < 0 {
					out = append(out, occ)
					return out
				}
				out = append(out, occ)
				i = next + end
				continue
			}
			out = append(out, occ)
			if viewOcc != nil {
				out = append(out, *viewOcc)
			}
			i = next

		default:
			i++
		}
	}

	return out
}

func scanEcho(fileID types.FileID, path string, li *lineIndex, src string, start int, open, closer string) (types.PatternOccurrence, int, bool) {
	inner := start + len(open)
	end := strings.Index(src[inner:], closer)
	if end < 0 {
		return types.PatternOccurrence{}, len(src), false
	}
	end += inner

	expr := src[inner:end]
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return types.PatternOccurrence{}, end + len(closer), false
	}
	lead := strings.Index(expr, trimmed)

	return types.PatternOccurrence{
		Kind:     types.PatternBladeEcho,
		File:     fileID,
		Path:     path,
		Target:   trimmed,
		ArgSpan:  li.span(uint(inner+lead), uint(inner+lead+len(trimmed))),
		CallSpan: li.span(uint(start), uint(end+len(closer))),
	}, end + len(closer), true
}

// scanDirective recognizes @name and @name(args). Unknown names only
// count when an argument list follows; @@ escapes are skipped.
func scanDirective(fileID types.FileID, path string, li *lineIndex, src string, start int) (types.PatternOccurrence, *types.PatternOccurrence, int, bool) {
	if start+1 >= len(src) {
		return types.PatternOccurrence{}, nil, start + 1, false
	}
	if src[start+1] == '@' {
		return types.PatternOccurrence{}, nil, start + 2, false
	}

	nameEnd := start + 1
	for nameEnd < len(src) && isDirectiveNameByte(src[nameEnd]) {
		nameEnd++
	}
	name := src[start+1 : nameEnd]
	if name == "" {
		return types.PatternOccurrence{}, nil, start + 1, false
	}

	info, known := bladeDirectives[name]
	argsEnd := nameEnd
	var argText string
	if nameEnd < len(src) && src[nameEnd] == '(' {
		depth := 0
		j := nameEnd
		for ; j < len(src); j++ {
			if src[j] == '(' {
				depth++
			} else if src[j] == ')' {
				depth--
				if depth == 0 {
					j++
					break
				}
			}
		}
		argText = src[nameEnd:j]
		argsEnd = j
	} else if !known {
		return types.PatternOccurrence{}, nil, nameEnd, false
	}

	occ := types.PatternOccurrence{
		Kind:     types.PatternBladeDirective,
		File:     fileID,
		Path:     path,
		Target:   name,
		ArgSpan:  li.span(uint(start), uint(nameEnd)),
		CallSpan: li.span(uint(start), uint(argsEnd)),
	}

	// View-taking directives additionally produce a resolvable view
	// occurrence for their literal argument.
	var viewOcc *types.PatternOccurrence
	if known && info.TakesView && argText != "" {
		if lit, litStart, ok := firstQuotedLiteral(argText); ok {
			abs := nameEnd + litStart
			viewOcc = &types.PatternOccurrence{
				Kind:     types.PatternView,
				File:     fileID,
				Path:     path,
				Target:   lit,
				ArgSpan:  li.span(uint(abs), uint(abs+len(lit))),
				CallSpan: occ.CallSpan,
			}
		}
	}

	return occ, viewOcc, argsEnd, true
}

func isDirectiveNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

// firstQuotedLiteral finds the first simple quoted string inside a
// directive argument list. Interpolation or concatenation makes the
// argument dynamic, reported as not found.
func firstQuotedLiteral(args string) (string, int, bool) {
	for i := 0; i < len(args); i++ {
		q := args[i]
		if q != '\'' && q != '"' {
			continue
		}
		end := strings.IndexByte(args[i+1:], q)
		if end < 0 {
			return "", 0, false
		}
		lit := args[i+1 : i+1+end]
		if q == '"' && strings.ContainsAny(lit, "$") {
			return "", 0, false
		}
		rest := strings.TrimSpace(args[i+1+end+1:])
		if strings.HasPrefix(rest, ".") {
			return "", 0, false
		}
		return lit, i + 1, true
	}
	return "", 0, false
}
