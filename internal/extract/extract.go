package extract

import (
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/types"
)

// One generic call query per process. Dispatch happens in Go against the
// rule tables, so new patterns never mean new query compilations.
const phpCallQuery = `
    (function_call_expression) @call.function
    (scoped_call_expression) @call.scoped
    (member_call_expression) @call.member
`

var (
	phpQueryOnce sync.Once
	phpQuery     *tree_sitter.Query
)

func compiledPHPQuery() *tree_sitter.Query {
	phpQueryOnce.Do(func() {
		query, _ := tree_sitter.NewQuery(parser.PHPLanguage(), phpCallQuery)
		// The bindings don't report errors reliably, so check the query
		// itself.
		if query == nil {
			debug.CatastrophicError("failed to compile PHP call query\n")
			return
		}
		phpQuery = query
	})
	return phpQuery
}

// File extracts every pattern occurrence from one parsed file in a single
// pass. Results are ordered by position.
func File(fileID types.FileID, path string, res *parser.Result) []types.PatternOccurrence {
	if res == nil || res.Tree == nil {
		return nil
	}
	switch res.Dialect {
	case types.DialectPHP:
		return phpPatterns(fileID, path, res)
	case types.DialectBlade:
		return bladePatterns(fileID, path, res)
	default:
		return nil
	}
}

func phpPatterns(fileID types.FileID, path string, res *parser.Result) []types.PatternOccurrence {
	query := compiledPHPQuery()
	if query == nil {
		return nil
	}

	e := &extractor{
		fileID:  fileID,
		path:    path,
		content: res.Content,
	}

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(query, res.Tree.RootNode(), res.Content)

	captureNames := query.CaptureNames()

	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, c := range match.Captures {
			node := c.Node
			switch captureNames[c.Index] {
			case "call.function":
				e.functionCall(&node)
			case "call.scoped":
				e.scopedCall(&node)
			case "call.member":
				e.memberCall(&node)
			}
		}
	}

	debug.LogExtract("%s: %d occurrences\n", path, len(e.out))
	return e.out
}

type extractor struct {
	fileID  types.FileID
	path    string
	content []byte
	out     []types.PatternOccurrence
}

func (e *extractor) functionCall(node *tree_sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	// Plain and globally-qualified names only: a method named view on
	// some object is a different thing entirely.
	name := nodeText(fn, e.content)
	name = strings.TrimPrefix(name, `\`)
	if strings.Contains(name, `\`) {
		return
	}

	r, ok := functionRules[name]
	if !ok {
		return
	}
	e.emit(r, node, node.ChildByFieldName("arguments"))
}

func (e *extractor) scopedCall(node *tree_sitter.Node) {
	scope := node.ChildByFieldName("scope")
	method := node.ChildByFieldName("name")
	if scope == nil || method == nil {
		return
	}

	methods, ok := scopedRules[bareScopeName(nodeText(scope, e.content))]
	if !ok {
		return
	}
	r, ok := methods[nodeText(method, e.content)]
	if !ok {
		return
	}
	e.emit(r, node, node.ChildByFieldName("arguments"))
}

func (e *extractor) memberCall(node *tree_sitter.Node) {
	method := node.ChildByFieldName("name")
	if method == nil {
		return
	}
	name := nodeText(method, e.content)
	r, ok := memberRules[name]
	if !ok {
		return
	}
	if memberNeedsAppReceiver[name] && !e.receiverIsApp(node.ChildByFieldName("object")) {
		return
	}
	e.emit(r, node, node.ChildByFieldName("arguments"))
}

// receiverIsApp recognizes app()->make(...) and App::getInstance()->make(...).
func (e *extractor) receiverIsApp(object *tree_sitter.Node) bool {
	if object == nil {
		return false
	}
	switch object.Kind() {
	case "function_call_expression":
		fn := object.ChildByFieldName("function")
		return fn != nil && strings.TrimPrefix(nodeText(fn, e.content), `\`) == "app"
	case "scoped_call_expression":
		scope := object.ChildByFieldName("scope")
		return scope != nil && bareScopeName(nodeText(scope, e.content)) == "App"
	}
	return false
}

func (e *extractor) emit(r callRule, callNode, argsNode *tree_sitter.Node) {
	target := argumentExpr(argsNode, r.TargetArg)
	if target == nil {
		return
	}

	callSpan := parser.SpanOf(callNode)

	if r.Kind == types.PatternControllerPair {
		e.emitControllerPair(r, target, callSpan, argsNode)
		return
	}

	if r.AllowArray && target.Kind() == "array_creation_expression" {
		for _, lit := range arrayStringElements(target, e.content) {
			e.append(r, lit, callSpan, argsNode)
		}
		return
	}

	lit, ok := stringLiteral(target, e.content)
	if !ok && r.AllowClassConstant {
		lit, ok = classConstant(target, e.content)
	}
	if !ok {
		// Dynamic target: not an occurrence.
		return
	}
	e.append(r, lit, callSpan, argsNode)
}

// emitControllerPair handles action([UserController::class, 'index']) and
// the legacy action('UserController@index') string form.
func (e *extractor) emitControllerPair(r callRule, target *tree_sitter.Node, callSpan types.Span, argsNode *tree_sitter.Node) {
	occ := types.PatternOccurrence{
		Kind:     r.Kind,
		File:     e.fileID,
		Path:     e.path,
		CallSpan: callSpan,
	}

	switch target.Kind() {
	case "array_creation_expression":
		elements := arrayStringElements(target, e.content)
		if len(elements) == 0 {
			return
		}
		occ.Target = elements[0].Text
		occ.ArgSpan = elements[0].Span
		if len(elements) > 1 {
			occ.Secondary = elements[1].Text
			occ.SecondarySpan = elements[1].Span
		}
	default:
		lit, ok := stringLiteral(target, e.content)
		if !ok {
			lit, ok = classConstant(target, e.content)
		}
		if !ok {
			return
		}
		occ.Target = lit.Text
		occ.ArgSpan = lit.Span
		if at := strings.Index(lit.Text, "@"); at > 0 {
			occ.Target = lit.Text[:at]
			occ.Secondary = lit.Text[at+1:]
			occ.SecondarySpan = lit.Span
		}
	}

	e.out = append(e.out, occ)
}

func (e *extractor) append(r callRule, lit literal, callSpan types.Span, argsNode *tree_sitter.Node) {
	occ := types.PatternOccurrence{
		Kind:     r.Kind,
		File:     e.fileID,
		Path:     e.path,
		Target:   lit.Text,
		ArgSpan:  lit.Span,
		CallSpan: callSpan,
	}

	if r.DetectFallback && argumentCount(argsNode) > r.TargetArg+1 {
		occ.HasFallback = true
	}

	if r.SecondaryArg >= 0 {
		if expr := argumentExpr(argsNode, r.SecondaryArg); expr != nil {
			if sec, ok := stringLiteral(expr, e.content); ok {
				occ.Secondary = sec.Text
				occ.SecondarySpan = sec.Span
			}
		}
	}
	if r.FixedSecondary != "" {
		occ.Secondary = r.FixedSecondary
	}

	e.out = append(e.out, occ)
}
