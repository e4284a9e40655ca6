// Package parser wraps the tree-sitter grammars used for Laravel sources:
// PHP for application code and HTML for Blade templates. Blade constructs
// that HTML cannot see (directives, echoes) are recovered from text nodes
// by the extraction layer.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/standardbeagle/larnav/internal/debug"
	larnaverrors "github.com/standardbeagle/larnav/internal/errors"
	"github.com/standardbeagle/larnav/internal/types"
)

var (
	phpLangOnce  sync.Once
	phpLanguage  *tree_sitter.Language
	htmlLangOnce sync.Once
	htmlLanguage *tree_sitter.Language
)

// PHPLanguage returns the shared PHP grammar. Grammars are immutable and
// safe to share across parsers and queries.
func PHPLanguage() *tree_sitter.Language {
	phpLangOnce.Do(func() {
		phpLanguage = tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	})
	return phpLanguage
}

// HTMLLanguage returns the shared HTML grammar used for Blade templates.
func HTMLLanguage() *tree_sitter.Language {
	htmlLangOnce.Do(func() {
		htmlLanguage = tree_sitter.NewLanguage(tree_sitter_html.Language())
	})
	return htmlLanguage
}

// LanguageFor returns the grammar for a dialect.
func LanguageFor(dialect types.Dialect) *tree_sitter.Language {
	switch dialect {
	case types.DialectPHP:
		return PHPLanguage()
	case types.DialectBlade:
		return HTMLLanguage()
	default:
		return nil
	}
}

// parserPoolData encapsulates the pool and initialization for a dialect
type parserPoolData struct {
	pool sync.Pool
	once sync.Once
}

// Dialect-specific parser pools for parallel parsing without contention.
var parserPools = map[types.Dialect]*parserPoolData{
	types.DialectPHP:   {},
	types.DialectBlade: {},
}

func acquireParser(dialect types.Dialect) (*tree_sitter.Parser, error) {
	data, exists := parserPools[dialect]
	if !exists {
		return nil, fmt.Errorf("no grammar for dialect %s", dialect)
	}

	data.once.Do(func() {
		data.pool.New = func() any {
			parser := tree_sitter.NewParser()
			if err := parser.SetLanguage(LanguageFor(dialect)); err != nil {
				debug.CatastrophicError("failed to load %s grammar: %v\n", dialect, err)
				return nil
			}
			return parser
		}
	})

	v := data.pool.Get()
	if v == nil {
		return nil, fmt.Errorf("grammar for dialect %s failed to load", dialect)
	}
	return v.(*tree_sitter.Parser), nil
}

func releaseParser(dialect types.Dialect, parser *tree_sitter.Parser) {
	if parser == nil {
		return
	}
	parser.Reset()
	parserPools[dialect].pool.Put(parser)
}

// Result is one successful parse. Content is the exact buffer the tree
// positions refer to; callers must treat both as immutable.
type Result struct {
	Dialect types.Dialect
	Tree    *tree_sitter.Tree
	Content []byte
}

// Close releases the underlying tree.
func (r *Result) Close() {
	if r != nil && r.Tree != nil {
		r.Tree.Close()
	}
}

// Parse parses content from scratch.
func Parse(fileID types.FileID, path string, dialect types.Dialect, content []byte) (*Result, error) {
	return parse(fileID, path, dialect, content, nil)
}

// Reparse parses content reusing a previous tree that has been adjusted
// with Edit, which lets tree-sitter reuse unchanged subtrees.
func Reparse(fileID types.FileID, path string, dialect types.Dialect, content []byte, old *Result) (*Result, error) {
	var oldTree *tree_sitter.Tree
	if old != nil {
		oldTree = old.Tree
	}
	return parse(fileID, path, dialect, content, oldTree)
}

func parse(fileID types.FileID, path string, dialect types.Dialect, content []byte, oldTree *tree_sitter.Tree) (result *Result, err error) {
	parser, err := acquireParser(dialect)
	if err != nil {
		return nil, larnaverrors.NewParseError(fileID, path, dialect, err)
	}
	defer releaseParser(dialect, parser)

	// The tree-sitter C library can mutate input buffers via CGO, so the
	// parser gets its own copy. The copy also becomes the buffer node
	// positions refer to, keeping the caller's buffer free to change.
	parserBuffer := make([]byte, len(content))
	copy(parserBuffer, content)

	defer func() {
		if r := recover(); r != nil {
			debug.LogParse("TREE-SITTER PANIC in file %s: %v\n", path, r)
			result = nil
			err = larnaverrors.NewParseError(fileID, path, dialect, fmt.Errorf("parser panic: %v", r))
		}
	}()

	tree := parser.Parse(parserBuffer, oldTree)
	if tree == nil {
		return nil, larnaverrors.NewParseError(fileID, path, dialect, fmt.Errorf("parse returned no tree"))
	}

	return &Result{Dialect: dialect, Tree: tree, Content: parserBuffer}, nil
}

// Edit describes one buffer change for incremental reparsing, expressed
// in both byte offsets and points the way tree-sitter expects.
type Edit struct {
	StartByte      uint
	OldEndByte     uint
	NewEndByte     uint
	StartPosition  tree_sitter.Point
	OldEndPosition tree_sitter.Point
	NewEndPosition tree_sitter.Point
}

// ApplyEdit adjusts a previous parse result's tree for an upcoming
// Reparse call.
func ApplyEdit(old *Result, edit Edit) {
	if old == nil || old.Tree == nil {
		return
	}
	old.Tree.Edit(&tree_sitter.InputEdit{
		StartByte:      edit.StartByte,
		OldEndByte:     edit.OldEndByte,
		NewEndByte:     edit.NewEndByte,
		StartPosition:  edit.StartPosition,
		OldEndPosition: edit.OldEndPosition,
		NewEndPosition: edit.NewEndPosition,
	})
}

// SpanOf converts a node to the span type used across the pipeline.
func SpanOf(node *tree_sitter.Node) types.Span {
	start := node.StartPosition()
	end := node.EndPosition()
	return types.Span{
		StartByte: uint(node.StartByte()),
		EndByte:   uint(node.EndByte()),
		Row:       uint(start.Row),
		Col:       uint(start.Column),
		EndRow:    uint(end.Row),
		EndCol:    uint(end.Column),
	}
}
