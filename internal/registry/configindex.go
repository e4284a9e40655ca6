package registry

import (
	"path"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/larnav/internal/extract"
	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/types"
)

// Nesting depth indexed inside each config file. config('app.name') and
// config('database.connections.mysql') both resolve; deeper keys fall
// back to the file itself.
const maxConfigDepth = 3

// collectConfigKeys indexes one config/*.php file. Keys are dotted with
// the file's basename as the first segment, matching config() lookup
// syntax.
func collectConfigKeys(rel string, res *parser.Result, tier types.SourceTier) []types.Registration {
	base := strings.TrimSuffix(path.Base(rel), ".php")

	var returned *tree_sitter.Node
	walk(res.Tree.RootNode(), func(node *tree_sitter.Node) bool {
		if returned != nil {
			return false
		}
		if node.Kind() == "return_statement" {
			for i := uint(0); i < node.ChildCount(); i++ {
				if child := node.Child(i); child.Kind() == "array_creation_expression" {
					returned = child
					return false
				}
			}
		}
		return true
	})
	if returned == nil {
		return nil
	}

	var out []types.Registration

	// The file itself registers under its bare name so config('app')
	// resolves to the file.
	out = append(out, types.Registration{
		Name: base,
		Path: rel,
		Tier: tier,
	})

	var descend func(array *tree_sitter.Node, prefix string, depth int)
	descend = func(array *tree_sitter.Node, prefix string, depth int) {
		if depth > maxConfigDepth {
			return
		}
		for i := uint(0); i < array.ChildCount(); i++ {
			element := array.Child(i)
			if element.Kind() != "array_element_initializer" || element.ChildCount() < 3 {
				continue
			}
			key, span, ok := extract.StringLiteral(element.Child(0), res.Content)
			if !ok {
				continue
			}
			dotted := prefix + "." + key
			value := element.Child(element.ChildCount() - 1)

			reg := types.Registration{
				Name: dotted,
				Path: rel,
				Span: span,
				Tier: tier,
			}
			if text, _, ok := extract.StringLiteral(value, res.Content); ok {
				reg.Value = text
			}
			out = append(out, reg)

			if value.Kind() == "array_creation_expression" {
				descend(value, dotted, depth+1)
			}
		}
	}
	descend(returned, base, 1)

	return out
}
