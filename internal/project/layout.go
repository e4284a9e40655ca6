package project

import (
	"os"
	"path"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/extract"
	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/types"
)

// Layout discovery: the directories resources resolve against are
// themselves project configuration. config/view.php names the template
// search paths and config/livewire.php can move the component namespace
// (projects upgraded from Livewire 2 keep App\Http\Livewire).

const defaultViewRoot = "resources/views"
const defaultLivewireRoot = "app/Livewire"

// discoverViewRoots reads the 'paths' array of config/view.php. Entries
// built from base_path() and resource_path() calls map onto
// project-relative paths; anything dynamic is skipped. A missing or
// unreadable file keeps the framework default.
func discoverViewRoots(proj *Project) []string {
	roots := collectViewPaths(proj)
	if len(roots) == 0 {
		return []string{defaultViewRoot}
	}
	return roots
}

func collectViewPaths(proj *Project) []string {
	array := returnedConfigArray(proj, "config/view.php")
	if array == nil {
		return nil
	}
	defer array.res.Close()

	var out []string
	seen := map[string]bool{}
	forEachEntry(array.node, array.res.Content, func(key string, value *tree_sitter.Node) {
		if key != "paths" || value.Kind() != "array_creation_expression" {
			return
		}
		for i := uint(0); i < value.ChildCount(); i++ {
			element := value.Child(i)
			if element.Kind() != "array_element_initializer" {
				continue
			}
			entry := element.Child(element.ChildCount() - 1)
			rel, ok := pathFromEntry(entry, array.res.Content)
			if ok && !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
			}
		}
	})
	return out
}

// pathFromEntry maps one 'paths' element to a project-relative path.
// Recognized forms: base_path('x'), resource_path('x'), and plain
// string literals taken relative to the root.
func pathFromEntry(entry *tree_sitter.Node, content []byte) (string, bool) {
	if entry == nil {
		return "", false
	}
	if text, _, ok := extract.StringLiteral(entry, content); ok {
		// A bare string is only usable when it stays inside the project.
		if text == "" || strings.HasPrefix(text, "/") {
			return "", false
		}
		return cleanRel(text), true
	}
	if entry.Kind() != "function_call_expression" {
		return "", false
	}
	fn := entry.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	arg := extract.Argument(entry.ChildByFieldName("arguments"), 0)
	inner, _, _ := extract.StringLiteral(arg, content)

	switch extract.NodeText(fn, content) {
	case "base_path":
		if inner == "" {
			return "", false
		}
		return cleanRel(inner), true
	case "resource_path":
		if inner == "" {
			return "resources", true
		}
		return cleanRel("resources/" + inner), true
	}
	return "", false
}

// discoverLivewireClassRoot reads class_namespace from
// config/livewire.php and maps it onto the PSR-4 application directory.
func discoverLivewireClassRoot(proj *Project) string {
	array := returnedConfigArray(proj, "config/livewire.php")
	if array == nil {
		return defaultLivewireRoot
	}
	defer array.res.Close()

	root := defaultLivewireRoot
	forEachEntry(array.node, array.res.Content, func(key string, value *tree_sitter.Node) {
		if key != "class_namespace" {
			return
		}
		if ns, _, ok := extract.StringLiteral(value, array.res.Content); ok {
			if dir, ok := namespaceToDir(ns); ok {
				root = dir
			}
		}
	})
	return root
}

// namespaceToDir maps App\Http\Livewire style namespaces onto app/
// paths. Namespaces outside App\ are not mappable without composer
// autoload data the layout scan does not carry.
func namespaceToDir(ns string) (string, bool) {
	ns = strings.TrimPrefix(ns, `\`)
	if ns == "App" {
		return "app", true
	}
	if !strings.HasPrefix(ns, `App\`) {
		return "", false
	}
	rest := strings.TrimPrefix(ns, `App\`)
	return "app/" + strings.ReplaceAll(rest, `\`, "/"), true
}

// configArray pairs a parsed file with its returned top-level array.
type configArray struct {
	res  *parser.Result
	node *tree_sitter.Node
}

func returnedConfigArray(proj *Project, rel string) *configArray {
	content, err := os.ReadFile(proj.Abs(rel))
	if err != nil {
		return nil
	}
	res, err := parser.Parse(0, rel, types.DialectPHP, content)
	if err != nil {
		debug.Log("project", "layout scan of %s failed: %v\n", rel, err)
		return nil
	}

	var returned *tree_sitter.Node
	var find func(node *tree_sitter.Node)
	find = func(node *tree_sitter.Node) {
		if returned != nil {
			return
		}
		if node.Kind() == "return_statement" {
			for i := uint(0); i < node.ChildCount(); i++ {
				if child := node.Child(i); child.Kind() == "array_creation_expression" {
					returned = child
					return
				}
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			find(node.Child(i))
		}
	}
	find(res.Tree.RootNode())

	if returned == nil {
		res.Close()
		return nil
	}
	return &configArray{res: res, node: returned}
}

// forEachEntry visits the string-keyed elements of an array literal.
func forEachEntry(array *tree_sitter.Node, content []byte, visit func(key string, value *tree_sitter.Node)) {
	for i := uint(0); i < array.ChildCount(); i++ {
		element := array.Child(i)
		if element.Kind() != "array_element_initializer" || element.ChildCount() < 3 {
			continue
		}
		key, _, ok := extract.StringLiteral(element.Child(0), content)
		if !ok {
			continue
		}
		visit(key, element.Child(element.ChildCount()-1))
	}
}

// cleanRel normalizes a configured path for probing.
func cleanRel(p string) string {
	return strings.TrimPrefix(path.Clean(strings.TrimPrefix(p, "/")), "./")
}
