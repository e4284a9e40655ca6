package registry

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/larnav/internal/extract"
	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/types"
)

// walk visits a subtree depth-first. The visitor returns false to prune.
func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), visit)
	}
}

// fileRegistrations holds what one file contributed, merged into the
// snapshot by the scanner.
type fileRegistrations struct {
	Middleware []types.Registration
	Bindings   []types.Registration
	Routes     []types.Registration
}

// collectRegistrations extracts middleware aliases, container bindings,
// and named routes from one parsed PHP file.
func collectRegistrations(rel string, res *parser.Result, tier types.SourceTier) fileRegistrations {
	c := &registrationCollector{
		rel:     rel,
		content: res.Content,
		tier:    tier,
	}

	walk(res.Tree.RootNode(), func(node *tree_sitter.Node) bool {
		switch node.Kind() {
		case "member_call_expression":
			c.memberCall(node)
		case "property_declaration":
			c.kernelProperty(node)
		}
		return true
	})

	return c.out
}

type registrationCollector struct {
	rel     string
	content []byte
	tier    types.SourceTier
	out     fileRegistrations
}

var bindingMethods = map[string]bool{
	"bind":        true,
	"bindIf":      true,
	"singleton":   true,
	"singletonIf": true,
	"scoped":      true,
	"scopedIf":    true,
	"instance":    true,
}

func (c *registrationCollector) memberCall(node *tree_sitter.Node) {
	method := node.ChildByFieldName("name")
	if method == nil {
		return
	}
	args := node.ChildByFieldName("arguments")

	switch extract.NodeText(method, c.content) {
	case "aliasMiddleware":
		c.aliasMiddlewareCall(args)
	case "alias":
		c.aliasCall(args)
	case "name":
		c.routeNameCall(node, args)
	default:
		if bindingMethods[extract.NodeText(method, c.content)] {
			c.bindingCall(args)
		}
	}
}

// aliasMiddlewareCall handles $router->aliasMiddleware('name', Class::class).
func (c *registrationCollector) aliasMiddlewareCall(args *tree_sitter.Node) {
	name, span, ok := extract.StringLiteral(extractArg(args, 0), c.content)
	if !ok {
		return
	}
	value := c.classValueText(extractArg(args, 1))
	c.out.Middleware = append(c.out.Middleware, c.registration(name, value, span))
}

// aliasCall handles both forms: $middleware->alias(['name' => Class])
// from bootstrap/app.php, and $this->app->alias($abstract, 'alias').
func (c *registrationCollector) aliasCall(args *tree_sitter.Node) {
	first := extractArg(args, 0)
	if first == nil {
		return
	}

	if first.Kind() == "array_creation_expression" {
		for _, pair := range arrayPairs(first, c.content) {
			c.out.Middleware = append(c.out.Middleware, c.registration(pair.Key, pair.Value, pair.KeySpan))
		}
		return
	}

	alias, span, ok := extract.StringLiteral(extractArg(args, 1), c.content)
	if !ok {
		return
	}
	abstract := c.classValueText(first)
	c.out.Bindings = append(c.out.Bindings, c.registration(alias, abstract, span))
}

// bindingCall handles $this->app->bind('key', Concrete::class) and
// friends. Closure concretes keep the registration with a bare
// declaration site.
func (c *registrationCollector) bindingCall(args *tree_sitter.Node) {
	first := extractArg(args, 0)
	if first == nil {
		return
	}

	var name string
	var span types.Span
	if text, s, ok := extract.StringLiteral(first, c.content); ok {
		name, span = text, s
	} else if text, s, ok := extract.ClassConstant(first, c.content); ok {
		name, span = strings.TrimPrefix(text, `\`), s
	} else {
		return
	}

	value := c.classValueText(extractArg(args, 1))
	c.out.Bindings = append(c.out.Bindings, c.registration(name, value, span))
}

// routeNameCall handles ->name('users.show') on a route definition,
// recovering the route path from the call chain when it is literal.
func (c *registrationCollector) routeNameCall(node *tree_sitter.Node, args *tree_sitter.Node) {
	name, span, ok := extract.StringLiteral(extractArg(args, 0), c.content)
	if !ok {
		return
	}
	// Group name prefixes (Route::name('admin.')->group) end with a dot
	// and are not complete route names.
	if strings.HasSuffix(name, ".") {
		return
	}

	reg := c.registration(name, c.routePath(node), span)
	c.out.Routes = append(c.out.Routes, reg)
}

// routePath walks the receiver chain of a fluent route definition
// looking for the verb call that carries the URI.
var routeVerbs = map[string]bool{
	"get": true, "post": true, "put": true, "patch": true,
	"delete": true, "options": true, "any": true, "match": true,
	"resource": true, "view": true, "redirect": true, "fallback": true,
}

func (c *registrationCollector) routePath(node *tree_sitter.Node) string {
	current := node.ChildByFieldName("object")
	for current != nil {
		switch current.Kind() {
		case "scoped_call_expression":
			method := current.ChildByFieldName("name")
			if method != nil && routeVerbs[extract.NodeText(method, c.content)] {
				if uri, _, ok := extract.StringLiteral(extract.Argument(current.ChildByFieldName("arguments"), 0), c.content); ok {
					return uri
				}
			}
			return ""
		case "member_call_expression":
			current = current.ChildByFieldName("object")
		default:
			return ""
		}
	}
	return ""
}

// kernelProperty handles the legacy HTTP kernel alias tables:
// protected $middlewareAliases = [...] and protected $routeMiddleware = [...].
func (c *registrationCollector) kernelProperty(node *tree_sitter.Node) {
	var propertyName string
	var arrayNode *tree_sitter.Node

	walk(node, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "variable_name":
			if propertyName == "" {
				propertyName = strings.TrimPrefix(extract.NodeText(n, c.content), "$")
			}
		case "array_creation_expression":
			if arrayNode == nil {
				arrayNode = n
			}
			return false
		}
		return true
	})

	if propertyName != "middlewareAliases" && propertyName != "routeMiddleware" {
		return
	}
	for _, pair := range arrayPairs(arrayNode, c.content) {
		c.out.Middleware = append(c.out.Middleware, c.registration(pair.Key, pair.Value, pair.KeySpan))
	}
}

func (c *registrationCollector) registration(name, value string, span types.Span) types.Registration {
	return types.Registration{
		Name:  name,
		Value: value,
		Path:  c.rel,
		Span:  span,
		Tier:  c.tier,
	}
}

// classValueText renders a binding concrete: a class constant or string
// keeps its text, a closure collapses to a marker.
func (c *registrationCollector) classValueText(node *tree_sitter.Node) string {
	if node == nil {
		return ""
	}
	if text, _, ok := extract.ClassConstant(node, c.content); ok {
		return strings.TrimPrefix(text, `\`)
	}
	if text, _, ok := extract.StringLiteral(node, c.content); ok {
		return text
	}
	switch node.Kind() {
	case "anonymous_function_creation_expression", "arrow_function":
		return "{closure}"
	}
	return ""
}

type arrayPair struct {
	Key     string
	KeySpan types.Span
	Value   string
}

// arrayPairs extracts 'name' => Class::class entries from an array
// literal. Entries with dynamic keys are skipped.
func arrayPairs(node *tree_sitter.Node, content []byte) []arrayPair {
	if node == nil || node.Kind() != "array_creation_expression" {
		return nil
	}
	var out []arrayPair
	for i := uint(0); i < node.ChildCount(); i++ {
		element := node.Child(i)
		if element.Kind() != "array_element_initializer" || element.ChildCount() < 3 {
			continue
		}
		key, span, ok := extract.StringLiteral(element.Child(0), content)
		if !ok {
			continue
		}
		value := element.Child(element.ChildCount() - 1)
		pair := arrayPair{Key: key, KeySpan: span}
		if text, _, ok := extract.ClassConstant(value, content); ok {
			pair.Value = strings.TrimPrefix(text, `\`)
		} else if text, _, ok := extract.StringLiteral(value, content); ok {
			pair.Value = text
		}
		out = append(out, pair)
	}
	return out
}

func extractArg(args *tree_sitter.Node, index int) *tree_sitter.Node {
	return extract.Argument(args, index)
}
