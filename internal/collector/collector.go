// Package collector finds the modules a CommonJS program depends on.
package collector

import (
	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/walker"
)

// CollectRequireArguments returns the string arguments of every
// "require(...)" call in source order, without duplicates. Only calls whose
// callee is the bare identifier "require" count, so "this.require(a)" and
// "require.resolve(a)" are ignored, as are calls whose first argument is
// not a string literal.
func CollectRequireArguments(program *estree.Node) []string {
	deps := []string{}
	seen := make(map[string]bool)

	walker.SimpleWalk(program, func(node *estree.Node, parent *estree.Node) bool {
		if !isRequireCall(node) {
			return true
		}
		arg := node.Children("arguments")[0]
		if path, ok := arg.Get("value").(string); ok && arg.Is("Literal") && !seen[path] {
			seen[path] = true
			deps = append(deps, path)
		}
		return true
	})
	return deps
}

func isRequireCall(node *estree.Node) bool {
	if !node.Is("CallExpression") {
		return false
	}
	callee := node.Child("callee")
	return callee.Is("Identifier") && callee.Name() == "require" && len(node.Children("arguments")) > 0
}
