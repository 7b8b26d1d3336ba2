package esm_to_cjs

import (
	"github.com/dlclark/regexp2"
	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/walker"
)

const (
	generatedPrefix      = "$csb__"
	defaultExportName    = "$csb__default"
	reservedRenamePrefix = "__$csb_"
	getterName           = "$csbGet"
	interopHelperName    = "$_csb__interopRequireDefault"
	maxSpecifierNameTail = 36
)

var (
	nonAlphanumericRuns = regexp2.MustCompile(`[^A-Za-z0-9]+`, regexp2.None)
	unsafeNameChars     = regexp2.MustCompile(`(\s|\.|-|@|\?|&|=|{|})`, regexp2.None)
)

// variableNameForSpecifier turns a module specifier such as "./foo-bar" into
// the tail of a generated variable name ("_foo_bar"). Long specifiers keep
// only their last characters since the end of a path is the most telling.
func variableNameForSpecifier(specifier string) string {
	name, err := nonAlphanumericRuns.Replace(specifier, "_", -1, -1)
	if err != nil {
		name = specifier
	}
	if len(name) > maxSpecifierNameTail {
		name = name[len(name)-maxSpecifierNameTail:]
	}
	return name
}

// nameAllocator hands out generated names that are unique within one
// rewrite. A collision appends underscores until the name is free.
type nameAllocator struct {
	used map[string]bool
}

// newNameAllocator reserves every identifier already in the program so a
// generated name never captures or shadows one of them.
func newNameAllocator(program *estree.Node) *nameAllocator {
	a := &nameAllocator{used: make(map[string]bool)}
	walker.SimpleWalk(program, func(node *estree.Node, parent *estree.Node) bool {
		if node.Is("Identifier") {
			a.used[node.Name()] = true
		}
		return true
	})
	return a
}

func (a *nameAllocator) allocate(name string) string {
	if stripped, err := unsafeNameChars.Replace(name, "", -1, -1); err == nil {
		name = stripped
	}
	for a.used[name] {
		name += "_"
	}
	a.used[name] = true
	return name
}

func (a *nameAllocator) forSpecifier(specifier string) string {
	return a.allocate(generatedPrefix + variableNameForSpecifier(specifier))
}
