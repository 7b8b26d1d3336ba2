package esm_to_cjs

import (
	"fmt"
	"slices"

	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/internal/scope"
	"github.com/esm2cjs/esm2cjs/internal/walker"
)

// An assignment target that updates an exported variable
type exportTarget struct {
	local    string
	exported string
}

// rewriteReferences is the second pass. Reads of imported names become
// "(0, module.name)" and writes to exported variables also write the new
// value to "exports".
func (r *rewriter) rewriteReferences(program *estree.Node) {
	expandShorthands(program)

	replacements := make(map[*estree.Node]*estree.Node)
	trackedWrites := make(map[*estree.Node]string)
	for _, ref := range r.options.Resolver.Resolve(program) {
		name := ref.Identifier.Name()
		if to, ok := r.renames[name]; ok && !ref.IsWrite() && ref.From.Kind != scope.KindClass && r.isImportBinding(ref) {
			replacements[ref.Identifier] = indirectMember(to.object, to.property)
		}
		if exported, ok := r.tracked[name]; ok && ref.IsWrite() && !ref.Init && isModuleLevel(ref) {
			trackedWrites[ref.Identifier] = exported
		}
	}
	if len(replacements) == 0 && len(trackedWrites) == 0 {
		return
	}

	w := walker.Walker{
		Leave: func(w *walker.Walker, node *estree.Node, parent *estree.Node, key string, index int) {
			switch node.Type {
			case "Identifier":
				if replacement, ok := replacements[node]; ok {
					w.Replace(replacement)
				}

			case "AssignmentExpression":
				if targets := exportTargets(node.Child("left"), trackedWrites); len(targets) > 0 {
					w.Replace(r.exportAssignment(node, targets, isValueUnused(parent, key)))
				}

			case "UpdateExpression":
				arg := node.Child("argument")
				if exported, ok := trackedWrites[arg]; ok {
					target := exportTarget{local: arg.Name(), exported: exported}
					w.Replace(r.exportUpdate(node, target, isValueUnused(parent, key)))
				}

			case "ForInStatement", "ForOfStatement":
				if targets := exportTargets(node.Child("left"), trackedWrites); len(targets) > 0 {
					prependToBody(node, exportTargetStatements(targets))
				}
			}
		},
	}
	w.Walk(program)
}

// Imports are removed by the first pass, so a reference to an imported name
// has nothing to resolve to. The exception is a default import, which is
// kept in a variable holding the interop wrapper.
func (r *rewriter) isImportBinding(ref *scope.Reference) bool {
	v := ref.Resolved
	if v == nil || v.Scope.Kind == scope.KindGlobal {
		return true
	}
	return len(v.Defs) > 0 && r.interopBindings[v.Defs[0]]
}

func isModuleLevel(ref *scope.Reference) bool {
	v := ref.Resolved
	return v == nil || v.Scope.Kind == scope.KindModule || v.Scope.Kind == scope.KindGlobal
}

func exportTargets(pattern *estree.Node, trackedWrites map[*estree.Node]string) []exportTarget {
	var targets []exportTarget
	forEachBinding(pattern, func(id *estree.Node) {
		if exported, ok := trackedWrites[id]; ok {
			targets = append(targets, exportTarget{local: id.Name(), exported: exported})
		}
	})
	return targets
}

func exportTargetStatements(targets []exportTarget) []*estree.Node {
	stmts := make([]*estree.Node, 0, len(targets))
	for _, t := range targets {
		stmts = append(stmts, exportStatement(t.local, t.exported))
	}
	return stmts
}

// isValueUnused reports whether the expression in this slot is evaluated
// only for its side effects.
func isValueUnused(parent *estree.Node, key string) bool {
	switch {
	case parent.Is("ExpressionStatement"):
		return true
	case parent.Is("ForStatement"):
		return key == "init" || key == "update"
	}
	return false
}

// x = 1         =>  exports.x = x = 1
// [x, y] = a;   =>  ([x, y] = a, exports.x = x, exports.y = y);
// f([x] = a)    =>  f(($csb__value => (exports.x = x, $csb__value))([x] = a))
func (r *rewriter) exportAssignment(node *estree.Node, targets []exportTarget, valueUnused bool) *estree.Node {
	if node.Child("left").Is("Identifier") {
		return exportAssign(targets[0].exported, node)
	}
	if valueUnused {
		exprs := []*estree.Node{node}
		for _, t := range targets {
			exprs = append(exprs, exportAssign(t.exported, estree.Ident(t.local)))
		}
		return estree.Sequence(exprs...)
	}
	return r.exportAfter(node, targets)
}

// ++x   =>  exports.x = ++x
// x++;  =>  exports.x = ++x;
// f(x++) => f(($csb__value => (exports.x = x, $csb__value))(x++))
func (r *rewriter) exportUpdate(node *estree.Node, target exportTarget, valueUnused bool) *estree.Node {
	if node.Bool("prefix") || valueUnused {
		node.Set("prefix", true)
		return exportAssign(target.exported, node)
	}
	return r.exportAfter(node, []exportTarget{target})
}

// exportAfter evaluates expr, then copies the targets to "exports", and
// produces the value of expr.
func (r *rewriter) exportAfter(expr *estree.Node, targets []exportTarget) *estree.Node {
	param := r.names.allocate("$csb__value")
	exprs := make([]*estree.Node, 0, len(targets)+1)
	for _, t := range targets {
		exprs = append(exprs, exportAssign(t.exported, estree.Ident(t.local)))
	}
	exprs = append(exprs, estree.Ident(param))
	arrow := estree.New("ArrowFunctionExpression",
		estree.F("id", nil),
		estree.F("expression", true),
		estree.F("generator", false),
		estree.F("async", false),
		estree.F("params", []*estree.Node{estree.Ident(param)}),
		estree.F("body", estree.Sequence(exprs...)))
	return estree.Call(arrow, expr)
}

func prependToBody(loop *estree.Node, stmts []*estree.Node) {
	body := loop.Child("body")
	if body.Is("BlockStatement") {
		body.Set("body", append(stmts, body.Children("body")...))
		return
	}
	loop.Set("body", estree.Block(append(stmts, body)...))
}

// expandShorthands turns "{a}" into "{a: a}" so the value can be renamed
// without changing the key. Patterns only bind names, which are never
// renamed, so they keep their shorthands.
func expandShorthands(program *estree.Node) {
	walker.SimpleWalk(program, func(node *estree.Node, parent *estree.Node) bool {
		if node.Is("Property") && node.Bool("shorthand") && parent.Is("ObjectExpression") {
			if value := node.Child("value"); value == node.Child("key") {
				node.Set("value", value.Clone())
			}
			node.Set("shorthand", false)
		}
		return true
	})
}

// reservedNames are the parameters of the CommonJS module wrapper. A
// module-level binding with one of these names would either capture the
// code the rewrite emits or redeclare a parameter, so it is renamed.
var reservedNames = []string{"exports", "require", "module", "__filename", "__dirname"}

// renameReservedBindings renames top-level bindings that use a reserved
// name, including imports and exported declarations. Only references
// that resolve to the module-level binding change, so nested scopes that
// declare their own "exports" keep it. The original name is remembered so
// an exported binding keeps its export name.
func (r *rewriter) renameReservedBindings(program *estree.Node) {
	if !slices.ContainsFunc(reservedNames, func(name string) bool { return r.names.used[name] }) {
		return
	}
	manager := scope.Analyze(program)
	module := manager.Acquire(program)

	renamed := make(map[*estree.Node]string)
	for _, name := range reservedNames {
		v := module.Variables[name]
		if v == nil {
			continue
		}
		to := r.names.allocate(reservedRenamePrefix + name)
		r.originalNames[to] = name
		for _, def := range v.Defs {
			renamed[def] = to
		}
		r.warn(logger.MsgID_ESM_ReservedName,
			fmt.Sprintf("The top-level variable %q was renamed to %q", name, to))
	}
	if len(renamed) == 0 {
		return
	}

	// A class or a named function expression also binds its name in its own
	// scope, through the same identifier node
	for _, s := range manager.Scopes {
		for _, v := range s.Variables {
			to, ok := "", false
			for _, def := range v.Defs {
				if to, ok = renamed[def]; ok {
					break
				}
			}
			if !ok {
				continue
			}
			for _, def := range v.Defs {
				renamed[def] = to
			}
			for _, ref := range v.References {
				renamed[ref.Identifier] = to
			}
		}
	}
	detachSharedNames(program, renamed)
	for id, to := range renamed {
		id.Set("name", to)
	}
}

// detachSharedNames gives shorthand properties and specifiers whose name
// node is about to be renamed their own copy of the original name, so only
// the binding side changes.
func detachSharedNames(program *estree.Node, renamed map[*estree.Node]string) {
	walker.SimpleWalk(program, func(node *estree.Node, parent *estree.Node) bool {
		switch node.Type {
		case "Property":
			value := node.Child("value")
			if value.Is("AssignmentPattern") {
				value = value.Child("left")
			}
			if _, ok := renamed[value]; ok && node.Bool("shorthand") {
				node.Set("key", estree.Ident(node.Child("key").Name()))
				node.Set("shorthand", false)
			}

		case "ExportSpecifier":
			if local := node.Child("local"); node.Child("exported") == local {
				if _, ok := renamed[local]; ok {
					node.Set("exported", estree.Ident(local.Name()))
				}
			}

		case "ImportSpecifier":
			if local := node.Child("local"); node.Child("imported") == local {
				if _, ok := renamed[local]; ok {
					node.Set("imported", estree.Ident(local.Name()))
				}
			}
		}
		return true
	})
}

// exportName is the name a local binding is exported under.
func (r *rewriter) exportName(local string) string {
	if original, ok := r.originalNames[local]; ok {
		return original
	}
	return local
}

// reportUnsupported warns about module features that have no CommonJS
// counterpart and pass through unchanged.
func (r *rewriter) reportUnsupported(program *estree.Node) {
	if r.options.Log.AddMsg == nil {
		return
	}
	walker.SimpleWalk(program, func(node *estree.Node, parent *estree.Node) bool {
		switch {
		case node.Is("ImportExpression"):
			r.warn(logger.MsgID_ESM_DynamicImport,
				"This dynamic import() was left as is and still loads an ES module at run time")
		case node.Is("MetaProperty") && node.Child("meta").Name() == "import":
			r.warn(logger.MsgID_ESM_ImportMeta,
				"\"import.meta\" is not available in CommonJS and was left as is")
		}
		return true
	})
}
