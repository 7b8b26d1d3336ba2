package scope

import "github.com/esm2cjs/esm2cjs/internal/estree"

type analyzer struct {
	manager *Manager
	current *Scope
}

// Analyze builds the scope tree of a module Program. The program gets a
// global scope with a single module scope child holding its top-level
// declarations.
func Analyze(program *estree.Node) *Manager {
	a := &analyzer{manager: &Manager{nodeScopes: make(map[*estree.Node]*Scope)}}
	a.manager.Global = a.pushScope(KindGlobal, program)
	a.pushScope(KindModule, program)
	a.visitStmts(program.Children("body"))
	a.popScope()
	a.popScope()
	a.resolve()
	return a.manager
}

func (a *analyzer) pushScope(kind Kind, node *estree.Node) *Scope {
	s := &Scope{
		Kind:      kind,
		Parent:    a.current,
		Variables: make(map[string]*Variable),
		Node:      node,
	}
	if a.current != nil {
		a.current.Children = append(a.current.Children, s)
	}
	a.manager.Scopes = append(a.manager.Scopes, s)
	a.manager.nodeScopes[node] = s
	a.current = s
	return s
}

func (a *analyzer) popScope() {
	a.current = a.current.Parent
}

func (a *analyzer) resolve() {
	for _, s := range a.manager.Scopes {
		for _, ref := range s.References {
			if v := s.Lookup(ref.Identifier.Name()); v != nil {
				ref.Resolved = v
				v.References = append(v.References, ref)
			}
		}
	}
}

func (a *analyzer) declare(s *Scope, kind VariableKind, id *estree.Node) {
	name := id.Name()
	if name == "" {
		return
	}
	v, ok := s.Variables[name]
	if !ok {
		v = &Variable{Name: name, Kind: kind, Scope: s}
		s.Variables[name] = v
	}
	v.Defs = append(v.Defs, id)
}

func (a *analyzer) reference(id *estree.Node, flags ReferenceFlags, init bool, writeExpr *estree.Node) {
	a.current.References = append(a.current.References, &Reference{
		Identifier: id,
		From:       a.current,
		Flags:      flags,
		Init:       init,
		WriteExpr:  writeExpr,
	})
}

// declarePattern declares every name bound by a binding pattern.
func (a *analyzer) declarePattern(s *Scope, kind VariableKind, pattern *estree.Node) {
	a.forEachPatternTarget(pattern, false, func(target *estree.Node) {
		a.declare(s, kind, target)
	})
}

// visitPatternExprs visits the default values and computed keys of a
// binding pattern that is not also recorded as a write.
func (a *analyzer) visitPatternExprs(pattern *estree.Node) {
	a.forEachPatternTarget(pattern, true, func(*estree.Node) {})
}

// writePattern records the writes made by assigning to a pattern.
func (a *analyzer) writePattern(pattern *estree.Node, flags ReferenceFlags, init bool, value *estree.Node) {
	a.forEachPatternTarget(pattern, true, func(target *estree.Node) {
		if target.Is("Identifier") {
			a.reference(target, flags, init, value)
		} else {
			a.visitExpr(target)
		}
	})
}

// forEachPatternTarget calls fn for every assignment target of a pattern:
// identifiers, and member expressions when the pattern is an assignment
// target rather than a binding.
func (a *analyzer) forEachPatternTarget(pattern *estree.Node, visitExprs bool, fn func(target *estree.Node)) {
	if pattern == nil {
		return
	}
	switch pattern.Type {
	case "Identifier", "MemberExpression":
		fn(pattern)

	case "ObjectPattern":
		for _, prop := range pattern.Children("properties") {
			if prop.Is("RestElement") {
				a.forEachPatternTarget(prop.Child("argument"), visitExprs, fn)
				continue
			}
			if visitExprs && prop.Bool("computed") {
				a.visitExpr(prop.Child("key"))
			}
			a.forEachPatternTarget(prop.Child("value"), visitExprs, fn)
		}

	case "ArrayPattern":
		for _, elem := range pattern.Children("elements") {
			a.forEachPatternTarget(elem, visitExprs, fn)
		}

	case "RestElement":
		a.forEachPatternTarget(pattern.Child("argument"), visitExprs, fn)

	case "AssignmentPattern":
		a.forEachPatternTarget(pattern.Child("left"), visitExprs, fn)
		if visitExprs {
			a.visitExpr(pattern.Child("right"))
		}
	}
}

func (a *analyzer) visitStmts(stmts []*estree.Node) {
	for _, stmt := range stmts {
		a.visitStmt(stmt)
	}
}

func (a *analyzer) visitStmt(stmt *estree.Node) {
	if stmt == nil {
		return
	}

	switch stmt.Type {
	case "ImportDeclaration":
		for _, spec := range stmt.Children("specifiers") {
			a.declare(a.current, VariableImport, spec.Child("local"))
		}

	case "ExportNamedDeclaration":
		if decl := stmt.Child("declaration"); decl != nil {
			a.visitStmt(decl)
		} else if stmt.Child("source") == nil {
			for _, spec := range stmt.Children("specifiers") {
				if local := spec.Child("local"); local.Is("Identifier") {
					a.reference(local, ReferenceRead, false, nil)
				}
			}
		}

	case "ExportDefaultDeclaration":
		decl := stmt.Child("declaration")
		switch {
		case decl.Is("FunctionDeclaration", "ClassDeclaration"):
			a.visitStmt(decl)
		case decl.Is("FunctionExpression", "ClassExpression") && decl.Child("id") != nil:
			// "export default function f() {}" parsed as an expression still
			// binds "f" in the module
			a.declare(a.current, declarationKind(decl), decl.Child("id"))
			a.visitExpr(decl)
		default:
			a.visitExpr(decl)
		}

	case "ExportAllDeclaration":

	case "VariableDeclaration":
		a.visitVarDecl(stmt)

	case "FunctionDeclaration":
		a.declare(a.current, VariableFunction, stmt.Child("id"))
		a.visitFunction(stmt)

	case "ClassDeclaration":
		a.declare(a.current, VariableClass, stmt.Child("id"))
		a.visitClass(stmt)

	case "BlockStatement":
		a.pushScope(KindBlock, stmt)
		a.visitStmts(stmt.Children("body"))
		a.popScope()

	case "StaticBlock":
		a.pushScope(KindClassStaticBlock, stmt)
		a.visitStmts(stmt.Children("body"))
		a.popScope()

	case "ForStatement":
		init := stmt.Child("init")
		scoped := isLexicalDecl(init)
		if scoped {
			a.pushScope(KindFor, stmt)
		}
		if init.Is("VariableDeclaration") {
			a.visitVarDecl(init)
		} else {
			a.visitExpr(init)
		}
		a.visitExpr(stmt.Child("test"))
		a.visitExpr(stmt.Child("update"))
		a.visitStmt(stmt.Child("body"))
		if scoped {
			a.popScope()
		}

	case "ForInStatement", "ForOfStatement":
		left := stmt.Child("left")
		right := stmt.Child("right")
		scoped := isLexicalDecl(left)
		if scoped {
			a.pushScope(KindFor, stmt)
		}
		if left.Is("VariableDeclaration") {
			kind := variableKind(left.Str("kind"))
			target := a.current
			if kind == VariableVar {
				target = a.current.hoistTarget()
			}
			for _, decl := range left.Children("declarations") {
				a.declarePattern(target, kind, decl.Child("id"))
				a.writePattern(decl.Child("id"), ReferenceWrite, true, right)
				a.visitExpr(decl.Child("init"))
			}
		} else {
			a.writePattern(left, ReferenceWrite, false, right)
		}
		a.visitExpr(right)
		a.visitStmt(stmt.Child("body"))
		if scoped {
			a.popScope()
		}

	case "SwitchStatement":
		a.visitExpr(stmt.Child("discriminant"))
		a.pushScope(KindSwitch, stmt)
		for _, c := range stmt.Children("cases") {
			a.visitExpr(c.Child("test"))
			a.visitStmts(c.Children("consequent"))
		}
		a.popScope()

	case "TryStatement":
		a.visitStmt(stmt.Child("block"))
		if handler := stmt.Child("handler"); handler != nil {
			a.pushScope(KindCatch, handler)
			a.declarePattern(a.current, VariableCatch, handler.Child("param"))
			a.visitPatternExprs(handler.Child("param"))
			a.visitStmt(handler.Child("body"))
			a.popScope()
		}
		a.visitStmt(stmt.Child("finalizer"))

	case "WithStatement":
		a.visitExpr(stmt.Child("object"))
		a.pushScope(KindWith, stmt)
		a.visitStmt(stmt.Child("body"))
		a.popScope()

	case "LabeledStatement":
		a.visitStmt(stmt.Child("body"))

	case "BreakStatement", "ContinueStatement", "EmptyStatement", "DebuggerStatement":

	case "ExpressionStatement":
		a.visitExpr(stmt.Child("expression"))

	case "IfStatement":
		a.visitExpr(stmt.Child("test"))
		a.visitStmt(stmt.Child("consequent"))
		a.visitStmt(stmt.Child("alternate"))

	case "WhileStatement", "DoWhileStatement":
		a.visitExpr(stmt.Child("test"))
		a.visitStmt(stmt.Child("body"))

	case "ReturnStatement", "ThrowStatement":
		a.visitExpr(stmt.Child("argument"))

	default:
		a.visitExpr(stmt)
	}
}

func (a *analyzer) visitVarDecl(decl *estree.Node) {
	kind := variableKind(decl.Str("kind"))
	target := a.current
	if kind == VariableVar {
		target = a.current.hoistTarget()
	}
	for _, d := range decl.Children("declarations") {
		id := d.Child("id")
		a.declarePattern(target, kind, id)
		if init := d.Child("init"); init != nil {
			a.writePattern(id, ReferenceWrite, true, init)
			a.visitExpr(init)
		}
	}
}

// visitFunction handles the parameters and body of any function node. The
// function's own name has already been declared by the caller when it binds
// in the enclosing scope.
func (a *analyzer) visitFunction(fn *estree.Node) {
	named := fn.Is("FunctionExpression") && fn.Child("id") != nil
	if named {
		a.pushScope(KindFunctionExpressionName, fn)
		a.declare(a.current, VariableFunctionName, fn.Child("id"))
	}

	a.pushScope(KindFunction, fn)
	if !fn.Is("ArrowFunctionExpression") {
		a.current.Variables["arguments"] = &Variable{Name: "arguments", Kind: VariableArguments, Scope: a.current}
	}
	for _, param := range fn.Children("params") {
		a.declarePattern(a.current, VariableParameter, param)
	}
	for _, param := range fn.Children("params") {
		a.visitPatternExprs(param)
	}

	// The body of a function shares the function's scope
	if body := fn.Child("body"); body.Is("BlockStatement") {
		a.visitStmts(body.Children("body"))
	} else {
		a.visitExpr(body)
	}

	a.popScope()
	if named {
		a.popScope()
	}
}

func (a *analyzer) visitClass(class *estree.Node) {
	a.visitExpr(class.Child("superClass"))
	a.pushScope(KindClass, class)
	if id := class.Child("id"); id != nil {
		a.declare(a.current, VariableClass, id)
	}

	for _, member := range class.Child("body").Children("body") {
		switch member.Type {
		case "MethodDefinition":
			if member.Bool("computed") {
				a.visitExpr(member.Child("key"))
			}
			a.visitFunction(member.Child("value"))

		case "PropertyDefinition":
			if member.Bool("computed") {
				a.visitExpr(member.Child("key"))
			}
			if value := member.Child("value"); value != nil {
				a.pushScope(KindClassFieldInitializer, member)
				a.visitExpr(value)
				a.popScope()
			}

		case "StaticBlock":
			a.visitStmt(member)
		}
	}

	a.popScope()
}

func (a *analyzer) visitExpr(expr *estree.Node) {
	if expr == nil {
		return
	}

	switch expr.Type {
	case "Identifier":
		a.reference(expr, ReferenceRead, false, nil)

	case "PrivateIdentifier", "MetaProperty", "ThisExpression", "Super", "Literal", "TemplateElement":

	case "MemberExpression":
		a.visitExpr(expr.Child("object"))
		if expr.Bool("computed") {
			a.visitExpr(expr.Child("property"))
		}

	case "ObjectExpression":
		for _, prop := range expr.Children("properties") {
			if !prop.Is("Property") {
				a.visitExpr(prop)
				continue
			}
			if prop.Bool("computed") {
				a.visitExpr(prop.Child("key"))
			}
			a.visitExpr(prop.Child("value"))
		}

	case "AssignmentExpression":
		left := expr.Child("left")
		right := expr.Child("right")
		if expr.Str("operator") == "=" {
			a.writePattern(left, ReferenceWrite, false, right)
		} else if left.Is("Identifier") {
			a.reference(left, ReferenceReadWrite, false, right)
		} else {
			a.visitExpr(left)
		}
		a.visitExpr(right)

	case "UpdateExpression":
		if arg := expr.Child("argument"); arg.Is("Identifier") {
			a.reference(arg, ReferenceReadWrite, false, nil)
		} else {
			a.visitExpr(arg)
		}

	case "FunctionExpression", "ArrowFunctionExpression":
		a.visitFunction(expr)

	case "ClassExpression":
		a.visitClass(expr)

	default:
		a.visitChildren(expr)
	}
}

// visitChildren treats every child of an otherwise unhandled node as an
// expression.
func (a *analyzer) visitChildren(node *estree.Node) {
	for _, f := range node.Fields {
		switch v := f.Value.(type) {
		case *estree.Node:
			if v != nil && v.Type != "" {
				a.visitExpr(v)
			}
		case []*estree.Node:
			for _, item := range v {
				if item != nil && item.Type != "" {
					a.visitExpr(item)
				}
			}
		}
	}
}

func isLexicalDecl(node *estree.Node) bool {
	return node.Is("VariableDeclaration") && node.Str("kind") != "var"
}

func variableKind(kind string) VariableKind {
	switch kind {
	case "let":
		return VariableLet
	case "const", "using", "await using":
		return VariableConst
	}
	return VariableVar
}

func declarationKind(node *estree.Node) VariableKind {
	if node.Is("ClassDeclaration", "ClassExpression") {
		return VariableClass
	}
	return VariableFunction
}
