// Package scope resolves identifier references in an estree Program. It
// builds a scope tree in one traversal and resolves every reference after
// the traversal is complete, so declarations later in a scope still bind
// earlier references.
package scope

import "github.com/esm2cjs/esm2cjs/internal/estree"

type Kind uint8

const (
	KindGlobal Kind = iota
	KindModule
	KindFunction
	KindFunctionExpressionName
	KindBlock
	KindFor
	KindSwitch
	KindCatch
	KindClass
	KindClassFieldInitializer
	KindClassStaticBlock
	KindWith
)

func (kind Kind) String() string {
	switch kind {
	case KindGlobal:
		return "global"
	case KindModule:
		return "module"
	case KindFunction:
		return "function"
	case KindFunctionExpressionName:
		return "function-expression-name"
	case KindBlock:
		return "block"
	case KindFor:
		return "for"
	case KindSwitch:
		return "switch"
	case KindCatch:
		return "catch"
	case KindClass:
		return "class"
	case KindClassFieldInitializer:
		return "class-field-initializer"
	case KindClassStaticBlock:
		return "class-static-block"
	case KindWith:
		return "with"
	}
	return "unknown"
}

// StopsHoisting reports whether "var" declarations inside this scope stay
// here instead of moving to a parent.
func (kind Kind) StopsHoisting() bool {
	switch kind {
	case KindGlobal, KindModule, KindFunction, KindClassFieldInitializer, KindClassStaticBlock:
		return true
	}
	return false
}

type VariableKind uint8

const (
	VariableVar VariableKind = iota
	VariableLet
	VariableConst
	VariableFunction
	VariableFunctionName // The name of a function expression, visible only inside it
	VariableClass
	VariableParameter
	VariableCatch
	VariableImport
	VariableArguments
)

type Variable struct {
	Name  string
	Kind  VariableKind
	Scope *Scope

	// The binding identifiers, in source order. Empty for the implicit
	// "arguments" of a function.
	Defs []*estree.Node

	References []*Reference
}

type ReferenceFlags uint8

const (
	ReferenceRead ReferenceFlags = 1 << iota
	ReferenceWrite

	ReferenceReadWrite = ReferenceRead | ReferenceWrite
)

type Reference struct {
	Identifier *estree.Node
	From       *Scope

	// Nil when no enclosing scope declares the name
	Resolved *Variable

	Flags ReferenceFlags

	// Set for the write done by a declaration's initializer, including the
	// left side of "for (let x of y)"
	Init bool

	// The value being stored, when it is known
	WriteExpr *estree.Node
}

func (r *Reference) IsRead() bool {
	return r.Flags&ReferenceRead != 0
}

func (r *Reference) IsWrite() bool {
	return r.Flags&ReferenceWrite != 0
}

type Scope struct {
	Kind      Kind
	Parent    *Scope
	Children  []*Scope
	Variables map[string]*Variable

	// References made directly from this scope, in source order
	References []*Reference

	// The node that created the scope. For the global and module scopes this
	// is the Program.
	Node *estree.Node
}

func (s *Scope) Lookup(name string) *Variable {
	for ; s != nil; s = s.Parent {
		if v, ok := s.Variables[name]; ok {
			return v
		}
	}
	return nil
}

// hoistTarget is where a "var" declared in this scope ends up.
func (s *Scope) hoistTarget() *Scope {
	for !s.Kind.StopsHoisting() {
		s = s.Parent
	}
	return s
}

type Manager struct {
	Global *Scope

	// Every scope in the order it was entered
	Scopes []*Scope

	nodeScopes map[*estree.Node]*Scope
}

// Acquire returns the innermost scope created by node, or nil.
func (m *Manager) Acquire(node *estree.Node) *Scope {
	return m.nodeScopes[node]
}

// References returns every reference in the program, grouped by scope in
// the order scopes were entered.
func (m *Manager) References() []*Reference {
	var refs []*Reference
	for _, s := range m.Scopes {
		refs = append(refs, s.References...)
	}
	return refs
}

// Through lists the references that leave the program unresolved, meaning
// they either name nothing or name a global.
func (m *Manager) Through() []*Reference {
	var refs []*Reference
	for _, ref := range m.References() {
		if ref.Resolved == nil || ref.Resolved.Scope.Kind == KindGlobal {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Resolver exposes Analyze through the interface the CommonJS rewrite uses.
type Resolver struct{}

func (Resolver) Resolve(program *estree.Node) []*Reference {
	return Analyze(program).References()
}
