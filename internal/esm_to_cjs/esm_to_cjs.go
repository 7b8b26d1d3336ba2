// Package esm_to_cjs rewrites an ES module Program into CommonJS in place.
//
// The first pass walks the top-level statements and replaces every import
// and export with "require" calls and writes to "exports". Imports are not
// copied into local variables. Instead the second pass uses scope analysis
// to rewrite every read of an imported name into a property access on the
// required module, which keeps ES module live bindings working. Writes to
// exported variables are rewritten to also update "exports".
package esm_to_cjs

import (
	"fmt"
	"slices"

	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/internal/scope"
)

// Export names are initialized to undefined in statements of at most this
// many names each so huge modules don't produce deeply nested expressions.
const voidInitChunkSize = 50

type NonLiteralPolicy uint8

const (
	// Leave import and export statements with a non-string specifier alone
	NonLiteralPassThrough NonLiteralPolicy = iota

	// Fail with a *NonLiteralSpecifierError before touching the tree
	NonLiteralError
)

// ScopeResolver returns every identifier reference in a program along with
// what it resolves to.
type ScopeResolver interface {
	Resolve(program *estree.Node) []*scope.Reference
}

type Options struct {
	NonLiteralSpecifiers NonLiteralPolicy

	// Defaults to scope.Resolver
	Resolver ScopeResolver

	// Optional. Receives warnings about code that is left as is.
	Log logger.Log
}

type NonLiteralSpecifierError struct {
	Statement string
	Index     int
}

func (e *NonLiteralSpecifierError) Error() string {
	return fmt.Sprintf("the module specifier of the %s at index %d is not a string literal", e.Statement, e.Index)
}

func ToCommonJS(program *estree.Node) error {
	return ToCommonJSWithOptions(program, Options{})
}

func ToCommonJSWithOptions(program *estree.Node, options Options) error {
	if !program.Is("Program") {
		return fmt.Errorf("expected a Program node")
	}
	if options.NonLiteralSpecifiers == NonLiteralError {
		if err := checkSpecifiers(program); err != nil {
			return err
		}
	}
	if options.Resolver == nil {
		options.Resolver = scope.Resolver{}
	}

	r := &rewriter{
		options:         options,
		renames:         make(map[string]importRename),
		tracked:         make(map[string]string),
		exportNameSet:   make(map[string]bool),
		interopBindings: make(map[*estree.Node]bool),
		originalNames:   make(map[string]string),
		names:           newNameAllocator(program),
	}
	r.reportUnsupported(program)
	r.renameReservedBindings(program)

	r.body = program.Children("body")
	leadingComments := r.takeLeadingComments()
	r.rewriteStatements()
	program.Set("body", r.body)

	if len(r.renames) > 0 || len(r.tracked) > 0 {
		r.rewriteReferences(program)
	}

	r.body = append(r.voidInitStatements(), program.Children("body")...)
	r.restoreLeadingComments(leadingComments)
	program.Set("body", r.body)
	return nil
}

// An import that is read through the module object instead of a local copy
type importRename struct {
	object   string
	property string
}

type rewriter struct {
	options Options
	names   *nameAllocator

	// The top-level statement list being rewritten. The first pass visits
	// body[index] and adjusts index whenever statements are inserted or
	// removed in front of it.
	body  []*estree.Node
	index int

	// Requires and anything that must run before the module body are
	// inserted at importOffset. Function exports go even earlier, at
	// earlyOffset, right after the "__esModule" marker.
	importOffset int
	earlyOffset  int

	renames map[string]importRename

	// Renamed reserved bindings to the name they had in the source
	originalNames map[string]string

	// Local name of an exported variable to its export name
	tracked map[string]string

	exportNames   []string
	exportNameSet map[string]bool

	// Binding identifiers of the variables holding interop-wrapped default
	// imports
	interopBindings map[*estree.Node]bool

	addedMarker  bool
	addedInterop bool
}

func (r *rewriter) rewriteStatements() {
	for r.index = 0; r.index < len(r.body); r.index++ {
		stmt := r.body[r.index]
		switch stmt.Type {
		case "ImportDeclaration":
			r.rewriteImport(stmt)
		case "ExportAllDeclaration":
			r.rewriteExportAll(stmt)
		case "ExportNamedDeclaration":
			r.rewriteExportNamed(stmt)
		case "ExportDefaultDeclaration":
			r.rewriteExportDefault(stmt)
		}
	}
}

// insert splices stmts into the body at pos. Cursors past pos move along
// with the statement they point at.
func (r *rewriter) insert(pos int, stmts ...*estree.Node) {
	n := len(stmts)
	r.body = slices.Insert(r.body, pos, stmts...)
	if pos <= r.index {
		r.index += n
	}
	if pos < r.importOffset {
		r.importOffset += n
	}
	if pos < r.earlyOffset {
		r.earlyOffset += n
	}
}

// removeCurrent drops the statement being visited. The loop continues with
// the statement that followed it.
func (r *rewriter) removeCurrent() {
	r.body = slices.Delete(r.body, r.index, r.index+1)
	r.index--
}

func (r *rewriter) hoist(stmts ...*estree.Node) {
	r.insert(r.importOffset, stmts...)
	r.importOffset += len(stmts)
}

func (r *rewriter) hoistEarly(stmts ...*estree.Node) {
	pos := r.earlyOffset
	r.insert(pos, stmts...)
	r.earlyOffset = pos + len(stmts)
	if r.importOffset < r.earlyOffset {
		r.importOffset = r.earlyOffset
	}
}

func (r *rewriter) addMarker() {
	if r.addedMarker {
		return
	}
	r.addedMarker = true
	r.insert(0, esModuleMarker())
	r.earlyOffset = 1
	r.importOffset++
}

func (r *rewriter) addInterop() {
	if r.addedInterop {
		return
	}
	r.addedInterop = true
	r.body = append(r.body, interopHelper())
}

func (r *rewriter) addExportName(name string) {
	if !r.exportNameSet[name] {
		r.exportNameSet[name] = true
		r.exportNames = append(r.exportNames, name)
	}
}

// specifier returns the string value of a statement's "source". A missing
// or non-string source is logged and the statement is left alone.
func (r *rewriter) specifier(stmt *estree.Node) (string, bool) {
	source := stmt.Child("source")
	if value, ok := source.Get("value").(string); ok && source.Is("Literal") {
		return value, true
	}
	r.warn(logger.MsgID_ESM_NonLiteralSpecifier,
		fmt.Sprintf("This %s was left as is because its module specifier is not a string literal", stmt.Type))
	return "", false
}

// import Def, {a as b}, * as NS from "m"
func (r *rewriter) rewriteImport(stmt *estree.Node) {
	specifier, ok := r.specifier(stmt)
	if !ok {
		return
	}
	r.addMarker()
	name := r.names.forSpecifier(specifier)
	r.removeCurrent()
	r.hoist(requireStatement(name, specifier))

	for _, spec := range stmt.Children("specifiers") {
		local := spec.Child("local").Name()
		switch spec.Type {
		case "ImportSpecifier":
			r.renames[local] = importRename{object: name, property: moduleExportName(spec.Child("imported"))}

		case "ImportDefaultSpecifier":
			r.addInterop()
			binding := estree.Ident(local)
			r.interopBindings[binding] = true
			r.hoist(estree.VarDecl("var", estree.Declarator(binding,
				estree.Call(estree.Ident(interopHelperName), estree.Ident(name)))))
			r.renames[local] = importRename{object: local, property: "default"}

		case "ImportNamespaceSpecifier":
			r.hoist(varStatement(local, estree.Ident(name)))
		}
	}
}

// export * from "m"
// export * as ns from "m"
func (r *rewriter) rewriteExportAll(stmt *estree.Node) {
	specifier, ok := r.specifier(stmt)
	if !ok {
		return
	}
	r.addMarker()
	name := r.names.forSpecifier(specifier)
	r.removeCurrent()
	r.hoist(requireStatement(name, specifier))

	if exported := stmt.Child("exported"); exported != nil {
		exportedName := moduleExportName(exported)
		r.addExportName(exportedName)
		r.hoist(exportGetter(exportedName, estree.Ident(name)))
	} else {
		r.body = append(r.body, allExportsIterator(name))
	}
}

func (r *rewriter) rewriteExportNamed(stmt *estree.Node) {
	if stmt.Child("source") != nil {
		r.rewriteReexport(stmt)
		return
	}
	r.addMarker()

	decl := stmt.Child("declaration")
	if decl == nil {
		// export {a as b}
		r.removeCurrent()
		for _, spec := range stmt.Children("specifiers") {
			exported := moduleExportName(spec.Child("exported"))
			r.addExportName(exported)
			r.hoistEarly(exportGetter(exported, estree.Ident(moduleExportName(spec.Child("local")))))
		}
		return
	}

	r.body[r.index] = decl
	switch decl.Type {
	case "FunctionDeclaration":
		// Function declarations are hoisted, so the export can be visible
		// before any require runs. That matters for circular imports.
		local := decl.Child("id").Name()
		exported := r.exportName(local)
		r.addExportName(exported)
		r.hoistEarly(exportStatement(local, exported))

	case "ClassDeclaration":
		local := decl.Child("id").Name()
		exported := r.exportName(local)
		r.addExportName(exported)
		r.insert(r.index+1, exportStatement(local, exported))

	case "VariableDeclaration":
		var exports []*estree.Node
		for _, d := range decl.Children("declarations") {
			for _, local := range boundNames(d.Child("id")) {
				exported := r.exportName(local)
				r.addExportName(exported)
				r.tracked[local] = exported
				exports = append(exports, exportStatement(local, exported))
			}
		}
		r.insert(r.index+1, exports...)
	}
}

// export {a, b as c} from "m"
func (r *rewriter) rewriteReexport(stmt *estree.Node) {
	specifier, ok := r.specifier(stmt)
	if !ok {
		return
	}
	r.addMarker()
	name := r.names.forSpecifier(specifier)
	specs := stmt.Children("specifiers")
	r.removeCurrent()

	if len(specs) == 1 && moduleExportName(specs[0].Child("local")) == "default" {
		r.addInterop()
		r.hoist(interopRequireStatement(name, requireCall(specifier)))
	} else {
		r.hoist(requireStatement(name, specifier))
	}

	for _, spec := range specs {
		exported := moduleExportName(spec.Child("exported"))
		r.addExportName(exported)
		r.hoist(exportGetter(exported, estree.Dot(estree.Ident(name), moduleExportName(spec.Child("local")))))
	}
}

// export default function () {}
// export default class A {}
// export default 1 + 2
func (r *rewriter) rewriteExportDefault(stmt *estree.Node) {
	decl := stmt.Child("declaration")
	if decl == nil {
		return
	}
	r.addMarker()

	if decl.Is("FunctionDeclaration", "ClassDeclaration") {
		id := decl.Child("id")
		if id == nil {
			id = estree.Ident(r.names.allocate(defaultExportName))
			decl.Set("id", id)
		}
		r.body[r.index] = decl
		r.insert(r.index+1, exportStatement(id.Name(), "default"))
		r.tracked[id.Name()] = "default"
		return
	}

	name := r.names.allocate(defaultExportName)
	if decl.Is("FunctionExpression", "ClassExpression") && decl.Child("id") == nil {
		decl.Set("id", estree.Ident(name))
	}
	r.body[r.index] = varStatement(name, decl)
	r.insert(r.index+1, exportStatement(name, "default"))
}

// voidInitStatements declares every export up front as "exports.a = void 0"
// so the export names exist on the exports object even while a circular
// import is still running the module body.
func (r *rewriter) voidInitStatements() []*estree.Node {
	var stmts []*estree.Node
	for start := 0; start < len(r.exportNames); start += voidInitChunkSize {
		end := min(start+voidInitChunkSize, len(r.exportNames))

		// Later chunks go first
		stmts = slices.Insert(stmts, 0, voidInitStatement(r.exportNames[start:end]))
	}
	return stmts
}

// The comments in front of the first statement are usually a license or a
// banner. They stay at the top of the file even though the rewrite puts new
// statements in front of the original first statement.
func (r *rewriter) takeLeadingComments() interface{} {
	if len(r.body) == 0 || !r.body[0].Has("comments") {
		return nil
	}
	comments := r.body[0].Get("comments")
	r.body[0].Delete("comments")
	return comments
}

func (r *rewriter) restoreLeadingComments(comments interface{}) {
	if comments == nil || len(r.body) == 0 {
		return
	}
	r.body[0].Set("comments", comments)
}

func (r *rewriter) warn(id logger.MsgID, text string) {
	if r.options.Log.AddMsg != nil {
		r.options.Log.AddID(id, logger.Warning, nil, logger.Range{}, text)
	}
}

// checkSpecifiers finds the first import or export statement whose module
// specifier is not a string literal.
func checkSpecifiers(program *estree.Node) error {
	for i, stmt := range program.Children("body") {
		switch stmt.Type {
		case "ImportDeclaration", "ExportAllDeclaration", "ExportNamedDeclaration":
			source := stmt.Child("source")
			if source == nil && stmt.Type == "ExportNamedDeclaration" {
				continue
			}
			if _, ok := source.Get("value").(string); !ok || !source.Is("Literal") {
				return &NonLiteralSpecifierError{Statement: stmt.Type, Index: i}
			}
		}
	}
	return nil
}

// moduleExportName returns the name of an Identifier or the value of a
// string Literal, which can both appear as import and export names.
func moduleExportName(node *estree.Node) string {
	if node.Is("Identifier") {
		return node.Name()
	}
	return node.Str("value")
}

// boundNames lists every identifier a binding pattern declares, in source
// order.
func boundNames(pattern *estree.Node) []string {
	var names []string
	forEachBinding(pattern, func(id *estree.Node) {
		names = append(names, id.Name())
	})
	return names
}

func forEachBinding(pattern *estree.Node, visit func(id *estree.Node)) {
	switch {
	case pattern.Is("Identifier"):
		visit(pattern)
	case pattern.Is("ObjectPattern"):
		for _, prop := range pattern.Children("properties") {
			if prop.Is("RestElement") {
				forEachBinding(prop.Child("argument"), visit)
			} else {
				forEachBinding(prop.Child("value"), visit)
			}
		}
	case pattern.Is("ArrayPattern"):
		for _, elem := range pattern.Children("elements") {
			forEachBinding(elem, visit)
		}
	case pattern.Is("RestElement"):
		forEachBinding(pattern.Child("argument"), visit)
	case pattern.Is("AssignmentPattern"):
		forEachBinding(pattern.Child("left"), visit)
	}
}
