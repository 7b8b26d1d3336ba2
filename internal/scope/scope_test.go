package scope

import (
	"fmt"
	"testing"

	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/js_parser"
	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/internal/test"
	"github.com/google/go-cmp/cmp"
)

func parseForTest(t *testing.T, contents string) *estree.Node {
	t.Helper()
	log := logger.NewDeferLog(nil)
	program, ok := js_parser.Parse(log, test.SourceForTest(contents))
	if !ok {
		t.Fatalf("parse error in %q", contents)
	}
	return program
}

// describe renders a reference as "name@from->resolved", with "!" after the
// name for writes and "=" for initializing writes.
func describe(ref *Reference) string {
	name := ref.Identifier.Name()
	if ref.Init {
		name += "="
	} else if ref.IsWrite() {
		name += "!"
	}
	to := "?"
	if ref.Resolved != nil {
		to = ref.Resolved.Scope.Kind.String()
	}
	return fmt.Sprintf("%s@%s->%s", name, ref.From.Kind, to)
}

func expectReferences(t *testing.T, contents string, expected ...string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		var actual []string
		for _, ref := range Analyze(parseForTest(t, contents)).References() {
			actual = append(actual, describe(ref))
		}
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Fatalf("references mismatch (-want +got):\n%s", diff)
		}
	})
}

func expectThrough(t *testing.T, contents string, expected ...string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		var actual []string
		for _, ref := range Analyze(parseForTest(t, contents)).Through() {
			actual = append(actual, ref.Identifier.Name())
		}
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Fatalf("unresolved references mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestModuleDeclarations(t *testing.T) {
	expectReferences(t, "let a = 1; a;", "a=@module->module", "a@module->module")
	expectReferences(t, "a; var a;", "a@module->module")
	expectReferences(t, "f(); function f() {}", "f@module->module")
	expectReferences(t, "new C(); class C {}", "C@module->module")
	expectReferences(t, "import x from 'm'; x();", "x@module->module")
	expectReferences(t, "import {y as x} from 'm'; x();", "x@module->module")
	expectReferences(t, "import * as ns from 'm'; ns.a;", "ns@module->module")
	expectReferences(t, "console.log(a)", "console@module->?", "a@module->?")
}

func TestHoisting(t *testing.T) {
	expectReferences(t, "{ var a = 1 } a",
		"a@module->module",
		"a=@block->module")
	expectReferences(t, "{ let a = 1 } a",
		"a@module->?",
		"a=@block->block")
	expectReferences(t, "function f() { if (x) { var a } return a }",
		"x@function->?",
		"a@function->function")
	expectReferences(t, "for (var i = 0; i < 1; i++) {} i",
		"i=@module->module",
		"i@module->module",
		"i!@module->module",
		"i@module->module")
	expectReferences(t, "for (let i of xs) {} i",
		"i@module->?",
		"i=@for->for",
		"xs@for->?")
	expectReferences(t, "{ function g() {} } g",
		"g@module->?")
}

func TestFunctions(t *testing.T) {
	expectReferences(t, "function f(a, {b = a}, ...c) { return [a, b, c, arguments] }",
		"a@function->function",
		"a@function->function",
		"b@function->function",
		"c@function->function",
		"arguments@function->function")
	expectReferences(t, "const g = function h() { return h }; h",
		"g=@module->module",
		"h@module->?",
		"h@function->function-expression-name")
	expectReferences(t, "const k = (x) => x + y",
		"k=@module->module",
		"x@function->function",
		"y@function->?")
	expectReferences(t, "(() => arguments)()", "arguments@function->?")
}

func TestClasses(t *testing.T) {
	expectReferences(t, "class A extends B { [k] = v; static { let s = A } m() { return A } }",
		"B@module->?",
		"k@class->?",
		"v@class-field-initializer->?",
		"s=@class-static-block->class-static-block",
		"A@class-static-block->class",
		"A@function->class")
	expectReferences(t, "let X = class Y {}; Y", "X=@module->module", "Y@module->?")
}

func TestCatchAndSwitch(t *testing.T) {
	expectReferences(t, "try {} catch (e) { e } e",
		"e@module->?",
		"e@block->catch")
	expectReferences(t, "switch (x) { case 1: let y = 2; y }",
		"x@module->?",
		"y=@switch->switch",
		"y@switch->switch")
}

func TestWrites(t *testing.T) {
	expectReferences(t, "let a; a = 1; a += 2; a++; [a] = b; ({c: a} = b); for (a in b);",
		"a!@module->module",
		"a!@module->module",
		"a!@module->module",
		"a!@module->module",
		"b@module->?",
		"a!@module->module",
		"b@module->?",
		"a!@module->module",
		"b@module->?")

	program := parseForTest(t, "let a; a += 2; a++")
	refs := Analyze(program).References()
	for _, ref := range refs {
		test.AssertEqual(t, ref.Flags, ReferenceReadWrite)
	}
}

func TestNonReferences(t *testing.T) {
	expectReferences(t, "a.b; a[c]; ({d: e, [f]: g}); label: for (;;) break label; import.meta",
		"a@module->?",
		"a@module->?",
		"c@module->?",
		"e@module->?",
		"f@module->?",
		"g@module->?")
	expectReferences(t, "class K { p = 1; #q; m() { return this.#q } }")
}

func TestExportsResolve(t *testing.T) {
	expectReferences(t, "let a; export {a as b}", "a@module->module")
	expectReferences(t, "export {a} from 'm'")
	expectReferences(t, "export default function f() {} f", "f@module->module")
	expectReferences(t, "export default class {}")
	expectReferences(t, "export const x = 1", "x=@module->module")
}

func TestThrough(t *testing.T) {
	expectThrough(t, "import a from 'm'; let b = c; a(b, d)", "c", "d")
	expectThrough(t, "function f(x) { return x + y } f(z)", "z", "y")
	expectThrough(t, "let a = 1")
}

func TestAcquire(t *testing.T) {
	program := parseForTest(t, "function f() { { let a } }")
	manager := Analyze(program)
	fn := program.Children("body")[0]
	s := manager.Acquire(fn)
	test.AssertEqual(t, s.Kind, KindFunction)
	test.AssertEqual(t, s.Parent.Kind, KindModule)
	test.AssertEqual(t, s.Parent.Parent, manager.Global)
	test.AssertEqual(t, len(s.Children), 1)
	test.AssertEqual(t, s.Children[0].Kind, KindBlock)
	test.AssertEqual(t, s.Children[0].Lookup("a").Kind, VariableLet)
	test.AssertEqual(t, s.Children[0].Lookup("f").Kind, VariableFunction)
	test.AssertEqual(t, s.Lookup("a") == nil, true)
}

func TestVariableReferences(t *testing.T) {
	program := parseForTest(t, "let a = 1; a; { let a; a }")
	manager := Analyze(program)
	outer := manager.Acquire(program).Variables["a"]
	test.AssertEqual(t, len(outer.Defs), 1)
	test.AssertEqual(t, len(outer.References), 2)
	test.AssertEqual(t, outer.References[0].Init, true)
}

func TestResolver(t *testing.T) {
	program := parseForTest(t, "x; let y; y")
	refs := Resolver{}.Resolve(program)
	test.AssertEqual(t, len(refs), 2)
	test.AssertEqual(t, refs[0].Resolved == nil, true)
	test.AssertEqual(t, refs[1].Resolved.Name, "y")
}
