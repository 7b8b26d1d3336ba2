package js_parser

import (
	"math"
	"strings"
	"testing"

	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/internal/test"
	"gotest.tools/v3/assert"
)

func expectParsed(t *testing.T, contents string) *estree.Node {
	t.Helper()
	log := logger.NewDeferLog(nil)
	program, ok := Parse(log, test.SourceForTest(contents))
	msgs := log.Done()
	text := ""
	for _, msg := range msgs {
		text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
	}
	assert.Assert(t, ok, text)
	assert.Equal(t, text, "")
	return program
}

func expectParseError(t *testing.T, contents string, line int, column int, text string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		_, ok := Parse(log, test.SourceForTest(contents))
		msgs := log.Done()
		assert.Assert(t, !ok)
		assert.Equal(t, len(msgs), 1)
		msg := msgs[0]
		assert.Equal(t, msg.Kind, logger.Error)
		assert.Assert(t, msg.Location != nil)
		assert.Equal(t, msg.Location.Line, line)
		assert.Equal(t, msg.Location.Column, column)
		assert.Assert(t, strings.Contains(msg.Text, text), msg.Text)
	})
}

func firstExpr(t *testing.T, contents string) *estree.Node {
	t.Helper()
	program := expectParsed(t, contents)
	body := program.Children("body")
	assert.Assert(t, len(body) > 0)
	assert.Equal(t, body[0].Type, "ExpressionStatement")
	return body[0].Child("expression")
}

func TestProgram(t *testing.T) {
	program := expectParsed(t, "import a from 'a'; export const b = 1; b;")
	assert.Equal(t, program.Type, "Program")
	assert.Equal(t, program.Str("sourceType"), "module")

	var types []string
	for _, stmt := range program.Children("body") {
		types = append(types, stmt.Type)
	}
	assert.DeepEqual(t, types, []string{"ImportDeclaration", "ExportNamedDeclaration", "ExpressionStatement"})
}

func TestSyntaxError(t *testing.T) {
	expectParseError(t, "let x = ;", 1, 8, "unexpected ;")
}

func TestHashbangAndComments(t *testing.T) {
	program := expectParsed(t, "#!/usr/bin/env node\n/*! license */\nfoo();\n//! trailing\n")
	assert.Equal(t, program.Str("hashbang"), "/usr/bin/env node")

	body := program.Children("body")
	assert.Equal(t, len(body), 1)

	// All kept comments in a list are attached to its first statement
	comments := body[0].Children("comments")
	assert.Equal(t, len(comments), 2)
	assert.Equal(t, comments[0].Type, "Block")
	assert.Equal(t, comments[0].Str("value"), "! license ")
	assert.Equal(t, comments[1].Type, "Line")
	assert.Equal(t, comments[1].Str("value"), "! trailing")
}

func TestStrings(t *testing.T) {
	check := func(contents string, expected string) {
		t.Helper()
		t.Run(contents, func(t *testing.T) {
			t.Helper()
			lit := firstExpr(t, contents+";")
			assert.Equal(t, lit.Type, "Literal")
			assert.Equal(t, lit.Str("raw"), contents)
			assert.Equal(t, lit.Get("value"), expected)
		})
	}

	check(`"abc"`, "abc")
	check(`'a"b'`, `a"b`)
	check(`"\x41B\u{43}"`, "ABC")
	check(`"\u{1F600}"`, "\U0001F600")
	check("\"\U0001F600\"", "\U0001F600")
	check(`"\0"`, "\x00")
	check(`"\101"`, "A")
	check(`"\n\t\\"`, "\n\t\\")
	check(`"a\
b"`, "ab")
	check(`"\q"`, "q")
}

func TestNumbers(t *testing.T) {
	check := func(contents string, expected float64) {
		t.Helper()
		t.Run(contents, func(t *testing.T) {
			t.Helper()
			lit := firstExpr(t, contents+";")
			assert.Equal(t, lit.Str("raw"), contents)
			assert.Equal(t, lit.Num("value"), expected)
		})
	}

	check("0", 0)
	check("123", 123)
	check("1.5", 1.5)
	check(".5", 0.5)
	check("1e3", 1000)
	check("1_000_000", 1000000)
	check("0x10", 16)
	check("0XfF", 255)
	check("0o17", 15)
	check("0b101", 5)
	check("017", 15)
	check("019", 19)
	check("0x20000000000001", 9007199254740992)

	lit := firstExpr(t, "1e400;")
	assert.Assert(t, math.IsInf(lit.Num("value"), 1))

	big := firstExpr(t, "0x1_0n;")
	assert.Equal(t, big.Get("value"), nil)
	assert.Equal(t, big.Str("bigint"), "0x10")
}

func TestRegExp(t *testing.T) {
	lit := firstExpr(t, "/a\\/b/gi;")
	regex := lit.Child("regex")
	assert.Equal(t, regex.Type, "")
	assert.Equal(t, regex.Str("pattern"), "a\\/b")
	assert.Equal(t, regex.Str("flags"), "gi")
}

func TestTemplates(t *testing.T) {
	tpl := firstExpr(t, "`a${b}c\\n${d}`;")
	assert.Equal(t, tpl.Type, "TemplateLiteral")
	quasis := tpl.Children("quasis")
	assert.Equal(t, len(quasis), 3)
	assert.Equal(t, quasis[1].Child("value").Str("raw"), "c\\n")
	assert.Equal(t, quasis[1].Child("value").Str("cooked"), "c\n")
	assert.Equal(t, quasis[2].Bool("tail"), true)
	assert.Equal(t, len(tpl.Children("expressions")), 2)

	tagged := firstExpr(t, "tag`\\unicode`;")
	assert.Equal(t, tagged.Type, "TaggedTemplateExpression")
	value := tagged.Child("quasi").Children("quasis")[0].Child("value")
	assert.Equal(t, value.Str("raw"), "\\unicode")
	assert.Equal(t, value.Get("cooked"), nil)
}

func TestArrowBodies(t *testing.T) {
	arrow := firstExpr(t, "(a, b) => a + b;")
	assert.Equal(t, arrow.Type, "ArrowFunctionExpression")
	assert.Equal(t, arrow.Bool("expression"), true)
	assert.Equal(t, arrow.Child("body").Type, "BinaryExpression")

	arrow = firstExpr(t, "async x => { f(); };")
	assert.Equal(t, arrow.Bool("async"), true)
	assert.Equal(t, arrow.Bool("expression"), false)
	assert.Equal(t, arrow.Child("body").Type, "BlockStatement")
	assert.Equal(t, arrow.Children("params")[0].Name(), "x")
}

func TestOptionalChains(t *testing.T) {
	chain := firstExpr(t, "a?.b.c();")
	assert.Equal(t, chain.Type, "ChainExpression")
	call := chain.Child("expression")
	assert.Equal(t, call.Type, "CallExpression")
	assert.Equal(t, call.Bool("optional"), false)
	inner := call.Child("callee").Child("object")
	assert.Equal(t, inner.Type, "MemberExpression")
	assert.Equal(t, inner.Bool("optional"), true)

	// Parentheses end the chain
	member := firstExpr(t, "(a?.b).c;")
	assert.Equal(t, member.Type, "MemberExpression")
	assert.Equal(t, member.Child("object").Type, "ChainExpression")

	assert.Equal(t, firstExpr(t, "a.b;").Type, "MemberExpression")
}

func TestPatterns(t *testing.T) {
	assign := firstExpr(t, "({a, b: [c = 1, ...d], ...e} = f);")
	assert.Equal(t, assign.Type, "AssignmentExpression")
	pattern := assign.Child("left")
	assert.Equal(t, pattern.Type, "ObjectPattern")
	props := pattern.Children("properties")
	assert.Equal(t, len(props), 3)
	assert.Equal(t, props[0].Bool("shorthand"), true)
	array := props[1].Child("value")
	assert.Equal(t, array.Type, "ArrayPattern")
	assert.Equal(t, array.Children("elements")[0].Type, "AssignmentPattern")
	assert.Equal(t, array.Children("elements")[1].Type, "RestElement")
	assert.Equal(t, props[2].Type, "RestElement")

	program := expectParsed(t, "const {x, y: [z]} = o;")
	decl := program.Children("body")[0]
	assert.Equal(t, decl.Str("kind"), "const")
	id := decl.Children("declarations")[0].Child("id")
	assert.Equal(t, id.Type, "ObjectPattern")
}

func TestModuleSyntax(t *testing.T) {
	program := expectParsed(t, strings.Join([]string{
		`import def, {a, b as c, "d-e" as f} from "m";`,
		`import * as ns from "n";`,
		`export {a as default, c};`,
		`export * from "x";`,
		`export * as y from "y";`,
		`export default function () {}`,
	}, "\n"))
	body := program.Children("body")

	specifiers := body[0].Children("specifiers")
	assert.Equal(t, len(specifiers), 4)
	assert.Equal(t, specifiers[0].Type, "ImportDefaultSpecifier")
	assert.Equal(t, specifiers[2].Child("imported").Name(), "b")
	assert.Equal(t, specifiers[2].Child("local").Name(), "c")
	assert.Equal(t, specifiers[3].Child("imported").Type, "Literal")
	assert.Equal(t, specifiers[3].Child("imported").Get("value"), "d-e")
	assert.Equal(t, body[0].Child("source").Get("value"), "m")

	assert.Equal(t, body[1].Children("specifiers")[0].Type, "ImportNamespaceSpecifier")

	exported := body[2].Children("specifiers")
	assert.Equal(t, exported[0].Child("local").Name(), "a")
	assert.Equal(t, exported[0].Child("exported").Name(), "default")
	assert.Equal(t, body[2].Child("source"), (*estree.Node)(nil))

	assert.Equal(t, body[3].Type, "ExportAllDeclaration")
	assert.Equal(t, body[3].Child("exported"), (*estree.Node)(nil))
	assert.Equal(t, body[4].Child("exported").Name(), "y")

	assert.Equal(t, body[5].Type, "ExportDefaultDeclaration")
	fn := body[5].Child("declaration")
	assert.Equal(t, fn.Type, "FunctionDeclaration")
	assert.Equal(t, fn.Child("id"), (*estree.Node)(nil))
}

func TestClasses(t *testing.T) {
	program := expectParsed(t, "class A extends B { #x = 1; static y; constructor() {} get z() {} static { init(); } has(o) { return #x in o; } }")
	class := program.Children("body")[0]
	assert.Equal(t, class.Child("superClass").Name(), "B")

	var kinds []string
	for _, element := range class.Child("body").Children("body") {
		kind := element.Type
		if element.Is("MethodDefinition") {
			kind += ":" + element.Str("kind")
		}
		kinds = append(kinds, kind)
	}
	assert.DeepEqual(t, kinds, []string{
		"PropertyDefinition",
		"PropertyDefinition",
		"MethodDefinition:constructor",
		"MethodDefinition:get",
		"StaticBlock",
		"MethodDefinition:method",
	})

	field := class.Child("body").Children("body")[0]
	assert.Equal(t, field.Child("key").Type, "PrivateIdentifier")
	assert.Equal(t, field.Child("key").Name(), "x")
}

func TestDirectives(t *testing.T) {
	program := expectParsed(t, "'use strict'; x;")
	stmt := program.Children("body")[0]
	assert.Equal(t, stmt.Str("directive"), "use strict")
	assert.Equal(t, stmt.Child("expression").Get("value"), "use strict")
}

func TestForLoops(t *testing.T) {
	program := expectParsed(t, "for (;;) x; for (const k in o) {} for await (const v of s) {} for ([a, b] of c) ;")
	body := program.Children("body")
	assert.Equal(t, body[0].Child("init"), (*estree.Node)(nil))
	assert.Equal(t, body[0].Child("body").Type, "BlockStatement")
	assert.Equal(t, body[1].Child("left").Type, "VariableDeclaration")
	assert.Equal(t, body[2].Bool("await"), true)
	assert.Equal(t, body[3].Child("left").Type, "ArrayPattern")
}
