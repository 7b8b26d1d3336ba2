package esm_to_cjs

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/js_parser"
	"github.com/esm2cjs/esm2cjs/internal/js_printer"
	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/esm2cjs/esm2cjs/internal/scope"
	"github.com/esm2cjs/esm2cjs/internal/test"
	"github.com/esm2cjs/esm2cjs/internal/walker"
	"gotest.tools/v3/assert"
)

func parseForTest(t *testing.T, contents string) *estree.Node {
	t.Helper()
	log := logger.NewDeferLog(nil)
	program, ok := js_parser.Parse(log, test.SourceForTest(contents))
	msgs := log.Done()
	text := ""
	for _, msg := range msgs {
		text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
	}
	test.AssertEqualWithDiff(t, text, "")
	if !ok {
		t.Fatal("Parse error")
	}
	return program
}

func rewriteForTest(t *testing.T, contents string) string {
	t.Helper()
	program := parseForTest(t, contents)
	if err := ToCommonJS(program); err != nil {
		t.Fatal(err)
	}
	js, err := js_printer.Print(program, js_printer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return js
}

func expectRewritten(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		test.AssertEqualWithDiff(t, rewriteForTest(t, contents), expected)
	})
}

const marker = `Object.defineProperty(exports, "__esModule", {
  value: true
});
`

const interopHelperText = `function $_csb__interopRequireDefault(obj) {
  return obj && obj.__esModule ? obj : {
    default: obj
  };
}
`

func TestExportDeclarations(t *testing.T) {
	expectRewritten(t, "export const a = 1;",
		"exports.a = void 0;\n"+marker+`const a = 1;
exports.a = a;
`)

	expectRewritten(t, "export var {p, q: [r, ...s]} = o;",
		"exports.s = exports.r = exports.p = void 0;\n"+marker+`var {p, q: [r, ...s]} = o;
exports.p = p;
exports.r = r;
exports.s = s;
`)

	expectRewritten(t, "foo(); export class C {}",
		"exports.C = void 0;\n"+marker+`foo();
class C {}
exports.C = C;
`)

	// Function exports go right after the marker, ahead of every require
	expectRewritten(t, "import {b} from './b'; export function f() { return b; }",
		"exports.f = void 0;\n"+marker+`exports.f = f;
var $csb___b = require("./b");
function f() {
  return (0, $csb___b.b);
}
`)
}

func TestExportDefault(t *testing.T) {
	expectRewritten(t, "export default function () { return 1; }", marker+`function $csb__default() {
  return 1;
}
exports.default = $csb__default;
`)
	expectRewritten(t, "export default class A {}", marker+`class A {}
exports.default = A;
`)
	expectRewritten(t, "export default 42;", marker+`var $csb__default = 42;
exports.default = $csb__default;
`)
	expectRewritten(t, "export default (function () {});", marker+`var $csb__default = function $csb__default() {};
exports.default = $csb__default;
`)
}

func TestExportLocalSpecifiers(t *testing.T) {
	expectRewritten(t, "const x = 1; export { x as y };",
		"exports.y = void 0;\n"+marker+`Object.defineProperty(exports, "y", {
  enumerable: true,
  configurable: true,
  get: function $csbGet() {
    return x;
  }
});
const x = 1;
`)
}

func TestReexports(t *testing.T) {
	expectRewritten(t, "export { a } from './x';",
		"exports.a = void 0;\n"+marker+`var $csb___x = require("./x");
Object.defineProperty(exports, "a", {
  enumerable: true,
  configurable: true,
  get: function $csbGet() {
    return $csb___x.a;
  }
});
`)

	expectRewritten(t, "export { default } from './x';",
		"exports.default = void 0;\n"+marker+`var $csb___x = $_csb__interopRequireDefault(require("./x"));
Object.defineProperty(exports, "default", {
  enumerable: true,
  configurable: true,
  get: function $csbGet() {
    return $csb___x.default;
  }
});
`+interopHelperText)

	expectRewritten(t, "export * as ns from './x';",
		"exports.ns = void 0;\n"+marker+`var $csb___x = require("./x");
Object.defineProperty(exports, "ns", {
  enumerable: true,
  configurable: true,
  get: function $csbGet() {
    return $csb___x;
  }
});
`)

	expectRewritten(t, "export * from './x';", marker+`var $csb___x = require("./x");
Object.keys($csb___x).forEach(function (key) {
  if (key === "default" || key === "__esModule") return;
  if (Object.prototype.hasOwnProperty.call(exports, key)) return;
  Object.defineProperty(exports, key, {
    enumerable: true,
    configurable: true,
    get: function $csbGet() {
      return $csb___x[key];
    }
  });
});
`)
}

func TestImports(t *testing.T) {
	expectRewritten(t, "import Def from 'mod'; Def();", marker+`var $csb__mod = require("mod");
var Def = $_csb__interopRequireDefault($csb__mod);
(0, Def.default)();
`+interopHelperText)

	expectRewritten(t, "import * as NS from 'mod'; NS.a();", marker+`var $csb__mod = require("mod");
var NS = $csb__mod;
NS.a();
`)

	expectRewritten(t, "import 'side-effect';", marker+`var $csb__side_effect = require("side-effect");
`)

	expectRewritten(t, "import { a, b as c, 'd-e' as d } from './mod'; a(c, d, {a});", marker+`var $csb___mod = require("./mod");
(0, $csb___mod.a)((0, $csb___mod.b), (0, $csb___mod["d-e"]), {
  a: (0, $csb___mod.a)
});
`)

	// A local declaration shadows the import
	expectRewritten(t, "import { a } from 'm'; function f(a) { return a; } a;", marker+`var $csb__m = require("m");
function f(a) {
  return a;
}
(0, $csb__m.a);
`)

	// The same specifier imported twice gets two variables
	expectRewritten(t, "import { a } from 'm'; import { b } from 'm'; a + b;", marker+`var $csb__m = require("m");
var $csb__m_ = require("m");
(0, $csb__m.a) + (0, $csb__m_.b);
`)
}

func TestHoistOrder(t *testing.T) {
	js := rewriteForTest(t, "first(); import a from 'a'; second(); import {b} from 'b'; export * from 'c'; third(a, b);")
	test.AssertEqualWithDiff(t, js, marker+`var $csb__a = require("a");
var a = $_csb__interopRequireDefault($csb__a);
var $csb__b = require("b");
var $csb__c = require("c");
first();
second();
third((0, a.default), (0, $csb__b.b));
`+interopHelperText+`Object.keys($csb__c).forEach(function (key) {
  if (key === "default" || key === "__esModule") return;
  if (Object.prototype.hasOwnProperty.call(exports, key)) return;
  Object.defineProperty(exports, key, {
    enumerable: true,
    configurable: true,
    get: function $csbGet() {
      return $csb__c[key];
    }
  });
});
`)
}

func TestClassBodies(t *testing.T) {
	// Field names that match an import are keys, not references. Code
	// inside methods and field initializers still reads the import.
	expectRewritten(t, `import { a, b } from './mod';
class K {
  a = b;
  static b = 1;
  m() { return a; }
}`, marker+`var $csb___mod = require("./mod");
class K {
  a = (0, $csb___mod.b);
  static b = 1;
  m() {
    return (0, $csb___mod.a);
  }
}
`)

	// References directly in a class body, like computed keys, are left alone
	expectRewritten(t, "import { k } from 'm'; class K { [k]() {} }", marker+`var $csb__m = require("m");
class K {
  [k]() {}
}
`)
}

func TestTrackedExports(t *testing.T) {
	expectRewritten(t, "export let count = 0; export function inc() { count++; return count; }",
		"exports.inc = exports.count = void 0;\n"+marker+`exports.inc = inc;
let count = 0;
exports.count = count;
function inc() {
  exports.count = ++count;
  return count;
}
`)

	expectRewritten(t, "export let a = 1, b = 2; export function swap() { [a, b] = [b, a]; a += 1; return a++; }",
		"exports.swap = exports.b = exports.a = void 0;\n"+marker+`exports.swap = swap;
let a = 1, b = 2;
exports.a = a;
exports.b = b;
function swap() {
  ([a, b] = [b, a], exports.a = a, exports.b = b);
  exports.a = a += 1;
  return ($csb__value => (exports.a = a, $csb__value))(a++);
}
`)

	expectRewritten(t, "export let x; for (x of xs) log(x);",
		"exports.x = void 0;\n"+marker+`let x;
exports.x = x;
for (x of xs) {
  exports.x = x;
  log(x);
}
`)

	// Shadowed names and initializers are not exports
	expectRewritten(t, "export let x = 1; function f() { let x = 2; x = 3; }",
		"exports.x = void 0;\n"+marker+`let x = 1;
exports.x = x;
function f() {
  let x = 2;
  x = 3;
}
`)

	expectRewritten(t, "export default class A {} A = null;", marker+`class A {}
exports.default = A;
exports.default = A = null;
`)
}

func TestExportsBindingRename(t *testing.T) {
	expectRewritten(t, "var exports = {a: 1}; export const b = exports.a; o.exports;",
		"exports.b = void 0;\n"+marker+`var __$csb_exports = {
  a: 1
};
const b = __$csb_exports.a;
exports.b = b;
o.exports;
`)

	log := logger.NewDeferLog(nil)
	program := parseForTest(t, "var exports = 1;")
	assert.NilError(t, ToCommonJSWithOptions(program, Options{Log: log}))
	msgs := log.Done()
	assert.Equal(t, len(msgs), 1)
	assert.Equal(t, msgs[0].ID, logger.MsgID_ESM_ReservedName)

	// Nested declarations don't count
	expectRewritten(t, "function f() { var exports = 1; return exports; }", `function f() {
  var exports = 1;
  return exports;
}
`)

	// Only references to the top-level binding are renamed
	expectRewritten(t, "var exports = 1; function f(exports) { return exports; } f(exports);", `var __$csb_exports = 1;
function f(exports) {
  return exports;
}
f(__$csb_exports);
`)

	// Exported declarations keep their export name
	expectRewritten(t, "export const exports = 1; export const result = exports + 1;",
		"exports.result = exports.exports = void 0;\n"+marker+`const __$csb_exports = 1;
exports.exports = __$csb_exports;
const result = __$csb_exports + 1;
exports.result = result;
`)

	expectRewritten(t, "export function exports() {} export class require {}",
		"exports.require = exports.exports = void 0;\n"+marker+`exports.exports = __$csb_exports;
function __$csb_exports() {}
class __$csb_require {}
exports.require = __$csb_require;
`)

	expectRewritten(t, "export default class exports { m() { return exports; } }", marker+`class __$csb_exports {
  m() {
    return __$csb_exports;
  }
}
exports.default = __$csb_exports;
`)

	// Shorthand keys keep the source name
	expectRewritten(t, "const exports = 1; export const o = {exports};",
		"exports.o = void 0;\n"+marker+`const __$csb_exports = 1;
const o = {
  exports: __$csb_exports
};
exports.o = o;
`)
}

// An import named like a wrapper parameter must not capture the generated
// "exports" and "require" references
func TestReservedImportNames(t *testing.T) {
	expectRewritten(t, "import { exports } from './m'; export const a = exports;",
		"exports.a = void 0;\n"+marker+`var $csb___m = require("./m");
const a = (0, $csb___m.exports);
exports.a = a;
`)

	expectRewritten(t, "import * as require from './m'; import exports from './n'; require.a(exports);", marker+`var $csb___m = require("./m");
var __$csb_require = $csb___m;
var $csb___n = require("./n");
var __$csb_exports = $_csb__interopRequireDefault($csb___n);
__$csb_require.a((0, __$csb_exports.default));
`+interopHelperText)

	log := logger.NewDeferLog(nil)
	program := parseForTest(t, "import { require as module } from './m'; let __dirname = module();")
	assert.NilError(t, ToCommonJSWithOptions(program, Options{Log: log}))
	msgs := log.Done()
	assert.Equal(t, len(msgs), 2)
	js, err := js_printer.Print(program, js_printer.Options{})
	assert.NilError(t, err)
	test.AssertEqualWithDiff(t, js, marker+`var $csb___m = require("./m");
let __$csb___dirname = (0, $csb___m.require)();
`)
}

func TestLeadingComments(t *testing.T) {
	program := parseForTest(t, "/*! license */\nimport a from 'a';\na();\n")
	assert.NilError(t, ToCommonJS(program))
	js, err := js_printer.Print(program, js_printer.Options{Comments: true})
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(js, "/*! license*/\nObject.defineProperty"), js)
}

func TestVoidInitChunks(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, "export const v%d = %d;\n", i, i)
	}
	program := parseForTest(t, sb.String())
	assert.NilError(t, ToCommonJS(program))
	body := program.Children("body")

	// Each chunk is one statement and the last chunk comes first
	chunkNames := func(stmt *estree.Node) []string {
		var names []string
		for expr := stmt.Child("expression"); expr.Is("AssignmentExpression"); expr = expr.Child("right") {
			names = append(names, expr.Child("left").Child("property").Name())
		}
		return names
	}
	first := chunkNames(body[0])
	second := chunkNames(body[1])
	third := chunkNames(body[2])
	assert.Equal(t, len(first), 20)
	assert.Equal(t, len(second), 50)
	assert.Equal(t, len(third), 50)
	assert.Equal(t, first[0], "v119")
	assert.Equal(t, first[19], "v100")
	assert.Equal(t, second[49], "v50")
	assert.Equal(t, third[49], "v0")
	assert.Assert(t, body[3].Child("expression").Child("callee").Is("MemberExpression"))
}

func TestNoModuleSyntaxLeft(t *testing.T) {
	program := parseForTest(t, `
import a, {b as c} from "a";
import * as d from "d";
export * from "e";
export * as f from "f";
export {g, h as i} from "g";
export {default as j} from "j";
const k = 1;
export {k, k as l};
export let m = 1;
export function n() {}
export class O {}
export default a + c + d;
`)
	assert.NilError(t, ToCommonJS(program))
	walker.SimpleWalk(program, func(node *estree.Node, parent *estree.Node) bool {
		switch node.Type {
		case "ImportDeclaration", "ExportNamedDeclaration", "ExportDefaultDeclaration", "ExportAllDeclaration",
			"ImportSpecifier", "ImportDefaultSpecifier", "ImportNamespaceSpecifier", "ExportSpecifier":
			t.Errorf("found %s after the rewrite", node.Type)
		}
		return true
	})
}

func nonLiteralProgram(t *testing.T) *estree.Node {
	t.Helper()
	program, err := estree.Decode([]byte(`{
		"type": "Program",
		"sourceType": "module",
		"body": [
			{"type": "ImportDeclaration", "specifiers": [], "source": {"type": "Literal", "value": "ok"}},
			{"type": "ExportAllDeclaration", "exported": null, "source": {"type": "Identifier", "name": "dynamic"}}
		]
	}`))
	assert.NilError(t, err)
	return program
}

func TestNonLiteralPassThrough(t *testing.T) {
	program := nonLiteralProgram(t)
	log := logger.NewDeferLog(nil)
	assert.NilError(t, ToCommonJSWithOptions(program, Options{Log: log}))

	body := program.Children("body")
	assert.Equal(t, len(body), 3)
	assert.Equal(t, body[1].Type, "VariableDeclaration")
	assert.Equal(t, body[2].Type, "ExportAllDeclaration")

	msgs := log.Done()
	assert.Equal(t, len(msgs), 1)
	assert.Equal(t, msgs[0].ID, logger.MsgID_ESM_NonLiteralSpecifier)
	assert.Equal(t, msgs[0].Kind, logger.Warning)
}

func TestNonLiteralError(t *testing.T) {
	program := nonLiteralProgram(t)
	original := program.Clone()
	err := ToCommonJSWithOptions(program, Options{NonLiteralSpecifiers: NonLiteralError})

	var specifierErr *NonLiteralSpecifierError
	assert.Assert(t, errors.As(err, &specifierErr))
	assert.Equal(t, specifierErr.Index, 1)
	assert.Equal(t, specifierErr.Statement, "ExportAllDeclaration")
	assert.Assert(t, estree.Equal(program, original), "the tree must not change")
}

func TestNotAProgram(t *testing.T) {
	assert.ErrorContains(t, ToCommonJS(estree.Ident("x")), "Program")
}

func TestUnsupportedWarnings(t *testing.T) {
	log := logger.NewDeferLog(map[logger.MsgID]logger.LogLevel{
		logger.MsgID_ESM_ImportMeta: logger.LevelSilent,
	})
	program := parseForTest(t, "import('a'); import.meta.url;")
	assert.NilError(t, ToCommonJSWithOptions(program, Options{Log: log}))
	msgs := log.Done()
	assert.Equal(t, len(msgs), 1)
	assert.Equal(t, msgs[0].ID, logger.MsgID_ESM_DynamicImport)
}

type countingResolver struct {
	calls int
}

func (r *countingResolver) Resolve(program *estree.Node) []*scope.Reference {
	r.calls++
	return scope.Resolver{}.Resolve(program)
}

func TestCustomResolver(t *testing.T) {
	resolver := &countingResolver{}
	program := parseForTest(t, "import {a} from 'a'; a;")
	assert.NilError(t, ToCommonJSWithOptions(program, Options{Resolver: resolver}))
	assert.Equal(t, resolver.calls, 1)

	// Nothing to rename means no second pass
	program = parseForTest(t, "import 'a';")
	assert.NilError(t, ToCommonJSWithOptions(program, Options{Resolver: resolver}))
	assert.Equal(t, resolver.calls, 1)
}

func TestVariableNameForSpecifier(t *testing.T) {
	assert.Equal(t, variableNameForSpecifier("react"), "react")
	assert.Equal(t, variableNameForSpecifier("./test"), "_test")
	assert.Equal(t, variableNameForSpecifier("@scope/pkg-name/sub.js"), "_scope_pkg_name_sub_js")
	assert.Equal(t, variableNameForSpecifier("../../a/very/long/path/to/some/module/file.js"), "ery_long_path_to_some_module_file_js")

	names := newNameAllocator(parseForTest(t, "let $csb__x;"))
	assert.Equal(t, names.forSpecifier("x"), "$csb__x_")
	assert.Equal(t, names.forSpecifier("x"), "$csb__x__")
	assert.Equal(t, names.allocate("$csb__a.b-c"), "$csb__abc")
}
