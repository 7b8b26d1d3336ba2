package esm_to_cjs

import (
	"fmt"
	"testing"

	"github.com/dop251/goja"
	"github.com/esm2cjs/esm2cjs/internal/js_printer"
	"gotest.tools/v3/assert"
)

// moduleSystem runs rewritten modules with a minimal CommonJS loader. Plain
// CommonJS sources can be mixed in with "cjs:" keys.
type moduleSystem struct {
	t       *testing.T
	vm      *goja.Runtime
	sources map[string]string
	cache   map[string]*goja.Object
}

func newModuleSystem(t *testing.T, files map[string]string) *moduleSystem {
	t.Helper()
	m := &moduleSystem{
		t:       t,
		vm:      goja.New(),
		sources: make(map[string]string),
		cache:   make(map[string]*goja.Object),
	}
	for path, contents := range files {
		if len(path) > 4 && path[:4] == "cjs:" {
			m.sources[path[4:]] = contents
			continue
		}
		m.sources[path] = rewriteForTest(t, contents)
	}
	return m
}

func (m *moduleSystem) require(path string) (*goja.Object, error) {
	if module, ok := m.cache[path]; ok {
		return module.Get("exports").ToObject(m.vm), nil
	}
	source, ok := m.sources[path]
	if !ok {
		return nil, fmt.Errorf("cannot find module %q", path)
	}

	// Registered before running so a circular require sees the partial exports
	exports := m.vm.NewObject()
	module := m.vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	m.cache[path] = module

	wrapper, err := m.vm.RunScript(path, "(function (exports, require, module) {\n"+source+"\n})")
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(wrapper)
	if !ok {
		return nil, fmt.Errorf("module %q did not compile to a function", path)
	}
	requireFn := func(call goja.FunctionCall) goja.Value {
		exports, err := m.require(call.Argument(0).String())
		if err != nil {
			panic(m.vm.NewGoError(err))
		}
		return exports
	}
	if _, err := fn(goja.Undefined(), exports, m.vm.ToValue(requireFn), module); err != nil {
		return nil, err
	}
	return module.Get("exports").ToObject(m.vm), nil
}

// run requires "main" and returns the value of its "result" export.
func (m *moduleSystem) run() interface{} {
	m.t.Helper()
	exports, err := m.require("main")
	assert.NilError(m.t, err)
	return exports.Get("result").Export()
}

func expectResult(t *testing.T, files map[string]string, expected interface{}) {
	t.Helper()
	assert.DeepEqual(t, newModuleSystem(t, files).run(), expected)
}

func TestRuntimeLiveBindings(t *testing.T) {
	expectResult(t, map[string]string{
		"counter": "export let count = 0; export function inc() { count++; }",
		"main":    "import { count, inc } from 'counter'; const before = count; inc(); inc(); export const result = [before, count].join();",
	}, "0,2")
}

func TestRuntimeDefaultInterop(t *testing.T) {
	expectResult(t, map[string]string{
		"cjs:legacy": "module.exports = function () { return 'legacy'; };",
		"modern":     "export default function () { return 'modern'; }",
		"main":       "import legacy from 'legacy'; import modern from 'modern'; export const result = legacy() + ',' + modern();",
	}, "legacy,modern")
}

func TestRuntimeExportStar(t *testing.T) {
	expectResult(t, map[string]string{
		"lib":  "export const x = 1; export const y = 2; export default 'hidden';",
		"mid":  "export * from 'lib'; export const y = 'own';",
		"main": "import * as ns from 'mid'; export const result = Object.keys(ns).sort().join() + ':' + ns.y + ':' + ns.x + ':' + ns.default;",
	}, "x,y:own:1:undefined")
}

func TestRuntimeNamespaceKeys(t *testing.T) {
	expectResult(t, map[string]string{
		"lib":  "export default 1; export const x = 2;",
		"main": "import * as ns from 'lib'; export const result = Object.keys(ns).sort().join();",
	}, "default,x")
}

func TestRuntimeReexports(t *testing.T) {
	expectResult(t, map[string]string{
		"cjs:legacy": "module.exports = 'legacy';",
		"lib":        "export const a = 'a'; export default 'def';",
		"mid":        "export { default } from 'legacy'; export { a as b, default as c } from 'lib'; export * as ns from 'lib';",
		"main":       "import d, { b, c, ns } from 'mid'; export const result = [d, b, c, ns.a].join();",
	}, "legacy,a,def,a")
}

func TestRuntimeCircularFunctions(t *testing.T) {
	expectResult(t, map[string]string{
		"a":    "import { b } from 'b'; export function a() { return 'a'; } export const fromB = b();",
		"b":    "import { a } from 'a'; export function b() { return 'b' + a(); }",
		"main": "import { fromB } from 'a'; export const result = fromB;",
	}, "ba")
}

func TestRuntimeDestructuredExports(t *testing.T) {
	expectResult(t, map[string]string{
		"lib": `export let a = 1, b = 2;
export let { c, d: [e] } = { c: 3, d: [4] };
export function swap() { [a, b] = [b, a]; }`,
		"main": "import { a, b, c, e, swap } from 'lib'; swap(); export const result = [a, b, c, e].join();",
	}, "2,1,3,4")
}

func TestRuntimeUpdateValues(t *testing.T) {
	expectResult(t, map[string]string{
		"lib": `export let n = 5;
export function post() { return n++; }
export function pre() { return --n; }
export function add() { return (n += 10); }`,
		"main": "import { n, post, pre, add } from 'lib'; const seen = [post(), n, pre(), n, add(), n]; export const result = seen.join();",
	}, "5,6,5,5,15,15")
}

func TestRuntimeDefaultClass(t *testing.T) {
	expectResult(t, map[string]string{
		"lib":  "export default class { static get name2() { return 'anon'; } }",
		"main": "import K from 'lib'; export const result = K.name2;",
	}, "anon")
}

func TestRuntimeLocalSpecifiers(t *testing.T) {
	expectResult(t, map[string]string{
		"lib":  "let value = 1; function set(v) { value = v; } export { value as current, set, value as default };",
		"main": "import def, { current, set } from 'lib'; set(7); export const result = [def, current].join();",
	}, "7,7")
}

func TestRuntimeReservedNames(t *testing.T) {
	expectResult(t, map[string]string{
		"main": "export const exports = 1; export const result = exports + 1;",
	}, int64(2))

	expectResult(t, map[string]string{
		"lib":  "export const exports = 'e'; export function require() { return 'r'; } export let module = 'm';",
		"main": "import { exports, require, module } from 'lib'; import * as ns from 'lib'; export const result = [exports, require(), module, Object.keys(ns).sort().join('|')].join();",
	}, "e,r,m,exports|module|require")

	expectResult(t, map[string]string{
		"lib":  "export const exports = 'x';",
		"main": "import { exports } from 'lib'; export const a = 1; export const result = exports + a;",
	}, "x1")

	expectResult(t, map[string]string{
		"cjs:legacy": "module.exports = 'legacy';",
		"main":       "import exports from 'legacy'; export const result = exports;",
	}, "legacy")
}

func TestRuntimeEsModuleMarker(t *testing.T) {
	m := newModuleSystem(t, map[string]string{
		"lib": "export const x = 1;",
	})
	exports, err := m.require("lib")
	assert.NilError(t, err)
	assert.Equal(t, exports.Get("__esModule").Export(), true)
	assert.DeepEqual(t, exports.Keys(), []string{"x"})
}

// The printed output must itself parse to the same rewritten tree
func TestRewrittenOutputReparses(t *testing.T) {
	program := parseForTest(t, "import a, {b} from 'x'; export let c = a + b; export default function () { c++; }")
	assert.NilError(t, ToCommonJS(program))
	first, err := js_printer.Print(program, js_printer.Options{})
	assert.NilError(t, err)
	second, err := js_printer.Print(parseForTest(t, first), js_printer.Options{})
	assert.NilError(t, err)
	assert.Equal(t, first, second)
}
