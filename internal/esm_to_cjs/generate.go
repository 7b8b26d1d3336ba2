package esm_to_cjs

import "github.com/esm2cjs/esm2cjs/internal/estree"

// Builders for the CommonJS statements the rewrite emits. Each call returns
// a fresh tree so no two statements ever share a node.

func exportsObject() *estree.Node {
	return estree.Ident("exports")
}

func objectDefineProperty() *estree.Node {
	return estree.Dot(estree.Ident("Object"), "defineProperty")
}

func requireCall(specifier string) *estree.Node {
	return estree.Call(estree.Ident("require"), estree.StringLit(specifier))
}

func varStatement(name string, init *estree.Node) *estree.Node {
	return estree.VarDecl("var", estree.Declarator(estree.Ident(name), init))
}

// var <name> = require("<specifier>");
func requireStatement(name string, specifier string) *estree.Node {
	return varStatement(name, requireCall(specifier))
}

// var <name> = $_csb__interopRequireDefault(<value>);
func interopRequireStatement(name string, value *estree.Node) *estree.Node {
	return varStatement(name, estree.Call(estree.Ident(interopHelperName), value))
}

// exports.<exported> = <local>;
func exportStatement(local string, exported string) *estree.Node {
	return estree.ExprStmt(exportAssign(exported, estree.Ident(local)))
}

func exportAssign(exported string, value *estree.Node) *estree.Node {
	return estree.Assign("=", estree.Dot(exportsObject(), exported), value)
}

// Object.defineProperty(exports, "__esModule", {value: true});
func esModuleMarker() *estree.Node {
	marker := estree.StringLit("__esModule")
	marker.Set("raw", `"__esModule"`)
	return estree.ExprStmt(estree.Call(objectDefineProperty(),
		exportsObject(),
		marker,
		estree.Object(estree.Property(estree.Ident("value"), estree.BoolLit(true)))))
}

func getterDescriptor(value *estree.Node) *estree.Node {
	getter := estree.Function("FunctionExpression", estree.Ident(getterName), nil,
		estree.Block(estree.Return(value)))
	return estree.Object(
		estree.Property(estree.Ident("enumerable"), estree.BoolLit(true)),
		estree.Property(estree.Ident("configurable"), estree.BoolLit(true)),
		estree.Property(estree.Ident("get"), getter))
}

// Object.defineProperty(exports, "<name>", {enumerable: true,
// configurable: true, get: function $csbGet() { return <value>; }});
func exportGetter(name string, value *estree.Node) *estree.Node {
	return estree.ExprStmt(estree.Call(objectDefineProperty(),
		exportsObject(),
		estree.StringLit(name),
		getterDescriptor(value)))
}

// Object.keys(<name>).forEach(function (key) {
//   if (key === "default" || key === "__esModule") return;
//   if (Object.prototype.hasOwnProperty.call(exports, key)) return;
//   Object.defineProperty(exports, key, {..., get: function $csbGet() { return <name>[key]; }});
// });
func allExportsIterator(name string) *estree.Node {
	key := func() *estree.Node { return estree.Ident("key") }
	isReserved := estree.Binary("||",
		estree.Binary("===", key(), estree.StringLit("default")),
		estree.Binary("===", key(), estree.StringLit("__esModule")))
	hasOwn := estree.Call(
		estree.Dot(estree.Dot(estree.Dot(estree.Ident("Object"), "prototype"), "hasOwnProperty"), "call"),
		exportsObject(), key())
	define := estree.ExprStmt(estree.Call(objectDefineProperty(),
		exportsObject(),
		key(),
		getterDescriptor(estree.Member(estree.Ident(name), key(), true))))

	callback := estree.Function("FunctionExpression", nil, []*estree.Node{key()}, estree.Block(
		estree.If(isReserved, estree.Return(nil), nil),
		estree.If(hasOwn, estree.Return(nil), nil),
		define))
	keys := estree.Call(estree.Dot(estree.Ident("Object"), "keys"), estree.Ident(name))
	return estree.ExprStmt(estree.Call(estree.Dot(keys, "forEach"), callback))
}

// function $_csb__interopRequireDefault(obj) {
//   return obj && obj.__esModule ? obj : {default: obj};
// }
func interopHelper() *estree.Node {
	obj := func() *estree.Node { return estree.Ident("obj") }
	test := estree.Binary("&&", obj(), estree.Dot(obj(), "__esModule"))
	wrapped := estree.Object(estree.Property(estree.Ident("default"), obj()))
	conditional := estree.New("ConditionalExpression",
		estree.F("test", test),
		estree.F("consequent", obj()),
		estree.F("alternate", wrapped))
	return estree.Function("FunctionDeclaration", estree.Ident(interopHelperName),
		[]*estree.Node{obj()}, estree.Block(estree.Return(conditional)))
}

// exports.c = exports.b = exports.a = void 0;
//
// The names are assigned right to left so the first name ends up innermost.
func voidInitStatement(names []string) *estree.Node {
	var value *estree.Node = estree.Unary("void", estree.NumberLit(0))
	for _, name := range names {
		value = exportAssign(name, value)
	}
	return estree.ExprStmt(value)
}

// (0, <object>.<property>)
func indirectMember(object string, property string) *estree.Node {
	return estree.Sequence(estree.NumberLit(0), estree.Dot(estree.Ident(object), property))
}
