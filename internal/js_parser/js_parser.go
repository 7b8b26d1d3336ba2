// Package js_parser parses JavaScript modules into estree trees. Syntax is
// handled by github.com/tdewolff/parse/v2/js; this package converts its AST
// into the ESTree shape the rest of the tool works on. Positions are not
// kept.
package js_parser

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Parse reports syntax errors to the log and returns false if there were
// any.
func Parse(log logger.Log, source logger.Source) (*estree.Node, bool) {
	ast, err := js.Parse(parse.NewInputString(source.Contents), js.Options{})
	if err != nil {
		var parseErr *parse.Error
		if errors.As(err, &parseErr) {
			loc := source.LocForLineColumn(parseErr.Line, parseErr.Column-1)
			log.AddError(&source, logger.Range{Loc: loc}, parseErr.Message)
		} else {
			log.AddError(&source, logger.Range{}, err.Error())
		}
		return nil, false
	}

	c := converter{log: log, source: &source}
	program := c.program(ast)
	if c.failed {
		return nil, false
	}
	return program, true
}

type converter struct {
	log    logger.Log
	source *logger.Source
	failed bool
}

func (c *converter) fail(format string, args ...interface{}) {
	c.log.AddError(c.source, logger.Range{}, fmt.Sprintf(format, args...))
	c.failed = true
}

func (c *converter) program(ast *js.AST) *estree.Node {
	list := ast.List
	var hashbang *string
	if len(list) > 0 {
		if comment, ok := list[0].(*js.Comment); ok && bytes.HasPrefix(comment.Value, []byte("#!")) {
			text := strings.TrimRight(string(comment.Value[2:]), "\r\n")
			hashbang = &text
			list = list[1:]
		}
	}

	program := estree.New("Program")
	program.Set("body", c.stmts(list, program))
	program.Set("sourceType", "module")
	if hashbang != nil {
		program.Set("hashbang", *hashbang)
	}
	return program
}

func commentNode(value []byte) *estree.Node {
	text := string(value)
	if strings.HasPrefix(text, "//") {
		return estree.New("Line", estree.F("value", strings.TrimRight(text[2:], "\r\n")))
	}
	return estree.New("Block", estree.F("value", strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")))
}

// stmts converts a statement list. The parser only keeps "/*!" and "//!"
// comments and puts them at the front of the enclosing list; they are
// attached to the statement that follows them, or to the container when
// nothing follows.
func (c *converter) stmts(list []js.IStmt, container *estree.Node) []*estree.Node {
	stmts := make([]*estree.Node, 0, len(list))
	var comments []*estree.Node
	for _, item := range list {
		if comment, ok := item.(*js.Comment); ok {
			comments = append(comments, commentNode(comment.Value))
			continue
		}
		stmt := c.stmt(item)
		if len(comments) > 0 {
			stmt.Set("comments", comments)
			comments = nil
		}
		stmts = append(stmts, stmt)
	}
	if len(comments) > 0 && container != nil {
		container.Set("trailingComments", comments)
	}
	return stmts
}

func (c *converter) block(list []js.IStmt) *estree.Node {
	block := estree.New("BlockStatement")
	block.Set("body", c.stmts(list, block))
	return block
}

func (c *converter) optionalExpr(e js.IExpr) *estree.Node {
	if e == nil {
		return nil
	}
	return c.expr(e)
}

func (c *converter) stmt(item js.IStmt) *estree.Node {
	switch s := item.(type) {
	case *js.BlockStmt:
		return c.block(s.List)

	case *js.EmptyStmt:
		return estree.New("EmptyStatement")

	case *js.ExprStmt:
		return estree.ExprStmt(c.expr(s.Value))

	case *js.DirectivePrologueStmt:
		stmt := estree.ExprStmt(c.literal(js.LiteralExpr{TokenType: js.StringToken, Data: s.Value}))
		stmt.Set("directive", string(s.Value[1:len(s.Value)-1]))
		return stmt

	case *js.VarDecl:
		return c.varDecl(s)

	case *js.FuncDecl:
		return c.function(s, "FunctionDeclaration")

	case *js.ClassDecl:
		return c.class(s, "ClassDeclaration")

	case *js.IfStmt:
		var alternate *estree.Node
		if s.Else != nil {
			alternate = c.stmt(s.Else)
		}
		return estree.If(c.expr(s.Cond), c.stmt(s.Body), alternate)

	case *js.DoWhileStmt:
		return estree.New("DoWhileStatement",
			estree.F("body", c.stmt(s.Body)),
			estree.F("test", c.expr(s.Cond)))

	case *js.WhileStmt:
		return estree.New("WhileStatement",
			estree.F("test", c.expr(s.Cond)),
			estree.F("body", c.stmt(s.Body)))

	case *js.ForStmt:
		var init *estree.Node
		if decl, ok := s.Init.(*js.VarDecl); ok {
			// The parser puts an empty declaration here for "for (;;)"
			if len(decl.List) > 0 {
				init = c.varDecl(decl)
			}
		} else if s.Init != nil {
			init = c.expr(s.Init)
		}
		return estree.New("ForStatement",
			estree.F("init", init),
			estree.F("test", c.optionalExpr(s.Cond)),
			estree.F("update", c.optionalExpr(s.Post)),
			estree.F("body", c.block(s.Body.List)))

	case *js.ForInStmt:
		return estree.New("ForInStatement",
			estree.F("left", c.forLeft(s.Init)),
			estree.F("right", c.expr(s.Value)),
			estree.F("body", c.block(s.Body.List)))

	case *js.ForOfStmt:
		return estree.New("ForOfStatement",
			estree.F("await", s.Await),
			estree.F("left", c.forLeft(s.Init)),
			estree.F("right", c.expr(s.Value)),
			estree.F("body", c.block(s.Body.List)))

	case *js.SwitchStmt:
		cases := make([]*estree.Node, 0, len(s.List))
		for _, clause := range s.List {
			node := estree.New("SwitchCase",
				estree.F("test", c.optionalExpr(clause.Cond)),
				estree.F("consequent", nil))
			node.Set("consequent", c.stmts(clause.List, node))
			cases = append(cases, node)
		}
		return estree.New("SwitchStatement",
			estree.F("discriminant", c.expr(s.Init)),
			estree.F("cases", cases))

	case *js.BranchStmt:
		typ := "BreakStatement"
		if s.Type == js.ContinueToken {
			typ = "ContinueStatement"
		}
		var label *estree.Node
		if s.Label != nil {
			label = estree.Ident(string(s.Label))
		}
		return estree.New(typ, estree.F("label", label))

	case *js.ReturnStmt:
		return estree.Return(c.optionalExpr(s.Value))

	case *js.WithStmt:
		return estree.New("WithStatement",
			estree.F("object", c.expr(s.Cond)),
			estree.F("body", c.stmt(s.Body)))

	case *js.LabelledStmt:
		return estree.New("LabeledStatement",
			estree.F("body", c.stmt(s.Value)),
			estree.F("label", estree.Ident(string(s.Label))))

	case *js.ThrowStmt:
		return estree.New("ThrowStatement", estree.F("argument", c.expr(s.Value)))

	case *js.TryStmt:
		var handler, finalizer *estree.Node
		if s.Catch != nil {
			var param *estree.Node
			if s.Binding != nil {
				param = c.binding(s.Binding)
			}
			handler = estree.New("CatchClause",
				estree.F("param", param),
				estree.F("body", c.block(s.Catch.List)))
		}
		if s.Finally != nil {
			finalizer = c.block(s.Finally.List)
		}
		return estree.New("TryStatement",
			estree.F("block", c.block(s.Body.List)),
			estree.F("handler", handler),
			estree.F("finalizer", finalizer))

	case *js.DebuggerStmt:
		return estree.New("DebuggerStatement")

	case *js.ImportStmt:
		return c.importStmt(s)

	case *js.ExportStmt:
		return c.exportStmt(s)
	}

	c.fail("Unsupported statement %T", item)
	return estree.New("EmptyStatement")
}

func (c *converter) forLeft(init js.IExpr) *estree.Node {
	if decl, ok := init.(*js.VarDecl); ok {
		return c.varDecl(decl)
	}
	return c.pattern(init)
}

func (c *converter) varDecl(d *js.VarDecl) *estree.Node {
	decls := make([]*estree.Node, 0, len(d.List))
	for _, item := range d.List {
		decls = append(decls, estree.Declarator(c.binding(item.Binding), c.optionalExpr(item.Default)))
	}
	return estree.VarDecl(d.TokenType.String(), decls...)
}

func (c *converter) params(params js.Params) []*estree.Node {
	nodes := make([]*estree.Node, 0, len(params.List)+1)
	for _, item := range params.List {
		nodes = append(nodes, c.bindingElement(item))
	}
	if params.Rest != nil {
		nodes = append(nodes, estree.New("RestElement", estree.F("argument", c.binding(params.Rest))))
	}
	return nodes
}

func (c *converter) function(f *js.FuncDecl, typ string) *estree.Node {
	var id *estree.Node
	if f.Name != nil {
		id = estree.Ident(string(f.Name.Name()))
	}
	node := estree.Function(typ, id, c.params(f.Params), c.block(f.Body.List))
	node.Set("generator", f.Generator)
	node.Set("async", f.Async)
	return node
}

func (c *converter) methodFunction(m *js.MethodDecl) *estree.Node {
	node := estree.Function("FunctionExpression", nil, c.params(m.Params), c.block(m.Body.List))
	node.Set("generator", m.Generator)
	node.Set("async", m.Async)
	return node
}

func (c *converter) arrow(a *js.ArrowFunc) *estree.Node {
	// "x => y" comes back from the parser as a body holding "return y"
	var body *estree.Node
	expression := false
	if len(a.Body.List) == 1 {
		if ret, ok := a.Body.List[0].(*js.ReturnStmt); ok && ret.Value != nil {
			body = c.expr(ret.Value)
			expression = true
		}
	}
	if body == nil {
		body = c.block(a.Body.List)
	}
	return estree.New("ArrowFunctionExpression",
		estree.F("id", nil),
		estree.F("expression", expression),
		estree.F("generator", false),
		estree.F("async", a.Async),
		estree.F("params", c.params(a.Params)),
		estree.F("body", body))
}

func (c *converter) class(cd *js.ClassDecl, typ string) *estree.Node {
	var id *estree.Node
	if cd.Name != nil {
		id = estree.Ident(string(cd.Name.Name()))
	}
	elements := make([]*estree.Node, 0, len(cd.List))
	for _, element := range cd.List {
		elements = append(elements, c.classElement(element))
	}
	return estree.New(typ,
		estree.F("id", id),
		estree.F("superClass", c.optionalExpr(cd.Extends)),
		estree.F("body", estree.New("ClassBody", estree.F("body", elements))))
}

func (c *converter) classElementName(name js.ClassElementName) (*estree.Node, bool) {
	if name.Private != nil {
		return privateIdentifier(name.Private.Name()), false
	}
	return c.propertyName(&name.PropertyName)
}

func (c *converter) classElement(element js.ClassElement) *estree.Node {
	if element.StaticBlock != nil {
		block := estree.New("StaticBlock")
		block.Set("body", c.stmts(element.StaticBlock.List, block))
		return block
	}

	if m := element.Method; m != nil {
		key, computed := c.classElementName(m.Name)
		kind := "method"
		switch {
		case m.Get:
			kind = "get"
		case m.Set:
			kind = "set"
		case !m.Static && !computed && isPropertyNamed(key, "constructor"):
			kind = "constructor"
		}
		return estree.New("MethodDefinition",
			estree.F("static", m.Static),
			estree.F("computed", computed),
			estree.F("key", key),
			estree.F("kind", kind),
			estree.F("value", c.methodFunction(m)))
	}

	key, computed := c.classElementName(element.Field.Name)
	return estree.New("PropertyDefinition",
		estree.F("static", element.Field.Static),
		estree.F("computed", computed),
		estree.F("key", key),
		estree.F("value", c.optionalExpr(element.Field.Init)))
}

func isPropertyNamed(key *estree.Node, name string) bool {
	if key.Is("Identifier") {
		return key.Name() == name
	}
	value, ok := key.Get("value").(string)
	return key.Is("Literal") && ok && value == name
}

func (c *converter) propertyName(name *js.PropertyName) (*estree.Node, bool) {
	if name.Computed != nil {
		return c.expr(name.Computed), true
	}
	if name.Literal.TokenType == js.IdentifierToken {
		return estree.Ident(string(name.Literal.Data)), false
	}
	return c.literal(name.Literal), false
}

func privateIdentifier(name []byte) *estree.Node {
	return estree.New("PrivateIdentifier", estree.F("name", strings.TrimPrefix(string(name), "#")))
}

func (c *converter) moduleExportName(data []byte) *estree.Node {
	if len(data) > 0 && (data[0] == '"' || data[0] == '\'') {
		return c.literal(js.LiteralExpr{TokenType: js.StringToken, Data: data})
	}
	return estree.Ident(string(data))
}

func (c *converter) importStmt(s *js.ImportStmt) *estree.Node {
	specifiers := []*estree.Node{}
	if s.Default != nil {
		specifiers = append(specifiers, estree.New("ImportDefaultSpecifier",
			estree.F("local", estree.Ident(string(s.Default)))))
	}
	if len(s.List) == 1 && string(s.List[0].Name) == "*" {
		specifiers = append(specifiers, estree.New("ImportNamespaceSpecifier",
			estree.F("local", estree.Ident(string(s.List[0].Binding)))))
	} else {
		for _, alias := range s.List {
			if alias.Binding == nil {
				continue
			}
			imported := alias.Binding
			if alias.Name != nil {
				imported = alias.Name
			}
			specifiers = append(specifiers, estree.New("ImportSpecifier",
				estree.F("imported", c.moduleExportName(imported)),
				estree.F("local", estree.Ident(string(alias.Binding)))))
		}
	}
	return estree.New("ImportDeclaration",
		estree.F("specifiers", specifiers),
		estree.F("source", c.moduleExportName(s.Module)))
}

func (c *converter) exportStmt(s *js.ExportStmt) *estree.Node {
	if s.Decl != nil {
		var decl *estree.Node
		switch d := s.Decl.(type) {
		case *js.FuncDecl:
			decl = c.function(d, "FunctionDeclaration")
		case *js.ClassDecl:
			decl = c.class(d, "ClassDeclaration")
		case *js.VarDecl:
			decl = c.varDecl(d)
		default:
			decl = c.expr(d)
		}
		if s.Default {
			return estree.New("ExportDefaultDeclaration", estree.F("declaration", decl))
		}
		return estree.New("ExportNamedDeclaration",
			estree.F("declaration", decl),
			estree.F("specifiers", []*estree.Node{}),
			estree.F("source", nil))
	}

	var source *estree.Node
	if s.Module != nil {
		source = c.moduleExportName(s.Module)
	}

	if len(s.List) == 1 {
		alias := s.List[0]
		if alias.Name == nil && string(alias.Binding) == "*" {
			return estree.New("ExportAllDeclaration",
				estree.F("exported", nil),
				estree.F("source", source))
		}
		if string(alias.Name) == "*" {
			return estree.New("ExportAllDeclaration",
				estree.F("exported", c.moduleExportName(alias.Binding)),
				estree.F("source", source))
		}
	}

	specifiers := []*estree.Node{}
	for _, alias := range s.List {
		if alias.Binding == nil {
			continue
		}
		local := alias.Binding
		if alias.Name != nil {
			local = alias.Name
		}
		specifiers = append(specifiers, estree.New("ExportSpecifier",
			estree.F("local", c.moduleExportName(local)),
			estree.F("exported", c.moduleExportName(alias.Binding))))
	}
	return estree.New("ExportNamedDeclaration",
		estree.F("declaration", nil),
		estree.F("specifiers", specifiers),
		estree.F("source", source))
}

// expr converts an expression and wraps any optional chain it heads in a
// ChainExpression.
func (c *converter) expr(e js.IExpr) *estree.Node {
	node, optional := c.chain(e)
	if optional {
		return estree.New("ChainExpression", estree.F("expression", node))
	}
	return node
}

// chain converts member accesses and calls, reporting whether the chain
// they belong to contains a "?.". A parenthesized chain ends the chain.
func (c *converter) chain(e js.IExpr) (*estree.Node, bool) {
	switch e := e.(type) {
	case *js.DotExpr:
		object, optional := c.chain(e.X)
		var property *estree.Node
		switch y := e.Y.(type) {
		case *js.Var:
			property = c.varExpr(y)
		case js.LiteralExpr:
			property = c.memberName(y)
		case *js.LiteralExpr:
			property = c.memberName(*y)
		default:
			c.fail("Unsupported member name %T", e.Y)
			property = estree.Ident("")
		}
		member := estree.Member(object, property, false)
		member.Set("optional", e.Optional)
		return member, optional || e.Optional

	case *js.IndexExpr:
		object, optional := c.chain(e.X)
		member := estree.Member(object, c.expr(e.Y), true)
		member.Set("optional", e.Optional)
		return member, optional || e.Optional

	case *js.CallExpr:
		if lit, ok := e.X.(*js.LiteralExpr); ok && lit.TokenType == js.ImportToken {
			return c.importCall(e), false
		}
		callee, optional := c.chain(e.X)
		call := estree.Call(callee, c.args(e.Args)...)
		call.Set("optional", e.Optional)
		return call, optional || e.Optional
	}
	return c.plainExpr(e), false
}

func (c *converter) memberName(lit js.LiteralExpr) *estree.Node {
	if lit.TokenType == js.PrivateIdentifierToken {
		return privateIdentifier(lit.Data)
	}
	return estree.Ident(string(lit.Data))
}

func (c *converter) importCall(e *js.CallExpr) *estree.Node {
	node := estree.New("ImportExpression")
	if len(e.Args.List) > 0 {
		node.Set("source", c.expr(e.Args.List[0].Value))
	} else {
		c.fail("Expected a module specifier in import()")
		node.Set("source", nil)
	}
	if len(e.Args.List) > 1 {
		node.Set("options", c.expr(e.Args.List[1].Value))
	}
	return node
}

func (c *converter) args(args js.Args) []*estree.Node {
	nodes := make([]*estree.Node, 0, len(args.List))
	for _, arg := range args.List {
		if arg.Rest {
			nodes = append(nodes, estree.New("SpreadElement", estree.F("argument", c.expr(arg.Value))))
		} else {
			nodes = append(nodes, c.expr(arg.Value))
		}
	}
	return nodes
}

func (c *converter) varExpr(v *js.Var) *estree.Node {
	name := v.Name()
	if len(name) > 0 && name[0] == '#' {
		return privateIdentifier(name)
	}
	return estree.Ident(string(name))
}

var assignOperators = map[js.TokenType]bool{
	js.EqToken: true, js.MulEqToken: true, js.DivEqToken: true, js.ModEqToken: true,
	js.ExpEqToken: true, js.AddEqToken: true, js.SubEqToken: true, js.LtLtEqToken: true,
	js.GtGtEqToken: true, js.GtGtGtEqToken: true, js.BitAndEqToken: true, js.BitXorEqToken: true,
	js.BitOrEqToken: true, js.AndEqToken: true, js.OrEqToken: true, js.NullishEqToken: true,
}

var unaryOperators = map[js.TokenType]string{
	js.NotToken:    "!",
	js.BitNotToken: "~",
	js.TypeofToken: "typeof",
	js.VoidToken:   "void",
	js.DeleteToken: "delete",
	js.PosToken:    "+",
	js.NegToken:    "-",
}

func (c *converter) plainExpr(e js.IExpr) *estree.Node {
	switch e := e.(type) {
	case *js.Var:
		return c.varExpr(e)

	case *js.LiteralExpr:
		return c.literal(*e)

	case js.LiteralExpr:
		return c.literal(e)

	case *js.GroupExpr:
		return c.expr(e.X)

	case *js.ArrayExpr:
		elements := make([]*estree.Node, 0, len(e.List))
		for _, element := range e.List {
			switch {
			case element.Value == nil:
				elements = append(elements, nil)
			case element.Spread:
				elements = append(elements, estree.New("SpreadElement", estree.F("argument", c.expr(element.Value))))
			default:
				elements = append(elements, c.expr(element.Value))
			}
		}
		return estree.New("ArrayExpression", estree.F("elements", elements))

	case *js.ObjectExpr:
		properties := make([]*estree.Node, 0, len(e.List))
		for _, property := range e.List {
			properties = append(properties, c.property(property))
		}
		return estree.Object(properties...)

	case *js.TemplateExpr:
		quasi := c.template(e)
		if e.Tag == nil {
			return quasi
		}
		return estree.New("TaggedTemplateExpression",
			estree.F("tag", c.expr(e.Tag)),
			estree.F("quasi", quasi))

	case *js.NewTargetExpr:
		return estree.New("MetaProperty",
			estree.F("meta", estree.Ident("new")),
			estree.F("property", estree.Ident("target")))

	case *js.ImportMetaExpr:
		return estree.New("MetaProperty",
			estree.F("meta", estree.Ident("import")),
			estree.F("property", estree.Ident("meta")))

	case *js.NewExpr:
		args := []*estree.Node{}
		if e.Args != nil {
			args = c.args(*e.Args)
		}
		return estree.New("NewExpression",
			estree.F("callee", c.expr(e.X)),
			estree.F("arguments", args))

	case *js.UnaryExpr:
		switch e.Op {
		case js.AwaitToken:
			return estree.New("AwaitExpression", estree.F("argument", c.expr(e.X)))
		case js.PreIncrToken, js.PreDecrToken, js.PostIncrToken, js.PostDecrToken:
			operator := "++"
			if e.Op == js.PreDecrToken || e.Op == js.PostDecrToken {
				operator = "--"
			}
			return estree.New("UpdateExpression",
				estree.F("operator", operator),
				estree.F("prefix", e.Op == js.PreIncrToken || e.Op == js.PreDecrToken),
				estree.F("argument", c.expr(e.X)))
		}
		if operator, ok := unaryOperators[e.Op]; ok {
			return estree.Unary(operator, c.expr(e.X))
		}

	case *js.BinaryExpr:
		operator := e.Op.String()
		if assignOperators[e.Op] {
			var left *estree.Node
			if e.Op == js.EqToken {
				left = c.pattern(e.X)
			} else {
				left = c.expr(e.X)
			}
			return estree.Assign(operator, left, c.expr(e.Y))
		}
		return estree.Binary(operator, c.expr(e.X), c.expr(e.Y))

	case *js.CondExpr:
		return estree.New("ConditionalExpression",
			estree.F("test", c.expr(e.Cond)),
			estree.F("consequent", c.expr(e.X)),
			estree.F("alternate", c.expr(e.Y)))

	case *js.YieldExpr:
		return estree.New("YieldExpression",
			estree.F("delegate", e.Generator),
			estree.F("argument", c.optionalExpr(e.X)))

	case *js.ArrowFunc:
		return c.arrow(e)

	case *js.CommaExpr:
		exprs := make([]*estree.Node, 0, len(e.List))
		for _, item := range e.List {
			exprs = append(exprs, c.expr(item))
		}
		return estree.Sequence(exprs...)

	case *js.FuncDecl:
		return c.function(e, "FunctionExpression")

	case *js.ClassDecl:
		return c.class(e, "ClassExpression")
	}

	c.fail("Unsupported expression %T", e)
	return estree.Ident("")
}

func (c *converter) property(property js.Property) *estree.Node {
	if property.Spread {
		return estree.New("SpreadElement", estree.F("argument", c.expr(property.Value)))
	}

	if method, ok := property.Value.(*js.MethodDecl); ok {
		key, computed := c.propertyName(&method.Name.PropertyName)
		node := estree.Property(key, c.methodFunction(method))
		node.Set("computed", computed)
		switch {
		case method.Get:
			node.Set("kind", "get")
		case method.Set:
			node.Set("kind", "set")
		default:
			node.Set("method", true)
		}
		return node
	}

	key, computed := c.propertyName(property.Name)
	var value *estree.Node
	if property.Init != nil {
		// "{a = 1}" is only valid as a destructuring target
		value = estree.New("AssignmentPattern",
			estree.F("left", c.expr(property.Value)),
			estree.F("right", c.expr(property.Init)))
	} else {
		value = c.expr(property.Value)
	}
	node := estree.Property(key, value)
	node.Set("computed", computed)
	node.Set("shorthand", isShorthand(key, value, computed))
	return node
}

func isShorthand(key *estree.Node, value *estree.Node, computed bool) bool {
	if computed || !key.Is("Identifier") {
		return false
	}
	if value.Is("AssignmentPattern") {
		value = value.Child("left")
	}
	return value.Is("Identifier") && value.Name() == key.Name()
}

func (c *converter) template(e *js.TemplateExpr) *estree.Node {
	quasis := make([]*estree.Node, 0, len(e.List)+1)
	exprs := make([]*estree.Node, 0, len(e.List))
	for _, part := range e.List {
		// "`text${" or "}text${"
		quasis = append(quasis, c.templateElement(part.Value[1:len(part.Value)-2], false))
		exprs = append(exprs, c.expr(part.Expr))
	}
	// "`text`" or "}text`"
	quasis = append(quasis, c.templateElement(e.Tail[1:len(e.Tail)-1], true))
	return estree.New("TemplateLiteral",
		estree.F("expressions", exprs),
		estree.F("quasis", quasis))
}

func (c *converter) templateElement(raw []byte, tail bool) *estree.Node {
	value := estree.New("", estree.F("raw", string(raw)))
	if decoded, ok := decodeEscapeSequences(string(raw)); ok {
		value.Set("cooked", decoded)
	} else {
		// Only allowed in tagged templates
		value.Set("cooked", nil)
	}
	return estree.New("TemplateElement",
		estree.F("value", value),
		estree.F("tail", tail))
}

func (c *converter) literal(lit js.LiteralExpr) *estree.Node {
	raw := string(lit.Data)
	switch lit.TokenType {
	case js.ThisToken:
		return estree.New("ThisExpression")
	case js.SuperToken:
		return estree.New("Super")
	case js.IdentifierToken:
		return estree.Ident(raw)
	case js.PrivateIdentifierToken:
		return privateIdentifier(lit.Data)
	case js.NullToken:
		return estree.New("Literal", estree.F("value", nil), estree.F("raw", raw))
	case js.TrueToken, js.FalseToken:
		return estree.New("Literal", estree.F("value", lit.TokenType == js.TrueToken), estree.F("raw", raw))
	case js.StringToken:
		value, ok := decodeString(raw)
		if !ok {
			c.fail("Invalid escape sequence in %s", raw)
		}
		return estree.New("Literal", estree.F("value", value), estree.F("raw", raw))
	case js.RegExpToken:
		slash := strings.LastIndexByte(raw, '/')
		return estree.New("Literal",
			estree.F("value", nil),
			estree.F("raw", raw),
			estree.F("regex", estree.New("",
				estree.F("pattern", raw[1:slash]),
				estree.F("flags", raw[slash+1:]))))
	}

	if js.IsNumeric(lit.TokenType) {
		if strings.HasSuffix(raw, "n") {
			return estree.New("Literal",
				estree.F("value", nil),
				estree.F("raw", raw),
				estree.F("bigint", strings.ReplaceAll(strings.TrimSuffix(raw, "n"), "_", "")))
		}
		return estree.New("Literal", estree.F("value", parseNumber(raw)), estree.F("raw", raw))
	}

	c.fail("Unsupported literal %q", raw)
	return estree.NullLit()
}

// parseNumber handles every numeric literal form except BigInt, including
// separators and legacy octal.
func parseNumber(text string) float64 {
	text = strings.ReplaceAll(text, "_", "")
	base := 0
	digits := text
	if len(text) > 1 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base, digits = 16, text[2:]
		case 'o', 'O':
			base, digits = 8, text[2:]
		case 'b', 'B':
			base, digits = 2, text[2:]
		default:
			if strings.Trim(text, "01234567") == "" {
				base, digits = 8, text[1:]
			}
		}
	}

	if base != 0 {
		if n, err := strconv.ParseUint(digits, base, 64); err == nil && n < 1<<53 {
			return float64(n)
		}
		n, ok := new(big.Int).SetString(digits, base)
		if !ok {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}

	// Out of range values come back as infinity along with an error
	f, _ := strconv.ParseFloat(text, 64)
	return f
}

// pattern converts an expression used as an assignment target.
func (c *converter) pattern(e js.IExpr) *estree.Node {
	switch e := e.(type) {
	case *js.GroupExpr:
		return c.pattern(e.X)

	case *js.ArrayExpr:
		elements := make([]*estree.Node, 0, len(e.List))
		for _, element := range e.List {
			switch {
			case element.Value == nil:
				elements = append(elements, nil)
			case element.Spread:
				elements = append(elements, estree.New("RestElement", estree.F("argument", c.pattern(element.Value))))
			default:
				elements = append(elements, c.patternElement(element.Value))
			}
		}
		return estree.New("ArrayPattern", estree.F("elements", elements))

	case *js.ObjectExpr:
		properties := make([]*estree.Node, 0, len(e.List))
		for _, property := range e.List {
			if property.Spread {
				properties = append(properties, estree.New("RestElement", estree.F("argument", c.pattern(property.Value))))
				continue
			}
			key, computed := c.propertyName(property.Name)
			var value *estree.Node
			if property.Init != nil {
				value = estree.New("AssignmentPattern",
					estree.F("left", c.pattern(property.Value)),
					estree.F("right", c.expr(property.Init)))
			} else {
				value = c.patternElement(property.Value)
			}
			node := estree.Property(key, value)
			node.Set("computed", computed)
			node.Set("shorthand", isShorthand(key, value, computed))
			properties = append(properties, node)
		}
		return estree.New("ObjectPattern", estree.F("properties", properties))
	}
	return c.expr(e)
}

func (c *converter) patternElement(e js.IExpr) *estree.Node {
	if assign, ok := e.(*js.BinaryExpr); ok && assign.Op == js.EqToken {
		return estree.New("AssignmentPattern",
			estree.F("left", c.pattern(assign.X)),
			estree.F("right", c.expr(assign.Y)))
	}
	return c.pattern(e)
}

func (c *converter) binding(b js.IBinding) *estree.Node {
	switch b := b.(type) {
	case *js.Var:
		return estree.Ident(string(b.Name()))

	case *js.BindingArray:
		elements := make([]*estree.Node, 0, len(b.List)+1)
		for _, item := range b.List {
			if item.Binding == nil {
				elements = append(elements, nil)
			} else {
				elements = append(elements, c.bindingElement(item))
			}
		}
		if b.Rest != nil {
			elements = append(elements, estree.New("RestElement", estree.F("argument", c.binding(b.Rest))))
		}
		return estree.New("ArrayPattern", estree.F("elements", elements))

	case *js.BindingObject:
		properties := make([]*estree.Node, 0, len(b.List)+1)
		for _, item := range b.List {
			key, computed := c.propertyName(item.Key)
			value := c.bindingElement(item.Value)
			node := estree.Property(key, value)
			node.Set("computed", computed)
			node.Set("shorthand", isShorthand(key, value, computed))
			properties = append(properties, node)
		}
		if b.Rest != nil {
			properties = append(properties, estree.New("RestElement", estree.F("argument", estree.Ident(string(b.Rest.Name())))))
		}
		return estree.New("ObjectPattern", estree.F("properties", properties))
	}

	c.fail("Unsupported binding %T", b)
	return estree.Ident("")
}

func (c *converter) bindingElement(element js.BindingElement) *estree.Node {
	target := c.binding(element.Binding)
	if element.Default == nil {
		return target
	}
	return estree.New("AssignmentPattern",
		estree.F("left", target),
		estree.F("right", c.expr(element.Default)))
}
