package js_printer

import (
	"math"
	"strconv"
	"strings"

	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/helpers"
)

// DefaultGenerators is the dispatch table used unless Options overrides an
// entry. Nested parts such as "SwitchCase", "CatchClause" and import or
// export specifiers are printed by their parents.
var DefaultGenerators map[string]GenerateFunc

func init() {
	DefaultGenerators = map[string]GenerateFunc{
		// Statements
		"Program":             generateProgram,
		"BlockStatement":      generateBlock,
		"StaticBlock":         generateStaticBlock,
		"EmptyStatement":      func(p *Printer, node *estree.Node) { p.Write(";") },
		"ExpressionStatement": generateExpressionStatement,
		"IfStatement":         generateIf,
		"LabeledStatement":    generateLabeled,
		"BreakStatement":      generateBranch("break"),
		"ContinueStatement":   generateBranch("continue"),
		"WithStatement":       generateWith,
		"SwitchStatement":     generateSwitch,
		"ReturnStatement":     generateReturn,
		"ThrowStatement":      generateThrow,
		"TryStatement":        generateTry,
		"WhileStatement":      generateWhile,
		"DoWhileStatement":    generateDoWhile,
		"ForStatement":        generateFor,
		"ForInStatement":      generateForInOf(" in "),
		"ForOfStatement":      generateForInOf(" of "),
		"DebuggerStatement":   func(p *Printer, node *estree.Node) { p.Write("debugger;") },

		// Declarations
		"FunctionDeclaration":      generateFunction,
		"FunctionExpression":       generateFunction,
		"VariableDeclaration":      generateVariableDeclarationStatement,
		"VariableDeclarator":       generateVariableDeclarator,
		"ClassDeclaration":         generateClass,
		"ClassExpression":          generateClass,
		"ClassBody":                generateClassBody,
		"MethodDefinition":         generateMethod,
		"PropertyDefinition":       generatePropertyDefinition,
		"ImportDeclaration":        generateImport,
		"ExportDefaultDeclaration": generateExportDefault,
		"ExportNamedDeclaration":   generateExportNamed,
		"ExportAllDeclaration":     generateExportAll,

		// Expressions
		"ArrowFunctionExpression":  generateArrow,
		"ThisExpression":           func(p *Printer, node *estree.Node) { p.Write("this") },
		"Super":                    func(p *Printer, node *estree.Node) { p.Write("super") },
		"RestElement":              generateSpread,
		"SpreadElement":            generateSpread,
		"YieldExpression":          generateYield,
		"AwaitExpression":          generateAwait,
		"TemplateLiteral":          generateTemplateLiteral,
		"TemplateElement":          func(p *Printer, node *estree.Node) { p.Write(node.Child("value").Str("raw")) },
		"TaggedTemplateExpression": generateTaggedTemplate,
		"ArrayExpression":          generateArray,
		"ArrayPattern":             generateArray,
		"ObjectExpression":         generateObject,
		"Property":                 generateProperty,
		"ObjectPattern":            generateObjectPattern,
		"SequenceExpression":       func(p *Printer, node *estree.Node) { p.generateSequence(node.Children("expressions")) },
		"UnaryExpression":          generateUnary,
		"UpdateExpression":         generateUpdate,
		"AssignmentExpression":     generateAssignment,
		"AssignmentPattern":        generateAssignmentPattern,
		"BinaryExpression":         generateBinary,
		"LogicalExpression":        generateBinary,
		"ConditionalExpression":    generateConditional,
		"NewExpression":            generateNew,
		"CallExpression":           generateCall,
		"ChainExpression":          func(p *Printer, node *estree.Node) { p.Generate(node.Child("expression")) },
		"MemberExpression":         generateMember,
		"MetaProperty":             generateMetaProperty,
		"ImportExpression":         generateImportExpression,
		"Identifier":               func(p *Printer, node *estree.Node) { p.Write(node.Name()) },
		"PrivateIdentifier":        func(p *Printer, node *estree.Node) { p.Write(p.privateName(node.Name())) },
		"Literal":                  generateLiteral,
	}
}

func generateProgram(p *Printer, node *estree.Node) {
	if hashbang, ok := node.Get("hashbang").(string); ok {
		p.Write("#!" + hashbang + p.lineEnd)
	}
	indent := p.currentIndent()
	p.generateLeadingComments(node, indent)
	p.generateStatements(node.Children("body"), indent)
	p.generateTrailingComments(node, indent)
}

func generateBlock(p *Printer, node *estree.Node) {
	p.generateBlockBody(node.Children("body"), node)
}

func generateStaticBlock(p *Printer, node *estree.Node) {
	p.Write("static ")
	generateBlock(p, node)
}

func (p *Printer) generateBlockBody(statements []*estree.Node, node *estree.Node) {
	indent := p.currentIndent()
	p.indentLevel++
	p.Write("{")
	if len(statements) > 0 {
		p.Write(p.lineEnd)
		p.generateStatements(statements, indent+p.indent)
		p.Write(indent)
	}
	if p.comments && len(node.Children("trailingComments")) > 0 {
		if len(statements) == 0 {
			p.Write(p.lineEnd)
		}
		p.generateTrailingComments(node, indent+p.indent)
		p.Write(indent)
	}
	p.Write("}")
	p.indentLevel--
}

func generateExpressionStatement(p *Printer, node *estree.Node) {
	expr := node.Child("expression")
	p.generateParenthesizedIf(expr, p.needsStatementParens(expr))
	p.Write(";")
}

func generateIf(p *Printer, node *estree.Node) {
	p.Write("if (")
	p.Generate(node.Child("test"))
	p.Write(") ")
	consequent := node.Child("consequent")
	alternate := node.Child("alternate")
	if alternate != nil && wrapToAvoidAmbiguousElse(consequent) {
		consequent = estree.Block(consequent)
	}
	p.Generate(consequent)
	if alternate != nil {
		p.Write(" else ")
		p.Generate(alternate)
	}
}

func generateLabeled(p *Printer, node *estree.Node) {
	p.Write(node.Child("label").Name() + ": ")
	p.Generate(node.Child("body"))
}

func generateBranch(keyword string) GenerateFunc {
	return func(p *Printer, node *estree.Node) {
		p.Write(keyword)
		if label := node.Child("label"); label != nil {
			p.Write(" " + label.Name())
		}
		p.Write(";")
	}
}

func generateWith(p *Printer, node *estree.Node) {
	p.Write("with (")
	p.Generate(node.Child("object"))
	p.Write(") ")
	p.Generate(node.Child("body"))
}

func generateSwitch(p *Printer, node *estree.Node) {
	indent := p.currentIndent()
	p.indentLevel += 2
	caseIndent := indent + p.indent
	statementIndent := caseIndent + p.indent

	p.Write("switch (")
	p.Generate(node.Child("discriminant"))
	p.Write(") {" + p.lineEnd)
	for _, c := range node.Children("cases") {
		p.generateLeadingComments(c, caseIndent)
		if test := c.Child("test"); test != nil {
			p.Write(caseIndent + "case ")
			p.Generate(test)
			p.Write(":" + p.lineEnd)
		} else {
			p.Write(caseIndent + "default:" + p.lineEnd)
		}
		p.generateStatements(c.Children("consequent"), statementIndent)
	}
	p.indentLevel -= 2
	p.Write(indent + "}")
}

func generateReturn(p *Printer, node *estree.Node) {
	p.Write("return")
	if arg := node.Child("argument"); arg != nil {
		p.Write(" ")
		p.Generate(arg)
	}
	p.Write(";")
}

func generateThrow(p *Printer, node *estree.Node) {
	p.Write("throw ")
	p.Generate(node.Child("argument"))
	p.Write(";")
}

func generateTry(p *Printer, node *estree.Node) {
	p.Write("try ")
	p.Generate(node.Child("block"))
	if handler := node.Child("handler"); handler != nil {
		if param := handler.Child("param"); param != nil {
			p.Write(" catch (")
			p.Generate(param)
			p.Write(") ")
		} else {
			p.Write(" catch ")
		}
		p.Generate(handler.Child("body"))
	}
	if finalizer := node.Child("finalizer"); finalizer != nil {
		p.Write(" finally ")
		p.Generate(finalizer)
	}
}

func generateWhile(p *Printer, node *estree.Node) {
	p.Write("while (")
	p.Generate(node.Child("test"))
	p.Write(") ")
	p.Generate(node.Child("body"))
}

func generateDoWhile(p *Printer, node *estree.Node) {
	p.Write("do ")
	p.Generate(node.Child("body"))
	p.Write(" while (")
	p.Generate(node.Child("test"))
	p.Write(");")
}

func (p *Printer) generateForInit(init *estree.Node) {
	if init.Is("VariableDeclaration") {
		p.generateVariableDeclaration(init)
	} else {
		p.Generate(init)
	}
}

func generateFor(p *Printer, node *estree.Node) {
	p.Write("for (")
	if init := node.Child("init"); init != nil {
		p.generateForInit(init)
	}
	p.Write(";")
	if test := node.Child("test"); test != nil {
		p.Write(" ")
		p.Generate(test)
	}
	p.Write(";")
	if update := node.Child("update"); update != nil {
		p.Write(" ")
		p.Generate(update)
	}
	p.Write(") ")
	p.Generate(node.Child("body"))
}

func generateForInOf(operator string) GenerateFunc {
	return func(p *Printer, node *estree.Node) {
		p.Write("for ")
		if node.Bool("await") {
			p.Write("await ")
		}
		p.Write("(")
		p.generateForInit(node.Child("left"))
		p.Write(operator)
		p.Generate(node.Child("right"))
		p.Write(") ")
		p.Generate(node.Child("body"))
	}
}

func generateFunction(p *Printer, node *estree.Node) {
	if node.Bool("async") {
		p.Write("async ")
	}
	if node.Bool("generator") {
		p.Write("function* ")
	} else {
		p.Write("function ")
	}
	if id := node.Child("id"); id != nil {
		p.Write(id.Name())
	}
	p.generateSequence(node.Children("params"))
	p.Write(" ")
	p.Generate(node.Child("body"))
}

func generateVariableDeclarationStatement(p *Printer, node *estree.Node) {
	p.generateVariableDeclaration(node)
	p.Write(";")
}

func generateVariableDeclarator(p *Printer, node *estree.Node) {
	p.Generate(node.Child("id"))
	if init := node.Child("init"); init != nil {
		p.Write(" = ")
		p.Generate(init)
	}
}

func generateClass(p *Printer, node *estree.Node) {
	p.Write("class ")
	if id := node.Child("id"); id != nil {
		p.Write(id.Name() + " ")
	}
	if superClass := node.Child("superClass"); superClass != nil {
		p.Write("extends ")
		level := p.precedenceOf(superClass)
		p.generateParenthesizedIf(superClass, superClass.Type != "ClassExpression" &&
			(level == LNeedsParens || level < LCall || superClass.Type == "ChainExpression"))
		p.Write(" ")
	}
	p.Generate(node.Child("body"))
}

func generateClassBody(p *Printer, node *estree.Node) {
	p.generateBlockBody(node.Children("body"), node)
}

func generateMethod(p *Printer, node *estree.Node) {
	if node.Bool("static") {
		p.Write("static ")
	}
	switch kind := node.Str("kind"); kind {
	case "get", "set":
		p.Write(kind + " ")
	}
	value := node.Child("value")
	if value.Bool("async") {
		p.Write("async ")
	}
	if value.Bool("generator") {
		p.Write("*")
	}
	p.generatePropertyKey(node)
	p.generateSequence(value.Children("params"))
	p.Write(" ")
	p.Generate(value.Child("body"))
}

func (p *Printer) generatePropertyKey(node *estree.Node) {
	if node.Bool("computed") {
		p.Write("[")
		p.Generate(node.Child("key"))
		p.Write("]")
	} else {
		p.Generate(node.Child("key"))
	}
}

func generatePropertyDefinition(p *Printer, node *estree.Node) {
	if node.Bool("static") {
		p.Write("static ")
	}
	p.generatePropertyKey(node)
	if value := node.Child("value"); value != nil {
		p.Write(" = ")
		p.Generate(value)
	}
	p.Write(";")
}

func generateImport(p *Printer, node *estree.Node) {
	p.Write("import ")
	specifiers := node.Children("specifiers")
	i := 0
	for ; i < len(specifiers); i++ {
		specifier := specifiers[i]
		if specifier.Type == "ImportDefaultSpecifier" {
			p.Write(specifier.Child("local").Name())
		} else if specifier.Type == "ImportNamespaceSpecifier" {
			p.Write("* as " + specifier.Child("local").Name())
		} else {
			break
		}
		if i+1 < len(specifiers) {
			p.Write(", ")
		}
	}
	if i < len(specifiers) {
		p.Write("{")
		for j, specifier := range specifiers[i:] {
			if j > 0 {
				p.Write(", ")
			}
			imported := specifier.Child("imported")
			local := specifier.Child("local")
			p.generateModuleExportName(imported)
			if imported.Type != "Identifier" || imported.Name() != local.Name() {
				p.Write(" as " + local.Name())
			}
		}
		p.Write("}")
	}
	if len(specifiers) > 0 {
		p.Write(" from ")
	}
	p.Generate(node.Child("source"))
	p.Write(";")
}

func generateExportDefault(p *Printer, node *estree.Node) {
	p.Write("export default ")
	decl := node.Child("declaration")
	switch decl.Type {
	case "FunctionDeclaration", "ClassDeclaration":
		p.Generate(decl)
	default:
		// A bare "function" or "class" here would be read as a declaration
		p.generateParenthesizedIf(decl, decl.Is("FunctionExpression", "ClassExpression"))
		p.Write(";")
	}
}

func generateExportNamed(p *Printer, node *estree.Node) {
	p.Write("export ")
	if decl := node.Child("declaration"); decl != nil {
		p.Generate(decl)
		return
	}
	p.Write("{")
	for i, specifier := range node.Children("specifiers") {
		if i > 0 {
			p.Write(", ")
		}
		local := specifier.Child("local")
		exported := specifier.Child("exported")
		p.generateModuleExportName(local)
		if local.Type != exported.Type || local.Name() != exported.Name() || local.Str("value") != exported.Str("value") {
			p.Write(" as ")
			p.generateModuleExportName(exported)
		}
	}
	p.Write("}")
	if source := node.Child("source"); source != nil {
		p.Write(" from ")
		p.Generate(source)
	}
	p.Write(";")
}

func generateExportAll(p *Printer, node *estree.Node) {
	p.Write("export * ")
	if exported := node.Child("exported"); exported != nil {
		p.Write("as ")
		p.generateModuleExportName(exported)
		p.Write(" ")
	}
	p.Write("from ")
	p.Generate(node.Child("source"))
	p.Write(";")
}

// startsWithBrace reports whether an arrow body would begin with "{" and so
// be read as a block.
func startsWithBrace(body *estree.Node) bool {
	return body.Is("ObjectExpression") ||
		(body.Is("AssignmentExpression") && body.Child("left").Is("ObjectPattern"))
}

func generateArrow(p *Printer, node *estree.Node) {
	if node.Bool("async") {
		p.Write("async ")
	}
	params := node.Children("params")
	if len(params) == 1 && params[0].Type == "Identifier" {
		p.Write(params[0].Name())
	} else {
		p.generateSequence(params)
	}
	p.Write(" => ")
	body := node.Child("body")
	p.generateParenthesizedIf(body, startsWithBrace(body))
}

func generateSpread(p *Printer, node *estree.Node) {
	p.Write("...")
	p.Generate(node.Child("argument"))
}

func generateYield(p *Printer, node *estree.Node) {
	if node.Bool("delegate") {
		p.Write("yield*")
	} else {
		p.Write("yield")
	}
	if arg := node.Child("argument"); arg != nil {
		p.Write(" ")
		p.Generate(arg)
	}
}

func generateAwait(p *Printer, node *estree.Node) {
	p.Write("await ")
	p.GenerateExpr(node.Child("argument"), node, false)
}

func generateTemplateLiteral(p *Printer, node *estree.Node) {
	quasis := node.Children("quasis")
	expressions := node.Children("expressions")
	p.Write("`")
	for i, quasi := range quasis {
		p.Generate(quasi)
		if i < len(expressions) {
			p.Write("${")
			p.Generate(expressions[i])
			p.Write("}")
		}
	}
	p.Write("`")
}

func generateTaggedTemplate(p *Printer, node *estree.Node) {
	tag := node.Child("tag")
	level := p.precedenceOf(tag)
	p.generateParenthesizedIf(tag, level == LNeedsParens || level < LCall || tag.Type == "ChainExpression")
	p.Generate(node.Child("quasi"))
}

func generateArray(p *Printer, node *estree.Node) {
	elements := node.Children("elements")
	p.Write("[")
	for i, element := range elements {
		if element != nil {
			p.Generate(element)
		}
		if i+1 < len(elements) {
			p.Write(", ")
		} else if element == nil {
			// A trailing hole needs its own comma
			p.Write(", ")
		}
	}
	p.Write("]")
}

func generateObject(p *Printer, node *estree.Node) {
	indent := p.currentIndent()
	p.indentLevel++
	propertyIndent := indent + p.indent
	properties := node.Children("properties")

	p.Write("{")
	if len(properties) > 0 {
		p.Write(p.lineEnd)
		for i, property := range properties {
			p.generateLeadingComments(property, propertyIndent)
			p.Write(propertyIndent)
			p.Generate(property)
			if i+1 < len(properties) {
				p.Write("," + p.lineEnd)
			}
		}
		p.Write(p.lineEnd)
		if p.comments && len(node.Children("trailingComments")) > 0 {
			p.generateTrailingComments(node, propertyIndent)
		}
		p.Write(indent)
	}
	p.Write("}")
	p.indentLevel--
}

func isShorthand(property *estree.Node) bool {
	if !property.Bool("shorthand") || property.Bool("computed") {
		return false
	}
	key := property.Child("key")
	value := property.Child("value")
	if value.Is("AssignmentPattern") {
		value = value.Child("left")
	}
	return key.Is("Identifier") && value.Is("Identifier") && key.Name() == value.Name()
}

func generateProperty(p *Printer, node *estree.Node) {
	if node.Bool("method") || node.Str("kind") == "get" || node.Str("kind") == "set" {
		generateMethod(p, node)
		return
	}
	if !isShorthand(node) {
		p.generatePropertyKey(node)
		p.Write(": ")
	}
	p.Generate(node.Child("value"))
}

func generateObjectPattern(p *Printer, node *estree.Node) {
	p.Write("{")
	for i, property := range node.Children("properties") {
		if i > 0 {
			p.Write(", ")
		}
		p.Generate(property)
	}
	p.Write("}")
}

func generateUnary(p *Printer, node *estree.Node) {
	operator := node.Str("operator")
	arg := node.Child("argument")
	p.Write(operator)
	wrap := p.ExpressionNeedsParens(arg, node, false)

	// "typeof x", "- -x" and "+ ++x" need a space to stay separate tokens
	if !wrap && (len(operator) > 1 || ((operator == "+" || operator == "-") &&
		arg.Is("UnaryExpression", "UpdateExpression") && arg.Bool("prefix") &&
		strings.HasPrefix(arg.Str("operator"), operator))) {
		p.Write(" ")
	}
	p.generateParenthesizedIf(arg, wrap)
}

func generateUpdate(p *Printer, node *estree.Node) {
	if node.Bool("prefix") {
		p.Write(node.Str("operator"))
		p.Generate(node.Child("argument"))
	} else {
		p.Generate(node.Child("argument"))
		p.Write(node.Str("operator"))
	}
}

func generateAssignment(p *Printer, node *estree.Node) {
	p.Generate(node.Child("left"))
	p.Write(" " + node.Str("operator") + " ")
	p.Generate(node.Child("right"))
}

func generateAssignmentPattern(p *Printer, node *estree.Node) {
	p.Generate(node.Child("left"))
	p.Write(" = ")
	p.Generate(node.Child("right"))
}

func generateBinary(p *Printer, node *estree.Node) {
	operator := node.Str("operator")
	isIn := operator == "in"
	if isIn {
		// Keeps "in" out of for-loop initializers
		p.Write("(")
	}
	left := node.Child("left")
	if isIn && left.Is("PrivateIdentifier") && p.private == PrivateMembersRename {
		p.Write(helpers.QuoteForJS(p.privateName(left.Name()), '"'))
	} else {
		p.GenerateExpr(left, node, false)
	}
	p.Write(" " + operator + " ")
	p.GenerateExpr(node.Child("right"), node, true)
	if isIn {
		p.Write(")")
	}
}

func generateConditional(p *Printer, node *estree.Node) {
	test := node.Child("test")
	level := p.precedenceOf(test)
	p.generateParenthesizedIf(test, level == LNeedsParens || level <= LConditional)
	p.Write(" ? ")
	p.Generate(node.Child("consequent"))
	p.Write(" : ")
	p.Generate(node.Child("alternate"))
}

func generateNew(p *Printer, node *estree.Node) {
	p.Write("new ")
	callee := node.Child("callee")
	level := p.precedenceOf(callee)
	p.generateParenthesizedIf(callee, level == LNeedsParens || level < LCall ||
		callee.Type == "ChainExpression" || hasCallExpression(callee))
	p.generateSequence(node.Children("arguments"))
}

func generateCall(p *Printer, node *estree.Node) {
	callee := node.Child("callee")
	level := p.precedenceOf(callee)
	p.generateParenthesizedIf(callee, level == LNeedsParens || level < LCall || callee.Type == "ChainExpression")
	if node.Bool("optional") {
		p.Write("?.")
	}
	p.generateSequence(node.Children("arguments"))
}

func generateMember(p *Printer, node *estree.Node) {
	object := node.Child("object")
	level := p.precedenceOf(object)
	p.generateParenthesizedIf(object, level == LNeedsParens || level < LCall || object.Type == "ChainExpression")
	if node.Bool("computed") {
		if node.Bool("optional") {
			p.Write("?.")
		}
		p.Write("[")
		p.Generate(node.Child("property"))
		p.Write("]")
	} else {
		if node.Bool("optional") {
			p.Write("?.")
		} else {
			p.Write(".")
		}
		p.Generate(node.Child("property"))
	}
}

func generateMetaProperty(p *Printer, node *estree.Node) {
	p.Write(node.Child("meta").Name() + "." + node.Child("property").Name())
}

func generateImportExpression(p *Printer, node *estree.Node) {
	p.Write("import(")
	p.Generate(node.Child("source"))
	if options := node.Child("options"); options != nil {
		p.Write(", ")
		p.Generate(options)
	}
	p.Write(")")
}

func generateLiteral(p *Printer, node *estree.Node) {
	if raw := node.Str("raw"); raw != "" {
		p.Write(raw)
		return
	}
	if regex := node.Child("regex"); regex != nil {
		p.Write("/" + regex.Str("pattern") + "/" + regex.Str("flags"))
		return
	}
	if bigint, ok := node.Get("bigint").(string); ok {
		p.Write(bigint + "n")
		return
	}
	switch value := node.Get("value").(type) {
	case string:
		p.Write(helpers.QuoteForJS(value, '"'))
	case float64:
		p.Write(formatNumber(value))
	case bool:
		p.Write(strconv.FormatBool(value))
	case nil:
		p.Write("null")
	default:
		p.err = &UnsupportedNodeTypeError{Type: "Literal"}
	}
}

// formatNumber follows Number.prototype.toString so synthesized literals
// read the way a JavaScript engine would print them.
func formatNumber(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		return "0"
	case value < 0:
		return "-" + formatNumber(-value)
	}

	// Shortest round-tripping digits, as "d.ddde±x"
	text := strconv.FormatFloat(value, 'e', -1, 64)
	e := strings.IndexByte(text, 'e')
	digits := strings.Replace(text[:e], ".", "", 1)
	exponent, _ := strconv.Atoi(text[e+1:])
	k := len(digits)
	n := exponent + 1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	sign := "+"
	if n-1 < 0 {
		sign = "-"
	}
	abs := n - 1
	if abs < 0 {
		abs = -abs
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(abs)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(abs)
}
