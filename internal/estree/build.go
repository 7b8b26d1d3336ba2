package estree

import "unicode"

// Builders for the nodes the rewrite synthesizes. Field order matches the
// order a parser would produce, which is also the traversal order.

func Ident(name string) *Node {
	return New("Identifier", F("name", name))
}

func StringLit(value string) *Node {
	return New("Literal", F("value", value))
}

func NumberLit(value float64) *Node {
	return New("Literal", F("value", value))
}

func BoolLit(value bool) *Node {
	return New("Literal", F("value", value))
}

func NullLit() *Node {
	return New("Literal", F("value", nil))
}

func Member(object *Node, property *Node, computed bool) *Node {
	return New("MemberExpression",
		F("object", object),
		F("property", property),
		F("computed", computed),
		F("optional", false))
}

// Dot builds "object.name", falling back to "object["name"]" when name is
// not a valid identifier.
func Dot(object *Node, name string) *Node {
	if IsIdentifierName(name) {
		return Member(object, Ident(name), false)
	}
	return Member(object, StringLit(name), true)
}

func Call(callee *Node, args ...*Node) *Node {
	if args == nil {
		args = []*Node{}
	}
	return New("CallExpression",
		F("callee", callee),
		F("arguments", args),
		F("optional", false))
}

func ExprStmt(expr *Node) *Node {
	return New("ExpressionStatement", F("expression", expr))
}

func Declarator(id *Node, init *Node) *Node {
	return New("VariableDeclarator", F("id", id), F("init", init))
}

func VarDecl(kind string, decls ...*Node) *Node {
	return New("VariableDeclaration", F("declarations", decls), F("kind", kind))
}

func Assign(operator string, left *Node, right *Node) *Node {
	return New("AssignmentExpression",
		F("operator", operator),
		F("left", left),
		F("right", right))
}

func Sequence(exprs ...*Node) *Node {
	return New("SequenceExpression", F("expressions", exprs))
}

func Unary(operator string, argument *Node) *Node {
	return New("UnaryExpression",
		F("operator", operator),
		F("prefix", true),
		F("argument", argument))
}

func Binary(operator string, left *Node, right *Node) *Node {
	typ := "BinaryExpression"
	switch operator {
	case "&&", "||", "??":
		typ = "LogicalExpression"
	}
	return New(typ, F("left", left), F("operator", operator), F("right", right))
}

func Property(key *Node, value *Node) *Node {
	return New("Property",
		F("method", false),
		F("shorthand", false),
		F("computed", false),
		F("key", key),
		F("value", value),
		F("kind", "init"))
}

func Object(props ...*Node) *Node {
	if props == nil {
		props = []*Node{}
	}
	return New("ObjectExpression", F("properties", props))
}

func Block(body ...*Node) *Node {
	if body == nil {
		body = []*Node{}
	}
	return New("BlockStatement", F("body", body))
}

func Return(argument *Node) *Node {
	return New("ReturnStatement", F("argument", argument))
}

func If(test *Node, consequent *Node, alternate *Node) *Node {
	return New("IfStatement",
		F("test", test),
		F("consequent", consequent),
		F("alternate", alternate))
}

// Function builds a plain (non-async, non-generator) function. Use
// "FunctionExpression" or "FunctionDeclaration" as typ.
func Function(typ string, id *Node, params []*Node, body *Node) *Node {
	if params == nil {
		params = []*Node{}
	}
	return New(typ,
		F("id", id),
		F("expression", false),
		F("generator", false),
		F("async", false),
		F("params", params),
		F("body", body))
}

func IsIdentifierName(text string) bool {
	if text == "" {
		return false
	}
	for i, c := range text {
		if !isIdentifierContinue(c) || (i == 0 && !isIdentifierStart(c)) {
			return false
		}
	}
	return true
}

func isIdentifierStart(c rune) bool {
	if c < 0x80 {
		return c == '$' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	}
	return unicode.IsLetter(c) || unicode.Is(unicode.Nl, c)
}

func isIdentifierContinue(c rune) bool {
	if c < 0x80 {
		return isIdentifierStart(c) || (c >= '0' && c <= '9')
	}
	return isIdentifierStart(c) || unicode.In(c, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc) ||
		c == '\u200C' || c == '\u200D'
}
