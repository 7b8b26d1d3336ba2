// Package js_printer turns an estree tree back into JavaScript source. Each
// node type has an entry in a dispatch table and operands are wrapped in
// parentheses based on a per-type precedence table, so printing a parsed
// tree and parsing the result again yields the same tree.
package js_printer

import (
	"fmt"
	"strings"

	"github.com/esm2cjs/esm2cjs/internal/estree"
)

type GenerateFunc func(p *Printer, node *estree.Node)

type PrivateMemberMode uint8

const (
	PrivateMembersPreserve PrivateMemberMode = iota

	// Prints "#x" as "__private_x" for engines without private class members
	PrivateMembersRename
)

type Options struct {
	// Defaults to two spaces
	Indent string

	// Defaults to "\n"
	LineEnd string

	StartingIndentLevel int
	Comments            bool
	PrivateMembers      PrivateMemberMode

	// Entries here replace or extend the built-in tables
	Generators            map[string]GenerateFunc
	ExpressionsPrecedence map[string]int
}

type UnsupportedNodeTypeError struct {
	Type string
}

func (e *UnsupportedNodeTypeError) Error() string {
	if e.Type == "" {
		return "cannot print a node without a type"
	}
	return fmt.Sprintf("cannot print unsupported node type %q", e.Type)
}

type Printer struct {
	js          strings.Builder
	generators  map[string]GenerateFunc
	precedence  map[string]int
	indent      string
	lineEnd     string
	indentLevel int
	comments    bool
	private     PrivateMemberMode
	err         error
}

func Print(node *estree.Node, options Options) (string, error) {
	p := &Printer{
		generators:  DefaultGenerators,
		precedence:  DefaultExpressionsPrecedence,
		indent:      "  ",
		lineEnd:     "\n",
		indentLevel: options.StartingIndentLevel,
		comments:    options.Comments,
		private:     options.PrivateMembers,
	}
	if options.Indent != "" {
		p.indent = options.Indent
	}
	if options.LineEnd != "" {
		p.lineEnd = options.LineEnd
	}
	if options.Generators != nil {
		p.generators = mergeTables(DefaultGenerators, options.Generators)
	}
	if options.ExpressionsPrecedence != nil {
		p.precedence = mergeTables(DefaultExpressionsPrecedence, options.ExpressionsPrecedence)
	}

	p.Generate(node)
	if p.err != nil {
		return "", p.err
	}
	return p.js.String(), nil
}

func mergeTables[V any](base map[string]V, overrides map[string]V) map[string]V {
	merged := make(map[string]V, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func (p *Printer) Write(text string) {
	p.js.WriteString(text)
}

// Generate prints a node through the dispatch table. The first unknown node
// type stops all further output and is returned by Print.
func (p *Printer) Generate(node *estree.Node) {
	if p.err != nil {
		return
	}
	if node == nil {
		p.err = &UnsupportedNodeTypeError{}
		return
	}
	generate, ok := p.generators[node.Type]
	if !ok {
		p.err = &UnsupportedNodeTypeError{Type: node.Type}
		return
	}
	generate(p, node)
}

// GenerateExpr prints node as an operand of parent, wrapped when precedence
// requires it.
func (p *Printer) GenerateExpr(node *estree.Node, parent *estree.Node, isRightHand bool) {
	p.generateParenthesizedIf(node, p.ExpressionNeedsParens(node, parent, isRightHand))
}

// isInExpression reports whether node is an "in" expression, which always
// prints its own parentheses.
func isInExpression(node *estree.Node) bool {
	return node.Is("BinaryExpression") && node.Str("operator") == "in"
}

func (p *Printer) generateParenthesizedIf(node *estree.Node, wrap bool) {
	if wrap && !isInExpression(node) {
		p.Write("(")
		p.Generate(node)
		p.Write(")")
	} else {
		p.Generate(node)
	}
}

func (p *Printer) currentIndent() string {
	return strings.Repeat(p.indent, p.indentLevel)
}

// generateSequence prints a parenthesized, comma-separated list.
func (p *Printer) generateSequence(nodes []*estree.Node) {
	p.Write("(")
	for i, node := range nodes {
		if i > 0 {
			p.Write(", ")
		}
		p.Generate(node)
	}
	p.Write(")")
}

// reindent writes a multi-line comment body with every line trimmed and
// moved to the given indent.
func (p *Printer) reindent(text string, indent string) {
	lines := strings.Split(text, "\n")
	last := len(lines) - 1
	p.Write(strings.TrimSpace(lines[0]))
	if last > 0 {
		p.Write(p.lineEnd)
		for _, line := range lines[1:last] {
			p.Write(indent + strings.TrimSpace(line) + p.lineEnd)
		}
		p.Write(indent + strings.TrimSpace(lines[last]))
	}
}

// generateComments expects to start on a fresh, unindented line. Line
// comments always end in "\n" since any other line terminator would leave
// the following code inside the comment.
func (p *Printer) generateComments(comments []*estree.Node, indent string) {
	for _, comment := range comments {
		p.Write(indent)
		if comment.Type == "Line" {
			p.Write("//" + strings.TrimRight(comment.Str("value"), " \t\r\n") + "\n")
		} else {
			p.Write("/*")
			p.reindent(comment.Str("value"), indent)
			p.Write("*/" + p.lineEnd)
		}
	}
}

func (p *Printer) generateLeadingComments(node *estree.Node, indent string) {
	if p.comments {
		if comments := node.Children("comments"); len(comments) > 0 {
			p.generateComments(comments, indent)
		}
	}
}

func (p *Printer) generateTrailingComments(node *estree.Node, indent string) {
	if p.comments {
		if comments := node.Children("trailingComments"); len(comments) > 0 {
			p.generateComments(comments, indent)
		}
	}
}

// generateStatements prints one statement per line at the given indent.
func (p *Printer) generateStatements(statements []*estree.Node, indent string) {
	for _, stmt := range statements {
		p.generateLeadingComments(stmt, indent)
		p.Write(indent)
		p.Generate(stmt)
		p.Write(p.lineEnd)
	}
}

func (p *Printer) generateVariableDeclaration(node *estree.Node) {
	p.Write(node.Str("kind") + " ")
	for i, decl := range node.Children("declarations") {
		if i > 0 {
			p.Write(", ")
		}
		p.Generate(decl)
	}
}

// Module export and import names can be string literals since ES2022.
func (p *Printer) generateModuleExportName(node *estree.Node) {
	if node.Type == "Literal" {
		p.Generate(node)
		return
	}
	p.Write(node.Name())
}

func (p *Printer) privateName(name string) string {
	if p.private == PrivateMembersRename {
		return "__private_" + name
	}
	return "#" + name
}

// wrapToAvoidAmbiguousElse reports whether printing s as the body of an "if"
// with an "else" would let that "else" attach to a nested "if" instead.
func wrapToAvoidAmbiguousElse(s *estree.Node) bool {
	for s != nil {
		switch s.Type {
		case "IfStatement":
			if s.Child("alternate") == nil {
				return true
			}
			s = s.Child("alternate")
		case "ForStatement", "ForInStatement", "ForOfStatement", "WhileStatement", "WithStatement", "LabeledStatement":
			s = s.Child("body")
		default:
			return false
		}
	}
	return false
}

// hasCallExpression reports whether a "new" callee contains a call that
// would otherwise take the argument list, as in "new (a().b)()".
func hasCallExpression(node *estree.Node) bool {
	for node != nil {
		switch node.Type {
		case "CallExpression", "ImportExpression":
			return true
		case "MemberExpression":
			node = node.Child("object")
		case "TaggedTemplateExpression":
			node = node.Child("tag")
		default:
			return false
		}
	}
	return false
}

// needsStatementParens reports whether an expression statement would start
// with "{", "function" or "class" and so be read as something else.
func (p *Printer) needsStatementParens(expr *estree.Node) bool {
	if p.precedenceOf(expr) == LNeedsParens {
		return true
	}
	return expr.Type == "AssignmentExpression" && expr.Child("left").Is("ObjectPattern")
}
