package js_printer

import "github.com/esm2cjs/esm2cjs/internal/estree"

// Expression precedence levels, lowest binding first. All binary
// expressions share one level (and all logical expressions another) at this
// scale and are ordered among themselves by operator with OpLevel.
const (
	LLowest int = iota
	LRest
	LYield
	LAssign
	LConditional
	LLogical
	LBinary
	LPrefix  // Unary and await
	LPostfix // Update
	// Expressions that can't appear as an operand without parentheses (an
	// arrow, function, class or object literal) and so are always wrapped
	LNeedsParens
	LLiteral
	LCall // Member, call, new and optional chains
	LPrimary
)

// DefaultExpressionsPrecedence maps each expression node type to its level.
// Statements are absent since they never appear in operand position.
var DefaultExpressionsPrecedence = map[string]int{
	// Primaries
	"ArrayExpression":          LPrimary,
	"TaggedTemplateExpression": LPrimary,
	"ThisExpression":           LPrimary,
	"Identifier":               LPrimary,
	"PrivateIdentifier":        LPrimary,
	"TemplateLiteral":          LPrimary,
	"Super":                    LPrimary,
	"SequenceExpression":       LPrimary, // Always printed with its own parentheses
	"MetaProperty":             LPrimary,

	// Members and calls
	"MemberExpression": LCall,
	"ChainExpression":  LCall,
	"CallExpression":   LCall,
	"NewExpression":    LCall,
	"ImportExpression": LCall,

	"Literal": LLiteral,

	"ArrowFunctionExpression": LNeedsParens,
	"ClassExpression":         LNeedsParens,
	"FunctionExpression":      LNeedsParens,
	"ObjectExpression":        LNeedsParens,

	"UpdateExpression":  LPostfix,
	"UnaryExpression":   LPrefix,
	"AwaitExpression":   LPrefix,
	"BinaryExpression":  LBinary,
	"LogicalExpression": LLogical,

	"ConditionalExpression": LConditional,
	"AssignmentExpression":  LAssign,
	"YieldExpression":       LYield,
	"RestElement":           LRest,
}

type OpLevel int

// Binary operator levels, following the ECMAScript grammar from the loosest
// production (ShortCircuitExpression) to the tightest (ExponentiationExpression).
const (
	OpUnknown OpLevel = iota
	OpLogicalOr // Also "??", which can't be mixed with "||" or "&&" unparenthesized
	OpLogicalAnd
	OpBitwiseOr
	OpBitwiseXor
	OpBitwiseAnd
	OpEquals
	OpCompare
	OpShift
	OpAdd
	OpMultiply
	OpExponentiation
)

var OperatorPrecedence = map[string]OpLevel{
	"??":         OpLogicalOr,
	"||":         OpLogicalOr,
	"&&":         OpLogicalAnd,
	"|":          OpBitwiseOr,
	"^":          OpBitwiseXor,
	"&":          OpBitwiseAnd,
	"==":         OpEquals,
	"!=":         OpEquals,
	"===":        OpEquals,
	"!==":        OpEquals,
	"<":          OpCompare,
	">":          OpCompare,
	"<=":         OpCompare,
	">=":         OpCompare,
	"in":         OpCompare,
	"instanceof": OpCompare,
	"<<":         OpShift,
	">>":         OpShift,
	">>>":        OpShift,
	"+":          OpAdd,
	"-":          OpAdd,
	"*":          OpMultiply,
	"/":          OpMultiply,
	"%":          OpMultiply,
	"**":         OpExponentiation,
}

func (p *Printer) precedenceOf(node *estree.Node) int {
	if level, ok := p.precedence[node.Type]; ok {
		return level
	}
	return LPrimary
}

// ExpressionNeedsParens decides whether node must be wrapped when printed as
// an operand of parent. isRightHand is true for the right operand of a
// binary or logical expression.
func (p *Printer) ExpressionNeedsParens(node *estree.Node, parent *estree.Node, isRightHand bool) bool {
	level := p.precedenceOf(node)
	if level == LNeedsParens {
		return true
	}
	parentLevel := p.precedenceOf(parent)
	op := node.Str("operator")
	parentOp := parent.Str("operator")

	if level != parentLevel {
		// "-a ** b" is a syntax error, so a prefix expression on the left of
		// "**" is wrapped even though it binds tighter
		if !isRightHand && level == LPrefix && parentLevel == LBinary && parentOp == "**" {
			return true
		}
		return level < parentLevel
	}

	if level != LLogical && level != LBinary {
		return false
	}

	// Right-associative
	if op == "**" && parentOp == "**" {
		return !isRightHand
	}

	if level == LLogical && (op == "??") != (parentOp == "??") {
		return true
	}

	if isRightHand {
		return OperatorPrecedence[op] <= OperatorPrecedence[parentOp]
	}
	return OperatorPrecedence[op] < OperatorPrecedence[parentOp]
}
