package expression

import "strings"

// bothNumeric implements spec §4.4's "both numeric" test: both operands
// must be numeric-ish, and neither may carry a quoted-string Origin. A
// numeric-looking WORD (an ordinary variable read) still counts as
// numeric here — only an explicit quoted literal (or a value produced by
// a function/coercion that intentionally carries a string Origin) forces
// the pair into the "both string" category.
func bothNumeric(a, b Value) bool {
	return a.IsNumericIsh() && b.IsNumericIsh() &&
		!a.Origin.isQuotedOrigin() && !b.Origin.isQuotedOrigin()
}

// Add implements '+': concatenation when both operands are "both string"
// per spec §4.4, otherwise numeric addition.
func Add(a, b Value, offset int) Value {
	if !bothNumeric(a, b) {
		return StringValue(a.Raw+b.Raw, offset, OriginString)
	}
	return NumberValue(a.AsFloat()+b.AsFloat(), offset)
}

// Sub, Mul, Div implement '-', '*', '/': all three require "both numeric"
// in the strict sense (bothNumeric above); any other combination —
// including two quoted numeric-looking strings — yields NaN, per spec
// §4.4. This is the source's own asymmetry (Add is lenient, the other
// three are not) and is preserved rather than "fixed".
func Sub(a, b Value, offset int) Value {
	if !bothNumeric(a, b) {
		return NumberValue(nan(), offset)
	}
	return NumberValue(a.AsFloat()-b.AsFloat(), offset)
}

func Mul(a, b Value, offset int) Value {
	if !bothNumeric(a, b) {
		return NumberValue(nan(), offset)
	}
	return NumberValue(a.AsFloat()*b.AsFloat(), offset)
}

func Div(a, b Value, offset int) Value {
	if !bothNumeric(a, b) {
		return NumberValue(nan(), offset)
	}
	denom := b.AsFloat()
	if denom == 0 {
		return NumberValue(nan(), offset) // division by zero yields NaN, not an error
	}
	return NumberValue(a.AsFloat()/denom, offset)
}

// LooseEqual implements the '==' / '!=' loose-equality rule of spec §4.4:
// numeric comparison when both operands are numeric-ish, otherwise a raw
// string comparison.
func LooseEqual(a, b Value) bool {
	if a.IsNumericIsh() && b.IsNumericIsh() {
		return a.AsFloat() == b.AsFloat()
	}
	return a.Raw == b.Raw
}

// Compare implements the four ordered relational operators. Mixed
// numeric/string pairs (one operand numeric-ish, the other not, whatever
// their Origin) always yield false, except the two literal special cases spec
// §4.4 calls out, which are checked first and override everything else.
func Compare(op string, a, b Value) bool {
	if a.Raw == "" && b.Raw == "0" && op == "<=" {
		return true
	}
	if a.Raw == "0" && b.Raw == "" && op == ">=" {
		return true
	}

	switch {
	case bothNumeric(a, b):
		return numericCompare(op, a.AsFloat(), b.AsFloat())
	case a.IsNumericIsh() != b.IsNumericIsh():
		// Exactly one side parses as a number and the other doesn't: a
		// true mixed pair, always false regardless of operator.
		return false
	default:
		// Both numeric-ish-but-quoted ("both string" by the §4.4
		// definition), or both genuinely non-numeric: fall back to a
		// lexical comparison of the raw payloads.
		return stringCompare(op, a.Raw, b.Raw)
	}
}

func numericCompare(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func stringCompare(op string, a, b string) bool {
	c := strings.Compare(a, b)
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

// And, Or implement '&&'/'and' and '||'/'or' using host truthiness on the
// raw payload. Both operands are always evaluated: the parser consumes
// tokens linearly as it evaluates, so there is no side-effect-free way
// to skip the right-hand side once its tokens have been reached.
func And(a, b Value, offset int) Value { return BoolValue(a.Truthy() && b.Truthy(), offset) }
func Or(a, b Value, offset int) Value  { return BoolValue(a.Truthy() || b.Truthy(), offset) }

// Not implements unary '!'.
func Not(a Value, offset int) Value { return BoolValue(!a.Truthy(), offset) }

// UnaryPlus, UnaryMinus numeric-coerce their operand.
func UnaryPlus(a Value, offset int) Value  { return NumberValue(a.AsFloat(), offset) }
func UnaryMinus(a Value, offset int) Value { return NumberValue(-a.AsFloat(), offset) }
