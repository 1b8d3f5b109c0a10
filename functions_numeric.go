package expression

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// registerNumericFunctions installs the numeric and integer-test entries
// of the default registry (spec §6): abs, acos, asin, atan, atan2, ceil,
// cos, exp, floor, log, max, min, pi, pow, round, sin, sqrt, tan, rand,
// intval, is_int, is_float, is_nan, is_numeric, is_null, is_string.
func registerNumericFunctions(reg map[string]FunctionSpec) {
	unary := func(name, target, doc string, fn func(float64) float64) {
		reg[name] = FunctionSpec{
			Name: name, TargetName: target, Description: doc,
			Signature: name + "(number)", Arity: Arity{1},
			Impl: func(args []Value, offset int) (Value, *EvalError) {
				return NumberValue(coerceFloatOrNaN(fn, args[0]), offset), nil
			},
		}
	}

	unary("abs", "Math.abs", "Absolute value.", math.Abs)
	unary("acos", "Math.acos", "Arc cosine, radians.", math.Acos)
	unary("asin", "Math.asin", "Arc sine, radians.", math.Asin)
	unary("atan", "Math.atan", "Arc tangent, radians.", math.Atan)
	unary("ceil", "Math.ceil", "Smallest integer >= x.", math.Ceil)
	unary("cos", "Math.cos", "Cosine, radians.", math.Cos)
	unary("exp", "Math.exp", "e**x.", math.Exp)
	unary("floor", "Math.floor", "Largest integer <= x.", math.Floor)
	unary("sin", "Math.sin", "Sine, radians.", math.Sin)
	unary("sqrt", "Math.sqrt", "Square root; NaN for negative input.", math.Sqrt)
	unary("tan", "Math.tan", "Tangent, radians.", math.Tan)

	reg["log"] = FunctionSpec{
		Name: "log", TargetName: "Math.log", Description: "Logarithm; base defaults to e. NaN on non-positive or non-numeric input.",
		Signature: "log(number, base=e)", Arity: Arity{1, 2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			n := args[0].AsFloat()
			if !args[0].IsNumericIsh() || n <= 0 {
				return NumberValue(nan(), offset), nil
			}
			if len(args) == 1 {
				return NumberValue(math.Log(n), offset), nil
			}
			base := args[1].AsFloat()
			if !args[1].IsNumericIsh() || base <= 0 || base == 1 {
				return NumberValue(nan(), offset), nil
			}
			return NumberValue(math.Log(n)/math.Log(base), offset), nil
		},
	}

	reg["atan2"] = FunctionSpec{
		Name: "atan2", TargetName: "Math.atan2", Description: "atan2(y, x).",
		Signature: "atan2(y, x)", Arity: Arity{2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			if !args[0].IsNumericIsh() || !args[1].IsNumericIsh() {
				return NumberValue(nan(), offset), nil
			}
			return NumberValue(math.Atan2(args[0].AsFloat(), args[1].AsFloat()), offset), nil
		},
	}

	reg["pow"] = FunctionSpec{
		Name: "pow", TargetName: "Math.pow", Description: "x**y.",
		Signature: "pow(x, y)", Arity: Arity{2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			if !args[0].IsNumericIsh() || !args[1].IsNumericIsh() {
				return NumberValue(nan(), offset), nil
			}
			return NumberValue(math.Pow(args[0].AsFloat(), args[1].AsFloat()), offset), nil
		},
	}

	reg["round"] = FunctionSpec{
		Name: "round", TargetName: "Math.round", Description: "Round to n decimal places (default 0).",
		Signature: "round(number, precision=0)", Arity: Arity{1, 2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			if !args[0].IsNumericIsh() {
				return NumberValue(nan(), offset), nil
			}
			prec := 0.0
			if len(args) == 2 && args[1].IsNumericIsh() {
				prec = args[1].AsFloat()
			}
			mult := math.Pow(10, prec)
			return NumberValue(math.Round(args[0].AsFloat()*mult)/mult, offset), nil
		},
	}

	reg["pi"] = FunctionSpec{
		Name: "pi", TargetName: "Math.PI", Description: "The constant pi.",
		Signature: "pi()", Arity: Arity{0},
		Impl: func(_ []Value, offset int) (Value, *EvalError) {
			return NumberValue(math.Pi, offset), nil
		},
	}

	reg["max"] = FunctionSpec{
		Name: "max", TargetName: "Math.max", Description: "Largest numeric-ish argument, or NaN if none parse.",
		Signature: "max(x, y, ...)", Arity: Arity{-2},
		Impl: func(args []Value, offset int) (Value, *EvalError) { return extremum(args, offset, true) },
	}
	reg["min"] = FunctionSpec{
		Name: "min", TargetName: "Math.min", Description: "Smallest numeric-ish argument, or NaN if none parse.",
		Signature: "min(x, y, ...)", Arity: Arity{-2},
		Impl: func(args []Value, offset int) (Value, *EvalError) { return extremum(args, offset, false) },
	}

	reg["rand"] = FunctionSpec{
		Name: "rand", TargetName: "NA", Description: "Random integer in [min, max] (default [0, getrandmax()]).",
		Signature: "rand(min=0, max=2147483647)", Arity: Arity{0, 2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			lo, hi := 0, 2147483647
			if len(args) == 2 {
				lo = int(args[0].AsFloat())
				hi = int(args[1].AsFloat())
			}
			if hi <= lo {
				return NumberValue(float64(lo), offset), nil
			}
			return NumberValue(float64(lo+rand.Intn(hi-lo+1)), offset), nil
		},
	}

	reg["intval"] = FunctionSpec{
		Name: "intval", TargetName: "parseInt", Description: "Truncate to an integer; 0 if not numeric-ish.",
		Signature: "intval(x)", Arity: Arity{1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			if !args[0].IsNumericIsh() {
				return NumberValue(0, offset), nil
			}
			return NumberValue(math.Trunc(args[0].AsFloat()), offset), nil
		},
	}

	boolFn := func(name, doc string, fn func(Value) bool) {
		reg[name] = FunctionSpec{
			Name: name, TargetName: "NA", Description: doc,
			Signature: name + "(x)", Arity: Arity{1},
			Impl: func(args []Value, offset int) (Value, *EvalError) {
				return BoolValue(fn(args[0]), offset), nil
			},
		}
	}
	boolFn("is_int", "True iff x is numeric-ish, non-empty, has no fractional part and is written without a decimal point or exponent.", func(v Value) bool {
		if !v.IsNumericIsh() || v.Raw == "" {
			return false
		}
		f := v.AsFloat()
		return f == math.Trunc(f) && !strings.ContainsAny(v.Raw, ".eE")
	})
	boolFn("is_float", "True iff x is numeric-ish and written with a decimal point or exponent.", func(v Value) bool {
		return v.IsNumericIsh() && v.Raw != "" && strings.ContainsAny(v.Raw, ".eE")
	})
	boolFn("is_nan", "True iff x is not numeric-ish (would coerce to NaN).", func(v Value) bool {
		return v.Raw != "" && !v.IsNumericIsh()
	})
	boolFn("is_numeric", "True iff x is numeric-ish and non-empty.", func(v Value) bool {
		return v.Raw != "" && v.IsNumericIsh()
	})
	boolFn("is_null", "True iff x is the opaque null produced by a not-currently-relevant read.", func(v Value) bool {
		return v.IsNull
	})
	boolFn("is_string", "True iff x carries a string Origin.", func(v Value) bool {
		return v.Origin.isQuotedOrigin() || v.Origin == OriginWord
	})
}

// coerceFloatOrNaN applies fn to v's numeric interpretation, or returns
// NaN when v is not numeric-ish (spec §4.5: "coerce arguments to floats
// when numeric-ish, returning NaN otherwise").
func coerceFloatOrNaN(fn func(float64) float64, v Value) float64 {
	if !v.IsNumericIsh() {
		return nan()
	}
	return fn(v.AsFloat())
}

func extremum(args []Value, offset int, wantMax bool) (Value, *EvalError) {
	best := nan()
	seen := false
	for _, a := range args {
		if !a.IsNumericIsh() {
			continue
		}
		f := a.AsFloat()
		if !seen {
			best, seen = f, true
			continue
		}
		if wantMax && f > best {
			best = f
		}
		if !wantMax && f < best {
			best = f
		}
	}
	return NumberValue(best, offset), nil
}

// parseFloatOr is a small helper shared with parser.go (NUMBER literals)
// and functions_date.go (idate).
func parseFloatOr(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return f
}
