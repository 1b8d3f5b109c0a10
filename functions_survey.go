// functions_survey.go registers the survey-specific entries of the
// default registry (spec §6): count, countif, countifop, sum, sumifop,
// if, implode, join, list, stddev, unique, fixnum, is_empty, regexMatch,
// convert_value. These have no PHP/JS stdlib equivalent to lean on, so
// they are grounded directly on the scenario battery in spec.md rather
// than on a teacher source file.
package expression

import (
	"math"
	"regexp"
	"strings"
)

func registerSurveyFunctions(reg map[string]FunctionSpec) {
	reg["count"] = FunctionSpec{
		Name: "count", TargetName: "NA", Description: "Number of non-empty arguments.",
		Signature: "count(xs...)", Arity: Arity{-1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			n := 0
			for _, a := range args {
				if !isEmptyValue(a) {
					n++
				}
			}
			return NumberValue(float64(n), offset), nil
		},
	}

	reg["countif"] = FunctionSpec{
		Name: "countif", TargetName: "NA", Description: "Number of arguments equal to v.",
		Signature: "countif(v, xs...)", Arity: Arity{-2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			n := 0
			for _, a := range args[1:] {
				if LooseEqual(args[0], a) {
					n++
				}
			}
			return NumberValue(float64(n), offset), nil
		},
	}

	reg["countifop"] = FunctionSpec{
		Name: "countifop", TargetName: "NA", Description: "Number of arguments matching v under comparison op ∈ {==|eq, !=|ne, <|lt, <=|le, >|gt, >=|ge, RX}.",
		Signature: "countifop(op, v, xs...)", Arity: Arity{-3},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			n := 0
			for _, a := range args[2:] {
				if matchesOp(args[0].Raw, args[1], a) {
					n++
				}
			}
			return NumberValue(float64(n), offset), nil
		},
	}

	reg["sum"] = FunctionSpec{
		Name: "sum", TargetName: "NA", Description: "Sum of numeric-ish arguments.",
		Signature: "sum(xs...)", Arity: Arity{-1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			total := 0.0
			for _, a := range args {
				if a.IsNumericIsh() {
					total += a.AsFloat()
				}
			}
			return NumberValue(total, offset), nil
		},
	}

	reg["sumifop"] = FunctionSpec{
		Name: "sumifop", TargetName: "NA", Description: "Sum of the arguments matching v under comparison op.",
		Signature: "sumifop(op, v, xs...)", Arity: Arity{-3},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			total := 0.0
			for _, a := range args[2:] {
				if matchesOp(args[0].Raw, args[1], a) && a.IsNumericIsh() {
					total += a.AsFloat()
				}
			}
			return NumberValue(total, offset), nil
		},
	}

	reg["unique"] = FunctionSpec{
		Name: "unique", TargetName: "NA", Description: "True iff the non-empty arguments are pairwise distinct after trimming.",
		Signature: "unique(xs...)", Arity: Arity{-1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			seen := map[string]bool{}
			for _, a := range args {
				if isEmptyValue(a) {
					continue
				}
				key := strings.TrimSpace(a.Raw)
				if seen[key] {
					return BoolValue(false, offset), nil
				}
				seen[key] = true
			}
			return BoolValue(true, offset), nil
		},
	}

	reg["list"] = FunctionSpec{
		Name: "list", TargetName: "NA", Description: "Join non-empty arguments with \", \".",
		Signature: "list(xs...)", Arity: Arity{-1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			var parts []string
			for _, a := range args {
				if !isEmptyValue(a) {
					parts = append(parts, a.Raw)
				}
			}
			return StringValue(strings.Join(parts, ", "), offset, OriginString), nil
		},
	}

	joinLike := func(name string) {
		reg[name] = FunctionSpec{
			Name: name, TargetName: "NA", Description: "Join xs with glue.",
			Signature: name + "(glue, xs...)", Arity: Arity{-2},
			Impl: func(args []Value, offset int) (Value, *EvalError) {
				parts := make([]string, 0, len(args)-1)
				for _, a := range args[1:] {
					parts = append(parts, a.Raw)
				}
				return StringValue(strings.Join(parts, args[0].Raw), offset, OriginString), nil
			},
		}
	}
	joinLike("implode")
	joinLike("join")

	reg["if"] = FunctionSpec{
		Name: "if", TargetName: "NA", Description: "test ? a : b.",
		Signature: "if(test, a, b)", Arity: Arity{3},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			if args[0].Truthy() {
				return args[1], nil
			}
			return args[2], nil
		},
	}

	reg["is_empty"] = FunctionSpec{
		Name: "is_empty", TargetName: "NA", Description: "True iff x is null, empty string, or false.",
		Signature: "is_empty(x)", Arity: Arity{1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return BoolValue(isEmptyValue(args[0]), offset), nil
		},
	}

	reg["stddev"] = FunctionSpec{
		Name: "stddev", TargetName: "NA", Description: "Sample standard deviation (n-1 denominator) of the numeric-ish arguments; NaN if fewer than 2.",
		Signature: "stddev(xs...)", Arity: Arity{-1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			var nums []float64
			for _, a := range args {
				if a.IsNumericIsh() {
					nums = append(nums, a.AsFloat())
				}
			}
			if len(nums) < 2 {
				return NumberValue(nan(), offset), nil
			}
			mean := 0.0
			for _, n := range nums {
				mean += n
			}
			mean /= float64(len(nums))
			variance := 0.0
			for _, n := range nums {
				variance += (n - mean) * (n - mean)
			}
			variance /= float64(len(nums) - 1)
			return NumberValue(math.Sqrt(variance), offset), nil
		},
	}

	reg["fixnum"] = FunctionSpec{
		Name: "fixnum", TargetName: "NA", Description: "Render a number without a trailing '.0' and with locale-independent decimal formatting.",
		Signature: "fixnum(number)", Arity: Arity{1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			if !args[0].IsNumericIsh() {
				return StringValue(args[0].Raw, offset, OriginString), nil
			}
			return StringValue(formatNumber(args[0].AsFloat()), offset, OriginString), nil
		},
	}

	reg["regexMatch"] = FunctionSpec{
		Name: "regexMatch", TargetName: "NA", Description: "True iff subject matches the PCRE-ish pattern; false, not an error, for an invalid pattern.",
		Signature: "regexMatch(pattern, subject)", Arity: Arity{2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			re, err := regexp.Compile(pcreToGoRegex(args[0].Raw))
			if err != nil {
				return BoolValue(false, offset), nil
			}
			return BoolValue(re.MatchString(args[1].Raw), offset), nil
		},
	}

	reg["convert_value"] = FunctionSpec{
		Name: "convert_value", TargetName: "NA", Description: "Nearest-neighbor numeric mapping from a comma-separated fromList to the same-index entry of toList; strict=1 requires an exact match. Null on non-numeric input or mismatched list lengths.",
		Signature: "convert_value(v, strict, fromList, toList)", Arity: Arity{4},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return convertValue(args, offset), nil
		},
	}
}

// isEmptyValue implements spec §6's is_empty predicate: null, empty
// string, or the canonical false representation (which is also the
// empty string, per BoolValue).
func isEmptyValue(v Value) bool {
	return v.IsNull || v.Raw == ""
}

// matchesOp implements the op set countifop/sumifop accept: ==|eq,
// !=|ne, <|lt, <=|le, >|gt, >=|ge, or RX (regex match, invalid pattern
// silently treated as no match).
func matchesOp(op string, v, a Value) bool {
	switch strings.ToLower(op) {
	case "==", "eq":
		return LooseEqual(v, a)
	case "!=", "ne":
		return !LooseEqual(v, a)
	case "<", "lt":
		return Compare("<", a, v)
	case "<=", "le":
		return Compare("<=", a, v)
	case ">", "gt":
		return Compare(">", a, v)
	case ">=", "ge":
		return Compare(">=", a, v)
	case "rx":
		re, err := regexp.Compile(pcreToGoRegex(v.Raw))
		if err != nil {
			return false
		}
		return re.MatchString(a.Raw)
	default:
		return false
	}
}

// pcreToGoRegex strips PCRE delimiters (e.g. "/^[a-z]+$/i") if present,
// since callers here accept a bare pattern most of the time but authors
// sometimes carry delimiters over from PHP habit.
func pcreToGoRegex(pattern string) string {
	if len(pattern) >= 2 && pattern[0] == '/' {
		if end := strings.LastIndexByte(pattern, '/'); end > 0 {
			body := pattern[1:end]
			flags := pattern[end+1:]
			if strings.Contains(flags, "i") {
				return "(?i)" + body
			}
			return body
		}
	}
	return pattern
}

func convertValue(args []Value, offset int) Value {
	v := args[0]
	strict := args[1].Truthy()
	fromList := strings.Split(args[2].Raw, ",")
	toList := strings.Split(args[3].Raw, ",")
	if !v.IsNumericIsh() || len(fromList) != len(toList) || len(fromList) == 0 {
		return NullValue(offset)
	}
	target := v.AsFloat()

	if strict {
		for i, f := range fromList {
			fv := StringValue(strings.TrimSpace(f), offset, OriginString)
			if fv.IsNumericIsh() && fv.AsFloat() == target {
				return StringValue(strings.TrimSpace(toList[i]), offset, OriginString)
			}
		}
		return NullValue(offset)
	}

	bestIdx := -1
	bestDist := math.Inf(1)
	for i, f := range fromList {
		fv := StringValue(strings.TrimSpace(f), offset, OriginString)
		if !fv.IsNumericIsh() {
			return NullValue(offset)
		}
		dist := math.Abs(fv.AsFloat() - target)
		if dist < bestDist {
			bestDist, bestIdx = dist, i
		}
	}
	if bestIdx < 0 {
		return NullValue(offset)
	}
	return StringValue(strings.TrimSpace(toList[bestIdx]), offset, OriginString)
}
