package expression

import (
	"fmt"
	"html"
	"mime/quotedprintable"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// registerStringFunctions installs the string entries of the default
// registry (spec §6). All of it operates on UTF-8 code points, per the
// spec's closing note, so indices/lengths use []rune rather than byte
// offsets throughout.
func registerStringFunctions(reg map[string]FunctionSpec) {
	str1 := func(name, target, doc string, fn func(string) string) {
		reg[name] = FunctionSpec{
			Name: name, TargetName: target, Description: doc,
			Signature: name + "(s)", Arity: Arity{1},
			Impl: func(args []Value, offset int) (Value, *EvalError) {
				return StringValue(fn(args[0].Raw), offset, OriginString), nil
			},
		}
	}

	str1("strtolower", "toLowerCase", "Lowercase.", strings.ToLower)
	str1("strtoupper", "toUpperCase", "Uppercase.", strings.ToUpper)
	str1("trim", "trim", "Trim leading and trailing whitespace.", strings.TrimSpace)
	str1("ltrim", "trimStart", "Trim leading whitespace.", func(s string) string { return strings.TrimLeft(s, " \t\n\r\x00\x0B") })
	str1("rtrim", "trimEnd", "Trim trailing whitespace.", func(s string) string { return strings.TrimRight(s, " \t\n\r\x00\x0B") })
	str1("strrev", "NA", "Reverse the string.", reverseString)
	str1("ucwords", "NA", "Uppercase the first letter of each whitespace-delimited word.", ucwordsUnicode)
	str1("addslashes", "NA", "Escape ' \" \\ and NUL with a backslash.", addslashes)
	str1("stripslashes", "NA", "Reverse addslashes.", stripslashes)
	str1("htmlentities", "NA", "Encode & \" ' < > to HTML entities; other characters are left unchanged.", html.EscapeString)
	str1("html_entity_decode", "NA", "Decode HTML entities.", html.UnescapeString)
	str1("htmlspecialchars", "NA", "Encode & \" ' < > to HTML entities.", html.EscapeString)
	str1("htmlspecialchars_decode", "NA", "Decode & \" ' < > HTML entities.", html.UnescapeString)
	str1("nl2br", "NA", "Insert <br /> before newlines.", func(s string) string { return strings.ReplaceAll(s, "\n", "<br />\n") })
	str1("quotemeta", "NA", `Escape . \ + * ? [ ^ ] $ ( ) with a backslash.`, quotemeta)
	str1("strip_tags", "NA", "Remove HTML/XML tags.", stripTags)
	str1("quoted_printable_encode", "NA", "Quoted-printable encode.", qpEncode)
	str1("quoted_printable_decode", "NA", "Quoted-printable decode.", qpDecode)

	reg["strlen"] = FunctionSpec{
		Name: "strlen", TargetName: "length", Description: "Number of code points.",
		Signature: "strlen(s)", Arity: Arity{1},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return NumberValue(float64(len([]rune(args[0].Raw))), offset), nil
		},
	}

	reg["strcmp"] = FunctionSpec{
		Name: "strcmp", TargetName: "NA", Description: "Byte-wise comparison; <0, 0, or >0.",
		Signature: "strcmp(a, b)", Arity: Arity{2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return NumberValue(float64(strings.Compare(args[0].Raw, args[1].Raw)), offset), nil
		},
	}
	reg["strcasecmp"] = FunctionSpec{
		Name: "strcasecmp", TargetName: "NA", Description: "Case-insensitive comparison; <0, 0, or >0.",
		Signature: "strcasecmp(a, b)", Arity: Arity{2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			a, b := strings.ToLower(args[0].Raw), strings.ToLower(args[1].Raw)
			return NumberValue(float64(strings.Compare(a, b)), offset), nil
		},
	}

	reg["substr"] = FunctionSpec{
		Name: "substr", TargetName: "substring", Description: "Rune-safe substring; negative start counts from the end.",
		Signature: "substr(s, start, length?)", Arity: Arity{2, 3},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			r := []rune(args[0].Raw)
			start := int(args[1].AsFloat())
			if start < 0 {
				start = len(r) + start
			}
			start = clamp(start, 0, len(r))
			end := len(r)
			if len(args) == 3 {
				n := int(args[2].AsFloat())
				if n < 0 {
					end = clamp(len(r)+n, start, len(r))
				} else {
					end = clamp(start+n, start, len(r))
				}
			}
			return StringValue(string(r[start:end]), offset, OriginString), nil
		},
	}

	reg["str_repeat"] = FunctionSpec{
		Name: "str_repeat", TargetName: "repeat", Description: "Repeat s n times.",
		Signature: "str_repeat(s, n)", Arity: Arity{2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			n := int(args[1].AsFloat())
			if n < 0 {
				n = 0
			}
			return StringValue(strings.Repeat(args[0].Raw, n), offset, OriginString), nil
		},
	}

	reg["str_pad"] = FunctionSpec{
		Name: "str_pad", TargetName: "padEnd", Description: "Pad s to length with padStr (default space) on the right (default), left, or both.",
		Signature: "str_pad(s, length, padStr=' ', type='RIGHT'|'LEFT'|'BOTH')", Arity: Arity{2, 3, 4},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return StringValue(strPad(args), offset, OriginString), nil
		},
	}

	reg["str_replace"] = FunctionSpec{
		Name: "str_replace", TargetName: "replaceAll", Description: "Replace all occurrences of search with replace in subject.",
		Signature: "str_replace(search, replace, subject)", Arity: Arity{3},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			if args[0].Raw == "" {
				return StringValue(args[2].Raw, offset, OriginString), nil
			}
			return StringValue(strings.ReplaceAll(args[2].Raw, args[0].Raw, args[1].Raw), offset, OriginString), nil
		},
	}

	reg["strpos"] = FunctionSpec{
		Name: "strpos", TargetName: "indexOf", Description: "0-based rune index of the first occurrence of needle in haystack, or false (empty string) if absent.",
		Signature: "strpos(haystack, needle, offset=0)", Arity: Arity{2, 3},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return runePos(args, offset, false), nil
		},
	}
	reg["stripos"] = FunctionSpec{
		Name: "stripos", TargetName: "NA", Description: "Case-insensitive strpos.",
		Signature: "stripos(haystack, needle, offset=0)", Arity: Arity{2, 3},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return runePos(args, offset, true), nil
		},
	}

	reg["strstr"] = FunctionSpec{
		Name: "strstr", TargetName: "NA", Description: "Portion of haystack from the first occurrence of needle onward, or empty string.",
		Signature: "strstr(haystack, needle)", Arity: Arity{2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			h, n := args[0].Raw, args[1].Raw
			if i := strings.Index(h, n); i >= 0 {
				return StringValue(h[i:], offset, OriginString), nil
			}
			return StringValue("", offset, OriginString), nil
		},
	}
	reg["stristr"] = FunctionSpec{
		Name: "stristr", TargetName: "NA", Description: "Case-insensitive strstr.",
		Signature: "stristr(haystack, needle)", Arity: Arity{2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			h, n := args[0].Raw, args[1].Raw
			if i := strings.Index(strings.ToLower(h), strings.ToLower(n)); i >= 0 {
				return StringValue(h[i:], offset, OriginString), nil
			}
			return StringValue("", offset, OriginString), nil
		},
	}

	reg["number_format"] = FunctionSpec{
		Name: "number_format", TargetName: "toLocaleString", Description: "Format a number with grouped thousands.",
		Signature: "number_format(number, decimals=0, decPoint='.', thousandsSep=',')", Arity: Arity{1, 2, 3, 4},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return StringValue(numberFormat(args), offset, OriginString), nil
		},
	}

	reg["sprintf"] = FunctionSpec{
		Name: "sprintf", TargetName: "NA", Description: "printf-style formatting.",
		Signature: "sprintf(format, ...)", Arity: Arity{-2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			if len(args) == 0 {
				return StringValue("", offset, OriginString), nil
			}
			return StringValue(sprintfValues(args[0].Raw, args[1:]), offset, OriginString), nil
		},
	}
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func addslashes(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\'', '"', '\\', 0:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripslashes(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] == '\\' && i+1 < len(rs) {
			i++
		}
		b.WriteRune(rs[i])
	}
	return b.String()
}

var quotemetaChars = regexp.MustCompile(`([.\\+*?\[^\]$()])`)

func quotemeta(s string) string {
	return quotemetaChars.ReplaceAllString(s, `\$1`)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string { return tagPattern.ReplaceAllString(s, "") }

func qpEncode(s string) string {
	var b strings.Builder
	w := quotedprintable.NewWriter(&b)
	_, _ = w.Write([]byte(s))
	_ = w.Close()
	return b.String()
}

func qpDecode(s string) string {
	r := quotedprintable.NewReader(strings.NewReader(s))
	buf := make([]byte, 0, len(s))
	tmp := make([]byte, 512)
	for {
		n, err := r.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if err != nil {
			break
		}
	}
	return string(buf)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func strPad(args []Value) string {
	s := args[0].Raw
	length := int(args[1].AsFloat())
	pad := " "
	if len(args) >= 3 && args[2].Raw != "" {
		pad = args[2].Raw
	}
	side := "RIGHT"
	if len(args) == 4 {
		side = strings.ToUpper(args[3].Raw)
	}
	need := length - len([]rune(s))
	if need <= 0 || pad == "" {
		return s
	}
	full := strings.Repeat(pad, need/len([]rune(pad))+1)
	switch side {
	case "LEFT":
		return string([]rune(full)[:need]) + s
	case "BOTH":
		left := need / 2
		right := need - left
		return string([]rune(full)[:left]) + s + string([]rune(full)[:right])
	default:
		return s + string([]rune(full)[:need])
	}
}

func runePos(args []Value, offset int, insensitive bool) Value {
	h, n := args[0].Raw, args[1].Raw
	start := 0
	if len(args) == 3 {
		start = clamp(int(args[2].AsFloat()), 0, len([]rune(h)))
	}
	hr := []rune(h)
	sub := string(hr[start:])
	if insensitive {
		sub, n = strings.ToLower(sub), strings.ToLower(n)
	}
	idx := strings.Index(sub, n)
	if idx < 0 {
		return StringValue("", offset, OriginString) // PHP-style false, represented as falsy empty string
	}
	runeIdx := len([]rune(sub[:idx])) + start
	return NumberValue(float64(runeIdx), offset)
}

func numberFormat(args []Value) string {
	n := args[0].AsFloat()
	decimals := 0
	if len(args) >= 2 {
		decimals = int(args[1].AsFloat())
	}
	decPoint := "."
	if len(args) >= 3 {
		decPoint = args[2].Raw
	}
	thousands := ","
	if len(args) >= 4 {
		thousands = args[3].Raw
	}
	formatted := strconv.FormatFloat(n, 'f', decimals, 64)
	neg := strings.HasPrefix(formatted, "-")
	if neg {
		formatted = formatted[1:]
	}
	intPart, fracPart := formatted, ""
	if i := strings.IndexByte(formatted, '.'); i >= 0 {
		intPart, fracPart = formatted[:i], formatted[i+1:]
	}

	var grouped []byte
	for i, c := range []byte(reverseString(intPart)) {
		if i > 0 && i%3 == 0 {
			grouped = append(grouped, []byte(thousands)...)
		}
		grouped = append(grouped, c)
	}
	intOut := reverseString(string(grouped))

	out := intOut
	if fracPart != "" {
		out += decPoint + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// sprintfValues implements a pragmatic subset of printf verbs (%s, %d,
// %f, %.Nf, %x, %%) against already-coerced Values.
func sprintfValues(format string, args []Value) string {
	verbs := phpVerbPattern.FindAllString(format, -1)
	converted := make([]any, len(args))
	vi := 0
	for i, a := range args {
		for vi < len(verbs) && strings.HasSuffix(verbs[vi], "%") {
			vi++ // %% consumes no argument
		}
		var verb byte
		if vi < len(verbs) {
			verb = verbs[vi][len(verbs[vi])-1]
			vi++
		}
		converted[i] = sprintfArg(verb, a)
	}
	return fmt.Sprintf(phpToGoFormat(format), converted...)
}

func sprintfArg(verb byte, v Value) any {
	switch {
	case verb == 's':
		return v.Raw
	case verb == 'x':
		return int64(parseFloatOr(v.Raw, 0))
	case v.IsNumericIsh():
		return v.AsFloat()
	}
	return v.Raw
}

var phpVerbPattern = regexp.MustCompile(`%[-+0-9.]*[sdfx%]`)

// phpToGoFormat rewrites PHP/printf %d verbs to %.0f, since %d arguments
// are dispatched as float64 rather than as a Go integer type.
func phpToGoFormat(f string) string {
	return phpVerbPattern.ReplaceAllStringFunc(f, func(verb string) string {
		if strings.HasSuffix(verb, "d") {
			return verb[:len(verb)-1] + ".0f"
		}
		return verb
	})
}

// ucwordsUnicode title-cases s using unicode-aware rules; used in place
// of strings.Title (deprecated, ASCII-ish) for the ucwords entry.
func ucwordsUnicode(s string) string {
	var out []rune
	prevSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			prevSpace = true
			out = append(out, r)
			continue
		}
		if prevSpace {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, r)
		}
		prevSpace = false
	}
	return string(out)
}
