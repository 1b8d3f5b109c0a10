// functions_date.go registers the date/time entries of the default
// registry (spec §6: date, gmdate, idate, mktime, checkdate, time),
// grounded on the teacher's registerTimeBuiltins wall-clock helpers but
// reworked around PHP-style format strings, since the survey templates
// this engine evaluates are PHP-derived.
package expression

import (
	"strconv"
	"strings"
	"time"
)

func registerDateFunctions(reg map[string]FunctionSpec) {
	reg["time"] = FunctionSpec{
		Name: "time", TargetName: "NA", Description: "Current Unix timestamp, seconds.",
		Signature: "time()", Arity: Arity{0},
		Impl: func(_ []Value, offset int) (Value, *EvalError) {
			return NumberValue(float64(nowFunc().Unix()), offset), nil
		},
	}

	reg["date"] = FunctionSpec{
		Name: "date", TargetName: "NA", Description: "Format a Unix timestamp (default now) with PHP date() format codes, in local time.",
		Signature: "date(format, timestamp=time())", Arity: Arity{1, 2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return StringValue(formatDate(args, offset, false), offset, OriginString), nil
		},
	}
	reg["gmdate"] = FunctionSpec{
		Name: "gmdate", TargetName: "NA", Description: "Like date(), but in UTC.",
		Signature: "gmdate(format, timestamp=time())", Arity: Arity{1, 2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			return StringValue(formatDate(args, offset, true), offset, OriginString), nil
		},
	}

	reg["idate"] = FunctionSpec{
		Name: "idate", TargetName: "NA", Description: "Format a Unix timestamp as an integer using a single PHP date() code.",
		Signature: "idate(format, timestamp=time())", Arity: Arity{1, 2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			ts := nowFunc()
			if len(args) == 2 {
				ts = time.Unix(int64(args[1].AsFloat()), 0)
			}
			code := ""
			if args[0].Raw != "" {
				code = args[0].Raw[:1]
			}
			return NumberValue(parseFloatOr(phpDateFormat(code, ts), 0), offset), nil
		},
	}

	reg["mktime"] = FunctionSpec{
		Name: "mktime", TargetName: "NA", Description: "Build a Unix timestamp from local time components (hour, minute, second, month, day, year), each defaulting to the current value.",
		Signature: "mktime(hour=now, minute=now, second=now, month=now, day=now, year=now)", Arity: Arity{0, 1, 2, 3, 4, 5, 6},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			now := nowFunc()
			get := func(i int, def int) int {
				if i < len(args) {
					return int(args[i].AsFloat())
				}
				return def
			}
			hour := get(0, now.Hour())
			minute := get(1, now.Minute())
			second := get(2, now.Second())
			month := get(3, int(now.Month()))
			day := get(4, now.Day())
			year := get(5, now.Year())
			t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
			return NumberValue(float64(t.Unix()), offset), nil
		},
	}

	reg["checkdate"] = FunctionSpec{
		Name: "checkdate", TargetName: "NA", Description: "True iff month/day/year form a valid Gregorian calendar date.",
		Signature: "checkdate(month, day, year)", Arity: Arity{3},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			month := int(args[0].AsFloat())
			day := int(args[1].AsFloat())
			year := int(args[2].AsFloat())
			return BoolValue(isValidGregorianDate(month, day, year), offset), nil
		},
	}

	reg["strtotime"] = FunctionSpec{
		Name: "strtotime", TargetName: "NA", Description: "Parse an English date/time description into a Unix timestamp; false (empty string) if unparseable.",
		Signature: "strtotime(text, base=time())", Arity: Arity{1, 2},
		Impl: func(args []Value, offset int) (Value, *EvalError) {
			base := nowFunc()
			if len(args) == 2 {
				base = time.Unix(int64(args[1].AsFloat()), 0)
			}
			if strings.EqualFold(strings.TrimSpace(args[0].Raw), "now") {
				return NumberValue(float64(base.Unix()), offset), nil
			}
			for _, layout := range strtotimeLayouts {
				if t, err := time.Parse(layout, args[0].Raw); err == nil {
					return NumberValue(float64(t.Unix()), offset), nil
				}
			}
			return StringValue("", offset, OriginString), nil
		},
	}
}

var strtotimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
	"2 January 2006",
}

// nowFunc is a var, not a direct time.Now() call, so tests can pin the
// clock without depending on wall time.
var nowFunc = time.Now

func formatDate(args []Value, offset int, utc bool) string {
	ts := nowFunc()
	if len(args) == 2 {
		ts = time.Unix(int64(args[1].AsFloat()), 0)
	}
	if utc {
		ts = ts.UTC()
	} else {
		ts = ts.Local()
	}
	var b strings.Builder
	format := args[0].Raw
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == '\\' && i+1 < len(format) {
			b.WriteByte(format[i+1])
			i++
			continue
		}
		b.WriteString(phpDateFormat(string(c), ts))
	}
	return b.String()
}

// phpDateFormat translates a single PHP date() format character into its
// rendering for t. Unrecognized codes pass through literally.
func phpDateFormat(code string, t time.Time) string {
	switch code {
	case "d":
		return t.Format("02")
	case "j":
		return strconv.Itoa(t.Day())
	case "m":
		return t.Format("01")
	case "n":
		return strconv.Itoa(int(t.Month()))
	case "Y":
		return t.Format("2006")
	case "y":
		return t.Format("06")
	case "H":
		return t.Format("15")
	case "G":
		return strconv.Itoa(t.Hour())
	case "i":
		return t.Format("04")
	case "s":
		return t.Format("05")
	case "D":
		return t.Format("Mon")
	case "l":
		return t.Format("Monday")
	case "M":
		return t.Format("Jan")
	case "F":
		return t.Format("January")
	case "N":
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return strconv.Itoa(wd)
	case "w":
		return strconv.Itoa(int(t.Weekday()))
	case "U":
		return strconv.Itoa(int(t.Unix()))
	case "z":
		return strconv.Itoa(t.YearDay() - 1)
	case "A":
		return t.Format("PM")
	case "a":
		return t.Format("pm")
	default:
		return code
	}
}

func isValidGregorianDate(month, day, year int) bool {
	if month < 1 || month > 12 || year < 1 || year > 32767 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := t.AddDate(0, 1, -1).Day()
	return day <= daysInMonth
}
