package expression

import "strings"

// splitterState is the small state machine spec §4.2 describes: it walks
// the host string one rune at a time, tracking brace depth and whether it
// is currently inside a quoted string (which suppresses brace counting).
type splitterState struct {
	src   []rune
	pos   int
	depth int
	quote rune // 0, '\'', or '"'
}

// SplitSegments turns a host string into an ordered sequence of Segments,
// implementing the rules of spec §4.2 in order:
//   - \{ and \} are literal braces.
//   - An opening brace immediately followed by whitespace/newline, or a
//     closing brace immediately preceded by whitespace, is a literal
//     brace (the "whitespace-adjacency rule").
//   - Inside an expression (depth > 0), single- and double-quoted
//     substrings are recognized and their braces are not counted.
//   - A depth-0 '{' closes the current STRING segment and opens an
//     EXPRESSION segment; the matching depth-0 '}' closes it.
//   - A backslash escapes the next character; both are kept verbatim.
//   - Any EXPRESSION left open at end-of-input is flushed as STRING
//     (malformed expressions never abort the split).
func SplitSegments(src string) []Segment {
	st := &splitterState{src: []rune(src)}
	var segs []Segment
	var buf strings.Builder
	bufStart := 0
	inExpr := false

	flush := func(kind SegmentKind) {
		if buf.Len() == 0 && kind == SegString {
			// Skip an empty leading/trailing literal segment so callers
			// don't have to special-case it, but keep offsets accurate
			// for the next segment.
			return
		}
		segs = append(segs, Segment{Text: buf.String(), Offset: bufStart, Kind: kind})
		buf.Reset()
	}

	for st.pos < len(st.src) {
		c := st.src[st.pos]

		if c == '\\' && st.pos+1 < len(st.src) {
			nxt := st.src[st.pos+1]
			if nxt == '{' || nxt == '}' {
				buf.WriteRune('\\')
				buf.WriteRune(nxt)
				st.pos += 2
				continue
			}
			buf.WriteRune(c)
			buf.WriteRune(nxt)
			st.pos += 2
			continue
		}

		if inExpr && st.quote != 0 {
			buf.WriteRune(c)
			if c == st.quote {
				st.quote = 0
			}
			st.pos++
			continue
		}

		if inExpr && (c == '\'' || c == '"') {
			st.quote = c
			buf.WriteRune(c)
			st.pos++
			continue
		}

		switch c {
		case '{':
			if isSpaceOrNL(peekRune(st.src, st.pos+1)) {
				buf.WriteRune(c) // whitespace-adjacency: literal
				st.pos++
				continue
			}
			if !inExpr {
				flush(SegString)
				bufStart = st.pos + 1
				inExpr = true
				st.depth = 1
				st.pos++
				continue
			}
			st.depth++
			buf.WriteRune(c)
			st.pos++
		case '}':
			if isSpaceOrNL(peekRuneBack(st.src, st.pos-1)) {
				buf.WriteRune(c) // whitespace-adjacency: literal
				st.pos++
				continue
			}
			if inExpr {
				if st.depth == 1 {
					flush(SegExpression)
					bufStart = st.pos + 1
					inExpr = false
					st.depth = 0
					st.pos++
					continue
				}
				st.depth--
				buf.WriteRune(c)
				st.pos++
				continue
			}
			// A stray '}' with no adjacency reason to be literal outside
			// an expression is still just literal text: there is nothing
			// open to close.
			buf.WriteRune(c)
			st.pos++
		default:
			buf.WriteRune(c)
			st.pos++
		}
	}

	// Flush whatever remains. An EXPRESSION never closed is malformed;
	// spec §4.2 says to flush it as STRING rather than fail, so the
	// original "{...}" text (missing its final brace) survives verbatim.
	if inExpr {
		text := "{" + buf.String()
		segs = append(segs, Segment{Text: text, Offset: bufStart - 1, Kind: SegString})
	} else {
		flush(SegString)
	}

	return segs
}

func peekRune(src []rune, i int) rune {
	if i < 0 || i >= len(src) {
		return 0
	}
	return src[i]
}

func peekRuneBack(src []rune, i int) rune {
	return peekRune(src, i)
}

func isSpaceOrNL(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// UnescapeBraces reverses the \{ \} escaping SplitSegments preserves
// verbatim inside literal segments, applied once at the very end of
// Evaluator.ProcessString (spec §6).
func UnescapeBraces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '{' || s[i+1] == '}') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
