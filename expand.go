// expand.go implements the self/that variable-expansion preprocessor of
// spec §4.6: turning self[.sub]*[.attr] and that.<qcode>[.sub]*[.attr]
// references into a comma-separated list of concrete variable names.
// Expansion runs on the token stream, not the raw source text, so a
// self/that reference expands wherever it appears — most commonly as a
// bare function argument like sum(self.NAOK) — not only when it is the
// entire expression.
//
// The per-instance memoization cache mirrors the teacher's module cache
// in modules.go: only successful expansions are cached, so a reference
// that fails to resolve gets a fresh lookup attempt on every call
// instead of pinning a stale miss.
package expression

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// expander holds expansion state private to one Evaluator instance.
type expander struct {
	questions QuestionResolver
	self      *Question // question, sub in scope for "self" references
	cache     map[string]string
	log       zerolog.Logger
}

func newExpander(questions QuestionResolver, self *Question, log zerolog.Logger) *expander {
	return &expander{questions: questions, self: self, cache: map[string]string{}, log: log}
}

var selfThatPattern = regexp.MustCompile(`^(self|that\.[A-Za-z_][A-Za-z0-9_]*)((?:\.[A-Za-z0-9_]+)*)$`)

// Expand rewrites a single self/... or that.<code>... token text into
// its comma-separated expansion. Non-matching or invalid text is
// returned unchanged, per spec §4.6 ("Any other segment invalidates the
// reference; the original text is returned unchanged").
func (e *expander) Expand(text string) string {
	if cached, ok := e.cache[text]; ok {
		e.log.Debug().Str("ref", text).Msg("expand cache hit")
		return cached
	}

	out := e.expandUncached(text)
	if out != text {
		e.cache[text] = out
		e.log.Debug().Str("ref", text).Str("expanded", out).Msg("expand cache miss")
	}
	return out
}

// ExpandTokens rewrites every self/that reference found anywhere among
// tokens, not just a whole expression that is nothing but one reference.
// The canonical use of self/that is as a bare function argument —
// sum(self.NAOK), count(that.Q2), list(self.sq_1) — so expansion has to
// happen per-WORD-token, after lexing, rather than on the raw source
// text before it. A reference that expands to N names splices in N
// tokens joined by COMMA, in place of the single WORD token; a token
// that doesn't match self/that (or fails to expand) passes through
// unchanged.
func (e *expander) ExpandTokens(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind != WORD {
			out = append(out, tok)
			continue
		}
		expanded := e.Expand(tok.Lexeme)
		if expanded == tok.Lexeme {
			out = append(out, tok)
			continue
		}
		for i, name := range strings.Split(expanded, ",") {
			if i > 0 {
				out = append(out, Token{Kind: COMMA, Lexeme: ",", Offset: tok.Offset})
			}
			sub := NewLexer(name, false).Tokenize()
			if len(sub) == 0 {
				continue
			}
			piece := sub[0]
			piece.Offset = tok.Offset
			out = append(out, piece)
		}
	}
	return out
}

func (e *expander) expandUncached(text string) string {
	m := selfThatPattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}

	var q *Question
	if m[1] == "self" {
		q = e.self
	} else {
		code := m[1][len("that."):]
		if e.questions == nil {
			return text
		}
		var ok bool
		q, ok = e.questions.GetByCode(code)
		if !ok {
			return text
		}
	}
	if q == nil {
		return text
	}

	segs := []string{}
	if m[2] != "" {
		segs = strings.Split(strings.TrimPrefix(m[2], "."), ".")
	}

	// The last segment is an attr suffix if it's from the allowed set;
	// everything before it is a filter chain.
	attr := ""
	filters := segs
	if n := len(segs); n > 0 && IsAllowedAttr(segs[n-1]) {
		attr = segs[n-1]
		filters = segs[:n-1]
	}

	fields, ok := applyFilters(q, filters)
	if !ok {
		return text
	}

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		name := f.Name
		if attr != "" {
			name += "." + attr
		}
		names = append(names, name)
	}
	return strings.Join(names, ",")
}

// applyFilters narrows q's fields by the self/that sub-segment chain
// (spec §4.6): comments/nocomments, sq_<regex>/nosq_<regex>. ok is false
// when a segment is not a recognized filter.
func applyFilters(q *Question, filters []string) ([]Field, bool) {
	fields := append([]Field(nil), q.Fields...)
	for _, seg := range filters {
		switch {
		case seg == "comments":
			fields = filterFields(fields, func(f Field) bool { return strings.HasSuffix(f.Name, "comment") })
		case seg == "nocomments":
			fields = filterFields(fields, func(f Field) bool { return !strings.HasSuffix(f.Name, "comment") })
		case strings.HasPrefix(seg, "sq_"):
			re, err := regexp.Compile(seg[len("sq_"):])
			if err != nil {
				return nil, false
			}
			fields = filterFields(fields, func(f Field) bool { return re.MatchString(fieldSuffix(q, f)) })
		case strings.HasPrefix(seg, "nosq_"):
			re, err := regexp.Compile(seg[len("nosq_"):])
			if err != nil {
				return nil, false
			}
			fields = filterFields(fields, func(f Field) bool { return !re.MatchString(fieldSuffix(q, f)) })
		default:
			return nil, false
		}
	}
	return fields, true
}

func filterFields(fields []Field, keep func(Field) bool) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

func fieldSuffix(q *Question, f Field) string {
	return strings.TrimPrefix(f.Name, q.SGQA)
}
