// resolver.go defines the two abstractions §6 injects into the
// evaluator so it never touches the survey data model directly: reading
// and writing variables, and looking a question up by its code.
package expression

// VariableResolver is the read/write channel to externally-owned
// variable storage (spec §6). Read's attr is nil to ask for the stored
// value itself, or the name of an attribute (per VariableReference's
// allowed set) otherwise. Write's op is the assignment operator that
// produced the call (only "=" is reachable from the current grammar;
// the others are carried for hosts that extend it).
type VariableResolver interface {
	Read(name string, attr *string, groupSeq, questionSeq int) (Value, error)
	Write(op, name string, value Value) (Value, error)
}

// Field is one concrete survey-question field, e.g. a subquestion or a
// comment field attached to a question.
type Field struct {
	Name string
	Code string
}

// Question is what a QuestionResolver returns for a code lookup.
type Question struct {
	SGQA   string
	Fields []Field
}

// QuestionResolver looks a question up by its code, for self/that
// expansion (spec §4.6).
type QuestionResolver interface {
	GetByCode(code string) (*Question, bool)
}

// VariableReference is a parsed dotted variable name (spec §3): an
// optional INSERTANS: prefix, a root (SGQA or WORD form), and an
// optional trailing attribute.
type VariableReference struct {
	Root       string
	Attr       string // "" when absent
	HasAttr    bool
	InsertAns  bool
	RawSurface string // the original text, for the referenced-variables set
}

// ParseVariableReference validates name against the VariableReference
// grammar (spec §3) and, when attr is present, that it belongs to the
// allowed attribute set. Returns ok=false when the shape is invalid.
func ParseVariableReference(name string) (VariableReference, bool) {
	ref := VariableReference{RawSurface: name}
	rest := name
	if len(rest) > len("INSERTANS:") && rest[:len("INSERTANS:")] == "INSERTANS:" {
		ref.InsertAns = true
		rest = rest[len("INSERTANS:"):]
	}
	root := rest
	// Only the trailing dot segment can be an attribute; if it isn't in
	// the allowed set, the dot is part of a dotted WORD root instead of
	// an attribute suffix, per spec grammar ("root, optionally followed
	// by .attr").
	if i := lastAttrDot(rest); i >= 0 {
		attr := rest[i+1:]
		if IsAllowedAttr(attr) {
			root = rest[:i]
			ref.Attr, ref.HasAttr = attr, true
		}
	}
	if root == "" {
		return VariableReference{}, false
	}
	ref.Root = root
	return ref, true
}

// lastAttrDot returns the index of the last '.' in s, or -1 if there is
// none. It does not look at the suffix; the caller decides whether the
// text after the dot is an allowed attribute.
func lastAttrDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
