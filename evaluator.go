// evaluator.go is the public entry point of the package: it wires the
// splitter, expander, lexer, parser, and function registry together
// behind the operations spec §6 names (evaluate, processString,
// toTargetExpression, booleanEvaluate, registerFunctions, tokenize).
package expression

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Evaluator is the host-facing object. It is not safe for concurrent
// evaluation (spec §5): callers wanting parallelism use one instance
// per goroutine or serialize calls externally.
type Evaluator struct {
	resolver  VariableResolver
	questions QuestionResolver
	self      *Question
	registry  *Registry
	expander  *expander
	log       zerolog.Logger

	lastState *EvalState
}

// Option configures an Evaluator at construction time.
type Option func(*Evaluator)

// WithLogger overrides the no-op default logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// WithSelfQuestion sets the question used to resolve bare "self..."
// references (spec §4.6).
func WithSelfQuestion(q *Question) Option {
	return func(e *Evaluator) { e.self = q }
}

// New builds an Evaluator over the given resolvers. Either resolver may
// be nil for hosts that never reference variables or self/that
// expansion.
func New(resolver VariableResolver, questions QuestionResolver, opts ...Option) *Evaluator {
	e := &Evaluator{
		resolver:  resolver,
		questions: questions,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registry = NewRegistry(e.log)
	e.expander = newExpander(e.questions, e.self, e.log)
	return e
}

// RegisterFunctions merges fns into this instance's function overlay
// (spec §6). Registration must not race with an in-flight Evaluate
// call (spec §5).
func (e *Evaluator) RegisterFunctions(fns map[string]FunctionSpec) {
	e.registry.Register(fns)
}

// Tokenize is the diagnostic/edit surface of spec §6: editMode retains
// SPACE tokens and preserves offsets.
func (e *Evaluator) Tokenize(src string, editMode bool) []Token {
	return NewLexer(src, editMode).Tokenize()
}

// Evaluate parses and evaluates expr, recording the result for Result,
// any diagnostics for Errors, and the referenced variable surface forms
// for VarsUsed. It returns true iff evaluation completed with no
// recorded errors.
func (e *Evaluator) Evaluate(expr string, parseOnly bool) bool {
	return e.evaluateWithScope(expr, parseOnly, -1, -1)
}

func (e *Evaluator) evaluateWithScope(expr string, parseOnly bool, groupSeq, questionSeq int) bool {
	id := uuid.New()
	tokens := e.expander.ExpandTokens(NewLexer(expr, false).Tokenize())
	state := NewEvalState(tokens, e.resolver, e.registry, parseOnly, groupSeq, questionSeq)
	state.Parse()
	e.lastState = state
	e.log.Debug().Str("call_id", id.String()).Int("errors", len(state.Errors)).Msg("evaluate")
	return len(state.Errors) == 0
}

// Result returns the last Evaluate/ProcessString call's final value.
func (e *Evaluator) Result() Value {
	if e.lastState == nil {
		return NullValue(0)
	}
	return e.lastState.Result()
}

// Errors returns the last call's diagnostics, ordered by source offset.
func (e *Evaluator) Errors() []*EvalError {
	if e.lastState == nil {
		return nil
	}
	return ByOffset(e.lastState.Errors)
}

// VarsUsed returns the surface forms of every variable referenced by
// the last call.
func (e *Evaluator) VarsUsed() []string {
	if e.lastState == nil {
		return nil
	}
	out := make([]string, 0, len(e.lastState.VarsUsed))
	for name := range e.lastState.VarsUsed {
		out = append(out, name)
	}
	return out
}

// ToTargetExpression re-emits expr in the client-side surface (spec
// §4.7), after the same self/that expansion Evaluate applies.
func (e *Evaluator) ToTargetExpression(expr string) string {
	tokens := e.expander.ExpandTokens(NewLexer(expr, false).Tokenize())
	return newEmitState(tokens, e.registry).Emit()
}

// BooleanEvaluate implements spec §6's relevance-aware boolean surface:
// false on any error, a null result, or a referenced variable whose
// relevanceStatus is false — unless that variable's own reference ends
// in .NAOK or .relevanceStatus.
func (e *Evaluator) BooleanEvaluate(expr string, groupSeq, questionSeq int) bool {
	ok := e.evaluateWithScope(expr, false, groupSeq, questionSeq)
	if !ok {
		return false
	}
	result := e.Result()
	if result.IsNull {
		return false
	}
	for name := range e.lastState.VarsUsed {
		if strings.HasSuffix(name, ".NAOK") || strings.HasSuffix(name, ".relevanceStatus") {
			continue
		}
		ref, ok := ParseVariableReference(name)
		if !ok || e.resolver == nil {
			continue
		}
		if !isRelevant(e.resolver, ref.Root, groupSeq, questionSeq) {
			return false
		}
	}
	return result.Truthy()
}

// ProcessString implements spec §6's host-string substitution pass:
// split into literal/expression segments, evaluate each expression
// segment, substitute, and repeat up to recursionLevels times (an
// expanded expression may itself contain braces produced by a variable
// value), finally unescaping \{ and \}.
func (e *Evaluator) ProcessString(src string, recursionLevels, groupSeq, questionSeq int) string {
	if recursionLevels < 1 {
		recursionLevels = 1
	}
	out := src
	for i := 0; i < recursionLevels; i++ {
		next := e.substituteOnce(out, groupSeq, questionSeq)
		if next == out {
			break
		}
		out = next
	}
	return UnescapeBraces(out)
}

func (e *Evaluator) substituteOnce(src string, groupSeq, questionSeq int) string {
	segs := SplitSegments(src)
	var b strings.Builder
	for _, seg := range segs {
		if seg.Kind == SegString {
			b.WriteString(seg.Text)
			continue
		}
		e.evaluateWithScope(seg.Text, false, groupSeq, questionSeq)
		if len(e.lastState.Errors) > 0 {
			b.WriteString("{" + seg.Text + "}")
			continue
		}
		b.WriteString(e.Result().Raw)
	}
	return b.String()
}
