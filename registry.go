// registry.go implements the whitelisted function table of spec §4.5: a
// process-wide immutable default registry plus a per-Evaluator overlay
// merged in by RegisterFunctions. Dispatch enforces the arity rule and,
// in parse-only mode, short-circuits every call to the placeholder value
// 1 (tagged NUMBER) once arity has been checked.
package expression

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// Arity encodes spec §4.5's allowed-arities rule: either an explicit set
// of non-negative counts, or a single negative int N meaning "at least
// (|N|-1) arguments, unbounded above".
type Arity []int

// Allows reports whether n arguments satisfies this arity spec.
func (a Arity) Allows(n int) bool {
	if len(a) == 1 && a[0] < 0 {
		return n >= -a[0]-1
	}
	for _, want := range a {
		if want == n {
			return true
		}
	}
	return false
}

// Describe renders the allowed arities for an error message.
func (a Arity) Describe() string {
	if len(a) == 1 && a[0] < 0 {
		return numericAtLeast(-a[0] - 1)
	}
	return numericSet(a)
}

func numericAtLeast(n int) string {
	if n <= 0 {
		return "any number of arguments"
	}
	if n == 1 {
		return "at least 1 argument"
	}
	return "at least " + strconv.Itoa(n) + " arguments"
}

func numericSet(a []int) string {
	if len(a) == 0 {
		return "no arguments"
	}
	s := "{"
	for i, n := range a {
		if i > 0 {
			s += ", "
		}
		s += strconv.Itoa(n)
	}
	return s + "}"
}

// FunctionImpl is the dispatch-time signature every registry entry
// implements. args are already-evaluated Values in call order; offset is
// the call site's source offset, for error attribution.
type FunctionImpl func(args []Value, offset int) (Value, *EvalError)

// FunctionSpec describes one whitelisted callable (spec §3).
type FunctionSpec struct {
	Name        string // local (engine-side) name
	TargetName  string // client-surface name; "NA" means unsupported client-side
	Description string
	Signature   string
	DocURL      string
	Arity       Arity
	Impl        FunctionImpl
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     map[string]FunctionSpec
)

// DefaultRegistry returns the process-wide immutable function table (spec
// §4.5, enumerated in spec §6). Callers must never mutate the returned
// map; Registry.Register writes only to its per-instance overlay.
func DefaultRegistry() map[string]FunctionSpec {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = map[string]FunctionSpec{}
		registerNumericFunctions(defaultRegistry)
		registerStringFunctions(defaultRegistry)
		registerDateFunctions(defaultRegistry)
		registerSurveyFunctions(defaultRegistry)
	})
	return defaultRegistry
}

// Registry is the per-Evaluator view of the function table: the immutable
// defaults, overlaid with whatever RegisterFunctions has added for this
// instance only. It is never shared across Evaluator instances, so two
// Evaluators registering conflicting overrides never interfere with each
// other (spec §9: "avoid true global mutable state").
type Registry struct {
	overlay map[string]FunctionSpec
	log     zerolog.Logger
}

// NewRegistry returns a Registry backed by DefaultRegistry with an empty
// overlay.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{overlay: map[string]FunctionSpec{}, log: log}
}

// Register merges fns into this instance's overlay, shadowing any default
// (or previously registered) entry with the same name.
func (r *Registry) Register(fns map[string]FunctionSpec) {
	for name, spec := range fns {
		r.overlay[name] = spec
	}
}

// Lookup finds a function by name, preferring the overlay over the
// process-wide defaults.
func (r *Registry) Lookup(name string) (FunctionSpec, bool) {
	if spec, ok := r.overlay[name]; ok {
		return spec, true
	}
	spec, ok := DefaultRegistry()[name]
	return spec, ok
}

// Dispatch checks arity and, unless parseOnly is set, invokes the
// function's implementation. In parse-only mode every call that passes
// its arity check returns the placeholder Value 1 (tagged NUMBER)
// without running the implementation, validating syntax without side
// effects (spec §4.5).
func (r *Registry) Dispatch(name string, args []Value, offset int, parseOnly bool) (Value, *EvalError) {
	spec, ok := r.Lookup(name)
	if !ok {
		return Value{}, newSyntaxError(offset, name, "undefined function")
	}
	if !spec.Arity.Allows(len(args)) {
		return Value{}, newArityError(offset, name,
			"%s takes %s, got %d", name, spec.Arity.Describe(), len(args))
	}
	r.log.Debug().Str("function", name).Int("argc", len(args)).Bool("parse_only", parseOnly).Msg("dispatch")
	if parseOnly {
		return NumberValue(1, offset), nil
	}
	return spec.Impl(args, offset)
}
