package expression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVar struct {
	value      Value
	attrs      map[string]Value
	readWriteY bool
}

type fakeResolver struct {
	vars map[string]*fakeVar
}

func newFakeResolver() *fakeResolver { return &fakeResolver{vars: map[string]*fakeVar{}} }

func (r *fakeResolver) set(name string, v Value, readWrite bool, attrs map[string]Value) {
	r.vars[name] = &fakeVar{value: v, attrs: attrs, readWriteY: readWrite}
}

func (r *fakeResolver) Read(name string, attr *string, groupSeq, questionSeq int) (Value, error) {
	fv, ok := r.vars[name]
	if !ok {
		return Value{}, errors.New("unknown variable " + name)
	}
	if attr == nil {
		return fv.value, nil
	}
	switch *attr {
	case "readWrite":
		if fv.readWriteY {
			return StringValue("Y", 0, OriginString), nil
		}
		return StringValue("N", 0, OriginString), nil
	default:
		if v, ok := fv.attrs[*attr]; ok {
			return v, nil
		}
		return Value{}, errors.New("unknown attribute " + *attr)
	}
}

func (r *fakeResolver) Write(op, name string, value Value) (Value, error) {
	fv, ok := r.vars[name]
	if !ok {
		return Value{}, errors.New("unknown variable " + name)
	}
	fv.value = value
	return value, nil
}

func evalExpr(t *testing.T, src string, resolver VariableResolver) *EvalState {
	t.Helper()
	toks := NewLexer(src, false).Tokenize()
	reg := NewRegistry(testLogger())
	state := NewEvalState(toks, resolver, reg, false, -1, -1)
	state.Parse()
	return state
}

func TestParser_Arithmetic(t *testing.T) {
	st := evalExpr(t, "1+2*3", nil)
	assert.Empty(t, st.Errors)
	assert.Equal(t, "7", st.Result().Raw)
}

func TestParser_Parentheses(t *testing.T) {
	st := evalExpr(t, "(1+2)*3", nil)
	assert.Empty(t, st.Errors)
	assert.Equal(t, "9", st.Result().Raw)
}

func TestParser_UnaryAndNot(t *testing.T) {
	st := evalExpr(t, "!0", nil)
	assert.Equal(t, "1", st.Result().Raw)

	st = evalExpr(t, "-5+2", nil)
	assert.Equal(t, "-3", st.Result().Raw)
}

func TestParser_LogicalWordForms(t *testing.T) {
	st := evalExpr(t, "1 and 0", nil)
	assert.Equal(t, "", st.Result().Raw)

	st = evalExpr(t, "1 lt 2", nil)
	assert.Equal(t, "1", st.Result().Raw)
}

func TestParser_CommaSequencing(t *testing.T) {
	st := evalExpr(t, "1,2,3", nil)
	assert.Empty(t, st.Errors)
	assert.Equal(t, "3", st.Result().Raw)
}

func TestParser_FunctionCall(t *testing.T) {
	st := evalExpr(t, "max(1,5,3)", nil)
	assert.Empty(t, st.Errors)
	assert.Equal(t, "5", st.Result().Raw)
}

func TestParser_ArityErrorRecorded(t *testing.T) {
	st := evalExpr(t, "pi(1)", nil)
	require.NotEmpty(t, st.Errors)
	assert.Equal(t, ArityError, st.Errors[0].Kind)
}

func TestParser_UndefinedFunctionIsSyntaxError(t *testing.T) {
	st := evalExpr(t, "bogus(1)", nil)
	require.NotEmpty(t, st.Errors)
	assert.Equal(t, SyntaxError, st.Errors[0].Kind)
}

func TestParser_UndefinedVariableIsSyntaxError(t *testing.T) {
	st := evalExpr(t, "undefined_var", newFakeResolver())
	require.NotEmpty(t, st.Errors)
	assert.Equal(t, SyntaxError, st.Errors[0].Kind)
}

func TestParser_VariableReadOriginWord(t *testing.T) {
	r := newFakeResolver()
	r.set("Q1", StringValue("hello", 0, OriginString), false, nil)
	st := evalExpr(t, "Q1", r)
	assert.Empty(t, st.Errors)
	assert.Equal(t, "hello", st.Result().Raw)
	assert.Equal(t, OriginWord, st.Result().Origin)
	assert.True(t, st.VarsUsed["Q1"])
}

func TestParser_VariableReadOnlynumOriginNumber(t *testing.T) {
	r := newFakeResolver()
	r.set("Q1", StringValue("42", 0, OriginString), false, map[string]Value{
		"onlynum": BoolValue(true, 0),
	})
	st := evalExpr(t, "Q1", r)
	assert.Equal(t, OriginNumber, st.Result().Origin)
}

func TestParser_VariableReadNotRelevantYieldsOpaqueNull(t *testing.T) {
	r := newFakeResolver()
	r.set("Q1", StringValue("42", 0, OriginString), false, map[string]Value{
		"relevanceStatus": BoolValue(false, 0),
	})
	st := evalExpr(t, "Q1", r)
	assert.True(t, st.Result().IsNull)
	assert.Equal(t, OriginNumber, st.Result().Origin)
}

func TestParser_AssignmentRequiresReadWrite(t *testing.T) {
	r := newFakeResolver()
	r.set("a", StringValue("0", 0, OriginString), true, nil)
	st := evalExpr(t, "a=5", r)
	assert.Empty(t, st.Errors)
	assert.Equal(t, "5", st.Result().Raw)

	r2 := newFakeResolver()
	r2.set("b", StringValue("0", 0, OriginString), false, nil)
	st2 := evalExpr(t, "b=5", r2)
	require.NotEmpty(t, st2.Errors)
	assert.Equal(t, TypeError, st2.Errors[0].Kind)
}

func TestParser_ParseOnlyShortCircuitsFunctionsAndVariables(t *testing.T) {
	toks := NewLexer("count(Q1,Q2)", false).Tokenize()
	reg := NewRegistry(testLogger())
	st := NewEvalState(toks, nil, reg, true, -1, -1)
	st.Parse()
	assert.Empty(t, st.Errors)
	assert.Equal(t, "1", st.Result().Raw)
}

func TestParser_UnmatchedParenIsSyntaxError(t *testing.T) {
	st := evalExpr(t, "(1+2", nil)
	require.NotEmpty(t, st.Errors)
	assert.Equal(t, SyntaxError, st.Errors[0].Kind)
}
