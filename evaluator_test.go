package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator(resolver VariableResolver, questions QuestionResolver) *Evaluator {
	return New(resolver, questions, WithLogger(testLogger()))
}

func TestEvaluator_EvaluateArithmetic(t *testing.T) {
	e := newTestEvaluator(nil, nil)
	ok := e.Evaluate("1+2*3", false)
	assert.True(t, ok)
	assert.Equal(t, "7", e.Result().Raw)
	assert.Empty(t, e.Errors())
}

func TestEvaluator_EvaluateRecordsErrors(t *testing.T) {
	e := newTestEvaluator(nil, nil)
	ok := e.Evaluate("bogus(1)", false)
	assert.False(t, ok)
	require.NotEmpty(t, e.Errors())
	assert.Equal(t, SyntaxError, e.Errors()[0].Kind)
}

func TestEvaluator_VarsUsed(t *testing.T) {
	r := newFakeResolver()
	r.set("Q1", StringValue("5", 0, OriginString), false, nil)
	e := newTestEvaluator(r, nil)
	e.Evaluate("Q1+1", false)
	assert.ElementsMatch(t, []string{"Q1"}, e.VarsUsed())
}

func TestEvaluator_ToTargetExpression(t *testing.T) {
	e := newTestEvaluator(nil, nil)
	got := e.ToTargetExpression("1 and 0")
	assert.Equal(t, "(1 && 0)", got)
}

func TestEvaluator_RegisterFunctionsOverlay(t *testing.T) {
	e := newTestEvaluator(nil, nil)
	e.RegisterFunctions(map[string]FunctionSpec{
		"double": {
			Name:       "double",
			TargetName: "NA",
			Arity:      Arity{1},
			Impl: func(args []Value, offset int) (Value, *EvalError) {
				return NumberValue(args[0].AsFloat()*2, offset), nil
			},
		},
	})
	ok := e.Evaluate("double(21)", false)
	assert.True(t, ok)
	assert.Equal(t, "42", e.Result().Raw)
}

func TestEvaluator_BooleanEvaluate_FalseOnError(t *testing.T) {
	e := newTestEvaluator(nil, nil)
	assert.False(t, e.BooleanEvaluate("bogus(1)", -1, -1))
}

func TestEvaluator_BooleanEvaluate_FalseOnNull(t *testing.T) {
	r := newFakeResolver()
	r.set("Q1", StringValue("0", 0, OriginString), false, map[string]Value{
		"relevanceStatus": BoolValue(false, 0),
	})
	e := newTestEvaluator(r, nil)
	assert.False(t, e.BooleanEvaluate("Q1", -1, -1))
}

func TestEvaluator_BooleanEvaluate_FalseWhenReferencedVarNotRelevant(t *testing.T) {
	r := newFakeResolver()
	r.set("Q1", StringValue("5", 0, OriginString), false, map[string]Value{
		"relevanceStatus": BoolValue(false, 0),
	})
	e := newTestEvaluator(r, nil)
	// Q1 itself resolves fine (no .attr read), but isRelevant(Q1) is false
	// because Q1.relevanceStatus is false, so the guard trips even though
	// the expression's own value is truthy.
	assert.False(t, e.BooleanEvaluate("Q1 or 1", -1, -1))
}

func TestEvaluator_BooleanEvaluate_TruthyResult(t *testing.T) {
	r := newFakeResolver()
	r.set("Q1", StringValue("5", 0, OriginString), false, map[string]Value{
		"relevanceStatus": BoolValue(true, 0),
	})
	e := newTestEvaluator(r, nil)
	assert.True(t, e.BooleanEvaluate("Q1", -1, -1))
}

func TestEvaluator_ProcessString_LiteralPassthrough(t *testing.T) {
	e := newTestEvaluator(nil, nil)
	got := e.ProcessString("hello world", 1, -1, -1)
	assert.Equal(t, "hello world", got)
}

func TestEvaluator_ProcessString_SubstitutesExpression(t *testing.T) {
	r := newFakeResolver()
	r.set("Q1", StringValue("5", 0, OriginString), false, nil)
	e := newTestEvaluator(r, nil)
	got := e.ProcessString("value is {Q1+1}.", 1, -1, -1)
	assert.Equal(t, "value is 6.", got)
}

func TestEvaluator_ProcessString_SubstitutesOriginalTextOnError(t *testing.T) {
	e := newTestEvaluator(nil, nil)
	got := e.ProcessString("value: {undefined_var}", 1, -1, -1)
	assert.Equal(t, "value: {undefined_var}", got)
}

func TestEvaluator_ProcessString_UnescapesBraces(t *testing.T) {
	e := newTestEvaluator(nil, nil)
	got := e.ProcessString(`literal \{brace\}`, 1, -1, -1)
	assert.Equal(t, "literal {brace}", got)
}

func TestEvaluator_ProcessString_SelfExpansion(t *testing.T) {
	q := &Question{
		SGQA: "1X2X3",
		Fields: []Field{
			{Name: "1X2X3", Code: ""},
		},
	}
	questions := staticQuestionResolver{"1X2X3": q}
	r := newFakeResolver()
	r.set("1X2X3", StringValue("42", 0, OriginString), false, nil)
	e := newTestEvaluator(r, questions)
	e2 := New(r, questions, WithLogger(testLogger()), WithSelfQuestion(q))
	_ = e
	got := e2.ProcessString("answer: {self}", 1, -1, -1)
	assert.Equal(t, "answer: 42", got)
}

func TestEvaluator_SelfExpansionInFunctionArgument(t *testing.T) {
	q := &Question{
		SGQA: "1X2X3",
		Fields: []Field{
			{Name: "1X2X3_1", Code: "1"},
			{Name: "1X2X3_2", Code: "2"},
		},
	}
	r := newFakeResolver()
	r.set("1X2X3_1", StringValue("3", 0, OriginString), false, nil)
	r.set("1X2X3_2", StringValue("4", 0, OriginString), false, nil)
	e := New(r, nil, WithLogger(testLogger()), WithSelfQuestion(q))

	ok := e.Evaluate("sum(self)", false)
	assert.True(t, ok)
	assert.Equal(t, "7", e.Result().Raw)
}

type staticQuestionResolver map[string]*Question

func (m staticQuestionResolver) GetByCode(code string) (*Question, bool) {
	q, ok := m[code]
	return q, ok
}
