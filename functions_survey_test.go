package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sv(v string) Value { return StringValue(v, 0, OriginDQString) }
func nv(v float64) Value { return NumberValue(v, 0) }

func TestSurveyFunctions_CountAndUnique(t *testing.T) {
	reg := NewRegistry(testLogger())

	got, err := reg.Dispatch("count", []Value{sv(""), sv("a"), sv("b"), sv("")}, 0, false)
	require.Nil(t, err)
	assert.Equal(t, "2", got.Raw)

	got, err = reg.Dispatch("unique", []Value{sv("a"), sv("b"), sv("a")}, 0, false)
	require.Nil(t, err)
	assert.False(t, got.Truthy())
}

func TestSurveyFunctions_If(t *testing.T) {
	reg := NewRegistry(testLogger())
	got, err := reg.Dispatch("if", []Value{nv(1), sv("yes"), sv("no")}, 0, false)
	require.Nil(t, err)
	assert.Equal(t, "yes", got.Raw)
}

func TestSurveyFunctions_Countifop(t *testing.T) {
	reg := NewRegistry(testLogger())
	got, err := reg.Dispatch("countifop", []Value{sv(">"), nv(2), nv(1), nv(2), nv(3), nv(4)}, 0, false)
	require.Nil(t, err)
	assert.Equal(t, "2", got.Raw)

	got, err = reg.Dispatch("countifop", []Value{sv("RX"), sv("^[a-z]+$"), sv("aa"), sv("1"), sv("bb")}, 0, false)
	require.Nil(t, err)
	assert.Equal(t, "2", got.Raw)
}

func TestSurveyFunctions_Sum_Stddev(t *testing.T) {
	reg := NewRegistry(testLogger())
	got, err := reg.Dispatch("sum", []Value{nv(1), nv(2), nv(3)}, 0, false)
	require.Nil(t, err)
	assert.Equal(t, "6", got.Raw)

	got, err = reg.Dispatch("stddev", []Value{nv(1)}, 0, false)
	require.Nil(t, err)
	assert.True(t, got.IsNumericIsh())
	assert.True(t, got.AsFloat() != got.AsFloat()) // NaN
}

func TestSurveyFunctions_IsEmpty(t *testing.T) {
	reg := NewRegistry(testLogger())
	got, err := reg.Dispatch("is_empty", []Value{NullValue(0)}, 0, false)
	require.Nil(t, err)
	assert.True(t, got.Truthy())

	got, err = reg.Dispatch("is_empty", []Value{sv("x")}, 0, false)
	require.Nil(t, err)
	assert.False(t, got.Truthy())
}

func TestSurveyFunctions_ConvertValue(t *testing.T) {
	reg := NewRegistry(testLogger())
	got, err := reg.Dispatch("convert_value", []Value{nv(2.4), nv(0), sv("1,2,3"), sv("a,b,c")}, 0, false)
	require.Nil(t, err)
	assert.Equal(t, "b", got.Raw)

	got, err = reg.Dispatch("convert_value", []Value{nv(2.4), nv(1), sv("1,2,3"), sv("a,b,c")}, 0, false)
	require.Nil(t, err)
	assert.True(t, got.IsNull)
}

func TestSurveyFunctions_JoinImplode(t *testing.T) {
	reg := NewRegistry(testLogger())
	got, err := reg.Dispatch("join", []Value{sv("-"), sv("a"), sv("b"), sv("c")}, 0, false)
	require.Nil(t, err)
	assert.Equal(t, "a-b-c", got.Raw)
}

func TestSurveyFunctions_RegexMatch(t *testing.T) {
	reg := NewRegistry(testLogger())
	got, err := reg.Dispatch("regexMatch", []Value{sv("^[a-z]+$"), sv("abc")}, 0, false)
	require.Nil(t, err)
	assert.True(t, got.Truthy())

	got, err = reg.Dispatch("regexMatch", []Value{sv("("), sv("abc")}, 0, false)
	require.Nil(t, err)
	assert.False(t, got.Truthy())
}
