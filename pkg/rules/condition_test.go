package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalConditionAndOrNot(t *testing.T) {
	results := map[string]bool{"a": true, "b": false, "c": true}

	cases := []struct {
		cond string
		want bool
	}{
		{"a", true},
		{"b", false},
		{"a and c", true},
		{"a and b", false},
		{"a or b", true},
		{"not b", true},
		{"a and not b", true},
		{"(a or b) and c", true},
		{"b and (a or c)", false},
	}
	for _, tc := range cases {
		got, err := evalCondition(tc.cond, results)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.cond)
	}
}

func TestEvalConditionOfThem(t *testing.T) {
	results := map[string]bool{"sel1": true, "sel2": false}
	got, err := evalCondition("1 of them", results)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = evalCondition("all of them", results)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvalConditionWildcardSelection(t *testing.T) {
	results := map[string]bool{"selection_a": false, "selection_b": true}
	got, err := evalCondition("selection_*", results)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvalConditionUnknownSelectionErrors(t *testing.T) {
	_, err := evalCondition("nonexistent", map[string]bool{})
	assert.Error(t, err)
}
