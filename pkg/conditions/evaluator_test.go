package conditions_test

import (
	"testing"

	"github.com/autoflowhq/autoflow/pkg/conditions"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextData() map[string]any {
	return map[string]any{
		"entity": map[string]any{
			"data": map[string]any{
				"status": "COMPLETED",
				"total":  150.0,
				"tags":   []any{"invoice", "paid"},
				"email":  "a@b.com",
			},
		},
		"expected": map[string]any{
			"status": "COMPLETED",
		},
	}
}

func leaf(field, operator string, value any) *models.Condition {
	return &models.Condition{Field: field, Operator: operator, Value: value}
}

func group(operator string, children ...*models.Condition) *models.Condition {
	return &models.Condition{Operator: operator, Children: children}
}

func TestEvaluateNilConditionIsTrue(t *testing.T) {
	t.Parallel()

	result, err := conditions.Evaluate(nil, contextData())
	require.NoError(t, err)
	assert.True(t, result)
}

func TestEvaluateLeafComparators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		condition *models.Condition
		expected  bool
	}{
		{
			name:      "equals on string",
			condition: leaf("entity.data.status", "equals", "COMPLETED"),
			expected:  true,
		},
		{
			name:      "equals with templated value",
			condition: leaf("entity.data.status", "equals", "{{expected.status}}"),
			expected:  true,
		},
		{
			name:      "equals numeric coercion",
			condition: leaf("entity.data.total", "equals", "150"),
			expected:  true,
		},
		{
			name:      "not_equals",
			condition: leaf("entity.data.status", "not_equals", "PENDING"),
			expected:  true,
		},
		{
			name:      "contains substring",
			condition: leaf("entity.data.email", "contains", "@b."),
			expected:  true,
		},
		{
			name:      "contains sequence membership",
			condition: leaf("entity.data.tags", "contains", "paid"),
			expected:  true,
		},
		{
			name:      "contains on non-sequence non-string",
			condition: leaf("entity.data.total", "contains", "1"),
			expected:  false,
		},
		{
			name:      "greater_than",
			condition: leaf("entity.data.total", "greater_than", 100),
			expected:  true,
		},
		{
			name:      "less_than false",
			condition: leaf("entity.data.total", "less_than", 100),
			expected:  false,
		},
		{
			name:      "greater_than with non-numeric operand",
			condition: leaf("entity.data.status", "greater_than", 10),
			expected:  false,
		},
		{
			name:      "missing field equals fails",
			condition: leaf("entity.data.missing", "equals", "x"),
			expected:  false,
		},
		{
			name:      "missing field not_equals holds",
			condition: leaf("entity.data.missing", "not_equals", "x"),
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := conditions.Evaluate(tt.condition, contextData())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateGroups(t *testing.T) {
	t.Parallel()

	statusOK := leaf("entity.data.status", "equals", "COMPLETED")
	statusBad := leaf("entity.data.status", "equals", "PENDING")

	result, err := conditions.Evaluate(group("AND", statusOK, statusBad), contextData())
	require.NoError(t, err)
	assert.False(t, result)

	result, err = conditions.Evaluate(group("OR", statusBad, statusOK), contextData())
	require.NoError(t, err)
	assert.True(t, result)

	nested := group("AND", statusOK, group("OR", statusBad, statusOK))
	result, err = conditions.Evaluate(nested, contextData())
	require.NoError(t, err)
	assert.True(t, result)
}

func TestEvaluateAndShortCircuits(t *testing.T) {
	t.Parallel()

	// The second child is malformed; AND must return before reaching it
	// once the first child is false.
	malformed := leaf("", "equals", "x")
	first := leaf("entity.data.status", "equals", "PENDING")

	result, err := conditions.Evaluate(group("AND", first, malformed), contextData())
	require.NoError(t, err, "short-circuit must skip the malformed child")
	assert.False(t, result)
}

func TestEvaluateOrShortCircuits(t *testing.T) {
	t.Parallel()

	malformed := leaf("", "equals", "x")
	first := leaf("entity.data.status", "equals", "COMPLETED")

	result, err := conditions.Evaluate(group("OR", first, malformed), contextData())
	require.NoError(t, err)
	assert.True(t, result)
}

func TestEvaluateFailsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		condition *models.Condition
	}{
		{
			name:      "empty group",
			condition: &models.Condition{Operator: "AND"},
		},
		{
			name:      "unknown operator",
			condition: leaf("entity.data.status", "matches_regex", ".*"),
		},
		{
			name:      "empty leaf field",
			condition: leaf("", "equals", "x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := conditions.Evaluate(tt.condition, contextData())
			require.Error(t, err)
			assert.False(t, result, "configuration errors fail closed")
		})
	}
}
