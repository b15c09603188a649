package template_test

import (
	"testing"

	"github.com/autoflowhq/autoflow/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() map[string]any {
	return map[string]any{
		"entity": map[string]any{
			"data": map[string]any{
				"email": "a@b.com",
				"count": 3.0,
				"ratio": 0.5,
			},
		},
		"user": map[string]any{
			"id": "u-1",
		},
		"flag": true,
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no placeholders",
			input:    "plain text",
			expected: "plain text",
		},
		{
			name:     "single path",
			input:    "{{entity.data.email}}",
			expected: "a@b.com",
		},
		{
			name:     "embedded in text",
			input:    "Welcome {{user.id}}!",
			expected: "Welcome u-1!",
		},
		{
			name:     "multiple placeholders",
			input:    "{{user.id}}:{{entity.data.email}}",
			expected: "u-1:a@b.com",
		},
		{
			name:     "missing path resolves to empty string",
			input:    "to={{entity.data.phone}}",
			expected: "to=",
		},
		{
			name:     "path through non-map resolves to empty string",
			input:    "{{user.id.deeper}}",
			expected: "",
		},
		{
			name:     "whole number renders without decimal point",
			input:    "{{entity.data.count}}",
			expected: "3",
		},
		{
			name:     "fractional number",
			input:    "{{entity.data.ratio}}",
			expected: "0.5",
		},
		{
			name:     "boolean value",
			input:    "{{flag}}",
			expected: "true",
		},
		{
			name:     "whitespace inside delimiters",
			input:    "{{ user.id }}",
			expected: "u-1",
		},
		{
			name:     "unterminated token left as-is",
			input:    "{{user.id",
			expected: "{{user.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, template.Resolve(tt.input, testData()))
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	value, ok := template.Lookup("entity.data.count", testData())
	require.True(t, ok)
	assert.Equal(t, 3.0, value)

	_, ok = template.Lookup("entity.data.missing", testData())
	assert.False(t, ok)

	_, ok = template.Lookup("", testData())
	assert.False(t, ok)
}

func TestResolveConfig(t *testing.T) {
	t.Parallel()

	config := map[string]any{
		"to":      "{{entity.data.email}}",
		"retries": 3,
		"nested": map[string]any{
			"subject": "Hi {{user.id}}",
		},
		"list": []any{"{{user.id}}", 7},
	}

	resolved := template.ResolveConfig(config, testData())

	assert.Equal(t, "a@b.com", resolved["to"])
	assert.Equal(t, 3, resolved["retries"], "non-string values pass through unresolved")
	assert.Equal(t, "Hi u-1", resolved["nested"].(map[string]any)["subject"])
	assert.Equal(t, []any{"u-1", 7}, resolved["list"])

	// The input config must not be mutated.
	assert.Equal(t, "{{entity.data.email}}", config["to"])
}
