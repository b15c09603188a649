// Package template resolves {{path.to.value}} placeholders against a
// run context. It is pure substitution: a dot-separated path accessor,
// no functions, no arithmetic. A missing path resolves to an empty
// string rather than an error so a half-filled context never aborts a
// run.
package template

import (
	"fmt"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Resolve scans input for {{path}} tokens and replaces each with the
// stringified value found at that path in data. Unterminated tokens are
// left as-is.
func Resolve(input string, data map[string]any) string {
	if !strings.Contains(input, openDelim) {
		return input
	}

	var out strings.Builder

	rest := input
	for {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			out.WriteString(rest)

			break
		}

		end := strings.Index(rest[start:], closeDelim)
		if end < 0 {
			out.WriteString(rest)

			break
		}

		out.WriteString(rest[:start])

		path := strings.TrimSpace(rest[start+len(openDelim) : start+end])
		if value, ok := Lookup(path, data); ok && value != nil {
			out.WriteString(stringify(value))
		}

		rest = rest[start+end+len(closeDelim):]
	}

	return out.String()
}

// Lookup walks a dot-separated path into data and returns the raw value.
// The second return is false when any segment is missing or the walk
// hits a non-map value before the path ends.
func Lookup(path string, data map[string]any) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = data

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// ResolveConfig returns a copy of config with every string leaf resolved
// against data. Non-string values pass through untouched; nested maps
// and slices are walked.
func ResolveConfig(config map[string]any, data map[string]any) map[string]any {
	if config == nil {
		return nil
	}

	resolved := make(map[string]any, len(config))
	for key, value := range config {
		resolved[key] = resolveValue(value, data)
	}

	return resolved
}

func resolveValue(value any, data map[string]any) any {
	switch v := value.(type) {
	case string:
		return Resolve(v, data)
	case map[string]any:
		return ResolveConfig(v, data)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = resolveValue(item, data)
		}

		return items
	default:
		return value
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; render integers without the
		// trailing ".0" so ids and counts interpolate cleanly.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}

		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
