// Package conditions evaluates a workflow's boolean expression tree
// against the firing context. Evaluation is fail-closed: malformed
// nodes and unknown operators yield false plus a configuration error,
// never a panic that could reach the dispatcher.
package conditions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/template"
)

// Evaluate walks the condition tree against the template data. A nil
// condition means "always true". The returned error is non-nil only for
// configuration problems (empty group, unknown operator); the boolean
// result is false in that case.
func Evaluate(condition *models.Condition, data map[string]any) (bool, error) {
	if condition == nil {
		return true, nil
	}

	if condition.IsGroup() {
		return evaluateGroup(condition, data)
	}

	return evaluateLeaf(condition, data)
}

func evaluateGroup(group *models.Condition, data map[string]any) (bool, error) {
	if len(group.Children) == 0 {
		return false, fmt.Errorf("condition group %q has no children", group.Operator)
	}

	switch models.GroupOperator(group.Operator) {
	case models.GroupAnd:
		for _, child := range group.Children {
			ok, err := Evaluate(child, data)
			if err != nil {
				return false, err
			}

			if !ok {
				return false, nil
			}
		}

		return true, nil
	case models.GroupOr:
		var firstErr error

		for _, child := range group.Children {
			ok, err := Evaluate(child, data)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}

				continue
			}

			if ok {
				return true, nil
			}
		}

		return false, firstErr
	default:
		return false, fmt.Errorf("unknown group operator %q", group.Operator)
	}
}

func evaluateLeaf(leaf *models.Condition, data map[string]any) (bool, error) {
	if leaf.Field == "" {
		return false, fmt.Errorf("condition leaf has an empty field")
	}

	// Field is a template path; it may also arrive wrapped in
	// placeholder delimiters, which resolve to the path's value directly.
	path := leaf.Field
	if strings.Contains(path, "{{") {
		path = strings.TrimSpace(strings.Trim(path, "{}"))
	}

	fieldValue, _ := template.Lookup(path, data)

	compareValue := leaf.Value
	if s, ok := compareValue.(string); ok {
		compareValue = template.Resolve(s, data)
	}

	switch models.Comparator(leaf.Operator) {
	case models.CompareEquals:
		return valuesEqual(fieldValue, compareValue), nil
	case models.CompareNotEquals:
		return !valuesEqual(fieldValue, compareValue), nil
	case models.CompareContains:
		return contains(fieldValue, compareValue), nil
	case models.CompareGreaterThan:
		return numericCompare(fieldValue, compareValue, func(a, b float64) bool { return a > b }), nil
	case models.CompareLessThan:
		return numericCompare(fieldValue, compareValue, func(a, b float64) bool { return a < b }), nil
	default:
		return false, fmt.Errorf("unknown condition operator %q", leaf.Operator)
	}
}

// valuesEqual compares numerically when both sides parse as numbers,
// otherwise by exact string form.
func valuesEqual(a, b any) bool {
	na, okA := toNumber(a)
	nb, okB := toNumber(b)

	if okA && okB {
		return na == nb
	}

	return asString(a) == asString(b)
}

func contains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		return strings.Contains(h, asString(needle))
	case []any:
		for _, item := range h {
			if valuesEqual(item, needle) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func numericCompare(a, b any, cmp func(a, b float64) bool) bool {
	na, okA := toNumber(a)
	nb, okB := toNumber(b)

	if !okA || !okB {
		return false
	}

	return cmp(na, nb)
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

		return n, err == nil
	default:
		return 0, false
	}
}

func asString(value any) string {
	if value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}
