package models

import "fmt"

// GroupOperator combines the results of a condition group's children.
type GroupOperator string

const (
	GroupAnd GroupOperator = "AND"
	GroupOr  GroupOperator = "OR"
)

// Comparator names the comparison applied by a condition leaf.
type Comparator string

const (
	CompareEquals      Comparator = "equals"
	CompareNotEquals   Comparator = "not_equals"
	CompareContains    Comparator = "contains"
	CompareGreaterThan Comparator = "greater_than"
	CompareLessThan    Comparator = "less_than"
)

// Condition is a node in a boolean expression tree. A node is either a
// group (Operator AND/OR with at least one child) or a leaf (Field,
// Operator naming a comparator, Value). Field is a template path resolved
// against the firing context; Value may itself contain placeholders.
type Condition struct {
	Operator string       `json:"operator"`
	Children []*Condition `json:"children,omitempty"`
	Field    string       `json:"field,omitempty"`
	Value    any          `json:"value,omitempty"`
}

// IsGroup reports whether the node is a group operator node.
func (c *Condition) IsGroup() bool {
	return c.Operator == string(GroupAnd) || c.Operator == string(GroupOr)
}

// Validate walks the tree and rejects structurally malformed nodes:
// groups without children and leaves without a field or with an unknown
// comparator. A nil condition is valid and means "always true".
func (c *Condition) Validate() error {
	if c == nil {
		return nil
	}

	if c.IsGroup() {
		if len(c.Children) == 0 {
			return fmt.Errorf("condition group %q has no children", c.Operator)
		}

		for _, child := range c.Children {
			if child == nil {
				return fmt.Errorf("condition group %q has a null child", c.Operator)
			}

			if err := child.Validate(); err != nil {
				return err
			}
		}

		return nil
	}

	if c.Field == "" {
		return fmt.Errorf("condition leaf has an empty field")
	}

	switch Comparator(c.Operator) {
	case CompareEquals, CompareNotEquals, CompareContains, CompareGreaterThan, CompareLessThan:
		return nil
	default:
		return fmt.Errorf("unknown condition operator %q", c.Operator)
	}
}
