package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoflowhq/autoflow/pkg/models"
)

func TestConditionValidate(t *testing.T) {
	t.Parallel()

	leaf := &models.Condition{Field: "{{entity.kind}}", Operator: string(models.CompareEquals), Value: "order"}

	tests := []struct {
		name      string
		condition *models.Condition
		wantErr   string
	}{
		{"nil means always true", nil, ""},
		{"valid leaf", leaf, ""},
		{
			"valid nested tree",
			&models.Condition{
				Operator: string(models.GroupAnd),
				Children: []*models.Condition{
					leaf,
					{
						Operator: string(models.GroupOr),
						Children: []*models.Condition{
							{Field: "{{entity.data.total}}", Operator: string(models.CompareGreaterThan), Value: 100},
							leaf,
						},
					},
				},
			},
			"",
		},
		{
			"group without children",
			&models.Condition{Operator: string(models.GroupOr)},
			"no children",
		},
		{
			"group with null child",
			&models.Condition{Operator: string(models.GroupAnd), Children: []*models.Condition{nil}},
			"null child",
		},
		{
			"nested invalid leaf",
			&models.Condition{
				Operator: string(models.GroupAnd),
				Children: []*models.Condition{
					{Operator: string(models.CompareEquals), Value: "x"},
				},
			},
			"empty field",
		},
		{
			"unknown comparator",
			&models.Condition{Field: "{{entity.kind}}", Operator: "resembles", Value: "order"},
			"unknown condition operator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.condition.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConditionIsGroup(t *testing.T) {
	t.Parallel()

	assert.True(t, (&models.Condition{Operator: string(models.GroupAnd)}).IsGroup())
	assert.True(t, (&models.Condition{Operator: string(models.GroupOr)}).IsGroup())
	assert.False(t, (&models.Condition{Operator: string(models.CompareEquals)}).IsGroup())
}
