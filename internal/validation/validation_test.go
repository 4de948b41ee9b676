package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsec/internal/models"
)

type sample struct {
	Level    models.RiskLevel `binding:"required,enum"`
	Priority models.Priority  `binding:"omitempty,enum"`
	Score    int              `binding:"min=1,max=5"`
	Criteria models.AssessmentCriteria
}

func TestEnumTag(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(sample{Level: models.RiskHigh, Score: 3}))

	err := v.Struct(sample{Level: "high", Priority: "Urgent", Score: 9})
	require.Error(t, err)
	msgs := Messages(err)
	assert.Contains(t, msgs, `level has invalid value "high"`)
	assert.Contains(t, msgs, `priority has invalid value "Urgent"`)
	assert.Contains(t, msgs, "score must be at most 5")
}

func TestEnumTag_Nested(t *testing.T) {
	v := New()
	s := sample{Level: models.RiskLow, Score: 1, Criteria: models.AssessmentCriteria{Frequency: "Weekly"}}

	err := v.Struct(s)

	require.Error(t, err)
	assert.Equal(t, []string{`criteria.frequency has invalid value "Weekly"`}, Messages(err))
}

func TestMessages_NonValidationError(t *testing.T) {
	assert.Equal(t, []string{"EOF"}, Messages(errors.New("EOF")))
}

type paging struct {
	Limit int `form:"limit" binding:"omitempty,max=100"`
}

type tagged struct {
	paging
	FrameworkID uint `json:"frameworkId" binding:"required"`
	Items       []struct {
		ControlID string `json:"controlId,omitempty" binding:"required"`
	} `json:"items" binding:"dive"`
}

func TestMessages_UseTagNames(t *testing.T) {
	v := New()
	s := tagged{paging: paging{Limit: 500}}
	s.Items = append(s.Items, struct {
		ControlID string `json:"controlId,omitempty" binding:"required"`
	}{})

	err := v.Struct(s)

	require.Error(t, err)
	msgs := Messages(err)
	assert.ElementsMatch(t, []string{
		"limit must be at most 100",
		"frameworkId is required",
		"items[0].controlId is required",
	}, msgs)
}
