package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsec/internal/models"
)

func TestFindGaps_Scenario(t *testing.T) {
	fw := &models.ComplianceFramework{Name: "ISO 27005"}
	partial := assessmentAt(1, models.StatusCompleted, pct(60), now)
	partial.Framework = fw
	partial.Results = []models.AssessmentResult{
		{ControlID: "A.8.1.1", ControlTitle: "Inventory of Assets", Status: models.ResultPartiallyCompliant},
	}
	nonCompliant := assessmentAt(2, models.StatusCompleted, pct(40), now)
	nonCompliant.Framework = fw
	nonCompliant.Results = []models.AssessmentResult{
		{
			ControlID: "A.5.1.1",
			Status:    models.ResultNonCompliant,
			Findings:  []models.Finding{{Type: models.FindingMajor, Priority: models.PriorityHigh}},
		},
	}

	gaps := FindGaps([]models.Assessment{partial, nonCompliant})

	require.Len(t, gaps, 2)
	assert.Equal(t, models.PriorityHigh, gaps[0].Priority)
	assert.Equal(t, "A.5.1.1", gaps[0].ControlID)
	assert.Equal(t, models.PriorityMedium, gaps[1].Priority)
	assert.Equal(t, "A.8.1.1", gaps[1].ControlID)
	assert.Equal(t, "ISO 27005", gaps[1].Framework)
	assert.NotNil(t, gaps[1].Findings)
}

func TestFindGaps_SkipsIncompleteAndCompliant(t *testing.T) {
	inProgress := assessmentAt(1, models.StatusInProgress, nil, now)
	inProgress.Results = []models.AssessmentResult{{Status: models.ResultNonCompliant}}
	done := assessmentAt(2, models.StatusCompleted, nil, now)
	done.Results = []models.AssessmentResult{
		{Status: models.ResultCompliant},
		{Status: models.ResultNotApplicable},
		{Status: models.ResultNotAssessed},
	}

	assert.Empty(t, FindGaps([]models.Assessment{inProgress, done}))
}

func TestFindGaps_PriorityOrderAndMissingFramework(t *testing.T) {
	a := assessmentAt(1, models.StatusCompleted, nil, now)
	withPriority := func(id string, p models.Priority) models.AssessmentResult {
		return models.AssessmentResult{
			ControlID: id,
			Status:    models.ResultNonCompliant,
			Findings:  []models.Finding{{Priority: p}, {Priority: models.PriorityCritical}},
		}
	}
	a.Results = []models.AssessmentResult{
		withPriority("low", models.PriorityLow),
		withPriority("unknown", models.Priority("Urgent")),
		withPriority("critical", models.PriorityCritical),
		withPriority("medium", models.PriorityMedium),
		withPriority("high", models.PriorityHigh),
	}

	gaps := FindGaps([]models.Assessment{a})

	var order []string
	for _, g := range gaps {
		order = append(order, g.ControlID)
		assert.Equal(t, UnknownFramework, g.Framework)
	}
	assert.Equal(t, []string{"critical", "high", "medium", "low", "unknown"}, order)
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 4, PriorityRank(models.PriorityCritical))
	assert.Equal(t, 3, PriorityRank(models.PriorityHigh))
	assert.Equal(t, 2, PriorityRank(models.PriorityMedium))
	assert.Equal(t, 1, PriorityRank(models.PriorityLow))
	assert.Equal(t, 0, PriorityRank(""))
}
