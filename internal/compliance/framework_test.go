package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsec/internal/models"
)

func TestFrameworkStatus(t *testing.T) {
	fw := models.ComplianceFramework{
		Model:   models.Model{ID: 7},
		Name:    "NIST RMF",
		Version: "2.0",
		Type:    models.FrameworkCybersecurity,
		Controls: []models.Control{
			{ControlID: "AC-1"}, {ControlID: "AC-2"}, {ControlID: "AC-3"},
		},
	}
	a1 := assessmentAt(1, models.StatusCompleted, pct(50), now)
	a1.FrameworkID = 7
	a1.Results = []models.AssessmentResult{
		{ControlID: "AC-1", Status: models.ResultCompliant},
		{ControlID: "AC-2", Status: models.ResultNonCompliant},
	}
	a2 := assessmentAt(2, models.StatusInProgress, nil, now)
	a2.FrameworkID = 7
	a2.Results = []models.AssessmentResult{{ControlID: "AC-3", Status: models.ResultCompliant}}
	other := assessmentAt(3, models.StatusCompleted, pct(100), now)
	other.FrameworkID = 8
	other.Results = []models.AssessmentResult{{Status: models.ResultCompliant}}

	mapped := riskAt(1, models.RiskHigh, 12, now)
	mapped.FrameworkMappings = []models.RiskFrameworkMapping{{FrameworkID: 7, ControlID: "AC-2"}}
	mapped2 := riskAt(2, models.RiskHigh, 10, now)
	mapped2.FrameworkMappings = []models.RiskFrameworkMapping{{FrameworkID: 9}, {FrameworkID: 7}}
	unmapped := riskAt(3, models.RiskCritical, 25, now)

	got := FrameworkStatus(fw, []models.Assessment{a1, a2, other}, []models.Risk{mapped, mapped2, unmapped})

	assert.Equal(t, FrameworkRef{ID: 7, Name: "NIST RMF", Version: "2.0", Type: models.FrameworkCybersecurity}, got.Framework)
	assert.Equal(t, 3, got.Compliance.TotalControls)
	assert.Equal(t, 3, got.Compliance.AssessedControls)
	assert.Equal(t, 2, got.Compliance.CompliantControls)
	assert.Equal(t, 66.67, got.Compliance.CompliancePercentage)
	assert.Equal(t, map[models.RiskLevel]int{models.RiskHigh: 2}, got.RiskDistribution)
	require.Len(t, got.Assessments, 2)
	require.Len(t, got.Risks, 2)
}

func TestFrameworkStatus_NoControls(t *testing.T) {
	fw := models.ComplianceFramework{Model: models.Model{ID: 1}}
	a := assessmentAt(1, models.StatusCompleted, nil, now)
	a.FrameworkID = 1
	a.Results = []models.AssessmentResult{{Status: models.ResultCompliant}}

	got := FrameworkStatus(fw, []models.Assessment{a}, nil)

	assert.Equal(t, 0.0, got.Compliance.CompliancePercentage)
	assert.Equal(t, 1, got.Compliance.CompliantControls)
	assert.Empty(t, got.RiskDistribution)
	assert.NotNil(t, got.Risks)
}
