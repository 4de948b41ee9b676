package compliance

import (
	"time"

	"compsec/internal/models"
)

var now = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func riskAt(id uint, level models.RiskLevel, score int, created time.Time) models.Risk {
	return models.Risk{
		Model:          models.Model{ID: id, CreatedAt: created},
		RiskID:         "RISK-000" + string(rune('0'+id)),
		Title:          "risk",
		RiskLevel:      level,
		RiskScore:      score,
		Status:         models.RiskActive,
		Treatment:      models.TreatmentMitigate,
		Category:       models.CategoryTechnical,
		NextReviewDate: created.AddDate(1, 0, 0),
	}
}

func pct(v float64) *float64 { return &v }

func assessmentAt(id uint, status models.AssessmentStatus, compliance *float64, created time.Time) models.Assessment {
	return models.Assessment{
		Model:                models.Model{ID: id, CreatedAt: created},
		Name:                 "assessment",
		Status:               status,
		CompliancePercentage: compliance,
	}
}
