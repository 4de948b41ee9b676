package scoring

import (
	"fmt"

	"compsec/internal/models"
)

// complianceBuckets maps a compliance percentage to a level. High compliance means low risk,
// so this table runs the opposite way from riskScoreBuckets and must stay separate from it.
var complianceBuckets = []struct {
	min   float64
	level models.RiskLevel
}{
	{95, models.RiskVeryLow},
	{85, models.RiskLow},
	{70, models.RiskMedium},
	{50, models.RiskHigh},
	{25, models.RiskVeryHigh},
}

type AssessmentScore struct {
	OverallScore         float64          `json:"overallScore"`
	MaxPossibleScore     float64          `json:"maxPossibleScore"`
	CompliancePercentage float64          `json:"compliancePercentage"`
	RiskLevel            models.RiskLevel `json:"riskLevel"`
}

// ComplianceRiskLevel buckets a compliance percentage.
func ComplianceRiskLevel(percentage float64) models.RiskLevel {
	for _, b := range complianceBuckets {
		if percentage >= b.min {
			return b.level
		}
	}
	return models.RiskCritical
}

// ScoreResults rolls per-control results up into an assessment score.
// ok is false for an empty result list: such an assessment has no compliance state.
func ScoreResults(results []models.AssessmentResult) (score AssessmentScore, ok bool) {
	if len(results) == 0 {
		return AssessmentScore{}, false
	}
	for _, r := range results {
		if r.Score != nil {
			score.OverallScore += *r.Score
		}
		if r.MaxScore != nil {
			score.MaxPossibleScore += *r.MaxScore
		}
	}
	if score.MaxPossibleScore > 0 {
		score.CompliancePercentage = score.OverallScore * 100 / score.MaxPossibleScore
	}
	score.RiskLevel = ComplianceRiskLevel(score.CompliancePercentage)
	return score, true
}

// ApplyAssessmentScores recomputes the derived fields of a from a.Results.
func ApplyAssessmentScores(a *models.Assessment) {
	score, ok := ScoreResults(a.Results)
	if !ok {
		a.OverallScore = nil
		a.MaxPossibleScore = nil
		a.CompliancePercentage = nil
		a.RiskLevel = nil
		return
	}
	a.OverallScore = &score.OverallScore
	a.MaxPossibleScore = &score.MaxPossibleScore
	a.CompliancePercentage = &score.CompliancePercentage
	a.RiskLevel = &score.RiskLevel
}

// ResultError reports a result whose scores cannot produce a percentage within 0..100.
type ResultError struct {
	ControlID string
	Reason    string
}

func (e *ResultError) Error() string {
	if e.ControlID == "" {
		return "result: " + e.Reason
	}
	return fmt.Sprintf("result %s: %s", e.ControlID, e.Reason)
}

// CheckResult rejects negative scores and a score above its maxScore. Missing scores pass;
// they count as 0.
func CheckResult(r models.AssessmentResult) error {
	switch {
	case r.Score != nil && *r.Score < 0:
		return &ResultError{ControlID: r.ControlID, Reason: "score must not be negative"}
	case r.MaxScore != nil && *r.MaxScore < 0:
		return &ResultError{ControlID: r.ControlID, Reason: "maxScore must not be negative"}
	case r.Score != nil && *r.Score > 0 && (r.MaxScore == nil || *r.Score > *r.MaxScore):
		return &ResultError{ControlID: r.ControlID, Reason: "score must not exceed maxScore"}
	}
	return nil
}
