// Package scoring derives the computed fields of risks and assessments.
// The write path calls ApplyRiskScores / ApplyAssessmentScores before every persist.
package scoring

import (
	"fmt"

	"compsec/internal/models"
)

const (
	MinScaleScore = 1
	MaxScaleScore = 5
)

// riskScoreBuckets maps likelihood × impact (1..25) to a level. Inclusive lower bounds, highest first.
var riskScoreBuckets = []struct {
	min   int
	level models.RiskLevel
}{
	{20, models.RiskCritical},
	{15, models.RiskVeryHigh},
	{10, models.RiskHigh},
	{6, models.RiskMedium},
	{3, models.RiskLow},
}

type RiskScore struct {
	Score int              `json:"riskScore"`
	Level models.RiskLevel `json:"riskLevel"`
}

// RiskLevelForScore buckets a likelihood × impact product.
func RiskLevelForScore(score int) models.RiskLevel {
	for _, b := range riskScoreBuckets {
		if score >= b.min {
			return b.level
		}
	}
	return models.RiskVeryLow
}

// ScoreRisk multiplies likelihood by impact and classifies the product.
func ScoreRisk(likelihood, impact int) (RiskScore, error) {
	if err := checkScale("likelihoodScore", likelihood); err != nil {
		return RiskScore{}, err
	}
	if err := checkScale("impactScore", impact); err != nil {
		return RiskScore{}, err
	}
	score := likelihood * impact
	return RiskScore{Score: score, Level: RiskLevelForScore(score)}, nil
}

// ApplyRiskScores recomputes the inherent and residual score/level of r.
// Residual fields are cleared unless both residual scores are present.
func ApplyRiskScores(r *models.Risk) error {
	inherent, err := ScoreRisk(r.LikelihoodScore, r.ImpactScore)
	if err != nil {
		return err
	}
	r.RiskScore = inherent.Score
	r.RiskLevel = inherent.Level

	if r.ResidualLikelihoodScore == nil || r.ResidualImpactScore == nil {
		r.ResidualRiskScore = nil
		r.ResidualRiskLevel = nil
		return nil
	}
	if err := checkScale("residualLikelihoodScore", *r.ResidualLikelihoodScore); err != nil {
		return err
	}
	if err := checkScale("residualImpactScore", *r.ResidualImpactScore); err != nil {
		return err
	}
	residual, _ := ScoreRisk(*r.ResidualLikelihoodScore, *r.ResidualImpactScore)
	r.ResidualRiskScore = &residual.Score
	r.ResidualRiskLevel = &residual.Level
	return nil
}

// ScaleError reports a likelihood/impact score outside 1..5.
type ScaleError struct {
	Field string
	Value int
}

func (e *ScaleError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, MinScaleScore, MaxScaleScore, e.Value)
}

func checkScale(field string, v int) error {
	if v < MinScaleScore || v > MaxScaleScore {
		return &ScaleError{Field: field, Value: v}
	}
	return nil
}
