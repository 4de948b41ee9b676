// Package compliance builds read-only summaries over persisted risks, assessments and frameworks.
// Nothing here mutates a record or recomputes a derived field; it reads what the write path stored.
package compliance

import (
	"math"
	"sort"

	"compsec/internal/models"
)

// UnknownFramework stands in for a framework reference that no longer resolves.
const UnknownFramework = "Unknown framework"

// RiskStats counts risks per exact risk level. High and Very High are kept apart;
// grouping them is left to the presentation layer.
type RiskStats struct {
	TotalRisks    int     `json:"totalRisks"`
	CriticalRisks int     `json:"criticalRisks"`
	VeryHighRisks int     `json:"veryHighRisks"`
	HighRisks     int     `json:"highRisks"`
	MediumRisks   int     `json:"mediumRisks"`
	LowRisks      int     `json:"lowRisks"`
	VeryLowRisks  int     `json:"veryLowRisks"`
	AvgRiskScore  float64 `json:"avgRiskScore"`
}

func (s *RiskStats) add(level models.RiskLevel) {
	switch level {
	case models.RiskCritical:
		s.CriticalRisks++
	case models.RiskVeryHigh:
		s.VeryHighRisks++
	case models.RiskHigh:
		s.HighRisks++
	case models.RiskMedium:
		s.MediumRisks++
	case models.RiskLow:
		s.LowRisks++
	case models.RiskVeryLow:
		s.VeryLowRisks++
	}
}

func SummarizeRisks(risks []models.Risk) RiskStats {
	var stats RiskStats
	total := 0
	for _, r := range risks {
		stats.TotalRisks++
		stats.add(r.RiskLevel)
		total += r.RiskScore
	}
	if stats.TotalRisks > 0 {
		stats.AvgRiskScore = float64(total) / float64(stats.TotalRisks)
	}
	return stats
}

type AssessmentStats struct {
	TotalAssessments        int     `json:"totalAssessments"`
	PlannedAssessments      int     `json:"plannedAssessments"`
	InProgressAssessments   int     `json:"inProgressAssessments"`
	CompletedAssessments    int     `json:"completedAssessments"`
	CancelledAssessments    int     `json:"cancelledAssessments"`
	OnHoldAssessments       int     `json:"onHoldAssessments"`
	AvgCompliancePercentage float64 `json:"avgCompliancePercentage"`
}

// SummarizeAssessments counts assessments by status. The average only covers assessments
// that have a compliance percentage; unscored ones are not treated as 0%.
func SummarizeAssessments(assessments []models.Assessment) AssessmentStats {
	var stats AssessmentStats
	var sum float64
	scored := 0
	for _, a := range assessments {
		stats.TotalAssessments++
		switch a.Status {
		case models.StatusPlanned:
			stats.PlannedAssessments++
		case models.StatusInProgress:
			stats.InProgressAssessments++
		case models.StatusCompleted:
			stats.CompletedAssessments++
		case models.StatusCancelled:
			stats.CancelledAssessments++
		case models.StatusOnHold:
			stats.OnHoldAssessments++
		}
		if a.CompliancePercentage != nil {
			sum += *a.CompliancePercentage
			scored++
		}
	}
	if scored > 0 {
		stats.AvgCompliancePercentage = sum / float64(scored)
	}
	return stats
}

// Bucket is one group of a group-by-field count.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// countBy groups items by key, largest group first, ties by name.
func countBy[T any](items []T, key func(T) string) []Bucket {
	counts := map[string]int{}
	for _, it := range items {
		counts[key(it)]++
	}
	out := make([]Bucket, 0, len(counts))
	for name, n := range counts {
		out = append(out, Bucket{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type RiskOverview struct {
	Overview              RiskStats `json:"overview"`
	TreatmentDistribution []Bucket  `json:"treatmentDistribution"`
	CategoryDistribution  []Bucket  `json:"categoryDistribution"`
}

func OverviewRisks(risks []models.Risk) RiskOverview {
	return RiskOverview{
		Overview:              SummarizeRisks(risks),
		TreatmentDistribution: countBy(risks, func(r models.Risk) string { return string(r.Treatment) }),
		CategoryDistribution:  countBy(risks, func(r models.Risk) string { return string(r.Category) }),
	}
}

type AssessmentOverview struct {
	Overview              AssessmentStats `json:"overview"`
	RiskLevelDistribution []Bucket        `json:"riskLevelDistribution"`
	FrameworkDistribution []Bucket        `json:"frameworkDistribution"`
}

const unscored = "Unscored"

func OverviewAssessments(assessments []models.Assessment) AssessmentOverview {
	return AssessmentOverview{
		Overview: SummarizeAssessments(assessments),
		RiskLevelDistribution: countBy(assessments, func(a models.Assessment) string {
			if a.RiskLevel == nil {
				return unscored
			}
			return string(*a.RiskLevel)
		}),
		FrameworkDistribution: countBy(assessments, frameworkName),
	}
}

// LevelHistogram counts risks per risk level, omitting levels with no risks.
func LevelHistogram(risks []models.Risk) map[models.RiskLevel]int {
	out := map[models.RiskLevel]int{}
	for _, r := range risks {
		out[r.RiskLevel]++
	}
	return out
}

func frameworkName(a models.Assessment) string {
	if a.Framework == nil || a.Framework.Name == "" {
		return UnknownFramework
	}
	return a.Framework.Name
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
