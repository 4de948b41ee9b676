package compliance

import (
	"sort"
	"time"

	"compsec/internal/models"
)

// DefaultGapPriority applies to a gap whose result carries no findings.
const DefaultGapPriority = models.PriorityMedium

type Gap struct {
	AssessmentID   uint                `json:"assessmentId"`
	AssessmentRef  string              `json:"assessmentRef"`
	AssessmentName string              `json:"assessmentName"`
	Framework      string              `json:"framework"`
	ControlID      string              `json:"controlId"`
	ControlTitle   string              `json:"controlTitle"`
	Status         models.ResultStatus `json:"status"`
	Findings       []models.Finding    `json:"findings"`
	Priority       models.Priority     `json:"priority"`
	AssessedDate   *time.Time          `json:"assessedDate,omitempty"`
}

// PriorityRank orders remediation priorities; unknown values rank 0.
func PriorityRank(p models.Priority) int {
	switch p {
	case models.PriorityCritical:
		return 4
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 1
	}
	return 0
}

// FindGaps collects non-compliant and partially compliant results of completed assessments,
// highest priority first. Equal priorities keep their input order.
func FindGaps(assessments []models.Assessment) []Gap {
	gaps := []Gap{}
	for _, a := range assessments {
		if a.Status != models.StatusCompleted {
			continue
		}
		for _, r := range a.Results {
			if r.Status != models.ResultNonCompliant && r.Status != models.ResultPartiallyCompliant {
				continue
			}
			gap := Gap{
				AssessmentID:   a.ID,
				AssessmentRef:  a.AssessmentID,
				AssessmentName: a.Name,
				Framework:      frameworkName(a),
				ControlID:      r.ControlID,
				ControlTitle:   r.ControlTitle,
				Status:         r.Status,
				Findings:       r.Findings,
				Priority:       DefaultGapPriority,
				AssessedDate:   r.AssessedDate,
			}
			if gap.Findings == nil {
				gap.Findings = []models.Finding{}
			}
			if len(r.Findings) > 0 && r.Findings[0].Priority != "" {
				gap.Priority = r.Findings[0].Priority
			}
			gaps = append(gaps, gap)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return PriorityRank(gaps[i].Priority) > PriorityRank(gaps[j].Priority)
	})
	return gaps
}
