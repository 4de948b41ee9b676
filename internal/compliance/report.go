package compliance

import (
	"time"

	"compsec/internal/models"
)

// DefaultReportPeriod is used when a report request names no start date.
const DefaultReportPeriod = 30 * 24 * time.Hour

type ReportPeriod struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type RiskReport struct {
	Total       int            `json:"total"`
	ByLevel     map[string]int `json:"byLevel"`
	ByTreatment map[string]int `json:"byTreatment"`
	Details     []models.Risk  `json:"details"`
}

type AssessmentReport struct {
	Total         int                 `json:"total"`
	Completed     int                 `json:"completed"`
	InProgress    int                 `json:"inProgress"`
	AvgCompliance float64             `json:"avgCompliance"`
	Details       []models.Assessment `json:"details"`
}

type Report struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Period      ReportPeriod      `json:"period"`
	Framework   *FrameworkRef     `json:"framework,omitempty"`
	Risks       *RiskReport       `json:"risks,omitempty"`
	Assessments *AssessmentReport `json:"assessments,omitempty"`
}

// ReportInput carries records already narrowed to the report period (and framework, if any).
type ReportInput struct {
	GeneratedAt        time.Time
	Period             ReportPeriod
	Framework          *models.ComplianceFramework
	IncludeRisks       bool
	IncludeAssessments bool
	Risks              []models.Risk
	Assessments        []models.Assessment
}

// ResolvePeriod fills in a missing start with now minus DefaultReportPeriod, whatever the end,
// and a missing end with now.
func ResolvePeriod(start, end *time.Time, now time.Time) ReportPeriod {
	p := ReportPeriod{StartDate: now.Add(-DefaultReportPeriod), EndDate: now}
	if end != nil {
		p.EndDate = *end
	}
	if start != nil {
		p.StartDate = *start
	}
	return p
}

// BuildReport assembles a compliance report. Unlike the dashboard average, the report's
// average compliance counts unscored assessments as 0%.
func BuildReport(in ReportInput) Report {
	report := Report{GeneratedAt: in.GeneratedAt, Period: in.Period}
	if in.Framework != nil {
		ref := RefOf(*in.Framework)
		report.Framework = &ref
	}

	if in.IncludeRisks {
		rr := &RiskReport{
			Total:       len(in.Risks),
			ByLevel:     map[string]int{},
			ByTreatment: map[string]int{},
			Details:     in.Risks,
		}
		if rr.Details == nil {
			rr.Details = []models.Risk{}
		}
		for _, r := range in.Risks {
			rr.ByLevel[string(r.RiskLevel)]++
			rr.ByTreatment[string(r.Treatment)]++
		}
		report.Risks = rr
	}

	if in.IncludeAssessments {
		ar := &AssessmentReport{Total: len(in.Assessments), Details: in.Assessments}
		if ar.Details == nil {
			ar.Details = []models.Assessment{}
		}
		var sum float64
		for _, a := range in.Assessments {
			switch a.Status {
			case models.StatusCompleted:
				ar.Completed++
			case models.StatusInProgress:
				ar.InProgress++
			}
			if a.CompliancePercentage != nil {
				sum += *a.CompliancePercentage
			}
		}
		if ar.Total > 0 {
			ar.AvgCompliance = sum / float64(ar.Total)
		}
		report.Assessments = ar
	}
	return report
}
