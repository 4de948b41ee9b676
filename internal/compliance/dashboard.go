package compliance

import (
	"sort"
	"time"

	"compsec/internal/models"
)

const (
	RecentLimit          = 5
	UpcomingReviewWindow = 30 * 24 * time.Hour
	UpcomingReviewLimit  = 10
)

type RiskSummary struct {
	ID        uint             `json:"id"`
	RiskID    string           `json:"riskId"`
	Title     string           `json:"title"`
	RiskLevel models.RiskLevel `json:"riskLevel"`
	CreatedAt time.Time        `json:"createdAt"`
}

type AssessmentSummary struct {
	ID                   uint                    `json:"id"`
	AssessmentID         string                  `json:"assessmentId"`
	Name                 string                  `json:"name"`
	Status               models.AssessmentStatus `json:"status"`
	Framework            string                  `json:"framework,omitempty"`
	CompliancePercentage *float64                `json:"compliancePercentage,omitempty"`
	CreatedAt            time.Time               `json:"createdAt"`
}

type ReviewItem struct {
	ID             uint             `json:"id"`
	RiskID         string           `json:"riskId"`
	Title          string           `json:"title"`
	RiskLevel      models.RiskLevel `json:"riskLevel"`
	NextReviewDate time.Time        `json:"nextReviewDate"`
}

type RecentActivities struct {
	Risks       []RiskSummary       `json:"risks"`
	Assessments []AssessmentSummary `json:"assessments"`
}

type Dashboard struct {
	RiskStats        RiskStats        `json:"riskStats"`
	AssessmentStats  AssessmentStats  `json:"assessmentStats"`
	FrameworkStats   []Bucket         `json:"frameworkStats"`
	RecentActivities RecentActivities `json:"recentActivities"`
	UpcomingReviews  []ReviewItem     `json:"upcomingReviews"`
}

// BuildDashboard summarizes the full risk, assessment and framework collections as of now.
func BuildDashboard(risks []models.Risk, assessments []models.Assessment, frameworks []models.ComplianceFramework, now time.Time) Dashboard {
	return Dashboard{
		RiskStats:       SummarizeRisks(risks),
		AssessmentStats: SummarizeAssessments(assessments),
		FrameworkStats: countBy(frameworks, func(f models.ComplianceFramework) string {
			return string(f.Type)
		}),
		RecentActivities: RecentActivities{
			Risks:       RecentRisks(risks, RecentLimit),
			Assessments: RecentAssessments(assessments, RecentLimit),
		},
		UpcomingReviews: UpcomingReviews(risks, now),
	}
}

// RecentRisks returns the limit most recently created risks, newest first.
func RecentRisks(risks []models.Risk, limit int) []RiskSummary {
	sorted := append([]models.Risk(nil), risks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return newer(sorted[i].Model, sorted[j].Model)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]RiskSummary, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, RiskSummary{ID: r.ID, RiskID: r.RiskID, Title: r.Title, RiskLevel: r.RiskLevel, CreatedAt: r.CreatedAt})
	}
	return out
}

// RecentAssessments returns the limit most recently created assessments, newest first.
func RecentAssessments(assessments []models.Assessment, limit int) []AssessmentSummary {
	sorted := append([]models.Assessment(nil), assessments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return newer(sorted[i].Model, sorted[j].Model)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]AssessmentSummary, 0, len(sorted))
	for _, a := range sorted {
		out = append(out, summarizeAssessment(a))
	}
	return out
}

// UpcomingReviews lists active risks due for review within UpcomingReviewWindow of now,
// overdue ones included, soonest first.
func UpcomingReviews(risks []models.Risk, now time.Time) []ReviewItem {
	horizon := now.Add(UpcomingReviewWindow)
	var due []models.Risk
	for _, r := range risks {
		if r.Status != models.RiskActive || r.NextReviewDate.IsZero() {
			continue
		}
		if r.NextReviewDate.After(horizon) {
			continue
		}
		due = append(due, r)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReviewDate.Before(due[j].NextReviewDate)
	})
	if len(due) > UpcomingReviewLimit {
		due = due[:UpcomingReviewLimit]
	}
	out := make([]ReviewItem, 0, len(due))
	for _, r := range due {
		out = append(out, ReviewItem{
			ID:             r.ID,
			RiskID:         r.RiskID,
			Title:          r.Title,
			RiskLevel:      r.RiskLevel,
			NextReviewDate: r.NextReviewDate,
		})
	}
	return out
}

func summarizeAssessment(a models.Assessment) AssessmentSummary {
	s := AssessmentSummary{
		ID:                   a.ID,
		AssessmentID:         a.AssessmentID,
		Name:                 a.Name,
		Status:               a.Status,
		CompliancePercentage: a.CompliancePercentage,
		CreatedAt:            a.CreatedAt,
	}
	if a.Framework != nil {
		s.Framework = a.Framework.Name
	}
	return s
}

func newer(a, b models.Model) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
