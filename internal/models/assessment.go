package models

import "time"

type Assessment struct {
	Model
	AssessmentID string `gorm:"size:32;uniqueIndex;not null" json:"assessmentId"` // ASSESS-0001
	Name         string `gorm:"size:255;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`

	// Framework is nil once the referenced framework has been deleted.
	FrameworkID uint                 `gorm:"index;not null" json:"frameworkId"`
	Framework   *ComplianceFramework `json:"framework,omitempty"`
	Scope       AssessmentScope      `gorm:"serializer:json" json:"scope"`

	Type   AssessmentType   `gorm:"type:varchar(32);not null;index" json:"type"`
	Status AssessmentStatus `gorm:"type:varchar(16);not null;index" json:"status"`

	PlannedStartDate time.Time  `json:"plannedStartDate"`
	PlannedEndDate   time.Time  `json:"plannedEndDate"`
	ActualStartDate  *time.Time `json:"actualStartDate,omitempty"`
	ActualEndDate    *time.Time `json:"actualEndDate,omitempty"`

	Assessor string       `gorm:"size:255;not null" json:"assessor"`
	Team     []TeamMember `gorm:"serializer:json" json:"team"`

	Results []AssessmentResult `json:"results"`

	// derived from Results, see scoring.ApplyAssessmentScores; nil while there are no results
	OverallScore         *float64   `json:"overallScore,omitempty"`
	MaxPossibleScore     *float64   `json:"maxPossibleScore,omitempty"`
	CompliancePercentage *float64   `json:"compliancePercentage,omitempty"`
	RiskLevel            *RiskLevel `gorm:"type:varchar(16);index" json:"riskLevel,omitempty"`

	Recommendations []Recommendation `json:"recommendations"`
	Reports         []Report         `gorm:"serializer:json" json:"reports"`

	FollowUpRequired bool       `gorm:"not null;default:false" json:"followUpRequired"`
	FollowUpDate     *time.Time `json:"followUpDate,omitempty"`
	FollowUpAssessor string     `gorm:"size:255" json:"followUpAssessor"`

	CreatedBy      string   `gorm:"size:255" json:"createdBy"`
	LastModifiedBy string   `gorm:"size:255" json:"lastModifiedBy"`
	Tags           []string `gorm:"serializer:json" json:"tags"`
	Notes          string   `gorm:"type:text" json:"notes"`
}

type AssessmentScope struct {
	BusinessUnits []string `json:"businessUnits"`
	Systems       []string `json:"systems"`
	Processes     []string `json:"processes"`
	Assets        []string `json:"assets"`
}

type TeamMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// AssessmentResult is the outcome of evaluating one control.
type AssessmentResult struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	AssessmentID uint         `gorm:"index;not null" json:"-"`
	ControlID    string       `gorm:"size:64" json:"controlId"`
	ControlTitle string       `gorm:"size:255" json:"controlTitle"`
	Status       ResultStatus `gorm:"type:varchar(32);index" json:"status"`
	Score        *float64     `json:"score,omitempty"`
	MaxScore     *float64     `json:"maxScore,omitempty"`
	Evidence     []Evidence   `gorm:"serializer:json" json:"evidence"`
	Findings     []Finding    `gorm:"serializer:json" json:"findings"`
	Notes        string       `gorm:"type:text" json:"notes"`
	AssessedBy   string       `gorm:"size:255" json:"assessedBy"`
	AssessedDate *time.Time   `json:"assessedDate,omitempty"`
}

type Evidence struct {
	Type        string     `json:"type"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	UploadedAt  *time.Time `json:"uploadedAt,omitempty"`
}

type Finding struct {
	Type           FindingType `json:"type"`
	Description    string      `json:"description"`
	Recommendation string      `json:"recommendation"`
	Priority       Priority    `json:"priority,omitempty"`
}

type Recommendation struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	AssessmentID uint                 `gorm:"index;not null" json:"-"`
	Title        string               `gorm:"size:255" json:"title"`
	Description  string               `gorm:"type:text" json:"description"`
	Priority     Priority             `gorm:"type:varchar(16)" json:"priority,omitempty"`
	AssignedTo   string               `gorm:"size:255" json:"assignedTo"`
	DueDate      *time.Time           `json:"dueDate,omitempty"`
	Status       RecommendationStatus `gorm:"type:varchar(16)" json:"status,omitempty"`
	CreatedDate  time.Time            `json:"createdDate"`
}

type Report struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generatedAt"`
	GeneratedBy string    `json:"generatedBy"`
}
