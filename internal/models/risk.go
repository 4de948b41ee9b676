package models

import "time"

type Risk struct {
	Model
	RiskID      string       `gorm:"size:32;uniqueIndex;not null" json:"riskId"` // RISK-0001
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Category    RiskCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	SubCategory string       `gorm:"size:128" json:"subCategory"`

	Likelihood      Scale `gorm:"type:varchar(16);not null" json:"likelihood"`
	LikelihoodScore int   `gorm:"not null" json:"likelihoodScore"`
	Impact          Scale `gorm:"type:varchar(16);not null" json:"impact"`
	ImpactScore     int   `gorm:"not null" json:"impactScore"`

	// derived, see scoring.ApplyRiskScores
	RiskScore int       `gorm:"not null" json:"riskScore"`
	RiskLevel RiskLevel `gorm:"type:varchar(16);not null;index" json:"riskLevel"`

	Treatment            Treatment       `gorm:"type:varchar(16);not null" json:"treatment"`
	TreatmentDescription string          `gorm:"type:text" json:"treatmentDescription"`
	TreatmentStatus      TreatmentStatus `gorm:"type:varchar(16);not null" json:"treatmentStatus"`
	TreatmentOwner       string          `gorm:"size:255" json:"treatmentOwner"`
	TreatmentDueDate     *time.Time      `json:"treatmentDueDate,omitempty"`
	TreatmentCost        *float64        `json:"treatmentCost,omitempty"`

	ResidualLikelihood      *Scale     `gorm:"type:varchar(16)" json:"residualLikelihood,omitempty"`
	ResidualLikelihoodScore *int       `json:"residualLikelihoodScore,omitempty"`
	ResidualImpact          *Scale     `gorm:"type:varchar(16)" json:"residualImpact,omitempty"`
	ResidualImpactScore     *int       `json:"residualImpactScore,omitempty"`
	ResidualRiskScore       *int       `json:"residualRiskScore,omitempty"`
	ResidualRiskLevel       *RiskLevel `gorm:"type:varchar(16)" json:"residualRiskLevel,omitempty"`

	FrameworkMappings []RiskFrameworkMapping `json:"complianceFrameworks"`

	BusinessUnit  string `gorm:"size:255;index" json:"businessUnit"`
	Asset         string `gorm:"size:255" json:"asset"`
	Threat        string `gorm:"size:255" json:"threat"`
	Vulnerability string `gorm:"size:255" json:"vulnerability"`

	IdentifiedDate time.Time  `json:"identifiedDate"`
	LastReviewDate time.Time  `json:"lastReviewDate"`
	NextReviewDate time.Time  `gorm:"index" json:"nextReviewDate"`
	Status         RiskStatus `gorm:"type:varchar(16);not null;index" json:"status"`

	Tags        []string     `gorm:"serializer:json" json:"tags"`
	Notes       string       `gorm:"type:text" json:"notes"`
	Attachments []Attachment `gorm:"serializer:json" json:"attachments"`

	CreatedBy string `gorm:"size:255;not null" json:"createdBy"`
	UpdatedBy string `gorm:"size:255;not null" json:"updatedBy"`
}

// RiskFrameworkMapping ties a risk to a control of a compliance framework.
// The framework may have been deleted since; readers must tolerate a nil Framework.
type RiskFrameworkMapping struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	RiskID       uint                 `gorm:"index;not null" json:"-"`
	FrameworkID  uint                 `gorm:"index;not null" json:"frameworkId"`
	Framework    *ComplianceFramework `json:"framework,omitempty"`
	ControlID    string               `gorm:"size:64" json:"controlId"`
	ControlTitle string               `gorm:"size:255" json:"controlTitle"`
	Requirement  string               `gorm:"type:text" json:"requirement"`
}

type Attachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// MapsTo reports whether the risk carries a mapping to the given framework.
func (r *Risk) MapsTo(frameworkID uint) bool {
	for _, m := range r.FrameworkMappings {
		if m.FrameworkID == frameworkID {
			return true
		}
	}
	return false
}
