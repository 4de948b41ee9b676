package models

import "time"

type ComplianceFramework struct {
	Model
	Name        string          `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Version     string          `gorm:"size:64;not null" json:"version"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Type        FrameworkType   `gorm:"type:varchar(32);not null;index" json:"type"`
	Status      FrameworkStatus `gorm:"type:varchar(16);not null" json:"status"`

	Controls           []Control              `gorm:"foreignKey:FrameworkID" json:"controls,omitempty"`
	Requirements       []FrameworkRequirement `gorm:"serializer:json" json:"requirements"`
	AssessmentCriteria AssessmentCriteria     `gorm:"serializer:json" json:"assessmentCriteria"`

	Publisher     string     `gorm:"size:255" json:"publisher"`
	Website       string     `gorm:"size:255" json:"website"`
	LastUpdated   *time.Time `json:"lastUpdated,omitempty"`
	EffectiveDate *time.Time `json:"effectiveDate,omitempty"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`

	IsCustom  bool     `gorm:"not null;default:false" json:"isCustom"`
	CreatedBy string   `gorm:"size:255" json:"createdBy"`
	Tags      []string `gorm:"serializer:json" json:"tags"`
	Industry  []string `gorm:"serializer:json" json:"industry"`
	Region    []string `gorm:"serializer:json" json:"region"`
}

// Control is a single testable requirement within a framework.
type Control struct {
	ID                     uint     `gorm:"primaryKey" json:"id"`
	FrameworkID            uint     `gorm:"index;not null" json:"-"`
	ControlID              string   `gorm:"size:64;not null" json:"controlId"` // A.5.1.1, AC-2, Art. 25
	Title                  string   `gorm:"size:255;not null" json:"title"`
	Description            string   `gorm:"type:text" json:"description"`
	Category               string   `gorm:"size:128" json:"category"`
	SubCategory            string   `gorm:"size:128" json:"subCategory"`
	Priority               Priority `gorm:"type:varchar(16)" json:"priority,omitempty"`
	Requirements           []string `gorm:"serializer:json" json:"requirements"`
	ImplementationGuidance string   `gorm:"type:text" json:"implementationGuidance"`
	TestingProcedures      []string `gorm:"serializer:json" json:"testingProcedures"`
	EvidenceTypes          []string `gorm:"serializer:json" json:"evidenceTypes"`
}

type FrameworkRequirement struct {
	RequirementID    string   `json:"requirementId" yaml:"requirementId"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description" yaml:"description"`
	Category         string   `json:"category" yaml:"category"`
	Mandatory        bool     `json:"mandatory" yaml:"mandatory"`
	ApplicableTo     []string `json:"applicableTo" yaml:"applicableTo"`
	EvidenceRequired []string `json:"evidenceRequired" yaml:"evidenceRequired"`
}

type AssessmentCriteria struct {
	Frequency     Frequency     `json:"frequency,omitempty" yaml:"frequency" binding:"omitempty,enum"`
	Methodology   string        `json:"methodology" yaml:"methodology"`
	ScoringMethod ScoringMethod `json:"scoringMethod,omitempty" yaml:"scoringMethod" binding:"omitempty,enum"`
	Thresholds    Thresholds    `json:"thresholds" yaml:"thresholds"`
}

type Thresholds struct {
	Pass    float64 `json:"pass" yaml:"pass"`
	Warning float64 `json:"warning" yaml:"warning"`
	Fail    float64 `json:"fail" yaml:"fail"`
}
