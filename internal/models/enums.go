package models

type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very Low"
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
	RiskCritical RiskLevel = "Critical"
)

// RiskLevels lists every level from lowest to highest.
var RiskLevels = []RiskLevel{RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskVeryHigh, RiskCritical}

func (l RiskLevel) Valid() bool { return oneOf(l, RiskLevels...) }

// Scale is the label attached to a 1..5 likelihood or impact score.
type Scale string

const (
	ScaleVeryLow  Scale = "Very Low"
	ScaleLow      Scale = "Low"
	ScaleMedium   Scale = "Medium"
	ScaleHigh     Scale = "High"
	ScaleVeryHigh Scale = "Very High"
)

func (s Scale) Valid() bool {
	return oneOf(s, ScaleVeryLow, ScaleLow, ScaleMedium, ScaleHigh, ScaleVeryHigh)
}

type RiskCategory string

const (
	CategoryTechnical    RiskCategory = "Technical"
	CategoryOperational  RiskCategory = "Operational"
	CategoryStrategic    RiskCategory = "Strategic"
	CategoryFinancial    RiskCategory = "Financial"
	CategoryCompliance   RiskCategory = "Compliance"
	CategoryReputational RiskCategory = "Reputational"
)

func (c RiskCategory) Valid() bool {
	return oneOf(c, CategoryTechnical, CategoryOperational, CategoryStrategic,
		CategoryFinancial, CategoryCompliance, CategoryReputational)
}

type Treatment string

const (
	TreatmentAvoid    Treatment = "Avoid"
	TreatmentTransfer Treatment = "Transfer"
	TreatmentMitigate Treatment = "Mitigate"
	TreatmentAccept   Treatment = "Accept"
)

func (t Treatment) Valid() bool {
	return oneOf(t, TreatmentAvoid, TreatmentTransfer, TreatmentMitigate, TreatmentAccept)
}

type TreatmentStatus string

const (
	TreatmentPlanned    TreatmentStatus = "Planned"
	TreatmentInProgress TreatmentStatus = "In Progress"
	TreatmentCompleted  TreatmentStatus = "Completed"
	TreatmentOnHold     TreatmentStatus = "On Hold"
	TreatmentCancelled  TreatmentStatus = "Cancelled"
)

func (s TreatmentStatus) Valid() bool {
	return oneOf(s, TreatmentPlanned, TreatmentInProgress, TreatmentCompleted, TreatmentOnHold, TreatmentCancelled)
}

type RiskStatus string

const (
	RiskActive      RiskStatus = "Active"
	RiskInactive    RiskStatus = "Inactive"
	RiskClosed      RiskStatus = "Closed"
	RiskUnderReview RiskStatus = "Under Review"
)

func (s RiskStatus) Valid() bool {
	return oneOf(s, RiskActive, RiskInactive, RiskClosed, RiskUnderReview)
}

type FrameworkType string

const (
	FrameworkCybersecurity    FrameworkType = "Cybersecurity"
	FrameworkDataProtection   FrameworkType = "Data Protection"
	FrameworkFinancial        FrameworkType = "Financial"
	FrameworkOperational      FrameworkType = "Operational"
	FrameworkIndustrySpecific FrameworkType = "Industry Specific"
	FrameworkCustom           FrameworkType = "Custom"
)

func (t FrameworkType) Valid() bool {
	return oneOf(t, FrameworkCybersecurity, FrameworkDataProtection, FrameworkFinancial,
		FrameworkOperational, FrameworkIndustrySpecific, FrameworkCustom)
}

type FrameworkStatus string

const (
	FrameworkActive     FrameworkStatus = "Active"
	FrameworkInactive   FrameworkStatus = "Inactive"
	FrameworkDeprecated FrameworkStatus = "Deprecated"
)

func (s FrameworkStatus) Valid() bool {
	return oneOf(s, FrameworkActive, FrameworkInactive, FrameworkDeprecated)
}

// Priority is shared by controls, findings and recommendations.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func (p Priority) Valid() bool {
	return oneOf(p, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical)
}

type Frequency string

const (
	FrequencyMonthly      Frequency = "Monthly"
	FrequencyQuarterly    Frequency = "Quarterly"
	FrequencySemiAnnually Frequency = "Semi-Annually"
	FrequencyAnnually     Frequency = "Annually"
	FrequencyAsNeeded     Frequency = "As Needed"
)

func (f Frequency) Valid() bool {
	return oneOf(f, FrequencyMonthly, FrequencyQuarterly, FrequencySemiAnnually, FrequencyAnnually, FrequencyAsNeeded)
}

type ScoringMethod string

const (
	ScoringPassFail   ScoringMethod = "Pass/Fail"
	ScoringPercentage ScoringMethod = "Percentage"
	ScoringWeighted   ScoringMethod = "Weighted Score"
	ScoringCustom     ScoringMethod = "Custom"
)

func (m ScoringMethod) Valid() bool {
	return oneOf(m, ScoringPassFail, ScoringPercentage, ScoringWeighted, ScoringCustom)
}

type AssessmentType string

const (
	AssessmentSelf       AssessmentType = "Self-Assessment"
	AssessmentInternal   AssessmentType = "Internal Audit"
	AssessmentExternal   AssessmentType = "External Audit"
	AssessmentContinuous AssessmentType = "Continuous Monitoring"
	AssessmentRisk       AssessmentType = "Risk Assessment"
)

func (t AssessmentType) Valid() bool {
	return oneOf(t, AssessmentSelf, AssessmentInternal, AssessmentExternal, AssessmentContinuous, AssessmentRisk)
}

type AssessmentStatus string

const (
	StatusPlanned    AssessmentStatus = "Planned"
	StatusInProgress AssessmentStatus = "In Progress"
	StatusCompleted  AssessmentStatus = "Completed"
	StatusCancelled  AssessmentStatus = "Cancelled"
	StatusOnHold     AssessmentStatus = "On Hold"
)

func (s AssessmentStatus) Valid() bool {
	return oneOf(s, StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled, StatusOnHold)
}

type ResultStatus string

const (
	ResultCompliant          ResultStatus = "Compliant"
	ResultNonCompliant       ResultStatus = "Non-Compliant"
	ResultPartiallyCompliant ResultStatus = "Partially Compliant"
	ResultNotApplicable      ResultStatus = "Not Applicable"
	ResultNotAssessed        ResultStatus = "Not Assessed"
)

func (s ResultStatus) Valid() bool {
	return oneOf(s, ResultCompliant, ResultNonCompliant, ResultPartiallyCompliant, ResultNotApplicable, ResultNotAssessed)
}

type FindingType string

const (
	FindingObservation FindingType = "Observation"
	FindingMinor       FindingType = "Minor Non-Conformity"
	FindingMajor       FindingType = "Major Non-Conformity"
	FindingCritical    FindingType = "Critical Non-Conformity"
)

func (t FindingType) Valid() bool {
	return oneOf(t, FindingObservation, FindingMinor, FindingMajor, FindingCritical)
}

type RecommendationStatus string

const (
	RecommendationOpen       RecommendationStatus = "Open"
	RecommendationInProgress RecommendationStatus = "In Progress"
	RecommendationCompleted  RecommendationStatus = "Completed"
	RecommendationCancelled  RecommendationStatus = "Cancelled"
)

func (s RecommendationStatus) Valid() bool {
	return oneOf(s, RecommendationOpen, RecommendationInProgress, RecommendationCompleted, RecommendationCancelled)
}

func oneOf[T comparable](v T, set ...T) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
