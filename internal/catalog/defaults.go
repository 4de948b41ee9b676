package catalog

import "compsec/internal/models"

// Defaults returns the frameworks seeded into an empty store: ISO 27005, NIST RMF and GDPR.
func Defaults() []models.ComplianceFramework {
	return []models.ComplianceFramework{
		{
			Name:        "ISO 27005",
			Version:     "2018",
			Description: "Information security risk management standard",
			Type:        models.FrameworkCybersecurity,
			Status:      models.FrameworkActive,
			Publisher:   "ISO/IEC",
			Controls: []models.Control{
				{
					ControlID:   "A.5.1.1",
					Title:       "Information Security Policies",
					Description: "Management direction and support for information security",
					Category:    "Governance",
					Priority:    models.PriorityHigh,
					Requirements: []string{
						"Documented information security policies",
						"Regular policy review and updates",
						"Policy communication to all stakeholders",
					},
				},
				{
					ControlID:   "A.6.1.1",
					Title:       "Information Security Roles and Responsibilities",
					Description: "All information security responsibilities shall be defined and allocated",
					Category:    "Organization",
					Priority:    models.PriorityHigh,
					Requirements: []string{
						"Clear role definitions",
						"Responsibility allocation",
						"Regular role reviews",
					},
				},
			},
			AssessmentCriteria: models.AssessmentCriteria{
				Frequency:     models.FrequencyAnnually,
				Methodology:   "Risk-based assessment",
				ScoringMethod: models.ScoringWeighted,
				Thresholds:    models.Thresholds{Pass: 80, Warning: 60, Fail: 40},
			},
			Tags:     []string{"risk management", "information security"},
			Industry: []string{},
			Region:   []string{"International"},
		},
		{
			Name:        "NIST RMF",
			Version:     "2.0",
			Description: "Risk Management Framework for Information Systems and Organizations",
			Type:        models.FrameworkCybersecurity,
			Status:      models.FrameworkActive,
			Publisher:   "NIST",
			Controls: []models.Control{
				{
					ControlID:   "AC-1",
					Title:       "Access Control Policy and Procedures",
					Description: "Develop, document, and disseminate access control policy and procedures",
					Category:    "Access Control",
					Priority:    models.PriorityHigh,
					Requirements: []string{
						"Documented access control policy",
						"Procedures for access control implementation",
						"Regular policy updates",
					},
				},
				{
					ControlID:   "AC-2",
					Title:       "Account Management",
					Description: "Manage information system accounts",
					Category:    "Access Control",
					Priority:    models.PriorityHigh,
					Requirements: []string{
						"Account identification and naming",
						"Account establishment and activation",
						"Account modification and termination",
					},
				},
			},
			AssessmentCriteria: models.AssessmentCriteria{
				Frequency:     models.FrequencyQuarterly,
				Methodology:   "Continuous monitoring",
				ScoringMethod: models.ScoringPassFail,
				Thresholds:    models.Thresholds{Pass: 100, Warning: 80, Fail: 60},
			},
			Tags:     []string{"risk management", "federal"},
			Industry: []string{"Government"},
			Region:   []string{"United States"},
		},
		{
			Name:        "GDPR",
			Version:     "2018",
			Description: "General Data Protection Regulation",
			Type:        models.FrameworkDataProtection,
			Status:      models.FrameworkActive,
			Publisher:   "European Union",
			Controls: []models.Control{
				{
					ControlID:   "Art. 5",
					Title:       "Principles relating to processing of personal data",
					Description: "Personal data shall be processed lawfully, fairly and in a transparent manner",
					Category:    "Data Processing",
					Priority:    models.PriorityCritical,
					Requirements: []string{
						"Lawfulness of processing",
						"Fairness and transparency",
						"Purpose limitation",
						"Data minimization",
						"Accuracy",
						"Storage limitation",
						"Integrity and confidentiality",
					},
				},
				{
					ControlID:   "Art. 25",
					Title:       "Data protection by design and by default",
					Description: "Implement appropriate technical and organizational measures",
					Category:    "Technical Measures",
					Priority:    models.PriorityHigh,
					Requirements: []string{
						"Privacy by design implementation",
						"Data protection by default",
						"Technical and organizational measures",
					},
				},
			},
			AssessmentCriteria: models.AssessmentCriteria{
				Frequency:     models.FrequencySemiAnnually,
				Methodology:   "Compliance assessment",
				ScoringMethod: models.ScoringPassFail,
				Thresholds:    models.Thresholds{Pass: 100, Warning: 90, Fail: 80},
			},
			Tags:     []string{"privacy", "personal data"},
			Industry: []string{},
			Region:   []string{"European Union"},
		},
	}
}
