package compliance

import "compsec/internal/models"

type FrameworkRef struct {
	ID      uint                 `json:"id"`
	Name    string               `json:"name"`
	Version string               `json:"version"`
	Type    models.FrameworkType `json:"type"`
}

func RefOf(f models.ComplianceFramework) FrameworkRef {
	return FrameworkRef{ID: f.ID, Name: f.Name, Version: f.Version, Type: f.Type}
}

type ControlCoverage struct {
	TotalControls        int     `json:"totalControls"`
	AssessedControls     int     `json:"assessedControls"`
	CompliantControls    int     `json:"compliantControls"`
	CompliancePercentage float64 `json:"compliancePercentage"`
}

type FrameworkRisk struct {
	ID        uint              `json:"id"`
	RiskID    string            `json:"riskId"`
	Title     string            `json:"title"`
	RiskLevel models.RiskLevel  `json:"riskLevel"`
	Treatment models.Treatment  `json:"treatment"`
	Status    models.RiskStatus `json:"status"`
}

type FrameworkCompliance struct {
	Framework        FrameworkRef             `json:"framework"`
	Compliance       ControlCoverage          `json:"compliance"`
	RiskDistribution map[models.RiskLevel]int `json:"riskDistribution"`
	Assessments      []AssessmentSummary      `json:"assessments"`
	Risks            []FrameworkRisk          `json:"risks"`
}

// FrameworkStatus measures control coverage of fw. Assessments and risks that do not
// reference fw are ignored, so callers may pass wider collections.
//
// Assessed and compliant counts sum over every assessment of the framework, so a control
// assessed twice counts twice; the percentage is compliant results over the catalog size,
// rounded to two decimals.
func FrameworkStatus(fw models.ComplianceFramework, assessments []models.Assessment, risks []models.Risk) FrameworkCompliance {
	out := FrameworkCompliance{
		Framework:        RefOf(fw),
		RiskDistribution: map[models.RiskLevel]int{},
		Assessments:      []AssessmentSummary{},
		Risks:            []FrameworkRisk{},
	}
	out.Compliance.TotalControls = len(fw.Controls)

	for _, a := range assessments {
		if a.FrameworkID != fw.ID {
			continue
		}
		out.Compliance.AssessedControls += len(a.Results)
		for _, r := range a.Results {
			if r.Status == models.ResultCompliant {
				out.Compliance.CompliantControls++
			}
		}
		out.Assessments = append(out.Assessments, summarizeAssessment(a))
	}
	if out.Compliance.TotalControls > 0 {
		pct := float64(out.Compliance.CompliantControls) * 100 / float64(out.Compliance.TotalControls)
		out.Compliance.CompliancePercentage = round2(pct)
	}

	var mapped []models.Risk
	for _, r := range risks {
		if !r.MapsTo(fw.ID) {
			continue
		}
		mapped = append(mapped, r)
		out.Risks = append(out.Risks, FrameworkRisk{
			ID:        r.ID,
			RiskID:    r.RiskID,
			Title:     r.Title,
			RiskLevel: r.RiskLevel,
			Treatment: r.Treatment,
			Status:    r.Status,
		})
	}
	out.RiskDistribution = LevelHistogram(mapped)
	return out
}
