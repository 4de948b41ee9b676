package ui

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"compsec/internal/compliance"
	"compsec/internal/models"
	"compsec/internal/scoring"
)

const dateLayout = "2006-01-02"

// Level colors a risk level for terminal output.
func Level(l models.RiskLevel) string {
	switch l {
	case models.RiskCritical, models.RiskVeryHigh:
		return pterm.FgRed.Sprint(string(l))
	case models.RiskHigh:
		return pterm.FgLightRed.Sprint(string(l))
	case models.RiskMedium:
		return pterm.FgYellow.Sprint(string(l))
	default:
		return pterm.FgBlue.Sprint(string(l))
	}
}

func priority(p models.Priority) string {
	switch p {
	case models.PriorityCritical:
		return pterm.FgRed.Sprint("CRITICAL")
	case models.PriorityHigh:
		return pterm.FgLightRed.Sprint("HIGH")
	case models.PriorityMedium:
		return pterm.FgYellow.Sprint("MEDIUM")
	default:
		return pterm.FgBlue.Sprint("LOW")
	}
}

func PrintDashboard(d compliance.Dashboard) {
	rs := d.RiskStats
	pterm.DefaultSection.Println("Risks")
	_ = pterm.DefaultTable.WithHasHeader().WithData([][]string{
		{"Total", "Critical", "Very High", "High", "Medium", "Low", "Very Low", "Avg score"},
		{
			strconv.Itoa(rs.TotalRisks),
			strconv.Itoa(rs.CriticalRisks),
			strconv.Itoa(rs.VeryHighRisks),
			strconv.Itoa(rs.HighRisks),
			strconv.Itoa(rs.MediumRisks),
			strconv.Itoa(rs.LowRisks),
			strconv.Itoa(rs.VeryLowRisks),
			fmt.Sprintf("%.2f", rs.AvgRiskScore),
		},
	}).Render()

	as := d.AssessmentStats
	pterm.DefaultSection.Println("Assessments")
	_ = pterm.DefaultTable.WithHasHeader().WithData([][]string{
		{"Total", "Planned", "In Progress", "Completed", "Cancelled", "On Hold", "Avg compliance"},
		{
			strconv.Itoa(as.TotalAssessments),
			strconv.Itoa(as.PlannedAssessments),
			strconv.Itoa(as.InProgressAssessments),
			strconv.Itoa(as.CompletedAssessments),
			strconv.Itoa(as.CancelledAssessments),
			strconv.Itoa(as.OnHoldAssessments),
			fmt.Sprintf("%.2f%%", as.AvgCompliancePercentage),
		},
	}).Render()

	if len(d.FrameworkStats) > 0 {
		pterm.DefaultSection.Println("Frameworks by type")
		data := [][]string{{"Type", "Count"}}
		for _, b := range d.FrameworkStats {
			data = append(data, []string{b.Name, strconv.Itoa(b.Count)})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	pterm.DefaultSection.Println("Upcoming reviews")
	if len(d.UpcomingReviews) == 0 {
		pterm.Success.Println("No reviews due in the next 30 days.")
		return
	}
	data := [][]string{{"Risk", "Title", "Level", "Review date"}}
	for _, r := range d.UpcomingReviews {
		data = append(data, []string{
			pterm.FgCyan.Sprint(r.RiskID),
			r.Title,
			Level(r.RiskLevel),
			r.NextReviewDate.Format(dateLayout),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func PrintGaps(gaps []compliance.Gap) {
	if len(gaps) == 0 {
		pterm.Success.Println("No compliance gaps found in completed assessments.")
		return
	}

	pterm.Warning.Printf("Found %d compliance gaps:\n\n", len(gaps))

	data := [][]string{{"Priority", "Assessment", "Framework", "Control", "Status", "Findings"}}
	for _, g := range gaps {
		data = append(data, []string{
			priority(g.Priority),
			g.AssessmentRef,
			g.Framework,
			pterm.FgCyan.Sprint(g.ControlID) + " " + g.ControlTitle,
			string(g.Status),
			strconv.Itoa(len(g.Findings)),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func PrintScore(likelihood, impact int, s scoring.RiskScore) {
	_ = pterm.DefaultTable.WithHasHeader().WithData([][]string{
		{"Likelihood", "Impact", "Score", "Level"},
		{strconv.Itoa(likelihood), strconv.Itoa(impact), strconv.Itoa(s.Score), Level(s.Level)},
	}).Render()
}

func PrintFrameworks(fws []models.ComplianceFramework) {
	data := [][]string{{"ID", "Name", "Version", "Type", "Controls"}}
	for _, f := range fws {
		data = append(data, []string{
			strconv.FormatUint(uint64(f.ID), 10),
			f.Name,
			f.Version,
			string(f.Type),
			strconv.Itoa(len(f.Controls)),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func StartSpinner(text string) *pterm.SpinnerPrinter {
	spinner, _ := pterm.DefaultSpinner.Start(text)
	return spinner
}
