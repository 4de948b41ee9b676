package compliance

import (
	"sort"
	"time"

	"compsec/internal/models"
)

const DefaultTrendMonths = 12

type ComplianceTrendPoint struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	AvgCompliance float64 `json:"avgCompliance"`
	Count         int     `json:"count"`
}

type RiskTrendPoint struct {
	Year          int                      `json:"year"`
	Month         int                      `json:"month"`
	TotalRisks    int                      `json:"totalRisks"`
	CriticalRisks int                      `json:"criticalRisks"`
	HighRisks     int                      `json:"highRisks"`
	ByLevel       map[models.RiskLevel]int `json:"byLevel"`
}

type TrendReport struct {
	Months           int                    `json:"months"`
	Since            time.Time              `json:"since"`
	ComplianceTrends []ComplianceTrendPoint `json:"complianceTrends"`
	RiskTrends       []RiskTrendPoint       `json:"riskTrends"`
}

// TrendWindowStart is the inclusive lower creation-time bound of a trailing window of months.
// A non-positive months falls back to DefaultTrendMonths.
func TrendWindowStart(now time.Time, months int) time.Time {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	return now.AddDate(0, -months, 0)
}

type period struct {
	year  int
	month time.Month
}

func periodOf(t time.Time) period {
	t = t.UTC()
	return period{t.Year(), t.Month()}
}

func (p period) before(o period) bool {
	if p.year != o.year {
		return p.year < o.year
	}
	return p.month < o.month
}

// Trends groups completed assessments and all risks created inside the window by calendar
// month (UTC), oldest month first.
func Trends(assessments []models.Assessment, risks []models.Risk, now time.Time, months int) TrendReport {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	since := TrendWindowStart(now, months)
	report := TrendReport{
		Months:           months,
		Since:            since,
		ComplianceTrends: []ComplianceTrendPoint{},
		RiskTrends:       []RiskTrendPoint{},
	}

	type complianceAcc struct {
		sum    float64
		scored int
		count  int
	}
	compliance := map[period]*complianceAcc{}
	for _, a := range assessments {
		if a.Status != models.StatusCompleted || a.CreatedAt.Before(since) {
			continue
		}
		p := periodOf(a.CreatedAt)
		acc := compliance[p]
		if acc == nil {
			acc = &complianceAcc{}
			compliance[p] = acc
		}
		acc.count++
		if a.CompliancePercentage != nil {
			acc.sum += *a.CompliancePercentage
			acc.scored++
		}
	}
	for _, p := range sortedPeriods(compliance) {
		acc := compliance[p]
		point := ComplianceTrendPoint{Year: p.year, Month: int(p.month), Count: acc.count}
		if acc.scored > 0 {
			point.AvgCompliance = acc.sum / float64(acc.scored)
		}
		report.ComplianceTrends = append(report.ComplianceTrends, point)
	}

	riskPoints := map[period]*RiskTrendPoint{}
	for _, r := range risks {
		if r.CreatedAt.Before(since) {
			continue
		}
		p := periodOf(r.CreatedAt)
		point := riskPoints[p]
		if point == nil {
			point = &RiskTrendPoint{Year: p.year, Month: int(p.month), ByLevel: map[models.RiskLevel]int{}}
			riskPoints[p] = point
		}
		point.TotalRisks++
		point.ByLevel[r.RiskLevel]++
		switch r.RiskLevel {
		case models.RiskCritical:
			point.CriticalRisks++
		case models.RiskHigh:
			point.HighRisks++
		}
	}
	for _, p := range sortedPeriods(riskPoints) {
		report.RiskTrends = append(report.RiskTrends, *riskPoints[p])
	}
	return report
}

func sortedPeriods[V any](m map[period]V) []period {
	keys := make([]period, 0, len(m))
	for p := range m {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })
	return keys
}
