package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsec/internal/models"
)

func TestTrends(t *testing.T) {
	aug := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)
	old := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	assessments := []models.Assessment{
		assessmentAt(1, models.StatusCompleted, pct(80), sep),
		assessmentAt(2, models.StatusCompleted, pct(60), sep),
		assessmentAt(3, models.StatusCompleted, pct(90), aug),
		assessmentAt(4, models.StatusInProgress, pct(10), aug),
		assessmentAt(5, models.StatusCompleted, pct(10), old),
	}
	risks := []models.Risk{
		riskAt(1, models.RiskCritical, 25, sep),
		riskAt(2, models.RiskHigh, 12, sep),
		riskAt(3, models.RiskVeryHigh, 16, aug),
		riskAt(4, models.RiskCritical, 20, old),
	}

	got := Trends(assessments, risks, now, 0)

	assert.Equal(t, DefaultTrendMonths, got.Months)
	require.Len(t, got.ComplianceTrends, 2)
	assert.Equal(t, ComplianceTrendPoint{Year: 2026, Month: 8, AvgCompliance: 90, Count: 1}, got.ComplianceTrends[0])
	assert.Equal(t, 2026, got.ComplianceTrends[1].Year)
	assert.Equal(t, 9, got.ComplianceTrends[1].Month)
	assert.InDelta(t, 70, got.ComplianceTrends[1].AvgCompliance, 1e-9)
	assert.Equal(t, 2, got.ComplianceTrends[1].Count)

	require.Len(t, got.RiskTrends, 2)
	assert.Equal(t, 8, got.RiskTrends[0].Month)
	assert.Equal(t, 1, got.RiskTrends[0].TotalRisks)
	assert.Equal(t, 0, got.RiskTrends[0].HighRisks)
	assert.Equal(t, 1, got.RiskTrends[0].ByLevel[models.RiskVeryHigh])
	assert.Equal(t, 2, got.RiskTrends[1].TotalRisks)
	assert.Equal(t, 1, got.RiskTrends[1].CriticalRisks)
	assert.Equal(t, 1, got.RiskTrends[1].HighRisks)
}

func TestTrends_CustomWindowAndYearBoundary(t *testing.T) {
	dec := time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	risks := []models.Risk{riskAt(1, models.RiskLow, 3, jan), riskAt(2, models.RiskLow, 3, dec)}

	got := Trends(nil, risks, now, 11)
	require.Len(t, got.RiskTrends, 2)
	assert.Equal(t, 2025, got.RiskTrends[0].Year)
	assert.Equal(t, 2026, got.RiskTrends[1].Year)

	narrow := Trends(nil, risks, now, 6)
	assert.Empty(t, narrow.RiskTrends)
	assert.Equal(t, now.AddDate(0, -6, 0), narrow.Since)
}
