package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsec/internal/models"
)

func result(score, max float64) models.AssessmentResult {
	return models.AssessmentResult{Score: &score, MaxScore: &max}
}

func TestScoreResults_Scenario(t *testing.T) {
	got, ok := ScoreResults([]models.AssessmentResult{result(85, 100), result(70, 100)})

	require.True(t, ok)
	assert.Equal(t, 155.0, got.OverallScore)
	assert.Equal(t, 200.0, got.MaxPossibleScore)
	assert.InDelta(t, 77.5, got.CompliancePercentage, 1e-9)
	assert.Equal(t, models.RiskMedium, got.RiskLevel)
}

func TestScoreResults_Empty(t *testing.T) {
	_, ok := ScoreResults(nil)
	assert.False(t, ok)
}

func TestScoreResults_ZeroMaxYieldsZeroPercent(t *testing.T) {
	got, ok := ScoreResults([]models.AssessmentResult{result(0, 0), {}})

	require.True(t, ok)
	assert.Equal(t, 0.0, got.CompliancePercentage)
	assert.Equal(t, models.RiskCritical, got.RiskLevel)
}

func TestScoreResults_MissingScoresCountAsZero(t *testing.T) {
	max := 50.0
	got, ok := ScoreResults([]models.AssessmentResult{result(40, 50), {MaxScore: &max}})

	require.True(t, ok)
	assert.Equal(t, 40.0, got.OverallScore)
	assert.Equal(t, 100.0, got.MaxPossibleScore)
	assert.Equal(t, 40.0, got.CompliancePercentage)
	assert.Equal(t, models.RiskVeryHigh, got.RiskLevel)
}

func TestComplianceRiskLevel_Boundaries(t *testing.T) {
	cases := []struct {
		pct  float64
		want models.RiskLevel
	}{
		{100, models.RiskVeryLow},
		{96, models.RiskVeryLow},
		{95, models.RiskVeryLow},
		{94.9, models.RiskLow},
		{85, models.RiskLow},
		{84.99, models.RiskMedium},
		{70, models.RiskMedium},
		{69.9, models.RiskHigh},
		{50, models.RiskHigh},
		{49.9, models.RiskVeryHigh},
		{25, models.RiskVeryHigh},
		{24.9, models.RiskCritical},
		{0, models.RiskCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ComplianceRiskLevel(tc.pct), "pct %v", tc.pct)
	}
}

func TestComplianceTableDiffersFromRiskTable(t *testing.T) {
	// the same number lands in unrelated buckets depending on which table reads it
	assert.Equal(t, models.RiskHigh, RiskLevelForScore(10))
	assert.Equal(t, models.RiskCritical, ComplianceRiskLevel(10))
	assert.Equal(t, models.RiskCritical, RiskLevelForScore(25))
	assert.Equal(t, models.RiskVeryHigh, ComplianceRiskLevel(25))
}

func TestScoreResults_PercentageWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := rng.Intn(10) + 1
		results := make([]models.AssessmentResult, n)
		for j := range results {
			max := float64(rng.Intn(101))
			score := 0.0
			if max > 0 {
				score = float64(rng.Intn(int(max) + 1))
			}
			results[j] = result(score, max)
		}

		got, ok := ScoreResults(results)

		require.True(t, ok)
		if got.MaxPossibleScore == 0 {
			assert.Equal(t, 0.0, got.CompliancePercentage)
			continue
		}
		assert.GreaterOrEqual(t, got.CompliancePercentage, 0.0)
		assert.LessOrEqual(t, got.CompliancePercentage, 100.0)
	}
}

func TestApplyAssessmentScores_RecomputesOnChange(t *testing.T) {
	a := &models.Assessment{Results: []models.AssessmentResult{result(85, 100), result(70, 100)}}
	ApplyAssessmentScores(a)
	require.NotNil(t, a.CompliancePercentage)
	assert.InDelta(t, 77.5, *a.CompliancePercentage, 1e-9)

	a.Results = append(a.Results, result(100, 100))
	ApplyAssessmentScores(a)
	assert.InDelta(t, 85.0, *a.CompliancePercentage, 1e-9)
	assert.Equal(t, models.RiskLow, *a.RiskLevel)

	a.Results = nil
	ApplyAssessmentScores(a)
	assert.Nil(t, a.OverallScore)
	assert.Nil(t, a.MaxPossibleScore)
	assert.Nil(t, a.CompliancePercentage)
	assert.Nil(t, a.RiskLevel)
}

func TestApplyAssessmentScores_Idempotent(t *testing.T) {
	a := &models.Assessment{Results: []models.AssessmentResult{result(33, 40), result(12, 20)}}
	ApplyAssessmentScores(a)
	first := *a.CompliancePercentage
	firstLevel := *a.RiskLevel

	ApplyAssessmentScores(a)

	assert.Equal(t, first, *a.CompliancePercentage)
	assert.Equal(t, firstLevel, *a.RiskLevel)
}

func TestCheckResult(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.NoError(t, CheckResult(result(8, 10)))
	assert.NoError(t, CheckResult(result(0, 0)))
	assert.NoError(t, CheckResult(models.AssessmentResult{Status: models.ResultNotAssessed}))
	assert.NoError(t, CheckResult(models.AssessmentResult{MaxScore: f(10)}))

	cases := []struct {
		name string
		r    models.AssessmentResult
		want string
	}{
		{"negative score", models.AssessmentResult{ControlID: "AC-1", Score: f(-1), MaxScore: f(10)}, "result AC-1: score must not be negative"},
		{"negative max", models.AssessmentResult{ControlID: "AC-1", MaxScore: f(-5)}, "result AC-1: maxScore must not be negative"},
		{"score above max", result(12, 10), "result: score must not exceed maxScore"},
		{"score without max", models.AssessmentResult{Score: f(3)}, "result: score must not exceed maxScore"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckResult(tc.r)
			var re *ResultError
			require.ErrorAs(t, err, &re)
			assert.EqualError(t, err, tc.want)
		})
	}
}
