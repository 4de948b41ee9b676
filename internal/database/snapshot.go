package database

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"compsec/internal/metrics"
	"compsec/internal/models"
)

// Snapshot is every record the compliance dashboard summarizes.
type Snapshot struct {
	Risks       []models.Risk
	Assessments []models.Assessment
	Frameworks  []models.ComplianceFramework
}

// LoadSnapshot reads risks, assessments and frameworks concurrently. The three reads are
// independent and each sees the store's default consistency.
func LoadSnapshot(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	defer func() { metrics.DashboardLoad.Observe(time.Since(start).Seconds()) }()

	var s Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Risks, err = AllRisks(ctx, RiskFilter{})
		return err
	})
	g.Go(func() (err error) {
		s.Assessments, err = AllAssessments(ctx, AssessmentFilter{})
		return err
	})
	g.Go(func() (err error) {
		s.Frameworks, err = ListFrameworks(ctx, FrameworkFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
