package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"compsec/internal/apperr"
	"compsec/internal/compliance"
	"compsec/internal/database"
	"compsec/internal/models"
)

// Dashboard summarizes every risk, assessment and framework in one reply.
func Dashboard(c *gin.Context) {
	snap, err := database.LoadSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compliance.BuildDashboard(snap.Risks, snap.Assessments, snap.Frameworks, now()))
}

func FrameworkCompliance(c *gin.Context) {
	id, ok := parseID(c, "frameworkId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	fw, err := database.GetFramework(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	var (
		assessments []models.Assessment
		risks       []models.Risk
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		assessments, err = database.AllAssessments(gctx, database.AssessmentFilter{FrameworkID: id})
		return err
	})
	g.Go(func() (err error) {
		risks, err = database.AllRisks(gctx, database.RiskFilter{FrameworkID: id})
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compliance.FrameworkStatus(*fw, assessments, risks))
}

type trendsQuery struct {
	Months int `form:"months" binding:"omitempty,min=1,max=120"`
}

func ComplianceTrends(c *gin.Context) {
	var q trendsQuery
	if !bindQuery(c, &q) {
		return
	}
	at := now()
	since := compliance.TrendWindowStart(at, q.Months)
	ctx := c.Request.Context()
	var (
		assessments []models.Assessment
		risks       []models.Risk
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		assessments, err = database.AllAssessments(gctx, database.AssessmentFilter{
			Status:      models.StatusCompleted,
			CreatedFrom: &since,
		})
		return err
	})
	g.Go(func() (err error) {
		risks, err = database.AllRisks(gctx, database.RiskFilter{CreatedFrom: &since})
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compliance.Trends(assessments, risks, at, q.Months))
}

type gapsQuery struct {
	FrameworkID uint `form:"frameworkId"`
}

func ComplianceGaps(c *gin.Context) {
	var q gapsQuery
	if !bindQuery(c, &q) {
		return
	}
	assessments, err := database.AllAssessments(c.Request.Context(), database.AssessmentFilter{
		FrameworkID: q.FrameworkID,
		Status:      models.StatusCompleted,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compliance.FindGaps(assessments))
}

type reportRequest struct {
	FrameworkID        uint       `json:"frameworkId"`
	StartDate          *time.Time `json:"startDate"`
	EndDate            *time.Time `json:"endDate"`
	IncludeRisks       *bool      `json:"includeRisks"`
	IncludeAssessments *bool      `json:"includeAssessments"`
}

func orTrue(b *bool) bool { return b == nil || *b }

// ComplianceReport builds a report over records created inside the requested period,
// optionally narrowed to one framework.
func ComplianceReport(c *gin.Context) {
	var req reportRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		respondError(c, apperr.Invalid("invalid request body", "startDate must not be after endDate"))
		return
	}
	at := now()
	in := compliance.ReportInput{
		GeneratedAt:        at,
		Period:             compliance.ResolvePeriod(req.StartDate, req.EndDate, at),
		IncludeRisks:       orTrue(req.IncludeRisks),
		IncludeAssessments: orTrue(req.IncludeAssessments),
	}
	ctx := c.Request.Context()
	if req.FrameworkID != 0 {
		fw, err := database.GetFramework(ctx, req.FrameworkID)
		if err != nil {
			respondError(c, err)
			return
		}
		in.Framework = fw
	}

	g, gctx := errgroup.WithContext(ctx)
	if in.IncludeRisks {
		g.Go(func() (err error) {
			in.Risks, err = database.AllRisks(gctx, database.RiskFilter{
				FrameworkID: req.FrameworkID,
				CreatedFrom: &in.Period.StartDate,
				CreatedTo:   &in.Period.EndDate,
			})
			return err
		})
	}
	if in.IncludeAssessments {
		g.Go(func() (err error) {
			in.Assessments, err = database.AllAssessments(gctx, database.AssessmentFilter{
				FrameworkID: req.FrameworkID,
				CreatedFrom: &in.Period.StartDate,
				CreatedTo:   &in.Period.EndDate,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compliance.BuildReport(in))
}
