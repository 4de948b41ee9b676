package server

import (
	"context"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"compsec/internal/config"
	"compsec/internal/handlers"
	"compsec/internal/middleware"
	"compsec/internal/validation"
)

const sweepInterval = time.Minute

// NewRouter builds the HTTP API. The rate limiter's idle buckets are swept until ctx ends.
func NewRouter(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, errors.Wrap(err, "register validators")
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 7 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions("compsec_session", store))
	r.Use(middleware.InjectActor())

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	go sweep(ctx, limiter)

	api := r.Group("/api")
	api.Use(limiter.Middleware())

	// SESSION
	api.GET("/session", handlers.CurrentSession)
	api.POST("/session", handlers.StartSession)
	api.DELETE("/session", handlers.EndSession)

	// RISKS
	risks := api.Group("/risks")
	risks.GET("", handlers.ListRisks)
	risks.POST("", handlers.CreateRisk)
	risks.GET("/stats/overview", handlers.RiskStats)
	risks.GET("/framework/:frameworkId", handlers.RisksByFramework)
	risks.GET("/:id", handlers.GetRisk)
	risks.PUT("/:id", handlers.UpdateRisk)
	risks.DELETE("/:id", handlers.DeleteRisk)
	risks.PATCH("/:id/treatment", handlers.UpdateRiskTreatment)
	risks.PATCH("/:id/residual", handlers.UpdateRiskResidual)

	// FRAMEWORKS
	frameworks := api.Group("/frameworks")
	frameworks.GET("", handlers.ListFrameworks)
	frameworks.POST("", handlers.CreateFramework)
	frameworks.POST("/upload", handlers.UploadFramework)
	frameworks.POST("/initialize", handlers.InitializeFrameworks)
	frameworks.GET("/:id", handlers.GetFramework)
	frameworks.PUT("/:id", handlers.UpdateFramework)
	frameworks.DELETE("/:id", handlers.DeleteFramework)
	frameworks.GET("/:id/controls", handlers.ListControls)
	frameworks.POST("/:id/controls", handlers.AddControl)
	frameworks.PUT("/:id/controls/:controlId", handlers.UpdateControl)
	frameworks.DELETE("/:id/controls/:controlId", handlers.DeleteControl)

	// ASSESSMENTS
	assessments := api.Group("/assessments")
	assessments.GET("", handlers.ListAssessments)
	assessments.POST("", handlers.CreateAssessment)
	assessments.GET("/stats/overview", handlers.AssessmentStats)
	assessments.GET("/:id", handlers.GetAssessment)
	assessments.PUT("/:id", handlers.UpdateAssessment)
	assessments.DELETE("/:id", handlers.DeleteAssessment)
	assessments.POST("/:id/results", handlers.AddAssessmentResult)
	assessments.PUT("/:id/results/:resultId", handlers.UpdateAssessmentResult)
	assessments.DELETE("/:id/results/:resultId", handlers.DeleteAssessmentResult)
	assessments.PATCH("/:id/start", handlers.StartAssessment)
	assessments.PATCH("/:id/complete", handlers.CompleteAssessment)
	assessments.POST("/:id/recommendations", handlers.AddRecommendation)
	assessments.PUT("/:id/recommendations/:recId", handlers.UpdateRecommendation)

	// COMPLIANCE
	comp := api.Group("/compliance")
	comp.GET("/dashboard", handlers.Dashboard)
	comp.GET("/status/:frameworkId", handlers.FrameworkCompliance)
	comp.GET("/trends", handlers.ComplianceTrends)
	comp.GET("/gaps", handlers.ComplianceGaps)
	comp.POST("/report", handlers.ComplianceReport)

	return r, nil
}

func sweep(ctx context.Context, l *middleware.RateLimiter) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			l.Sweep(now)
		}
	}
}
