package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compsec/internal/compliance"
	"compsec/internal/database"
	"compsec/internal/models"
)

type mappingRequest struct {
	FrameworkID  uint   `json:"frameworkId" binding:"required"`
	ControlID    string `json:"controlId"`
	ControlTitle string `json:"controlTitle"`
	Requirement  string `json:"requirement"`
}

func toMappings(in []mappingRequest) []models.RiskFrameworkMapping {
	out := make([]models.RiskFrameworkMapping, 0, len(in))
	for _, m := range in {
		out = append(out, models.RiskFrameworkMapping{
			FrameworkID:  m.FrameworkID,
			ControlID:    m.ControlID,
			ControlTitle: m.ControlTitle,
			Requirement:  m.Requirement,
		})
	}
	return out
}

type createRiskRequest struct {
	Title       string              `json:"title" binding:"required,max=255"`
	Description string              `json:"description" binding:"required"`
	Category    models.RiskCategory `json:"category" binding:"required,enum"`
	SubCategory string              `json:"subCategory"`

	Likelihood      models.Scale `json:"likelihood" binding:"required,enum"`
	LikelihoodScore int          `json:"likelihoodScore" binding:"required,min=1,max=5"`
	Impact          models.Scale `json:"impact" binding:"required,enum"`
	ImpactScore     int          `json:"impactScore" binding:"required,min=1,max=5"`

	Treatment            models.Treatment       `json:"treatment" binding:"required,enum"`
	TreatmentDescription string                 `json:"treatmentDescription"`
	TreatmentStatus      models.TreatmentStatus `json:"treatmentStatus" binding:"omitempty,enum"`
	TreatmentOwner       string                 `json:"treatmentOwner"`
	TreatmentDueDate     *time.Time             `json:"treatmentDueDate"`
	TreatmentCost        *float64               `json:"treatmentCost" binding:"omitempty,gte=0"`

	ResidualLikelihood      *models.Scale `json:"residualLikelihood" binding:"omitempty,enum"`
	ResidualLikelihoodScore *int          `json:"residualLikelihoodScore" binding:"omitempty,min=1,max=5"`
	ResidualImpact          *models.Scale `json:"residualImpact" binding:"omitempty,enum"`
	ResidualImpactScore     *int          `json:"residualImpactScore" binding:"omitempty,min=1,max=5"`

	ComplianceFrameworks []mappingRequest `json:"complianceFrameworks" binding:"omitempty,dive"`

	BusinessUnit  string `json:"businessUnit" binding:"required"`
	Asset         string `json:"asset" binding:"required"`
	Threat        string `json:"threat" binding:"required"`
	Vulnerability string `json:"vulnerability" binding:"required"`

	IdentifiedDate *time.Time        `json:"identifiedDate"`
	LastReviewDate *time.Time        `json:"lastReviewDate"`
	NextReviewDate time.Time         `json:"nextReviewDate" binding:"required"`
	Status         models.RiskStatus `json:"status" binding:"omitempty,enum"`

	Tags        []string            `json:"tags"`
	Notes       string              `json:"notes"`
	Attachments []models.Attachment `json:"attachments"`
	CreatedBy   string              `json:"createdBy"`
}

func (req createRiskRequest) model(actor string, at time.Time) models.Risk {
	r := models.Risk{
		Title:                   req.Title,
		Description:             req.Description,
		Category:                req.Category,
		SubCategory:             req.SubCategory,
		Likelihood:              req.Likelihood,
		LikelihoodScore:         req.LikelihoodScore,
		Impact:                  req.Impact,
		ImpactScore:             req.ImpactScore,
		Treatment:               req.Treatment,
		TreatmentDescription:    req.TreatmentDescription,
		TreatmentStatus:         req.TreatmentStatus,
		TreatmentOwner:          req.TreatmentOwner,
		TreatmentDueDate:        req.TreatmentDueDate,
		TreatmentCost:           req.TreatmentCost,
		ResidualLikelihood:      req.ResidualLikelihood,
		ResidualLikelihoodScore: req.ResidualLikelihoodScore,
		ResidualImpact:          req.ResidualImpact,
		ResidualImpactScore:     req.ResidualImpactScore,
		FrameworkMappings:       toMappings(req.ComplianceFrameworks),
		BusinessUnit:            req.BusinessUnit,
		Asset:                   req.Asset,
		Threat:                  req.Threat,
		Vulnerability:           req.Vulnerability,
		IdentifiedDate:          at,
		LastReviewDate:          at,
		NextReviewDate:          req.NextReviewDate,
		Status:                  req.Status,
		Tags:                    req.Tags,
		Notes:                   req.Notes,
		Attachments:             req.Attachments,
		CreatedBy:               actor,
		UpdatedBy:               actor,
	}
	if req.IdentifiedDate != nil {
		r.IdentifiedDate = *req.IdentifiedDate
	}
	if req.LastReviewDate != nil {
		r.LastReviewDate = *req.LastReviewDate
	}
	if r.TreatmentStatus == "" {
		r.TreatmentStatus = models.TreatmentPlanned
	}
	if r.Status == "" {
		r.Status = models.RiskActive
	}
	return r
}

// updateRiskRequest is a partial update: only fields present in the body change.
type updateRiskRequest struct {
	Title       *string              `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string              `json:"description" binding:"omitempty,min=1"`
	Category    *models.RiskCategory `json:"category" binding:"omitempty,enum"`
	SubCategory *string              `json:"subCategory"`

	Likelihood      *models.Scale `json:"likelihood" binding:"omitempty,enum"`
	LikelihoodScore *int          `json:"likelihoodScore" binding:"omitempty,min=1,max=5"`
	Impact          *models.Scale `json:"impact" binding:"omitempty,enum"`
	ImpactScore     *int          `json:"impactScore" binding:"omitempty,min=1,max=5"`

	Treatment            *models.Treatment       `json:"treatment" binding:"omitempty,enum"`
	TreatmentDescription *string                 `json:"treatmentDescription"`
	TreatmentStatus      *models.TreatmentStatus `json:"treatmentStatus" binding:"omitempty,enum"`
	TreatmentOwner       *string                 `json:"treatmentOwner"`
	TreatmentDueDate     *time.Time              `json:"treatmentDueDate"`
	TreatmentCost        *float64                `json:"treatmentCost" binding:"omitempty,gte=0"`

	residualRequest

	ComplianceFrameworks *[]mappingRequest `json:"complianceFrameworks" binding:"omitempty,dive"`

	BusinessUnit  *string `json:"businessUnit" binding:"omitempty,min=1"`
	Asset         *string `json:"asset" binding:"omitempty,min=1"`
	Threat        *string `json:"threat" binding:"omitempty,min=1"`
	Vulnerability *string `json:"vulnerability" binding:"omitempty,min=1"`

	IdentifiedDate *time.Time         `json:"identifiedDate"`
	LastReviewDate *time.Time         `json:"lastReviewDate"`
	NextReviewDate *time.Time         `json:"nextReviewDate"`
	Status         *models.RiskStatus `json:"status" binding:"omitempty,enum"`

	Tags        *[]string            `json:"tags"`
	Notes       *string              `json:"notes"`
	Attachments *[]models.Attachment `json:"attachments"`
	UpdatedBy   string               `json:"updatedBy"`
}

type residualRequest struct {
	ResidualLikelihood      *models.Scale `json:"residualLikelihood" binding:"omitempty,enum"`
	ResidualLikelihoodScore *int          `json:"residualLikelihoodScore" binding:"omitempty,min=1,max=5"`
	ResidualImpact          *models.Scale `json:"residualImpact" binding:"omitempty,enum"`
	ResidualImpactScore     *int          `json:"residualImpactScore" binding:"omitempty,min=1,max=5"`
}

func (req residualRequest) apply(r *models.Risk) {
	setPtr(&r.ResidualLikelihood, req.ResidualLikelihood)
	setPtr(&r.ResidualLikelihoodScore, req.ResidualLikelihoodScore)
	setPtr(&r.ResidualImpact, req.ResidualImpact)
	setPtr(&r.ResidualImpactScore, req.ResidualImpactScore)
}

// apply copies the given fields onto r and reports whether the framework mappings changed.
func (req updateRiskRequest) apply(r *models.Risk) (mappingsChanged bool) {
	set(&r.Title, req.Title)
	set(&r.Description, req.Description)
	set(&r.Category, req.Category)
	set(&r.SubCategory, req.SubCategory)
	set(&r.Likelihood, req.Likelihood)
	set(&r.LikelihoodScore, req.LikelihoodScore)
	set(&r.Impact, req.Impact)
	set(&r.ImpactScore, req.ImpactScore)
	set(&r.Treatment, req.Treatment)
	set(&r.TreatmentDescription, req.TreatmentDescription)
	set(&r.TreatmentStatus, req.TreatmentStatus)
	set(&r.TreatmentOwner, req.TreatmentOwner)
	setPtr(&r.TreatmentDueDate, req.TreatmentDueDate)
	setPtr(&r.TreatmentCost, req.TreatmentCost)
	req.residualRequest.apply(r)
	set(&r.BusinessUnit, req.BusinessUnit)
	set(&r.Asset, req.Asset)
	set(&r.Threat, req.Threat)
	set(&r.Vulnerability, req.Vulnerability)
	set(&r.IdentifiedDate, req.IdentifiedDate)
	set(&r.LastReviewDate, req.LastReviewDate)
	set(&r.NextReviewDate, req.NextReviewDate)
	set(&r.Status, req.Status)
	set(&r.Tags, req.Tags)
	set(&r.Notes, req.Notes)
	set(&r.Attachments, req.Attachments)
	if req.ComplianceFrameworks != nil {
		r.FrameworkMappings = toMappings(*req.ComplianceFrameworks)
		return true
	}
	return false
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

type treatmentRequest struct {
	Treatment            models.Treatment `json:"treatment" binding:"required,enum"`
	TreatmentDescription string           `json:"treatmentDescription"`
	TreatmentOwner       string           `json:"treatmentOwner"`
	TreatmentDueDate     *time.Time       `json:"treatmentDueDate"`
	TreatmentCost        *float64         `json:"treatmentCost" binding:"omitempty,gte=0"`
	UpdatedBy            string           `json:"updatedBy"`
}

type residualPatchRequest struct {
	residualRequest
	UpdatedBy string `json:"updatedBy"`
}

type riskListQuery struct {
	pageQuery
	Category     models.RiskCategory `form:"category" binding:"omitempty,enum"`
	RiskLevel    models.RiskLevel    `form:"riskLevel" binding:"omitempty,enum"`
	Treatment    models.Treatment    `form:"treatment" binding:"omitempty,enum"`
	Status       models.RiskStatus   `form:"status" binding:"omitempty,enum"`
	BusinessUnit string              `form:"businessUnit"`
	Search       string              `form:"search"`
}

type riskPage struct {
	Risks      []models.Risk `json:"risks"`
	Pagination pagination    `json:"pagination"`
}

func ListRisks(c *gin.Context) {
	var q riskListQuery
	if !bindQuery(c, &q) {
		return
	}
	page := database.Page{Page: q.Page, Limit: q.Limit}.Normalize()
	filter := database.RiskFilter{
		Category:     q.Category,
		RiskLevel:    q.RiskLevel,
		Treatment:    q.Treatment,
		Status:       q.Status,
		BusinessUnit: q.BusinessUnit,
		Search:       q.Search,
	}
	risks, total, err := database.ListRisks(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, riskPage{
		Risks: risks,
		Pagination: pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      total,
			TotalPages: page.TotalPages(total),
		},
	})
}

func GetRisk(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	risk, err := database.GetRisk(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}

func CreateRisk(c *gin.Context) {
	var req createRiskRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := resolveActor(c, req.CreatedBy, "createdBy")
	if !ok {
		return
	}
	risk := req.model(actor, now())
	if err := database.CreateRisk(c.Request.Context(), &risk); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, risk)
}

func UpdateRisk(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateRiskRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	risk, err := database.GetRisk(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	mappingsChanged := req.apply(risk)
	risk.UpdatedBy = actorOrBody(c, req.UpdatedBy, risk.UpdatedBy)
	if err := database.SaveRisk(ctx, risk, mappingsChanged); err != nil {
		respondError(c, err)
		return
	}
	respondRisk(c, id)
}

func DeleteRisk(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := database.DeleteRisk(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	deleted(c, "Risk")
}

// UpdateRiskTreatment replaces the treatment plan and restarts it as Planned.
func UpdateRiskTreatment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req treatmentRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	risk, err := database.GetRisk(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	risk.Treatment = req.Treatment
	risk.TreatmentDescription = req.TreatmentDescription
	risk.TreatmentOwner = req.TreatmentOwner
	risk.TreatmentDueDate = req.TreatmentDueDate
	risk.TreatmentCost = req.TreatmentCost
	risk.TreatmentStatus = models.TreatmentPlanned
	risk.UpdatedBy = actorOrBody(c, req.UpdatedBy, risk.UpdatedBy)
	if err := database.SaveRisk(ctx, risk, false); err != nil {
		respondError(c, err)
		return
	}
	respondRisk(c, id)
}

// UpdateRiskResidual sets the residual assessment; the residual score and level are
// recomputed on save like any other risk write.
func UpdateRiskResidual(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req residualPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	risk, err := database.GetRisk(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	req.residualRequest.apply(risk)
	risk.UpdatedBy = actorOrBody(c, req.UpdatedBy, risk.UpdatedBy)
	if err := database.SaveRisk(ctx, risk, false); err != nil {
		respondError(c, err)
		return
	}
	respondRisk(c, id)
}

func RiskStats(c *gin.Context) {
	risks, err := database.AllRisks(c.Request.Context(), database.RiskFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compliance.OverviewRisks(risks))
}

func RisksByFramework(c *gin.Context) {
	id, ok := parseID(c, "frameworkId")
	if !ok {
		return
	}
	risks, err := database.AllRisks(c.Request.Context(), database.RiskFilter{FrameworkID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, risks)
}

// respondRisk reloads the stored risk so the reply carries joined framework names.
func respondRisk(c *gin.Context, id uint) {
	risk, err := database.GetRisk(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}

// actorOrBody prefers a name given in the body, then the request actor, then keep.
func actorOrBody(c *gin.Context, fromBody, keep string) string {
	if fromBody != "" {
		return fromBody
	}
	return actorOr(c, keep)
}
