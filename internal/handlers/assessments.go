package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compsec/internal/apperr"
	"compsec/internal/compliance"
	"compsec/internal/database"
	"compsec/internal/models"
)

type findingRequest struct {
	Type           models.FindingType `json:"type" binding:"omitempty,enum"`
	Description    string             `json:"description"`
	Recommendation string             `json:"recommendation"`
	Priority       models.Priority    `json:"priority" binding:"omitempty,enum"`
}

type resultRequest struct {
	ControlID    string              `json:"controlId"`
	ControlTitle string              `json:"controlTitle"`
	Status       models.ResultStatus `json:"status" binding:"omitempty,enum"`
	Score        *float64            `json:"score"`
	MaxScore     *float64            `json:"maxScore"`
	Evidence     []models.Evidence   `json:"evidence"`
	Findings     []findingRequest    `json:"findings" binding:"omitempty,dive"`
	Notes        string              `json:"notes"`
	AssessedBy   string              `json:"assessedBy"`
	AssessedDate *time.Time          `json:"assessedDate"`
}

func (req resultRequest) model() models.AssessmentResult {
	r := models.AssessmentResult{
		ControlID:    req.ControlID,
		ControlTitle: req.ControlTitle,
		Status:       req.Status,
		Score:        req.Score,
		MaxScore:     req.MaxScore,
		Evidence:     req.Evidence,
		Notes:        req.Notes,
		AssessedBy:   req.AssessedBy,
		AssessedDate: req.AssessedDate,
		Findings:     make([]models.Finding, 0, len(req.Findings)),
	}
	for _, f := range req.Findings {
		r.Findings = append(r.Findings, models.Finding(f))
	}
	return r
}

func resultModels(in []resultRequest) []models.AssessmentResult {
	out := make([]models.AssessmentResult, 0, len(in))
	for _, r := range in {
		out = append(out, r.model())
	}
	return out
}

type recommendationRequest struct {
	Title       string                      `json:"title" binding:"required"`
	Description string                      `json:"description"`
	Priority    models.Priority             `json:"priority" binding:"omitempty,enum"`
	AssignedTo  string                      `json:"assignedTo"`
	DueDate     *time.Time                  `json:"dueDate"`
	Status      models.RecommendationStatus `json:"status" binding:"omitempty,enum"`
}

func (req recommendationRequest) model() models.Recommendation {
	return models.Recommendation{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Status:      req.Status,
	}
}

type createAssessmentRequest struct {
	Name             string                  `json:"name" binding:"required,max=255"`
	Description      string                  `json:"description"`
	FrameworkID      uint                    `json:"frameworkId" binding:"required"`
	Scope            models.AssessmentScope  `json:"scope"`
	Type             models.AssessmentType   `json:"type" binding:"required,enum"`
	Status           models.AssessmentStatus `json:"status" binding:"omitempty,enum"`
	PlannedStartDate time.Time               `json:"plannedStartDate" binding:"required"`
	PlannedEndDate   time.Time               `json:"plannedEndDate" binding:"required"`
	ActualStartDate  *time.Time              `json:"actualStartDate"`
	ActualEndDate    *time.Time              `json:"actualEndDate"`
	Assessor         string                  `json:"assessor" binding:"required"`
	Team             []models.TeamMember     `json:"team"`
	Results          []resultRequest         `json:"results" binding:"omitempty,dive"`
	Recommendations  []recommendationRequest `json:"recommendations" binding:"omitempty,dive"`
	FollowUpRequired bool                    `json:"followUpRequired"`
	FollowUpDate     *time.Time              `json:"followUpDate"`
	FollowUpAssessor string                  `json:"followUpAssessor"`
	CreatedBy        string                  `json:"createdBy"`
	Tags             []string                `json:"tags"`
	Notes            string                  `json:"notes"`
}

func (req createAssessmentRequest) model(actor string, at time.Time) models.Assessment {
	a := models.Assessment{
		Name:             req.Name,
		Description:      req.Description,
		FrameworkID:      req.FrameworkID,
		Scope:            req.Scope,
		Type:             req.Type,
		Status:           req.Status,
		PlannedStartDate: req.PlannedStartDate,
		PlannedEndDate:   req.PlannedEndDate,
		ActualStartDate:  req.ActualStartDate,
		ActualEndDate:    req.ActualEndDate,
		Assessor:         req.Assessor,
		Team:             req.Team,
		Results:          resultModels(req.Results),
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     req.FollowUpDate,
		FollowUpAssessor: req.FollowUpAssessor,
		CreatedBy:        actor,
		LastModifiedBy:   actor,
		Tags:             req.Tags,
		Notes:            req.Notes,
	}
	if a.Status == "" {
		a.Status = models.StatusPlanned
	}
	for _, r := range req.Recommendations {
		rec := r.model()
		rec.CreatedDate = at
		if rec.Status == "" {
			rec.Status = models.RecommendationOpen
		}
		a.Recommendations = append(a.Recommendations, rec)
	}
	return a
}

type updateAssessmentRequest struct {
	Name             *string                  `json:"name" binding:"omitempty,min=1,max=255"`
	Description      *string                  `json:"description"`
	FrameworkID      *uint                    `json:"frameworkId" binding:"omitempty,min=1"`
	Scope            *models.AssessmentScope  `json:"scope"`
	Type             *models.AssessmentType   `json:"type" binding:"omitempty,enum"`
	Status           *models.AssessmentStatus `json:"status" binding:"omitempty,enum"`
	PlannedStartDate *time.Time               `json:"plannedStartDate"`
	PlannedEndDate   *time.Time               `json:"plannedEndDate"`
	ActualStartDate  *time.Time               `json:"actualStartDate"`
	ActualEndDate    *time.Time               `json:"actualEndDate"`
	Assessor         *string                  `json:"assessor" binding:"omitempty,min=1"`
	Team             *[]models.TeamMember     `json:"team"`
	Results          *[]resultRequest         `json:"results" binding:"omitempty,dive"`
	Reports          *[]models.Report         `json:"reports"`
	FollowUpRequired *bool                    `json:"followUpRequired"`
	FollowUpDate     *time.Time               `json:"followUpDate"`
	FollowUpAssessor *string                  `json:"followUpAssessor"`
	LastModifiedBy   string                   `json:"lastModifiedBy"`
	Tags             *[]string                `json:"tags"`
	Notes            *string                  `json:"notes"`
}

func (req updateAssessmentRequest) apply(a *models.Assessment) (resultsChanged bool) {
	set(&a.Name, req.Name)
	set(&a.Description, req.Description)
	set(&a.FrameworkID, req.FrameworkID)
	set(&a.Scope, req.Scope)
	set(&a.Type, req.Type)
	set(&a.Status, req.Status)
	set(&a.PlannedStartDate, req.PlannedStartDate)
	set(&a.PlannedEndDate, req.PlannedEndDate)
	setPtr(&a.ActualStartDate, req.ActualStartDate)
	setPtr(&a.ActualEndDate, req.ActualEndDate)
	set(&a.Assessor, req.Assessor)
	set(&a.Team, req.Team)
	set(&a.Reports, req.Reports)
	set(&a.FollowUpRequired, req.FollowUpRequired)
	setPtr(&a.FollowUpDate, req.FollowUpDate)
	set(&a.FollowUpAssessor, req.FollowUpAssessor)
	set(&a.Tags, req.Tags)
	set(&a.Notes, req.Notes)
	if req.Results != nil {
		a.Results = resultModels(*req.Results)
		return true
	}
	return false
}

type updateResultRequest struct {
	ControlID    *string              `json:"controlId"`
	ControlTitle *string              `json:"controlTitle"`
	Status       *models.ResultStatus `json:"status" binding:"omitempty,enum"`
	Score        *float64             `json:"score"`
	MaxScore     *float64             `json:"maxScore"`
	Evidence     *[]models.Evidence   `json:"evidence"`
	Findings     *[]findingRequest    `json:"findings" binding:"omitempty,dive"`
	Notes        *string              `json:"notes"`
	AssessedBy   *string              `json:"assessedBy"`
	AssessedDate *time.Time           `json:"assessedDate"`
}

func (req updateResultRequest) apply(r *models.AssessmentResult) {
	set(&r.ControlID, req.ControlID)
	set(&r.ControlTitle, req.ControlTitle)
	set(&r.Status, req.Status)
	setPtr(&r.Score, req.Score)
	setPtr(&r.MaxScore, req.MaxScore)
	set(&r.Evidence, req.Evidence)
	set(&r.Notes, req.Notes)
	set(&r.AssessedBy, req.AssessedBy)
	setPtr(&r.AssessedDate, req.AssessedDate)
	if req.Findings != nil {
		r.Findings = make([]models.Finding, 0, len(*req.Findings))
		for _, f := range *req.Findings {
			r.Findings = append(r.Findings, models.Finding(f))
		}
	}
}

type updateRecommendationRequest struct {
	Title       *string                      `json:"title" binding:"omitempty,min=1"`
	Description *string                      `json:"description"`
	Priority    *models.Priority             `json:"priority" binding:"omitempty,enum"`
	AssignedTo  *string                      `json:"assignedTo"`
	DueDate     *time.Time                   `json:"dueDate"`
	Status      *models.RecommendationStatus `json:"status" binding:"omitempty,enum"`
}

func (req updateRecommendationRequest) apply(r *models.Recommendation) {
	set(&r.Title, req.Title)
	set(&r.Description, req.Description)
	set(&r.Priority, req.Priority)
	set(&r.AssignedTo, req.AssignedTo)
	setPtr(&r.DueDate, req.DueDate)
	set(&r.Status, req.Status)
}

type assessmentListQuery struct {
	pageQuery
	FrameworkID uint                    `form:"framework"`
	Status      models.AssessmentStatus `form:"status" binding:"omitempty,enum"`
	Type        models.AssessmentType   `form:"type" binding:"omitempty,enum"`
	Search      string                  `form:"search"`
}

type assessmentPage struct {
	Assessments []models.Assessment `json:"assessments"`
	Pagination  pagination          `json:"pagination"`
}

func ListAssessments(c *gin.Context) {
	var q assessmentListQuery
	if !bindQuery(c, &q) {
		return
	}
	page := database.Page{Page: q.Page, Limit: q.Limit}.Normalize()
	out, total, err := database.ListAssessments(c.Request.Context(), database.AssessmentFilter{
		FrameworkID: q.FrameworkID,
		Status:      q.Status,
		Type:        q.Type,
		Search:      q.Search,
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessmentPage{
		Assessments: out,
		Pagination: pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      total,
			TotalPages: page.TotalPages(total),
		},
	})
}

func GetAssessment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := database.GetAssessment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func CreateAssessment(c *gin.Context) {
	var req createAssessmentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PlannedEndDate.Before(req.PlannedStartDate) {
		respondError(c, apperr.Invalid("invalid request body", "plannedEndDate must not be before plannedStartDate"))
		return
	}
	ctx := c.Request.Context()
	if !frameworkExists(c, req.FrameworkID) {
		return
	}
	a := req.model(actorOrBody(c, req.CreatedBy, ""), now())
	if err := database.CreateAssessment(ctx, &a); err != nil {
		respondError(c, err)
		return
	}
	respondAssessment(c, http.StatusCreated, a.ID)
}

func UpdateAssessment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateAssessmentRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	a, err := database.GetAssessment(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.FrameworkID != nil && *req.FrameworkID != a.FrameworkID && !frameworkExists(c, *req.FrameworkID) {
		return
	}
	replace := req.apply(a)
	a.LastModifiedBy = actorOrBody(c, req.LastModifiedBy, a.LastModifiedBy)
	if err := database.SaveAssessment(ctx, a, replace); err != nil {
		respondError(c, err)
		return
	}
	respondAssessment(c, http.StatusOK, id)
}

func DeleteAssessment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := database.DeleteAssessment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	deleted(c, "Assessment")
}

func AddAssessmentResult(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req resultRequest
	if !bindJSON(c, &req) {
		return
	}
	r := req.model()
	a, err := database.AddResult(c.Request.Context(), id, &r, actorOr(c, ""))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func UpdateAssessmentResult(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resultID, ok := parseID(c, "resultId")
	if !ok {
		return
	}
	var req updateResultRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := database.UpdateResult(c.Request.Context(), id, resultID, actorOr(c, ""), func(r *models.AssessmentResult) error {
		req.apply(r)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func DeleteAssessmentResult(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resultID, ok := parseID(c, "resultId")
	if !ok {
		return
	}
	a, err := database.DeleteResult(c.Request.Context(), id, resultID, actorOr(c, ""))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func AssessmentStats(c *gin.Context) {
	out, err := database.AllAssessments(c.Request.Context(), database.AssessmentFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compliance.OverviewAssessments(out))
}

// StartAssessment moves the assessment to In Progress and stamps its actual start.
func StartAssessment(c *gin.Context) {
	transition(c, models.StatusInProgress, func(a *models.Assessment, at time.Time) {
		a.ActualStartDate = &at
	})
}

// CompleteAssessment moves the assessment to Completed and stamps its actual end.
func CompleteAssessment(c *gin.Context) {
	transition(c, models.StatusCompleted, func(a *models.Assessment, at time.Time) {
		a.ActualEndDate = &at
	})
}

func transition(c *gin.Context, status models.AssessmentStatus, stamp func(*models.Assessment, time.Time)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	a, err := database.GetAssessment(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	a.Status = status
	stamp(a, now())
	a.LastModifiedBy = actorOr(c, a.LastModifiedBy)
	if err := database.SaveAssessment(ctx, a, false); err != nil {
		respondError(c, err)
		return
	}
	respondAssessment(c, http.StatusOK, id)
}

func AddRecommendation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req recommendationRequest
	if !bindJSON(c, &req) {
		return
	}
	rec := req.model()
	rec.CreatedDate = now()
	a, err := database.AddRecommendation(c.Request.Context(), id, &rec, actorOr(c, ""))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func UpdateRecommendation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	recID, ok := parseID(c, "recId")
	if !ok {
		return
	}
	var req updateRecommendationRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := database.UpdateRecommendation(c.Request.Context(), id, recID, actorOr(c, ""), func(r *models.Recommendation) error {
		req.apply(r)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// frameworkExists answers 400 when id names no framework.
func frameworkExists(c *gin.Context, id uint) bool {
	_, err := database.GetFramework(c.Request.Context(), id)
	if apperr.Is(err, apperr.CodeNotFound) {
		respondError(c, apperr.Invalid("invalid request body", "frameworkId does not reference a framework"))
		return false
	}
	if err != nil {
		respondError(c, err)
		return false
	}
	return true
}

func respondAssessment(c *gin.Context, status int, id uint) {
	a, err := database.GetAssessment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, a)
}
