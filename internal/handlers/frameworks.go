package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compsec/internal/apperr"
	"compsec/internal/catalog"
	"compsec/internal/database"
	"compsec/internal/models"
	"compsec/internal/validation"
)

type frameworkRequest struct {
	Name               string                        `json:"name" binding:"required,max=255"`
	Version            string                        `json:"version" binding:"required,max=64"`
	Description        string                        `json:"description" binding:"required"`
	Type               models.FrameworkType          `json:"type" binding:"required,enum"`
	Status             models.FrameworkStatus        `json:"status" binding:"omitempty,enum"`
	Controls           []catalog.ControlDocument     `json:"controls" binding:"omitempty,dive"`
	Requirements       []models.FrameworkRequirement `json:"requirements"`
	AssessmentCriteria models.AssessmentCriteria     `json:"assessmentCriteria"`
	Publisher          string                        `json:"publisher"`
	Website            string                        `json:"website"`
	LastUpdated        *time.Time                    `json:"lastUpdated"`
	EffectiveDate      *time.Time                    `json:"effectiveDate"`
	ExpiryDate         *time.Time                    `json:"expiryDate"`
	IsCustom           bool                          `json:"isCustom"`
	CreatedBy          string                        `json:"createdBy"`
	Tags               []string                      `json:"tags"`
	Industry           []string                      `json:"industry"`
	Region             []string                      `json:"region"`
}

func (req frameworkRequest) model(actor string) models.ComplianceFramework {
	fw := models.ComplianceFramework{
		Name:               req.Name,
		Version:            req.Version,
		Description:        req.Description,
		Type:               req.Type,
		Status:             req.Status,
		Requirements:       req.Requirements,
		AssessmentCriteria: req.AssessmentCriteria,
		Publisher:          req.Publisher,
		Website:            req.Website,
		LastUpdated:        req.LastUpdated,
		EffectiveDate:      req.EffectiveDate,
		ExpiryDate:         req.ExpiryDate,
		IsCustom:           req.IsCustom,
		CreatedBy:          actor,
		Tags:               req.Tags,
		Industry:           req.Industry,
		Region:             req.Region,
		Controls:           make([]models.Control, 0, len(req.Controls)),
	}
	if fw.Status == "" {
		fw.Status = models.FrameworkActive
	}
	for _, c := range req.Controls {
		fw.Controls = append(fw.Controls, c.Model())
	}
	return fw
}

type updateFrameworkRequest struct {
	Name               *string                        `json:"name" binding:"omitempty,min=1,max=255"`
	Version            *string                        `json:"version" binding:"omitempty,min=1,max=64"`
	Description        *string                        `json:"description" binding:"omitempty,min=1"`
	Type               *models.FrameworkType          `json:"type" binding:"omitempty,enum"`
	Status             *models.FrameworkStatus        `json:"status" binding:"omitempty,enum"`
	Controls           *[]catalog.ControlDocument     `json:"controls" binding:"omitempty,dive"`
	Requirements       *[]models.FrameworkRequirement `json:"requirements"`
	AssessmentCriteria *models.AssessmentCriteria     `json:"assessmentCriteria"`
	Publisher          *string                        `json:"publisher"`
	Website            *string                        `json:"website"`
	LastUpdated        *time.Time                     `json:"lastUpdated"`
	EffectiveDate      *time.Time                     `json:"effectiveDate"`
	ExpiryDate         *time.Time                     `json:"expiryDate"`
	IsCustom           *bool                          `json:"isCustom"`
	Tags               *[]string                      `json:"tags"`
	Industry           *[]string                      `json:"industry"`
	Region             *[]string                      `json:"region"`
}

func (req updateFrameworkRequest) apply(fw *models.ComplianceFramework) (controlsChanged bool) {
	set(&fw.Name, req.Name)
	set(&fw.Version, req.Version)
	set(&fw.Description, req.Description)
	set(&fw.Type, req.Type)
	set(&fw.Status, req.Status)
	set(&fw.Requirements, req.Requirements)
	set(&fw.AssessmentCriteria, req.AssessmentCriteria)
	set(&fw.Publisher, req.Publisher)
	set(&fw.Website, req.Website)
	setPtr(&fw.LastUpdated, req.LastUpdated)
	setPtr(&fw.EffectiveDate, req.EffectiveDate)
	setPtr(&fw.ExpiryDate, req.ExpiryDate)
	set(&fw.IsCustom, req.IsCustom)
	set(&fw.Tags, req.Tags)
	set(&fw.Industry, req.Industry)
	set(&fw.Region, req.Region)
	if req.Controls != nil {
		fw.Controls = make([]models.Control, 0, len(*req.Controls))
		for _, c := range *req.Controls {
			fw.Controls = append(fw.Controls, c.Model())
		}
		return true
	}
	return false
}

type frameworkListQuery struct {
	Type   models.FrameworkType   `form:"type" binding:"omitempty,enum"`
	Status models.FrameworkStatus `form:"status" binding:"omitempty,enum"`
	Search string                 `form:"search"`
}

func ListFrameworks(c *gin.Context) {
	var q frameworkListQuery
	if !bindQuery(c, &q) {
		return
	}
	out, err := database.ListFrameworks(c.Request.Context(), database.FrameworkFilter{
		Type:   q.Type,
		Status: q.Status,
		Search: q.Search,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetFramework(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fw, err := database.GetFramework(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fw)
}

func CreateFramework(c *gin.Context) {
	var req frameworkRequest
	if !bindJSON(c, &req) {
		return
	}
	fw := req.model(actorOrBody(c, req.CreatedBy, ""))
	if err := database.CreateFramework(c.Request.Context(), &fw); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fw)
}

func UpdateFramework(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateFrameworkRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	fw, err := database.GetFramework(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	replace := req.apply(fw)
	if err := database.SaveFramework(ctx, fw, replace); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fw)
}

func DeleteFramework(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := database.DeleteFramework(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	deleted(c, "Framework")
}

func ListControls(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fw, err := database.GetFramework(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fw.Controls)
}

func AddControl(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req catalog.ControlDocument
	if !bindJSON(c, &req) {
		return
	}
	control := req.Model()
	fw, err := database.AddControl(c.Request.Context(), id, &control)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fw)
}

type updateControlRequest struct {
	ControlID              *string          `json:"controlId" binding:"omitempty,min=1"`
	Title                  *string          `json:"title" binding:"omitempty,min=1"`
	Description            *string          `json:"description"`
	Category               *string          `json:"category"`
	SubCategory            *string          `json:"subCategory"`
	Priority               *models.Priority `json:"priority" binding:"omitempty,enum"`
	Requirements           *[]string        `json:"requirements"`
	ImplementationGuidance *string          `json:"implementationGuidance"`
	TestingProcedures      *[]string        `json:"testingProcedures"`
	EvidenceTypes          *[]string        `json:"evidenceTypes"`
}

func (req updateControlRequest) apply(ctl *models.Control) {
	set(&ctl.ControlID, req.ControlID)
	set(&ctl.Title, req.Title)
	set(&ctl.Description, req.Description)
	set(&ctl.Category, req.Category)
	set(&ctl.SubCategory, req.SubCategory)
	set(&ctl.Priority, req.Priority)
	set(&ctl.Requirements, req.Requirements)
	set(&ctl.ImplementationGuidance, req.ImplementationGuidance)
	set(&ctl.TestingProcedures, req.TestingProcedures)
	set(&ctl.EvidenceTypes, req.EvidenceTypes)
}

func UpdateControl(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	controlID, ok := parseID(c, "controlId")
	if !ok {
		return
	}
	var req updateControlRequest
	if !bindJSON(c, &req) {
		return
	}
	fw, err := database.UpdateControl(c.Request.Context(), id, controlID, func(ctl *models.Control) error {
		req.apply(ctl)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fw)
}

func DeleteControl(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	controlID, ok := parseID(c, "controlId")
	if !ok {
		return
	}
	fw, err := database.DeleteControl(c.Request.Context(), id, controlID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fw)
}

var documents = validation.New()

// uploadEnvelope is the wrapped upload form: {"frameworkData": {...}, "type": "..."}.
type uploadEnvelope struct {
	FrameworkData *catalog.Document    `json:"frameworkData"`
	Type          models.FrameworkType `json:"type"`
}

type uploadResponse struct {
	Message   string                      `json:"message"`
	Framework *models.ComplianceFramework `json:"framework"`
	Action    string                      `json:"action"`
}

// UploadFramework upserts a framework by name. The body is either a framework document or
// an envelope whose "type" overrides the document's. A ?filename= ending in .yaml or .yml
// reads the body as YAML.
func UploadFramework(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, apperr.Invalid("invalid request body", err.Error()))
		return
	}
	doc, err := parseUpload(c.DefaultQuery("filename", "upload.json"), body)
	if err != nil {
		respondError(c, apperr.Invalid("invalid framework document", err.Error()))
		return
	}
	if err := documents.Struct(doc); err != nil {
		respondError(c, apperr.Invalid("invalid framework document", validation.Messages(err)...))
		return
	}

	fw, created, err := database.UpsertFramework(c.Request.Context(), doc, actorOr(c, "upload"))
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, uploadResponse{Message: "Framework created successfully", Framework: fw, Action: "created"})
		return
	}
	c.JSON(http.StatusOK, uploadResponse{Message: "Framework updated successfully", Framework: fw, Action: "updated"})
}

func parseUpload(filename string, body []byte) (catalog.Document, error) {
	var env uploadEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.FrameworkData != nil {
		doc := *env.FrameworkData
		if env.Type != "" {
			doc.Type = env.Type
		}
		return doc, nil
	}
	return catalog.Parse(filename, body)
}

type initializeResponse struct {
	Message    string                       `json:"message"`
	Frameworks []models.ComplianceFramework `json:"frameworks,omitempty"`
}

// InitializeFrameworks seeds the built-in frameworks into an empty store.
func InitializeFrameworks(c *gin.Context) {
	seeded, created, err := database.SeedFrameworks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, initializeResponse{Message: "Frameworks already initialized"})
		return
	}
	c.JSON(http.StatusCreated, initializeResponse{Message: "Default frameworks initialized successfully", Frameworks: seeded})
}
