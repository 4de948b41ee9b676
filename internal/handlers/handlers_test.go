package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsec/internal/apperr"
	"compsec/internal/middleware"
	"compsec/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			panic(err)
		}
	}
}

// newRouter wires only handlers whose failure paths are reached before the store is touched.
func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	r.Use(middleware.InjectActor())

	r.GET("/api/session", CurrentSession)
	r.POST("/api/session", StartSession)
	r.DELETE("/api/session", EndSession)

	r.GET("/api/risks", ListRisks)
	r.POST("/api/risks", CreateRisk)
	r.GET("/api/risks/:id", GetRisk)
	r.PATCH("/api/risks/:id/treatment", UpdateRiskTreatment)

	r.POST("/api/frameworks", CreateFramework)
	r.POST("/api/frameworks/upload", UploadFramework)
	r.PUT("/api/frameworks/:id/controls/:controlId", UpdateControl)

	r.GET("/api/assessments", ListAssessments)
	r.POST("/api/assessments", CreateAssessment)
	r.POST("/api/assessments/:id/results", AddAssessmentResult)
	r.PUT("/api/assessments/:id/recommendations/:recId", UpdateRecommendation)

	r.GET("/api/compliance/status/:frameworkId", FrameworkCompliance)
	r.GET("/api/compliance/trends", ComplianceTrends)
	r.POST("/api/compliance/report", ComplianceReport)

	r.GET("/health", Health)
	return r
}

func do(r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperr.Error {
	t.Helper()
	var e apperr.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}

func riskBody(overrides map[string]interface{}) string {
	body := map[string]interface{}{
		"title":           "Ransomware on file servers",
		"description":     "Encryption of shared drives",
		"category":        "Technical",
		"likelihood":      "High",
		"likelihoodScore": 4,
		"impact":          "Very High",
		"impactScore":     5,
		"treatment":       "Mitigate",
		"businessUnit":    "IT",
		"asset":           "File server",
		"threat":          "Ransomware",
		"vulnerability":   "Unpatched SMB",
		"nextReviewDate":  time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	}
	for k, v := range overrides {
		if v == nil {
			delete(body, k)
			continue
		}
		body[k] = v
	}
	out, _ := json.Marshal(body)
	return string(out)
}

func TestParseID_Rejects(t *testing.T) {
	r := newRouter()

	for _, path := range []string{"/api/risks/abc", "/api/risks/0", "/api/risks/-3"} {
		w := do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		e := decodeError(t, w)
		assert.Equal(t, apperr.CodeInvalidInput, e.Code)
		assert.Equal(t, "invalid id", e.Message)
	}

	w := do(r, http.MethodPut, "/api/frameworks/1/controls/A.5", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid controlId", decodeError(t, w).Message)

	w = do(r, http.MethodPut, "/api/assessments/2/recommendations/x", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid recId", decodeError(t, w).Message)

	w = do(r, http.MethodGet, "/api/compliance/status/none", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid frameworkId", decodeError(t, w).Message)
}

func TestCreateRisk_Validation(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name      string
		overrides map[string]interface{}
		detail    string
	}{
		{"missing title", map[string]interface{}{"title": nil}, "title is required"},
		{"score above scale", map[string]interface{}{"impactScore": 6}, "impactScore must be at most 5"},
		{"score below scale", map[string]interface{}{"likelihoodScore": -1}, "likelihoodScore must be at least 1"},
		{"unknown category", map[string]interface{}{"category": "Physical"}, `category has invalid value "Physical"`},
		{"unknown scale label", map[string]interface{}{"likelihood": "high"}, `likelihood has invalid value "high"`},
		{"missing review date", map[string]interface{}{"nextReviewDate": nil}, "nextReviewDate is required"},
		{"mapping without framework", map[string]interface{}{
			"complianceFrameworks": []map[string]interface{}{{"controlId": "A.5.1"}},
		}, "complianceFrameworks[0].frameworkId is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/risks", riskBody(tt.overrides), "X-Actor", "alice")
			require.Equal(t, http.StatusBadRequest, w.Code)
			e := decodeError(t, w)
			assert.Equal(t, apperr.CodeInvalidInput, e.Code)
			assert.Contains(t, e.Details, tt.detail)
		})
	}
}

func TestCreateRisk_RequiresAuthor(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/risks", riskBody(nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"createdBy is required"}, decodeError(t, w).Details)
}

func TestCreateRisk_MalformedJSON(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/risks", `{"title": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decodeError(t, w).Message)
}

func TestListRisks_QueryValidation(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodGet, "/api/risks?limit=500", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "limit must be at most 100")

	w = do(r, http.MethodGet, "/api/assessments?status=Done", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, `status has invalid value "Done"`)
}

func TestUpdateRiskTreatment_Validation(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPatch, "/api/risks/4/treatment", `{"treatment":"Ignore"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, `treatment has invalid value "Ignore"`)
}

func TestCreateFramework_Validation(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/frameworks", `{"name":"SOC 2","version":"2017","description":"Trust services","type":"Cybersecurity",
		"controls":[{"controlId":"CC1.1","title":"Integrity","priority":"Urgent"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Contains(t, e.Details, `controls[0].priority has invalid value "Urgent"`)
}

func TestUploadFramework_RejectsBadDocuments(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/frameworks/upload", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid framework document", decodeError(t, w).Message)

	w = do(r, http.MethodPost, "/api/frameworks/upload",
		`{"frameworkData":{"name":"Internal","controls":[{"title":"No id"}]}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "controls[0].controlId is required")

	yamlDoc := "name: Internal\ntype: Bogus\n"
	w = do(r, http.MethodPost, "/api/frameworks/upload?filename=internal.yaml", yamlDoc)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, `type has invalid value "Bogus"`)
}

func TestCreateAssessment_Validation(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/assessments", `{"name":"Q3 audit","frameworkId":1,"type":"Audit",
		"assessor":"bob","plannedStartDate":"2026-07-01T00:00:00Z","plannedEndDate":"2026-07-31T00:00:00Z"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, `type has invalid value "Audit"`)

	w = do(r, http.MethodPost, "/api/assessments", `{"name":"Q3 audit","frameworkId":1,"type":"Internal Audit",
		"assessor":"bob","plannedStartDate":"2026-07-31T00:00:00Z","plannedEndDate":"2026-07-01T00:00:00Z"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "plannedEndDate must not be before plannedStartDate")

	w = do(r, http.MethodPost, "/api/assessments", `{"name":"Q3 audit","type":"Internal Audit"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decodeError(t, w).Details
	assert.Contains(t, details, "frameworkId is required")
	assert.Contains(t, details, "assessor is required")
}

func TestAddAssessmentResult_Validation(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/assessments/3/results",
		`{"controlId":"A.5.1","status":"Compliant","findings":[{"type":"Observation","priority":"Urgent"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, `findings[0].priority has invalid value "Urgent"`)
}

func TestComplianceTrends_MonthsBounds(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodGet, "/api/compliance/trends?months=0x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/compliance/trends?months=500", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "months must be at most 120")
}

func TestComplianceReport_MalformedBody(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/compliance/report", `{"startDate":"yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplianceReport_StartAfterEnd(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/compliance/report",
		`{"startDate":"2026-09-01T00:00:00Z","endDate":"2026-08-01T00:00:00Z"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, apperr.CodeInvalidInput, e.Code)
	assert.Equal(t, []string{"startDate must not be after endDate"}, e.Details)
}

func TestSession_RoundTrip(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/session", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "name is required")

	w = do(r, http.MethodPost, "/api/session", `{"name":"dana"}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"actor":"dana"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/session", "", "X-Actor", "erin")
	assert.JSONEq(t, `{"actor":"erin"}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/session", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Session ended"}`, w.Body.String())
}

func TestHealth_WithoutDatabase(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unreachable", resp.Database)
}
