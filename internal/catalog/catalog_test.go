package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsec/internal/models"
	"compsec/internal/validation"
)

const yamlDoc = `
name: SOC 2
version: "2017"
type: Financial
controls:
  - controlId: CC6.1
    title: Logical access security
    priority: High
    requirements:
      - Access is restricted
assessmentCriteria:
  frequency: Annually
  scoringMethod: Percentage
  thresholds:
    pass: 90
    warning: 75
    fail: 50
`

func TestParse_YAML(t *testing.T) {
	doc, err := Parse("soc2.yml", []byte(yamlDoc))
	require.NoError(t, err)

	assert.Equal(t, "SOC 2", doc.Name)
	assert.Equal(t, models.FrameworkFinancial, doc.Type)
	require.Len(t, doc.Controls, 1)
	assert.Equal(t, models.PriorityHigh, doc.Controls[0].Priority)
	require.NotNil(t, doc.AssessmentCriteria)
	assert.Equal(t, 90.0, doc.AssessmentCriteria.Thresholds.Pass)
	assert.NoError(t, validation.New().Struct(doc))
}

func TestParse_JSON(t *testing.T) {
	doc, err := Parse("custom.json", []byte(`{"name":"Custom","controls":[{"controlId":"C-1","title":"One","priority":"Urgent"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Custom", doc.Name)

	err = validation.New().Struct(doc)
	require.Error(t, err)
	assert.Contains(t, validation.Messages(err), `controls[0].priority has invalid value "Urgent"`)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("broken.json", []byte(`{"name":`))
	assert.ErrorContains(t, err, "parse broken.json")
}

func TestToModel_Defaults(t *testing.T) {
	fw := Document{}.ToModel("alice")

	assert.Equal(t, DefaultName, fw.Name)
	assert.Equal(t, DefaultVersion, fw.Version)
	assert.Equal(t, DefaultDescription, fw.Description)
	assert.Equal(t, models.FrameworkCustom, fw.Type)
	assert.Equal(t, models.FrameworkActive, fw.Status)
	assert.Equal(t, DefaultCriteria(), fw.AssessmentCriteria)
	assert.Equal(t, "alice", fw.CreatedBy)
	assert.True(t, fw.IsCustom)
	assert.NotNil(t, fw.Controls)
	assert.NotNil(t, fw.Tags)
}

func TestMerge_KeepsUnsetFields(t *testing.T) {
	fw := Defaults()[0]
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	replaced := Document{Version: "2022", Tags: []string{"updated"}}.Merge(&fw, now)

	assert.False(t, replaced)
	assert.Equal(t, "2022", fw.Version)
	assert.Equal(t, "Information security risk management standard", fw.Description)
	assert.Equal(t, []string{"updated"}, fw.Tags)
	assert.Len(t, fw.Controls, 2)
	require.NotNil(t, fw.LastUpdated)
	assert.Equal(t, now, *fw.LastUpdated)

	replaced = Document{Controls: []ControlDocument{{ControlID: "X", Title: "Only"}}}.Merge(&fw, now)
	assert.True(t, replaced)
	require.Len(t, fw.Controls, 1)
	assert.Equal(t, "X", fw.Controls[0].ControlID)
}

func TestDefaults_Valid(t *testing.T) {
	names := map[string]bool{}
	for _, fw := range Defaults() {
		names[fw.Name] = true
		assert.True(t, fw.Type.Valid(), fw.Name)
		assert.NotEmpty(t, fw.Controls, fw.Name)
		for _, c := range fw.Controls {
			assert.True(t, c.Priority.Valid(), c.ControlID)
		}
	}
	assert.Equal(t, map[string]bool{"ISO 27005": true, "NIST RMF": true, "GDPR": true}, names)
}
