// Package catalog reads framework definitions from JSON or YAML files and holds the built-in
// frameworks seeded into an empty store.
package catalog

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"compsec/internal/models"
)

// Document is a framework as written in an upload body or an import file.
// Zero fields mean "not given"; see ToModel and Merge.
type Document struct {
	Name               string                        `json:"name" yaml:"name"`
	Version            string                        `json:"version" yaml:"version"`
	Description        string                        `json:"description" yaml:"description"`
	Type               models.FrameworkType          `json:"type" yaml:"type" binding:"omitempty,enum"`
	Controls           []ControlDocument             `json:"controls" yaml:"controls" binding:"omitempty,dive"`
	Requirements       []models.FrameworkRequirement `json:"requirements" yaml:"requirements"`
	AssessmentCriteria *models.AssessmentCriteria    `json:"assessmentCriteria" yaml:"assessmentCriteria"`
	Publisher          string                        `json:"publisher" yaml:"publisher"`
	Website            string                        `json:"website" yaml:"website"`
	Tags               []string                      `json:"tags" yaml:"tags"`
	Industry           []string                      `json:"industry" yaml:"industry"`
	Region             []string                      `json:"region" yaml:"region"`
}

type ControlDocument struct {
	ControlID              string          `json:"controlId" yaml:"controlId" binding:"required"`
	Title                  string          `json:"title" yaml:"title" binding:"required"`
	Description            string          `json:"description" yaml:"description"`
	Category               string          `json:"category" yaml:"category"`
	SubCategory            string          `json:"subCategory" yaml:"subCategory"`
	Priority               models.Priority `json:"priority" yaml:"priority" binding:"omitempty,enum"`
	Requirements           []string        `json:"requirements" yaml:"requirements"`
	ImplementationGuidance string          `json:"implementationGuidance" yaml:"implementationGuidance"`
	TestingProcedures      []string        `json:"testingProcedures" yaml:"testingProcedures"`
	EvidenceTypes          []string        `json:"evidenceTypes" yaml:"evidenceTypes"`
}

func (c ControlDocument) Model() models.Control {
	return models.Control{
		ControlID:              c.ControlID,
		Title:                  c.Title,
		Description:            c.Description,
		Category:               c.Category,
		SubCategory:            c.SubCategory,
		Priority:               c.Priority,
		Requirements:           c.Requirements,
		ImplementationGuidance: c.ImplementationGuidance,
		TestingProcedures:      c.TestingProcedures,
		EvidenceTypes:          c.EvidenceTypes,
	}
}

// Upload defaults for a framework created from a document.
const (
	DefaultName        = "Uploaded Framework"
	DefaultVersion     = "1.0"
	DefaultDescription = "Uploaded framework"
	DefaultPublisher   = "Custom"
)

// DefaultCriteria applies when a new framework's document carries no assessment criteria.
func DefaultCriteria() models.AssessmentCriteria {
	return models.AssessmentCriteria{
		Frequency:     models.FrequencyAnnually,
		Methodology:   "Custom",
		ScoringMethod: models.ScoringPassFail,
		Thresholds:    models.Thresholds{Pass: 80, Warning: 60, Fail: 40},
	}
}

// Parse decodes a framework file. ".yaml" and ".yml" are read as YAML, anything else as JSON.
func Parse(filename string, data []byte) (Document, error) {
	var doc Document
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, errors.Wrapf(err, "parse %s", filename)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return doc, errors.Wrapf(err, "parse %s", filename)
		}
	}
	return doc, nil
}

// ToModel builds a new framework from doc, filling the upload defaults.
func (d Document) ToModel(actor string) models.ComplianceFramework {
	fw := models.ComplianceFramework{
		Name:         orDefault(d.Name, DefaultName),
		Version:      orDefault(d.Version, DefaultVersion),
		Description:  orDefault(d.Description, DefaultDescription),
		Type:         d.Type,
		Status:       models.FrameworkActive,
		Requirements: d.Requirements,
		Publisher:    orDefault(d.Publisher, DefaultPublisher),
		Website:      d.Website,
		IsCustom:     true,
		CreatedBy:    actor,
		Tags:         nonNil(d.Tags),
		Industry:     nonNil(d.Industry),
		Region:       nonNil(d.Region),
	}
	if fw.Type == "" {
		fw.Type = models.FrameworkCustom
	}
	if d.AssessmentCriteria != nil {
		fw.AssessmentCriteria = *d.AssessmentCriteria
	} else {
		fw.AssessmentCriteria = DefaultCriteria()
	}
	fw.Controls = make([]models.Control, 0, len(d.Controls))
	for _, c := range d.Controls {
		fw.Controls = append(fw.Controls, c.Model())
	}
	return fw
}

// Merge overwrites fw's fields with the ones doc gives and stamps LastUpdated.
// It reports whether doc replaces the control catalog.
func (d Document) Merge(fw *models.ComplianceFramework, now time.Time) (controlsReplaced bool) {
	setString(&fw.Version, d.Version)
	setString(&fw.Description, d.Description)
	setString(&fw.Publisher, d.Publisher)
	setString(&fw.Website, d.Website)
	if d.Type != "" {
		fw.Type = d.Type
	}
	if d.AssessmentCriteria != nil {
		fw.AssessmentCriteria = *d.AssessmentCriteria
	}
	if d.Requirements != nil {
		fw.Requirements = d.Requirements
	}
	if d.Tags != nil {
		fw.Tags = d.Tags
	}
	if d.Industry != nil {
		fw.Industry = d.Industry
	}
	if d.Region != nil {
		fw.Region = d.Region
	}
	if d.Controls != nil {
		fw.Controls = make([]models.Control, 0, len(d.Controls))
		for _, c := range d.Controls {
			fw.Controls = append(fw.Controls, c.Model())
		}
		controlsReplaced = true
	}
	fw.LastUpdated = &now
	return controlsReplaced
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
