package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"compsec/internal/apperr"
	"compsec/internal/metrics"
	"compsec/internal/models"
	"compsec/internal/scoring"
)

type AssessmentFilter struct {
	FrameworkID uint
	Status      models.AssessmentStatus
	Type        models.AssessmentType
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

func (f AssessmentFilter) apply(db *gorm.DB) *gorm.DB {
	if f.FrameworkID != 0 {
		db = db.Where("framework_id = ?", f.FrameworkID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.Search != "" {
		term := like(f.Search)
		db = db.Where("name ILIKE ? OR description ILIKE ? OR assessment_id ILIKE ?", term, term, term)
	}
	if f.CreatedFrom != nil {
		db = db.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		db = db.Where("created_at <= ?", *f.CreatedTo)
	}
	return db
}

func assessmentsQuery(ctx context.Context) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id") }
	return DB.WithContext(ctx).Model(&models.Assessment{}).
		Preload("Framework", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "version", "type")
		}).
		Preload("Results", byID).
		Preload("Recommendations", byID)
}

// ListAssessments returns one page of assessments, newest first.
func ListAssessments(ctx context.Context, f AssessmentFilter, p Page) ([]models.Assessment, int64, error) {
	var total int64
	if err := f.apply(DB.WithContext(ctx).Model(&models.Assessment{})).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count assessments")
	}
	out := []models.Assessment{}
	err := f.apply(assessmentsQuery(ctx)).
		Order("created_at DESC").Order("id DESC").
		Scopes(paginate(p)).
		Find(&out).Error
	return out, total, errors.Wrap(err, "list assessments")
}

// AllAssessments loads every assessment matching f with results, for aggregation.
func AllAssessments(ctx context.Context, f AssessmentFilter) ([]models.Assessment, error) {
	out := []models.Assessment{}
	err := f.apply(assessmentsQuery(ctx)).Order("created_at DESC").Find(&out).Error
	return out, errors.Wrap(err, "load assessments")
}

func GetAssessment(ctx context.Context, id uint) (*models.Assessment, error) {
	var a models.Assessment
	if err := assessmentsQuery(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assessment")
		}
		return nil, errors.Wrapf(err, "get assessment %d", id)
	}
	return &a, nil
}

// CreateAssessment scores a from its results, reserves its ASSESS-NNNN identifier and stores it.
func CreateAssessment(ctx context.Context, a *models.Assessment) error {
	if err := checkResults(a.Results); err != nil {
		return err
	}
	scoreAssessment(a)
	a.Framework = nil
	err := createWithID(ctx, SeriesAssessment, func(id string) error {
		a.ID = 0
		a.AssessmentID = id
		for i := range a.Results {
			a.Results[i].ID = 0
		}
		for i := range a.Recommendations {
			a.Recommendations[i].ID = 0
		}
		return DB.WithContext(ctx).Create(a).Error
	})
	return errors.Wrap(err, "create assessment")
}

// SaveAssessment rescores a and writes every column. With replaceResults the stored results
// are rewritten from a.Results; otherwise the stored ones are kept and used for scoring.
func SaveAssessment(ctx context.Context, a *models.Assessment, replaceResults bool) error {
	if replaceResults {
		if err := checkResults(a.Results); err != nil {
			return err
		}
	}
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAssessment(tx, a.ID); err != nil {
			return err
		}
		if replaceResults {
			if err := tx.Where("assessment_id = ?", a.ID).Delete(&models.AssessmentResult{}).Error; err != nil {
				return err
			}
			for i := range a.Results {
				a.Results[i].ID = 0
				a.Results[i].AssessmentID = a.ID
			}
			if len(a.Results) > 0 {
				if err := tx.Create(&a.Results).Error; err != nil {
					return err
				}
			}
		} else if err := tx.Where("assessment_id = ?", a.ID).Order("id").Find(&a.Results).Error; err != nil {
			return err
		}
		scoreAssessment(a)
		a.Framework = nil
		return tx.Omit(clause.Associations).Save(a).Error
	})
	return wrapAssessmentErr(err, "save assessment %d", a.ID)
}

func DeleteAssessment(ctx context.Context, id uint) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.AssessmentResult{}, &models.Recommendation{}} {
			if err := tx.Where("assessment_id = ?", id).Delete(child).Error; err != nil {
				return errors.Wrapf(err, "delete children of assessment %d", id)
			}
		}
		res := tx.Delete(&models.Assessment{}, id)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "delete assessment %d", id)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("assessment")
		}
		return nil
	})
}

// AddResult appends a control result and rescores the assessment in the same transaction.
func AddResult(ctx context.Context, assessmentID uint, r *models.AssessmentResult, actor string) (*models.Assessment, error) {
	if err := checkResults([]models.AssessmentResult{*r}); err != nil {
		return nil, err
	}
	err := rescore(ctx, assessmentID, actor, func(tx *gorm.DB) error {
		r.ID = 0
		r.AssessmentID = assessmentID
		return tx.Create(r).Error
	})
	if err != nil {
		return nil, wrapAssessmentErr(err, "add result to assessment %d", assessmentID)
	}
	return GetAssessment(ctx, assessmentID)
}

// UpdateResult applies update to one result and rescores the assessment.
func UpdateResult(ctx context.Context, assessmentID, resultID uint, actor string, update func(*models.AssessmentResult) error) (*models.Assessment, error) {
	err := rescore(ctx, assessmentID, actor, func(tx *gorm.DB) error {
		var r models.AssessmentResult
		err := tx.Where("assessment_id = ? AND id = ?", assessmentID, resultID).First(&r).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("result")
		}
		if err != nil {
			return err
		}
		if err := update(&r); err != nil {
			return err
		}
		r.ID, r.AssessmentID = resultID, assessmentID
		if err := checkResults([]models.AssessmentResult{r}); err != nil {
			return err
		}
		return tx.Save(&r).Error
	})
	if err != nil {
		return nil, wrapAssessmentErr(err, "update result %d", resultID)
	}
	return GetAssessment(ctx, assessmentID)
}

// DeleteResult removes one result and rescores the assessment.
func DeleteResult(ctx context.Context, assessmentID, resultID uint, actor string) (*models.Assessment, error) {
	err := rescore(ctx, assessmentID, actor, func(tx *gorm.DB) error {
		res := tx.Where("assessment_id = ?", assessmentID).Delete(&models.AssessmentResult{}, resultID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("result")
		}
		return nil
	})
	if err != nil {
		return nil, wrapAssessmentErr(err, "delete result %d", resultID)
	}
	return GetAssessment(ctx, assessmentID)
}

func AddRecommendation(ctx context.Context, assessmentID uint, rec *models.Recommendation, actor string) (*models.Assessment, error) {
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAssessment(tx, assessmentID); err != nil {
			return err
		}
		rec.ID = 0
		rec.AssessmentID = assessmentID
		if rec.CreatedDate.IsZero() {
			rec.CreatedDate = time.Now()
		}
		if rec.Status == "" {
			rec.Status = models.RecommendationOpen
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return touch(tx, assessmentID, actor)
	})
	if err != nil {
		return nil, wrapAssessmentErr(err, "add recommendation to assessment %d", assessmentID)
	}
	return GetAssessment(ctx, assessmentID)
}

func UpdateRecommendation(ctx context.Context, assessmentID, recID uint, actor string, update func(*models.Recommendation) error) (*models.Assessment, error) {
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAssessment(tx, assessmentID); err != nil {
			return err
		}
		var rec models.Recommendation
		err := tx.Where("assessment_id = ? AND id = ?", assessmentID, recID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("recommendation")
		}
		if err != nil {
			return err
		}
		if err := update(&rec); err != nil {
			return err
		}
		rec.ID, rec.AssessmentID = recID, assessmentID
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		return touch(tx, assessmentID, actor)
	})
	if err != nil {
		return nil, wrapAssessmentErr(err, "update recommendation %d", recID)
	}
	return GetAssessment(ctx, assessmentID)
}

// rescore runs change against a locked assessment, then recomputes the derived fields from
// the persisted results so concurrent result edits never score a stale list.
func rescore(ctx context.Context, assessmentID uint, actor string, change func(tx *gorm.DB) error) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAssessment(tx, assessmentID); err != nil {
			return err
		}
		if err := change(tx); err != nil {
			return err
		}
		a := models.Assessment{Model: models.Model{ID: assessmentID}}
		if err := tx.Where("assessment_id = ?", assessmentID).Order("id").Find(&a.Results).Error; err != nil {
			return err
		}
		scoreAssessment(&a)
		return tx.Model(&models.Assessment{Model: models.Model{ID: assessmentID}}).
			Select("overall_score", "max_possible_score", "compliance_percentage", "risk_level", "last_modified_by", "updated_at").
			Updates(map[string]interface{}{
				"overall_score":         a.OverallScore,
				"max_possible_score":    a.MaxPossibleScore,
				"compliance_percentage": a.CompliancePercentage,
				"risk_level":            a.RiskLevel,
				"last_modified_by":      actor,
				"updated_at":            time.Now(),
			}).Error
	})
}

func lockAssessment(tx *gorm.DB, id uint) error {
	var a models.Assessment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("assessment")
	}
	return err
}

func touch(tx *gorm.DB, id uint, actor string) error {
	return tx.Model(&models.Assessment{Model: models.Model{ID: id}}).
		Updates(map[string]interface{}{"last_modified_by": actor, "updated_at": time.Now()}).Error
}

func scoreAssessment(a *models.Assessment) {
	scoring.ApplyAssessmentScores(a)
	level := "Unscored"
	if a.RiskLevel != nil {
		level = string(*a.RiskLevel)
	}
	metrics.AssessmentsScored.WithLabelValues(level).Inc()
}

func checkResults(results []models.AssessmentResult) error {
	var details []string
	for _, r := range results {
		if err := scoring.CheckResult(r); err != nil {
			details = append(details, err.Error())
		}
	}
	if details != nil {
		return apperr.Invalid("invalid assessment results", details...)
	}
	return nil
}

// wrapAssessmentErr adds context to store errors and passes app errors through untouched.
func wrapAssessmentErr(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return errors.Wrapf(err, format, args...)
}
