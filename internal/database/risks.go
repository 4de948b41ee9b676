package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"compsec/internal/apperr"
	"compsec/internal/metrics"
	"compsec/internal/models"
	"compsec/internal/scoring"
)

type RiskFilter struct {
	Category     models.RiskCategory
	RiskLevel    models.RiskLevel
	Treatment    models.Treatment
	Status       models.RiskStatus
	BusinessUnit string
	Search       string
	FrameworkID  uint
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

func (f RiskFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Category != "" {
		db = db.Where("risks.category = ?", f.Category)
	}
	if f.RiskLevel != "" {
		db = db.Where("risks.risk_level = ?", f.RiskLevel)
	}
	if f.Treatment != "" {
		db = db.Where("risks.treatment = ?", f.Treatment)
	}
	if f.Status != "" {
		db = db.Where("risks.status = ?", f.Status)
	}
	if f.BusinessUnit != "" {
		db = db.Where("risks.business_unit = ?", f.BusinessUnit)
	}
	if f.Search != "" {
		term := like(f.Search)
		db = db.Where("risks.title ILIKE ? OR risks.description ILIKE ? OR risks.risk_id ILIKE ?", term, term, term)
	}
	if f.FrameworkID != 0 {
		db = db.Where("EXISTS (SELECT 1 FROM risk_framework_mappings m WHERE m.risk_id = risks.id AND m.framework_id = ?)", f.FrameworkID)
	}
	if f.CreatedFrom != nil {
		db = db.Where("risks.created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		db = db.Where("risks.created_at <= ?", *f.CreatedTo)
	}
	return db
}

func risksQuery(ctx context.Context) *gorm.DB {
	return DB.WithContext(ctx).Model(&models.Risk{}).
		Preload("FrameworkMappings.Framework", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "version", "type")
		})
}

// ListRisks returns one page of risks, highest score first, newest first among equal scores.
func ListRisks(ctx context.Context, f RiskFilter, p Page) ([]models.Risk, int64, error) {
	var total int64
	if err := f.apply(DB.WithContext(ctx).Model(&models.Risk{})).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count risks")
	}
	risks := []models.Risk{}
	err := f.apply(risksQuery(ctx)).
		Order("risk_score DESC").Order("created_at DESC").
		Scopes(paginate(p)).
		Find(&risks).Error
	return risks, total, errors.Wrap(err, "list risks")
}

// AllRisks loads every risk matching f, for aggregation.
func AllRisks(ctx context.Context, f RiskFilter) ([]models.Risk, error) {
	risks := []models.Risk{}
	err := f.apply(risksQuery(ctx)).Order("created_at DESC").Find(&risks).Error
	return risks, errors.Wrap(err, "load risks")
}

func GetRisk(ctx context.Context, id uint) (*models.Risk, error) {
	var r models.Risk
	if err := risksQuery(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("risk")
		}
		return nil, errors.Wrapf(err, "get risk %d", id)
	}
	return &r, nil
}

// CreateRisk scores r, reserves its RISK-NNNN identifier and stores it with its mappings.
func CreateRisk(ctx context.Context, r *models.Risk) error {
	if err := scoreRisk(r); err != nil {
		return err
	}
	err := createWithID(ctx, SeriesRisk, func(id string) error {
		r.ID = 0
		r.RiskID = id
		for i := range r.FrameworkMappings {
			r.FrameworkMappings[i].ID = 0
			r.FrameworkMappings[i].Framework = nil
		}
		return DB.WithContext(ctx).Create(r).Error
	})
	if err != nil {
		return errors.Wrap(err, "create risk")
	}
	metrics.RisksScored.WithLabelValues(string(r.RiskLevel)).Inc()
	return nil
}

// SaveRisk rescores r and writes every column. Mappings are replaced when replaceMappings is set.
func SaveRisk(ctx context.Context, r *models.Risk, replaceMappings bool) error {
	if err := scoreRisk(r); err != nil {
		return err
	}
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Omit("FrameworkMappings").Save(r)
		if res.Error != nil {
			return res.Error
		}
		if !replaceMappings {
			return nil
		}
		if err := tx.Where("risk_id = ?", r.ID).Delete(&models.RiskFrameworkMapping{}).Error; err != nil {
			return err
		}
		for i := range r.FrameworkMappings {
			m := &r.FrameworkMappings[i]
			m.ID = 0
			m.RiskID = r.ID
			m.Framework = nil
		}
		if len(r.FrameworkMappings) == 0 {
			return nil
		}
		return tx.Create(&r.FrameworkMappings).Error
	})
	if err != nil {
		return errors.Wrapf(err, "save risk %d", r.ID)
	}
	metrics.RisksScored.WithLabelValues(string(r.RiskLevel)).Inc()
	return nil
}

// DeleteRisk removes the risk and its framework mappings.
func DeleteRisk(ctx context.Context, id uint) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("risk_id = ?", id).Delete(&models.RiskFrameworkMapping{}).Error; err != nil {
			return errors.Wrapf(err, "delete mappings of risk %d", id)
		}
		res := tx.Delete(&models.Risk{}, id)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "delete risk %d", id)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("risk")
		}
		return nil
	})
}

func scoreRisk(r *models.Risk) error {
	if err := scoring.ApplyRiskScores(r); err != nil {
		return apperr.Invalid("invalid risk scores", err.Error())
	}
	return nil
}
