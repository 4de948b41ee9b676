package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"compsec/internal/apperr"
	"compsec/internal/catalog"
	"compsec/internal/models"
)

type FrameworkFilter struct {
	Type   models.FrameworkType
	Status models.FrameworkStatus
	Search string
}

func (f FrameworkFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		term := like(f.Search)
		db = db.Where("name ILIKE ? OR description ILIKE ?", term, term)
	}
	return db
}

func frameworksQuery(ctx context.Context) *gorm.DB {
	return DB.WithContext(ctx).Model(&models.ComplianceFramework{}).
		Preload("Controls", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// ListFrameworks returns matching frameworks with their controls, sorted by name.
func ListFrameworks(ctx context.Context, f FrameworkFilter) ([]models.ComplianceFramework, error) {
	out := []models.ComplianceFramework{}
	err := f.apply(frameworksQuery(ctx)).Order("name").Find(&out).Error
	return out, errors.Wrap(err, "list frameworks")
}

func GetFramework(ctx context.Context, id uint) (*models.ComplianceFramework, error) {
	var fw models.ComplianceFramework
	if err := frameworksQuery(ctx).First(&fw, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("framework")
		}
		return nil, errors.Wrapf(err, "get framework %d", id)
	}
	return &fw, nil
}

func frameworkByName(tx *gorm.DB, name string) (*models.ComplianceFramework, error) {
	var fw models.ComplianceFramework
	err := tx.Preload("Controls", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("name = ?", name).Limit(1).Find(&fw).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find framework %q", name)
	}
	if fw.ID == 0 {
		return nil, nil
	}
	return &fw, nil
}

func CreateFramework(ctx context.Context, fw *models.ComplianceFramework) error {
	return createFramework(DB.WithContext(ctx), fw)
}

func createFramework(tx *gorm.DB, fw *models.ComplianceFramework) error {
	for i := range fw.Controls {
		fw.Controls[i].ID = 0
	}
	if err := tx.Create(fw).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Exists("a framework named " + fw.Name + " already exists")
		}
		return errors.Wrap(err, "create framework")
	}
	return nil
}

// SaveFramework writes every column of fw. With replaceControls the control catalog is
// rewritten from fw.Controls.
func SaveFramework(ctx context.Context, fw *models.ComplianceFramework, replaceControls bool) error {
	return saveFramework(DB.WithContext(ctx), fw, replaceControls)
}

func saveFramework(db *gorm.DB, fw *models.ComplianceFramework, replaceControls bool) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Controls").Save(fw).Error; err != nil {
			return err
		}
		if !replaceControls {
			return nil
		}
		if err := tx.Where("framework_id = ?", fw.ID).Delete(&models.Control{}).Error; err != nil {
			return err
		}
		for i := range fw.Controls {
			fw.Controls[i].ID = 0
			fw.Controls[i].FrameworkID = fw.ID
		}
		if len(fw.Controls) == 0 {
			return nil
		}
		return tx.Create(&fw.Controls).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Exists("a framework named " + fw.Name + " already exists")
	}
	return errors.Wrapf(err, "save framework %d", fw.ID)
}

// DeleteFramework removes the framework and its controls. Risk mappings and assessments that
// reference it are left in place and read as an unknown framework.
func DeleteFramework(ctx context.Context, id uint) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("framework_id = ?", id).Delete(&models.Control{}).Error; err != nil {
			return errors.Wrapf(err, "delete controls of framework %d", id)
		}
		res := tx.Delete(&models.ComplianceFramework{}, id)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "delete framework %d", id)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("framework")
		}
		return nil
	})
}

func AddControl(ctx context.Context, frameworkID uint, c *models.Control) (*models.ComplianceFramework, error) {
	if _, err := GetFramework(ctx, frameworkID); err != nil {
		return nil, err
	}
	c.ID = 0
	c.FrameworkID = frameworkID
	if err := DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, errors.Wrapf(err, "add control to framework %d", frameworkID)
	}
	return GetFramework(ctx, frameworkID)
}

// UpdateControl applies update to one control of the framework and stores the result.
func UpdateControl(ctx context.Context, frameworkID, controlID uint, update func(*models.Control) error) (*models.ComplianceFramework, error) {
	if _, err := GetFramework(ctx, frameworkID); err != nil {
		return nil, err
	}
	var c models.Control
	err := DB.WithContext(ctx).Where("framework_id = ? AND id = ?", frameworkID, controlID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("control")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get control %d", controlID)
	}
	if err := update(&c); err != nil {
		return nil, err
	}
	c.ID, c.FrameworkID = controlID, frameworkID
	if err := DB.WithContext(ctx).Save(&c).Error; err != nil {
		return nil, errors.Wrapf(err, "save control %d", controlID)
	}
	return GetFramework(ctx, frameworkID)
}

func DeleteControl(ctx context.Context, frameworkID, controlID uint) (*models.ComplianceFramework, error) {
	if _, err := GetFramework(ctx, frameworkID); err != nil {
		return nil, err
	}
	res := DB.WithContext(ctx).Where("framework_id = ?", frameworkID).Delete(&models.Control{}, controlID)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "delete control %d", controlID)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("control")
	}
	return GetFramework(ctx, frameworkID)
}

// UpsertFramework updates the framework named in doc, or creates it with upload defaults.
func UpsertFramework(ctx context.Context, doc catalog.Document, actor string) (fw *models.ComplianceFramework, created bool, err error) {
	name := doc.Name
	if name == "" {
		name = catalog.DefaultName
	}
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := frameworkByName(tx, name)
		if err != nil {
			return err
		}
		if existing == nil {
			m := doc.ToModel(actor)
			fw, created = &m, true
			return createFramework(tx, fw)
		}
		replaced := doc.Merge(existing, time.Now())
		fw = existing
		return saveFramework(tx, fw, replaced)
	})
	return fw, created, err
}

// SeedFrameworks stores catalog.Defaults when no framework exists yet.
// It reports false, and writes nothing, otherwise.
func SeedFrameworks(ctx context.Context) ([]models.ComplianceFramework, bool, error) {
	var seeded []models.ComplianceFramework
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ComplianceFramework{}).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count frameworks")
		}
		if count > 0 {
			return nil
		}
		seeded = catalog.Defaults()
		for i := range seeded {
			seeded[i].CreatedBy = "system"
			if err := createFramework(tx, &seeded[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return seeded, seeded != nil, nil
}
