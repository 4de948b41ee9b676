package database

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"compsec/internal/logger"
	"compsec/internal/models"
)

var DB *gorm.DB

// Init connects with retries, migrates the schema and installs the Postgres identifier sequence.
func Init(dsn string, attempts int) error {
	log := logger.L().Named("database")

	var err error
	for i := 1; i <= attempts; i++ {
		log.Info("connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", attempts))

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         logger.NewGorm(logger.L()),
			TranslateError: true,
			// mappings and assessments may outlive the framework they reference
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		if err == nil {
			log.Info("connected to database")
			break
		}

		log.Warn("database connection failed", zap.Error(err))
		if i < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return errors.Wrapf(err, "connect to database after %d attempts", attempts)
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	IDs = NewPostgresSequence(DB)
	return nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Sequence{},
		&models.ComplianceFramework{},
		&models.Control{},
		&models.Risk{},
		&models.RiskFrameworkMapping{},
		&models.Assessment{},
		&models.AssessmentResult{},
		&models.Recommendation{},
	)
	return errors.Wrap(err, "migrate")
}

// Page selects a 1-based page of limit rows.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is the page count for total rows.
func (p Page) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

func paginate(p Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	}
}

func like(term string) string {
	return "%" + term + "%"
}
