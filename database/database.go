package database

import (
	"fmt"
	"time"

	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to PostgreSQL using the configured DSN.
func Open(cfg *config.Config) (*gorm.DB, error) {
	return OpenDialector(postgres.Open(cfg.DSN()), gormLogLevel(cfg.LogLevel))
}

// OpenDialector is shared with tests, which pass an in-memory dialector.
func OpenDialector(d gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug", "trace":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error", "fatal", "panic":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
