// Package db wires up the gorm connection and schema migration, the
// same shape as the teacher's cmd/main.go initDatabase/runMigrations.
package db

import (
	"fmt"
	"time"

	"github.com/tesseract-hub/research-orchestrator/internal/config"
	"github.com/tesseract-hub/research-orchestrator/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func Open(cfg *config.DatabaseConfig, env string) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	logLevel := gormLogger.Silent
	if env != "production" {
		logLevel = gormLogger.Warn
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Failure{},
		&models.QueueItem{},
		&models.Result{},
		&models.HistoryEntry{},
		&models.ProviderToggle{},
	)
}
