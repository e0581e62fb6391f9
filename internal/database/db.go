package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/justsurfingit/job-board/internal/models"
)

// Connect opens the Postgres database and migrates the job tables.
func Connect(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables for jobs and their events.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Job{}, &models.JobEvent{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
