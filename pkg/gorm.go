package pkg

import (
	"fmt"

	"github.com/sharda-hr/performance-service/internal/config"
	"github.com/sharda-hr/performance-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all domain tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Template{},
		&models.Question{},
		&models.KPIRecord{},
		&models.KPIResponse{},
		&models.Goal{},
		&models.Employee{},
	)
}
