package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Oyshik-ICT/ecommerce-backend/config"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
)

// Initialize opens the postgres connection and runs migrations.
func Initialize(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	log := logger.Get()

	database, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"name": cfg.DBName,
	})

	if err := Migrate(database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}
