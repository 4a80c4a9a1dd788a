package db

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
)

// SetupTestDB creates an in-memory sqlite database with the full schema
// and seeded categories. Each call returns an isolated database.
func SetupTestDB() (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// A pooled ":memory:" database is one database per connection.
	// Pinning the pool to a single connection keeps every session and
	// transaction on the same database and serializes concurrent writers.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = database.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	)
	if err != nil {
		return nil, err
	}

	if err := seedCategories(database); err != nil {
		return nil, err
	}

	return database, nil
}

// CleanupTestDB closes the underlying connection of a test database.
func CleanupTestDB(database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}
