package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
)

// Migrate runs the schema migration and seeds the fixed category rows.
func Migrate(database *gorm.DB) error {
	log := logger.Get()
	log.Info("Running database migrations", nil)

	err := database.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	)
	if err != nil {
		return err
	}

	if err := seedCategories(database); err != nil {
		return err
	}

	log.Info("Database migrations completed", nil)
	return nil
}

func seedCategories(database *gorm.DB) error {
	for _, categoryType := range []string{model.CategoryElectronics, model.CategoryClothing} {
		var category model.Category
		err := database.Where("type = ?", categoryType).First(&category).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := database.Create(&model.Category{Type: categoryType}).Error; err != nil {
			return err
		}
	}
	return nil
}
