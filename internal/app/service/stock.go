package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// StockError reports which product could not cover a requested quantity.
// It wraps ErrInsufficientStock so callers can dispatch with errors.Is.
type StockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// reserveStock decrements a product's stock inside tx. The decrement is a
// single conditional UPDATE so concurrent reservations can never drive
// stock negative. Zero rows affected means the guard failed; the current
// availability is reread for the error report.
func reserveStock(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		logger.Error("Failed to reserve product stock", result.Error, map[string]interface{}{
			"product_id": productID,
			"quantity":   quantity,
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		var product model.Product
		available := 0
		if err := tx.Select("stock").First(&product, productID).Error; err == nil {
			available = product.Stock
		}
		logger.Warn("Stock reservation failed: insufficient stock", map[string]interface{}{
			"product_id": productID,
			"requested":  quantity,
			"available":  available,
		})
		return &StockError{ProductID: productID, Requested: quantity, Available: available}
	}

	logger.Debug("Stock reserved", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
	return nil
}

// releaseStock returns a previously reserved quantity to a product.
func releaseStock(tx *gorm.DB, productID uint, quantity int) error {
	err := tx.Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
	if err != nil {
		logger.Error("Failed to release product stock", err, map[string]interface{}{
			"product_id": productID,
			"quantity":   quantity,
		})
		return err
	}

	logger.Debug("Stock released", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
	return nil
}
