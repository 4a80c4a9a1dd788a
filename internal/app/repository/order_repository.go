package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindAll() ([]model.Order, error)
	FindByID(id uuid.UUID) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	Update(order *model.Order) error
	Delete(id uuid.UUID) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items.Product").Preload("Items")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":    order.UserID,
		"item_count": len(order.Items),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().Order("created_at DESC").Find(&orders).Error
	if err != nil {
		logger.Error("Failed to list orders in database", err, nil)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.preloadOrder().Where("id = ?", id).First(&order).Error
	if err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id":       order.ID,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) Delete(id uuid.UUID) error {
	logger.Debug("Deleting order in database", map[string]interface{}{
		"order_id": id,
	})

	if err := r.db.Where("id = ?", id).Delete(&model.Order{}).Error; err != nil {
		logger.Error("Failed to delete order in database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	return nil
}
