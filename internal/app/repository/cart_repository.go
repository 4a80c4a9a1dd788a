package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
)

type CartRepository interface {
	FindOrCreateByUserID(userID uint) (*model.Cart, error)
	FindByID(id uuid.UUID) (*model.Cart, error)
	FindItemByID(itemID uint) (*model.CartItem, error)
	FindItemByCartAndProduct(cartID uuid.UUID, productID uint) (*model.CartItem, error)
	CreateItem(item *model.CartItem) error
	UpdateItem(item *model.CartItem) error
	DeleteItem(itemID uint) error
	DeleteItemsByCartID(cartID uuid.UUID) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) preloadCart() *gorm.DB {
	return r.db.Preload("Items.Product.Category").Preload("Items.Product")
}

// FindOrCreateByUserID returns the user's active cart, creating one on
// first use.
func (r *cartRepository) FindOrCreateByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.preloadCart().Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to find cart by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	cart = model.Cart{UserID: userID}
	if err := r.db.Create(&cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": userID,
	})
	return &cart, nil
}

func (r *cartRepository) FindByID(id uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	err := r.preloadCart().Where("id = ?", id).First(&cart).Error
	if err != nil {
		logger.Error("Failed to find cart by ID in database", err, map[string]interface{}{
			"cart_id": id,
		})
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindItemByID(itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Preload("Product").First(&item, itemID).Error
	if err != nil {
		logger.Error("Failed to find cart item by ID in database", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindItemByCartAndProduct(cartID uuid.UUID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) UpdateItem(item *model.CartItem) error {
	logger.Debug("Updating cart item in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})

	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItem(itemID uint) error {
	if err := r.db.Delete(&model.CartItem{}, itemID).Error; err != nil {
		logger.Error("Failed to delete cart item in database", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItemsByCartID(cartID uuid.UUID) error {
	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}
