package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/repository"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

type CartService interface {
	GetCart(userID uint) (*model.Cart, error)
	AddItem(userID, productID uint, quantity int) (*model.Cart, error)
	UpdateItem(userID uint, itemID uint, quantity int) (*model.Cart, error)
	RemoveItem(userID uint, itemID uint) (*model.Cart, error)
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's active cart, creating an empty one on first
// use.
func (s *cartService) GetCart(userID uint) (*model.Cart, error) {
	return s.cartRepo.FindOrCreateByUserID(userID)
}

// AddItem validates the requested quantity against live stock and merges
// it into an existing line for the same product. Stock is not deducted
// until checkout.
func (s *cartService) AddItem(userID, productID uint, quantity int) (*model.Cart, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	cart, err := s.cartRepo.FindOrCreateByUserID(userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.FindItemByCartAndProduct(cart.ID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	requested := quantity
	if existing != nil {
		requested += existing.Quantity
	}
	if requested > product.Stock {
		logger.Warn("Cart add rejected: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  requested,
			"available":  product.Stock,
		})
		return nil, &StockError{ProductID: productID, Requested: requested, Available: product.Stock}
	}

	if existing != nil {
		existing.Quantity = requested
		if err := s.cartRepo.UpdateItem(existing); err != nil {
			return nil, err
		}
	} else {
		item := &model.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := s.cartRepo.CreateItem(item); err != nil {
			return nil, err
		}
	}

	return s.cartRepo.FindByID(cart.ID)
}

// UpdateItem replaces a line's quantity after ownership and stock checks.
func (s *cartService) UpdateItem(userID uint, itemID uint, quantity int) (*model.Cart, error) {
	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, cart, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if quantity > product.Stock {
		return nil, &StockError{ProductID: product.ID, Requested: quantity, Available: product.Stock}
	}

	item.Quantity = quantity
	if err := s.cartRepo.UpdateItem(item); err != nil {
		return nil, err
	}

	return s.cartRepo.FindByID(cart.ID)
}

func (s *cartService) RemoveItem(userID uint, itemID uint) (*model.Cart, error) {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})

	_, cart, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(itemID); err != nil {
		return nil, err
	}
	return s.cartRepo.FindByID(cart.ID)
}

func (s *cartService) ClearCart(userID uint) error {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})

	cart, err := s.cartRepo.FindOrCreateByUserID(userID)
	if err != nil {
		return err
	}
	return s.cartRepo.DeleteItemsByCartID(cart.ID)
}

// ownedItem loads a cart item and verifies it belongs to the user's cart.
func (s *cartService) ownedItem(userID uint, itemID uint) (*model.CartItem, *model.Cart, error) {
	item, err := s.cartRepo.FindItemByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCartItemNotFound
		}
		return nil, nil, err
	}

	cart, err := s.cartRepo.FindByID(item.CartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCartItemNotFound
		}
		return nil, nil, err
	}

	if cart.UserID != userID {
		logger.Warn("Cart item access denied", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
			"cart_id":      cart.ID,
		})
		return nil, nil, ErrNotOwner
	}

	return item, cart, nil
}
