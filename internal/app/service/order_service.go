package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/repository"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrDuplicateProduct  = errors.New("duplicate product in order items")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrOrderNotEditable  = errors.New("order items can only be changed while pending")
)

// OrderItemInput is one requested line for a direct order or an admin
// item update.
type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

type OrderService interface {
	Checkout(userID uint, cartID uuid.UUID) (*model.Order, error)
	CreateOrder(userID uint, items []OrderItemInput) (*model.Order, error)
	GetOrders(requesterID uint, requesterRole model.UserRole) ([]model.Order, error)
	GetOrderByID(requesterID uint, requesterRole model.UserRole, orderID uuid.UUID) (*model.Order, error)
	UpdateOrderItems(orderID uuid.UUID, items []OrderItemInput) (*model.Order, error)
	UpdateOrderStatus(orderID uuid.UUID, status model.OrderStatus) (*model.Order, error)
	CancelOrder(requesterID uint, requesterRole model.UserRole, orderID uuid.UUID) (*model.Order, error)
	DeleteOrder(orderID uuid.UUID) error
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	db        *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		db:        db,
	}
}

// Checkout converts the user's cart into a pending order. Stock for
// every line is reserved in one transaction; any failure rolls the whole
// checkout back and leaves the cart untouched.
func (s *orderService) Checkout(userID uint, cartID uuid.UUID) (*model.Order, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id": userID,
		"cart_id": cartID,
	})

	cart, err := s.cartRepo.FindByID(cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if cart.UserID != userID {
		logger.Warn("Checkout denied: cart belongs to another user", map[string]interface{}{
			"user_id": userID,
			"cart_id": cartID,
		})
		return nil, ErrNotOwner
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]OrderItemInput, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		items = append(items, OrderItemInput{
			ProductID: cartItem.ProductID,
			Quantity:  cartItem.Quantity,
		})
	}

	order, err := s.createOrderTx(userID, items, func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", cart.ID).Delete(&model.Cart{}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_money": order.TotalMoney.String(),
	})
	return order, nil
}

// CreateOrder builds a pending order directly from an item list.
// Duplicate products are rejected rather than merged.
func (s *orderService) CreateOrder(userID uint, items []OrderItemInput) (*model.Order, error) {
	logger.Info("Creating direct order", map[string]interface{}{
		"user_id":    userID,
		"item_count": len(items),
	})

	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if seen[item.ProductID] {
			return nil, ErrDuplicateProduct
		}
		seen[item.ProductID] = true
	}

	return s.createOrderTx(userID, items, nil)
}

// createOrderTx reserves stock for every line, snapshots prices, and
// creates the order in one transaction. afterReserve runs inside the
// same transaction once all reservations succeed.
func (s *orderService) createOrderTx(userID uint, items []OrderItemInput, afterReserve func(tx *gorm.DB) error) (*model.Order, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	total := decimal.Zero
	orderItems := make([]model.OrderItem, 0, len(items))

	for _, input := range items {
		var product model.Product
		if err := tx.First(&product, input.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product not found during order creation", map[string]interface{}{
					"user_id":    userID,
					"product_id": input.ProductID,
				})
				return nil, ErrProductNotFound
			}
			return nil, err
		}

		if err := reserveStock(tx, product.ID, input.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID: product.ID,
			Quantity:  input.Quantity,
			Price:     product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))))
	}

	order := &model.Order{
		UserID:        userID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		TotalMoney:    total,
		Items:         orderItems,
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if afterReserve != nil {
		if err := afterReserve(tx); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetOrders(requesterID uint, requesterRole model.UserRole) ([]model.Order, error) {
	if requesterRole == model.RoleAdmin {
		return s.orderRepo.FindAll()
	}
	return s.orderRepo.FindByUserID(requesterID)
}

func (s *orderService) GetOrderByID(requesterID uint, requesterRole model.UserRole, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if requesterRole != model.RoleAdmin && order.UserID != requesterID {
		return nil, ErrNotOwner
	}
	return order, nil
}

// UpdateOrderItems changes quantities on a pending order. For each line
// the signed difference against the stored quantity is reserved or
// released; new products are appended with a fresh price snapshot and
// the order total is recomputed.
func (s *orderService) UpdateOrderItems(orderID uuid.UUID, items []OrderItemInput) (*model.Order, error) {
	logger.Info("Updating order items", map[string]interface{}{
		"order_id":   orderID,
		"item_count": len(items),
	})

	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	requested := make(map[uint]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if _, dup := requested[item.ProductID]; dup {
			return nil, ErrDuplicateProduct
		}
		requested[item.ProductID] = item.Quantity
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status != model.OrderStatusPending {
		tx.Rollback()
		logger.Warn("Order item update rejected: order not pending", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotEditable
	}

	// Adjust existing lines by the signed quantity delta.
	for i := range order.Items {
		line := &order.Items[i]
		newQuantity, keep := requested[line.ProductID]
		if !keep {
			continue
		}
		delete(requested, line.ProductID)

		delta := newQuantity - line.Quantity
		if delta > 0 {
			if err := reserveStock(tx, line.ProductID, delta); err != nil {
				tx.Rollback()
				return nil, err
			}
		} else if delta < 0 {
			if err := releaseStock(tx, line.ProductID, -delta); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		line.Quantity = newQuantity
		if err := tx.Model(&model.OrderItem{}).
			Where("id = ?", line.ID).
			Update("quantity", newQuantity).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Remaining requested products are new lines.
	for productID, quantity := range requested {
		var product model.Product
		if err := tx.First(&product, productID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if err := reserveStock(tx, productID, quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
		newLine := model.OrderItem{
			OrderID:   order.ID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		}
		if err := tx.Create(&newLine).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Items = append(order.Items, newLine)
	}

	total := decimal.Zero
	for _, line := range order.Items {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if err := tx.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Update("total_money", total).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return s.orderRepo.FindByID(orderID)
}

// UpdateOrderStatus applies a legal status transition. A transition to
// Cancelled releases every reserved quantity.
func (s *orderService) UpdateOrderStatus(orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order, err := s.transitionTx(tx, orderID, status)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return s.orderRepo.FindByID(order.ID)
}

// CancelOrder cancels an order on behalf of its owner. Payment state is
// not touched.
func (s *orderService) CancelOrder(requesterID uint, requesterRole model.UserRole, orderID uuid.UUID) (*model.Order, error) {
	logger.Info("Cancelling order", map[string]interface{}{
		"order_id": orderID,
		"user_id":  requesterID,
	})

	if _, err := s.GetOrderByID(requesterID, requesterRole, orderID); err != nil {
		return nil, err
	}

	return s.UpdateOrderStatus(orderID, model.OrderStatusCancelled)
}

// transitionTx validates and applies a status change inside tx.
func (s *orderService) transitionTx(tx *gorm.DB, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		logger.Warn("Illegal order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidTransition
	}

	if status == model.OrderStatusCancelled {
		for _, line := range order.Items {
			if err := releaseStock(tx, line.ProductID, line.Quantity); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	order.Status = status
	return &order, nil
}

// DeleteOrder soft-deletes an order, returning its reserved stock unless
// the order was already cancelled.
func (s *orderService) DeleteOrder(orderID uuid.UUID) error {
	logger.Info("Deleting order", map[string]interface{}{
		"order_id": orderID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if order.Status != model.OrderStatusCancelled {
		for _, line := range order.Items {
			if err := releaseStock(tx, line.ProductID, line.Quantity); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	if err := tx.Where("id = ?", orderID).Delete(&model.Order{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
