package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Oyshik-ICT/ecommerce-backend/config"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/paypal"
)

var (
	ErrPaymentAlreadyProcessed = errors.New("payment already processed")
	ErrPaymentExecution        = errors.New("payment execution precondition failed")
	ErrOrderNotPayable         = errors.New("order is not pending")
)

// PaymentInitResponse carries the provider approval URL the client is
// redirected to.
type PaymentInitResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	PaymentID   string    `json:"payment_id"`
	ApprovalURL string    `json:"approval_url"`
}

// PaymentResult reports the order state after a callback was handled.
type PaymentResult struct {
	OrderID       uuid.UUID           `json:"order_id"`
	Status        model.OrderStatus   `json:"status"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
}

type PaymentService interface {
	InitiatePayment(ctx context.Context, userID uint, orderID uuid.UUID) (*PaymentInitResponse, error)
	ExecutePayment(ctx context.Context, orderID uuid.UUID, paymentID, payerID string) (*PaymentResult, error)
	CancelPayment(orderID uuid.UUID) (*PaymentResult, error)
}

type paymentService struct {
	client   *paypal.Client
	currency string
	db       *gorm.DB
}

func NewPaymentService(cfg *config.Config, db *gorm.DB) (PaymentService, error) {
	client, err := paypal.NewClient(paypal.Config{
		ClientID:      cfg.PayPal.ClientID,
		ClientSecret:  cfg.PayPal.ClientSecret,
		BaseURL:       cfg.PayPal.BaseURL,
		ReturnBaseURL: cfg.PayPal.ReturnBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal client: %w", err)
	}

	return &paymentService{
		client:   client,
		currency: cfg.PayPal.Currency,
		db:       db,
	}, nil
}

// InitiatePayment creates a provider payment for an unpaid order and
// returns the approval URL. Order and payment status are checked before
// the provider is contacted; only a Pending, Unpaid order ever reaches
// the provider.
func (s *paymentService) InitiatePayment(ctx context.Context, userID uint, orderID uuid.UUID) (*PaymentInitResponse, error) {
	logger.Info("Initiating payment", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	var order model.Order
	err := s.db.Preload("Items.Product").Where("id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}
	if order.Status != model.OrderStatusPending {
		logger.Warn("Payment initiation rejected: order not pending", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotPayable
	}
	if order.PaymentStatus != model.PaymentStatusUnpaid {
		logger.Warn("Payment initiation rejected: order not unpaid", map[string]interface{}{
			"order_id":       orderID,
			"payment_status": order.PaymentStatus,
		})
		return nil, ErrPaymentAlreadyProcessed
	}

	items := make([]paypal.Item, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, paypal.Item{
			Name:     line.Product.Name,
			Price:    line.Price.StringFixed(2),
			Currency: s.currency,
			Quantity: line.Quantity,
			SKU:      fmt.Sprintf("%d", line.ProductID),
		})
	}

	returnBase := s.client.GetConfig().ReturnBaseURL
	request := paypal.CreatePaymentRequest{
		Intent: "sale",
		Payer:  paypal.Payer{PaymentMethod: "paypal"},
		RedirectURLs: paypal.RedirectURLs{
			ReturnURL: fmt.Sprintf("%s/paypal/success?order_id=%s", returnBase, order.ID),
			CancelURL: fmt.Sprintf("%s/paypal/cancel?order_id=%s", returnBase, order.ID),
		},
		Transactions: []paypal.Transaction{
			{
				ItemList: paypal.ItemList{Items: items},
				Amount: paypal.Amount{
					Total:    order.TotalMoney.StringFixed(2),
					Currency: s.currency,
				},
				Description: fmt.Sprintf("Order %s", order.ID),
			},
		},
	}

	payment, err := s.client.CreatePayment(ctx, request)
	if err != nil {
		logger.Error("Failed to create provider payment", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	order.PaymentID = payment.ID
	order.PaymentStatus = model.PaymentStatusPending
	if err := s.db.Save(&order).Error; err != nil {
		logger.Error("Failed to store payment id on order", err, map[string]interface{}{
			"order_id":   orderID,
			"payment_id": payment.ID,
		})
		return nil, err
	}

	logger.Info("Payment initiated", map[string]interface{}{
		"order_id":   orderID,
		"payment_id": payment.ID,
	})
	return &PaymentInitResponse{
		OrderID:     order.ID,
		PaymentID:   payment.ID,
		ApprovalURL: payment.ApprovalURL(),
	}, nil
}

// ExecutePayment handles the provider success callback. The order must
// still be Pending, in Payment Pending, and carry a matching stored
// payment id; otherwise no state changes. A cancelled order can never be
// captured. Provider failure also leaves the order untouched.
func (s *paymentService) ExecutePayment(ctx context.Context, orderID uuid.UUID, paymentID, payerID string) (*PaymentResult, error) {
	logger.Info("Executing payment", map[string]interface{}{
		"order_id":   orderID,
		"payment_id": paymentID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status != model.OrderStatusPending ||
		order.PaymentStatus != model.PaymentStatusPending ||
		order.PaymentID != paymentID {
		tx.Rollback()
		logger.Warn("Payment execution precondition failed", map[string]interface{}{
			"order_id":           orderID,
			"status":             order.Status,
			"payment_status":     order.PaymentStatus,
			"stored_payment_id":  order.PaymentID,
			"request_payment_id": paymentID,
		})
		return nil, ErrPaymentExecution
	}

	if _, err := s.client.ExecutePayment(ctx, paymentID, payerID); err != nil {
		tx.Rollback()
		logger.Error("Provider payment execution failed", err, map[string]interface{}{
			"order_id":   orderID,
			"payment_id": paymentID,
		})
		return nil, err
	}

	order.PaymentStatus = model.PaymentStatusPaid
	order.Status = model.OrderStatusConfirmed
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Payment executed successfully", map[string]interface{}{
		"order_id":   orderID,
		"payment_id": paymentID,
	})
	return &PaymentResult{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

// CancelPayment handles the provider cancel callback: a Payment Pending
// order reverts to Unpaid with the payment id cleared. Order status is
// not touched.
func (s *paymentService) CancelPayment(orderID uuid.UUID) (*PaymentResult, error) {
	logger.Info("Cancelling payment", map[string]interface{}{
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
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.PaymentStatus != model.PaymentStatusPending {
		tx.Rollback()
		return nil, ErrPaymentAlreadyProcessed
	}

	order.PaymentStatus = model.PaymentStatusUnpaid
	order.PaymentID = ""
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Payment cancelled, order reverted to unpaid", map[string]interface{}{
		"order_id": orderID,
	})
	return &PaymentResult{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

// NewPaymentServiceWithClient wires an existing provider client, used by
// tests that point at a fake provider endpoint.
func NewPaymentServiceWithClient(client *paypal.Client, currency string, db *gorm.DB) PaymentService {
	return &paymentService{
		client:   client,
		currency: currency,
		db:       db,
	}
}
