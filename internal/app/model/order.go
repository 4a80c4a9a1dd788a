package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusCancelled OrderStatus = "Cancelled"

	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
	PaymentStatusPending PaymentStatus = "Payment Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// CanTransitionTo reports whether an order status change is legal.
// Cancelled is terminal; Confirmed can only be cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed || next == OrderStatusCancelled
	case OrderStatusConfirmed:
		return next == OrderStatusCancelled
	default:
		return false
	}
}

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primarykey" json:"order_id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Status        OrderStatus     `gorm:"type:varchar(10);default:'Pending'" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(15);default:'Unpaid'" json:"payment_status"`
	PaymentID     string          `gorm:"type:varchar(100);index" json:"payment_id,omitempty"`
	TotalMoney    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_money"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is an immutable snapshot of product, quantity and unit price
// taken at checkout time. Later product price changes do not affect it.
type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) SubTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
