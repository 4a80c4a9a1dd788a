package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/service"
	apperrors "github.com/Oyshik-ICT/ecommerce-backend/internal/errors"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest may change the status, the item quantities, or
// both in one call.
type UpdateOrderRequest struct {
	Status *model.OrderStatus `json:"status" binding:"omitempty,oneof=Pending Confirmed Cancelled"`
	Items  []OrderItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

// GetOrders lists orders: all of them for admins, own otherwise.
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	orders, err := ctrl.orderService.GetOrders(userID, role)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one order, restricted to its owner or an admin.
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	order, err := ctrl.orderService.GetOrderByID(userID, role, orderID)
	if err != nil {
		ctrl.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CreateOrder places a direct order from an item list.
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}

	order, err := ctrl.orderService.CreateOrder(userID, toItemInputs(req.Items))
	if err != nil {
		log.Warn("Order creation failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		ctrl.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// UpdateOrder applies a status transition and/or item quantity changes
// (admin only).
// PUT /api/v1/orders/:id
func (ctrl *OrderController) UpdateOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}
	if req.Status == nil && len(req.Items) == 0 {
		apperrors.BadRequest(c, "Nothing to update: provide status and/or items")
		return
	}

	var order *model.Order
	var err error

	if len(req.Items) > 0 {
		order, err = ctrl.orderService.UpdateOrderItems(orderID, toItemInputs(req.Items))
		if err != nil {
			ctrl.respondOrderError(c, err)
			return
		}
	}

	if req.Status != nil {
		order, err = ctrl.orderService.UpdateOrderStatus(orderID, *req.Status)
		if err != nil {
			ctrl.respondOrderError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels an order on behalf of its owner or an admin.
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	order, err := ctrl.orderService.CancelOrder(userID, role, orderID)
	if err != nil {
		ctrl.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// DeleteOrder removes an order and restores its stock (admin only).
// DELETE /api/v1/orders/:id
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	if err := ctrl.orderService.DeleteOrder(orderID); err != nil {
		ctrl.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

func (ctrl *OrderController) respondOrderError(c *gin.Context, err error) {
	var stockErr *service.StockError
	switch {
	case errors.As(err, &stockErr):
		apperrors.FieldErrors(c, map[string]string{
			"product_" + strconv.FormatUint(uint64(stockErr.ProductID), 10): stockErr.Error(),
		})
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, "Order not found")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, "Product not found")
	case errors.Is(err, service.ErrNotOwner):
		apperrors.Forbidden(c, "Order belongs to another user")
	case errors.Is(err, service.ErrEmptyOrder):
		apperrors.FieldErrors(c, map[string]string{"items": "Order must contain at least one item"})
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.FieldErrors(c, map[string]string{"quantity": "Quantity must be at least 1"})
	case errors.Is(err, service.ErrDuplicateProduct):
		apperrors.FieldErrors(c, map[string]string{"items": "Duplicate product in order items"})
	case errors.Is(err, service.ErrInvalidTransition):
		apperrors.BadRequest(c, "Illegal order status transition")
	case errors.Is(err, service.ErrOrderNotEditable):
		apperrors.BadRequest(c, "Order items can only be changed while the order is pending")
	default:
		apperrors.InternalError(c, "Order operation failed")
	}
}

func toItemInputs(items []OrderItemRequest) []service.OrderItemInput {
	inputs := make([]service.OrderItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, service.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return inputs
}

func parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.BadRequest(c, "Invalid order id")
		return uuid.Nil, false
	}
	return id, true
}
