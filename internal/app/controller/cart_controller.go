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

type CartController struct {
	cartService  service.CartService
	orderService service.OrderService
}

func NewCartController(cartService service.CartService, orderService service.OrderService) *CartController {
	return &CartController{
		cartService:  cartService,
		orderService: orderService,
	}
}

type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func cartResponse(cart *model.Cart) gin.H {
	return gin.H{
		"cart":        cart,
		"total_money": cart.TotalMoney(),
	}
}

// GetCart returns the caller's active cart with its derived total.
// GET /api/v1/carts
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart))
}

// AddItem puts a product into the cart.
// POST /api/v1/carts/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}

	cart, err := ctrl.cartService.AddItem(userID, req.ProductID, req.Quantity)
	if err != nil {
		log.Warn("Failed to add cart item", map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
			"error":      err.Error(),
		})
		ctrl.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart))
}

// UpdateItem replaces a cart line's quantity.
// PUT /api/v1/carts/items/:id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	itemID, ok := parseCartItemID(c)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}

	cart, err := ctrl.cartService.UpdateItem(userID, itemID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart))
}

// RemoveItem deletes one line from the cart.
// DELETE /api/v1/carts/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	itemID, ok := parseCartItemID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveItem(userID, itemID)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart))
}

// ClearCart empties the caller's cart.
// DELETE /api/v1/carts
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		apperrors.InternalError(c, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// Checkout converts the cart into a pending order.
// POST /api/v1/carts/:id/checkout
func (ctrl *CartController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.BadRequest(c, "Invalid cart id")
		return
	}

	order, err := ctrl.orderService.Checkout(userID, cartID)
	if err != nil {
		var stockErr *service.StockError
		switch {
		case errors.As(err, &stockErr):
			apperrors.FieldErrors(c, map[string]string{
				"product_" + strconv.FormatUint(uint64(stockErr.ProductID), 10): stockErr.Error(),
			})
		case errors.Is(err, service.ErrCartNotFound):
			apperrors.NotFound(c, "Cart not found")
		case errors.Is(err, service.ErrNotOwner):
			apperrors.Forbidden(c, "Cart belongs to another user")
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, "Cart is empty")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"user_id": userID,
				"cart_id": cartID,
			})
			apperrors.InternalError(c, "Failed to check out")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error) {
	var stockErr *service.StockError
	switch {
	case errors.As(err, &stockErr):
		apperrors.FieldErrors(c, map[string]string{"quantity": stockErr.Error()})
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.FieldErrors(c, map[string]string{"quantity": "Quantity must be at least 1"})
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, "Product not found")
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, "Cart item not found")
	case errors.Is(err, service.ErrNotOwner):
		apperrors.Forbidden(c, "Cart item belongs to another user")
	default:
		apperrors.InternalError(c, "Cart operation failed")
	}
}

func parseCartItemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, "Invalid cart item id")
		return 0, false
	}
	return uint(id), true
}
