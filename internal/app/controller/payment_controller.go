package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/service"
	apperrors "github.com/Oyshik-ICT/ecommerce-backend/internal/errors"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/middleware"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/paypal"
)

type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// InitiatePayment creates a provider payment for an order and returns
// the approval URL.
// POST /api/v1/pay/:order_id
func (ctrl *PaymentController) InitiatePayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		apperrors.BadRequest(c, "Invalid order id")
		return
	}

	response, err := ctrl.paymentService.InitiatePayment(c.Request.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, "Order not found")
		case errors.Is(err, service.ErrNotOwner):
			apperrors.Forbidden(c, "Order belongs to another user")
		case errors.Is(err, service.ErrOrderNotPayable):
			apperrors.Conflict(c, "Order is not awaiting payment")
		case errors.Is(err, service.ErrPaymentAlreadyProcessed):
			apperrors.Conflict(c, "Order payment has already been processed")
		default:
			log.Error("Payment initiation failed", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.PaymentRequired(c, "Failed to initiate payment with the provider")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": response})
}

// ExecutePayment handles the provider success redirect.
// GET /api/v1/paypal/success?paymentId=...&PayerID=...&order_id=...
func (ctrl *PaymentController) ExecutePayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	paymentID := c.Query("paymentId")
	payerID := c.Query("PayerID")
	rawOrderID := c.Query("order_id")

	fieldErrors := make(map[string]string)
	if paymentID == "" {
		fieldErrors["paymentId"] = "This field is required"
	}
	if payerID == "" {
		fieldErrors["PayerID"] = "This field is required"
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		fieldErrors["order_id"] = "Must be a valid order id"
	}
	if len(fieldErrors) > 0 {
		apperrors.FieldErrors(c, fieldErrors)
		return
	}

	result, err := ctrl.paymentService.ExecutePayment(c.Request.Context(), orderID, paymentID, payerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, "Order not found")
		case errors.Is(err, service.ErrPaymentExecution):
			apperrors.Conflict(c, "Payment does not match the expected state of this order")
		case errors.Is(err, paypal.ErrPaymentNotApproved):
			apperrors.PaymentRequired(c, "Payment was not approved by the payer")
		default:
			log.Error("Payment execution failed", err, map[string]interface{}{
				"order_id":   orderID,
				"payment_id": paymentID,
			})
			apperrors.PaymentRequired(c, "Payment execution failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment completed successfully",
		"result":  result,
	})
}

// CancelPayment handles the provider cancel redirect: a pending payment
// reverts to unpaid.
// GET /api/v1/paypal/cancel?order_id=...
func (ctrl *PaymentController) CancelPayment(c *gin.Context) {
	orderID, err := uuid.Parse(c.Query("order_id"))
	if err != nil {
		apperrors.FieldErrors(c, map[string]string{"order_id": "Must be a valid order id"})
		return
	}

	result, err := ctrl.paymentService.CancelPayment(orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, "Order not found")
		case errors.Is(err, service.ErrPaymentAlreadyProcessed):
			apperrors.Conflict(c, "Order payment has already been processed")
		default:
			apperrors.InternalError(c, "Failed to cancel payment")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment cancelled",
		"result":  result,
	})
}
