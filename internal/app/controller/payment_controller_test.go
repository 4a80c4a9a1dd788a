package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/repository"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/service"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/db"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/paypal"
)

// newProviderStub serves the provider endpoints the payment flow touches.
// Execution fails with a not-approved error when failExecute is set.
func newProviderStub(t *testing.T, failExecute bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "stub-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/payments/payment", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "PAY-STUB-1",
			"state": "created",
			"links": []map[string]string{
				{"href": "https://provider.test/approve", "rel": "approval_url", "method": "REDIRECT"},
			},
		})
	})
	mux.HandleFunc("/v1/payments/payment/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/execute") {
			http.NotFound(w, r)
			return
		}
		if failExecute {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    "PAY-STUB-1",
				"state": "failed",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "PAY-STUB-1",
			"state": "approved",
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupPaymentControllerTest(t *testing.T, failExecute bool) (*gin.Engine, service.OrderService, *gorm.DB, *model.User, *model.Product) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	server := newProviderStub(t, failExecute)
	client, err := paypal.NewClient(paypal.Config{
		ClientID:      "test-client",
		ClientSecret:  "test-secret",
		BaseURL:       server.URL,
		ReturnBaseURL: "http://localhost:8080/api/v1",
	})
	require.NoError(t, err)

	paymentService := service.NewPaymentServiceWithClient(client, "USD", testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, testDB)
	ctrl := NewPaymentController(paymentService)

	user := &model.User{Email: "payer@example.com", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Name:       "Laptop",
		Price:      decimal.RequireFromString("499.99"),
		Stock:      10,
		CategoryID: categoryIDByType(t, testDB, model.CategoryElectronics),
	}
	require.NoError(t, testDB.Create(product).Error)

	router := gin.New()
	router.POST("/pay/:order_id", authAs(user), ctrl.InitiatePayment)
	router.GET("/paypal/success", ctrl.ExecutePayment)
	router.GET("/paypal/cancel", ctrl.CancelPayment)

	return router, orderService, testDB, user, product
}

func placePayableOrder(t *testing.T, orderService service.OrderService, userID, productID uint) *model.Order {
	t.Helper()

	order, err := orderService.CreateOrder(userID, []service.OrderItemInput{
		{ProductID: productID, Quantity: 2},
	})
	require.NoError(t, err)
	return order
}

func TestPaymentController_InitiatePayment(t *testing.T) {
	router, orderService, testDB, user, product := setupPaymentControllerTest(t, false)
	order := placePayableOrder(t, orderService, user.ID, product.ID)

	t.Run("Success", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodPost, "/pay/"+order.ID.String(), "", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		payment := response["payment"].(map[string]interface{})
		assert.Equal(t, "PAY-STUB-1", payment["payment_id"])
		assert.Equal(t, "https://provider.test/approve", payment["approval_url"])

		var stored model.Order
		require.NoError(t, testDB.First(&stored, "id = ?", order.ID).Error)
		assert.Equal(t, model.PaymentStatusPending, stored.PaymentStatus)
	})

	t.Run("Second initiation conflicts", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodPost, "/pay/"+order.ID.String(), "", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Invalid order id", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodPost, "/pay/not-a-uuid", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown order", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodPost, "/pay/00000000-0000-0000-0000-000000000001", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPaymentController_ExecutePayment(t *testing.T) {
	router, orderService, testDB, user, product := setupPaymentControllerTest(t, false)
	order := placePayableOrder(t, orderService, user.ID, product.ID)

	w := doJSONRequest(t, router, http.MethodPost, "/pay/"+order.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Missing callback parameters", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodGet, "/paypal/success?order_id="+order.ID.String(), "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := decodeResponse(t, w)
		fieldErrors := response["field_errors"].(map[string]interface{})
		assert.Contains(t, fieldErrors, "paymentId")
		assert.Contains(t, fieldErrors, "PayerID")
	})

	t.Run("Mismatched payment id conflicts", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodGet,
			"/paypal/success?paymentId=PAY-OTHER&PayerID=PAYER-1&order_id="+order.ID.String(), "", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Success confirms the order", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodGet,
			"/paypal/success?paymentId=PAY-STUB-1&PayerID=PAYER-1&order_id="+order.ID.String(), "", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var stored model.Order
		require.NoError(t, testDB.First(&stored, "id = ?", order.ID).Error)
		assert.Equal(t, model.PaymentStatusPaid, stored.PaymentStatus)
		assert.Equal(t, model.OrderStatusConfirmed, stored.Status)
	})

	t.Run("Repeated callback conflicts", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodGet,
			"/paypal/success?paymentId=PAY-STUB-1&PayerID=PAYER-1&order_id="+order.ID.String(), "", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPaymentController_ExecutePayment_NotApproved(t *testing.T) {
	router, orderService, testDB, user, product := setupPaymentControllerTest(t, true)
	order := placePayableOrder(t, orderService, user.ID, product.ID)

	w := doJSONRequest(t, router, http.MethodPost, "/pay/"+order.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSONRequest(t, router, http.MethodGet,
		"/paypal/success?paymentId=PAY-STUB-1&PayerID=PAYER-1&order_id="+order.ID.String(), "", nil)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	// Provider failure leaves the order awaiting a retry
	var stored model.Order
	require.NoError(t, testDB.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, model.PaymentStatusPending, stored.PaymentStatus)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
}

func TestPaymentController_CancelPayment(t *testing.T) {
	router, orderService, testDB, user, product := setupPaymentControllerTest(t, false)
	order := placePayableOrder(t, orderService, user.ID, product.ID)

	w := doJSONRequest(t, router, http.MethodPost, "/pay/"+order.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Pending payment reverts to unpaid", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodGet, "/paypal/cancel?order_id="+order.ID.String(), "", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var stored model.Order
		require.NoError(t, testDB.First(&stored, "id = ?", order.ID).Error)
		assert.Equal(t, model.PaymentStatusUnpaid, stored.PaymentStatus)
		assert.Empty(t, stored.PaymentID)
	})

	t.Run("Second cancel conflicts", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodGet, "/paypal/cancel?order_id="+order.ID.String(), "", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Missing order id", func(t *testing.T) {
		w := doJSONRequest(t, router, http.MethodGet, "/paypal/cancel", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
