package controller

import (
	"fmt"
	"net/http"
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
)

type orderControllerFixture struct {
	router      *gin.Engine
	adminRouter *gin.Engine
	testDB      *gorm.DB
	service     service.OrderService
	user        *model.User
	admin       *model.User
	product     *model.Product
}

func setupOrderControllerTest(t *testing.T) *orderControllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderService := service.NewOrderService(orderRepo, cartRepo, testDB)
	ctrl := NewOrderController(orderService)

	user := &model.User{Email: "user@example.com", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)
	admin := &model.User{Email: "admin@example.com", PasswordHash: "hash", Role: model.RoleAdmin}
	require.NoError(t, testDB.Create(admin).Error)

	product := &model.Product{
		Name:       "Laptop",
		Price:      decimal.RequireFromString("499.99"),
		Stock:      10,
		CategoryID: categoryIDByType(t, testDB, model.CategoryElectronics),
	}
	require.NoError(t, testDB.Create(product).Error)

	registerOrderRoutes := func(router *gin.Engine, as *model.User) {
		authed := router.Group("", authAs(as))
		authed.GET("/orders", ctrl.GetOrders)
		authed.GET("/orders/:id", ctrl.GetOrder)
		authed.POST("/orders", ctrl.CreateOrder)
		authed.PUT("/orders/:id", ctrl.UpdateOrder)
		authed.POST("/orders/:id/cancel", ctrl.CancelOrder)
		authed.DELETE("/orders/:id", ctrl.DeleteOrder)
	}

	router := gin.New()
	registerOrderRoutes(router, user)
	adminRouter := gin.New()
	registerOrderRoutes(adminRouter, admin)

	return &orderControllerFixture{
		router:      router,
		adminRouter: adminRouter,
		testDB:      testDB,
		service:     orderService,
		user:        user,
		admin:       admin,
		product:     product,
	}
}

func (f *orderControllerFixture) placeOrder(t *testing.T, quantity int) *model.Order {
	t.Helper()

	order, err := f.service.CreateOrder(f.user.ID, []service.OrderItemInput{
		{ProductID: f.product.ID, Quantity: quantity},
	})
	require.NoError(t, err)
	return order
}

func TestOrderController_CreateOrder(t *testing.T) {
	f := setupOrderControllerTest(t)

	t.Run("Success", func(t *testing.T) {
		w := doJSONRequest(t, f.router, http.MethodPost, "/orders", "", CreateOrderRequest{
			Items: []OrderItemRequest{{ProductID: f.product.ID, Quantity: 2}},
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		response := decodeResponse(t, w)
		order := response["order"].(map[string]interface{})
		assert.Equal(t, "Pending", order["status"])
		assert.Equal(t, "Unpaid", order["payment_status"])
		assert.Equal(t, "999.98", order["total_money"])

		var updated model.Product
		require.NoError(t, f.testDB.First(&updated, f.product.ID).Error)
		assert.Equal(t, 8, updated.Stock)
	})

	t.Run("Empty items fails binding", func(t *testing.T) {
		w := doJSONRequest(t, f.router, http.MethodPost, "/orders", "", CreateOrderRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := decodeResponse(t, w)
		fieldErrors := response["field_errors"].(map[string]interface{})
		assert.Contains(t, fieldErrors, "items")
	})

	t.Run("Duplicate product", func(t *testing.T) {
		w := doJSONRequest(t, f.router, http.MethodPost, "/orders", "", CreateOrderRequest{
			Items: []OrderItemRequest{
				{ProductID: f.product.ID, Quantity: 1},
				{ProductID: f.product.ID, Quantity: 2},
			},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := decodeResponse(t, w)
		fieldErrors := response["field_errors"].(map[string]interface{})
		assert.Contains(t, fieldErrors, "items")
	})

	t.Run("Insufficient stock names the product", func(t *testing.T) {
		w := doJSONRequest(t, f.router, http.MethodPost, "/orders", "", CreateOrderRequest{
			Items: []OrderItemRequest{{ProductID: f.product.ID, Quantity: 100}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := decodeResponse(t, w)
		fieldErrors := response["field_errors"].(map[string]interface{})
		assert.Contains(t, fieldErrors, fmt.Sprintf("product_%d", f.product.ID))
	})
}

func TestOrderController_GetOrders_Visibility(t *testing.T) {
	f := setupOrderControllerTest(t)

	f.placeOrder(t, 1)
	adminOrder, err := f.service.CreateOrder(f.admin.ID, []service.OrderItemInput{
		{ProductID: f.product.ID, Quantity: 1},
	})
	require.NoError(t, err)

	t.Run("User sees only their own orders", func(t *testing.T) {
		w := doJSONRequest(t, f.router, http.MethodGet, "/orders", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		assert.Equal(t, float64(1), response["count"])
	})

	t.Run("Admin sees all orders", func(t *testing.T) {
		w := doJSONRequest(t, f.adminRouter, http.MethodGet, "/orders", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		assert.Equal(t, float64(2), response["count"])
	})

	t.Run("User cannot fetch a foreign order", func(t *testing.T) {
		w := doJSONRequest(t, f.router, http.MethodGet, "/orders/"+adminOrder.ID.String(), "", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin can fetch any order", func(t *testing.T) {
		w := doJSONRequest(t, f.adminRouter, http.MethodGet, "/orders/"+adminOrder.ID.String(), "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOrderController_GetOrder_InvalidID(t *testing.T) {
	f := setupOrderControllerTest(t)

	w := doJSONRequest(t, f.router, http.MethodGet, "/orders/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSONRequest(t, f.router, http.MethodGet, "/orders/00000000-0000-0000-0000-000000000001", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_UpdateOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	order := f.placeOrder(t, 2)

	t.Run("Nothing to update", func(t *testing.T) {
		w := doJSONRequest(t, f.adminRouter, http.MethodPut, "/orders/"+order.ID.String(), "", UpdateOrderRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Change item quantity", func(t *testing.T) {
		w := doJSONRequest(t, f.adminRouter, http.MethodPut, "/orders/"+order.ID.String(), "", UpdateOrderRequest{
			Items: []OrderItemRequest{{ProductID: f.product.ID, Quantity: 5}},
		})

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		updated := response["order"].(map[string]interface{})
		assert.Equal(t, "2499.95", updated["total_money"])

		var product model.Product
		require.NoError(t, f.testDB.First(&product, f.product.ID).Error)
		assert.Equal(t, 5, product.Stock)
	})

	t.Run("Confirm", func(t *testing.T) {
		status := model.OrderStatusConfirmed
		w := doJSONRequest(t, f.adminRouter, http.MethodPut, "/orders/"+order.ID.String(), "", UpdateOrderRequest{
			Status: &status,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		updated := response["order"].(map[string]interface{})
		assert.Equal(t, "Confirmed", updated["status"])
	})

	t.Run("Items frozen once confirmed", func(t *testing.T) {
		w := doJSONRequest(t, f.adminRouter, http.MethodPut, "/orders/"+order.ID.String(), "", UpdateOrderRequest{
			Items: []OrderItemRequest{{ProductID: f.product.ID, Quantity: 1}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Illegal transition", func(t *testing.T) {
		status := model.OrderStatusPending
		w := doJSONRequest(t, f.adminRouter, http.MethodPut, "/orders/"+order.ID.String(), "", UpdateOrderRequest{
			Status: &status,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown status fails binding", func(t *testing.T) {
		w := doJSONRequest(t, f.adminRouter, http.MethodPut, "/orders/"+order.ID.String(), "", map[string]interface{}{
			"status": "Shipped",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderController_CancelOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	order := f.placeOrder(t, 2)

	t.Run("Owner can cancel and stock is restored", func(t *testing.T) {
		w := doJSONRequest(t, f.router, http.MethodPost, "/orders/"+order.ID.String()+"/cancel", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		response := decodeResponse(t, w)
		cancelled := response["order"].(map[string]interface{})
		assert.Equal(t, "Cancelled", cancelled["status"])

		var product model.Product
		require.NoError(t, f.testDB.First(&product, f.product.ID).Error)
		assert.Equal(t, 10, product.Stock)
	})

	t.Run("Cancelled is terminal", func(t *testing.T) {
		w := doJSONRequest(t, f.router, http.MethodPost, "/orders/"+order.ID.String()+"/cancel", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderController_CancelOrder_Foreign(t *testing.T) {
	f := setupOrderControllerTest(t)

	adminOrder, err := f.service.CreateOrder(f.admin.ID, []service.OrderItemInput{
		{ProductID: f.product.ID, Quantity: 1},
	})
	require.NoError(t, err)

	w := doJSONRequest(t, f.router, http.MethodPost, "/orders/"+adminOrder.ID.String()+"/cancel", "", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderController_DeleteOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	order := f.placeOrder(t, 3)

	w := doJSONRequest(t, f.adminRouter, http.MethodDelete, "/orders/"+order.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var product model.Product
	require.NoError(t, f.testDB.First(&product, f.product.ID).Error)
	assert.Equal(t, 10, product.Stock)

	w = doJSONRequest(t, f.adminRouter, http.MethodGet, "/orders/"+order.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
