package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Oyshik-ICT/ecommerce-backend/config"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/controller"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	cartController    *controller.CartController
	orderController   *controller.OrderController
	paymentController *controller.PaymentController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	paymentController *controller.PaymentController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		cartController:    cartController,
		orderController:   orderController,
		paymentController: paymentController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "ECOMMERCE API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		users := v1.Group("/users", r.authMiddleware.Authenticate())
		{
			users.GET("", r.authController.ListUsers)
			users.GET("/:id", r.authController.GetUser)
			users.PUT("/:id", r.authController.UpdateUser)
			users.DELETE("/:id", r.authController.DeleteUser)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.productController.GetCategories)
			categories.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.CreateCategory,
			)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProduct)

			products.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.CreateProduct,
			)
			products.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.UpdateProduct,
			)
			products.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.DeleteProduct,
			)
		}

		carts := v1.Group("/carts", r.authMiddleware.Authenticate())
		{
			carts.GET("", r.cartController.GetCart)
			carts.DELETE("", r.cartController.ClearCart)
			carts.POST("/items", r.cartController.AddItem)
			carts.PUT("/items/:id", r.cartController.UpdateItem)
			carts.DELETE("/items/:id", r.cartController.RemoveItem)
			carts.POST("/:id/checkout", r.cartController.Checkout)
		}

		orders := v1.Group("/orders", r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("", r.orderController.CreateOrder)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
			orders.PUT("/:id",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.UpdateOrder,
			)
			orders.DELETE("/:id",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.DeleteOrder,
			)
		}

		v1.POST("/pay/:order_id",
			r.authMiddleware.Authenticate(),
			r.paymentController.InitiatePayment,
		)

		// Provider redirect callbacks arrive without credentials
		paypal := v1.Group("/paypal")
		{
			paypal.GET("/success", r.paymentController.ExecutePayment)
			paypal.GET("/cancel", r.paymentController.CancelPayment)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
