package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/repository"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/service"
	apperrors "github.com/Oyshik-ICT/ecommerce-backend/internal/errors"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"gte=0"`
	CategoryID  uint            `json:"category_id" binding:"required"`
}

type CategoryRequest struct {
	Type string `json:"type" binding:"required,min=2,max=20"`
}

// GetProducts lists the catalog with optional filters.
// GET /api/v1/products?name=&name_contains=&price=&price_lt=&price_gt=&min_price=&max_price=&category_id=&sort_by=&order=
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter, fieldErrors := buildProductFilter(c)
	if len(fieldErrors) > 0 {
		apperrors.FieldErrors(c, fieldErrors)
		return
	}

	products, err := ctrl.productService.GetProducts(filter)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product.
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, "Product not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a product to the catalog (admin only).
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}

	product, err := ctrl.productService.CreateProduct(service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.FieldErrors(c, map[string]string{"category_id": "Category does not exist"})
		case errors.Is(err, service.ErrInvalidPrice):
			apperrors.FieldErrors(c, map[string]string{"price": "Price must not be negative"})
		case errors.Is(err, service.ErrInvalidStock):
			apperrors.FieldErrors(c, map[string]string{"stock": "Stock must not be negative"})
		default:
			log.Error("Failed to create product", err, map[string]interface{}{
				"name": req.Name,
			})
			apperrors.InternalError(c, "Failed to create product")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct replaces a product's fields (admin only).
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, "Product not found")
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.FieldErrors(c, map[string]string{"category_id": "Category does not exist"})
		case errors.Is(err, service.ErrInvalidPrice):
			apperrors.FieldErrors(c, map[string]string{"price": "Price must not be negative"})
		case errors.Is(err, service.ErrInvalidStock):
			apperrors.FieldErrors(c, map[string]string{"stock": "Stock must not be negative"})
		default:
			apperrors.InternalError(c, "Failed to update product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a product from the catalog (admin only).
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, "Product not found")
			return
		}
		apperrors.InternalError(c, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// GetCategories lists all categories.
// GET /api/v1/categories
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	categories, err := ctrl.productService.GetCategories()
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory adds a category (admin only).
// POST /api/v1/categories
func (ctrl *ProductController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.ValidationError(c, err)
		return
	}

	category, err := ctrl.productService.CreateCategory(req.Type)
	if err != nil {
		if errors.Is(err, service.ErrCategoryExists) {
			apperrors.FieldErrors(c, map[string]string{"type": "Category already exists"})
			return
		}
		apperrors.InternalError(c, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func parseProductID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, "Invalid product id")
		return 0, false
	}
	return uint(id), true
}

// buildProductFilter translates query parameters into a repository
// filter, collecting per-parameter errors.
func buildProductFilter(c *gin.Context) (repository.ProductFilter, map[string]string) {
	filter := repository.ProductFilter{
		Name:         c.Query("name"),
		NameContains: c.Query("name_contains"),
	}
	fieldErrors := make(map[string]string)

	parsePrice := func(param string) *decimal.Decimal {
		raw := c.Query(param)
		if raw == "" {
			return nil
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			fieldErrors[param] = "Must be a decimal number"
			return nil
		}
		return &value
	}

	filter.Price = parsePrice("price")
	filter.PriceLt = parsePrice("price_lt")
	filter.PriceGt = parsePrice("price_gt")
	filter.MinPrice = parsePrice("min_price")
	filter.MaxPrice = parsePrice("max_price")

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			fieldErrors["category_id"] = "Must be a positive integer"
		} else {
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
	}

	switch c.Query("sort_by") {
	case "":
	case "price":
		filter.SortBy = repository.ProductSortPrice
	case "created_at":
		filter.SortBy = repository.ProductSortCreatedAt
	default:
		fieldErrors["sort_by"] = "Must be one of: price, created_at"
	}
	filter.SortAscending = c.Query("order") != "desc"

	return filter, fieldErrors
}
