package repository

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/pkg/logger"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
)

// ProductFilter narrows the catalog listing. Nil pointer fields are
// not applied. Name and NameContains are mutually exclusive in practice
// but both are honored when set.
type ProductFilter struct {
	Name          string
	NameContains  string
	Price         *decimal.Decimal
	PriceLt       *decimal.Decimal
	PriceGt       *decimal.Decimal
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	CategoryID    *uint
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"category_id": product.CategoryID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":        product.Name,
			"category_id": product.CategoryID,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).Preload("Category")
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{})
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"name":          filter.Name,
		"name_contains": filter.NameContains,
		"category_id":   filter.CategoryID,
		"sort_by":       filter.SortBy,
		"ascending":     filter.SortAscending,
	})

	query := r.baseQuery()

	if filter.Name != "" {
		query = query.Where("products.name = ?", filter.Name)
	}
	if filter.NameContains != "" {
		like := fmt.Sprintf("%%%s%%", filter.NameContains)
		query = query.Where("products.name LIKE ?", like)
	}
	if filter.Price != nil {
		query = query.Where("products.price = ?", *filter.Price)
	}
	if filter.PriceLt != nil {
		query = query.Where("products.price < ?", *filter.PriceLt)
	}
	if filter.PriceGt != nil {
		query = query.Where("products.price > ?", *filter.PriceGt)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}

	switch filter.SortBy {
	case ProductSortPrice:
		direction := "DESC"
		if filter.SortAscending {
			direction = "ASC"
		}
		query = query.Order("products.price " + direction)
	case ProductSortCreatedAt:
		fallthrough
	default:
		direction := "DESC"
		if filter.SortAscending {
			direction = "ASC"
		}
		query = query.Order("products.created_at " + direction)
		query = query.Order("products.id " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"name":          filter.Name,
			"name_contains": filter.NameContains,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.baseQuery().First(&product, id).Error
	if err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product in database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product in database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
