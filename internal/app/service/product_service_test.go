package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/repository"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/db"
)

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	return NewProductService(productRepo, categoryRepo), testDB
}

func TestProductService_CreateProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	var electronics model.Category
	require.NoError(t, testDB.Where("type = ?", model.CategoryElectronics).First(&electronics).Error)

	t.Run("Success", func(t *testing.T) {
		product, err := productService.CreateProduct(ProductInput{
			Name:        "Soundbar",
			Description: "2.1 channel",
			Price:       decimal.NewFromFloat(129.99),
			Stock:       15,
			CategoryID:  electronics.ID,
		})
		require.NoError(t, err)
		assert.NotZero(t, product.ID)
		assert.Equal(t, model.CategoryElectronics, product.Category.Type)
	})

	t.Run("Unknown category", func(t *testing.T) {
		_, err := productService.CreateProduct(ProductInput{
			Name:       "Orphan",
			Price:      decimal.NewFromFloat(10.00),
			Stock:      1,
			CategoryID: 9999,
		})
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("Negative price", func(t *testing.T) {
		_, err := productService.CreateProduct(ProductInput{
			Name:       "Bad Price",
			Price:      decimal.NewFromFloat(-1.00),
			Stock:      1,
			CategoryID: electronics.ID,
		})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("Negative stock", func(t *testing.T) {
		_, err := productService.CreateProduct(ProductInput{
			Name:       "Bad Stock",
			Price:      decimal.NewFromFloat(1.00),
			Stock:      -1,
			CategoryID: electronics.ID,
		})
		assert.ErrorIs(t, err, ErrInvalidStock)
	})
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	var electronics model.Category
	require.NoError(t, testDB.Where("type = ?", model.CategoryElectronics).First(&electronics).Error)

	product, err := productService.CreateProduct(ProductInput{
		Name:       "Projector",
		Price:      decimal.NewFromFloat(399.00),
		Stock:      3,
		CategoryID: electronics.ID,
	})
	require.NoError(t, err)

	updated, err := productService.UpdateProduct(product.ID, ProductInput{
		Name:       "Projector 4K",
		Price:      decimal.NewFromFloat(449.00),
		Stock:      5,
		CategoryID: electronics.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Projector 4K", updated.Name)
	assert.Equal(t, 5, updated.Stock)

	require.NoError(t, productService.DeleteProduct(product.ID))
	_, err = productService.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = productService.DeleteProduct(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Categories(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	categories, err := productService.GetCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	created, err := productService.CreateCategory("Books")
	require.NoError(t, err)
	assert.Equal(t, "Books", created.Type)

	_, err = productService.CreateCategory("Books")
	assert.ErrorIs(t, err, ErrCategoryExists)

	categories, err = productService.GetCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 3)
}
