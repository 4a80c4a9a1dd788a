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

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo)

	user := &model.User{Email: "cart@example.com", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	return cartService, testDB, user
}

func TestCartService_AddItem(t *testing.T) {
	cartService, testDB, user := setupCartServiceTest(t)

	product := createServiceTestProduct(t, testDB, "Keyboard", 49.99, 5)

	t.Run("First add creates the cart", func(t *testing.T) {
		cart, err := cartService.AddItem(user.ID, product.ID, 2)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.Equal(t, "99.98", cart.TotalMoney().StringFixed(2))
	})

	t.Run("Same product merges into the line", func(t *testing.T) {
		cart, err := cartService.AddItem(user.ID, product.ID, 1)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("Merged quantity above stock is rejected", func(t *testing.T) {
		_, err := cartService.AddItem(user.ID, product.ID, 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		var stockErr *StockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 6, stockErr.Requested)
		assert.Equal(t, 5, stockErr.Available)
	})

	t.Run("Adding does not deduct stock", func(t *testing.T) {
		assert.Equal(t, 5, productStock(t, testDB, product.ID))
	})

	t.Run("Unknown product", func(t *testing.T) {
		_, err := cartService.AddItem(user.ID, 9999, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Zero quantity", func(t *testing.T) {
		_, err := cartService.AddItem(user.ID, product.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestCartService_UpdateItem(t *testing.T) {
	cartService, testDB, user := setupCartServiceTest(t)

	product := createServiceTestProduct(t, testDB, "Monitor", 199.50, 4)
	cart, err := cartService.AddItem(user.ID, product.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	t.Run("Quantity replaced", func(t *testing.T) {
		updated, err := cartService.UpdateItem(user.ID, itemID, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Items[0].Quantity)
	})

	t.Run("Above stock rejected", func(t *testing.T) {
		_, err := cartService.UpdateItem(user.ID, itemID, 5)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("Foreign user rejected", func(t *testing.T) {
		other := &model.User{Email: "other@example.com", PasswordHash: "hash", Role: model.RoleUser}
		require.NoError(t, testDB.Create(other).Error)

		_, err := cartService.UpdateItem(other.ID, itemID, 1)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("Missing item", func(t *testing.T) {
		_, err := cartService.UpdateItem(user.ID, 9999, 1)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})
}

func TestCartService_RemoveItemAndClear(t *testing.T) {
	cartService, testDB, user := setupCartServiceTest(t)

	first := createServiceTestProduct(t, testDB, "Cable", 9.99, 50)
	second := createServiceTestProduct(t, testDB, "Adapter", 19.99, 50)

	cart, err := cartService.AddItem(user.ID, first.ID, 2)
	require.NoError(t, err)
	cart, err = cartService.AddItem(user.ID, second.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	cart, err = cartService.RemoveItem(user.ID, cart.Items[0].ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	require.NoError(t, cartService.ClearCart(user.ID))

	cart, err = cartService.GetCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalMoney().Equal(decimal.Zero))
}
