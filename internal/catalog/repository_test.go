package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/pagination"
)

func mustCreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func mustCreateProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, name string, available bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Description: name + " description",
		CategoryID:  categoryID,
		Available:   available,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func mustCreateVariant(t *testing.T, db *gorm.DB, productID uuid.UUID, name, price string, available bool) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ProductID: productID,
		Name:      name,
		MRP:       decimal.RequireFromString(price).Add(decimal.NewFromInt(10)),
		Price:     decimal.RequireFromString(price),
		Stock:     10,
		Available: available,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func TestCreatePersistsUnavailableRows(t *testing.T) {
	db := newTestDB(t)

	category := mustCreateCategory(t, db, "Snacks")
	product := mustCreateProduct(t, db, category.ID, "Hidden Peanut Bar", false)
	variant := mustCreateVariant(t, db, product.ID, "100g", "50", false)

	var reloadedProduct models.Product
	require.NoError(t, db.First(&reloadedProduct, "id = ?", product.ID).Error)
	require.False(t, reloadedProduct.Available)

	var reloadedVariant models.ProductVariant
	require.NoError(t, db.First(&reloadedVariant, "id = ?", variant.ID).Error)
	require.False(t, reloadedVariant.Available)
}

func TestListProducts_SearchAndAvailability(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := mustCreateCategory(t, db, "Snacks")
	mustCreateProduct(t, db, category.ID, "Salted Peanuts", true)
	mustCreateProduct(t, db, category.ID, "Roasted Almonds", true)
	mustCreateProduct(t, db, category.ID, "Hidden Peanut Bar", false)

	products, total, err := repo.ListProducts(ctx, ListParams{Search: "peanut"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	require.Equal(t, "Salted Peanuts", products[0].Name)
}

func TestListProducts_CategoryFilterAndPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	snacks := mustCreateCategory(t, db, "Snacks")
	drinks := mustCreateCategory(t, db, "Drinks")
	for i := 0; i < 3; i++ {
		mustCreateProduct(t, db, snacks.ID, "Snack "+string(rune('A'+i)), true)
	}
	mustCreateProduct(t, db, drinks.ID, "Cola", true)

	products, total, err := repo.ListProducts(ctx, ListParams{
		CategoryID: &snacks.ID,
		Ordering:   "name",
		Page:       pagination.Params{Page: 1, PageSize: 2},
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, products, 2)
	require.Equal(t, "Snack A", products[0].Name)

	products, _, err = repo.ListProducts(ctx, ListParams{
		CategoryID: &snacks.ID,
		Ordering:   "name",
		Page:       pagination.Params{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Snack C", products[0].Name)
}

func TestListProducts_RejectsUnknownOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	_, _, err := repo.ListProducts(context.Background(), ListParams{Ordering: "price; DROP TABLE"})
	require.ErrorIs(t, err, ErrUnsupportedOrdering)
}

func TestCountProductsByCategory_SkipsUnavailable(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := mustCreateCategory(t, db, "Snacks")
	mustCreateProduct(t, db, category.ID, "Visible", true)
	mustCreateProduct(t, db, category.ID, "Hidden", false)

	counts, err := repo.CountProductsByCategory(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, counts[category.ID])
}

func TestFindProductByID_PreloadsVariants(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := mustCreateCategory(t, db, "Snacks")
	product := mustCreateProduct(t, db, category.ID, "Peanuts", true)
	mustCreateVariant(t, db, product.ID, "500g", "120", true)
	mustCreateVariant(t, db, product.ID, "1kg", "220", true)

	loaded, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Variants, 2)
}

func TestDeleteCartItemsByVariant(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := mustCreateCategory(t, db, "Snacks")
	product := mustCreateProduct(t, db, category.ID, "Peanuts", true)
	variant := mustCreateVariant(t, db, product.ID, "500g", "120", true)
	other := mustCreateVariant(t, db, product.ID, "1kg", "220", true)

	user := &models.User{PhoneNumber: "+919876543210"}
	require.NoError(t, db.Create(user).Error)
	cart := &models.Cart{UserID: user.ID}
	require.NoError(t, db.Create(cart).Error)
	require.NoError(t, db.Create(&models.CartItem{CartID: cart.ID, VariantID: variant.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.CartItem{CartID: cart.ID, VariantID: other.ID, Quantity: 1}).Error)

	removed, err := repo.DeleteCartItemsByVariant(ctx, variant.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&remaining).Error)
	require.EqualValues(t, 1, remaining)
}
