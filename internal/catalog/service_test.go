package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cashya/shoppy-backend/pkg/config"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
)

func newTestService(t *testing.T) (Service, *Repository, *gormTxRunner) {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	runner := &gormTxRunner{db: db}
	logg := logger.New(logger.Options{ServiceName: "catalog-test", Level: logger.ParseLevel("error")})
	svc, err := NewService(repo, runner, config.MediaConfig{BaseURL: "https://cdn.example.com/media/"}, logg)
	require.NoError(t, err)
	return svc, repo, runner
}

func TestToProductDTO_PriceRange(t *testing.T) {
	p := models.Product{
		Name: "Peanuts",
		Variants: []models.ProductVariant{
			{Name: "500g", Price: decimal.RequireFromString("120"), Available: true},
			{Name: "1kg", Price: decimal.RequireFromString("220"), Available: true},
			{Name: "5kg", Price: decimal.RequireFromString("900"), Available: false},
		},
	}
	dto := ToProductDTO(p, "/media/")
	require.NotNil(t, dto.StartPrice)
	require.NotNil(t, dto.EndPrice)
	require.True(t, dto.StartPrice.Equal(decimal.RequireFromString("120")))
	// Unavailable variants never stretch the displayed range.
	require.True(t, dto.EndPrice.Equal(decimal.RequireFromString("220")))
}

func TestToProductDTO_NoAvailableVariants(t *testing.T) {
	p := models.Product{Name: "Peanuts"}
	dto := ToProductDTO(p, "/media/")
	require.Nil(t, dto.StartPrice)
	require.Nil(t, dto.EndPrice)
}

func TestImageURL(t *testing.T) {
	require.Equal(t, "https://cdn.example.com/media/img/a.png", ImageURL("https://cdn.example.com/media/", "img/a.png"))
	require.Equal(t, "/media/a.png", ImageURL("/media/", "/a.png"))
	require.Equal(t, "", ImageURL("/media/", ""))
}

func TestUpdateVariant_PriceAboveMRPRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	db := repo.db
	category := mustCreateCategory(t, db, "Snacks")
	product := mustCreateProduct(t, db, category.ID, "Peanuts", true)
	variant := mustCreateVariant(t, db, product.ID, "500g", "120", true)

	tooHigh := variant.MRP.Add(decimal.NewFromInt(1))
	_, err := svc.UpdateVariant(ctx, variant.ID, UpdateVariantInput{Price: &tooHigh})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestUpdateVariant_UnavailablePrunesCartItems(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	db := repo.db

	category := mustCreateCategory(t, db, "Snacks")
	product := mustCreateProduct(t, db, category.ID, "Peanuts", true)
	variant := mustCreateVariant(t, db, product.ID, "500g", "120", true)

	user := &models.User{PhoneNumber: "+919876543210"}
	require.NoError(t, db.Create(user).Error)
	cart := &models.Cart{UserID: user.ID}
	require.NoError(t, db.Create(cart).Error)
	require.NoError(t, db.Create(&models.CartItem{CartID: cart.ID, VariantID: variant.ID, Quantity: 2}).Error)

	unavailable := false
	dto, err := svc.UpdateVariant(ctx, variant.ID, UpdateVariantInput{Available: &unavailable})
	require.NoError(t, err)
	require.False(t, dto.Available)

	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestUpdateVariant_NoChangesRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)
	db := repo.db

	category := mustCreateCategory(t, db, "Snacks")
	product := mustCreateProduct(t, db, category.ID, "Peanuts", true)
	variant := mustCreateVariant(t, db, product.ID, "500g", "120", true)

	_, err := svc.UpdateVariant(context.Background(), variant.ID, UpdateVariantInput{})
	require.Error(t, err)
}

func TestListCategories_CountsAndImages(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	db := repo.db

	image := &models.Image{Name: "snacks", Path: "categories/snacks.png"}
	require.NoError(t, db.Create(image).Error)
	category := &models.Category{Name: "Snacks", ImageID: &image.ID}
	require.NoError(t, db.Create(category).Error)
	mustCreateProduct(t, db, category.ID, "Peanuts", true)
	mustCreateProduct(t, db, category.ID, "Hidden", false)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.EqualValues(t, 1, categories[0].ProductCount)
	require.NotNil(t, categories[0].ImageURL)
	require.Equal(t, "https://cdn.example.com/media/categories/snacks.png", *categories[0].ImageURL)
}
