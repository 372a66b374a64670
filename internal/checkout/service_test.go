package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/internal/cart"
	"github.com/cashya/shoppy-backend/internal/coupon"
	"github.com/cashya/shoppy-backend/internal/orders"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	"github.com/cashya/shoppy-backend/pkg/enums"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	db   *gorm.DB
	svc  Service
	user *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Coupon{},
		&models.Address{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatus{},
	))

	logg := logger.New(logger.Options{ServiceName: "checkout-test", Level: logger.ParseLevel("error")})
	svc, err := NewService(
		cart.NewRepository(conn),
		coupon.NewRepository(conn),
		orders.NewRepository(conn),
		gormTxRunner{db: conn},
		logg,
	)
	require.NoError(t, err)

	user := &models.User{PhoneNumber: "+919876543210"}
	require.NoError(t, conn.Create(user).Error)

	return &fixture{db: conn, svc: svc, user: user}
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func (f *fixture) createVariant(t *testing.T, productName, variantName, price, mrp string) *models.ProductVariant {
	t.Helper()
	category := &models.Category{Name: "Snacks"}
	require.NoError(t, f.db.Create(category).Error)
	product := &models.Product{Name: productName, Description: "test", CategoryID: category.ID, Available: true}
	require.NoError(t, f.db.Create(product).Error)
	variant := &models.ProductVariant{
		ProductID: product.ID,
		Name:      variantName,
		Price:     mustDecimal(t, price),
		MRP:       mustDecimal(t, mrp),
		Stock:     100,
		Available: true,
	}
	require.NoError(t, f.db.Create(variant).Error)
	return variant
}

func (f *fixture) createAddress(t *testing.T) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:      f.user.ID,
		Name:        "Asha",
		Address:     "12 MG Road",
		City:        "Bengaluru",
		State:       "Karnataka",
		Pincode:     "560001",
		PhoneNumber: "+919876543210",
		Selected:    true,
	}
	require.NoError(t, f.db.Create(address).Error)
	return address
}

func (f *fixture) createCart(t *testing.T, address *models.Address, couponID *uuid.UUID) *models.Cart {
	t.Helper()
	c := &models.Cart{UserID: f.user.ID, PaymentMode: enums.PaymentModeCOD, CouponID: couponID}
	if address != nil {
		c.AddressID = &address.ID
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) addItem(t *testing.T, cartID, variantID uuid.UUID, quantity int) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.CartItem{
		CartID:    cartID,
		VariantID: variantID,
		Quantity:  quantity,
	}).Error)
}

func TestPlaceOrder_EmptyCartRejected(t *testing.T) {
	f := newFixture(t)
	f.createCart(t, f.createAddress(t), nil)

	_, err := f.svc.PlaceOrder(context.Background(), f.user.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.Contains(t, err.Error(), "cart is empty")
}

func TestPlaceOrder_MissingAddressRejected(t *testing.T) {
	f := newFixture(t)
	c := f.createCart(t, nil, nil)
	variant := f.createVariant(t, "Peanut Chikki", "250g", "120", "150")
	f.addItem(t, c.ID, variant.ID, 2)

	_, err := f.svc.PlaceOrder(context.Background(), f.user.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.Contains(t, err.Error(), "address is required for placing order")
}

func TestPlaceOrder_SnapshotsCartIntoOrder(t *testing.T) {
	f := newFixture(t)
	address := f.createAddress(t)
	c := f.createCart(t, address, nil)
	variant := f.createVariant(t, "Peanut Chikki", "250g", "120", "150")
	f.addItem(t, c.ID, variant.ID, 2)

	dto, err := f.svc.PlaceOrder(context.Background(), f.user.ID)
	require.NoError(t, err)

	require.Equal(t, "Pending", dto.Status)
	require.Equal(t, "240", dto.Total.String())
	require.Equal(t, address.Name, dto.Address.Name)
	require.Equal(t, address.Pincode, dto.Address.Pincode)

	require.Len(t, dto.Items, 1)
	item := dto.Items[0]
	require.Equal(t, "Peanut Chikki", item.ProductName)
	require.Equal(t, "250g", item.VariantName)
	require.Equal(t, 2, item.Quantity)
	require.Equal(t, "120", item.Price.String())
	require.Equal(t, "240", item.Total.String())

	require.Len(t, dto.Statuses, 1)
	require.Equal(t, "Pending", dto.Statuses[0].Status)
}

func TestPlaceOrder_ClearsItemsButKeepsCart(t *testing.T) {
	f := newFixture(t)
	address := f.createAddress(t)
	code := "SAVE10"
	cpn := &models.Coupon{
		Code:       code,
		CouponType: enums.CouponTypePercentage,
		Discount:   mustDecimal(t, "10"),
		Active:     true,
	}
	require.NoError(t, f.db.Create(cpn).Error)
	c := f.createCart(t, address, &cpn.ID)
	variant := f.createVariant(t, "Peanut Chikki", "250g", "120", "150")
	f.addItem(t, c.ID, variant.ID, 2)

	_, err := f.svc.PlaceOrder(context.Background(), f.user.ID)
	require.NoError(t, err)

	var reloaded models.Cart
	require.NoError(t, f.db.First(&reloaded, "id = ?", c.ID).Error)
	require.NotNil(t, reloaded.CouponID)
	require.NotNil(t, reloaded.AddressID)

	var itemCount int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("cart_id = ?", c.ID).Count(&itemCount).Error)
	require.Zero(t, itemCount)
}

func TestPlaceOrder_DecrementsLimitedCoupon(t *testing.T) {
	f := newFixture(t)
	address := f.createAddress(t)
	quantity := 1
	cpn := &models.Coupon{
		Code:       "ONCE",
		CouponType: enums.CouponTypeFixed,
		Discount:   mustDecimal(t, "50"),
		Active:     true,
		Quantity:   &quantity,
	}
	require.NoError(t, f.db.Create(cpn).Error)
	c := f.createCart(t, address, &cpn.ID)
	variant := f.createVariant(t, "Peanut Chikki", "250g", "120", "150")
	f.addItem(t, c.ID, variant.ID, 2)

	_, err := f.svc.PlaceOrder(context.Background(), f.user.ID)
	require.NoError(t, err)

	var reloaded models.Coupon
	require.NoError(t, f.db.First(&reloaded, "id = ?", cpn.ID).Error)
	require.NotNil(t, reloaded.Quantity)
	require.Zero(t, *reloaded.Quantity)
}

func TestPlaceOrder_ExhaustedCouponRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	address := f.createAddress(t)
	quantity := 0
	cpn := &models.Coupon{
		Code:       "GONE",
		CouponType: enums.CouponTypeFixed,
		Discount:   mustDecimal(t, "50"),
		Active:     true,
		Quantity:   &quantity,
	}
	require.NoError(t, f.db.Create(cpn).Error)
	c := f.createCart(t, address, &cpn.ID)
	variant := f.createVariant(t, "Peanut Chikki", "250g", "120", "150")
	f.addItem(t, c.ID, variant.ID, 2)

	_, err := f.svc.PlaceOrder(context.Background(), f.user.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	require.Zero(t, orderCount)

	var itemCount int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("cart_id = ?", c.ID).Count(&itemCount).Error)
	require.EqualValues(t, 1, itemCount)
}

func TestPlaceOrder_PrunesUnavailableVariants(t *testing.T) {
	f := newFixture(t)
	address := f.createAddress(t)
	c := f.createCart(t, address, nil)
	kept := f.createVariant(t, "Peanut Chikki", "250g", "120", "150")
	dropped := f.createVariant(t, "Sesame Bar", "100g", "60", "80")
	f.addItem(t, c.ID, kept.ID, 1)
	f.addItem(t, c.ID, dropped.ID, 1)
	require.NoError(t, f.db.Model(&models.ProductVariant{}).
		Where("id = ?", dropped.ID).
		Update("available", false).Error)

	dto, err := f.svc.PlaceOrder(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	require.Equal(t, kept.ID, dto.Items[0].VariantID)
	require.Equal(t, "120", dto.Total.String())
}

func TestPlaceOrder_OnlyUnavailableItemsMeansEmptyCart(t *testing.T) {
	f := newFixture(t)
	address := f.createAddress(t)
	c := f.createCart(t, address, nil)
	variant := f.createVariant(t, "Peanut Chikki", "250g", "120", "150")
	f.addItem(t, c.ID, variant.ID, 1)
	require.NoError(t, f.db.Model(&models.ProductVariant{}).
		Where("id = ?", variant.ID).
		Update("available", false).Error)

	_, err := f.svc.PlaceOrder(context.Background(), f.user.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
