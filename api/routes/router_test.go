package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	addresssvc "github.com/cashya/shoppy-backend/internal/address"
	authsvc "github.com/cashya/shoppy-backend/internal/auth"
	cartsvc "github.com/cashya/shoppy-backend/internal/cart"
	catalogsvc "github.com/cashya/shoppy-backend/internal/catalog"
	ordersvc "github.com/cashya/shoppy-backend/internal/orders"
	wishlistsvc "github.com/cashya/shoppy-backend/internal/wishlist"
	pkgauth "github.com/cashya/shoppy-backend/pkg/auth"
	"github.com/cashya/shoppy-backend/pkg/config"
	"github.com/cashya/shoppy-backend/pkg/enums"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/pagination"
)

type stubCatalog struct{}

func (stubCatalog) ListCategories(ctx context.Context) ([]catalogsvc.CategoryDTO, error) {
	return []catalogsvc.CategoryDTO{}, nil
}
func (stubCatalog) ListProducts(ctx context.Context, input catalogsvc.ListProductsInput) (*catalogsvc.ProductListResult, error) {
	return &catalogsvc.ProductListResult{}, nil
}
func (stubCatalog) GetProduct(ctx context.Context, productID uuid.UUID) (*catalogsvc.ProductDTO, error) {
	return &catalogsvc.ProductDTO{ID: productID}, nil
}
func (stubCatalog) UpdateVariant(ctx context.Context, variantID uuid.UUID, input catalogsvc.UpdateVariantInput) (*catalogsvc.VariantDTO, error) {
	return &catalogsvc.VariantDTO{ID: variantID}, nil
}

type stubCart struct{}

func (stubCart) GetCart(ctx context.Context, userID uuid.UUID) (*cartsvc.DTO, error) {
	return &cartsvc.DTO{ID: uuid.New()}, nil
}
func (stubCart) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.DTO, error) {
	return &cartsvc.DTO{}, nil
}
func (stubCart) UpdateItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*cartsvc.DTO, error) {
	return &cartsvc.DTO{}, nil
}
func (stubCart) RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*cartsvc.DTO, error) {
	return &cartsvc.DTO{}, nil
}
func (stubCart) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*cartsvc.DTO, error) {
	return &cartsvc.DTO{}, nil
}
func (stubCart) GetCoupon(ctx context.Context, userID uuid.UUID) (*cartsvc.CouponDTO, error) {
	return &cartsvc.CouponDTO{}, nil
}
func (stubCart) ClearCoupon(ctx context.Context, userID uuid.UUID) (*cartsvc.DTO, error) {
	return &cartsvc.DTO{}, nil
}
func (stubCart) SetPaymentMode(ctx context.Context, userID uuid.UUID, mode enums.PaymentMode) (*cartsvc.DTO, error) {
	return &cartsvc.DTO{}, nil
}

type stubOrders struct{}

func (stubOrders) ListOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) (*ordersvc.ListDTO, error) {
	return &ordersvc.ListDTO{}, nil
}
func (stubOrders) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*ordersvc.DTO, error) {
	return &ordersvc.DTO{ID: orderID}, nil
}
func (stubOrders) AppendStatus(ctx context.Context, orderID uuid.UUID, ordinal enums.OrderStatusOrdinal) (*ordersvc.DTO, error) {
	return &ordersvc.DTO{ID: orderID, Status: ordinal.String()}, nil
}
func (stubOrders) RemoveStatus(ctx context.Context, orderID, statusID uuid.UUID) (*ordersvc.DTO, error) {
	return &ordersvc.DTO{ID: orderID}, nil
}

type stubCheckout struct{}

func (stubCheckout) PlaceOrder(ctx context.Context, userID uuid.UUID) (*ordersvc.DTO, error) {
	return &ordersvc.DTO{ID: uuid.New(), Status: "Pending"}, nil
}

type stubAddress struct{}

func (stubAddress) ListAddresses(ctx context.Context, userID uuid.UUID) ([]addresssvc.DTO, error) {
	return []addresssvc.DTO{}, nil
}
func (stubAddress) GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*addresssvc.DTO, error) {
	return &addresssvc.DTO{}, nil
}
func (stubAddress) CreateAddress(ctx context.Context, userID uuid.UUID, input addresssvc.Input) (*addresssvc.DTO, error) {
	return &addresssvc.DTO{}, nil
}
func (stubAddress) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input addresssvc.Input) (*addresssvc.DTO, error) {
	return &addresssvc.DTO{}, nil
}
func (stubAddress) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return nil
}

type stubWishlist struct{}

func (stubWishlist) ListItems(ctx context.Context, userID uuid.UUID) ([]wishlistsvc.ItemDTO, error) {
	return []wishlistsvc.ItemDTO{}, nil
}
func (stubWishlist) AddItem(ctx context.Context, userID, productID uuid.UUID) (*wishlistsvc.ItemDTO, error) {
	return &wishlistsvc.ItemDTO{}, nil
}
func (stubWishlist) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return nil
}

type stubAuth struct{}

func (stubAuth) SendOTP(ctx context.Context, input authsvc.SendOTPInput) (*authsvc.SendOTPResult, error) {
	return &authsvc.SendOTPResult{PhoneNumber: input.PhoneNumber}, nil
}
func (stubAuth) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.LoginResult, error) {
	return &authsvc.LoginResult{AccessToken: "a", RefreshToken: "r"}, nil
}
func (stubAuth) Refresh(ctx context.Context, refreshToken string) (*authsvc.RefreshResult, error) {
	return &authsvc.RefreshResult{AccessToken: "a"}, nil
}

var routerJWTConfig = config.JWTConfig{
	Secret:                 "router-test-secret",
	Issuer:                 "shoppy-test",
	ExpirationMinutes:      15,
	RefreshTokenTTLMinutes: 60,
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App:  config.AppConfig{Env: "test", Port: "0"},
		JWT:  routerJWTConfig,
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	logg := logger.New(logger.Options{ServiceName: "router-test"})

	return NewRouter(cfg, logg, nil, nil, nil, nil, Services{
		Auth:     stubAuth{},
		Catalog:  stubCatalog{},
		Cart:     stubCart{},
		Checkout: stubCheckout{},
		Orders:   stubOrders{},
		Address:  stubAddress{},
		Wishlist: stubWishlist{},
	})
}

func bearerFor(t *testing.T, admin bool) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(routerJWTConfig, time.Now(), pkgauth.TokenPayload{
		UserID:      uuid.New(),
		PhoneNumber: "+919876543210",
		Admin:       admin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/health/live",
		"/api/v1/categories",
		"/api/v1/products",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", target, resp.Code)
		}
	}
}

func TestRouterProtectsStorefrontRoutes(t *testing.T) {
	router := newTestRouter(t)

	targets := []string{"/api/v1/cart", "/api/v1/orders", "/api/v1/addresses", "/api/v1/wishlist", "/api/v1/coupon"}
	for _, target := range targets {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: expected 401 got %d", target, resp.Code)
		}

		req = httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", bearerFor(t, false))
		resp = httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s with token: expected 200 got %d: %s", target, resp.Code, resp.Body.String())
		}
	}
}

func TestRouterAdminRequiresRole(t *testing.T) {
	router := newTestRouter(t)
	target := "/api/admin/v1/orders/" + uuid.NewString() + "/statuses/" + uuid.NewString()

	req := httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set("Authorization", bearerFor(t, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set("Authorization", bearerFor(t, true))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
