package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cashya/shoppy-backend/api/controllers"
	"github.com/cashya/shoppy-backend/api/middleware"
	"github.com/cashya/shoppy-backend/internal/address"
	"github.com/cashya/shoppy-backend/internal/auth"
	"github.com/cashya/shoppy-backend/internal/cart"
	"github.com/cashya/shoppy-backend/internal/catalog"
	"github.com/cashya/shoppy-backend/internal/checkout"
	"github.com/cashya/shoppy-backend/internal/orders"
	"github.com/cashya/shoppy-backend/internal/wishlist"
	"github.com/cashya/shoppy-backend/pkg/config"
	"github.com/cashya/shoppy-backend/pkg/db"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/metrics"
	"github.com/cashya/shoppy-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkout.Service
	Orders   orders.Service
	Address  address.Service
	Wishlist wishlist.Service
}

// NewRouter assembles the full HTTP surface: public catalog and auth
// endpoints, the authenticated storefront API, and the admin API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/send-otp", controllers.AuthSendOTP(svcs.Auth, logg))
			r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		})

		r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))
		r.Get("/products", controllers.ProductList(svcs.Catalog, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(svcs.Catalog, logg))
		r.Get("/category-products", controllers.CategoryProductList(svcs.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svcs.Cart, logg))
				r.Post("/", controllers.CartAddItem(svcs.Cart, logg))
				r.Patch("/", controllers.CartSetPaymentMode(svcs.Cart, logg))
				r.Put("/{variantId}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Patch("/{variantId}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/{variantId}", controllers.CartRemoveItem(svcs.Cart, logg))
			})

			r.Route("/coupon", func(r chi.Router) {
				r.Get("/", controllers.CouponFetch(svcs.Cart, logg))
				r.Post("/", controllers.CouponApply(svcs.Cart, logg))
				r.Delete("/", controllers.CouponClear(svcs.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(svcs.Orders, logg))
				r.Post("/", controllers.OrderPlace(svcs.Checkout, logg))
				r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(svcs.Address, logg))
				r.Post("/", controllers.AddressCreate(svcs.Address, logg))
				r.Get("/{addressId}", controllers.AddressDetail(svcs.Address, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(svcs.Address, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(svcs.Address, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(svcs.Wishlist, logg))
				r.Post("/", controllers.WishlistAdd(svcs.Wishlist, logg))
				r.Delete("/{productId}", controllers.WishlistRemove(svcs.Wishlist, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Post("/orders/{orderId}/statuses", controllers.AdminOrderAppendStatus(svcs.Orders, logg))
		r.Delete("/orders/{orderId}/statuses/{statusId}", controllers.AdminOrderRemoveStatus(svcs.Orders, logg))
		r.Patch("/variants/{variantId}", controllers.AdminVariantUpdate(svcs.Catalog, logg))
	})

	return r
}
