package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/dashboard"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/promo"
	"github.com/ariefcatur/go-storefront/internal/telemetry"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/ariefcatur/go-storefront/internal/wallet"
)

type CatalogService interface {
	Browse(ctx context.Context, q catalog.Query) (catalog.Page[catalog.Product], error)
	Product(ctx context.Context, id string) (catalog.Product, error)
	AdminProducts(ctx context.Context, q catalog.Query) (catalog.Page[catalog.Product], error)
	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, u catalog.ProductUpdate) (catalog.Product, error)
	SetProductListed(ctx context.Context, id string, listed bool) error
	UpsertVariant(ctx context.Context, productID string, v catalog.Variant) (catalog.Variant, error)
}

type LabelService interface {
	List(ctx context.Context, onlyListed bool) ([]catalog.Label, error)
	Create(ctx context.Context, name, description string) (catalog.Label, error)
	Update(ctx context.Context, id, name, description string) (catalog.Label, error)
	SetListed(ctx context.Context, id string, listed bool) error
	Delete(ctx context.Context, id string) error
}

type CartService interface {
	View(ctx context.Context, userID string) (cart.View, error)
	Add(ctx context.Context, userID, variantID string, qty int) error
	SetQty(ctx context.Context, userID, variantID string, qty int) error
	Remove(ctx context.Context, userID, variantID string) error
	Wishlist(ctx context.Context, userID string) ([]cart.WishItem, error)
	AddWish(ctx context.Context, userID, productID string) error
	RemoveWish(ctx context.Context, userID, productID string) error
}

type PromoService interface {
	Available(ctx context.Context, userID string) ([]promo.Coupon, error)
	Coupons(ctx context.Context) ([]promo.Coupon, error)
	CreateCoupon(ctx context.Context, c promo.Coupon) (promo.Coupon, error)
	UpdateCoupon(ctx context.Context, id string, c promo.Coupon) (promo.Coupon, error)
	SetCouponActive(ctx context.Context, id string, active bool) error
	DeleteCoupon(ctx context.Context, id string) error
	Offers(ctx context.Context) ([]promo.Offer, error)
	LiveOffers(ctx context.Context) ([]promo.Offer, error)
	CreateOffer(ctx context.Context, o promo.Offer) (promo.Offer, error)
	UpdateOffer(ctx context.Context, id string, o promo.Offer) (promo.Offer, error)
	SetOfferActive(ctx context.Context, id string, active bool) error
	DeleteOffer(ctx context.Context, id string) error
}

type OrderService interface {
	Quote(ctx context.Context, userID, couponCode string) (orders.Quote, error)
	Checkout(ctx context.Context, userID string, in orders.CheckoutInput) (orders.Order, error)
	List(ctx context.Context, userID string, page, limit int) (orders.Page, error)
	Get(ctx context.Context, userID, id string) (orders.Order, error)
	Cancel(ctx context.Context, by orders.Actor, id, reason string) (orders.Order, error)
	RequestReturn(ctx context.Context, userID, id, reason string) (orders.Order, error)
	AdminList(ctx context.Context, status orders.Status, page, limit int) (orders.Page, error)
	AdminGet(ctx context.Context, id string) (orders.Order, error)
	UpdateStatus(ctx context.Context, adminID, id string, to orders.Status, note string) (orders.Order, error)
	DecideReturn(ctx context.Context, adminID, id string, approve bool, note string) (orders.Order, error)
}

type WalletService interface {
	History(ctx context.Context, userID string, page, limit int) (wallet.Page, error)
}

type UserService interface {
	List(ctx context.Context, search string, page, limit int) (users.Page, error)
	SetBlocked(ctx context.Context, id string, blocked bool) error
	Referral(ctx context.Context, userID string) (users.Referral, error)
	RedeemReferral(ctx context.Context, userID, code string) (int64, error)
}

type ReportService interface {
	Report(ctx context.Context, period dashboard.Period, from, to time.Time) (dashboard.Report, error)
}

// Idempotency is satisfied by redisx.Idempotency.
type Idempotency interface {
	Reserve(ctx context.Context, userID, key string) (existing string, reserved bool, err error)
	Remember(ctx context.Context, userID, key, orderID string) error
	Release(ctx context.Context, userID, key string) error
}

// API holds every service the HTTP layer talks to.
type API struct {
	Auth       *auth.Middleware
	Catalog    CatalogService
	Brands     LabelService
	Categories LabelService
	Cart       CartService
	Promo      PromoService
	Orders     OrderService
	Wallet     WalletService
	Users      UserService
	Reports    ReportService
	Idem       Idempotency
}

func NewRouter(api *API) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(telemetry.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		(&storeHandler{api}).Register(r)

		r.Group(func(r chi.Router) {
			r.Use(api.Auth.Authenticate)
			(&cartHandler{api}).Register(r)
			(&ordersHandler{api}).Register(r)
			(&accountHandler{api}).Register(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(api.Auth.AuthenticateAdmin)
			(&adminCatalogHandler{api}).Register(r)
			(&adminPromoHandler{api}).Register(r)
			(&adminOpsHandler{api}).Register(r)
		})
	})
	return r
}
