package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giftlypk/giftly-backend/api/controllers"
	"github.com/giftlypk/giftly-backend/api/middleware"
	"github.com/giftlypk/giftly-backend/internal/auth"
	"github.com/giftlypk/giftly-backend/internal/cart"
	checkoutsvc "github.com/giftlypk/giftly-backend/internal/checkout"
	"github.com/giftlypk/giftly-backend/internal/catalog"
	"github.com/giftlypk/giftly-backend/internal/orders"
	"github.com/giftlypk/giftly-backend/internal/users"
	"github.com/giftlypk/giftly-backend/pkg/auth/session"
	"github.com/giftlypk/giftly-backend/pkg/config"
	"github.com/giftlypk/giftly-backend/pkg/logger"
	"github.com/giftlypk/giftly-backend/pkg/metrics"
	pkgredis "github.com/giftlypk/giftly-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type pinger interface {
	Ping(context.Context) error
}

// Deps carries everything the HTTP surface needs wired in.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          pinger
	Redis       *pkgredis.Client
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Sessions    sessionManager
	Auth        auth.Service
	Catalog     catalog.Service
	Cart        cart.Service
	Checkout    checkoutsvc.Service
	Orders      orders.Service
	Favorites   users.FavoritesService
	Users       users.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(d.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.GuestSession(logg))
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).
			With(middleware.Idempotency(d.Redis, logg)).
			Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
			Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
			Post("/google", controllers.AuthGoogle(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Sessions, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(d.Sessions, cfg.JWT, logg))
	})

	// Browse surface: open to everyone, signed-in callers get personalized
	// recent searches.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, d.Sessions, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.GuestSession(logg))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.Categories(d.Catalog, logg))
				r.Get("/{categoryID}/products", controllers.CategoryProducts(d.Catalog, logg))
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.Products(d.Catalog, logg))
				r.Get("/recent-searches", controllers.RecentSearches(d.Catalog, logg))
				r.Post("/batch", controllers.ProductsBatch(d.Catalog, logg))
				r.Get("/{productID}", controllers.Product(d.Catalog, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartList(d.Cart, logg))
				r.Post("/", controllers.CartAdd(d.Cart, logg))
				r.Post("/toggle", controllers.CartToggle(d.Cart, logg))
				r.Delete("/", controllers.CartClear(d.Cart, logg))
				r.Delete("/{productID}", controllers.CartRemove(d.Cart, logg))
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", controllers.FavoritesList(d.Favorites, logg))
				r.Post("/toggle", controllers.FavoritesToggle(d.Favorites, logg))
				r.Delete("/{productID}", controllers.FavoritesRemove(d.Favorites, logg))
			})

			r.Get("/checkout/draft", controllers.CheckoutDraftGet(d.Checkout, logg))
			r.Put("/checkout/draft", controllers.CheckoutDraftPut(d.Checkout, logg))
			r.Post("/checkout/quote", controllers.CheckoutQuote(d.Checkout, logg))
			r.With(middleware.Idempotency(d.Redis, logg)).
				Post("/checkout", controllers.CheckoutSubmit(d.Orders, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(d.Orders, logg))
				r.Get("/{orderID}", controllers.OrderByID(d.Orders, logg))
			})
		})

		r.Route("/account", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Get("/", controllers.AccountGet(d.Users, logg))
			r.Patch("/", controllers.AccountPatch(d.Users, logg))
			r.With(middleware.Idempotency(d.Redis, logg)).
				Post("/photo-upload", controllers.AccountPhotoUpload(d.Users, logg))
		})
	})

	return r
}
