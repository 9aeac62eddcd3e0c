// Package app contains the application setup for the storefront service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/middleware"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/server"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	CartService     service.CartService
	WishlistService service.WishlistService
	CatalogService  service.CatalogService
	UserService     service.UserService
	Logger          *slog.Logger

	jwtSecret  string
	cookieName string
}

func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, logger *slog.Logger, cfg *config.Config) *Dependencies {
	catalogStore := store.NewPgCatalogStore(dbPool)

	// Guest carts and wishlists live in memory and validate against the
	// same catalog the persistent stores do.
	userCarts := store.NewPgCartStore(dbPool)
	guestCarts := store.NewMemCartStore(catalogStore, cfg.Session.TTL)
	userWishlists := store.NewPgWishlistStore(dbPool)
	guestWishlists := store.NewMemWishlistStore(catalogStore, cfg.Session.TTL)

	return &Dependencies{
		CartService:     service.NewCartService(userCarts, guestCarts),
		WishlistService: service.NewWishlistService(userWishlists, guestWishlists),
		CatalogService:  service.NewCatalogService(catalogStore, publisher),
		UserService: service.NewUserService(store.NewPgUserStore(dbPool), service.TokenConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
			TTL:    cfg.JWT.TTL,
		}),
		Logger:     logger,
		jwtSecret:  cfg.JWT.Secret,
		cookieName: cfg.Session.CookieName,
	}
}

// SetupHttpHandler initializes the HTTP routes for the storefront application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	cartHandler := rest.NewCartHandler(deps.CartService, deps.Logger)
	wishlistHandler := rest.NewWishlistHandler(deps.WishlistService, deps.Logger)
	catalogHandler := rest.NewCatalogHandler(deps.CatalogService, deps.Logger)
	authHandler := rest.NewAuthHandler(deps.UserService, deps.Logger)

	// Catalog browsing and auth do not need a resolved identity.
	catalogHandler.RegisterRoutes(mux)
	authHandler.RegisterRoutes(mux)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.ResolveIdentity(deps.jwtSecret, deps.cookieName, deps.Logger))
		cartHandler.RegisterRoutes(r)
		wishlistHandler.RegisterRoutes(r)

		r.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireAdmin(deps.Logger))
			catalogHandler.RegisterAdminRoutes(ar)
		})
	})

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// SetupHttpServer creates and configures an HTTP server for the storefront application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
