// Package http exposes the marketplace services over a JSON HTTP API.
package http

import (
	"crypto/rsa"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/atinyakov/GophMarket/internal/middleware"
	"github.com/atinyakov/GophMarket/internal/telemetry"
)

// RouterConfig carries the handlers and cross-cutting dependencies of the router.
type RouterConfig struct {
	Authz    *AuthzHandler
	Admins   *AdminHandler
	Vendors  *VendorHandler
	Products *ProductHandler
	Health   *HealthHandler

	Logger  *zap.Logger
	Metrics *telemetry.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// JWTKey enables bearer token identities when set.
	JWTKey *rsa.PublicKey
	// CORSOrigins enables CORS for the listed browser origins.
	CORSOrigins []string
}

// NewRouter constructs the HTTP handler serving the marketplace API.
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer, Metrics
//  2. CORS for configured origins
//  3. WithRequestLogging(logger)
//  4. BearerAuth (if a JWT key is configured), then CertAuth
//  5. AllowContentType("application/json") on /api
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics(cfg.Metrics))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.WithRequestLogging(cfg.Logger))
	if cfg.JWTKey != nil {
		r.Use(middleware.BearerAuth(cfg.JWTKey, cfg.Metrics))
	}
	r.Use(middleware.CertAuth(cfg.Metrics))

	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.ServeHTTP)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Get("/whoami", cfg.Authz.WhoAmI)
		r.Get("/authz", cfg.Authz.Authz)
		r.Get("/owner", cfg.Authz.GetAppOwner)
		r.Post("/owner/claim", cfg.Authz.ClaimAppOwner)

		r.Route("/admins", func(r chi.Router) {
			r.Post("/bootstrap", cfg.Authz.ClaimFirstAdmin)
			r.Get("/", cfg.Admins.List)
			r.Post("/", cfg.Admins.Add)
			r.Delete("/{principal}", cfg.Admins.Remove)
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", cfg.Vendors.List)
			r.Get("/verified", cfg.Vendors.ListVerified)
			r.Get("/by-owner/{principal}", cfg.Vendors.GetByOwner)
			r.Get("/{id}", cfg.Vendors.Get)
			r.Get("/{id}/products", cfg.Vendors.Products)
			r.Post("/{id}/verify", cfg.Vendors.Verify)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Products.ListPublished)
			r.Post("/", cfg.Products.Create)
			r.Get("/verified", cfg.Products.ListVerified)
			r.Get("/{id}", cfg.Products.Get)
			r.Put("/{id}", cfg.Products.Update)
		})

		r.Get("/me/vendor", cfg.Vendors.GetMine)
		r.Put("/me/vendor", cfg.Vendors.UpsertMine)
		r.Get("/me/products", cfg.Products.ListMine)
	})

	return r
}
