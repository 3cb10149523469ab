// Package main initializes and starts the GophMarket HTTPS server,
// setting up configuration, logging, storage, services, handlers, and TLS.
package main

import (
	"cmp"
	"context"
	"crypto/rsa"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/GophMarket/internal/config"
	"github.com/atinyakov/GophMarket/internal/db"
	"github.com/atinyakov/GophMarket/internal/logger"
	"github.com/atinyakov/GophMarket/internal/middleware"
	"github.com/atinyakov/GophMarket/internal/repository"
	"github.com/atinyakov/GophMarket/internal/repository/memory"
	"github.com/atinyakov/GophMarket/internal/server"
	"github.com/atinyakov/GophMarket/internal/server/handler/http"
	"github.com/atinyakov/GophMarket/internal/service"
	"github.com/atinyakov/GophMarket/internal/telemetry"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const healthInterval = 15 * time.Second

// stores groups the repositories backing the services.
type stores struct {
	authz    service.AuthzRepository
	vendors  service.VendorRepository
	products service.ProductRepository
	healthy  func() bool
}

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	shutdownTelemetry, err := telemetry.Setup(ctx)
	if err != nil {
		zapLogger.Fatal("telemetry setup failed", zap.Error(err))
	}
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		zapLogger.Fatal("metrics initialization failed", zap.Error(err))
	}

	st, closeStore, err := openStores(ctx, options.DatabaseDSN, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.Error(err))
	}
	defer closeStore()

	// Initialize business-logic services.
	resolver := service.NewResolver(st.authz)
	products := service.NewProductService(st.products, st.vendors, nil)

	var jwtKey *rsa.PublicKey
	if options.JWTPublicKey != "" {
		jwtKey, err = middleware.LoadRSAPublicKey(options.JWTPublicKey)
		if err != nil {
			zapLogger.Fatal("failed to load jwt public key", zap.Error(err))
		}
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterConfig{
		Authz: &http.AuthzHandler{
			Resolver:  resolver,
			Bootstrap: service.NewBootstrapService(st.authz),
			Log:       zapLogger,
			Metrics:   metrics,
		},
		Admins: &http.AdminHandler{
			Admins:  service.NewAdminService(st.authz, resolver),
			Log:     zapLogger,
			Metrics: metrics,
		},
		Vendors: &http.VendorHandler{
			Vendors:    service.NewVendorService(st.vendors, resolver),
			Storefront: products,
			Log:        zapLogger,
			Metrics:    metrics,
		},
		Products: &http.ProductHandler{
			Products: products,
			Log:      zapLogger,
			Metrics:  metrics,
		},
		Health:         &http.HealthHandler{Check: st.healthy},
		Logger:         zapLogger,
		Metrics:        metrics,
		MetricsHandler: telemetry.MetricsHandler(),
		JWTKey:         jwtKey,
		CORSOrigins:    options.CORSOrigins,
	})

	tlsConfig, err := server.LoadTLSConfig(options.TLSCert, options.TLSKey, options.TLSCA)
	if err != nil {
		zapLogger.Fatal("failed to configure TLS", zap.Error(err))
	}

	srv := server.New(options.Port, router, tlsConfig, zapLogger)
	if err := srv.Run(ctx); err != nil {
		zapLogger.Error("server error", zap.Error(err))
	}

	if err := shutdownTelemetry(context.Background()); err != nil {
		zapLogger.Error("telemetry shutdown error", zap.Error(err))
	}
}

// openStores selects PostgreSQL when dsn is set and the in-memory store otherwise.
func openStores(ctx context.Context, dsn string, log *zap.Logger) (*stores, func(), error) {
	if dsn == "" {
		log.Warn("no database configured, using in-memory store")
		st := memory.NewStore()
		return &stores{authz: st, vendors: st, products: st}, func() {}, nil
	}

	postgresDB, err := db.InitPostgres(dsn)
	if err != nil {
		return nil, nil, err
	}
	monitor := db.StartMonitor(ctx, postgresDB, healthInterval, log)
	return &stores{
		authz:    repository.NewPostgresAuthzRepository(postgresDB),
		vendors:  repository.NewPostgresVendorRepository(postgresDB),
		products: repository.NewPostgresProductRepository(postgresDB),
		healthy:  monitor.Healthy,
	}, closer(postgresDB, log), nil
}

func closer(conn *sql.DB, log *zap.Logger) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Error("close database", zap.Error(err))
		}
	}
}
