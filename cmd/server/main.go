package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/app"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/auth"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/config"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/handler"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/realtime"
	internalRedis "github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/redis"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/repository/postgres"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, err := wireServer(db, redisClient, nrApp, cfg)
	if err != nil {
		log.Fatalf("failed to wire server: %v", err)
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, error) {
	// Initialize Redis stores.
	cacheStore := internalRedis.NewCacheStore(redisClient)
	locationStore := internalRedis.NewLocationStore(redisClient)

	// Initialize repositories.
	identityRepo := postgres.NewIdentityRepository(db)
	tripRepo := postgres.NewTripRepository(db)

	// Initialize the token verification chain.
	keyCache, err := auth.NewKeyCache(cfg.Auth.JWKSURL, cfg.Auth.KeyCacheSize, cfg.Auth.KeyTTL, cfg.Auth.FetchTimeout)
	if err != nil {
		return nil, err
	}
	verifier := auth.NewVerifier(keyCache, cfg.Auth.ProjectID)
	roles := auth.NewRoleResolver(cfg.Auth.DriverSubjects)

	// Initialize services.
	authenticator := service.NewSessionAuthenticator(verifier, identityRepo, roles)
	tripService := service.NewTripService(tripRepo, cacheStore, locationStore)

	// Initialize the realtime gateway.
	rooms := realtime.NewRoomRegistry()
	gateway := realtime.NewGateway(authenticator, tripService, rooms)

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(tripService)
	identityHandler := handler.NewIdentityHandler()

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:     tripHandler,
		IdentityHandler: identityHandler,
		Gateway:         gateway,
		Authenticator:   authenticator,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server. Read/write deadlines cannot apply globally here:
	// they would kill long-lived websocket connections. Only the handshake
	// read is bounded; request handlers carry their own timeouts.
	return &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}
