package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/handler"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/middleware"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/realtime"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler     *handler.TripHandler
	IdentityHandler *handler.IdentityHandler
	Gateway         *realtime.Gateway
	Authenticator   middleware.Authenticator
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Realtime gateway; it authenticates the handshake itself.
	router.GET("/ws", func(c *gin.Context) {
		deps.Gateway.Handle(c.Writer, c.Request)
	})

	// API v1 routes, all bearer-authenticated.
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.Authenticator))
	{
		v1.GET("/me", deps.IdentityHandler.Me)

		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("/active", deps.TripHandler.ListActive)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.GET("/:id/location", deps.TripHandler.GetLiveLocation)
		}
	}

	return router
}
