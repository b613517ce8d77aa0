package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridehail/internal/handler"
	"ridehail/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler         *handler.RideHandler
	DriverHandler       *handler.DriverHandler
	UserHandler         *handler.UserHandler
	NotificationHandler *handler.NotificationHandler
	WSHandler           *handler.WSHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
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

	// Realtime ride updates.
	router.GET("/ws/:userID", deps.WSHandler.Connect)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
			users.GET("/:id", deps.UserHandler.GetUser)
			users.GET("/:id/rides", deps.RideHandler.GetByPassenger)
			users.GET("/:id/notifications", deps.NotificationHandler.GetByUser)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.GetAll)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/arrived", deps.RideHandler.DriverArrived)
			rides.POST("/:id/start", deps.RideHandler.StartRide)
			rides.POST("/:id/complete", deps.RideHandler.CompleteRide)
			rides.POST("/:id/rate", deps.RideHandler.RateRide)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/nearby", deps.DriverHandler.Nearby)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.POST("/:id/activate", deps.DriverHandler.Activate)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/availability", deps.DriverHandler.SetAvailability)
		}

		// Notification routes.
		notifications := v1.Group("/notifications")
		{
			notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
		}
	}

	return router
}
