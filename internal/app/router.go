package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"hail/internal/auth"
	"hail/internal/domain"
	"hail/internal/handler"
	"hail/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler   *handler.RideHandler
	BidHandler    *handler.BidHandler
	DriverHandler *handler.DriverHandler
	WSHandler     *handler.WSHandler
	Verifier      *auth.Verifier
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := auth.Middleware(deps.Verifier)
	riderOnly := auth.RequireRole(domain.RoleRider)
	driverOnly := auth.RequireRole(domain.RoleDriver)

	// API v1 routes.
	v1 := router.Group("/v1", authed)
	{
		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", riderOnly, deps.RideHandler.Create)
			rides.GET("", driverOnly, deps.RideHandler.ListOpen)
			rides.GET("/mine", deps.RideHandler.ListMine)
			rides.GET("/:id", deps.RideHandler.Get)
			rides.POST("/:id/cancel", deps.RideHandler.Cancel)
			rides.POST("/:id/start", driverOnly, deps.RideHandler.Start)
			rides.POST("/:id/complete", driverOnly, deps.RideHandler.Complete)
			rides.PATCH("/:id/location", driverOnly, deps.RideHandler.UpdateLocation)
			rides.GET("/:id/bill", deps.RideHandler.GetBill)

			rides.POST("/:id/bids", driverOnly, deps.BidHandler.Submit)
			rides.GET("/:id/bids", riderOnly, deps.BidHandler.List)
		}

		// Bid routes.
		bids := v1.Group("/bids", riderOnly)
		{
			bids.POST("/:id/accept", deps.BidHandler.Accept)
			bids.POST("/:id/reject", deps.BidHandler.Reject)
			bids.POST("/:id/counter", deps.BidHandler.Counter)
		}

		// Driver presence routes.
		drivers := v1.Group("/drivers", driverOnly)
		{
			drivers.POST("/online", deps.DriverHandler.GoOnline)
			drivers.POST("/offline", deps.DriverHandler.GoOffline)
		}

		// Websocket attach.
		v1.GET("/ws", deps.WSHandler.Attach)
	}

	return router
}
