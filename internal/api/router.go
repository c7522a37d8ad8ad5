package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"tank-status-backend/config"
	"tank-status-backend/internal/mw"
	"tank-status-backend/internal/store"
	"tank-status-backend/internal/ws"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, hub *ws.Hub, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, hub, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*time.Minute)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/tanks", caching, handler.ListTanks)
		api.GET("/tanks/:id", handler.GetTank)
		api.POST("/tanks", handler.CreateTank)
		api.PATCH("/tanks/:id", handler.UpdateTank)
		api.DELETE("/tanks/:id", handler.DeleteTank)

		api.GET("/tanks/:id/history", handler.GetTankHistory)
		api.GET("/tanks/:id/maintenance", handler.ListTankMaintenance)
		api.POST("/tanks/:id/maintenance", handler.CreateMaintenance)
		api.PATCH("/maintenance/:id/status", handler.UpdateMaintenanceStatus)

		api.GET("/stats", caching, handler.GetStats)
		api.GET("/reports/:type", handler.GetReport)

		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	// Read-only push channel; mutation happens over the HTTP API.
	r.GET("/ws", hub.Serve(s))

	return r
}
