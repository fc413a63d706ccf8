package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hostel-allocation-backend/config"
	"hostel-allocation-backend/internal/engine"
	"hostel-allocation-backend/internal/event"
	"hostel-allocation-backend/internal/mw"
	"hostel-allocation-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, eng *engine.Engine, bus event.Bus, webpushOptions *webpush.Options, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	limit := rate.Limit(10)
	if cfg != nil && cfg.RateLimitPerSec > 0 {
		limit = rate.Limit(cfg.RateLimitPerSec)
	}
	ipHeader := ""
	if cfg != nil {
		ipHeader = cfg.RequestIPHeader
	}
	rateLimiter := mw.RateLimiter(limit, 5, ipHeader)

	cacheTTL := 30 * time.Second
	if cfg != nil && cfg.CacheTTLSeconds > 0 {
		cacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	handler := NewHandler(s, eng, bus, webpushOptions, cacheStore)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rooms", caching, handler.ListRooms)
		api.GET("/rooms/stats/summary", caching, handler.GetOccupancySummary)
		api.GET("/rooms/:id", handler.GetRoom)
		api.POST("/rooms", handler.CreateRoom)
		api.PUT("/rooms/:id", handler.UpdateRoom)
		api.DELETE("/rooms/:id", handler.DeleteRoom)

		api.GET("/occupants", caching, handler.ListOccupants)
		api.GET("/occupants/:id", handler.GetOccupant)
		api.POST("/occupants", handler.CreateOccupant)
		api.PUT("/occupants/:id", handler.UpdateOccupant)
		api.DELETE("/occupants/:id", handler.DeleteOccupant)

		api.GET("/leases", caching, handler.ListLeases)
		api.GET("/leases/:id", handler.GetLease)
		api.POST("/leases", handler.CreateLease)
		api.POST("/leases/:id/complete", handler.CompleteLease)
		api.DELETE("/leases/:id", handler.DeleteLease)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
