package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"hostel-allocation-backend/internal/engine"
	"hostel-allocation-backend/internal/event"
	"hostel-allocation-backend/internal/mw"
	"hostel-allocation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	engine    *engine.Engine
	bus       event.Bus
	webpush   *webpush.Options
	respCache *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, eng *engine.Engine, bus event.Bus, webpushOptions *webpush.Options, respCache *cache.Cache) *Handler {
	return &Handler{
		store:     s,
		engine:    eng,
		bus:       bus,
		webpush:   webpushOptions,
		respCache: respCache,
	}
}

// bustListings drops cached GET responses made stale by a mutation.
func (h *Handler) bustListings() {
	if h.respCache != nil {
		mw.Bust(h.respCache, "/api/rooms", "/api/occupants", "/api/leases")
	}
}

// publish forwards an event to the bus when one is wired.
func (h *Handler) publish(ev event.Event) {
	if h.bus == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.bus.Publish(ev)
}

// abortEngineError maps the engine's error taxonomy onto HTTP status codes.
func abortEngineError(c *gin.Context, err error) {
	var status int
	switch {
	case engine.IsNotFound(err):
		status = http.StatusNotFound
	case engine.IsConflict(err):
		status = http.StatusConflict
	case engine.IsRetryable(err):
		c.Header("Retry-After", "1")
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
