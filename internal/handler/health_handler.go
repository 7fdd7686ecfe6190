package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/islandpros/directory_api/internal/utils"
)

var startTime = time.Now()

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger is satisfied by *cache.RedisClient.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db    Pinger
	cache CachePinger
}

// NewHealthHandler creates a new HealthHandler. cache may be nil.
func NewHealthHandler(db Pinger, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// GetHealth reports database and cache connectivity. A cache outage only
// degrades the service; a database outage makes it unhealthy.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		utils.Error(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Database is unreachable")
		return
	}

	status := "healthy"
	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "connected"
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "disconnected"
			status = "degraded"
		}
	}

	utils.Success(c, http.StatusOK, "Service is "+status, gin.H{
		"status":   status,
		"version":  "1.0.0",
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": "connected",
		"cache":    cacheStatus,
	})
}
