package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// healthHandler reports liveness of the service and its backing stores.
type healthHandler struct {
	db    *pgxpool.Pool
	cache *redis.Client
}

func newHealthHandler(db *pgxpool.Pool, cache *redis.Client) *healthHandler {
	return &healthHandler{db: db, cache: cache}
}

// health pings both stores. The service is degraded but still serving when
// only the cache is down, so a cache failure does not fail the check.
func (h *healthHandler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "database": "ok", "cache": "ok"}
	code := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		status["status"] = "unavailable"
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	if err := h.cache.Ping(ctx).Err(); err != nil {
		status["cache"] = "degraded: " + err.Error()
	}

	c.JSON(code, status)
}
