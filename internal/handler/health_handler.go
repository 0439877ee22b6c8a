package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/skillsprint/video-library-go/internal/events"
	"github.com/skillsprint/video-library-go/pkg/logger"
)

// HealthHandler reports service liveness and dependency health.
type HealthHandler struct {
	pool      *pgxpool.Pool
	publisher *events.Publisher
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, publisher *events.Publisher) *HealthHandler {
	return &HealthHandler{pool: pool, publisher: publisher}
}

// Health pings the database and reports broker connectivity. The broker is
// informational only: events are best-effort, so a down broker does not
// fail the check.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{
		"status":   "healthy",
		"database": "connected",
	}

	if err := h.pool.Ping(ctx); err != nil {
		logger.Log.Error("health check failed", zap.Error(err))
		status["status"] = "unhealthy"
		status["database"] = "disconnected"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	if h.publisher != nil {
		if h.publisher.IsHealthy() {
			status["broker"] = "connected"
		} else {
			status["broker"] = "disconnected"
		}
	}

	c.JSON(http.StatusOK, status)
}
