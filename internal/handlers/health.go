package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fantasyprojections/engine/internal/database"
)

// HealthHandler reports liveness/readiness of the database and cache.
type HealthHandler struct {
	db    *database.PostgresDB
	redis *redis.Client
}

func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	services := gin.H{}
	healthy := true

	if err := h.db.Health(ctx); err != nil {
		services["postgres"] = gin.H{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		services["postgres"] = gin.H{"status": "healthy"}
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		services["redis"] = gin.H{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		services["redis"] = gin.H{"status": "healthy"}
	}

	response := gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	}
	if !healthy {
		response["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response["status"] = "healthy"
	c.JSON(http.StatusOK, response)
}
