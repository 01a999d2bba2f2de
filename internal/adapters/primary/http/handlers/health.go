package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store, such as a database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports liveness, including the database when one is configured.
func Healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Readyz reports ready once a trained model is cached.
func (h *Handler) Readyz(c *gin.Context) {
	if !h.trainer.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "training"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
