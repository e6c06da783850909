package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Runner reports whether the live update hub is accepting subscribers.
type Runner interface {
	Running() bool
}

type Handler struct {
	store Pinger
	hub   Runner
}

// NewHandler builds the probe handlers. hub may be nil.
func NewHandler(store Pinger, hub Runner) *Handler {
	return &Handler{store: store, hub: hub}
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *Handler) Readyz(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "store_not_initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "store_ping_failed"})
		return
	}

	if h.hub != nil && !h.hub.Running() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "hub_not_running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
