package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hongminglow/industico-be/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Register wires the handler into the router.
func (h *HealthHandler) Register(r gin.IRouter) {
	r.GET("/", h.root)
	r.GET("/health", h.health)
}

func (h *HealthHandler) root(c *gin.Context) {
	c.String(http.StatusOK, "Running Industico Server")
}

func (h *HealthHandler) health(c *gin.Context) {
	respond.JSON(c, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
