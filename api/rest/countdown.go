package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shillien-project/portal/countdown"
)

// CountdownHandler serves the launch countdown state for clients that
// poll instead of holding an SSE stream open.
type CountdownHandler struct {
	engine *countdown.Engine
}

// NewCountdownHandler creates a new CountdownHandler. A nil engine means
// no launch target is configured.
func NewCountdownHandler(engine *countdown.Engine) *CountdownHandler {
	return &CountdownHandler{engine: engine}
}

// Status handles GET /api/countdown.
func (h *CountdownHandler) Status(c *gin.Context) {
	if h.engine == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	b := h.engine.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"enabled":   true,
		"target":    h.engine.Target().Format(time.RFC3339),
		"breakdown": b,
		"display":   b.Display(),
	})
}
