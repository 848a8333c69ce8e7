package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shillien-project/portal/game/droprate"
)

// DropRateHandler serves the public drop-table database pages.
type DropRateHandler struct {
	drops *droprate.Service
}

// NewDropRateHandler creates a new DropRateHandler.
func NewDropRateHandler(drops *droprate.Service) *DropRateHandler {
	return &DropRateHandler{drops: drops}
}

// List handles GET /api/droprates. An optional ?q= filters by monster
// or item name.
func (h *DropRateHandler) List(c *gin.Context) {
	tables := h.drops.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"droprates": tables, "count": len(tables)})
}

// Monster handles GET /api/droprates/:monster.
func (h *DropRateHandler) Monster(c *gin.Context) {
	table, ok := h.drops.Monster(c.Param("monster"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "monster not found"})
		return
	}
	c.JSON(http.StatusOK, table)
}
