package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shillien-project/portal/game/item"
	mw "github.com/shillien-project/portal/middleware"
)

// InventoryHandler handles inventory REST endpoints.
type InventoryHandler struct {
	db    *gorm.DB
	items *item.Service
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(db *gorm.DB, items *item.Service) *InventoryHandler {
	return &InventoryHandler{db: db, items: items}
}

// List handles GET /api/characters/:id/inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	charID, ok := h.ownedCharID(c)
	if !ok {
		return
	}
	stacks, err := h.items.Inventory(c.Request.Context(), charID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inventory": stacks,
		"adena":     item.CurrencyBalance(stacks),
	})
}

type splitRequest struct {
	StackID  string `json:"stack_id" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
}

// Split handles POST /api/characters/:id/inventory/split.
func (h *InventoryHandler) Split(c *gin.Context) {
	charID, ok := h.ownedCharID(c)
	if !ok {
		return
	}
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stacks, err := h.items.Split(c.Request.Context(), charID, req.StackID, req.Quantity)
	if err != nil {
		status, msg := ledgerStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": stacks})
}

// Combine handles POST /api/characters/:id/inventory/combine.
func (h *InventoryHandler) Combine(c *gin.Context) {
	charID, ok := h.ownedCharID(c)
	if !ok {
		return
	}
	stacks, err := h.items.Combine(c.Request.Context(), charID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": stacks})
}

// ownedCharID parses :id and verifies ownership, writing the error
// response itself when the check fails.
func (h *InventoryHandler) ownedCharID(c *gin.Context) (int64, bool) {
	accountID := mw.GetAccountID(c)
	charID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	if _, err := ownedCharacter(h.db, accountID, charID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return 0, false
	}
	return charID, true
}

// ledgerStatus maps the ledger's error taxonomy onto HTTP statuses.
func ledgerStatus(err error) (int, string) {
	switch {
	case errors.Is(err, item.ErrInsufficientFunds):
		return http.StatusBadRequest, "insufficient funds"
	case errors.Is(err, item.ErrNotSellable):
		return http.StatusBadRequest, "item cannot be sold"
	case errors.Is(err, item.ErrInvalidSplit):
		return http.StatusBadRequest, "invalid split"
	case errors.Is(err, item.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid quantity"
	case errors.Is(err, item.ErrNotFound):
		return http.StatusNotFound, "stack not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
