package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shillien-project/portal/api/sse"
	"github.com/shillien-project/portal/cache"
	"github.com/shillien-project/portal/game/market"
	"github.com/shillien-project/portal/model"
	"github.com/shillien-project/portal/scheduler"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db     *gorm.DB
	market *market.Service
	pubsub cache.PubSub
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	db *gorm.DB,
	m *market.Service,
	ps cache.PubSub,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{db: db, market: m, pubsub: ps, sched: sched, logger: logger}
}

// Metrics returns site health metrics.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	var accounts, characters int64
	h.db.Model(&model.Account{}).Count(&accounts)
	h.db.Model(&model.Character{}).Count(&characters)

	marketMetrics, err := h.market.Metrics(c.Request.Context())
	if err != nil {
		h.logger.Warn("admin metrics", zap.Error(err))
		marketMetrics = map[string]string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts":        accounts,
		"characters":      characters,
		"market":          marketMetrics,
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

type announceRequest struct {
	Message string `json:"message" binding:"required,min=1,max=512"`
}

// Announce pushes a site-wide announcement to all SSE subscribers.
// POST /api/admin/announce
func (h *AdminHandler) Announce(c *gin.Context) {
	var req announceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, _ := json.Marshal(gin.H{
		"message": req.Message,
		"at":      time.Now().Format(time.RFC3339),
	})
	if err := h.pubsub.Publish(c.Request.Context(), sse.AnnounceChannel, string(payload)); err != nil {
		h.logger.Error("announce publish failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "publish failed"})
		return
	}
	h.logger.Info("admin announcement", zap.String("message", req.Message))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// BanAccount bans or unbans an account.
// POST /api/admin/accounts/:id/ban
func (h *AdminHandler) BanAccount(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Ban bool `json:"ban"`
	}
	_ = c.ShouldBindJSON(&req)

	status := model.AccountActive
	if req.Ban {
		status = model.AccountBanned
	}
	result := h.db.Model(&model.Account{}).Where("id = ?", accountID).Update("status", status)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	h.logger.Info("admin ban update",
		zap.Int64("account_id", accountID), zap.Bool("banned", req.Ban))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// An empty adminKey disables all admin endpoints (503) so the site
// cannot be accidentally deployed without protection.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		if c.GetHeader("X-Admin-Key") != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
