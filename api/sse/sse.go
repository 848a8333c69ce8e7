package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shillien-project/portal/cache"
	"github.com/shillien-project/portal/countdown"
)

// Channels streamed to SSE clients. The countdown tick and admin
// announcements are both site-wide broadcasts, so the stream is public.
const (
	CountdownChannel = "countdown"
	AnnounceChannel  = "announce"
)

// Handler streams countdown ticks and announcements over server-sent
// events to the landing page.
type Handler struct {
	pubsub cache.PubSub
	logger *zap.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(pubsub cache.PubSub, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, logger: logger}
}

// ServeSSE handles GET /sse.
func (h *Handler) ServeSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, CountdownChannel, AnnounceChannel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", msg.Channel, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

// PublishBreakdown is the countdown engine sink: each tick's breakdown
// goes out to every connected client. Publish failures are logged and
// dropped; the next tick supersedes the lost one anyway.
func PublishBreakdown(ps cache.PubSub, logger *zap.Logger) func(countdown.Breakdown) {
	return func(b countdown.Breakdown) {
		payload, _ := json.Marshal(gin.H{
			"breakdown": b,
			"display":   b.Display(),
		})
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := ps.Publish(ctx, CountdownChannel, string(payload)); err != nil {
			logger.Warn("countdown publish failed", zap.Error(err))
		}
	}
}
