package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/sse"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// SSEHandler streams order events to the signed-in partner.
type SSEHandler struct {
	hub       *sse.Hub
	keepAlive time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub, keepAlive: 30 * time.Second}
}

// Stream handles GET /v1/orders/stream?token=<jwt>. Each order event is sent
// under its type name (order.created, order.status_changed).
func (h *SSEHandler) Stream(c *gin.Context) {
	pid := partnerID(c)

	client, err := h.hub.Register(uuid.NewString(), pid)
	if errors.Is(err, sse.ErrTooManyStreams) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_STREAMS", "Close another portal tab and retry")
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	defer h.hub.Unregister(client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("connected", gin.H{"clientId": client.ID})
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case msg, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent(string(msg.Event), string(msg.Data))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			log.Debug().Str("client_id", client.ID).Msg("Order stream client went away")
			return false
		}
	})
}
