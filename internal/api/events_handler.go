package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutrify/diet-tracker/internal/domain"
)

// DefaultHeartbeat keeps idle event streams open through proxies.
const DefaultHeartbeat = 25 * time.Second

// EventSubscriber is the in-process event hub.
type EventSubscriber interface {
	Subscribe(userID string) (<-chan domain.Event, func())
}

// EventsHandler streams the caller's change notifications as server-sent events.
type EventsHandler struct {
	hub       EventSubscriber
	heartbeat time.Duration
}

func NewEventsHandler(hub EventSubscriber, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &EventsHandler{hub: hub, heartbeat: heartbeat}
}

// Stream godoc
// @Summary Subscribe to profile, plan and food log changes
// @Description Each SSE event is named after the change type and carries the event as JSON.
// @Tags Events
// @Security BearerAuth
// @Produce text/event-stream
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	events, cancel := h.hub.Subscribe(userID.Hex())
	defer cancel()

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("connected", gin.H{"userId": userID.Hex()})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.Unix())
			return true
		}
	})
}
