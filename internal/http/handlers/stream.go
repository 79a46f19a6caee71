package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pipeline_rescue/internal/broadcast"
	"pipeline_rescue/internal/logger"

	"github.com/gin-gonic/gin"
)

const streamTickInterval = time.Second

// Stream is the EventSource fallback for clients that cannot hold a
// WebSocket: same frames as /timer/ws, framed as SSE data lines. The
// connection closes after the first terminal frame, when the client goes
// away, or when the hub shuts down.
func (h *Handler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // disable buffering in nginx/proxies

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}
	flusher.Flush()

	sub := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(sub)

	ticker := h.Clock.NewTicker(streamTickInterval)
	defer ticker.Stop()

	send := func(ev broadcast.Event) (last bool) {
		payload, err := json.Marshal(ev)
		if err != nil {
			logger.Error("stream: marshal frame", "err", err)
			return true
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return true
		}
		flusher.Flush()
		return ev.Terminal()
	}

	// initial frame so the client renders without waiting a tick
	if send(broadcast.NewEvent(broadcast.EventTick, h.State.Snapshot(), h.Clock.Now())) {
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if send(ev) {
				return
			}
		case <-ticker.Chan():
			if send(broadcast.NewEvent(broadcast.EventTick, h.State.Snapshot(), h.Clock.Now())) {
				return
			}
		}
	}
}
