package handlers

import (
	"net/http"

	"pipeline_rescue/internal/broadcast"
	"pipeline_rescue/internal/logger"

	"github.com/gin-gonic/gin"
)

// Reset starts a fresh round: timer back to not-started, secrets cleared.
// Live clients get a tick frame immediately so their countdowns snap back.
func (h *Handler) Reset(c *gin.Context) {
	h.State.Reset()
	logger.Info("game reset")

	// Peek, not Snapshot: broadcasting must not restart the clock
	h.Hub.Publish(broadcast.NewEvent(broadcast.EventTick, h.State.Peek(), h.Clock.Now()))

	c.JSON(http.StatusOK, gin.H{"message": "game reset"})
}
