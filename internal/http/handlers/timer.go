package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TimerResponse is the shared timer shape returned by the polling endpoints.
type TimerResponse struct {
	Remaining int  `json:"remaining"`
	Completed bool `json:"completed"`
}

// Timer reports the countdown, starting it on first observation.
func (h *Handler) Timer(c *gin.Context) {
	snap := h.State.Snapshot()
	c.JSON(http.StatusOK, TimerResponse{Remaining: snap.Remaining, Completed: snap.Completed})
}

// TimerStart starts the countdown eagerly. Idempotent.
func (h *Handler) TimerStart(c *gin.Context) {
	h.State.EnsureStarted()
	snap := h.State.Snapshot()
	c.JSON(http.StatusOK, TimerResponse{Remaining: snap.Remaining, Completed: snap.Completed})
}

// TimerSync re-reads the current value without touching state; clients call
// it when they suspect a desync.
func (h *Handler) TimerSync(c *gin.Context) {
	snap := h.State.Peek()
	c.JSON(http.StatusOK, TimerResponse{Remaining: snap.Remaining, Completed: snap.Completed})
}
