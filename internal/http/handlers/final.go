package handlers

import (
	"net/http"
	"strings"

	"pipeline_rescue/internal/game"
	"pipeline_rescue/internal/logger"

	"github.com/gin-gonic/gin"
)

type FinalRequest struct {
	SiteCode string `json:"site_code" binding:"required"`
	CodeA    string `json:"code_a" binding:"required"`
}

type FinalResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// Final checks the disarm code and ends the round either way: right code
// wins, wrong code or unknown site loses. Both are normal 200 responses so
// the clients can render a conclusive screen.
func (h *Handler) Final(c *gin.Context) {
	var req FinalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	// the site identifier is normalized; the code itself is compared as sent
	site := strings.ToUpper(strings.TrimSpace(req.SiteCode))

	expected, known := h.State.ExpectedSecret(site)
	if known && req.CodeA == expected {
		h.complete(game.OutcomeWon)
		logger.Info("round won", "site", site)
		c.JSON(http.StatusOK, FinalResponse{
			Result:  "success",
			Message: "Pipeline secured. Pollution averted.",
		})
		return
	}

	h.complete(game.OutcomeLost)
	logger.Info("round lost", "site", site, "known_site", known)
	c.JSON(http.StatusOK, FinalResponse{
		Result:  "fail",
		Message: "Wrong code. Leak detected.",
	})
}
