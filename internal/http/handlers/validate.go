package handlers

import (
	"net/http"

	"pipeline_rescue/internal/scoring"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// scoreTolerance is how far (in percentage points) a submitted score may
// deviate from the model before the submission counts as inconsistent.
const scoreTolerance = 10.0

type ScoreItem struct {
	SiteCode string  `json:"site_code" binding:"required"`
	Score    float64 `json:"score"`
}

type ValidateRequest struct {
	Scores []ScoreItem `json:"scores" binding:"required"`
}

type ValidateResponse struct {
	DetectedSite string  `json:"detected_site"`
	CodeSecret   string  `json:"code_secret"`
	Score        float64 `json:"score"`
}

type PredictRequest struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Capacity float64 `json:"capacity"`
	Year     int     `json:"year" binding:"required"`
}

// Predict exposes the confidence model directly.
func (h *Handler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if h.Model == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scoring model unavailable"})
		return
	}
	score := h.Model.Predict(scoring.Features{Lat: req.Lat, Lon: req.Lon, Capacity: req.Capacity, Year: req.Year})
	c.JSON(http.StatusOK, gin.H{"score": score})
}

// Validate cross-checks the submitted site scores against the model. Any
// deviation beyond the tolerance, or an unknown site, fails the whole
// submission with a penalty; the response deliberately does not say which
// entry was wrong. A consistent submission binds the top site's secret and
// hands it back.
func (h *Handler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if len(req.Scores) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no scores submitted"})
		return
	}
	for _, s := range req.Scores {
		if s.Score < 0 || s.Score > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "score out of range (0-100) for " + s.SiteCode})
			return
		}
	}

	if h.Model == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scoring model unavailable"})
		return
	}

	consistent := lo.EveryBy(req.Scores, func(s ScoreItem) bool {
		site, ok := h.Sites.Site(s.SiteCode)
		if !ok {
			return false
		}
		reference := h.Model.Predict(site.Features) * 100
		diff := reference - s.Score
		if diff < 0 {
			diff = -diff
		}
		return diff <= scoreTolerance
	})

	if !consistent {
		remaining := h.applyPenalty("validate")
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Inconsistent scores. Time penalty applied.",
			"penalty":   int(h.Penalty.Seconds()),
			"remaining": remaining,
		})
		return
	}

	best := lo.MaxBy(req.Scores, func(a, b ScoreItem) bool { return a.Score > b.Score })
	secret := h.State.BindSecret(best.SiteCode)

	c.JSON(http.StatusOK, ValidateResponse{
		DetectedSite: best.SiteCode,
		CodeSecret:   secret,
		Score:        best.Score,
	})
}
