package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// correctOrder is the solved arrangement of the 3x3 puzzle.
var correctOrder = []int{0, 1, 2, 3, 4, 5, 6, 7, 8}

type PuzzleValidateRequest struct {
	Positions []int `json:"positions" binding:"required"`
}

// PuzzleImage serves the puzzle picture.
func (h *Handler) PuzzleImage(c *gin.Context) {
	path, ok := h.Sites.PuzzleImagePath()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "puzzle image missing"})
		return
	}
	c.File(path)
}

// PuzzleValidate checks a candidate tile ordering. A wrong ordering is a
// penalty event, not a plain error: the timer shifts and every live client
// hears about it before the response goes out.
func (h *Handler) PuzzleValidate(c *gin.Context) {
	var req PuzzleValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if len(req.Positions) != len(correctOrder) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "positions must have 9 entries"})
		return
	}

	if !ordersEqual(req.Positions, correctOrder) {
		remaining := h.applyPenalty("puzzle")
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Puzzle incorrect!",
			"penalty":   int(h.Penalty.Seconds()),
			"remaining": remaining,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Puzzle solved!"})
}

func ordersEqual(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
