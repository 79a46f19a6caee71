package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Country serves the per-country pipeline CSV. Only Russia carries real
// data and requires the X-Auth-A header; the other files are decoys.
func (h *Handler) Country(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	if code == "RU" {
		if c.GetHeader("X-Auth-A") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication header required (X-Auth-A)"})
			return
		}
		path, ok := h.Sites.CountryCSVPath(code)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "pipelines_ru.csv missing"})
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	path, ok := h.Sites.CountryCSVPath(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for this country"})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
