package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-linker/internal/services"
)

type LookupHandler struct {
	misses *services.MissLogService
}

func NewLookupHandler(misses *services.MissLogService) *LookupHandler {
	return &LookupHandler{misses: misses}
}

// GetMisses lists the queries that most often matched nothing
func (h *LookupHandler) GetMisses(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	result, err := h.misses.TopMisses(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *LookupHandler) ClearMiss(c *gin.Context) {
	removed, err := h.misses.ClearMiss(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "miss not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "miss cleared"})
}
