package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-linker/internal/models"
	"github.com/codyseavey/card-linker/internal/services"
)

type CatalogHandler struct {
	catalog  *services.CatalogService
	sessions *services.SessionManager
}

func NewCatalogHandler(catalog *services.CatalogService, sessions *services.SessionManager) *CatalogHandler {
	return &CatalogHandler{
		catalog:  catalog,
		sessions: sessions,
	}
}

// Reload rebuilds the indices from the catalog source. The previous catalog
// stays active when loading fails.
func (h *CatalogHandler) Reload(c *gin.Context) {
	stats, err := h.catalog.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *CatalogHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Status())
}

// ResolveResponse mirrors what a chat trigger with the same query would see
type ResolveResponse struct {
	Query      string               `json:"query"`
	Key        string               `json:"key"`
	Outcome    services.Outcome     `json:"outcome"`
	Candidates []*models.CardRecord `json:"candidates"`
}

func (h *CatalogHandler) Resolve(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	bundle, err := h.catalog.Ready(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrCatalogLoading) || errors.Is(err, services.ErrNoCatalog) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	res := bundle.Resolve(query)
	candidates := res.Candidates
	if candidates == nil {
		candidates = []*models.CardRecord{}
	}
	c.JSON(http.StatusOK, ResolveResponse{
		Query:      res.Query,
		Key:        res.Key,
		Outcome:    res.Outcome(),
		Candidates: candidates,
	})
}

func (h *CatalogHandler) GetSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"active": h.sessions.Len()})
}
