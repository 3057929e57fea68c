package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
)

// ProviderReader is the backend slice for the tools hub.
type ProviderReader interface {
	ListProviders(ctx context.Context) ([]models.Provider, error)
	GetHealth(ctx context.Context) (*models.ProviderHealth, error)
}

// ToolsHandler serves the tools-hub landing view model: the registered
// providers joined with their health.
type ToolsHandler struct {
	reader ProviderReader
	log    logger.Logger
}

// NewToolsHandler creates a tools handler.
func NewToolsHandler(reader ProviderReader, log logger.Logger) *ToolsHandler {
	return &ToolsHandler{reader: reader, log: log}
}

// ToolView is one provider with its reachability.
type ToolView struct {
	models.Provider
	Healthy bool `json:"healthy"`
}

// List handles GET /api/v1/tools.
func (h *ToolsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	providers, err := h.reader.ListProviders(ctx)
	if err != nil {
		writeBackendError(c, h.log, err)
		return
	}

	// Health is best-effort: an unreachable health endpoint degrades every
	// provider to unhealthy rather than failing the page.
	healthy := map[string]bool{}
	if ph, healthErr := h.reader.GetHealth(ctx); healthErr != nil {
		h.log.Warn("Provider health unavailable", logger.Error(healthErr))
	} else {
		healthy = ph.Providers
	}

	views := make([]ToolView, 0, len(providers))
	for _, p := range providers {
		views = append(views, ToolView{Provider: p, Healthy: healthy[p.ProviderID]})
	}

	c.JSON(http.StatusOK, gin.H{"tools": views})
}
