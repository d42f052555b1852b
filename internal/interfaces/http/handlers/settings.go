// internal/interfaces/http/handlers/settings.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/settings"
)

// SettingsHandler handles admin settings endpoints
type SettingsHandler struct {
	settingsService *settings.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *settings.Service) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// List handles GET /admin/settings
func (h *SettingsHandler) List(c *gin.Context) {
	respondOK(c, http.StatusOK, "Settings retrieved", h.settingsService.All())
}

// Set handles PUT /admin/settings
func (h *SettingsHandler) Set(c *gin.Context) {
	var req struct {
		Key   string `json:"key" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.settingsService.Set(req.Key, req.Value); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Setting updated", nil)
}
