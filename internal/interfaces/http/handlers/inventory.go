// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/inventory"
)

// InventoryHandler handles admin inventory endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Adjust handles POST /admin/inventory/adjustments
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req inventory.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	movement, err := h.inventoryService.Adjust(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Stock adjusted", movement)
}

// GetMovements handles GET /admin/inventory/movements/:variant_id
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	variantID, err := parseUintParam(c, "variant_id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	movements, err := h.inventoryService.GetMovements(variantID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Movements retrieved", movements)
}

// LowStock handles GET /admin/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", "10"))

	variants, err := h.inventoryService.LowStockVariants(threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Low stock variants retrieved", variants)
}
