// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout handles POST /orders
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Order created", o)
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	isAdmin := middleware.IsAdminFromContext(c)

	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.orderService.GetOrders(&req, userID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Orders retrieved", resp)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	isAdmin := middleware.IsAdminFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.GetOrder(id, userID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order retrieved", o)
}

// GetOrderByCode handles GET /orders/code/:code
func (h *OrderHandler) GetOrderByCode(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	isAdmin := middleware.IsAdminFromContext(c)

	o, err := h.orderService.GetOrderByCode(c.Param("code"), userID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order retrieved", o)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	o, err := h.orderService.Cancel(id, userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order cancelled", o)
}

// UpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.UpdateStatus(id, &req, fmt.Sprintf("admin:%d", userID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order status updated", o)
}
