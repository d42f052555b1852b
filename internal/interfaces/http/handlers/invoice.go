// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// InvoiceHandler handles invoice download endpoints
type InvoiceHandler struct {
	orderService *order.Service
	pdfService   *pdf.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, pdfService *pdf.Service) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		pdfService:   pdfService,
	}
}

// Download handles GET /orders/:id/invoice
func (h *InvoiceHandler) Download(c *gin.Context) {
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

	buf, err := h.pdfService.GenerateInvoice(o)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", o.OrderCode)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
