// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/domain/payment"
)

// WebhookHandler handles inbound payment provider callbacks
type WebhookHandler struct {
	paymentService *payment.Service
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(paymentService *payment.Service) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// BankTransfer handles POST /webhooks/bank-transfer. It always
// responds 200 so the provider never retries; failures are surfaced
// via success=false and logs.
func (h *WebhookHandler) BankTransfer(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, payment.WebhookResult{Success: false, Processed: []string{}})
		return
	}

	transactions, err := payment.ParseWebhookPayload(body)
	if err != nil {
		logrus.WithError(err).Warn("unparseable webhook payload")
		c.JSON(http.StatusOK, payment.WebhookResult{Success: false, Processed: []string{}})
		return
	}

	result := h.paymentService.ProcessWebhook(transactions)
	c.JSON(http.StatusOK, result)
}
