// internal/domain/payment/service.go
package payment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service reconciles inbound bank transactions against orders
type Service struct {
	db       *gorm.DB
	config   *config.Config
	matcher  CodeMatcher
	notifier order.Notifier
	logger   *logrus.Entry
}

// NewService creates a new payment service. A nil matcher falls back
// to the default ORD<digits> matcher.
func NewService(db *gorm.DB, cfg *config.Config, matcher CodeMatcher, notifier order.Notifier, logger *logrus.Logger) *Service {
	if matcher == nil {
		matcher = DefaultMatcher()
	}
	if notifier == nil {
		notifier = order.NopNotifier{}
	}
	return &Service{
		db:       db,
		config:   cfg,
		matcher:  matcher,
		notifier: notifier,
		logger:   logger.WithField("component", "payments"),
	}
}

// BankTransaction is one inbound bank statement line
type BankTransaction struct {
	Description    string `json:"description"`
	Amount         int64  `json:"amount"`
	TransactionRef string `json:"transaction_ref"`
}

// WebhookResult is the always-200 webhook response body
type WebhookResult struct {
	Success   bool     `json:"success"`
	Processed []string `json:"processed"`
}

// ParseWebhookPayload accepts the provider's three payload shapes: a
// `{data: [...]}` envelope, a bare array, or a single bare object.
func ParseWebhookPayload(body []byte) ([]BankTransaction, error) {
	var envelope struct {
		Data []BankTransaction `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data, nil
	}

	var list []BankTransaction
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var single BankTransaction
	if err := json.Unmarshal(body, &single); err == nil && (single.Description != "" || single.Amount != 0) {
		return []BankTransaction{single}, nil
	}

	return nil, fmt.Errorf("unrecognized webhook payload")
}

// ProcessWebhook reconciles every transaction in the batch. Each
// transaction is isolated: one failure is logged and the rest still
// run. The result is always returned for a 200 response; Success is
// false only when nothing in the batch could be processed and at
// least one transaction errored.
func (s *Service) ProcessWebhook(transactions []BankTransaction) *WebhookResult {
	result := &WebhookResult{Success: true, Processed: []string{}}

	for _, txn := range transactions {
		code, err := s.processTransaction(txn)
		if err != nil {
			s.logger.WithError(err).WithField("description", txn.Description).
				Warn("webhook transaction not reconciled")
			continue
		}
		if code != "" {
			result.Processed = append(result.Processed, code)
		}
	}

	if len(result.Processed) == 0 && len(transactions) > 0 {
		result.Success = false
	}
	return result
}

// processTransaction matches one bank transaction to an order and, if
// the amount covers the grand total, marks the payment paid and moves
// the order to processing in a single transaction. No match leaves the
// order pending for manual reconciliation.
func (s *Service) processTransaction(txn BankTransaction) (string, error) {
	codes := s.matcher.Match(txn.Description)
	if len(codes) == 0 {
		return "", fmt.Errorf("no order code in description")
	}

	var processedCode string
	var paidOrder *order.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o order.Order
		// Ambiguous descriptions resolve to the first code that maps
		// to a reconcilable order.
		err := tx.Where("order_code IN ? AND status IN ?", codes,
			[]string{order.StatusPending, order.StatusConfirmed, order.StatusProcessing}).
			Order("created_at ASC").
			First(&o).Error
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("no matching order for codes %v", codes)
		}
		if err != nil {
			return fmt.Errorf("failed to look up order: %w", err)
		}

		if txn.Amount < o.GrandTotal {
			return fmt.Errorf("underpayment for %s: got %d, need %d", o.OrderCode, txn.Amount, o.GrandTotal)
		}

		var p order.Payment
		err = tx.Where("order_id = ? AND method = ? AND status = ?",
			o.ID, order.PaymentMethodBankTransfer, order.PaymentStatusPending).
			Order("created_at DESC").
			First(&p).Error
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("no pending bank transfer payment for %s", o.OrderCode)
		}
		if err != nil {
			return fmt.Errorf("failed to look up payment: %w", err)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":          order.PaymentStatusPaid,
			"transaction_ref": txn.TransactionRef,
			"paid_at":         now,
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to mark payment paid: %w", err)
		}

		if o.Status != order.StatusProcessing {
			result := tx.Model(&order.Order{}).
				Where("id = ? AND status = ?", o.ID, o.Status).
				Update("status", order.StatusProcessing)
			if result.Error != nil {
				return fmt.Errorf("failed to update order status: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("order %s changed concurrently", o.OrderCode)
			}
			history := order.OrderStatusHistory{
				OrderID:    o.ID,
				FromStatus: o.Status,
				ToStatus:   order.StatusProcessing,
				ChangedBy:  "webhook",
				Note:       "bank transfer received",
			}
			if err := tx.Create(&history).Error; err != nil {
				return fmt.Errorf("failed to record status history: %w", err)
			}
			o.Status = order.StatusProcessing
		}

		processedCode = o.OrderCode
		paidOrder = &o
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"order_code": processedCode,
		"amount":     txn.Amount,
	}).Info("payment reconciled")
	s.notifier.OrderPaid(paidOrder)
	return processedCode, nil
}
