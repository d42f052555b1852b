// internal/domain/notification/dispatcher.go
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

const (
	publishChannel = "notifications"
	publishTimeout = 2 * time.Second
)

// Dispatcher persists notifications and publishes them to a Redis
// channel for realtime delivery. Every step is best-effort: a failed
// dispatch is logged and never propagated, so it cannot roll back the
// transaction that triggered it. Dispatcher implements order.Notifier.
type Dispatcher struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *logrus.Entry
}

// NewDispatcher creates a notification dispatcher
func NewDispatcher(db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		db:     db,
		redis:  redisClient,
		logger: logger.WithField("component", "notifications"),
	}
}

// Dispatch stores the notification and publishes it. Errors are
// logged, not returned.
func (d *Dispatcher) Dispatch(userID *uint, notifType, title, message, link string) {
	n := &Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := d.db.Create(n).Error; err != nil {
		d.logger.WithError(err).WithField("type", notifType).
			Error("failed to persist notification")
		return
	}

	if d.redis == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		d.logger.WithError(err).Error("failed to marshal notification")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := d.redis.Publish(ctx, publishChannel, payload).Err(); err != nil {
		d.logger.WithError(err).WithField("type", notifType).
			Warn("failed to publish notification")
	}
}

// OrderCreated implements order.Notifier
func (d *Dispatcher) OrderCreated(o *order.Order) {
	d.Dispatch(&o.UserID, TypeOrderNew,
		"Order placed",
		fmt.Sprintf("Your order %s has been placed.", o.OrderCode),
		"/orders/"+o.OrderCode)
	// admin broadcast
	d.Dispatch(nil, TypeOrderNew,
		"New order",
		fmt.Sprintf("Order %s received (%d).", o.OrderCode, o.GrandTotal),
		"/admin/orders/"+o.OrderCode)
}

// OrderCancelled implements order.Notifier
func (d *Dispatcher) OrderCancelled(o *order.Order, reason string) {
	message := fmt.Sprintf("Your order %s has been cancelled.", o.OrderCode)
	if reason != "" {
		message = fmt.Sprintf("Your order %s has been cancelled: %s.", o.OrderCode, reason)
	}
	d.Dispatch(&o.UserID, TypeOrderCancelled, "Order cancelled", message, "/orders/"+o.OrderCode)
}

// OrderPaid implements order.Notifier
func (d *Dispatcher) OrderPaid(o *order.Order) {
	d.Dispatch(&o.UserID, TypeOrderPaid,
		"Payment received",
		fmt.Sprintf("Payment for order %s has been received.", o.OrderCode),
		"/orders/"+o.OrderCode)
}

// CartReminder nudges a user about an abandoned cart
func (d *Dispatcher) CartReminder(userID uint) {
	d.Dispatch(&userID, TypeCartReminder,
		"Your cart is waiting",
		"You left items in your cart. Complete your order before they sell out.",
		"/cart")
}

// LowStock alerts admins about a variant at or below the threshold
func (d *Dispatcher) LowStock(sku string, stockQty int) {
	notifType := TypeProductLowStock
	title := "Low stock"
	message := fmt.Sprintf("Variant %s is down to %d units.", sku, stockQty)
	if stockQty == 0 {
		notifType = TypeProductOutStock
		title = "Out of stock"
		message = fmt.Sprintf("Variant %s is out of stock.", sku)
	}
	d.Dispatch(nil, notifType, title, message, "/admin/inventory")
}

// List returns a user's notifications, newest first
func (d *Dispatcher) List(userID uint, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := d.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var notifications []Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read
func (d *Dispatcher) MarkRead(userID, notificationID uint) error {
	result := d.db.Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("notification not found")
	}
	return nil
}

// MarkAllRead marks all of the user's notifications as read
func (d *Dispatcher) MarkAllRead(userID uint) error {
	err := d.db.Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
