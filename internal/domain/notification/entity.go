// internal/domain/notification/entity.go
package notification

import "time"

// Notification types
const (
	TypeOrderNew        = "order_new"
	TypeOrderCancelled  = "order_cancelled"
	TypeOrderPaid       = "order_paid"
	TypeCartReminder    = "cart_reminder"
	TypeProductLowStock = "product_low_stock"
	TypeProductOutStock = "product_out_of_stock"
)

// Notification represents an in-app notification. A nil UserID means
// the notification targets all admins.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Type      string    `gorm:"not null;size:50;index" json:"type"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Message   string    `gorm:"size:1000" json:"message"`
	Link      string    `gorm:"size:255" json:"link"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Notification) TableName() string {
	return "notifications"
}
