// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"
)

// CartItem represents a cart item stored in database for authenticated
// users. One row per (user, variant); Price is captured at add-time
// for display, checkout always re-reads the variant's current price.
type CartItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_variant" json:"user_id"`
	VariantID uint           `gorm:"not null;uniqueIndex:idx_cart_user_variant" json:"variant_id"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	Price     int64          `gorm:"not null" json:"price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SessionCart represents a cart for guest users (stored in Redis)
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionCartItem represents a cart item for guest users
type SessionCartItem struct {
	VariantID uint      `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	AddedAt   time.Time `json:"added_at"`
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	SubTotal      int64 `json:"sub_total"`
}
