// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"gorm.io/gorm"
)

// Discount types
const (
	TypePercent = "percent"
	TypeFixed   = "fixed"
)

// Coupon represents a discount code. UsedCount is incremented inside
// the checkout transaction so MaxUses holds under concurrent orders.
type Coupon struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Code        string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Type        string         `gorm:"not null;size:20" json:"type"`
	Value       int64          `gorm:"not null" json:"value"`
	MinSubtotal int64          `gorm:"default:0" json:"min_subtotal"`
	MaxUses     int            `gorm:"default:0" json:"max_uses"`
	UsedCount   int            `gorm:"default:0" json:"used_count"`
	ExpiresAt   *time.Time     `json:"expires_at"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired reports whether the coupon is past its expiry time.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// IsExhausted reports whether the coupon hit its usage cap. A zero
// MaxUses means unlimited.
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses > 0 && c.UsedCount >= c.MaxUses
}

// DiscountFor computes the discount amount for the given subtotal.
// The discount never exceeds the subtotal.
func (c *Coupon) DiscountFor(subtotal int64) int64 {
	var discount int64
	switch c.Type {
	case TypePercent:
		discount = subtotal * c.Value / 100
	case TypeFixed:
		discount = c.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
