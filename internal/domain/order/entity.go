// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusPaid       = "paid"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

// Payment methods
const (
	PaymentMethodCOD          = "cod"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodMomo         = "momo"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Order represents a customer order. Customer and address fields are
// snapshots taken at checkout; later profile edits never change an
// existing order. All amounts are minor currency units.
type Order struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	OrderCode        string         `gorm:"uniqueIndex;not null;size:50" json:"order_code"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	Status           string         `gorm:"not null;default:'pending';index" json:"status"`
	CustomerName     string         `gorm:"not null;size:255" json:"customer_name"`
	CustomerEmail    string         `gorm:"not null;size:255" json:"customer_email"`
	CustomerPhone    string         `gorm:"size:50" json:"customer_phone"`
	ShippingAddress  string         `gorm:"not null;size:500" json:"shipping_address"`
	ShippingProvince string         `gorm:"size:100" json:"shipping_province"`
	ShippingMethod   string         `gorm:"size:50" json:"shipping_method"`
	Subtotal         int64          `gorm:"not null" json:"subtotal"`
	DiscountTotal    int64          `gorm:"not null;default:0" json:"discount_total"`
	ShippingFee      int64          `gorm:"not null;default:0" json:"shipping_fee"`
	GrandTotal       int64          `gorm:"not null" json:"grand_total"`
	CouponID         *uint          `json:"coupon_id,omitempty"`
	CouponCode       string         `gorm:"size:50" json:"coupon_code,omitempty"`
	Notes            string         `gorm:"size:500" json:"notes"`
	CancelledReason  string         `gorm:"size:255" json:"cancelled_reason,omitempty"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`
	Payments      []Payment            `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"status_history,omitempty"`
}

// OrderItem is a snapshot of one ordered line. SKU, names and unit
// price are copied from the variant at checkout time.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	VariantID   uint      `gorm:"not null;index" json:"variant_id"`
	SKU         string    `gorm:"not null;size:100" json:"sku"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	VariantName string    `gorm:"size:255" json:"variant_name"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	LineTotal   int64     `gorm:"not null" json:"line_total"`
	WeightGrams int       `gorm:"default:0" json:"weight_grams"`
	CreatedAt   time.Time `json:"created_at"`
}

// Payment tracks one payment attempt for an order. An order can carry
// several rows when a customer retries.
type Payment struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	OrderID        uint       `gorm:"not null;index" json:"order_id"`
	Method         string     `gorm:"not null;size:30" json:"method"`
	Status         string     `gorm:"not null;default:'pending';index" json:"status"`
	Amount         int64      `gorm:"not null" json:"amount"`
	TransactionRef string     `gorm:"size:255;index" json:"transaction_ref,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// OrderStatusHistory records every status transition for auditing
type OrderStatusHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	FromStatus string    `gorm:"size:30" json:"from_status"`
	ToStatus   string    `gorm:"not null;size:30" json:"to_status"`
	ChangedBy  string    `gorm:"size:100" json:"changed_by"`
	Note       string    `gorm:"size:255" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (Payment) TableName() string            { return "payments" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// TotalWeight returns the parcel weight of all items in grams.
func (o *Order) TotalWeight() int {
	total := 0
	for _, item := range o.Items {
		total += item.WeightGrams * item.Quantity
	}
	return total
}

// RequiresUpfrontPayment reports whether the payment method needs an
// online payment before fulfilment. COD orders are exempt from the
// pending-payment timeout.
func RequiresUpfrontPayment(method string) bool {
	return method == PaymentMethodBankTransfer || method == PaymentMethodMomo
}

// ValidPaymentMethod reports whether the method code is supported.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCOD, PaymentMethodBankTransfer, PaymentMethodMomo:
		return true
	}
	return false
}
