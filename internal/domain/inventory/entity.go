// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementType represents the direction of an inventory movement
type MovementType string

const (
	MovementTypeIn  MovementType = "in"  // Restock, cancellation restore, manual increase
	MovementTypeOut MovementType = "out" // Sale, manual decrease
)

// InventoryMovement is an append-only audit record of a stock quantity
// change. Rows are never updated or deleted; the full history of a
// variant's stock_qty can be reconstructed from them.
type InventoryMovement struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	VariantID uint         `gorm:"not null;index" json:"variant_id"`
	Type      MovementType `gorm:"not null;size:10" json:"type"`
	Qty       int          `gorm:"not null" json:"qty"`
	Note      string       `gorm:"size:255" json:"note"`
	OrderID   *uint        `gorm:"index" json:"order_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName overrides the table name
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}
