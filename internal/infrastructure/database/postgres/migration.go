// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/notification"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/settings"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{db: db}
}

// Models returns every model in dependency order. Shared with the
// test helpers so the test schema never drifts from production.
func Models() []interface{} {
	return []interface{}{
		// Base tables
		&user.User{},
		&product.Category{},
		&product.Product{},
		&product.ProductVariant{},
		&coupon.Coupon{},
		&settings.Setting{},

		// Cart domain
		&cart.CartItem{},

		// Order domain - dependent tables
		&order.Order{},
		&order.OrderItem{},
		&order.Payment{},
		&order.OrderStatusHistory{},

		// Ledger and notifications
		&inventory.InventoryMovement{},
		&notification.Notification{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	for _, model := range Models() {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes not covered by model tags
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders (status, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_payments_order_status ON payments (order_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_movements_variant_created ON inventory_movements (variant_id, created_at)",
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
