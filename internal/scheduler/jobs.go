// internal/scheduler/jobs.go
package scheduler

import (
	"context"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/notification"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/settings"
)

// ExpiredOrderJob cancels pending orders whose payment window has
// passed and restores their stock. Orders already moved on by a
// concurrent transition are skipped, so re-runs are no-ops.
type ExpiredOrderJob struct {
	orders *order.Service
}

// NewExpiredOrderJob creates the expired-payment sweep
func NewExpiredOrderJob(orders *order.Service) *ExpiredOrderJob {
	return &ExpiredOrderJob{orders: orders}
}

func (j *ExpiredOrderJob) Name() string { return "expired-orders" }

func (j *ExpiredOrderJob) Run(ctx context.Context) (int, error) {
	return j.orders.CancelExpired()
}

// AbandonedCartJob reminds users about carts last touched inside the
// configured age window. The upper bound keeps a cart from being
// re-notified on every run.
type AbandonedCartJob struct {
	carts      *cart.Service
	dispatcher *notification.Dispatcher
	config     *config.Config
}

// NewAbandonedCartJob creates the abandoned-cart sweep
func NewAbandonedCartJob(carts *cart.Service, dispatcher *notification.Dispatcher, cfg *config.Config) *AbandonedCartJob {
	return &AbandonedCartJob{carts: carts, dispatcher: dispatcher, config: cfg}
}

func (j *AbandonedCartJob) Name() string { return "abandoned-carts" }

func (j *AbandonedCartJob) Run(ctx context.Context) (int, error) {
	userIDs, err := j.carts.AbandonedCarts(
		j.config.Scheduler.AbandonedCartMinAge,
		j.config.Scheduler.AbandonedCartMaxAge,
	)
	if err != nil {
		return 0, err
	}
	for _, userID := range userIDs {
		j.dispatcher.CartReminder(userID)
	}
	return len(userIDs), nil
}

// LowStockJob alerts admins about variants at or below the threshold
type LowStockJob struct {
	inventory  *inventory.Service
	dispatcher *notification.Dispatcher
	config     *config.Config
}

// NewLowStockJob creates the low-stock audit
func NewLowStockJob(inventorySvc *inventory.Service, dispatcher *notification.Dispatcher, cfg *config.Config) *LowStockJob {
	return &LowStockJob{inventory: inventorySvc, dispatcher: dispatcher, config: cfg}
}

func (j *LowStockJob) Name() string { return "low-stock" }

func (j *LowStockJob) Run(ctx context.Context) (int, error) {
	variants, err := j.inventory.LowStockVariants(j.config.Scheduler.LowStockThreshold)
	if err != nil {
		return 0, err
	}
	for _, v := range variants {
		j.dispatcher.LowStock(v.SKU, v.StockQty)
	}
	return len(variants), nil
}

// SettingsRefreshJob keeps the in-memory settings snapshot current
type SettingsRefreshJob struct {
	settings *settings.Service
}

// NewSettingsRefreshJob creates the settings refresh job
func NewSettingsRefreshJob(settingsSvc *settings.Service) *SettingsRefreshJob {
	return &SettingsRefreshJob{settings: settingsSvc}
}

func (j *SettingsRefreshJob) Name() string { return "settings-refresh" }

func (j *SettingsRefreshJob) Run(ctx context.Context) (int, error) {
	if err := j.settings.Refresh(); err != nil {
		return 0, err
	}
	return 0, nil
}
