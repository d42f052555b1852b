// internal/pkg/testutil/db.go
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
)

var dbCounter atomic.Int64

// NewDB opens a fresh in-memory SQLite database with the full schema.
// Each call gets its own named database so parallel tests never share
// state; cache=shared keeps every connection of one test on the same
// database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	for _, model := range postgres.Models() {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}

	return db
}

// NewConfig returns a config with sane defaults for tests
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		App: config.AppConfig{
			Name:        "storefront-test",
			Version:     "0.0.0",
			Environment: "test",
			CompanyName: "Storefront",
		},
		JWT: config.JWTConfig{
			Secret:             "test-secret-test-secret-test-secret!",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost: 4,
		},
		Orders: config.OrdersConfig{
			PaymentTimeout: 5 * time.Minute,
		},
		Shipping: config.ShippingConfig{
			FlatFee:         30000,
			PerKgFee:        5000,
			RemoteSurcharge: 20000,
			RemoteProvinces: []string{"Ha Giang", "Cao Bang", "Lai Chau"},
			FreeThreshold:   1000000,
		},
		Scheduler: config.SchedulerConfig{
			Enabled:               true,
			ExpiredOrderInterval:  time.Minute,
			AbandonedCartInterval: 24 * time.Hour,
			AbandonedCartMinAge:   24 * time.Hour,
			AbandonedCartMaxAge:   48 * time.Hour,
			LowStockInterval:      24 * time.Hour,
			LowStockThreshold:     10,
			SettingsRefresh:       time.Minute,
		},
		Logging: config.LoggingConfig{
			Level:  "error",
			Format: "text",
		},
	}
}

// NewLogger returns a quiet logger for tests
func NewLogger(t *testing.T) *logrus.Logger {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}
