// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/notification"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/settings"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	httpserver "github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
	"github.com/your-org/storefront-backend/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	logger := newLogger(cfg)

	// Connect to database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	// Wire up services
	gormDB := db.GetDB()
	rdb := redisClient.GetClient()

	dispatcher := notification.NewDispatcher(gormDB, rdb, logger)
	inventorySvc := inventory.NewService(gormDB, cfg, logger)
	couponSvc := coupon.NewService(gormDB, cfg)
	shippingCalc := shipping.NewCalculator(cfg)
	cartSvc := cart.NewService(gormDB, rdb, cfg)
	orderSvc := order.NewService(gormDB, cfg, inventorySvc, couponSvc, shippingCalc, cartSvc, dispatcher, logger)
	paymentSvc := payment.NewService(gormDB, cfg, payment.DefaultMatcher(), dispatcher, logger)
	settingsSvc := settings.NewService(gormDB, logger)
	pdfSvc := pdf.NewService(cfg)

	if err := settingsSvc.Refresh(); err != nil {
		log.Printf("Warning: settings snapshot load failed: %v", err)
	}

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	schedulerDone := make(chan struct{})
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(logger)
		sched.Register(scheduler.NewExpiredOrderJob(orderSvc), cfg.Scheduler.ExpiredOrderInterval)
		sched.Register(scheduler.NewAbandonedCartJob(cartSvc, dispatcher, cfg), cfg.Scheduler.AbandonedCartInterval)
		sched.Register(scheduler.NewLowStockJob(inventorySvc, dispatcher, cfg), cfg.Scheduler.LowStockInterval)
		sched.Register(scheduler.NewSettingsRefreshJob(settingsSvc), cfg.Scheduler.SettingsRefresh)

		go func() {
			defer close(schedulerDone)
			sched.Run(ctx)
		}()
	} else {
		close(schedulerDone)
	}

	log.Println("✅ All systems operational!")

	// Create and start HTTP server
	server := httpserver.NewServer(cfg, &routes.Deps{
		DB:        gormDB,
		Redis:     rdb,
		Config:    cfg,
		Orders:    orderSvc,
		Payments:  paymentSvc,
		Inventory: inventorySvc,
		Settings:  settingsSvc,
		Notifier:  dispatcher,
		PDF:       pdfSvc,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
		log.Println("Warning: scheduler did not stop in time")
	}

	log.Println("✅ Server shutdown completed")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
