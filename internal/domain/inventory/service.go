// internal/domain/inventory/service.go
package inventory

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"gorm.io/gorm"
)

// Service handles inventory ledger business logic. Every stock_qty
// change goes through here so that each change leaves a movement row.
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Entry
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger.WithField("component", "inventory"),
	}
}

// Line is a (variant, qty) pair to validate, deduct or restore.
type Line struct {
	VariantID uint
	Qty       int
}

// AdjustmentRequest represents a manual stock adjustment by an admin.
type AdjustmentRequest struct {
	VariantID uint         `json:"variant_id" binding:"required"`
	Type      MovementType `json:"type" binding:"required,oneof=in out"`
	Qty       int          `json:"qty" binding:"required,min=1"`
	Note      string       `json:"note"`
}

// Reserve validates that every line can currently be fulfilled. It
// reports ALL violating lines, not just the first. It does not mutate
// stock: the decrement happens in Deduct, inside the same transaction
// as order creation, so there is no reserve/commit race across two
// transactions.
func (s *Service) Reserve(tx *gorm.DB, lines []Line) error {
	var violations []errs.StockViolation

	for _, line := range lines {
		var variant product.ProductVariant
		if err := tx.First(&variant, line.VariantID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				violations = append(violations, errs.StockViolation{
					VariantID: line.VariantID,
					Requested: line.Qty,
					Available: 0,
				})
				continue
			}
			return fmt.Errorf("failed to load variant %d: %w", line.VariantID, err)
		}

		if !variant.IsActive || variant.StockQty < line.Qty {
			available := variant.StockQty
			if !variant.IsActive {
				available = 0
			}
			violations = append(violations, errs.StockViolation{
				VariantID: variant.ID,
				SKU:       variant.SKU,
				Requested: line.Qty,
				Available: available,
			})
		}
	}

	if len(violations) > 0 {
		return &errs.InsufficientStockError{Violations: violations}
	}
	return nil
}

// Deduct decrements stock for every line and appends an `out` movement
// per line, inside the caller's transaction. The decrement is a
// row-level conditional update (only if the resulting quantity stays
// non-negative), so two concurrent checkouts can never oversell even
// when both passed Reserve on a stale read.
func (s *Service) Deduct(tx *gorm.DB, lines []Line, orderID uint, note string) error {
	for _, line := range lines {
		result := tx.Model(&product.ProductVariant{}).
			Where("id = ? AND stock_qty >= ?", line.VariantID, line.Qty).
			UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", line.Qty))
		if result.Error != nil {
			return fmt.Errorf("failed to deduct stock for variant %d: %w", line.VariantID, result.Error)
		}
		if result.RowsAffected == 0 {
			// Lost the race to a concurrent checkout.
			var variant product.ProductVariant
			tx.First(&variant, line.VariantID)
			return &errs.InsufficientStockError{Violations: []errs.StockViolation{{
				VariantID: line.VariantID,
				SKU:       variant.SKU,
				Requested: line.Qty,
				Available: variant.StockQty,
			}}}
		}

		movement := InventoryMovement{
			VariantID: line.VariantID,
			Type:      MovementTypeOut,
			Qty:       line.Qty,
			Note:      note,
			OrderID:   &orderID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("failed to record outbound movement for variant %d: %w", line.VariantID, err)
		}
	}
	return nil
}

// Restore increments stock for every line and appends an `in` movement
// per line, inside the caller's transaction. Callers guarantee
// at-most-once per order item via the order status transition guard.
func (s *Service) Restore(tx *gorm.DB, lines []Line, orderID uint, note string) error {
	for _, line := range lines {
		result := tx.Model(&product.ProductVariant{}).
			Where("id = ?", line.VariantID).
			UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", line.Qty))
		if result.Error != nil {
			return fmt.Errorf("failed to restore stock for variant %d: %w", line.VariantID, result.Error)
		}

		movement := InventoryMovement{
			VariantID: line.VariantID,
			Type:      MovementTypeIn,
			Qty:       line.Qty,
			Note:      note,
			OrderID:   &orderID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("failed to record inbound movement for variant %d: %w", line.VariantID, err)
		}
	}
	return nil
}

// Adjust performs a manual admin stock adjustment with an audit note.
func (s *Service) Adjust(req *AdjustmentRequest) (*InventoryMovement, error) {
	var movement *InventoryMovement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		switch req.Type {
		case MovementTypeIn:
			result := tx.Model(&product.ProductVariant{}).
				Where("id = ?", req.VariantID).
				UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", req.Qty))
			if result.Error != nil {
				return fmt.Errorf("failed to adjust stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return errs.NotFound("variant %d not found", req.VariantID)
			}
		case MovementTypeOut:
			result := tx.Model(&product.ProductVariant{}).
				Where("id = ? AND stock_qty >= ?", req.VariantID, req.Qty).
				UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", req.Qty))
			if result.Error != nil {
				return fmt.Errorf("failed to adjust stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				var variant product.ProductVariant
				if err := tx.First(&variant, req.VariantID).Error; err != nil {
					return errs.NotFound("variant %d not found", req.VariantID)
				}
				return &errs.InsufficientStockError{Violations: []errs.StockViolation{{
					VariantID: req.VariantID,
					SKU:       variant.SKU,
					Requested: req.Qty,
					Available: variant.StockQty,
				}}}
			}
		default:
			return errs.Validation("invalid movement type: %s", req.Type)
		}

		movement = &InventoryMovement{
			VariantID: req.VariantID,
			Type:      req.Type,
			Qty:       req.Qty,
			Note:      req.Note,
		}
		return tx.Create(movement).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"variant_id": req.VariantID,
		"type":       req.Type,
		"qty":        req.Qty,
	}).Info("manual stock adjustment recorded")

	return movement, nil
}

// GetMovements retrieves the movement history for a variant, newest
// first.
func (s *Service) GetMovements(variantID uint, limit int) ([]InventoryMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var movements []InventoryMovement
	err := s.db.Where("variant_id = ?", variantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}
	return movements, nil
}

// LowStockVariants returns all active variants at or below the
// threshold, for the low-stock audit job.
func (s *Service) LowStockVariants(threshold int) ([]product.ProductVariant, error) {
	var variants []product.ProductVariant
	err := s.db.Where("is_active = ? AND stock_qty <= ?", true, threshold).
		Order("stock_qty ASC").
		Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan low-stock variants: %w", err)
	}
	return variants, nil
}
