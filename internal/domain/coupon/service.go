// internal/domain/coupon/service.go
package coupon

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles coupon business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{db: db, config: cfg}
}

// CreateCouponRequest represents a request to create a coupon
type CreateCouponRequest struct {
	Code        string     `json:"code" binding:"required,min=3,max=50"`
	Type        string     `json:"type" binding:"required,oneof=percent fixed"`
	Value       int64      `json:"value" binding:"required,min=1"`
	MinSubtotal int64      `json:"min_subtotal" binding:"min=0"`
	MaxUses     int        `json:"max_uses" binding:"min=0"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// UpdateCouponRequest represents a request to update a coupon
type UpdateCouponRequest struct {
	Value       *int64     `json:"value"`
	MinSubtotal *int64     `json:"min_subtotal"`
	MaxUses     *int       `json:"max_uses"`
	ExpiresAt   *time.Time `json:"expires_at"`
	IsActive    *bool      `json:"is_active"`
}

// CreateCoupon creates a new coupon. Codes are stored uppercase.
func (s *Service) CreateCoupon(req *CreateCouponRequest) (*Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	if req.Type == TypePercent && req.Value > 100 {
		return nil, errs.Validation("percent coupon value cannot exceed 100")
	}

	var count int64
	if err := s.db.Model(&Coupon{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}
	if count > 0 {
		return nil, errs.Conflict("coupon code %s already exists", code)
	}

	coupon := Coupon{
		Code:        code,
		Type:        req.Type,
		Value:       req.Value,
		MinSubtotal: req.MinSubtotal,
		MaxUses:     req.MaxUses,
		ExpiresAt:   req.ExpiresAt,
		IsActive:    true,
	}
	if err := s.db.Create(&coupon).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &coupon, nil
}

// UpdateCoupon updates mutable coupon fields
func (s *Service) UpdateCoupon(id uint, req *UpdateCouponRequest) (*Coupon, error) {
	var coupon Coupon
	if err := s.db.First(&coupon, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("coupon not found")
		}
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Value != nil {
		if coupon.Type == TypePercent && *req.Value > 100 {
			return nil, errs.Validation("percent coupon value cannot exceed 100")
		}
		updates["value"] = *req.Value
	}
	if req.MinSubtotal != nil {
		updates["min_subtotal"] = *req.MinSubtotal
	}
	if req.MaxUses != nil {
		updates["max_uses"] = *req.MaxUses
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return &coupon, nil
	}

	if err := s.db.Model(&coupon).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}
	return &coupon, nil
}

// GetCoupons returns all coupons (admin listing)
func (s *Service) GetCoupons() ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	return coupons, nil
}

// GetCoupon returns a coupon by id
func (s *Service) GetCoupon(id uint) (*Coupon, error) {
	var coupon Coupon
	if err := s.db.First(&coupon, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("coupon not found")
		}
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return &coupon, nil
}

// DeleteCoupon soft-deletes a coupon
func (s *Service) DeleteCoupon(id uint) error {
	result := s.db.Delete(&Coupon{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("coupon not found")
	}
	return nil
}

// Validate checks a coupon against a subtotal without consuming it.
// Used for the cart preview endpoint.
func (s *Service) Validate(code string, subtotal int64) (*Coupon, int64, error) {
	coupon, err := s.lookup(s.db, code)
	if err != nil {
		return nil, 0, err
	}
	if err := s.check(coupon, subtotal); err != nil {
		return nil, 0, err
	}
	return coupon, coupon.DiscountFor(subtotal), nil
}

// ValidateAndConsume re-validates the coupon inside the checkout
// transaction and increments its usage count with a guard on MaxUses,
// so two concurrent checkouts cannot both take the last use.
func (s *Service) ValidateAndConsume(tx *gorm.DB, code string, subtotal int64) (*Coupon, int64, error) {
	coupon, err := s.lookup(tx, code)
	if err != nil {
		return nil, 0, err
	}
	if err := s.check(coupon, subtotal); err != nil {
		return nil, 0, err
	}

	query := tx.Model(&Coupon{}).Where("id = ?", coupon.ID)
	if coupon.MaxUses > 0 {
		query = query.Where("used_count < max_uses")
	}
	result := query.UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to consume coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, 0, errs.Validation("coupon %s has reached its usage limit", coupon.Code)
	}

	return coupon, coupon.DiscountFor(subtotal), nil
}

// Release returns one use to a coupon. Called when an order that
// consumed the coupon is cancelled.
func (s *Service) Release(tx *gorm.DB, couponID uint) error {
	result := tx.Model(&Coupon{}).
		Where("id = ? AND used_count > 0", couponID).
		UpdateColumn("used_count", gorm.Expr("used_count - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to release coupon: %w", result.Error)
	}
	return nil
}

func (s *Service) lookup(tx *gorm.DB, code string) (*Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var coupon Coupon
	err := tx.Where("code = ?", code).First(&coupon).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errs.Validation("coupon %s is not valid", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return &coupon, nil
}

func (s *Service) check(coupon *Coupon, subtotal int64) error {
	if !coupon.IsActive {
		return errs.Validation("coupon %s is not valid", coupon.Code)
	}
	if coupon.IsExpired(time.Now()) {
		return errs.Validation("coupon %s has expired", coupon.Code)
	}
	if coupon.IsExhausted() {
		return errs.Validation("coupon %s has reached its usage limit", coupon.Code)
	}
	if subtotal < coupon.MinSubtotal {
		return errs.Validation("order subtotal does not meet the coupon minimum of %d", coupon.MinSubtotal)
	}
	return nil
}
