// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	couponService *coupon.Service
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(db *gorm.DB, cfg *config.Config) *CouponHandler {
	return &CouponHandler{
		couponService: coupon.NewService(db, cfg),
	}
}

// Validate handles POST /coupons/validate, a preview that does not
// consume a use.
func (h *CouponHandler) Validate(c *gin.Context) {
	var req struct {
		Code     string `json:"code" binding:"required"`
		Subtotal int64  `json:"subtotal" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cp, discount, err := h.couponService.Validate(req.Code, req.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Coupon is valid", gin.H{
		"code":     cp.Code,
		"type":     cp.Type,
		"discount": discount,
	})
}

// ListCoupons handles GET /admin/coupons
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.couponService.GetCoupons()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Coupons retrieved", coupons)
}

// CreateCoupon handles POST /admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cp, err := h.couponService.CreateCoupon(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Coupon created", cp)
}

// UpdateCoupon handles PUT /admin/coupons/:id
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	var req coupon.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cp, err := h.couponService.UpdateCoupon(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Coupon updated", cp)
}

// DeleteCoupon handles DELETE /admin/coupons/:id
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.couponService.DeleteCoupon(id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Coupon deleted", nil)
}
