// internal/domain/order/service.go
package order

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Notifier receives order lifecycle events. Implementations must be
// best-effort: they are called after the owning transaction commits
// and their failures are logged, never propagated.
type Notifier interface {
	OrderCreated(o *Order)
	OrderCancelled(o *Order, reason string)
	OrderPaid(o *Order)
}

// NopNotifier is a Notifier that does nothing, used in tests.
type NopNotifier struct{}

func (NopNotifier) OrderCreated(*Order)           {}
func (NopNotifier) OrderCancelled(*Order, string) {}
func (NopNotifier) OrderPaid(*Order)              {}

// Service handles order lifecycle business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	inventory *inventory.Service
	coupons   *coupon.Service
	shipping  *shipping.Calculator
	carts     *cart.Service
	notifier  Notifier
	logger    *logrus.Entry
}

// NewService creates a new order service
func NewService(
	db *gorm.DB,
	cfg *config.Config,
	inventorySvc *inventory.Service,
	couponSvc *coupon.Service,
	shippingCalc *shipping.Calculator,
	cartSvc *cart.Service,
	notifier Notifier,
	logger *logrus.Logger,
) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		db:        db,
		config:    cfg,
		inventory: inventorySvc,
		coupons:   couponSvc,
		shipping:  shippingCalc,
		carts:     cartSvc,
		notifier:  notifier,
		logger:    logger.WithField("component", "orders"),
	}
}

// CheckoutItem is a direct order line for checkouts that bypass the
// stored cart.
type CheckoutItem struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest represents a checkout. When Items is empty the
// user's stored cart is used and cleared on success.
type CheckoutRequest struct {
	Items            []CheckoutItem `json:"items"`
	CustomerName     string         `json:"customer_name" binding:"required"`
	CustomerEmail    string         `json:"customer_email" binding:"required,email"`
	CustomerPhone    string         `json:"customer_phone"`
	ShippingAddress  string         `json:"shipping_address" binding:"required"`
	ShippingProvince string         `json:"shipping_province"`
	ShippingMethod   string         `json:"shipping_method"`
	PaymentMethod    string         `json:"payment_method" binding:"required"`
	CouponCode       string         `json:"coupon_code"`
	Notes            string         `json:"notes"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// OrderListRequest represents order listing parameters
type OrderListRequest struct {
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
	Status  string `form:"status"`
	UserID  uint   `form:"user_id"`
	Search  string `form:"search"`
	SortDir string `form:"sort_dir"`
}

// OrderListResponse represents a paginated order listing
type OrderListResponse struct {
	Orders     []Order            `json:"orders"`
	Pagination product.Pagination `json:"pagination"`
}

// CreateOrder runs the whole checkout in one transaction: resolve
// lines at current prices, validate stock, apply the coupon, compute
// totals, create the order with snapshot fields, deduct stock with the
// ledger, create the pending payment row and clear the cart. Any
// failure rolls everything back. The order_new notification fires
// after commit.
func (s *Service) CreateOrder(userID uint, req *CheckoutRequest) (*Order, error) {
	if !ValidPaymentMethod(req.PaymentMethod) {
		return nil, errs.Validation("unsupported payment method: %s", req.PaymentMethod)
	}

	var created *Order
	usedCart := len(req.Items) == 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines, err := s.resolveLines(tx, userID, req, usedCart)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errs.Validation("cannot create an order with no items")
		}

		invLines := make([]inventory.Line, 0, len(lines))
		for _, line := range lines {
			invLines = append(invLines, inventory.Line{VariantID: line.VariantID, Qty: line.Quantity})
		}
		if err := s.inventory.Reserve(tx, invLines); err != nil {
			return err
		}

		var subtotal int64
		totalWeight := 0
		for _, line := range lines {
			subtotal += line.LineTotal
			totalWeight += line.WeightGrams * line.Quantity
		}

		var discount int64
		var couponID *uint
		var couponCode string
		if req.CouponCode != "" {
			c, d, err := s.coupons.ValidateAndConsume(tx, req.CouponCode, subtotal)
			if err != nil {
				return err
			}
			discount = d
			couponID = &c.ID
			couponCode = c.Code
		}

		shippingFee := s.shipping.FeeForOrder(req.ShippingMethod, totalWeight, req.ShippingProvince, subtotal)
		grandTotal := subtotal - discount + shippingFee

		order := &Order{
			UserID:           userID,
			Status:           StatusPending,
			CustomerName:     req.CustomerName,
			CustomerEmail:    req.CustomerEmail,
			CustomerPhone:    req.CustomerPhone,
			ShippingAddress:  req.ShippingAddress,
			ShippingProvince: req.ShippingProvince,
			ShippingMethod:   req.ShippingMethod,
			Subtotal:         subtotal,
			DiscountTotal:    discount,
			ShippingFee:      shippingFee,
			GrandTotal:       grandTotal,
			CouponID:         couponID,
			CouponCode:       couponCode,
			Notes:            req.Notes,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// order_code embeds the id, so it is assigned after insert.
		order.OrderCode = generateOrderCode(order.ID, time.Now())
		if err := tx.Model(order).UpdateColumn("order_code", order.OrderCode).Error; err != nil {
			return fmt.Errorf("failed to assign order code: %w", err)
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = lines

		if err := s.inventory.Deduct(tx, invLines, order.ID, "order "+order.OrderCode); err != nil {
			return err
		}

		payment := Payment{
			OrderID: order.ID,
			Method:  req.PaymentMethod,
			Status:  PaymentStatusPending,
			Amount:  grandTotal,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment record: %w", err)
		}
		order.Payments = []Payment{payment}

		history := OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  StatusPending,
			ChangedBy: "checkout",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		if usedCart {
			if err := s.carts.ClearCartTx(tx, userID); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    created.ID,
		"order_code":  created.OrderCode,
		"user_id":     userID,
		"grand_total": created.GrandTotal,
	}).Info("order created")

	s.notifier.OrderCreated(created)
	return created, nil
}

// GetOrder returns an order with items, payments and history. Non-admin
// callers only see their own orders.
func (s *Service) GetOrder(orderID, requesterID uint, isAdmin bool) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").Preload("Payments").Preload("StatusHistory").
		First(&order, orderID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errs.NotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, errs.Forbidden("you do not have access to this order")
	}
	return &order, nil
}

// GetOrderByCode returns an order by its public order code
func (s *Service) GetOrderByCode(code string, requesterID uint, isAdmin bool) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").Preload("Payments").
		Where("order_code = ?", code).First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errs.NotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, errs.Forbidden("you do not have access to this order")
	}
	return &order, nil
}

// GetOrders lists orders with pagination. Non-admin callers are always
// scoped to their own orders regardless of the requested filters.
func (s *Service) GetOrders(req *OrderListRequest, requesterID uint, isAdmin bool) (*OrderListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{})
	if !isAdmin {
		query = query.Where("user_id = ?", requesterID)
	} else if req.UserID != 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.Status != "" {
		if !ValidStatus(req.Status) {
			return nil, errs.Validation("invalid status filter: %s", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("order_code ILIKE ? OR customer_email ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	sortDir := "DESC"
	if req.SortDir == "asc" {
		sortDir = "ASC"
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Items").
		Order("created_at " + sortDir).
		Offset(offset).Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: product.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateStatus moves an order to a new status under the lifecycle
// table (admins can bypass the table via config). Entering cancelled
// or refunded from a stock-holding status restores inventory exactly
// once: the restore is gated on the guarded status update itself.
func (s *Service) UpdateStatus(orderID uint, req *UpdateStatusRequest, changedBy string) (*Order, error) {
	if !ValidStatus(req.Status) {
		return nil, errs.Validation("invalid status: %s", req.Status)
	}

	var updated *Order
	var notifyCancelled bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.NotFound("order not found")
			}
			return fmt.Errorf("failed to query order: %w", err)
		}

		if order.Status == req.Status {
			return errs.Validation("order is already %s", req.Status)
		}
		if !s.config.Orders.AllowAnyStatusTransition && !CanTransition(order.Status, req.Status) {
			return errs.Validation("cannot transition order from %s to %s", order.Status, req.Status)
		}

		restores := (req.Status == StatusCancelled || req.Status == StatusRefunded) &&
			IsActiveStatus(order.Status)

		// Guarded update: the row must still be in the status we read.
		// If a concurrent transition won, RowsAffected is 0 and no
		// restore happens here, which keeps restores at exactly once.
		result := tx.Model(&Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", req.Status)
		if result.Error != nil {
			return fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("order status changed concurrently, please retry")
		}

		if restores {
			if err := s.restoreOrderStock(tx, &order, req.Note); err != nil {
				return err
			}
			if order.CouponID != nil {
				if err := s.coupons.Release(tx, *order.CouponID); err != nil {
					return err
				}
			}
			notifyCancelled = req.Status == StatusCancelled
		}

		history := OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   req.Status,
			ChangedBy:  changedBy,
			Note:       req.Note,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		order.Status = req.Status
		if req.Status == StatusCancelled && req.Note != "" {
			if err := tx.Model(&Order{}).Where("id = ?", order.ID).
				Update("cancelled_reason", req.Note).Error; err != nil {
				return fmt.Errorf("failed to record cancel reason: %w", err)
			}
			order.CancelledReason = req.Note
		}
		updated = &order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   updated.ID,
		"order_code": updated.OrderCode,
		"status":     updated.Status,
		"changed_by": changedBy,
	}).Info("order status updated")

	if notifyCancelled {
		s.notifier.OrderCancelled(updated, updated.CancelledReason)
	}
	return updated, nil
}

// Cancel lets a customer cancel their own order while it is still
// pending or confirmed.
func (s *Service) Cancel(orderID, userID uint, reason string) (*Order, error) {
	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("order not found")
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if order.UserID != userID {
		return nil, errs.Forbidden("you do not have access to this order")
	}
	if order.Status != StatusPending && order.Status != StatusConfirmed {
		return nil, errs.Validation("order can no longer be cancelled")
	}

	return s.UpdateStatus(orderID, &UpdateStatusRequest{
		Status: StatusCancelled,
		Note:   reason,
	}, fmt.Sprintf("user:%d", userID))
}

// CancelExpired cancels pending orders past the payment timeout whose
// payment method requires an upfront payment. COD orders never expire.
// A failure on one order is logged and does not abort the sweep.
// Returns the number of orders cancelled.
func (s *Service) CancelExpired() (int, error) {
	cutoff := time.Now().Add(-s.config.Orders.PaymentTimeout)

	var expired []Order
	err := s.db.
		Joins("JOIN payments ON payments.order_id = orders.id").
		Where("orders.status = ? AND orders.created_at < ?", StatusPending, cutoff).
		Where("payments.method IN ?", []string{PaymentMethodBankTransfer, PaymentMethodMomo}).
		Distinct("orders.*").
		Find(&expired).Error
	if err != nil {
		return 0, fmt.Errorf("failed to query expired orders: %w", err)
	}

	cancelled := 0
	for i := range expired {
		o := &expired[i]
		_, err := s.UpdateStatus(o.ID, &UpdateStatusRequest{
			Status: StatusCancelled,
			Note:   "payment window expired",
		}, "scheduler")
		if err != nil {
			// Already-transitioned orders no longer match; anything
			// else is logged and the sweep moves on.
			if errs.IsKind(err, errs.KindValidation) || errs.IsKind(err, errs.KindConflict) {
				continue
			}
			s.logger.WithError(err).WithField("order_id", o.ID).
				Error("failed to cancel expired order")
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// restoreOrderStock puts every item's quantity back and records the
// inbound movements. Runs inside the caller's transaction.
func (s *Service) restoreOrderStock(tx *gorm.DB, order *Order, note string) error {
	items := order.Items
	if len(items) == 0 {
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load order items: %w", err)
		}
	}
	lines := make([]inventory.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, inventory.Line{VariantID: item.VariantID, Qty: item.Quantity})
	}
	if note == "" {
		note = "order " + order.OrderCode + " cancelled"
	}
	return s.inventory.Restore(tx, lines, order.ID, note)
}

// resolveLines turns the request (or the stored cart) into order item
// snapshots at current variant prices.
func (s *Service) resolveLines(tx *gorm.DB, userID uint, req *CheckoutRequest, useCart bool) ([]OrderItem, error) {
	type pair struct {
		variantID uint
		qty       int
	}
	var pairs []pair

	if useCart {
		items, err := s.carts.Items(tx, userID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			pairs = append(pairs, pair{item.VariantID, item.Quantity})
		}
	} else {
		for _, item := range req.Items {
			pairs = append(pairs, pair{item.VariantID, item.Quantity})
		}
	}

	lines := make([]OrderItem, 0, len(pairs))
	for _, p := range pairs {
		var variant product.ProductVariant
		if err := tx.Preload("Product").First(&variant, p.variantID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errs.Validation("product variant %d no longer exists", p.variantID)
			}
			return nil, fmt.Errorf("failed to load variant %d: %w", p.variantID, err)
		}
		productName := ""
		if variant.Product != nil {
			productName = variant.Product.Name
		}
		lines = append(lines, OrderItem{
			VariantID:   variant.ID,
			SKU:         variant.SKU,
			ProductName: productName,
			VariantName: variant.Name,
			UnitPrice:   variant.Price,
			Quantity:    p.qty,
			LineTotal:   variant.Price * int64(p.qty),
			WeightGrams: variant.WeightGrams,
		})
	}
	return lines, nil
}

// generateOrderCode builds the public order code, e.g. ORD2026082800042.
func generateOrderCode(id uint, now time.Time) string {
	return fmt.Sprintf("ORD%s%05d", now.Format("20060102"), id)
}
