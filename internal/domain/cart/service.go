// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

const (
	sessionCartKeyPrefix = "cart:session:"
	sessionCartTTL       = 24 * time.Hour
	maxQuantityPerItem   = 99
)

// Service handles cart business logic. Authenticated carts live in
// Postgres, guest carts live in Redis keyed by session id.
type Service struct {
	db     *gorm.DB
	redis  *redis.Client
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		redis:  redisClient,
		config: cfg,
	}
}

// AddItemRequest represents a request to add an item to the cart
type AddItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a request to change an item's quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=0"`
}

// CartResponse represents the cart with resolved variant data
type CartResponse struct {
	Items  []CartItemDetail `json:"items"`
	Totals CartTotals       `json:"totals"`
}

// CartItemDetail is a cart line joined with its current variant state.
// Price is the captured add-time price; CurrentPrice reflects the
// catalog right now so clients can surface price changes.
type CartItemDetail struct {
	VariantID    uint   `json:"variant_id"`
	SKU          string `json:"sku"`
	ProductName  string `json:"product_name"`
	VariantName  string `json:"variant_name"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`
	CurrentPrice int64  `json:"current_price"`
	LineTotal    int64  `json:"line_total"`
	InStock      bool   `json:"in_stock"`
	StockQty     int    `json:"stock_qty"`
}

// AddItem adds a variant to a user's cart, merging quantities if the
// variant is already present. Stock is soft-checked here: the
// authoritative check happens at checkout.
func (s *Service) AddItem(userID uint, req *AddItemRequest) error {
	variant, err := s.sellableVariant(req.VariantID)
	if err != nil {
		return err
	}

	var existing CartItem
	err = s.db.Where("user_id = ? AND variant_id = ?", userID, req.VariantID).First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to query cart item: %w", err)
	}

	newQty := req.Quantity
	if err == nil {
		newQty += existing.Quantity
	}
	if newQty > maxQuantityPerItem {
		return errs.Validation("quantity cannot exceed %d per item", maxQuantityPerItem)
	}
	if variant.StockQty < newQty {
		return errs.Validation("only %d units of %s available", variant.StockQty, variant.SKU)
	}

	if err == gorm.ErrRecordNotFound {
		item := CartItem{
			UserID:    userID,
			VariantID: req.VariantID,
			Quantity:  req.Quantity,
			Price:     variant.Price,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to create cart item: %w", err)
		}
		return nil
	}

	existing.Quantity = newQty
	if err := s.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

// UpdateItem sets the quantity of a cart line. Quantity zero removes it.
func (s *Service) UpdateItem(userID, variantID uint, req *UpdateItemRequest) error {
	var item CartItem
	err := s.db.Where("user_id = ? AND variant_id = ?", userID, variantID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return errs.NotFound("cart item not found")
	}
	if err != nil {
		return fmt.Errorf("failed to query cart item: %w", err)
	}

	if req.Quantity == 0 {
		return s.RemoveItem(userID, variantID)
	}
	if req.Quantity > maxQuantityPerItem {
		return errs.Validation("quantity cannot exceed %d per item", maxQuantityPerItem)
	}

	variant, err := s.sellableVariant(variantID)
	if err != nil {
		return err
	}
	if variant.StockQty < req.Quantity {
		return errs.Validation("only %d units of %s available", variant.StockQty, variant.SKU)
	}

	item.Quantity = req.Quantity
	if err := s.db.Save(&item).Error; err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

// RemoveItem removes a variant from the user's cart
func (s *Service) RemoveItem(userID, variantID uint) error {
	result := s.db.Where("user_id = ? AND variant_id = ?", userID, variantID).Delete(&CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("cart item not found")
	}
	return nil
}

// GetCart returns the user's cart with current variant data resolved
func (s *Service) GetCart(userID uint) (*CartResponse, error) {
	var items []CartItem
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	return s.buildResponse(items)
}

// ClearCart removes all items from the user's cart
func (s *Service) ClearCart(userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Items returns the raw cart rows for a user (used by checkout)
func (s *Service) Items(tx *gorm.DB, userID uint) ([]CartItem, error) {
	var items []CartItem
	if err := tx.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	return items, nil
}

// ClearCartTx removes all cart rows for a user inside an existing
// transaction (checkout clears the cart atomically with order creation)
func (s *Service) ClearCartTx(tx *gorm.DB, userID uint) error {
	if err := tx.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// AbandonedCarts returns distinct user ids whose newest cart activity
// falls inside the [minAge, maxAge] window. The upper bound keeps the
// sweep from re-notifying the same stale carts forever.
func (s *Service) AbandonedCarts(minAge, maxAge time.Duration) ([]uint, error) {
	now := time.Now()
	newest := now.Add(-minAge)
	oldest := now.Add(-maxAge)

	var userIDs []uint
	err := s.db.Model(&CartItem{}).
		Select("user_id").
		Group("user_id").
		Having("MAX(updated_at) <= ? AND MAX(updated_at) >= ?", newest, oldest).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query abandoned carts: %w", err)
	}
	return userIDs, nil
}

// GetSessionCart retrieves a guest cart from Redis
func (s *Service) GetSessionCart(ctx context.Context, sessionID string) (*SessionCart, error) {
	key := sessionCartKeyPrefix + sessionID
	data, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session cart: %w", err)
	}

	var cart SessionCart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session cart: %w", err)
	}
	return &cart, nil
}

// AddSessionItem adds a variant to a guest cart
func (s *Service) AddSessionItem(ctx context.Context, sessionID string, req *AddItemRequest) error {
	variant, err := s.sellableVariant(req.VariantID)
	if err != nil {
		return err
	}

	cart, err := s.GetSessionCart(ctx, sessionID)
	if err != nil {
		return err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].VariantID == req.VariantID {
			cart.Items[i].Quantity += req.Quantity
			if cart.Items[i].Quantity > maxQuantityPerItem {
				return errs.Validation("quantity cannot exceed %d per item", maxQuantityPerItem)
			}
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, SessionCartItem{
			VariantID: req.VariantID,
			Quantity:  req.Quantity,
			Price:     variant.Price,
			AddedAt:   time.Now(),
		})
	}

	return s.saveSessionCart(ctx, cart)
}

// RemoveSessionItem removes a variant from a guest cart
func (s *Service) RemoveSessionItem(ctx context.Context, sessionID string, variantID uint) error {
	cart, err := s.GetSessionCart(ctx, sessionID)
	if err != nil {
		return err
	}

	items := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.VariantID == variantID {
			removed = true
			continue
		}
		items = append(items, item)
	}
	if !removed {
		return errs.NotFound("cart item not found")
	}
	cart.Items = items

	return s.saveSessionCart(ctx, cart)
}

// MergeSessionCart moves a guest cart into the user's DB cart after
// login, then deletes the session cart. Quantities merge additively.
func (s *Service) MergeSessionCart(ctx context.Context, sessionID string, userID uint) error {
	cart, err := s.GetSessionCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}

	for _, item := range cart.Items {
		req := &AddItemRequest{VariantID: item.VariantID, Quantity: item.Quantity}
		if err := s.AddItem(userID, req); err != nil {
			// skip lines that no longer validate, keep merging the rest
			if errs.IsKind(err, errs.KindValidation) || errs.IsKind(err, errs.KindNotFound) {
				continue
			}
			return err
		}
	}

	key := sessionCartKeyPrefix + sessionID
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session cart: %w", err)
	}
	return nil
}

func (s *Service) saveSessionCart(ctx context.Context, cart *SessionCart) error {
	cart.UpdatedAt = time.Now()
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal session cart: %w", err)
	}
	key := sessionCartKeyPrefix + cart.SessionID
	if err := s.redis.Set(ctx, key, data, sessionCartTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session cart: %w", err)
	}
	return nil
}

func (s *Service) sellableVariant(variantID uint) (*product.ProductVariant, error) {
	var variant product.ProductVariant
	err := s.db.Preload("Product").First(&variant, variantID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errs.NotFound("product variant not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query variant: %w", err)
	}
	if !variant.IsActive || variant.Product == nil || !variant.Product.IsActive {
		return nil, errs.Validation("product is not available for purchase")
	}
	return &variant, nil
}

func (s *Service) buildResponse(items []CartItem) (*CartResponse, error) {
	resp := &CartResponse{Items: []CartItemDetail{}}
	if len(items) == 0 {
		return resp, nil
	}

	variantIDs := make([]uint, 0, len(items))
	for _, item := range items {
		variantIDs = append(variantIDs, item.VariantID)
	}

	var variants []product.ProductVariant
	if err := s.db.Preload("Product").Where("id IN ?", variantIDs).Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	byID := make(map[uint]*product.ProductVariant, len(variants))
	for i := range variants {
		byID[variants[i].ID] = &variants[i]
	}

	for _, item := range items {
		variant, ok := byID[item.VariantID]
		if !ok {
			continue
		}
		productName := ""
		if variant.Product != nil {
			productName = variant.Product.Name
		}
		detail := CartItemDetail{
			VariantID:    item.VariantID,
			SKU:          variant.SKU,
			ProductName:  productName,
			VariantName:  variant.Name,
			Quantity:     item.Quantity,
			Price:        item.Price,
			CurrentPrice: variant.Price,
			LineTotal:    variant.Price * int64(item.Quantity),
			InStock:      variant.StockQty >= item.Quantity,
			StockQty:     variant.StockQty,
		}
		resp.Items = append(resp.Items, detail)
		resp.Totals.ItemCount++
		resp.Totals.TotalQuantity += item.Quantity
		resp.Totals.SubTotal += detail.LineTotal
	}
	return resp, nil
}
