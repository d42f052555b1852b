// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

const sessionCookieName = "cart_session"

// CartHandler handles cart endpoints. Authenticated users get DB
// carts, guests get Redis session carts keyed by a cookie.
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		resp, err := h.cartService.GetCart(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, "Cart retrieved", resp)
		return
	}

	sessionID := h.getOrCreateSessionID(c)
	sessionCart, err := h.cartService.GetSessionCart(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Cart retrieved", sessionCart)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		if err := h.cartService.AddItem(userID, &req); err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, "Item added to cart", nil)
		return
	}

	sessionID := h.getOrCreateSessionID(c)
	if err := h.cartService.AddSessionItem(c.Request.Context(), sessionID, &req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Item added to cart", nil)
}

// UpdateItem handles PUT /cart/items/:variant_id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"message": "Authentication required"},
		})
		return
	}

	variantID, err := parseUintParam(c, "variant_id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.cartService.UpdateItem(userID, variantID, &req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Cart item updated", nil)
}

// RemoveItem handles DELETE /cart/items/:variant_id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	variantID, err := parseUintParam(c, "variant_id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		if err := h.cartService.RemoveItem(userID, variantID); err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, "Item removed from cart", nil)
		return
	}

	sessionID := h.getOrCreateSessionID(c)
	if err := h.cartService.RemoveSessionItem(c.Request.Context(), sessionID, variantID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Item removed from cart", nil)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"message": "Authentication required"},
		})
		return
	}

	if err := h.cartService.ClearCart(userID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Cart cleared", nil)
}

// MergeCart handles POST /cart/merge, moving the guest session cart
// into the authenticated user's cart after login.
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"message": "Authentication required"},
		})
		return
	}

	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil || sessionID == "" {
		respondOK(c, http.StatusOK, "No session cart to merge", nil)
		return
	}

	if err := h.cartService.MergeSessionCart(c.Request.Context(), sessionID, userID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Session cart merged", nil)
}

func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(sessionCookieName)
	if err == nil && sessionID != "" {
		return sessionID
	}
	sessionID = uuid.NewString()
	c.SetCookie(sessionCookieName, sessionID, 86400, "/", "", false, true)
	return sessionID
}
