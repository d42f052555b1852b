// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	productService *product.Service
	config         *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(db *gorm.DB, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		productService: product.NewService(db, cfg),
		config:         cfg,
	}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.productService.GetProducts(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Products retrieved", resp)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.GetProduct(id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Product retrieved", p)
}

// GetProductBySlug handles GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.productService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Product retrieved", p)
}

// CreateProduct handles POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.CreateProduct(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Product created", p)
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.UpdateProduct(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Product updated", p)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Product deleted", nil)
}

// ListCategories handles GET /categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.productService.GetCategories()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Categories retrieved", categories)
}

// CreateCategory handles POST /admin/categories
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Slug        string `json:"slug" binding:"required"`
		Description string `json:"description"`
		ParentID    *uint  `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.productService.CreateCategory(req.Name, req.Slug, req.Description, req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Category created", category)
}

// parseUintParam parses a numeric path parameter
func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
