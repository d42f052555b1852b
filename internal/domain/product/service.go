// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"gorm.io/gorm"
)

// Service handles product catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only,default=true"`
}

// ProductListResponse represents products with pagination
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Slug        string                 `json:"slug" binding:"required"`
	Description string                 `json:"description"`
	CategoryID  uint                   `json:"category_id" binding:"required"`
	IsActive    *bool                  `json:"is_active"`
	Variants    []CreateVariantRequest `json:"variants" binding:"required,min=1,dive"`
}

// CreateVariantRequest represents variant creation data
type CreateVariantRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Price       int64  `json:"price" binding:"required,min=0"`
	StockQty    int    `json:"stock_qty" binding:"min=0"`
	WeightGrams int    `json:"weight_grams" binding:"min=0"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Preload("Variants").Preload("Category")

	if req.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.Search != "" {
		query = query.Where("name ILIKE ?", "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.Preload("Variants").Preload("Category").First(&prod, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("product %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// GetProductBySlug retrieves a single product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var prod Product
	result := s.db.Preload("Variants").Preload("Category").Where("slug = ?", slug).First(&prod)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("product '%s' not found", slug)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// GetVariant retrieves a single variant by ID
func (s *Service) GetVariant(id uint) (*ProductVariant, error) {
	var variant ProductVariant
	result := s.db.First(&variant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("variant %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", result.Error)
	}
	return &variant, nil
}

// CreateProduct creates a product with its variants
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	var existing Product
	if err := s.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return nil, errs.Conflict("product with slug '%s' already exists", req.Slug)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	prod := &Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsActive:    isActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prod).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		for _, v := range req.Variants {
			variant := ProductVariant{
				ProductID:   prod.ID,
				SKU:         v.SKU,
				Name:        v.Name,
				Price:       v.Price,
				StockQty:    v.StockQty,
				WeightGrams: v.WeightGrams,
				IsActive:    true,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return fmt.Errorf("failed to create variant '%s': %w", v.SKU, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(prod.ID)
}

// UpdateProduct updates mutable product fields
func (s *Service) UpdateProduct(id uint, updates map[string]interface{}) (*Product, error) {
	prod, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	allowed := map[string]bool{
		"name": true, "description": true, "category_id": true, "is_active": true,
	}
	filtered := make(map[string]interface{})
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return prod, nil
	}

	if err := s.db.Model(prod).Updates(filtered).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a product
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("product %d not found", id)
	}
	return nil
}

// GetCategories retrieves all active categories
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).Order("sort_order").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a new category
func (s *Service) CreateCategory(name, slug, description string, parentID *uint) (*Category, error) {
	var existing Category
	if err := s.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil, errs.Conflict("category with slug '%s' already exists", slug)
	}

	category := &Category{
		Name:        name,
		Slug:        slug,
		Description: description,
		ParentID:    parentID,
		IsActive:    true,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}
