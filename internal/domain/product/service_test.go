// internal/domain/product/service_test.go
package product_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"github.com/your-org/storefront-backend/internal/pkg/testutil"
)

func newProductService(t *testing.T) *product.Service {
	return product.NewService(testutil.NewDB(t), testutil.NewConfig(t))
}

func createProduct(t *testing.T, svc *product.Service, slug string, categoryID uint) *product.Product {
	t.Helper()
	created, err := svc.CreateProduct(&product.CreateProductRequest{
		Name:       "Basic Tee " + slug,
		Slug:       slug,
		CategoryID: categoryID,
		Variants: []product.CreateVariantRequest{
			{SKU: slug + "-S", Name: "S", Price: 150000, StockQty: 10, WeightGrams: 180},
			{SKU: slug + "-M", Name: "M", Price: 150000, StockQty: 5, WeightGrams: 200},
		},
	})
	require.NoError(t, err)
	return created
}

func TestCreateProductWithVariants(t *testing.T) {
	svc := newProductService(t)

	created := createProduct(t, svc, "basic-tee", 1)
	require.Len(t, created.Variants, 2)
	assert.Equal(t, "basic-tee-S", created.Variants[0].SKU)
	assert.True(t, created.IsActive)

	// slug is unique
	_, err := svc.CreateProduct(&product.CreateProductRequest{
		Name: "Dup", Slug: "basic-tee", CategoryID: 1,
		Variants: []product.CreateVariantRequest{{SKU: "DUP-1", Name: "S", Price: 1000}},
	})
	assert.True(t, errs.IsKind(err, errs.KindConflict))
}

func TestGetProductBySlug(t *testing.T) {
	svc := newProductService(t)
	created := createProduct(t, svc, "hoodie", 1)

	found, err := svc.GetProductBySlug("hoodie")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetProductBySlug("missing")
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestGetProductsPaginationAndFilters(t *testing.T) {
	svc := newProductService(t)
	for i := 0; i < 5; i++ {
		createProduct(t, svc, fmt.Sprintf("tee-%d", i), 1)
	}
	createProduct(t, svc, "cap-0", 2)

	resp, err := svc.GetProducts(&product.ProductListRequest{Page: 1, Limit: 4, ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 4)
	assert.Equal(t, int64(6), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)

	resp, err = svc.GetProducts(&product.ProductListRequest{Page: 2, Limit: 4, ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 2)

	resp, err = svc.GetProducts(&product.ProductListRequest{Page: 1, Limit: 20, CategoryID: 2, ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 1)
	assert.Equal(t, "cap-0", resp.Products[0].Slug)
}

func TestGetProductsActiveOnlyFilter(t *testing.T) {
	svc := newProductService(t)
	active := createProduct(t, svc, "active-tee", 1)
	hidden := createProduct(t, svc, "hidden-tee", 1)

	_, err := svc.UpdateProduct(hidden.ID, map[string]interface{}{"is_active": false})
	require.NoError(t, err)

	resp, err := svc.GetProducts(&product.ProductListRequest{Page: 1, Limit: 20, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, active.ID, resp.Products[0].ID)

	resp, err = svc.GetProducts(&product.ProductListRequest{Page: 1, Limit: 20, ActiveOnly: false})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 2)
}

func TestUpdateProductIgnoresUnknownFields(t *testing.T) {
	svc := newProductService(t)
	created := createProduct(t, svc, "jacket", 1)

	updated, err := svc.UpdateProduct(created.ID, map[string]interface{}{
		"name": "Winter Jacket",
		"slug": "hacked-slug",
		"id":   999,
	})
	require.NoError(t, err)
	assert.Equal(t, "Winter Jacket", updated.Name)
	assert.Equal(t, "jacket", updated.Slug)
	assert.Equal(t, created.ID, updated.ID)
}

func TestDeleteProductSoftDeletes(t *testing.T) {
	svc := newProductService(t)
	created := createProduct(t, svc, "gone", 1)

	require.NoError(t, svc.DeleteProduct(created.ID))

	_, err := svc.GetProduct(created.ID)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))

	err = svc.DeleteProduct(created.ID)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestCategories(t *testing.T) {
	svc := newProductService(t)

	parent, err := svc.CreateCategory("Apparel", "apparel", "", nil)
	require.NoError(t, err)

	_, err = svc.CreateCategory("Shirts", "shirts", "", &parent.ID)
	require.NoError(t, err)

	_, err = svc.CreateCategory("Apparel Again", "apparel", "", nil)
	assert.True(t, errs.IsKind(err, errs.KindConflict))

	categories, err := svc.GetCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}
