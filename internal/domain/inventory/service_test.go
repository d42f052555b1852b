// internal/domain/inventory/service_test.go
package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"github.com/your-org/storefront-backend/internal/pkg/testutil"
)

func newService(t *testing.T) (*inventory.Service, *gorm.DB) {
	db := testutil.NewDB(t)
	svc := inventory.NewService(db, testutil.NewConfig(t), testutil.NewLogger(t))
	return svc, db
}

func seedVariant(t *testing.T, db *gorm.DB, sku string, stock int) *product.ProductVariant {
	t.Helper()

	p := &product.Product{Name: "Shirt", Slug: "shirt-" + sku, CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(p).Error)

	v := &product.ProductVariant{
		ProductID: p.ID,
		SKU:       sku,
		Name:      "M",
		Price:     150000,
		StockQty:  stock,
		IsActive:  true,
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

func TestReserveReportsAllViolations(t *testing.T) {
	svc, db := newService(t)
	ok := seedVariant(t, db, "SKU-OK", 10)
	low := seedVariant(t, db, "SKU-LOW", 1)
	empty := seedVariant(t, db, "SKU-EMPTY", 0)

	err := svc.Reserve(db, []inventory.Line{
		{VariantID: ok.ID, Qty: 2},
		{VariantID: low.ID, Qty: 5},
		{VariantID: empty.ID, Qty: 1},
	})

	stockErr, isStock := errs.AsInsufficientStock(err)
	require.True(t, isStock)
	require.Len(t, stockErr.Violations, 2)
	assert.Equal(t, "SKU-LOW", stockErr.Violations[0].SKU)
	assert.Equal(t, 1, stockErr.Violations[0].Available)
	assert.Equal(t, "SKU-EMPTY", stockErr.Violations[1].SKU)
}

func TestDeductDecrementsAndRecordsMovement(t *testing.T) {
	svc, db := newService(t)
	v := seedVariant(t, db, "SKU-1", 10)

	err := svc.Deduct(db, []inventory.Line{{VariantID: v.ID, Qty: 3}}, 42, "order ORD1")
	require.NoError(t, err)

	var reloaded product.ProductVariant
	require.NoError(t, db.First(&reloaded, v.ID).Error)
	assert.Equal(t, 7, reloaded.StockQty)

	var movements []inventory.InventoryMovement
	require.NoError(t, db.Where("variant_id = ?", v.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.MovementTypeOut, movements[0].Type)
	assert.Equal(t, 3, movements[0].Qty)
	require.NotNil(t, movements[0].OrderID)
	assert.Equal(t, uint(42), *movements[0].OrderID)
}

func TestDeductRefusesToGoNegative(t *testing.T) {
	svc, db := newService(t)
	v := seedVariant(t, db, "SKU-1", 2)

	err := svc.Deduct(db, []inventory.Line{{VariantID: v.ID, Qty: 3}}, 42, "order ORD1")
	require.Error(t, err)
	assert.True(t, errs.IsInsufficientStock(err))

	// stock untouched, no movement written
	var reloaded product.ProductVariant
	require.NoError(t, db.First(&reloaded, v.ID).Error)
	assert.Equal(t, 2, reloaded.StockQty)

	var count int64
	require.NoError(t, db.Model(&inventory.InventoryMovement{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRestoreIncrementsAndRecordsMovement(t *testing.T) {
	svc, db := newService(t)
	v := seedVariant(t, db, "SKU-1", 5)

	require.NoError(t, svc.Restore(db, []inventory.Line{{VariantID: v.ID, Qty: 4}}, 42, "order ORD1 cancelled"))

	var reloaded product.ProductVariant
	require.NoError(t, db.First(&reloaded, v.ID).Error)
	assert.Equal(t, 9, reloaded.StockQty)

	var movement inventory.InventoryMovement
	require.NoError(t, db.Where("variant_id = ?", v.ID).First(&movement).Error)
	assert.Equal(t, inventory.MovementTypeIn, movement.Type)
	assert.Equal(t, 4, movement.Qty)
}

func TestMovementConservation(t *testing.T) {
	svc, db := newService(t)
	v := seedVariant(t, db, "SKU-1", 20)

	require.NoError(t, svc.Deduct(db, []inventory.Line{{VariantID: v.ID, Qty: 5}}, 1, "order"))
	require.NoError(t, svc.Deduct(db, []inventory.Line{{VariantID: v.ID, Qty: 3}}, 2, "order"))
	require.NoError(t, svc.Restore(db, []inventory.Line{{VariantID: v.ID, Qty: 3}}, 2, "cancel"))

	var movements []inventory.InventoryMovement
	require.NoError(t, db.Where("variant_id = ?", v.ID).Find(&movements).Error)

	sum := 0
	for _, m := range movements {
		if m.Type == inventory.MovementTypeIn {
			sum += m.Qty
		} else {
			sum -= m.Qty
		}
	}

	var reloaded product.ProductVariant
	require.NoError(t, db.First(&reloaded, v.ID).Error)
	assert.Equal(t, 20+sum, reloaded.StockQty)
}

func TestAdjustManual(t *testing.T) {
	svc, db := newService(t)
	v := seedVariant(t, db, "SKU-1", 5)

	movement, err := svc.Adjust(&inventory.AdjustmentRequest{
		VariantID: v.ID,
		Type:      inventory.MovementTypeIn,
		Qty:       10,
		Note:      "restock",
	})
	require.NoError(t, err)
	assert.Equal(t, "restock", movement.Note)

	var reloaded product.ProductVariant
	require.NoError(t, db.First(&reloaded, v.ID).Error)
	assert.Equal(t, 15, reloaded.StockQty)

	// outbound adjustment past available stock is rejected
	_, err = svc.Adjust(&inventory.AdjustmentRequest{
		VariantID: v.ID,
		Type:      inventory.MovementTypeOut,
		Qty:       100,
	})
	assert.True(t, errs.IsInsufficientStock(err))
}

func TestLowStockVariants(t *testing.T) {
	svc, db := newService(t)
	seedVariant(t, db, "SKU-LOW", 3)
	seedVariant(t, db, "SKU-HIGH", 50)
	inactive := seedVariant(t, db, "SKU-INACTIVE", 1)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	variants, err := svc.LowStockVariants(10)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "SKU-LOW", variants[0].SKU)
}
