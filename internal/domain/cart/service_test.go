// internal/domain/cart/service_test.go
package cart_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"github.com/your-org/storefront-backend/internal/pkg/testutil"
)

func newCartService(t *testing.T) (*cart.Service, *gorm.DB) {
	db := testutil.NewDB(t)
	return cart.NewService(db, nil, testutil.NewConfig(t)), db
}

func seedVariant(t *testing.T, db *gorm.DB, sku string, price int64, stock int, active bool) *product.ProductVariant {
	t.Helper()

	p := &product.Product{Name: "Shirt " + sku, Slug: "shirt-" + sku, CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(p).Error)

	v := &product.ProductVariant{
		ProductID: p.ID, SKU: sku, Name: "M",
		Price: price, StockQty: stock, WeightGrams: 200, IsActive: active,
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

func TestAddItemCapturesPriceAndMergesQuantity(t *testing.T) {
	svc, db := newCartService(t)
	v := seedVariant(t, db, "sku-1", 100000, 10, true)

	require.NoError(t, svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 2}))

	// price change after add does not touch the captured price
	require.NoError(t, db.Model(v).Update("price", 130000).Error)
	require.NoError(t, svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 3}))

	resp, err := svc.GetCart(1)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)
	assert.Equal(t, int64(100000), resp.Items[0].Price)
	assert.Equal(t, int64(130000), resp.Items[0].CurrentPrice)
}

func TestAddItemSoftStockCheck(t *testing.T) {
	svc, db := newCartService(t)
	v := seedVariant(t, db, "sku-1", 100000, 3, true)

	err := svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 4})
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	// merged quantity is checked too
	require.NoError(t, svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 2}))
	err = svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 2})
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestAddItemRejectsInactiveVariant(t *testing.T) {
	svc, db := newCartService(t)
	v := seedVariant(t, db, "sku-1", 100000, 10, false)

	err := svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 1})
	require.Error(t, err)

	err = svc.AddItem(1, &cart.AddItemRequest{VariantID: 9999, Quantity: 1})
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestUpdateItemZeroRemoves(t *testing.T) {
	svc, db := newCartService(t)
	v := seedVariant(t, db, "sku-1", 100000, 10, true)

	require.NoError(t, svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 2}))
	require.NoError(t, svc.UpdateItem(1, v.ID, &cart.UpdateItemRequest{Quantity: 0}))

	resp, err := svc.GetCart(1)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	err = svc.UpdateItem(1, v.ID, &cart.UpdateItemRequest{Quantity: 1})
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestRemoveItemNotFound(t *testing.T) {
	svc, db := newCartService(t)
	v := seedVariant(t, db, "sku-1", 100000, 10, true)

	require.NoError(t, svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 1}))
	require.NoError(t, svc.RemoveItem(1, v.ID))

	err := svc.RemoveItem(1, v.ID)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, db := newCartService(t)
	v := seedVariant(t, db, "sku-1", 100000, 10, true)

	require.NoError(t, svc.AddItem(1, &cart.AddItemRequest{VariantID: v.ID, Quantity: 2}))
	require.NoError(t, svc.AddItem(2, &cart.AddItemRequest{VariantID: v.ID, Quantity: 5}))
	require.NoError(t, svc.ClearCart(1))

	resp, err := svc.GetCart(2)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)
}

func TestCartTotals(t *testing.T) {
	svc, db := newCartService(t)
	a := seedVariant(t, db, "sku-a", 100000, 10, true)
	b := seedVariant(t, db, "sku-b", 50000, 10, true)

	require.NoError(t, svc.AddItem(1, &cart.AddItemRequest{VariantID: a.ID, Quantity: 2}))
	require.NoError(t, svc.AddItem(1, &cart.AddItemRequest{VariantID: b.ID, Quantity: 1}))

	resp, err := svc.GetCart(1)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Totals.ItemCount)
	assert.Equal(t, 3, resp.Totals.TotalQuantity)
	assert.Equal(t, int64(250000), resp.Totals.SubTotal)
}

func TestAbandonedCartsWindow(t *testing.T) {
	svc, db := newCartService(t)
	v := seedVariant(t, db, "sku-1", 100000, 99, true)

	for userID := uint(1); userID <= 3; userID++ {
		require.NoError(t, svc.AddItem(userID, &cart.AddItemRequest{VariantID: v.ID, Quantity: 1}))
	}

	backdateCart := func(userID uint, age time.Duration) {
		require.NoError(t, db.Model(&cart.CartItem{}).Where("user_id = ?", userID).
			UpdateColumn("updated_at", time.Now().Add(-age)).Error)
	}
	backdateCart(1, 30*time.Minute) // too fresh
	backdateCart(2, 3*time.Hour)    // inside the window
	backdateCart(3, 100*time.Hour)  // too old, already notified

	userIDs, err := svc.AbandonedCarts(time.Hour, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, userIDs)
}
