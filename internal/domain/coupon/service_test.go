// internal/domain/coupon/service_test.go
package coupon_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"github.com/your-org/storefront-backend/internal/pkg/testutil"
)

func newCouponService(t *testing.T) (*coupon.Service, *gorm.DB) {
	db := testutil.NewDB(t)
	return coupon.NewService(db, testutil.NewConfig(t)), db
}

func TestCreateCouponNormalizesCode(t *testing.T) {
	svc, _ := newCouponService(t)

	created, err := svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "  save10 ", Type: coupon.TypePercent, Value: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", created.Code)

	// duplicate codes are rejected regardless of case
	_, err = svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "Save10", Type: coupon.TypeFixed, Value: 5000,
	})
	assert.True(t, errs.IsKind(err, errs.KindConflict))
}

func TestCreateCouponRejectsPercentOver100(t *testing.T) {
	svc, _ := newCouponService(t)

	_, err := svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "TOOMUCH", Type: coupon.TypePercent, Value: 150,
	})
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestValidateComputesDiscount(t *testing.T) {
	svc, _ := newCouponService(t)

	_, err := svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "PC20", Type: coupon.TypePercent, Value: 20,
	})
	require.NoError(t, err)
	_, err = svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "FIX50K", Type: coupon.TypeFixed, Value: 50000,
	})
	require.NoError(t, err)

	_, discount, err := svc.Validate("pc20", 200000)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), discount)

	_, discount, err = svc.Validate("FIX50K", 200000)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), discount)

	// fixed discount is capped at the subtotal
	_, discount, err = svc.Validate("FIX50K", 30000)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), discount)
}

func TestValidateRejections(t *testing.T) {
	svc, db := newCouponService(t)

	expired := time.Now().Add(-time.Hour)
	_, err := svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "OLD", Type: coupon.TypeFixed, Value: 1000, ExpiresAt: &expired,
	})
	require.NoError(t, err)

	bigspend, err := svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "BIG", Type: coupon.TypeFixed, Value: 1000, MinSubtotal: 500000,
	})
	require.NoError(t, err)

	_, _, err = svc.Validate("OLD", 100000)
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	_, _, err = svc.Validate("BIG", 100000)
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	_, _, err = svc.Validate("MISSING", 100000)
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	// deactivated coupons stop validating
	require.NoError(t, db.Model(bigspend).Update("is_active", false).Error)
	_, _, err = svc.Validate("BIG", 600000)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestValidateAndConsumeGuardsMaxUses(t *testing.T) {
	svc, db := newCouponService(t)

	created, err := svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "LIMIT2", Type: coupon.TypeFixed, Value: 10000, MaxUses: 2,
	})
	require.NoError(t, err)

	consume := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			_, _, err := svc.ValidateAndConsume(tx, "LIMIT2", 100000)
			return err
		})
	}

	require.NoError(t, consume())
	require.NoError(t, consume())

	err = consume()
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	var reloaded coupon.Coupon
	require.NoError(t, db.First(&reloaded, created.ID).Error)
	assert.Equal(t, 2, reloaded.UsedCount)
}

func TestUnlimitedCouponNeverExhausts(t *testing.T) {
	svc, db := newCouponService(t)

	_, err := svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "FOREVER", Type: coupon.TypeFixed, Value: 1000,
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, _, err := svc.ValidateAndConsume(tx, "FOREVER", 100000)
			return err
		})
		require.NoError(t, err)
	}
}

func TestReleaseReturnsOneUse(t *testing.T) {
	svc, db := newCouponService(t)

	created, err := svc.CreateCoupon(&coupon.CreateCouponRequest{
		Code: "ONCE", Type: coupon.TypeFixed, Value: 10000, MaxUses: 1,
	})
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, _, err := svc.ValidateAndConsume(tx, "ONCE", 100000)
		return err
	}))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Release(tx, created.ID)
	}))

	var reloaded coupon.Coupon
	require.NoError(t, db.First(&reloaded, created.ID).Error)
	assert.Equal(t, 0, reloaded.UsedCount)

	// releasing an unused coupon does not go negative
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Release(tx, created.ID)
	}))
	require.NoError(t, db.First(&reloaded, created.ID).Error)
	assert.Equal(t, 0, reloaded.UsedCount)
}
