// internal/domain/shipping/calculator_test.go
package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/storefront-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Shipping: config.ShippingConfig{
			FlatFee:         30000,
			PerKgFee:        5000,
			RemoteSurcharge: 20000,
			RemoteProvinces: []string{"Ha Giang", "Cao Bang"},
			FreeThreshold:   1000000,
		},
	}
}

func TestFeeFlat(t *testing.T) {
	calc := NewCalculator(testConfig())

	assert.Equal(t, int64(30000), calc.Fee(MethodFlat, 500, "Hanoi"))
	// unknown methods fall back to flat
	assert.Equal(t, int64(30000), calc.Fee("express", 500, "Hanoi"))
}

func TestFeeWeightBased(t *testing.T) {
	calc := NewCalculator(testConfig())

	// weight rounds up to whole kilograms, minimum one
	assert.Equal(t, int64(5000), calc.Fee(MethodWeight, 200, "Hanoi"))
	assert.Equal(t, int64(5000), calc.Fee(MethodWeight, 1000, "Hanoi"))
	assert.Equal(t, int64(10000), calc.Fee(MethodWeight, 1001, "Hanoi"))
	assert.Equal(t, int64(15000), calc.Fee(MethodWeight, 2500, "Hanoi"))
	assert.Equal(t, int64(5000), calc.Fee(MethodWeight, 0, "Hanoi"))
}

func TestFeeRemoteSurcharge(t *testing.T) {
	calc := NewCalculator(testConfig())

	assert.Equal(t, int64(50000), calc.Fee(MethodFlat, 500, "Ha Giang"))
	assert.Equal(t, int64(50000), calc.Fee(MethodFlat, 500, "  ha giang "))
	assert.Equal(t, int64(25000), calc.Fee(MethodWeight, 800, "Cao Bang"))
}

func TestFeeForOrderFreeThreshold(t *testing.T) {
	calc := NewCalculator(testConfig())

	assert.Equal(t, int64(0), calc.FeeForOrder(MethodFlat, 500, "Hanoi", 1000000))
	assert.Equal(t, int64(0), calc.FeeForOrder(MethodFlat, 500, "Ha Giang", 2000000))
	assert.Equal(t, int64(30000), calc.FeeForOrder(MethodFlat, 500, "Hanoi", 999999))
}

func TestFeeForOrderZeroThresholdDisablesFreeShipping(t *testing.T) {
	cfg := testConfig()
	cfg.Shipping.FreeThreshold = 0
	calc := NewCalculator(cfg)

	assert.Equal(t, int64(30000), calc.FeeForOrder(MethodFlat, 500, "Hanoi", 5000000))
}
