// internal/domain/shipping/calculator.go
package shipping

import (
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
)

// Shipping method codes
const (
	MethodFlat   = "flat"
	MethodWeight = "weight"
)

// Calculator computes shipping fees from configured rates. It is a
// pure function over its inputs; callers treat it as a collaborator
// with no I/O.
type Calculator struct {
	flatFee         int64
	perKgFee        int64
	remoteSurcharge int64
	freeThreshold   int64
	remoteProvinces map[string]bool
}

// NewCalculator creates a calculator from shipping configuration
func NewCalculator(cfg *config.Config) *Calculator {
	remote := make(map[string]bool, len(cfg.Shipping.RemoteProvinces))
	for _, p := range cfg.Shipping.RemoteProvinces {
		remote[normalizeProvince(p)] = true
	}
	return &Calculator{
		flatFee:         cfg.Shipping.FlatFee,
		perKgFee:        cfg.Shipping.PerKgFee,
		remoteSurcharge: cfg.Shipping.RemoteSurcharge,
		freeThreshold:   cfg.Shipping.FreeThreshold,
		remoteProvinces: remote,
	}
}

// Fee returns the shipping fee for a method, total parcel weight and
// destination province. Unknown method codes fall back to the flat
// rate. Weight-based fees round the weight up to whole kilograms.
func (c *Calculator) Fee(methodCode string, weightGrams int, province string) int64 {
	var fee int64
	switch methodCode {
	case MethodWeight:
		kg := int64(weightGrams) / 1000
		if int64(weightGrams)%1000 != 0 {
			kg++
		}
		if kg < 1 {
			kg = 1
		}
		fee = c.perKgFee * kg
	default:
		fee = c.flatFee
	}

	if c.remoteProvinces[normalizeProvince(province)] {
		fee += c.remoteSurcharge
	}
	return fee
}

// FeeForOrder applies the free-shipping threshold on top of Fee. A
// zero threshold disables free shipping.
func (c *Calculator) FeeForOrder(methodCode string, weightGrams int, province string, subtotal int64) int64 {
	if c.freeThreshold > 0 && subtotal >= c.freeThreshold {
		return 0
	}
	return c.Fee(methodCode, weightGrams, province)
}

func normalizeProvince(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
