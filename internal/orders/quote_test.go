package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/promo"
)

func TestBuildQuote(t *testing.T) {
	fees := Fees{ShippingCents: 4000, FreeOverCents: 100000}
	v := cart.View{
		Lines: []cart.Line{
			{VariantID: "v1", Qty: 2, PriceCents: 10000, OfferPercent: 10, OfferPriceCents: 9000, LineTotalCents: 18000, Available: true},
			{VariantID: "v2", Qty: 1, PriceCents: 500, OfferPriceCents: 500, LineTotalCents: 500, Available: false},
		},
		SubtotalCents:     18000,
		OfferSavingsCents: 2000,
	}

	q := BuildQuote(v, nil, fees)
	assert.Equal(t, int64(4000), q.ShippingCents)
	assert.Equal(t, int64(22000), q.TotalCents)
	assert.Len(t, q.items(), 1, "unavailable lines never become order items")
	assert.Equal(t, int64(9000), q.items()[0].UnitPriceCents)

	c := &promo.Coupon{Code: "FLAT5", DiscountType: promo.DiscountFlat, DiscountValue: 500}
	q = BuildQuote(v, c, fees)
	assert.Equal(t, "FLAT5", q.CouponCode)
	assert.Equal(t, int64(500), q.CouponDiscountCents)
	assert.Equal(t, int64(18000-500+4000), q.TotalCents)

	v.SubtotalCents = 100000
	assert.Zero(t, BuildQuote(v, nil, fees).ShippingCents, "free shipping at the threshold")
	assert.Zero(t, BuildQuote(cart.View{}, nil, fees).ShippingCents, "empty cart ships nothing")
}
