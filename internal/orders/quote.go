package orders

import (
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/promo"
)

type Fees struct {
	ShippingCents int64
	// FreeOverCents waives shipping when the offer-priced subtotal reaches it. Zero disables.
	FreeOverCents int64
}

func (f Fees) shippingFor(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	if f.FreeOverCents > 0 && subtotal >= f.FreeOverCents {
		return 0
	}
	return f.ShippingCents
}

type Quote struct {
	Lines               []cart.Line `json:"lines"`
	SubtotalCents       int64       `json:"subtotal_cents"`
	OfferDiscountCents  int64       `json:"offer_discount_cents"`
	CouponCode          string      `json:"coupon_code,omitempty"`
	CouponDiscountCents int64       `json:"coupon_discount_cents"`
	ShippingCents       int64       `json:"shipping_cents"`
	TotalCents          int64       `json:"total_cents"`
}

// BuildQuote prices an offer-priced cart view with an optional coupon.
func BuildQuote(v cart.View, c *promo.Coupon, fees Fees) Quote {
	q := Quote{
		Lines:              v.Lines,
		SubtotalCents:      v.SubtotalCents,
		OfferDiscountCents: v.OfferSavingsCents,
		ShippingCents:      fees.shippingFor(v.SubtotalCents),
	}
	if c != nil {
		q.CouponCode = c.Code
		q.CouponDiscountCents = c.Discount(v.SubtotalCents)
	}
	q.TotalCents = q.SubtotalCents - q.CouponDiscountCents + q.ShippingCents
	return q
}

func (q Quote) items() []Item {
	out := make([]Item, 0, len(q.Lines))
	for _, l := range q.Lines {
		if !l.Available {
			continue
		}
		out = append(out, Item{
			VariantID:      l.VariantID,
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			Size:           l.Size,
			Color:          l.Color,
			Qty:            l.Qty,
			UnitPriceCents: l.OfferPriceCents,
			OfferPercent:   l.OfferPercent,
			LineTotalCents: l.LineTotalCents,
		})
	}
	return out
}
