package cart

import (
	"errors"
	"time"

	"github.com/ariefcatur/go-storefront/internal/promo"
)

var (
	ErrNotFound     = errors.New("item not found")
	ErrUnavailable  = errors.New("product is not available")
	ErrOutOfStock   = errors.New("out of stock")
	ErrLimitReached = errors.New("limit reached")
	ErrInvalidQty   = errors.New("quantity must be at least 1")
)

// Line is one cart row joined with the variant and product it points at.
type Line struct {
	VariantID   string `json:"variant_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	CategoryID  string `json:"category_id"`
	BrandID     string `json:"brand_id"`
	Image       string `json:"image,omitempty"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Qty         int    `json:"qty"`
	Stock       int    `json:"stock"`
	// Available is false once the product, its brand or its category is unlisted.
	Available bool `json:"available"`

	PriceCents      int64 `json:"price_cents"`
	OfferPercent    int   `json:"offer_percent"`
	OfferPriceCents int64 `json:"offer_price_cents"`
	LineTotalCents  int64 `json:"line_total_cents"`
}

type View struct {
	Lines         []Line `json:"lines"`
	ItemCount     int    `json:"item_count"`
	SubtotalCents int64  `json:"subtotal_cents"`
	// OfferSavingsCents is what offers took off list prices.
	OfferSavingsCents int64 `json:"offer_savings_cents"`
}

// Price fills offer prices and totals for lines. Unavailable lines are shown but not counted.
func Price(lines []Line, offers []promo.Offer, now time.Time) View {
	v := View{Lines: make([]Line, 0, len(lines))}
	for _, l := range lines {
		l.OfferPercent = promo.BestPercent(offers, l.ProductID, l.CategoryID, l.BrandID, now)
		l.OfferPriceCents = promo.ApplyPercent(l.PriceCents, l.OfferPercent)
		l.LineTotalCents = l.OfferPriceCents * int64(l.Qty)
		if l.Available {
			v.ItemCount += l.Qty
			v.SubtotalCents += l.LineTotalCents
			v.OfferSavingsCents += (l.PriceCents - l.OfferPriceCents) * int64(l.Qty)
		}
		v.Lines = append(v.Lines, l)
	}
	return v
}

// VariantState is what Add and SetQty need to validate a quantity.
type VariantState struct {
	Stock     int
	Available bool
	InCart    int
}

type WishItem struct {
	ProductID      string    `json:"product_id"`
	Name           string    `json:"name"`
	BrandName      string    `json:"brand_name"`
	Image          string    `json:"image,omitempty"`
	FromPriceCents int64     `json:"from_price_cents"`
	InStock        bool      `json:"in_stock"`
	AddedAt        time.Time `json:"added_at"`
}
