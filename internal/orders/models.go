package orders

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnavailable       = errors.New("some items are no longer available")
	ErrOutOfStock        = errors.New("some items are out of stock")
	ErrInvalidTransition = errors.New("status change not allowed")
	ErrCODLimit          = errors.New("cash on delivery is not available for this amount")
	ErrReturnWindow      = errors.New("return window has closed")
	ErrInvalid           = errors.New("invalid input")
)

type PaymentMethod string

const (
	PayCOD    PaymentMethod = "COD"
	PayWallet PaymentMethod = "WALLET"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a Address) Complete() bool {
	for _, f := range []string{a.Name, a.Phone, a.Line1, a.City, a.PostalCode} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

type Order struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"user_id"`
	Status              Status        `json:"status"`
	PaymentMethod       PaymentMethod `json:"payment_method"`
	PaymentStatus       PaymentStatus `json:"payment_status"`
	SubtotalCents       int64         `json:"subtotal_cents"`
	OfferDiscountCents  int64         `json:"offer_discount_cents"`
	CouponCode          string        `json:"coupon_code,omitempty"`
	CouponDiscountCents int64         `json:"coupon_discount_cents"`
	ShippingCents       int64         `json:"shipping_cents"`
	TotalCents          int64         `json:"total_cents"`
	Address             Address       `json:"address"`
	ReturnReason        string        `json:"return_reason,omitempty"`
	DeliveredAt         *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
	Items               []Item        `json:"items"`
	History             []StatusEntry `json:"history,omitempty"`
}

// PaidCents is what the customer has actually paid and would get back on a refund.
func (o Order) PaidCents() int64 {
	if o.PaymentStatus == PaymentPaid {
		return o.TotalCents
	}
	return 0
}

type Item struct {
	ID             string `json:"id"`
	VariantID      string `json:"variant_id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Size           string `json:"size"`
	Color          string `json:"color"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	OfferPercent   int    `json:"offer_percent"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type StatusEntry struct {
	Status    Status    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"at"`
}

type Page struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	TotalOrders int     `json:"total_orders"`
	Limit       int     `json:"limit"`
}

const (
	defaultLimit = 10
	maxLimit     = 50
)

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func newPage(orders []Order, total, page, limit int) Page {
	if orders == nil {
		orders = []Order{}
	}
	return Page{
		Orders:      orders,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		TotalOrders: total,
		Limit:       limit,
	}
}
