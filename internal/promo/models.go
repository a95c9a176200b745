package promo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrCodeTaken = errors.New("coupon code already exists")
	ErrInvalid   = errors.New("invalid input")
	// ErrRejected wraps the reason a coupon cannot be applied to an order.
	ErrRejected = errors.New("coupon rejected")
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

type Coupon struct {
	ID               string       `json:"id"`
	Code             string       `json:"code"`
	Description      string       `json:"description"`
	DiscountType     DiscountType `json:"discount_type"`
	DiscountValue    int64        `json:"discount_value"` // percent, or cents when flat
	MaxDiscountCents int64        `json:"max_discount_cents"`
	MinOrderCents    int64        `json:"min_order_cents"`
	UsageLimit       int          `json:"usage_limit"` // per user
	ValidFrom        time.Time    `json:"valid_from"`
	ValidTo          time.Time    `json:"valid_to"`
	Active           bool         `json:"active"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Check reports why the coupon cannot be used by a customer who already used it uses times.
func (c Coupon) Check(uses int, subtotal int64, now time.Time) error {
	switch {
	case !c.Active:
		return fmt.Errorf("%w: coupon is not active", ErrRejected)
	case now.Before(c.ValidFrom):
		return fmt.Errorf("%w: coupon is not valid yet", ErrRejected)
	case now.After(c.ValidTo):
		return fmt.Errorf("%w: coupon expired", ErrRejected)
	case subtotal < c.MinOrderCents:
		return fmt.Errorf("%w: minimum order value of %d not met", ErrRejected, c.MinOrderCents)
	case c.UsageLimit > 0 && uses >= c.UsageLimit:
		return fmt.Errorf("%w: usage limit reached", ErrRejected)
	}
	return nil
}

// Discount is the amount taken off subtotal, never more than subtotal itself.
func (c Coupon) Discount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	var d int64
	switch c.DiscountType {
	case DiscountPercentage:
		d = percentOf(subtotal, c.DiscountValue)
		if c.MaxDiscountCents > 0 && d > c.MaxDiscountCents {
			d = c.MaxDiscountCents
		}
	case DiscountFlat:
		d = c.DiscountValue
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		return 0
	}
	return d
}

func (c *Coupon) normalize() error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Description = strings.TrimSpace(c.Description)
	switch {
	case c.Code == "":
		return fmt.Errorf("%w: coupon code is required", ErrInvalid)
	case c.DiscountType != DiscountPercentage && c.DiscountType != DiscountFlat:
		return fmt.Errorf("%w: discount type must be percentage or flat", ErrInvalid)
	case c.DiscountValue <= 0:
		return fmt.Errorf("%w: discount value must be positive", ErrInvalid)
	case c.DiscountType == DiscountPercentage && c.DiscountValue > 100:
		return fmt.Errorf("%w: percentage discount cannot exceed 100", ErrInvalid)
	case c.MaxDiscountCents < 0 || c.MinOrderCents < 0:
		return fmt.Errorf("%w: amounts cannot be negative", ErrInvalid)
	case c.UsageLimit < 1:
		return fmt.Errorf("%w: usage limit must be at least 1", ErrInvalid)
	case !c.ValidTo.After(c.ValidFrom):
		return fmt.Errorf("%w: valid_to must be after valid_from", ErrInvalid)
	}
	return nil
}

type Scope string

const (
	ScopeProduct  Scope = "product"
	ScopeCategory Scope = "category"
	ScopeBrand    Scope = "brand"
	ScopeReferral Scope = "referral"
)

type Offer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Scope       Scope     `json:"scope"`
	TargetID    string    `json:"target_id,omitempty"`
	Percent     int       `json:"percent,omitempty"`
	RewardCents int64     `json:"reward_cents,omitempty"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidTo     time.Time `json:"valid_to"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (o Offer) LiveAt(now time.Time) bool {
	return o.Active && !now.Before(o.ValidFrom) && !now.After(o.ValidTo)
}

func (o *Offer) normalize() error {
	o.Name = strings.TrimSpace(o.Name)
	o.TargetID = strings.TrimSpace(o.TargetID)
	if o.Name == "" {
		return fmt.Errorf("%w: offer name is required", ErrInvalid)
	}
	if !o.ValidTo.After(o.ValidFrom) {
		return fmt.Errorf("%w: valid_to must be after valid_from", ErrInvalid)
	}
	switch o.Scope {
	case ScopeProduct, ScopeCategory, ScopeBrand:
		if o.TargetID == "" {
			return fmt.Errorf("%w: %s offer needs a target", ErrInvalid, o.Scope)
		}
		if o.Percent < 1 || o.Percent > 90 {
			return fmt.Errorf("%w: offer percent must be between 1 and 90", ErrInvalid)
		}
		o.RewardCents = 0
	case ScopeReferral:
		if o.RewardCents <= 0 {
			return fmt.Errorf("%w: referral reward must be positive", ErrInvalid)
		}
		o.TargetID, o.Percent = "", 0
	default:
		return fmt.Errorf("%w: unknown offer scope %q", ErrInvalid, o.Scope)
	}
	return nil
}

// BestPercent picks the largest live percentage among offers targeting the product,
// its category or its brand.
func BestPercent(offers []Offer, productID, categoryID, brandID string, now time.Time) int {
	best := 0
	for _, o := range offers {
		if !o.LiveAt(now) || o.Percent <= best {
			continue
		}
		switch {
		case o.Scope == ScopeProduct && o.TargetID == productID,
			o.Scope == ScopeCategory && o.TargetID == categoryID,
			o.Scope == ScopeBrand && o.TargetID == brandID:
			best = o.Percent
		}
	}
	return best
}

// ApplyPercent returns the unit price after taking pct percent off, rounded to the cent.
func ApplyPercent(priceCents int64, pct int) int64 {
	if pct <= 0 {
		return priceCents
	}
	return priceCents - percentOf(priceCents, int64(pct))
}

// ActiveReferral returns the live referral offer with the largest reward.
func ActiveReferral(offers []Offer, now time.Time) (Offer, bool) {
	var best Offer
	found := false
	for _, o := range offers {
		if o.Scope != ScopeReferral || !o.LiveAt(now) {
			continue
		}
		if !found || o.RewardCents > best.RewardCents {
			best, found = o, true
		}
	}
	return best, found
}

func percentOf(cents, pct int64) int64 {
	return decimal.NewFromInt(cents).
		Mul(decimal.NewFromInt(pct)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
