package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Store interface {
	ListCoupons(ctx context.Context) ([]Coupon, error)
	CouponByCode(ctx context.Context, code string) (Coupon, error)
	CreateCoupon(ctx context.Context, c Coupon) (Coupon, error)
	UpdateCoupon(ctx context.Context, id string, c Coupon) (Coupon, error)
	SetCouponActive(ctx context.Context, id string, active bool) error
	DeleteCoupon(ctx context.Context, id string) error
	Usages(ctx context.Context, userID string) (map[string]int, error)

	ListOffers(ctx context.Context) ([]Offer, error)
	LiveOffers(ctx context.Context, now time.Time) ([]Offer, error)
	CreateOffer(ctx context.Context, o Offer) (Offer, error)
	UpdateOffer(ctx context.Context, id string, o Offer) (Offer, error)
	SetOfferActive(ctx context.Context, id string, active bool) error
	DeleteOffer(ctx context.Context, id string) error
}

type Service struct {
	Store Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) Coupons(ctx context.Context) ([]Coupon, error) { return s.Store.ListCoupons(ctx) }

func (s *Service) CreateCoupon(ctx context.Context, c Coupon) (Coupon, error) {
	if err := c.normalize(); err != nil {
		return Coupon{}, err
	}
	return s.Store.CreateCoupon(ctx, c)
}

func (s *Service) UpdateCoupon(ctx context.Context, id string, c Coupon) (Coupon, error) {
	if err := c.normalize(); err != nil {
		return Coupon{}, err
	}
	return s.Store.UpdateCoupon(ctx, id, c)
}

func (s *Service) SetCouponActive(ctx context.Context, id string, active bool) error {
	return s.Store.SetCouponActive(ctx, id, active)
}

func (s *Service) DeleteCoupon(ctx context.Context, id string) error {
	return s.Store.DeleteCoupon(ctx, id)
}

// Available lists coupons userID could apply right now, ignoring minimum order value.
func (s *Service) Available(ctx context.Context, userID string) ([]Coupon, error) {
	all, err := s.Store.ListCoupons(ctx)
	if err != nil {
		return nil, err
	}
	used, err := s.Store.Usages(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := []Coupon{}
	for _, c := range all {
		if c.Check(used[c.ID], c.MinOrderCents, now) == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// Resolve finds the coupon for code and returns it with its discount on subtotal.
// An empty code resolves to no coupon.
func (s *Service) Resolve(ctx context.Context, userID, code string, subtotal int64) (*Coupon, int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, 0, nil
	}
	c, err := s.Store.CouponByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return nil, 0, fmt.Errorf("%w: coupon not found", ErrRejected)
	}
	if err != nil {
		return nil, 0, err
	}
	used, err := s.Store.Usages(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if err := c.Check(used[c.ID], subtotal, s.now()); err != nil {
		return nil, 0, err
	}
	return &c, c.Discount(subtotal), nil
}

func (s *Service) Offers(ctx context.Context) ([]Offer, error) { return s.Store.ListOffers(ctx) }

func (s *Service) LiveOffers(ctx context.Context) ([]Offer, error) {
	return s.Store.LiveOffers(ctx, s.now())
}

func (s *Service) CreateOffer(ctx context.Context, o Offer) (Offer, error) {
	if err := o.normalize(); err != nil {
		return Offer{}, err
	}
	return s.Store.CreateOffer(ctx, o)
}

func (s *Service) UpdateOffer(ctx context.Context, id string, o Offer) (Offer, error) {
	if err := o.normalize(); err != nil {
		return Offer{}, err
	}
	return s.Store.UpdateOffer(ctx, id, o)
}

func (s *Service) SetOfferActive(ctx context.Context, id string, active bool) error {
	return s.Store.SetOfferActive(ctx, id, active)
}

func (s *Service) DeleteOffer(ctx context.Context, id string) error {
	return s.Store.DeleteOffer(ctx, id)
}
