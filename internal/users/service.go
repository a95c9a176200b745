package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/promo"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

type Store interface {
	List(ctx context.Context, search string, page, limit int) ([]User, int, error)
	Get(ctx context.Context, id string) (User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) error
	IsBlocked(ctx context.Context, id string) (bool, error)
	Redeem(ctx context.Context, userID, code string, reward int64) (string, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type OfferSource interface {
	LiveOffers(ctx context.Context) ([]promo.Offer, error)
}

type Service struct {
	Store    Store
	Cache    Cache
	Offers   OfferSource
	Notifier notify.Notifier
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) List(ctx context.Context, search string, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	us, total, err := s.Store.List(ctx, search, page, limit)
	if err != nil {
		return Page{}, err
	}
	if us == nil {
		us = []User{}
	}
	return Page{
		Users:       us,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		TotalUsers:  total,
		Limit:       limit,
	}, nil
}

func (s *Service) SetBlocked(ctx context.Context, id string, blocked bool) error {
	if err := s.Store.SetBlocked(ctx, id, blocked); err != nil {
		return err
	}
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, redisx.UserBlockedKey(id)); err != nil {
			slog.WarnContext(ctx, "blocked cache invalidate", "user_id", id, "err", err)
		}
	}
	return nil
}

// IsBlocked is consulted by the auth middleware on every request, so it goes through the cache.
func (s *Service) IsBlocked(ctx context.Context, id string) (bool, error) {
	key := redisx.UserBlockedKey(id)
	if s.Cache != nil {
		var blocked bool
		if ok, err := s.Cache.GetJSON(ctx, key, &blocked); err == nil && ok {
			return blocked, nil
		}
	}
	blocked, err := s.Store.IsBlocked(ctx, id)
	if err != nil {
		return false, err
	}
	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, key, blocked, redisx.TTLUserBlocked); err != nil {
			slog.WarnContext(ctx, "blocked cache write", "user_id", id, "err", err)
		}
	}
	return blocked, nil
}

func (s *Service) Referral(ctx context.Context, userID string) (Referral, error) {
	u, err := s.Store.Get(ctx, userID)
	if err != nil {
		return Referral{}, err
	}
	offers, err := s.Offers.LiveOffers(ctx)
	if err != nil {
		return Referral{}, err
	}
	ref := Referral{Code: u.ReferralCode, Redeemed: u.ReferredBy != ""}
	if o, ok := promo.ActiveReferral(offers, s.now()); ok {
		ref.RewardCents, ref.OfferActive = o.RewardCents, true
	}
	return ref, nil
}

// RedeemReferral credits the live referral reward to userID and the code's owner.
func (s *Service) RedeemReferral(ctx context.Context, userID, code string) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, fmt.Errorf("%w: referral code is required", ErrReferral)
	}
	offers, err := s.Offers.LiveOffers(ctx)
	if err != nil {
		return 0, err
	}
	offer, ok := promo.ActiveReferral(offers, s.now())
	if !ok {
		return 0, fmt.Errorf("%w: no referral offer is running", ErrReferral)
	}
	referrer, err := s.Store.Redeem(ctx, userID, code, offer.RewardCents)
	if err != nil {
		return 0, err
	}
	for _, uid := range []string{userID, referrer} {
		notify.Send(ctx, s.Notifier, notify.Notification{
			UserID: uid,
			Kind:   notify.KindReferral,
			Title:  "Referral reward",
			Body:   fmt.Sprintf("%d cents were added to your wallet.", offer.RewardCents),
		})
	}
	return offer.RewardCents, nil
}
