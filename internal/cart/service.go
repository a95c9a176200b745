package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/promo"
)

type Store interface {
	Lines(ctx context.Context, userID string) ([]Line, error)
	VariantState(ctx context.Context, userID, variantID string) (VariantState, error)
	SetQty(ctx context.Context, userID, variantID string, qty int) error
	Remove(ctx context.Context, userID, variantID string) error
	Wishlist(ctx context.Context, userID string) ([]WishItem, error)
	AddWish(ctx context.Context, userID, productID string) error
	RemoveWish(ctx context.Context, userID, productID string) error
}

type OfferSource interface {
	LiveOffers(ctx context.Context) ([]promo.Offer, error)
}

type Service struct {
	Store  Store
	Offers OfferSource
	MaxQty int
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) View(ctx context.Context, userID string) (View, error) {
	lines, err := s.Store.Lines(ctx, userID)
	if err != nil {
		return View{}, err
	}
	offers, err := s.Offers.LiveOffers(ctx)
	if err != nil {
		return View{}, err
	}
	return Price(lines, offers, s.now()), nil
}

// Add puts qty more units of variantID in the cart.
func (s *Service) Add(ctx context.Context, userID, variantID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQty
	}
	st, err := s.Store.VariantState(ctx, userID, variantID)
	if err != nil {
		return err
	}
	total := st.InCart + qty
	if err := s.check(st, total); err != nil {
		return err
	}
	return s.Store.SetQty(ctx, userID, variantID, total)
}

// SetQty sets the absolute quantity; zero or less removes the line.
func (s *Service) SetQty(ctx context.Context, userID, variantID string, qty int) error {
	if qty <= 0 {
		return s.Store.Remove(ctx, userID, variantID)
	}
	st, err := s.Store.VariantState(ctx, userID, variantID)
	if err != nil {
		return err
	}
	if err := s.check(st, qty); err != nil {
		return err
	}
	return s.Store.SetQty(ctx, userID, variantID, qty)
}

func (s *Service) check(st VariantState, qty int) error {
	if !st.Available {
		return ErrUnavailable
	}
	if qty > st.Stock {
		return fmt.Errorf("%w: only %d left", ErrOutOfStock, st.Stock)
	}
	if s.MaxQty > 0 && qty > s.MaxQty {
		return fmt.Errorf("%w: at most %d per item", ErrLimitReached, s.MaxQty)
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, userID, variantID string) error {
	return s.Store.Remove(ctx, userID, variantID)
}

func (s *Service) Wishlist(ctx context.Context, userID string) ([]WishItem, error) {
	return s.Store.Wishlist(ctx, userID)
}

func (s *Service) AddWish(ctx context.Context, userID, productID string) error {
	return s.Store.AddWish(ctx, userID, productID)
}

func (s *Service) RemoveWish(ctx context.Context, userID, productID string) error {
	return s.Store.RemoveWish(ctx, userID, productID)
}
