package promo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	coupons []Coupon
	used    map[string]int
	offers  []Offer
}

func (m *memStore) ListCoupons(context.Context) ([]Coupon, error) { return m.coupons, nil }
func (m *memStore) CouponByCode(_ context.Context, code string) (Coupon, error) {
	for _, c := range m.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}
func (m *memStore) CreateCoupon(_ context.Context, c Coupon) (Coupon, error) {
	for _, e := range m.coupons {
		if e.Code == c.Code {
			return Coupon{}, ErrCodeTaken
		}
	}
	c.ID = "new"
	m.coupons = append(m.coupons, c)
	return c, nil
}
func (m *memStore) UpdateCoupon(_ context.Context, id string, c Coupon) (Coupon, error) {
	c.ID = id
	return c, nil
}
func (m *memStore) SetCouponActive(context.Context, string, bool) error { return nil }
func (m *memStore) DeleteCoupon(context.Context, string) error          { return nil }
func (m *memStore) Usages(context.Context, string) (map[string]int, error) {
	return m.used, nil
}
func (m *memStore) ListOffers(context.Context) ([]Offer, error) { return m.offers, nil }
func (m *memStore) LiveOffers(_ context.Context, now time.Time) ([]Offer, error) {
	var out []Offer
	for _, o := range m.offers {
		if o.LiveAt(now) {
			out = append(out, o)
		}
	}
	return out, nil
}
func (m *memStore) CreateOffer(_ context.Context, o Offer) (Offer, error) {
	o.ID = "o-new"
	return o, nil
}
func (m *memStore) UpdateOffer(_ context.Context, id string, o Offer) (Offer, error) {
	o.ID = id
	return o, nil
}
func (m *memStore) SetOfferActive(context.Context, string, bool) error { return nil }
func (m *memStore) DeleteOffer(context.Context, string) error          { return nil }

func newService() (*Service, *memStore) {
	c := liveCoupon()
	c.ID = "c1"
	used := liveCoupon()
	used.ID, used.Code, used.UsageLimit = "c2", "ONCE", 1
	store := &memStore{coupons: []Coupon{c, used}, used: map[string]int{"c2": 1}}
	return &Service{Store: store, Now: func() time.Time { return now }}, store
}

func TestResolve(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	c, d, err := svc.Resolve(ctx, "u1", "", 10000)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Zero(t, d)

	c, d, err = svc.Resolve(ctx, "u1", " save10 ", 10000)
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, int64(1000), d)

	_, _, err = svc.Resolve(ctx, "u1", "ONCE", 10000)
	assert.ErrorIs(t, err, ErrRejected)

	_, _, err = svc.Resolve(ctx, "u1", "NOPE", 10000)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "not found")
}

func TestAvailableSkipsExhausted(t *testing.T) {
	svc, _ := newService()
	cs, err := svc.Available(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "SAVE10", cs[0].Code)
}

func TestCreateCouponNormalizesCode(t *testing.T) {
	svc, _ := newService()
	c := liveCoupon()
	c.Code = "welcome"
	out, err := svc.CreateCoupon(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME", out.Code)

	c.Code = "save10"
	_, err = svc.CreateCoupon(context.Background(), c)
	assert.ErrorIs(t, err, ErrCodeTaken)
}

func TestLiveOffersUsesClock(t *testing.T) {
	svc, store := newService()
	store.offers = []Offer{
		{ID: "on", Active: true, ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour)},
		{ID: "later", Active: true, ValidFrom: now.Add(time.Hour), ValidTo: now.Add(2 * time.Hour)},
	}
	offers, err := svc.LiveOffers(context.Background())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "on", offers[0].ID)
}
