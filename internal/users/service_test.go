package users

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/promo"
)

var now = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

type memStore struct {
	users        map[string]User
	blockedReads int
	rewards      map[string]int64
}

func (m *memStore) List(_ context.Context, search string, page, limit int) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Name+u.Email), strings.ToLower(search)) {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}
func (m *memStore) Get(_ context.Context, id string) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}
func (m *memStore) SetBlocked(_ context.Context, id string, blocked bool) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Blocked = blocked
	m.users[id] = u
	return nil
}
func (m *memStore) IsBlocked(_ context.Context, id string) (bool, error) {
	m.blockedReads++
	return m.users[id].Blocked, nil
}
func (m *memStore) Redeem(_ context.Context, userID, code string, reward int64) (string, error) {
	u := m.users[userID]
	if u.ReferredBy != "" {
		return "", ErrReferral
	}
	for _, ref := range m.users {
		if ref.ReferralCode == code {
			u.ReferredBy = ref.ID
			m.users[userID] = u
			m.rewards[userID] += reward
			m.rewards[ref.ID] += reward
			return ref.ID, nil
		}
	}
	return "", ErrReferral
}

type memCache map[string][]byte

func (c memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := c[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}
func (c memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	c[key] = b
	return err
}
func (c memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c, k)
	}
	return nil
}

type offers []promo.Offer

func (o offers) LiveOffers(context.Context) ([]promo.Offer, error) { return o, nil }

type notes struct{ sent []notify.Notification }

func (n *notes) Notify(_ context.Context, x notify.Notification) error {
	n.sent = append(n.sent, x)
	return nil
}

func newService() (*Service, *memStore, *notes) {
	st := &memStore{
		users: map[string]User{
			"u1": {ID: "u1", Name: "Ann", Email: "ann@example.com", ReferralCode: "ANN1"},
			"u2": {ID: "u2", Name: "Bob", Email: "bob@example.com", ReferralCode: "BOB2"},
		},
		rewards: map[string]int64{},
	}
	nt := &notes{}
	referral := promo.Offer{Scope: promo.ScopeReferral, RewardCents: 2500, Active: true,
		ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour)}
	return &Service{Store: st, Cache: memCache{}, Offers: offers{referral}, Notifier: nt,
		Now: func() time.Time { return now }}, st, nt
}

func TestIsBlockedUsesCacheAndInvalidation(t *testing.T) {
	svc, st, _ := newService()
	ctx := context.Background()

	blocked, err := svc.IsBlocked(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, blocked)
	_, _ = svc.IsBlocked(ctx, "u1")
	assert.Equal(t, 1, st.blockedReads)

	require.NoError(t, svc.SetBlocked(ctx, "u1", true))
	blocked, err = svc.IsBlocked(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, 2, st.blockedReads)

	assert.ErrorIs(t, svc.SetBlocked(ctx, "nobody", true), ErrNotFound)
}

func TestListClamps(t *testing.T) {
	svc, _, _ := newService()
	p, err := svc.List(context.Background(), "bob", -3, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 10, p.Limit)
	require.Len(t, p.Users, 1)
	assert.Equal(t, "u2", p.Users[0].ID)
}

func TestRedeemReferral(t *testing.T) {
	svc, st, nt := newService()
	ctx := context.Background()

	reward, err := svc.RedeemReferral(ctx, "u1", " BOB2 ")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), reward)
	assert.Equal(t, int64(2500), st.rewards["u1"])
	assert.Equal(t, int64(2500), st.rewards["u2"])
	assert.Len(t, nt.sent, 2)

	_, err = svc.RedeemReferral(ctx, "u1", "BOB2")
	assert.ErrorIs(t, err, ErrReferral)

	ref, err := svc.Referral(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ref.Redeemed)
	assert.Equal(t, "ANN1", ref.Code)
	assert.True(t, ref.OfferActive)
}

func TestRedeemReferralNeedsOffer(t *testing.T) {
	svc, _, _ := newService()
	svc.Offers = offers{}
	_, err := svc.RedeemReferral(context.Background(), "u1", "BOB2")
	assert.ErrorIs(t, err, ErrReferral)

	_, err = svc.RedeemReferral(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrReferral)
}
