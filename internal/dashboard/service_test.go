package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct{ reads int }

func (m *memStore) SaleLines(context.Context, time.Time, time.Time) ([]SaleLine, error) {
	m.reads++
	return sampleLines(), nil
}

func (m *memStore) CountUsers(context.Context) (int, error) { return 7, nil }

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

func TestReportIsCached(t *testing.T) {
	st := &memStore{}
	svc := &Service{Store: st, Cache: memCache{}, CacheTTL: time.Minute,
		Now: func() time.Time { return day(3, 12) }}
	ctx := context.Background()

	r, err := svc.Report(ctx, PeriodWeek, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 7, r.Totals.Users)
	assert.Equal(t, int64(10000), r.Totals.RevenueCents)

	again, err := svc.Report(ctx, PeriodWeek, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, st.reads)
	assert.Equal(t, r.Totals, again.Totals)
}

func TestReportValidatesRange(t *testing.T) {
	svc := &Service{Store: &memStore{}}
	_, err := svc.Report(context.Background(), "decade", day(3, 1), day(3, 2))
	assert.ErrorIs(t, err, ErrInvalid)
}
