package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(m time.Month, d int) time.Time { return time.Date(2026, m, d, 12, 0, 0, 0, time.UTC) }

func sampleLines() []SaleLine {
	line := func(order, status, pay string, total int64, at time.Time, product, cat, brand string, qty int, lineTotal int64) SaleLine {
		return SaleLine{OrderID: order, Status: status, PaymentStatus: pay, OrderTotalCents: total, CreatedAt: at,
			ProductID: product, ProductName: product, CategoryID: cat, CategoryName: cat, BrandID: brand, BrandName: brand,
			Qty: qty, LineTotalCents: lineTotal}
	}
	return []SaleLine{
		line("o1", "DELIVERED", "PAID", 10000, day(3, 3), "p1", "shoes", "acme", 2, 8000),
		line("o1", "DELIVERED", "PAID", 10000, day(3, 3), "p2", "hats", "bolt", 1, 2000),
		line("o2", "PLACED", "PENDING", 5000, day(3, 10), "p1", "shoes", "acme", 1, 5000),
		line("o3", "CANCELLED", "PENDING", 3000, day(3, 10), "p2", "hats", "bolt", 3, 3000),
		line("o4", "RETURNED", "REFUNDED", 7000, day(3, 4), "p3", "shoes", "acme", 1, 7000),
	}
}

func TestAggregate(t *testing.T) {
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	r := Aggregate(sampleLines(), 42, PeriodWeek, from, to)

	assert.Equal(t, Totals{Users: 42, Orders: 4, RevenueCents: 10000, UnitsSold: 4}, r.Totals)
	assert.Equal(t, map[string]int{"DELIVERED": 1, "PLACED": 1, "CANCELLED": 1, "RETURNED": 1}, r.StatusCounts)

	require.Len(t, r.Sales, 2)
	assert.Equal(t, from, r.Sales[0].Start)
	assert.Equal(t, 1, r.Sales[0].Orders)
	assert.Equal(t, int64(10000), r.Sales[0].RevenueCents)
	assert.Equal(t, from.AddDate(0, 0, 7), r.Sales[1].Start)
	assert.Zero(t, r.Sales[1].Orders, "empty weeks are still listed")

	require.Len(t, r.TopProducts, 2)
	assert.Equal(t, Ranked{ID: "p1", Name: "p1", Units: 3, RevenueCents: 13000}, r.TopProducts[0])
	assert.Equal(t, "p2", r.TopProducts[1].ID)
	assert.Equal(t, "shoes", r.TopCategories[0].ID)
	assert.Equal(t, 3, r.TopCategories[0].Units)
	assert.Equal(t, "acme", r.TopBrands[0].ID)
}

func TestTopIsCappedAtTen(t *testing.T) {
	var lines []SaleLine
	for i := 0; i < 15; i++ {
		lines = append(lines, SaleLine{OrderID: "o", Status: "PLACED", PaymentStatus: "PENDING",
			ProductID: string(rune('a' + i)), Qty: i + 1, CreatedAt: day(3, 3)})
	}
	r := Aggregate(lines, 0, PeriodDay, day(3, 3), day(3, 4))
	require.Len(t, r.TopProducts, 10)
	assert.Equal(t, 15, r.TopProducts[0].Units)
}

func TestTruncate(t *testing.T) {
	ts := time.Date(2026, 3, 5, 17, 30, 0, 0, time.UTC) // Thursday
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), truncate(PeriodDay, ts))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), truncate(PeriodWeek, ts))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), truncate(PeriodMonth, ts))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), truncate(PeriodYear, ts))

	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), truncate(PeriodWeek, sunday))
}

func TestDefaultRangeAndCheck(t *testing.T) {
	now := time.Date(2026, 3, 5, 17, 30, 0, 0, time.UTC)
	for _, p := range []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear} {
		from, to := DefaultRange(p, now)
		assert.True(t, to.After(now), p)
		assert.NoError(t, CheckRange(p, from, to), p)
	}

	assert.ErrorIs(t, CheckRange("hour", day(3, 1), day(3, 2)), ErrInvalid)
	assert.ErrorIs(t, CheckRange(PeriodDay, day(3, 2), day(3, 2)), ErrInvalid)
	assert.ErrorIs(t, CheckRange(PeriodDay, day(1, 1), day(1, 1).AddDate(3, 0, 0)), ErrInvalid)
	assert.NoError(t, CheckRange(PeriodMonth, day(1, 1), day(1, 1).AddDate(3, 0, 0)))
}

func TestCheckRangeStopsCountingPastLimit(t *testing.T) {
	from := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, maxBuckets+1, countBuckets(PeriodDay, from, to, maxBuckets))
	assert.ErrorIs(t, CheckRange(PeriodDay, from, to), ErrInvalid)
	assert.Equal(t, 4, countBuckets(PeriodDay, day(3, 1), day(3, 4), maxBuckets))
}
