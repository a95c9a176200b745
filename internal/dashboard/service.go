package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-storefront/internal/redisx"
)

type Store interface {
	SaleLines(ctx context.Context, from, to time.Time) ([]SaleLine, error)
	CountUsers(ctx context.Context) (int, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

type Service struct {
	Store    Store
	Cache    Cache
	CacheTTL time.Duration
	Now      func() time.Time
}

// Report builds the sales report for [from, to). Zero times select DefaultRange.
func (s *Service) Report(ctx context.Context, period Period, from, to time.Time) (Report, error) {
	if period == "" {
		period = PeriodDay
	}
	if from.IsZero() || to.IsZero() {
		now := time.Now().UTC()
		if s.Now != nil {
			now = s.Now()
		}
		from, to = DefaultRange(period, now)
	}
	if err := CheckRange(period, from, to); err != nil {
		return Report{}, err
	}

	key := redisx.ReportKey(string(period), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if s.Cache != nil {
		var cached Report
		if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		} else if err != nil {
			slog.WarnContext(ctx, "report cache read", "err", err)
		}
	}

	var (
		lines []SaleLine
		users int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lines, err = s.Store.SaleLines(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.Store.CountUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	r := Aggregate(lines, users, period, from, to)
	if s.Cache != nil && s.CacheTTL > 0 {
		if err := s.Cache.SetJSON(ctx, key, r, s.CacheTTL); err != nil {
			slog.WarnContext(ctx, "report cache write", "err", err)
		}
	}
	return r, nil
}
