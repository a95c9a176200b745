package refunds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/telemetry"
)

type Store interface {
	Settle(ctx context.Context, p orders.SettlementPayload) (bool, error)
}

// Deduper is satisfied by redisx.Dedup.
type Deduper interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

type Service struct {
	Store    Store
	Dedup    Deduper
	Notifier notify.Notifier
}

// HandleSettlement is installed as the consumer handler for the settlement topic.
func (s *Service) HandleSettlement(ctx context.Context, m kafkago.Message) error {
	// 1) route on the header when present, then decode the envelope
	if t := kafkax.Header(m, kafkax.HeaderEventType); t != "" && !settles(t) {
		return nil
	}
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		slog.Error("settlement: bad envelope, skipping", "offset", m.Offset, "err", err)
		return nil
	}
	if !settles(env.EventType) {
		return nil
	}

	// 2) dedup by event id; the settlement marker still guards the database if Redis is down
	if s.Dedup != nil {
		first, err := s.Dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			slog.Warn("settlement: dedup unavailable", "event_id", env.EventID, "err", err)
		} else if !first {
			return nil
		}
	}

	// 3) decode payload
	p, err := kafkax.UnwrapPayload[orders.SettlementPayload](env.Payload)
	if err != nil {
		slog.Error("settlement: bad payload, skipping", "event_id", env.EventID, "err", err)
		return nil
	}

	// 4) restock + refund atomically
	applied, err := s.Store.Settle(ctx, p)
	if err != nil {
		if s.Dedup != nil {
			_ = s.Dedup.Forget(ctx, env.EventID)
		}
		return fmt.Errorf("settle order %s: %w", p.OrderID, err)
	}
	if !applied {
		slog.Info("settlement: already settled", "order_id", p.OrderID)
		return nil
	}

	telemetry.RefundsSettled.WithLabelValues(string(p.Kind)).Inc()
	slog.Info("order settled", "order_id", p.OrderID, "kind", p.Kind, "refund_cents", p.RefundCents)
	if p.RefundCents > 0 {
		notify.Send(ctx, s.Notifier, notify.Notification{
			UserID: p.UserID,
			Kind:   notify.KindRefund,
			Title:  "Refund credited",
			Body:   fmt.Sprintf("%d cents were credited to your wallet for order %s.", p.RefundCents, p.OrderID),
			Data:   map[string]string{"order_id": p.OrderID},
		})
	}
	return nil
}

func settles(eventType string) bool {
	return eventType == orders.EventOrderCancelled || eventType == orders.EventReturnApproved
}
