// Package notify delivers customer notifications (order placed, status changes, refunds)
// to an external notification service.
package notify

import (
	"context"
	"log/slog"
	"time"
)

type Notification struct {
	UserID string            `json:"user_id"`
	Kind   string            `json:"kind"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
	SentAt time.Time         `json:"sent_at"`
}

const (
	KindOrderPlaced    = "order_placed"
	KindOrderStatus    = "order_status"
	KindReturnDecision = "return_decision"
	KindRefund         = "refund"
	KindReferral       = "referral"
)

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier is used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) error {
	slog.InfoContext(ctx, "notification", "user_id", n.UserID, "kind", n.Kind, "title", n.Title)
	return nil
}

// Send notifies and logs failures; notifications never fail the caller.
func Send(ctx context.Context, nt Notifier, n Notification) {
	if nt == nil {
		return
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}
	if err := nt.Notify(ctx, n); err != nil {
		slog.WarnContext(ctx, "notification failed", "user_id", n.UserID, "kind", n.Kind, "err", err)
	}
}
