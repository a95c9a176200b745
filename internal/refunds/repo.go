package refunds

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/wallet"
)

type Repo struct{ DB postgres.DB }

// Settle restocks the order's items and refunds the wallet in one transaction.
// It returns false when the order was already settled.
func (r *Repo) Settle(ctx context.Context, p orders.SettlementPayload) (bool, error) {
	applied := false
	err := postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
			INSERT INTO order_settlements(order_id, kind, refunded_cents) VALUES ($1,$2,$3)
			ON CONFLICT (order_id) DO NOTHING`, p.OrderID, string(p.Kind), p.RefundCents)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return nil
		}

		// order_items is authoritative; the payload only carries a copy.
		if _, err := tx.Exec(ctx, `
			UPDATE variants v SET stock = v.stock + oi.qty, updated_at = NOW()
			FROM order_items oi
			WHERE oi.order_id = $1 AND v.id = oi.variant_id`, p.OrderID); err != nil {
			return err
		}

		if p.RefundCents > 0 {
			if _, err := wallet.ApplyTx(ctx, tx, wallet.Entry{
				UserID:      p.UserID,
				Kind:        wallet.KindCredit,
				AmountCents: p.RefundCents,
				Description: refundDescription(p),
				Reference:   "refund:" + p.OrderID,
			}); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				UPDATE orders SET payment_status=$2, updated_at=NOW() WHERE id=$1`,
				p.OrderID, string(orders.PaymentRefunded)); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	return applied, err
}

func refundDescription(p orders.SettlementPayload) string {
	if p.Kind == orders.StatusReturned {
		return "Refund for returned order " + p.OrderID
	}
	return "Refund for cancelled order " + p.OrderID
}
