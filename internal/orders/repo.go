package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/promo"
	"github.com/ariefcatur/go-storefront/internal/wallet"
)

type Repo struct{ DB postgres.DB }

// Draft is a priced order ready to be written, plus the coupon it redeems.
type Draft struct {
	Order  Order
	Coupon *promo.Coupon
}

// Change is one status transition decided by the service.
type Change struct {
	To            Status
	Note          string
	Actor         string
	ReturnReason  string
	PaymentStatus PaymentStatus // empty keeps the current one
	Delivered     bool
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Place locks the cart's variants, lets build price and validate them, then in the same
// transaction decrements stock, writes the order, takes wallet payment, redeems the coupon
// and empties the cart.
func (r *Repo) Place(ctx context.Context, userID string, build func(lines []cart.Line) (Draft, error)) (Order, error) {
	var out Order
	err := postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		lines, err := cart.LoadLines(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		d, err := build(lines)
		if err != nil {
			return err
		}
		o := d.Order
		o.ID = uuid.NewString()
		o.UserID = userID
		now := time.Now().UTC()
		o.CreatedAt, o.UpdatedAt = now, now

		for _, it := range o.Items {
			ct, err := tx.Exec(ctx, `UPDATE variants SET stock = stock - $2, updated_at = NOW() WHERE id=$1 AND stock >= $2`,
				it.VariantID, it.Qty)
			if err != nil {
				return err
			}
			if ct.RowsAffected() != 1 {
				return fmt.Errorf("%w: %s", ErrOutOfStock, it.ProductName)
			}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO orders(id, user_id, status, payment_method, payment_status, subtotal_cents,
				offer_discount_cents, coupon_code, coupon_discount_cents, shipping_cents, total_cents,
				address, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)`,
			o.ID, o.UserID, string(o.Status), string(o.PaymentMethod), string(o.PaymentStatus), o.SubtotalCents,
			o.OfferDiscountCents, o.CouponCode, o.CouponDiscountCents, o.ShippingCents, o.TotalCents,
			o.Address, now); err != nil {
			return err
		}
		for i := range o.Items {
			it := &o.Items[i]
			it.ID = uuid.NewString()
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items(id, order_id, variant_id, product_id, product_name, size, color,
					qty, unit_price_cents, offer_percent, line_total_cents)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
				it.ID, o.ID, it.VariantID, it.ProductID, it.ProductName, it.Size, it.Color,
				it.Qty, it.UnitPriceCents, it.OfferPercent, it.LineTotalCents); err != nil {
				return err
			}
		}
		first := StatusEntry{Status: o.Status, Note: "order placed", Actor: userID, CreatedAt: now}
		if err := appendHistory(ctx, tx, o.ID, first); err != nil {
			return err
		}
		o.History = []StatusEntry{first}

		if o.PaymentMethod == PayWallet {
			if _, err := wallet.ApplyTx(ctx, tx, wallet.Entry{
				UserID:      userID,
				Kind:        wallet.KindDebit,
				AmountCents: o.TotalCents,
				Description: "Payment for order " + o.ID,
				Reference:   "order:" + o.ID,
			}); err != nil {
				return err
			}
		}
		if d.Coupon != nil {
			if err := promo.RedeemTx(ctx, tx, *d.Coupon, userID); err != nil {
				return err
			}
		}
		if err := cart.ClearTx(ctx, tx, userID); err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

// Transition locks order id, asks decide for the change and applies it with a history entry.
// It returns the order as it was before and after the change.
func (r *Repo) Transition(ctx context.Context, id string, decide func(o Order) (Change, error)) (before, after Order, err error) {
	err = postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if o.Items, err = loadItems(ctx, tx, o.ID); err != nil {
			return err
		}
		before = o

		ch, err := decide(o)
		if err != nil {
			return err
		}
		var pay any
		if ch.PaymentStatus != "" {
			pay = string(ch.PaymentStatus)
		}
		var reason any
		if ch.ReturnReason != "" {
			reason = ch.ReturnReason
		}
		if _, err := tx.Exec(ctx, `
			UPDATE orders SET status=$2,
				payment_status = COALESCE($3, payment_status),
				return_reason = COALESCE($4, return_reason),
				delivered_at = CASE WHEN $5 THEN NOW() ELSE delivered_at END,
				updated_at = NOW()
			WHERE id=$1`, id, string(ch.To), pay, reason, ch.Delivered); err != nil {
			return err
		}
		if err := appendHistory(ctx, tx, id, StatusEntry{Status: ch.To, Note: ch.Note, Actor: ch.Actor}); err != nil {
			return err
		}
		after, err = get(ctx, tx, id)
		return err
	})
	return before, after, err
}

func appendHistory(ctx context.Context, tx pgx.Tx, orderID string, e StatusEntry) error {
	at := e.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history(order_id, status, note, actor, created_at)
		VALUES ($1,$2,$3,$4,$5)`, orderID, string(e.Status), e.Note, e.Actor, at)
	return err
}

const orderCols = `id, user_id, status, payment_method, payment_status, subtotal_cents, offer_discount_cents,
	coupon_code, coupon_discount_cents, shipping_cents, total_cents, address, return_reason, delivered_at,
	created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.SubtotalCents,
		&o.OfferDiscountCents, &o.CouponCode, &o.CouponDiscountCents, &o.ShippingCents, &o.TotalCents,
		&o.Address, &o.ReturnReason, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	return get(ctx, r.DB, id)
}

func get(ctx context.Context, q querier, id string) (Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return Order{}, err
	}
	if o.Items, err = loadItems(ctx, q, id); err != nil {
		return Order{}, err
	}
	rows, err := q.Query(ctx, `
		SELECT status, note, actor, created_at FROM order_status_history
		WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	o.History = []StatusEntry{}
	for rows.Next() {
		var e StatusEntry
		if err := rows.Scan(&e.Status, &e.Note, &e.Actor, &e.CreatedAt); err != nil {
			return Order{}, err
		}
		o.History = append(o.History, e)
	}
	return o, rows.Err()
}

const itemCols = `id, variant_id, product_id, product_name, size, color, qty, unit_price_cents, offer_percent, line_total_cents`

func scanItem(rows pgx.Rows) (Item, error) {
	var it Item
	err := rows.Scan(&it.ID, &it.VariantID, &it.ProductID, &it.ProductName, &it.Size, &it.Color,
		&it.Qty, &it.UnitPriceCents, &it.OfferPercent, &it.LineTotalCents)
	return it, err
}

func loadItems(ctx context.Context, q querier, orderID string) ([]Item, error) {
	rows, err := q.Query(ctx, `SELECT `+itemCols+` FROM order_items WHERE order_id=$1 ORDER BY product_name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListByUser returns one page of userID's orders, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string, page, limit int) ([]Order, int, error) {
	return r.list(ctx, `user_id=$1`, userID, page, limit)
}

// ListAll filters by status when status is non-empty.
func (r *Repo) ListAll(ctx context.Context, status Status, page, limit int) ([]Order, int, error) {
	if status == "" {
		return r.list(ctx, `$1::text IS NULL`, nil, page, limit)
	}
	return r.list(ctx, `status=$1`, string(status), page, limit)
}

func (r *Repo) list(ctx context.Context, where string, arg any, page, limit int) ([]Order, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+` FROM orders WHERE `+where+`
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, arg, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Order{}
	idx := map[string]int{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		o.Items = []Item{}
		idx[o.ID] = len(out)
		ids = append(ids, o.ID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	irows, err := r.DB.Query(ctx, `SELECT order_id, `+itemCols+` FROM order_items WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return nil, 0, err
	}
	defer irows.Close()
	for irows.Next() {
		var orderID string
		var it Item
		if err := irows.Scan(&orderID, &it.ID, &it.VariantID, &it.ProductID, &it.ProductName, &it.Size, &it.Color,
			&it.Qty, &it.UnitPriceCents, &it.OfferPercent, &it.LineTotalCents); err != nil {
			return nil, 0, err
		}
		i := idx[orderID]
		out[i].Items = append(out[i].Items, it)
	}
	return out, total, irows.Err()
}
