package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const couponCols = `id, code, description, discount_type, discount_value, max_discount_cents,
	min_order_cents, usage_limit, valid_from, valid_to, active, created_at, updated_at`

func scanCoupon(row pgx.Row) (Coupon, error) {
	var c Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue, &c.MaxDiscountCents,
		&c.MinOrderCents, &c.UsageLimit, &c.ValidFrom, &c.ValidTo, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Coupon{}, ErrNotFound
	}
	return c, err
}

func (r *Repo) ListCoupons(ctx context.Context) ([]Coupon, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+couponCols+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CouponByCode(ctx context.Context, code string) (Coupon, error) {
	return scanCoupon(r.DB.QueryRow(ctx, `SELECT `+couponCols+` FROM coupons WHERE code=$1`, code))
}

func (r *Repo) CreateCoupon(ctx context.Context, c Coupon) (Coupon, error) {
	c.ID = uuid.NewString()
	row := r.DB.QueryRow(ctx, `
		INSERT INTO coupons(id, code, description, discount_type, discount_value, max_discount_cents,
			min_order_cents, usage_limit, valid_from, valid_to, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,TRUE)
		RETURNING `+couponCols,
		c.ID, c.Code, c.Description, string(c.DiscountType), c.DiscountValue, c.MaxDiscountCents,
		c.MinOrderCents, c.UsageLimit, c.ValidFrom, c.ValidTo)
	out, err := scanCoupon(row)
	return out, mapPgErr(err)
}

func (r *Repo) UpdateCoupon(ctx context.Context, id string, c Coupon) (Coupon, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE coupons SET code=$2, description=$3, discount_type=$4, discount_value=$5,
			max_discount_cents=$6, min_order_cents=$7, usage_limit=$8, valid_from=$9, valid_to=$10,
			updated_at=NOW()
		WHERE id=$1
		RETURNING `+couponCols,
		id, c.Code, c.Description, string(c.DiscountType), c.DiscountValue, c.MaxDiscountCents,
		c.MinOrderCents, c.UsageLimit, c.ValidFrom, c.ValidTo)
	out, err := scanCoupon(row)
	return out, mapPgErr(err)
}

func (r *Repo) SetCouponActive(ctx context.Context, id string, active bool) error {
	return execOne(ctx, r.DB, `UPDATE coupons SET active=$2, updated_at=NOW() WHERE id=$1`, id, active)
}

func (r *Repo) DeleteCoupon(ctx context.Context, id string) error {
	return execOne(ctx, r.DB, `DELETE FROM coupons WHERE id=$1`, id)
}

// Usages maps coupon id to how many times userID has redeemed it.
func (r *Repo) Usages(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT coupon_id, used FROM coupon_usages WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// RedeemTx counts one use of c by userID inside tx. The upsert holds the usage row lock,
// so concurrent checkouts cannot both slip under the limit.
func RedeemTx(ctx context.Context, tx pgx.Tx, c Coupon, userID string) error {
	var used int
	err := tx.QueryRow(ctx, `
		INSERT INTO coupon_usages(coupon_id, user_id, used, last_used) VALUES ($1,$2,1,NOW())
		ON CONFLICT (coupon_id, user_id) DO UPDATE
			SET used = coupon_usages.used + 1, last_used = NOW()
		RETURNING used`, c.ID, userID).Scan(&used)
	if err != nil {
		return fmt.Errorf("redeem coupon %s: %w", c.Code, err)
	}
	if c.UsageLimit > 0 && used > c.UsageLimit {
		return fmt.Errorf("%w: usage limit reached", ErrRejected)
	}
	return nil
}

const offerCols = `id, name, scope, target_id, percent, reward_cents, valid_from, valid_to, active, created_at, updated_at`

func scanOffer(row pgx.Row) (Offer, error) {
	var o Offer
	err := row.Scan(&o.ID, &o.Name, &o.Scope, &o.TargetID, &o.Percent, &o.RewardCents,
		&o.ValidFrom, &o.ValidTo, &o.Active, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Offer{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) queryOffers(ctx context.Context, q string, args ...any) ([]Offer, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) ListOffers(ctx context.Context) ([]Offer, error) {
	return r.queryOffers(ctx, `SELECT `+offerCols+` FROM offers ORDER BY created_at DESC`)
}

func (r *Repo) LiveOffers(ctx context.Context, now time.Time) ([]Offer, error) {
	return r.queryOffers(ctx, `
		SELECT `+offerCols+` FROM offers
		WHERE active AND valid_from <= $1 AND valid_to >= $1`, now)
}

func (r *Repo) CreateOffer(ctx context.Context, o Offer) (Offer, error) {
	o.ID = uuid.NewString()
	return scanOffer(r.DB.QueryRow(ctx, `
		INSERT INTO offers(id, name, scope, target_id, percent, reward_cents, valid_from, valid_to, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,TRUE)
		RETURNING `+offerCols,
		o.ID, o.Name, string(o.Scope), o.TargetID, o.Percent, o.RewardCents, o.ValidFrom, o.ValidTo))
}

func (r *Repo) UpdateOffer(ctx context.Context, id string, o Offer) (Offer, error) {
	return scanOffer(r.DB.QueryRow(ctx, `
		UPDATE offers SET name=$2, scope=$3, target_id=$4, percent=$5, reward_cents=$6,
			valid_from=$7, valid_to=$8, updated_at=NOW()
		WHERE id=$1
		RETURNING `+offerCols,
		id, o.Name, string(o.Scope), o.TargetID, o.Percent, o.RewardCents, o.ValidFrom, o.ValidTo))
}

func (r *Repo) SetOfferActive(ctx context.Context, id string, active bool) error {
	return execOne(ctx, r.DB, `UPDATE offers SET active=$2, updated_at=NOW() WHERE id=$1`, id, active)
}

func (r *Repo) DeleteOffer(ctx context.Context, id string) error {
	return execOne(ctx, r.DB, `DELETE FROM offers WHERE id=$1`, id)
}

func execOne(ctx context.Context, db *pgxpool.Pool, q string, args ...any) error {
	ct, err := db.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrCodeTaken
	}
	return err
}
