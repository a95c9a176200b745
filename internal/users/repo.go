package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/wallet"
)

type Repo struct{ DB *pgxpool.Pool }

const userCols = `id, name, email, phone, blocked, referral_code, COALESCE(referred_by, ''), created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Blocked, &u.ReferralCode, &u.ReferredBy, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// List matches search against name and email, newest users first.
func (r *Repo) List(ctx context.Context, search string, page, limit int) ([]User, int, error) {
	pattern := "%" + strings.TrimSpace(search) + "%"
	var total int
	if err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE name ILIKE $1 OR email ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, pattern, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *Repo) SetBlocked(ctx context.Context, id string, blocked bool) error {
	ct, err := r.DB.Exec(ctx, `UPDATE users SET blocked=$2 WHERE id=$1`, id, blocked)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsBlocked treats unknown ids as not blocked; identities are issued elsewhere.
func (r *Repo) IsBlocked(ctx context.Context, id string) (bool, error) {
	var blocked bool
	err := r.DB.QueryRow(ctx, `SELECT blocked FROM users WHERE id=$1`, id).Scan(&blocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return blocked, err
}

// Redeem links userID to the owner of code and credits both wallets with reward.
// It returns the referrer's id.
func (r *Repo) Redeem(ctx context.Context, userID, code string, reward int64) (string, error) {
	var referrer string
	err := postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		var referredBy *string
		err := tx.QueryRow(ctx, `SELECT referred_by FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&referredBy)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if referredBy != nil {
			return fmt.Errorf("%w: a referral code was already redeemed", ErrReferral)
		}

		err = tx.QueryRow(ctx, `SELECT id FROM users WHERE UPPER(referral_code)=UPPER($1)`, code).Scan(&referrer)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: invalid referral code", ErrReferral)
		}
		if err != nil {
			return err
		}
		if referrer == userID {
			return fmt.Errorf("%w: you cannot use your own referral code", ErrReferral)
		}

		if _, err := tx.Exec(ctx, `UPDATE users SET referred_by=$2 WHERE id=$1`, userID, referrer); err != nil {
			return err
		}
		for _, e := range []wallet.Entry{
			{UserID: userID, Kind: wallet.KindCredit, AmountCents: reward,
				Description: "Referral reward", Reference: "referral:" + userID + ":referee"},
			{UserID: referrer, Kind: wallet.KindCredit, AmountCents: reward,
				Description: "Referral reward for inviting a friend", Reference: "referral:" + userID + ":referrer"},
		} {
			if _, err := wallet.ApplyTx(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return referrer, nil
}
