package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-storefront/internal/postgres"
)

var ErrInsufficientBalance = errors.New("insufficient wallet balance")

type Repo struct{ DB postgres.DB }

// Load returns the wallet with its full transaction list. A missing wallet has zero balance.
func (r *Repo) Load(ctx context.Context, userID string) (Wallet, error) {
	w := Wallet{UserID: userID, Transactions: []Transaction{}}
	err := r.DB.QueryRow(ctx, `SELECT balance_cents FROM wallets WHERE user_id=$1`, userID).Scan(&w.BalanceCents)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, kind, amount_cents, description, COALESCE(reference, ''), created_at
		FROM wallet_transactions WHERE user_id=$1`, userID)
	if err != nil {
		return Wallet{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Kind, &t.AmountCents, &t.Description, &t.Reference, &t.CreatedAt); err != nil {
			return Wallet{}, err
		}
		w.Transactions = append(w.Transactions, t)
	}
	return w, rows.Err()
}

// ApplyTx records e inside tx and moves the balance. It returns false when the reference
// was already applied. Debits fail with ErrInsufficientBalance instead of going negative.
func ApplyTx(ctx context.Context, tx pgx.Tx, e Entry) (bool, error) {
	if e.AmountCents <= 0 {
		return false, fmt.Errorf("wallet entry amount must be positive, got %d", e.AmountCents)
	}

	var ref any
	if e.Reference != "" {
		ref = e.Reference
	}
	ct, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions(id, user_id, kind, amount_cents, description, reference, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (reference) DO NOTHING`,
		uuid.NewString(), e.UserID, string(e.Kind), e.AmountCents, e.Description, ref, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO wallets(user_id, balance_cents) VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING`, e.UserID); err != nil {
		return false, err
	}

	var balance int64
	if err := tx.QueryRow(ctx, `SELECT balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`, e.UserID).Scan(&balance); err != nil {
		return false, err
	}
	delta := e.AmountCents
	if e.Kind == KindDebit {
		if balance < e.AmountCents {
			return false, ErrInsufficientBalance
		}
		delta = -delta
	}
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance_cents = balance_cents + $2, updated_at = NOW() WHERE user_id=$1`,
		e.UserID, delta); err != nil {
		return false, err
	}
	return true, nil
}
