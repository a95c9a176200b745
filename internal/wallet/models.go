package wallet

import "time"

type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

type Wallet struct {
	UserID       string        `json:"user_id"`
	BalanceCents int64         `json:"balance_cents"`
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	Reference   string    `json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Entry is a ledger movement requested by another domain (refund, referral, checkout).
type Entry struct {
	UserID      string
	Kind        Kind
	AmountCents int64
	Description string
	// Reference makes the entry idempotent; empty means always apply.
	Reference string
}
