package wallet

import "sort"

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

type Page struct {
	BalanceCents      int64         `json:"balance_cents"`
	Transactions      []Transaction `json:"transactions"`
	CurrentPage       int           `json:"current_page"`
	TotalPages        int           `json:"total_pages"`
	TotalTransactions int           `json:"total_transactions"`
	Limit             int           `json:"limit"`
}

// Paginate orders transactions newest first and returns the requested page.
// The input slice is not modified. Pages past the end are empty.
func Paginate(w Wallet, page, limit int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}

	sorted := make([]Transaction, len(w.Transactions))
	copy(sorted, w.Transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	total := len(sorted)
	out := Page{
		BalanceCents:      w.BalanceCents,
		Transactions:      []Transaction{},
		CurrentPage:       page,
		TotalPages:        (total + limit - 1) / limit,
		TotalTransactions: total,
		Limit:             limit,
	}

	start := (page - 1) * limit
	if start >= total {
		return out
	}
	end := start + limit
	if end > total {
		end = total
	}
	out.Transactions = sorted[start:end]
	return out
}
