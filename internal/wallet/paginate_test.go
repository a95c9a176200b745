package wallet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWallet(n int) Wallet {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := Wallet{UserID: "u1", BalanceCents: 1234}
	// oldest first, so sorting has work to do
	for i := 0; i < n; i++ {
		w.Transactions = append(w.Transactions, Transaction{
			ID:          fmt.Sprintf("t%d", i),
			Kind:        KindCredit,
			AmountCents: int64(100 * (i + 1)),
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}
	return w
}

func TestPaginateSortsNewestFirst(t *testing.T) {
	p := Paginate(makeWallet(5), 1, 3)

	require.Len(t, p.Transactions, 3)
	assert.Equal(t, []string{"t4", "t3", "t2"}, ids(p.Transactions))
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 5, p.TotalTransactions)
	assert.Equal(t, int64(1234), p.BalanceCents)
}

func TestPaginateLastAndOutOfRangePages(t *testing.T) {
	w := makeWallet(5)

	last := Paginate(w, 2, 3)
	assert.Equal(t, []string{"t1", "t0"}, ids(last.Transactions))

	beyond := Paginate(w, 3, 3)
	assert.Empty(t, beyond.Transactions)
	assert.NotNil(t, beyond.Transactions)
	assert.Equal(t, 2, beyond.TotalPages)
}

func TestPaginateClampsArguments(t *testing.T) {
	w := makeWallet(60)

	p := Paginate(w, 0, 0)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Len(t, p.Transactions, DefaultLimit)

	big := Paginate(w, 1, 500)
	assert.Equal(t, MaxLimit, big.Limit)
	assert.Equal(t, 2, big.TotalPages)
}

func TestPaginateEmptyWalletAndInputUntouched(t *testing.T) {
	p := Paginate(Wallet{UserID: "u2"}, 1, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Transactions)

	w := makeWallet(3)
	_ = Paginate(w, 1, 10)
	assert.Equal(t, "t0", w.Transactions[0].ID)
}

type fakeStore struct {
	w   Wallet
	err error
}

func (f fakeStore) Load(context.Context, string) (Wallet, error) { return f.w, f.err }

func TestServiceHistory(t *testing.T) {
	svc := &Service{Store: fakeStore{w: makeWallet(4)}}
	p, err := svc.History(context.Background(), "u1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t0"}, ids(p.Transactions))

	boom := errors.New("db down")
	_, err = (&Service{Store: fakeStore{err: boom}}).History(context.Background(), "u1", 1, 10)
	assert.ErrorIs(t, err, boom)
}

func ids(txs []Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}
