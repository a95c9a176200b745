package orders

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/wallet"
)

var lineCols = []string{"variant_id", "product_id", "product_name", "category_id", "brand_id", "image",
	"size", "color", "qty", "stock", "available", "price_cents"}

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Repo{DB: mock}, mock
}

func draftOf(method PaymentMethod) func([]cart.Line) (Draft, error) {
	return func([]cart.Line) (Draft, error) {
		return Draft{Order: Order{
			Status:        StatusPlaced,
			PaymentMethod: method,
			PaymentStatus: PaymentPending,
			TotalCents:    5000,
			Items:         []Item{{VariantID: "v1", ProductName: "Runner", Qty: 2, LineTotalCents: 5000}},
		}}, nil
	}
}

func expectLockedCart(mock pgxmock.PgxPoolIface) {
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM cart_items ci.*FOR UPDATE OF ci, v`).WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(lineCols).
			AddRow("v1", "p1", "Runner", "c1", "b1", "", "42", "black", 2, 5, true, int64(2500)))
}

func TestRepoPlaceFailsWhenStockIsGone(t *testing.T) {
	repo, mock := newMockRepo(t)
	expectLockedCart(mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE variants SET stock = stock - $2")).WithArgs("v1", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := repo.Place(context.Background(), "u1", draftOf(PayCOD))
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.ErrorContains(t, err, "Runner")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPlaceRollsBackWalletOverdraft(t *testing.T) {
	repo, mock := newMockRepo(t)
	expectLockedCart(mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE variants SET stock = stock - $2")).WithArgs("v1", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_status_history").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO wallets").WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT balance_cents FROM wallets").WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"balance_cents"}).AddRow(int64(1000)))
	mock.ExpectRollback()

	_, err := repo.Place(context.Background(), "u1", draftOf(PayWallet))
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPlaceCommitsAndClearsCart(t *testing.T) {
	repo, mock := newMockRepo(t)
	expectLockedCart(mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE variants SET stock = stock - $2")).WithArgs("v1", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_status_history").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM cart_items").WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	o, err := repo.Place(context.Background(), "u1", draftOf(PayCOD))
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "u1", o.UserID)
	require.Len(t, o.History, 1)
	assert.Equal(t, StatusPlaced, o.History[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
