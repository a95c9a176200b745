package refunds

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

func TestRepoSettleTwiceAppliesOnce(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &Repo{DB: mock}
	p := orders.SettlementPayload{OrderID: "o1", UserID: "u1", Kind: orders.StatusCancelled}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_settlements").WithArgs("o1", "CANCELLED", int64(0)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE variants v SET stock").WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_settlements").WithArgs("o1", "CANCELLED", int64(0)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	applied, err := repo.Settle(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.Settle(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoSettleRefundsWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &Repo{DB: mock}
	p := orders.SettlementPayload{OrderID: "o2", UserID: "u1", Kind: orders.StatusReturned, RefundCents: 5000}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_settlements").WithArgs("o2", "RETURNED", int64(5000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE variants v SET stock").WithArgs("o2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(pgxmock.AnyArg(), "u1", "credit", int64(5000), "Refund for returned order o2", "refund:o2", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO wallets").WithArgs("u1").WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT balance_cents FROM wallets").WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"balance_cents"}).AddRow(int64(100)))
	mock.ExpectExec("UPDATE wallets SET balance_cents").WithArgs("u1", int64(5000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET payment_status").WithArgs("o2", "REFUNDED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	applied, err := repo.Settle(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
