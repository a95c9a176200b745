package wallet

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beginTx(t *testing.T) (pgxmock.PgxPoolIface, func() (bool, error), *Entry) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	e := &Entry{UserID: "u1", Kind: KindDebit, AmountCents: 500, Description: "Payment", Reference: "order:o1"}
	apply := func() (bool, error) {
		tx, err := mock.Begin(context.Background())
		require.NoError(t, err)
		return ApplyTx(context.Background(), tx, *e)
	}
	mock.ExpectBegin()
	return mock, apply, e
}

func TestApplyTxRejectsDebitOverBalance(t *testing.T) {
	mock, apply, _ := beginTx(t)
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(pgxmock.AnyArg(), "u1", "debit", int64(500), "Payment", "order:o1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO wallets").WithArgs("u1").WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT balance_cents FROM wallets").WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"balance_cents"}).AddRow(int64(300)))

	applied, err := apply()
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTxIgnoresDuplicateReference(t *testing.T) {
	mock, apply, _ := beginTx(t)
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	applied, err := apply()
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTxCreditMovesBalance(t *testing.T) {
	mock, apply, e := beginTx(t)
	e.Kind = KindCredit
	e.AmountCents = 200
	mock.ExpectExec("INSERT INTO wallet_transactions").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO wallets").WithArgs("u1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT balance_cents FROM wallets").WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"balance_cents"}).AddRow(int64(0)))
	mock.ExpectExec("UPDATE wallets SET balance_cents").WithArgs("u1", int64(200)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	applied, err := apply()
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTxRejectsNonPositiveAmount(t *testing.T) {
	mock, apply, e := beginTx(t)
	e.AmountCents = 0

	_, err := apply()
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
