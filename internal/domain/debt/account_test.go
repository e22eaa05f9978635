package debt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestNewAccount(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		acc, err := NewAccount("person-1")
		require.NoError(t, err)
		assert.Equal(t, "person-1", acc.PersonID)
		assert.True(t, acc.Balance.IsZero())
		assert.Equal(t, 1, acc.Version)
	})

	t.Run("empty person id", func(t *testing.T) {
		acc, err := NewAccount("")
		assert.Nil(t, acc)
		assert.ErrorIs(t, err, ErrEmptyPersonID)
	})
}

func TestAccount_ApplyExpense(t *testing.T) {
	acc, err := NewAccount("person-1")
	require.NoError(t, err)

	t.Run("increases balance", func(t *testing.T) {
		require.NoError(t, acc.ApplyExpense(d("100.00")))
		require.NoError(t, acc.ApplyExpense(d("50.50")))
		assert.True(t, acc.Balance.Equal(d("150.50")), "balance is %s", acc.Balance)
		assert.Equal(t, 3, acc.Version)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		assert.ErrorIs(t, acc.ApplyExpense(decimal.Zero), ErrInvalidAmount)
		assert.ErrorIs(t, acc.ApplyExpense(d("-1")), ErrInvalidAmount)
		assert.True(t, acc.Balance.Equal(d("150.50")))
	})
}

func TestAccount_ApplyPayment(t *testing.T) {
	newAccountWithBalance := func(t *testing.T, balance string) *Account {
		acc, err := NewAccount("person-1")
		require.NoError(t, err)
		require.NoError(t, acc.ApplyExpense(d(balance)))
		return acc
	}

	t.Run("decreases balance", func(t *testing.T) {
		acc := newAccountWithBalance(t, "150.00")
		require.NoError(t, acc.ApplyPayment(d("100.00")))
		assert.True(t, acc.Balance.Equal(d("50.00")))
	})

	t.Run("full repayment reaches zero", func(t *testing.T) {
		acc := newAccountWithBalance(t, "150.00")
		require.NoError(t, acc.ApplyPayment(d("150.00")))
		assert.True(t, acc.Balance.IsZero())
	})

	t.Run("overpayment is rejected, not clamped", func(t *testing.T) {
		acc := newAccountWithBalance(t, "150.00")
		err := acc.ApplyPayment(d("150.01"))
		require.Error(t, err)

		var insufficientErr ErrInsufficientBalance
		require.ErrorAs(t, err, &insufficientErr)
		assert.True(t, insufficientErr.Balance.Equal(d("150.00")))
		assert.True(t, insufficientErr.Attempted.Equal(d("150.01")))

		// Balance unchanged after rejection
		assert.True(t, acc.Balance.Equal(d("150.00")))
	})

	t.Run("payment on zero balance is rejected", func(t *testing.T) {
		acc, err := NewAccount("person-1")
		require.NoError(t, err)
		assert.ErrorIs(t, acc.ApplyPayment(d("0.01")), ErrInsufficientBalance{})
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		acc := newAccountWithBalance(t, "10.00")
		assert.ErrorIs(t, acc.ApplyPayment(decimal.Zero), ErrInvalidAmount)
	})
}

func TestAccount_CanPay(t *testing.T) {
	acc, err := NewAccount("person-1")
	require.NoError(t, err)
	require.NoError(t, acc.ApplyExpense(d("25.00")))

	assert.True(t, acc.CanPay(d("25.00")))
	assert.True(t, acc.CanPay(d("10.00")))
	assert.False(t, acc.CanPay(d("25.01")))
}
