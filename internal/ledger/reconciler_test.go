package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront-debt-ledger/internal/domain/debt"
)

type reconcilerFixture struct {
	accountRepo *MockAccountRepository
	paymentRepo *MockPaymentRepository
	expenseRepo *MockExpenseRepository
	registry    *MockRegistry
	reconciler  Reconciler
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	f := &reconcilerFixture{
		accountRepo: new(MockAccountRepository),
		paymentRepo: new(MockPaymentRepository),
		expenseRepo: new(MockExpenseRepository),
		registry:    new(MockRegistry),
	}
	f.reconciler = NewBalanceReconciler(
		fakeTxRunner{},
		f.accountRepo,
		f.paymentRepo,
		f.expenseRepo,
		f.registry,
		time.Second,
		newTestLogger(),
	)
	return f
}

func TestBalanceReconciler_Recompute(t *testing.T) {
	ctx := context.Background()
	parties := []string{"party-1", "party-2"}

	t.Run("drift is corrected from the logs", func(t *testing.T) {
		f := newReconcilerFixture(t)
		accID := uuid.New()
		// Stored balance disagrees with the logs
		acc := &debt.Account{ID: accID, PersonID: "person-1", Balance: d("10.00"), Version: 5}

		f.registry.On("PartiesFor", mock.Anything, "person-1").Return(parties, nil).Once()
		f.accountRepo.On("GetByPersonID", mock.Anything, "person-1").Return(acc, nil).Once()
		f.accountRepo.On("LockForUpdate", mock.Anything, accID).Return(acc, nil).Once()
		f.expenseRepo.On("SumByParties", mock.Anything, parties).Return(d("200.00"), nil).Once()
		f.paymentRepo.On("SumByAccountID", mock.Anything, accID).Return(d("80.00"), nil).Once()
		f.accountRepo.On("SetBalance", mock.Anything, accID, d("120.00")).Return(nil).Once()

		got, err := f.reconciler.Recompute(ctx, "person-1")
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(d("120.00")))

		f.accountRepo.AssertExpectations(t)
		f.expenseRepo.AssertExpectations(t)
		f.paymentRepo.AssertExpectations(t)
	})

	t.Run("matching balance is a no-op", func(t *testing.T) {
		f := newReconcilerFixture(t)
		accID := uuid.New()
		acc := &debt.Account{ID: accID, PersonID: "person-1", Balance: d("120.00"), Version: 5}

		f.registry.On("PartiesFor", mock.Anything, "person-1").Return(parties, nil).Once()
		f.accountRepo.On("GetByPersonID", mock.Anything, "person-1").Return(acc, nil).Once()
		f.accountRepo.On("LockForUpdate", mock.Anything, accID).Return(acc, nil).Once()
		f.expenseRepo.On("SumByParties", mock.Anything, parties).Return(d("200.00"), nil).Once()
		f.paymentRepo.On("SumByAccountID", mock.Anything, accID).Return(d("80.00"), nil).Once()

		got, err := f.reconciler.Recompute(ctx, "person-1")
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(d("120.00")))

		// Idempotence: no write when the stored balance already matches
		f.accountRepo.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing account is bootstrapped", func(t *testing.T) {
		f := newReconcilerFixture(t)

		f.registry.On("PartiesFor", mock.Anything, "person-2").Return([]string{"party-9"}, nil).Once()
		f.accountRepo.On("GetByPersonID", mock.Anything, "person-2").
			Return(nil, debt.ErrAccountNotFound{PersonID: "person-2"}).Once()
		boot := &debt.Account{ID: uuid.New(), PersonID: "person-2", Balance: d("0"), Version: 1}
		f.accountRepo.On("Create", mock.Anything, mock.AnythingOfType("*debt.Account")).Return(nil).Once()
		f.accountRepo.On("LockForUpdate", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(boot, nil).Once()
		f.expenseRepo.On("SumByParties", mock.Anything, []string{"party-9"}).Return(d("35.50"), nil).Once()
		f.paymentRepo.On("SumByAccountID", mock.Anything, boot.ID).Return(d("0"), nil).Once()
		f.accountRepo.On("SetBalance", mock.Anything, boot.ID, d("35.50")).Return(nil).Once()

		got, err := f.reconciler.Recompute(ctx, "person-2")
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(d("35.50")))
		f.accountRepo.AssertExpectations(t)
	})

	t.Run("empty person id", func(t *testing.T) {
		f := newReconcilerFixture(t)
		_, err := f.reconciler.Recompute(ctx, "")
		assert.ErrorIs(t, err, debt.ErrEmptyPersonID)
	})
}
