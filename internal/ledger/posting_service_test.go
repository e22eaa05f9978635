package ledger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/domain/outbox"
	"github.com/storefront-debt-ledger/internal/domain/person"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type postingFixture struct {
	accountRepo *MockAccountRepository
	paymentRepo *MockPaymentRepository
	expenseRepo *MockExpenseRepository
	outboxRepo  *MockOutboxRepository
	registry    *MockRegistry
	service     Service
}

func newPostingFixture(t *testing.T) *postingFixture {
	t.Helper()
	f := &postingFixture{
		accountRepo: new(MockAccountRepository),
		paymentRepo: new(MockPaymentRepository),
		expenseRepo: new(MockExpenseRepository),
		outboxRepo:  new(MockOutboxRepository),
		registry:    new(MockRegistry),
	}
	f.service = NewPostingService(
		fakeTxRunner{},
		f.accountRepo,
		f.paymentRepo,
		f.expenseRepo,
		f.outboxRepo,
		f.registry,
		time.Second,
		3,
		newTestLogger(),
	)
	return f
}

func (f *postingFixture) assertExpectations(t *testing.T) {
	f.accountRepo.AssertExpectations(t)
	f.paymentRepo.AssertExpectations(t)
	f.expenseRepo.AssertExpectations(t)
	f.outboxRepo.AssertExpectations(t)
	f.registry.AssertExpectations(t)
}

func TestPostingService_PostExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("successive expenses accumulate on the same account", func(t *testing.T) {
		f := newPostingFixture(t)
		acc := &debt.Account{ID: uuid.New(), PersonID: "person-1", Balance: d("100.00"), Version: 2}

		f.registry.On("Resolve", mock.Anything, "party-1").Return("person-1", nil).Twice()
		f.expenseRepo.On("Create", mock.Anything, mock.AnythingOfType("*expense.Transaction")).Return(nil).Twice()
		f.accountRepo.On("ApplyExpense", mock.Anything, "person-1", d("100.00")).
			Return(acc, nil).Once()
		accAfter := &debt.Account{ID: acc.ID, PersonID: "person-1", Balance: d("150.00"), Version: 3}
		f.accountRepo.On("ApplyExpense", mock.Anything, "person-1", d("50.00")).
			Return(accAfter, nil).Once()

		txn1, got1, err := f.service.PostExpense(ctx, d("100.00"), "groceries", "party-1", "")
		require.NoError(t, err)
		assert.True(t, got1.Balance.Equal(d("100.00")))
		assert.True(t, txn1.Amount.Equal(d("100.00")))

		_, got2, err := f.service.PostExpense(ctx, d("50.00"), "transport", "party-1", "bus tickets")
		require.NoError(t, err)
		assert.True(t, got2.Balance.Equal(d("150.00")))

		f.assertExpectations(t)
	})

	t.Run("unmapped party is rejected before any write", func(t *testing.T) {
		f := newPostingFixture(t)
		f.registry.On("Resolve", mock.Anything, "stranger").
			Return("", person.ErrUnmappedParty{ResponsiblePartyID: "stranger"}).Once()

		txn, acc, err := f.service.PostExpense(ctx, d("10.00"), "misc", "stranger", "")
		assert.Nil(t, txn)
		assert.Nil(t, acc)
		assert.ErrorIs(t, err, person.ErrUnmappedParty{})

		f.expenseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("invalid amount is rejected without resolving", func(t *testing.T) {
		f := newPostingFixture(t)

		_, _, err := f.service.PostExpense(ctx, decimal.Zero, "misc", "party-1", "")
		assert.ErrorIs(t, err, expense.ErrInvalidAmount)

		_, _, err = f.service.PostExpense(ctx, d("-5"), "misc", "party-1", "")
		assert.ErrorIs(t, err, expense.ErrInvalidAmount)

		f.registry.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("empty category is rejected", func(t *testing.T) {
		f := newPostingFixture(t)

		_, _, err := f.service.PostExpense(ctx, d("10.00"), "", "party-1", "")
		assert.ErrorIs(t, err, expense.ErrEmptyCategory)
	})
}

func TestPostingService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("full repayment drives balance to zero", func(t *testing.T) {
		f := newPostingFixture(t)
		accID := uuid.New()
		acc := &debt.Account{ID: accID, PersonID: "person-1", Balance: d("150.00"), Version: 3}

		f.accountRepo.On("LockForUpdate", mock.Anything, accID).Return(acc, nil).Once()
		f.accountRepo.On("Update", mock.Anything, acc).Return(nil).Once()
		f.paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*debt.PaymentRecord")).Return(nil).Once()
		f.outboxRepo.On("Create", mock.Anything, mock.AnythingOfType("*outbox.Message")).Return(nil).Once()

		record, err := f.service.RecordPayment(ctx, accID, d("150.00"), "paid in full", "receipts/42.jpg", "staff-7")
		require.NoError(t, err)
		assert.True(t, record.Amount.Equal(d("150.00")))
		assert.True(t, record.RemainingDebtAfter.IsZero())
		assert.Equal(t, "staff-7", record.ProcessedBy)
		assert.True(t, acc.Balance.IsZero())

		f.assertExpectations(t)
	})

	t.Run("overpayment is rejected and nothing is written", func(t *testing.T) {
		f := newPostingFixture(t)
		accID := uuid.New()
		acc := &debt.Account{ID: accID, PersonID: "person-1", Balance: d("150.00"), Version: 3}

		f.accountRepo.On("LockForUpdate", mock.Anything, accID).Return(acc, nil).Once()

		record, err := f.service.RecordPayment(ctx, accID, d("150.01"), "", "", "staff-7")
		assert.Nil(t, record)

		var insufficientErr debt.ErrInsufficientBalance
		require.ErrorAs(t, err, &insufficientErr)
		assert.True(t, insufficientErr.Balance.Equal(d("150.00")))
		assert.True(t, insufficientErr.Attempted.Equal(d("150.01")))

		f.paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.accountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("concurrent modification is retried and succeeds", func(t *testing.T) {
		f := newPostingFixture(t)
		accID := uuid.New()

		// A fresh account snapshot per attempt, as LockForUpdate rereads the row
		f.accountRepo.On("LockForUpdate", mock.Anything, accID).
			Return(&debt.Account{ID: accID, PersonID: "person-1", Balance: d("100.00"), Version: 3}, nil).Once()
		f.accountRepo.On("Update", mock.Anything, mock.AnythingOfType("*debt.Account")).
			Return(debt.ErrConcurrentModification{AccountID: accID}).Once()

		f.accountRepo.On("LockForUpdate", mock.Anything, accID).
			Return(&debt.Account{ID: accID, PersonID: "person-1", Balance: d("100.00"), Version: 4}, nil).Once()
		f.accountRepo.On("Update", mock.Anything, mock.AnythingOfType("*debt.Account")).
			Return(nil).Once()
		f.paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*debt.PaymentRecord")).Return(nil).Once()
		f.outboxRepo.On("Create", mock.Anything, mock.AnythingOfType("*outbox.Message")).Return(nil).Once()

		record, err := f.service.RecordPayment(ctx, accID, d("25.00"), "", "", "staff-7")
		require.NoError(t, err)
		assert.True(t, record.RemainingDebtAfter.Equal(d("75.00")))

		f.assertExpectations(t)
	})

	t.Run("retries exhausted surfaces conflict", func(t *testing.T) {
		f := newPostingFixture(t)
		accID := uuid.New()

		f.accountRepo.On("LockForUpdate", mock.Anything, accID).
			Return(&debt.Account{ID: accID, PersonID: "person-1", Balance: d("100.00"), Version: 3}, nil).Times(3)
		f.accountRepo.On("Update", mock.Anything, mock.AnythingOfType("*debt.Account")).
			Return(debt.ErrConcurrentModification{AccountID: accID}).Times(3)

		record, err := f.service.RecordPayment(ctx, accID, d("25.00"), "", "", "staff-7")
		assert.Nil(t, record)
		assert.ErrorIs(t, err, debt.ErrConcurrentModification{})

		f.assertExpectations(t)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newPostingFixture(t)
		accID := uuid.New()

		f.accountRepo.On("LockForUpdate", mock.Anything, accID).
			Return(nil, debt.ErrAccountNotFound{AccountID: accID}).Once()

		record, err := f.service.RecordPayment(ctx, accID, d("25.00"), "", "", "staff-7")
		assert.Nil(t, record)
		assert.ErrorIs(t, err, debt.ErrAccountNotFound{})

		f.assertExpectations(t)
	})

	t.Run("missing processor identity", func(t *testing.T) {
		f := newPostingFixture(t)

		record, err := f.service.RecordPayment(ctx, uuid.New(), d("25.00"), "", "", "")
		assert.Nil(t, record)
		assert.ErrorIs(t, err, debt.ErrEmptyProcessor)

		f.accountRepo.AssertNotCalled(t, "LockForUpdate", mock.Anything, mock.Anything)
	})
}

func TestPostingService_GetDebtAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newPostingFixture(t)
		acc := &debt.Account{ID: uuid.New(), PersonID: "person-1", Balance: d("42.00"), Version: 2}
		f.accountRepo.On("GetByPersonID", mock.Anything, "person-1").Return(acc, nil).Once()

		got, err := f.service.GetDebtAccount(ctx, "person-1")
		require.NoError(t, err)
		assert.Equal(t, acc, got)
		f.assertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newPostingFixture(t)
		f.accountRepo.On("GetByPersonID", mock.Anything, "ghost").
			Return(nil, debt.ErrAccountNotFound{PersonID: "ghost"}).Once()

		got, err := f.service.GetDebtAccount(ctx, "ghost")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, debt.ErrAccountNotFound{})
	})

	t.Run("empty person id", func(t *testing.T) {
		f := newPostingFixture(t)
		_, err := f.service.GetDebtAccount(ctx, "")
		assert.ErrorIs(t, err, debt.ErrEmptyPersonID)
	})
}

func TestPostingService_ListPaymentHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("returns records for existing account", func(t *testing.T) {
		f := newPostingFixture(t)
		accID := uuid.New()
		acc := &debt.Account{ID: accID, PersonID: "person-1", Balance: d("10.00"), Version: 4}
		records := []*debt.PaymentRecord{
			{ID: uuid.New(), DebtAccountID: accID, Amount: d("20.00"), RemainingDebtAfter: d("10.00")},
			{ID: uuid.New(), DebtAccountID: accID, Amount: d("70.00"), RemainingDebtAfter: d("30.00")},
		}

		f.accountRepo.On("GetByID", mock.Anything, accID).Return(acc, nil).Once()
		f.paymentRepo.On("ListByAccountID", mock.Anything, accID).Return(records, nil).Once()

		got, err := f.service.ListPaymentHistory(ctx, accID)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		f.assertExpectations(t)
	})

	t.Run("unknown account yields not found, not empty list", func(t *testing.T) {
		f := newPostingFixture(t)
		accID := uuid.New()
		f.accountRepo.On("GetByID", mock.Anything, accID).
			Return(nil, debt.ErrAccountNotFound{AccountID: accID}).Once()

		got, err := f.service.ListPaymentHistory(ctx, accID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, debt.ErrAccountNotFound{})
		f.paymentRepo.AssertNotCalled(t, "ListByAccountID", mock.Anything, mock.Anything)
	})
}

func TestPostingService_RecordPayment_OutboxFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newPostingFixture(t)
	accID := uuid.New()
	acc := &debt.Account{ID: accID, PersonID: "person-1", Balance: d("100.00"), Version: 3}
	dbErr := errors.New("outbox insert failed")

	f.accountRepo.On("LockForUpdate", mock.Anything, accID).Return(acc, nil).Once()
	f.accountRepo.On("Update", mock.Anything, acc).Return(nil).Once()
	f.paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*debt.PaymentRecord")).Return(nil).Once()
	f.outboxRepo.On("Create", mock.Anything, mock.AnythingOfType("*outbox.Message")).Return(dbErr).Once()

	record, err := f.service.RecordPayment(ctx, accID, d("25.00"), "", "", "staff-7")
	assert.Nil(t, record)
	assert.Error(t, err)

	f.assertExpectations(t)
}

// Guard against the outbox message drifting from the payment it describes
func TestOutboxMessageCarriesPaymentRecord(t *testing.T) {
	record, err := debt.NewPaymentRecord(uuid.New(), d("25.00"), d("75.00"), "part payment", "", "staff-7")
	require.NoError(t, err)

	msg, err := outbox.NewMessage(record)
	require.NoError(t, err)
	assert.Equal(t, record.ID, msg.PaymentID)
	assert.Equal(t, record.DebtAccountID, msg.DebtAccountID)
	assert.Equal(t, outbox.StatusPending, msg.Status)

	roundTripped, err := msg.GetPaymentRecord()
	require.NoError(t, err)
	assert.True(t, roundTripped.Amount.Equal(record.Amount))
	assert.True(t, roundTripped.RemainingDebtAfter.Equal(record.RemainingDebtAfter))
}
