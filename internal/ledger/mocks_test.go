package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/domain/outbox"
)

// fakeTxRunner runs the transactional function directly; the mock
// repositories below ignore the tx handle anyway.
type fakeTxRunner struct{}

func (fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *debt.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*debt.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*debt.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) GetByPersonID(ctx context.Context, personID string) (*debt.Account, error) {
	args := m.Called(ctx, personID)
	if acc := args.Get(0); acc != nil {
		return acc.(*debt.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) ApplyExpense(ctx context.Context, personID string, amount decimal.Decimal) (*debt.Account, error) {
	args := m.Called(ctx, personID, amount)
	if acc := args.Get(0); acc != nil {
		return acc.(*debt.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *debt.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*debt.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*debt.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) debt.AccountRepository {
	return m
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, record *debt.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*debt.PaymentRecord, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*debt.PaymentRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*debt.PaymentRecord, error) {
	args := m.Called(ctx, accountID)
	if recs := args.Get(0); recs != nil {
		return recs.([]*debt.PaymentRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) SumByAccountID(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) WithTx(tx pgx.Tx) debt.PaymentRepository {
	return m
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, txn *expense.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*expense.Transaction, error) {
	args := m.Called(ctx, id)
	if txn := args.Get(0); txn != nil {
		return txn.(*expense.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockExpenseRepository) ListByParty(ctx context.Context, responsiblePartyID string, limit, offset int) ([]*expense.Transaction, error) {
	args := m.Called(ctx, responsiblePartyID, limit, offset)
	if txns := args.Get(0); txns != nil {
		return txns.([]*expense.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockExpenseRepository) SumByParties(ctx context.Context, responsiblePartyIDs []string) (decimal.Decimal, error) {
	args := m.Called(ctx, responsiblePartyIDs)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExpenseRepository) WithTx(tx pgx.Tx) expense.Repository {
	return m
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]*outbox.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status outbox.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, paymentID)
	if msg := args.Get(0); msg != nil {
		return msg.(*outbox.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Resolve(ctx context.Context, responsiblePartyID string) (string, error) {
	args := m.Called(ctx, responsiblePartyID)
	return args.String(0), args.Error(1)
}

func (m *MockRegistry) PartiesFor(ctx context.Context, personID string) ([]string, error) {
	args := m.Called(ctx, personID)
	if parties := args.Get(0); parties != nil {
		return parties.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}
