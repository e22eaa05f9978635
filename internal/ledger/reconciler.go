package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/storefront-debt-ledger/internal/domain/debt"
	"github.com/storefront-debt-ledger/internal/domain/expense"
	"github.com/storefront-debt-ledger/internal/domain/person"
	"github.com/storefront-debt-ledger/internal/platform/persistence"
)

// BalanceReconciler implements the Reconciler interface
type BalanceReconciler struct {
	txRunner     TxRunner
	accountRepo  debt.AccountRepository
	paymentRepo  debt.PaymentRepository
	expenseRepo  expense.Repository
	registry     person.Registry
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewBalanceReconciler creates the reconciler
func NewBalanceReconciler(
	txRunner TxRunner,
	accountRepo debt.AccountRepository,
	paymentRepo debt.PaymentRepository,
	expenseRepo expense.Repository,
	registry person.Registry,
	queryTimeout time.Duration,
	logger *slog.Logger,
) Reconciler {
	return &BalanceReconciler{
		txRunner:     txRunner,
		accountRepo:  accountRepo,
		paymentRepo:  paymentRepo,
		expenseRepo:  expenseRepo,
		registry:     registry,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// Recompute restates the person's balance from the expense and payment
// logs inside one transaction. The account row is locked for the duration
// so concurrent postings either land before the aggregation or after the
// restated balance, never in between.
func (r *BalanceReconciler) Recompute(ctx context.Context, personID string) (*debt.Account, error) {
	if personID == "" {
		return nil, debt.ErrEmptyPersonID
	}

	opCtx := ctx
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	parties, err := r.registry.PartiesFor(opCtx, personID)
	if err != nil {
		return nil, persistence.MapError(err)
	}

	var acc *debt.Account
	err = r.txRunner.ExecuteTx(opCtx, func(tx pgx.Tx) error {
		accountRepoTx := r.accountRepo.WithTx(tx)

		acc, err = accountRepoTx.GetByPersonID(opCtx, personID)
		if err != nil {
			if !errors.Is(err, debt.ErrAccountNotFound{}) {
				return err
			}
			// A person with expense history but no account yet gets one
			// bootstrapped here at the recomputed balance.
			acc, err = debt.NewAccount(personID)
			if err != nil {
				return err
			}
			if err := accountRepoTx.Create(opCtx, acc); err != nil {
				return err
			}
		}

		acc, err = accountRepoTx.LockForUpdate(opCtx, acc.ID)
		if err != nil {
			return err
		}

		expenseSum, err := r.expenseRepo.WithTx(tx).SumByParties(opCtx, parties)
		if err != nil {
			return err
		}
		paymentSum, err := r.paymentRepo.WithTx(tx).SumByAccountID(opCtx, acc.ID)
		if err != nil {
			return err
		}

		restated := expenseSum.Sub(paymentSum)
		if acc.Balance.Equal(restated) {
			return nil
		}

		r.logger.Warn("Balance drift corrected",
			"person_id", personID,
			"stored_balance", acc.Balance.String(),
			"restated_balance", restated.String())

		acc.Balance = restated
		return accountRepoTx.SetBalance(opCtx, acc.ID, restated)
	})
	if err != nil {
		r.logger.Error("Failed to recompute balance", "person_id", personID, "error", err)
		return nil, persistence.MapError(err)
	}

	r.logger.Info("Balance recomputed",
		"person_id", personID,
		"balance", acc.Balance.String(),
		"parties", len(parties))
	return acc, nil
}
