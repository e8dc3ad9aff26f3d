package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceCalculator derives account balances from posted entries and keeps the
// cached current_balance column in step.
//
// The cache is never incremented: every resync recomputes from the entry set,
// so running it twice yields the same result as running it once.
type BalanceCalculator struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewBalanceCalculator creates a new BalanceCalculator.
func NewBalanceCalculator(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
) *BalanceCalculator {
	return &BalanceCalculator{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// Compute derives the current balance without touching the cache:
// opening balance + posted inflows - posted outflows.
func (c *BalanceCalculator) Compute(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := c.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	inflow, outflow, err := c.entryRepo.SumPosted(ctx, nil, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.OpeningBalance.Add(inflow).Sub(outflow), nil
}

// ResyncTx recomputes the balance and rewrites the cache inside an already
// open transaction. The account row is locked for the duration.
func (c *BalanceCalculator) ResyncTx(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error) {
	account, err := c.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	inflow, outflow, err := c.entryRepo.SumPosted(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := account.OpeningBalance.Add(inflow).Sub(outflow)

	err = c.accountRepo.UpdateCurrentBalance(ctx, tx, accountID, balance, time.Now().UTC())
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// Resync recomputes and rewrites the cached balance in its own transaction.
func (c *BalanceCalculator) Resync(ctx context.Context, accountID string) (decimal.Decimal, error) {
	tx, err := c.txManager.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	balance, err := c.ResyncTx(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}
