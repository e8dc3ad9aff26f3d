package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/infrastructure/metrics"
)

// TransferUseCase moves money between two accounts by posting a paired
// outflow and inflow in one transaction.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	balance     *BalanceCalculator
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	balance *BalanceCalculator,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		balance:     balance,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     metrics,
	}
}

// TransferInput represents input for a transfer between accounts.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	CreatedBy     string
}

// TransferResult holds the paired entries of a completed transfer. Both share
// the same Reference, which ties them together.
type TransferResult struct {
	Reference string
	OutEntry  *domain.Entry
	InEntry   *domain.Entry
}

// Transfer moves Amount from one account to the other. Either both entries
// post and both balances resync, or nothing changes.
//
// The sufficient-funds check runs against a balance recomputed from posted
// entries under lock, not against the cache, so a stale cache can never admit
// an overdraft.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}

	start := time.Now()

	var result *TransferResult
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		result, err = uc.execute(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
		uc.metrics.TransferAmount.Observe(input.Amount.InexactFloat64())
		uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
	}

	return result, nil
}

func (uc *TransferUseCase) execute(ctx context.Context, input TransferInput) (*TransferResult, error) {
	// Lock both accounts in sorted order to avoid deadlocks between
	// concurrent opposite-direction transfers.
	ids := []string{input.FromAccountID, input.ToAccountID}
	sort.Strings(ids)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	var from, to *domain.Account
	for _, a := range accounts {
		switch a.ID {
		case input.FromAccountID:
			from = a
		case input.ToAccountID:
			to = a
		}
	}
	if from == nil || to == nil {
		return nil, domain.ErrAccountNotFound
	}

	if !from.IsActive() || !to.IsActive() {
		return nil, domain.ErrAccountClosed
	}

	inflow, outflow, err := uc.entryRepo.SumPosted(ctx, tx, from.ID)
	if err != nil {
		return nil, err
	}
	available := from.OpeningBalance.Add(inflow).Sub(outflow)
	if available.LessThan(input.Amount) {
		return nil, domain.ErrInsufficientFunds
	}

	now := time.Now().UTC()
	reference := "TRF-" + uc.idGen.Generate()

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Transfer %s -> %s", from.Name, to.Name)
	}

	outEntry := &domain.Entry{
		ID:           uc.idGen.Generate(),
		AccountID:    from.ID,
		Date:         input.Date,
		Direction:    domain.DirectionOut,
		Category:     domain.CategoryTransfer,
		Amount:       input.Amount,
		Description:  description,
		Counterparty: to.Name,
		Reference:    reference,
		Status:       domain.EntryStatusPosted,
		CreatedBy:    input.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	inEntry := &domain.Entry{
		ID:           uc.idGen.Generate(),
		AccountID:    to.ID,
		Date:         input.Date,
		Direction:    domain.DirectionIn,
		Category:     domain.CategoryTransfer,
		Amount:       input.Amount,
		Description:  description,
		Counterparty: from.Name,
		Reference:    reference,
		Status:       domain.EntryStatusPosted,
		CreatedBy:    input.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.entryRepo.Create(ctx, tx, outEntry); err != nil {
		return nil, err
	}
	if err := uc.entryRepo.Create(ctx, tx, inEntry); err != nil {
		return nil, err
	}

	// Both rows are already locked, so resync in the same sorted order.
	for _, id := range ids {
		if _, err := uc.balance.ResyncTx(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &TransferResult{
		Reference: reference,
		OutEntry:  outEntry,
		InEntry:   inEntry,
	}, nil
}
