package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
)

// EntryUseCase handles manual ledger entries.
type EntryUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	balance     *BalanceCalculator
	idGen       IDGenerator
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	balance *BalanceCalculator,
	idGen IDGenerator,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		balance:     balance,
		idGen:       idGen,
	}
}

// CreateEntryInput represents input for a manual ledger entry.
type CreateEntryInput struct {
	AccountID    string
	Date         time.Time
	Direction    domain.Direction
	Category     string
	SubCategory  string
	Amount       decimal.Decimal
	Description  string
	Counterparty string
	Reference    string
	CreatedBy    string
}

// CreateEntry records a manual entry. The entry is posted immediately and the
// account balance cache is resynced in the same transaction.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.Entry, error) {
	now := time.Now().UTC()

	entry := &domain.Entry{
		ID:           uc.idGen.Generate(),
		AccountID:    input.AccountID,
		Date:         input.Date,
		Direction:    input.Direction,
		Category:     input.Category,
		SubCategory:  input.SubCategory,
		Amount:       input.Amount,
		Description:  input.Description,
		Counterparty: input.Counterparty,
		Reference:    input.Reference,
		Status:       domain.EntryStatusPosted,
		AutoPosted:   false,
		CreatedBy:    input.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, domain.ErrAccountClosed
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if _, err := uc.balance.ResyncTx(ctx, tx, entry.AccountID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// CancelEntry marks a posted manual entry cancelled and resyncs the balance.
// The row is kept for audit; cancelled entries no longer count toward
// balances. Auto-posted entries are read-only here and can only be reversed
// by the origin module through the reconciler's unpost path.
func (uc *EntryUseCase) CancelEntry(ctx context.Context, id string) (*domain.Entry, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if entry.AutoPosted {
		return nil, domain.ErrEntryImmutable
	}
	if entry.Status == domain.EntryStatusCancelled {
		return nil, domain.ErrEntryImmutable
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if err := uc.entryRepo.UpdateStatus(ctx, tx, id, domain.EntryStatusCancelled, now); err != nil {
		return nil, err
	}

	if _, err := uc.balance.ResyncTx(ctx, tx, entry.AccountID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	entry.Status = domain.EntryStatusCancelled
	entry.UpdatedAt = now

	return entry, nil
}

// LinkSource backfills the origin reference on a manually created entry,
// converting it into an auto-posted one. The amount never changes, so the
// balance is untouched.
func (uc *EntryUseCase) LinkSource(ctx context.Context, id, module, sourceID string) (*domain.Entry, error) {
	if module == "" || sourceID == "" {
		return nil, domain.ErrMissingSourceRef
	}

	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if entry.Status != domain.EntryStatusPosted {
		return nil, domain.ErrEntryImmutable
	}
	if entry.AutoPosted {
		return nil, domain.ErrDuplicatePosting
	}

	// Refuse when the origin record already has a posted entry.
	existing, err := uc.entryRepo.FindBySource(ctx, module, sourceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicatePosting
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if err := uc.entryRepo.SetSourceRef(ctx, tx, id, module, sourceID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	entry.SourceModule = module
	entry.SourceID = sourceID
	entry.AutoPosted = true
	entry.UpdatedAt = now

	return entry, nil
}

// GetEntry retrieves a ledger entry by ID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntries lists entries matching the filter with pagination.
func (uc *EntryUseCase) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.entryRepo.Find(ctx, filter)
}
