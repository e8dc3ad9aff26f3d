package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/infrastructure/metrics"
)

// ReconcileResult reports the outcome of posting an origin event to the
// ledger.
//
// Posting is best effort: the originating business action has already
// succeeded by the time the event reaches us, so a storage failure here is
// reported as a Warning for the caller to surface, never as an error that
// would roll the business action back.
type ReconcileResult struct {
	EntryID       string
	AlreadyPosted bool
	Warning       string
}

// ReconcilerUseCase turns finalized business events into posted ledger
// entries, exactly once per origin record.
type ReconcilerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	sources     SourceRegistry
	balance     *BalanceCalculator
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewReconcilerUseCase creates a new ReconcilerUseCase.
func NewReconcilerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	sources SourceRegistry,
	balance *BalanceCalculator,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *ReconcilerUseCase {
	return &ReconcilerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		sources:     sources,
		balance:     balance,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     metrics,
		logger:      logger,
	}
}

// Reconcile posts the ledger entry for a finalized business event.
//
// Re-delivering the same event is safe: the (source module, source id) pair is
// checked up front and enforced again by a unique constraint at write time, so
// the second delivery returns the first entry instead of posting twice.
// Returns an error only when the event itself is malformed; operational
// failures come back as a Warning on the result.
func (uc *ReconcilerUseCase) Reconcile(ctx context.Context, event *domain.PostingEvent) (*ReconcileResult, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	module := event.Module()

	existing, err := uc.entryRepo.FindBySource(ctx, module, event.SourceID)
	if err != nil {
		return uc.warn(event, "source lookup failed", err), nil
	}
	if existing != nil {
		return &ReconcileResult{EntryID: existing.ID, AlreadyPosted: true}, nil
	}

	account, err := uc.resolveAccount(ctx, event)
	if err != nil {
		return uc.warn(event, "account resolution failed", err), nil
	}

	now := time.Now().UTC()

	entry := &domain.Entry{
		ID:           uc.idGen.Generate(),
		AccountID:    account.ID,
		Date:         event.Date,
		Direction:    event.Direction(),
		Category:     event.Category(),
		Amount:       event.Amount,
		Description:  event.Description,
		Counterparty: event.Counterparty,
		Reference:    fmt.Sprintf("%s:%s", module, event.SourceID),
		Status:       domain.EntryStatusPosted,
		SourceModule: module,
		SourceID:     event.SourceID,
		AutoPosted:   true,
		CreatedBy:    "system",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if entry.Description == "" {
		entry.Description = fmt.Sprintf("%s %s", entry.Category, event.SourceID)
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.post(ctx, entry, module, event.SourceID)
	})
	if errors.Is(err, domain.ErrDuplicatePosting) {
		// Lost the race to a concurrent delivery of the same event.
		winner, ferr := uc.entryRepo.FindBySource(ctx, module, event.SourceID)
		if ferr != nil || winner == nil {
			return uc.warn(event, "duplicate race lookup failed", ferr), nil
		}
		return &ReconcileResult{EntryID: winner.ID, AlreadyPosted: true}, nil
	}
	if err != nil {
		return uc.warn(event, "posting failed", err), nil
	}

	uc.logger.Info().
		Str("entry_id", entry.ID).
		Str("source_module", module).
		Str("source_id", event.SourceID).
		Str("account_id", account.ID).
		Msg("auto-posted ledger entry")

	if uc.metrics != nil {
		uc.metrics.EntriesPosted.WithLabelValues(module).Inc()
		uc.metrics.ReconcileOutcomes.WithLabelValues(string(event.Kind), "posted").Inc()
	}

	return &ReconcileResult{EntryID: entry.ID}, nil
}

func (uc *ReconcilerUseCase) post(ctx context.Context, entry *domain.Entry, module, sourceID string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	if err := uc.sources.Register(ctx, tx, module, sourceID); err != nil {
		return err
	}

	if _, err := uc.balance.ResyncTx(ctx, tx, entry.AccountID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Unpost reverses a prior auto-posting after its origin record is deleted.
// The entry is cancelled rather than removed, the origin registration is
// dropped and the balance resynced. Like Reconcile, failures are warnings.
func (uc *ReconcilerUseCase) Unpost(ctx context.Context, module, sourceID string) (*ReconcileResult, error) {
	if module == "" || sourceID == "" {
		return nil, domain.ErrMissingSourceRef
	}

	entry, err := uc.entryRepo.FindBySource(ctx, module, sourceID)
	if err != nil {
		return uc.warnSource(module, sourceID, "source lookup failed", err), nil
	}
	if entry == nil {
		return &ReconcileResult{Warning: "no posted entry for source record"}, nil
	}

	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		now := time.Now().UTC()
		if err := uc.entryRepo.UpdateStatus(ctx, tx, entry.ID, domain.EntryStatusCancelled, now); err != nil {
			return err
		}

		if err := uc.sources.Remove(ctx, tx, module, sourceID); err != nil {
			return err
		}

		if _, err := uc.balance.ResyncTx(ctx, tx, entry.AccountID); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return uc.warnSource(module, sourceID, "unposting failed", err), nil
	}

	uc.logger.Info().
		Str("entry_id", entry.ID).
		Str("source_module", module).
		Str("source_id", sourceID).
		Msg("reversed auto-posted ledger entry")

	return &ReconcileResult{EntryID: entry.ID}, nil
}

// resolveAccount picks the account an event posts to: the explicitly named
// account, else the default account for the origin module, else the first
// active account the module manages.
func (uc *ReconcilerUseCase) resolveAccount(ctx context.Context, event *domain.PostingEvent) (*domain.Account, error) {
	if event.AccountID != "" {
		account, err := uc.accountRepo.GetByID(ctx, event.AccountID)
		if err != nil {
			return nil, err
		}
		if !account.IsActive() {
			return nil, domain.ErrAccountClosed
		}
		return account, nil
	}

	scope := event.Module()

	account, err := uc.accountRepo.DefaultForScope(ctx, scope)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account, err = uc.accountRepo.FirstActiveForScope(ctx, scope)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrNoAccountConfigured
		}
		return nil, err
	}

	return account, nil
}

func (uc *ReconcilerUseCase) warn(event *domain.PostingEvent, msg string, err error) *ReconcileResult {
	return uc.warnSource(event.Module(), event.SourceID, msg, err)
}

func (uc *ReconcilerUseCase) warnSource(module, sourceID, msg string, err error) *ReconcileResult {
	if uc.metrics != nil {
		uc.metrics.ReconcileWarnings.Inc()
	}

	log := uc.logger.Warn().
		Str("source_module", module).
		Str("source_id", sourceID)
	if err != nil {
		log = log.Err(err)
	}
	log.Msg(msg)

	warning := msg
	if err != nil {
		warning = fmt.Sprintf("%s: %v", msg, err)
	}
	return &ReconcileResult{Warning: warning}
}
