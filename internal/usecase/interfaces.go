package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, code string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	Update(ctx context.Context, tx Transaction, account *domain.Account) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	// UpdateCurrentBalance rewrites the cached balance. Only the balance
	// calculator calls this.
	UpdateCurrentBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	// ClearDefault unsets is_default on every active account in scope except
	// the given one.
	ClearDefault(ctx context.Context, tx Transaction, scope, exceptID string) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error)
	DefaultForScope(ctx context.Context, scope string) (*domain.Account, error)
	FirstActiveForScope(ctx context.Context, scope string) (*domain.Account, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// Create writes a new entry. Returns domain.ErrDuplicatePosting when the
	// (source module, source id) uniqueness constraint rejects the row.
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	Find(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error)
	// FindBySource returns the posted auto-posted entry for an origin record.
	FindBySource(ctx context.Context, module, sourceID string) (*domain.Entry, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.EntryStatus, updatedAt time.Time) error
	// SetSourceRef backfills the origin reference and marks the entry
	// auto-posted. Balance neutral.
	SetSourceRef(ctx context.Context, tx Transaction, id, module, sourceID string, updatedAt time.Time) error
	// SumPosted totals posted entries for an account. tx may be nil for a
	// plain read outside a transaction.
	SumPosted(ctx context.Context, tx Transaction, accountID string) (inflow, outflow decimal.Decimal, err error)
	// CountByAccount counts entries of any status for an account. Runs on
	// the transaction when given so the count holds until commit.
	CountByAccount(ctx context.Context, tx Transaction, accountID string) (int64, error)
}

// MonitorRepository defines the read-only consistency queries.
type MonitorRepository interface {
	FindDuplicateGroups(ctx context.Context) ([]*domain.DuplicateGroup, error)
	FindOrphans(ctx context.Context) ([]*domain.Entry, error)
	SummarizeAutoPosted(ctx context.Context, from, to time.Time) ([]*domain.AutoPostedSummary, error)
}

// SourceRegistry mirrors the lifecycle of origin-module records so orphaned
// postings can be detected.
type SourceRegistry interface {
	Register(ctx context.Context, tx Transaction, module, sourceID string) error
	Remove(ctx context.Context, tx Transaction, module, sourceID string) error
	Exists(ctx context.Context, module, sourceID string) (bool, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage for the HTTP layer.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
