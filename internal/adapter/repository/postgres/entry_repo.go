package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

const entryColumns = `id, account_id, entry_date, direction, category,
	sub_category, amount, description, counterparty, reference, status,
	source_module, source_id, auto_posted, created_by, created_at, updated_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

func (r *EntryRepository) q(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}
	return tx.(*Tx).PgxTx()
}

// Create writes a new entry. The partial unique index on
// (source_module, source_id) turns a concurrent double posting into
// domain.ErrDuplicatePosting.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	_, err := r.q(tx).Exec(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		entry.ID,
		entry.AccountID,
		timeToPgTimestamptz(entry.Date),
		string(entry.Direction),
		entry.Category,
		entry.SubCategory,
		decimalToNumeric(entry.Amount),
		entry.Description,
		entry.Counterparty,
		entry.Reference,
		string(entry.Status),
		entry.SourceModule,
		entry.SourceID,
		entry.AutoPosted,
		entry.CreatedBy,
		timeToPgTimestamptz(entry.CreatedAt),
		timeToPgTimestamptz(entry.UpdatedAt),
	)
	if isUniqueViolation(err, "entries_source_posted_idx") {
		return domain.ErrDuplicatePosting
	}

	return err
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)

	return scanEntry(row)
}

// Find lists entries matching the filter with pagination.
func (r *EntryRepository) Find(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.AccountID != "" {
		add("account_id = $%d", filter.AccountID)
	}
	if filter.From != nil {
		add("entry_date >= $%d", timeToPgTimestamptz(*filter.From))
	}
	if filter.To != nil {
		add("entry_date <= $%d", timeToPgTimestamptz(*filter.To))
	}
	if filter.SourceModule != "" {
		add("source_module = $%d", filter.SourceModule)
	}
	if filter.SourceID != "" {
		add("source_id = $%d", filter.SourceID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.AutoPosted != nil {
		add("auto_posted = $%d", *filter.AutoPosted)
	}

	query := `SELECT ` + entryColumns + ` FROM entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY entry_date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// FindBySource returns the posted auto-posted entry for an origin record, or
// nil when none exists.
func (r *EntryRepository) FindBySource(ctx context.Context, module, sourceID string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE source_module = $1 AND source_id = $2
		  AND auto_posted AND status = 'posted'`, module, sourceID)

	entry, err := scanEntry(row)
	if errors.Is(err, domain.ErrEntryNotFound) {
		return nil, nil
	}

	return entry, err
}

// UpdateStatus moves an entry through its lifecycle.
func (r *EntryRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus, updatedAt time.Time) error {
	tag, err := r.q(tx).Exec(ctx, `
		UPDATE entries SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// SetSourceRef backfills the origin reference and flips the entry to
// auto-posted.
func (r *EntryRepository) SetSourceRef(ctx context.Context, tx usecase.Transaction, id, module, sourceID string, updatedAt time.Time) error {
	tag, err := r.q(tx).Exec(ctx, `
		UPDATE entries SET
			source_module = $2,
			source_id = $3,
			auto_posted = TRUE,
			updated_at = $4
		WHERE id = $1`,
		id, module, sourceID, timeToPgTimestamptz(updatedAt))
	if isUniqueViolation(err, "entries_source_posted_idx") {
		return domain.ErrDuplicatePosting
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// SumPosted totals posted entries for an account in a single scan.
func (r *EntryRepository) SumPosted(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	var inflow, outflow pgtype.Numeric

	err := r.q(tx).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'in'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'out'), 0)
		FROM entries
		WHERE account_id = $1 AND status = 'posted'`, accountID).Scan(&inflow, &outflow)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(inflow), numericToDecimal(outflow), nil
}

// CountByAccount counts entries of any status referencing an account.
func (r *EntryRepository) CountByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (int64, error) {
	var count int64

	err := r.q(tx).QueryRow(ctx, `
		SELECT COUNT(*) FROM entries WHERE account_id = $1`, accountID).Scan(&count)

	return count, err
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		e         domain.Entry
		direction string
		status    string
		date      pgtype.Timestamptz
		amount    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&e.ID, &e.AccountID, &date, &direction, &e.Category, &e.SubCategory,
		&amount, &e.Description, &e.Counterparty, &e.Reference, &status,
		&e.SourceModule, &e.SourceID, &e.AutoPosted, &e.CreatedBy,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}

	e.Direction = domain.Direction(direction)
	e.Status = domain.EntryStatus(status)
	e.Date = date.Time
	e.Amount = numericToDecimal(amount)
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return &e, nil
}

func collectEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
