package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

const accountColumns = `id, name, code, type, opening_balance, current_balance,
	is_default, status, managed_by, bank_name, bank_account_number,
	bank_account_holder, created_at, updated_at`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) q(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}
	return tx.(*Tx).PgxTx()
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	_, err := r.q(tx).Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		account.ID,
		account.Name,
		account.Code,
		string(account.Type),
		decimalToNumeric(account.OpeningBalance),
		decimalToNumeric(account.CurrentBalance),
		account.IsDefault,
		string(account.Status),
		account.ManagedBy,
		account.BankName,
		account.BankAccountNumber,
		account.BankAccountHolder,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)
	if isUniqueViolation(err, "accounts_code_key") {
		return domain.ErrCodeTaken
	}

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	return scanAccount(row)
}

// GetByCode retrieves an account by its unique code.
func (r *AccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE code = $1`, code)

	return scanAccount(row)
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	row := r.q(tx).QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)

	return scanAccount(row)
}

// GetByIDsForUpdate retrieves multiple accounts with FOR UPDATE locks. The
// caller passes ids pre-sorted; ORDER BY id makes the lock order stable even
// if it does not.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	rows, err := r.q(tx).Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// Update rewrites the administrator-editable columns.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	tag, err := r.q(tx).Exec(ctx, `
		UPDATE accounts SET
			name = $2,
			opening_balance = $3,
			is_default = $4,
			bank_name = $5,
			bank_account_number = $6,
			bank_account_holder = $7,
			updated_at = $8
		WHERE id = $1`,
		account.ID,
		account.Name,
		decimalToNumeric(account.OpeningBalance),
		account.IsDefault,
		account.BankName,
		account.BankAccountNumber,
		account.BankAccountHolder,
		timeToPgTimestamptz(account.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// UpdateStatus performs a status transition.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// UpdateCurrentBalance rewrites the cached balance.
func (r *AccountRepository) UpdateCurrentBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	tag, err := r.q(tx).Exec(ctx, `
		UPDATE accounts SET current_balance = $2, updated_at = $3 WHERE id = $1`,
		id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ClearDefault unsets is_default on every active account in scope except the
// given one.
func (r *AccountRepository) ClearDefault(ctx context.Context, tx usecase.Transaction, scope, exceptID string) error {
	_, err := r.q(tx).Exec(ctx, `
		UPDATE accounts SET is_default = FALSE
		WHERE managed_by = $1 AND id <> $2 AND is_default AND status = 'active'`,
		scope, exceptID)

	return err
}

// Delete removes an account row. Use-in-ledger and default guards live in the
// use case.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := r.q(tx).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts matching the filter with pagination.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ManagedBy != "" {
		add("managed_by = $%d", filter.ManagedBy)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Type != "" {
		add("type = $%d", string(filter.Type))
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// DefaultForScope returns the default active account of a management scope.
func (r *AccountRepository) DefaultForScope(ctx context.Context, scope string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE managed_by = $1 AND is_default AND status = 'active'`, scope)

	return scanAccount(row)
}

// FirstActiveForScope returns the oldest active account of a scope.
func (r *AccountRepository) FirstActiveForScope(ctx context.Context, scope string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE managed_by = $1 AND status = 'active'
		ORDER BY created_at, id
		LIMIT 1`, scope)

	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a           domain.Account
		accountType string
		status      string
		opening     pgtype.Numeric
		current     pgtype.Numeric
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID, &a.Name, &a.Code, &accountType, &opening, &current,
		&a.IsDefault, &status, &a.ManagedBy, &a.BankName,
		&a.BankAccountNumber, &a.BankAccountHolder, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	a.Type = domain.AccountType(accountType)
	a.Status = domain.AccountStatus(status)
	a.OpeningBalance = numericToDecimal(opening)
	a.CurrentBalance = numericToDecimal(current)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == constraint
	}
	return false
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
