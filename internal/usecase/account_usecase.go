package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
)

// AccountUseCase handles account administration.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	balance     *BalanceCalculator
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	balance *BalanceCalculator,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		balance:     balance,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name              string
	Code              string
	Type              domain.AccountType
	OpeningBalance    decimal.Decimal
	IsDefault         bool
	ManagedBy         string
	BankName          string
	BankAccountNumber string
	BankAccountHolder string
}

// CreateAccount creates a new account. When IsDefault is set, any previous
// default in the same management scope is unset in the same transaction, so
// exactly one default holds after the call.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	now := time.Now().UTC()

	account := &domain.Account{
		ID:                uc.idGen.Generate(),
		Name:              input.Name,
		Code:              input.Code,
		Type:              input.Type,
		OpeningBalance:    input.OpeningBalance,
		CurrentBalance:    input.OpeningBalance,
		IsDefault:         input.IsDefault,
		Status:            domain.AccountStatusActive,
		ManagedBy:         input.ManagedBy,
		BankName:          input.BankName,
		BankAccountNumber: input.BankAccountNumber,
		BankAccountHolder: input.BankAccountHolder,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	existing, err := uc.accountRepo.GetByCode(ctx, account.Code)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCodeTaken
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if account.IsDefault {
		if err := uc.accountRepo.ClearDefault(ctx, tx, account.ManagedBy, account.ID); err != nil {
			return nil, err
		}
	}

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// UpdateAccountInput carries the mutable account fields. Nil pointers leave
// the field untouched.
type UpdateAccountInput struct {
	Name              *string
	OpeningBalance    *decimal.Decimal
	IsDefault         *bool
	BankName          *string
	BankAccountNumber *string
	BankAccountHolder *string
}

// UpdateAccount patches an account. Setting IsDefault true unsets the
// previous default in the same scope.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, id string, input UpdateAccountInput) (*domain.Account, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	openingChanged := false

	if input.Name != nil {
		account.Name = *input.Name
	}
	if input.OpeningBalance != nil && !account.OpeningBalance.Equal(*input.OpeningBalance) {
		account.OpeningBalance = *input.OpeningBalance
		openingChanged = true
	}
	if input.BankName != nil {
		account.BankName = *input.BankName
	}
	if input.BankAccountNumber != nil {
		account.BankAccountNumber = *input.BankAccountNumber
	}
	if input.BankAccountHolder != nil {
		account.BankAccountHolder = *input.BankAccountHolder
	}
	if input.IsDefault != nil {
		if *input.IsDefault && !account.IsDefault {
			// The one-default-per-scope index only covers active rows, so a
			// default on a suspended account would collide on reactivation.
			if !account.IsActive() {
				return nil, domain.ErrAccountClosed
			}
			if err := uc.accountRepo.ClearDefault(ctx, tx, account.ManagedBy, account.ID); err != nil {
				return nil, err
			}
		}
		account.IsDefault = *input.IsDefault
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return nil, err
	}

	// The cache depends on the opening balance, so a change invalidates it.
	if openingChanged {
		if _, err := uc.balance.ResyncTx(ctx, tx, account.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// SetDefault marks the account as the default for its management scope.
func (uc *AccountUseCase) SetDefault(ctx context.Context, id string) (*domain.Account, error) {
	yes := true
	return uc.UpdateAccount(ctx, id, UpdateAccountInput{IsDefault: &yes})
}

// SetStatus performs a validated status transition. Balances are untouched.
func (uc *AccountUseCase) SetStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := account.CanTransitionTo(status); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}

	account.Status = status
	account.UpdatedAt = now

	return account, nil
}

// ToggleStatus flips an account between active and suspended.
func (uc *AccountUseCase) ToggleStatus(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := account.ToggledStatus()
	if err != nil {
		return nil, err
	}

	return uc.SetStatus(ctx, id, next)
}

// DeleteAccount removes an account that has no history. Default accounts and
// accounts referenced by any ledger entry are protected; those are archived
// by closing instead.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, id string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if account.IsDefault {
		return domain.ErrDefaultAccount
	}

	count, err := uc.entryRepo.CountByAccount(ctx, tx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrAccountInUse
	}

	if err := uc.accountRepo.Delete(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountByCode retrieves an account by its unique code.
func (uc *AccountUseCase) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return uc.accountRepo.GetByCode(ctx, code)
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.accountRepo.List(ctx, filter)
}

// GetBalance returns the derived balance, recomputed from posted entries
// rather than read from the cache.
func (uc *AccountUseCase) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	return uc.balance.Compute(ctx, id)
}

// ResyncBalance recomputes and rewrites the cached balance.
func (uc *AccountUseCase) ResyncBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	return uc.balance.Resync(ctx, id)
}
