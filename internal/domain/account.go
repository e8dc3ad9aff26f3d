package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies where the money physically lives.
type AccountType string

const (
	AccountTypeCash    AccountType = "cash"
	AccountTypeBank    AccountType = "bank"
	AccountTypeSavings AccountType = "savings"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeSavings:
		return true
	}
	return false
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusClosed    AccountStatus = "closed"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusSuspended, AccountStatusClosed:
		return true
	}
	return false
}

// Account is a cash, bank or savings balance-holder.
//
// CurrentBalance is a materialized view over the account's posted entries:
// opening balance plus inflows minus outflows. It is only ever written by the
// balance calculator's resync; callers must treat it as read-only.
type Account struct {
	ID                string
	Name              string
	Code              string
	Type              AccountType
	OpeningBalance    decimal.Decimal
	CurrentBalance    decimal.Decimal
	IsDefault         bool
	Status            AccountStatus
	ManagedBy         string
	BankName          string
	BankAccountNumber string
	BankAccountHolder string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive reports whether the account accepts postings.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// CanTransitionTo validates a status change. Active and suspended toggle
// freely; closed is terminal.
func (a *Account) CanTransitionTo(next AccountStatus) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if a.Status == AccountStatusClosed {
		return ErrAccountClosed
	}
	if next == AccountStatusClosed && a.Status != AccountStatusActive {
		return ErrInvalidStatus
	}
	return nil
}

// ToggledStatus returns the opposite of the active/suspended pair.
func (a *Account) ToggledStatus() (AccountStatus, error) {
	switch a.Status {
	case AccountStatusActive:
		return AccountStatusSuspended, nil
	case AccountStatusSuspended:
		return AccountStatusActive, nil
	default:
		return "", ErrAccountClosed
	}
}

// Validate checks the fields an administrator supplies at create time.
func (a *Account) Validate() error {
	if err := ValidateAccountName(a.Name); err != nil {
		return err
	}
	if err := ValidateAccountCode(a.Code); err != nil {
		return err
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if a.ManagedBy == "" {
		return ErrMissingScope
	}
	return nil
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	ManagedBy string
	Status    AccountStatus
	Type      AccountType
	Limit     int
	Offset    int
}
