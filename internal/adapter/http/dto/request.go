package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Type              string          `json:"type"`
	OpeningBalance    decimal.Decimal `json:"opening_balance"`
	IsDefault         bool            `json:"is_default"`
	ManagedBy         string          `json:"managed_by"`
	BankName          string          `json:"bank_name,omitempty"`
	BankAccountNumber string          `json:"bank_account_number,omitempty"`
	BankAccountHolder string          `json:"bank_account_holder,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:              r.Name,
		Code:              r.Code,
		Type:              domain.AccountType(r.Type),
		OpeningBalance:    r.OpeningBalance,
		IsDefault:         r.IsDefault,
		ManagedBy:         r.ManagedBy,
		BankName:          r.BankName,
		BankAccountNumber: r.BankAccountNumber,
		BankAccountHolder: r.BankAccountHolder,
	}
}

// UpdateAccountRequest is a partial account patch; absent fields stay as they
// are.
type UpdateAccountRequest struct {
	Name              *string          `json:"name,omitempty"`
	OpeningBalance    *decimal.Decimal `json:"opening_balance,omitempty"`
	IsDefault         *bool            `json:"is_default,omitempty"`
	BankName          *string          `json:"bank_name,omitempty"`
	BankAccountNumber *string          `json:"bank_account_number,omitempty"`
	BankAccountHolder *string          `json:"bank_account_holder,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput() usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		Name:              r.Name,
		OpeningBalance:    r.OpeningBalance,
		IsDefault:         r.IsDefault,
		BankName:          r.BankName,
		BankAccountNumber: r.BankAccountNumber,
		BankAccountHolder: r.BankAccountHolder,
	}
}

// SetStatusRequest requests a status transition.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// CreateEntryRequest represents a manual ledger entry.
type CreateEntryRequest struct {
	AccountID    string          `json:"account_id"`
	Date         time.Time       `json:"date"`
	Direction    string          `json:"direction"`
	Category     string          `json:"category"`
	SubCategory  string          `json:"sub_category,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	Reference    string          `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput(createdBy string) usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		AccountID:    r.AccountID,
		Date:         r.Date,
		Direction:    domain.Direction(r.Direction),
		Category:     r.Category,
		SubCategory:  r.SubCategory,
		Amount:       r.Amount,
		Description:  r.Description,
		Counterparty: r.Counterparty,
		Reference:    r.Reference,
		CreatedBy:    createdBy,
	}
}

// LinkSourceRequest backfills the origin reference on a manual entry.
type LinkSourceRequest struct {
	SourceModule string `json:"source_module"`
	SourceID     string `json:"source_id"`
}

// TransferRequest represents a transfer between accounts.
type TransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(createdBy string) usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Date:          r.Date,
		Description:   r.Description,
		CreatedBy:     createdBy,
	}
}

// PostingEventRequest is a finalized business event submitted for
// auto-posting.
type PostingEventRequest struct {
	Kind         string          `json:"kind"`
	SourceID     string          `json:"source_id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	AccountID    string          `json:"account_id,omitempty"`
}

// ToDomain converts to the domain event.
func (r *PostingEventRequest) ToDomain() *domain.PostingEvent {
	return &domain.PostingEvent{
		Kind:         domain.EventKind(r.Kind),
		SourceID:     r.SourceID,
		Amount:       r.Amount,
		Date:         r.Date,
		Description:  r.Description,
		Counterparty: r.Counterparty,
		AccountID:    r.AccountID,
	}
}
