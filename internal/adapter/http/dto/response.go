package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Type              string          `json:"type"`
	OpeningBalance    decimal.Decimal `json:"opening_balance"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	IsDefault         bool            `json:"is_default"`
	Status            string          `json:"status"`
	ManagedBy         string          `json:"managed_by"`
	BankName          string          `json:"bank_name,omitempty"`
	BankAccountNumber string          `json:"bank_account_number,omitempty"`
	BankAccountHolder string          `json:"bank_account_holder,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                a.ID,
		Name:              a.Name,
		Code:              a.Code,
		Type:              string(a.Type),
		OpeningBalance:    a.OpeningBalance,
		CurrentBalance:    a.CurrentBalance,
		IsDefault:         a.IsDefault,
		Status:            string(a.Status),
		ManagedBy:         a.ManagedBy,
		BankName:          a.BankName,
		BankAccountNumber: a.BankAccountNumber,
		BankAccountHolder: a.BankAccountHolder,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse reports a derived account balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Date         time.Time       `json:"date"`
	Direction    string          `json:"direction"`
	Category     string          `json:"category"`
	SubCategory  string          `json:"sub_category,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Status       string          `json:"status"`
	SourceModule string          `json:"source_module,omitempty"`
	SourceID     string          `json:"source_id,omitempty"`
	AutoPosted   bool            `json:"auto_posted"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		AccountID:    e.AccountID,
		Date:         e.Date,
		Direction:    string(e.Direction),
		Category:     e.Category,
		SubCategory:  e.SubCategory,
		Amount:       e.Amount,
		Description:  e.Description,
		Counterparty: e.Counterparty,
		Reference:    e.Reference,
		Status:       string(e.Status),
		SourceModule: e.SourceModule,
		SourceID:     e.SourceID,
		AutoPosted:   e.AutoPosted,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse wraps an entry listing.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// TransferResponse holds the paired entries of a completed transfer.
type TransferResponse struct {
	Reference string         `json:"reference"`
	OutEntry  *EntryResponse `json:"out_entry"`
	InEntry   *EntryResponse `json:"in_entry"`
}

// TransferFromResult converts a transfer result to a response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		Reference: r.Reference,
		OutEntry:  EntryFromDomain(r.OutEntry),
		InEntry:   EntryFromDomain(r.InEntry),
	}
}

// ReconcileResponse reports the outcome of posting an event.
type ReconcileResponse struct {
	EntryID       string `json:"entry_id,omitempty"`
	AlreadyPosted bool   `json:"already_posted"`
	Warning       string `json:"warning,omitempty"`
}

// ReconcileFromResult converts a reconcile result to a response.
func ReconcileFromResult(r *usecase.ReconcileResult) *ReconcileResponse {
	return &ReconcileResponse{
		EntryID:       r.EntryID,
		AlreadyPosted: r.AlreadyPosted,
		Warning:       r.Warning,
	}
}

// DuplicateGroupResponse is one suspected duplicate posting group.
type DuplicateGroupResponse struct {
	Category string          `json:"category"`
	Date     time.Time       `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	EntryIDs []string        `json:"entry_ids"`
}

// DuplicateGroupsFromDomain converts duplicate groups to responses.
func DuplicateGroupsFromDomain(groups []*domain.DuplicateGroup) []*DuplicateGroupResponse {
	result := make([]*DuplicateGroupResponse, len(groups))
	for i, g := range groups {
		result[i] = &DuplicateGroupResponse{
			Category: g.Category,
			Date:     g.Date,
			Amount:   g.Amount,
			EntryIDs: g.EntryIDs,
		}
	}
	return result
}

// AutoPostedSummaryResponse aggregates auto-posted entries per origin module.
type AutoPostedSummaryResponse struct {
	SourceModule string          `json:"source_module"`
	Count        int64           `json:"count"`
	Total        decimal.Decimal `json:"total"`
	Average      decimal.Decimal `json:"average"`
}

// SummariesFromDomain converts summaries to responses.
func SummariesFromDomain(summaries []*domain.AutoPostedSummary) []*AutoPostedSummaryResponse {
	result := make([]*AutoPostedSummaryResponse, len(summaries))
	for i, s := range summaries {
		result[i] = &AutoPostedSummaryResponse{
			SourceModule: s.SourceModule,
			Count:        s.Count,
			Total:        s.Total,
			Average:      s.Average,
		}
	}
	return result
}

// BalanceDriftResponse reports a cached balance that disagrees with the
// derived one.
type BalanceDriftResponse struct {
	AccountID string          `json:"account_id"`
	Cached    decimal.Decimal `json:"cached"`
	Derived   decimal.Decimal `json:"derived"`
	Drift     decimal.Decimal `json:"drift"`
}

// DriftsFromUseCase converts drift reports to responses.
func DriftsFromUseCase(drifts []*usecase.BalanceDrift) []*BalanceDriftResponse {
	result := make([]*BalanceDriftResponse, len(drifts))
	for i, d := range drifts {
		result[i] = &BalanceDriftResponse{
			AccountID: d.AccountID,
			Cached:    d.Cached,
			Derived:   d.Derived,
			Drift:     d.Drift,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
