package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTransfer marks the paired entries produced by an inter-account
// transfer.
const CategoryTransfer = "Transfer"

// Direction says which way money moves relative to the owning account.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "draft"
	EntryStatusPosted    EntryStatus = "posted"
	EntryStatusCancelled EntryStatus = "cancelled"
)

// Valid reports whether s is a known entry status.
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusDraft, EntryStatusPosted, EntryStatusCancelled:
		return true
	}
	return false
}

// Entry is one posted financial movement affecting exactly one account.
//
// Amount is always positive; Direction carries the sign. Auto-posted entries
// carry the (SourceModule, SourceID) pair identifying the business record that
// produced them; that pair is unique among posted auto-posted entries and is
// the idempotency key for cross-module posting.
type Entry struct {
	ID           string
	AccountID    string
	Date         time.Time
	Direction    Direction
	Category     string
	SubCategory  string
	Amount       decimal.Decimal
	Description  string
	Counterparty string
	Reference    string
	Status       EntryStatus
	SourceModule string
	SourceID     string
	AutoPosted   bool
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Signed returns the amount with direction applied: positive for inflows,
// negative for outflows.
func (e *Entry) Signed() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Validate checks an entry before it is written.
func (e *Entry) Validate() error {
	if e.AccountID == "" {
		return ErrMissingAccount
	}
	if !e.Direction.Valid() {
		return ErrInvalidDirection
	}
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if e.Category == "" {
		return ErrMissingCategory
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if e.AutoPosted && (e.SourceModule == "" || e.SourceID == "") {
		return ErrMissingSourceRef
	}
	return nil
}

// EntryFilter narrows entry queries. Zero fields are ignored.
type EntryFilter struct {
	AccountID    string
	From         *time.Time
	To           *time.Time
	SourceModule string
	SourceID     string
	Status       EntryStatus
	AutoPosted   *bool
	Limit        int
	Offset       int
}

// DuplicateGroup is a set of posted entries sharing category, date and amount.
// A group with more than one member is a suspected duplicate posting; it is a
// heuristic, since unrelated transactions can legitimately coincide.
type DuplicateGroup struct {
	Category string
	Date     time.Time
	Amount   decimal.Decimal
	EntryIDs []string
}

// AutoPostedSummary aggregates auto-posted entries per origin module.
type AutoPostedSummary struct {
	SourceModule string
	Count        int64
	Total        decimal.Decimal
	Average      decimal.Decimal
}
