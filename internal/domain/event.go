package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind identifies the business event behind an auto-posting.
type EventKind string

const (
	EventSaleCompleted        EventKind = "sale_completed"
	EventDistributionRecorded EventKind = "distribution_recorded"
	EventDebtPaymentMade      EventKind = "debt_payment_made"
	EventSavingsDeposit       EventKind = "savings_deposit"
	EventSavingsWithdrawal    EventKind = "savings_withdrawal"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventSaleCompleted, EventDistributionRecorded, EventDebtPaymentMade,
		EventSavingsDeposit, EventSavingsWithdrawal:
		return true
	}
	return false
}

// eventTraits maps each kind to its origin module, posting direction and
// ledger category.
var eventTraits = map[EventKind]struct {
	module    string
	direction Direction
	category  string
}{
	EventSaleCompleted:        {"sales", DirectionIn, "Sales"},
	EventDistributionRecorded: {"distribution", DirectionOut, "Distribution"},
	EventDebtPaymentMade:      {"debt", DirectionIn, "Debt Payment"},
	EventSavingsDeposit:       {"savings", DirectionIn, "Savings Deposit"},
	EventSavingsWithdrawal:    {"savings", DirectionOut, "Savings Withdrawal"},
}

// PostingEvent is a finalized business event another module hands to the
// reconciler. (Module(), SourceID) is the idempotency key: reconciling the
// same event twice posts exactly one ledger entry.
type PostingEvent struct {
	Kind         EventKind
	SourceID     string
	Amount       decimal.Decimal
	Date         time.Time
	Description  string
	Counterparty string
	// AccountID optionally pins the target account. When empty the reconciler
	// resolves the module's default account, then the first active one.
	AccountID string
}

// Module returns the origin tag recorded on the posted entry.
func (e *PostingEvent) Module() string {
	return eventTraits[e.Kind].module
}

// Direction returns which way the event moves money.
func (e *PostingEvent) Direction() Direction {
	return eventTraits[e.Kind].direction
}

// Category returns the ledger category for the event kind.
func (e *PostingEvent) Category() string {
	return eventTraits[e.Kind].category
}

// Validate checks the event before reconciliation. These are hard errors; the
// caller supplied a malformed event, nothing has been written.
func (e *PostingEvent) Validate() error {
	if !e.Kind.Valid() {
		return ErrInvalidEventKind
	}
	if e.SourceID == "" {
		return ErrMissingSourceRef
	}
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}
