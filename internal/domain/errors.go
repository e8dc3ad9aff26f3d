package domain

import "errors"

var (
	// Validation errors: rejected before any write, caller fixes input.
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidDirection   = errors.New("invalid entry direction")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrMissingAccount     = errors.New("account reference is required")
	ErrMissingCategory    = errors.New("category is required")
	ErrMissingDate        = errors.New("posting date is required")
	ErrMissingScope       = errors.New("management scope is required")
	ErrMissingSourceRef   = errors.New("auto-posted entry requires source module and source id")
	ErrSameAccount        = errors.New("cannot transfer to the same account")
	ErrInvalidEventKind   = errors.New("unknown posting event kind")

	// Constraint violations: rejected before any write.
	ErrCodeTaken      = errors.New("account code already exists")
	ErrAccountInUse   = errors.New("account has ledger entries and cannot be deleted")
	ErrDefaultAccount = errors.New("default account cannot be deleted")
	ErrAccountClosed  = errors.New("account is closed")

	// Funds.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Auto-posting.
	ErrDuplicatePosting    = errors.New("entry already posted for this source")
	ErrNoAccountConfigured = errors.New("no account configured for module")

	// Lookups.
	ErrAccountNotFound = errors.New("account not found")
	ErrEntryNotFound   = errors.New("entry not found")

	// Lifecycle.
	ErrEntryImmutable = errors.New("entry can no longer be modified")
)
