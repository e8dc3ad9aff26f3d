package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
)

// MonitorUseCase exposes the read-only consistency checks. Nothing here
// mutates the ledger; remediation is an operator action.
type MonitorUseCase struct {
	monitorRepo MonitorRepository
	accountRepo AccountRepository
	balance     *BalanceCalculator
}

// NewMonitorUseCase creates a new MonitorUseCase.
func NewMonitorUseCase(
	monitorRepo MonitorRepository,
	accountRepo AccountRepository,
	balance *BalanceCalculator,
) *MonitorUseCase {
	return &MonitorUseCase{
		monitorRepo: monitorRepo,
		accountRepo: accountRepo,
		balance:     balance,
	}
}

// FindDuplicates returns groups of posted entries sharing category, date and
// amount. Groups are suspects, not verdicts.
func (uc *MonitorUseCase) FindDuplicates(ctx context.Context) ([]*domain.DuplicateGroup, error) {
	return uc.monitorRepo.FindDuplicateGroups(ctx)
}

// FindOrphans returns posted auto-posted entries whose origin record no
// longer exists in the source registry.
func (uc *MonitorUseCase) FindOrphans(ctx context.Context) ([]*domain.Entry, error) {
	return uc.monitorRepo.FindOrphans(ctx)
}

// SummarizeAutoPosted aggregates auto-posted entries per origin module over
// a date range.
func (uc *MonitorUseCase) SummarizeAutoPosted(ctx context.Context, from, to time.Time) ([]*domain.AutoPostedSummary, error) {
	return uc.monitorRepo.SummarizeAutoPosted(ctx, from, to)
}

// BalanceDrift compares the cached balance of one account against the
// balance derived from its posted entries.
type BalanceDrift struct {
	AccountID string
	Cached    decimal.Decimal
	Derived   decimal.Decimal
	Drift     decimal.Decimal
}

// CheckBalances recomputes every active account's balance and reports the
// ones whose cache has drifted from the derived value.
func (uc *MonitorUseCase) CheckBalances(ctx context.Context) ([]*BalanceDrift, error) {
	accounts, err := uc.accountRepo.List(ctx, domain.AccountFilter{
		Status: domain.AccountStatusActive,
		Limit:  domain.MaxPageSize,
	})
	if err != nil {
		return nil, err
	}

	var drifts []*BalanceDrift
	for _, account := range accounts {
		derived, err := uc.balance.Compute(ctx, account.ID)
		if err != nil {
			return nil, err
		}

		if derived.Equal(account.CurrentBalance) {
			continue
		}

		drifts = append(drifts, &BalanceDrift{
			AccountID: account.ID,
			Cached:    account.CurrentBalance,
			Derived:   derived,
			Drift:     account.CurrentBalance.Sub(derived),
		})
	}

	return drifts, nil
}
