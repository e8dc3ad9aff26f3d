package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
	"github.com/albisri/kasledger/internal/usecase/mocks"
)

type transferFixture struct {
	accRepo   *mocks.MockAccountRepository
	entryRepo *mocks.MockEntryRepository
	uc        *usecase.TransferUseCase
}

func newTransferFixture() *transferFixture {
	accRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	calc := usecase.NewBalanceCalculator(txMgr, accRepo, entryRepo)

	return &transferFixture{
		accRepo:   accRepo,
		entryRepo: entryRepo,
		uc:        usecase.NewTransferUseCase(txMgr, accRepo, entryRepo, calc, idGen, mocks.NewMockRetrier(), nil),
	}
}

func TestTransferUseCase_Transfer(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()
	from := seedAccount(t, f.accRepo, "acc-1", 100000)
	to := seedAccount(t, f.accRepo, "acc-2", 10000)

	result, err := f.uc.Transfer(ctx, usecase.TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(40000),
		Date:          time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		CreatedBy:     "admin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OutEntry.Direction != domain.DirectionOut || result.InEntry.Direction != domain.DirectionIn {
		t.Error("wrong entry directions")
	}
	if result.OutEntry.Reference != result.Reference || result.InEntry.Reference != result.Reference {
		t.Error("paired entries must share the transfer reference")
	}
	if result.OutEntry.Category != domain.CategoryTransfer || result.InEntry.Category != domain.CategoryTransfer {
		t.Error("transfer entries carry the transfer category")
	}

	if !from.CurrentBalance.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("expected source balance 60000, got %s", from.CurrentBalance)
	}
	if !to.CurrentBalance.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected destination balance 50000, got %s", to.CurrentBalance)
	}

	// Money is conserved: the sum across both accounts is unchanged.
	total := from.CurrentBalance.Add(to.CurrentBalance)
	if !total.Equal(decimal.NewFromInt(110000)) {
		t.Errorf("expected combined 110000, got %s", total)
	}
}

func TestTransferUseCase_InputValidation(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()
	from := seedAccount(t, f.accRepo, "acc-1", 100000)
	to := seedAccount(t, f.accRepo, "acc-2", 0)

	tests := []struct {
		name      string
		input     usecase.TransferInput
		expectErr error
	}{
		{
			name:      "same account",
			input:     usecase.TransferInput{FromAccountID: from.ID, ToAccountID: from.ID, Amount: decimal.NewFromInt(100)},
			expectErr: domain.ErrSameAccount,
		},
		{
			name:      "zero amount",
			input:     usecase.TransferInput{FromAccountID: from.ID, ToAccountID: to.ID, Amount: decimal.Zero},
			expectErr: domain.ErrInvalidAmount,
		},
		{
			name:      "negative amount",
			input:     usecase.TransferInput{FromAccountID: from.ID, ToAccountID: to.ID, Amount: decimal.NewFromInt(-100)},
			expectErr: domain.ErrInvalidAmount,
		},
		{
			name:      "unknown account",
			input:     usecase.TransferInput{FromAccountID: from.ID, ToAccountID: "nope", Amount: decimal.NewFromInt(100)},
			expectErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.uc.Transfer(ctx, tt.input); !errors.Is(err, tt.expectErr) {
				t.Fatalf("expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestTransferUseCase_InsufficientFundsUsesDerivedBalance(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()
	from := seedAccount(t, f.accRepo, "acc-1", 10000)
	to := seedAccount(t, f.accRepo, "acc-2", 0)

	// An inflated cache must not admit an overdraft; the check recomputes
	// from posted entries.
	from.CurrentBalance = decimal.NewFromInt(500000)

	_, err := f.uc.Transfer(ctx, usecase.TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(50000),
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	entries, _ := f.entryRepo.Find(ctx, domain.EntryFilter{})
	if len(entries) != 0 {
		t.Errorf("failed transfer must post nothing, got %d entries", len(entries))
	}
}

func TestTransferUseCase_RejectsInactiveAccounts(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()
	from := seedAccount(t, f.accRepo, "acc-1", 100000)
	to := seedAccount(t, f.accRepo, "acc-2", 0)
	to.Status = domain.AccountStatusClosed

	_, err := f.uc.Transfer(ctx, usecase.TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(1000),
	})
	if !errors.Is(err, domain.ErrAccountClosed) {
		t.Fatalf("expected ErrAccountClosed, got %v", err)
	}
}

func TestTransferUseCase_Atomicity(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()
	from := seedAccount(t, f.accRepo, "acc-1", 100000)
	to := seedAccount(t, f.accRepo, "acc-2", 10000)

	// Fail the destination's cache rewrite after both entries are in: the
	// whole transaction must unwind.
	f.accRepo.UpdateCurrentBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
		if id == to.ID {
			return errors.New("connection reset")
		}
		return nil
	}

	_, err := f.uc.Transfer(ctx, usecase.TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(40000),
	})
	if err == nil {
		t.Fatal("expected error")
	}

	entries, _ := f.entryRepo.Find(ctx, domain.EntryFilter{})
	if len(entries) != 0 {
		t.Errorf("rolled back transfer must leave no entries, got %d", len(entries))
	}
	if !from.CurrentBalance.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("source balance must be unchanged, got %s", from.CurrentBalance)
	}
	if !to.CurrentBalance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("destination balance must be unchanged, got %s", to.CurrentBalance)
	}
}
