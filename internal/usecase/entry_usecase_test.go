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

type entryFixture struct {
	accRepo   *mocks.MockAccountRepository
	entryRepo *mocks.MockEntryRepository
	uc        *usecase.EntryUseCase
}

func newEntryFixture() *entryFixture {
	accRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	calc := usecase.NewBalanceCalculator(txMgr, accRepo, entryRepo)

	return &entryFixture{
		accRepo:   accRepo,
		entryRepo: entryRepo,
		uc:        usecase.NewEntryUseCase(txMgr, accRepo, entryRepo, calc, idGen),
	}
}

func TestEntryUseCase_CreateEntry(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()
	account := seedAccount(t, f.accRepo, "acc-1", 100000)

	entry, err := f.uc.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID:   account.ID,
		Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Direction:   domain.DirectionOut,
		Category:    "Operations",
		Amount:      decimal.NewFromInt(30000),
		Description: "Beli ATK",
		CreatedBy:   "admin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.EntryStatusPosted {
		t.Errorf("manual entries post immediately, got %s", entry.Status)
	}
	if entry.AutoPosted {
		t.Error("manual entries are not auto-posted")
	}
	if !account.CurrentBalance.Equal(decimal.NewFromInt(70000)) {
		t.Errorf("balance cache should be resynced to 70000, got %s", account.CurrentBalance)
	}
}

func TestEntryUseCase_CreateEntryValidation(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()
	account := seedAccount(t, f.accRepo, "acc-1", 0)

	base := usecase.CreateEntryInput{
		AccountID: account.ID,
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Direction: domain.DirectionIn,
		Category:  "Donations",
		Amount:    decimal.NewFromInt(1000),
	}

	tests := []struct {
		name      string
		mutate    func(*usecase.CreateEntryInput)
		expectErr error
	}{
		{"zero amount", func(in *usecase.CreateEntryInput) { in.Amount = decimal.Zero }, domain.ErrInvalidAmount},
		{"negative amount", func(in *usecase.CreateEntryInput) { in.Amount = decimal.NewFromInt(-5) }, domain.ErrInvalidAmount},
		{"bad direction", func(in *usecase.CreateEntryInput) { in.Direction = "sideways" }, domain.ErrInvalidDirection},
		{"missing category", func(in *usecase.CreateEntryInput) { in.Category = "" }, domain.ErrMissingCategory},
		{"missing date", func(in *usecase.CreateEntryInput) { in.Date = time.Time{} }, domain.ErrMissingDate},
		{"missing account", func(in *usecase.CreateEntryInput) { in.AccountID = "" }, domain.ErrMissingAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := base
			tt.mutate(&input)
			if _, err := f.uc.CreateEntry(ctx, input); !errors.Is(err, tt.expectErr) {
				t.Fatalf("expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestEntryUseCase_CreateEntryRejectsInactiveAccount(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()
	account := seedAccount(t, f.accRepo, "acc-1", 0)
	account.Status = domain.AccountStatusSuspended

	_, err := f.uc.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID: account.ID,
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Direction: domain.DirectionIn,
		Category:  "Donations",
		Amount:    decimal.NewFromInt(1000),
	})
	if !errors.Is(err, domain.ErrAccountClosed) {
		t.Fatalf("expected ErrAccountClosed, got %v", err)
	}
}

func TestEntryUseCase_CancelEntry(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()
	account := seedAccount(t, f.accRepo, "acc-1", 0)

	entry, err := f.uc.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID: account.ID,
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Direction: domain.DirectionIn,
		Category:  "Donations",
		Amount:    decimal.NewFromInt(50000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !account.CurrentBalance.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected 50000 before cancel, got %s", account.CurrentBalance)
	}

	cancelled, err := f.uc.CancelEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.EntryStatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
	if !account.CurrentBalance.Equal(decimal.Zero) {
		t.Errorf("expected balance back to 0, got %s", account.CurrentBalance)
	}

	// The row survives for audit, but cancelling twice is refused.
	if _, err := f.entryRepo.GetByID(ctx, entry.ID); err != nil {
		t.Errorf("cancelled entry should still exist: %v", err)
	}
	if _, err := f.uc.CancelEntry(ctx, entry.ID); !errors.Is(err, domain.ErrEntryImmutable) {
		t.Fatalf("expected ErrEntryImmutable, got %v", err)
	}
}

func TestEntryUseCase_CancelEntryRefusesAutoPosted(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()
	account := seedAccount(t, f.accRepo, "acc-1", 0)

	entry, err := f.uc.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID: account.ID,
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Direction: domain.DirectionIn,
		Category:  "Sales",
		Amount:    decimal.NewFromInt(75000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.uc.LinkSource(ctx, entry.ID, "sales", "S-42"); err != nil {
		t.Fatalf("link: %v", err)
	}

	// Reversal of auto-posted entries belongs to the origin module; the
	// generic cancel path must refuse and leave the balance alone.
	if _, err := f.uc.CancelEntry(ctx, entry.ID); !errors.Is(err, domain.ErrEntryImmutable) {
		t.Fatalf("expected ErrEntryImmutable, got %v", err)
	}

	stored, err := f.entryRepo.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.EntryStatusPosted {
		t.Errorf("entry must stay posted, got %s", stored.Status)
	}
	if !account.CurrentBalance.Equal(decimal.NewFromInt(75000)) {
		t.Errorf("balance must be untouched, got %s", account.CurrentBalance)
	}
}

func TestEntryUseCase_LinkSource(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()
	account := seedAccount(t, f.accRepo, "acc-1", 0)

	entry, err := f.uc.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID: account.ID,
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Direction: domain.DirectionIn,
		Category:  "Sales",
		Amount:    decimal.NewFromInt(75000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before := account.CurrentBalance

	linked, err := f.uc.LinkSource(ctx, entry.ID, "sales", "S-99")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if !linked.AutoPosted || linked.SourceModule != "sales" || linked.SourceID != "S-99" {
		t.Errorf("entry not linked: %+v", linked)
	}
	if !account.CurrentBalance.Equal(before) {
		t.Errorf("linking must not move the balance, got %s", account.CurrentBalance)
	}

	// Linking a second entry to the same origin record is refused.
	other, err := f.uc.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID: account.ID,
		Date:      time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		Direction: domain.DirectionIn,
		Category:  "Sales",
		Amount:    decimal.NewFromInt(75000),
	})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	if _, err := f.uc.LinkSource(ctx, other.ID, "sales", "S-99"); !errors.Is(err, domain.ErrDuplicatePosting) {
		t.Fatalf("expected ErrDuplicatePosting, got %v", err)
	}

	// So is re-linking an already linked entry.
	if _, err := f.uc.LinkSource(ctx, entry.ID, "sales", "S-100"); !errors.Is(err, domain.ErrDuplicatePosting) {
		t.Fatalf("expected ErrDuplicatePosting, got %v", err)
	}
}
