package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPostingEventTraits(t *testing.T) {
	tests := []struct {
		kind      EventKind
		module    string
		direction Direction
	}{
		{EventSaleCompleted, "sales", DirectionIn},
		{EventDistributionRecorded, "distribution", DirectionOut},
		{EventDebtPaymentMade, "debt", DirectionIn},
		{EventSavingsDeposit, "savings", DirectionIn},
		{EventSavingsWithdrawal, "savings", DirectionOut},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := &PostingEvent{Kind: tt.kind}
			require.Equal(t, tt.module, e.Module())
			require.Equal(t, tt.direction, e.Direction())
			require.NotEmpty(t, e.Category())
		})
	}
}

func TestPostingEventValidate(t *testing.T) {
	valid := func() *PostingEvent {
		return &PostingEvent{
			Kind:     EventSaleCompleted,
			SourceID: "S-1",
			Amount:   decimal.NewFromInt(20000),
			Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	require.NoError(t, valid().Validate())

	e := valid()
	e.Kind = "invoice_sent"
	require.Error(t, e.Validate())

	e = valid()
	e.SourceID = ""
	require.ErrorIs(t, e.Validate(), ErrMissingSourceRef)

	e = valid()
	e.Amount = decimal.Zero
	require.ErrorIs(t, e.Validate(), ErrInvalidAmount)

	e = valid()
	e.Date = time.Time{}
	require.ErrorIs(t, e.Validate(), ErrMissingDate)
}
