package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountToggledStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  AccountStatus
		want    AccountStatus
		wantErr error
	}{
		{"active becomes suspended", AccountStatusActive, AccountStatusSuspended, nil},
		{"suspended becomes active", AccountStatusSuspended, AccountStatusActive, nil},
		{"closed cannot toggle", AccountStatusClosed, "", ErrAccountClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Status: tt.status}
			got, err := a.ToggledStatus()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAccountCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    AccountStatus
		to      AccountStatus
		wantErr error
	}{
		{"active to suspended", AccountStatusActive, AccountStatusSuspended, nil},
		{"suspended to active", AccountStatusSuspended, AccountStatusActive, nil},
		{"active to closed", AccountStatusActive, AccountStatusClosed, nil},
		{"closed is terminal", AccountStatusClosed, AccountStatusActive, ErrAccountClosed},
		{"suspended cannot close", AccountStatusSuspended, AccountStatusClosed, ErrInvalidStatus},
		{"unknown status", AccountStatusActive, AccountStatus("frozen"), ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Status: tt.from}
			err := a.CanTransitionTo(tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAccountValidate(t *testing.T) {
	valid := func() *Account {
		return &Account{
			Name:      "Kas Utama",
			Code:      "KAS-1",
			Type:      AccountTypeCash,
			ManagedBy: "finance",
		}
	}

	t.Run("valid account", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("empty name", func(t *testing.T) {
		a := valid()
		a.Name = "  "
		require.ErrorIs(t, a.Validate(), ErrInvalidAccountName)
	})

	t.Run("bad code", func(t *testing.T) {
		a := valid()
		a.Code = "kas 1!"
		require.ErrorIs(t, a.Validate(), ErrInvalidAccountCode)
	})

	t.Run("unknown type", func(t *testing.T) {
		a := valid()
		a.Type = "wallet"
		require.ErrorIs(t, a.Validate(), ErrInvalidAccountType)
	})

	t.Run("missing scope", func(t *testing.T) {
		a := valid()
		a.ManagedBy = ""
		require.ErrorIs(t, a.Validate(), ErrMissingScope)
	})
}
