package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAccountCode(t *testing.T) {
	require.NoError(t, ValidateAccountCode("KAS-1"))
	require.NoError(t, ValidateAccountCode("bank_bsi_01"))

	require.ErrorIs(t, ValidateAccountCode(""), ErrInvalidAccountCode)
	require.ErrorIs(t, ValidateAccountCode("kas utama"), ErrInvalidAccountCode)
	require.ErrorIs(t, ValidateAccountCode("-leading"), ErrInvalidAccountCode)
	require.ErrorIs(t, ValidateAccountCode(strings.Repeat("x", MaxAccountCodeLength+1)), ErrInvalidAccountCode)
}

func TestValidatePagination(t *testing.T) {
	limit, offset := ValidatePagination(0, -5)
	require.Equal(t, 50, limit)
	require.Equal(t, 0, offset)

	limit, offset = ValidatePagination(5000, 10)
	require.Equal(t, 1000, limit)
	require.Equal(t, 10, offset)
}
