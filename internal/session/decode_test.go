package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-workspace/internal/models"
)

func TestDecodeRegisterEntries(t *testing.T) {
	data := models.TableData{
		Columns: []string{"CIDCHEC", "CENTRYTYPE", "CCHECKNO", "DCHECKDATE", "CPAYEE", "NAMOUNT", "LCLEARED", "LVOID"},
		Rows: [][]interface{}{
			{"E1", "check", "1001", "2025-03-05", "ACME SUPPLY", "245.18", "F", "F"},
			{"E2", "deposit", "", "2025-03-07", "Customer payment", 1200.50, false, false},
		},
	}

	entries, err := DecodeRegisterEntries(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "E1", entries[0].EntryID)
	assert.Equal(t, KindCheck, entries[0].Kind)
	assert.Equal(t, "1001", entries[0].CheckNumber)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, "ACME SUPPLY", entries[0].Payee)
	assert.True(t, entries[0].Amount.Equal(dec("245.18")))
	assert.False(t, entries[0].Cleared)

	assert.Equal(t, KindDeposit, entries[1].Kind)
	assert.True(t, entries[1].Amount.Equal(dec("1200.5")))
}

func TestDecodeLogicalEncodings(t *testing.T) {
	// The legacy layer emits booleans as native bool, "T"/"F", ".T."/".F."
	// or "Y"/"N" depending on which code path produced the row.
	tests := []struct {
		value interface{}
		want  bool
	}{
		{true, true},
		{false, false},
		{"T", true},
		{"t", true},
		{".T.", true},
		{".F.", false},
		{"Y", true},
		{"N", false},
		{"F", false},
		{" T ", true},
		{"", false},
		{nil, false},
		{42, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceLogical(tt.value), "coerceLogical(%v)", tt.value)
	}
}

func TestDecodeSkipsRowsWithoutEntryID(t *testing.T) {
	data := models.TableData{
		Columns: []string{"CIDCHEC", "CENTRYTYPE", "CCHECKNO", "DCHECKDATE", "CPAYEE", "NAMOUNT", "LCLEARED", "LVOID"},
		Rows: [][]interface{}{
			{"", "check", "1001", "2025-03-05", "ACME", "10.00", "F", "F"},
			{nil, "check", "1002", "2025-03-05", "ACME", "10.00", "F", "F"},
			{"E3", "check", "1003", "2025-03-05", "ACME", "10.00", "F", "F"},
		},
	}

	entries, err := DecodeRegisterEntries(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "E3", entries[0].EntryID)
}

func TestDecodeRequiresEntryIDColumn(t *testing.T) {
	data := models.TableData{
		Columns: []string{"CCHECKNO", "NAMOUNT"},
		Rows:    [][]interface{}{{"1001", "10.00"}},
	}
	_, err := DecodeRegisterEntries(data)
	assert.Error(t, err)
}

func TestDecodeBadCellsFallBackToZeroValues(t *testing.T) {
	data := models.TableData{
		Columns: []string{"CIDCHEC", "CENTRYTYPE", "CCHECKNO", "DCHECKDATE", "CPAYEE", "NAMOUNT", "LCLEARED", "LVOID"},
		Rows: [][]interface{}{
			{"E1", "check", "1001", "not-a-date", "ACME", "garbage", "maybe", "F"},
		},
	}

	entries, err := DecodeRegisterEntries(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Date.IsZero())
	assert.True(t, entries[0].Amount.IsZero())
	assert.False(t, entries[0].Cleared)
}

func TestDecodeUnknownKindDefaultsToCheck(t *testing.T) {
	data := models.TableData{
		Columns: []string{"CIDCHEC", "CENTRYTYPE", "NAMOUNT"},
		Rows: [][]interface{}{
			{"E1", "withdrawal", "10.00"},
			{"E2", "DEPOSIT", "20.00"},
		},
	}

	entries, err := DecodeRegisterEntries(data)
	require.NoError(t, err)
	assert.Equal(t, KindCheck, entries[0].Kind)
	assert.Equal(t, KindDeposit, entries[1].Kind)
}
