package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseStatement(t *testing.T) {
	content := `Date,Description,Amount,Check Number
2025-03-05,CHECK 1001 ACME SUPPLY,-245.18,1001
2025-03-07,DEPOSIT,1200.50,
`
	txs, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), txs[0].Date)
	assert.Equal(t, "CHECK 1001 ACME SUPPLY", txs[0].Description)
	assert.True(t, txs[0].Amount.Equal(dec("-245.18")))
	assert.Equal(t, "1001", txs[0].CheckNumber)

	assert.True(t, txs[1].Amount.Equal(dec("1200.5")))
	assert.Empty(t, txs[1].CheckNumber)
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-03-05", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"03/05/2025", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"05-03-2025", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := parseDate("March 5, 2025")
	assert.Error(t, err)
}

func TestParseAmountVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"-245.18", "-245.18"},
		{"$1,200.50", "1200.50"},
		{"(75.25)", "-75.25"},
		{"($75.25)", "-75.25"},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.True(t, got.Equal(dec(tt.want)), "parseAmount(%q) = %s", tt.raw, got)
	}

	_, err := parseAmount("N/A")
	assert.Error(t, err)
}

func TestParseSkipsMalformedRows(t *testing.T) {
	content := `Date,Description,Amount
not-a-date,BAD DATE,-10.00
2025-03-05,BAD AMOUNT,garbage
,,
2025-03-06,GOOD ROW,-20.00
short,row
`
	txs, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "GOOD ROW", txs[0].Description)
}

func TestParseRejectsStatementWithNoUsableRows(t *testing.T) {
	content := `Date,Description,Amount
not-a-date,ONLY BAD ROWS,garbage
`
	_, err := Parse(strings.NewReader(content))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(""))
	assert.Error(t, err, "empty content has no header")
}
