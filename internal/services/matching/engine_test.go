package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-workspace/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(amount, checkNo, desc string, date time.Time) models.BankTransaction {
	return models.BankTransaction{
		ID:              uuid.New(),
		Amount:          dec(amount),
		CheckNumber:     checkNo,
		Description:     desc,
		TransactionDate: date,
	}
}

func cand(id, checkNo, payee, amount string, date time.Time) Candidate {
	return Candidate{
		EntryID:     id,
		EntryType:   "check",
		CheckNumber: checkNo,
		Date:        date,
		Payee:       payee,
		Amount:      dec(amount),
	}
}

func TestScorePerfectMatch(t *testing.T) {
	line := tx("-245.18", "1001", "CHECK 1001 ACME SUPPLY", day(5))
	entry := cand("E1", "1001", "ACME SUPPLY", "245.18", day(5))

	// amount 0.35 + check 0.25 + same-day 0.40 + payee 0.10, capped at 1.0
	assert.InDelta(t, 1.0, Score(&line, entry), 1e-9)
}

func TestScoreAmountGate(t *testing.T) {
	entry := cand("E1", "1001", "ACME", "100.00", day(5))

	tests := []struct {
		name   string
		amount string
		want   float64
	}{
		{"exact", "-100.00", 0.35},
		{"sub-cent difference", "-100.005", 0.35},
		{"within a dollar", "-100.50", 0.20},
		{"a dollar off", "-101.00", 0},
		{"way off", "-250.00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := tx(tt.amount, "", "", day(5))
			assert.InDelta(t, tt.want, amountScore(&line, entry), 1e-9)
		})
	}

	// No amount agreement zeroes the whole score even with a matching
	// check number and date.
	line := tx("-250.00", "1001", "ACME", day(5))
	assert.Zero(t, Score(&line, entry))
}

func TestCheckNumberScoreIgnoresLeadingZeros(t *testing.T) {
	entry := cand("E1", "001001", "ACME", "100.00", day(5))

	exact := tx("-100.00", "1001", "", day(5))
	assert.InDelta(t, 0.25, checkNumberScore(&exact, entry), 1e-9)

	partial := tx("-100.00", "91001", "", day(5))
	assert.InDelta(t, 0.10, checkNumberScore(&partial, entry), 1e-9)

	missing := tx("-100.00", "", "", day(5))
	assert.Zero(t, checkNumberScore(&missing, entry))
}

func TestDateScoreDecaysWithDistance(t *testing.T) {
	entry := cand("E1", "", "", "100.00", day(10))

	tests := []struct {
		txDay int
		want  float64
	}{
		{10, 0.40},
		{11, 0.35},
		{13, 0.25},
		{17, 0.15},
		{24, 0.05},
		{25, 0},
	}
	for _, tt := range tests {
		line := tx("-100.00", "", "", day(tt.txDay))
		assert.InDelta(t, tt.want, dateScore(&line, entry), 1e-9, "day %d", tt.txDay)
	}
}

func TestPayeeBonusIsContainment(t *testing.T) {
	entry := cand("E1", "", "City Utilities", "100.00", day(5))

	hit := tx("-100.00", "", "ACH DEBIT CITY UTILITIES INC", day(5))
	assert.InDelta(t, 0.10, payeeBonus(&hit, entry), 1e-9)

	miss := tx("-100.00", "", "AMAZON MKTPLACE", day(5))
	assert.Zero(t, payeeBonus(&miss, entry))
}

func TestProposeBelowThresholdIsDropped(t *testing.T) {
	// Amount within a dollar (0.20) plus a 14-day-old date (0.05) stays
	// under the 0.5 floor.
	txs := []models.BankTransaction{tx("-100.50", "", "", day(24))}
	candidates := []Candidate{cand("E1", "", "", "100.00", day(10))}

	assert.Empty(t, Propose(txs, candidates, Options{}))
}

func TestProposeSkipsMatchedAndCredits(t *testing.T) {
	matched := tx("-100.00", "1001", "", day(5))
	matched.Matched = true
	credit := tx("250.00", "", "DEPOSIT", day(5))
	open := tx("-100.00", "1001", "", day(5))

	candidates := []Candidate{cand("E1", "1001", "", "100.00", day(5))}

	proposals := Propose([]models.BankTransaction{matched, credit, open}, candidates, Options{})
	require.Len(t, proposals, 1)
	assert.Equal(t, open.ID.String(), proposals[0].TransactionID)
}

func TestProposeSkipsDepositCandidates(t *testing.T) {
	txs := []models.BankTransaction{tx("-100.00", "", "", day(5))}
	deposit := cand("D1", "", "", "100.00", day(5))
	deposit.EntryType = "deposit"

	assert.Empty(t, Propose(txs, []Candidate{deposit}, Options{}))
}

func TestProposeConsumesEachEntryOnce(t *testing.T) {
	// Two statement lines both fit E1 best; only the first gets it, the
	// second falls through to E2.
	txs := []models.BankTransaction{
		tx("-100.00", "1001", "", day(5)),
		tx("-100.00", "1001", "", day(5)),
	}
	candidates := []Candidate{
		cand("E1", "1001", "", "100.00", day(5)),
		cand("E2", "", "", "100.00", day(5)),
	}

	proposals := Propose(txs, candidates, Options{})
	require.Len(t, proposals, 2)
	assert.Equal(t, "E1", proposals[0].EntryID)
	assert.Equal(t, "E2", proposals[1].EntryID)
}

func TestProposeLimitToStatementDate(t *testing.T) {
	txs := []models.BankTransaction{tx("-100.00", "1001", "", day(5))}
	candidates := []Candidate{cand("E1", "1001", "", "100.00", day(20))}

	opts := Options{LimitToStatementDate: true, StatementDate: day(15)}
	assert.Empty(t, Propose(txs, candidates, opts))

	opts.StatementDate = day(25)
	assert.Len(t, Propose(txs, candidates, opts), 1)
}

func TestProposalConfidenceAndType(t *testing.T) {
	txs := []models.BankTransaction{tx("-100.00", "1001", "", day(5))}
	candidates := []Candidate{cand("E1", "1001", "", "100.00", day(5))}

	proposals := Propose(txs, candidates, Options{})
	require.Len(t, proposals, 1)
	p := proposals[0]
	// 0.35 + 0.25 + 0.40 = 1.0
	assert.True(t, p.Confidence.Equal(dec("100")), "got %s", p.Confidence)
	assert.Equal(t, "exact", p.MatchType)
	assert.Equal(t, 1, p.CandidateCount)
}

func TestMatchTypeBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, "exact"},
		{0.90, "high_confidence"},
		{0.80, "high_confidence"},
		{0.70, "medium_confidence"},
		{0.60, "medium_confidence"},
		{0.55, "low_confidence"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchType(tt.score), "score %.2f", tt.score)
	}
}
