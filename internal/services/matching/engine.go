package matching

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-workspace/internal/models"
)

// Candidate is a register entry offered to the matcher: the uncleared,
// non-void rows of the account's check register.
type Candidate struct {
	EntryID     string
	EntryType   string // "check" or "deposit"
	CheckNumber string
	Date        time.Time
	Payee       string
	Amount      decimal.Decimal
}

// Options controls a matching run.
type Options struct {
	// LimitToStatementDate restricts candidates to entries dated on or
	// before StatementDate.
	LimitToStatementDate bool
	StatementDate        time.Time
}

// Proposal pairs one bank transaction with its best-scoring register entry.
type Proposal struct {
	TransactionID  string
	EntryID        string
	Confidence     decimal.Decimal // 0-100
	MatchType      string
	AmountScore    float64
	CheckNoScore   float64
	DateScore      float64
	PayeeBonus     float64
	CandidateCount int
}

// minScore is the floor below which a pairing is not proposed at all.
const minScore = 0.5

// Propose runs the scoring pass: each unmatched bank transaction is paired
// with its best available register entry, and an entry is consumed by at most
// one transaction per run. Deposits on the statement are skipped; only the
// debit side is auto-matched against the register.
func Propose(txs []models.BankTransaction, candidates []Candidate, opts Options) []Proposal {
	available := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if opts.LimitToStatementDate && c.Date.After(opts.StatementDate) {
			continue
		}
		available = append(available, c)
	}

	taken := make(map[string]bool)
	var proposals []Proposal

	for i := range txs {
		tx := &txs[i]
		if tx.Matched {
			continue
		}
		if tx.Amount.IsPositive() {
			continue // statement credit, not a check
		}

		best, bestScore := bestCandidate(tx, available, taken)
		if best == nil {
			continue
		}

		taken[best.EntryID] = true
		proposals = append(proposals, Proposal{
			TransactionID:  tx.ID.String(),
			EntryID:        best.EntryID,
			Confidence:     decimal.NewFromFloat(bestScore * 100).Round(2),
			MatchType:      matchType(bestScore),
			AmountScore:    amountScore(tx, *best),
			CheckNoScore:   checkNumberScore(tx, *best),
			DateScore:      dateScore(tx, *best),
			PayeeBonus:     payeeBonus(tx, *best),
			CandidateCount: len(available),
		})
	}

	return proposals
}

func bestCandidate(tx *models.BankTransaction, candidates []Candidate, taken map[string]bool) (*Candidate, float64) {
	var best *Candidate
	highest := 0.0
	for i := range candidates {
		c := &candidates[i]
		if taken[c.EntryID] || c.EntryType == "deposit" {
			continue
		}
		score := Score(tx, *c)
		if score > highest && score > minScore {
			best = c
			highest = score
		}
	}
	return best, highest
}

// Score weights: amount 0.35, check number 0.25, date proximity 0.40, plus a
// payee containment bonus of 0.10 capped at 1.0. A transaction with no amount
// agreement scores zero outright.
func Score(tx *models.BankTransaction, c Candidate) float64 {
	amt := amountScore(tx, c)
	if amt == 0 {
		return 0
	}
	score := amt + checkNumberScore(tx, c) + dateScore(tx, c) + payeeBonus(tx, c)
	return math.Min(score, 1.0)
}

func amountScore(tx *models.BankTransaction, c Candidate) float64 {
	diff := tx.Amount.Abs().Sub(c.Amount.Abs()).Abs()
	switch {
	case diff.LessThan(decimal.NewFromFloat(0.01)):
		return 0.35
	case diff.LessThan(decimal.NewFromInt(1)):
		return 0.20
	default:
		return 0
	}
}

func checkNumberScore(tx *models.BankTransaction, c Candidate) float64 {
	if tx.CheckNumber == "" || c.CheckNumber == "" {
		return 0
	}
	txNo := strings.TrimLeft(strings.TrimSpace(tx.CheckNumber), "0")
	cNo := strings.TrimLeft(strings.TrimSpace(c.CheckNumber), "0")
	switch {
	case txNo == cNo:
		return 0.25
	case strings.Contains(txNo, cNo) || strings.Contains(cNo, txNo):
		return 0.10
	default:
		return 0
	}
}

func dateScore(tx *models.BankTransaction, c Candidate) float64 {
	days := math.Abs(tx.TransactionDate.Sub(c.Date).Hours() / 24)
	switch {
	case days == 0:
		return 0.40
	case days <= 1:
		return 0.35
	case days <= 3:
		return 0.25
	case days <= 7:
		return 0.15
	case days <= 14:
		return 0.05
	default:
		return 0
	}
}

func payeeBonus(tx *models.BankTransaction, c Candidate) float64 {
	if c.Payee == "" || tx.Description == "" {
		return 0
	}
	payee := strings.ToUpper(strings.TrimSpace(c.Payee))
	desc := strings.ToUpper(tx.Description)
	if strings.Contains(desc, payee) || strings.Contains(payee, desc) {
		return 0.10
	}
	return 0
}

func matchType(score float64) string {
	switch {
	case score >= 0.95:
		return "exact"
	case score >= 0.8:
		return "high_confidence"
	case score >= 0.6:
		return "medium_confidence"
	default:
		return "low_confidence"
	}
}
