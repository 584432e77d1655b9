package session

import "github.com/shopspring/decimal"

// Tolerance absorbing rounding noise in currency arithmetic. A difference of
// exactly 0.01 is NOT in balance. Do not tighten without revisiting rounding
// behavior in the importer and the commit path.
var balanceTolerance = decimal.RequireFromString("0.01")

// BalanceTotals is the derived view of a selection set against the draft's
// balances. It holds no state of its own and is recomputed on every draft or
// selection mutation.
type BalanceTotals struct {
	DepositsSum       decimal.Decimal `json:"depositsSum"`
	DebitsSum         decimal.Decimal `json:"debitsSum"`
	CalculatedBalance decimal.Decimal `json:"calculatedBalance"`
	Difference        decimal.Decimal `json:"difference"`
	SelectedCount     int             `json:"selectedCount"`
	InBalance         bool            `json:"inBalance"`
}

// ComputeBalance partitions the selected entries into deposits and
// non-deposits, sums each, and derives
//
//	calculated = beginning + deposits − debits
//	difference = statement − calculated
//
// Selected ids that do not resolve against the register cache contribute
// nothing; pruning them is the load-merge's job, not the calculator's.
func ComputeBalance(selection map[string]bool, register map[string]RegisterEntry, beginning, statement decimal.Decimal) BalanceTotals {
	totals := BalanceTotals{
		DepositsSum: decimal.Zero,
		DebitsSum:   decimal.Zero,
	}

	for id := range selection {
		entry, ok := register[id]
		if !ok {
			continue
		}
		totals.SelectedCount++
		if entry.Kind == KindDeposit {
			totals.DepositsSum = totals.DepositsSum.Add(entry.Amount.Abs())
		} else {
			totals.DebitsSum = totals.DebitsSum.Add(entry.Amount.Abs())
		}
	}

	totals.CalculatedBalance = beginning.Add(totals.DepositsSum).Sub(totals.DebitsSum)
	totals.Difference = statement.Sub(totals.CalculatedBalance)
	totals.InBalance = totals.Difference.Abs().LessThan(balanceTolerance)
	return totals
}
