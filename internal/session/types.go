package session

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterEntry is the session's normalized view of one register row. It is a
// read-only snapshot per load; clearing is expressed through draft selection
// membership, never by mutating these fields.
type RegisterEntry struct {
	EntryID     string          `json:"entryId"`
	Kind        string          `json:"kind"` // "check" or "deposit"
	CheckNumber string          `json:"checkNumber"`
	Date        time.Time       `json:"date"`
	Payee       string          `json:"payee"`
	Amount      decimal.Decimal `json:"amount"`
	Cleared     bool            `json:"cleared"`
	Void        bool            `json:"void"`
}

const (
	KindCheck   = "check"
	KindDeposit = "deposit"
)

// SelectionItem is the persisted form of one selected entry. The redundant
// detail lets a saved draft re-resolve entries even if the register reloads
// in a different order.
type SelectionItem struct {
	EntryID     string          `json:"entryId"`
	CheckNumber string          `json:"checkNumber"`
	Amount      decimal.Decimal `json:"amount"`
	Payee       string          `json:"payee"`
	Date        string          `json:"date"`
}

// Draft holds the mutable reconciliation-in-progress for the active account.
type Draft struct {
	StatementDate    time.Time       `json:"statementDate"`
	BeginningBalance decimal.Decimal `json:"beginningBalance"`
	StatementBalance decimal.Decimal `json:"statementBalance"`
	StatementCredits decimal.Decimal `json:"statementCredits"`
	StatementDebits  decimal.Decimal `json:"statementDebits"`
}

// Snapshot is the read model handed to the HTTP layer: the draft, the derived
// balance totals, and the dirty flag.
type Snapshot struct {
	Company   string        `json:"company"`
	Account   string        `json:"account"`
	Draft     Draft         `json:"draft"`
	Selected  []string      `json:"selected"`
	Totals    BalanceTotals `json:"totals"`
	Dirty     bool          `json:"dirty"`
	LastSaved time.Time     `json:"lastSaved"`
}
