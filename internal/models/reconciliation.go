package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ReconciliationDraft is the persisted in-progress reconciliation for one
// account. Exactly one draft may exist per (company, account); it is deleted
// on commit or explicit discard.
type ReconciliationDraft struct {
	ID               uint   `gorm:"primaryKey"`
	CompanyName      string `gorm:"uniqueIndex:idx_draft_account"`
	AccountNo        string `gorm:"uniqueIndex:idx_draft_account"`
	StatementDate    time.Time
	BeginningBalance decimal.Decimal `gorm:"type:numeric(14,2)"`
	StatementBalance decimal.Decimal `gorm:"type:numeric(14,2)"`
	StatementCredits decimal.Decimal `gorm:"type:numeric(14,2)"`
	StatementDebits  decimal.Decimal `gorm:"type:numeric(14,2)"`
	// Selection holds the cleared-entry tuples: entryId plus checkNumber,
	// amount, payee and date so the selection re-resolves even if the
	// register reloads in a different order.
	Selection datatypes.JSON
	Status    string
	UpdatedAt time.Time
	CreatedAt time.Time
}

// CommittedReconciliation is the immutable record written on commit. The next
// draft's beginning balance is carried from the latest ending balance.
type CommittedReconciliation struct {
	ID            uint   `gorm:"primaryKey"`
	CompanyName   string `gorm:"index:idx_committed_account"`
	AccountNo     string `gorm:"index:idx_committed_account"`
	StatementDate time.Time
	EndingBalance decimal.Decimal `gorm:"type:numeric(14,2)"`
	ClearedCount  int
	ClearedAmount decimal.Decimal `gorm:"type:numeric(14,2)"`
	CommittedAt   time.Time
	CommittedBy   string
}
