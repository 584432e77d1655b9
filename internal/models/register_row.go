package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRow is one row of a company's check/deposit register. The register
// is the legacy system of record; the session layer never mutates these rows
// directly except through commit, which sets Cleared.
type RegisterRow struct {
	EntryID     string          `gorm:"primaryKey"`
	CompanyName string          `gorm:"index:idx_register_account"`
	AccountNo   string          `gorm:"index:idx_register_account"`
	EntryType   string          // "check" or "deposit"
	CheckNumber string          // blank for deposits, not guaranteed unique
	EntryDate   time.Time
	Payee       string
	Amount      decimal.Decimal `gorm:"type:numeric(14,2)"`
	Cleared     bool
	Void        bool
	CreatedAt   time.Time
}
