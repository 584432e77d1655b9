package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Match links one bank transaction to one or more register entries. Manual
// matching allows summing several register entries against a single bank
// transaction, so entry ids are stored as a JSON array.
type Match struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyName       string    `gorm:"index:idx_match_account"`
	AccountNo         string    `gorm:"index:idx_match_account"`
	BankTransactionID uuid.UUID `gorm:"index"`
	RegisterEntryIDs  datatypes.JSON
	Confidence        decimal.Decimal `gorm:"type:numeric(5,2)"` // 0-100, manual matches are 100
	Source            string          // "auto" or "manual"
	CreatedAt         time.Time
}

const (
	MatchSourceAuto   = "auto"
	MatchSourceManual = "manual"
)
