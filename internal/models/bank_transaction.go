package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BankTransaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyName     string    `gorm:"index:idx_banktx_account"`
	AccountNo       string    `gorm:"index:idx_banktx_account"`
	ImportBatchID   uuid.UUID `gorm:"index"`
	TransactionDate time.Time `gorm:"column:transaction_date"`
	Description     string
	Amount          decimal.Decimal `gorm:"type:numeric(14,2)"` // sign encodes debit/credit
	CheckNumber     string          // hint parsed from the statement, often blank
	Matched         bool            `gorm:"index"`
	MatchedEntryID  *string         // primary matched register entry
	MatchConfidence decimal.Decimal `gorm:"type:numeric(5,2)"` // 0-100
	MatchType       string
	MatchDetails    datatypes.JSON
	CreatedAt       time.Time
}
