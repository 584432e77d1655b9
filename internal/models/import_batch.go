package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportBatch records one bank statement import. Deleting a batch cascades to
// its transactions and any matches referencing them.
type ImportBatch struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyName      string    `gorm:"index:idx_batch_account"`
	AccountNo        string    `gorm:"index:idx_batch_account"`
	Filename         string
	StatementDate    time.Time
	TransactionCount int
	MatchedCount     int
	ImportedBy       string
	ImportedAt       time.Time
	CreatedAt        time.Time
}
