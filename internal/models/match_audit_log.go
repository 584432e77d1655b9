package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MatchAuditLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionID   uuid.UUID `gorm:"index"`
	Action          string // "auto_match", "manual_match", "unmatch", "clear_all"
	PreviousEntries datatypes.JSON
	NewEntries      datatypes.JSON
	PerformedBy     string
	Reason          string
	CreatedAt       time.Time
}
