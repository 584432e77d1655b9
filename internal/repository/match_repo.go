package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-workspace/internal/models"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ListByAccount(company, account string) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.
		Where("company_name = ? AND account_no = ?", company, account).
		Order("created_at ASC").
		Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) GetByTransaction(txID uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := r.db.First(&match, "bank_transaction_id = ?", txID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *MatchRepository) Create(match *models.Match) error {
	return r.db.Create(match).Error
}

func (r *MatchRepository) DeleteByTransaction(txID uuid.UUID) error {
	return r.db.Where("bank_transaction_id = ?", txID).Delete(&models.Match{}).Error
}

// DeleteByAccount removes every match for an account inside tx. Used by
// clear-and-rerun.
func (r *MatchRepository) DeleteByAccount(tx *gorm.DB, company, account string) (int64, error) {
	result := tx.Where("company_name = ? AND account_no = ?", company, account).Delete(&models.Match{})
	return result.RowsAffected, result.Error
}

// DeleteByTransactions removes matches referencing the given transactions
// inside tx. Used by batch deletion cascade.
func (r *MatchRepository) DeleteByTransactions(tx *gorm.DB, txIDs []uuid.UUID) error {
	if len(txIDs) == 0 {
		return nil
	}
	return tx.Where("bank_transaction_id IN ?", txIDs).Delete(&models.Match{}).Error
}

// Audit appends a match audit log row. Audit failures are not fatal to the
// operation being audited.
func (r *MatchRepository) Audit(entry *models.MatchAuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}
