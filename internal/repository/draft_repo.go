package repository

import (
	"errors"

	"bank-reconciliation-workspace/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DraftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Get returns the persisted draft for an account, or nil if none exists.
func (r *DraftRepository) Get(company, account string) (*models.ReconciliationDraft, error) {
	var draft models.ReconciliationDraft
	err := r.db.Where("company_name = ? AND account_no = ?", company, account).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// Save upserts the draft keyed by (company, account).
func (r *DraftRepository) Save(draft *models.ReconciliationDraft) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_name"}, {Name: "account_no"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"statement_date", "beginning_balance", "statement_balance",
			"statement_credits", "statement_debits", "selection", "status", "updated_at",
		}),
	}).Create(draft).Error
}

func (r *DraftRepository) Delete(company, account string) error {
	return r.db.
		Where("company_name = ? AND account_no = ?", company, account).
		Delete(&models.ReconciliationDraft{}).Error
}

// LastCommitted returns the most recent committed reconciliation for an
// account, or nil if the account has never been reconciled.
func (r *DraftRepository) LastCommitted(company, account string) (*models.CommittedReconciliation, error) {
	var rec models.CommittedReconciliation
	err := r.db.
		Where("company_name = ? AND account_no = ?", company, account).
		Order("committed_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateCommitted appends a committed reconciliation inside tx.
func (r *DraftRepository) CreateCommitted(tx *gorm.DB, rec *models.CommittedReconciliation) error {
	return tx.Create(rec).Error
}
