package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-workspace/internal/models"
)

type BankTransactionRepository struct {
	db *gorm.DB
}

func NewBankTransactionRepository(db *gorm.DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

func (r *BankTransactionRepository) GetByID(id uuid.UUID) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	if err := r.db.First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *BankTransactionRepository) ListByAccount(company, account string) ([]models.BankTransaction, error) {
	var txs []models.BankTransaction
	err := r.db.
		Where("company_name = ? AND account_no = ?", company, account).
		Order("transaction_date DESC, id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *BankTransactionRepository) ListUnmatched(company, account string) ([]models.BankTransaction, error) {
	var txs []models.BankTransaction
	err := r.db.
		Where("company_name = ? AND account_no = ? AND matched = ?", company, account, false).
		Order("transaction_date ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

// Save persists match-link mutations on an imported transaction.
func (r *BankTransactionRepository) Save(tx *models.BankTransaction) error {
	return r.db.Save(tx).Error
}

// IDsByBatch returns the transaction ids belonging to an import batch.
func (r *BankTransactionRepository) IDsByBatch(batchID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&models.BankTransaction{}).
		Where("import_batch_id = ?", batchID).
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteByBatch removes all transactions of a batch inside tx.
func (r *BankTransactionRepository) DeleteByBatch(tx *gorm.DB, batchID uuid.UUID) error {
	return tx.Where("import_batch_id = ?", batchID).Delete(&models.BankTransaction{}).Error
}

// ClearMatchFields resets match info on every transaction of an account
// inside tx. Used by clear-and-rerun.
func (r *BankTransactionRepository) ClearMatchFields(tx *gorm.DB, company, account string) (int64, error) {
	result := tx.Model(&models.BankTransaction{}).
		Where("company_name = ? AND account_no = ?", company, account).
		Updates(map[string]interface{}{
			"matched":          false,
			"matched_entry_id": nil,
			"match_confidence": 0,
			"match_type":       "",
			"match_details":    nil,
		})
	return result.RowsAffected, result.Error
}
