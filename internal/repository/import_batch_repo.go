package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-workspace/internal/models"
)

type ImportBatchRepository struct {
	db *gorm.DB
}

func NewImportBatchRepository(db *gorm.DB) *ImportBatchRepository {
	return &ImportBatchRepository{db: db}
}

func (r *ImportBatchRepository) Create(batch *models.ImportBatch) error {
	return r.db.Create(batch).Error
}

func (r *ImportBatchRepository) GetByID(id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := r.db.First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *ImportBatchRepository) ListRecent(company, account string, limit int) ([]models.ImportBatch, error) {
	var batches []models.ImportBatch
	err := r.db.
		Where("company_name = ? AND account_no = ?", company, account).
		Order("imported_at DESC").
		Limit(limit).
		Find(&batches).Error
	return batches, err
}

func (r *ImportBatchRepository) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&models.ImportBatch{}, "id = ?", id).Error
}

func (r *ImportBatchRepository) UpdateMatchedCount(id uuid.UUID, matched int) error {
	return r.db.Model(&models.ImportBatch{}).
		Where("id = ?", id).
		Update("matched_count", matched).Error
}
