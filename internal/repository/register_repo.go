package repository

import (
	"bank-reconciliation-workspace/internal/models"

	"gorm.io/gorm"
)

type RegisterRepository struct {
	db *gorm.DB
}

func NewRegisterRepository(db *gorm.DB) *RegisterRepository {
	return &RegisterRepository{db: db}
}

// RegisterColumns is the column layout OutstandingRows renders. The names
// come from the legacy CHECKS table and are part of the wire contract.
var RegisterColumns = []string{
	"CIDCHEC", "CENTRYTYPE", "CCHECKNO", "DCHECKDATE", "CPAYEE", "NAMOUNT", "LCLEARED", "LVOID",
}

// Outstanding returns the account's uncleared, non-void register rows.
func (r *RegisterRepository) Outstanding(company, account string) ([]models.RegisterRow, error) {
	var entries []models.RegisterRow
	err := r.db.
		Where("company_name = ? AND account_no = ?", company, account).
		Where("cleared = ? AND void = ?", false, false).
		Order("entry_date ASC, entry_id ASC").
		Find(&entries).Error
	return entries, err
}

// OutstandingRows returns the same rows in the legacy tabular shape. Logical
// flags are rendered in the legacy "T"/"F" encoding and dates as yyyy-mm-dd
// strings, matching what the DBF layer produced.
func (r *RegisterRepository) OutstandingRows(company, account string) (models.TableData, error) {
	entries, err := r.Outstanding(company, account)
	if err != nil {
		return models.TableData{}, err
	}

	data := models.TableData{Columns: RegisterColumns}
	for _, e := range entries {
		data.Rows = append(data.Rows, []interface{}{
			e.EntryID,
			e.EntryType,
			e.CheckNumber,
			e.EntryDate.Format("2006-01-02"),
			e.Payee,
			e.Amount.String(),
			legacyBool(e.Cleared),
			legacyBool(e.Void),
		})
	}
	return data, nil
}

// GetByIDs fetches specific register rows regardless of cleared state.
func (r *RegisterRepository) GetByIDs(company, account string, entryIDs []string) ([]models.RegisterRow, error) {
	var entries []models.RegisterRow
	err := r.db.
		Where("company_name = ? AND account_no = ?", company, account).
		Where("entry_id IN ?", entryIDs).
		Find(&entries).Error
	return entries, err
}

// MarkCleared flips the cleared flag on the given entries inside tx. Used
// only by commit; the session layer never writes this flag directly.
func (r *RegisterRepository) MarkCleared(tx *gorm.DB, company, account string, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return tx.Model(&models.RegisterRow{}).
		Where("company_name = ? AND account_no = ?", company, account).
		Where("entry_id IN ?", entryIDs).
		Updates(map[string]interface{}{"cleared": true}).Error
}

func legacyBool(b bool) string {
	if b {
		return "T"
	}
	return "F"
}
