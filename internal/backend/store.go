package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bank-reconciliation-workspace/internal/models"
	"bank-reconciliation-workspace/internal/repository"
	"bank-reconciliation-workspace/internal/services/importer"
	"bank-reconciliation-workspace/internal/services/matching"
	"bank-reconciliation-workspace/internal/session"
)

// Store implements session.Backend against the repositories: register rows,
// draft persistence, statement imports and the matching algorithm.
type Store struct {
	db       *gorm.DB
	register *repository.RegisterRepository
	drafts   *repository.DraftRepository
	bankTxs  *repository.BankTransactionRepository
	matches  *repository.MatchRepository
	batches  *repository.ImportBatchRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		register: repository.NewRegisterRepository(db),
		drafts:   repository.NewDraftRepository(db),
		bankTxs:  repository.NewBankTransactionRepository(db),
		matches:  repository.NewMatchRepository(db),
		batches:  repository.NewImportBatchRepository(db),
	}
}

func (s *Store) GetOutstandingRegisterEntries(company, account string) (models.TableData, error) {
	return s.register.OutstandingRows(company, account)
}

func (s *Store) GetLastReconciliation(company, account string) (*models.CommittedReconciliation, error) {
	return s.drafts.LastCommitted(company, account)
}

func (s *Store) GetReconciliationDraft(company, account string) (*models.ReconciliationDraft, error) {
	return s.drafts.Get(company, account)
}

func (s *Store) SaveReconciliationDraft(draft *models.ReconciliationDraft) error {
	return s.drafts.Save(draft)
}

func (s *Store) DeleteReconciliationDraft(company, account string) error {
	return s.drafts.Delete(company, account)
}

// CommitReconciliation finalizes the persisted draft: the committed record is
// appended, the selected register entries are marked cleared, and the draft
// is deleted, all in one transaction. Any failure rolls back the whole
// commit and leaves the draft untouched.
func (s *Store) CommitReconciliation(company, account, committedBy string) (*models.CommittedReconciliation, error) {
	draft, err := s.drafts.Get(company, account)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("no draft to commit for %s/%s", company, account)
	}

	var items []session.SelectionItem
	if len(draft.Selection) > 0 {
		if err := json.Unmarshal(draft.Selection, &items); err != nil {
			return nil, fmt.Errorf("draft selection is unreadable: %w", err)
		}
	}

	entryIDs := make([]string, 0, len(items))
	for _, item := range items {
		entryIDs = append(entryIDs, item.EntryID)
	}

	// The register rows are authoritative for cleared amounts; the draft
	// tuples may predate an amount correction.
	rows, err := s.register.GetByIDs(company, account, entryIDs)
	if err != nil {
		return nil, err
	}
	clearedAmount := decimal.Zero
	for _, row := range rows {
		clearedAmount = clearedAmount.Add(row.Amount.Abs())
	}

	rec := &models.CommittedReconciliation{
		CompanyName:   company,
		AccountNo:     account,
		StatementDate: draft.StatementDate,
		EndingBalance: draft.StatementBalance,
		ClearedCount:  len(items),
		ClearedAmount: clearedAmount,
		CommittedAt:   time.Now(),
		CommittedBy:   committedBy,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.drafts.CreateCommitted(tx, rec); err != nil {
			return err
		}
		if err := s.register.MarkCleared(tx, company, account, entryIDs); err != nil {
			return err
		}
		return tx.
			Where("company_name = ? AND account_no = ?", company, account).
			Delete(&models.ReconciliationDraft{}).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("backend: committed reconciliation for %s/%s: %d items, ending balance %s",
		company, account, rec.ClearedCount, rec.EndingBalance.StringFixed(2))
	return rec, nil
}

// ImportBankStatement parses statement content, stores the batch and its
// transactions durably, and produces an initial match proposal set against
// the outstanding register.
func (s *Store) ImportBankStatement(company, account, filename, importedBy string, rawContent []byte) (*session.ImportResult, error) {
	parsed, err := importer.Parse(bytes.NewReader(rawContent))
	if err != nil {
		return nil, fmt.Errorf("parsing statement %q: %w", filename, err)
	}

	statementDate := parsed[0].Date
	for _, p := range parsed {
		if p.Date.After(statementDate) {
			statementDate = p.Date
		}
	}

	batch := &models.ImportBatch{
		ID:               uuid.New(),
		CompanyName:      company,
		AccountNo:        account,
		Filename:         filename,
		StatementDate:    statementDate,
		TransactionCount: len(parsed),
		ImportedBy:       importedBy,
		ImportedAt:       time.Now(),
		CreatedAt:        time.Now(),
	}

	txs := make([]models.BankTransaction, 0, len(parsed))
	for _, p := range parsed {
		txs = append(txs, models.BankTransaction{
			ID:              uuid.New(),
			CompanyName:     company,
			AccountNo:       account,
			ImportBatchID:   batch.ID,
			TransactionDate: p.Date,
			Description:     p.Description,
			Amount:          p.Amount,
			CheckNumber:     p.CheckNumber,
			CreatedAt:       time.Now(),
		})
	}

	err = s.db.Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(batch).Error; err != nil {
			return err
		}
		return dbtx.Create(&txs).Error
	})
	if err != nil {
		return nil, fmt.Errorf("storing import batch: %w", err)
	}

	candidates, err := s.availableCandidates(company, account)
	if err != nil {
		// The import itself is durable; a failed proposal pass is not fatal.
		log.Printf("backend: candidate load for initial proposals failed for %s/%s: %v", company, account, err)
		return &session.ImportResult{BatchID: batch.ID, Transactions: txs}, nil
	}

	proposals := matching.Propose(txs, candidates, matching.Options{})
	matched := 0
	for _, p := range proposals {
		if err := s.applyProposal(company, account, importedBy, p); err != nil {
			log.Printf("backend: applying import proposal %s->%s failed: %v", p.TransactionID, p.EntryID, err)
			continue
		}
		matched++
	}
	if matched > 0 {
		if err := s.batches.UpdateMatchedCount(batch.ID, matched); err != nil {
			log.Printf("backend: updating matched count for batch %s failed: %v", batch.ID, err)
		}
		batch.MatchedCount = matched
	}

	// Re-read so returned transactions carry their match fields.
	if stored, err := s.bankTxs.ListByAccount(company, account); err == nil {
		var byBatch []models.BankTransaction
		for _, tx := range stored {
			if tx.ImportBatchID == batch.ID {
				byBatch = append(byBatch, tx)
			}
		}
		txs = byBatch
	}

	return &session.ImportResult{BatchID: batch.ID, Transactions: txs, Proposals: proposals}, nil
}

func (s *Store) GetBankTransactions(company, account string) ([]models.BankTransaction, error) {
	return s.bankTxs.ListByAccount(company, account)
}

func (s *Store) GetRecentBankStatements(company, account string) ([]models.ImportBatch, error) {
	return s.batches.ListRecent(company, account, 20)
}

// DeleteBankStatement cascades: the batch's transactions and any matches
// referencing them go with it.
func (s *Store) DeleteBankStatement(company string, batchID uuid.UUID) error {
	batch, err := s.batches.GetByID(batchID)
	if err != nil {
		return err
	}
	if batch == nil || batch.CompanyName != company {
		return fmt.Errorf("import batch %s not found for %s", batchID, company)
	}

	txIDs, err := s.bankTxs.IDsByBatch(batchID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.matches.DeleteByTransactions(tx, txIDs); err != nil {
			return err
		}
		if err := s.bankTxs.DeleteByBatch(tx, batchID); err != nil {
			return err
		}
		return s.batches.Delete(tx, batchID)
	})
}

// RunMatching scores unmatched bank transactions against the register
// entries not already consumed by an existing match. Matches are additive.
func (s *Store) RunMatching(company, account string, opts matching.Options) (session.MatchRunStats, error) {
	txs, err := s.bankTxs.ListUnmatched(company, account)
	if err != nil {
		return session.MatchRunStats{}, err
	}
	candidates, err := s.availableCandidates(company, account)
	if err != nil {
		return session.MatchRunStats{}, err
	}

	proposals := matching.Propose(txs, candidates, opts)
	matched := 0
	for _, p := range proposals {
		if err := s.applyProposal(company, account, "", p); err != nil {
			log.Printf("backend: applying proposal %s->%s failed: %v", p.TransactionID, p.EntryID, err)
			continue
		}
		matched++
	}

	return session.MatchRunStats{TotalProcessed: len(txs), TotalMatched: matched}, nil
}

// ClearMatchesAndRerun releases every match for the account first, then runs
// matching from scratch.
func (s *Store) ClearMatchesAndRerun(company, account string, opts matching.Options) (session.MatchRunStats, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cleared, err := s.matches.DeleteByAccount(tx, company, account)
		if err != nil {
			return err
		}
		if _, err := s.bankTxs.ClearMatchFields(tx, company, account); err != nil {
			return err
		}
		log.Printf("backend: cleared %d matches for %s/%s", cleared, company, account)
		return nil
	})
	if err != nil {
		return session.MatchRunStats{}, fmt.Errorf("clearing matches: %w", err)
	}

	if err := s.matches.Audit(&models.MatchAuditLog{
		Action: "clear_all",
		Reason: fmt.Sprintf("released all matches for %s/%s before rerun", company, account),
	}); err != nil {
		log.Printf("backend: audit of clear-all for %s/%s failed: %v", company, account, err)
	}
	return s.RunMatching(company, account, opts)
}

func (s *Store) GetMatches(company, account string) ([]models.Match, error) {
	return s.matches.ListByAccount(company, account)
}

// ManualMatchTransaction links one bank transaction to one or more register
// entries at confidence 100. A pre-existing match on the transaction is
// replaced. The amount delta is deliberately not checked here.
func (s *Store) ManualMatchTransaction(company, account string, req session.ManualMatchRequest) error {
	tx, err := s.bankTxs.GetByID(req.BankTransactionID)
	if err != nil {
		return fmt.Errorf("bank transaction %s: %w", req.BankTransactionID, err)
	}

	previous, err := s.matches.GetByTransaction(tx.ID)
	if err != nil {
		return err
	}
	if previous != nil {
		if err := s.matches.DeleteByTransaction(tx.ID); err != nil {
			return err
		}
	}

	entryIDs, err := json.Marshal(req.RegisterEntryIDs)
	if err != nil {
		return err
	}

	match := &models.Match{
		ID:                uuid.New(),
		CompanyName:       company,
		AccountNo:         account,
		BankTransactionID: tx.ID,
		RegisterEntryIDs:  entryIDs,
		Confidence:        decimal.NewFromInt(100),
		Source:            models.MatchSourceManual,
		CreatedAt:         time.Now(),
	}
	if err := s.matches.Create(match); err != nil {
		return err
	}

	tx.Matched = true
	tx.MatchedEntryID = &req.RegisterEntryIDs[0]
	tx.MatchConfidence = decimal.NewFromInt(100)
	tx.MatchType = "manual"
	if err := s.bankTxs.Save(tx); err != nil {
		return err
	}

	audit := &models.MatchAuditLog{
		TransactionID: tx.ID,
		Action:        "manual_match",
		NewEntries:    entryIDs,
		PerformedBy:   req.PerformedBy,
	}
	if previous != nil {
		audit.PreviousEntries = previous.RegisterEntryIDs
	}
	if err := s.matches.Audit(audit); err != nil {
		log.Printf("backend: audit of manual match %s failed: %v", tx.ID, err)
	}
	return nil
}

// UnmatchTransaction releases the match on one bank transaction.
func (s *Store) UnmatchTransaction(txID uuid.UUID) error {
	match, err := s.matches.GetByTransaction(txID)
	if err != nil {
		return err
	}
	if match == nil {
		return fmt.Errorf("bank transaction %s is not matched", txID)
	}

	if err := s.matches.DeleteByTransaction(txID); err != nil {
		return err
	}

	tx, err := s.bankTxs.GetByID(txID)
	if err != nil {
		return err
	}
	tx.Matched = false
	tx.MatchedEntryID = nil
	tx.MatchConfidence = decimal.Zero
	tx.MatchType = ""
	tx.MatchDetails = nil
	if err := s.bankTxs.Save(tx); err != nil {
		return err
	}

	if err := s.matches.Audit(&models.MatchAuditLog{
		TransactionID:   txID,
		Action:          "unmatch",
		PreviousEntries: match.RegisterEntryIDs,
	}); err != nil {
		log.Printf("backend: audit of unmatch %s failed: %v", txID, err)
	}
	return nil
}

// availableCandidates builds the matcher's candidate list: outstanding
// register rows minus entries already consumed by an existing match.
func (s *Store) availableCandidates(company, account string) ([]matching.Candidate, error) {
	rows, err := s.register.Outstanding(company, account)
	if err != nil {
		return nil, err
	}
	existing, err := s.matches.ListByAccount(company, account)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool)
	for _, m := range existing {
		var ids []string
		if err := json.Unmarshal(m.RegisterEntryIDs, &ids); err != nil {
			continue
		}
		for _, id := range ids {
			taken[id] = true
		}
	}

	candidates := make([]matching.Candidate, 0, len(rows))
	for _, row := range rows {
		if taken[row.EntryID] {
			continue
		}
		candidates = append(candidates, matching.Candidate{
			EntryID:     row.EntryID,
			EntryType:   row.EntryType,
			CheckNumber: row.CheckNumber,
			Date:        row.EntryDate,
			Payee:       row.Payee,
			Amount:      row.Amount,
		})
	}
	return candidates, nil
}

// applyProposal persists one accepted auto-match proposal.
func (s *Store) applyProposal(company, account, performedBy string, p matching.Proposal) error {
	txID, err := uuid.Parse(p.TransactionID)
	if err != nil {
		return err
	}
	tx, err := s.bankTxs.GetByID(txID)
	if err != nil {
		return err
	}

	entryIDs, err := json.Marshal([]string{p.EntryID})
	if err != nil {
		return err
	}

	match := &models.Match{
		ID:                uuid.New(),
		CompanyName:       company,
		AccountNo:         account,
		BankTransactionID: txID,
		RegisterEntryIDs:  entryIDs,
		Confidence:        p.Confidence,
		Source:            models.MatchSourceAuto,
		CreatedAt:         time.Now(),
	}
	if err := s.matches.Create(match); err != nil {
		return err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"amount_score":    p.AmountScore,
		"check_no_score":  p.CheckNoScore,
		"date_score":      p.DateScore,
		"payee_bonus":     p.PayeeBonus,
		"candidate_count": p.CandidateCount,
		"match_type":      p.MatchType,
	})

	entryID := p.EntryID
	tx.Matched = true
	tx.MatchedEntryID = &entryID
	tx.MatchConfidence = p.Confidence
	tx.MatchType = p.MatchType
	tx.MatchDetails = details
	if err := s.bankTxs.Save(tx); err != nil {
		return err
	}

	if err := s.matches.Audit(&models.MatchAuditLog{
		TransactionID: txID,
		Action:        "auto_match",
		NewEntries:    entryIDs,
		PerformedBy:   performedBy,
	}); err != nil {
		log.Printf("backend: audit of auto match %s failed: %v", txID, err)
	}
	return nil
}
