package session

import (
	"github.com/google/uuid"

	"bank-reconciliation-workspace/internal/models"
	"bank-reconciliation-workspace/internal/services/matching"
)

// Backend is the narrow contract the session engine consumes. The concrete
// implementation owns the register, draft persistence, statement imports and
// the matching algorithm; the engine only sequences calls and keeps its
// caches consistent.
type Backend interface {
	GetOutstandingRegisterEntries(company, account string) (models.TableData, error)
	GetLastReconciliation(company, account string) (*models.CommittedReconciliation, error)

	GetReconciliationDraft(company, account string) (*models.ReconciliationDraft, error)
	SaveReconciliationDraft(draft *models.ReconciliationDraft) error
	DeleteReconciliationDraft(company, account string) error
	// CommitReconciliation finalizes the persisted draft into an immutable
	// record, marks the selected register entries cleared, and deletes the
	// draft, all atomically. Failure leaves the draft untouched.
	CommitReconciliation(company, account, committedBy string) (*models.CommittedReconciliation, error)

	ImportBankStatement(company, account, filename, importedBy string, rawContent []byte) (*ImportResult, error)
	GetBankTransactions(company, account string) ([]models.BankTransaction, error)
	GetRecentBankStatements(company, account string) ([]models.ImportBatch, error)
	DeleteBankStatement(company string, batchID uuid.UUID) error

	RunMatching(company, account string, opts matching.Options) (MatchRunStats, error)
	ClearMatchesAndRerun(company, account string, opts matching.Options) (MatchRunStats, error)
	GetMatches(company, account string) ([]models.Match, error)
	ManualMatchTransaction(company, account string, req ManualMatchRequest) error
	UnmatchTransaction(txID uuid.UUID) error
}

// MatchRunStats summarizes one matching run.
type MatchRunStats struct {
	TotalProcessed int `json:"totalProcessed"`
	TotalMatched   int `json:"totalMatched"`
}

// ManualMatchRequest links one bank transaction to one or more register
// entries at the user's say-so. Confidence is always 100 for manual matches.
type ManualMatchRequest struct {
	BankTransactionID uuid.UUID
	RegisterEntryIDs  []string
	PerformedBy       string
}

// ImportResult is what a successful statement import hands back. The import
// is already durable at this point; no separate confirmation persists it.
type ImportResult struct {
	BatchID      uuid.UUID                `json:"batchId"`
	Transactions []models.BankTransaction `json:"transactions"`
	Proposals    []matching.Proposal      `json:"proposals"`
}
