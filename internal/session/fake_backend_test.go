package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-reconciliation-workspace/internal/models"
	"bank-reconciliation-workspace/internal/services/matching"
)

// fakeBackend is a scriptable in-memory Backend. Loads can be delayed per
// account to exercise stale-response discarding, and individual operations
// can be forced to fail.
type fakeBackend struct {
	mu sync.Mutex

	registers map[string]models.TableData // account -> rows
	drafts    map[string]*models.ReconciliationDraft
	lastRecs  map[string]*models.CommittedReconciliation
	bankTxs   map[string][]models.BankTransaction
	matches   map[string][]models.Match
	history   map[string][]models.ImportBatch

	registerDelay map[string]time.Duration
	blockRun      chan struct{} // RunMatching waits on this when non-nil

	saveErr    error
	commitErr  error
	runErr     error
	unmatchErr map[uuid.UUID]error

	saveCalls    int
	commitCalls  int
	deleteCalls  int
	runCalls     int
	txLoads      int
	matchLoads   int
	historyLoads int
	unmatchCalls []uuid.UUID
	manualReqs   []ManualMatchRequest
	runStats     MatchRunStats
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		registers:     map[string]models.TableData{},
		drafts:        map[string]*models.ReconciliationDraft{},
		lastRecs:      map[string]*models.CommittedReconciliation{},
		bankTxs:       map[string][]models.BankTransaction{},
		matches:       map[string][]models.Match{},
		history:       map[string][]models.ImportBatch{},
		registerDelay: map[string]time.Duration{},
		unmatchErr:    map[uuid.UUID]error{},
	}
}

func key(company, account string) string { return company + "/" + account }

var registerTestColumns = []string{
	"CIDCHEC", "CENTRYTYPE", "CCHECKNO", "DCHECKDATE", "CPAYEE", "NAMOUNT", "LCLEARED", "LVOID",
}

func registerRow(id, kind, checkNo, date, payee, amount string) []interface{} {
	return []interface{}{id, kind, checkNo, date, payee, amount, "F", "F"}
}

func (f *fakeBackend) setRegister(company, account string, rows ...[]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers[key(company, account)] = models.TableData{Columns: registerTestColumns, Rows: rows}
}

func (f *fakeBackend) GetOutstandingRegisterEntries(company, account string) (models.TableData, error) {
	f.mu.Lock()
	delay := f.registerDelay[key(company, account)]
	data := f.registers[key(company, account)]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if data.Columns == nil {
		data.Columns = registerTestColumns
	}
	return data, nil
}

func (f *fakeBackend) GetLastReconciliation(company, account string) (*models.CommittedReconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRecs[key(company, account)], nil
}

func (f *fakeBackend) GetReconciliationDraft(company, account string) (*models.ReconciliationDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drafts[key(company, account)], nil
}

func (f *fakeBackend) SaveReconciliationDraft(draft *models.ReconciliationDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	clone := *draft
	f.drafts[key(draft.CompanyName, draft.AccountNo)] = &clone
	return nil
}

func (f *fakeBackend) DeleteReconciliationDraft(company, account string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	delete(f.drafts, key(company, account))
	return nil
}

// CommitReconciliation mimics the real store: the committed record takes the
// draft's statement balance, the selected entries leave the register, and the
// draft is deleted.
func (f *fakeBackend) CommitReconciliation(company, account, committedBy string) (*models.CommittedReconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitCalls++
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	draft := f.drafts[key(company, account)]
	if draft == nil {
		return nil, fmt.Errorf("no draft to commit for %s/%s", company, account)
	}

	var items []SelectionItem
	_ = json.Unmarshal(draft.Selection, &items)
	selected := make(map[string]bool, len(items))
	cleared := decimal.Zero
	for _, item := range items {
		selected[item.EntryID] = true
		cleared = cleared.Add(item.Amount.Abs())
	}

	data := f.registers[key(company, account)]
	var remaining [][]interface{}
	for _, row := range data.Rows {
		if id, ok := row[0].(string); ok && selected[id] {
			continue
		}
		remaining = append(remaining, row)
	}
	data.Rows = remaining
	f.registers[key(company, account)] = data

	rec := &models.CommittedReconciliation{
		CompanyName:   company,
		AccountNo:     account,
		StatementDate: draft.StatementDate,
		EndingBalance: draft.StatementBalance,
		ClearedCount:  len(items),
		ClearedAmount: cleared,
		CommittedAt:   time.Now(),
		CommittedBy:   committedBy,
	}
	f.lastRecs[key(company, account)] = rec
	delete(f.drafts, key(company, account))
	return rec, nil
}

func (f *fakeBackend) ImportBankStatement(company, account, filename, importedBy string, rawContent []byte) (*ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := models.ImportBatch{
		ID:          uuid.New(),
		CompanyName: company,
		AccountNo:   account,
		Filename:    filename,
		ImportedBy:  importedBy,
		ImportedAt:  time.Now(),
	}
	f.history[key(company, account)] = append(f.history[key(company, account)], batch)
	return &ImportResult{BatchID: batch.ID}, nil
}

func (f *fakeBackend) GetBankTransactions(company, account string) ([]models.BankTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txLoads++
	return f.bankTxs[key(company, account)], nil
}

func (f *fakeBackend) GetRecentBankStatements(company, account string) ([]models.ImportBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyLoads++
	return f.history[key(company, account)], nil
}

func (f *fakeBackend) DeleteBankStatement(company string, batchID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, batches := range f.history {
		var kept []models.ImportBatch
		for _, b := range batches {
			if b.ID != batchID {
				kept = append(kept, b)
			}
		}
		f.history[k] = kept
	}
	return nil
}

func (f *fakeBackend) RunMatching(company, account string, opts matching.Options) (MatchRunStats, error) {
	f.mu.Lock()
	f.runCalls++
	block := f.blockRun
	stats, err := f.runStats, f.runErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return stats, err
}

func (f *fakeBackend) ClearMatchesAndRerun(company, account string, opts matching.Options) (MatchRunStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches[key(company, account)] = nil
	return f.runStats, f.runErr
}

func (f *fakeBackend) GetMatches(company, account string) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchLoads++
	return f.matches[key(company, account)], nil
}

func (f *fakeBackend) ManualMatchTransaction(company, account string, req ManualMatchRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manualReqs = append(f.manualReqs, req)
	ids, _ := json.Marshal(req.RegisterEntryIDs)
	f.matches[key(company, account)] = append(f.matches[key(company, account)], models.Match{
		ID:                uuid.New(),
		CompanyName:       company,
		AccountNo:         account,
		BankTransactionID: req.BankTransactionID,
		RegisterEntryIDs:  ids,
		Confidence:        decimal.NewFromInt(100),
		Source:            models.MatchSourceManual,
	})
	return nil
}

func (f *fakeBackend) UnmatchTransaction(txID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmatchCalls = append(f.unmatchCalls, txID)
	if err := f.unmatchErr[txID]; err != nil {
		return err
	}
	for k, matches := range f.matches {
		var kept []models.Match
		for _, m := range matches {
			if m.BankTransactionID != txID {
				kept = append(kept, m)
			}
		}
		f.matches[k] = kept
	}
	return nil
}

func (f *fakeBackend) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCalls
}
