package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"bank-reconciliation-workspace/internal/models"
)

// Options carries the session tunables.
type Options struct {
	// SaveDebounce is the quiet period between the last draft edit and the
	// automatic save. Zero disables automatic saves (explicit Save only).
	SaveDebounce time.Duration
}

const (
	stateIdle      = "idle"
	stateImporting = "importing"
	stateMatching  = "matching"
)

// Session is the reconciliation workspace for one active account. It owns the
// mutable draft, the read-mostly register/transaction/match caches, and the
// sequencing of backend calls. One session assumes a single active editor per
// account per process; there is no optimistic-concurrency token on the
// persisted draft, so a second seat editing the same account overwrites it.
type Session struct {
	backend Backend
	opts    Options

	mu      sync.Mutex
	company string
	account string

	// generation tags every load with the activation it was issued under;
	// responses whose tag no longer matches are discarded so a slow load
	// for the previous account cannot corrupt the current one.
	generation uint64

	register     []RegisterEntry
	registerByID map[string]RegisterEntry
	bankTxs      []models.BankTransaction
	matches      []models.Match
	history      []models.ImportBatch
	lastCommit   *models.CommittedReconciliation

	draft     Draft
	selection map[string]bool
	baseline  baselineState
	dirty     bool
	editSeq   uint64
	lastSaved time.Time
	saveTimer *time.Timer

	// computingStatement guards the derived statement-balance recompute
	// against re-entrant invocation; equal values arriving via the same
	// call stack are not a sufficient short circuit.
	computingStatement bool

	state          string
	manualMatching bool
	commitInFlight bool
}

// baselineState is the last persisted (or freshly loaded) draft and
// selection; dirty means "diverged from baseline".
type baselineState struct {
	draft     Draft
	selection map[string]bool
}

func New(backend Backend, opts Options) *Session {
	return &Session{
		backend:      backend,
		opts:         opts,
		registerByID: map[string]RegisterEntry{},
		selection:    map[string]bool{},
		state:        stateIdle,
	}
}

// ActivateAccount switches the session to a new account: any pending save for
// the previous account is flushed, all caches reset, and the register, bank
// transactions, matches, import history, last committed record and draft are
// loaded fresh. In-flight loads for the previous account are discarded by the
// generation tag.
func (s *Session) ActivateAccount(company, account string) error {
	s.mu.Lock()
	s.stopTimerLocked()
	var pending *models.ReconciliationDraft
	if s.dirty && s.account != "" {
		pending = s.draftRecordLocked()
	}
	s.generation++
	gen := s.generation
	s.company, s.account = company, account
	s.resetCachesLocked()
	s.resetDraftLocked(nil)
	s.mu.Unlock()

	if pending != nil {
		if err := s.backend.SaveReconciliationDraft(pending); err != nil {
			log.Printf("session: flushing draft on account switch for %s/%s failed: %v",
				pending.CompanyName, pending.AccountNo, err)
		}
	}
	return s.loadAll(gen)
}

func (s *Session) loadAll(gen uint64) error {
	company, account, ok := s.tagged(gen)
	if !ok {
		return nil
	}

	if err := s.reloadRegister(gen); err != nil {
		return err
	}

	last, err := s.backend.GetLastReconciliation(company, account)
	if err != nil {
		log.Printf("session: loading last reconciliation for %s/%s: %v", company, account, err)
		return fmt.Errorf("loading last reconciliation: %w", err)
	}
	s.mu.Lock()
	if gen == s.generation {
		s.lastCommit = last
	}
	s.mu.Unlock()

	if err := s.reloadStores(gen); err != nil {
		return err
	}
	if err := s.reloadHistory(gen); err != nil {
		return err
	}
	return s.LoadDraft(gen)
}

// tagged returns the session identity if gen is still current.
func (s *Session) tagged(gen uint64) (company, account string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.account == "" {
		return "", "", false
	}
	return s.company, s.account, true
}

// reloadRegister refreshes the register cache and prunes selection ids that
// no longer resolve (voided or cleared since last load). On failure the prior
// cache stays intact.
func (s *Session) reloadRegister(gen uint64) error {
	company, account, ok := s.tagged(gen)
	if !ok {
		return nil
	}

	table, err := s.backend.GetOutstandingRegisterEntries(company, account)
	if err != nil {
		log.Printf("session: loading register for %s/%s: %v", company, account, err)
		return fmt.Errorf("loading register: %w", err)
	}
	entries, err := DecodeRegisterEntries(table)
	if err != nil {
		log.Printf("session: decoding register for %s/%s: %v", company, account, err)
		return fmt.Errorf("decoding register: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	s.register = entries
	s.registerByID = make(map[string]RegisterEntry, len(entries))
	for _, e := range entries {
		s.registerByID[e.EntryID] = e
	}

	pruned := 0
	for id := range s.selection {
		if _, ok := s.registerByID[id]; !ok {
			delete(s.selection, id)
			pruned++
		}
	}
	if pruned > 0 {
		log.Printf("session: pruned %d stale selection ids for %s/%s", pruned, company, account)
		s.markDirtyLocked()
	}
	return nil
}

// reloadStores refreshes the bank transaction and match caches together;
// every match mutation changes derived "already matched" membership, so the
// two are always reloaded as a pair.
func (s *Session) reloadStores(gen uint64) error {
	company, account, ok := s.tagged(gen)
	if !ok {
		return nil
	}

	txs, err := s.backend.GetBankTransactions(company, account)
	if err != nil {
		log.Printf("session: loading bank transactions for %s/%s: %v", company, account, err)
		return fmt.Errorf("loading bank transactions: %w", err)
	}
	matches, err := s.backend.GetMatches(company, account)
	if err != nil {
		log.Printf("session: loading matches for %s/%s: %v", company, account, err)
		return fmt.Errorf("loading matches: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	s.bankTxs = txs
	s.matches = matches
	return nil
}

func (s *Session) reloadHistory(gen uint64) error {
	company, account, ok := s.tagged(gen)
	if !ok {
		return nil
	}
	history, err := s.backend.GetRecentBankStatements(company, account)
	if err != nil {
		log.Printf("session: loading statement history for %s/%s: %v", company, account, err)
		return fmt.Errorf("loading statement history: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	s.history = history
	return nil
}

func (s *Session) resetCachesLocked() {
	s.register = nil
	s.registerByID = map[string]RegisterEntry{}
	s.bankTxs = nil
	s.matches = nil
	s.history = nil
	s.lastCommit = nil
	s.state = stateIdle
	s.manualMatching = false
	s.commitInFlight = false
}

func (s *Session) stopTimerLocked() {
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
}

// Close flushes any pending save and releases the session's timer.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopTimerLocked()
	var pending *models.ReconciliationDraft
	if s.dirty && s.account != "" {
		pending = s.draftRecordLocked()
	}
	s.mu.Unlock()
	if pending != nil {
		if err := s.backend.SaveReconciliationDraft(pending); err != nil {
			log.Printf("session: flushing draft on close failed: %v", err)
		}
	}
}

// Balance recomputes the totals synchronously from current state. Never
// cached across a selection change.
func (s *Session) Balance() BalanceTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceLocked()
}

func (s *Session) balanceLocked() BalanceTotals {
	return ComputeBalance(s.selection, s.registerByID, s.draft.BeginningBalance, s.draft.StatementBalance)
}

// Snapshot returns the read model for the HTTP layer.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected := make([]string, 0, len(s.selection))
	for id := range s.selection {
		selected = append(selected, id)
	}
	return Snapshot{
		Company:   s.company,
		Account:   s.account,
		Draft:     s.draft,
		Selected:  selected,
		Totals:    s.balanceLocked(),
		Dirty:     s.dirty,
		LastSaved: s.lastSaved,
	}
}

func (s *Session) RegisterEntries() []RegisterEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RegisterEntry, len(s.register))
	copy(out, s.register)
	return out
}

func (s *Session) BankTransactions() []models.BankTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BankTransaction, len(s.bankTxs))
	copy(out, s.bankTxs)
	return out
}

func (s *Session) Matches() []models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Match, len(s.matches))
	copy(out, s.matches)
	return out
}

func (s *Session) History() []models.ImportBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ImportBatch, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) LastCommitted() *models.CommittedReconciliation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCommit
}

// UnmatchedBankTransactions lists statement lines not yet linked to a match;
// the manual-match candidate list is built from this.
func (s *Session) UnmatchedBankTransactions() []models.BankTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make(map[string]bool, len(s.matches))
	for _, m := range s.matches {
		matched[m.BankTransactionID.String()] = true
	}
	var out []models.BankTransaction
	for _, tx := range s.bankTxs {
		if !matched[tx.ID.String()] && !tx.Matched {
			out = append(out, tx)
		}
	}
	return out
}
