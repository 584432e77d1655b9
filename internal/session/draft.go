package session

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-workspace/internal/models"
)

// LoadDraft replaces the in-memory draft from the last persisted draft for
// the active account, or applies defaults (beginning balance carried from the
// last committed reconciliation) if none exists. Persisted selection ids that
// no longer resolve against the loaded register are dropped. Resets the
// dirty flag.
func (s *Session) LoadDraft(gen uint64) error {
	company, account, ok := s.tagged(gen)
	if !ok {
		return nil
	}

	rec, err := s.backend.GetReconciliationDraft(company, account)
	if err != nil {
		log.Printf("session: loading draft for %s/%s: %v", company, account, err)
		return fmt.Errorf("loading draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	s.resetDraftLocked(rec)
	return nil
}

// resetDraftLocked applies a persisted draft record, or defaults when rec is
// nil, then captures the baseline and clears the dirty flag.
func (s *Session) resetDraftLocked(rec *models.ReconciliationDraft) {
	s.stopTimerLocked()
	s.draft = Draft{
		BeginningBalance: decimal.Zero,
		StatementBalance: decimal.Zero,
		StatementCredits: decimal.Zero,
		StatementDebits:  decimal.Zero,
	}
	s.selection = map[string]bool{}

	if rec == nil {
		if s.lastCommit != nil {
			s.draft.BeginningBalance = s.lastCommit.EndingBalance
		}
	} else {
		s.draft.StatementDate = rec.StatementDate
		s.draft.BeginningBalance = rec.BeginningBalance
		s.draft.StatementBalance = rec.StatementBalance
		s.draft.StatementCredits = rec.StatementCredits
		s.draft.StatementDebits = rec.StatementDebits

		var items []SelectionItem
		if len(rec.Selection) > 0 {
			if err := json.Unmarshal(rec.Selection, &items); err != nil {
				log.Printf("session: draft selection for %s/%s is unreadable, starting empty: %v",
					rec.CompanyName, rec.AccountNo, err)
			}
		}
		dropped := 0
		for _, item := range items {
			if _, ok := s.registerByID[item.EntryID]; ok {
				s.selection[item.EntryID] = true
			} else {
				dropped++
			}
		}
		if dropped > 0 {
			log.Printf("session: dropped %d unresolvable selection ids for %s/%s",
				dropped, rec.CompanyName, rec.AccountNo)
		}
	}

	s.captureBaselineLocked()
	s.dirty = false
}

// EditField updates one draft attribute and marks the draft dirty. The value
// arrives as a string from the edit surface; parsing is per field. Editing
// beginning balance, statement credits or statement debits re-derives the
// statement balance.
func (s *Session) EditField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		return ErrNoActiveAccount
	}
	if err := s.applyFieldLocked(name, value); err != nil {
		return err
	}
	s.markDirtyLocked()
	return nil
}

func (s *Session) applyFieldLocked(name, value string) error {
	switch name {
	case "statementDate":
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return fmt.Errorf("field statementDate: %w", err)
		}
		s.draft.StatementDate = t
	case "beginningBalance", "statementCredits", "statementDebits", "statementBalance":
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		switch name {
		case "beginningBalance":
			s.draft.BeginningBalance = d
			s.deriveStatementBalanceLocked()
		case "statementCredits":
			s.draft.StatementCredits = d
			s.deriveStatementBalanceLocked()
		case "statementDebits":
			s.draft.StatementDebits = d
			s.deriveStatementBalanceLocked()
		case "statementBalance":
			s.draft.StatementBalance = d
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// deriveStatementBalanceLocked recomputes the statement balance from
// beginning + credits − debits. The computing flag blocks re-entrant
// invocation; an equality short circuit alone is not enough because equal
// values can arrive via the same call stack.
func (s *Session) deriveStatementBalanceLocked() {
	if s.computingStatement {
		return
	}
	s.computingStatement = true
	defer func() { s.computingStatement = false }()

	s.draft.StatementBalance = s.draft.BeginningBalance.
		Add(s.draft.StatementCredits).
		Sub(s.draft.StatementDebits)
}

// ToggleSelection adds or removes one entry id from the selection set.
// Toggling twice restores both the selection set and the dirty flag.
func (s *Session) ToggleSelection(entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		return ErrNoActiveAccount
	}
	if _, ok := s.registerByID[entryID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, entryID)
	}
	if s.selection[entryID] {
		delete(s.selection, entryID)
	} else {
		s.selection[entryID] = true
	}
	s.markDirtyLocked()
	return nil
}

// BulkSelect applies a set-union (included=true) or set-difference
// (included=false) of entryIDs against the selection in one step, so that
// selecting or deselecting a filtered view never affects entries outside it.
// Ids that do not resolve are skipped.
func (s *Session) BulkSelect(entryIDs []string, included bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		return ErrNoActiveAccount
	}
	for _, id := range entryIDs {
		if _, ok := s.registerByID[id]; !ok {
			continue
		}
		if included {
			s.selection[id] = true
		} else {
			delete(s.selection, id)
		}
	}
	s.markDirtyLocked()
	return nil
}

// markDirtyLocked recomputes dirtiness against the baseline and reschedules
// the debounced save. Returning to the baseline clears the flag, so edits
// that cancel out do not trigger a save.
func (s *Session) markDirtyLocked() {
	s.editSeq++
	s.dirty = !s.equalsBaselineLocked()
	if s.dirty {
		s.scheduleSaveLocked()
	} else {
		s.stopTimerLocked()
	}
}

func (s *Session) scheduleSaveLocked() {
	if s.opts.SaveDebounce <= 0 {
		return
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	gen := s.generation
	s.saveTimer = time.AfterFunc(s.opts.SaveDebounce, func() {
		s.debouncedSave(gen)
	})
}

func (s *Session) debouncedSave(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || !s.dirty {
		s.mu.Unlock()
		return
	}
	payload := s.draftRecordLocked()
	seq := s.editSeq
	s.mu.Unlock()

	if err := s.backend.SaveReconciliationDraft(payload); err != nil {
		// Non-fatal: the dirty flag stays set and a later save retries.
		log.Printf("session: debounced draft save for %s/%s failed: %v",
			payload.CompanyName, payload.AccountNo, err)
		return
	}

	s.mu.Lock()
	if gen == s.generation && seq == s.editSeq {
		s.captureBaselineLocked()
		s.dirty = false
		s.lastSaved = time.Now()
	}
	s.mu.Unlock()
}

// Save persists the draft and selection immediately, cancelling any pending
// debounced save. A persistence failure is surfaced but leaves the dirty
// flag set so a later save retries.
func (s *Session) Save() error {
	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return ErrNoActiveAccount
	}
	s.stopTimerLocked()
	payload := s.draftRecordLocked()
	seq := s.editSeq
	gen := s.generation
	s.mu.Unlock()

	if err := s.backend.SaveReconciliationDraft(payload); err != nil {
		log.Printf("session: draft save for %s/%s failed: %v", payload.CompanyName, payload.AccountNo, err)
		return fmt.Errorf("saving draft: %w", err)
	}

	s.mu.Lock()
	if gen == s.generation && seq == s.editSeq {
		s.captureBaselineLocked()
		s.dirty = false
		s.lastSaved = time.Now()
	}
	s.mu.Unlock()
	return nil
}

// Discard deletes the persisted draft and resets all draft fields to their
// defaults.
func (s *Session) Discard() error {
	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return ErrNoActiveAccount
	}
	s.stopTimerLocked()
	company, account := s.company, s.account
	gen := s.generation
	s.mu.Unlock()

	if err := s.backend.DeleteReconciliationDraft(company, account); err != nil {
		log.Printf("session: discarding draft for %s/%s failed: %v", company, account, err)
		return fmt.Errorf("discarding draft: %w", err)
	}

	s.mu.Lock()
	if gen == s.generation {
		s.resetDraftLocked(nil)
	}
	s.mu.Unlock()
	return nil
}

// Commit finalizes the draft into an immutable record. It refuses with
// ErrNotBalanced unless the in-balance predicate holds. On success the final
// draft is persisted once more, the commit collaborator is invoked, the
// draft is cleared, and the last-committed record and register are reloaded
// so the next session's beginning balance is correct. Any failure leaves the
// draft intact.
func (s *Session) Commit(committedBy string) (*models.CommittedReconciliation, error) {
	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return nil, ErrNoActiveAccount
	}
	if s.commitInFlight {
		s.mu.Unlock()
		return nil, ErrCommitInFlight
	}
	totals := s.balanceLocked()
	if !totals.InBalance {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: difference %s", ErrNotBalanced, totals.Difference.StringFixed(2))
	}
	s.commitInFlight = true
	s.stopTimerLocked()
	payload := s.draftRecordLocked()
	company, account := s.company, s.account
	gen := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.commitInFlight = false
		s.mu.Unlock()
	}()

	if err := s.backend.SaveReconciliationDraft(payload); err != nil {
		log.Printf("session: final draft save before commit for %s/%s failed: %v", company, account, err)
		return nil, fmt.Errorf("persisting final draft: %w", err)
	}

	rec, err := s.backend.CommitReconciliation(company, account, committedBy)
	if err != nil {
		log.Printf("session: commit for %s/%s failed: %v", company, account, err)
		return nil, fmt.Errorf("committing reconciliation: %w", err)
	}

	s.mu.Lock()
	if gen == s.generation {
		s.lastCommit = rec
		s.resetDraftLocked(nil)
	}
	s.mu.Unlock()

	// Cleared entries drop out of the outstanding register.
	if err := s.reloadRegister(gen); err != nil {
		log.Printf("session: register reload after commit for %s/%s failed: %v", company, account, err)
	}
	return rec, nil
}

// draftRecordLocked serializes the draft plus the selection tuples. Each
// tuple carries amount, date and payee so the persisted draft survives
// register reordering.
func (s *Session) draftRecordLocked() *models.ReconciliationDraft {
	items := make([]SelectionItem, 0, len(s.selection))
	for id := range s.selection {
		entry, ok := s.registerByID[id]
		if !ok {
			continue
		}
		items = append(items, SelectionItem{
			EntryID:     entry.EntryID,
			CheckNumber: entry.CheckNumber,
			Amount:      entry.Amount,
			Payee:       entry.Payee,
			Date:        entry.Date.Format("2006-01-02"),
		})
	}
	payload, err := json.Marshal(items)
	if err != nil {
		log.Printf("session: marshaling selection for %s/%s: %v", s.company, s.account, err)
		payload = []byte("[]")
	}

	return &models.ReconciliationDraft{
		CompanyName:      s.company,
		AccountNo:        s.account,
		StatementDate:    s.draft.StatementDate,
		BeginningBalance: s.draft.BeginningBalance,
		StatementBalance: s.draft.StatementBalance,
		StatementCredits: s.draft.StatementCredits,
		StatementDebits:  s.draft.StatementDebits,
		Selection:        payload,
		Status:           "draft",
		UpdatedAt:        time.Now(),
	}
}

func (s *Session) captureBaselineLocked() {
	sel := make(map[string]bool, len(s.selection))
	for id := range s.selection {
		sel[id] = true
	}
	s.baseline = baselineState{draft: s.draft, selection: sel}
}

func (s *Session) equalsBaselineLocked() bool {
	b := s.baseline
	if !s.draft.StatementDate.Equal(b.draft.StatementDate) ||
		!s.draft.BeginningBalance.Equal(b.draft.BeginningBalance) ||
		!s.draft.StatementBalance.Equal(b.draft.StatementBalance) ||
		!s.draft.StatementCredits.Equal(b.draft.StatementCredits) ||
		!s.draft.StatementDebits.Equal(b.draft.StatementDebits) {
		return false
	}
	if len(s.selection) != len(b.selection) {
		return false
	}
	for id := range s.selection {
		if !b.selection[id] {
			return false
		}
	}
	return true
}
