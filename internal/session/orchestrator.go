package session

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-reconciliation-workspace/internal/services/matching"
)

// beginExclusive moves the session out of the idle state for a matching or
// import run. Only one such operation runs at a time per session; manual
// matching is tracked independently.
func (s *Session) beginExclusive(state string) (gen uint64, company, account string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		return 0, "", "", ErrNoActiveAccount
	}
	if s.state != stateIdle {
		return 0, "", "", fmt.Errorf("%w (%s)", ErrBusy, s.state)
	}
	s.state = state
	return s.generation, s.company, s.account, nil
}

func (s *Session) endExclusive() {
	s.mu.Lock()
	s.state = stateIdle
	s.mu.Unlock()
}

// RunMatching invokes the backend matching algorithm. Matches are additive;
// pre-existing matches are untouched. Concludes with a reload of the bank
// transaction and match caches.
func (s *Session) RunMatching(opts matching.Options) (MatchRunStats, error) {
	gen, company, account, err := s.beginExclusive(stateMatching)
	if err != nil {
		return MatchRunStats{}, err
	}
	defer s.endExclusive()

	stats, err := s.backend.RunMatching(company, account, opts)
	if err != nil {
		log.Printf("session: matching run for %s/%s failed: %v", company, account, err)
		return stats, fmt.Errorf("running matching: %w", err)
	}
	log.Printf("session: matching run for %s/%s processed %d, matched %d",
		company, account, stats.TotalProcessed, stats.TotalMatched)

	if err := s.reloadStores(gen); err != nil {
		return stats, err
	}
	return stats, nil
}

// ClearAndRerun releases every existing match for the account, then runs
// matching from a clean slate. Used after fixing misimports.
func (s *Session) ClearAndRerun(opts matching.Options) (MatchRunStats, error) {
	gen, company, account, err := s.beginExclusive(stateMatching)
	if err != nil {
		return MatchRunStats{}, err
	}
	defer s.endExclusive()

	stats, err := s.backend.ClearMatchesAndRerun(company, account, opts)
	if err != nil {
		log.Printf("session: clear-and-rerun for %s/%s failed: %v", company, account, err)
		return stats, fmt.Errorf("clearing and rerunning matching: %w", err)
	}

	if err := s.reloadStores(gen); err != nil {
		return stats, err
	}
	return stats, nil
}

// ManualMatchPreview returns the amount delta between a bank transaction and
// the summed register entries, for display before the user confirms. The
// engine itself never rejects a mismatched manual match.
func (s *Session) ManualMatchPreview(txID uuid.UUID, entryIDs []string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		return decimal.Zero, ErrNoActiveAccount
	}

	var txAmount decimal.Decimal
	found := false
	for _, tx := range s.bankTxs {
		if tx.ID == txID {
			txAmount = tx.Amount.Abs()
			found = true
			break
		}
	}
	if !found {
		return decimal.Zero, fmt.Errorf("bank transaction %s is not loaded", txID)
	}

	sum := decimal.Zero
	for _, id := range entryIDs {
		entry, ok := s.registerByID[id]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownEntry, id)
		}
		sum = sum.Add(entry.Amount.Abs())
	}
	return txAmount.Sub(sum), nil
}

// ManualMatch creates a confidence-100 match linking one bank transaction to
// one or more register entries. Manual override always wins: any
// user-confirmed amount delta is accepted.
func (s *Session) ManualMatch(txID uuid.UUID, entryIDs []string, performedBy string) error {
	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return ErrNoActiveAccount
	}
	if s.manualMatching {
		s.mu.Unlock()
		return fmt.Errorf("%w (manual match)", ErrBusy)
	}
	if len(entryIDs) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("manual match needs at least one register entry")
	}
	for _, id := range entryIDs {
		if _, ok := s.registerByID[id]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
		}
	}
	s.manualMatching = true
	gen := s.generation
	company, account := s.company, s.account
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.manualMatching = false
		s.mu.Unlock()
	}()

	err := s.backend.ManualMatchTransaction(company, account, ManualMatchRequest{
		BankTransactionID: txID,
		RegisterEntryIDs:  entryIDs,
		PerformedBy:       performedBy,
	})
	if err != nil {
		log.Printf("session: manual match of %s to %v for %s/%s failed: %v", txID, entryIDs, company, account, err)
		return fmt.Errorf("manual match: %w", err)
	}

	return s.reloadStores(gen)
}

// Unmatch releases the match on one bank transaction and reloads the caches.
func (s *Session) Unmatch(txID uuid.UUID) error {
	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return ErrNoActiveAccount
	}
	gen := s.generation
	company, account := s.company, s.account
	s.mu.Unlock()

	if err := s.backend.UnmatchTransaction(txID); err != nil {
		log.Printf("session: unmatch of %s for %s/%s failed: %v", txID, company, account, err)
		return fmt.Errorf("unmatching transaction %s: %w", txID, err)
	}
	return s.reloadStores(gen)
}

// UnmatchOutcome reports one item of a bulk unmatch.
type UnmatchOutcome struct {
	BankTransactionID uuid.UUID `json:"bankTransactionId"`
	Error             string    `json:"error,omitempty"`
}

// BulkUnmatch releases many matches sequentially, best-effort: a failing item
// is recorded and the remaining releases still run. The caches are reloaded
// once at the end regardless of per-item failures.
func (s *Session) BulkUnmatch(txIDs []uuid.UUID) ([]UnmatchOutcome, error) {
	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return nil, ErrNoActiveAccount
	}
	gen := s.generation
	company, account := s.company, s.account
	s.mu.Unlock()

	outcomes := make([]UnmatchOutcome, 0, len(txIDs))
	for _, id := range txIDs {
		outcome := UnmatchOutcome{BankTransactionID: id}
		if err := s.backend.UnmatchTransaction(id); err != nil {
			log.Printf("session: bulk unmatch of %s for %s/%s failed: %v", id, company, account, err)
			outcome.Error = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}

	if err := s.reloadStores(gen); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
