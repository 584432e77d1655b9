package session

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

// ImportStatement submits raw statement content to the backend importer. On
// success the import batch is already durable; confirmation afterwards only
// decides navigation, never whether the import is kept. Concludes with a
// reload of the transaction/match caches and the import history.
func (s *Session) ImportStatement(rawContent []byte, filename, importedBy string) (*ImportResult, error) {
	gen, company, account, err := s.beginExclusive(stateImporting)
	if err != nil {
		return nil, err
	}
	defer s.endExclusive()

	result, err := s.backend.ImportBankStatement(company, account, filename, importedBy, rawContent)
	if err != nil {
		log.Printf("session: statement import %q for %s/%s failed: %v", filename, company, account, err)
		return nil, fmt.Errorf("importing statement: %w", err)
	}
	log.Printf("session: imported %q for %s/%s: %d transactions, %d proposals",
		filename, company, account, len(result.Transactions), len(result.Proposals))

	if err := s.reloadStores(gen); err != nil {
		return result, err
	}
	if err := s.reloadHistory(gen); err != nil {
		return result, err
	}
	return result, nil
}

// DeleteImportBatch deletes a batch, cascading to its transactions and any
// matches referencing them, then reloads the caches and history.
func (s *Session) DeleteImportBatch(batchID uuid.UUID) error {
	gen, company, account, err := s.beginExclusive(stateImporting)
	if err != nil {
		return err
	}
	defer s.endExclusive()

	if err := s.backend.DeleteBankStatement(company, batchID); err != nil {
		log.Printf("session: deleting import batch %s for %s/%s failed: %v", batchID, company, account, err)
		return fmt.Errorf("deleting import batch %s: %w", batchID, err)
	}

	if err := s.reloadStores(gen); err != nil {
		return err
	}
	return s.reloadHistory(gen)
}
