package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction is one statement line after parsing.
type ParsedTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = debit (check), positive = credit (deposit)
	CheckNumber string
}

// Statement layout: header row, then date, description, amount, and an
// optional check-number column. Extra columns are ignored. Column-mapping
// heuristics for arbitrary bank exports are handled upstream; by the time
// content reaches here it is in this normalized layout.
var dateFormats = []string{"2006-01-02", "01/02/2006", "02-01-2006"}

// Parse reads statement CSV content. Malformed rows are skipped with a log
// line; an error is returned only when no valid transaction rows remain.
func Parse(r io.Reader) ([]ParsedTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("cannot read statement header: %w", err)
	}

	var parsed []ParsedTransaction
	rowNum := 0
	for {
		record, err := reader.Read()
		rowNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("statement row %d unreadable, skipping: %v", rowNum, err)
			continue
		}
		if len(record) < 3 || strings.Join(record, "") == "" {
			continue
		}

		date, err := parseDate(strings.TrimSpace(record[0]))
		if err != nil {
			log.Printf("statement row %d: invalid date %q, skipping", rowNum, record[0])
			continue
		}

		amount, err := parseAmount(strings.TrimSpace(record[2]))
		if err != nil {
			log.Printf("statement row %d: invalid amount %q, skipping", rowNum, record[2])
			continue
		}

		tx := ParsedTransaction{
			Date:        date,
			Description: strings.TrimSpace(record[1]),
			Amount:      amount,
		}
		if len(record) > 3 {
			tx.CheckNumber = strings.TrimSpace(record[3])
		}
		parsed = append(parsed, tx)
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("statement contained no usable transaction rows")
	}
	return parsed, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	// Some exports mark debits with parentheses.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.Trim(s, "()")
	}
	return decimal.NewFromString(s)
}
