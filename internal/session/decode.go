package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-workspace/internal/models"
)

// registerColumnFields maps legacy register column names onto RegisterEntry
// fields. All row-to-record coercion lives here so FoxPro-style encodings are
// normalized exactly once.
var registerColumnFields = map[string]string{
	"CIDCHEC":    "entryId",
	"CENTRYTYPE": "kind",
	"CCHECKNO":   "checkNumber",
	"DCHECKDATE": "date",
	"CPAYEE":     "payee",
	"NAMOUNT":    "amount",
	"LCLEARED":   "cleared",
	"LVOID":      "void",
}

// DecodeRegisterEntries converts the legacy tabular shape into typed entries.
// Rows missing an entry id are dropped; individual bad cells fall back to
// zero values rather than failing the whole load.
func DecodeRegisterEntries(data models.TableData) ([]RegisterEntry, error) {
	index := make(map[string]int, len(data.Columns))
	for i, col := range data.Columns {
		if field, ok := registerColumnFields[strings.ToUpper(strings.TrimSpace(col))]; ok {
			index[field] = i
		}
	}
	if _, ok := index["entryId"]; !ok {
		return nil, fmt.Errorf("register data has no CIDCHEC column (got %v)", data.Columns)
	}

	cell := func(row []interface{}, field string) interface{} {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	var entries []RegisterEntry
	for _, row := range data.Rows {
		id := coerceString(cell(row, "entryId"))
		if id == "" {
			continue
		}
		entry := RegisterEntry{
			EntryID:     id,
			Kind:        normalizeKind(coerceString(cell(row, "kind"))),
			CheckNumber: coerceString(cell(row, "checkNumber")),
			Date:        coerceDate(cell(row, "date")),
			Payee:       coerceString(cell(row, "payee")),
			Amount:      coerceAmount(cell(row, "amount")),
			Cleared:     coerceLogical(cell(row, "cleared")),
			Void:        coerceLogical(cell(row, "void")),
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func normalizeKind(kind string) string {
	if strings.EqualFold(strings.TrimSpace(kind), KindDeposit) {
		return KindDeposit
	}
	return KindCheck
}

// coerceLogical accepts the boolean encodings the legacy layer produces:
// native bool, "T"/"F", ".T."/".F.", and "Y"/"N".
func coerceLogical(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToUpper(strings.TrimSpace(val)) {
		case "T", ".T.", "Y", "TRUE":
			return true
		}
	}
	return false
}

func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func coerceAmount(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val)
	case float32:
		return decimal.NewFromFloat32(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func coerceDate(v interface{}) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range []string{"2006-01-02", "01/02/2006", time.RFC3339} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
