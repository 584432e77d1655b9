package models

// TableData is the raw tabular shape the legacy register layer speaks:
// a column-name header plus untyped rows. Consumers do their own
// column-index lookup and type coercion.
type TableData struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}
