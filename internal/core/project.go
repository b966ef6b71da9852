package core

import (
	"bytes"
	"encoding/json"
)

// DefaultRawLimit is the number of rows returned by the raw_data view.
const DefaultRawLimit = 50

// RawRow is one projected record. Values line up with Columns; a nil value
// means the cell held no value and is encoded as JSON null.
// RawRow marshals to a JSON object whose keys keep the column order of the file.
type RawRow struct {
	Columns []string
	Values  []any
}

// Get returns the value for column and whether the column exists.
func (r RawRow) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

func (r RawRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// columnKind is the inferred type of a whole column.
type columnKind int

const (
	kindInteger columnKind = iota
	kindFloat
	kindString
)

// ProjectRaw returns the first limit rows of t with every cell converted to the
// type inferred for its column. A non-positive limit means DefaultRawLimit.
// Every column appears in every row.
func ProjectRaw(t *Table, limit int) []RawRow {
	if limit <= 0 {
		limit = DefaultRawLimit
	}
	if limit > len(t.Rows) {
		limit = len(t.Rows)
	}

	kinds := make([]columnKind, len(t.Columns))
	for i := range t.Columns {
		kinds[i] = inferColumn(t, i)
	}

	rows := make([]RawRow, 0, limit)
	for _, row := range t.Rows[:limit] {
		values := make([]any, len(t.Columns))
		for i, v := range row.Values {
			values[i] = convertCell(v, kinds[i])
		}
		rows = append(rows, RawRow{Columns: t.Columns, Values: values})
	}
	return rows
}

// inferColumn looks at every non-missing cell of column i. A column with no
// values at all is numeric, so its cells project as null.
func inferColumn(t *Table, i int) columnKind {
	kind := kindInteger
	for _, row := range t.Rows {
		v := row.Values[i]
		if !v.Valid {
			continue
		}
		if kind == kindInteger {
			if _, ok := parseInteger(v.Raw); ok {
				continue
			}
			kind = kindFloat
		}
		if _, ok := ParseNumeric(v.Raw); !ok {
			return kindString
		}
	}
	return kind
}

func convertCell(v Value, kind columnKind) any {
	if !v.Valid {
		return nil
	}
	switch kind {
	case kindInteger:
		n, _ := parseInteger(v.Raw)
		return n
	case kindFloat:
		f, _ := ParseNumeric(v.Raw)
		return f
	default:
		return v.Raw
	}
}
