package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"
)

// utf8BOM is stripped from the start of uploaded files (Excel adds it on export).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Value is a single cell. Valid is false when the cell holds no value
// (empty, an NA marker, or absent because the row was short).
type Value struct {
	Raw   string
	Valid bool
}

// Float interprets the cell as a number.
func (v Value) Float() (float64, bool) {
	if !v.Valid {
		return 0, false
	}
	return ParseNumeric(v.Raw)
}

// Row is one data record of a Table.
type Row struct {
	Line   int // 1-based line in the source file
	Values []Value
	index  HeaderIndex
}

// Get returns the cell for the named column. The bool is false if the table has no such column.
func (r Row) Get(column string) (Value, bool) {
	i, ok := r.index[column]
	if !ok {
		return Value{}, false
	}
	return r.Values[i], true
}

// Table is a parsed CSV file: a header and zero or more data rows.
// Every row has exactly len(Columns) values.
type Table struct {
	Columns []string
	Rows    []Row
	index   HeaderIndex
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns the names from want that are not in the header, in want's order.
func (t *Table) MissingColumns(want []string) []string {
	var missing []string
	for _, name := range want {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Mean averages the numeric cells of column. Missing cells are skipped; a column
// with no numeric cells averages to 0. A cell that holds a value which is not a
// number fails the whole aggregation.
func (t *Table) Mean(column string) (float64, error) {
	i, ok := t.index[column]
	if !ok {
		return 0, fmt.Errorf("mean: unknown column %q", column)
	}

	// Running mean: a plain sum overflows long before the mean does.
	var mean float64
	var n int
	for _, row := range t.Rows {
		v := row.Values[i]
		if !v.Valid {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return 0, newAggregationError(column, v.Raw, row.Line)
		}
		n++
		mean += (f - mean) / float64(n)
		if math.IsInf(mean, 0) || math.IsNaN(mean) {
			return 0, newOutOfRangeError(column, row.Line)
		}
	}

	return mean, nil
}

// CountBy counts rows per literal value of column. Missing cells count under "".
func (t *Table) CountBy(column string) (TypeDistribution, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("count: unknown column %q", column)
	}

	counts := make(TypeDistribution)
	for _, row := range t.Rows {
		v := row.Values[i]
		if !v.Valid {
			counts[""]++
			continue
		}
		counts[v.Raw]++
	}
	return counts, nil
}

// ParseTable parses CSV bytes into a Table. The first record is the header.
// Any failure is returned as a ValidationError of kind KindMalformed.
func ParseTable(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newMalformedError(errors.New("no columns to parse from file"))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newMalformedError(errors.New("no columns to parse from file"))
		}
		return nil, newMalformedError(err)
	}

	columns := dedupeHeader(header)
	t := &Table{
		Columns: columns,
		index:   MakeHeaderIndex(columns),
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newMalformedError(err)
		}

		line, _ := r.FieldPos(0)
		if len(record) > len(columns) {
			return nil, newMalformedError(fmt.Errorf("expected %d fields in line %d, saw %d", len(columns), line, len(record)))
		}

		values := make([]Value, len(columns))
		for i, cell := range record {
			values[i] = Value{Raw: cell, Valid: !IsMissing(cell)}
		}
		t.Rows = append(t.Rows, Row{Line: line, Values: values, index: t.index})
	}

	return t, nil
}

// dedupeHeader names blank columns "Unnamed: i" and suffixes repeated names
// with ".1", ".2", ... so every column is addressable.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	counts := make(map[string]int, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		n := counts[h]
		name := h
		for used[name] {
			n++
			name = h + "." + strconv.Itoa(n)
		}
		counts[h] = n
		used[name] = true
		out[i] = name
	}
	return out
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
