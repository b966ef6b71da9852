package core

// convert.go provides conversion helpers for raw CSV cells.
//
// These functions handle the messy reality of user-provided CSV data:
//   - Textual "no value" markers exported by spreadsheets and dataframes (NA, NaN, null)
//   - Excel formula prefixes (="value")
//   - Surrounding whitespace around numbers
//
// Cell values are kept as the parser produced them; conversion happens only
// when a numeric interpretation is needed.

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// integerRegex matches plain integers.
var integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

// missingMarkers are cell values treated as "no value".
var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// IsMissing reports whether a raw cell holds no value.
func IsMissing(s string) bool {
	_, ok := missingMarkers[strings.TrimSpace(s)]
	return ok
}

// ParseNumeric converts a cell to float64.
// Returns false if the value is not a plain decimal or scientific number.
func ParseNumeric(s string) (float64, bool) {
	s = CleanCell(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseInteger converts a cell to int64. Returns false for anything but a plain integer.
func parseInteger(s string) (int64, bool) {
	s = CleanCell(s)
	if !integerRegex.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return s
}

// HeaderIndex maps column names to their position in the CSV row.
// Names are matched exactly (case-sensitive).
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// The first occurrence of a name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, exists := idx[h]; !exists {
			idx[h] = i
		}
	}
	return idx
}
