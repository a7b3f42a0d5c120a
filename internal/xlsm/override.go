package xlsm

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// Override adjusts a single cell at write-back. It receives the original
// and the translated text and returns what gets written; returning the
// original keeps the cell untouched. The hook runs for every collected
// cell, including cells the translator left alone.
type Override func(sheet, cell, original, translated string) string

// KeepColumnsByHeader returns an Override that keeps the original text of
// every column whose first collected cell equals header, ignoring case and
// surrounding space. The Override is stateful: it decides per column from
// the first cell it sees and relies on collection order, so use a fresh
// one per workbook.
func KeepColumnsByHeader(header string) Override {
	want := strings.TrimSpace(header)
	type colKey struct {
		sheet string
		col   int
	}
	decided := make(map[colKey]bool)
	keep := make(map[colKey]bool)
	return func(sheet, cell, original, translated string) string {
		col, _, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			return translated
		}
		k := colKey{sheet: sheet, col: col}
		if !decided[k] {
			decided[k] = true
			keep[k] = strings.EqualFold(strings.TrimSpace(original), want)
		}
		if keep[k] {
			return original
		}
		return translated
	}
}
