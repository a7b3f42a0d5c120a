// Package xlsm translates macro-enabled Excel workbooks in place. Only
// sheets with a declared print area take part: text cells inside the area
// are translated, everything outside it is cut away, and the workbook is
// saved back with macros and untouched parts intact.
package xlsm

import (
	"doc-translator/internal/geom"
	"doc-translator/internal/types"

	"github.com/xuri/excelize/v2"
)

// cellItem is one collected cell: its stable id, A1 reference and source text.
type cellItem struct {
	id   string
	cell string
	text string
}

// sheetArea is a sheet with a declared print area: the declared ranges,
// their bounding box, and the cells collected from them in row-major order.
type sheetArea struct {
	name  string
	areas geom.Set
	union geom.Rect
	items []cellItem
}

// Workbook is an open spreadsheet staged for translation.
type Workbook struct {
	f      *excelize.File
	sheets []sheetArea

	// Override, when set, has the last word on every collected cell at
	// write-back: it receives the original and the translated text and
	// returns what gets written. Calls arrive in collection order, row by
	// row within each sheet.
	Override Override
}

// Close releases the underlying spreadsheet resources.
func (w *Workbook) Close() error { return w.f.Close() }

// Sheets returns the number of sheets that declare a print area.
func (w *Workbook) Sheets() int { return len(w.sheets) }

// Items returns the collected cells in collection order, keyed sheet!cell.
func (w *Workbook) Items() []types.TranslationItem {
	var items []types.TranslationItem
	for _, sa := range w.sheets {
		for _, it := range sa.items {
			items = append(items, types.TranslationItem{ID: it.id, Text: it.text})
		}
	}
	return items
}
