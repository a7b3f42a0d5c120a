package xlsm

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"doc-translator/internal/geom"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// Excel stores print settings under built-in defined names.
const (
	printAreaName   = "_xlnm.Print_Area"
	printTitlesName = "_xlnm.Print_Titles"
)

// Open parses workbook bytes and collects translatable cells from each
// sheet's declared print area. A sheet without a print area is skipped
// entirely: nothing read, nothing modified.
func Open(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, types.NewAppError(types.ErrDocument, "cannot open workbook", err)
	}

	wb := &Workbook{f: f}
	areas := printAreas(f)
	for _, sheet := range f.GetSheetList() {
		set := areas[sheet]
		if set.Empty() {
			logger.Debug("sheet has no print area, skipped", logger.String("sheet", sheet))
			continue
		}
		sa := sheetArea{name: sheet, areas: set, union: set.Union()}
		sa.items, err = collectItems(f, sheet, set, sa.union)
		if err != nil {
			f.Close()
			return nil, err
		}
		wb.sheets = append(wb.sheets, sa)
	}

	total := 0
	for _, sa := range wb.sheets {
		total += len(sa.items)
	}
	logger.Debug("workbook parsed",
		logger.Int("sheets", len(wb.sheets)),
		logger.Int("cells", total))
	return wb, nil
}

// printAreas maps sheet names to the ranges their print area declares.
// RefersTo strings look like 'Sheet 1'!$B$2:$D$4,'Sheet 1'!$F$2:$G$4.
func printAreas(f *excelize.File) map[string]geom.Set {
	areas := make(map[string]geom.Set)
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, printAreaName) {
			continue
		}
		for _, part := range strings.Split(dn.RefersTo, ",") {
			part = strings.TrimSpace(part)
			bang := strings.LastIndex(part, "!")
			if bang < 0 {
				continue
			}
			sheet := strings.Trim(part[:bang], "'")
			r, ok := parseRange(part[bang+1:])
			if !ok {
				logger.Warn("unparseable print area range",
					logger.String("sheet", sheet),
					logger.String("range", part))
				continue
			}
			set := areas[sheet]
			set.Add(r)
			areas[sheet] = set
		}
	}
	return areas
}

// parseRange converts $B$2:$D$4 (or a single $B$2) to a cell rect.
func parseRange(ref string) (geom.Rect, bool) {
	ref = strings.ReplaceAll(ref, "$", "")
	first, last, ok := strings.Cut(ref, ":")
	if !ok {
		last = first
	}
	c1, r1, err := excelize.CellNameToCoordinates(first)
	if err != nil {
		return geom.Rect{}, false
	}
	c2, r2, err := excelize.CellNameToCoordinates(last)
	if err != nil {
		return geom.Rect{}, false
	}
	return geom.CellRect(c1, r1, c2, r2), true
}

// collectItems walks the union bounding box row by row and keeps in-area
// cells holding literal text. Values are kept untrimmed.
func collectItems(f *excelize.File, sheet string, areas geom.Set, union geom.Rect) ([]cellItem, error) {
	minCol, minRow := int(union.X1), int(union.Y1)
	maxCol, maxRow := int(union.X2)-1, int(union.Y2)-1

	var items []cellItem
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !areas.ContainsCell(col, row) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, types.NewAppError(types.ErrInternal, "invalid cell coordinates", err)
			}
			val, err := f.GetCellValue(sheet, cell)
			if err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrDocument,
					"cannot read cell", sheet+"!"+cell, err)
			}
			if !translatableValue(f, sheet, cell, val) {
				continue
			}
			items = append(items, cellItem{id: sheet + "!" + cell, cell: cell, text: val})
		}
	}
	return items, nil
}

// translatableValue reports whether a cell should be sent for translation:
// non-blank literal text that is not a formula and does not read as a bare
// number.
func translatableValue(f *excelize.File, sheet, cell, val string) bool {
	if strings.TrimSpace(val) == "" || strings.HasPrefix(val, "=") {
		return false
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
		return false
	}
	if formula, _ := f.GetCellFormula(sheet, cell); formula != "" {
		return false
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false
	}
	return typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString
}
