package xlsm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"doc-translator/internal/geom"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// cellWrite is one pending cell assignment.
type cellWrite struct {
	cell  string
	value string
}

// sheetPlan is the full mutation schedule for one sheet, computed before
// the sheet is touched. Rows and cols are listed in removal order: the
// far side first, both sides descending, so no removal shifts a later one.
type sheetPlan struct {
	sheet    string
	unmerges [][2]string
	writes   []cellWrite
	clears   []string
	rows     []int
	cols     []string
	refersTo string
}

// Rewrite writes translations into the collected cells and crops every
// participating sheet down to its print-area union. A sheet whose plan
// cannot be computed is skipped with its original content kept; the
// returned bytes keep macros and all untouched parts intact.
func (w *Workbook) Rewrite(translations map[string]string) ([]byte, error) {
	applied, cells := 0, 0
	for _, sa := range w.sheets {
		plan, err := w.planSheet(sa, translations)
		if err != nil {
			logger.Warn("sheet left untouched",
				logger.String("sheet", sa.name), logger.Err(err))
			continue
		}
		if err := w.applySheet(plan); err != nil {
			return nil, err
		}
		applied++
		cells += len(plan.writes)
	}

	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, types.NewAppError(types.ErrDocument, "cannot serialize workbook", err)
	}
	logger.Info("workbook rewritten",
		logger.Int("sheets", applied),
		logger.Int("cells", cells))
	return buf.Bytes(), nil
}

// planSheet resolves everything fallible for one sheet without mutating it.
func (w *Workbook) planSheet(sa sheetArea, translations map[string]string) (*sheetPlan, error) {
	p := &sheetPlan{sheet: sa.name}

	merges, err := w.f.GetMergeCells(sa.name)
	if err != nil {
		return nil, types.NewAppError(types.ErrDocument, "cannot read merged ranges", err)
	}
	for _, m := range merges {
		r, ok := mergeRect(m)
		if ok && !sa.union.ContainsRect(r) {
			p.unmerges = append(p.unmerges, [2]string{m.GetStartAxis(), m.GetEndAxis()})
		}
	}

	for _, it := range sa.items {
		text, ok := translations[it.id]
		if !ok || strings.TrimSpace(text) == "" {
			text = it.text
		}
		if w.Override != nil {
			text = w.Override(sa.name, it.cell, it.text, text)
		}
		if text != it.text {
			p.writes = append(p.writes, cellWrite{cell: it.cell, value: text})
		}
	}

	if err := w.planClears(p, sa); err != nil {
		return nil, err
	}
	if err := w.planCrop(p, sa.union); err != nil {
		return nil, err
	}

	width := int(sa.union.X2) - int(sa.union.X1)
	height := int(sa.union.Y2) - int(sa.union.Y1)
	last, err := excelize.CoordinatesToCellName(width, height, true)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "invalid print area extent", err)
	}
	p.refersTo = quoteSheet(sa.name) + "!$A$1:" + last
	return p, nil
}

// planClears lists cells inside the union bounding box but outside every
// declared range that carry a value or formula.
func (w *Workbook) planClears(p *sheetPlan, sa sheetArea) error {
	minCol, minRow := int(sa.union.X1), int(sa.union.Y1)
	maxCol, maxRow := int(sa.union.X2)-1, int(sa.union.Y2)-1
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if sa.areas.ContainsCell(col, row) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return types.NewAppError(types.ErrInternal, "invalid cell coordinates", err)
			}
			val, err := w.f.GetCellValue(sa.name, cell)
			if err != nil {
				return types.NewAppErrorWithDetails(types.ErrDocument,
					"cannot read cell", sa.name+"!"+cell, err)
			}
			formula, err := w.f.GetCellFormula(sa.name, cell)
			if err != nil {
				return types.NewAppErrorWithDetails(types.ErrDocument,
					"cannot read cell", sa.name+"!"+cell, err)
			}
			if val == "" && formula == "" {
				continue
			}
			p.clears = append(p.clears, cell)
		}
	}
	return nil
}

// planCrop schedules row and column removals outside the union: below the
// max row, above the min row, right of the max column, left of the min
// column, in that order.
func (w *Workbook) planCrop(p *sheetPlan, union geom.Rect) error {
	minCol, minRow := int(union.X1), int(union.Y1)
	maxCol, maxRow := int(union.X2)-1, int(union.Y2)-1

	rows, err := w.f.GetRows(p.sheet)
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrDocument,
			"cannot scan sheet", p.sheet, err)
	}
	lastRow, lastCol := len(rows), 0
	for _, r := range rows {
		if len(r) > lastCol {
			lastCol = len(r)
		}
	}

	for row := lastRow; row > maxRow; row-- {
		p.rows = append(p.rows, row)
	}
	for row := minRow - 1; row >= 1; row-- {
		p.rows = append(p.rows, row)
	}
	for col := lastCol; col > maxCol; col-- {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return types.NewAppError(types.ErrInternal, "invalid column number", err)
		}
		p.cols = append(p.cols, name)
	}
	for col := minCol - 1; col >= 1; col-- {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return types.NewAppError(types.ErrInternal, "invalid column number", err)
		}
		p.cols = append(p.cols, name)
	}
	return nil
}

// applySheet runs a computed plan against the workbook.
func (w *Workbook) applySheet(p *sheetPlan) error {
	for _, u := range p.unmerges {
		if err := w.f.UnmergeCell(p.sheet, u[0], u[1]); err != nil {
			return types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot unmerge range", fmt.Sprintf("%s %s:%s", p.sheet, u[0], u[1]), err)
		}
	}
	for _, cw := range p.writes {
		if err := w.f.SetCellValue(p.sheet, cw.cell, cw.value); err != nil {
			return types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot write cell", p.sheet+"!"+cw.cell, err)
		}
	}
	for _, cell := range p.clears {
		if err := w.f.SetCellValue(p.sheet, cell, nil); err != nil {
			return types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot clear cell", p.sheet+"!"+cell, err)
		}
		if err := w.f.SetCellFormula(p.sheet, cell, ""); err != nil {
			return types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot clear formula", p.sheet+"!"+cell, err)
		}
	}
	for _, row := range p.rows {
		if err := w.f.RemoveRow(p.sheet, row); err != nil {
			return types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot remove row", fmt.Sprintf("%s row %d", p.sheet, row), err)
		}
	}
	for _, col := range p.cols {
		if err := w.f.RemoveCol(p.sheet, col); err != nil {
			return types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot remove column", p.sheet+" column "+col, err)
		}
	}
	return w.resetPrintArea(p)
}

// resetPrintArea points the sheet's print area at the cropped extent and
// drops print titles, whose row and column anchors no longer hold.
func (w *Workbook) resetPrintArea(p *sheetPlan) error {
	for _, name := range []string{printAreaName, printTitlesName} {
		err := w.f.DeleteDefinedName(&excelize.DefinedName{Name: name, Scope: p.sheet})
		if err != nil && !errors.Is(err, excelize.ErrDefinedNameScope) {
			return types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot drop defined name", name, err)
		}
	}
	err := w.f.SetDefinedName(&excelize.DefinedName{
		Name:     printAreaName,
		RefersTo: p.refersTo,
		Scope:    p.sheet,
	})
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrDocument,
			"cannot set print area", p.refersTo, err)
	}
	return nil
}

func mergeRect(m excelize.MergeCell) (geom.Rect, bool) {
	c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
	if err != nil {
		return geom.Rect{}, false
	}
	c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
	if err != nil {
		return geom.Rect{}, false
	}
	return geom.CellRect(c1, r1, c2, r2), true
}

// quoteSheet wraps a sheet name in single quotes for range references.
func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
