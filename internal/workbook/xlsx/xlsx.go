// Package xlsx writes a workbook bundle as an Office Open XML spreadsheet using excelize.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/finreports/internal/workbook"
)

const defaultSheet = "Sheet1"

var (
	amountFormat = "#,##0.00"
	ratioFormat  = "0.0000"
)

type styleKey struct {
	bold   bool
	places int32
	number bool
}

type writer struct {
	file   *excelize.File
	mode   workbook.Mode
	styles map[styleKey]int
}

// Write renders the bundle. In ModeFormulas every cell carrying a provenance formula is
// written as a live formula; in ModeValues only evaluated values are written.
func Write(w io.Writer, bundle workbook.Bundle, mode workbook.Mode) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	wr := &writer{file: f, mode: mode, styles: make(map[styleKey]int)}

	for idx, sheet := range bundle.Sheets {
		if idx == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return fmt.Errorf("xlsx: rename sheet %s: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("xlsx: add sheet %s: %w", sheet.Name, err)
		}
		if err := wr.writeSheet(sheet); err != nil {
			return err
		}
	}
	if len(bundle.Sheets) > 0 {
		f.SetActiveSheet(0)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

func (wr *writer) writeSheet(sheet workbook.Sheet) error {
	if err := wr.file.SetColWidth(sheet.Name, "A", "A", 42); err != nil {
		return err
	}
	if err := wr.file.SetColWidth(sheet.Name, "B", "F", 18); err != nil {
		return err
	}
	for r, row := range sheet.Rows {
		bold := row.Kind == workbook.RowHeader || row.Kind == workbook.RowTitle || row.Kind == workbook.RowSubtotal
		for c, cell := range row.Cells {
			if err := wr.writeCell(sheet.Name, workbook.Ref(c+1, r+1), cell, bold); err != nil {
				return fmt.Errorf("xlsx: sheet %s row %d: %w", sheet.Name, r+1, err)
			}
		}
	}
	return nil
}

func (wr *writer) writeCell(sheet, ref string, cell workbook.Cell, bold bool) error {
	f := wr.file
	switch cell.Kind {
	case workbook.KindEmpty:
		return nil
	case workbook.KindText:
		if err := f.SetCellStr(sheet, ref, cell.Text); err != nil {
			return err
		}
	case workbook.KindNumber:
		if err := f.SetCellFloat(sheet, ref, cell.Number.InexactFloat64(), -1, 64); err != nil {
			return err
		}
	}
	if wr.mode == workbook.ModeFormulas && cell.Formula != "" {
		if err := f.SetCellFormula(sheet, ref, cell.Formula); err != nil {
			return err
		}
	}
	style, err := wr.style(styleKey{bold: bold, places: cell.Places, number: cell.Kind == workbook.KindNumber})
	if err != nil {
		return err
	}
	if style == 0 {
		return nil
	}
	return f.SetCellStyle(sheet, ref, ref, style)
}

func (wr *writer) style(key styleKey) (int, error) {
	if !key.bold && !key.number {
		return 0, nil
	}
	if id, ok := wr.styles[key]; ok {
		return id, nil
	}
	st := &excelize.Style{}
	if key.bold {
		st.Font = &excelize.Font{Bold: true}
	}
	if key.number {
		switch key.places {
		case 2:
			st.CustomNumFmt = &amountFormat
		case 4:
			st.CustomNumFmt = &ratioFormat
		}
	}
	id, err := wr.file.NewStyle(st)
	if err != nil {
		return 0, err
	}
	wr.styles[key] = id
	return id, nil
}
