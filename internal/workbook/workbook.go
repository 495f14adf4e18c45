// Package workbook holds the format-neutral tabular output of the report engine: an
// ordered bundle of named sheets whose cells carry an evaluated value and, optionally,
// the spreadsheet expression that produced it.
package workbook

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Mode selects how serializers treat provenance formulas.
type Mode int

const (
	// ModeFormulas writes live formulas wherever a cell carries one.
	ModeFormulas Mode = iota
	// ModeValues writes the pre-evaluated values only.
	ModeValues
)

// ParseMode converts "formulas" or "values" into a Mode; blank means formulas.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "formulas", "formula":
		return ModeFormulas, nil
	case "values", "value":
		return ModeValues, nil
	}
	return ModeFormulas, fmt.Errorf("workbook: unknown mode %q", raw)
}

func (m Mode) String() string {
	if m == ModeValues {
		return "values"
	}
	return "formulas"
}

// CellKind tags the literal stored in a cell.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
)

// Cell is a literal value with an optional provenance expression.
type Cell struct {
	Kind    CellKind
	Text    string
	Number  decimal.Decimal
	Places  int32
	Formula string
}

// Empty returns a blank cell.
func Empty() Cell { return Cell{} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

// Amount returns a currency cell shown with two decimals.
func Amount(d decimal.Decimal) Cell { return Cell{Kind: KindNumber, Number: d, Places: 2} }

// Ratio returns a number cell shown with four decimals.
func Ratio(d decimal.Decimal) Cell { return Cell{Kind: KindNumber, Number: d, Places: 4} }

// Int returns an integer cell.
func Int(v int) Cell { return Cell{Kind: KindNumber, Number: decimal.NewFromInt(int64(v))} }

// WithFormula attaches a provenance expression to the cell.
func (c Cell) WithFormula(formula string) Cell {
	c.Formula = formula
	return c
}

// String renders the evaluated value.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return c.Number.StringFixed(c.Places)
	}
	return ""
}

// RowKind distinguishes presentation roles of a row.
type RowKind int

const (
	RowLine RowKind = iota
	RowTitle
	RowHeader
	RowSubtotal
	RowBlank
	RowCheck
)

// Row is one line of a sheet.
type Row struct {
	Kind  RowKind
	Cells []Cell
}

// Sheet is a named grid of rows.
type Sheet struct {
	Name string
	Rows []Row
}

// NewSheet creates an empty sheet.
func NewSheet(name string) *Sheet {
	return &Sheet{Name: name}
}

// Add appends a row and returns its 1-based row number.
func (s *Sheet) Add(kind RowKind, cells ...Cell) int {
	s.Rows = append(s.Rows, Row{Kind: kind, Cells: cells})
	return len(s.Rows)
}

// Blank appends an empty spacer row.
func (s *Sheet) Blank() int {
	return s.Add(RowBlank)
}

// Next returns the row number the next Add will use.
func (s *Sheet) Next() int {
	return len(s.Rows) + 1
}

// Cell returns the cell at 1-based coordinates, or an empty cell.
func (s Sheet) Cell(col, row int) Cell {
	if row < 1 || row > len(s.Rows) {
		return Cell{}
	}
	cells := s.Rows[row-1].Cells
	if col < 1 || col > len(cells) {
		return Cell{}
	}
	return cells[col-1]
}

// Find returns the first row whose first cell has the given label, and its row number.
func (s Sheet) Find(label string) (Row, int, bool) {
	for idx, row := range s.Rows {
		if len(row.Cells) > 0 && row.Cells[0].Kind == KindText && row.Cells[0].Text == label {
			return row, idx + 1, true
		}
	}
	return Row{}, 0, false
}

// Value returns the second cell of the row labelled label.
func (s Sheet) Value(label string) (Cell, bool) {
	row, _, ok := s.Find(label)
	if !ok || len(row.Cells) < 2 {
		return Cell{}, false
	}
	return row.Cells[1], true
}

// Bundle is the ordered set of sheets produced by one derivation pass.
type Bundle struct {
	Sheets []Sheet
}

// Names lists sheet names in order.
func (b Bundle) Names() []string {
	names := make([]string, 0, len(b.Sheets))
	for _, s := range b.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Sheet returns the sheet with the given name.
func (b Bundle) Sheet(name string) (Sheet, bool) {
	for _, s := range b.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// Ref renders an A1 reference such as "B7".
func Ref(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}

// Column renders a whole-column reference such as "D:D".
func Column(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return name + ":" + name
}

// External qualifies a reference with a sheet name, e.g. 'Trial Balance'!A:A.
func External(sheet, ref string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + ref
}
