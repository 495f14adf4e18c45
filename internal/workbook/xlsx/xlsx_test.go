package xlsx

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/finreports/internal/workbook"
)

func bundle() workbook.Bundle {
	tb := workbook.NewSheet("Trial Balance")
	tb.Add(workbook.RowHeader, workbook.Text("Account"), workbook.Text("Balance"))
	tb.Add(workbook.RowLine, workbook.Text("Bank"), workbook.Amount(decimal.RequireFromString("-12000")).WithFormula("SUM(C2:C3)"))
	bs := workbook.NewSheet("Balance Sheet")
	bs.Add(workbook.RowCheck, workbook.Text("Check"), workbook.Text("Balanced").WithFormula(`IF(B1=B2, "Balanced", "Error")`))
	return workbook.Bundle{Sheets: []workbook.Sheet{*tb, *bs}}
}

func open(t *testing.T, mode workbook.Mode) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, bundle(), mode))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriteFormulas(t *testing.T) {
	f := open(t, workbook.ModeFormulas)
	assert.Equal(t, []string{"Trial Balance", "Balance Sheet"}, f.GetSheetList())

	formula, err := f.GetCellFormula("Trial Balance", "B2")
	require.NoError(t, err)
	assert.Equal(t, "SUM(C2:C3)", formula)

	formula, err = f.GetCellFormula("Balance Sheet", "B1")
	require.NoError(t, err)
	assert.Equal(t, `IF(B1=B2, "Balanced", "Error")`, formula)
}

func TestWriteValues(t *testing.T) {
	f := open(t, workbook.ModeValues)

	formula, err := f.GetCellFormula("Trial Balance", "B2")
	require.NoError(t, err)
	assert.Empty(t, formula)

	raw, err := f.GetCellValue("Trial Balance", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "-12000", raw)

	text, err := f.GetCellValue("Balance Sheet", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Balanced", text)
}
