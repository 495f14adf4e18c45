package workbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFormulas, mode)

	mode, err = ParseMode(" Values ")
	require.NoError(t, err)
	assert.Equal(t, ModeValues, mode)
	assert.Equal(t, "values", mode.String())

	_, err = ParseMode("html")
	assert.Error(t, err)
}

func TestReferences(t *testing.T) {
	assert.Equal(t, "B7", Ref(2, 7))
	assert.Equal(t, "AA1", Ref(27, 1))
	assert.Equal(t, "D:D", Column(4))
	assert.Equal(t, "'Trial Balance'!A:A", External("Trial Balance", "A:A"))
	assert.Equal(t, "'Owner''s'!B2", External("Owner's", "B2"))
}

func TestSheetRows(t *testing.T) {
	s := NewSheet("P&L")
	assert.Equal(t, 1, s.Next())
	assert.Equal(t, 1, s.Add(RowHeader, Text("Line"), Text("Amount")))
	assert.Equal(t, 2, s.Add(RowLine, Text("Revenue"), Amount(decimal.RequireFromString("8000"))))
	assert.Equal(t, 3, s.Blank())

	cell, ok := s.Value("Revenue")
	require.True(t, ok)
	assert.Equal(t, "8000.00", cell.String())

	_, row, ok := s.Find("Revenue")
	require.True(t, ok)
	assert.Equal(t, 2, row)

	assert.Equal(t, KindEmpty, s.Cell(5, 2).Kind)
	assert.Equal(t, "Amount", s.Cell(2, 1).String())
}

func TestCellRendering(t *testing.T) {
	assert.Equal(t, "0.3333", Ratio(decimal.RequireFromString("0.33333")).String())
	assert.Equal(t, "60", Int(60).String())
	assert.Equal(t, "", Empty().String())

	c := Amount(decimal.NewFromInt(5)).WithFormula("B2*2")
	assert.Equal(t, "B2*2", c.Formula)
	assert.Equal(t, "5.00", c.String())

	b := Bundle{Sheets: []Sheet{{Name: "A"}, {Name: "B"}}}
	assert.Equal(t, []string{"A", "B"}, b.Names())
	_, ok := b.Sheet("C")
	assert.False(t, ok)
}
