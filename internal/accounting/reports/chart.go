package reports

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

//go:embed chart_of_accounts.yaml
var chartDocument []byte

// Chart is the static chart of accounts printed at the top of a workbook.
type Chart struct {
	Columns []string   `yaml:"columns"`
	Rows    [][]string `yaml:"rows"`
}

var loadChart = sync.OnceValues(func() (Chart, error) {
	return ParseChart(chartDocument)
})

// ParseChart decodes a chart of accounts document.
func ParseChart(doc []byte) (Chart, error) {
	var chart Chart
	if err := yaml.Unmarshal(doc, &chart); err != nil {
		return Chart{}, fmt.Errorf("reports: parse chart of accounts: %w", err)
	}
	if len(chart.Columns) == 0 {
		return Chart{}, fmt.Errorf("reports: chart of accounts has no columns")
	}
	for i, row := range chart.Rows {
		if len(row) != len(chart.Columns) {
			return Chart{}, fmt.Errorf("reports: chart of accounts row %d has %d cells, want %d", i+1, len(row), len(chart.Columns))
		}
	}
	return chart, nil
}

// ChartOfAccountsSheet renders the embedded chart followed by the ledger accounts in use.
func ChartOfAccountsSheet(in Input) (workbook.Sheet, error) {
	chart, err := loadChart()
	if err != nil {
		return workbook.Sheet{}, err
	}
	s := workbook.NewSheet(SheetChartOfAccounts)
	s.Add(workbook.RowHeader, textCells(chart.Columns)...)
	for _, row := range chart.Rows {
		s.Add(workbook.RowLine, textCells(row)...)
	}
	s.Blank()

	s.Add(workbook.RowHeader,
		workbook.Text("Ledger Account"), workbook.Text("Kind"),
		workbook.Text("Financial Statement"), workbook.Text("Normal Balance"))
	for _, acc := range in.Trial.Accounts {
		kind := acc.Account.Kind
		statement := "Balance sheet"
		if kind == accounting.KindRevenue || kind == accounting.KindExpense {
			statement = "Income Statement"
		}
		normal := "Credit"
		if kind.DebitNormal() {
			normal = "Debit"
		}
		s.Add(workbook.RowLine,
			workbook.Text(acc.Name()),
			workbook.Text(kind.Prefix()),
			workbook.Text(statement),
			workbook.Text(normal),
		)
	}
	return *s, nil
}

func textCells(values []string) []workbook.Cell {
	cells := make([]workbook.Cell, len(values))
	for i, v := range values {
		cells[i] = workbook.Text(v)
	}
	return cells
}
