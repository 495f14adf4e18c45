package reports

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// NotAvailable is shown for a ratio whose denominator is zero.
const NotAvailable = "N/A"

// RatioLine is one computed ratio. Available is false when the denominator is zero.
type RatioLine struct {
	Name      string
	Value     decimal.Decimal
	Available bool
	// Amount marks currency figures listed alongside the ratios.
	Amount  bool
	formula string
}

// Ratios is the financial ratio sheet.
type Ratios struct {
	AsOf  string
	Lines []RatioLine
}

// BuildRatios recomputes statement totals from the trial balance and derives the ratios.
func BuildRatios(in Input) Ratios {
	fig := Summarize(in.Trial, in.Cash, in.Options)
	cf := BuildCashFlow(in)

	cashExpr := tbSum(literal(in.Cash.String()))
	currentExpr := cashExpr
	for _, category := range in.Options.CurrentAssetCategories {
		currentExpr += "+" + tbSum(literal(accounting.Categorized(accounting.KindAsset, category).String()))
	}
	liabilities := labelLookup(SheetBalanceSheet, "Total Liabilities")
	assets := labelLookup(SheetBalanceSheet, "Total Assets")
	equity := labelLookup(SheetBalanceSheet, "Total Equity")
	revenue := labelLookup(SheetProfitAndLoss, "Total Revenue")
	gross := labelLookup(SheetProfitAndLoss, "Gross Profit")
	npat := labelLookup(SheetProfitAndLoss, "Net Profit After Tax")

	r := Ratios{AsOf: in.Period.AsOf()}
	add := func(name string, num, den decimal.Decimal, numExpr, denExpr string) {
		value, ok := ratio(num, den)
		r.Lines = append(r.Lines, RatioLine{
			Name:      name,
			Value:     value,
			Available: ok,
			formula:   fmt.Sprintf(`IF(%s=0, "N/A", ROUND((%s)/%s, 4))`, denExpr, numExpr, denExpr),
		})
	}
	add("Current Ratio", fig.CurrentAssets, fig.TotalLiabilities, currentExpr, liabilities)
	add("Quick Ratio", fig.Cash, fig.TotalLiabilities, cashExpr, liabilities)
	add("Gross Profit Margin", fig.GrossProfit, fig.TotalRevenue, gross, revenue)
	add("Net Profit Margin", fig.NetProfitAfterTax, fig.TotalRevenue, npat, revenue)
	add("Asset Turnover", fig.TotalRevenue, fig.TotalAssets, revenue, assets)
	add("Debt-to-Equity Ratio", fig.TotalLiabilities.Abs(), fig.TotalEquity, "ABS("+liabilities+")", equity)
	add("Return on Assets", fig.NetProfitAfterTax, fig.TotalAssets, npat, assets)
	add("Return on Equity", fig.NetProfitAfterTax, fig.TotalEquity, npat, equity)

	r.Lines = append(r.Lines,
		RatioLine{
			Name:      "Net Cash from Operating Activities",
			Value:     cf.NetOperating,
			Available: true,
			Amount:    true,
			formula:   labelLookup(SheetCashFlow, "Net Cash from Operating Activities"),
		},
		RatioLine{
			Name:      "Net Increase in Cash",
			Value:     cf.NetIncrease,
			Available: true,
			Amount:    true,
			formula:   labelLookup(SheetCashFlow, "Net Increase in Cash"),
		},
	)
	return r
}

// Line returns the ratio with the given name.
func (r Ratios) Line(name string) (RatioLine, bool) {
	for _, line := range r.Lines {
		if strings.EqualFold(line.Name, name) {
			return line, true
		}
	}
	return RatioLine{}, false
}

// Sheet renders the ratios; unavailable ratios are shown as "N/A".
func (r Ratios) Sheet() workbook.Sheet {
	s := workbook.NewSheet(SheetRatios)
	s.Add(workbook.RowTitle, workbook.Text("Financial Ratios"))
	s.Add(workbook.RowTitle, workbook.Text("As of "+r.AsOf))
	s.Blank()
	s.Add(workbook.RowHeader, workbook.Text("Ratio"), workbook.Text("Value"))
	for _, line := range r.Lines {
		var cell workbook.Cell
		switch {
		case !line.Available:
			cell = workbook.Text(NotAvailable)
		case line.Amount:
			cell = workbook.Amount(line.Value)
		default:
			cell = workbook.Ratio(line.Value)
		}
		s.Add(workbook.RowLine, workbook.Text(line.Name), cell.WithFormula(line.formula))
	}
	return *s
}
