package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// ProfitAndLoss is the income statement of the period.
type ProfitAndLoss struct {
	Period            string
	Revenue           []StatementLine
	TotalRevenue      decimal.Decimal
	CostOfSales       decimal.Decimal
	GrossProfit       decimal.Decimal
	Modeled           []ExpenseLine
	OtherOpex         decimal.Decimal
	Depreciation      decimal.Decimal
	TotalOpex         decimal.Decimal
	EBITDA            decimal.Decimal
	EBIT              decimal.Decimal
	TaxRate           decimal.Decimal
	IncomeTax         decimal.Decimal
	NetProfitAfterTax decimal.Decimal
	Legacy            bool
}

// BuildProfitAndLoss derives the profit & loss from the trial balance.
func BuildProfitAndLoss(in Input) ProfitAndLoss {
	fig := Summarize(in.Trial, in.Cash, in.Options)
	pl := ProfitAndLoss{
		Period:            in.Period.Label(),
		TotalRevenue:      fig.TotalRevenue,
		CostOfSales:       fig.CostOfSales,
		GrossProfit:       fig.GrossProfit,
		Modeled:           fig.Modeled,
		OtherOpex:         fig.OtherOpex,
		Depreciation:      fig.Depreciation,
		TotalOpex:         fig.TotalOpex,
		EBITDA:            fig.EBITDA,
		EBIT:              fig.EBIT,
		TaxRate:           in.Options.CorporateTaxRate,
		IncomeTax:         fig.IncomeTax,
		NetProfitAfterTax: fig.NetProfitAfterTax,
		Legacy:            in.Options.LegacyOperatingExpenses,
	}
	for _, acc := range in.Trial.OfKind(accounting.KindRevenue) {
		pl.Revenue = append(pl.Revenue, StatementLine{Label: acc.Name(), Account: acc.Account, Amount: acc.Net().Neg()})
	}
	return pl
}

// Sheet renders the profit & loss with trial balance provenance.
func (pl ProfitAndLoss) Sheet() workbook.Sheet {
	s := workbook.NewSheet(SheetProfitAndLoss)
	s.Add(workbook.RowTitle, workbook.Text("Profit & Loss Statement"))
	s.Add(workbook.RowTitle, workbook.Text("For the Month Ending "+pl.Period))
	s.Blank()

	s.Add(workbook.RowHeader, workbook.Text("Income"))
	firstRevenue := s.Next()
	for _, line := range pl.Revenue {
		row := s.Next()
		s.Add(workbook.RowLine, workbook.Text(line.Label), workbook.Amount(line.Amount).WithFormula("-"+tbLookup(workbook.Ref(1, row))))
	}
	totalRevenue := s.Add(workbook.RowSubtotal,
		workbook.Text("Total Revenue"),
		workbook.Amount(pl.TotalRevenue).WithFormula(sumRange(2, firstRevenue, s.Next()-1)),
	)
	costOfSales := s.Add(workbook.RowLine, workbook.Text("Cost of Sales"), workbook.Amount(pl.CostOfSales))
	grossProfit := s.Add(workbook.RowSubtotal,
		workbook.Text("Gross Profit"),
		workbook.Amount(pl.GrossProfit).WithFormula(refB(totalRevenue)+"-"+refB(costOfSales)),
	)
	s.Blank()

	s.Add(workbook.RowHeader, workbook.Text("Operating Expenses"))
	firstOpex := s.Next()
	var modeledRefs string
	for i, line := range pl.Modeled {
		row := s.Add(workbook.RowLine,
			workbook.Text(line.Label),
			workbook.Amount(line.Amount).WithFormula(tbSum(literal(accounting.Categorized(accounting.KindExpense, line.Category).String()))),
		)
		if i > 0 {
			modeledRefs += "-"
		}
		modeledRefs += refB(row)
	}
	if !pl.Legacy {
		formula := tbSum(kindPattern(accounting.KindExpense.Prefix()))
		if modeledRefs != "" {
			formula += "-" + modeledRefs
		}
		s.Add(workbook.RowLine, workbook.Text("Other Operating Expenses"), workbook.Amount(pl.OtherOpex).WithFormula(formula))
	}
	depreciation := s.Add(workbook.RowLine,
		workbook.Text("Depreciation"),
		workbook.Amount(pl.Depreciation).WithFormula(fmt.Sprintf("SUM(%s)", workbook.External(SheetDepreciation, "D:D"))),
	)
	totalOpex := s.Add(workbook.RowSubtotal,
		workbook.Text("Total Operating Expenses"),
		workbook.Amount(pl.TotalOpex).WithFormula(sumRange(2, firstOpex, depreciation)),
	)
	s.Blank()

	ebitdaFormula := fmt.Sprintf("%s-(%s-%s)", refB(grossProfit), refB(totalOpex), refB(depreciation))
	if pl.Legacy {
		ebitdaFormula = refB(grossProfit)
		if len(pl.Modeled) > 0 {
			ebitdaFormula += "-" + refB(firstOpex)
		}
	}
	ebitda := s.Add(workbook.RowSubtotal, workbook.Text("EBITDA"), workbook.Amount(pl.EBITDA).WithFormula(ebitdaFormula))
	ebit := s.Add(workbook.RowSubtotal,
		workbook.Text("EBIT"),
		workbook.Amount(pl.EBIT).WithFormula(refB(ebitda)+"-"+refB(depreciation)),
	)
	tax := s.Add(workbook.RowLine,
		workbook.Text("Income Tax"),
		workbook.Amount(pl.IncomeTax).WithFormula(fmt.Sprintf("ROUND(MAX(0, %s*%s), 2)", refB(ebit), pl.TaxRate.String())),
	)
	s.Add(workbook.RowSubtotal,
		workbook.Text("Net Profit After Tax"),
		workbook.Amount(pl.NetProfitAfterTax).WithFormula(refB(ebit)+"-"+refB(tax)),
	)
	return *s
}
