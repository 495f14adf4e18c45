package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// CorporateTax is the simplified corporate tax computation of the period.
type CorporateTax struct {
	Period        string
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	NetProfit     decimal.Decimal
	Rate          decimal.Decimal
	Liability     decimal.Decimal
}

// BuildCorporateTax sums income and expense transactions of the period.
func BuildCorporateTax(in Input) CorporateTax {
	tax := CorporateTax{
		Period:        in.Period.Label(),
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Rate:          in.Options.CorporateTaxRate,
	}
	for _, tx := range in.Transactions {
		switch tx.Type {
		case accounting.TransactionTypeIncome:
			tax.TotalIncome = tax.TotalIncome.Add(tx.Amount.Round(2))
		case accounting.TransactionTypeExpense:
			tax.TotalExpenses = tax.TotalExpenses.Add(tx.Amount.Round(2))
		}
	}
	tax.NetProfit = tax.TotalIncome.Sub(tax.TotalExpenses)
	tax.Liability = incomeTax(tax.NetProfit, tax.Rate)
	return tax
}

// RateLabel renders the rate as a percentage, e.g. "30%".
func (c CorporateTax) RateLabel() string {
	return c.Rate.Mul(decimal.NewFromInt(100)).String() + "%"
}

// Sheet renders the corporate tax summary.
func (c CorporateTax) Sheet() workbook.Sheet {
	s := workbook.NewSheet(SheetCorporateTax)
	s.Add(workbook.RowTitle, workbook.Text("Corporate Tax"))
	s.Add(workbook.RowTitle, workbook.Text("For the Month Ending "+c.Period))
	s.Blank()
	income := s.Add(workbook.RowLine,
		workbook.Text("Total Income"),
		workbook.Amount(c.TotalIncome).WithFormula(ledgerSum(accounting.TransactionTypeIncome)),
	)
	expenses := s.Add(workbook.RowLine,
		workbook.Text("Total Expenses"),
		workbook.Amount(c.TotalExpenses).WithFormula(ledgerSum(accounting.TransactionTypeExpense)),
	)
	profit := s.Add(workbook.RowSubtotal,
		workbook.Text("Net Profit"),
		workbook.Amount(c.NetProfit).WithFormula(refB(income)+"-"+refB(expenses)),
	)
	s.Add(workbook.RowLine, workbook.Text("Tax Rate"), workbook.Text(c.RateLabel()))
	s.Add(workbook.RowSubtotal,
		workbook.Text("Corporate Tax Liability"),
		workbook.Amount(c.Liability).WithFormula(fmt.Sprintf("IF(%s>0, ROUND(%s*%s, 2), 0)", refB(profit), refB(profit), c.Rate.String())),
	)
	return *s
}

func ledgerSum(typ accounting.TransactionType) string {
	return fmt.Sprintf("SUMIF(%s, %s, %s)",
		workbook.External(SheetDetailedLedger, "E:E"), quote(string(typ)), workbook.External(SheetDetailedLedger, "F:F"))
}
