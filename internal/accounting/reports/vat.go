package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// VATRow is the VAT computed on one transaction.
type VATRow struct {
	TransactionID string
	Type          accounting.TransactionType
	Amount        decimal.Decimal
	VAT           decimal.Decimal
}

// VATReport summarises output and input VAT for the period.
type VATReport struct {
	Period    string
	Rate      decimal.Decimal
	Rows      []VATRow
	OutputVAT decimal.Decimal
	InputVAT  decimal.Decimal
	NetVAT    decimal.Decimal
}

// BuildVATReport applies the VAT rate to every period transaction.
func BuildVATReport(in Input) VATReport {
	report := VATReport{
		Period:    in.Period.Label(),
		Rate:      in.Options.VATRate,
		OutputVAT: decimal.Zero,
		InputVAT:  decimal.Zero,
	}
	for _, tx := range in.Transactions {
		amount := tx.Amount.Round(2)
		vat := amount.Mul(report.Rate)
		report.Rows = append(report.Rows, VATRow{TransactionID: tx.ID, Type: tx.Type, Amount: amount, VAT: vat})
		switch tx.Type {
		case accounting.TransactionTypeIncome:
			report.OutputVAT = report.OutputVAT.Add(vat)
		case accounting.TransactionTypeExpense:
			report.InputVAT = report.InputVAT.Add(vat)
		}
	}
	report.NetVAT = report.OutputVAT.Sub(report.InputVAT)
	return report
}

// Sheet renders the VAT report.
func (v VATReport) Sheet() workbook.Sheet {
	s := workbook.NewSheet(SheetVAT)
	s.Add(workbook.RowTitle, workbook.Text("VAT Report"))
	s.Add(workbook.RowTitle, workbook.Text("For the Month Ending "+v.Period))
	s.Blank()
	s.Add(workbook.RowHeader, workbook.Text("Transaction ID"), workbook.Text("Type"), workbook.Text("Amount"), workbook.Text("VAT Amount"))
	first := s.Next()
	for _, row := range v.Rows {
		r := s.Next()
		s.Add(workbook.RowLine,
			workbook.Text(row.TransactionID),
			workbook.Text(string(row.Type)),
			workbook.Amount(row.Amount),
			workbook.Amount(row.VAT).WithFormula(workbook.Ref(3, r)+"*"+v.Rate.String()),
		)
	}
	last := s.Next() - 1
	s.Blank()

	output := s.Add(workbook.RowSubtotal,
		workbook.Text("Total Output VAT"),
		workbook.Amount(v.OutputVAT).WithFormula(vatSum(first, last, accounting.TransactionTypeIncome)),
	)
	input := s.Add(workbook.RowSubtotal,
		workbook.Text("Total Input VAT"),
		workbook.Amount(v.InputVAT).WithFormula(vatSum(first, last, accounting.TransactionTypeExpense)),
	)
	s.Add(workbook.RowSubtotal,
		workbook.Text("Net VAT Payable"),
		workbook.Amount(v.NetVAT).WithFormula(refB(output)+"-"+refB(input)),
	)
	return *s
}

func vatSum(first, last int, typ accounting.TransactionType) string {
	if last < first {
		return ""
	}
	return fmt.Sprintf("SUMIF(%s:%s, %s, %s:%s)",
		workbook.Ref(2, first), workbook.Ref(2, last), quote(string(typ)),
		workbook.Ref(4, first), workbook.Ref(4, last))
}
