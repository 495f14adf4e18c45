package reports

import (
	"fmt"

	"github.com/odyssey-erp/finreports/internal/workbook"
)

// TrialBalanceSheet renders the trial balance with SUMIF provenance over the general entries.
func TrialBalanceSheet(in Input) workbook.Sheet {
	s := workbook.NewSheet(SheetTrialBalance)
	s.Add(workbook.RowHeader, workbook.Text("Account"), workbook.Text("Debit"), workbook.Text("Credit"), workbook.Text("Balance"))

	first := s.Next()
	for _, acc := range in.Trial.Accounts {
		row := s.Next()
		name := workbook.Ref(1, row)
		s.Add(workbook.RowLine,
			workbook.Text(acc.Name()),
			workbook.Amount(acc.Debit).WithFormula(entriesSum(name, "D:D")),
			workbook.Amount(acc.Credit).WithFormula(entriesSum(name, "E:E")),
			workbook.Amount(acc.Net()).WithFormula(workbook.Ref(2, row)+"-"+workbook.Ref(3, row)),
		)
	}
	last := s.Next() - 1

	total := s.Next()
	s.Add(workbook.RowSubtotal,
		workbook.Text("Total"),
		workbook.Amount(in.Trial.TotalDebit).WithFormula(sumRange(2, first, last)),
		workbook.Amount(in.Trial.TotalCredit).WithFormula(sumRange(3, first, last)),
		workbook.Amount(in.Trial.TotalDebit.Sub(in.Trial.TotalCredit)).WithFormula(workbook.Ref(2, total)+"-"+workbook.Ref(3, total)),
	)
	s.Add(workbook.RowCheck,
		workbook.Text("Check"),
		workbook.Text(checkText(in.Trial.Balanced())).WithFormula(checkFormula(workbook.Ref(2, total), workbook.Ref(3, total))),
	)
	return *s
}

func entriesSum(criteriaRef, column string) string {
	return fmt.Sprintf("SUMIF(%s, %s, %s)",
		workbook.External(SheetGeneralEntries, "C:C"), criteriaRef, workbook.External(SheetGeneralEntries, column))
}
