package reports

import (
	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

const dateLayout = "2006-01-02"

// GeneralEntriesSheet lists every posting of the journal in emission order.
func GeneralEntriesSheet(in Input) workbook.Sheet {
	s := workbook.NewSheet(SheetGeneralEntries)
	s.Add(workbook.RowHeader,
		workbook.Text("Date"), workbook.Text("Description"), workbook.Text("Account"),
		workbook.Text("Debit"), workbook.Text("Credit"))
	for _, p := range in.Journal.Postings {
		debit, credit := workbook.Empty(), workbook.Empty()
		if p.Side == accounting.Debit {
			debit = workbook.Amount(p.Amount)
		} else {
			credit = workbook.Amount(p.Amount)
		}
		s.Add(workbook.RowLine,
			workbook.Text(p.Date.Format(dateLayout)),
			workbook.Text(p.Description),
			workbook.Text(p.Account.String()),
			debit,
			credit,
		)
	}
	return *s
}

// DetailedLedgerSheet lists the period's transactions as supplied.
func DetailedLedgerSheet(in Input) workbook.Sheet {
	s := workbook.NewSheet(SheetDetailedLedger)
	s.Add(workbook.RowHeader,
		workbook.Text("Transaction ID"), workbook.Text("Date"), workbook.Text("Description"),
		workbook.Text("Category"), workbook.Text("Type"), workbook.Text("Amount"))
	for _, tx := range in.Transactions {
		s.Add(workbook.RowLine,
			workbook.Text(tx.ID),
			workbook.Text(tx.Date.Format(dateLayout)),
			workbook.Text(tx.DescriptionOrDefault()),
			workbook.Text(tx.CategoryOrDefault()),
			workbook.Text(string(tx.Type)),
			workbook.Amount(tx.Amount.Round(2)),
		)
	}
	return *s
}
