package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// HistoricalMonth is the income and expense total of one calendar month.
type HistoricalMonth struct {
	Month    time.Time
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// HistoricalPL lists every month from the earliest transaction through the reporting month.
type HistoricalPL struct {
	Months []HistoricalMonth
}

// BuildHistoricalPL groups the unscoped history by calendar month.
func BuildHistoricalPL(in Input) HistoricalPL {
	loc := in.Period.Start.Location()
	last := in.Period.Start
	first := last
	for _, tx := range in.History {
		month := MonthOf(tx.Date.In(loc)).Start
		if month.Before(first) {
			first = month
		}
	}

	index := make(map[int]int)
	var out HistoricalPL
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		index[monthKey(m)] = len(out.Months)
		out.Months = append(out.Months, HistoricalMonth{Month: m, Revenue: decimal.Zero, Expenses: decimal.Zero})
	}
	for _, tx := range in.History {
		idx, ok := index[monthKey(tx.Date.In(loc))]
		if !ok {
			continue
		}
		switch tx.Type {
		case accounting.TransactionTypeIncome:
			out.Months[idx].Revenue = out.Months[idx].Revenue.Add(tx.Amount.Round(2))
		case accounting.TransactionTypeExpense:
			out.Months[idx].Expenses = out.Months[idx].Expenses.Add(tx.Amount.Round(2))
		}
	}
	for i := range out.Months {
		out.Months[i].Net = out.Months[i].Revenue.Sub(out.Months[i].Expenses)
	}
	return out
}

// Sheet renders one row per month.
func (h HistoricalPL) Sheet() workbook.Sheet {
	s := workbook.NewSheet(SheetHistoricalPL)
	s.Add(workbook.RowHeader, workbook.Text("Month"), workbook.Text("Revenue"), workbook.Text("Expenses"), workbook.Text("Net Profit"))
	for _, m := range h.Months {
		r := s.Next()
		s.Add(workbook.RowLine,
			workbook.Text(m.Month.Format("January 2006")),
			workbook.Amount(m.Revenue),
			workbook.Amount(m.Expenses),
			workbook.Amount(m.Net).WithFormula(workbook.Ref(2, r)+"-"+workbook.Ref(3, r)),
		)
	}
	return *s
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month())
}
