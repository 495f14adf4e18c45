package reports

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// DepreciationRow is the straight-line schedule of one asset account for the first month.
type DepreciationRow struct {
	Asset        accounting.LedgerAccount
	Opening      decimal.Decimal
	LifeMonths   int
	Monthly      decimal.Decimal
	Accumulated  decimal.Decimal
	NetBookValue decimal.Decimal
}

// DepreciationSchedule lists every asset account of the trial balance.
type DepreciationSchedule struct {
	Rows  []DepreciationRow
	Total decimal.Decimal
}

// BuildDepreciationSchedule derives straight-line depreciation from asset balances.
func BuildDepreciationSchedule(in Input) DepreciationSchedule {
	months := in.Options.DepreciationMonths
	schedule := DepreciationSchedule{Total: decimal.Zero}
	for _, acc := range in.Trial.OfKind(accounting.KindAsset) {
		opening := acc.Net()
		monthly := monthlyDepreciation(opening, months)
		schedule.Rows = append(schedule.Rows, DepreciationRow{
			Asset:        acc.Account,
			Opening:      opening,
			LifeMonths:   months,
			Monthly:      monthly,
			Accumulated:  monthly,
			NetBookValue: opening.Sub(monthly),
		})
		schedule.Total = schedule.Total.Add(monthly)
	}
	return schedule
}

// Sheet renders the schedule. Column D carries the monthly charge read by the profit & loss.
func (d DepreciationSchedule) Sheet() workbook.Sheet {
	s := workbook.NewSheet(SheetDepreciation)
	s.Add(workbook.RowHeader,
		workbook.Text("Asset Name"), workbook.Text("Opening Value"), workbook.Text("Useful Life (Months)"),
		workbook.Text("Monthly Depreciation"), workbook.Text("Accumulated Depreciation"), workbook.Text("Net Book Value"))
	for _, row := range d.Rows {
		r := s.Next()
		s.Add(workbook.RowLine,
			workbook.Text(row.Asset.String()),
			workbook.Amount(row.Opening).WithFormula(tbLookup(workbook.Ref(1, r))),
			workbook.Int(row.LifeMonths),
			workbook.Amount(row.Monthly).WithFormula("ROUND("+workbook.Ref(2, r)+"/"+workbook.Ref(3, r)+", 2)"),
			workbook.Amount(row.Accumulated).WithFormula(workbook.Ref(4, r)),
			workbook.Amount(row.NetBookValue).WithFormula(workbook.Ref(2, r)+"-"+workbook.Ref(5, r)),
		)
	}
	return *s
}
