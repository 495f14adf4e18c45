package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// CashFlow is the direct-method cash flow statement of the period.
type CashFlow struct {
	Period           string
	CashReceived     decimal.Decimal
	CashPaid         decimal.Decimal
	NetOperating     decimal.Decimal
	AssetPurchases   decimal.Decimal
	NetInvesting     decimal.Decimal
	Proceeds         decimal.Decimal
	Contributions    decimal.Decimal
	Draws            decimal.Decimal
	NetFinancing     decimal.Decimal
	NetIncrease      decimal.Decimal
	BeginningCash    decimal.Decimal
	EndingCash       decimal.Decimal
	TrialBalanceCash decimal.Decimal
	CashAccount      string
	Balanced         bool
}

// BuildCashFlow derives the cash flow from the trial balance and the period's asset purchases.
func BuildCashFlow(in Input) CashFlow {
	tb := in.Trial
	draw := tb.Lookup(accounting.Categorized(accounting.KindEquity, accounting.CategoryOwnerDraw)).Net()

	cf := CashFlow{
		Period:        in.Period.Label(),
		CashReceived:  tb.SumKind(accounting.KindRevenue).Abs(),
		CashPaid:      tb.SumKind(accounting.KindExpense),
		Proceeds:      tb.SumKind(accounting.KindLiability).Neg(),
		Contributions: tb.SumKind(accounting.KindEquity).Sub(draw).Neg(),
		Draws:         draw,
		BeginningCash: decimal.Zero,
		CashAccount:   in.Cash.String(),
	}
	cf.AssetPurchases = decimal.Zero
	for _, tx := range in.Transactions {
		if tx.Type == accounting.TransactionTypeAsset {
			cf.AssetPurchases = cf.AssetPurchases.Add(tx.Amount.Round(2))
		}
	}
	cf.NetOperating = cf.CashReceived.Sub(cf.CashPaid)
	cf.NetInvesting = cf.AssetPurchases.Neg()
	cf.NetFinancing = cf.Proceeds.Add(cf.Contributions).Sub(cf.Draws)
	cf.NetIncrease = cf.NetOperating.Add(cf.NetInvesting).Add(cf.NetFinancing)
	cf.EndingCash = cf.BeginningCash.Add(cf.NetIncrease)
	cf.TrialBalanceCash = tb.Lookup(in.Cash).Net()
	cf.Balanced = cf.EndingCash.Equal(cf.TrialBalanceCash)
	return cf
}

// Sheet renders the cash flow statement.
func (cf CashFlow) Sheet() workbook.Sheet {
	revenue := tbSum(kindPattern(accounting.KindRevenue.Prefix()))
	expense := tbSum(kindPattern(accounting.KindExpense.Prefix()))
	drawAccount := literal(accounting.Categorized(accounting.KindEquity, accounting.CategoryOwnerDraw).String())

	s := workbook.NewSheet(SheetCashFlow)
	s.Add(workbook.RowTitle, workbook.Text("Cash Flow Statement"))
	s.Add(workbook.RowTitle, workbook.Text("For the Month Ending "+cf.Period))
	s.Blank()

	s.Add(workbook.RowHeader, workbook.Text("Cash Flows from Operating Activities"))
	received := s.Add(workbook.RowLine,
		workbook.Text("Cash Received from Income"),
		workbook.Amount(cf.CashReceived).WithFormula("ABS("+revenue+")"),
	)
	paid := s.Add(workbook.RowLine,
		workbook.Text("Cash Paid for Expenses"),
		workbook.Amount(cf.CashPaid).WithFormula(expense),
	)
	operating := s.Add(workbook.RowSubtotal,
		workbook.Text("Net Cash from Operating Activities"),
		workbook.Amount(cf.NetOperating).WithFormula(refB(received)+"-"+refB(paid)),
	)
	s.Blank()

	s.Add(workbook.RowHeader, workbook.Text("Cash Flows from Investing Activities"))
	purchases := s.Add(workbook.RowLine,
		workbook.Text("Purchase of Assets"),
		workbook.Amount(cf.AssetPurchases).WithFormula(fmt.Sprintf("SUMIF(%s, %s, %s)",
			workbook.External(SheetDetailedLedger, "E:E"), quote(string(accounting.TransactionTypeAsset)), workbook.External(SheetDetailedLedger, "F:F"))),
	)
	investing := s.Add(workbook.RowSubtotal,
		workbook.Text("Net Cash from Investing Activities"),
		workbook.Amount(cf.NetInvesting).WithFormula("-"+refB(purchases)),
	)
	s.Blank()

	s.Add(workbook.RowHeader, workbook.Text("Cash Flows from Financing Activities"))
	proceeds := s.Add(workbook.RowLine,
		workbook.Text("Proceeds from Liabilities"),
		workbook.Amount(cf.Proceeds).WithFormula("-"+tbSum(kindPattern(accounting.KindLiability.Prefix()))),
	)
	contributions := s.Add(workbook.RowLine,
		workbook.Text("Owner Contributions"),
		workbook.Amount(cf.Contributions).WithFormula("-("+tbSum(kindPattern(accounting.KindEquity.Prefix()))+"-"+tbSum(drawAccount)+")"),
	)
	draws := s.Add(workbook.RowLine,
		workbook.Text("Owner Draws"),
		workbook.Amount(cf.Draws).WithFormula(tbSum(drawAccount)),
	)
	financing := s.Add(workbook.RowSubtotal,
		workbook.Text("Net Cash from Financing Activities"),
		workbook.Amount(cf.NetFinancing).WithFormula(refB(proceeds)+"+"+refB(contributions)+"-"+refB(draws)),
	)
	s.Blank()

	increase := s.Add(workbook.RowSubtotal,
		workbook.Text("Net Increase in Cash"),
		workbook.Amount(cf.NetIncrease).WithFormula(refB(operating)+"+"+refB(investing)+"+"+refB(financing)),
	)
	beginning := s.Add(workbook.RowLine, workbook.Text("Cash at Beginning of Period"), workbook.Amount(cf.BeginningCash))
	ending := s.Add(workbook.RowSubtotal,
		workbook.Text("Cash at End of Period"),
		workbook.Amount(cf.EndingCash).WithFormula(refB(beginning)+"+"+refB(increase)),
	)
	ledger := s.Add(workbook.RowLine,
		workbook.Text("Cash at End of Period (Trial Balance)"),
		workbook.Amount(cf.TrialBalanceCash).WithFormula(tbSum(literal(cf.CashAccount))),
	)
	s.Add(workbook.RowCheck,
		workbook.Text("Check"),
		workbook.Text(checkText(cf.Balanced)).WithFormula(checkFormula(refB(ending), refB(ledger))),
	)
	return *s
}

// Check returns an integrity error when ending cash disagrees with the trial balance.
func (cf CashFlow) Check() error {
	if cf.Balanced {
		return nil
	}
	return &accounting.IntegrityError{
		Check: "cash flow",
		Left:  cf.EndingCash,
		Right: cf.TrialBalanceCash,
		Err:   accounting.ErrStatementUnbalanced,
	}
}
