package reports

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// Fixed equity labels.
const (
	LabelOwnerInvestment = "Owner-Investment"
	LabelOwnerDraw       = "Less: Owner-Draw"
)

// StatementLine is one labelled amount of a statement, tied to its ledger account.
type StatementLine struct {
	Label   string
	Account accounting.LedgerAccount
	Amount  decimal.Decimal
}

// BalanceSheet summarises assets, liabilities and equity at period end.
type BalanceSheet struct {
	AsOf                      string
	Cash                      StatementLine
	Assets                    []StatementLine
	TotalAssets               decimal.Decimal
	Liabilities               []StatementLine
	TotalLiabilities          decimal.Decimal
	OwnerInvestment           decimal.Decimal
	OwnerDraw                 decimal.Decimal
	OtherEquity               []StatementLine
	NetIncome                 decimal.Decimal
	TotalEquity               decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
	Balanced                  bool
}

// BuildBalanceSheet derives the balance sheet from the trial balance.
func BuildBalanceSheet(in Input) BalanceSheet {
	fig := Summarize(in.Trial, in.Cash, in.Options)
	bs := BalanceSheet{
		AsOf:             in.Period.AsOf(),
		Cash:             StatementLine{Label: in.Cash.String(), Account: in.Cash, Amount: fig.Cash},
		TotalAssets:      fig.TotalAssets,
		TotalLiabilities: fig.TotalLiabilities,
		OwnerInvestment:  fig.OwnerInvestment,
		OwnerDraw:        fig.OwnerDraw,
		NetIncome:        fig.NetIncome,
		TotalEquity:      fig.TotalEquity,
	}
	for _, acc := range in.Trial.OfKind(accounting.KindAsset) {
		bs.Assets = append(bs.Assets, StatementLine{Label: acc.Name(), Account: acc.Account, Amount: acc.Net()})
	}
	for _, acc := range in.Trial.OfKind(accounting.KindLiability) {
		bs.Liabilities = append(bs.Liabilities, StatementLine{Label: acc.Name(), Account: acc.Account, Amount: acc.Net().Neg()})
	}
	for _, acc := range in.Trial.OfKind(accounting.KindEquity) {
		switch acc.Account.Name {
		case accounting.CategoryOwnerInvestment, accounting.CategoryOwnerDraw:
			continue
		}
		bs.OtherEquity = append(bs.OtherEquity, StatementLine{
			Label:   titleCase(acc.Account.Name),
			Account: acc.Account,
			Amount:  acc.Net().Neg(),
		})
	}
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.Balanced = bs.TotalAssets.Equal(bs.TotalLiabilitiesAndEquity)
	return bs
}

// Sheet renders the balance sheet with trial balance provenance.
func (bs BalanceSheet) Sheet() workbook.Sheet {
	s := workbook.NewSheet(SheetBalanceSheet)
	s.Add(workbook.RowTitle, workbook.Text("Balance Sheet"))
	s.Add(workbook.RowTitle, workbook.Text("As of "+bs.AsOf))
	s.Blank()

	s.Add(workbook.RowHeader, workbook.Text("Assets"))
	firstAsset := s.Add(workbook.RowLine,
		workbook.Text(bs.Cash.Label),
		workbook.Amount(bs.Cash.Amount).WithFormula(tbSum(literal(bs.Cash.Account.String()))),
	)
	for _, line := range bs.Assets {
		row := s.Next()
		s.Add(workbook.RowLine, workbook.Text(line.Label), workbook.Amount(line.Amount).WithFormula(tbLookup(workbook.Ref(1, row))))
	}
	totalAssets := s.Add(workbook.RowSubtotal,
		workbook.Text("Total Assets"),
		workbook.Amount(bs.TotalAssets).WithFormula(sumRange(2, firstAsset, s.Next()-1)),
	)
	s.Blank()

	s.Add(workbook.RowHeader, workbook.Text("Liabilities"))
	firstLiability := s.Next()
	for _, line := range bs.Liabilities {
		row := s.Next()
		s.Add(workbook.RowLine, workbook.Text(line.Label), workbook.Amount(line.Amount).WithFormula("-"+tbLookup(workbook.Ref(1, row))))
	}
	totalLiabilities := s.Add(workbook.RowSubtotal,
		workbook.Text("Total Liabilities"),
		workbook.Amount(bs.TotalLiabilities).WithFormula(sumRange(2, firstLiability, s.Next()-1)),
	)
	s.Blank()

	s.Add(workbook.RowHeader, workbook.Text("Equity"))
	investment := accounting.Categorized(accounting.KindEquity, accounting.CategoryOwnerInvestment)
	draw := accounting.Categorized(accounting.KindEquity, accounting.CategoryOwnerDraw)
	investmentRow := s.Add(workbook.RowLine,
		workbook.Text(LabelOwnerInvestment),
		workbook.Amount(bs.OwnerInvestment).WithFormula("-"+tbSum(literal(investment.String()))),
	)
	drawRow := s.Add(workbook.RowLine,
		workbook.Text(LabelOwnerDraw),
		workbook.Amount(bs.OwnerDraw).WithFormula(tbSum(literal(draw.String()))),
	)
	terms := []string{refB(investmentRow), "-" + refB(drawRow)}
	for _, line := range bs.OtherEquity {
		row := s.Add(workbook.RowLine,
			workbook.Text(line.Label),
			workbook.Amount(line.Amount).WithFormula("-"+tbSum(literal(line.Account.String()))),
		)
		terms = append(terms, "+"+refB(row))
	}
	netIncome := s.Add(workbook.RowLine,
		workbook.Text("Net Income"),
		workbook.Amount(bs.NetIncome).WithFormula("-("+tbSum(kindPattern(accounting.KindRevenue.Prefix()))+"+"+tbSum(kindPattern(accounting.KindExpense.Prefix()))+")"),
	)
	terms = append(terms, "+"+refB(netIncome))
	totalEquity := s.Add(workbook.RowSubtotal,
		workbook.Text("Total Equity"),
		workbook.Amount(bs.TotalEquity).WithFormula(strings.Join(terms, "")),
	)
	s.Blank()

	total := s.Add(workbook.RowSubtotal,
		workbook.Text("Total Liabilities & Equity"),
		workbook.Amount(bs.TotalLiabilitiesAndEquity).WithFormula(refB(totalLiabilities)+"+"+refB(totalEquity)),
	)
	s.Add(workbook.RowCheck,
		workbook.Text("Check"),
		workbook.Text(checkText(bs.Balanced)).WithFormula(checkFormula(refB(totalAssets), refB(total))),
	)
	return *s
}

// Check returns an integrity error when total assets differ from liabilities plus equity.
func (bs BalanceSheet) Check() error {
	if bs.Balanced {
		return nil
	}
	return &accounting.IntegrityError{
		Check: "balance sheet",
		Left:  bs.TotalAssets,
		Right: bs.TotalLiabilitiesAndEquity,
		Err:   accounting.ErrStatementUnbalanced,
	}
}
