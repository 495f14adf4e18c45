package reports

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/finreports/internal/accounting"
)

// ExpenseLine is one modeled operating expense line of the profit & loss.
type ExpenseLine struct {
	Category string
	Label    string
	Amount   decimal.Decimal
}

// Figures holds the statement totals shared by the balance sheet, profit & loss and
// ratio derivers. Every figure is a pure function of the trial balance.
type Figures struct {
	Cash             decimal.Decimal
	CurrentAssets    decimal.Decimal
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal

	OwnerInvestment decimal.Decimal
	OwnerDraw       decimal.Decimal
	OtherEquity     decimal.Decimal
	NetIncome       decimal.Decimal
	TotalEquity     decimal.Decimal

	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	CostOfSales   decimal.Decimal
	GrossProfit   decimal.Decimal

	Modeled           []ExpenseLine
	OtherOpex         decimal.Decimal
	Depreciation      decimal.Decimal
	TotalOpex         decimal.Decimal
	EBITDA            decimal.Decimal
	EBIT              decimal.Decimal
	IncomeTax         decimal.Decimal
	NetProfitAfterTax decimal.Decimal
}

// Summarize derives the shared statement figures from a trial balance.
func Summarize(tb accounting.TrialBalance, cash accounting.LedgerAccount, opts Options) Figures {
	var f Figures
	f.Cash = tb.Lookup(cash).Net()
	f.CurrentAssets = f.Cash
	for _, category := range opts.CurrentAssetCategories {
		f.CurrentAssets = f.CurrentAssets.Add(tb.Lookup(accounting.Categorized(accounting.KindAsset, category)).Net())
	}
	f.TotalAssets = f.Cash.Add(tb.SumKind(accounting.KindAsset))
	f.TotalLiabilities = tb.SumKind(accounting.KindLiability).Neg()

	investment := accounting.Categorized(accounting.KindEquity, accounting.CategoryOwnerInvestment)
	draw := accounting.Categorized(accounting.KindEquity, accounting.CategoryOwnerDraw)
	f.OwnerInvestment = tb.Lookup(investment).Net().Neg()
	f.OwnerDraw = tb.Lookup(draw).Net()
	f.OtherEquity = decimal.Zero
	for _, acc := range tb.OfKind(accounting.KindEquity) {
		if acc.Account == investment || acc.Account == draw {
			continue
		}
		f.OtherEquity = f.OtherEquity.Sub(acc.Net())
	}

	revenue := tb.SumKind(accounting.KindRevenue)
	expenses := tb.SumKind(accounting.KindExpense)
	f.NetIncome = revenue.Add(expenses).Neg()
	f.TotalEquity = f.OwnerInvestment.Sub(f.OwnerDraw).Add(f.OtherEquity).Add(f.NetIncome)

	f.TotalRevenue = revenue.Neg()
	f.TotalExpenses = expenses
	f.CostOfSales = decimal.Zero
	f.GrossProfit = f.TotalRevenue.Sub(f.CostOfSales)

	modeled := decimal.Zero
	for _, category := range modeledCategories(opts) {
		amount := tb.Lookup(accounting.Categorized(accounting.KindExpense, category)).Net()
		f.Modeled = append(f.Modeled, ExpenseLine{Category: category, Label: titleCase(category), Amount: amount})
		modeled = modeled.Add(amount)
	}
	f.Depreciation = depreciationTotal(tb, opts.DepreciationMonths)

	if opts.LegacyOperatingExpenses {
		f.OtherOpex = decimal.Zero
		f.TotalOpex = modeled.Add(f.Depreciation)
		first := decimal.Zero
		if len(f.Modeled) > 0 {
			first = f.Modeled[0].Amount
		}
		f.EBITDA = f.GrossProfit.Sub(first)
	} else {
		f.OtherOpex = expenses.Sub(modeled)
		f.TotalOpex = modeled.Add(f.OtherOpex).Add(f.Depreciation)
		f.EBITDA = f.GrossProfit.Sub(f.TotalOpex.Sub(f.Depreciation))
	}
	f.EBIT = f.EBITDA.Sub(f.Depreciation)
	f.IncomeTax = incomeTax(f.EBIT, opts.CorporateTaxRate)
	f.NetProfitAfterTax = f.EBIT.Sub(f.IncomeTax)
	return f
}

func incomeTax(profit, rate decimal.Decimal) decimal.Decimal {
	if !profit.IsPositive() {
		return decimal.Zero
	}
	return profit.Mul(rate).Round(2)
}

func modeledCategories(opts Options) []string {
	seen := make(map[string]struct{}, len(opts.OperatingExpenseLines))
	out := make([]string, 0, len(opts.OperatingExpenseLines))
	for _, line := range opts.OperatingExpenseLines {
		line = strings.TrimSpace(line)
		if _, ok := seen[line]; ok || line == "" {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

// titleCase renders a category as a statement label, e.g. "owner-draw" -> "Owner-Draw".
func titleCase(category string) string {
	return cases.Title(language.English).String(category)
}

func monthlyDepreciation(opening decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	return opening.Div(decimal.NewFromInt(int64(months))).Round(2)
}

func depreciationTotal(tb accounting.TrialBalance, months int) decimal.Decimal {
	total := decimal.Zero
	for _, acc := range tb.OfKind(accounting.KindAsset) {
		total = total.Add(monthlyDepreciation(acc.Net(), months))
	}
	return total
}

// ratio divides with four-decimal rounding and reports false on a zero denominator.
func ratio(num, den decimal.Decimal) (decimal.Decimal, bool) {
	if den.IsZero() {
		return decimal.Zero, false
	}
	return num.DivRound(den, 4), true
}
