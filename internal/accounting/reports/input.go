package reports

import "github.com/odyssey-erp/finreports/internal/accounting"

// Sheet names in bundle order.
const (
	SheetChartOfAccounts = "Chart of Accounts"
	SheetGeneralEntries  = "General Entries"
	SheetTrialBalance    = "Trial Balance"
	SheetBalanceSheet    = "Balance Sheet"
	SheetCashFlow        = "Cash Flow"
	SheetProfitAndLoss   = "Profit & Loss"
	SheetHistoricalPL    = "Historical P&L"
	SheetRatios          = "Financial Ratios"
	SheetVAT             = "VAT Report"
	SheetCorporateTax    = "Corporate Tax"
	SheetDetailedLedger  = "Detailed Ledger"
	SheetDepreciation    = "Depreciation Schedule"
)

// SheetOrder lists every sheet of a report bundle in presentation order.
var SheetOrder = []string{
	SheetChartOfAccounts,
	SheetGeneralEntries,
	SheetTrialBalance,
	SheetBalanceSheet,
	SheetCashFlow,
	SheetProfitAndLoss,
	SheetHistoricalPL,
	SheetRatios,
	SheetVAT,
	SheetCorporateTax,
	SheetDetailedLedger,
	SheetDepreciation,
}

// Check cell texts.
const (
	CheckBalanced = "Balanced"
	CheckError    = "Error"
)

// Input is the read-only state every deriver works from.
type Input struct {
	Trial   accounting.TrialBalance
	Journal accounting.Journal
	// Transactions are the scoped transactions of the period.
	Transactions []accounting.Transaction
	// History is the unscoped transaction set used for month-by-month history.
	History  []accounting.Transaction
	Accounts []accounting.Account
	Cash     accounting.LedgerAccount
	Period   Period
	Options  Options
}

func checkText(ok bool) string {
	if ok {
		return CheckBalanced
	}
	return CheckError
}
