package reports

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// AssembleInput is everything a report run needs.
type AssembleInput struct {
	// Transactions is the unscoped set; it is scoped to the selected account and period.
	Transactions []accounting.Transaction
	Accounts     []accounting.Account
	// AccountID selects the reported account. Blank picks the default account, then the first.
	AccountID string
	Period    Period
	Options   Options
	// Rules overrides the posting rules; nil means accounting.StandardRules.
	Rules accounting.Rules
}

// IntegrityIssue is a failed terminal check of one sheet.
type IntegrityIssue struct {
	Sheet string
	Err   *accounting.IntegrityError
}

func (i IntegrityIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Sheet, i.Err.Error())
}

// Result is the output of one report run.
type Result struct {
	Bundle  workbook.Bundle
	Account accounting.Account
	Cash    accounting.LedgerAccount
	Trial   accounting.TrialBalance
	Skipped []accounting.SkippedTransaction
	Issues  []IntegrityIssue
}

type deriver func(Input) (workbook.Sheet, error)

func pure(fn func(Input) workbook.Sheet) deriver {
	return func(in Input) (workbook.Sheet, error) { return fn(in), nil }
}

var derivers = map[string]deriver{
	SheetChartOfAccounts: ChartOfAccountsSheet,
	SheetGeneralEntries:  pure(GeneralEntriesSheet),
	SheetTrialBalance:    pure(TrialBalanceSheet),
	SheetBalanceSheet:    pure(func(in Input) workbook.Sheet { return BuildBalanceSheet(in).Sheet() }),
	SheetCashFlow:        pure(func(in Input) workbook.Sheet { return BuildCashFlow(in).Sheet() }),
	SheetProfitAndLoss:   pure(func(in Input) workbook.Sheet { return BuildProfitAndLoss(in).Sheet() }),
	SheetHistoricalPL:    pure(func(in Input) workbook.Sheet { return BuildHistoricalPL(in).Sheet() }),
	SheetRatios:          pure(func(in Input) workbook.Sheet { return BuildRatios(in).Sheet() }),
	SheetVAT:             pure(func(in Input) workbook.Sheet { return BuildVATReport(in).Sheet() }),
	SheetCorporateTax:    pure(func(in Input) workbook.Sheet { return BuildCorporateTax(in).Sheet() }),
	SheetDetailedLedger:  pure(DetailedLedgerSheet),
	SheetDepreciation:    pure(func(in Input) workbook.Sheet { return BuildDepreciationSchedule(in).Sheet() }),
}

// Prepare scopes the transactions, builds the journal and the trial balance. The returned
// error is non-nil only for an unbalanced trial balance, in which case Input is still usable.
func Prepare(in AssembleInput) (Input, accounting.Account, error) {
	var selected accounting.Account
	accountID := in.AccountID
	if len(in.Accounts) > 0 {
		acc, ok := accounting.SelectAccount(in.Accounts, in.AccountID)
		if !ok {
			return Input{}, accounting.Account{}, fmt.Errorf("%w: %s", accounting.ErrAccountNotFound, in.AccountID)
		}
		selected = acc
		accountID = acc.ID
	}

	scoped := in.Transactions
	if accountID != "" {
		scoped = accounting.ForAccount(in.Transactions, accountID)
	}
	period := accounting.Between(scoped, in.Period.Start, in.Period.End)
	cash := accounting.CashAccount(in.Accounts)
	journal := accounting.BuildPostings(period, cash, in.Rules)
	tb, err := accounting.BuildTrialBalance(journal.Postings)

	return Input{
		Trial:        tb,
		Journal:      journal,
		Transactions: period,
		History:      in.Transactions,
		Accounts:     in.Accounts,
		Cash:         cash,
		Period:       in.Period,
		Options:      in.Options,
	}, selected, err
}

// Assemble derives every sheet of the report. When a terminal check fails the Result is
// still fully populated and the returned error wraps the failing *accounting.IntegrityError
// values.
func Assemble(in AssembleInput) (Result, error) {
	if err := in.Options.Validate(); err != nil {
		return Result{}, err
	}
	input, account, tbErr := Prepare(in)
	if tbErr != nil && !errors.Is(tbErr, accounting.ErrUnbalanced) {
		return Result{}, tbErr
	}

	sheets := make([]workbook.Sheet, len(SheetOrder))
	var g errgroup.Group
	for i, name := range SheetOrder {
		derive := derivers[name]
		g.Go(func() error {
			sheet, err := derive(input)
			if err != nil {
				return fmt.Errorf("reports: derive %s: %w", name, err)
			}
			sheets[i] = sheet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{
		Bundle:  workbook.Bundle{Sheets: sheets},
		Account: account,
		Cash:    input.Cash,
		Trial:   input.Trial,
		Skipped: input.Journal.Skipped,
	}
	result.Issues = collectIssues(input, tbErr)
	if len(result.Issues) == 0 {
		return result, nil
	}
	errs := make([]error, 0, len(result.Issues))
	for _, issue := range result.Issues {
		errs = append(errs, issue.Err)
	}
	return result, errors.Join(errs...)
}

func collectIssues(in Input, tbErr error) []IntegrityIssue {
	var issues []IntegrityIssue
	var integrity *accounting.IntegrityError
	if errors.As(tbErr, &integrity) {
		issues = append(issues, IntegrityIssue{Sheet: SheetTrialBalance, Err: integrity})
	}
	if err := BuildBalanceSheet(in).Check(); errors.As(err, &integrity) {
		issues = append(issues, IntegrityIssue{Sheet: SheetBalanceSheet, Err: integrity})
	}
	if err := BuildCashFlow(in).Check(); errors.As(err, &integrity) {
		issues = append(issues, IntegrityIssue{Sheet: SheetCashFlow, Err: integrity})
	}
	return issues
}
