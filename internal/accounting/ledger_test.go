package accounting

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/finreports/testing"
)

var day = time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

func tx(id string, typ TransactionType, category, amount string) Transaction {
	return Transaction{
		ID:          id,
		Type:        typ,
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		Date:        day,
		Description: "desc " + id,
		AccountID:   "acc-1",
	}
}

func TestStandardRulesTable(t *testing.T) {
	cash := CashLedger("Main Bank")
	cases := []struct {
		name   string
		tx     Transaction
		debit  string
		credit string
	}{
		{"income", tx("1", TransactionTypeIncome, "salary", "1"), "Main Bank", "Revenue: salary"},
		{"expense", tx("2", TransactionTypeExpense, "rent", "1"), "Expense: rent", "Main Bank"},
		{"asset", tx("3", TransactionTypeAsset, "equipment", "1"), "Asset: equipment", "Main Bank"},
		{"liability", tx("4", TransactionTypeLiability, "loan", "1"), "Main Bank", "Liability: loan"},
		{"owner investment", tx("5", TransactionTypeEquity, CategoryOwnerInvestment, "1"), "Main Bank", "Equity: owner-investment"},
		{"owner draw", tx("6", TransactionTypeEquity, CategoryOwnerDraw, "1"), "Equity: owner-draw", "Main Bank"},
		{"other equity", tx("7", TransactionTypeEquity, "grant", "1"), "Main Bank", "Equity: grant"},
		{"uncategorized expense", tx("8", TransactionTypeExpense, "", "1"), "Expense: Uncategorized", "Main Bank"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			legs, err := StandardRules{}.Legs(tc.tx, cash)
			require.NoError(t, err)
			assert.Equal(t, Debit, legs[0].Side)
			assert.Equal(t, tc.debit, legs[0].Account.String())
			assert.Equal(t, Credit, legs[1].Side)
			assert.Equal(t, tc.credit, legs[1].Account.String())
		})
	}
}

func TestStandardRulesUnknownType(t *testing.T) {
	_, err := StandardRules{}.Legs(tx("x", TransactionType("TRANSFER"), "misc", "10"), CashLedger("Bank"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestBuildPostingsDoubleEntry(t *testing.T) {
	txs := []Transaction{
		tx("1", TransactionTypeIncome, "salary", "5321.456"),
		tx("2", TransactionTypeExpense, "rent", "1000.10"),
		tx("3", TransactionTypeAsset, "equipment", "2500"),
		tx("4", TransactionTypeLiability, "loan", "4000"),
		tx("5", TransactionTypeEquity, CategoryOwnerDraw, "200.005"),
	}
	journal := BuildPostings(txs, CashLedger("Bank"), nil)
	require.Len(t, journal.Postings, 10)
	assert.Empty(t, journal.Skipped)
	assert.True(t, journal.TotalDebit().Equal(journal.TotalCredit()))

	for i := 0; i < len(journal.Postings); i += 2 {
		first, second := journal.Postings[i], journal.Postings[i+1]
		assert.Equal(t, first.TransactionID, second.TransactionID)
		assert.True(t, first.Amount.Equal(second.Amount))
		assert.Equal(t, Debit, first.Side)
		assert.Equal(t, Credit, second.Side)
	}
	assert.Equal(t, "5321.46", journal.Postings[0].Amount.StringFixed(2))
	assert.Equal(t, "200.01", journal.Postings[8].Amount.StringFixed(2))
}

func TestBuildPostingsSkipsUnknownTypes(t *testing.T) {
	txs := []Transaction{
		tx("1", TransactionTypeIncome, "salary", "10"),
		tx("2", TransactionType("TRANSFER"), "misc", "10"),
	}
	journal := BuildPostings(txs, CashLedger("Bank"), StandardRules{})
	require.Len(t, journal.Postings, 2)
	require.Len(t, journal.Skipped, 1)
	assert.Equal(t, "2", journal.Skipped[0].ID)
	assert.Equal(t, TransactionType("TRANSFER"), journal.Skipped[0].Type)
}

func TestBuildPostingsDefaultsDescription(t *testing.T) {
	in := tx("1", TransactionTypeExpense, "food", "3")
	in.Description = "   "
	journal := BuildPostings([]Transaction{in}, CashLedger("Bank"), nil)
	assert.Equal(t, DefaultDescription, journal.Postings[0].Description)
	assert.Equal(t, DefaultDescription, journal.Postings[1].Description)
}

func TestBuildTrialBalanceScenario(t *testing.T) {
	txs := []Transaction{
		tx("1", TransactionTypeIncome, "salary", "8000"),
		tx("2", TransactionTypeExpense, "rent", "20000"),
	}
	journal := BuildPostings(txs, CashLedger("Bank"), nil)
	tb, err := BuildTrialBalance(journal.Postings)
	require.NoError(t, err)

	names := make([]string, 0, len(tb.Accounts))
	for _, acc := range tb.Accounts {
		names = append(names, acc.Name())
	}
	assert.Equal(t, []string{"Bank", "Expense: rent", "Revenue: salary"}, names)

	revenue := tb.Lookup(Categorized(KindRevenue, "salary"))
	assert.Equal(t, "8000.00", revenue.Credit.StringFixed(2))
	rent := tb.Lookup(Categorized(KindExpense, "rent"))
	assert.Equal(t, "20000.00", rent.Debit.StringFixed(2))
	cash := tb.Lookup(CashLedger("Bank"))
	assert.Equal(t, "-12000.00", cash.Net().StringFixed(2))
	assert.True(t, tb.Balanced())
	assert.Equal(t, "-8000.00", tb.SumKind(KindRevenue).StringFixed(2))
}

func TestBuildTrialBalanceDetectsImbalance(t *testing.T) {
	broken := RulesFunc(func(tx Transaction, cash LedgerAccount) ([2]Leg, error) {
		return [2]Leg{
			{Account: Categorized(KindExpense, tx.CategoryOrDefault()), Side: Debit},
			{Account: cash, Side: Debit},
		}, nil
	})
	journal := BuildPostings([]Transaction{tx("1", TransactionTypeExpense, "rent", "100")}, CashLedger("Bank"), broken)
	tb, err := BuildTrialBalance(journal.Postings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnbalanced))
	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Equal(t, "200.00", integrity.Left.StringFixed(2))
	assert.Equal(t, "0.00", integrity.Right.StringFixed(2))
	assert.Len(t, tb.Accounts, 2)
}

func TestBuildTrialBalanceEmpty(t *testing.T) {
	tb, err := BuildTrialBalance(nil)
	require.NoError(t, err)
	assert.Empty(t, tb.Accounts)
	assert.True(t, tb.TotalDebit.IsZero())
}

func TestCashAccountResolution(t *testing.T) {
	assert.Equal(t, "Bank/cash", CashAccount(nil).String())
	accounts := []Account{
		{ID: "1", Name: "Savings", Type: "SAVINGS"},
		{ID: "2", Name: "Petty Cash", Type: "cash"},
		{ID: "3", Name: "Current", Type: "BANK"},
	}
	assert.Equal(t, "Petty Cash", CashAccount(accounts).String())
}

func TestSelectAccount(t *testing.T) {
	accounts := []Account{{ID: "a"}, {ID: "b", IsDefault: true}}
	acc, ok := SelectAccount(accounts, "")
	require.True(t, ok)
	assert.Equal(t, "b", acc.ID)
	acc, ok = SelectAccount(accounts, "a")
	require.True(t, ok)
	assert.Equal(t, "a", acc.ID)
	_, ok = SelectAccount(accounts, "zzz")
	assert.False(t, ok)
}

func TestParseTransactionType(t *testing.T) {
	assert.Equal(t, TransactionTypeAsset, ParseTransactionType("asset"))
	assert.Equal(t, TransactionTypeLiability, ParseTransactionType("LIABILITIES"))
	assert.Equal(t, TransactionType("TRANSFER"), ParseTransactionType(" transfer "))
	assert.False(t, ParseTransactionType("transfer").Known())
}
