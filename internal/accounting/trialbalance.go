package accounting

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AccountBalance aggregates the postings of one ledger account.
type AccountBalance struct {
	Account LedgerAccount
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// Net returns debit minus credit.
func (a AccountBalance) Net() decimal.Decimal {
	return a.Debit.Sub(a.Credit)
}

// Name is the rendered ledger account name.
func (a AccountBalance) Name() string {
	return a.Account.String()
}

// TrialBalance is the canonical per-account balance list every statement reads from.
type TrialBalance struct {
	Accounts    []AccountBalance
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Balanced reports whether total debits equal total credits.
func (tb TrialBalance) Balanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// Lookup returns the balance of one account, zero when it has no postings.
func (tb TrialBalance) Lookup(account LedgerAccount) AccountBalance {
	for _, acc := range tb.Accounts {
		if acc.Account == account {
			return acc
		}
	}
	return AccountBalance{Account: account}
}

// OfKind returns the accounts of a kind in name order.
func (tb TrialBalance) OfKind(kind LedgerKind) []AccountBalance {
	var out []AccountBalance
	for _, acc := range tb.Accounts {
		if acc.Account.Kind == kind {
			out = append(out, acc)
		}
	}
	return out
}

// SumKind sums the net balance of every account of a kind.
func (tb TrialBalance) SumKind(kind LedgerKind) decimal.Decimal {
	total := decimal.Zero
	for _, acc := range tb.Accounts {
		if acc.Account.Kind == kind {
			total = total.Add(acc.Net())
		}
	}
	return total
}

// BuildTrialBalance groups postings by ledger account and sorts accounts by name.
// When debits and credits disagree the aggregated balance is still returned together
// with an *IntegrityError.
func BuildTrialBalance(postings []Posting) (TrialBalance, error) {
	groups := make(map[LedgerAccount]*AccountBalance)
	keys := make([]LedgerAccount, 0)
	for _, p := range postings {
		acc, ok := groups[p.Account]
		if !ok {
			acc = &AccountBalance{Account: p.Account, Debit: decimal.Zero, Credit: decimal.Zero}
			groups[p.Account] = acc
			keys = append(keys, p.Account)
		}
		acc.Debit = acc.Debit.Add(p.Debit())
		acc.Credit = acc.Credit.Add(p.Credit())
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	result := TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, key := range keys {
		acc := groups[key]
		result.Accounts = append(result.Accounts, *acc)
		result.TotalDebit = result.TotalDebit.Add(acc.Debit)
		result.TotalCredit = result.TotalCredit.Add(acc.Credit)
	}
	if !result.Balanced() {
		return result, &IntegrityError{
			Check: "trial balance",
			Left:  result.TotalDebit,
			Right: result.TotalCredit,
			Err:   ErrUnbalanced,
		}
	}
	return result, nil
}
