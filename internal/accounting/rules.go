package accounting

import "fmt"

// Leg is one half of a posting rule result.
type Leg struct {
	Account LedgerAccount
	Side    Side
}

// Rules maps a transaction onto the two ledger legs it posts to.
type Rules interface {
	Legs(tx Transaction, cash LedgerAccount) ([2]Leg, error)
}

// RulesFunc adapts a function to the Rules interface.
type RulesFunc func(tx Transaction, cash LedgerAccount) ([2]Leg, error)

// Legs implements Rules.
func (f RulesFunc) Legs(tx Transaction, cash LedgerAccount) ([2]Leg, error) {
	return f(tx, cash)
}

// StandardRules is the posting table: increases to assets and expenses are debits,
// increases to liabilities, equity and income are credits. Cash is always the counter leg.
type StandardRules struct{}

// Legs implements Rules.
func (StandardRules) Legs(tx Transaction, cash LedgerAccount) ([2]Leg, error) {
	category := tx.CategoryOrDefault()
	switch tx.Type {
	case TransactionTypeIncome:
		return pair(cash, Categorized(KindRevenue, category)), nil
	case TransactionTypeExpense:
		return pair(Categorized(KindExpense, category), cash), nil
	case TransactionTypeAsset:
		return pair(Categorized(KindAsset, category), cash), nil
	case TransactionTypeLiability:
		return pair(cash, Categorized(KindLiability, category)), nil
	case TransactionTypeEquity:
		if category == CategoryOwnerDraw {
			return pair(Categorized(KindEquity, category), cash), nil
		}
		return pair(cash, Categorized(KindEquity, category)), nil
	default:
		return [2]Leg{}, fmt.Errorf("%w: %q", ErrUnknownType, string(tx.Type))
	}
}

func pair(debit, credit LedgerAccount) [2]Leg {
	return [2]Leg{
		{Account: debit, Side: Debit},
		{Account: credit, Side: Credit},
	}
}
