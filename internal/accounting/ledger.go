package accounting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind discriminates ledger accounts. It replaces "Revenue:"-style name prefixes.
type LedgerKind int

const (
	KindCash LedgerKind = iota
	KindRevenue
	KindExpense
	KindAsset
	KindLiability
	KindEquity
)

var kindPrefixes = map[LedgerKind]string{
	KindRevenue:   "Revenue",
	KindExpense:   "Expense",
	KindAsset:     "Asset",
	KindLiability: "Liability",
	KindEquity:    "Equity",
}

// Prefix returns the display prefix used for the kind ("Revenue", "Expense", ...).
func (k LedgerKind) Prefix() string {
	if p, ok := kindPrefixes[k]; ok {
		return p
	}
	return "Cash"
}

// DebitNormal reports whether balances of the kind are conventionally positive as debits.
func (k LedgerKind) DebitNormal() bool {
	switch k {
	case KindCash, KindAsset, KindExpense:
		return true
	}
	return false
}

// LedgerAccount names one account of the general ledger.
type LedgerAccount struct {
	Kind LedgerKind
	// Name holds the category for categorized kinds and the account name for KindCash.
	Name string
}

// CashLedger returns the ledger account for a cash or bank account name.
func CashLedger(name string) LedgerAccount {
	return LedgerAccount{Kind: KindCash, Name: name}
}

// Categorized returns a ledger account of the given kind for a category.
func Categorized(kind LedgerKind, category string) LedgerAccount {
	return LedgerAccount{Kind: kind, Name: category}
}

// String renders the account the way it appears on reports, e.g. "Expense: rent".
func (a LedgerAccount) String() string {
	if a.Kind == KindCash {
		return a.Name
	}
	return fmt.Sprintf("%s: %s", a.Kind.Prefix(), a.Name)
}

// Side marks which column of the ledger a posting lands in.
type Side int

const (
	Debit Side = iota
	Credit
)

func (s Side) String() string {
	if s == Credit {
		return "credit"
	}
	return "debit"
}

// Posting is one side of a double-entry record.
type Posting struct {
	TransactionID string
	Date          time.Time
	Description   string
	Account       LedgerAccount
	Side          Side
	Amount        decimal.Decimal
}

// Debit returns the debit amount, zero for credit postings.
func (p Posting) Debit() decimal.Decimal {
	if p.Side == Debit {
		return p.Amount
	}
	return decimal.Zero
}

// Credit returns the credit amount, zero for debit postings.
func (p Posting) Credit() decimal.Decimal {
	if p.Side == Credit {
		return p.Amount
	}
	return decimal.Zero
}

// IntegrityError reports a failed balancing check. It wraps ErrUnbalanced for the trial
// balance and ErrStatementUnbalanced for statement checks.
type IntegrityError struct {
	Check string
	Left  decimal.Decimal
	Right decimal.Decimal
	Err   error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s: %s != %s", e.Err, e.Check, e.Left.StringFixed(2), e.Right.StringFixed(2))
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}
