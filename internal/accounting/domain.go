package accounting

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType enumerates the single-entry transaction kinds accepted by the ledger.
type TransactionType string

const (
	TransactionTypeIncome    TransactionType = "INCOME"
	TransactionTypeExpense   TransactionType = "EXPENSE"
	TransactionTypeEquity    TransactionType = "EQUITY"
	TransactionTypeAsset     TransactionType = "ASSETS"
	TransactionTypeLiability TransactionType = "LIABILITIES"
)

// ParseTransactionType normalises a raw type. Unknown values are returned verbatim
// (upper-cased) so the ledger builder can report them as skipped.
func ParseTransactionType(raw string) TransactionType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "INCOME":
		return TransactionTypeIncome
	case "EXPENSE":
		return TransactionTypeExpense
	case "EQUITY":
		return TransactionTypeEquity
	case "ASSET", "ASSETS":
		return TransactionTypeAsset
	case "LIABILITY", "LIABILITIES":
		return TransactionTypeLiability
	default:
		return TransactionType(strings.ToUpper(strings.TrimSpace(raw)))
	}
}

// Known reports whether the type maps to a posting rule.
func (t TransactionType) Known() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeEquity,
		TransactionTypeAsset, TransactionTypeLiability:
		return true
	}
	return false
}

const (
	// DefaultDescription replaces a blank transaction description.
	DefaultDescription = "Untitled Transaction"
	// DefaultCategory replaces a blank transaction category.
	DefaultCategory = "Uncategorized"
	// DefaultCashAccountName is used when no cash or bank account is known.
	DefaultCashAccountName = "Bank/cash"

	CategoryOwnerInvestment = "owner-investment"
	CategoryOwnerDraw       = "owner-draw"
)

// Transaction is a categorized single-entry record supplied by the external store.
type Transaction struct {
	ID          string
	Type        TransactionType
	Category    string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	AccountID   string
}

// CategoryOrDefault returns the category, falling back to DefaultCategory.
func (t Transaction) CategoryOrDefault() string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// DescriptionOrDefault returns the description, falling back to DefaultDescription.
func (t Transaction) DescriptionOrDefault() string {
	if d := strings.TrimSpace(t.Description); d != "" {
		return d
	}
	return DefaultDescription
}

// AccountType classifies external accounts.
type AccountType string

const (
	AccountTypeCash      AccountType = "CASH"
	AccountTypeBank      AccountType = "BANK"
	AccountTypeAsset     AccountType = "ASSETS"
	AccountTypeLiability AccountType = "LIABILITIES"
	AccountTypeEquity    AccountType = "EQUITY"
)

// Account models an external money account owning transactions.
type Account struct {
	ID        string
	Name      string
	Type      AccountType
	IsDefault bool
	Balance   decimal.Decimal
}

// IsCash reports whether the account holds cash or bank money.
func (a Account) IsCash() bool {
	switch AccountType(strings.ToUpper(string(a.Type))) {
	case AccountTypeCash, AccountTypeBank:
		return true
	}
	return false
}

// CashAccount resolves the ledger account that receives the cash side of every posting.
func CashAccount(accounts []Account) LedgerAccount {
	for _, acc := range accounts {
		if acc.IsCash() && strings.TrimSpace(acc.Name) != "" {
			return CashLedger(acc.Name)
		}
	}
	return CashLedger(DefaultCashAccountName)
}

// SelectAccount picks the account a report is scoped to: the requested id when present,
// otherwise the default account, otherwise the first account.
func SelectAccount(accounts []Account, id string) (Account, bool) {
	if id != "" {
		for _, acc := range accounts {
			if acc.ID == id {
				return acc, true
			}
		}
		return Account{}, false
	}
	for _, acc := range accounts {
		if acc.IsDefault {
			return acc, true
		}
	}
	if len(accounts) > 0 {
		return accounts[0], true
	}
	return Account{}, false
}

// ForAccount returns the transactions owned by accountID, preserving order.
func ForAccount(txs []Transaction, accountID string) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	return out
}

// Between returns the transactions dated within [from, to], preserving order.
func Between(txs []Transaction, from, to time.Time) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

var (
	// ErrUnknownType indicates a transaction type without a posting rule.
	ErrUnknownType = errors.New("accounting: unrecognized transaction type")
	// ErrUnbalanced indicates total debits differ from total credits.
	ErrUnbalanced = errors.New("accounting: debits and credits do not balance")
	// ErrStatementUnbalanced indicates a statement terminal check failed.
	ErrStatementUnbalanced = errors.New("accounting: statement check failed")
	// ErrInvalidInput indicates a malformed transaction or account record.
	ErrInvalidInput = errors.New("accounting: invalid input")
	// ErrAccountNotFound indicates the requested account is not in the account set.
	ErrAccountNotFound = errors.New("accounting: account not found")
)
