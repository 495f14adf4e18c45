package accounting

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// TransactionInput is the wire shape of a transaction as supplied by collaborators.
type TransactionInput struct {
	ID          string          `json:"id" validate:"required"`
	Type        string          `json:"type" validate:"required"`
	Category    string          `json:"category"`
	Amount      json.RawMessage `json:"amount" validate:"required"`
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description"`
	AccountID   string          `json:"accountId" validate:"required"`
}

// AccountInput is the wire shape of an account.
type AccountInput struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Type      string          `json:"type" validate:"required"`
	IsDefault bool            `json:"isDefault"`
	Balance   json.RawMessage `json:"balance"`
}

// ValidationError identifies the record that failed input validation.
type ValidationError struct {
	Record string
	Index  int
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	id := e.ID
	if id == "" {
		id = "-"
	}
	return fmt.Sprintf("%s: %s %d (id %s): %s: %s", ErrInvalidInput, e.Record, e.Index, id, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// DecodeTransactions reads a JSON array of transactions.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var inputs []TransactionInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("%w: decode transactions: %v", ErrInvalidInput, err)
	}
	return ParseTransactions(inputs)
}

// DecodeAccounts reads a JSON array of accounts.
func DecodeAccounts(r io.Reader) ([]Account, error) {
	var inputs []AccountInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("%w: decode accounts: %v", ErrInvalidInput, err)
	}
	return ParseAccounts(inputs)
}

// ParseTransactions validates wire records and converts them to transactions.
func ParseTransactions(inputs []TransactionInput) ([]Transaction, error) {
	out := make([]Transaction, 0, len(inputs))
	for idx, in := range inputs {
		if err := checkStruct("transaction", idx, in.ID, in); err != nil {
			return nil, err
		}
		amount, err := parseAmount(in.Amount)
		if err != nil {
			return nil, &ValidationError{Record: "transaction", Index: idx, ID: in.ID, Field: "amount", Reason: err.Error()}
		}
		if amount.IsNegative() {
			return nil, &ValidationError{Record: "transaction", Index: idx, ID: in.ID, Field: "amount", Reason: "must not be negative"}
		}
		date, err := parseDate(in.Date)
		if err != nil {
			return nil, &ValidationError{Record: "transaction", Index: idx, ID: in.ID, Field: "date", Reason: err.Error()}
		}
		out = append(out, Transaction{
			ID:          in.ID,
			Type:        ParseTransactionType(in.Type),
			Category:    strings.TrimSpace(in.Category),
			Amount:      amount,
			Date:        date,
			Description: in.Description,
			AccountID:   in.AccountID,
		})
	}
	return out, nil
}

// ParseAccounts validates wire records and converts them to accounts.
func ParseAccounts(inputs []AccountInput) ([]Account, error) {
	out := make([]Account, 0, len(inputs))
	for idx, in := range inputs {
		if err := checkStruct("account", idx, in.ID, in); err != nil {
			return nil, err
		}
		balance := decimal.Zero
		if len(in.Balance) > 0 && string(in.Balance) != "null" {
			parsed, err := parseAmount(in.Balance)
			if err != nil {
				return nil, &ValidationError{Record: "account", Index: idx, ID: in.ID, Field: "balance", Reason: err.Error()}
			}
			balance = parsed
		}
		out = append(out, Account{
			ID:        in.ID,
			Name:      in.Name,
			Type:      AccountType(strings.ToUpper(strings.TrimSpace(in.Type))),
			IsDefault: in.IsDefault,
			Balance:   balance,
		})
	}
	return out, nil
}

func checkStruct(record string, idx int, id string, value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Record: record, Index: idx, ID: id, Field: fe.Field(), Reason: "failed " + fe.Tag()}
	}
	return &ValidationError{Record: record, Index: idx, ID: id, Field: "-", Reason: err.Error()}
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	text := strings.TrimSpace(string(raw))
	text = strings.Trim(text, `"`)
	if text == "" || text == "null" {
		return decimal.Zero, errors.New("required")
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", text)
	}
	return amount, nil
}

func parseDate(raw string) (time.Time, error) {
	text := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", text)
}
