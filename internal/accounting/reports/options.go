package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidOptions marks rejected engine options.
var ErrInvalidOptions = errors.New("reports: invalid options")

// Options carries the jurisdiction-dependent parameters of a derivation pass.
type Options struct {
	VATRate                decimal.Decimal
	CorporateTaxRate       decimal.Decimal
	DepreciationMonths     int
	OperatingExpenseLines  []string
	CurrentAssetCategories []string
	// LegacyOperatingExpenses reproduces the workbook layout where only the modeled
	// expense lines count toward EBITDA.
	LegacyOperatingExpenses bool
}

// DefaultOptions returns the stock jurisdiction profile.
func DefaultOptions() Options {
	return Options{
		VATRate:                decimal.RequireFromString("0.16"),
		CorporateTaxRate:       decimal.RequireFromString("0.30"),
		DepreciationMonths:     60,
		OperatingExpenseLines:  []string{"travel"},
		CurrentAssetCategories: []string{"inventory"},
	}
}

// Validate rejects rates outside [0,1] and non-positive useful lives.
func (o Options) Validate() error {
	one := decimal.NewFromInt(1)
	if o.VATRate.IsNegative() || o.VATRate.GreaterThan(one) {
		return fmt.Errorf("%w: vat rate %s outside [0,1]", ErrInvalidOptions, o.VATRate)
	}
	if o.CorporateTaxRate.IsNegative() || o.CorporateTaxRate.GreaterThan(one) {
		return fmt.Errorf("%w: corporate tax rate %s outside [0,1]", ErrInvalidOptions, o.CorporateTaxRate)
	}
	if o.DepreciationMonths <= 0 {
		return fmt.Errorf("%w: depreciation months must be positive", ErrInvalidOptions)
	}
	for _, line := range o.OperatingExpenseLines {
		if strings.TrimSpace(line) == "" {
			return fmt.Errorf("%w: blank operating expense line", ErrInvalidOptions)
		}
	}
	return nil
}

// Period is the closed reporting window [Start, End].
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Period{Start: start, End: end}
}

// ParseMonth parses "2006-01" into a UTC month period.
func ParseMonth(raw string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return Period{}, fmt.Errorf("reports: parse month %q: %w", raw, err)
	}
	return MonthOf(t), nil
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Label renders the period end as "October 2026".
func (p Period) Label() string {
	return p.End.Format("January 2006")
}

// AsOf renders the period end as "2006-01-02".
func (p Period) AsOf() string {
	return p.End.Format("2006-01-02")
}
