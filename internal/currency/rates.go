// Package currency converts and formats amounts using immutable rate tables.
package currency

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/segyhp/installment-engine/pkg/errors"
)

// RateTable maps currency codes to the number of units worth one unit of the
// base currency. A table never changes after construction; use With or Rebase
// to derive a new one.
type RateTable struct {
	base  string
	rates map[string]decimal.Decimal
	asOf  time.Time
}

// NewRateTable validates and copies rates. The base currency is always
// present with rate 1.
func NewRateTable(base string, rates map[string]decimal.Decimal, asOf time.Time) (*RateTable, error) {
	base = normalize(base)
	if base == "" {
		return nil, fmt.Errorf("base currency is required")
	}

	copied := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive, got %s", code, rate)
		}
		copied[normalize(code)] = rate
	}
	copied[base] = decimal.NewFromInt(1)

	return &RateTable{base: base, rates: copied, asOf: asOf}, nil
}

func (t *RateTable) Base() string {
	return t.base
}

func (t *RateTable) AsOf() time.Time {
	return t.asOf
}

// Rate returns units of code per one unit of the base currency.
func (t *RateTable) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := t.rates[normalize(code)]
	return rate, ok
}

// Currencies lists the codes in the table in alphabetical order.
func (t *RateTable) Currencies() []string {
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Rates returns a copy of the underlying rates.
func (t *RateTable) Rates() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(t.rates))
	for code, rate := range t.rates {
		out[code] = rate
	}
	return out
}

// Convert converts amount between two currencies through the base currency,
// rounded to cents.
func (t *RateTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromRate, ok := t.Rate(from)
	if !ok {
		return decimal.Zero, customError.WrapUnknownCurrency(normalize(from))
	}
	toRate, ok := t.Rate(to)
	if !ok {
		return decimal.Zero, customError.WrapUnknownCurrency(normalize(to))
	}

	return amount.Div(fromRate).Mul(toRate).Round(2), nil
}

// With returns a new table containing the current rates overridden by updates.
func (t *RateTable) With(updates map[string]decimal.Decimal, asOf time.Time) (*RateTable, error) {
	merged := t.Rates()
	for code, rate := range updates {
		merged[normalize(code)] = rate
	}
	return NewRateTable(t.base, merged, asOf)
}

// Rebase expresses the same rates relative to another currency in the table.
func (t *RateTable) Rebase(base string) (*RateTable, error) {
	base = normalize(base)
	if base == t.base {
		return t, nil
	}

	pivot, ok := t.rates[base]
	if !ok {
		return nil, customError.WrapUnknownCurrency(base)
	}

	rebased := make(map[string]decimal.Decimal, len(t.rates))
	for code, rate := range t.rates {
		rebased[code] = rate.Div(pivot)
	}
	return NewRateTable(base, rebased, t.asOf)
}

type tableJSON struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
	AsOf  time.Time                  `json:"as_of"`
}

func (t *RateTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Base: t.base, Rates: t.rates, AsOf: t.asOf})
}

// UnmarshalJSON is only meant for freshly declared tables, such as cache reads.
func (t *RateTable) UnmarshalJSON(data []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := NewRateTable(raw.Base, raw.Rates, raw.AsOf)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// DefaultTable is the built-in USD table used until a refresh succeeds.
func DefaultTable() *RateTable {
	rates := map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("0.79"),
		"JPY": decimal.RequireFromString("149.50"),
		"CNY": decimal.RequireFromString("7.24"),
		"MXN": decimal.RequireFromString("17.10"),
		"CAD": decimal.RequireFromString("1.36"),
		"RUB": decimal.RequireFromString("92.50"),
		"IDR": decimal.RequireFromString("15600"),
	}

	table, _ := NewRateTable("USD", rates, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return table
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
