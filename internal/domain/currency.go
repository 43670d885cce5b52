package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyConversion is the result of converting an amount between currencies
type CurrencyConversion struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Result    decimal.Decimal `json:"result"`
	Formatted string          `json:"formatted"`
	RatesAsOf time.Time       `json:"rates_as_of"`
}
