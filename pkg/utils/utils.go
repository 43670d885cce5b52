package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// MonthlyRate converts an annual percentage rate into a monthly fraction
// Formula: annualRatePercent / 100 / 12
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(hundred).Div(decimal.NewFromInt(12))
}

// CalculateMonthlyPayment calculates the fixed monthly installment
// Formula: P * r(1+r)^n / ((1+r)^n - 1), or P / n when the rate is zero
func CalculateMonthlyPayment(principal decimal.Decimal, annualRatePercent decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(months))
	r := MonthlyRate(annualRatePercent)
	if !r.IsPositive() {
		return principal.Div(n).Round(2)
	}

	// A rate too small to move (1+r)^n off one falls back to the flat split.
	factor, err := one.Add(r).PowInt32(int32(months))
	if err != nil || !factor.GreaterThan(one) {
		return principal.Div(n).Round(2)
	}
	multiplier := r.Mul(factor).Div(factor.Sub(one))

	// Round to 2 decimal places
	return principal.Mul(multiplier).Round(2)
}

// CalculateDueDate calculates the due date for a specific installment
// Installment 1 is due one calendar month after start, installment 2 two months after, etc.
func CalculateDueDate(startDate time.Time, monthNumber int) time.Time {
	return startDate.AddDate(0, monthNumber, 0)
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsDateOverdue checks if a due date lies on a calendar day before asOf
func IsDateOverdue(dueDate time.Time, asOf time.Time) bool {
	return StartOfDay(dueDate.In(asOf.Location())).Before(StartOfDay(asOf))
}

// Percentage returns part/whole*100 rounded to 2 places, zero when whole is zero
func Percentage(part, whole int) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))).Round(2)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
