package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		months    int
		expected  decimal.Decimal
	}{
		{
			name:      "twelve percent over six months",
			principal: decimal.NewFromInt(9000),
			rate:      decimal.NewFromInt(12),
			months:    6,
			expected:  decimal.RequireFromString("1552.94"), // 9000 * 0.01*1.01^6 / (1.01^6 - 1)
		},
		{
			name:      "zero interest rate",
			principal: decimal.NewFromInt(12000),
			rate:      decimal.Zero,
			months:    12,
			expected:  decimal.NewFromInt(1000),
		},
		{
			name:      "zero interest rounds to cents",
			principal: decimal.NewFromInt(100),
			rate:      decimal.Zero,
			months:    3,
			expected:  decimal.RequireFromString("33.33"),
		},
		{
			name:      "single month with interest",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.NewFromInt(12),
			months:    1,
			expected:  decimal.NewFromInt(1010),
		},
		{
			name:      "rate too small to register",
			principal: decimal.NewFromInt(1200),
			rate:      decimal.RequireFromString("0.00000000000001"),
			months:    12,
			expected:  decimal.NewFromInt(100),
		},
		{
			name:      "tiny positive rate",
			principal: decimal.NewFromInt(1200),
			rate:      decimal.RequireFromString("0.0000001"),
			months:    12,
			expected:  decimal.NewFromInt(100),
		},
		{
			name:      "no months",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.NewFromInt(12),
			months:    0,
			expected:  decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.rate, tt.months)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateDueDate(t *testing.T) {
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		startDate   time.Time
		monthNumber int
		expected    time.Time
	}{
		{
			name:        "first month",
			startDate:   baseDate,
			monthNumber: 1,
			expected:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "twelfth month crosses the year",
			startDate:   baseDate,
			monthNumber: 12,
			expected:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "end of month normalises",
			startDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			monthNumber: 1,
			expected:    time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), // Feb 31 2024 -> Mar 2
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDueDate(tt.startDate, tt.monthNumber)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsDateOverdue(t *testing.T) {
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsDateOverdue(due, due))
	assert.False(t, IsDateOverdue(due, due.Add(23*time.Hour)))
	assert.True(t, IsDateOverdue(due, due.AddDate(0, 0, 1)))
	assert.False(t, IsDateOverdue(due, due.AddDate(0, 0, -1)))
}

func TestPercentage(t *testing.T) {
	assert.True(t, Percentage(0, 0).IsZero())
	assert.True(t, Percentage(1, 3).Equal(decimal.RequireFromString("33.33")))
	assert.True(t, Percentage(4, 4).Equal(decimal.NewFromInt(100)))
}
