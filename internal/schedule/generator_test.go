package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-engine/internal/domain"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestGenerateSchedule_ZeroInterest(t *testing.T) {
	payments := GenerateSchedule(decimal.NewFromInt(12000), decimal.Zero, 12, decimal.Zero, jan1)

	require.Len(t, payments, 12)
	for i, p := range payments {
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(1000)), "payment %d: %s", i+1, p.Amount)
		assert.Equal(t, jan1.AddDate(0, i+1, 0), p.DueDate)
		assert.Equal(t, domain.PaymentStatusPending, p.Status)
		assert.Nil(t, p.PaymentDate)
		assert.Equal(t, i+1, p.Sequence)
	}
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), payments[0].DueDate)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), payments[11].DueDate)
}

func TestGenerateSchedule_WithInterest(t *testing.T) {
	payments := GenerateSchedule(decimal.NewFromInt(10000), decimal.NewFromInt(1000), 6, decimal.NewFromInt(12), jan1)

	require.Len(t, payments, 6)
	fixed := decimal.RequireFromString("1552.94")
	for _, p := range payments[:5] {
		assert.True(t, p.Amount.Equal(fixed), "got %s", p.Amount)
	}
	assert.True(t, payments[5].Amount.Equal(decimal.RequireFromString("1235.30")), "got %s", payments[5].Amount)
	assert.True(t, Total(payments).Equal(decimal.NewFromInt(9000)))
}

func TestGenerateSchedule_SumInvariant(t *testing.T) {
	tests := []struct {
		total, down string
		months      int
		rate        string
	}{
		{"100", "0", 3, "0"},
		{"1000", "1", 7, "0"},
		{"999.99", "100.01", 11, "7.5"},
		{"25000", "5000", 36, "18"},
		{"1234.56", "0", 24, "29.99"},
		{"50", "49.99", 5, "3"},
		{"100000", "0", 360, "6.25"},
		{"10", "0", 1, "99"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s-%s-%d-%s", tt.total, tt.down, tt.months, tt.rate), func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			down := decimal.RequireFromString(tt.down)
			payments := GenerateSchedule(total, down, tt.months, decimal.RequireFromString(tt.rate), jan1)

			require.Len(t, payments, tt.months)
			assert.True(t, Total(payments).Equal(total.Sub(down)), "sum %s", Total(payments))

			balance := total.Sub(down)
			for i, p := range payments {
				assert.False(t, p.Amount.IsNegative(), "payment %d negative", i+1)
				assert.True(t, p.Amount.LessThanOrEqual(balance), "payment %d exceeds balance", i+1)
				balance = balance.Sub(p.Amount)
			}
		})
	}
}

func TestGenerateSchedule_ZeroInterestRoundsToCents(t *testing.T) {
	payments := GenerateSchedule(decimal.NewFromInt(100), decimal.Zero, 3, decimal.Zero, jan1)

	require.Len(t, payments, 3)
	assert.True(t, payments[0].Amount.Equal(decimal.RequireFromString("33.33")))
	assert.True(t, payments[1].Amount.Equal(decimal.RequireFromString("33.33")))
	assert.True(t, payments[2].Amount.Equal(decimal.RequireFromString("33.34")))
}

func TestGenerateSchedule_EndOfMonthDueDates(t *testing.T) {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	payments := GenerateSchedule(decimal.NewFromInt(300), decimal.Zero, 3, decimal.Zero, start)

	require.Len(t, payments, 3)
	for i, p := range payments {
		assert.Equal(t, start.AddDate(0, i+1, 0), p.DueDate)
	}
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), payments[0].DueDate)
}

func TestGenerateSchedule_DegenerateInput(t *testing.T) {
	t.Run("zero term", func(t *testing.T) {
		assert.Empty(t, GenerateSchedule(decimal.NewFromInt(100), decimal.Zero, 0, decimal.Zero, jan1))
	})

	t.Run("negative term", func(t *testing.T) {
		assert.Empty(t, GenerateSchedule(decimal.NewFromInt(100), decimal.Zero, -3, decimal.NewFromInt(5), jan1))
	})

	t.Run("down payment covers total", func(t *testing.T) {
		payments := GenerateSchedule(decimal.NewFromInt(100), decimal.NewFromInt(100), 4, decimal.Zero, jan1)
		require.Len(t, payments, 4)
		for _, p := range payments {
			assert.True(t, p.Amount.IsZero())
		}
	})

	t.Run("down payment exceeds total", func(t *testing.T) {
		payments := GenerateSchedule(decimal.NewFromInt(100), decimal.NewFromInt(160), 3, decimal.Zero, jan1)
		require.Len(t, payments, 3)
		assert.True(t, payments[0].Amount.IsZero())
		assert.True(t, payments[1].Amount.IsZero())
		assert.True(t, payments[2].Amount.Equal(decimal.NewFromInt(-60)))
	})
}

func TestGenerateSchedule_TinyRate(t *testing.T) {
	for _, rate := range []string{"0.00000000000001", "0.0000001"} {
		t.Run(rate, func(t *testing.T) {
			var payments []*domain.InstallmentPayment
			require.NotPanics(t, func() {
				payments = GenerateSchedule(decimal.NewFromInt(1200), decimal.Zero, 12, decimal.RequireFromString(rate), jan1)
			})

			require.Len(t, payments, 12)
			for _, p := range payments {
				assert.True(t, p.Amount.Equal(decimal.NewFromInt(100)), "got %s", p.Amount)
			}
		})
	}
}

func TestEndDate(t *testing.T) {
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), EndDate(jan1, 12))
}
