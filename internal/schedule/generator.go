// Package schedule builds installment payment schedules.
package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/utils"
)

// GenerateSchedule returns termMonths pending payments for the financed part of
// totalAmount. Every payment but the last uses the rounded annuity installment;
// the last one takes whatever balance is left, so the amounts always add up to
// totalAmount - downPayment.
//
// Inputs are not validated. A non-positive term yields an empty schedule and a
// non-positive financed amount yields zero or negative payments.
func GenerateSchedule(
	totalAmount decimal.Decimal,
	downPayment decimal.Decimal,
	termMonths int,
	annualRatePercent decimal.Decimal,
	startDate time.Time,
) []*domain.InstallmentPayment {
	if termMonths <= 0 {
		return []*domain.InstallmentPayment{}
	}

	remaining := totalAmount.Sub(downPayment)
	installment := utils.CalculateMonthlyPayment(remaining, annualRatePercent, termMonths)

	payments := make([]*domain.InstallmentPayment, 0, termMonths)
	balance := remaining

	for month := 1; month <= termMonths; month++ {
		amount := balance
		if month < termMonths {
			amount = clamp(installment, balance)
		}
		balance = balance.Sub(amount)

		payments = append(payments, &domain.InstallmentPayment{
			ID:       uuid.New(),
			Sequence: month,
			Amount:   amount,
			DueDate:  utils.CalculateDueDate(startDate, month),
			Status:   domain.PaymentStatusPending,
		})
	}

	return payments
}

// EndDate is the date the last installment falls due.
func EndDate(startDate time.Time, termMonths int) time.Time {
	return utils.CalculateDueDate(startDate, termMonths)
}

// Total sums the amounts of the given payments.
func Total(payments []*domain.InstallmentPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// clamp keeps amount within [0, balance].
func clamp(amount, balance decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(balance) {
		if balance.IsNegative() {
			return decimal.Zero
		}
		return balance
	}
	return amount
}
