package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/utils"
)

// Progress summarises a single plan. NextPayment is the earliest unpaid,
// uncancelled installment.
func Progress(plan *domain.InstallmentPlan, asOf time.Time) domain.PlanProgress {
	progress := domain.PlanProgress{
		PlanID:          plan.ID.String(),
		Status:          plan.Status,
		PaidAmount:      decimal.Zero,
		OverdueAmount:   decimal.Zero,
		RemainingAmount: plan.RemainingBalance,
	}

	payments := WithEffectiveStatus(plan.Payments, asOf)
	SortByDueDate(payments)

	counted := 0
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentStatusPaid:
			progress.PaidCount++
			progress.PaidAmount = progress.PaidAmount.Add(p.Amount)
		case domain.PaymentStatusPending:
			progress.PendingCount++
		case domain.PaymentStatusOverdue:
			progress.OverdueCount++
			progress.OverdueAmount = progress.OverdueAmount.Add(p.Amount)
		case domain.PaymentStatusCancelled:
			continue
		}
		counted++

		if progress.NextPayment == nil && p.Status != domain.PaymentStatusPaid {
			progress.NextPayment = p
		}
	}

	progress.PercentComplete = utils.Percentage(progress.PaidCount, counted)

	return progress
}
