package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/utils"
)

// Summarize aggregates payments whose effective date falls inside the named
// window. Amounts are bucketed by effective status as of now; cancelled
// payments count towards the window but land in no bucket. The active plan
// count ignores the window.
func Summarize(
	plans []*domain.InstallmentPlan,
	payments []*domain.InstallmentPayment,
	timeRange string,
	now time.Time,
) (domain.PaymentSummary, error) {
	window, err := WindowFor(timeRange, now)
	if err != nil {
		return domain.PaymentSummary{}, err
	}
	if timeRange == "" {
		timeRange = domain.TimeRangeAll
	}

	summary := domain.PaymentSummary{
		TimeRange:      timeRange,
		WindowStart:    window.Start,
		WindowEnd:      window.End,
		TotalCollected: decimal.Zero,
		TotalPending:   decimal.Zero,
		TotalOverdue:   decimal.Zero,
	}

	for _, p := range payments {
		if !window.Contains(p.EffectiveDate()) {
			continue
		}
		summary.PaymentCount++

		switch EffectiveStatus(p, now) {
		case domain.PaymentStatusPaid:
			summary.PaidCount++
			summary.TotalCollected = summary.TotalCollected.Add(p.Amount)
		case domain.PaymentStatusPending:
			summary.TotalPending = summary.TotalPending.Add(p.Amount)
		case domain.PaymentStatusOverdue:
			summary.TotalOverdue = summary.TotalOverdue.Add(p.Amount)
		}
	}

	for _, plan := range plans {
		if plan.Status == domain.PlanStatusActive {
			summary.ActivePlanCount++
		}
	}

	summary.CompletionRate = utils.Percentage(summary.PaidCount, summary.PaymentCount)

	return summary, nil
}
