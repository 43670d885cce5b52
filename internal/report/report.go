package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/utils"
)

// Generate builds a report of the payments whose effective date lies strictly
// between startDate and endDate. Matching payments are returned as copies with
// their effective status, in input order.
func Generate(payments []*domain.InstallmentPayment, startDate, endDate, asOf time.Time) domain.PaymentReport {
	window := Window{Start: startDate, End: endDate}

	matched := make([]*domain.InstallmentPayment, 0)
	for _, p := range payments {
		if window.Contains(p.EffectiveDate()) {
			matched = append(matched, p)
		}
	}
	matched = WithEffectiveStatus(matched, asOf)

	summary := domain.ReportSummary{
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
		OverdueAmount: decimal.Zero,
		PaymentCount:  len(matched),
	}

	for _, p := range matched {
		summary.TotalAmount = summary.TotalAmount.Add(p.Amount)

		switch p.Status {
		case domain.PaymentStatusPaid:
			summary.PaidCount++
			summary.PaidAmount = summary.PaidAmount.Add(p.Amount)
		case domain.PaymentStatusPending:
			summary.PendingCount++
			summary.PendingAmount = summary.PendingAmount.Add(p.Amount)
		case domain.PaymentStatusOverdue:
			summary.OverdueCount++
			summary.OverdueAmount = summary.OverdueAmount.Add(p.Amount)
		}
	}

	summary.DelinquencyRate = utils.Percentage(summary.OverdueCount, summary.PaymentCount)

	return domain.PaymentReport{
		StartDate: startDate,
		EndDate:   endDate,
		Payments:  matched,
		Summary:   summary,
	}
}
