// Package report derives payment statuses, summaries and reports from
// snapshots of installment data. Nothing here performs I/O or keeps state.
package report

import (
	"sort"
	"time"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/utils"
)

// EffectiveStatus is the status a payment should be shown and aggregated with
// as of the given instant: a pending payment whose due day has passed is overdue.
func EffectiveStatus(p *domain.InstallmentPayment, asOf time.Time) string {
	if p.Status == domain.PaymentStatusPending && utils.IsDateOverdue(p.DueDate, asOf) {
		return domain.PaymentStatusOverdue
	}
	return p.Status
}

// WithEffectiveStatus returns copies of payments carrying their effective status.
// The input slice and its elements are left untouched.
func WithEffectiveStatus(payments []*domain.InstallmentPayment, asOf time.Time) []*domain.InstallmentPayment {
	out := make([]*domain.InstallmentPayment, 0, len(payments))
	for _, p := range payments {
		cp := *p
		cp.Status = EffectiveStatus(p, asOf)
		out = append(out, &cp)
	}
	return out
}

// SortByDueDate orders payments by due date, then sequence, in place.
func SortByDueDate(payments []*domain.InstallmentPayment) {
	sort.SliceStable(payments, func(i, j int) bool {
		if payments[i].DueDate.Equal(payments[j].DueDate) {
			return payments[i].Sequence < payments[j].Sequence
		}
		return payments[i].DueDate.Before(payments[j].DueDate)
	})
}
