// Package reminder plans the notifications sent around each installment.
package reminder

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/installment-engine/internal/domain"
)

const dateLayout = "2006-01-02"

// Planner decides when reminders for a payment go out.
type Planner struct {
	LeadDays  int // upcoming reminder, days before the due date
	GraceDays int // overdue reminder, days after the due date
}

func NewPlanner(leadDays, graceDays int) *Planner {
	return &Planner{LeadDays: leadDays, GraceDays: graceDays}
}

// Plan returns the upcoming, due and overdue reminders for one payment.
func (p *Planner) Plan(payment *domain.InstallmentPayment, now time.Time) []*domain.PaymentReminder {
	due := payment.DueDate
	amount := payment.Amount.StringFixed(2)
	day := due.Format(dateLayout)

	return []*domain.PaymentReminder{
		p.newReminder(payment, domain.ReminderTypeUpcoming, due.AddDate(0, 0, -p.LeadDays), now,
			fmt.Sprintf("Installment %d of %s is due on %s.", payment.Sequence, amount, day)),
		p.newReminder(payment, domain.ReminderTypeDue, due, now,
			fmt.Sprintf("Installment %d of %s is due today (%s).", payment.Sequence, amount, day)),
		p.newReminder(payment, domain.ReminderTypeOverdue, due.AddDate(0, 0, p.GraceDays), now,
			fmt.Sprintf("Installment %d of %s was due on %s and is overdue.", payment.Sequence, amount, day)),
	}
}

// PlanAll plans reminders for every payment in a schedule.
func (p *Planner) PlanAll(payments []*domain.InstallmentPayment, now time.Time) []*domain.PaymentReminder {
	reminders := make([]*domain.PaymentReminder, 0, len(payments)*3)
	for _, payment := range payments {
		reminders = append(reminders, p.Plan(payment, now)...)
	}
	return reminders
}

func (p *Planner) newReminder(payment *domain.InstallmentPayment, kind string, at, now time.Time, message string) *domain.PaymentReminder {
	return &domain.PaymentReminder{
		ID:           uuid.New(),
		PaymentID:    payment.ID,
		ReminderDate: at,
		Type:         kind,
		Message:      message,
		CreatedAt:    now,
	}
}

// ShouldDeliver decides whether a due reminder still makes sense for the
// payment's current state. Reminders that should not be delivered are still
// marked as sent so they are not picked up again.
func ShouldDeliver(r *domain.DueReminder, asOf time.Time) bool {
	switch r.PaymentStatus {
	case domain.PaymentStatusPaid, domain.PaymentStatusCancelled:
		return false
	}

	if r.Type == domain.ReminderTypeOverdue {
		return r.PaymentStatus == domain.PaymentStatusOverdue || r.PaymentDueDate.Before(asOf)
	}
	return true
}
