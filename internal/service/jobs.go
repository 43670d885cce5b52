package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/notify"
	"github.com/segyhp/installment-engine/internal/reminder"
	customError "github.com/segyhp/installment-engine/pkg/errors"
	"github.com/segyhp/installment-engine/pkg/utils"
)

// MarkOverduePayments persists the overdue status of pending installments
// due before asOf's calendar day and defaults active plans whose overdue count
// reached the configured threshold. It returns the number of installments
// marked.
func (s *InstallmentService) MarkOverduePayments(ctx context.Context, asOf time.Time) (int, error) {
	marked, err := s.PaymentRepo.MarkOverdue(ctx, utils.StartOfDay(asOf))
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	if len(marked) == 0 {
		return 0, nil
	}

	seen := make(map[uuid.UUID]bool)
	planIDs := make([]uuid.UUID, 0, len(marked))
	for _, p := range marked {
		if !seen[p.PlanID] {
			seen[p.PlanID] = true
			planIDs = append(planIDs, p.PlanID)
		}
	}

	counts, err := s.PaymentRepo.CountOverdueByPlan(ctx, planIDs)
	if err != nil {
		return len(marked), customError.WrapDatabaseError(err)
	}

	threshold := s.config.Business.OverdueDefaultThreshold
	for _, planID := range planIDs {
		if counts[planID] < threshold {
			continue
		}
		if err = s.defaultPlan(ctx, planID); err != nil {
			s.logger.WithError(err).WithField("plan_id", planID).Error("Failed to default plan")
		}
	}

	s.invalidateSummaries(ctx)
	s.logger.WithFields(logrus.Fields{
		"marked": len(marked),
		"plans":  len(planIDs),
	}).Info("Overdue payments marked")

	return len(marked), nil
}

func (s *InstallmentService) defaultPlan(ctx context.Context, planID uuid.UUID) error {
	plan, err := s.loadPlan(ctx, planID.String())
	if err != nil {
		return err
	}
	if plan.Status != domain.PlanStatusActive {
		return nil
	}

	plan.Status = domain.PlanStatusDefaulted
	plan.UpdatedAt = s.now()
	if err = s.PlanRepo.Update(ctx, plan, nil); err != nil {
		return s.repoError(err, planID.String())
	}

	s.publishStatusChange(ctx, plan)
	return nil
}

// DispatchReminders delivers the reminders that are due as of asOf and marks
// them sent. Reminders that no longer apply are marked sent without delivery;
// failed deliveries stay unsent and are retried on the next run. It returns
// the number of reminders delivered.
func (s *InstallmentService) DispatchReminders(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.ReminderRepo.ListDue(ctx, asOf, s.config.Scheduler.ReminderBatch)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	delivered := 0
	for _, r := range due {
		log := s.logger.WithFields(logrus.Fields{
			"reminder_id": r.ID,
			"payment_id":  r.PaymentID,
			"type":        r.Type,
		})

		if reminder.ShouldDeliver(r, asOf) {
			err := s.notifier.SendReminder(ctx, r)
			switch {
			case errors.Is(err, notify.ErrNoRecipient):
				log.Debug("Customer has no email, reminder not delivered")
			case err != nil:
				log.WithError(err).Warn("Failed to deliver reminder")
				continue
			default:
				delivered++
			}
		}

		if err := s.ReminderRepo.MarkSent(ctx, r.ID); err != nil {
			log.WithError(err).Error("Failed to mark reminder sent")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"due":       len(due),
		"delivered": delivered,
	}).Info("Reminders dispatched")

	return delivered, nil
}
