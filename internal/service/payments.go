package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/event"
	"github.com/segyhp/installment-engine/internal/report"
	"github.com/segyhp/installment-engine/internal/repository"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

// RecordPayment marks an installment of an open plan as paid. The plan is
// completed once nothing is outstanding.
func (s *InstallmentService) RecordPayment(ctx context.Context, planID, paymentID string, request *domain.RecordPaymentRequest) (*domain.InstallmentPayment, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	payment := findPayment(plan, paymentID)
	if payment == nil {
		return nil, customError.WrapPaymentNotFound(paymentID)
	}

	now := s.now()
	paidAt := now
	if request.PaymentDate != nil {
		paidAt = *request.PaymentDate
	}

	if err = s.markPaid(plan, payment, request.PaymentMethod, request.Notes, paidAt, now); err != nil {
		return nil, err
	}

	return s.savePayment(ctx, plan, payment, event.RoutingKeyPaymentRecorded)
}

// UpdatePaymentStatus sets the status of a single installment. Setting paid
// behaves like RecordPayment; moving a paid installment elsewhere reverses the
// payment.
func (s *InstallmentService) UpdatePaymentStatus(ctx context.Context, paymentID string, request *domain.UpdatePaymentStatusRequest) (*domain.InstallmentPayment, error) {
	if !domain.IsValidPaymentStatus(request.Status) {
		return nil, customError.WrapInvalidStatus(request.Status)
	}

	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, customError.WrapPaymentNotFound(paymentID)
	}

	stored, err := s.PaymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapPaymentNotFound(paymentID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	plan, err := s.loadPlan(ctx, stored.PlanID.String())
	if err != nil {
		return nil, err
	}

	payment := findPayment(plan, paymentID)
	if payment == nil {
		return nil, customError.WrapPaymentNotFound(paymentID)
	}

	if payment.Status == request.Status {
		return report.WithEffectiveStatus([]*domain.InstallmentPayment{payment}, s.now())[0], nil
	}

	now := s.now()
	routingKey := event.RoutingKeyPaymentRecorded

	switch {
	case request.Status == domain.PaymentStatusPaid:
		method := domain.PaymentMethodOther
		if request.PaymentMethod != nil {
			method = *request.PaymentMethod
		}
		if err = s.markPaid(plan, payment, method, nil, now, now); err != nil {
			return nil, err
		}

	case payment.Status == domain.PaymentStatusPaid:
		if plan.Status == domain.PlanStatusCancelled {
			return nil, customError.WrapPlanNotActive(plan.ID.String(), plan.Status)
		}
		payment.Status = request.Status
		payment.PaymentDate = nil
		payment.PaymentMethod = nil
		payment.UpdatedAt = now
		routingKey = event.RoutingKeyPaymentReversed

	default:
		if plan.Status == domain.PlanStatusCancelled {
			return nil, customError.WrapPlanNotActive(plan.ID.String(), plan.Status)
		}
		payment.Status = request.Status
		payment.UpdatedAt = now
		routingKey = ""
	}

	return s.savePayment(ctx, plan, payment, routingKey)
}

func (s *InstallmentService) markPaid(plan *domain.InstallmentPlan, payment *domain.InstallmentPayment, method string, notes *string, paidAt, now time.Time) error {
	if !plan.IsOpen() {
		return customError.WrapPlanNotActive(plan.ID.String(), plan.Status)
	}

	switch payment.Status {
	case domain.PaymentStatusPaid:
		return customError.WrapPaymentAlreadyPaid(payment.ID.String())
	case domain.PaymentStatusCancelled:
		return customError.WrapPaymentCancelled(payment.ID.String())
	}

	payment.Status = domain.PaymentStatusPaid
	payment.PaymentDate = &paidAt
	payment.PaymentMethod = &method
	if notes != nil {
		payment.Notes = notes
	}
	payment.UpdatedAt = now
	return nil
}

// savePayment recomputes the plan balance and standing after a payment change
// and persists both. An empty routingKey publishes no payment event.
func (s *InstallmentService) savePayment(ctx context.Context, plan *domain.InstallmentPlan, payment *domain.InstallmentPayment, routingKey string) (*domain.InstallmentPayment, error) {
	now := s.now()
	previousStatus := plan.Status

	plan.RemainingBalance = remainingBalance(plan)
	switch {
	case plan.IsOpen() && isSettled(plan.Payments):
		plan.Status = domain.PlanStatusCompleted
	case plan.Status == domain.PlanStatusCompleted && !isSettled(plan.Payments):
		plan.Status = domain.PlanStatusActive
	}
	plan.UpdatedAt = now

	if err := s.PlanRepo.Update(ctx, plan, []*domain.InstallmentPayment{payment}); err != nil {
		return nil, s.repoError(err, plan.ID.String())
	}

	s.invalidateSummaries(ctx)

	if routingKey != "" {
		s.publishPayment(ctx, routingKey, payment)
	}
	if plan.Status != previousStatus {
		s.publishStatusChange(ctx, plan)
	}

	s.logger.WithFields(logrus.Fields{
		"plan_id":        plan.ID,
		"payment_id":     payment.ID,
		"payment_status": payment.Status,
		"plan_status":    plan.Status,
	}).Info("Installment payment updated")

	return report.WithEffectiveStatus([]*domain.InstallmentPayment{payment}, now)[0], nil
}

func (s *InstallmentService) publishPayment(ctx context.Context, routingKey string, payment *domain.InstallmentPayment) {
	err := s.publisher.PublishPaymentEvent(ctx, routingKey, event.PaymentEvent{
		PlanID:      payment.PlanID.String(),
		PaymentID:   payment.ID.String(),
		Sequence:    payment.Sequence,
		Amount:      payment.Amount,
		Status:      payment.Status,
		PaymentDate: payment.PaymentDate,
		Timestamp:   s.now(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("routing_key", routingKey).Warn("Failed to publish payment event")
	}
}

func findPayment(plan *domain.InstallmentPlan, paymentID string) *domain.InstallmentPayment {
	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil
	}
	for _, p := range plan.Payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}
