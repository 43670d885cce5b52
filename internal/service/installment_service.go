package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/cache"
	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/event"
	"github.com/segyhp/installment-engine/internal/notify"
	"github.com/segyhp/installment-engine/internal/reminder"
	"github.com/segyhp/installment-engine/internal/report"
	"github.com/segyhp/installment-engine/internal/repository"
	"github.com/segyhp/installment-engine/internal/schedule"
	customError "github.com/segyhp/installment-engine/pkg/errors"
	"github.com/segyhp/installment-engine/pkg/utils"
)

const summaryCachePrefix = "summary:"

type InstallmentService struct {
	PlanRepo     repository.PlanRepository
	PaymentRepo  repository.PaymentRepository
	ReminderRepo repository.ReminderRepository
	cache        cache.Cache
	publisher    event.Publisher
	notifier     notify.Notifier
	planner      *reminder.Planner
	config       *config.Config
	logger       *logrus.Logger
	now          func() time.Time
}

func NewInstallmentService(
	planRepo repository.PlanRepository,
	paymentRepo repository.PaymentRepository,
	reminderRepo repository.ReminderRepository,
	cache cache.Cache,
	publisher event.Publisher,
	notifier notify.Notifier,
	config *config.Config,
	logger *logrus.Logger,
) *InstallmentService {
	return &InstallmentService{
		PlanRepo:     planRepo,
		PaymentRepo:  paymentRepo,
		ReminderRepo: reminderRepo,
		cache:        cache,
		publisher:    publisher,
		notifier:     notifier,
		planner:      reminder.NewPlanner(config.Business.ReminderLeadDays, config.Business.ReminderGraceDays),
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// CreatePlan validates the request, generates the payment schedule and its
// reminders and stores everything in one transaction.
func (s *InstallmentService) CreatePlan(ctx context.Context, request *domain.CreatePlanRequest) (*domain.InstallmentPlan, error) {
	if err := s.validateTerms(request.TotalAmount, request.DownPayment, request.TermMonths, request.InterestRate); err != nil {
		return nil, err
	}

	now := s.now()
	startDate := utils.StartOfDay(now)
	if request.StartDate != nil {
		startDate = *request.StartDate
	}

	plan := &domain.InstallmentPlan{
		ID:            uuid.New(),
		CustomerID:    request.CustomerID,
		CustomerEmail: request.CustomerEmail,
		TotalAmount:   request.TotalAmount,
		DownPayment:   request.DownPayment,
		TermMonths:    request.TermMonths,
		InterestRate:  request.InterestRate,
		Status:        domain.PlanStatusActive,
		StartDate:     startDate,
		Notes:         request.Notes,
		SaleID:        request.SaleID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	reminders := s.buildSchedule(plan, now)

	if err := s.PlanRepo.Create(ctx, plan, reminders); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateSummaries(ctx)
	s.publishPlan(ctx, event.RoutingKeyPlanCreated, plan)

	s.logger.WithFields(logrus.Fields{
		"plan_id":     plan.ID,
		"customer_id": plan.CustomerID,
		"term_months": plan.TermMonths,
	}).Info("Installment plan created")

	return plan, nil
}

// PreviewSchedule generates a schedule without persisting anything.
func (s *InstallmentService) PreviewSchedule(request *domain.SchedulePreviewRequest) (*domain.SchedulePreviewResponse, error) {
	if err := s.validateTerms(request.TotalAmount, request.DownPayment, request.TermMonths, request.InterestRate); err != nil {
		return nil, err
	}

	startDate := utils.StartOfDay(s.now())
	if request.StartDate != nil {
		startDate = *request.StartDate
	}

	payments := schedule.GenerateSchedule(request.TotalAmount, request.DownPayment, request.TermMonths, request.InterestRate, startDate)
	financed := request.TotalAmount.Sub(request.DownPayment)

	return &domain.SchedulePreviewResponse{
		FinancedAmount: financed,
		MonthlyPayment: utils.CalculateMonthlyPayment(financed, request.InterestRate, request.TermMonths),
		TotalPayable:   request.DownPayment.Add(schedule.Total(payments)),
		EndDate:        schedule.EndDate(startDate, request.TermMonths),
		Schedule:       payments,
	}, nil
}

// GetPlan returns a plan with its payments ordered by due date and carrying
// their effective status.
func (s *InstallmentService) GetPlan(ctx context.Context, planID string) (*domain.InstallmentPlan, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.view(plan), nil
}

func (s *InstallmentService) ListPlans(ctx context.Context, filter domain.PlanFilter) ([]*domain.InstallmentPlan, error) {
	if filter.Status != "" && !domain.IsValidPlanStatus(filter.Status) {
		return nil, customError.WrapInvalidStatus(filter.Status)
	}

	plans, err := s.PlanRepo.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return plans, nil
}

// UpdatePlan changes contact data, notes and status of a plan. Changing the
// financial terms regenerates the schedule, which is only allowed while no
// installment has been paid.
func (s *InstallmentService) UpdatePlan(ctx context.Context, planID string, request *domain.UpdatePlanRequest) (*domain.InstallmentPlan, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.updatePlan(ctx, plan, request)
}

// CancelPlan cancels an open plan and every installment that is still
// outstanding.
func (s *InstallmentService) CancelPlan(ctx context.Context, planID string) (*domain.InstallmentPlan, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsOpen() {
		return nil, customError.WrapPlanNotActive(plan.ID.String(), plan.Status)
	}

	status := domain.PlanStatusCancelled
	return s.updatePlan(ctx, plan, &domain.UpdatePlanRequest{Status: &status})
}

func (s *InstallmentService) updatePlan(ctx context.Context, plan *domain.InstallmentPlan, request *domain.UpdatePlanRequest) (*domain.InstallmentPlan, error) {
	var err error
	planID := plan.ID.String()
	now := s.now()
	previousStatus := plan.Status

	if request.CustomerEmail != nil {
		plan.CustomerEmail = request.CustomerEmail
	}
	if request.Notes != nil {
		plan.Notes = *request.Notes
	}

	var reminders []*domain.PaymentReminder
	regenerated := request.ChangesTerms()
	if regenerated {
		reminders, err = s.regenerate(plan, request, now)
		if err != nil {
			return nil, err
		}
	}

	var changed []*domain.InstallmentPayment
	if request.Status != nil && *request.Status != plan.Status {
		changed, err = s.transition(plan, *request.Status, now)
		if err != nil {
			return nil, err
		}
	}

	plan.UpdatedAt = now
	if regenerated {
		err = s.PlanRepo.ReplaceSchedule(ctx, plan, reminders)
	} else {
		err = s.PlanRepo.Update(ctx, plan, changed)
	}
	if err != nil {
		return nil, s.repoError(err, planID)
	}

	s.invalidateSummaries(ctx)
	if plan.Status != previousStatus {
		s.publishStatusChange(ctx, plan)
	}

	s.logger.WithFields(logrus.Fields{
		"plan_id":     plan.ID,
		"status":      plan.Status,
		"regenerated": regenerated,
	}).Info("Installment plan updated")

	return s.view(plan), nil
}

// DeletePlan removes a plan with its payments and reminders.
func (s *InstallmentService) DeletePlan(ctx context.Context, planID string) error {
	id, err := uuid.Parse(planID)
	if err != nil {
		return customError.WrapPlanNotFound(planID)
	}

	if err = s.PlanRepo.Delete(ctx, id); err != nil {
		return s.repoError(err, planID)
	}

	s.invalidateSummaries(ctx)
	s.logger.WithField("plan_id", planID).Info("Installment plan deleted")
	return nil
}

// GetPlanProgress summarises paid, pending and overdue installments of a plan.
func (s *InstallmentService) GetPlanProgress(ctx context.Context, planID string) (*domain.PlanProgress, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	progress := report.Progress(plan, s.now())
	return &progress, nil
}

func (s *InstallmentService) validateTerms(total, down decimal.Decimal, termMonths int, rate decimal.Decimal) error {
	if !total.IsPositive() {
		return customError.WrapInvalidPlan("total amount must be greater than 0")
	}
	if down.IsNegative() {
		return customError.WrapInvalidPlan("down payment must not be negative")
	}
	if down.GreaterThanOrEqual(total) {
		return customError.WrapInvalidPlan("down payment must be less than the total amount")
	}
	if termMonths <= 0 {
		return customError.WrapInvalidPlan("term must be at least one month")
	}
	if rate.IsNegative() || rate.GreaterThan(s.config.GetMaxInterestRate()) {
		return customError.WrapInvalidPlan("interest rate must be between 0 and " + s.config.GetMaxInterestRate().String())
	}
	return nil
}

// buildSchedule fills the plan's payments, balance and end date and returns
// the reminders for the new schedule.
func (s *InstallmentService) buildSchedule(plan *domain.InstallmentPlan, now time.Time) []*domain.PaymentReminder {
	payments := schedule.GenerateSchedule(plan.TotalAmount, plan.DownPayment, plan.TermMonths, plan.InterestRate, plan.StartDate)
	for _, p := range payments {
		p.PlanID = plan.ID
		p.CreatedAt = now
		p.UpdatedAt = now
	}

	plan.Payments = payments
	plan.RemainingBalance = remainingBalance(plan)
	plan.EndDate = schedule.EndDate(plan.StartDate, plan.TermMonths)

	return s.planner.PlanAll(payments, now)
}

func (s *InstallmentService) regenerate(plan *domain.InstallmentPlan, request *domain.UpdatePlanRequest, now time.Time) ([]*domain.PaymentReminder, error) {
	if !plan.IsOpen() {
		return nil, customError.WrapPlanNotActive(plan.ID.String(), plan.Status)
	}
	for _, p := range plan.Payments {
		if p.Status == domain.PaymentStatusPaid {
			return nil, customError.WrapScheduleLocked(plan.ID.String())
		}
	}

	if request.TotalAmount != nil {
		plan.TotalAmount = *request.TotalAmount
	}
	if request.DownPayment != nil {
		plan.DownPayment = *request.DownPayment
	}
	if request.TermMonths != nil {
		plan.TermMonths = *request.TermMonths
	}
	if request.InterestRate != nil {
		plan.InterestRate = *request.InterestRate
	}
	if request.StartDate != nil {
		plan.StartDate = *request.StartDate
	}

	if err := s.validateTerms(plan.TotalAmount, plan.DownPayment, plan.TermMonths, plan.InterestRate); err != nil {
		return nil, err
	}

	return s.buildSchedule(plan, now), nil
}

// transition applies a manual plan status change and returns the payments it
// touched.
func (s *InstallmentService) transition(plan *domain.InstallmentPlan, status string, now time.Time) ([]*domain.InstallmentPayment, error) {
	if plan.Status == domain.PlanStatusCancelled {
		return nil, customError.WrapPlanNotActive(plan.ID.String(), plan.Status)
	}

	switch status {
	case domain.PlanStatusCancelled:
		var changed []*domain.InstallmentPayment
		for _, p := range plan.Payments {
			if isOutstanding(p) {
				p.Status = domain.PaymentStatusCancelled
				p.UpdatedAt = now
				changed = append(changed, p)
			}
		}
		plan.Status = domain.PlanStatusCancelled
		plan.RemainingBalance = remainingBalance(plan)
		return changed, nil

	case domain.PlanStatusCompleted:
		if !isSettled(plan.Payments) {
			return nil, customError.WrapInvalidStatus(status)
		}
		plan.Status = status
		return nil, nil

	case domain.PlanStatusActive, domain.PlanStatusDefaulted:
		if plan.Status == domain.PlanStatusCompleted {
			return nil, customError.WrapInvalidStatus(status)
		}
		plan.Status = status
		return nil, nil
	}

	return nil, customError.WrapInvalidStatus(status)
}

// loadPlan fetches a plan with its payments as stored.
func (s *InstallmentService) loadPlan(ctx context.Context, planID string) (*domain.InstallmentPlan, error) {
	id, err := uuid.Parse(planID)
	if err != nil {
		return nil, customError.WrapPlanNotFound(planID)
	}

	plan, err := s.PlanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.repoError(err, planID)
	}
	return plan, nil
}

// view returns a copy of the plan whose payments carry their effective status
// and are ordered by due date.
func (s *InstallmentService) view(plan *domain.InstallmentPlan) *domain.InstallmentPlan {
	out := *plan
	out.Payments = report.WithEffectiveStatus(plan.Payments, s.now())
	report.SortByDueDate(out.Payments)
	return &out
}

func (s *InstallmentService) repoError(err error, planID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return customError.WrapPlanNotFound(planID)
	}
	return customError.WrapDatabaseError(err)
}

func (s *InstallmentService) invalidateSummaries(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, summaryCachePrefix); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate summary cache")
	}
}

func (s *InstallmentService) publishPlan(ctx context.Context, routingKey string, plan *domain.InstallmentPlan) {
	err := s.publisher.PublishPlanEvent(ctx, routingKey, event.PlanEvent{
		PlanID:           plan.ID.String(),
		CustomerID:       plan.CustomerID,
		Status:           plan.Status,
		RemainingBalance: plan.RemainingBalance,
		Timestamp:        s.now(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("routing_key", routingKey).Warn("Failed to publish plan event")
	}
}

func (s *InstallmentService) publishStatusChange(ctx context.Context, plan *domain.InstallmentPlan) {
	switch plan.Status {
	case domain.PlanStatusCancelled:
		s.publishPlan(ctx, event.RoutingKeyPlanCancelled, plan)
	case domain.PlanStatusCompleted:
		s.publishPlan(ctx, event.RoutingKeyPlanCompleted, plan)
	case domain.PlanStatusDefaulted:
		s.publishPlan(ctx, event.RoutingKeyPlanDefaulted, plan)
	}
}

func isOutstanding(p *domain.InstallmentPayment) bool {
	return p.Status == domain.PaymentStatusPending || p.Status == domain.PaymentStatusOverdue
}

// remainingBalance is the financed amount less every paid installment.
// Cancelled installments still count as owed.
func remainingBalance(plan *domain.InstallmentPlan) decimal.Decimal {
	balance := plan.FinancedAmount()
	for _, p := range plan.Payments {
		if p.Status == domain.PaymentStatusPaid {
			balance = balance.Sub(p.Amount)
		}
	}
	return balance
}

// isSettled reports whether nothing is outstanding and at least one
// installment was paid.
func isSettled(payments []*domain.InstallmentPayment) bool {
	paid := false
	for _, p := range payments {
		if isOutstanding(p) {
			return false
		}
		if p.Status == domain.PaymentStatusPaid {
			paid = true
		}
	}
	return paid
}
