package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/installment-engine/internal/domain"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("record not found")

// PlanRepository defines the interface for installment plan data operations
type PlanRepository interface {
	// Create stores a plan together with its schedule and reminders in one transaction
	Create(ctx context.Context, plan *domain.InstallmentPlan, reminders []*domain.PaymentReminder) error

	// GetByID retrieves a plan with its payments ordered by sequence
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentPlan, error)

	// List retrieves plans matching the filter, without payments
	List(ctx context.Context, filter domain.PlanFilter) ([]*domain.InstallmentPlan, error)

	// Update saves the plan row and the given payments in one transaction
	Update(ctx context.Context, plan *domain.InstallmentPlan, payments []*domain.InstallmentPayment) error

	// ReplaceSchedule saves the plan row and swaps its payments and reminders for new ones
	ReplaceSchedule(ctx context.Context, plan *domain.InstallmentPlan, reminders []*domain.PaymentReminder) error

	// Delete removes a plan, its payments and reminders
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for installment payment data operations
type PaymentRepository interface {
	// GetByID retrieves a single payment
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentPayment, error)

	// List retrieves all payments
	List(ctx context.Context) ([]*domain.InstallmentPayment, error)

	// MarkOverdue flips pending payments due before asOf to overdue and returns them
	MarkOverdue(ctx context.Context, asOf time.Time) ([]*domain.InstallmentPayment, error)

	// CountOverdueByPlan returns the number of overdue payments per plan
	CountOverdueByPlan(ctx context.Context, planIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// ReminderRepository defines the interface for payment reminder data operations
type ReminderRepository interface {
	// ListDue retrieves unsent reminders whose date is at or before asOf
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]*domain.DueReminder, error)

	// MarkSent flips the sent flag of a reminder
	MarkSent(ctx context.Context, id uuid.UUID) error
}
