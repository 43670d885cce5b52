package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusCancelled = "cancelled"
	PlanStatusDefaulted = "defaulted"
)

// InstallmentPlan represents an installment plan entity
type InstallmentPlan struct {
	ID               uuid.UUID             `json:"id" db:"id"`
	CustomerID       string                `json:"customer_id" db:"customer_id"`
	CustomerEmail    *string               `json:"customer_email,omitempty" db:"customer_email"`
	TotalAmount      decimal.Decimal       `json:"total_amount" db:"total_amount"`
	DownPayment      decimal.Decimal       `json:"down_payment" db:"down_payment"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance" db:"remaining_balance"`
	TermMonths       int                   `json:"term_months" db:"term_months"`
	InterestRate     decimal.Decimal       `json:"interest_rate" db:"interest_rate"` // annual, percent
	Status           string                `json:"status" db:"status"`
	StartDate        time.Time             `json:"start_date" db:"start_date"`
	EndDate          time.Time             `json:"end_date" db:"end_date"`
	Notes            string                `json:"notes" db:"notes"`
	SaleID           *string               `json:"sale_id,omitempty" db:"sale_id"`
	CreatedAt        time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at" db:"updated_at"`
	Payments         []*InstallmentPayment `json:"payments,omitempty" db:"-"`
}

// FinancedAmount is the part of the total that is paid through installments.
func (p *InstallmentPlan) FinancedAmount() decimal.Decimal {
	return p.TotalAmount.Sub(p.DownPayment)
}

// IsOpen reports whether payments can still be recorded against the plan.
func (p *InstallmentPlan) IsOpen() bool {
	return p.Status == PlanStatusActive || p.Status == PlanStatusDefaulted
}

// IsValidPlanStatus checks a status string against the known plan statuses
func IsValidPlanStatus(status string) bool {
	switch status {
	case PlanStatusActive, PlanStatusCompleted, PlanStatusCancelled, PlanStatusDefaulted:
		return true
	}
	return false
}

// DTOs for requests and responses

type CreatePlanRequest struct {
	CustomerID    string          `json:"customer_id" validate:"required"`
	CustomerEmail *string         `json:"customer_email,omitempty" validate:"omitempty,email"`
	TotalAmount   decimal.Decimal `json:"total_amount" validate:"decimal_gt=0"`
	DownPayment   decimal.Decimal `json:"down_payment" validate:"decimal_gte=0"`
	TermMonths    int             `json:"term_months" validate:"required,gt=0,lte=600"`
	InterestRate  decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	Notes         string          `json:"notes" validate:"max=2000"`
	SaleID        *string         `json:"sale_id,omitempty"`
}

type UpdatePlanRequest struct {
	CustomerEmail *string          `json:"customer_email,omitempty" validate:"omitempty,email"`
	Notes         *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Status        *string          `json:"status,omitempty" validate:"omitempty,oneof=active completed cancelled defaulted"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"`
	DownPayment   *decimal.Decimal `json:"down_payment,omitempty"`
	TermMonths    *int             `json:"term_months,omitempty" validate:"omitempty,gt=0,lte=600"`
	InterestRate  *decimal.Decimal `json:"interest_rate,omitempty"`
	StartDate     *time.Time       `json:"start_date,omitempty"`
}

// ChangesTerms reports whether the request touches the financial terms of a plan.
func (r *UpdatePlanRequest) ChangesTerms() bool {
	return r.TotalAmount != nil || r.DownPayment != nil || r.TermMonths != nil ||
		r.InterestRate != nil || r.StartDate != nil
}

type PlanFilter struct {
	Status     string
	CustomerID string
}

type SchedulePreviewRequest struct {
	TotalAmount  decimal.Decimal `json:"total_amount" validate:"decimal_gt=0"`
	DownPayment  decimal.Decimal `json:"down_payment" validate:"decimal_gte=0"`
	TermMonths   int             `json:"term_months" validate:"required,gt=0,lte=600"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0"`
	StartDate    *time.Time      `json:"start_date,omitempty"`
}

type SchedulePreviewResponse struct {
	FinancedAmount decimal.Decimal       `json:"financed_amount"`
	MonthlyPayment decimal.Decimal       `json:"monthly_payment"`
	TotalPayable   decimal.Decimal       `json:"total_payable"`
	EndDate        time.Time             `json:"end_date"`
	Schedule       []*InstallmentPayment `json:"schedule"`
}
