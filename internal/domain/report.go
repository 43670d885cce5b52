package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Named summary windows
const (
	TimeRangeMonth = "month"
	TimeRangeYear  = "year"
	TimeRangeAll   = "all"
)

// PaymentSummary aggregates payments inside a time window. It is never stored.
type PaymentSummary struct {
	TimeRange       string          `json:"time_range"`
	WindowStart     time.Time       `json:"window_start"`
	WindowEnd       time.Time       `json:"window_end"`
	TotalCollected  decimal.Decimal `json:"total_collected"`
	TotalPending    decimal.Decimal `json:"total_pending"`
	TotalOverdue    decimal.Decimal `json:"total_overdue"`
	ActivePlanCount int             `json:"active_plan_count"`
	CompletionRate  decimal.Decimal `json:"completion_rate"`
	PaymentCount    int             `json:"payment_count"`
	PaidCount       int             `json:"paid_count"`
}

// PaymentReport lists payments inside an explicit date range.
type PaymentReport struct {
	StartDate time.Time             `json:"start_date"`
	EndDate   time.Time             `json:"end_date"`
	Payments  []*InstallmentPayment `json:"payments"`
	Summary   ReportSummary         `json:"summary"`
}

type ReportSummary struct {
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	OverdueAmount   decimal.Decimal `json:"overdue_amount"`
	DelinquencyRate decimal.Decimal `json:"delinquency_rate"`
	PaymentCount    int             `json:"payment_count"`
	PaidCount       int             `json:"paid_count"`
	PendingCount    int             `json:"pending_count"`
	OverdueCount    int             `json:"overdue_count"`
}

// PlanProgress describes how far along a single plan is.
type PlanProgress struct {
	PlanID          string              `json:"plan_id"`
	Status          string              `json:"status"`
	PaidCount       int                 `json:"paid_count"`
	PendingCount    int                 `json:"pending_count"`
	OverdueCount    int                 `json:"overdue_count"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	OverdueAmount   decimal.Decimal     `json:"overdue_amount"`
	RemainingAmount decimal.Decimal     `json:"remaining_amount"`
	PercentComplete decimal.Decimal     `json:"percent_complete"`
	NextPayment     *InstallmentPayment `json:"next_payment,omitempty"`
}
