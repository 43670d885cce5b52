package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrPlanNotFound       = errors.New("installment plan not found")
	ErrPaymentNotFound    = errors.New("installment payment not found")
	ErrInvalidPlan        = errors.New("invalid installment plan")
	ErrPlanNotActive      = errors.New("installment plan is not active")
	ErrPaymentAlreadyPaid = errors.New("payment is already paid")
	ErrPaymentCancelled   = errors.New("payment is cancelled")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTimeRange   = errors.New("invalid time range")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrUnknownCurrency    = errors.New("unknown currency")
	ErrRatesUnavailable   = errors.New("exchange rates unavailable")
	ErrScheduleLocked     = errors.New("schedule cannot change after payments were recorded")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodePlanNotFound       = "PLAN_NOT_FOUND"
	ErrCodePaymentNotFound    = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidPlan        = "INVALID_PLAN"
	ErrCodePlanNotActive      = "PLAN_NOT_ACTIVE"
	ErrCodePaymentAlreadyPaid = "PAYMENT_ALREADY_PAID"
	ErrCodePaymentCancelled   = "PAYMENT_CANCELLED"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidTimeRange   = "INVALID_TIME_RANGE"
	ErrCodeInvalidDateRange   = "INVALID_DATE_RANGE"
	ErrCodeUnknownCurrency    = "UNKNOWN_CURRENCY"
	ErrCodeRatesUnavailable   = "RATES_UNAVAILABLE"
	ErrCodeScheduleLocked     = "SCHEDULE_LOCKED"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeInvalidAmount      = "INVALID_AMOUNT"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// Code extracts the business error code from err, or "" when err carries none
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapPlanNotFound(planID string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotFound,
		fmt.Sprintf("Installment plan with ID %s not found", planID),
		ErrPlanNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Installment payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapInvalidPlan(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPlan,
		reason,
		ErrInvalidPlan,
	)
}

func WrapPlanNotActive(planID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotActive,
		fmt.Sprintf("Installment plan %s is %s", planID, status),
		ErrPlanNotActive,
	)
}

func WrapPaymentAlreadyPaid(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentAlreadyPaid,
		fmt.Sprintf("Payment %s is already paid", paymentID),
		ErrPaymentAlreadyPaid,
	)
}

func WrapPaymentCancelled(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentCancelled,
		fmt.Sprintf("Payment %s is cancelled", paymentID),
		ErrPaymentCancelled,
	)
}

func WrapInvalidStatus(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatus,
		fmt.Sprintf("Status %q is not allowed here", status),
		ErrInvalidStatus,
	)
}

func WrapInvalidTimeRange(timeRange string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTimeRange,
		fmt.Sprintf("Time range %q must be one of month, year, all", timeRange),
		ErrInvalidTimeRange,
	)
}

func WrapInvalidDateRange(start, end string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDateRange,
		fmt.Sprintf("Start date %s must be before end date %s", start, end),
		ErrInvalidDateRange,
	)
}

func WrapUnknownCurrency(code string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnknownCurrency,
		fmt.Sprintf("Currency %s is not in the rate table", code),
		ErrUnknownCurrency,
	)
}

func WrapRatesUnavailable(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeRatesUnavailable,
		"Exchange rates could not be refreshed",
		fmt.Errorf("%w: %w", ErrRatesUnavailable, err),
	)
}

func WrapScheduleLocked(planID string) *BusinessError {
	return NewBusinessError(
		ErrCodeScheduleLocked,
		fmt.Sprintf("Installment plan %s already has recorded payments", planID),
		ErrScheduleLocked,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
