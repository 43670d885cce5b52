package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusOverdue   = "overdue"
	PaymentStatusCancelled = "cancelled"
)

// Payment methods
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodOther    = "other"
)

// InstallmentPayment represents one scheduled payment of a plan
type InstallmentPayment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	PlanID        uuid.UUID       `json:"plan_id" db:"plan_id"`
	Sequence      int             `json:"sequence" db:"sequence"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty" db:"payment_date"`
	Status        string          `json:"status" db:"status"` // pending, paid, overdue, cancelled
	PaymentMethod *string         `json:"payment_method,omitempty" db:"payment_method"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// EffectiveDate is the payment date when recorded, the due date otherwise.
func (p *InstallmentPayment) EffectiveDate() time.Time {
	if p.PaymentDate != nil {
		return *p.PaymentDate
	}
	return p.DueDate
}

// IsValidPaymentStatus checks a status string against the known payment statuses
func IsValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue, PaymentStatusCancelled:
		return true
	}
	return false
}

type RecordPaymentRequest struct {
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	PaymentMethod string     `json:"payment_method" validate:"required,oneof=cash card transfer other"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdatePaymentStatusRequest struct {
	Status        string  `json:"status" validate:"required,oneof=pending paid overdue cancelled"`
	PaymentMethod *string `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card transfer other"`
}
