package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReminderTypeUpcoming = "upcoming"
	ReminderTypeDue      = "due"
	ReminderTypeOverdue  = "overdue"
)

// PaymentReminder is a notification scheduled for a single payment
type PaymentReminder struct {
	ID           uuid.UUID `json:"id" db:"id"`
	PaymentID    uuid.UUID `json:"payment_id" db:"payment_id"`
	ReminderDate time.Time `json:"reminder_date" db:"reminder_date"`
	Sent         bool      `json:"sent" db:"sent"`
	Type         string    `json:"type" db:"reminder_type"`
	Message      string    `json:"message" db:"message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DueReminder joins a reminder with the payment and plan data needed to deliver it.
type DueReminder struct {
	PaymentReminder
	PaymentStatus  string          `db:"payment_status"`
	PaymentAmount  decimal.Decimal `db:"payment_amount"`
	PaymentDueDate time.Time       `db:"payment_due_date"`
	PlanID         uuid.UUID       `db:"plan_id"`
	CustomerID     string          `db:"customer_id"`
	CustomerEmail  *string         `db:"customer_email"`
}
