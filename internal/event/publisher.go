package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	RoutingKeyPlanCreated     = "installment.plan.created"
	RoutingKeyPaymentRecorded = "installment.payment.recorded"
	RoutingKeyPaymentReversed = "installment.payment.reversed"
	RoutingKeyPlanCompleted   = "installment.plan.completed"
	RoutingKeyPlanCancelled   = "installment.plan.cancelled"
	RoutingKeyPlanDefaulted   = "installment.plan.defaulted"

	publisherAppID = "installment-engine"
)

// Publisher emits installment lifecycle events.
type Publisher interface {
	PublishPlanEvent(ctx context.Context, routingKey string, event PlanEvent) error
	PublishPaymentEvent(ctx context.Context, routingKey string, event PaymentEvent) error
}

type PlanEvent struct {
	PlanID           string          `json:"planId"`
	CustomerID       string          `json:"customerId"`
	Status           string          `json:"status"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Timestamp        time.Time       `json:"timestamp"`
}

type PaymentEvent struct {
	PlanID      string          `json:"planId"`
	PaymentID   string          `json:"paymentId"`
	Sequence    int             `json:"sequence"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishPlanEvent(ctx context.Context, routingKey string, event PlanEvent) error {
	p.logger.WithFields(logrus.Fields{
		"routing_key": routingKey,
		"plan_id":     event.PlanID,
		"status":      event.Status,
	}).Info("Plan event")
	return nil
}

func (p *LogPublisher) PublishPaymentEvent(ctx context.Context, routingKey string, event PaymentEvent) error {
	p.logger.WithFields(logrus.Fields{
		"routing_key": routingKey,
		"plan_id":     event.PlanID,
		"payment_id":  event.PaymentID,
		"status":      event.Status,
	}).Info("Payment event")
	return nil
}
