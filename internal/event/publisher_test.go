package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingConn struct{ err error }

func (c failingConn) Channel() (*amqp.Channel, error) { return nil, c.err }

func newTestLogger(buf *bytes.Buffer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(newTestLogger(&buf))

	err := p.PublishPlanEvent(context.Background(), RoutingKeyPlanCreated, PlanEvent{
		PlanID:           "plan-1",
		Status:           "active",
		RemainingBalance: decimal.NewFromInt(900),
		Timestamp:        time.Now(),
	})
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, RoutingKeyPlanCreated, entry["routing_key"])
	assert.Equal(t, "plan-1", entry["plan_id"])
}

func TestNewRabbitMQPublisher_Validation(t *testing.T) {
	logger := newTestLogger(&bytes.Buffer{})

	_, err := NewRabbitMQPublisher(nil, "installments", logger)
	assert.Error(t, err)
}

func TestRabbitMQPublisher_ChannelError(t *testing.T) {
	var buf bytes.Buffer
	p := &RabbitMQPublisher{
		conn:     failingConn{err: errors.New("connection closed")},
		exchange: "installments",
		logger:   newTestLogger(&buf).WithField("component", "event_publisher"),
	}

	err := p.PublishPaymentEvent(context.Background(), RoutingKeyPaymentRecorded, PaymentEvent{PaymentID: "pay-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open channel")
	assert.Contains(t, buf.String(), RoutingKeyPaymentRecorded)
}
