package notify

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/domain"
)

func testReminder(kind string, to *string) *domain.DueReminder {
	return &domain.DueReminder{
		PaymentReminder: domain.PaymentReminder{
			ID:      uuid.New(),
			Type:    kind,
			Message: "Installment 2 of 1000.00 is due on 2024-03-01.",
		},
		PaymentAmount:  decimal.NewFromInt(1000),
		PaymentDueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CustomerID:     "cust-42",
		CustomerEmail:  to,
	}
}

func newSender(t *testing.T, send sendFunc) (*EmailSender, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	s := NewEmailSender(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "user",
		Password: "secret",
		From:     "billing@example.com",
	}, logger)
	s.send = send
	return s, &buf
}

func TestEmailSender_SendReminder(t *testing.T) {
	to := "buyer@example.com"

	var (
		gotAddr  string
		gotEmail *email.Email
	)
	s, _ := newSender(t, func(e *email.Email, addr string, auth smtp.Auth) error {
		gotAddr = addr
		gotEmail = e
		assert.NotNil(t, auth)
		return nil
	})

	err := s.SendReminder(context.Background(), testReminder(domain.ReminderTypeOverdue, &to))
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	require.NotNil(t, gotEmail)
	assert.Equal(t, []string{to}, gotEmail.To)
	assert.Equal(t, "billing@example.com", gotEmail.From)
	assert.Equal(t, "Overdue Installment Payment Notification", gotEmail.Subject)
	assert.Contains(t, string(gotEmail.Text), "Amount: 1000.00")
	assert.Contains(t, string(gotEmail.Text), "Due date: 2024-03-01")
}

func TestEmailSender_NoAddressSkips(t *testing.T) {
	called := false
	s, _ := newSender(t, func(e *email.Email, addr string, auth smtp.Auth) error {
		called = true
		return nil
	})

	empty := ""
	assert.ErrorIs(t, s.SendReminder(context.Background(), testReminder(domain.ReminderTypeDue, nil)), ErrNoRecipient)
	assert.ErrorIs(t, s.SendReminder(context.Background(), testReminder(domain.ReminderTypeDue, &empty)), ErrNoRecipient)
	assert.False(t, called)
}

func TestLogNotifier_SendReminder(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	n := NewLogNotifier(logger)

	to := "buyer@example.com"
	require.NoError(t, n.SendReminder(context.Background(), testReminder(domain.ReminderTypeUpcoming, &to)))
	assert.Contains(t, buf.String(), "Installment 2 of 1000.00")

	assert.ErrorIs(t, n.SendReminder(context.Background(), testReminder(domain.ReminderTypeUpcoming, nil)), ErrNoRecipient)
}

func TestEmailSender_SendError(t *testing.T) {
	to := "buyer@example.com"
	s, buf := newSender(t, func(e *email.Email, addr string, auth smtp.Auth) error {
		return errors.New("connection refused")
	})

	err := s.SendReminder(context.Background(), testReminder(domain.ReminderTypeUpcoming, &to))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, buf.String(), "Failed to send reminder email")
}

func TestBuildReminderEmail_Subjects(t *testing.T) {
	to := "x@example.com"
	tests := map[string]string{
		domain.ReminderTypeUpcoming: "Upcoming Installment Payment Reminder",
		domain.ReminderTypeDue:      "Installment Payment Due Today",
		domain.ReminderTypeOverdue:  "Overdue Installment Payment Notification",
	}
	for kind, subject := range tests {
		e := buildReminderEmail("from@example.com", to, testReminder(kind, &to))
		assert.Equal(t, subject, e.Subject, kind)
	}
}
