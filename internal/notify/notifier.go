package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/domain"
)

// ErrNoRecipient is returned for a reminder whose plan has no customer email.
var ErrNoRecipient = errors.New("reminder has no recipient")

// Notifier delivers a payment reminder to the plan's customer.
type Notifier interface {
	SendReminder(ctx context.Context, reminder *domain.DueReminder) error
}

// sendFunc matches (*email.Email).Send.
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// EmailSender sends reminders over SMTP.
type EmailSender struct {
	cfg    config.SMTPConfig
	logger *logrus.Logger
	send   sendFunc
}

func NewEmailSender(cfg config.SMTPConfig, logger *logrus.Logger) *EmailSender {
	return &EmailSender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (s *EmailSender) SendReminder(ctx context.Context, reminder *domain.DueReminder) error {
	if !hasRecipient(reminder) {
		return ErrNoRecipient
	}

	e := buildReminderEmail(s.cfg.From, *reminder.CustomerEmail, reminder)

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(e, addr, auth); err != nil {
		s.logger.WithError(err).WithField("to", *reminder.CustomerEmail).Error("Failed to send reminder email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"to":      *reminder.CustomerEmail,
		"subject": e.Subject,
	}).Info("Reminder email sent")
	return nil
}

func buildReminderEmail(from, to string, reminder *domain.DueReminder) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}

	switch reminder.Type {
	case domain.ReminderTypeOverdue:
		e.Subject = "Overdue Installment Payment Notification"
	case domain.ReminderTypeDue:
		e.Subject = "Installment Payment Due Today"
	default:
		e.Subject = "Upcoming Installment Payment Reminder"
	}

	body := fmt.Sprintf("Dear customer %s,\n\n", reminder.CustomerID)
	body += reminder.Message + "\n"
	body += fmt.Sprintf("Amount: %s\nDue date: %s\n",
		reminder.PaymentAmount.StringFixed(2),
		reminder.PaymentDueDate.Format("2006-01-02"),
	)
	if reminder.Type == domain.ReminderTypeOverdue {
		body += "Please make the payment as soon as possible.\n"
	}
	body += "\nBest regards,\nInstallments Team"
	e.Text = []byte(body)

	return e
}

// LogNotifier logs reminders instead of sending them.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendReminder(ctx context.Context, reminder *domain.DueReminder) error {
	if !hasRecipient(reminder) {
		return ErrNoRecipient
	}
	n.logger.WithFields(logrus.Fields{
		"reminder_id": reminder.ID,
		"type":        reminder.Type,
		"customer_id": reminder.CustomerID,
	}).Info(reminder.Message)
	return nil
}

func hasRecipient(reminder *domain.DueReminder) bool {
	return reminder.CustomerEmail != nil && *reminder.CustomerEmail != ""
}
