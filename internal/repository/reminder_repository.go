package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/installment-engine/internal/domain"
)

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) ListDue(ctx context.Context, asOf time.Time, limit int) ([]*domain.DueReminder, error) {
	query := `
		SELECT r.id, r.payment_id, r.reminder_date, r.sent, r.reminder_type, r.message, r.created_at,
			p.status AS payment_status, p.amount AS payment_amount, p.due_date AS payment_due_date,
			pl.id AS plan_id, pl.customer_id, pl.customer_email
		FROM payment_reminders r
		JOIN installment_payments p ON p.id = r.payment_id
		JOIN installment_plans pl ON pl.id = p.plan_id
		WHERE r.sent = FALSE AND r.reminder_date <= $1
		ORDER BY r.reminder_date
		LIMIT $2
	`

	reminders := []*domain.DueReminder{}
	if err := r.db.SelectContext(ctx, &reminders, query, asOf, limit); err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE payment_reminders SET sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
