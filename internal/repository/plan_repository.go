package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/installment-engine/internal/domain"
)

const planColumns = `id, customer_id, customer_email, total_amount, down_payment, remaining_balance,
	term_months, interest_rate, status, start_date, end_date, notes, sale_id, created_at, updated_at`

const paymentColumns = `id, plan_id, sequence, amount, due_date, payment_date, status,
	payment_method, notes, created_at, updated_at`

type planRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *domain.InstallmentPlan, reminders []*domain.PaymentReminder) error {
	query := `
		INSERT INTO installment_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, query,
		plan.ID,
		plan.CustomerID,
		plan.CustomerEmail,
		plan.TotalAmount,
		plan.DownPayment,
		plan.RemainingBalance,
		plan.TermMonths,
		plan.InterestRate,
		plan.Status,
		plan.StartDate,
		plan.EndDate,
		plan.Notes,
		plan.SaleID,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertSchedule(ctx, tx, plan.Payments, reminders); err != nil {
		return err
	}

	return tx.Commit()
}

func insertSchedule(ctx context.Context, tx *sqlx.Tx, payments []*domain.InstallmentPayment, reminders []*domain.PaymentReminder) error {
	paymentQuery := `
		INSERT INTO installment_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, payment := range payments {
		_, err := tx.ExecContext(ctx, paymentQuery,
			payment.ID,
			payment.PlanID,
			payment.Sequence,
			payment.Amount,
			payment.DueDate,
			payment.PaymentDate,
			payment.Status,
			payment.PaymentMethod,
			payment.Notes,
			payment.CreatedAt,
			payment.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	reminderQuery := `
		INSERT INTO payment_reminders (id, payment_id, reminder_date, sent, reminder_type, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, reminder := range reminders {
		_, err := tx.ExecContext(ctx, reminderQuery,
			reminder.ID,
			reminder.PaymentID,
			reminder.ReminderDate,
			reminder.Sent,
			reminder.Type,
			reminder.Message,
			reminder.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM installment_plans
		WHERE id = $1
	`

	var plan domain.InstallmentPlan
	err := r.db.GetContext(ctx, &plan, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	paymentQuery := `
		SELECT ` + paymentColumns + `
		FROM installment_payments
		WHERE plan_id = $1
		ORDER BY sequence
	`

	var payments []*domain.InstallmentPayment
	if err = r.db.SelectContext(ctx, &payments, paymentQuery, id); err != nil {
		return nil, err
	}
	plan.Payments = payments

	return &plan, nil
}

func (r *planRepository) List(ctx context.Context, filter domain.PlanFilter) ([]*domain.InstallmentPlan, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, "customer_id = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + planColumns + ` FROM installment_plans`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	plans := []*domain.InstallmentPlan{}
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, plan *domain.InstallmentPlan, payments []*domain.InstallmentPayment) error {
	query := `
		UPDATE installment_plans
		SET customer_email = $2, total_amount = $3, down_payment = $4, remaining_balance = $5,
			term_months = $6, interest_rate = $7, status = $8, start_date = $9, end_date = $10,
			notes = $11, updated_at = $12
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query,
		plan.ID,
		plan.CustomerEmail,
		plan.TotalAmount,
		plan.DownPayment,
		plan.RemainingBalance,
		plan.TermMonths,
		plan.InterestRate,
		plan.Status,
		plan.StartDate,
		plan.EndDate,
		plan.Notes,
		plan.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if err = expectOneRow(res); err != nil {
		return err
	}

	paymentQuery := `
		UPDATE installment_payments
		SET status = $2, payment_date = $3, payment_method = $4, notes = $5, updated_at = $6
		WHERE id = $1
	`

	for _, payment := range payments {
		_, err = tx.ExecContext(ctx, paymentQuery,
			payment.ID,
			payment.Status,
			payment.PaymentDate,
			payment.PaymentMethod,
			payment.Notes,
			payment.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *planRepository) ReplaceSchedule(ctx context.Context, plan *domain.InstallmentPlan, reminders []*domain.PaymentReminder) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// reminders go with their payments (ON DELETE CASCADE)
	if _, err = tx.ExecContext(ctx, `DELETE FROM installment_payments WHERE plan_id = $1`, plan.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE installment_plans
		SET customer_email = $2, total_amount = $3, down_payment = $4, remaining_balance = $5,
			term_months = $6, interest_rate = $7, status = $8, start_date = $9, end_date = $10,
			notes = $11, updated_at = $12
		WHERE id = $1
	`,
		plan.ID,
		plan.CustomerEmail,
		plan.TotalAmount,
		plan.DownPayment,
		plan.RemainingBalance,
		plan.TermMonths,
		plan.InterestRate,
		plan.Status,
		plan.StartDate,
		plan.EndDate,
		plan.Notes,
		plan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertSchedule(ctx, tx, plan.Payments, reminders); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *planRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM installment_plans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
