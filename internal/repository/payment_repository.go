package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/installment-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM installment_payments
		WHERE id = $1
	`

	var payment domain.InstallmentPayment
	err := r.db.GetContext(ctx, &payment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context) ([]*domain.InstallmentPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM installment_payments
		ORDER BY due_date, sequence
	`

	payments := []*domain.InstallmentPayment{}
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) MarkOverdue(ctx context.Context, asOf time.Time) ([]*domain.InstallmentPayment, error) {
	query := `
		UPDATE installment_payments
		SET status = 'overdue', updated_at = NOW()
		WHERE status = 'pending' AND due_date < $1
		RETURNING ` + paymentColumns

	payments := []*domain.InstallmentPayment{}
	if err := r.db.SelectContext(ctx, &payments, query, asOf); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) CountOverdueByPlan(ctx context.Context, planIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(planIDs))
	if len(planIDs) == 0 {
		return counts, nil
	}

	ids := make([]string, 0, len(planIDs))
	for _, id := range planIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT plan_id, COUNT(*) AS overdue
		FROM installment_payments
		WHERE status = 'overdue' AND plan_id = ANY($1::uuid[])
		GROUP BY plan_id
	`

	var rows []struct {
		PlanID  uuid.UUID `db:"plan_id"`
		Overdue int       `db:"overdue"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.PlanID] = row.Overdue
	}
	return counts, nil
}
