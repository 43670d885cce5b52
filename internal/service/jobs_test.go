package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/event"
	"github.com/segyhp/installment-engine/internal/notify"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

func TestGetSummary_CachesPerRange(t *testing.T) {
	f := newFixture(t)
	plan := testPlan(100, 200, 300)
	markPaid(plan.Payments[0])

	f.plans.On("List", mock.Anything, domain.PlanFilter{}).Return([]*domain.InstallmentPlan{plan}, nil).Once()
	f.payments.On("List", mock.Anything).Return(plan.Payments, nil).Once()

	first, err := f.svc.GetSummary(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, domain.TimeRangeAll, first.TimeRange)
	assert.True(t, first.TotalCollected.Equal(decimal.NewFromInt(100)))
	assert.True(t, first.TotalOverdue.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 1, first.ActivePlanCount)

	second, err := f.svc.GetSummary(context.Background(), domain.TimeRangeAll)
	require.NoError(t, err)
	assert.True(t, second.TotalCollected.Equal(first.TotalCollected))
	assert.Equal(t, first.PaymentCount, second.PaymentCount)

	f.plans.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}

func TestGetSummary_InvalidRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetSummary(context.Background(), "week")
	assert.ErrorIs(t, err, customError.ErrInvalidTimeRange)
	f.payments.AssertNotCalled(t, "List", mock.Anything)
}

func TestGetSummary_DatabaseError(t *testing.T) {
	f := newFixture(t)
	f.plans.On("List", mock.Anything, domain.PlanFilter{}).Return(nil, errors.New("timeout")).Once()

	_, err := f.svc.GetSummary(context.Background(), domain.TimeRangeMonth)
	assert.Equal(t, customError.ErrCodeDatabaseError, customError.Code(err))
}

func TestGetReport(t *testing.T) {
	f := newFixture(t)
	plan := testPlan(100, 200, 300, 400)
	payments := []*domain.InstallmentPayment{plan.Payments[2], plan.Payments[0], plan.Payments[1], plan.Payments[3]}
	f.payments.On("List", mock.Anything).Return(payments, nil).Once()

	result, err := f.svc.GetReport(context.Background(), day(2024, 1, 1), day(2024, 4, 1))
	require.NoError(t, err)

	// open interval: Jan 1 and Apr 1 are excluded
	require.Len(t, result.Payments, 2)
	assert.Equal(t, 2, result.Payments[0].Sequence)
	assert.Equal(t, 3, result.Payments[1].Sequence)
	assert.True(t, result.Summary.TotalAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 2, result.Summary.OverdueCount)
}

func TestGetReport_InvalidDateRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetReport(context.Background(), day(2024, 4, 1), day(2024, 1, 1))
	assert.ErrorIs(t, err, customError.ErrInvalidDateRange)

	_, err = f.svc.GetReport(context.Background(), day(2024, 4, 1), day(2024, 4, 1))
	assert.ErrorIs(t, err, customError.ErrInvalidDateRange)
}

func TestMarkOverduePayments_DefaultsPlansAtThreshold(t *testing.T) {
	f := newFixture(t)
	risky := testPlan(100, 100, 100)
	fine := testPlan(100, 100)

	marked := []*domain.InstallmentPayment{risky.Payments[0], risky.Payments[1], fine.Payments[0]}
	f.payments.On("MarkOverdue", mock.Anything, day(2024, 3, 15)).Return(marked, nil).Once()
	f.payments.On("CountOverdueByPlan", mock.Anything, []uuid.UUID{risky.ID, fine.ID}).
		Return(map[uuid.UUID]int{risky.ID: 2, fine.ID: 1}, nil).Once()
	f.plans.On("GetByID", mock.Anything, risky.ID).Return(risky, nil).Once()
	f.plans.On("Update", mock.Anything, risky, mock.Anything).Return(nil).Once()

	count, err := f.svc.MarkOverduePayments(context.Background(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 3, count)
	assert.Equal(t, domain.PlanStatusDefaulted, risky.Status)
	assert.Equal(t, domain.PlanStatusActive, fine.Status)

	f.payments.AssertExpectations(t)
	f.plans.AssertExpectations(t)
	f.plans.AssertNotCalled(t, "GetByID", mock.Anything, fine.ID)
	f.publisher.AssertCalled(t, "PublishPlanEvent", mock.Anything, event.RoutingKeyPlanDefaulted, mock.Anything)
}

func TestMarkOverduePayments_NothingDue(t *testing.T) {
	f := newFixture(t)
	f.payments.On("MarkOverdue", mock.Anything, mock.Anything).Return([]*domain.InstallmentPayment{}, nil).Once()

	count, err := f.svc.MarkOverduePayments(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Zero(t, count)
	f.payments.AssertNotCalled(t, "CountOverdueByPlan", mock.Anything, mock.Anything)
}

func dueReminder(kind, paymentStatus string, due time.Time) *domain.DueReminder {
	email := "buyer@example.com"
	return &domain.DueReminder{
		PaymentReminder: domain.PaymentReminder{ID: uuid.New(), PaymentID: uuid.New(), Type: kind},
		PaymentStatus:   paymentStatus,
		PaymentAmount:   decimal.NewFromInt(100),
		PaymentDueDate:  due,
		CustomerEmail:   &email,
	}
}

func TestDispatchReminders(t *testing.T) {
	f := newFixture(t)

	alreadyPaid := dueReminder(domain.ReminderTypeDue, domain.PaymentStatusPaid, day(2024, 3, 15))
	upcoming := dueReminder(domain.ReminderTypeUpcoming, domain.PaymentStatusPending, day(2024, 3, 18))
	failing := dueReminder(domain.ReminderTypeOverdue, domain.PaymentStatusOverdue, day(2024, 3, 1))
	noEmail := dueReminder(domain.ReminderTypeDue, domain.PaymentStatusPending, day(2024, 3, 15))
	noEmail.CustomerEmail = nil

	f.reminders.On("ListDue", mock.Anything, fixedNow, 50).
		Return([]*domain.DueReminder{alreadyPaid, upcoming, failing, noEmail}, nil).Once()
	f.notifier.On("SendReminder", mock.Anything, upcoming).Return(nil).Once()
	f.notifier.On("SendReminder", mock.Anything, failing).Return(errors.New("smtp down")).Once()
	f.notifier.On("SendReminder", mock.Anything, noEmail).Return(notify.ErrNoRecipient).Once()
	f.reminders.On("MarkSent", mock.Anything, alreadyPaid.ID).Return(nil).Once()
	f.reminders.On("MarkSent", mock.Anything, upcoming.ID).Return(nil).Once()
	f.reminders.On("MarkSent", mock.Anything, noEmail.ID).Return(nil).Once()

	delivered, err := f.svc.DispatchReminders(context.Background(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 1, delivered)
	f.notifier.AssertExpectations(t)
	f.reminders.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "SendReminder", mock.Anything, alreadyPaid)
	f.reminders.AssertNotCalled(t, "MarkSent", mock.Anything, failing.ID)
}
