package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/event"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishPlanEvent(ctx context.Context, routingKey string, e event.PlanEvent) error {
	args := m.Called(ctx, routingKey, e)
	return args.Error(0)
}

func (m *MockPublisher) PublishPaymentEvent(ctx context.Context, routingKey string, e event.PaymentEvent) error {
	args := m.Called(ctx, routingKey, e)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendReminder(ctx context.Context, reminder *domain.DueReminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}
