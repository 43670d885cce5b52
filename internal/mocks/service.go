package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/installment-engine/internal/currency"
	"github.com/segyhp/installment-engine/internal/domain"
)

type MockInstallmentService struct {
	mock.Mock
}

func (m *MockInstallmentService) CreatePlan(ctx context.Context, request *domain.CreatePlanRequest) (*domain.InstallmentPlan, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPlan), args.Error(1)
}

func (m *MockInstallmentService) PreviewSchedule(request *domain.SchedulePreviewRequest) (*domain.SchedulePreviewResponse, error) {
	args := m.Called(request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulePreviewResponse), args.Error(1)
}

func (m *MockInstallmentService) GetPlan(ctx context.Context, planID string) (*domain.InstallmentPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPlan), args.Error(1)
}

func (m *MockInstallmentService) ListPlans(ctx context.Context, filter domain.PlanFilter) ([]*domain.InstallmentPlan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InstallmentPlan), args.Error(1)
}

func (m *MockInstallmentService) UpdatePlan(ctx context.Context, planID string, request *domain.UpdatePlanRequest) (*domain.InstallmentPlan, error) {
	args := m.Called(ctx, planID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPlan), args.Error(1)
}

func (m *MockInstallmentService) CancelPlan(ctx context.Context, planID string) (*domain.InstallmentPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPlan), args.Error(1)
}

func (m *MockInstallmentService) DeletePlan(ctx context.Context, planID string) error {
	args := m.Called(ctx, planID)
	return args.Error(0)
}

func (m *MockInstallmentService) GetPlanProgress(ctx context.Context, planID string) (*domain.PlanProgress, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanProgress), args.Error(1)
}

func (m *MockInstallmentService) RecordPayment(ctx context.Context, planID, paymentID string, request *domain.RecordPaymentRequest) (*domain.InstallmentPayment, error) {
	args := m.Called(ctx, planID, paymentID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPayment), args.Error(1)
}

func (m *MockInstallmentService) UpdatePaymentStatus(ctx context.Context, paymentID string, request *domain.UpdatePaymentStatusRequest) (*domain.InstallmentPayment, error) {
	args := m.Called(ctx, paymentID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPayment), args.Error(1)
}

func (m *MockInstallmentService) GetSummary(ctx context.Context, timeRange string) (*domain.PaymentSummary, error) {
	args := m.Called(ctx, timeRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentSummary), args.Error(1)
}

func (m *MockInstallmentService) GetReport(ctx context.Context, startDate, endDate time.Time) (*domain.PaymentReport, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReport), args.Error(1)
}

type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) Rates() *currency.RateTable {
	args := m.Called()
	return args.Get(0).(*currency.RateTable)
}

func (m *MockCurrencyService) Convert(amount decimal.Decimal, from, to string) (*domain.CurrencyConversion, error) {
	args := m.Called(amount, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrencyConversion), args.Error(1)
}
