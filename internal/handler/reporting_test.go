package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-engine/internal/currency"
	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/mocks"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

func TestInstallmentHandler_GetSummary(t *testing.T) {
	t.Run("passes range through", func(t *testing.T) {
		svc := new(mocks.MockInstallmentService)
		svc.On("GetSummary", mock.Anything, domain.TimeRangeMonth).Return(&domain.PaymentSummary{
			TimeRange:      domain.TimeRangeMonth,
			TotalCollected: decimal.NewFromInt(500),
		}, nil).Once()

		rec := doRequest(t, newTestRouter(svc, nil), http.MethodGet, "/api/v1/payments/summary?range=month", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data domain.PaymentSummary `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Data.TotalCollected.Equal(decimal.NewFromInt(500)))
		svc.AssertExpectations(t)
	})

	t.Run("invalid range", func(t *testing.T) {
		svc := new(mocks.MockInstallmentService)
		svc.On("GetSummary", mock.Anything, "decade").Return(nil, customError.WrapInvalidTimeRange("decade")).Once()

		rec := doRequest(t, newTestRouter(svc, nil), http.MethodGet, "/api/v1/payments/summary?range=decade", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, customError.ErrCodeInvalidTimeRange, decodeError(t, rec).Error)
	})
}

func TestInstallmentHandler_GetReport(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("parses dates", func(t *testing.T) {
		svc := new(mocks.MockInstallmentService)
		svc.On("GetReport", mock.Anything, start, end).Return(&domain.PaymentReport{StartDate: start, EndDate: end}, nil).Once()

		rec := doRequest(t, newTestRouter(svc, nil), http.MethodGet, "/api/v1/payments/report?start=2024-01-01&end=2024-02-01", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed date", func(t *testing.T) {
		svc := new(mocks.MockInstallmentService)

		rec := doRequest(t, newTestRouter(svc, nil), http.MethodGet, "/api/v1/payments/report?start=01/01/2024&end=2024-02-01", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, customError.ErrCodeInvalidDateRange, decodeError(t, rec).Error)
		svc.AssertNotCalled(t, "GetReport", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reversed range", func(t *testing.T) {
		svc := new(mocks.MockInstallmentService)
		svc.On("GetReport", mock.Anything, end, start).
			Return(nil, customError.WrapInvalidDateRange("2024-02-01", "2024-01-01")).Once()

		rec := doRequest(t, newTestRouter(svc, nil), http.MethodGet, "/api/v1/payments/report?start=2024-02-01&end=2024-01-01", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCurrencyHandler(t *testing.T) {
	t.Run("rates", func(t *testing.T) {
		currencySvc := new(mocks.MockCurrencyService)
		currencySvc.On("Rates").Return(currency.DefaultTable()).Once()

		rec := doRequest(t, newTestRouter(new(mocks.MockInstallmentService), currencySvc), http.MethodGet, "/api/v1/currency/rates", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data struct {
				Base  string                     `json:"base"`
				Rates map[string]decimal.Decimal `json:"rates"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "USD", body.Data.Base)
		assert.True(t, body.Data.Rates["EUR"].Equal(decimal.RequireFromString("0.92")))
	})

	t.Run("convert", func(t *testing.T) {
		currencySvc := new(mocks.MockCurrencyService)
		currencySvc.On("Convert", mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(100))
		}), "USD", "EUR").Return(&domain.CurrencyConversion{
			Amount: decimal.NewFromInt(100),
			From:   "USD",
			To:     "EUR",
			Result: decimal.NewFromInt(92),
		}, nil).Once()

		rec := doRequest(t, newTestRouter(new(mocks.MockInstallmentService), currencySvc), http.MethodGet,
			"/api/v1/currency/convert?amount=100&from=USD&to=EUR", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		currencySvc.AssertExpectations(t)
	})

	t.Run("convert rejects bad amount", func(t *testing.T) {
		currencySvc := new(mocks.MockCurrencyService)

		rec := doRequest(t, newTestRouter(new(mocks.MockInstallmentService), currencySvc), http.MethodGet,
			"/api/v1/currency/convert?amount=abc&from=USD&to=EUR", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, customError.ErrCodeInvalidAmount, decodeError(t, rec).Error)
	})

	t.Run("convert unknown currency", func(t *testing.T) {
		currencySvc := new(mocks.MockCurrencyService)
		currencySvc.On("Convert", mock.Anything, "USD", "XXX").Return(nil, customError.WrapUnknownCurrency("XXX")).Once()

		rec := doRequest(t, newTestRouter(new(mocks.MockInstallmentService), currencySvc), http.MethodGet,
			"/api/v1/currency/convert?amount=1&from=USD&to=XXX", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, customError.ErrCodeUnknownCurrency, decodeError(t, rec).Error)
	})
}

func TestHealthHandler_Ready(t *testing.T) {
	logger := testLogger()

	t.Run("all checks pass", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{
			"database": PingFunc(func(ctx context.Context) error { return nil }),
			"redis":    PingFunc(func(ctx context.Context) error { return nil }),
		}, time.Second, logger)
		router := NewRouter(Handlers{Installments: NewInstallmentHandler(nil, logger), Health: h}, logger)

		rec := doRequest(t, router, http.MethodGet, "/health/ready", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	})

	t.Run("failing check", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{
			"database": PingFunc(func(ctx context.Context) error { return nil }),
			"redis":    PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
		}, time.Second, logger)
		router := NewRouter(Handlers{Installments: NewInstallmentHandler(nil, logger), Health: h}, logger)

		rec := doRequest(t, router, http.MethodGet, "/health/ready", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "failed: connection refused")
	})

	t.Run("liveness", func(t *testing.T) {
		h := NewHealthHandler(nil, 0, logger)
		router := NewRouter(Handlers{Installments: NewInstallmentHandler(nil, logger), Health: h}, logger)

		rec := doRequest(t, router, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
