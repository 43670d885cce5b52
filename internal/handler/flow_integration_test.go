package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-engine/internal/cache"
	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/event"
	"github.com/segyhp/installment-engine/internal/handler"
	"github.com/segyhp/installment-engine/internal/notify"
	"github.com/segyhp/installment-engine/internal/repository"
	"github.com/segyhp/installment-engine/internal/service"
	"github.com/segyhp/installment-engine/internal/testutil"
)

var suite *testutil.Suite

func TestMain(m *testing.M) {
	suite = testutil.NewSuite()
	os.Exit(suite.Run(m))
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := suite.DB(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		Business: config.BusinessConfig{
			MaxInterestRate:         "100",
			OverdueDefaultThreshold: 3,
			ReminderLeadDays:        3,
			ReminderGraceDays:       1,
			SummaryCacheTTL:         time.Minute,
		},
		Scheduler: config.SchedulerConfig{ReminderBatch: 100},
	}

	svc := service.NewInstallmentService(
		repository.NewPlanRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewReminderRepository(db),
		cache.NewMemoryCache(),
		event.NewLogPublisher(logger),
		notify.NewLogNotifier(logger),
		cfg,
		logger,
	)

	router := handler.NewRouter(handler.Handlers{
		Installments: handler.NewInstallmentHandler(svc, logger),
		Health:       handler.NewHealthHandler(map[string]handler.Pinger{"database": handler.DatabasePinger(db)}, time.Second, logger),
	}, logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func call[T any](t *testing.T, server *httptest.Server, method, path string, body interface{}) (int, envelope[T]) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope[T]
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestInstallmentFlow(t *testing.T) {
	server := newServer(t)
	start := time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)

	status, created := call[domain.InstallmentPlan](t, server, http.MethodPost, "/api/v1/plans", map[string]interface{}{
		"customer_id":    "cust-e2e",
		"customer_email": "buyer@example.com",
		"total_amount":   "1200",
		"down_payment":   "200",
		"term_months":    4,
		"interest_rate":  "0",
		"start_date":     start,
	})
	require.Equal(t, http.StatusCreated, status)
	plan := created.Data
	require.Len(t, plan.Payments, 4)
	assert.True(t, plan.RemainingBalance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, domain.PlanStatusActive, plan.Status)

	planPath := "/api/v1/plans/" + plan.ID.String()

	status, fetched := call[domain.InstallmentPlan](t, server, http.MethodGet, planPath, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, fetched.Data.Payments, 4)
	for _, p := range fetched.Data.Payments {
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(250)))
	}

	// the schedule can still change before anything is paid
	status, updated := call[domain.InstallmentPlan](t, server, http.MethodPut, planPath, map[string]interface{}{"term_months": 5})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, updated.Data.Payments, 5)

	payPath := func(p *domain.InstallmentPayment) string {
		return planPath + "/payments/" + p.ID.String() + "/pay"
	}
	payments := updated.Data.Payments

	status, paid := call[domain.InstallmentPayment](t, server, http.MethodPost, payPath(payments[0]),
		map[string]interface{}{"payment_method": "card"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.PaymentStatusPaid, paid.Data.Status)

	status, again := call[domain.InstallmentPayment](t, server, http.MethodPost, payPath(payments[0]),
		map[string]interface{}{"payment_method": "card"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PAYMENT_ALREADY_PAID", again.Error)

	status, locked := call[domain.InstallmentPlan](t, server, http.MethodPut, planPath, map[string]interface{}{"term_months": 6})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SCHEDULE_LOCKED", locked.Error)

	for _, p := range payments[1:] {
		status, _ := call[domain.InstallmentPayment](t, server, http.MethodPost, payPath(p),
			map[string]interface{}{"payment_method": "cash"})
		require.Equal(t, http.StatusOK, status)
	}

	status, done := call[domain.InstallmentPlan](t, server, http.MethodGet, planPath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.PlanStatusCompleted, done.Data.Status)
	assert.True(t, done.Data.RemainingBalance.IsZero())

	status, progress := call[domain.PlanProgress](t, server, http.MethodGet, planPath+"/progress", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, progress.Data.PaidCount)
	assert.True(t, progress.Data.PaidAmount.Equal(decimal.NewFromInt(1000)))

	status, summary := call[domain.PaymentSummary](t, server, http.MethodGet, "/api/v1/payments/summary?range=all", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, summary.Data.PaidCount)
	assert.True(t, summary.Data.TotalCollected.Equal(decimal.NewFromInt(1000)))

	status, _ = call[struct{}](t, server, http.MethodDelete, planPath, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, missing := call[domain.InstallmentPlan](t, server, http.MethodGet, planPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PLAN_NOT_FOUND", missing.Error)
}

func TestCancelFlow(t *testing.T) {
	server := newServer(t)

	status, created := call[domain.InstallmentPlan](t, server, http.MethodPost, "/api/v1/plans", map[string]interface{}{
		"customer_id":  "cust-cancel",
		"total_amount": "300",
		"term_months":  3,
	})
	require.Equal(t, http.StatusCreated, status)
	planPath := "/api/v1/plans/" + created.Data.ID.String()

	status, cancelled := call[domain.InstallmentPlan](t, server, http.MethodPost, planPath+"/cancel", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.PlanStatusCancelled, cancelled.Data.Status)
	for _, p := range cancelled.Data.Payments {
		assert.Equal(t, domain.PaymentStatusCancelled, p.Status)
	}

	status, _ = call[domain.InstallmentPlan](t, server, http.MethodPost, planPath+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, listed := call[[]domain.InstallmentPlan](t, server, http.MethodGet, "/api/v1/plans?status=cancelled", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, listed.Data, 1)
	assert.Equal(t, created.Data.ID, listed.Data[0].ID)

	status, _ = call[handler.HealthStatus](t, server, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, status)
}
