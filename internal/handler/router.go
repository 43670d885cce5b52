package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/pkg/response"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Installments *InstallmentHandler
	Currency     *CurrencyHandler
	Health       *HealthHandler
	RateLimiter  *RateLimiter
}

func NewRouter(h Handlers, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(response.RecoveryMiddleware(logger))

	// Health check
	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(response.JSONMiddleware)
	if h.RateLimiter != nil {
		api.Use(h.RateLimiter.Middleware)
	}

	api.HandleFunc("/plans", h.Installments.CreatePlan).Methods(http.MethodPost)
	api.HandleFunc("/plans", h.Installments.ListPlans).Methods(http.MethodGet)
	api.HandleFunc("/plans/{planId}", h.Installments.GetPlan).Methods(http.MethodGet)
	api.HandleFunc("/plans/{planId}", h.Installments.UpdatePlan).Methods(http.MethodPut)
	api.HandleFunc("/plans/{planId}", h.Installments.DeletePlan).Methods(http.MethodDelete)
	api.HandleFunc("/plans/{planId}/cancel", h.Installments.CancelPlan).Methods(http.MethodPost)
	api.HandleFunc("/plans/{planId}/progress", h.Installments.GetPlanProgress).Methods(http.MethodGet)
	api.HandleFunc("/plans/{planId}/payments/{paymentId}/pay", h.Installments.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentId}/status", h.Installments.UpdatePaymentStatus).Methods(http.MethodPut)
	api.HandleFunc("/payments/summary", h.Installments.GetSummary).Methods(http.MethodGet)
	api.HandleFunc("/payments/report", h.Installments.GetReport).Methods(http.MethodGet)
	api.HandleFunc("/schedule/preview", h.Installments.PreviewSchedule).Methods(http.MethodPost)

	if h.Currency != nil {
		api.HandleFunc("/currency/rates", h.Currency.Rates).Methods(http.MethodGet)
		api.HandleFunc("/currency/convert", h.Currency.Convert).Methods(http.MethodGet)
	}

	return router
}
