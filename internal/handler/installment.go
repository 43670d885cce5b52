package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/domain"
	customError "github.com/segyhp/installment-engine/pkg/errors"
	"github.com/segyhp/installment-engine/pkg/response"
)

// InstallmentService is what the HTTP layer needs from the service.
type InstallmentService interface {
	CreatePlan(ctx context.Context, request *domain.CreatePlanRequest) (*domain.InstallmentPlan, error)
	PreviewSchedule(request *domain.SchedulePreviewRequest) (*domain.SchedulePreviewResponse, error)
	GetPlan(ctx context.Context, planID string) (*domain.InstallmentPlan, error)
	ListPlans(ctx context.Context, filter domain.PlanFilter) ([]*domain.InstallmentPlan, error)
	UpdatePlan(ctx context.Context, planID string, request *domain.UpdatePlanRequest) (*domain.InstallmentPlan, error)
	CancelPlan(ctx context.Context, planID string) (*domain.InstallmentPlan, error)
	DeletePlan(ctx context.Context, planID string) error
	GetPlanProgress(ctx context.Context, planID string) (*domain.PlanProgress, error)
	RecordPayment(ctx context.Context, planID, paymentID string, request *domain.RecordPaymentRequest) (*domain.InstallmentPayment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID string, request *domain.UpdatePaymentStatusRequest) (*domain.InstallmentPayment, error)
	GetSummary(ctx context.Context, timeRange string) (*domain.PaymentSummary, error)
	GetReport(ctx context.Context, startDate, endDate time.Time) (*domain.PaymentReport, error)
}

type InstallmentHandler struct {
	service   InstallmentService
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewInstallmentHandler(service InstallmentService, logger *logrus.Logger) *InstallmentHandler {
	return &InstallmentHandler{
		service:   service,
		validator: newValidator(),
		logger:    logger,
	}
}

// CreatePlan handles POST /plans
func (h *InstallmentHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreatePlanRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		response.Fail(w, http.StatusBadRequest, customError.ErrCodeInvalidPlan, err.Error())
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), &request)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, plan)
}

// ListPlans handles GET /plans?status=&customer_id=
func (h *InstallmentHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	filter := domain.PlanFilter{
		Status:     r.URL.Query().Get("status"),
		CustomerID: r.URL.Query().Get("customer_id"),
	}

	plans, err := h.service.ListPlans(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, plans)
}

// GetPlan handles GET /plans/{planId}
func (h *InstallmentHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetPlan(r.Context(), mux.Vars(r)["planId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, plan)
}

// UpdatePlan handles PUT /plans/{planId}
func (h *InstallmentHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var request domain.UpdatePlanRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		response.Fail(w, http.StatusBadRequest, customError.ErrCodeInvalidPlan, err.Error())
		return
	}

	plan, err := h.service.UpdatePlan(r.Context(), mux.Vars(r)["planId"], &request)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, plan)
}

// CancelPlan handles POST /plans/{planId}/cancel
func (h *InstallmentHandler) CancelPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.CancelPlan(r.Context(), mux.Vars(r)["planId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, plan)
}

// DeletePlan handles DELETE /plans/{planId}
func (h *InstallmentHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePlan(r.Context(), mux.Vars(r)["planId"]); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPlanProgress handles GET /plans/{planId}/progress
func (h *InstallmentHandler) GetPlanProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.GetPlanProgress(r.Context(), mux.Vars(r)["planId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, progress)
}

// RecordPayment handles POST /plans/{planId}/payments/{paymentId}/pay
func (h *InstallmentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var request domain.RecordPaymentRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		response.Fail(w, http.StatusBadRequest, customError.ErrCodeInvalidStatus, err.Error())
		return
	}

	vars := mux.Vars(r)
	payment, err := h.service.RecordPayment(r.Context(), vars["planId"], vars["paymentId"], &request)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, payment)
}

// UpdatePaymentStatus handles PUT /payments/{paymentId}/status
func (h *InstallmentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var request domain.UpdatePaymentStatusRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		response.Fail(w, http.StatusBadRequest, customError.ErrCodeInvalidStatus, err.Error())
		return
	}

	payment, err := h.service.UpdatePaymentStatus(r.Context(), mux.Vars(r)["paymentId"], &request)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, payment)
}

// PreviewSchedule handles POST /schedule/preview
func (h *InstallmentHandler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var request domain.SchedulePreviewRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		response.Fail(w, http.StatusBadRequest, customError.ErrCodeInvalidPlan, err.Error())
		return
	}

	preview, err := h.service.PreviewSchedule(&request)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, preview)
}
