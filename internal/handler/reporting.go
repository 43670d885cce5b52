package handler

import (
	"net/http"
	"time"

	"github.com/segyhp/installment-engine/pkg/response"

	customError "github.com/segyhp/installment-engine/pkg/errors"
)

const queryDateLayout = "2006-01-02"

// GetSummary handles GET /payments/summary?range=month|year|all
func (h *InstallmentHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, summary)
}

// GetReport handles GET /payments/report?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *InstallmentHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start, err := time.Parse(queryDateLayout, query.Get("start"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, customError.ErrCodeInvalidDateRange, "start must be a YYYY-MM-DD date")
		return
	}
	end, err := time.Parse(queryDateLayout, query.Get("end"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, customError.ErrCodeInvalidDateRange, "end must be a YYYY-MM-DD date")
		return
	}

	result, err := h.service.GetReport(r.Context(), start, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, result)
}
