package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	customError "github.com/segyhp/installment-engine/pkg/errors"
	"github.com/segyhp/installment-engine/pkg/response"
)

var statusByCode = map[string]int{
	customError.ErrCodePlanNotFound:       http.StatusNotFound,
	customError.ErrCodePaymentNotFound:    http.StatusNotFound,
	customError.ErrCodeInvalidPlan:        http.StatusBadRequest,
	customError.ErrCodeInvalidStatus:      http.StatusBadRequest,
	customError.ErrCodeInvalidTimeRange:   http.StatusBadRequest,
	customError.ErrCodeInvalidDateRange:   http.StatusBadRequest,
	customError.ErrCodeUnknownCurrency:    http.StatusBadRequest,
	customError.ErrCodeInvalidAmount:      http.StatusBadRequest,
	customError.ErrCodePlanNotActive:      http.StatusConflict,
	customError.ErrCodePaymentAlreadyPaid: http.StatusConflict,
	customError.ErrCodePaymentCancelled:   http.StatusConflict,
	customError.ErrCodeScheduleLocked:     http.StatusConflict,
	customError.ErrCodeRatesUnavailable:   http.StatusServiceUnavailable,
}

// writeError maps business error codes onto HTTP statuses. Anything without
// a known code is a 500 and its details are only logged.
func writeError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	code := customError.Code(err)

	status, ok := statusByCode[code]
	if !ok {
		logger.WithError(err).Error("Request failed")
		if code == "" {
			code = customError.ErrCodeInternal
		}
		response.Fail(w, http.StatusInternalServerError, code, "internal error")
		return
	}

	var be *customError.BusinessError
	message := err.Error()
	if errors.As(err, &be) {
		message = be.Message
	}
	response.Fail(w, status, code, message)
}
