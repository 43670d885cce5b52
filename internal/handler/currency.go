package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/currency"
	"github.com/segyhp/installment-engine/internal/domain"
	customError "github.com/segyhp/installment-engine/pkg/errors"
	"github.com/segyhp/installment-engine/pkg/response"
)

type CurrencyService interface {
	Rates() *currency.RateTable
	Convert(amount decimal.Decimal, from, to string) (*domain.CurrencyConversion, error)
}

type CurrencyHandler struct {
	service CurrencyService
	logger  *logrus.Logger
}

func NewCurrencyHandler(service CurrencyService, logger *logrus.Logger) *CurrencyHandler {
	return &CurrencyHandler{service: service, logger: logger}
}

type ratesResponse struct {
	Base  string                     `json:"base"`
	AsOf  time.Time                  `json:"as_of"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Rates handles GET /currency/rates
func (h *CurrencyHandler) Rates(w http.ResponseWriter, r *http.Request) {
	table := h.service.Rates()

	response.Success(w, ratesResponse{
		Base:  table.Base(),
		AsOf:  table.AsOf(),
		Rates: table.Rates(),
	})
}

// Convert handles GET /currency/convert?amount=&from=&to=
func (h *CurrencyHandler) Convert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	amount, err := decimal.NewFromString(query.Get("amount"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, customError.ErrCodeInvalidAmount, "amount must be a decimal number")
		return
	}

	result, err := h.service.Convert(amount, query.Get("from"), query.Get("to"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, result)
}
