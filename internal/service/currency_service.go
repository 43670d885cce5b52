package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/currency"
	"github.com/segyhp/installment-engine/internal/domain"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

type CurrencyService struct {
	store  *currency.Store
	logger *logrus.Logger
}

func NewCurrencyService(store *currency.Store, logger *logrus.Logger) *CurrencyService {
	return &CurrencyService{store: store, logger: logger}
}

// Rates returns the rate table currently in effect.
func (s *CurrencyService) Rates() *currency.RateTable {
	return s.store.Current()
}

// Convert converts amount between two currencies using the current table.
func (s *CurrencyService) Convert(amount decimal.Decimal, from, to string) (*domain.CurrencyConversion, error) {
	table := s.store.Current()

	result, err := table.Convert(amount, from, to)
	if err != nil {
		return nil, err
	}

	to = strings.ToUpper(strings.TrimSpace(to))
	return &domain.CurrencyConversion{
		Amount:    amount,
		From:      strings.ToUpper(strings.TrimSpace(from)),
		To:        to,
		Result:    result,
		Formatted: currency.Format(result, to),
		RatesAsOf: table.AsOf(),
	}, nil
}

// RefreshRates pulls a new table from the provider and publishes it.
func (s *CurrencyService) RefreshRates(ctx context.Context) (*currency.RateTable, error) {
	table, err := s.store.Refresh(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to refresh exchange rates")
		return nil, customError.WrapRatesUnavailable(err)
	}

	s.logger.WithFields(logrus.Fields{
		"base":       table.Base(),
		"currencies": len(table.Currencies()),
		"as_of":      table.AsOf().Format(dateLayout),
	}).Info("Exchange rates refreshed")

	return table, nil
}
