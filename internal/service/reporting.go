package service

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/installment-engine/internal/cache"
	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/report"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

const dateLayout = "2006-01-02"

// GetSummary aggregates payments for a named time range. Results are cached
// per range and calendar day; any plan or payment change drops the cache.
func (s *InstallmentService) GetSummary(ctx context.Context, timeRange string) (*domain.PaymentSummary, error) {
	if timeRange == "" {
		timeRange = domain.TimeRangeAll
	}
	if !report.IsValidTimeRange(timeRange) {
		return nil, customError.WrapInvalidTimeRange(timeRange)
	}

	now := s.now()
	key := summaryCachePrefix + timeRange + ":" + now.Format(dateLayout)

	var cached domain.PaymentSummary
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to read summary cache")
	}

	plans, err := s.PlanRepo.List(ctx, domain.PlanFilter{})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	payments, err := s.PaymentRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary, err := report.Summarize(plans, payments, timeRange, now)
	if err != nil {
		return nil, customError.WrapInvalidTimeRange(timeRange)
	}

	if err = s.cache.Set(ctx, key, summary, s.config.Business.SummaryCacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to cache summary")
	}

	return &summary, nil
}

// GetReport lists the payments whose effective date lies strictly between
// startDate and endDate, ordered by due date.
func (s *InstallmentService) GetReport(ctx context.Context, startDate, endDate time.Time) (*domain.PaymentReport, error) {
	if !startDate.Before(endDate) {
		return nil, customError.WrapInvalidDateRange(startDate.Format(dateLayout), endDate.Format(dateLayout))
	}

	payments, err := s.PaymentRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result := report.Generate(payments, startDate, endDate, s.now())
	report.SortByDueDate(result.Payments)

	return &result, nil
}
