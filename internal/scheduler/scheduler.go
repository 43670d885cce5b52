package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/currency"
)

const (
	JobOverdue   = "mark_overdue"
	JobReminders = "dispatch_reminders"
	JobRates     = "refresh_rates"

	jobTimeout = 10 * time.Minute
)

var jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "installment_scheduler_job_runs_total",
	Help: "Scheduled job executions by outcome.",
}, []string{"job", "outcome"})

// InstallmentJobs is the part of the installment service the cron jobs drive.
type InstallmentJobs interface {
	MarkOverduePayments(ctx context.Context, asOf time.Time) (int, error)
	DispatchReminders(ctx context.Context, asOf time.Time) (int, error)
}

type RateRefresher interface {
	RefreshRates(ctx context.Context) (*currency.RateTable, error)
}

type jobSpec struct {
	name string
	spec string
	run  func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	jobs   InstallmentJobs
	rates  RateRefresher
	logger *logrus.Logger
	now    func() time.Time
}

// New registers the overdue and reminder jobs when jobs is non-nil and the
// rate refresh job when rates is non-nil, on a seconds-precision cron in the
// configured timezone.
func New(cfg *config.Config, jobs InstallmentJobs, rates RateRefresher, logger *logrus.Logger) (*Scheduler, error) {
	location := cfg.GetSchedulerLocation()
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		jobs:   jobs,
		rates:  rates,
		logger: logger,
		now: func() time.Time {
			return time.Now().In(location)
		},
	}

	var specs []jobSpec
	if jobs != nil {
		specs = append(specs,
			jobSpec{JobOverdue, cfg.Scheduler.OverdueSpec, s.RunOverdue},
			jobSpec{JobReminders, cfg.Scheduler.ReminderSpec, s.RunReminders},
		)
	}
	if rates != nil {
		specs = append(specs, jobSpec{JobRates, cfg.Scheduler.RatesRefreshSpec, s.RunRatesRefresh})
	}

	for _, job := range specs {
		if _, err := s.cron.AddFunc(job.spec, s.wrap(job.name, job.run)); err != nil {
			return nil, fmt.Errorf("failed to schedule %s job with spec %q: %w", job.name, job.spec, err)
		}
		logger.WithFields(logrus.Fields{"job": job.name, "spec": job.spec}).Info("Job scheduled")
	}

	return s, nil
}

func (s *Scheduler) wrap(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		log := s.logger.WithField("job", name)
		log.Info("Job started")

		if err := run(ctx); err != nil {
			jobRuns.WithLabelValues(name, "error").Inc()
			log.WithError(err).Error("Job failed")
			return
		}

		jobRuns.WithLabelValues(name, "success").Inc()
		log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("Job finished")
	}
}

// RunOverdue marks installments overdue as of the current time.
func (s *Scheduler) RunOverdue(ctx context.Context) error {
	marked, err := s.jobs.MarkOverduePayments(ctx, s.now())
	if err != nil {
		return err
	}
	s.logger.WithField("marked", marked).Debug("Overdue run complete")
	return nil
}

// RunReminders delivers the reminders that are due.
func (s *Scheduler) RunReminders(ctx context.Context) error {
	delivered, err := s.jobs.DispatchReminders(ctx, s.now())
	if err != nil {
		return err
	}
	s.logger.WithField("delivered", delivered).Debug("Reminder run complete")
	return nil
}

// RunRatesRefresh pulls a fresh exchange rate table.
func (s *Scheduler) RunRatesRefresh(ctx context.Context) error {
	_, err := s.rates.RefreshRates(ctx)
	return err
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the cron and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
