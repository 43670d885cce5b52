package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/app"
	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/logging"
	"github.com/segyhp/installment-engine/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := logging.NewLogger(cfg.Logging)
	logger.Info("Starting installment scheduler...")

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Close()

	// Overdue marking and reminders; exchange rates are refreshed by the server
	s, err := scheduler.New(cfg, application.Installments, nil, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to schedule jobs")
	}

	s.Start()
	logger.WithField("timezone", cfg.GetSchedulerLocation().String()).Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.Stop(ctx); err != nil {
		logger.WithError(err).Warn("Running jobs did not finish before shutdown")
	}
	logger.Info("Scheduler stopped")
}
