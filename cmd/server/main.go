package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/app"
	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/handler"
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

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Close()

	// Exchange rates are held in memory by this process, so it refreshes them itself
	rates, err := scheduler.New(cfg, nil, application.Currency, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to schedule rate refresh")
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Currency.FetchTimeout)
		defer cancel()
		if err := rates.RunRatesRefresh(ctx); err != nil {
			logger.WithError(err).Warn("Initial exchange rate refresh failed, using fallback table")
		}
	}()
	rates.Start()

	rateLimiter := handler.NewRateLimiter(cfg.RateLimit, logger)
	defer rateLimiter.Close()

	router := handler.NewRouter(handler.Handlers{
		Installments: handler.NewInstallmentHandler(application.Installments, logger),
		Currency:     handler.NewCurrencyHandler(application.Currency, logger),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": handler.DatabasePinger(application.DB),
			"redis":    handler.RedisPinger(application.Redis),
		}, cfg.Health.Timeout, logger),
		RateLimiter: rateLimiter,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Shutting down server...")
	case err := <-serverErrors:
		logger.WithError(err).Error("Server failed")
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := rates.Stop(ctx); err != nil {
		logger.WithError(err).Warn("Rate refresh job did not stop in time")
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
