package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/cache"
	"github.com/segyhp/installment-engine/internal/config"
	"github.com/segyhp/installment-engine/internal/currency"
	"github.com/segyhp/installment-engine/internal/database"
	"github.com/segyhp/installment-engine/internal/event"
	"github.com/segyhp/installment-engine/internal/notify"
	"github.com/segyhp/installment-engine/internal/repository"
	"github.com/segyhp/installment-engine/internal/service"
)

// App holds the wired dependencies shared by the server and the scheduler.
type App struct {
	Config       *config.Config
	Logger       *logrus.Logger
	DB           *sqlx.DB
	Redis        *redis.Client
	Installments *service.InstallmentService
	Currency     *service.CurrencyService

	amqpConn *amqp.Connection
}

// New connects to Postgres and Redis, applies migrations and wires the
// services. RabbitMQ and SMTP are optional and fall back to log-only
// implementations when not configured.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err = database.RunMigrations(cfg.Database.MigrationsPath, cfg.Database.DSN()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database migrations applied")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err = redisClient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis is not reachable, cache operations will fail until it is")
	}
	appCache := cache.NewRedisCache(redisClient, cfg.Redis.Namespace)

	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  redisClient,
	}

	publisher := a.initPublisher(cfg, logger)
	notifier := initNotifier(cfg, logger)

	a.Installments = service.NewInstallmentService(
		repository.NewPlanRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewReminderRepository(db),
		appCache,
		publisher,
		notifier,
		cfg,
		logger,
	)

	store := currency.NewStore(
		initialRates(cfg.Currency.BaseCurrency, logger),
		currency.NewCBRProvider(cfg.Currency.RatesURL, cfg.Currency.FetchTimeout, logger),
		appCache,
		logger,
	)
	if err = store.Load(ctx); err != nil {
		logger.WithError(err).Warn("Failed to load cached exchange rates")
	}
	a.Currency = service.NewCurrencyService(store, logger)

	return a, nil
}

func (a *App) initPublisher(cfg *config.Config, logger *logrus.Logger) event.Publisher {
	if cfg.RabbitMQ.URL == "" {
		logger.Info("RABBITMQ_URL not set, events will only be logged")
		return event.NewLogPublisher(logger)
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to RabbitMQ, events will only be logged")
		return event.NewLogPublisher(logger)
	}

	publisher, err := event.NewRabbitMQPublisher(conn, cfg.RabbitMQ.Exchange, logger)
	if err != nil {
		conn.Close()
		logger.WithError(err).Warn("Failed to set up RabbitMQ exchange, events will only be logged")
		return event.NewLogPublisher(logger)
	}

	a.amqpConn = conn
	logger.WithField("exchange", cfg.RabbitMQ.Exchange).Info("Publishing events to RabbitMQ")
	return publisher
}

func initNotifier(cfg *config.Config, logger *logrus.Logger) notify.Notifier {
	if !cfg.SMTP.Enabled() {
		logger.Info("SMTP_HOST not set, reminders will only be logged")
		return notify.NewLogNotifier(logger)
	}
	return notify.NewEmailSender(cfg.SMTP, logger)
}

func initialRates(base string, logger *logrus.Logger) *currency.RateTable {
	table := currency.DefaultTable()
	rebased, err := table.Rebase(base)
	if err != nil {
		logger.WithError(err).WithField("base", base).Warn("Base currency not in the built-in table, using USD")
		return table
	}
	return rebased
}

// Close releases every connection the app opened.
func (a *App) Close() {
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close RabbitMQ connection")
		}
	}
	if err := a.Redis.Close(); err != nil {
		a.Logger.WithError(err).Warn("Failed to close Redis client")
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.WithError(err).Warn("Failed to close database")
	}
}
