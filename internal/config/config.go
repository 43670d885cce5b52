package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Currency  CurrencyConfig  `mapstructure:",squash"`
	RabbitMQ  RabbitMQConfig  `mapstructure:",squash"`
	SMTP      SMTPConfig      `mapstructure:",squash"`
	RateLimit RateLimitConfig `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string        `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
	MigrationsPath  string        `mapstructure:"DATABASE_MIGRATIONS_PATH"`
}

type RedisConfig struct {
	Host      string `mapstructure:"REDIS_HOST"`
	Port      string `mapstructure:"REDIS_PORT"`
	Password  string `mapstructure:"REDIS_PASSWORD"`
	DB        int    `mapstructure:"REDIS_DB"`
	Namespace string `mapstructure:"REDIS_NAMESPACE"`
}

type SchedulerConfig struct {
	OverdueSpec      string `mapstructure:"SCHEDULER_OVERDUE_SPEC"`
	ReminderSpec     string `mapstructure:"SCHEDULER_REMINDER_SPEC"`
	RatesRefreshSpec string `mapstructure:"SCHEDULER_RATES_SPEC"`
	Timezone         string `mapstructure:"SCHEDULER_TIMEZONE"`
	ReminderBatch    int    `mapstructure:"SCHEDULER_REMINDER_BATCH"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	MaxInterestRate         string        `mapstructure:"MAX_INTEREST_RATE"`
	OverdueDefaultThreshold int           `mapstructure:"OVERDUE_DEFAULT_THRESHOLD"`
	ReminderLeadDays        int           `mapstructure:"REMINDER_LEAD_DAYS"`
	ReminderGraceDays       int           `mapstructure:"REMINDER_GRACE_DAYS"`
	SummaryCacheTTL         time.Duration `mapstructure:"SUMMARY_CACHE_TTL"`
}

type CurrencyConfig struct {
	BaseCurrency string        `mapstructure:"CURRENCY_BASE"`
	RatesURL     string        `mapstructure:"CURRENCY_RATES_URL"`
	FetchTimeout time.Duration `mapstructure:"CURRENCY_FETCH_TIMEOUT"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"RABBITMQ_URL"`
	Exchange string `mapstructure:"RABBITMQ_EXCHANGE"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     string `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
	Burst   int     `mapstructure:"RATE_LIMIT_BURST"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "15s",
	"DATABASE_URL":               "",
	"DATABASE_HOST":              "localhost",
	"DATABASE_PORT":              "5432",
	"DATABASE_NAME":              "installments",
	"DATABASE_USER":              "postgres",
	"DATABASE_PASSWORD":          "",
	"DATABASE_SSLMODE":           "disable",
	"DATABASE_MAX_OPEN_CONNS":    25,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "5m",
	"DATABASE_MIGRATIONS_PATH":   "file://migrations",
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"REDIS_NAMESPACE":            "installments",
	"SCHEDULER_OVERDUE_SPEC":     "0 5 0 * * *",
	"SCHEDULER_REMINDER_SPEC":    "0 0 * * * *",
	"SCHEDULER_RATES_SPEC":       "0 30 6 * * *",
	"SCHEDULER_TIMEZONE":         "UTC",
	"SCHEDULER_REMINDER_BATCH":   200,
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"MAX_INTEREST_RATE":          "100",
	"OVERDUE_DEFAULT_THRESHOLD":  3,
	"REMINDER_LEAD_DAYS":         3,
	"REMINDER_GRACE_DAYS":        1,
	"SUMMARY_CACHE_TTL":          "5m",
	"CURRENCY_BASE":              "USD",
	"CURRENCY_RATES_URL":         "https://www.cbr.ru/scripts/XML_daily.asp",
	"CURRENCY_FETCH_TIMEOUT":     "10s",
	"RABBITMQ_URL":               "",
	"RABBITMQ_EXCHANGE":          "installments",
	"SMTP_HOST":                  "",
	"SMTP_PORT":                  "587",
	"SMTP_USERNAME":              "",
	"SMTP_PASSWORD":              "",
	"SMTP_FROM":                  "billing@localhost",
	"RATE_LIMIT_ENABLED":         true,
	"RATE_LIMIT_RPS":             20.0,
	"RATE_LIMIT_BURST":           40,
	"HEALTH_CHECK_TIMEOUT":       "5s",
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist; real environment variables win
	_ = godotenv.Load(".env", "./deployments/.env")

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Read from environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.Business.OverdueDefaultThreshold <= 0 {
		return fmt.Errorf("OVERDUE_DEFAULT_THRESHOLD must be greater than 0")
	}

	if c.Business.ReminderLeadDays < 0 || c.Business.ReminderGraceDays < 0 {
		return fmt.Errorf("REMINDER_LEAD_DAYS and REMINDER_GRACE_DAYS must not be negative")
	}

	// Validate interest rate cap
	rate, err := decimal.NewFromString(c.Business.MaxInterestRate)
	if err != nil {
		return fmt.Errorf("MAX_INTEREST_RATE must be a valid decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("MAX_INTEREST_RATE must not be negative")
	}

	if len(c.Currency.BaseCurrency) != 3 {
		return fmt.Errorf("CURRENCY_BASE must be a 3-letter ISO code")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if c.Scheduler.ReminderBatch <= 0 {
		return fmt.Errorf("SCHEDULER_REMINDER_BATCH must be greater than 0")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be greater than 0")
	}

	return nil
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// Addr returns host:port of the redis server
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// Enabled reports whether SMTP delivery is configured
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetMaxInterestRate returns the interest rate cap as decimal
func (c *Config) GetMaxInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.MaxInterestRate)
	return rate
}

// GetSchedulerLocation returns the scheduler time zone
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
