package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string `env:"HTTP_PORT"   envDefault:"8080"`
	DBHost     string `env:"DB_HOST"     envDefault:"localhost"`
	DBPort     string `env:"DB_PORT"     envDefault:"5432"`
	DBUser     string `env:"DB_USER"     envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"     envDefault:"orders"`
	DBSslMode  string `env:"DB_SSLMODE"  envDefault:"disable"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Env      string `env:"ENV"       envDefault:"production"`

	AWSRegion        string `env:"AWS_REGION"        envDefault:"us-east-1"`
	EventsQueueURL   string `env:"EVENTS_QUEUE_URL"`
	MetricsNamespace string `env:"METRICS_NAMESPACE"`

	OrderTimeoutSchedule string `env:"ORDER_TIMEOUT_SCHEDULE"`
	DCCExpirySchedule    string `env:"DCC_EXPIRY_SCHEDULE"`
	RulesRefreshSchedule string `env:"RULES_REFRESH_SCHEDULE"`

	DCCDefaultExpiration  time.Duration `env:"DCC_DEFAULT_EXPIRATION"   envDefault:"24h"`
	DCCDefaultMaxAttempts int           `env:"DCC_DEFAULT_MAX_ATTEMPTS" envDefault:"3"`
}

// LoadConfig reads an optional .env file from the working directory and then
// the process environment. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// DSN is the libpq connection string used by both GORM and the migrations.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSslMode}}.Encode(),
	}
	return u.String()
}
