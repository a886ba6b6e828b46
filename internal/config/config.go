package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

const (
	BackendYahoo     = "yahoo"
	BackendFinanceGo = "financego"
)

type Server struct {
	Port               string   `json:"port" env:"PORT" validate:"required,numeric"`
	RequestTimeoutSec  int      `json:"request_timeout_sec" env:"REQUEST_TIMEOUT_SEC" validate:"gt=0"`
	ShutdownTimeoutSec int      `json:"shutdown_timeout_sec" env:"SHUTDOWN_TIMEOUT_SEC" validate:"gt=0"`
	CORSOrigins        []string `json:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// Provider configures the upstream quote source and its rate limits.
// MaxRequestsPerMinute takes precedence over MinRequestIntervalSec.
type Provider struct {
	Backend               string `json:"backend" env:"PROVIDER_BACKEND" validate:"oneof=yahoo financego"`
	BaseURL               string `json:"base_url" env:"YAHOO_BASE_URL" validate:"omitempty,url"`
	UserAgent             string `json:"user_agent" env:"PROVIDER_USER_AGENT"`
	TimeoutSec            int    `json:"timeout_sec" env:"PROVIDER_TIMEOUT_SEC" validate:"gt=0"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute" env:"PROVIDER_MAX_RPM" validate:"gte=0"`
	Burst                 int    `json:"burst" env:"PROVIDER_BURST" validate:"gte=0"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec" env:"PROVIDER_MIN_INTERVAL_SEC" validate:"gte=0"`
}

// Market selects the exchange rate pair and how much daily history backs each chart.
type Market struct {
	ExchangePair string `json:"exchange_pair" env:"EXCHANGE_PAIR" validate:"required"`
	HistoryRange string `json:"history_range" env:"HISTORY_RANGE" validate:"oneof=1mo 3mo 6mo 1y"`
}

type Logging struct {
	Level  string `json:"level" env:"LOG_LEVEL" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `json:"format" env:"LOG_FORMAT" validate:"oneof=text json"`
	Output string `json:"output" env:"LOG_OUTPUT" validate:"required"`
}

type Watch struct {
	Schedule string `json:"schedule" env:"WATCH_SCHEDULE" validate:"required"`
}

type Config struct {
	Server   Server   `json:"server"`
	Provider Provider `json:"provider"`
	Market   Market   `json:"market"`
	Logging  Logging  `json:"logging"`
	Watch    Watch    `json:"watch"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:               "8000",
			RequestTimeoutSec:  10,
			ShutdownTimeoutSec: 5,
			CORSOrigins:        []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Provider: Provider{
			Backend:              BackendYahoo,
			TimeoutSec:           8,
			MaxRequestsPerMinute: 60,
			Burst:                5,
		},
		Market:  Market{ExchangePair: "JPY=X", HistoryRange: "1mo"},
		Logging: Logging{Level: "info", Format: "text", Output: "stdout"},
		Watch:   Watch{Schedule: "@every 5m"},
	}
}

// Load reads JSON config from path. If path is empty ./config.json is used
// when present; a missing file leaves the defaults. Environment variables
// override file values, and the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
