package commands

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"stockdash/internal/aggregate"
	"stockdash/internal/config"
	"stockdash/internal/fallback"
	"stockdash/internal/httpx"
	"stockdash/internal/logger"
	"stockdash/internal/market"
	"stockdash/internal/provider"
	"stockdash/internal/provider/financego"
	"stockdash/internal/provider/ratelimit"
	"stockdash/internal/provider/yahoo"
)

type app struct {
	cfg config.Config
	log *logrus.Logger
	agg *aggregate.Aggregator
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	p := newProvider(cfg.Provider, log)
	agg := aggregate.New(p, market.DefaultCatalog(), fallback.New(),
		aggregate.WithLogger(log),
		aggregate.WithExchangePair(cfg.Market.ExchangePair),
		aggregate.WithHistoryWindow(provider.Window{Range: cfg.Market.HistoryRange, Interval: "1d"}),
	)
	return &app{cfg: cfg, log: log, agg: agg}, nil
}

// newProvider builds the upstream source wrapped in its rate limiter.
func newProvider(cfg config.Provider, log logrus.FieldLogger) provider.Provider {
	hc := httpx.New(httpx.Options{
		Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		UserAgent: cfg.UserAgent,
	})

	var p provider.Provider
	switch cfg.Backend {
	case config.BackendFinanceGo:
		p = financego.New(financego.WithHTTPClient(hc.Standard()))
	default:
		opts := []yahoo.Option{yahoo.WithHTTPClient(hc)}
		if cfg.BaseURL != "" {
			opts = append(opts, yahoo.WithBaseURL(cfg.BaseURL))
		}
		p = yahoo.NewProvider(yahoo.NewChartClient(opts...))
	}

	// Prefer token bucket with burst if RPM is set, otherwise use min-interval
	switch {
	case cfg.MaxRequestsPerMinute > 0:
		p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.PerMinute(cfg.MaxRequestsPerMinute, cfg.Burst)}
	case cfg.MinRequestIntervalSec > 0:
		p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.MinRequestIntervalSec) * time.Second}
	}

	logger.WithComponent(log, "provider").WithFields(logrus.Fields{
		"backend": p.Name(),
		"rpm":     cfg.MaxRequestsPerMinute,
		"burst":   cfg.Burst,
	}).Debug("provider configured")
	return p
}
