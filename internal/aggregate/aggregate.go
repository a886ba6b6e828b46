// Package aggregate turns provider history into the quote snapshot served by the API.
package aggregate

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"stockdash/internal/fallback"
	"stockdash/internal/logger"
	"stockdash/internal/market"
	"stockdash/internal/provider"
)

// DefaultExchangePair is the Yahoo ticker for USD/JPY.
const DefaultExchangePair = "JPY=X"

// Status classifies the outcome of a single fetch.
type Status string

const (
	StatusOK            Status = "ok"
	StatusNoData        Status = "no_data"
	StatusProviderError Status = "provider_error"
)

// QuoteResult is the outcome of FetchInstrumentQuote. Quote is only
// meaningful when Status is StatusOK.
type QuoteResult struct {
	Instrument market.Instrument
	Quote      market.Quote
	Status     Status
	Err        error
}

func (r QuoteResult) OK() bool { return r.Status == StatusOK }

// RateResult is the outcome of FetchExchangeRate.
type RateResult struct {
	Pair   string
	Rate   market.ExchangeRate
	Status Status
	Err    error
}

func (r RateResult) OK() bool { return r.Status == StatusOK }

//go:generate mockgen -package=aggregate_test -destination=mock_provider_test.go -source=../provider/provider.go Provider

// FallbackSource produces the full synthetic snapshot.
type FallbackSource interface {
	Snapshot(c *market.Catalog) market.Snapshot
}

type Option func(*Aggregator)

func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Aggregator) { a.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithExchangePair overrides the ticker used for the exchange rate.
func WithExchangePair(pair string) Option {
	return func(a *Aggregator) {
		if pair != "" {
			a.pair = pair
		}
	}
}

// WithHistoryWindow overrides the window requested for instrument history.
func WithHistoryWindow(w provider.Window) Option {
	return func(a *Aggregator) { a.history = w }
}

// Aggregator holds no per-request state; one instance serves all requests.
type Aggregator struct {
	p        provider.Provider
	catalog  *market.Catalog
	fallback FallbackSource
	log      logrus.FieldLogger
	now      func() time.Time
	pair     string
	history  provider.Window
	rate     provider.Window
}

func New(p provider.Provider, catalog *market.Catalog, fb FallbackSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		p:        p,
		catalog:  catalog,
		fallback: fb,
		log:      logrus.StandardLogger(),
		now:      time.Now,
		pair:     DefaultExchangePair,
		history:  provider.OneMonthDaily,
		rate:     provider.OneDayDaily,
	}
	for _, o := range opts {
		o(a)
	}
	a.log = logger.WithComponent(a.log, "aggregate")
	return a
}

// Fallback returns the full synthetic snapshot.
func (a *Aggregator) Fallback() market.Snapshot { return a.fallback.Snapshot(a.catalog) }

// FetchInstrumentQuote builds a quote from roughly one month of daily closes.
// Failures are logged and reported through the result, never returned.
func (a *Aggregator) FetchInstrumentQuote(ctx context.Context, inst market.Instrument) QuoteResult {
	res := QuoteResult{Instrument: inst}
	bars, err := a.p.History(ctx, inst.Ticker, a.history)
	if err == nil && len(bars) == 0 {
		err = errors.Wrapf(provider.ErrNoData, "%s %s", inst.Ticker, a.history)
	}
	if err != nil {
		res.Status, res.Err = classify(err)
		a.log.WithFields(logrus.Fields{
			"ticker":   inst.Ticker,
			"provider": a.p.Name(),
			"status":   res.Status,
			"error":    err,
		}).Warn("instrument quote unavailable")
		return res
	}

	points := chartPoints(bars)
	cur := points[len(points)-1].Close
	prev := cur
	if len(points) > 1 {
		prev = points[len(points)-2].Close
	}
	change, pct := Change(cur, prev)

	res.Status = StatusOK
	res.Quote = market.Quote{
		Ticker:        inst.Ticker,
		Name:          inst.Name,
		CurrentPrice:  cur,
		PreviousClose: prev,
		Change:        change,
		ChangePercent: pct,
		ChartData:     points,
		LastUpdate:    a.now().UTC(),
	}
	return res
}

// FetchExchangeRate returns the latest close of the exchange pair.
func (a *Aggregator) FetchExchangeRate(ctx context.Context) RateResult {
	res := RateResult{Pair: a.pair}
	bars, err := a.p.History(ctx, a.pair, a.rate)
	if err == nil && len(bars) == 0 {
		err = errors.Wrapf(provider.ErrNoData, "%s %s", a.pair, a.rate)
	}
	if err != nil {
		res.Status, res.Err = classify(err)
		a.log.WithFields(logrus.Fields{
			"ticker":   a.pair,
			"provider": a.p.Name(),
			"status":   res.Status,
			"error":    err,
		}).Warn("exchange rate unavailable")
		return res
	}
	res.Status = StatusOK
	res.Rate = market.ExchangeRate{
		Rate:       market.Round(bars[len(bars)-1].Close),
		LastUpdate: a.now().UTC(),
	}
	return res
}

// Aggregate fetches every instrument in catalog order and then the exchange
// rate. With no instrument quotes at all the full fallback is returned.
func (a *Aggregator) Aggregate(ctx context.Context) market.Snapshot {
	instruments := a.catalog.All()
	indices := make([]market.Quote, 0, len(instruments))
	partial := false
	for _, inst := range instruments {
		r := a.FetchInstrumentQuote(ctx, inst)
		if !r.OK() {
			partial = true
			continue
		}
		indices = append(indices, r.Quote)
	}

	if len(indices) == 0 {
		a.log.WithField("instruments", len(instruments)).Warn("no instrument data, serving fallback")
		return a.Fallback()
	}

	now := a.now().UTC()
	rate := a.FetchExchangeRate(ctx)
	er := rate.Rate
	if !rate.OK() {
		partial = true
		er = market.ExchangeRate{Rate: fallback.PlaceholderRate, LastUpdate: now}
	}

	return market.Snapshot{
		Indices:      indices,
		ExchangeRate: er,
		Timestamp:    now,
		IsFallback:   partial,
	}
}

// Change returns the rounded absolute and percent change between two
// already rounded prices. The percent is 0 when prev is 0.
func Change(cur, prev float64) (change, pct float64) {
	change = market.Round(cur - prev)
	if prev == 0 {
		return change, 0
	}
	return change, market.Round(change / prev * 100)
}

// chartPoints converts ascending bars into rounded daily points. Bars sharing a
// trading date collapse to the later one; only the most recent days are kept.
func chartPoints(bars []provider.Bar) []market.ChartPoint {
	points := make([]market.ChartPoint, 0, len(bars))
	for _, b := range bars {
		p := market.ChartPoint{
			Date:  b.Time.Format(market.DateLayout),
			Close: market.Round(b.Close),
		}
		if n := len(points); n > 0 && points[n-1].Date == p.Date {
			points[n-1] = p
			continue
		}
		points = append(points, p)
	}
	if len(points) > market.MaxChartPoints {
		points = points[len(points)-market.MaxChartPoints:]
	}
	return points
}

func classify(err error) (Status, error) {
	if errors.Is(err, provider.ErrNoData) {
		return StatusNoData, err
	}
	return StatusProviderError, err
}
