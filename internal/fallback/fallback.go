// Package fallback builds the synthetic snapshot served when the upstream
// provider cannot be reached.
package fallback

import (
	"math/rand"
	"sync"
	"time"

	"stockdash/internal/market"
)

const (
	// Rate is the exchange rate reported in a full fallback snapshot.
	Rate = 157.32
	// PlaceholderRate is used when only the exchange rate fetch failed.
	PlaceholderRate = 157.0

	chartDays = 14
)

// Profile holds the headline numbers and chart shape for one instrument.
// Headline values are fixed; they are not derived from the generated chart.
type Profile struct {
	Current       float64
	Previous      float64
	Change        float64
	ChangePercent float64
	Base          float64
	Spread        float64
}

// DefaultProfiles returns the profiles for the default catalog.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"^GSPC": {
			Current: 5892.45, Previous: 5850.23, Change: 42.22, ChangePercent: 0.72,
			Base: 5850, Spread: 100,
		},
		"^NYFANG": {
			Current: 12345.67, Previous: 12300.00, Change: 45.67, ChangePercent: 0.37,
			Base: 12300, Spread: 200,
		},
	}
}

type Option func(*Generator)

// WithRand sets the random source for chart noise.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithProfiles replaces the profile table.
func WithProfiles(p map[string]Profile) Option {
	return func(g *Generator) { g.profiles = p }
}

// Generator is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	now      func() time.Time
	profiles map[string]Profile
}

func New(opts ...Option) *Generator {
	g := &Generator{
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		profiles: DefaultProfiles(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Snapshot returns the full fallback document for the catalog.
// Instruments without a profile are left out.
func (g *Generator) Snapshot(c *market.Catalog) market.Snapshot {
	now := g.now().UTC()
	indices := make([]market.Quote, 0, c.Len())
	for _, inst := range c.All() {
		q, ok := g.quote(inst, now)
		if !ok {
			continue
		}
		indices = append(indices, q)
	}
	return market.Snapshot{
		Indices:      indices,
		ExchangeRate: market.ExchangeRate{Rate: Rate, LastUpdate: now},
		Timestamp:    now,
		IsFallback:   true,
	}
}

func (g *Generator) quote(inst market.Instrument, now time.Time) (market.Quote, bool) {
	p, ok := g.profiles[inst.Ticker]
	if !ok {
		return market.Quote{}, false
	}
	return market.Quote{
		Ticker:        inst.Ticker,
		Name:          inst.Name,
		CurrentPrice:  p.Current,
		PreviousClose: p.Previous,
		Change:        p.Change,
		ChangePercent: p.ChangePercent,
		ChartData:     g.chart(p.Base, p.Spread, now),
		LastUpdate:    now,
	}, true
}

// chart walks the last 14 calendar days up to today and emits one point per weekday.
func (g *Generator) chart(base, spread float64, now time.Time) []market.ChartPoint {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	g.mu.Lock()
	defer g.mu.Unlock()

	points := make([]market.ChartPoint, 0, chartDays)
	for i := chartDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		points = append(points, market.ChartPoint{
			Date:  d.Format(market.DateLayout),
			Close: market.Round(base + (g.rnd.Float64()-0.5)*spread),
		})
	}
	if len(points) > market.MaxChartPoints {
		points = points[len(points)-market.MaxChartPoints:]
	}
	return points
}
