package fallback_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockdash/internal/fallback"
	"stockdash/internal/market"
)

// Friday.
var fixedNow = time.Date(2025, 1, 3, 15, 30, 0, 0, time.UTC)

func newGenerator(seed int64) *fallback.Generator {
	return fallback.New(
		fallback.WithRand(rand.New(rand.NewSource(seed))),
		fallback.WithClock(func() time.Time { return fixedNow }),
	)
}

func TestSnapshot_Headline(t *testing.T) {
	t.Parallel()

	// Arrange
	g := newGenerator(1)

	// Act
	snap := g.Snapshot(market.DefaultCatalog())

	// Assert
	require.True(t, snap.IsFallback)
	require.Equal(t, fallback.Rate, snap.ExchangeRate.Rate)
	require.Equal(t, fixedNow, snap.Timestamp)
	require.Len(t, snap.Indices, 2)

	sp := snap.Indices[0]
	require.Equal(t, "^GSPC", sp.Ticker)
	require.Equal(t, "S&P 500", sp.Name)
	require.Equal(t, 5892.45, sp.CurrentPrice)
	require.Equal(t, 5850.23, sp.PreviousClose)
	require.Equal(t, 42.22, sp.Change)
	require.Equal(t, 0.72, sp.ChangePercent)

	fang := snap.Indices[1]
	require.Equal(t, "^NYFANG", fang.Ticker)
	require.Equal(t, "FANG+", fang.Name)
	require.Equal(t, 12345.67, fang.CurrentPrice)
	require.Equal(t, 12300.00, fang.PreviousClose)
	require.Equal(t, 45.67, fang.Change)
	require.Equal(t, 0.37, fang.ChangePercent)
}

func TestSnapshot_ChartShape(t *testing.T) {
	t.Parallel()

	g := newGenerator(42)
	snap := g.Snapshot(market.DefaultCatalog())

	bounds := map[string][2]float64{
		"^GSPC":   {5800, 5900},
		"^NYFANG": {12200, 12400},
	}
	for _, q := range snap.Indices {
		require.NotEmpty(t, q.ChartData)
		require.LessOrEqual(t, len(q.ChartData), market.MaxChartPoints)
		// 2024-12-21 .. 2025-01-03 has ten weekdays.
		require.Len(t, q.ChartData, 10)
		require.Equal(t, "2024-12-23", q.ChartData[0].Date)
		require.Equal(t, "2025-01-03", q.ChartData[len(q.ChartData)-1].Date)

		var prev time.Time
		for _, p := range q.ChartData {
			d, err := time.Parse(market.DateLayout, p.Date)
			require.NoError(t, err)
			require.NotEqual(t, time.Saturday, d.Weekday())
			require.NotEqual(t, time.Sunday, d.Weekday())
			require.True(t, d.After(prev), "dates must increase: %s", p.Date)
			prev = d

			b := bounds[q.Ticker]
			require.GreaterOrEqual(t, p.Close, b[0])
			require.LessOrEqual(t, p.Close, b[1])
			require.Equal(t, market.Round(p.Close), p.Close)
		}
	}
}

func TestSnapshot_SeededIsDeterministic(t *testing.T) {
	t.Parallel()

	a := newGenerator(7).Snapshot(market.DefaultCatalog())
	b := newGenerator(7).Snapshot(market.DefaultCatalog())
	require.Equal(t, a, b)

	c := newGenerator(8).Snapshot(market.DefaultCatalog())
	require.NotEqual(t, a.Indices[0].ChartData, c.Indices[0].ChartData)
}

func TestSnapshot_UnknownInstrumentSkipped(t *testing.T) {
	t.Parallel()

	cat := market.NewCatalog(
		market.Instrument{Ticker: "^N225", Name: "Nikkei 225"},
		market.Instrument{Ticker: "^GSPC", Name: "S&P 500"},
	)
	snap := newGenerator(1).Snapshot(cat)
	require.Len(t, snap.Indices, 1)
	require.Equal(t, "^GSPC", snap.Indices[0].Ticker)
}

func TestSnapshot_CustomProfiles(t *testing.T) {
	t.Parallel()

	g := fallback.New(
		fallback.WithRand(rand.New(rand.NewSource(1))),
		fallback.WithClock(func() time.Time { return fixedNow }),
		fallback.WithProfiles(map[string]fallback.Profile{
			"X": {Current: 1, Previous: 1, Base: 10, Spread: 0},
		}),
	)
	snap := g.Snapshot(market.NewCatalog(market.Instrument{Ticker: "X", Name: "x"}))
	require.Len(t, snap.Indices, 1)
	for _, p := range snap.Indices[0].ChartData {
		require.Equal(t, 10.0, p.Close)
	}
}
