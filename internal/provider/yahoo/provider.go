package yahoo

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"

	"stockdash/internal/provider"
)

// Provider adapts ChartClient to provider.Provider.
type Provider struct {
	name   string
	client *ChartClient
}

func NewProvider(client *ChartClient) *Provider {
	return &Provider{name: "Yahoo", client: client}
}

func (p *Provider) Name() string { return p.name }

// History returns the non-null closes of the chart in ascending time order.
func (p *Provider) History(ctx context.Context, symbol string, w provider.Window) ([]provider.Bar, error) {
	chart, err := p.client.GetChart(ctx, symbol, w.Range, w.Interval)
	if err != nil {
		return nil, err
	}
	bars := make([]provider.Bar, 0, len(chart.Candles))
	for _, c := range chart.Candles {
		if c.Close == nil || math.IsNaN(*c.Close) || math.IsInf(*c.Close, 0) {
			continue
		}
		bars = append(bars, provider.Bar{Time: c.Time, Close: *c.Close})
	}
	if len(bars) == 0 {
		return nil, errors.Wrapf(provider.ErrNoData, "yahoo %s %s", symbol, w)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
