// Package financego serves history through github.com/piquette/finance-go.
package financego

import (
	"context"
	"net/http"
	"sort"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/pkg/errors"

	"stockdash/internal/provider"
)

// ChartFunc fetches a chart iterator. It is chart.Get in production.
type ChartFunc func(*chart.Params) *chart.Iter

type Option func(*Provider)

// WithHTTPClient routes finance-go through c. finance-go keeps one backend
// per process, so this replaces it for every caller.
func WithHTTPClient(c *http.Client) Option {
	return func(*Provider) {
		finance.SetHTTPClient(c)
		finance.SetBackend(finance.YFinBackend, nil)
	}
}

type Provider struct {
	get ChartFunc
	now func() time.Time
}

func New(opts ...Option) *Provider {
	p := &Provider{get: chart.Get, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Name() string { return "FinanceGo" }

// History returns daily closes in ascending order. finance-go decodes null
// closes as zero; those rows are dropped.
func (p *Provider) History(ctx context.Context, symbol string, w provider.Window) ([]provider.Bar, error) {
	end := p.now()
	start, err := w.Since(end)
	if err != nil {
		return nil, err
	}

	type result struct {
		bars []provider.Bar
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.Interval(w.Interval),
		}
		params.Context = &ctx
		iter := p.get(params)

		var bars []provider.Bar
		for iter.Next() {
			b := iter.Bar()
			if b == nil || b.Close.IsZero() {
				continue
			}
			bars = append(bars, provider.Bar{
				Time:  time.Unix(int64(b.Timestamp), 0).UTC(),
				Close: b.Close.InexactFloat64(),
			})
		}
		if err := iter.Err(); err != nil {
			ch <- result{err: errors.Wrapf(err, "finance-go chart %s", symbol)}
			return
		}
		ch <- result{bars: bars}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "finance-go chart %s", symbol)
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if len(r.bars) == 0 {
			return nil, errors.Wrapf(provider.ErrNoData, "finance-go %s %s", symbol, w)
		}
		sort.SliceStable(r.bars, func(i, j int) bool { return r.bars[i].Time.Before(r.bars[j].Time) })
		return r.bars, nil
	}
}
