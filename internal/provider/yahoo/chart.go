package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/pkg/errors"
)

// Meta is the subset of chart metadata we use.
type Meta struct {
	Symbol               string  `json:"symbol"`
	Currency             string  `json:"currency"`
	ExchangeName         string  `json:"exchangeName"`
	InstrumentType       string  `json:"instrumentType"`
	Timezone             string  `json:"timezone"`
	ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
	GMTOffset            int     `json:"gmtoffset"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
}

// Candle is one row of the chart. Close is nil when Yahoo reported null.
type Candle struct {
	Time  time.Time
	Close *float64
}

// Chart is a decoded chart response for one symbol.
type Chart struct {
	Meta    Meta
	Candles []Candle
}

// APIError is the error object embedded in chart responses.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo: %s: %s", e.Code, e.Description)
}

type chartEnvelope struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       Meta    `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// GetChart retrieves the chart for symbol over rng at the given interval,
// e.g. ("^GSPC", "1mo", "1d").
func (c *ChartClient) GetChart(ctx context.Context, symbol, rng, interval string, opts ...Option) (*Chart, error) {
	var override = &ChartClient{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      make(url.Values, len(c.query)),
	}
	// Per-call options append to these slices; they must not alias the client's.
	for k, v := range c.query {
		override.query[k] = slices.Clone(v)
	}
	for _, opt := range opts {
		opt(override)
	}

	query := override.query
	query.Set("range", rng)
	query.Set("interval", interval)
	query.Set("includePrePost", "false")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", override.baseURL, url.PathEscape(symbol), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "performing request for %s", symbol)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusBadRequest, http.StatusNotFound:
		if apiErr := decodeAPIError(res.Body); apiErr != nil {
			return nil, errors.Wrapf(apiErr, "symbol %s", symbol)
		}
		return nil, errors.Errorf("symbol %s: status %d", symbol, res.StatusCode)

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errors.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return nil, errors.Errorf("rate limited")

	default:
		return nil, errors.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var env chartEnvelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "decoding chart response")
	}
	if env.Chart.Error != nil {
		return nil, errors.Wrapf(env.Chart.Error, "symbol %s", symbol)
	}
	if len(env.Chart.Result) == 0 {
		return nil, errors.Errorf("symbol %s: empty chart result", symbol)
	}

	r := env.Chart.Result[0]
	loc := time.FixedZone(r.Meta.Timezone, r.Meta.GMTOffset)

	var closes []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}
	n := min(len(r.Timestamp), len(closes))

	chart := &Chart{Meta: r.Meta, Candles: make([]Candle, 0, n)}
	for i := 0; i < n; i++ {
		chart.Candles = append(chart.Candles, Candle{
			Time:  time.Unix(r.Timestamp[i], 0).In(loc),
			Close: closes[i],
		})
	}
	return chart, nil
}

// decodeAPIError best-effort parses an error envelope from a non-200 body.
func decodeAPIError(body io.Reader) *APIError {
	var env chartEnvelope
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&env); err != nil {
		return nil
	}
	return env.Chart.Error
}
