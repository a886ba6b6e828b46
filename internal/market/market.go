package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for chart points.
const DateLayout = "2006-01-02"

// MaxChartPoints caps the number of trading days in a quote's chart.
const MaxChartPoints = 14

// ChartPoint is one daily close.
type ChartPoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// Quote is the computed price/change/chart bundle for one instrument.
type Quote struct {
	Ticker        string       `json:"ticker"`
	Name          string       `json:"name"`
	CurrentPrice  float64      `json:"current_price"`
	PreviousClose float64      `json:"previous_close"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"change_percent"`
	ChartData     []ChartPoint `json:"chart_data"`
	LastUpdate    time.Time    `json:"last_update"`
}

// ExchangeRate is the quoted currency pair rate.
type ExchangeRate struct {
	Rate       float64   `json:"rate"`
	LastUpdate time.Time `json:"last_update"`
}

// Snapshot is the document served by /api/indices.
type Snapshot struct {
	Indices      []Quote      `json:"indices"`
	ExchangeRate ExchangeRate `json:"exchange_rate"`
	Timestamp    time.Time    `json:"timestamp"`
	IsFallback   bool         `json:"isFallback"`
}

// Round rounds v to two decimal places, half away from zero.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
