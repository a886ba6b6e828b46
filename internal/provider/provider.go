package provider

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned when the upstream answered but had no usable closes.
var ErrNoData = errors.New("no data")

// Bar is one daily close. Time carries the exchange's local zone so that
// Time.Format yields the trading date.
type Bar struct {
	Time  time.Time
	Close float64
}

// Provider is implemented by every upstream history source.
// History returns bars in ascending time order.
type Provider interface {
	Name() string
	History(ctx context.Context, symbol string, w Window) ([]Bar, error)
}
