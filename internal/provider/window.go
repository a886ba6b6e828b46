package provider

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window selects how much history to request and at what granularity.
// Range and Interval use the Yahoo chart vocabulary ("1d", "5d", "1mo", "1y").
type Window struct {
	Range    string
	Interval string
}

var (
	// OneMonthDaily is roughly one month of daily closes.
	OneMonthDaily = Window{Range: "1mo", Interval: "1d"}
	// OneDayDaily is the latest daily close.
	OneDayDaily = Window{Range: "1d", Interval: "1d"}
)

func (w Window) String() string { return w.Range + "/" + w.Interval }

// Since returns the start of the window ending at now.
func (w Window) Since(now time.Time) (time.Time, error) {
	r := strings.ToLower(strings.TrimSpace(w.Range))
	var unit string
	for _, u := range []string{"mo", "d", "wk", "y"} {
		if strings.HasSuffix(r, u) {
			unit = u
			break
		}
	}
	if unit == "" {
		return time.Time{}, fmt.Errorf("unsupported range %q", w.Range)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(r, unit))
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("unsupported range %q", w.Range)
	}
	switch unit {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "wk":
		return now.AddDate(0, 0, -7*n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}
