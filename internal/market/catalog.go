package market

// Instrument is a tracked index.
type Instrument struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// Catalog is a read-only, ordered set of instruments.
// The zero value is an empty catalog.
type Catalog struct {
	items    []Instrument
	byTicker map[string]int
}

// NewCatalog copies items into a new catalog. Later duplicates of a ticker are dropped.
func NewCatalog(items ...Instrument) *Catalog {
	c := &Catalog{
		items:    make([]Instrument, 0, len(items)),
		byTicker: make(map[string]int, len(items)),
	}
	for _, it := range items {
		if _, dup := c.byTicker[it.Ticker]; dup {
			continue
		}
		c.byTicker[it.Ticker] = len(c.items)
		c.items = append(c.items, it)
	}
	return c
}

// DefaultCatalog returns the two tracked indices in display order.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Instrument{Ticker: "^GSPC", Name: "S&P 500", Currency: "USD"},
		Instrument{Ticker: "^NYFANG", Name: "FANG+", Currency: "USD"},
	)
}

// All returns a copy of the instruments in catalog order.
func (c *Catalog) All() []Instrument {
	if c == nil {
		return nil
	}
	out := make([]Instrument, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup finds an instrument by ticker.
func (c *Catalog) Lookup(ticker string) (Instrument, bool) {
	if c == nil {
		return Instrument{}, false
	}
	i, ok := c.byTicker[ticker]
	if !ok {
		return Instrument{}, false
	}
	return c.items[i], true
}

// Len reports the number of instruments.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}
