package market

// Trade is a fill reported by the harness. Own fills carry the session identity as Buyer or Seller.
type Trade struct {
	Symbol    Product `json:"symbol"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Buyer     string  `json:"buyer"`
	Seller    string  `json:"seller"`
	Timestamp int64   `json:"timestamp"`
}

// ConversionObservation is the external quote of a cross-venue product.
// BidPrice and AskPrice are nil when the venue shows no quote on that side.
type ConversionObservation struct {
	BidPrice      *float64 `json:"bidPrice"`
	AskPrice      *float64 `json:"askPrice"`
	TransportFees float64  `json:"transportFees"`
	ExportTariff  float64  `json:"exportTariff"`
	ImportTariff  float64  `json:"importTariff"`
	SunlightIndex float64  `json:"sunlight,omitempty"`
	HumidityIndex float64  `json:"humidity,omitempty"`
}

// Bid returns the external bid when present.
func (c ConversionObservation) Bid() (float64, bool) {
	if c.BidPrice == nil {
		return 0, false
	}
	return *c.BidPrice, true
}

// Ask returns the external ask when present.
func (c ConversionObservation) Ask() (float64, bool) {
	if c.AskPrice == nil {
		return 0, false
	}
	return *c.AskPrice, true
}

// Fee is the per-unit cost charged on fills of a fee-bearing product.
func (c ConversionObservation) Fee() float64 { return c.TransportFees + c.ImportTariff }

// Observations groups the non-book market observations of a tick.
type Observations struct {
	PlainValue  map[Product]int                   `json:"plainValueObservations,omitempty"`
	Conversions map[Product]ConversionObservation `json:"conversionObservations"`
}

// Conversion returns the conversion observation of p.
func (o Observations) Conversion(p Product) (ConversionObservation, bool) {
	c, ok := o.Conversions[p]
	return c, ok
}

// TradingState is everything the harness hands over for one tick.
type TradingState struct {
	Timestamp    int64                  `json:"timestamp"`
	TraderData   string                 `json:"traderData"`
	OrderDepths  map[Product]OrderDepth `json:"order_depths"`
	OwnTrades    map[Product][]Trade    `json:"own_trades"`
	MarketTrades map[Product][]Trade    `json:"market_trades,omitempty"`
	Position     map[Product]int        `json:"position"`
	Observations Observations           `json:"observations"`
}

// Book returns the order depth of p.
func (s TradingState) Book(p Product) (OrderDepth, bool) {
	d, ok := s.OrderDepths[p]
	return d, ok
}

// PositionOf returns the signed position held in p, zero when absent.
func (s TradingState) PositionOf(p Product) int { return s.Position[p] }

// Normalize fixes the sign convention of every book in place.
func (s *TradingState) Normalize() {
	for p, d := range s.OrderDepths {
		d.Normalize()
		s.OrderDepths[p] = d
	}
}

// Side enumerates order directions.
type Side string

const (
	// Buy indicates a bid.
	Buy Side = "BUY"
	// Sell indicates an ask.
	Sell Side = "SELL"
)

// Order is a limit order request. Positive Quantity buys, negative sells.
type Order struct {
	Symbol   Product `json:"symbol"`
	Price    int     `json:"price"`
	Quantity int     `json:"quantity"`
}

// Side reports the direction implied by the quantity sign.
func (o Order) Side() Side {
	if o.Quantity < 0 {
		return Sell
	}
	return Buy
}

// Result is what the trader hands back to the harness for one tick.
type Result struct {
	Orders      map[Product][]Order `json:"orders"`
	Conversions int                 `json:"conversions"`
	TraderData  string              `json:"traderData"`
}
