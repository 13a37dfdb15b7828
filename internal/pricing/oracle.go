// Package pricing derives reference mid-prices from order books and external venue quotes.
package pricing

import "quotebot-go/internal/market"

// Fallbacks supplies the last known reference price of a product, typically its EMA.
type Fallbacks interface {
	Last(p market.Product) (float64, bool)
}

// MidPrice returns (best bid + best ask) / 2, or fallback when either side of the book is empty.
func MidPrice(book market.OrderDepth, fallback float64) float64 {
	bid, okBid := book.BestBid()
	ask, okAsk := book.BestAsk()
	if !okBid || !okAsk {
		return fallback
	}
	return float64(bid.Price+ask.Price) / 2
}

// QuoteMid averages whichever sides of an external quote are present.
func QuoteMid(quote market.ConversionObservation) (float64, bool) {
	bid, okBid := quote.Bid()
	ask, okAsk := quote.Ask()
	switch {
	case okBid && okAsk:
		return (bid + ask) / 2, true
	case okBid:
		return bid, true
	case okAsk:
		return ask, true
	default:
		return 0, false
	}
}

// Oracle resolves the reference mid of every catalog product for a tick.
type Oracle struct {
	catalog market.Catalog
	last    Fallbacks
}

// NewOracle builds an oracle; last may be nil when no EMA history is available.
func NewOracle(catalog market.Catalog, last Fallbacks) *Oracle {
	return &Oracle{catalog: catalog, last: last}
}

// Mid returns the reference price of p for the supplied tick. ok is false when no book,
// no history and no default price exist.
func (o *Oracle) Mid(p market.Product, state market.TradingState) (float64, bool) {
	spec, known := o.catalog[p]
	hasDefault := known && spec.DefaultPrice > 0

	if spec.ExternalQuote {
		if conv, ok := state.Observations.Conversion(p); ok {
			if mid, ok := QuoteMid(conv); ok {
				return mid, true
			}
		}
		return spec.DefaultPrice, hasDefault
	}

	fallback, hasFallback := o.fallback(p)
	if !hasFallback && hasDefault {
		fallback, hasFallback = spec.DefaultPrice, true
	}

	book, ok := state.Book(p)
	if !ok || !book.TwoSided() {
		return fallback, hasFallback
	}
	return MidPrice(book, fallback), true
}

// Observed returns the mid of p only when the tick carries market data for it: a two-sided
// book, or an external quote for external-quote products.
func (o *Oracle) Observed(p market.Product, state market.TradingState) (float64, bool) {
	if o.catalog[p].ExternalQuote {
		if conv, ok := state.Observations.Conversion(p); ok {
			return QuoteMid(conv)
		}
		return 0, false
	}
	book, ok := state.Book(p)
	if !ok || !book.TwoSided() {
		return 0, false
	}
	return MidPrice(book, 0), true
}

// Mids resolves every catalog product that has a defined reference price.
func (o *Oracle) Mids(state market.TradingState) map[market.Product]float64 {
	out := make(map[market.Product]float64, len(o.catalog))
	for _, p := range o.catalog.Products() {
		if mid, ok := o.Mid(p, state); ok {
			out[p] = mid
		}
	}
	return out
}

func (o *Oracle) fallback(p market.Product) (float64, bool) {
	if o.last == nil {
		return 0, false
	}
	return o.last.Last(p)
}
