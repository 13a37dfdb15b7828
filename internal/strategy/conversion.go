package strategy

import (
	"context"
	"fmt"

	"quotebot-go/internal/market"
)

// Window is an inclusive timestamp range in which the local book is swept on one side.
// End == 0 leaves the window open.
type Window struct {
	Start int64
	End   int64
	Side  market.Side
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts int64) bool {
	if ts < w.Start {
		return false
	}
	return w.End == 0 || ts <= w.End
}

// ConversionArb trades a product that also quotes on an external venue, using the EMA as fair value.
type ConversionArb struct {
	product      market.Product
	shortTrigger int
	windows      []Window
}

// NewConversionArb builds the arbitrage for p. Positions below shortTrigger allow buying back
// at the external ask.
func NewConversionArb(p market.Product, shortTrigger int, windows []Window) *ConversionArb {
	return &ConversionArb{product: p, shortTrigger: shortTrigger, windows: append([]Window(nil), windows...)}
}

func (c *ConversionArb) Name() string { return fmt.Sprintf("Conversion(%s)", c.product) }

func (c *ConversionArb) Products() []market.Product { return []market.Product{c.product} }

// Decide sells into a rich external bid, covers shorts at a cheap external ask and sweeps the
// local book inside the configured windows.
func (c *ConversionArb) Decide(_ context.Context, in Input) ([]market.Order, error) {
	st, ok := in.Signals[c.product]
	if !ok || !st.Ready {
		return nil, ErrMissingSignal
	}
	fair := st.Value
	set := newOrderSet(in)

	if quote, ok := in.Conversions[c.product]; ok {
		// orders carry integer prices, so compare what would actually be sent
		if bid, ok := quote.Bid(); ok && float64(int(bid)) > fair {
			set.place(c.product, int(bid), -set.sellRoom(c.product))
		}
		if ask, ok := quote.Ask(); ok && in.Position(c.product) < c.shortTrigger && float64(int(ask)) < fair {
			set.place(c.product, int(ask), set.buyRoom(c.product))
		}
	}

	book, ok := in.Books[c.product]
	if !ok {
		return set.orders, nil
	}
	for _, w := range c.windows {
		if !w.Contains(in.Timestamp) {
			continue
		}
		switch w.Side {
		case market.Buy:
			if lvl, ok := book.BestAsk(); ok && float64(lvl.Price) < fair {
				set.place(c.product, lvl.Price, min(set.buyRoom(c.product), -lvl.Qty))
			}
		case market.Sell:
			if lvl, ok := book.BestBid(); ok && float64(lvl.Price) > fair {
				set.place(c.product, lvl.Price, -min(set.sellRoom(c.product), lvl.Qty))
			}
		}
	}
	return set.orders, nil
}
