package strategy

import (
	"context"
	"fmt"
	"math"

	"quotebot-go/internal/market"
	"quotebot-go/internal/signal"
)

// TrendStyle picks between resting quotes and crossing the book.
type TrendStyle string

const (
	StyleQuote TrendStyle = "quote"
	StyleTake  TrendStyle = "take"
)

// Gate restricts trading to ticks with a given crossover sign. Only meaningful with dual EMAs.
type Gate string

const (
	GateNone         Gate = "none"
	GateContinuation Gate = "continuation"
	GateFlip         Gate = "flip"
)

// TrendParams tunes a TrendMaker. Zero values select the defaults below.
type TrendParams struct {
	Style       TrendStyle
	Offset      float64
	InnerOffset float64
	Skew        float64
	TrendShift  float64
	Gate        Gate
}

var defaultTrendParams = TrendParams{
	Style:       StyleQuote,
	Offset:      1.5,
	InnerOffset: 1,
	Skew:        6.67,
	Gate:        GateNone,
}

// TrendMaker trades one product around its EMA, skewing quotes against inventory.
type TrendMaker struct {
	product market.Product
	params  TrendParams
}

// NewTrendMaker fills unset parameters with the session defaults.
func NewTrendMaker(p market.Product, params TrendParams) *TrendMaker {
	if params.Style == "" {
		params.Style = defaultTrendParams.Style
	}
	if params.Offset <= 0 {
		params.Offset = defaultTrendParams.Offset
	}
	if params.InnerOffset <= 0 {
		params.InnerOffset = defaultTrendParams.InnerOffset
	}
	if params.Skew <= 0 {
		params.Skew = defaultTrendParams.Skew
	}
	if params.TrendShift < 0 {
		params.TrendShift = 0
	}
	if params.Gate == "" {
		params.Gate = defaultTrendParams.Gate
	}
	return &TrendMaker{product: p, params: params}
}

func (t *TrendMaker) Name() string { return fmt.Sprintf("Trend(%s)", t.product) }

func (t *TrendMaker) Products() []market.Product { return []market.Product{t.product} }

// Decide quotes or takes depending on the configured style.
func (t *TrendMaker) Decide(_ context.Context, in Input) ([]market.Order, error) {
	st, ok := in.Signals[t.product]
	if !ok || !st.Ready {
		return nil, ErrMissingSignal
	}
	if !t.open(st) {
		return nil, nil
	}
	if t.params.Style == StyleTake {
		book, ok := in.Books[t.product]
		if !ok {
			return nil, ErrMissingBook
		}
		return t.take(in, st, book), nil
	}
	return t.quote(in, st), nil
}

// open reports whether the crossover gate lets this tick trade.
func (t *TrendMaker) open(st signal.State) bool {
	switch t.params.Gate {
	case GateContinuation:
		return st.Crossover() > 0
	case GateFlip:
		return st.Crossover() < 0
	default:
		return true
	}
}

func (t *TrendMaker) gated() bool { return t.params.Gate != GateNone }

func (t *TrendMaker) quote(in Input, st signal.State) []market.Order {
	p := t.params
	pos := in.Position(t.product)
	ref := st.Value

	bidOff, askOff := p.Offset, p.Offset
	switch {
	case pos > 0:
		bidOff = math.Ceil(float64(pos)/p.Skew) + 1
		askOff = p.InnerOffset
	case pos < 0:
		bidOff = p.InnerOffset
		askOff = math.Ceil(float64(-pos)/p.Skew) + 1
	}

	bidPx := ref - bidOff
	askPx := ref + askOff
	switch {
	case st.Trend > 0:
		bidPx += p.TrendShift
	case st.Trend < 0:
		askPx -= p.TrendShift
	}

	bid := int(math.Floor(bidPx))
	ask := int(math.Ceil(askPx))
	if bid >= ask {
		bid = ask - 1
	}

	set := newOrderSet(in)
	set.place(t.product, bid, set.buyRoom(t.product))
	set.place(t.product, ask, -set.sellRoom(t.product))
	return set.orders
}

func (t *TrendMaker) take(in Input, st signal.State, book market.OrderDepth) []market.Order {
	set := newOrderSet(in)
	bestAsk, hasAsk := book.BestAsk()
	bestBid, hasBid := book.BestBid()

	if t.gated() {
		// Crossover-gated taking follows the signal sign and accepts the reference price itself.
		ref := st.Short
		if hasAsk && st.Signal > 0 && float64(bestAsk.Price) <= math.Floor(ref) {
			set.place(t.product, bestAsk.Price, min(set.buyRoom(t.product), -bestAsk.Qty))
		}
		if hasBid && st.Signal < 0 && float64(bestBid.Price) >= math.Ceil(ref) {
			set.place(t.product, bestBid.Price, -min(set.sellRoom(t.product), bestBid.Qty))
		}
		return set.orders
	}

	p := t.params
	pos := in.Position(t.product)
	acceptBid, acceptAsk := st.Value, st.Value
	switch {
	case st.Trend > 0:
		acceptBid += p.TrendShift
	case st.Trend < 0:
		acceptAsk -= p.TrendShift
	}
	switch {
	case pos > 0:
		acceptBid -= p.InnerOffset
	case pos < 0:
		acceptAsk += p.InnerOffset
	}

	if hasAsk && float64(bestAsk.Price) < acceptBid {
		set.place(t.product, bestAsk.Price, min(set.buyRoom(t.product), -bestAsk.Qty))
	}
	if hasBid && float64(bestBid.Price) > acceptAsk {
		set.place(t.product, bestBid.Price, -min(set.sellRoom(t.product), bestBid.Qty))
	}
	return set.orders
}
