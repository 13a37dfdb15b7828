package strategy

import (
	"context"
	"math"

	"quotebot-go/internal/market"
)

// FixedSpread keeps a standing symmetric quote around a known fair value, sized to flatten
// to the limit on each side. It never reads the book.
type FixedSpread struct {
	product market.Product
	fair    float64
	edge    int
}

// NewFixedSpread builds the stable-value maker; a negative edge falls back to 2.
func NewFixedSpread(product market.Product, fair float64, edge int) *FixedSpread {
	if edge < 0 {
		edge = 2
	}
	return &FixedSpread{product: product, fair: fair, edge: edge}
}

// Name returns the identifier for logging.
func (s *FixedSpread) Name() string { return "FixedSpread(" + string(s.product) + ")" }

// Products lists the traded symbol.
func (s *FixedSpread) Products() []market.Product { return []market.Product{s.product} }

// Decide emits the bid at fair-edge and the ask at fair+edge.
func (s *FixedSpread) Decide(_ context.Context, in Input) ([]market.Order, error) {
	set := newOrderSet(in)
	bid := int(math.Floor(s.fair)) - s.edge
	ask := int(math.Ceil(s.fair)) + s.edge

	set.place(s.product, bid, set.buyRoom(s.product))
	set.place(s.product, ask, -set.sellRoom(s.product))
	return set.orders, nil
}
