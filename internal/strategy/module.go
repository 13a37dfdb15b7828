// Package strategy turns per-tick market state and signals into position-bounded orders.
package strategy

import (
	"context"
	"errors"

	"quotebot-go/internal/market"
	"quotebot-go/internal/risk"
	"quotebot-go/internal/signal"
)

var (
	// ErrMissingBook is returned when a module needs an order book the tick did not carry.
	ErrMissingBook = errors.New("missing order book")
	// ErrMissingSignal is returned before the EMA of a product has been seeded.
	ErrMissingSignal = errors.New("missing EMA state")
	// ErrMissingPrice is returned when a leg has no reference price.
	ErrMissingPrice = errors.New("missing reference price")
)

// Module is one independently evaluated strategy covering one product or a product group.
type Module interface {
	Name() string
	Products() []market.Product
	Decide(ctx context.Context, in Input) ([]market.Order, error)
}

// Input is the read-only view a module decides on. The orchestrator builds a fresh one per tick.
type Input struct {
	Timestamp   int64
	Positions   map[market.Product]int
	Books       map[market.Product]market.OrderDepth
	Conversions map[market.Product]market.ConversionObservation
	Mids        map[market.Product]float64
	Signals     map[market.Product]signal.State
	Spreads     map[string][]float64
	DDOF        int
	Limits      risk.Limits
}

// Position returns the signed position of p.
func (in Input) Position(p market.Product) int { return in.Positions[p] }

// Budget opens a fresh limit allocation for one decision.
func (in Input) Budget() *risk.Budget { return in.Limits.Budget(in.Positions) }

// orderSet collects the orders of one decision, clamping each against a shared budget.
type orderSet struct {
	budget *risk.Budget
	orders []market.Order
}

func newOrderSet(in Input) *orderSet { return &orderSet{budget: in.Budget()} }

// place clamps qty against the remaining capacity and drops the order when nothing is left.
func (s *orderSet) place(p market.Product, price, qty int) {
	if order, ok := s.budget.Order(p, price, qty); ok {
		s.orders = append(s.orders, order)
	}
}

func (s *orderSet) buyRoom(p market.Product) int  { return s.budget.BuyRoom(p) }
func (s *orderSet) sellRoom(p market.Product) int { return s.budget.SellRoom(p) }
