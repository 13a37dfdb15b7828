// Package risk enforces symmetric per-product position limits on emitted orders.
package risk

import (
	"errors"
	"fmt"

	"quotebot-go/internal/market"
)

// ErrLimitViolation marks an order set that could push a position past its limit.
var ErrLimitViolation = errors.New("position limit violation")

// Limits maps each product to its symmetric position bound.
type Limits map[market.Product]int

// FromCatalog extracts the limits of every catalog product.
func FromCatalog(c market.Catalog) Limits {
	out := make(Limits, len(c))
	for p, spec := range c {
		out[p] = spec.Limit
	}
	return out
}

// BuyCapacity is how much more of p can be bought from position before hitting the limit.
func (l Limits) BuyCapacity(p market.Product, position int) int {
	return max(0, l[p]-position)
}

// SellCapacity is how much of p can be sold (as a positive amount) before hitting -limit.
func (l Limits) SellCapacity(p market.Product, position int) int {
	return max(0, l[p]+position)
}

// Check verifies that the orders keep every position within bounds even if all of them fill.
func (l Limits) Check(orders []market.Order, positions map[market.Product]int) error {
	buys := make(map[market.Product]int)
	sells := make(map[market.Product]int)
	for _, o := range orders {
		if o.Quantity > 0 {
			buys[o.Symbol] += o.Quantity
		} else {
			sells[o.Symbol] -= o.Quantity
		}
	}
	for p, qty := range buys {
		if qty > l.BuyCapacity(p, positions[p]) {
			return fmt.Errorf("%w: %s buys %d from %d (limit %d)", ErrLimitViolation, p, qty, positions[p], l[p])
		}
	}
	for p, qty := range sells {
		if qty > l.SellCapacity(p, positions[p]) {
			return fmt.Errorf("%w: %s sells %d from %d (limit %d)", ErrLimitViolation, p, qty, positions[p], l[p])
		}
	}
	return nil
}

// Budget hands out buy and sell capacity within a single decision so that the sum of the
// orders a strategy emits never exceeds what the limit allows.
type Budget struct {
	limits    Limits
	positions map[market.Product]int
	bought    map[market.Product]int
	sold      map[market.Product]int
}

// Budget opens a fresh allocation against the supplied positions.
func (l Limits) Budget(positions map[market.Product]int) *Budget {
	return &Budget{
		limits:    l,
		positions: positions,
		bought:    make(map[market.Product]int),
		sold:      make(map[market.Product]int),
	}
}

// BuyRoom is the remaining buy capacity of p.
func (b *Budget) BuyRoom(p market.Product) int {
	return max(0, b.limits.BuyCapacity(p, b.positions[p])-b.bought[p])
}

// SellRoom is the remaining sell capacity of p as a positive amount.
func (b *Budget) SellRoom(p market.Product) int {
	return max(0, b.limits.SellCapacity(p, b.positions[p])-b.sold[p])
}

// Buy reserves up to want units and returns the granted amount.
func (b *Budget) Buy(p market.Product, want int) int {
	granted := min(max(0, want), b.BuyRoom(p))
	b.bought[p] += granted
	return granted
}

// Sell reserves up to want units (positive) and returns the granted amount (positive).
func (b *Budget) Sell(p market.Product, want int) int {
	granted := min(max(0, want), b.SellRoom(p))
	b.sold[p] += granted
	return granted
}

// Order reserves capacity for qty (signed) and returns the clamped order; ok is false when nothing is left.
func (b *Budget) Order(p market.Product, price, qty int) (market.Order, bool) {
	var granted int
	switch {
	case qty > 0:
		granted = b.Buy(p, qty)
	case qty < 0:
		granted = -b.Sell(p, -qty)
	}
	if granted == 0 {
		return market.Order{}, false
	}
	return market.Order{Symbol: p, Price: price, Quantity: granted}, true
}
