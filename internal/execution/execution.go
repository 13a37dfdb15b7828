// Package execution collects accepted orders of one tick into the result handed to the harness.
package execution

import (
	"errors"

	"github.com/rs/zerolog"

	"quotebot-go/internal/market"
	"quotebot-go/internal/metrics"
)

// ErrEmptyOrder is returned for orders that would not trade.
var ErrEmptyOrder = errors.New("zero quantity order")

// Executor buffers the orders of the current tick, keyed by product.
type Executor struct {
	log    zerolog.Logger
	orders map[market.Product][]market.Order
}

// NewExecutor wraps a zerolog logger for order submissions.
func NewExecutor(log zerolog.Logger) *Executor {
	return &Executor{log: log, orders: make(map[market.Product][]market.Order)}
}

// Submit queues one order for the current tick.
func (executor *Executor) Submit(module string, order market.Order) error {
	if order.Quantity == 0 {
		return ErrEmptyOrder
	}
	executor.orders[order.Symbol] = append(executor.orders[order.Symbol], order)
	executor.log.Debug().
		Str("module", module).
		Str("sym", string(order.Symbol)).
		Str("side", string(order.Side())).
		Int("qty", order.Quantity).
		Int("px", order.Price).
		Msg("submit order")
	return nil
}

// Flush returns the queued orders and starts a new tick. Products without orders are absent.
func (executor *Executor) Flush() map[market.Product][]market.Order {
	out := executor.orders
	executor.orders = make(map[market.Product][]market.Order)
	metrics.ObserveOrders(out)
	return out
}
