package market

// OrderDepth is the visible order book of one product for one tick.
// Sell quantities are negative once normalized.
type OrderDepth struct {
	BuyOrders  map[int]int `json:"buy_orders"`
	SellOrders map[int]int `json:"sell_orders"`
}

// Level is a single price level of a book side.
type Level struct {
	Price int
	Qty   int
}

// Normalize forces bid quantities positive and ask quantities negative so downstream code
// does not depend on the harness sign convention.
func (d *OrderDepth) Normalize() {
	for px, qty := range d.BuyOrders {
		if qty < 0 {
			d.BuyOrders[px] = -qty
		}
	}
	for px, qty := range d.SellOrders {
		if qty > 0 {
			d.SellOrders[px] = -qty
		}
	}
}

// BestBid returns the highest bid level.
func (d OrderDepth) BestBid() (Level, bool) {
	best, ok := Level{}, false
	for px, qty := range d.BuyOrders {
		if !ok || px > best.Price {
			best, ok = Level{Price: px, Qty: qty}, true
		}
	}
	return best, ok
}

// BestAsk returns the lowest ask level. Qty is negative.
func (d OrderDepth) BestAsk() (Level, bool) {
	best, ok := Level{}, false
	for px, qty := range d.SellOrders {
		if !ok || px < best.Price {
			best, ok = Level{Price: px, Qty: qty}, true
		}
	}
	return best, ok
}

// TwoSided reports whether both sides of the book carry at least one level.
func (d OrderDepth) TwoSided() bool {
	return len(d.BuyOrders) > 0 && len(d.SellOrders) > 0
}
