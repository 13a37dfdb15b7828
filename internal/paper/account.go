// Package paper tracks the session cash balance from own fills and marks open positions to market.
package paper

import (
	"sort"

	"github.com/shopspring/decimal"

	"quotebot-go/internal/market"
)

// FillRecorder captures fills the account has booked.
type FillRecorder interface {
	Record(market.Trade)
}

// Account accumulates realized cash from own fills. Positions stay owned by the harness.
type Account struct {
	self       string
	tickStep   int64
	feeBearing map[market.Product]bool
	recorder   FillRecorder

	cash     decimal.Decimal
	lastTick int64
	applied  bool
	fills    int
}

// Snapshot is a point-in-time view of the account marked with the supplied prices.
type Snapshot struct {
	Cash       float64
	Unrealized float64
	Equity     float64
	Fills      int
	Positions  map[market.Product]PositionSnapshot
}

// PositionSnapshot is one marked position.
type PositionSnapshot struct {
	Qty         int
	Mark        float64
	MarketValue float64
}

// Option customises an Account.
type Option func(*Account)

// WithRecorder forwards every booked fill to r.
func WithRecorder(r FillRecorder) Option {
	return func(a *Account) { a.recorder = r }
}

// WithFeeBearing marks products whose fills pay conversion fees.
func WithFeeBearing(products ...market.Product) Option {
	return func(a *Account) {
		for _, p := range products {
			a.feeBearing[p] = true
		}
	}
}

// NewAccount builds an account for the trader identified as self on a harness advancing tickStep per tick.
func NewAccount(self string, tickStep int64, opts ...Option) *Account {
	if tickStep <= 0 {
		tickStep = 100
	}
	a := &Account{
		self:       self,
		tickStep:   tickStep,
		feeBearing: make(map[market.Product]bool),
		cash:       decimal.Zero,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ApplyFills books own fills stamped exactly one tick before state.Timestamp.
// A second call for the same timestamp is a no-op. It returns the number of fills booked.
func (a *Account) ApplyFills(state market.TradingState) int {
	if a.applied && state.Timestamp <= a.lastTick {
		return 0
	}
	a.applied = true
	a.lastTick = state.Timestamp

	due := state.Timestamp - a.tickStep
	booked := 0
	for _, p := range sortedProducts(state.OwnTrades) {
		fee := decimal.Zero
		if a.feeBearing[p] {
			if conv, ok := state.Observations.Conversion(p); ok {
				fee = decimal.NewFromFloat(conv.Fee())
			}
		}
		for _, tr := range state.OwnTrades[p] {
			if tr.Timestamp != due {
				continue
			}
			qty := decimal.NewFromInt(int64(tr.Quantity))
			price := decimal.NewFromFloat(tr.Price)
			counted := false
			if tr.Buyer == a.self {
				a.cash = a.cash.Sub(qty.Mul(price.Add(fee)))
				counted = true
			}
			if tr.Seller == a.self {
				a.cash = a.cash.Add(qty.Mul(price.Sub(fee)))
				counted = true
			}
			if !counted {
				continue
			}
			booked++
			a.fills++
			if a.recorder != nil {
				a.recorder.Record(tr)
			}
		}
	}
	return booked
}

// Cash returns the realized cash balance.
func (a *Account) Cash() float64 {
	f, _ := a.cash.Float64()
	return f
}

// LastTick returns the timestamp of the last ApplyFills call.
func (a *Account) LastTick() (int64, bool) { return a.lastTick, a.applied }

// Value marks positions with the supplied prices; products without a mark are skipped.
func (a *Account) Value(positions map[market.Product]int, marks map[market.Product]float64) float64 {
	var total float64
	for p, qty := range positions {
		if mark, ok := marks[p]; ok {
			total += float64(qty) * mark
		}
	}
	return total
}

// Update books the tick's fills and returns realized cash plus unrealized position value.
func (a *Account) Update(state market.TradingState, marks map[market.Product]float64) float64 {
	a.ApplyFills(state)
	return a.Cash() + a.Value(state.Position, marks)
}

// Snapshot returns balances marked with the supplied prices.
func (a *Account) Snapshot(positions map[market.Product]int, marks map[market.Product]float64) Snapshot {
	snap := Snapshot{
		Cash:      a.Cash(),
		Fills:     a.fills,
		Positions: make(map[market.Product]PositionSnapshot, len(positions)),
	}
	for p, qty := range positions {
		mark := marks[p]
		value := float64(qty) * mark
		snap.Positions[p] = PositionSnapshot{Qty: qty, Mark: mark, MarketValue: value}
		snap.Unrealized += value
	}
	snap.Equity = snap.Cash + snap.Unrealized
	return snap
}

// State is the persisted form of the account.
type State struct {
	Cash     string `json:"cash"`
	LastTick int64  `json:"last_tick"`
	Applied  bool   `json:"applied"`
	Fills    int    `json:"fills"`
}

// Export captures the account for the trader-data blob.
func (a *Account) Export() State {
	return State{Cash: a.cash.String(), LastTick: a.lastTick, Applied: a.applied, Fills: a.fills}
}

// Import restores a previously exported account.
func (a *Account) Import(s State) error {
	cash, err := decimal.NewFromString(s.Cash)
	if err != nil {
		return err
	}
	a.cash = cash
	a.lastTick = s.LastTick
	a.applied = s.Applied
	a.fills = s.Fills
	return nil
}

func sortedProducts(m map[market.Product][]market.Trade) []market.Product {
	out := make([]market.Product, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
