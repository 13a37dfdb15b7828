package paper

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"quotebot-go/internal/market"
)

// Book summarises the own fills of one product.
type Book struct {
	Bought int
	Sold   int
	Fills  int
	// Flow is the cash the fills moved: sold notional minus bought notional.
	Flow  decimal.Decimal
	First int64
	Last  int64
}

// Net is the position the fills add up to.
func (b Book) Net() int { return b.Bought - b.Sold }

// Ledger keeps a per-product tally of the fills booked for self.
type Ledger struct {
	self  string
	mu    sync.Mutex
	books map[market.Product]*Book
}

// NewLedger creates an empty ledger for the trader identified as self.
func NewLedger(self string) *Ledger {
	return &Ledger{self: self, books: make(map[market.Product]*Book)}
}

// Record books fill on the side self took. Fills self is not part of are ignored.
func (l *Ledger) Record(fill market.Trade) {
	if fill.Buyer != l.self && fill.Seller != l.self {
		return
	}
	notional := decimal.NewFromFloat(fill.Price).Mul(decimal.NewFromInt(int64(fill.Quantity)))

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.books[fill.Symbol]
	if !ok {
		b = &Book{First: fill.Timestamp}
		l.books[fill.Symbol] = b
	}
	if fill.Buyer == l.self {
		b.Bought += fill.Quantity
		b.Flow = b.Flow.Sub(notional)
	}
	if fill.Seller == l.self {
		b.Sold += fill.Quantity
		b.Flow = b.Flow.Add(notional)
	}
	b.Fills++
	b.Last = max(b.Last, fill.Timestamp)
	b.First = min(b.First, fill.Timestamp)
}

// Products lists the products with at least one fill, sorted.
func (l *Ledger) Products() []market.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]market.Product, 0, len(l.books))
	for p := range l.books {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Book returns a copy of the tally for p.
func (l *Ledger) Book(p market.Product) (Book, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.books[p]
	if !ok {
		return Book{}, false
	}
	return *b, true
}

// Fills is the number of fills booked across products.
func (l *Ledger) Fills() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, b := range l.books {
		n += b.Fills
	}
	return n
}
