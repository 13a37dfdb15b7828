package paper

import (
	"testing"

	"quotebot-go/internal/market"
)

func TestLedgerBooksOwnSide(t *testing.T) {
	ledger := NewLedger(self)
	ledger.Record(market.Trade{Symbol: market.Coconut, Price: 10_000, Quantity: 3, Buyer: self, Seller: "X", Timestamp: 300})
	ledger.Record(market.Trade{Symbol: market.Coconut, Price: 10_002.5, Quantity: 1, Buyer: "Y", Seller: self, Timestamp: 100})
	ledger.Record(market.Trade{Symbol: market.Amethysts, Price: 9_998, Quantity: 2, Buyer: self, Timestamp: 200})
	ledger.Record(market.Trade{Symbol: market.Amethysts, Price: 9_999, Quantity: 5, Buyer: "X", Seller: "Y"})

	if ledger.Fills() != 3 {
		t.Fatalf("expected 3 own fills, got %d", ledger.Fills())
	}
	products := ledger.Products()
	if len(products) != 2 || products[0] != market.Amethysts || products[1] != market.Coconut {
		t.Fatalf("unexpected products %v", products)
	}

	book, ok := ledger.Book(market.Coconut)
	if !ok {
		t.Fatalf("expected a coconut book")
	}
	if book.Bought != 3 || book.Sold != 1 || book.Net() != 2 || book.Fills != 2 {
		t.Fatalf("unexpected coconut book %+v", book)
	}
	if book.Flow.StringFixed(1) != "-19997.5" {
		t.Fatalf("unexpected coconut flow %s", book.Flow.StringFixed(1))
	}
	if book.First != 100 || book.Last != 300 {
		t.Fatalf("unexpected coconut span %d..%d", book.First, book.Last)
	}

	if _, ok := ledger.Book(market.GiftBasket); ok {
		t.Fatalf("no book expected for an untraded product")
	}
}
