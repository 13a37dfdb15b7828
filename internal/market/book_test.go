package market

import (
	"encoding/json"
	"testing"
)

func TestBestLevels(t *testing.T) {
	depth := OrderDepth{
		BuyOrders:  map[int]int{9996: 1, 9995: 20, 9998: 4},
		SellOrders: map[int]int{10004: -10, 10002: -3},
	}
	bid, ok := depth.BestBid()
	if !ok || bid.Price != 9998 || bid.Qty != 4 {
		t.Fatalf("unexpected best bid %+v", bid)
	}
	ask, ok := depth.BestAsk()
	if !ok || ask.Price != 10002 || ask.Qty != -3 {
		t.Fatalf("unexpected best ask %+v", ask)
	}
	if !depth.TwoSided() {
		t.Fatalf("expected two sided book")
	}
}

func TestEmptySideUndefined(t *testing.T) {
	depth := OrderDepth{BuyOrders: map[int]int{100: 1}}
	if _, ok := depth.BestAsk(); ok {
		t.Fatalf("expected undefined best ask")
	}
	if depth.TwoSided() {
		t.Fatalf("one sided book reported as two sided")
	}
}

func TestNormalizeAskSign(t *testing.T) {
	depth := OrderDepth{
		BuyOrders:  map[int]int{99: -5},
		SellOrders: map[int]int{101: 7, 102: -2},
	}
	depth.Normalize()
	if depth.BuyOrders[99] != 5 {
		t.Fatalf("expected positive bid qty, got %d", depth.BuyOrders[99])
	}
	if depth.SellOrders[101] != -7 || depth.SellOrders[102] != -2 {
		t.Fatalf("expected negative ask qty, got %+v", depth.SellOrders)
	}
}

func TestDecodeTradingState(t *testing.T) {
	const body = `{"timestamp":200,"traderData":"","order_depths":{"ORCHIDS":{"buy_orders":{"1049":3},"sell_orders":{"1052":4}}},` +
		`"own_trades":{"ORCHIDS":[{"symbol":"ORCHIDS","price":1050,"quantity":2,"buyer":"SUBMISSION","seller":"","timestamp":100}]},` +
		`"position":{"ORCHIDS":2},"observations":{"conversionObservations":{"ORCHIDS":{"bidPrice":1048.5,"askPrice":null,"transportFees":1.1,"exportTariff":9.5,"importTariff":-5}}}}`

	var state TradingState
	if err := json.Unmarshal([]byte(body), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	state.Normalize()

	book, ok := state.Book(Orchids)
	if !ok {
		t.Fatalf("missing ORCHIDS book")
	}
	if ask, _ := book.BestAsk(); ask.Qty != -4 {
		t.Fatalf("expected normalized ask qty -4, got %d", ask.Qty)
	}
	conv, ok := state.Observations.Conversion(Orchids)
	if !ok {
		t.Fatalf("missing conversion observation")
	}
	if bid, ok := conv.Bid(); !ok || bid != 1048.5 {
		t.Fatalf("unexpected external bid %.2f (ok=%v)", bid, ok)
	}
	if _, ok := conv.Ask(); ok {
		t.Fatalf("expected missing external ask")
	}
	if state.PositionOf(Orchids) != 2 || state.PositionOf(Roses) != 0 {
		t.Fatalf("unexpected positions %+v", state.Position)
	}
}

func TestOrderSide(t *testing.T) {
	if (Order{Quantity: 3}).Side() != Buy {
		t.Fatalf("positive quantity should buy")
	}
	if (Order{Quantity: -3}).Side() != Sell {
		t.Fatalf("negative quantity should sell")
	}
}
