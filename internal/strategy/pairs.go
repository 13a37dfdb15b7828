package strategy

import (
	"context"
	"fmt"
	"math"

	"quotebot-go/internal/market"
	"quotebot-go/internal/spread"
)

// Sizing selects how a pairs trade is sized.
type Sizing string

const (
	// SizeLimit trades as many whole lots of the spread as every leg's limit allows.
	SizeLimit Sizing = "limit"
	// SizeUnit trades a fixed number of units per leg, capped by best-level depth.
	SizeUnit Sizing = "unit"
)

// PairsParams tunes a Pairs module.
type PairsParams struct {
	ShortWindow int
	LongWindow  int
	Threshold   float64
	Sizing      Sizing
	Unit        int
	PriceOffset int
}

// Pairs mean-reverts a tracked spread instrument once its z-score leaves the threshold band.
type Pairs struct {
	instrument spread.Instrument
	params     PairsParams
}

// NewPairs builds a pairs module over instrument.
func NewPairs(instrument spread.Instrument, params PairsParams) *Pairs {
	if params.Sizing == "" {
		params.Sizing = SizeLimit
	}
	return &Pairs{instrument: instrument, params: params}
}

func (p *Pairs) Name() string { return fmt.Sprintf("Pairs(%s)", p.instrument.Name) }

func (p *Pairs) Products() []market.Product {
	out := make([]market.Product, 0, len(p.instrument.Legs))
	for _, leg := range p.instrument.Legs {
		out = append(out, leg.Product)
	}
	return out
}

// direction is -1 to sell the spread, +1 to buy it and 0 inside the band. Both bounds are strict.
func (p *Pairs) direction(z float64) int {
	switch {
	case z > p.params.Threshold:
		return -1
	case z < -p.params.Threshold:
		return 1
	default:
		return 0
	}
}

// Decide trades every leg in the direction that closes the spread's deviation.
func (p *Pairs) Decide(_ context.Context, in Input) ([]market.Order, error) {
	z, ok := spread.ZScore(in.Spreads[p.instrument.Name], p.params.ShortWindow, p.params.LongWindow, in.DDOF)
	if !ok {
		return nil, nil
	}
	dir := p.direction(z)
	if dir == 0 {
		return nil, nil
	}
	if p.params.Sizing == SizeUnit {
		return p.unitOrders(in, dir)
	}
	return p.limitOrders(in, dir)
}

// legSign is +1 when the leg is bought as part of a spread trade in direction dir.
func legSign(dir int, weight float64) int {
	if weight < 0 {
		return -dir
	}
	return dir
}

func (p *Pairs) limitOrders(in Input, dir int) ([]market.Order, error) {
	set := newOrderSet(in)
	lots := math.MaxInt
	for _, leg := range p.instrument.Legs {
		if _, ok := in.Mids[leg.Product]; !ok {
			return nil, fmt.Errorf("%s: %w", leg.Product, ErrMissingPrice)
		}
		room := set.buyRoom(leg.Product)
		if legSign(dir, leg.Weight) < 0 {
			room = set.sellRoom(leg.Product)
		}
		lots = min(lots, int(math.Floor(float64(room)/math.Abs(leg.Weight))))
	}
	if lots <= 0 {
		return nil, nil
	}
	for _, leg := range p.instrument.Legs {
		qty := int(math.Floor(float64(lots) * math.Abs(leg.Weight)))
		set.place(leg.Product, int(in.Mids[leg.Product]), legSign(dir, leg.Weight)*qty)
	}
	return set.orders, nil
}

func (p *Pairs) unitOrders(in Input, dir int) ([]market.Order, error) {
	set := newOrderSet(in)
	for _, leg := range p.instrument.Legs {
		book, ok := in.Books[leg.Product]
		if !ok {
			return nil, fmt.Errorf("%s: %w", leg.Product, ErrMissingBook)
		}
		weight := math.Abs(leg.Weight)
		if legSign(dir, leg.Weight) > 0 {
			lvl, ok := book.BestAsk()
			if !ok {
				continue
			}
			qty := int(math.Floor(float64(min(p.params.Unit, -lvl.Qty)) * weight))
			set.place(leg.Product, lvl.Price+p.params.PriceOffset, qty)
			continue
		}
		lvl, ok := book.BestBid()
		if !ok {
			continue
		}
		qty := int(math.Floor(float64(min(p.params.Unit, lvl.Qty)) * weight))
		set.place(leg.Product, lvl.Price-p.params.PriceOffset, -qty)
	}
	return set.orders, nil
}
