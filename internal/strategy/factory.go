package strategy

import (
	"errors"
	"fmt"
	"strings"

	"quotebot-go/internal/config"
	"quotebot-go/internal/market"
	"quotebot-go/internal/spread"
)

// ErrUnknownKind is returned for a strategy kind the factory cannot build.
var ErrUnknownKind = errors.New("unknown strategy kind")

// Build returns the module described by st. cfg resolves spread references.
func Build(st config.Strategy, cfg *config.Config) (Module, error) {
	switch strings.ToLower(strings.TrimSpace(st.Kind)) {
	case config.KindFixedSpread:
		if st.FixedSpread == nil {
			return nil, fmt.Errorf("%s: missing fixed_spread block", st.Name)
		}
		p := st.FixedSpread
		fair := p.FairValue
		if fair <= 0 {
			fair = cfg.Catalog()[market.Product(p.Product)].DefaultPrice
		}
		return NewFixedSpread(market.Product(p.Product), fair, p.Edge), nil
	case config.KindTrend:
		if st.Trend == nil {
			return nil, fmt.Errorf("%s: missing trend block", st.Name)
		}
		p := st.Trend
		return NewTrendMaker(market.Product(p.Product), TrendParams{
			Style:       TrendStyle(p.Style),
			Offset:      p.Offset,
			InnerOffset: p.InnerOffset,
			Skew:        p.Skew,
			TrendShift:  p.TrendShift,
			Gate:        Gate(p.Gate),
		}), nil
	case config.KindConversion:
		if st.Conversion == nil {
			return nil, fmt.Errorf("%s: missing conversion block", st.Name)
		}
		p := st.Conversion
		windows := make([]Window, 0, len(p.Windows))
		for _, w := range p.Windows {
			side := market.Buy
			if w.Side == "sell" {
				side = market.Sell
			}
			windows = append(windows, Window{Start: w.Start, End: w.End, Side: side})
		}
		return NewConversionArb(market.Product(p.Product), p.ShortTrigger, windows), nil
	case config.KindPairs:
		if st.Pairs == nil {
			return nil, fmt.Errorf("%s: missing pairs block", st.Name)
		}
		p := st.Pairs
		def, ok := cfg.Spread(p.Spread)
		if !ok {
			return nil, fmt.Errorf("%s: unknown spread %q", st.Name, p.Spread)
		}
		return NewPairs(Instrument(def), PairsParams{
			ShortWindow: p.ShortWindow,
			LongWindow:  p.LongWindow,
			Threshold:   p.Threshold,
			Sizing:      Sizing(p.Sizing),
			Unit:        p.Unit,
			PriceOffset: p.PriceOffset,
		}), nil
	default:
		return nil, fmt.Errorf("%s: %w %q", st.Name, ErrUnknownKind, st.Kind)
	}
}

// BuildAll builds every enabled strategy in configuration order.
func BuildAll(cfg *config.Config) ([]Module, error) {
	modules := make([]Module, 0, len(cfg.Strategies))
	for _, st := range cfg.Strategies {
		if st.Disabled {
			continue
		}
		m, err := Build(st, cfg)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// Instrument converts a configured spread into a tracked instrument.
func Instrument(def config.Spread) spread.Instrument {
	legs := make([]spread.Leg, 0, len(def.Legs))
	for _, leg := range def.Legs {
		legs = append(legs, spread.Leg{Product: market.Product(leg.Product), Weight: leg.Weight})
	}
	return spread.Instrument{Name: def.Name, Legs: legs}
}
