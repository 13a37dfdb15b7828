// Package config exposes strongly typed trader configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quotebot-go/internal/market"
)

// Strategy kinds understood by the strategy factory.
const (
	KindFixedSpread = "fixed_spread"
	KindTrend       = "trend"
	KindConversion  = "conversion"
	KindPairs       = "pairs"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Session describes the harness contract and session-wide behaviour.
type Session struct {
	Self            string `yaml:"self"`
	TickStep        int64  `yaml:"tick_step"`
	Conversions     int    `yaml:"conversions"`
	WarmRestart     bool   `yaml:"warm_restart"`
	ModuleTimeoutMs int    `yaml:"module_timeout_ms"`
	StdDDOF         *int   `yaml:"std_ddof"` // absent means sample std (1)
	FillsPath       string `yaml:"fills_path"`
}

// DDOF returns the degrees-of-freedom correction for rolling std.
func (s Session) DDOF() int {
	if s.StdDDOF == nil {
		return 1
	}
	return *s.StdDDOF
}

// EMA configures the smoothing of a product.
type EMA struct {
	Mode       string  `yaml:"mode"`
	Alpha      float64 `yaml:"alpha"`
	ShortAlpha float64 `yaml:"short_alpha"`
	LongAlpha  float64 `yaml:"long_alpha"`
}

// Product lists static metadata for one tradable symbol.
type Product struct {
	Symbol        string  `yaml:"symbol"`
	Limit         int     `yaml:"limit"`
	DefaultPrice  float64 `yaml:"default_price"`
	ExternalQuote bool    `yaml:"external_quote"`
	FeeBearing    bool    `yaml:"fee_bearing"`
	EMA           *EMA    `yaml:"ema,omitempty"`
}

// Leg is one weighted component of a spread instrument.
type Leg struct {
	Product string  `yaml:"product"`
	Weight  float64 `yaml:"weight"`
}

// Spread defines a tracked spread instrument.
type Spread struct {
	Name   string `yaml:"name"`
	Legs   []Leg  `yaml:"legs"`
	Retain int    `yaml:"retain"`
}

// FixedSpreadParams configures the standing symmetric quote. A zero FairValue uses the
// product default price.
type FixedSpreadParams struct {
	Product   string  `yaml:"product"`
	FairValue float64 `yaml:"fair_value"`
	Edge      int     `yaml:"edge"`
}

// TrendParams configures the EMA-anchored maker.
type TrendParams struct {
	Product     string  `yaml:"product"`
	Style       string  `yaml:"style"` // quote|take
	Offset      float64 `yaml:"offset"`
	InnerOffset float64 `yaml:"inner_offset"`
	Skew        float64 `yaml:"skew"`
	TrendShift  float64 `yaml:"trend_shift"`
	Gate        string  `yaml:"gate"` // none|continuation|flip
}

// SweepWindow is an inclusive timestamp range in which the local book is swept on one side.
// End == 0 leaves the window open.
type SweepWindow struct {
	Start int64  `yaml:"start"`
	End   int64  `yaml:"end"`
	Side  string `yaml:"side"` // buy|sell
}

// ConversionParams configures the cross-venue arbitrage.
type ConversionParams struct {
	Product      string        `yaml:"product"`
	ShortTrigger int           `yaml:"short_trigger"`
	Windows      []SweepWindow `yaml:"sweep_windows"`
}

// PairsParams configures a z-score mean-reversion group over a tracked spread.
type PairsParams struct {
	Spread      string  `yaml:"spread"`
	ShortWindow int     `yaml:"short_window"`
	LongWindow  int     `yaml:"long_window"`
	Threshold   float64 `yaml:"threshold"`
	Sizing      string  `yaml:"sizing"` // limit|unit
	Unit        int     `yaml:"unit"`
	PriceOffset int     `yaml:"price_offset"`
}

// Strategy selects a module kind with its parameter block.
type Strategy struct {
	Name        string             `yaml:"name"`
	Kind        string             `yaml:"kind"`
	Disabled    bool               `yaml:"disabled"`
	FixedSpread *FixedSpreadParams `yaml:"fixed_spread,omitempty"`
	Trend       *TrendParams       `yaml:"trend,omitempty"`
	Conversion  *ConversionParams  `yaml:"conversion,omitempty"`
	Pairs       *PairsParams       `yaml:"pairs,omitempty"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Session    Session    `yaml:"session"`
	EMA        EMA        `yaml:"ema"`
	Products   []Product  `yaml:"products"`
	Spreads    []Spread   `yaml:"spreads"`
	Strategies []Strategy `yaml:"strategies"`
}

// Load reads a YAML file from disk and hydrates a validated Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Catalog converts the product list into a market catalog.
func (c *Config) Catalog() market.Catalog {
	out := make(market.Catalog, len(c.Products))
	for _, p := range c.Products {
		out[market.Product(p.Symbol)] = market.Spec{
			Limit:         p.Limit,
			DefaultPrice:  p.DefaultPrice,
			ExternalQuote: p.ExternalQuote,
			FeeBearing:    p.FeeBearing,
		}
	}
	return out
}

// Spread returns the spread definition called name.
func (c *Config) Spread(name string) (Spread, bool) {
	for _, s := range c.Spreads {
		if s.Name == name {
			return s, true
		}
	}
	return Spread{}, false
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Session.Self == "" {
		c.Session.Self = "SUBMISSION"
	}
	if c.Session.TickStep <= 0 {
		c.Session.TickStep = 100
	}
	if c.Session.Conversions == 0 {
		c.Session.Conversions = 1
	}
	if c.Session.StdDDOF == nil {
		ddof := 1
		c.Session.StdDDOF = &ddof
	}
	if *c.Session.StdDDOF < 0 {
		*c.Session.StdDDOF = 0
	}
}

// emaMode is the smoothing mode applied to sym. A product override replaces the
// session block entirely.
func (c *Config) emaMode(sym string) string {
	mode := c.EMA.Mode
	for _, p := range c.Products {
		if p.Symbol == sym && p.EMA != nil {
			mode = p.EMA.Mode
		}
	}
	return mode
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks cross references between products, spreads and strategies.
func (c *Config) Validate() error {
	if len(c.Products) == 0 {
		return fmt.Errorf("%w: no products", ErrInvalid)
	}
	catalog := c.Catalog()
	if len(catalog) != len(c.Products) {
		return fmt.Errorf("%w: duplicate product symbols", ErrInvalid)
	}
	for _, p := range c.Products {
		if p.Symbol == "" || p.Limit <= 0 {
			return fmt.Errorf("%w: product %q needs a symbol and a positive limit", ErrInvalid, p.Symbol)
		}
	}
	known := func(sym string) bool {
		_, ok := catalog[market.Product(sym)]
		return ok
	}
	for _, s := range c.Spreads {
		if s.Name == "" || len(s.Legs) == 0 {
			return fmt.Errorf("%w: spread %q needs a name and legs", ErrInvalid, s.Name)
		}
		for _, leg := range s.Legs {
			if !known(leg.Product) || leg.Weight == 0 {
				return fmt.Errorf("%w: spread %s leg %q", ErrInvalid, s.Name, leg.Product)
			}
		}
	}
	for _, st := range c.Strategies {
		if err := c.validateStrategy(st, known); err != nil {
			return fmt.Errorf("%w: strategy %q: %v", ErrInvalid, st.Name, err)
		}
	}
	return nil
}

func (c *Config) validateStrategy(st Strategy, known func(string) bool) error {
	switch st.Kind {
	case KindFixedSpread:
		if st.FixedSpread == nil || !known(st.FixedSpread.Product) {
			return errors.New("fixed_spread block with a known product required")
		}
	case KindTrend:
		if st.Trend == nil || !known(st.Trend.Product) {
			return errors.New("trend block with a known product required")
		}
		switch st.Trend.Style {
		case "", "quote", "take":
		default:
			return fmt.Errorf("trend style %q", st.Trend.Style)
		}
		switch st.Trend.Gate {
		case "", "none":
		case "continuation", "flip":
			if c.emaMode(st.Trend.Product) != "dual" {
				return fmt.Errorf("trend gate %q needs a dual EMA on %s", st.Trend.Gate, st.Trend.Product)
			}
		default:
			return fmt.Errorf("trend gate %q", st.Trend.Gate)
		}
	case KindConversion:
		if st.Conversion == nil || !known(st.Conversion.Product) {
			return errors.New("conversion block with a known product required")
		}
		for _, w := range st.Conversion.Windows {
			if w.Side != "buy" && w.Side != "sell" {
				return fmt.Errorf("sweep window side %q", w.Side)
			}
			if w.End != 0 && w.End < w.Start {
				return fmt.Errorf("sweep window [%d, %d]", w.Start, w.End)
			}
		}
	case KindPairs:
		if st.Pairs == nil {
			return errors.New("pairs block required")
		}
		def, ok := c.Spread(st.Pairs.Spread)
		if !ok {
			return fmt.Errorf("unknown spread %q", st.Pairs.Spread)
		}
		if st.Pairs.ShortWindow <= 0 || st.Pairs.LongWindow < 2 || st.Pairs.Threshold <= 0 {
			return errors.New("pairs needs short_window > 0, long_window >= 2 and threshold > 0")
		}
		if need := max(st.Pairs.ShortWindow, st.Pairs.LongWindow); def.Retain > 0 && def.Retain < need {
			return fmt.Errorf("spread %s retains %d observations, windows need %d", def.Name, def.Retain, need)
		}
		switch st.Pairs.Sizing {
		case "", "limit":
		case "unit":
			if st.Pairs.Unit <= 0 {
				return errors.New("unit sizing needs unit > 0")
			}
		default:
			return fmt.Errorf("pairs sizing %q", st.Pairs.Sizing)
		}
	default:
		return fmt.Errorf("unknown kind %q", st.Kind)
	}
	return nil
}
