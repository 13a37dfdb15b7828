package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"quotebot-go/internal/market"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "quotebot-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.MetricsAddr != ":9464" {
		t.Fatalf("unexpected metrics addr: %s", cfg.App.MetricsAddr)
	}
	if !cfg.Session.WarmRestart || cfg.Session.ModuleTimeoutMs != 50 {
		t.Fatalf("unexpected session block: %+v", cfg.Session)
	}
	if cfg.Session.Conversions != 1 {
		t.Fatalf("expected default conversions 1, got %d", cfg.Session.Conversions)
	}
	if len(cfg.Products) != 7 {
		t.Fatalf("expected 7 products, got %d", len(cfg.Products))
	}
	starfruit := cfg.Products[1]
	if starfruit.EMA == nil || starfruit.EMA.Mode != "dual" || starfruit.EMA.LongAlpha != 0.075 {
		t.Fatalf("unexpected starfruit ema: %+v", starfruit.EMA)
	}

	catalog := cfg.Catalog()
	orchids := catalog[market.Orchids]
	if !orchids.ExternalQuote || !orchids.FeeBearing || orchids.Limit != 100 {
		t.Fatalf("unexpected orchids spec: %+v", orchids)
	}

	spread, ok := cfg.Spread("GIFT_SPREAD")
	if !ok || len(spread.Legs) != 4 || spread.Legs[2].Weight != -6 || spread.Retain != 88 {
		t.Fatalf("unexpected gift spread: %+v", spread)
	}

	conv := cfg.Strategies[2].Conversion
	if conv == nil || conv.ShortTrigger != -20 || len(conv.Windows) != 2 || conv.Windows[1].End != 0 {
		t.Fatalf("unexpected conversion params: %+v", conv)
	}
	pairs := cfg.Strategies[3].Pairs
	if pairs == nil || pairs.Sizing != "unit" || pairs.Unit != 12 || pairs.Threshold != 1.9 {
		t.Fatalf("unexpected pairs params: %+v", pairs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Catalog()) != 9 {
		t.Fatalf("expected 9 products in default catalog")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.yaml")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Strategies) != 5 || cfg.Strategies[4].Pairs.LongWindow != 80 {
		t.Fatalf("strategies did not survive a round trip: %+v", cfg.Strategies)
	}
}

func TestValidateRejectsUnknownReferences(t *testing.T) {
	cfg := Default()
	cfg.Strategies[3].Pairs.Spread = "NOPE"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown spread, got %v", err)
	}

	cfg = Default()
	cfg.Strategies[0].FixedSpread.Product = "PEARLS"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown product, got %v", err)
	}

	cfg = Default()
	cfg.Strategies[2].Conversion.Windows[0].Side = "both"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad sweep side, got %v", err)
	}

	cfg = Default()
	cfg.Strategies[1].Trend.Gate = "sometimes"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad gate, got %v", err)
	}

	cfg = Default()
	cfg.Strategies[4].Pairs.Sizing = "unit"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unit sizing without a unit, got %v", err)
	}
}

func TestValidateRejectsShortRetention(t *testing.T) {
	cfg := Default()
	cfg.Spreads[0].Retain = 50
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid when retain is below long_window, got %v", err)
	}

	cfg = Default()
	cfg.Spreads[0].Retain = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unbounded retention should validate: %v", err)
	}
}

func TestValidateGateNeedsDualEMA(t *testing.T) {
	for _, gate := range []string{"continuation", "flip"} {
		cfg := Default()
		cfg.Strategies[1].Trend.Gate = gate
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("gate %s on single EMA: expected ErrInvalid, got %v", gate, err)
		}

		cfg.EMA.Mode = "dual"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("gate %s on dual EMA: %v", gate, err)
		}

		cfg.Products[1].EMA = &EMA{Mode: "single", Alpha: 0.1}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("gate %s with single product override: expected ErrInvalid, got %v", gate, err)
		}
	}
}

func TestLoadDDOF(t *testing.T) {
	dir := t.TempDir()
	base, err := os.ReadFile(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	without := filepath.Join(dir, "without.yaml")
	require.NoError(t, os.WriteFile(without, dropLine(base, "  std_ddof: 1"), 0o644))
	cfg, err := Load(without)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Session.DDOF())

	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero, bytes.Replace(base, []byte("std_ddof: 1"), []byte("std_ddof: 0"), 1), 0o644))
	cfg, err = Load(zero)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Session.DDOF())
}

func dropLine(data []byte, line string) []byte {
	var out [][]byte
	for _, l := range bytes.Split(data, []byte("\n")) {
		if string(l) != line {
			out = append(out, l)
		}
	}
	return bytes.Join(out, []byte("\n"))
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("products: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestShippedConfigMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "quotebot.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}
