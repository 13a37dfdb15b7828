package config

// Default returns the basket session used against the round-4 dataset.
func Default() *Config {
	cfg := &Config{
		App: App{Name: "quotebot", Env: "sim", LogLevel: "info"},
		Session: Session{
			Self:        "SUBMISSION",
			TickStep:    100,
			Conversions: 1,
			StdDDOF:     intPtr(1),
		},
		EMA: EMA{Mode: "single", Alpha: 0.06625},
		Products: []Product{
			{Symbol: "AMETHYSTS", Limit: 20, DefaultPrice: 10_000},
			{Symbol: "STARFRUIT", Limit: 20, DefaultPrice: 5_012},
			{Symbol: "ORCHIDS", Limit: 100, DefaultPrice: 1_050, ExternalQuote: true, FeeBearing: true},
			{Symbol: "CHOCOLATE", Limit: 250, DefaultPrice: 7_797},
			{Symbol: "STRAWBERRIES", Limit: 350, DefaultPrice: 4_008},
			{Symbol: "ROSES", Limit: 60, DefaultPrice: 14_332},
			{Symbol: "GIFT_BASKET", Limit: 60, DefaultPrice: 70_097},
			{Symbol: "COCONUT", Limit: 300, DefaultPrice: 10_040},
			{Symbol: "COCONUT_COUPON", Limit: 600, DefaultPrice: 620},
		},
		Spreads: []Spread{
			{Name: "GIFT_SPREAD", Retain: 100, Legs: []Leg{
				{Product: "GIFT_BASKET", Weight: 1},
				{Product: "CHOCOLATE", Weight: -4},
				{Product: "STRAWBERRIES", Weight: -6},
				{Product: "ROSES", Weight: -1},
			}},
			{Name: "COCONUT_SPREAD", Retain: 80, Legs: []Leg{
				{Product: "COCONUT", Weight: 1},
				{Product: "COCONUT_COUPON", Weight: -2},
			}},
		},
		Strategies: []Strategy{
			{Name: "amethysts", Kind: KindFixedSpread, FixedSpread: &FixedSpreadParams{Product: "AMETHYSTS", Edge: 2}},
			{Name: "starfruit", Kind: KindTrend, Trend: &TrendParams{
				Product: "STARFRUIT", Style: "quote", Offset: 1.5, InnerOffset: 1, Skew: 6.67, Gate: "none",
			}},
			{Name: "orchids", Kind: KindConversion, Conversion: &ConversionParams{
				Product:      "ORCHIDS",
				ShortTrigger: -40,
				// fitted to one historical day; see DESIGN.md
				Windows: []SweepWindow{
					{Start: 600_000, End: 800_000, Side: "buy"},
					{Start: 800_100, Side: "sell"},
				},
			}},
			{Name: "gift_basket", Kind: KindPairs, Pairs: &PairsParams{
				Spread: "GIFT_SPREAD", ShortWindow: 5, LongWindow: 100, Threshold: 1.65, Sizing: "limit",
			}},
			{Name: "coconut", Kind: KindPairs, Pairs: &PairsParams{
				Spread: "COCONUT_SPREAD", ShortWindow: 4, LongWindow: 80, Threshold: 1.5, Sizing: "limit",
			}},
		},
	}
	return cfg
}

func intPtr(v int) *int { return &v }
