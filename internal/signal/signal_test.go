package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"quotebot-go/internal/market"
)

func TestFirstUpdateSeedsWithoutSmoothing(t *testing.T) {
	est := NewEstimator(Params{Mode: ModeSingle, Alpha: 0.1}, nil)
	if _, ok := est.State(market.Starfruit); ok {
		t.Fatalf("expected no state before first update")
	}
	est.Update(market.Starfruit, 5012.5)
	st, ok := est.State(market.Starfruit)
	require.True(t, ok)
	require.Equal(t, 5012.5, st.Value)
	require.Equal(t, 0, st.Trend)
}

func TestSingleEMARecursionAndTrend(t *testing.T) {
	est := NewEstimator(Params{Mode: ModeSingle, Alpha: 0.5}, nil)
	est.Update(market.Starfruit, 100)
	est.Update(market.Starfruit, 110)

	st, _ := est.State(market.Starfruit)
	require.InDelta(t, 105, st.Value, 1e-9)
	require.InDelta(t, 100, st.Prev, 1e-9)
	require.Equal(t, 1, st.Trend)

	est.Update(market.Starfruit, 95)
	st, _ = est.State(market.Starfruit)
	require.InDelta(t, 100, st.Value, 1e-9)
	require.Equal(t, -1, st.Trend)

	est.Update(market.Starfruit, 100)
	st, _ = est.State(market.Starfruit)
	require.Equal(t, 0, st.Trend)
}

func TestDualEMACrossover(t *testing.T) {
	est := NewEstimator(DefaultParams, map[market.Product]Params{
		market.Starfruit: {Mode: ModeDual, ShortAlpha: 0.5, LongAlpha: 0.1},
	})
	est.Update(market.Starfruit, 100)
	est.Update(market.Starfruit, 110)
	st, _ := est.State(market.Starfruit)
	require.InDelta(t, 105, st.Short, 1e-9)
	require.InDelta(t, 101, st.Long, 1e-9)
	require.InDelta(t, 4, st.Signal, 1e-9)
	require.Equal(t, 0.0, st.Crossover())
	require.Equal(t, st.Long, st.Value)

	est.Update(market.Starfruit, 112)
	st, _ = est.State(market.Starfruit)
	require.Greater(t, st.Crossover(), 0.0, "trend continuation keeps the sign")

	for _, px := range []float64{80, 80} {
		est.Update(market.Starfruit, px)
	}
	st, _ = est.State(market.Starfruit)
	require.Less(t, st.Signal, 0.0)

	// the flip happened on the first 80; a further drop continues it
	est.Update(market.Starfruit, 79)
	st, _ = est.State(market.Starfruit)
	require.Greater(t, st.Crossover(), 0.0)
}

func TestDualEMAFlipIsNegativeCrossover(t *testing.T) {
	est := NewEstimator(Params{Mode: ModeDual, ShortAlpha: 0.5, LongAlpha: 0.1}, nil)
	for _, px := range []float64{100, 110, 112} {
		est.Update(market.Coconut, px)
	}
	est.Update(market.Coconut, 80)
	st, _ := est.State(market.Coconut)
	require.Less(t, st.Crossover(), 0.0)
}

func TestNonFinitePriceSkipped(t *testing.T) {
	est := NewEstimator(Params{Alpha: 0.2}, nil)
	est.Update(market.Roses, math.NaN())
	if _, ok := est.State(market.Roses); ok {
		t.Fatalf("NaN must not seed state")
	}
	est.Update(market.Roses, 14332)
	est.Update(market.Roses, math.Inf(1))
	st, _ := est.State(market.Roses)
	require.Equal(t, 14332.0, st.Value)
	require.Equal(t, 1, st.Samples)
}

func TestReplayIsDeterministic(t *testing.T) {
	prices := []float64{5012, 5013.5, 5011, 5015, 5014.5, 5010, 5012}
	run := func() []float64 {
		est := NewEstimator(DefaultParams, nil)
		out := make([]float64, 0, len(prices))
		for _, px := range prices {
			est.Update(market.Starfruit, px)
			st, _ := est.State(market.Starfruit)
			out = append(out, st.Value)
		}
		return out
	}
	require.Equal(t, run(), run())
}

func TestInvalidAlphaFallsBack(t *testing.T) {
	est := NewEstimator(Params{Mode: "bogus", Alpha: 1.5}, nil)
	params := est.Params(market.Amethysts)
	require.Equal(t, ModeSingle, params.Mode)
	require.Equal(t, DefaultParams.Alpha, params.Alpha)
}

func TestSnapshotRestore(t *testing.T) {
	est := NewEstimator(DefaultParams, nil)
	est.Update(market.Chocolate, 7797)
	est.Update(market.Chocolate, 7800)

	restored := NewEstimator(DefaultParams, nil)
	restored.Restore(est.Snapshot())
	a, _ := est.State(market.Chocolate)
	b, _ := restored.State(market.Chocolate)
	require.Equal(t, a, b)
}
