package spread

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"quotebot-go/internal/market"
)

func giftInstrument() Instrument {
	return Instrument{Name: "GIFT_SPREAD", Legs: []Leg{
		{Product: market.GiftBasket, Weight: 1},
		{Product: market.Chocolate, Weight: -4},
		{Product: market.Strawberries, Weight: -6},
		{Product: market.Roses, Weight: -1},
	}}
}

func TestSpreadRoundTrip(t *testing.T) {
	mids := map[market.Product]float64{
		market.GiftBasket:   70097.5,
		market.Chocolate:    7797.5,
		market.Strawberries: 4008,
		market.Roses:        14332.5,
	}
	value, err := giftInstrument().Value(mids)
	require.NoError(t, err)
	want := 70097.5 - (4*7797.5 + 6*4008 + 14332.5)
	require.InDelta(t, want, value, 1e-9)

	tracker := NewTracker(1)
	require.NoError(t, tracker.Record("GIFT_SPREAD", 100, value))
	last, ok := tracker.Last("GIFT_SPREAD")
	require.True(t, ok)
	require.InDelta(t, want, last.Value, 1e-9)
	require.Equal(t, int64(100), last.Timestamp)
}

func TestInstrumentMissingLeg(t *testing.T) {
	_, err := giftInstrument().Value(map[market.Product]float64{market.GiftBasket: 1})
	if !errors.Is(err, ErrMissingLeg) {
		t.Fatalf("expected ErrMissingLeg, got %v", err)
	}
}

func TestRollingStatsUndefinedUntilWindowFull(t *testing.T) {
	tracker := NewTracker(1)
	for i := 0; i < 4; i++ {
		require.NoError(t, tracker.Record("S", int64(i*100), float64(i)))
	}
	require.True(t, math.IsNaN(tracker.RollingMean("S", 5)))
	require.True(t, math.IsNaN(tracker.RollingStd("S", 5)))
	_, ok := tracker.ZScore("S", 2, 5)
	require.False(t, ok)

	require.NoError(t, tracker.Record("S", 400, 4))
	require.InDelta(t, 2, tracker.RollingMean("S", 5), 1e-12)
	require.InDelta(t, math.Sqrt(2.5), tracker.RollingStd("S", 5), 1e-12)
}

func TestPopulationStd(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4}
	require.InDelta(t, math.Sqrt(2), Std(values, 5, 0), 1e-12)
	require.InDelta(t, math.Sqrt(2.5), Std(values, 5, 1), 1e-12)
	require.True(t, math.IsNaN(Std(values, 1, 1)))
}

func TestZScoreSignSymmetry(t *testing.T) {
	const k = 3.0
	up := []float64{0, 0, 0, 0, 0, 0, 0, 0, k, k}
	down := make([]float64, len(up))
	for i, v := range up {
		down[i] = -v
	}
	zUp, ok := ZScore(up, 2, 10, 1)
	require.True(t, ok)
	zDown, ok := ZScore(down, 2, 10, 1)
	require.True(t, ok)
	require.Greater(t, zUp, 0.0)
	require.Less(t, zDown, 0.0)
	require.InDelta(t, zUp, -zDown, 1e-12)
}

func TestZScoreZeroVarianceIsNoSignal(t *testing.T) {
	flat := []float64{5, 5, 5, 5, 5}
	if _, ok := ZScore(flat, 2, 5, 1); ok {
		t.Fatalf("zero std must not produce a signal")
	}
}

func TestRetentionCap(t *testing.T) {
	tracker := NewTracker(1)
	tracker.Track("S", 3)
	for i := 1; i <= 10; i++ {
		require.NoError(t, tracker.Record("S", int64(i), float64(i)))
	}
	require.Equal(t, 3, tracker.Len("S"))
	require.Equal(t, []float64{8, 9, 10}, tracker.Values("S"))

	tracker.Track("S", 2)
	require.NoError(t, tracker.Record("S", 11, 11))
	require.Equal(t, 3, tracker.Len("S"), "retention never shrinks")
}

func TestRecordSameTimestampReplaces(t *testing.T) {
	tracker := NewTracker(1)
	require.NoError(t, tracker.Record("S", 100, 1))
	require.NoError(t, tracker.Record("S", 100, 2))
	require.Equal(t, []float64{2}, tracker.Values("S"))

	err := tracker.Record("S", 50, 3)
	require.ErrorIs(t, err, ErrStaleObservation)
	require.Error(t, tracker.Record("S", 200, math.NaN()))
}

func TestSnapshotRestore(t *testing.T) {
	tracker := NewTracker(1)
	for i := 0; i < 5; i++ {
		require.NoError(t, tracker.Record("COCONUT_SPREAD", int64(i*100), float64(i*i)))
	}
	restored := NewTracker(1)
	require.NoError(t, restored.Restore(tracker.Snapshot()))
	require.Equal(t, tracker.Values("COCONUT_SPREAD"), restored.Values("COCONUT_SPREAD"))
}
