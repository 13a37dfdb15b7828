// Package signal maintains per-product exponential moving averages and the trend signals derived from them.
package signal

import (
	"math"

	"quotebot-go/internal/market"
)

// Mode selects how an estimator smooths a product.
type Mode string

const (
	// ModeSingle keeps one EMA and a sign-of-change trend.
	ModeSingle Mode = "single"
	// ModeDual keeps a short and a long EMA and their difference as a crossover signal.
	ModeDual Mode = "dual"
)

// Params configures the smoothing of one product.
type Params struct {
	Mode       Mode
	Alpha      float64
	ShortAlpha float64
	LongAlpha  float64
}

// DefaultParams mirrors the single EMA used by the basket session.
var DefaultParams = Params{Mode: ModeSingle, Alpha: 0.06625, ShortAlpha: 0.5, LongAlpha: 0.075}

// State is a value snapshot of one product's smoothing state.
type State struct {
	Ready      bool
	Samples    int
	Value      float64 // reference EMA: the single EMA, or the long EMA in dual mode
	Prev       float64
	Short      float64
	Long       float64
	Signal     float64 // Short - Long
	PrevSignal float64
	Trend      int // sign(Value - Prev)
}

// Crossover is Signal(t) * Signal(t-1); negative right after the short EMA crosses the long one.
func (s State) Crossover() float64 { return s.Signal * s.PrevSignal }

// Estimator owns the EMA state of every product for the session.
type Estimator struct {
	defaults  Params
	overrides map[market.Product]Params
	states    map[market.Product]*State
}

// NewEstimator builds an estimator; invalid alphas fall back to DefaultParams.
func NewEstimator(defaults Params, overrides map[market.Product]Params) *Estimator {
	e := &Estimator{
		defaults:  sanitize(defaults),
		overrides: make(map[market.Product]Params, len(overrides)),
		states:    make(map[market.Product]*State),
	}
	for p, params := range overrides {
		e.overrides[p] = sanitize(params)
	}
	return e
}

// Params returns the smoothing parameters applied to p.
func (e *Estimator) Params(p market.Product) Params {
	if params, ok := e.overrides[p]; ok {
		return params
	}
	return e.defaults
}

// Update folds one mid-price into the state of p. Non-finite prices are skipped.
func (e *Estimator) Update(p market.Product, mid float64) {
	if math.IsNaN(mid) || math.IsInf(mid, 0) {
		return
	}
	params := e.Params(p)
	st := e.states[p]
	if st == nil {
		st = &State{}
		e.states[p] = st
	}

	if !st.Ready {
		*st = State{Ready: true, Samples: 1, Value: mid, Prev: mid, Short: mid, Long: mid}
		return
	}

	st.Samples++
	st.Prev = st.Value
	switch params.Mode {
	case ModeDual:
		st.Short = smooth(params.ShortAlpha, mid, st.Short)
		st.Long = smooth(params.LongAlpha, mid, st.Long)
		st.PrevSignal = st.Signal
		st.Signal = st.Short - st.Long
		st.Value = st.Long
	default:
		st.Value = smooth(params.Alpha, mid, st.Value)
		st.Short, st.Long = st.Value, st.Value
	}
	st.Trend = sign(st.Value - st.Prev)
}

// State returns a copy of the state of p; ok is false before the first update.
func (e *Estimator) State(p market.Product) (State, bool) {
	st := e.states[p]
	if st == nil || !st.Ready {
		return State{}, false
	}
	return *st, true
}

// Last implements pricing.Fallbacks with the reference EMA.
func (e *Estimator) Last(p market.Product) (float64, bool) {
	st, ok := e.State(p)
	return st.Value, ok
}

// Snapshot copies every ready state.
func (e *Estimator) Snapshot() map[market.Product]State {
	out := make(map[market.Product]State, len(e.states))
	for p, st := range e.states {
		if st.Ready {
			out[p] = *st
		}
	}
	return out
}

// Restore replaces the state of every product present in states.
func (e *Estimator) Restore(states map[market.Product]State) {
	for p, st := range states {
		if !st.Ready {
			continue
		}
		cp := st
		e.states[p] = &cp
	}
}

func smooth(alpha, mid, prev float64) float64 {
	return alpha*mid + (1-alpha)*prev
}

func sanitize(p Params) Params {
	if p.Mode != ModeDual {
		p.Mode = ModeSingle
	}
	if !validAlpha(p.Alpha) {
		p.Alpha = DefaultParams.Alpha
	}
	if !validAlpha(p.ShortAlpha) {
		p.ShortAlpha = DefaultParams.ShortAlpha
	}
	if !validAlpha(p.LongAlpha) {
		p.LongAlpha = DefaultParams.LongAlpha
	}
	return p
}

func validAlpha(a float64) bool { return a > 0 && a < 1 }

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
