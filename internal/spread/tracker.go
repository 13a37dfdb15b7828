// Package spread tracks rolling spread series between baskets and their components.
package spread

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"quotebot-go/internal/market"
)

// DefaultRetain bounds series that were never registered with an explicit retention.
const DefaultRetain = 256

var (
	// ErrStaleObservation is returned when a timestamp older than the last one is recorded.
	ErrStaleObservation = errors.New("observation older than last recorded timestamp")
	// ErrMissingLeg is returned when a leg has no reference price.
	ErrMissingLeg = errors.New("missing leg price")
)

// Leg is one weighted component of an instrument.
type Leg struct {
	Product market.Product
	Weight  float64
}

// Instrument is a synthetic price: the weighted sum of its legs' mids.
type Instrument struct {
	Name string
	Legs []Leg
}

// Value computes sum(weight * mid) over the legs.
func (i Instrument) Value(mids map[market.Product]float64) (float64, error) {
	var v float64
	for _, leg := range i.Legs {
		mid, ok := mids[leg.Product]
		if !ok {
			return 0, fmt.Errorf("%s: %w %s", i.Name, ErrMissingLeg, leg.Product)
		}
		v += leg.Weight * mid
	}
	return v, nil
}

// Observation is one recorded spread value.
type Observation struct {
	Timestamp int64   `json:"ts"`
	Value     float64 `json:"v"`
}

// Series is a capped, timestamp-ordered spread history.
type Series struct {
	retain int
	obs    []Observation
}

func newSeries(retain int) *Series {
	if retain <= 0 {
		retain = DefaultRetain
	}
	return &Series{retain: retain, obs: make([]Observation, 0, retain)}
}

func (s *Series) record(ts int64, v float64) error {
	if n := len(s.obs); n > 0 {
		last := s.obs[n-1].Timestamp
		if ts < last {
			return ErrStaleObservation
		}
		if ts == last {
			s.obs[n-1].Value = v
			return nil
		}
	}
	if len(s.obs) == s.retain {
		copy(s.obs, s.obs[1:])
		s.obs = s.obs[:len(s.obs)-1]
	}
	s.obs = append(s.obs, Observation{Timestamp: ts, Value: v})
	return nil
}

func (s *Series) values() []float64 {
	out := make([]float64, len(s.obs))
	for i, o := range s.obs {
		out[i] = o.Value
	}
	return out
}

// Tracker owns the spread series of the session.
type Tracker struct {
	ddof   int
	series map[string]*Series
}

// NewTracker builds a tracker whose standard deviations use ddof (1 = sample).
func NewTracker(ddof int) *Tracker {
	if ddof < 0 {
		ddof = 0
	}
	return &Tracker{ddof: ddof, series: make(map[string]*Series)}
}

// DDOF returns the degrees-of-freedom correction used by RollingStd.
func (t *Tracker) DDOF() int { return t.ddof }

// Track registers name keeping at most retain observations.
// Retention only grows: re-registering with a smaller value keeps the larger cap.
func (t *Tracker) Track(name string, retain int) {
	s, ok := t.series[name]
	if !ok {
		t.series[name] = newSeries(retain)
		return
	}
	if retain > s.retain {
		s.retain = retain
	}
}

// Record appends one observation. Recording the last timestamp again replaces it.
func (t *Tracker) Record(name string, ts int64, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s: non-finite spread %v", name, value)
	}
	s, ok := t.series[name]
	if !ok {
		s = newSeries(DefaultRetain)
		t.series[name] = s
	}
	if err := s.record(ts, value); err != nil {
		return fmt.Errorf("%s at %d: %w", name, ts, err)
	}
	return nil
}

// Last returns the most recent observation of name.
func (t *Tracker) Last(name string) (Observation, bool) {
	s, ok := t.series[name]
	if !ok || len(s.obs) == 0 {
		return Observation{}, false
	}
	return s.obs[len(s.obs)-1], true
}

// Len returns the number of retained observations of name.
func (t *Tracker) Len(name string) int {
	if s, ok := t.series[name]; ok {
		return len(s.obs)
	}
	return 0
}

// Values copies the retained values of name, oldest first.
func (t *Tracker) Values(name string) []float64 {
	s, ok := t.series[name]
	if !ok {
		return nil
	}
	return s.values()
}

// RollingMean is the mean of the last window observations, NaN while undefined.
func (t *Tracker) RollingMean(name string, window int) float64 {
	return Mean(t.Values(name), window)
}

// RollingStd is the standard deviation of the last window observations, NaN while undefined.
func (t *Tracker) RollingStd(name string, window int) float64 {
	return Std(t.Values(name), window, t.ddof)
}

// ZScore compares the short-window mean against the long-window baseline.
func (t *Tracker) ZScore(name string, short, long int) (float64, bool) {
	return ZScore(t.Values(name), short, long, t.ddof)
}

// Snapshot copies every series for persistence.
func (t *Tracker) Snapshot() map[string][]Observation {
	out := make(map[string][]Observation, len(t.series))
	for name, s := range t.series {
		obs := make([]Observation, len(s.obs))
		copy(obs, s.obs)
		out[name] = obs
	}
	return out
}

// Restore replays persisted observations in timestamp order.
func (t *Tracker) Restore(snap map[string][]Observation) error {
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, o := range snap[name] {
			if err := t.Record(name, o.Timestamp, o.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
