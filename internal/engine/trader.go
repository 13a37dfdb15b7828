// Package engine runs one trading session: it turns each TradingState into a Result by
// updating prices, signals, spreads and cash, then asking every strategy module for orders.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"

	"quotebot-go/internal/config"
	"quotebot-go/internal/execution"
	"quotebot-go/internal/market"
	"quotebot-go/internal/metrics"
	"quotebot-go/internal/paper"
	"quotebot-go/internal/pricing"
	"quotebot-go/internal/risk"
	"quotebot-go/internal/signal"
	"quotebot-go/internal/spread"
	"quotebot-go/internal/strategy"
)

var (
	// ErrModulePanic wraps a panic recovered from a strategy module.
	ErrModulePanic = errors.New("strategy module panicked")
	// ErrModuleTimeout is recorded when a module misses the per-module deadline.
	ErrModuleTimeout = errors.New("strategy module timed out")
)

// ModuleResult is the outcome of one module on one tick.
type ModuleResult struct {
	Module  string
	Orders  []market.Order
	Err     error
	Elapsed time.Duration
}

// Option customises a Trader.
type Option func(*Trader)

// WithModules replaces the modules built from configuration.
func WithModules(modules ...strategy.Module) Option {
	return func(t *Trader) { t.modules = modules }
}

// WithRecorder forwards every booked fill to r.
func WithRecorder(r paper.FillRecorder) Option {
	return func(t *Trader) { t.recorder = r }
}

// zWindows are the windows used to publish a spread's z-score.
type zWindows struct{ short, long int }

// Trader owns all session state. Run is not safe for concurrent use.
type Trader struct {
	cfg     *config.Config
	log     zerolog.Logger
	session string

	catalog     market.Catalog
	limits      risk.Limits
	ema         *signal.Estimator
	oracle      *pricing.Oracle
	spreads     *spread.Tracker
	instruments []spread.Instrument
	zscores     map[string]zWindows
	account     *paper.Account
	recorder    paper.FillRecorder
	modules     []strategy.Module
	exec        *execution.Executor
	timeout     time.Duration

	ticks    int
	restored bool
	last     []ModuleResult
}

// New builds a trader from cfg. Modules come from the strategy factory unless WithModules is given.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) (*Trader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Trader{
		cfg:     cfg,
		session: uuid.NewString(),
		catalog: cfg.Catalog(),
		zscores: make(map[string]zWindows),
		timeout: time.Duration(cfg.Session.ModuleTimeoutMs) * time.Millisecond,
	}
	t.log = log.With().Str("session", t.session).Logger()
	t.limits = risk.FromCatalog(t.catalog)
	t.ema = signal.NewEstimator(emaParams(cfg.EMA), emaOverrides(cfg.Products))
	t.oracle = pricing.NewOracle(t.catalog, t.ema)
	t.exec = execution.NewExecutor(t.log)

	for _, st := range cfg.Strategies {
		if st.Kind == config.KindPairs && st.Pairs != nil && !st.Disabled {
			t.zscores[st.Pairs.Spread] = zWindows{short: st.Pairs.ShortWindow, long: st.Pairs.LongWindow}
		}
	}
	for _, def := range cfg.Spreads {
		t.instruments = append(t.instruments, strategy.Instrument(def))
	}
	t.spreads = t.newTracker()

	for _, opt := range opts {
		opt(t)
	}
	if t.modules == nil {
		modules, err := strategy.BuildAll(cfg)
		if err != nil {
			return nil, fmt.Errorf("build strategies: %w", err)
		}
		t.modules = modules
	}

	var feeBearing []market.Product
	for _, p := range t.catalog.Products() {
		if t.catalog[p].FeeBearing {
			feeBearing = append(feeBearing, p)
		}
	}
	accountOpts := []paper.Option{paper.WithFeeBearing(feeBearing...)}
	if t.recorder != nil {
		accountOpts = append(accountOpts, paper.WithRecorder(t.recorder))
	}
	t.account = paper.NewAccount(cfg.Session.Self, cfg.Session.TickStep, accountOpts...)

	t.log.Info().Int("modules", len(t.modules)).Int("products", len(t.catalog)).Msg("trader ready")
	return t, nil
}

// newTracker registers every configured spread, retaining at least the widest
// z-score window read from it.
func (t *Trader) newTracker() *spread.Tracker {
	tr := spread.NewTracker(t.cfg.Session.DDOF())
	for _, def := range t.cfg.Spreads {
		retain := def.Retain
		if retain <= 0 {
			retain = spread.DefaultRetain
		}
		if w, ok := t.zscores[def.Name]; ok {
			retain = max(retain, w.short, w.long)
		}
		tr.Track(def.Name, retain)
	}
	return tr
}

// Session returns the identifier stamped on every log line of this trader.
func (t *Trader) Session() string { return t.session }

// Results returns the module outcomes of the last tick.
func (t *Trader) Results() []ModuleResult { return t.last }

// Cash returns the realized cash of the session.
func (t *Trader) Cash() float64 { return t.account.Cash() }

// Signal returns the EMA state of p.
func (t *Trader) Signal(p market.Product) (signal.State, bool) { return t.ema.State(p) }

// Run processes one tick. It never fails: module errors only drop that module's orders.
func (t *Trader) Run(ctx context.Context, state market.TradingState) market.Result {
	state.Normalize()
	if t.cfg.Session.WarmRestart && !t.restored {
		t.restored = true
		t.restore(state.TraderData)
	}

	// Mark cash before the EMAs move so the fallback prices are last tick's.
	mids := t.oracle.Mids(state)
	pnl := t.account.Update(state, mids)
	metrics.SessionPnL.Set(pnl)

	// EMAs only see prices observed this tick, never fallbacks.
	for _, p := range t.catalog.Products() {
		if mid, ok := t.oracle.Observed(p, state); ok {
			t.ema.Update(p, mid)
		}
	}
	mids = t.oracle.Mids(state)
	zs := t.recordSpreads(state.Timestamp, mids)

	in := t.input(state, mids)
	t.last = make([]ModuleResult, 0, len(t.modules))
	var accepted []market.Order
	for _, m := range t.modules {
		res := t.decide(ctx, m, in)
		if res.Err == nil {
			combined := append(append([]market.Order(nil), accepted...), res.Orders...)
			if err := t.limits.Check(combined, in.Positions); err != nil {
				res.Err = err
			}
		}
		if res.Err != nil {
			metrics.ModuleFailures.WithLabelValues(res.Module).Inc()
			t.log.Error().Err(res.Err).Str("module", res.Module).Int64("ts", state.Timestamp).Msg("module dropped")
			res.Orders = nil
		}
		for _, o := range res.Orders {
			if err := t.exec.Submit(res.Module, o); err == nil {
				accepted = append(accepted, o)
			}
		}
		t.last = append(t.last, res)
	}

	t.ticks++
	metrics.TicksTotal.Inc()
	t.log.Debug().
		Int64("ts", state.Timestamp).
		Float64("cash", t.account.Cash()).
		Float64("pnl", pnl).
		Interface("positions", state.Position).
		Interface("mids", mids).
		Interface("zscores", zs).
		Int("orders", len(accepted)).
		Msg("tick")

	return market.Result{
		Orders:      t.exec.Flush(),
		Conversions: t.cfg.Session.Conversions,
		TraderData:  t.encode(),
	}
}

func (t *Trader) recordSpreads(ts int64, mids map[market.Product]float64) map[string]float64 {
	zs := make(map[string]float64)
	for _, inst := range t.instruments {
		v, err := inst.Value(mids)
		if err != nil {
			t.log.Debug().Err(err).Msg("spread skipped")
			continue
		}
		if err := t.spreads.Record(inst.Name, ts, v); err != nil {
			t.log.Warn().Err(err).Msg("spread not recorded")
			continue
		}
		w, ok := t.zscores[inst.Name]
		if !ok {
			continue
		}
		if z, ok := t.spreads.ZScore(inst.Name, w.short, w.long); ok {
			zs[inst.Name] = z
			metrics.SpreadZScore.WithLabelValues(inst.Name).Set(z)
		}
	}
	return zs
}

// input builds the read-only per-tick view. Every map is a fresh copy so that an abandoned
// module goroutine never shares memory with the next tick.
func (t *Trader) input(state market.TradingState, mids map[market.Product]float64) strategy.Input {
	in := strategy.Input{
		Timestamp:   state.Timestamp,
		Positions:   make(map[market.Product]int, len(state.Position)),
		Books:       make(map[market.Product]market.OrderDepth, len(state.OrderDepths)),
		Conversions: make(map[market.Product]market.ConversionObservation),
		Mids:        mids,
		Signals:     t.ema.Snapshot(),
		Spreads:     make(map[string][]float64, len(t.instruments)),
		DDOF:        t.spreads.DDOF(),
		Limits:      t.limits,
	}
	for p, qty := range state.Position {
		in.Positions[p] = qty
	}
	for p, d := range state.OrderDepths {
		in.Books[p] = copyDepth(d)
	}
	for p, c := range state.Observations.Conversions {
		in.Conversions[p] = c
	}
	for _, inst := range t.instruments {
		in.Spreads[inst.Name] = t.spreads.Values(inst.Name)
	}
	return in
}

func copyDepth(d market.OrderDepth) market.OrderDepth {
	out := market.OrderDepth{
		BuyOrders:  make(map[int]int, len(d.BuyOrders)),
		SellOrders: make(map[int]int, len(d.SellOrders)),
	}
	for px, qty := range d.BuyOrders {
		out.BuyOrders[px] = qty
	}
	for px, qty := range d.SellOrders {
		out.SellOrders[px] = qty
	}
	return out
}

type outcome struct {
	orders []market.Order
	err    error
}

func (t *Trader) decide(ctx context.Context, m strategy.Module, in strategy.Input) ModuleResult {
	start := time.Now()
	res := ModuleResult{Module: m.Name()}

	if t.timeout <= 0 {
		o := protect(ctx, m, in)
		res.Orders, res.Err = o.orders, o.err
		res.Elapsed = time.Since(start)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	done := make(chan outcome, 1)
	go func() { done <- protect(ctx, m, in) }()
	select {
	case o := <-done:
		res.Orders, res.Err = o.orders, o.err
	case <-ctx.Done():
		res.Err = fmt.Errorf("%w after %s", ErrModuleTimeout, t.timeout)
	}
	res.Elapsed = time.Since(start)
	return res
}

// protect runs one decision, converting a panic into an error.
func protect(ctx context.Context, m strategy.Module, in strategy.Input) outcome {
	var o outcome
	var catcher panics.Catcher
	catcher.Try(func() { o.orders, o.err = m.Decide(ctx, in) })
	if r := catcher.Recovered(); r != nil {
		return outcome{err: fmt.Errorf("%w: %v", ErrModulePanic, r.Value)}
	}
	return o
}

func emaParams(c config.EMA) signal.Params {
	return signal.Params{
		Mode:       signal.Mode(c.Mode),
		Alpha:      c.Alpha,
		ShortAlpha: c.ShortAlpha,
		LongAlpha:  c.LongAlpha,
	}
}

func emaOverrides(products []config.Product) map[market.Product]signal.Params {
	out := make(map[market.Product]signal.Params)
	for _, p := range products {
		if p.EMA != nil {
			out[market.Product(p.Symbol)] = emaParams(*p.EMA)
		}
	}
	return out
}
