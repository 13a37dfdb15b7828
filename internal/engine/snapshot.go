package engine

import (
	"encoding/json"
	"fmt"

	"quotebot-go/internal/market"
	"quotebot-go/internal/paper"
	"quotebot-go/internal/signal"
	"quotebot-go/internal/spread"
)

const snapshotVersion = 1

// snapshot is the traderData blob: everything a fresh trader needs to continue a session.
type snapshot struct {
	Version int                             `json:"v"`
	Session string                          `json:"session"`
	Ticks   int                             `json:"ticks"`
	EMA     map[market.Product]signal.State `json:"ema"`
	Spreads map[string][]spread.Observation `json:"spreads"`
	Account paper.State                     `json:"account"`
}

// encode returns the blob for the harness. It is empty unless warm restarts are enabled.
func (t *Trader) encode() string {
	if !t.cfg.Session.WarmRestart {
		return ""
	}
	blob, err := json.Marshal(snapshot{
		Version: snapshotVersion,
		Session: t.session,
		Ticks:   t.ticks,
		EMA:     t.ema.Snapshot(),
		Spreads: t.spreads.Snapshot(),
		Account: t.account.Export(),
	})
	if err != nil {
		t.log.Warn().Err(err).Msg("encode trader data")
		return ""
	}
	return string(blob)
}

// restore loads a blob produced by encode. Unreadable blobs leave the trader cold.
func (t *Trader) restore(data string) {
	if data == "" {
		return
	}
	// spreads replay into a scratch tracker and Import only assigns after parsing,
	// so a rejected blob leaves every component cold
	snap, err := decodeSnapshot(data)
	spreads := t.newTracker()
	if err == nil {
		err = spreads.Restore(snap.Spreads)
	}
	if err == nil {
		err = t.account.Import(snap.Account)
	}
	if err != nil {
		t.log.Warn().Err(err).Msg("trader data ignored, starting cold")
		return
	}
	t.spreads = spreads
	t.ema.Restore(snap.EMA)
	t.ticks = snap.Ticks
	t.log.Info().Str("from_session", snap.Session).Int("ticks", snap.Ticks).Msg("session restored")
}

func decodeSnapshot(data string) (snapshot, error) {
	var snap snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return snapshot{}, fmt.Errorf("decode trader data: %w", err)
	}
	if snap.Version != snapshotVersion {
		return snapshot{}, fmt.Errorf("trader data version %d", snap.Version)
	}
	return snap, nil
}
