// Package harness speaks the line protocol of the simulation harness: one TradingState
// JSON object per input line, one Result JSON object per output line.
package harness

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"quotebot-go/internal/market"
)

// maxLine bounds a single encoded TradingState; trader data blobs can be large.
const maxLine = 16 << 20

// Decider turns one tick into a result.
type Decider interface {
	Run(ctx context.Context, state market.TradingState) market.Result
}

// Serve reads states from r until EOF or ctx is cancelled and writes one result per state to w.
// A malformed line yields a result with no orders and one conversion so the harness stays in lockstep.
func Serve(ctx context.Context, r io.Reader, w io.Writer, d Decider, log zerolog.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	out := bufio.NewWriter(w)
	enc := json.NewEncoder(out)

	lines := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines++

		var res market.Result
		var state market.TradingState
		if err := json.Unmarshal(line, &state); err != nil {
			log.Warn().Err(err).Int("line", lines).Msg("malformed trading state")
			res.Conversions = 1
		} else {
			res = d.Run(ctx, state)
		}
		if res.Orders == nil {
			res.Orders = map[market.Product][]market.Order{}
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("flush result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read trading state: %w", err)
	}
	log.Info().Int("ticks", lines).Msg("harness input closed")
	return nil
}
