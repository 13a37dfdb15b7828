// Binary paper replays a recorded session file through the trader and reports the outcome.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"quotebot-go/internal/config"
	"quotebot-go/internal/engine"
	"quotebot-go/internal/harness"
	"quotebot-go/internal/paper"
	"quotebot-go/internal/util"
)

var (
	configPath = flag.String("config", "configs/quotebot.yaml", "Path to configuration file")
	statesPath = flag.String("states", "data/states.jsonl", "Recorded trading states, one JSON object per line")
	outPath    = flag.String("out", "", "Write results here instead of discarding them")
)

func main() {
	flag.Parse()
	_ = godotenv.Load() // best-effort

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	in, err := os.Open(*statesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open states")
	}
	defer in.Close()

	var out io.Writer = io.Discard
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("create results file")
		}
		defer f.Close()
		out = f
	}

	ledger := paper.NewLedger(cfg.Session.Self)
	trader, err := engine.New(cfg, log, engine.WithRecorder(ledger))
	if err != nil {
		log.Fatal().Err(err).Msg("build trader")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Str("states", *statesPath).Msg("replay started")
	if err := harness.Serve(ctx, in, out, trader, log); err != nil {
		log.Error().Err(err).Msg("replay stopped")
	}

	log.Info().Float64("cash", trader.Cash()).Int("fills", ledger.Fills()).Msg("replay finished")
	for _, p := range ledger.Products() {
		book, _ := ledger.Book(p)
		log.Info().
			Str("sym", string(p)).
			Int("bought", book.Bought).
			Int("sold", book.Sold).
			Int("net", book.Net()).
			Str("flow", book.Flow.StringFixed(1)).
			Int64("first_ts", book.First).
			Int64("last_ts", book.Last).
			Msg("product summary")
	}
}
