// Binary quotebot plays one trading session against the simulation harness over stdin/stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"quotebot-go/internal/config"
	"quotebot-go/internal/engine"
	"quotebot-go/internal/harness"
	"quotebot-go/internal/metrics"
	"quotebot-go/internal/paper"
	"quotebot-go/internal/util"
)

var writeConfig = flag.String("write-config", "", "write the built-in configuration to this path and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load() // best-effort

	if *writeConfig != "" {
		if err := config.Save(*writeConfig, config.Default()); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := config.Default()
	path := getEnv("QUOTEBOT_CONFIG", "")
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	log := util.NewLogger(getEnv("QUOTEBOT_LOG_LEVEL", cfg.App.LogLevel))
	log.Info().Str("config", path).Str("env", cfg.App.Env).Msg("configuration loaded")

	if cfg.App.MetricsAddr != "" {
		srv := metrics.Serve(cfg.App.MetricsAddr)
		defer srv.Close()
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	var opts []engine.Option
	if cfg.Session.FillsPath != "" {
		recorder, err := paper.NewJSONLRecorder(cfg.Session.FillsPath, cfg.Session.Self)
		if err != nil {
			log.Fatal().Err(err).Msg("open fills recorder")
		}
		defer recorder.Close()
		opts = append(opts, engine.WithRecorder(recorder))
	}

	trader, err := engine.New(cfg, log, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("build trader")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := harness.Serve(ctx, os.Stdin, os.Stdout, trader, log); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("harness stopped")
	}
	log.Info().Float64("cash", trader.Cash()).Msg("session finished")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
