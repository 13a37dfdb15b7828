package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quotebot-go/internal/config"
)

const defaultConfigPath = "configs/quotebot.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== QuoteBot Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit product limits")
		fmt.Println("3) Edit strategy knobs")
		fmt.Println("4) Save config")
		fmt.Println("5) Replay recorded session")
		fmt.Println("6) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editLimits(reader, cfg)
		case "3":
			editStrategies(reader, cfg)
		case "4":
			if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "5":
			launchReplay(reader)
		case "6":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Session: self=%s tick_step=%d warm_restart=%t std_ddof=%d\n",
		cfg.Session.Self, cfg.Session.TickStep, cfg.Session.WarmRestart, cfg.Session.DDOF())
	fmt.Printf("EMA: mode=%s alpha=%.5f\n", cfg.EMA.Mode, cfg.EMA.Alpha)
	for _, p := range cfg.Products {
		fmt.Printf("  %-15s limit %4d  default %.1f\n", p.Symbol, p.Limit, p.DefaultPrice)
	}
	for _, st := range cfg.Strategies {
		state := "on"
		if st.Disabled {
			state = "off"
		}
		fmt.Printf("  strategy %-12s %-12s %s\n", st.Name, st.Kind, state)
	}
}

func editLimits(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Product Limits ---")
	for i := range cfg.Products {
		p := &cfg.Products[i]
		p.Limit = int(promptFloat(reader, p.Symbol+" limit", float64(p.Limit)))
	}
}

func editStrategies(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Strategy Knobs ---")
	for i := range cfg.Strategies {
		st := &cfg.Strategies[i]
		switch {
		case st.FixedSpread != nil:
			st.FixedSpread.Edge = int(promptFloat(reader, st.Name+" edge", float64(st.FixedSpread.Edge)))
		case st.Trend != nil:
			st.Trend.Offset = promptFloat(reader, st.Name+" offset", st.Trend.Offset)
			st.Trend.TrendShift = promptFloat(reader, st.Name+" trend shift", st.Trend.TrendShift)
		case st.Conversion != nil:
			st.Conversion.ShortTrigger = int(promptFloat(reader, st.Name+" short trigger", float64(st.Conversion.ShortTrigger)))
		case st.Pairs != nil:
			st.Pairs.Threshold = promptFloat(reader, st.Name+" z threshold", st.Pairs.Threshold)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("warning: %v\n", err)
	}
}

func launchReplay(reader *bufio.Reader) {
	fmt.Print("States file [data/states.jsonl]: ")
	states, _ := reader.ReadString('\n')
	states = strings.TrimSpace(states)
	if states == "" {
		states = "data/states.jsonl"
	}
	fmt.Println("Replaying session (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/paper", "-config", locateConfig(), "-states", states)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start replay: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the replay and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if filepath.IsAbs(defaultConfigPath) {
		return defaultConfigPath
	}
	return filepath.Clean(defaultConfigPath)
}
