package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"encore/internal/config"
	"encore/internal/script"
	"encore/internal/sim"
)

// encore-sim plays one scripted career headlessly and reports weekly chart
// standings. It runs the same script twice and compares snapshot hashes, so
// a determinism regression fails the run instead of shipping.
func main() {
	cfg := config.LoadSimFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	bal, err := config.LoadBalance(cfg.BalanceFile)
	if err != nil {
		logger.Error("load balance", "err", err)
		os.Exit(1)
	}

	steps := script.Default()
	if cfg.ScriptFile != "" {
		steps, err = script.Load(cfg.ScriptFile)
		if err != nil {
			logger.Error("load script", "err", err)
			os.Exit(1)
		}
	}

	first, err := run(cfg, bal, steps, logger, true)
	if err != nil {
		logger.Error("simulation failed", "err", err)
		os.Exit(1)
	}
	second, err := run(cfg, bal, steps, logger, false)
	if err != nil {
		logger.Error("verification run failed", "err", err)
		os.Exit(1)
	}
	if first != second {
		logger.Error("determinism check failed", "first", first, "second", second)
		os.Exit(1)
	}
	logger.Info("simulation complete", "weeks", cfg.Weeks, "seed", cfg.Seed, "snapshot_sha256", first)
}

func run(cfg config.SimConfig, bal sim.Balance, steps []script.Step, logger *slog.Logger, report bool) (string, error) {
	state := sim.NewState("sim", cfg.Artist, cfg.Seed, bal)
	runner := script.NewRunner(state)

	for week := 1; week <= cfg.Weeks; week++ {
		if err := runner.Apply(week, steps); err != nil {
			return "", err
		}
		state.AdvanceWeek()
		if report {
			reportWeek(state, logger)
		}
	}

	snapshot, err := state.Snapshot()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(snapshot)
	return hex.EncodeToString(sum[:]), nil
}

func reportWeek(state *sim.State, logger *slog.Logger) {
	summary := state.Summarize()
	attrs := []any{
		"date", state.Date.String(),
		"streams", summary.TotalStreams,
		"pending_offers", summary.PendingOffers,
	}
	if summary.HotRank > 0 {
		attrs = append(attrs, "hot_rank", summary.HotRank)
	}
	for _, e := range state.Chart(sim.ChartHot).Entries {
		if e.Player && e.Rank <= 10 {
			attrs = append(attrs, "top10", fmt.Sprintf("%s (#%d, peak %d, %d wks)", e.Title, e.Rank, e.Peak, e.WeeksOn))
			break
		}
	}
	logger.Info("week simulated", attrs...)
}
