// Command simulate plays matches headlessly with the greedy bot on a virtual
// clock and prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cardbattle/internal/bot"
	"cardbattle/internal/config"
	"cardbattle/internal/game"
	"cardbattle/internal/history"
	"cardbattle/internal/logging"
	"cardbattle/internal/scoring"
	"cardbattle/internal/supply"
)

type options struct {
	games       int
	seed        uint64
	catalog     string
	opponent    string
	wear        int
	historyPath string
	logLevel    string
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.IntVar(&o.games, "games", 10, "number of matches to play")
	fs.Uint64Var(&o.seed, "seed", 1, "card supply seed (0 for random)")
	fs.StringVar(&o.catalog, "catalog", supply.DefaultCatalog, "embedded card catalog")
	fs.StringVar(&o.opponent, "opponent", "demo", "opponent roster: demo or catalog")
	fs.IntVar(&o.wear, "wear", 60, "pre-damage step for a catalog opponent roster")
	fs.StringVar(&o.historyPath, "history", "", "SQLite file to record results in")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.games < 1 {
		return o, fmt.Errorf("games must be positive")
	}
	if o.opponent != "demo" && o.opponent != "catalog" {
		return o, fmt.Errorf("unknown opponent %q", o.opponent)
	}
	if catalogs := supply.Catalogs(); !slices.Contains(catalogs, o.catalog) {
		return o, fmt.Errorf("unknown catalog %q (have %s)", o.catalog, strings.Join(catalogs, ", "))
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err == nil {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = run(ctx, opts)
		stop()
	}
	if err != nil {
		_, _ = os.Stderr.WriteString("simulate: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(opts.logLevel, true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := supply.LoadCatalog(opts.catalog)
	if err != nil {
		return err
	}
	supplier, err := supply.NewCatalogSupplier(catalog, supply.WithSeed(opts.seed))
	if err != nil {
		return err
	}

	var recorder game.Recorder
	if opts.historyPath != "" {
		h, err := history.Open(opts.historyPath)
		if err != nil {
			return err
		}
		defer func() { _ = h.Close() }()
		recorder = h
	}

	var opponent func() []*game.Card
	if opts.opponent == "catalog" {
		opponent = func() []*game.Card { return supplier.Roster(8, opts.wear) }
	}

	var won, lost, timedOut, rounds, coins int
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < opts.games; i++ {
		eng := game.NewEngine(game.Options{
			ID:       fmt.Sprintf("sim-%03d", i+1),
			Rules:    cfg.GameRules(),
			Supplier: supplier,
			Scorer:   scoring.SurvivalScorer{},
			Recorder: recorder,
			Logger:   logger,
			Opponent: opponent,
		})
		eng.Reset(ctx, clock)
		snap, end, err := bot.Play(ctx, eng, clock)
		if err != nil {
			return err
		}
		clock = end.Add(time.Minute)

		outcome := "lost"
		switch {
		case snap.Won:
			won++
			outcome = "won"
		case snap.TimedOut:
			timedOut++
			lost++
		default:
			lost++
		}
		rounds += snap.Round
		coins += snap.Coins
		logger.Info("match finished",
			zap.String("game_id", snap.ID),
			zap.String("outcome", outcome),
			zap.Int("round", snap.Round),
			zap.Int("coins", snap.Coins))
		fmt.Printf("%s\t%s\trounds=%d\tcoins=%d\n", snap.ID, outcome, snap.Round, snap.Coins)
	}

	fmt.Printf("played=%d won=%d lost=%d timed_out=%d avg_rounds=%.1f avg_coins=%.1f\n",
		opts.games, won, lost, timedOut,
		float64(rounds)/float64(opts.games),
		float64(coins)/float64(opts.games))
	return nil
}
