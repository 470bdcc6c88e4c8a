package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bent101/wordle-search/analyzer"
	"github.com/bent101/wordle-search/config"
	"github.com/bent101/wordle-search/logging"
	"github.com/bent101/wordle-search/pool"
	"github.com/bent101/wordle-search/reducer"
	"github.com/bent101/wordle-search/search"
	"github.com/bent101/wordle-search/strategy"
	"github.com/bent101/wordle-search/wordlist"
)

var (
	configPath  string
	logLevel    string
	logJSON     bool
	metricsAddr string
	workers     int
	strategyArg string

	cfg      config.Config
	log      *slog.Logger
	closeLog = func() error { return nil }

	rootCmd = &cobra.Command{
		Use:   "wordle-search",
		Short: "Finds the Wordle guess with the fewest expected guesses left",
		Long: `wordle-search recommends guesses by searching the game tree of
possible feedback, minimizing the expected number of guesses to solve.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&configPath, "config", "c", "wordle.yaml", "settings file")
	f.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	f.BoolVar(&logJSON, "log-json", false, "log JSON lines")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	f.IntVarP(&workers, "workers", "w", 0, "worker pool size")
	f.StringVarP(&strategyArg, "strategy", "s", "", "guess strategy: none, answers, common or unused")

	rootCmd.AddCommand(playCmd, backtestCmd, precomputeCmd, serveCmd, scoreCmd)
}

// setup loads the config, lets flags override it and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(configPath); err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if f.Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if f.Changed("workers") {
		cfg.Pool.Workers = workers
	}
	if f.Changed("strategy") {
		cfg.Strategy = strategyArg
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if log, closeLog, err = logging.New(cfg.Log, os.Stderr); err != nil {
		return err
	}
	slog.SetDefault(log)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cmd.Context(), cfg.MetricsAddr)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server stopped", "err", err)
	}
}

func loadInventory() (*reducer.Inventory, error) {
	start := time.Now()
	inv, err := cfg.Files.Inventory(cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("load word list: %w", err)
	}
	log.Info("loaded word list", "words", inv.Len(), "weights", cfg.Weights, "took", time.Since(start))
	return inv, nil
}

// newAnalyzer wires an engine, a worker pool and the configured strategy.
// The returned func stops the pool.
func newAnalyzer(inv *reducer.Inventory, startingWord string) (*analyzer.Analyzer, func(), error) {
	engine, err := search.New(inv, cfg.Search, log)
	if err != nil {
		return nil, nil, err
	}

	kind, err := strategy.Parse(cfg.Strategy)
	if err != nil {
		return nil, nil, err
	}
	strat, err := strategy.New(kind, inv, cfg.Options)
	if err != nil {
		return nil, nil, err
	}

	p, err := pool.New(inv, cfg.Search, cfg.Pool, log)
	if err != nil {
		return nil, nil, err
	}

	a, err := analyzer.New(engine, analyzer.Options{
		Scorer:       p,
		Strategy:     strat,
		StartingWord: startingWord,
		Logger:       log,
	})
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return a, p.Close, nil
}

// startingWord reads the precomputed first guess, if any.
func startingWord() string {
	w, err := wordlist.LoadStartingWord(cfg.Files.Start)
	if err != nil {
		log.Warn("ignoring starting word", "path", cfg.Files.Start, "err", err)
		return ""
	}
	if w == "" {
		log.Info("no precomputed starting word, the first guess will be searched", "path", cfg.Files.Start)
	}
	return w
}
