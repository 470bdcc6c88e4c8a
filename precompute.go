package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bent101/wordle-search/wordlist"
)

var precomputeCmd = &cobra.Command{
	Use:   "precompute",
	Short: "Search the best first guess and save it as the starting word",
	Long: `The first guess is the most expensive search and never changes for a
given word list and config, so it is computed once and read back by play and
backtest.`,
	Args: cobra.NoArgs,
	RunE: runPrecompute,
}

func runPrecompute(cmd *cobra.Command, args []string) error {
	if cfg.Files.Start == "" {
		return errors.New("precompute needs files.start in the config")
	}

	inv, err := loadInventory()
	if err != nil {
		return err
	}
	a, stop, err := newAnalyzer(inv, "")
	if err != nil {
		return err
	}
	defer stop()

	fmt.Printf("=== SEARCHING FIRST GUESS OVER %d WORDS ===\n", inv.Len())
	start := time.Now()
	guess, err := a.BestGuess(cmd.Context())
	if err != nil {
		return err
	}

	if err := wordlist.SaveStartingWord(cfg.Files.Start, guess); err != nil {
		return err
	}
	fmt.Printf("✓ Best first guess %s written to %s in %v\n", guess, cfg.Files.Start, time.Since(start).Round(time.Millisecond))
	return nil
}
