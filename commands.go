package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	handler "github.com/bent101/wordle-search/api"
	"github.com/bent101/wordle-search/game"
	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/wordlist"
)

var (
	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Recommend guesses for a game you are playing",
		Long: `Prints a guess, then reads the colors the game showed for it.
Type five colors (green yellow gray, or 2 1 0), optionally preceded by the
word you actually played.`,
		Args: cobra.NoArgs,
		RunE: runPlay,
	}

	backtestCmd = &cobra.Command{
		Use:   "backtest",
		Short: "Replay every past answer and report how many are solved",
		Args:  cobra.NoArgs,
		RunE:  runBacktest,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve scoring and suggestions over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	scoreCmd = &cobra.Command{
		Use:   "score GUESS ANSWER",
		Short: "Show the feedback a guess gets against an answer",
		Args:  cobra.ExactArgs(2),
		RunE:  runScore,
	}
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runPlay(cmd *cobra.Command, args []string) error {
	inv, err := loadInventory()
	if err != nil {
		return err
	}
	a, stop, err := newAnalyzer(inv, startingWord())
	if err != nil {
		return err
	}
	defer stop()

	s := &game.Session{
		Analyzer: a,
		In:       os.Stdin,
		Out:      os.Stdout,
		Color:    isTerminal(os.Stdout),
	}
	return s.Play(cmd.Context())
}

func runBacktest(cmd *cobra.Command, args []string) error {
	if cfg.Files.Answers == "" {
		return errors.New("backtest needs files.answers in the config")
	}
	f, err := os.Open(cfg.Files.Answers)
	if err != nil {
		return err
	}
	answers, err := wordlist.LoadAnswers(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Files.Answers, err)
	}

	inv, err := loadInventory()
	if err != nil {
		return err
	}
	a, stop, err := newAnalyzer(inv, startingWord())
	if err != nil {
		return err
	}
	defer stop()

	start := time.Now()
	b := &game.Backtester{Analyzer: a, Progress: isTerminal(os.Stderr), Log: log}
	report, err := b.Run(cmd.Context(), answers)
	if err != nil {
		return err
	}
	log.Info("backtest finished", "answers", report.Answers, "solved", report.Solved(), "took", time.Since(start))

	report.Print(os.Stdout, cfg.Search.MaxGuesses)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	inv, err := loadInventory()
	if err != nil {
		return err
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.ServeAddr,
		Handler:           handler.New(inv, cfg.Search, log).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("serving", "addr", cfg.ServeAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func runScore(cmd *cobra.Command, args []string) error {
	guess, err := hint.ParseWord(args[0])
	if err != nil {
		return err
	}
	answer, err := hint.ParseWord(args[1])
	if err != nil {
		return err
	}

	colors := hint.Score(guess, answer)
	if isTerminal(os.Stdout) {
		fmt.Println(hint.ColoredWord(guess, colors))
	} else {
		fmt.Println(colors.String(), guess)
	}
	fmt.Println(hint.Encode(guess, colors).Pattern())
	return nil
}
