package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/bent101/wordle-search/analyzer"
	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/pool"
)

// Failure is an answer the backtest could not solve. Err is nil when the
// game simply ran out of guesses.
type Failure struct {
	Answer string
	Err    error
}

type Report struct {
	Answers  int
	Guesses  map[string]int
	Failures []Failure
}

func (r Report) Solved() int { return len(r.Guesses) }

// Percent is the share of answers solved within the guess budget.
func (r Report) Percent() float64 {
	if r.Answers == 0 {
		return 0
	}
	return 100 * float64(r.Solved()) / float64(r.Answers)
}

// Average is the mean number of guesses over solved answers.
func (r Report) Average() float64 {
	if r.Solved() == 0 {
		return 0
	}
	total := 0
	for _, n := range r.Guesses {
		total += n
	}
	return float64(total) / float64(r.Solved())
}

func (r Report) Print(w io.Writer, maxGuesses int) {
	fmt.Fprintf(w, "Able to solve %.2f%% of %d previous answers within %d guesses\n", r.Percent(), r.Answers, maxGuesses)
	if r.Solved() > 0 {
		fmt.Fprintf(w, "Took an average of %.3f guesses per correct answer\n", r.Average())
	}
	for _, f := range r.Failures {
		if f.Err != nil {
			fmt.Fprintf(w, "  %s: %v\n", f.Answer, f.Err)
		} else {
			fmt.Fprintf(w, "  %s: not solved\n", f.Answer)
		}
	}
}

// Backtester replays past answers. Games that reach the same feedback
// history reuse the guess chosen the first time.
type Backtester struct {
	Analyzer *analyzer.Analyzer
	Progress bool
	Log      *slog.Logger

	cache map[string]string
}

// Run plays every answer. Per-answer problems are recorded in the report;
// only a pool failure or cancellation stops the batch.
func (b *Backtester) Run(ctx context.Context, answers []string) (Report, error) {
	if b.cache == nil {
		b.cache = make(map[string]string)
	}
	log := b.Log
	if log == nil {
		log = slog.Default()
	}

	var bar *progressbar.ProgressBar
	if b.Progress {
		bar = progressbar.Default(int64(len(answers)), "backtest")
		defer bar.Finish()
	}

	report := Report{Answers: len(answers), Guesses: make(map[string]int)}
	for _, answer := range answers {
		n, err := b.playOne(ctx, answer)
		switch {
		case errors.Is(err, pool.ErrPoolFailed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return report, err
		case err != nil:
			log.Error("backtest game failed", "answer", answer, "err", err)
			report.Failures = append(report.Failures, Failure{Answer: answer, Err: err})
		case n == 0:
			report.Failures = append(report.Failures, Failure{Answer: answer})
		default:
			report.Guesses[answer] = n
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	return report, nil
}

// playOne returns the guesses needed, or 0 if the answer was not found.
func (b *Backtester) playOne(ctx context.Context, answer string) (int, error) {
	a := b.Analyzer
	if err := a.Reset(ctx); err != nil {
		return 0, err
	}
	ans, err := hint.ParseWord(answer)
	if err != nil {
		return 0, err
	}

	var history strings.Builder
	for !a.Exhausted() {
		key := history.String()
		guess, ok := b.cache[key]
		if !ok {
			if guess, err = a.BestGuess(ctx); err != nil {
				return 0, err
			}
			b.cache[key] = guess
		}

		g := hint.MustParseWord(guess)
		colors := hint.Score(g, ans)
		if colors.Solved() {
			return a.GuessesUsed() + 1, nil
		}
		if err := a.ApplyFeedback(ctx, guess, colors); err != nil {
			return 0, err
		}
		fmt.Fprintf(&history, "%s:%d;", guess, hint.Encode(g, colors).Pattern())
	}
	return 0, nil
}
