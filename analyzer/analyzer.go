// Package analyzer plays one game a turn at a time on top of the search
// engine, handing the expensive scoring to a Scorer such as the worker pool.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/reducer"
	"github.com/bent101/wordle-search/search"
	"github.com/bent101/wordle-search/strategy"
)

// Scorer evaluates root guesses on replicas kept in step with the analyzer.
type Scorer interface {
	Update(ctx context.Context, guess hint.Word, digits hint.Digits) error
	Reset(ctx context.Context) error
	Prepare(ctx context.Context, indices []int) error
	Score(ctx context.Context, guesses []int) ([]float64, error)
}

type Options struct {
	// Scorer scores shortlisted guesses. Nil scores on the analyzer's own
	// engine.
	Scorer Scorer
	// Strategy narrows the first-level guesses. Nil considers every word.
	Strategy strategy.Strategy
	// StartingWord is played on turn one without searching.
	StartingWord string
	Logger       *slog.Logger
}

type Analyzer struct {
	engine   *search.Engine
	scorer   Scorer
	strategy strategy.Strategy
	start    string
	log      *slog.Logger

	pending string
	solved  bool
}

func New(engine *search.Engine, opts Options) (*Analyzer, error) {
	if opts.StartingWord != "" {
		if _, err := hint.ParseWord(opts.StartingWord); err != nil {
			return nil, fmt.Errorf("starting word: %w", err)
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Analyzer{
		engine:   engine,
		scorer:   opts.Scorer,
		strategy: opts.Strategy,
		start:    opts.StartingWord,
		log:      log,
	}, nil
}

func (a *Analyzer) Solved() bool        { return a.solved }
func (a *Analyzer) GuessesUsed() int    { return a.engine.GuessesUsed() }
func (a *Analyzer) MaxGuesses() int     { return a.engine.Config().MaxGuesses }
func (a *Analyzer) Candidates() []string { return a.engine.Words() }

// Exhausted reports whether the guess budget is spent without a solve.
func (a *Analyzer) Exhausted() bool {
	return !a.solved && a.GuessesUsed() >= a.MaxGuesses()
}

// BestGuess returns the word to play next. Asking again before feedback is
// applied returns the same word.
func (a *Analyzer) BestGuess(ctx context.Context) (string, error) {
	if a.pending != "" {
		return a.pending, nil
	}
	if a.GuessesUsed() == 0 && a.start != "" {
		a.pending = a.start
		return a.pending, nil
	}

	d, ok, err := a.engine.Trivial()
	if err != nil {
		return "", err
	}
	if !ok {
		if d, err = a.search(ctx); err != nil {
			return "", err
		}
	}

	a.pending = a.engine.Inventory().Word(d.Guess).String()
	a.log.Info("best guess", "guess", a.pending, "score", d.Score, "trivial", d.Trivial,
		"candidates", len(a.Candidates()), "turn", a.GuessesUsed()+1)
	return a.pending, nil
}

func (a *Analyzer) search(ctx context.Context) (search.Decision, error) {
	if a.strategy != nil {
		cands, _ := a.engine.Candidates()
		proposal := strategy.Guard(a.strategy, cands, a.engine.State()).ToSlice()
		slices.Sort(proposal)

		if err := a.engine.Restrict(proposal); err != nil {
			return search.Decision{}, err
		}
		if a.scorer != nil {
			if err := a.scorer.Prepare(ctx, proposal); err != nil {
				return search.Decision{}, err
			}
		}
	}

	guesses := a.engine.Shortlist()
	scores, err := a.score(ctx, guesses)
	if err != nil {
		return search.Decision{}, err
	}

	slots := make([]int, len(scores))
	for i := range slots {
		slots[i] = i
	}
	best := reducer.MinBy(slots, func(i int) float64 { return scores[i] })
	a.log.Debug("scored shortlist", "guesses", len(guesses), "strategy", a.strategyName())
	return search.Decision{Guess: guesses[best], Score: scores[best]}, nil
}

func (a *Analyzer) score(ctx context.Context, guesses []int) ([]float64, error) {
	if a.scorer != nil {
		return a.scorer.Score(ctx, guesses)
	}

	scores := make([]float64, len(guesses))
	for i, g := range guesses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := a.engine.ScoreGuess(g)
		if err != nil {
			return nil, err
		}
		scores[i] = v
	}
	return scores, nil
}

func (a *Analyzer) strategyName() string {
	if a.strategy == nil {
		return strategy.None.String()
	}
	return a.strategy.Name()
}

// ApplyFeedback records the colors observed for word, which need not be the
// recommended guess.
func (a *Analyzer) ApplyFeedback(ctx context.Context, word string, colors hint.Colors) error {
	w, err := hint.ParseWord(word)
	if err != nil {
		return err
	}
	digits := hint.Encode(w, colors)

	if err := a.engine.Apply(w, digits); err != nil {
		return err
	}
	if a.scorer != nil {
		if err := a.scorer.Update(ctx, w, digits); err != nil {
			return err
		}
	}

	a.pending = ""
	a.solved = colors.Solved()
	if a.solved {
		a.pending = w.String()
	}
	return nil
}

func (a *Analyzer) Reset(ctx context.Context) error {
	a.engine.Reset()
	a.pending = ""
	a.solved = false
	if a.scorer != nil {
		return a.scorer.Reset(ctx)
	}
	return nil
}
