// Package search picks the guess that minimizes the expected number of
// guesses still needed, by recursive expectation over feedback outcomes.
//
// Scores count the guess being made: a certain win this turn scores 1.
// Failing to solve within budget costs Config.FailurePenalty.
package search

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/bent101/wordle-search/constraint"
	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/reducer"
)

// ErrExhausted is returned when asked for a guess after the budget is spent.
var ErrExhausted = errors.New("guess budget exhausted")

// Decision is a chosen guess and its expected number of guesses.
type Decision struct {
	Guess   int
	Score   float64
	Trivial bool
}

// Stats counts search work since the engine was built.
type Stats struct {
	Nodes      int
	MemoHits   int
	MemoMisses int
}

// Engine owns one constraint stack and one reducer. It is not safe for
// concurrent use; the pool gives every worker its own.
type Engine struct {
	cfg   Config
	inv   *reducer.Inventory
	stack *constraint.Stack
	red   *reducer.Reducer
	log   *slog.Logger

	used     int
	restrict []int
	allowed  *bitset.BitSet

	memo   map[string]float64
	keyBuf []byte
	stats  Stats
}

func New(inv *reducer.Inventory, cfg Config, log *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		cfg:    cfg,
		inv:    inv,
		stack:  constraint.NewStack(),
		red:    reducer.New(inv),
		log:    log,
		memo:   make(map[string]float64),
		keyBuf: make([]byte, 0, constraint.KeySize+2),
	}, nil
}

func (e *Engine) Config() Config                { return e.cfg }
func (e *Engine) Inventory() *reducer.Inventory { return e.inv }
func (e *Engine) State() constraint.State       { return e.stack.Top() }
func (e *Engine) GuessesUsed() int              { return e.used }
func (e *Engine) Stats() Stats                  { return e.stats }

// Candidates returns the answers still consistent with every applied guess.
func (e *Engine) Candidates() ([]int, []float64) { return e.red.Candidates() }

func (e *Engine) Words() []string { return e.red.Words() }

// Partition groups the current candidates by the feedback guess would get.
func (e *Engine) Partition(guess int) []reducer.Bucket { return e.red.Partition(guess) }

func (e *Engine) left() int { return e.cfg.MaxGuesses - e.used }

func (e *Engine) rootDepth() int { return min(e.cfg.MaxDepth, e.left()-1) }

// Trivial returns the root decision when no search is needed: one
// candidate left, a dominant candidate above the confidence threshold, or
// no budget to look ahead.
func (e *Engine) Trivial() (Decision, bool, error) {
	if e.left() <= 0 {
		return Decision{}, false, fmt.Errorf("%w after %d guesses", ErrExhausted, e.used)
	}
	if e.red.Len() == 1 {
		cands, _ := e.red.Candidates()
		return Decision{Guess: cands[0], Score: 1, Trivial: true}, true, nil
	}
	if v, i, ok := e.leaf(e.rootDepth(), e.left()); ok {
		return Decision{Guess: i, Score: v, Trivial: true}, true, nil
	}
	return Decision{}, false, nil
}

// leaf scores playing the dominant candidate when the node should not be
// expanded.
func (e *Engine) leaf(depth, left int) (float64, int, bool) {
	i, p := e.red.Dominant()
	if p > e.cfg.ConfidenceThreshold || left == 1 || depth <= 0 {
		return p + (1-p)*e.cfg.FailurePenalty, i, true
	}
	return 0, 0, false
}

// Restrict limits the root guesses to indices until the next Apply or Reset.
// Current candidates stay playable. An empty list lifts the restriction.
func (e *Engine) Restrict(indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= e.inv.Len() {
			return fmt.Errorf("restrict: index %d out of range", i)
		}
	}
	if len(indices) == 0 {
		e.restrict, e.allowed = nil, nil
		return nil
	}

	e.restrict = indices
	e.allowed = bitset.New(uint(e.inv.Len()))
	for _, i := range indices {
		e.allowed.Set(uint(i))
	}
	return nil
}

// Playable reports whether guess may be played at the root under the
// current restriction.
func (e *Engine) Playable(guess int) bool {
	return e.allowed == nil || e.allowed.Test(uint(guess)) || e.red.StillValid(guess)
}

// Shortlist returns the root guesses worth scoring.
func (e *Engine) Shortlist() []int {
	return e.red.Shortlist(e.cfg.ShortlistSize, e.restrict)
}

// ScoreGuess returns the expected number of guesses to solve when guess is
// played next. A guess outside the restriction scores +Inf.
func (e *Engine) ScoreGuess(guess int) (float64, error) {
	if guess < 0 || guess >= e.inv.Len() {
		return 0, fmt.Errorf("score: index %d out of range", guess)
	}
	if e.left() <= 0 {
		return 0, fmt.Errorf("%w after %d guesses", ErrExhausted, e.used)
	}
	if !e.Playable(guess) {
		return math.Inf(1), nil
	}

	return e.evalGuess(guess, e.rootDepth(), e.left(), math.Inf(1))
}

// BestGuess runs the whole search in this goroutine.
func (e *Engine) BestGuess() (Decision, error) {
	d, ok, err := e.Trivial()
	if err != nil {
		return Decision{}, err
	}
	if ok {
		decisions.WithLabelValues("trivial").Inc()
		return d, nil
	}

	best := Decision{Score: math.Inf(1)}
	for _, g := range e.Shortlist() {
		v, err := e.evalGuess(g, e.rootDepth(), e.left(), best.Score)
		if err != nil {
			return Decision{}, err
		}
		if v < best.Score {
			best = Decision{Guess: g, Score: v}
		}
	}

	decisions.WithLabelValues("searched").Inc()
	return best, nil
}

// Apply commits a played guess and its feedback.
func (e *Engine) Apply(guess hint.Word, digits hint.Digits) error {
	next := e.stack.Top().Derive(guess, digits)
	if err := e.red.Commit(next); err != nil {
		e.log.Error("feedback leaves no candidates", "guess", guess.String(), "digits", digits, "err", err)
		return err
	}
	e.stack.Commit(guess, digits)

	e.used++
	e.restrict, e.allowed = nil, nil
	clear(e.memo)

	e.log.Debug("applied feedback", "guess", guess.String(), "candidates", e.red.Len(), "used", e.used)
	return nil
}

func (e *Engine) Reset() {
	e.stack.Reset()
	e.red.Reset()
	e.used = 0
	e.restrict, e.allowed = nil, nil
	clear(e.memo)
}

// best scores the node at the top of the stacks.
func (e *Engine) best(depth, left int) (float64, error) {
	if left <= 0 {
		return e.cfg.FailurePenalty, nil
	}
	if e.red.Len() == 1 {
		return 1, nil
	}
	if v, _, ok := e.leaf(depth, left); ok {
		return v, nil
	}

	key := e.stack.Top().AppendKey(e.keyBuf[:0])
	key = append(key, byte(depth), byte(left))
	if v, ok := e.memo[string(key)]; ok {
		e.stats.MemoHits++
		memoHits.Inc()
		return v, nil
	}
	e.stats.MemoMisses++
	memoMisses.Inc()

	e.stats.Nodes++
	nodesExpanded.Inc()

	best := math.Inf(1)
	for _, g := range e.red.Shortlist(e.cfg.ShortlistSize, nil) {
		v, err := e.evalGuess(g, depth, left, best)
		if err != nil {
			return 0, err
		}
		best = min(best, v)
	}

	// key aliases keyBuf, which the recursion above reused.
	key = e.stack.Top().AppendKey(e.keyBuf[:0])
	key = append(key, byte(depth), byte(left))
	e.memo[string(key)] = best
	return best, nil
}

// evalGuess scores guess at the current node. Once the running total
// reaches bound the guess cannot win and the partial total is returned.
func (e *Engine) evalGuess(guess, depth, left int, bound float64) (float64, error) {
	word := e.inv.Word(guess)
	total := e.red.TotalWeight()

	score := 1.0
	for _, b := range e.red.Partition(guess) {
		if b.Pattern == hint.SolvedPattern {
			continue
		}

		next := e.stack.Push(word, b.Pattern.Digits())
		if err := e.red.Push(next); err != nil {
			e.stack.Pop()
			return 0, err
		}
		v, err := e.best(depth-1, left-1)
		e.red.Pop()
		e.stack.Pop()
		if err != nil {
			return 0, err
		}

		score += b.Weight / total * v
		if score >= bound {
			break
		}
	}

	return score, nil
}
