package pool

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/reducer"
	"github.com/bent101/wordle-search/search"
)

var testCandidates = []string{"robot", "oreos", "taurs", "tares", "teams", "trrrs", "sweet", "feral", "coyly"}

func newTestPool(t *testing.T, workers int) (*Pool, *search.Engine) {
	t.Helper()
	inv, err := reducer.UniformInventory(testCandidates...)
	require.NoError(t, err)

	cfg := DefaultConfig(workers)
	cfg.DuplicateDelay = time.Millisecond
	p, err := New(inv, search.DefaultConfig(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(p.Close)

	local, err := search.New(inv, search.DefaultConfig(), nil)
	require.NoError(t, err)
	return p, local
}

func TestPool_UpdateConverges(t *testing.T) {
	ctx := context.Background()
	p, local := newTestPool(t, 4)

	steps := []struct{ guess, answer string }{
		{"tsooo", "teams"},
		{"tares", "teams"},
	}
	for _, s := range steps {
		g := hint.MustParseWord(s.guess)
		digits := hint.Feedback(g, hint.MustParseWord(s.answer))
		require.NoError(t, p.Update(ctx, g, digits))
		require.NoError(t, local.Apply(g, digits))

		want, _ := local.Candidates()
		got, err := p.Candidates(ctx)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for id, cands := range got {
			assert.ElementsMatch(t, want, cands, "worker %s after %s", id, s.guess)
		}
	}

	require.NoError(t, p.Reset(ctx))
	got, err := p.Candidates(ctx)
	require.NoError(t, err)
	for _, cands := range got {
		assert.Len(t, cands, len(testCandidates))
	}
}

func TestPool_ScoreMatchesSingleEngine(t *testing.T) {
	ctx := context.Background()
	p, local := newTestPool(t, 3)

	g := hint.MustParseWord("robot")
	digits := hint.Feedback(g, hint.MustParseWord("tares"))
	require.NoError(t, p.Update(ctx, g, digits))
	require.NoError(t, local.Apply(g, digits))

	guesses := []int{0, 2, 3, 5, 7}
	scores, err := p.Score(ctx, guesses)
	require.NoError(t, err)
	require.Len(t, scores, len(guesses))

	for i, guess := range guesses {
		want, err := local.ScoreGuess(guess)
		require.NoError(t, err)
		assert.InDelta(t, want, scores[i], 1e-9, "guess %d", guess)
	}
}

func TestPool_PrepareAndEmptyScore(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPool(t, 2)

	require.NoError(t, p.Prepare(ctx, []int{1, 2}))
	scores, err := p.Score(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestPool_PrepareLimitsWhatReplicasScore(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPool(t, 2)

	g := hint.MustParseWord("tsooo")
	require.NoError(t, p.Update(ctx, g, hint.Feedback(g, hint.MustParseWord("teams"))))

	// robot, coyly and the candidate teams.
	guesses := []int{0, 8, 4}
	before, err := p.Score(ctx, guesses)
	require.NoError(t, err)
	for _, v := range before {
		assert.False(t, math.IsInf(v, 1))
	}

	require.NoError(t, p.Prepare(ctx, []int{8}))
	after, err := p.Score(ctx, guesses)
	require.NoError(t, err)
	assert.True(t, math.IsInf(after[0], 1), "robot is outside the restriction")
	assert.InDelta(t, before[1], after[1], 1e-9)
	assert.InDelta(t, before[2], after[2], 1e-9)
}

func TestPool_CancelledUpdateKeepsReplicasInStep(t *testing.T) {
	p, local := newTestPool(t, 2)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	g := hint.MustParseWord("tsooo")
	err := p.Update(cancelled, g, hint.Feedback(g, hint.MustParseWord("teams")))
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrPoolFailed)

	ctx := context.Background()
	c := hint.MustParseWord("coyly")
	digits := hint.Feedback(c, hint.MustParseWord("teams"))
	require.NoError(t, p.Update(ctx, c, digits))
	require.NoError(t, local.Apply(c, digits))

	want, _ := local.Candidates()
	got, err := p.Candidates(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for id, cands := range got {
		assert.ElementsMatch(t, want, cands, "worker %s", id)
	}
}

func TestPool_InterruptedBroadcastIsFatal(t *testing.T) {
	// Nothing drains the queue, so the first copy is dispatched and the
	// second blocks until the deadline.
	p := &Pool{
		tasks:   make(chan task, 1),
		workers: []*worker{{id: uuid.New()}, {id: uuid.New()}},
		log:     slog.Default(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	g := hint.MustParseWord("tsooo")
	err := p.Update(ctx, g, hint.Feedback(g, hint.MustParseWord("teams")))
	require.ErrorIs(t, err, ErrPoolFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.ErrorIs(t, p.Reset(context.Background()), ErrPoolFailed)
	_, err = p.Score(context.Background(), []int{0})
	assert.ErrorIs(t, err, ErrPoolFailed)
}

func TestPool_FailureIsFatal(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPool(t, 2)

	z := hint.MustParseWord("zzzzz")
	err := p.Update(ctx, z, hint.Feedback(z, z))
	require.ErrorIs(t, err, ErrPoolFailed)
	assert.ErrorIs(t, err, reducer.ErrIntegrity)

	_, err = p.Score(ctx, []int{0})
	assert.ErrorIs(t, err, ErrPoolFailed)
	assert.ErrorIs(t, p.Reset(ctx), ErrPoolFailed)
}

func TestPool_Closed(t *testing.T) {
	p, _ := newTestPool(t, 1)
	p.Close()
	assert.ErrorIs(t, p.Reset(context.Background()), ErrPoolFailed)
}

func TestWorker_DuplicateGenerationIsAcknowledgedOnce(t *testing.T) {
	inv, err := reducer.UniformInventory(testCandidates...)
	require.NoError(t, err)
	e, err := search.New(inv, search.DefaultConfig(), nil)
	require.NoError(t, err)
	w := &worker{id: uuid.New(), engine: e, log: slog.Default()}

	g := hint.MustParseWord("tsooo")
	update := task{kind: kindUpdate, gen: 1, word: g, digits: hint.Feedback(g, hint.MustParseWord("teams"))}

	for range 3 {
		_, _, err := w.do(update)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, e.GuessesUsed())
	assert.Equal(t, uint64(1), w.applied[kindUpdate])

	update.gen = 2
	_, _, err = w.do(update)
	require.NoError(t, err)
	assert.Equal(t, 2, e.GuessesUsed())
}

func TestWorker_RejectsMissedGeneration(t *testing.T) {
	inv, err := reducer.UniformInventory(testCandidates...)
	require.NoError(t, err)
	e, err := search.New(inv, search.DefaultConfig(), nil)
	require.NoError(t, err)
	w := &worker{id: uuid.New(), engine: e, log: slog.Default()}

	g := hint.MustParseWord("coyly")
	update := task{kind: kindUpdate, gen: 2, word: g, digits: hint.Feedback(g, hint.MustParseWord("teams"))}
	_, _, err = w.do(update)
	assert.ErrorIs(t, err, errMissedGeneration)
	assert.Zero(t, e.GuessesUsed())
	assert.Zero(t, w.applied[kindUpdate])
}

func TestNew_RejectsBadConfig(t *testing.T) {
	inv, err := reducer.UniformInventory(testCandidates...)
	require.NoError(t, err)

	_, err = New(inv, search.DefaultConfig(), Config{Workers: 0}, nil)
	assert.Error(t, err)

	bad := search.DefaultConfig()
	bad.MaxGuesses = 0
	_, err = New(inv, bad, DefaultConfig(1), nil)
	assert.ErrorIs(t, err, search.ErrInvalidConfig)
}
