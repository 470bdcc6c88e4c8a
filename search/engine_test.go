package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/reducer"
)

var testCandidates = []string{"robot", "oreos", "taurs", "tares", "teams", "trrrs", "sweet", "feral", "coyly"}

func newTestEngine(t *testing.T, cfg Config, words ...string) *Engine {
	t.Helper()
	inv, err := reducer.UniformInventory(words...)
	require.NoError(t, err)
	e, err := New(inv, cfg, nil)
	require.NoError(t, err)
	return e
}

func weightedEngine(t *testing.T, cfg Config, words []string, weights []float64) *Engine {
	t.Helper()
	ws := make([]hint.Word, len(words))
	for i, s := range words {
		ws[i] = hint.MustParseWord(s)
	}
	inv, err := reducer.NewInventory(ws, weights)
	require.NoError(t, err)
	e, err := New(inv, cfg, nil)
	require.NoError(t, err)
	return e
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no guesses", func(c *Config) { c.MaxGuesses = 0 }},
		{"no depth", func(c *Config) { c.MaxDepth = 0 }},
		{"negative shortlist", func(c *Config) { c.ShortlistSize = -1 }},
		{"zero threshold", func(c *Config) { c.ConfidenceThreshold = 0 }},
		{"threshold above one", func(c *Config) { c.ConfidenceThreshold = 1.5 }},
		{"small penalty", func(c *Config) { c.FailurePenalty = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			inv, err := reducer.UniformInventory("teams")
			require.NoError(t, err)
			_, err = New(inv, cfg, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEngine_SingleCandidate(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), "teams")
	d, err := e.BestGuess()
	require.NoError(t, err)
	assert.Equal(t, Decision{Guess: 0, Score: 1, Trivial: true}, d)
}

func TestEngine_TwoCandidates(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), "teams", "taurs")

	d, err := e.BestGuess()
	require.NoError(t, err)
	assert.False(t, d.Trivial)
	assert.Equal(t, 0, d.Guess, "ties go to the first shortlisted guess")
	assert.InDelta(t, 1.5, d.Score, 1e-9)

	v, err := e.ScoreGuess(1)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 1e-9)
}

func TestEngine_ConfidentStop(t *testing.T) {
	e := weightedEngine(t, DefaultConfig(), []string{"teams", "taurs"}, []float64{1, 9})
	d, err := e.BestGuess()
	require.NoError(t, err)
	assert.True(t, d.Trivial)
	assert.Equal(t, 1, d.Guess)
	assert.InDelta(t, 0.9+0.1*10, d.Score, 1e-9)
}

func TestEngine_LastGuessPlaysDominant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxGuesses = 1
	e := weightedEngine(t, cfg, []string{"teams", "taurs"}, []float64{1, 3})

	d, err := e.BestGuess()
	require.NoError(t, err)
	assert.True(t, d.Trivial)
	assert.Equal(t, 1, d.Guess)
	assert.InDelta(t, 0.75+0.25*10, d.Score, 1e-9)
}

func TestEngine_BestIsMinimumOfShortlist(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), testCandidates...)

	d, err := e.BestGuess()
	require.NoError(t, err)
	require.False(t, d.Trivial)
	assert.GreaterOrEqual(t, d.Score, 1.0)

	for _, g := range e.Shortlist() {
		v, err := e.ScoreGuess(g)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, d.Score-1e-9, "guess %s", e.Inventory().Word(g))
	}

	v, err := e.ScoreGuess(d.Guess)
	require.NoError(t, err)
	assert.InDelta(t, d.Score, v, 1e-9)
	assert.Len(t, e.Words(), len(testCandidates), "search leaves the committed state alone")
}

func TestEngine_Memo(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), testCandidates...)
	robot := 0

	first, err := e.ScoreGuess(robot)
	require.NoError(t, err)
	before := e.Stats()
	require.Positive(t, before.MemoMisses)

	second, err := e.ScoreGuess(robot)
	require.NoError(t, err)
	after := e.Stats()

	assert.Equal(t, first, second)
	assert.Equal(t, before.Nodes, after.Nodes)
	assert.Greater(t, after.MemoHits, before.MemoHits)
}

func TestEngine_Apply(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), testCandidates...)
	g := hint.MustParseWord("tsooo")

	require.NoError(t, e.Apply(g, hint.Feedback(g, hint.MustParseWord("teams"))))
	assert.ElementsMatch(t, []string{"teams", "taurs", "tares", "trrrs"}, e.Words())
	assert.Equal(t, 1, e.GuessesUsed())

	z := hint.MustParseWord("zzzzz")
	err := e.Apply(z, hint.Feedback(z, z))
	assert.ErrorIs(t, err, reducer.ErrIntegrity)
	assert.Len(t, e.Words(), 4)
	assert.Equal(t, 1, e.GuessesUsed())
	assert.True(t, e.State().Allows(hint.MustParseWord("teams")))

	e.Reset()
	assert.Len(t, e.Words(), len(testCandidates))
	assert.Zero(t, e.GuessesUsed())
}

func TestEngine_Restrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShortlistSize = 4
	e := newTestEngine(t, cfg, testCandidates...)

	g := hint.MustParseWord("tsooo")
	require.NoError(t, e.Apply(g, hint.Feedback(g, hint.MustParseWord("teams"))))
	cands, _ := e.Candidates()

	require.NoError(t, e.Restrict([]int{8}))
	assert.ElementsMatch(t, append(cands, 8), e.Shortlist())

	// robot is neither allowed nor a candidate; teams is a candidate.
	assert.False(t, e.Playable(0))
	v, err := e.ScoreGuess(0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))
	assert.True(t, e.Playable(4))
	v, err = e.ScoreGuess(4)
	require.NoError(t, err)
	assert.False(t, math.IsInf(v, 1))

	assert.Error(t, e.Restrict([]int{len(testCandidates)}))

	require.NoError(t, e.Apply(g, hint.Feedback(g, hint.MustParseWord("teams"))))
	assert.NotContains(t, e.Shortlist(), 8, "restriction lasts one turn")
}

func TestEngine_Exhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxGuesses = 1
	e := newTestEngine(t, cfg, testCandidates...)

	g := hint.MustParseWord("tsooo")
	require.NoError(t, e.Apply(g, hint.Feedback(g, hint.MustParseWord("teams"))))

	_, err := e.BestGuess()
	assert.ErrorIs(t, err, ErrExhausted)
	_, err = e.ScoreGuess(0)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestEngine_SolvesEveryAnswer(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg, testCandidates...)

	for _, answer := range testCandidates {
		t.Run(answer, func(t *testing.T) {
			e.Reset()
			a := hint.MustParseWord(answer)

			for range cfg.MaxGuesses {
				d, err := e.BestGuess()
				require.NoError(t, err)
				guess := e.Inventory().Word(d.Guess)
				if guess == a {
					return
				}
				require.NoError(t, e.Apply(guess, hint.Feedback(guess, a)))
				assert.True(t, e.State().Allows(a))
			}
			t.Fatalf("%s not solved in %d guesses", answer, cfg.MaxGuesses)
		})
	}
}
