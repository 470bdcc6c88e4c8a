package constraint

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bent101/wordle-search/hint"
)

var testWords = []string{"robot", "oreos", "taurs", "tares", "teams", "trrrs", "sweet", "feral", "coyly", "eerie", "there", "geese", "llama", "abbey"}

func derive(s State, guess, answer string) State {
	g := hint.MustParseWord(guess)
	return s.Derive(g, hint.Feedback(g, hint.MustParseWord(answer)))
}

func TestDerive_AnswerStaysValid(t *testing.T) {
	for _, gs := range testWords {
		for _, as := range testWords {
			s := derive(New(), gs, as)
			assert.True(t, s.Allows(hint.MustParseWord(as)), "guess %s answer %s: %s", gs, as, s.Dump())
		}
	}
}

func TestDerive_Capped(t *testing.T) {
	s := derive(New(), "tsrxr", "taurs")

	assert.Equal(t, uint8(1), s.Exact('r'-'a'))
	assert.Equal(t, uint8(1), s.Lower('r'-'a'))
	assert.Equal(t, uint8(1), s.Lower('s'-'a'))
	assert.Equal(t, uint32(1)<<('t'-'a'), s.Valid(0))

	assert.True(t, s.Allows(hint.MustParseWord("taurs")))
	assert.False(t, s.Allows(hint.MustParseWord("tares")), "r at a grayed position")
	assert.False(t, s.Allows(hint.MustParseWord("trrrs")), "too many r")
	assert.False(t, s.Allows(hint.MustParseWord("teams")), "missing r")
}

func TestDerive_GrayOnlyLetterIsExcluded(t *testing.T) {
	s := derive(New(), "tsooo", "teams")

	o := 'o' - 'a'
	for i := range hint.WordLength {
		assert.Zero(t, s.Valid(i)&(1<<o), "position %d", i)
	}
	assert.Zero(t, s.Exact(int(o)))
}

func TestDerive_GrayAfterKnownMinimumCaps(t *testing.T) {
	e := hint.MustParseWord("eabcd")[0]
	s := New().Derive(hint.MustParseWord("exxxx"), hint.Digits{hint.Present})
	s = s.Derive(hint.MustParseWord("yyeyy"), hint.Digits{})

	assert.Equal(t, uint8(1), s.Exact(int(e)))
	assert.Zero(t, s.Valid(2)&(1<<e))
	assert.True(t, s.Allows(hint.MustParseWord("ahhhe")))
	assert.False(t, s.Allows(hint.MustParseWord("ahehe")))
}

func TestDerive_Monotonic(t *testing.T) {
	s := New()
	for _, step := range [][2]string{{"tares", "coyly"}, {"mould", "coyly"}, {"holly", "coyly"}} {
		next := derive(s, step[0], step[1])
		for i := range hint.WordLength {
			assert.Equal(t, next.Valid(i), next.Valid(i)&s.Valid(i), "validity grew at %d", i)
		}
		for c := range hint.AlphabetSize {
			assert.GreaterOrEqual(t, next.Lower(c), s.Lower(c))
			if s.Exact(c) > 0 {
				assert.Equal(t, s.Exact(c), next.Exact(c))
			}
		}
		s = next
	}
}

func TestDerive_Idempotent(t *testing.T) {
	once := derive(New(), "tsrxr", "taurs")
	twice := derive(once, "tsrxr", "taurs")
	assert.Equal(t, once, twice)
	assert.Equal(t, once.Key(), twice.Key())
}

func TestKey_CollapsesEquivalentHistories(t *testing.T) {
	a := derive(derive(New(), "tares", "feral"), "buzzy", "feral")
	b := derive(derive(New(), "buzzy", "feral"), "tares", "feral")
	assert.True(t, bytes.Equal(a.Key(), b.Key()))
	assert.Len(t, a.Key(), KeySize)

	c := derive(New(), "tares", "feral")
	assert.False(t, bytes.Equal(a.Key(), c.Key()))
}

func TestStack(t *testing.T) {
	st := NewStack()
	root := st.Top()
	g := hint.MustParseWord("tsooo")

	pushed := st.Push(g, hint.Feedback(g, hint.MustParseWord("teams")))
	assert.Equal(t, 1, st.Depth())
	assert.Equal(t, pushed, st.Top())

	st.Pop()
	assert.Equal(t, 0, st.Depth())
	assert.Equal(t, root, st.Top())
	assert.Panics(t, st.Pop)

	st.Push(g, hint.Feedback(g, hint.MustParseWord("teams")))
	committed := st.Commit(g, hint.Feedback(g, hint.MustParseWord("teams")))
	assert.Equal(t, 0, st.Depth())
	assert.Equal(t, committed, st.Top())

	st.Reset()
	assert.Equal(t, New(), st.Top())
}

func TestDescribe(t *testing.T) {
	s := derive(New(), "tsrxr", "taurs")

	var infos []LetterInfo
	require.NoError(t, json.Unmarshal([]byte(s.Dump()), &infos))

	byLetter := map[string]LetterInfo{}
	for _, info := range infos {
		byLetter[info.Letter] = info
	}

	assert.Equal(t, []int{0}, byLetter["t"].MustBeInPositions)
	assert.Equal(t, LetterInfo{Letter: "r", CantBeInPositions: []int{2, 4}, Frequency: 1, FrequencyIsExact: true}, byLetter["r"])
	assert.Equal(t, 0, byLetter["x"].Frequency)
	assert.True(t, byLetter["x"].FrequencyIsExact)
	assert.NotContains(t, byLetter, "z")
}
