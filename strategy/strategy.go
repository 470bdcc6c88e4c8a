// Package strategy narrows the guesses the search will consider. Strategies
// only save effort: Guard makes sure a proposal never leaves out the
// current candidates when there are few of them.
package strategy

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bent101/wordle-search/constraint"
	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/reducer"
)

// LowCandidateThreshold is the candidate count below which the current
// candidates are always proposed.
const LowCandidateThreshold = 10

var ErrUnknownStrategy = errors.New("unknown strategy")

type Strategy interface {
	Name() string
	Propose(candidates []int, state constraint.State) mapset.Set[int]
}

// Guard runs s and adds the current candidates to an empty proposal or when
// there are fewer than LowCandidateThreshold of them.
func Guard(s Strategy, candidates []int, state constraint.State) mapset.Set[int] {
	out := s.Propose(candidates, state)
	if out.Cardinality() == 0 || len(candidates) < LowCandidateThreshold {
		out.Append(candidates...)
	}
	return out
}

type Kind int

const (
	None Kind = iota
	Answers
	Common
	Unused
)

var kindNames = map[Kind]string{
	None:    "none",
	Answers: "answers",
	Common:  "common",
	Unused:  "unused",
}

var aliases = map[string]Kind{
	"none":        None,
	"noguess":     None,
	"valid":       Answers,
	"validonly":   Answers,
	"onlyvalid":   Answers,
	"answers":     Answers,
	"answerguess": Answers,
	"aggressive":  Answers,
	"common":      Common,
	"commonchars": Common,
	"unused":      Unused,
	"unusedchars": Unused,
}

func (k Kind) String() string { return kindNames[k] }

// Parse accepts a strategy name or alias. Anything that is not a letter is
// ignored, so "common-chars" and "Common_Chars" both work.
func Parse(s string) (Kind, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)

	k, ok := aliases[cleaned]
	if !ok {
		return None, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
	return k, nil
}

// Options size the strategies that need a parameter.
type Options struct {
	CommonLetters int `yaml:"common_letters" validate:"min=1,max=26"`
	UnusedGuesses int `yaml:"unused_guesses" validate:"min=1"`
}

func DefaultOptions() Options {
	return Options{CommonLetters: 3, UnusedGuesses: 100}
}

func New(k Kind, inv *reducer.Inventory, opts Options) (Strategy, error) {
	switch k {
	case None:
		return noStrategy{inv}, nil
	case Answers:
		return answersOnly{}, nil
	case Common:
		if opts.CommonLetters < 1 {
			return nil, fmt.Errorf("common strategy needs a letter count, got %d", opts.CommonLetters)
		}
		return commonLetters{inv, opts.CommonLetters}, nil
	case Unused:
		if opts.UnusedGuesses < 1 {
			return nil, fmt.Errorf("unused strategy needs a guess count, got %d", opts.UnusedGuesses)
		}
		return unusedLetters{inv, opts.UnusedGuesses}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, k)
}

// noStrategy proposes every word.
type noStrategy struct{ inv *reducer.Inventory }

func (noStrategy) Name() string { return None.String() }

func (s noStrategy) Propose([]int, constraint.State) mapset.Set[int] {
	out := mapset.NewThreadUnsafeSetWithSize[int](s.inv.Len())
	for i := range s.inv.Len() {
		out.Add(i)
	}
	return out
}

// answersOnly proposes only words that could still be the answer.
type answersOnly struct{}

func (answersOnly) Name() string { return Answers.String() }

func (answersOnly) Propose(candidates []int, _ constraint.State) mapset.Set[int] {
	return mapset.NewThreadUnsafeSet(candidates...)
}

// commonLetters proposes words containing every one of the n letters found
// in the most candidates outside already solved positions.
type commonLetters struct {
	inv *reducer.Inventory
	n   int
}

func (commonLetters) Name() string { return Common.String() }

func (s commonLetters) Propose(candidates []int, state constraint.State) mapset.Set[int] {
	var counts [hint.AlphabetSize]int
	for _, i := range candidates {
		var seen uint32
		for pos, c := range s.inv.Word(i) {
			if solved(state, pos) || seen&(1<<c) != 0 {
				continue
			}
			seen |= 1 << c
			counts[c]++
		}
	}

	letters := make([]int, 0, hint.AlphabetSize)
	for c, n := range counts {
		if n > 0 {
			letters = append(letters, c)
		}
	}
	var want uint32
	for _, c := range reducer.TopK(letters, s.n, func(c int) int { return counts[c] }) {
		want |= 1 << c
	}

	out := mapset.NewThreadUnsafeSet[int]()
	if want == 0 {
		return out
	}
	for i, w := range s.inv.Words() {
		var have uint32
		for _, c := range w {
			have |= 1 << c
		}
		if have&want == want {
			out.Add(i)
		}
	}
	return out
}

// unusedLetters proposes the n words that test the most letters the
// feedback has not yet said anything about.
type unusedLetters struct {
	inv *reducer.Inventory
	n   int
}

func (unusedLetters) Name() string { return Unused.String() }

func (s unusedLetters) Propose(_ []int, state constraint.State) mapset.Set[int] {
	all := make([]int, s.inv.Len())
	for i := range all {
		all[i] = i
	}
	top := reducer.TopK(all, s.n, func(i int) int { return unusedScore(s.inv.Word(i), state) })
	return mapset.NewThreadUnsafeSet(top...)
}

func solved(state constraint.State, pos int) bool {
	return bits.OnesCount32(state.Valid(pos)) == 1
}

// unusedScore rewards letters placed where they would teach something, and
// more so for letters the feedback has never credited.
func unusedScore(w hint.Word, state constraint.State) int {
	var known uint32
	for pos := range hint.WordLength {
		if solved(state, pos) {
			known |= state.Valid(pos)
		}
	}
	var excluded uint32
	for pos := range hint.WordLength {
		excluded |= state.Valid(pos)
	}
	excluded = ^excluded

	score := 0
	var seen uint32
	for pos, c := range w {
		bit := uint32(1) << c
		v := state.Valid(pos)

		var single int
		switch {
		case solved(state, pos):
			if v == bit {
				continue
			}
			single = 8
		case v != allLetters:
			if v&bit == 0 {
				continue
			}
			single = 9
		default:
			single = 10
		}

		if excluded&bit != 0 {
			continue
		}
		if state.Lower(int(c)) == 0 && known&bit == 0 && seen&bit == 0 {
			single += 5
		}

		seen |= bit
		score += single
	}
	return score
}

const allLetters uint32 = 1<<hint.AlphabetSize - 1
