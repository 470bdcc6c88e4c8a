package reducer

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bent101/wordle-search/hint"
)

// LetterValues scores how much each letter, and each letter at each
// position, would tell us about the current candidates.
//
// A letter's value is how evenly its presence splits the candidate weight,
// scaled by the fraction of candidates that physically contain it. Positional
// values use the same evenness measure for "this letter is here".
type LetterValues struct {
	Letter   [hint.AlphabetSize]float64
	Position [hint.WordLength][hint.AlphabetSize]float64
}

func evenness(share float64) float64 {
	return 2 * min(share, 1-share)
}

func (r *Reducer) LetterValues() LetterValues {
	top := r.top()
	n := len(top.idx)

	var lv LetterValues
	for c := range hint.AlphabetSize {
		var w float64
		holders := 0
		for j, k := range top.counts[c] {
			if k > 0 {
				w += top.weights[j]
				holders++
			}
		}
		lv.Letter[c] = evenness(w/top.total) * float64(holders) / float64(n)
	}

	for i := range hint.WordLength {
		var w [hint.AlphabetSize]float64
		for j, c := range top.letters[i] {
			w[c] += top.weights[j]
		}
		for c := range hint.AlphabetSize {
			lv.Position[i][c] = evenness(w[c] / top.total)
		}
	}

	return lv
}

// Value scores a word against lv. Repeated letters only count once.
func (lv *LetterValues) Value(w hint.Word) float64 {
	var seen uint32
	var v float64
	for i, c := range w {
		if seen&(1<<c) == 0 {
			v += lv.Letter[c]
			seen |= 1 << c
		}
		v += lv.Position[i][c] / 2
	}
	return v
}

// Shortlist bounds the guesses worth a full evaluation. It is the union of
// the budget best words of universe by letter value, the budget best current
// candidates by letter value, and the budget heaviest current candidates.
// A nil universe means the whole inventory. A universe no larger than budget
// is taken whole.
func (r *Reducer) Shortlist(budget int, universe []int) []int {
	if universe == nil {
		universe = make([]int, r.inv.Len())
		for i := range universe {
			universe[i] = i
		}
	}

	top := r.top()
	cands := make([]int, len(top.idx))
	weight := make(map[int]float64, len(top.idx))
	for j, i := range top.idx {
		cands[j] = int(i)
		weight[int(i)] = top.weights[j]
	}

	lv := r.LetterValues()
	value := func(i int) float64 { return lv.Value(r.inv.words[i]) }

	set := mapset.NewThreadUnsafeSet[int]()
	if budget <= 0 || len(universe) <= budget {
		set.Append(universe...)
	} else {
		set.Append(TopK(universe, budget, value)...)
	}
	if budget <= 0 || len(cands) <= budget {
		set.Append(cands...)
	} else {
		set.Append(TopK(cands, budget, value)...)
		set.Append(TopK(cands, budget, func(i int) float64 { return weight[i] })...)
	}

	out := set.ToSlice()
	slices.Sort(out)
	return out
}
