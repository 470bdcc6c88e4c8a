// Package reducer narrows the word inventory to the answers still consistent
// with a constraint state and partitions them by the feedback a guess would
// produce.
//
// Candidates are stored column-wise: one slice per letter position and one
// per letter count, so filtering and partitioning are passes over flat
// arrays rather than per-word loops over strings.
package reducer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/bent101/wordle-search/constraint"
	"github.com/bent101/wordle-search/hint"
)

// ErrIntegrity means a state admitted no candidates. True feedback can never
// do that, so it points at a codec or derivation defect or at bad input.
var ErrIntegrity = errors.New("search integrity failure")

type level struct {
	idx     []int32
	weights []float64
	total   float64
	letters [hint.WordLength][]uint8
	counts  [hint.AlphabetSize][]uint8
	member  *bitset.BitSet
}

// Bucket is the answers sharing one feedback pattern for a guess.
type Bucket struct {
	Pattern hint.Pattern
	Weight  float64
	Count   int
}

// Reducer is a stack of candidate snapshots parallel to a constraint.Stack.
// It is not safe for concurrent use.
type Reducer struct {
	inv    *Inventory
	root   *level
	levels []*level

	codes   []uint16
	dense   []float64
	hits    []int32
	touched []hint.Pattern
	keep    []bool
}

func New(inv *Inventory) *Reducer {
	n := inv.Len()
	root := &level{
		idx:     make([]int32, n),
		weights: slices.Clone(inv.weights),
		member:  bitset.New(uint(n)),
	}
	for i := range hint.WordLength {
		root.letters[i] = make([]uint8, n)
	}
	for c := range hint.AlphabetSize {
		root.counts[c] = make([]uint8, n)
	}
	for j, w := range inv.words {
		root.idx[j] = int32(j)
		root.total += inv.weights[j]
		root.member.Set(uint(j))
		for i, c := range w {
			root.letters[i][j] = c
		}
		for c, k := range inv.counts[j] {
			root.counts[c][j] = k
		}
	}

	return &Reducer{
		inv:    inv,
		root:   root,
		levels: []*level{root},
		codes:  make([]uint16, n),
		dense:  make([]float64, hint.NumPatterns),
		hits:   make([]int32, hint.NumPatterns),
		keep:   make([]bool, n),
	}
}

func (r *Reducer) Inventory() *Inventory { return r.inv }

func (r *Reducer) top() *level { return r.levels[len(r.levels)-1] }

// Len is the number of current candidates.
func (r *Reducer) Len() int { return len(r.top().idx) }

func (r *Reducer) TotalWeight() float64 { return r.top().total }

// Depth is the number of speculative levels.
func (r *Reducer) Depth() int { return len(r.levels) - 1 }

func (r *Reducer) StillValid(i int) bool {
	return r.top().member.Test(uint(i))
}

// Candidates returns the inventory indices and weights of the current
// candidates, in inventory order.
func (r *Reducer) Candidates() ([]int, []float64) {
	top := r.top()
	idx := make([]int, len(top.idx))
	for j, i := range top.idx {
		idx[j] = int(i)
	}
	return idx, slices.Clone(top.weights)
}

// Words returns the current candidates as strings.
func (r *Reducer) Words() []string {
	top := r.top()
	words := make([]string, len(top.idx))
	for j, i := range top.idx {
		words[j] = r.inv.words[i].String()
	}
	return words
}

// Dominant returns the highest-weight candidate and its share of the total.
func (r *Reducer) Dominant() (int, float64) {
	top := r.top()
	best := 0
	for j, w := range top.weights {
		if w > top.weights[best] {
			best = j
		}
	}
	return int(top.idx[best]), top.weights[best] / top.total
}

// Partition scores guess against every candidate as if it were the answer
// and sums candidate weights per feedback pattern. Buckets are ordered by
// pattern.
func (r *Reducer) Partition(guess int) []Bucket {
	top := r.top()
	n := len(top.idx)
	g := r.inv.words[guess]
	need := &r.inv.counts[guess]

	codes := r.codes[:n]
	clear(codes)

	for i := range hint.WordLength {
		c := g[i]
		col, cnt, want := top.letters[i], top.counts[c], need[c]
		pv := uint16(hint.PlaceValue(i))
		green, yellow := uint16(hint.Guaranteed)*pv, uint16(hint.Present)*pv

		for j := range n {
			switch {
			case col[j] == c:
				codes[j] += green
			case cnt[j] == 0:
			case cnt[j] >= want:
				codes[j] += yellow
			default:
				codes[j] += uint16(cnt[j]) * pv
			}
		}
	}

	r.touched = r.touched[:0]
	for j, code := range codes {
		p := hint.Pattern(code)
		if r.hits[p] == 0 {
			r.touched = append(r.touched, p)
		}
		r.dense[p] += top.weights[j]
		r.hits[p]++
	}

	slices.Sort(r.touched)
	buckets := make([]Bucket, len(r.touched))
	for k, p := range r.touched {
		buckets[k] = Bucket{Pattern: p, Weight: r.dense[p], Count: int(r.hits[p])}
		r.dense[p], r.hits[p] = 0, 0
	}

	return buckets
}

// Push layers the candidates admitted by state on top of the stack.
func (r *Reducer) Push(state constraint.State) error {
	next, err := r.narrow(state)
	if err != nil {
		return err
	}
	r.levels = append(r.levels, next)
	return nil
}

func (r *Reducer) Pop() {
	if len(r.levels) == 1 {
		panic("reducer: pop of committed candidates")
	}
	r.levels[len(r.levels)-1] = nil
	r.levels = r.levels[:len(r.levels)-1]
}

// Commit narrows to state and discards every earlier snapshot.
func (r *Reducer) Commit(state constraint.State) error {
	next, err := r.narrow(state)
	if err != nil {
		return err
	}
	clear(r.levels)
	r.levels = append(r.levels[:0], next)
	return nil
}

func (r *Reducer) Reset() {
	clear(r.levels)
	r.levels = append(r.levels[:0], r.root)
}

func (r *Reducer) narrow(state constraint.State) (*level, error) {
	top := r.top()
	n := len(top.idx)
	keep := r.keep[:n]
	for j := range keep {
		keep[j] = true
	}

	for c := range hint.AlphabetSize {
		lo, ex := state.Lower(c), state.Exact(c)
		if lo == 0 && ex == 0 {
			continue
		}
		col := top.counts[c]
		for j := range n {
			if col[j] < lo || (ex > 0 && col[j] != ex) {
				keep[j] = false
			}
		}
	}

	for i := range hint.WordLength {
		v := state.Valid(i)
		col := top.letters[i]
		for j := range n {
			if v&(1<<col[j]) == 0 {
				keep[j] = false
			}
		}
	}

	size := 0
	for _, k := range keep {
		if k {
			size++
		}
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: no candidates left of %d under %s", ErrIntegrity, n, state.Dump())
	}

	next := &level{
		idx:     make([]int32, 0, size),
		weights: make([]float64, 0, size),
		member:  bitset.New(uint(r.inv.Len())),
	}
	for i := range hint.WordLength {
		next.letters[i] = make([]uint8, 0, size)
	}
	for c := range hint.AlphabetSize {
		next.counts[c] = make([]uint8, 0, size)
	}

	for j, k := range keep {
		if !k {
			continue
		}
		next.idx = append(next.idx, top.idx[j])
		next.weights = append(next.weights, top.weights[j])
		next.total += top.weights[j]
		next.member.Set(uint(top.idx[j]))
		for i := range hint.WordLength {
			next.letters[i] = append(next.letters[i], top.letters[i][j])
		}
		for c := range hint.AlphabetSize {
			next.counts[c] = append(next.counts[c], top.counts[c][j])
		}
	}

	return next, nil
}
