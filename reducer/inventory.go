package reducer

import (
	"errors"
	"fmt"

	"github.com/bent101/wordle-search/hint"
)

var ErrEmptyInventory = errors.New("empty word inventory")

// Inventory is the immutable word list and prior weights shared by every
// reducer in the process.
type Inventory struct {
	words   []hint.Word
	weights []float64
	counts  [][hint.AlphabetSize]uint8
	index   map[hint.Word]int
}

func NewInventory(words []hint.Word, weights []float64) (*Inventory, error) {
	if len(words) == 0 {
		return nil, ErrEmptyInventory
	}
	if len(words) != len(weights) {
		return nil, fmt.Errorf("%d words but %d weights", len(words), len(weights))
	}

	inv := &Inventory{
		words:   words,
		weights: weights,
		counts:  make([][hint.AlphabetSize]uint8, len(words)),
		index:   make(map[hint.Word]int, len(words)),
	}
	for i, w := range words {
		if weights[i] <= 0 {
			return nil, fmt.Errorf("word %s has non-positive weight %v", w, weights[i])
		}
		if j, dup := inv.index[w]; dup {
			return nil, fmt.Errorf("word %s listed at %d and %d", w, j, i)
		}
		inv.index[w] = i
		inv.counts[i] = w.Counts()
	}

	return inv, nil
}

// UniformInventory parses words and gives each weight 1.
func UniformInventory(words ...string) (*Inventory, error) {
	ws := make([]hint.Word, len(words))
	weights := make([]float64, len(words))
	for i, s := range words {
		w, err := hint.ParseWord(s)
		if err != nil {
			return nil, err
		}
		ws[i] = w
		weights[i] = 1
	}
	return NewInventory(ws, weights)
}

func (inv *Inventory) Len() int             { return len(inv.words) }
func (inv *Inventory) Word(i int) hint.Word { return inv.words[i] }
func (inv *Inventory) Weight(i int) float64 { return inv.weights[i] }
func (inv *Inventory) Words() []hint.Word   { return inv.words }

func (inv *Inventory) Index(w hint.Word) (int, bool) {
	i, ok := inv.index[w]
	return i, ok
}

// Lookup resolves a word string to its inventory index.
func (inv *Inventory) Lookup(s string) (int, error) {
	w, err := hint.ParseWord(s)
	if err != nil {
		return 0, err
	}
	i, ok := inv.index[w]
	if !ok {
		return 0, fmt.Errorf("%w: %s is not in the word list", hint.ErrMalformedWord, s)
	}
	return i, nil
}
