// Package constraint records what feedback has revealed about the answer.
//
// A State has three layers: which letters may still occupy each position,
// the minimum number of copies of each letter, and an exact count for
// letters whose total is known. States only ever tighten.
package constraint

import (
	"encoding/binary"

	"github.com/bent101/wordle-search/hint"
)

const allLetters uint32 = 1<<hint.AlphabetSize - 1

// KeySize is the length of State.Key.
const KeySize = 4*hint.WordLength + 2*hint.AlphabetSize

type State struct {
	valid [hint.WordLength]uint32
	lower [hint.AlphabetSize]uint8
	exact [hint.AlphabetSize]uint8
}

// New returns the state with no information.
func New() State {
	var s State
	for i := range s.valid {
		s.valid[i] = allLetters
	}
	return s
}

// Derive folds one guess and its feedback digits into s.
func (s State) Derive(guess hint.Word, digits hint.Digits) State {
	next := s

	var credited, capped [hint.AlphabetSize]uint8
	var absent [hint.AlphabetSize]bool

	for i, d := range digits {
		c := guess[i]
		bit := uint32(1) << c

		switch {
		case d == hint.Guaranteed:
			next.valid[i] &= bit
			credited[c]++
		case d == hint.Present:
			next.valid[i] &^= bit
			credited[c]++
		case d.Capped():
			next.valid[i] &^= bit
			capped[c] = uint8(d)
		default:
			next.valid[i] &^= bit
			absent[c] = true
		}
	}

	for c := range hint.AlphabetSize {
		if capped[c] > 0 {
			next.raiseLower(c, capped[c])
			next.capAt(c, capped[c])
			continue
		}

		next.raiseLower(c, credited[c])
		if !absent[c] || credited[c] > 0 {
			continue
		}

		// Grayed with no credit anywhere in this guess: the count is
		// whatever is already known to be required.
		if next.lower[c] == 0 {
			for i := range next.valid {
				next.valid[i] &^= uint32(1) << c
			}
		} else {
			next.capAt(c, next.lower[c])
		}
	}

	return next
}

func (s *State) raiseLower(c int, n uint8) {
	if n > s.lower[c] {
		s.lower[c] = n
	}
}

// capAt sets an exact count; an existing cap is never loosened.
func (s *State) capAt(c int, n uint8) {
	if s.exact[c] == 0 || n < s.exact[c] {
		s.exact[c] = n
	}
}

// Valid returns the bitmask of letters allowed at position i.
func (s State) Valid(i int) uint32 { return s.valid[i] }

// Lower returns the minimum number of copies of letter c.
func (s State) Lower(c int) uint8 { return s.lower[c] }

// Exact returns the exact number of copies of letter c, or 0 if uncapped.
func (s State) Exact(c int) uint8 { return s.exact[c] }

// Allows reports whether w is consistent with s.
func (s State) Allows(w hint.Word) bool {
	for i, c := range w {
		if s.valid[i]&(1<<c) == 0 {
			return false
		}
	}

	counts := w.Counts()
	for c := range hint.AlphabetSize {
		if counts[c] < s.lower[c] {
			return false
		}
		if s.exact[c] > 0 && counts[c] != s.exact[c] {
			return false
		}
	}
	return true
}

// Key is the canonical serialization of all three layers. States with equal
// keys admit exactly the same answers.
func (s State) Key() []byte {
	return s.AppendKey(make([]byte, 0, KeySize))
}

func (s State) AppendKey(dst []byte) []byte {
	for _, v := range s.valid {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	dst = append(dst, s.lower[:]...)
	return append(dst, s.exact[:]...)
}
