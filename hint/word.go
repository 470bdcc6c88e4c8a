package hint

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// WordLength is the number of letters in every word.
	WordLength = 5
	// AlphabetSize is the number of distinct letters, a..z.
	AlphabetSize = 26
)

var ErrMalformedWord = errors.New("malformed word")

// Word is a word as letter indices (a = 0).
type Word [WordLength]uint8

// ParseWord converts a lowercase word into letter indices.
func ParseWord(s string) (Word, error) {
	var w Word
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) != WordLength {
		return w, fmt.Errorf("%w: %q is not %d letters", ErrMalformedWord, s, WordLength)
	}

	for i := range WordLength {
		ch := s[i]
		if ch < 'a' || ch >= 'a'+AlphabetSize {
			return w, fmt.Errorf("%w: %q has non-letter %q", ErrMalformedWord, s, ch)
		}
		w[i] = ch - 'a'
	}

	return w, nil
}

// MustParseWord is ParseWord for known-good literals.
func MustParseWord(s string) Word {
	w, err := ParseWord(s)
	if err != nil {
		panic(err)
	}
	return w
}

func (w Word) String() string {
	var b [WordLength]byte
	for i, c := range w {
		b[i] = 'a' + c
	}
	return string(b[:])
}

// Counts returns how many times each letter occurs in the word.
func (w Word) Counts() [AlphabetSize]uint8 {
	var counts [AlphabetSize]uint8
	for _, c := range w {
		counts[c]++
	}
	return counts
}
