// Package hint computes and encodes the per-letter feedback of a guess.
package hint

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedFeedback = errors.New("malformed feedback")

// Color is the feedback shown for one letter of a guess.
type Color uint8

const (
	Gray Color = iota
	Yellow
	Green
)

func (c Color) String() string {
	switch c {
	case Gray:
		return "gray"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// ParseColor accepts green|yellow|gray|grey or the digits 2|1|0.
func ParseColor(token string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "green", "2":
		return Green, nil
	case "yellow", "1":
		return Yellow, nil
	case "gray", "grey", "0":
		return Gray, nil
	}
	return Gray, fmt.Errorf("%w: unknown color %q", ErrMalformedFeedback, token)
}

// Colors is the feedback for a whole guess.
type Colors [WordLength]Color

// ParseColors reads exactly WordLength whitespace separated color tokens.
func ParseColors(line string) (Colors, error) {
	var colors Colors
	tokens := strings.Fields(line)
	if len(tokens) != WordLength {
		return colors, fmt.Errorf("%w: need %d colors, got %d", ErrMalformedFeedback, WordLength, len(tokens))
	}

	for i, tok := range tokens {
		c, err := ParseColor(tok)
		if err != nil {
			return colors, err
		}
		colors[i] = c
	}

	return colors, nil
}

// Solved reports whether every letter is green.
func (cs Colors) Solved() bool {
	for _, c := range cs {
		if c != Green {
			return false
		}
	}
	return true
}

// Score returns the colors a player sees for guess when the answer is answer.
//
// Exact matches are credited first. The answer's remaining letters then
// satisfy misplaced occurrences of the guess left to right, so a letter
// guessed twice against an answer holding it once earns a single yellow.
func Score(guess, answer Word) Colors {
	var colors Colors
	var unused [AlphabetSize]uint8

	for i := range WordLength {
		if guess[i] == answer[i] {
			colors[i] = Green
		} else {
			unused[answer[i]]++
		}
	}

	for i := range WordLength {
		if colors[i] == Green {
			continue
		}
		if c := guess[i]; unused[c] > 0 {
			colors[i] = Yellow
			unused[c]--
		}
	}

	return colors
}

// Encode converts observed colors for guess into feedback digits.
//
// Green positions become Guaranteed. A letter that was grayed somewhere and
// credited somewhere else is capped: all of its non-green positions carry
// the exact count. Other yellows are Present and other grays Absent.
func Encode(guess Word, colors Colors) Digits {
	var hits, grays [AlphabetSize]uint8
	for i, c := range guess {
		if colors[i] == Gray {
			grays[c]++
		} else {
			hits[c]++
		}
	}

	var digits Digits
	for i, c := range guess {
		switch {
		case colors[i] == Green:
			digits[i] = Guaranteed
		case grays[c] > 0 && hits[c] > 0:
			digits[i] = Digit(hits[c])
		case colors[i] == Yellow:
			digits[i] = Present
		default:
			digits[i] = Absent
		}
	}

	return digits
}

// Feedback is Encode(guess, Score(guess, answer)).
func Feedback(guess, answer Word) Digits {
	return Encode(guess, Score(guess, answer))
}
