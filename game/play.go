// Package game drives whole games: interactively against a human reading
// tiles off a real board, or in batch against a list of past answers.
package game

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bent101/wordle-search/analyzer"
	"github.com/bent101/wordle-search/hint"
)

// ErrInputClosed is returned when input ends before the game does.
var ErrInputClosed = errors.New("input closed before the game ended")

// Session is an interactive game on in and out.
type Session struct {
	Analyzer *analyzer.Analyzer
	In       io.Reader
	Out      io.Writer
	// Color renders tiles with terminal colors instead of emoji.
	Color bool
}

// Play recommends a guess, reads the observed colors and repeats until the
// word is found or the guesses run out. A line is either five color tokens
// or the word actually played followed by five tokens.
func (s *Session) Play(ctx context.Context) error {
	sc := bufio.NewScanner(s.In)
	a := s.Analyzer

	for !a.Solved() && !a.Exhausted() {
		guess, err := a.BestGuess(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "You should guess: %s (%d candidates left)\n", guess, len(a.Candidates()))

		for {
			fmt.Fprintln(s.Out, "What are the results?")
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return err
				}
				return ErrInputClosed
			}

			word, colors, err := parseTurn(sc.Text(), guess)
			if err == nil {
				err = a.ApplyFeedback(ctx, word, colors)
			}
			if errors.Is(err, hint.ErrMalformedWord) || errors.Is(err, hint.ErrMalformedFeedback) {
				fmt.Fprintf(s.Out, "%v, try again\n", err)
				continue
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(s.Out, s.tiles(word, colors))
			break
		}
	}

	if a.Solved() {
		fmt.Fprintf(s.Out, "Great win in %d!\n", a.GuessesUsed())
	} else {
		fmt.Fprintf(s.Out, "Out of guesses. Still possible: %s\n", strings.Join(a.Candidates(), " "))
	}
	return nil
}

func parseTurn(line, guess string) (string, hint.Colors, error) {
	fields := strings.Fields(line)
	if len(fields) == hint.WordLength+1 {
		guess, fields = fields[0], fields[1:]
	}
	colors, err := hint.ParseColors(strings.Join(fields, " "))
	return guess, colors, err
}

func (s *Session) tiles(word string, colors hint.Colors) string {
	if s.Color {
		return hint.ColoredWord(hint.MustParseWord(word), colors)
	}
	return colors.String() + " " + strings.ToLower(word)
}
