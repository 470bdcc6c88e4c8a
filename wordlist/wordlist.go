// Package wordlist reads the flat files the solver runs on: the word list,
// word frequencies, the cached starting word and past answers.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/reducer"
)

// DefaultFrequency is the count given to words missing from the frequency
// table.
const DefaultFrequency = 100

var ErrEmptyList = errors.New("empty word list")

// LoadWords reads one word per line. Blank lines are skipped; anything else
// must be a valid word.
func LoadWords(r io.Reader) ([]hint.Word, error) {
	var words []hint.Word
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		w, err := hint.ParseWord(s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyList
	}
	return words, nil
}

// LoadAnswers reads a list of past answers. Malformed lines are kept as-is
// so a backtest can record them as failures.
func LoadAnswers(r io.Reader) ([]string, error) {
	var answers []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			answers = append(answers, strings.ToLower(s))
		}
	}
	return answers, sc.Err()
}

// LoadFrequencies reads "word count" lines.
func LoadFrequencies(r io.Reader) (map[hint.Word]int, error) {
	freqs := make(map[hint.Word]int)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"word count\", got %q", line, sc.Text())
		}
		w, err := hint.ParseWord(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("line %d: count %q is not a positive integer", line, fields[1])
		}
		freqs[w] = n
	}
	return freqs, sc.Err()
}

// WeightMode turns frequencies into prior weights.
type WeightMode string

const (
	Frequency WeightMode = "frequency"
	Log       WeightMode = "log"
	Uniform   WeightMode = "uniform"
)

// Weights returns one prior weight per word. Log mode is log10 of the count,
// floored so every word keeps a positive weight.
func Weights(words []hint.Word, freqs map[hint.Word]int, mode WeightMode) ([]float64, error) {
	weights := make([]float64, len(words))
	for i, w := range words {
		n, ok := freqs[w]
		if !ok {
			n = DefaultFrequency
		}

		switch mode {
		case Frequency:
			weights[i] = float64(n)
		case Log:
			weights[i] = max(math.Log10(float64(n)), 0.1)
		case Uniform, "":
			weights[i] = 1
		default:
			return nil, fmt.Errorf("unknown weight mode %q", mode)
		}
	}
	return weights, nil
}

// Files names the inputs of an inventory. Frequencies is optional.
type Files struct {
	Words       string `yaml:"words" validate:"required"`
	Frequencies string `yaml:"frequencies"`
	Answers     string `yaml:"answers"`
	Start       string `yaml:"start"`
}

// Inventory loads the word list and weights named by f.
func (f Files) Inventory(mode WeightMode) (*reducer.Inventory, error) {
	file, err := os.Open(f.Words)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	words, err := LoadWords(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Words, err)
	}

	freqs := map[hint.Word]int{}
	if f.Frequencies != "" {
		ff, err := os.Open(f.Frequencies)
		if err != nil {
			return nil, err
		}
		defer ff.Close()
		if freqs, err = LoadFrequencies(ff); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Frequencies, err)
		}
	}

	weights, err := Weights(words, freqs, mode)
	if err != nil {
		return nil, err
	}
	return reducer.NewInventory(words, weights)
}

// LoadStartingWord returns the cached first guess. A missing or empty file
// means there is none.
func LoadStartingWord(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	s := strings.TrimSpace(string(data))
	if s == "" {
		return "", nil
	}
	if _, err := hint.ParseWord(s); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func SaveStartingWord(path, word string) error {
	return os.WriteFile(path, []byte(word+"\n"), 0o644)
}
