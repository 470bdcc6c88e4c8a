package search

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidConfig = errors.New("invalid search config")

// Config bounds the search. The guess and depth budgets are mandatory.
type Config struct {
	// MaxGuesses is the game's guess budget.
	MaxGuesses int `yaml:"max_guesses" validate:"min=1,max=32"`
	// MaxDepth is how many guesses ahead to look, counting the one chosen.
	MaxDepth int `yaml:"max_depth" validate:"min=1,max=16"`
	// ShortlistSize bounds each heuristic in a shortlist. 0 scores every word.
	ShortlistSize int `yaml:"shortlist_size" validate:"min=0"`
	// ConfidenceThreshold is the dominant candidate share above which the
	// search stops and plays it.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" validate:"gt=0,lte=1"`
	// FailurePenalty is the cost charged for not solving within budget.
	FailurePenalty float64 `yaml:"failure_penalty" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{
		MaxGuesses:          6,
		MaxDepth:            2,
		ShortlistSize:       30,
		ConfidenceThreshold: 0.8,
		FailurePenalty:      10,
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
