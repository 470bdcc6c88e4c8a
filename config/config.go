// Package config loads the YAML settings file. Every field has a default, so
// an absent file is the same as an empty one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bent101/wordle-search/logging"
	"github.com/bent101/wordle-search/pool"
	"github.com/bent101/wordle-search/search"
	"github.com/bent101/wordle-search/strategy"
	"github.com/bent101/wordle-search/wordlist"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Files    wordlist.Files      `yaml:"files"`
	Weights  wordlist.WeightMode `yaml:"weights" validate:"oneof=frequency log uniform"`
	Search   search.Config       `yaml:"search"`
	Pool     pool.Config         `yaml:"pool"`
	Strategy string              `yaml:"strategy"`
	Options  strategy.Options    `yaml:"strategy_options"`
	Log      logging.Config      `yaml:"log"`

	MetricsAddr string `yaml:"metrics_addr"`
	ServeAddr   string `yaml:"serve_addr" validate:"required"`
}

func Default() Config {
	return Config{
		Files: wordlist.Files{
			Words:       "io/words.txt",
			Frequencies: "io/frequencies.txt",
			Answers:     "io/answers.txt",
			Start:       "io/start.txt",
		},
		Weights:   wordlist.Log,
		Search:    search.DefaultConfig(),
		Pool:      pool.DefaultConfig(runtime.NumCPU()),
		Strategy:  strategy.None.String(),
		Options:   strategy.DefaultOptions(),
		Log:       logging.Config{Level: "info"},
		ServeAddr: ":8080",
	}
}

var validate = validator.New()

// Load reads path over Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := strategy.Parse(c.Strategy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
