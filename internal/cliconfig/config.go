package cliconfig

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bft-labs/seqbatch/pkg/seqbatch"
)

// TrainSplit is the only split --shuffle applies to.
const TrainSplit = "train"

// Config holds CLI configuration for seqbatch.
type Config struct {
	DataDir string
	Split   string

	MaxTokens    int
	MaxSentences int
	Alignment    int
	RateRatio    int

	Workers int
	Ordered bool
	Shuffle bool
	Seed    int64

	MemoryCacheSize int
	Normalize       bool
	Style           bool
	Progress        bool

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	lib := seqbatch.DefaultConfig()
	return Config{
		Split:        lib.Split,
		MaxTokens:    lib.MaxTokens,
		MaxSentences: lib.MaxSentences,
		Alignment:    lib.Alignment,
		RateRatio:    lib.RateRatio,
		Workers:      lib.Workers,
		Seed:         lib.Seed,
		LogLevel:     "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data-dir is required")
	}
	if c.Split == "" {
		return fmt.Errorf("split is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	if c.MaxSentences <= 0 {
		return fmt.Errorf("max sentences must be positive")
	}
	if c.Alignment <= 0 {
		return fmt.Errorf("alignment must be positive")
	}
	if c.RateRatio <= 0 {
		return fmt.Errorf("rate ratio must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.MemoryCacheSize < 0 {
		return fmt.Errorf("memory cache size cannot be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Library converts the CLI configuration to the loader configuration.
// Shuffling is only applied to the train split.
func (c Config) Library() seqbatch.Config {
	return seqbatch.Config{
		DataDir:         c.DataDir,
		Split:           c.Split,
		MaxTokens:       c.MaxTokens,
		MaxSentences:    c.MaxSentences,
		Alignment:       c.Alignment,
		RateRatio:       c.RateRatio,
		Workers:         c.Workers,
		Ordered:         c.Ordered,
		Shuffle:         c.Shuffle && c.Split == TrainSplit,
		Seed:            c.Seed,
		MemoryCacheSize: c.MemoryCacheSize,
		Normalize:       c.Normalize,
		Style:           c.Style,
		Progress:        c.Progress,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value if non-zero and flag not changed.
func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
