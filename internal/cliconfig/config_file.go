package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with optional booleans so an absent key leaves
// the current value alone.
type FileConfig struct {
	DataDir         string `toml:"data_dir"`
	Split           string `toml:"split"`
	MaxTokens       int    `toml:"max_tokens"`
	MaxSentences    int    `toml:"max_sentences"`
	Alignment       int    `toml:"alignment"`
	RateRatio       int    `toml:"rate_ratio"`
	Workers         int    `toml:"workers"`
	Ordered         *bool  `toml:"ordered"`
	Shuffle         *bool  `toml:"shuffle"`
	Seed            int64  `toml:"seed"`
	MemoryCacheSize int    `toml:"memory_cache_size"`
	Normalize       *bool  `toml:"normalize"`
	Style           *bool  `toml:"style"`
	Progress        *bool  `toml:"progress"`
	LogLevel        string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.seqbatch/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".seqbatch", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setString("split", fc.Split, &cfg.Split)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("max-tokens", fc.MaxTokens, &cfg.MaxTokens)
	s.setInt("max-sentences", fc.MaxSentences, &cfg.MaxSentences)
	s.setInt("alignment", fc.Alignment, &cfg.Alignment)
	s.setInt("rate-ratio", fc.RateRatio, &cfg.RateRatio)
	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("memory-cache-size", fc.MemoryCacheSize, &cfg.MemoryCacheSize)
	s.setInt64("seed", fc.Seed, &cfg.Seed)

	s.setBool("ordered", fc.Ordered, &cfg.Ordered)
	s.setBool("shuffle", fc.Shuffle, &cfg.Shuffle)
	s.setBool("normalize", fc.Normalize, &cfg.Normalize)
	s.setBool("style", fc.Style, &cfg.Style)
	s.setBool("progress", fc.Progress, &cfg.Progress)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
