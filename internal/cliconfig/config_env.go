package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "SEQBATCH_"

// ApplyEnvConfig applies configuration from environment variables (SEQBATCH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("data-dir", env("DATA_DIR"), &cfg.DataDir)
	s.setString("split", env("SPLIT"), &cfg.Split)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	ints := []struct {
		flag, name string
		dst        *int
	}{
		{"max-tokens", "MAX_TOKENS", &cfg.MaxTokens},
		{"max-sentences", "MAX_SENTENCES", &cfg.MaxSentences},
		{"alignment", "ALIGNMENT", &cfg.Alignment},
		{"rate-ratio", "RATE_RATIO", &cfg.RateRatio},
		{"workers", "WORKERS", &cfg.Workers},
		{"memory-cache-size", "MEMORY_CACHE_SIZE", &cfg.MemoryCacheSize},
	}
	for _, v := range ints {
		if err := s.setIntFromString(v.flag, env(v.name), v.dst); err != nil {
			return err
		}
	}
	if err := s.setInt64FromString("seed", env("SEED"), &cfg.Seed); err != nil {
		return err
	}

	s.setBoolFromString("ordered", env("ORDERED"), &cfg.Ordered)
	s.setBoolFromString("shuffle", env("SHUFFLE"), &cfg.Shuffle)
	s.setBoolFromString("normalize", env("NORMALIZE"), &cfg.Normalize)
	s.setBoolFromString("style", env("STYLE"), &cfg.Style)
	s.setBoolFromString("progress", env("PROGRESS"), &cfg.Progress)

	return nil
}
