package cliconfig

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Split != "train" {
		t.Errorf("Split = %v, want train", cfg.Split)
	}
	if cfg.MaxTokens != 60000 {
		t.Errorf("MaxTokens = %v, want 60000", cfg.MaxTokens)
	}
	if cfg.MaxSentences != 512 {
		t.Errorf("MaxSentences = %v, want 512", cfg.MaxSentences)
	}
	if cfg.Alignment != 8 {
		t.Errorf("Alignment = %v, want 8", cfg.Alignment)
	}
	if cfg.RateRatio != 2 {
		t.Errorf("RateRatio = %v, want 2", cfg.RateRatio)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %v, want 4", cfg.Workers)
	}
	if cfg.Shuffle {
		t.Error("Shuffle = true, want false")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.DataDir = "/tmp/data"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults with data dir", mutate: func(*Config) {}},
		{name: "missing data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: true},
		{name: "missing split", mutate: func(c *Config) { c.Split = "" }, wantErr: true},
		{name: "zero max tokens", mutate: func(c *Config) { c.MaxTokens = 0 }, wantErr: true},
		{name: "zero max sentences", mutate: func(c *Config) { c.MaxSentences = 0 }, wantErr: true},
		{name: "negative alignment", mutate: func(c *Config) { c.Alignment = -8 }, wantErr: true},
		{name: "zero rate ratio", mutate: func(c *Config) { c.RateRatio = 0 }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "negative memory cache", mutate: func(c *Config) { c.MemoryCacheSize = -1 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "debug log level", mutate: func(c *Config) { c.LogLevel = "debug" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Library(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/data"
	cfg.MemoryCacheSize = 100
	cfg.Shuffle = true
	cfg.Style = true

	lib := cfg.Library()
	if lib.DataDir != "/tmp/data" || lib.MemoryCacheSize != 100 || lib.Alignment != 8 {
		t.Errorf("Library() = %+v", lib)
	}
	if !lib.Shuffle {
		t.Error("train split should shuffle")
	}
	if !lib.Style {
		t.Error("Style not carried over")
	}

	cfg.Split = "val"
	if cfg.Library().Shuffle {
		t.Error("val split should not shuffle")
	}
}

func TestConfigSetter_RespectsChanged(t *testing.T) {
	s := newConfigSetter(map[string]bool{"split": true, "workers": true})

	split := "flag"
	s.setString("split", "file", &split)
	if split != "flag" {
		t.Errorf("split = %v, want flag", split)
	}

	workers := 2
	s.setInt("workers", 8, &workers)
	if workers != 2 {
		t.Errorf("workers = %v, want 2", workers)
	}

	tokens := 100
	s.setInt("max-tokens", 0, &tokens)
	if tokens != 100 {
		t.Errorf("zero value should not override, got %v", tokens)
	}
	s.setInt("max-tokens", 300, &tokens)
	if tokens != 300 {
		t.Errorf("max-tokens = %v, want 300", tokens)
	}

	var seed int64 = 1
	if err := s.setInt64FromString("seed", "-5", &seed); err != nil {
		t.Fatalf("setInt64FromString: %v", err)
	}
	if seed != -5 {
		t.Errorf("seed = %v, want -5", seed)
	}
	if err := s.setInt64FromString("seed", "x", &seed); err == nil {
		t.Error("expected parse error")
	}
}
