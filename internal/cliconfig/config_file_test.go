package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				DataDir:   "/data",
				MaxTokens: 30000,
				Alignment: 4,
				Ordered:   &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				DataDir:   "/data",
				MaxTokens: 30000,
				Alignment: 4,
				Ordered:   true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				DataDir: "/config/data",
				Split:   "val",
			},
			changed: map[string]bool{"data-dir": true},
			initial: Config{
				DataDir: "/flag/data",
				Split:   "train",
			},
			expected: Config{
				DataDir: "/flag/data", // unchanged because flag was set
				Split:   "val",
			},
		},
		{
			name: "absent booleans keep current values",
			fileConfig: FileConfig{
				Normalize: &falseVal,
			},
			changed: map[string]bool{},
			initial: Config{Shuffle: true, Normalize: true},
			expected: Config{
				Shuffle:   true,
				Normalize: false,
			},
		},
		{
			name: "handles all field types correctly",
			fileConfig: FileConfig{
				DataDir:         "/data",
				Split:           "test",
				MaxTokens:       1000,
				MaxSentences:    16,
				Alignment:       2,
				RateRatio:       3,
				Workers:         6,
				Ordered:         &trueVal,
				Shuffle:         &falseVal,
				Seed:            42,
				MemoryCacheSize: 128,
				Normalize:       &trueVal,
				Progress:        &trueVal,
				LogLevel:        "debug",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				DataDir:         "/data",
				Split:           "test",
				MaxTokens:       1000,
				MaxSentences:    16,
				Alignment:       2,
				RateRatio:       3,
				Workers:         6,
				Ordered:         true,
				Shuffle:         false,
				Seed:            42,
				MemoryCacheSize: 128,
				Normalize:       true,
				Progress:        true,
				LogLevel:        "debug",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			if err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed); err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	// Create a temporary TOML file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
data_dir = "/data/lrs3"
split = "val"
max_tokens = 40000
alignment = 4
ordered = true
seed = 7
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.DataDir != "/data/lrs3" {
		t.Errorf("DataDir = %v, want /data/lrs3", fc.DataDir)
	}
	if fc.Split != "val" {
		t.Errorf("Split = %v, want val", fc.Split)
	}
	if fc.MaxTokens != 40000 {
		t.Errorf("MaxTokens = %v, want 40000", fc.MaxTokens)
	}
	if fc.Alignment != 4 {
		t.Errorf("Alignment = %v, want 4", fc.Alignment)
	}
	if fc.Ordered == nil || !*fc.Ordered {
		t.Errorf("Ordered = %v, want true", fc.Ordered)
	}
	if fc.Shuffle != nil {
		t.Errorf("Shuffle = %v, want nil", *fc.Shuffle)
	}
	if fc.Seed != 7 {
		t.Errorf("Seed = %v, want 7", fc.Seed)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	p := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(p, []byte("max_tokens = \"many\""), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(p); err == nil {
		t.Error("expected error for mistyped value")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	p := DefaultConfigPath()
	if p == "" {
		t.Skip("no home directory")
	}
	if !strings.HasSuffix(p, filepath.Join(".seqbatch", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %v", p)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	if FileExists(p) {
		t.Error("FileExists() = true before creation")
	}
	if err := os.WriteFile(p, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(p) {
		t.Error("FileExists() = false after creation")
	}
}
