package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadConfigFile verifies YAML loading and the not-found sentinel.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(":\n\t- broken"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error, got nil")
		}
	})

	t.Run("fields apply over defaults", func(t *testing.T) {
		t.Parallel()
		content := `api_key: sk-from-file
model: gpt-4o
max_depth: 1
max_pages_budget: 50
render_timeout: 30s
seeds_file: seeds.txt
respect_robots: false
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		cfg := NewConfig()
		if err := cf.Apply(cfg); err != nil {
			t.Fatalf("failed to apply config: %v", err)
		}

		if cfg.APIKey != "sk-from-file" {
			t.Errorf("expected APIKey from file, got %q", cfg.APIKey)
		}
		if cfg.Model != "gpt-4o" {
			t.Errorf("expected model gpt-4o, got %q", cfg.Model)
		}
		if cfg.MaxDepth != 1 {
			t.Errorf("expected MaxDepth 1, got %d", cfg.MaxDepth)
		}
		if cfg.MaxPagesBudget != 50 {
			t.Errorf("expected MaxPagesBudget 50, got %d", cfg.MaxPagesBudget)
		}
		if cfg.RenderTimeout != 30*time.Second {
			t.Errorf("expected RenderTimeout 30s, got %v", cfg.RenderTimeout)
		}
		if cfg.SeedsFile != "seeds.txt" {
			t.Errorf("expected SeedsFile seeds.txt, got %q", cfg.SeedsFile)
		}
		if cfg.RespectRobots {
			t.Error("expected RespectRobots false")
		}
		// Untouched fields keep defaults.
		if cfg.MaxFanoutIndex != DefaultMaxFanoutIndex {
			t.Errorf("expected default MaxFanoutIndex, got %d", cfg.MaxFanoutIndex)
		}
	})

	t.Run("invalid duration in file", func(t *testing.T) {
		t.Parallel()
		cf := &File{FetchTimeout: "not-a-duration"}
		if err := cf.Apply(NewConfig()); err == nil {
			t.Error("expected duration parse error, got nil")
		}
	})
}

// TestLoadSeeds verifies the newline-delimited seed list format.
func TestLoadSeeds(t *testing.T) {
	t.Parallel()

	t.Run("reads URLs and skips blank lines", func(t *testing.T) {
		t.Parallel()
		content := "\uFEFF" + "http://news.example.com/\n\n  http://blog.example.org/feed  \n\n"
		path := filepath.Join(t.TempDir(), "web_search.txt")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write seeds: %v", err)
		}

		seeds, err := LoadSeeds(path)
		if err != nil {
			t.Fatalf("failed to load seeds: %v", err)
		}
		want := []string{"http://news.example.com/", "http://blog.example.org/feed"}
		if len(seeds) != len(want) {
			t.Fatalf("expected %d seeds, got %d: %v", len(want), len(seeds), seeds)
		}
		for i := range want {
			if seeds[i] != want[i] {
				t.Errorf("seed %d: expected %q, got %q", i, want[i], seeds[i])
			}
		}
	})

	t.Run("empty file returns ErrNoSeeds", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "web_search.txt")
		if err := os.WriteFile(path, []byte("\n\n  \n"), 0600); err != nil {
			t.Fatalf("failed to write seeds: %v", err)
		}
		if _, err := LoadSeeds(path); !errors.Is(err, ErrNoSeeds) {
			t.Errorf("expected ErrNoSeeds, got %v", err)
		}
	})

	t.Run("missing file returns an error", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadSeeds(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
			t.Error("expected error for missing file, got nil")
		}
	})
}
