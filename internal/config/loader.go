package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".scidigest.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File mirrors the YAML configuration file. All fields are optional; only
// set fields override the built-in defaults. Flags still win over the file.
type File struct {
	APIKey             string `yaml:"api_key,omitempty"`
	Model              string `yaml:"model,omitempty"`
	OracleBaseURL      string `yaml:"oracle_base_url,omitempty"`
	MaxDepth           *int   `yaml:"max_depth,omitempty"`
	MaxFanoutIndex     *int   `yaml:"max_fanout_index,omitempty"`
	ExtraLinksOnFollow *int   `yaml:"extra_links_on_follow,omitempty"`
	LinksForOracle     *int   `yaml:"links_for_oracle,omitempty"`
	ExtractLinksLimit  *int   `yaml:"extract_links_limit,omitempty"`
	MaxPagesBudget     *int   `yaml:"max_pages_budget,omitempty"`
	Concurrency        *int   `yaml:"concurrency,omitempty"`
	FetchTimeout       string `yaml:"fetch_timeout,omitempty"`
	RenderTimeout      string `yaml:"render_timeout,omitempty"`
	OracleTimeout      string `yaml:"oracle_timeout,omitempty"`
	UserAgent          string `yaml:"user_agent,omitempty"`
	SeedsFile          string `yaml:"seeds_file,omitempty"`
	OutputPath         string `yaml:"output_path,omitempty"`
	DebugOutputPath    string `yaml:"debug_output_path,omitempty"`
	MarkdownPath       string `yaml:"markdown_path,omitempty"`
	NodeBin            string `yaml:"node_bin,omitempty"`
	RendererScript     string `yaml:"renderer_script,omitempty"`
	RespectRobots      *bool  `yaml:"respect_robots,omitempty"`
	DisableHistory     *bool  `yaml:"disable_history,omitempty"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// treat that as fatal only when the path was explicitly specified.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .scidigest.yaml in the current directory
//  3. Look for .scidigest.yaml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Apply copies every set field of the file onto the config.
func (f *File) Apply(cfg *Config) error {
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.Model != "" {
		cfg.Model = f.Model
	}
	if f.OracleBaseURL != "" {
		cfg.OracleBaseURL = f.OracleBaseURL
	}
	if f.MaxDepth != nil {
		cfg.MaxDepth = *f.MaxDepth
	}
	if f.MaxFanoutIndex != nil {
		cfg.MaxFanoutIndex = *f.MaxFanoutIndex
	}
	if f.ExtraLinksOnFollow != nil {
		cfg.ExtraLinksOnFollow = *f.ExtraLinksOnFollow
	}
	if f.LinksForOracle != nil {
		cfg.LinksForOracle = *f.LinksForOracle
	}
	if f.ExtractLinksLimit != nil {
		cfg.ExtractLinksLimit = *f.ExtractLinksLimit
	}
	if f.MaxPagesBudget != nil {
		cfg.MaxPagesBudget = *f.MaxPagesBudget
	}
	if f.Concurrency != nil {
		cfg.Concurrency = *f.Concurrency
	}
	if f.RespectRobots != nil {
		cfg.RespectRobots = *f.RespectRobots
	}
	if f.DisableHistory != nil {
		cfg.DisableHistory = *f.DisableHistory
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.SeedsFile != "" {
		cfg.SeedsFile = f.SeedsFile
	}
	if f.OutputPath != "" {
		cfg.OutputPath = f.OutputPath
	}
	if f.DebugOutputPath != "" {
		cfg.DebugOutputPath = f.DebugOutputPath
	}
	if f.MarkdownPath != "" {
		cfg.MarkdownPath = f.MarkdownPath
	}
	if f.NodeBin != "" {
		cfg.NodeBin = f.NodeBin
	}
	if f.RendererScript != "" {
		cfg.RendererScript = f.RendererScript
	}

	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{f.FetchTimeout, &cfg.FetchTimeout},
		{f.RenderTimeout, &cfg.RenderTimeout},
		{f.OracleTimeout, &cfg.OracleTimeout},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q in config file: %w", d.raw, err)
		}
		*d.dst = parsed
	}

	return nil
}

// LoadSeeds reads a newline-delimited list of absolute seed URLs.
// Blank lines and surrounding whitespace are ignored. It returns ErrNoSeeds
// when the file contains no URLs at all.
func LoadSeeds(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided seeds path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open seeds file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var seeds []string
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			// Text editors sometimes leave a UTF-8 BOM on the first line.
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seeds file: %w", err)
	}
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	return seeds, nil
}
