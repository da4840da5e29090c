package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The crawl knobs mirror long-observed behavior on real news sites: seeds are
// index pages, articles sit one to three hops below them, and anything deeper
// is archive churn.
const (
	// DefaultMaxDepth allows the seed (depth 0) plus two hops. Articles on
	// most news sites are reachable within two clicks of the front page;
	// deeper crawls mostly find tag and archive pages.
	DefaultMaxDepth = 2

	// DefaultMaxFanoutIndex is the maximum number of links followed from an
	// index-like page when the structural scorer picks candidates. Two keeps
	// the frontier from exploding on link-heavy front pages.
	DefaultMaxFanoutIndex = 2

	// DefaultExtraLinksOnFollow is how many scorer-picked extras are
	// scheduled alongside an oracle-picked link, as a hedge against a wrong
	// oracle pick.
	DefaultExtraLinksOnFollow = 1

	// DefaultLinksForOracle caps the links shown to the navigation oracle.
	// 30 links keeps prompts well under token limits while still covering
	// a front page's main stories.
	DefaultLinksForOracle = 30

	// DefaultExtractLinksLimit caps how many anchors are extracted from a
	// page's DOM. 80 covers real front pages; beyond that it is navigation
	// chrome and footers.
	DefaultExtractLinksLimit = 80

	// DefaultMaxPagesBudget is the emergency stop for the whole run. Once
	// this many tasks have been processed, no further tasks are scheduled.
	DefaultMaxPagesBudget = 350

	// DefaultMinContentLength is the content-sufficiency gate. Pages whose
	// extracted text is shorter are discarded regardless of which render
	// path produced them; below 100 characters there is nothing to classify.
	DefaultMinContentLength = 100

	// DefaultConcurrency is the number of tasks with in-flight network work
	// at once. The frontier itself stays single-threaded; only the
	// render/decide/classify pipeline of distinct tasks overlaps.
	DefaultConcurrency = 10

	// DefaultFetchTimeout bounds one static HTTP fetch.
	DefaultFetchTimeout = 45 * time.Second

	// DefaultRenderTimeout is the wall-clock ceiling for one headless
	// render. Rendering spawns a browser, loads scripts, and waits for the
	// network to go idle, so it needs far more headroom than a raw fetch.
	DefaultRenderTimeout = 90 * time.Second

	// DefaultOracleTimeout bounds one oracle or classifier request.
	DefaultOracleTimeout = 60 * time.Second

	// DefaultMaxBodySize limits the response body size read on the static
	// path. 5MB is sufficient for any HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultModel is the completion model used for navigation and
	// relevance decisions.
	DefaultModel = "gpt-4o-mini"

	// DefaultUserAgent identifies scidigest in HTTP requests. A descriptive
	// User-Agent lets site operators identify crawler traffic in their logs.
	DefaultUserAgent = "scidigest/1.0 (+https://github.com/nao1215/scidigest)"

	// DefaultSeedsFile is the newline-delimited seed URL list.
	DefaultSeedsFile = "web_search.txt"

	// DefaultOutputPath is the canonical output: relevant items only.
	DefaultOutputPath = "digest.json"

	// DefaultDebugOutputPath is the full dump of every classified item,
	// relevant or not, for debugging the classifier.
	DefaultDebugOutputPath = "debug_all_results.json"

	// DefaultNodeBin is the node binary used to run the renderer script.
	// Overridable via the NODE_BIN environment variable.
	DefaultNodeBin = "node"

	// DefaultRendererScript is the headless renderer script. It receives a
	// URL as its only argument and prints {"body": ..., "links": [...]} to
	// stdout on success.
	DefaultRendererScript = "render.js"

	// PlaceholderAPIKey is the key written by `scidigest init`. Running
	// with it still in place is treated the same as a missing key.
	PlaceholderAPIKey = "your-openai-api-key-here"

	// AppName is the application name used for XDG directory paths.
	AppName = "scidigest"
)

// Config holds all configuration options for a crawl run.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, OracleConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// APIKey authenticates against the oracle/classifier backend. A missing
	// or placeholder key aborts before any crawling begins; it is the only
	// fatal startup condition.
	APIKey string

	// Model is the completion model name.
	Model string

	// OracleBaseURL overrides the completion API base URL. Empty means the
	// backend's default endpoint. Useful for proxies and tests.
	OracleBaseURL string

	// MaxDepth is the maximum number of hops from a seed. Seeds are depth 0.
	// No task is ever scheduled deeper than this.
	MaxDepth int

	// MaxFanoutIndex caps the children spawned from an index-like page via
	// the structural scorer.
	MaxFanoutIndex int

	// ExtraLinksOnFollow is how many scorer extras accompany an
	// oracle-picked link.
	ExtraLinksOnFollow int

	// LinksForOracle caps the links included in the navigation payload.
	LinksForOracle int

	// ExtractLinksLimit caps anchors extracted per page.
	ExtractLinksLimit int

	// MaxPagesBudget caps total tasks processed per run. In-flight tasks
	// complete when the budget trips; no new ones start.
	MaxPagesBudget int

	// MinContentLength is the minimum extracted-text length for a page to
	// be processed further.
	MinContentLength int

	// Concurrency is the maximum number of tasks in flight at once.
	Concurrency int

	// FetchTimeout bounds one static HTTP fetch.
	FetchTimeout time.Duration

	// RenderTimeout is the wall-clock ceiling for one headless render.
	RenderTimeout time.Duration

	// OracleTimeout bounds one oracle or classifier request.
	OracleTimeout time.Duration

	// MaxBodySize limits the response body size on the static fetch path.
	MaxBodySize int64

	// UserAgent is sent with every static fetch.
	UserAgent string

	// RespectRobots enables the robots.txt gate on the static fetch path.
	RespectRobots bool

	// SeedsFile is the newline-delimited list of seed URLs.
	SeedsFile string

	// OutputPath receives the relevant-only JSON array, fully overwritten
	// each run.
	OutputPath string

	// DebugOutputPath receives the full JSON array of classified items,
	// fully overwritten each run.
	DebugOutputPath string

	// MarkdownPath, when non-empty, receives a human-readable markdown
	// digest of the relevant items.
	MarkdownPath string

	// NodeBin is the node binary for the renderer subprocess.
	NodeBin string

	// RendererScript is the path to the renderer script. If the script is
	// missing, every render falls back to the static path.
	RendererScript string

	// HistoryDBDir is the directory for the crawl-history SQLite database.
	HistoryDBDir string

	// DisableHistory turns off crawl-history recording.
	DisableHistory bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig returns a Config populated with default values.
func NewConfig() *Config {
	return &Config{
		Model:              DefaultModel,
		MaxDepth:           DefaultMaxDepth,
		MaxFanoutIndex:     DefaultMaxFanoutIndex,
		ExtraLinksOnFollow: DefaultExtraLinksOnFollow,
		LinksForOracle:     DefaultLinksForOracle,
		ExtractLinksLimit:  DefaultExtractLinksLimit,
		MaxPagesBudget:     DefaultMaxPagesBudget,
		MinContentLength:   DefaultMinContentLength,
		Concurrency:        DefaultConcurrency,
		FetchTimeout:       DefaultFetchTimeout,
		RenderTimeout:      DefaultRenderTimeout,
		OracleTimeout:      DefaultOracleTimeout,
		MaxBodySize:        DefaultMaxBodySize,
		UserAgent:          DefaultUserAgent,
		RespectRobots:      true,
		SeedsFile:          DefaultSeedsFile,
		OutputPath:         DefaultOutputPath,
		DebugOutputPath:    DefaultDebugOutputPath,
		NodeBin:            DefaultNodeBin,
		RendererScript:     DefaultRendererScript,
		HistoryDBDir:       DefaultHistoryDBDir(),
	}
}

// DefaultHistoryDBDir returns the XDG data directory for the crawl-history
// database (e.g., ~/.local/share/scidigest on Linux).
func DefaultHistoryDBDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration for invalid values.
// It returns a sentinel error describing the first problem found.
func (c *Config) Validate() error {
	if c.APIKey == "" || c.APIKey == PlaceholderAPIKey {
		return ErrMissingAPIKey
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPagesBudget <= 0 {
		return ErrInvalidPageBudget
	}
	if c.MaxFanoutIndex < 0 || c.ExtraLinksOnFollow < 0 {
		return ErrInvalidFanout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.FetchTimeout <= 0 || c.RenderTimeout <= 0 || c.OracleTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MinContentLength < 0 {
		return ErrInvalidMinContent
	}
	if c.SeedsFile == "" {
		return ErrNoSeedsFile
	}
	return nil
}
