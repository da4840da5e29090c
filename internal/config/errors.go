package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrMissingAPIKey is returned when the oracle API key is absent or
	// still the placeholder written by `scidigest init`. This is the only
	// configuration problem treated as fatal at startup per the failure
	// policy: everything else degrades, a missing credential cannot.
	ErrMissingAPIKey = errors.New("missing API key: set OPENAI_API_KEY or api_key in .scidigest.yaml")

	// ErrInvalidMaxDepth is returned when the maximum depth is negative.
	// Depth 0 is valid and means seeds only.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidPageBudget is returned when the page budget is not positive.
	// A budget of zero would schedule nothing, not even the seeds.
	ErrInvalidPageBudget = errors.New("invalid page budget: must be positive")

	// ErrInvalidFanout is returned when a fanout limit is negative.
	// Zero is valid and disables the corresponding branch.
	ErrInvalidFanout = errors.New("invalid fanout: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	// Zero workers would stall the frontier forever.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when any of the fetch, render, or
	// oracle timeouts is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMinContent is returned when the minimum content length is
	// negative. Zero disables the content-sufficiency gate.
	ErrInvalidMinContent = errors.New("invalid minimum content length: must be non-negative")

	// ErrNoSeedsFile is returned when no seed list path is configured.
	ErrNoSeedsFile = errors.New("no seeds file specified")

	// ErrNoSeeds is returned when the seed list exists but contains no URLs.
	ErrNoSeeds = errors.New("seeds file contains no URLs")
)
