package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/nao1215/scidigest/internal/model"
)

// Renderer produces a page's content via a dynamic (JavaScript-executing)
// path.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (*model.RenderResult, error)
}

// ErrRendererUnavailable is returned when the renderer script does not
// exist. The gateway treats it like any other render failure.
var ErrRendererUnavailable = errors.New("renderer script not found")

// diagnosticLimit caps how much subprocess output is attached to errors.
// Failed renders can dump megabytes of browser noise; the first 500 bytes
// identify the problem.
const diagnosticLimit = 500

// SubprocessRenderer obtains pages by running a node script that drives a
// headless browser. The script receives the URL as its only argument and
// must print {"body": ..., "links": [...]} JSON to stdout on exit code 0.
//
// Design decision: The renderer stays out-of-process because a headless
// browser is two orders of magnitude heavier than this whole binary. A crash
// or leak in the browser costs one page, not the crawl.
type SubprocessRenderer struct {
	// nodeBin is the node binary to invoke.
	nodeBin string

	// script is the renderer script path.
	script string

	// timeout is the wall-clock ceiling for one render.
	timeout time.Duration

	// logger records render diagnostics.
	logger *slog.Logger
}

// SubprocessOption configures a SubprocessRenderer.
type SubprocessOption func(*SubprocessRenderer)

// WithNodeBin sets the node binary. Default "node".
func WithNodeBin(bin string) SubprocessOption {
	return func(r *SubprocessRenderer) {
		if bin != "" {
			r.nodeBin = bin
		}
	}
}

// WithRenderTimeout sets the wall-clock ceiling for one render.
func WithRenderTimeout(d time.Duration) SubprocessOption {
	return func(r *SubprocessRenderer) {
		r.timeout = d
	}
}

// WithRendererLogger sets the logger used for render diagnostics.
func WithRendererLogger(logger *slog.Logger) SubprocessOption {
	return func(r *SubprocessRenderer) {
		r.logger = logger
	}
}

// NewSubprocessRenderer creates a renderer running the given script.
func NewSubprocessRenderer(script string, opts ...SubprocessOption) *SubprocessRenderer {
	r := &SubprocessRenderer{
		nodeBin: "node",
		script:  script,
		timeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Render runs the renderer subprocess for one URL and parses its output.
func (r *SubprocessRenderer) Render(ctx context.Context, pageURL string) (*model.RenderResult, error) {
	if _, err := os.Stat(r.script); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRendererUnavailable, r.script)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.nodeBin, r.script, pageURL) //nolint:gosec // node binary and script are operator-configured
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("renderer failed for %s: %w (stderr: %s)",
			pageURL, err, clip(stderr.String(), diagnosticLimit))
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return nil, fmt.Errorf("renderer produced no output for %s (stderr: %s)",
			pageURL, clip(stderr.String(), diagnosticLimit))
	}

	var payload struct {
		Body  string                `json:"body"`
		Links []model.LinkCandidate `json:"links"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return nil, fmt.Errorf("renderer output unparsable for %s: %w (stdout: %s)",
			pageURL, err, clip(out, diagnosticLimit))
	}

	r.logger.Debug("rendered page",
		"url", pageURL,
		"duration_ms", time.Since(start).Milliseconds(),
		"body_chars", len(payload.Body),
		"links", len(payload.Links),
	)

	return &model.RenderResult{
		URL:    pageURL,
		Source: model.RenderSourceDynamic,
		Body:   strings.TrimSpace(payload.Body),
		Links:  payload.Links,
	}, nil
}

// clip truncates s to at most n bytes for diagnostics, never splitting the
// output mid-rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
