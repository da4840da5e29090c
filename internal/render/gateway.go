package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/nao1215/scidigest/internal/model"
)

// Fetcher is the static fallback path: a raw HTTP fetch with link and text
// extraction. crawler.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*model.RenderResult, error)
}

// ErrInsufficientContent is returned when a page's extracted text is below
// the minimum length on every available path. Such pages are abandoned:
// there is nothing to classify and nothing worth navigating.
var ErrInsufficientContent = errors.New("insufficient page content")

// Gateway obtains page content with a fixed preference order: the dynamic
// renderer first, then the static fetch. The minimum-length gate applies
// identically regardless of which path produced the content.
type Gateway struct {
	renderer Renderer
	fetcher  Fetcher

	// minContent is the content-sufficiency gate in characters.
	minContent int

	logger *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithMinContentLength sets the content-sufficiency gate.
func WithMinContentLength(n int) GatewayOption {
	return func(g *Gateway) {
		g.minContent = n
	}
}

// WithGatewayLogger sets the logger used for gateway diagnostics.
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a Gateway over the given renderer and fetcher.
func NewGateway(renderer Renderer, fetcher Fetcher, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		renderer:   renderer,
		fetcher:    fetcher,
		minContent: 100,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Obtain returns the page's content, or an error when both the dynamic and
// static paths fail or yield insufficient content. Errors are per-page:
// the caller discards the page and the crawl continues.
func (g *Gateway) Obtain(ctx context.Context, pageURL string) (*model.RenderResult, error) {
	page, err := g.renderer.Render(ctx, pageURL)
	switch {
	case err != nil:
		g.logger.Debug("dynamic render failed, using static fetch", "url", pageURL, "error", err)
	case utf8.RuneCountInString(page.Body) < g.minContent:
		g.logger.Debug("dynamic render too short, using static fetch",
			"url", pageURL, "body_chars", utf8.RuneCountInString(page.Body))
	default:
		return page, nil
	}

	static, ferr := g.fetcher.Fetch(ctx, pageURL)
	if ferr != nil {
		return nil, fmt.Errorf("both render paths failed for %s: %w", pageURL, ferr)
	}
	if n := utf8.RuneCountInString(static.Body); n < g.minContent {
		return nil, fmt.Errorf("%w: %s (%d chars)", ErrInsufficientContent, pageURL, n)
	}
	return static, nil
}
