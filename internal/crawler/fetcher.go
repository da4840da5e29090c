package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/scidigest/internal/model"
)

// ErrRobotsDisallowed is returned when robots.txt forbids fetching a URL.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// Fetcher is the static page path: a plain HTTP GET with a robots.txt gate,
// body-size limit, and charset decoding. When the dynamic renderer fails,
// the render gateway falls back to this.
//
// Retry policy and connection pooling belong to the injected http.Client,
// not to the Fetcher.
type Fetcher struct {
	// client performs the HTTP requests. Required.
	client *http.Client

	// userAgent is the User-Agent header sent with every request, and the
	// agent name matched against robots.txt rules.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// extractLimit caps anchors extracted per page.
	extractLimit int

	// respectRobots enables the robots.txt gate.
	respectRobots bool

	// logger records fetch diagnostics.
	logger *slog.Logger

	// robots caches parsed robots.txt per scheme://host.
	// mutex protects it: fetches for different tasks run concurrently.
	robots map[string]*robotstxt.RobotsData
	mutex  sync.Mutex
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithExtractLinksLimit sets the maximum anchors extracted per page.
func WithExtractLinksLimit(limit int) FetcherOption {
	return func(f *Fetcher) {
		f.extractLimit = limit
	}
}

// WithRespectRobots toggles the robots.txt gate.
func WithRespectRobots(respect bool) FetcherOption {
	return func(f *Fetcher) {
		f.respectRobots = respect
	}
}

// WithFetcherLogger sets the logger used for fetch diagnostics.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher using the given HTTP client.
//
// Design decision: We require an external client because timeout, proxy, and
// pooling policy belong to the caller; it also allows httptest clients in
// tests.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:        client,
		userAgent:     "scidigest/1.0",
		maxBodySize:   5 * 1024 * 1024, // 5MB
		extractLimit:  80,
		respectRobots: true,
		robots:        make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch retrieves a page over plain HTTP and extracts its text and links.
// Non-2xx statuses are not errors: error pages still carry text and links
// worth navigating. The only hard failures are network errors, unreadable
// bodies, and robots.txt denials.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.RenderResult, error) {
	if f.respectRobots {
		allowed, err := f.robotsAllowed(ctx, pageURL)
		if err != nil {
			f.logger.Debug("robots.txt check failed, allowing fetch", "url", pageURL, "error", err)
		} else if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, pageURL)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	// Decode to UTF-8 based on the Content-Type header and document meta
	// tags, so non-UTF-8 pages survive extraction.
	bodyReader := io.LimitReader(resp.Body, f.maxBodySize)
	decoded, err := charset.NewReader(bodyReader, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}

	body, links, err := ExtractPage(pageURL, decoded, f.extractLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page: %w", err)
	}

	f.logger.Debug("fetched page",
		"url", pageURL,
		"status", resp.StatusCode,
		"body_chars", len(body),
		"links", len(links),
	)

	return &model.RenderResult{
		URL:    pageURL,
		Source: model.RenderSourceStatic,
		Body:   body,
		Links:  links,
	}, nil
}

// robotsAllowed checks pageURL against the host's robots.txt, fetching and
// caching the rules on first use. Per robots.txt convention, a missing file
// (404) allows everything and a server error (5xx) disallows everything;
// the robotstxt library encodes both.
func (f *Fetcher) robotsAllowed(ctx context.Context, pageURL string) (bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false, err
	}

	key := u.Scheme + "://" + u.Host

	f.mutex.Lock()
	data, ok := f.robots[key]
	f.mutex.Unlock()

	if !ok {
		data, err = f.fetchRobots(ctx, key)
		if err != nil {
			return false, err
		}
		f.mutex.Lock()
		f.robots[key] = data
		f.mutex.Unlock()
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, f.userAgent), nil
}

// fetchRobots retrieves and parses robots.txt for one scheme://host.
func (f *Fetcher) fetchRobots(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, err
	}
	return data, nil
}
