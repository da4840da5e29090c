package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nao1215/scidigest/internal/model"
)

// stubGateway serves canned pages by URL; unknown URLs fail like a page that
// could not be rendered on either path.
type stubGateway struct {
	mu    sync.Mutex
	pages map[string]*model.RenderResult
	calls map[string]int
}

func newStubGateway(pages map[string]*model.RenderResult) *stubGateway {
	return &stubGateway{pages: pages, calls: make(map[string]int)}
}

func (g *stubGateway) Obtain(_ context.Context, pageURL string) (*model.RenderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[pageURL]++
	page, ok := g.pages[pageURL]
	if !ok {
		return nil, errors.New("no content on any render path")
	}
	return page, nil
}

func (g *stubGateway) callCount(pageURL string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[pageURL]
}

// stubNavigator follows a configured link for some URLs, fails for others,
// and decides everywhere else.
type stubNavigator struct {
	follow map[string]string
	fail   map[string]bool
}

func (n *stubNavigator) Decide(_ context.Context, _ *model.RenderResult, task model.CrawlTask) (*model.NavigationDecision, error) {
	if n.fail[task.URL] {
		return nil, errors.New("oracle unreachable")
	}
	if picked, ok := n.follow[task.URL]; ok {
		return &model.NavigationDecision{Action: model.ActionFollowLink, URL: picked}, nil
	}
	return &model.NavigationDecision{Action: model.ActionDecide, URL: task.URL}, nil
}

// stubClassifier returns configured verdicts; URLs in skip produce no
// verdict, URLs in fail produce an error.
type stubClassifier struct {
	mu       sync.Mutex
	relevant map[string]bool
	skip     map[string]bool
	fail     map[string]bool
	calls    int
}

func (c *stubClassifier) Classify(_ context.Context, _, pageURL string) (*model.Item, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.fail[pageURL] {
		return nil, errors.New("oracle unreachable")
	}
	if c.skip[pageURL] {
		return nil, nil
	}
	return &model.Item{IsRelevant: c.relevant[pageURL], Summary: "summary of " + pageURL, URL: pageURL}, nil
}

// stubSink collects items in emission order.
type stubSink struct {
	items []model.Item
}

func (s *stubSink) Add(item model.Item) {
	s.items = append(s.items, item)
}

// stubHistory collects task records.
type stubHistory struct {
	records []model.TaskRecord
}

func (h *stubHistory) RecordTask(_ context.Context, rec model.TaskRecord) error {
	h.records = append(h.records, rec)
	return nil
}

const testSeed = "https://news.example.com/"

// page builds a RenderResult with the given same-site article links.
func page(url, body string, hrefs ...string) *model.RenderResult {
	links := make([]model.LinkCandidate, 0, len(hrefs))
	for _, href := range hrefs {
		links = append(links, model.LinkCandidate{Text: "headline", Href: href})
	}
	return &model.RenderResult{URL: url, Source: model.RenderSourceStatic, Body: body, Links: links}
}

func TestSchedulerClassifyBranch(t *testing.T) {
	t.Parallel()

	const (
		alpha = "https://news.example.com/science/alpha"
		beta  = "https://news.example.com/science/beta"
		about = "https://news.example.com/about"
	)

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page", alpha, beta, about),
		alpha:    page(alpha, "alpha article"),
		beta:     page(beta, "beta article"),
	})
	classifier := &stubClassifier{relevant: map[string]bool{alpha: true}}
	sink := &stubSink{}

	s := NewScheduler(gateway, &stubNavigator{}, classifier, sink,
		WithMaxDepth(1),
		WithMaxFanout(2),
		WithConcurrency(1),
	)

	stats, err := s.Run(context.Background(), []string{testSeed})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The seed is not relevant, so its two best-scoring links (the deeper
	// /science/ pair, not /about) become children.
	if stats.Processed != 3 {
		t.Errorf("Processed = %d, want 3", stats.Processed)
	}
	if stats.Emitted != 1 {
		t.Errorf("Emitted = %d, want 1", stats.Emitted)
	}
	if gateway.callCount(about) != 0 {
		t.Errorf("/about was rendered; the scorer should have dropped it")
	}

	// Every verdict lands in the sink; only alpha is relevant.
	if len(sink.items) != 3 {
		t.Fatalf("sink has %d items, want 3", len(sink.items))
	}
	relevant := 0
	for _, item := range sink.items {
		if item.IsRelevant {
			relevant++
			if item.URL != alpha {
				t.Errorf("relevant item URL = %q, want %q", item.URL, alpha)
			}
		}
	}
	if relevant != 1 {
		t.Errorf("sink has %d relevant items, want 1", relevant)
	}
}

func TestSchedulerFollowBranch(t *testing.T) {
	t.Parallel()

	const (
		picked = "https://news.example.com/science/picked"
		extra  = "https://news.example.com/science/extra"
	)

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page", extra, picked),
		picked:   page(picked, "picked article"),
		extra:    page(extra, "extra article"),
	})
	navigator := &stubNavigator{follow: map[string]string{testSeed: picked}}
	classifier := &stubClassifier{relevant: map[string]bool{picked: true, extra: true}}
	sink := &stubSink{}
	history := &stubHistory{}

	s := NewScheduler(gateway, navigator, classifier, sink,
		WithMaxDepth(1),
		WithExtraLinksOnFollow(1),
		WithConcurrency(1),
		WithHistory(history),
	)

	stats, err := s.Run(context.Background(), []string{testSeed})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The oracle pick plus one scorer extra, never the pick twice.
	if stats.Processed != 3 {
		t.Errorf("Processed = %d, want 3 (seed, pick, extra)", stats.Processed)
	}
	if gateway.callCount(picked) != 1 {
		t.Errorf("picked rendered %d times, want 1", gateway.callCount(picked))
	}
	if gateway.callCount(extra) != 1 {
		t.Errorf("extra rendered %d times, want 1", gateway.callCount(extra))
	}
	if stats.Emitted != 2 {
		t.Errorf("Emitted = %d, want 2", stats.Emitted)
	}

	// The seed never reaches the classifier on the follow branch.
	for _, item := range sink.items {
		if item.URL == testSeed {
			t.Error("seed was classified despite a follow_link decision")
		}
	}

	var seedRec *model.TaskRecord
	for i := range history.records {
		if history.records[i].URL == testSeed {
			seedRec = &history.records[i]
		}
	}
	if seedRec == nil {
		t.Fatal("no history record for the seed")
	}
	if seedRec.Outcome != model.OutcomeFollowed {
		t.Errorf("seed outcome = %q, want %q", seedRec.Outcome, model.OutcomeFollowed)
	}
}

func TestSchedulerNavigatorFailureClassifiesAnyway(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page"),
	})
	classifier := &stubClassifier{relevant: map[string]bool{testSeed: true}}
	sink := &stubSink{}

	s := NewScheduler(gateway, &stubNavigator{fail: map[string]bool{testSeed: true}}, classifier, sink,
		WithConcurrency(1),
	)

	stats, err := s.Run(context.Background(), []string{testSeed})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Emitted != 1 {
		t.Errorf("Emitted = %d, want 1 despite navigator failure", stats.Emitted)
	}
}

func TestSchedulerClassifierFailureFallsBackToLinks(t *testing.T) {
	t.Parallel()

	const child = "https://news.example.com/science/story"

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page", child),
		child:    page(child, "story"),
	})
	classifier := &stubClassifier{
		fail:     map[string]bool{testSeed: true},
		relevant: map[string]bool{child: true},
	}
	sink := &stubSink{}

	s := NewScheduler(gateway, &stubNavigator{}, classifier, sink,
		WithMaxDepth(1),
		WithConcurrency(1),
	)

	stats, err := s.Run(context.Background(), []string{testSeed})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Processed != 2 {
		t.Errorf("Processed = %d, want 2 (classifier failure still follows links)", stats.Processed)
	}
	if stats.Emitted != 1 {
		t.Errorf("Emitted = %d, want 1", stats.Emitted)
	}
	// A failed classification yields no verdict, so the sink holds only the
	// child's item.
	if len(sink.items) != 1 {
		t.Errorf("sink has %d items, want 1", len(sink.items))
	}
}

func TestSchedulerDiscardsUnrenderablePages(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway(nil) // every render fails
	sink := &stubSink{}
	history := &stubHistory{}

	s := NewScheduler(gateway, &stubNavigator{}, &stubClassifier{}, sink,
		WithConcurrency(1),
		WithHistory(history),
	)

	stats, err := s.Run(context.Background(), []string{testSeed})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Discarded != 1 {
		t.Errorf("Discarded = %d, want 1", stats.Discarded)
	}
	if len(sink.items) != 0 {
		t.Errorf("sink has %d items, want 0", len(sink.items))
	}
	if len(history.records) != 1 || history.records[0].Outcome != model.OutcomeDiscarded {
		t.Errorf("history = %+v, want one discarded record", history.records)
	}
}

func TestSchedulerDedupsVisitedURLs(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page"),
	})
	sink := &stubSink{}

	s := NewScheduler(gateway, &stubNavigator{}, &stubClassifier{}, sink,
		WithConcurrency(1),
	)

	// The same URL queued twice is processed once.
	stats, err := s.Run(context.Background(), []string{testSeed, testSeed})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Processed != 1 {
		t.Errorf("Processed = %d, want 1", stats.Processed)
	}
	if stats.UniqueURLs != 1 {
		t.Errorf("UniqueURLs = %d, want 1", stats.UniqueURLs)
	}
	if gateway.callCount(testSeed) != 1 {
		t.Errorf("seed rendered %d times, want 1", gateway.callCount(testSeed))
	}
}

func TestSchedulerPageBudgetStopsScheduling(t *testing.T) {
	t.Parallel()

	const other = "https://tech.example.org/"

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page"),
		other:    page(other, "another front page"),
	})
	sink := &stubSink{}

	s := NewScheduler(gateway, &stubNavigator{}, &stubClassifier{}, sink,
		WithPagesBudget(1),
		WithConcurrency(1),
	)

	stats, err := s.Run(context.Background(), []string{testSeed, other})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Processed != 1 {
		t.Errorf("Processed = %d, want budget of 1", stats.Processed)
	}
}

func TestSchedulerDepthLimitStopsChildren(t *testing.T) {
	t.Parallel()

	const child = "https://news.example.com/science/story"

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page", child),
	})
	sink := &stubSink{}

	// maxDepth 0: seeds only, links of a not-relevant seed are dropped.
	s := NewScheduler(gateway, &stubNavigator{}, &stubClassifier{}, sink,
		WithMaxDepth(0),
		WithConcurrency(1),
	)

	stats, err := s.Run(context.Background(), []string{testSeed})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Processed != 1 {
		t.Errorf("Processed = %d, want 1", stats.Processed)
	}
	if gateway.callCount(child) != 0 {
		t.Error("a child was rendered beyond the depth limit")
	}
}

func TestSchedulerCancelledContext(t *testing.T) {
	t.Parallel()

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page"),
	})
	sink := &stubSink{}

	s := NewScheduler(gateway, &stubNavigator{}, &stubClassifier{}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := s.Run(ctx, []string{testSeed})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if stats.Processed != 0 {
		t.Errorf("Processed = %d, want 0 on a pre-cancelled context", stats.Processed)
	}
}

func TestSchedulerChildDepthAndBreadcrumbs(t *testing.T) {
	t.Parallel()

	const (
		mid  = "https://news.example.com/science"
		leaf = "https://news.example.com/science/story"
	)

	gateway := newStubGateway(map[string]*model.RenderResult{
		testSeed: page(testSeed, "front page", mid),
		mid:      page(mid, "section page", leaf),
		leaf:     page(leaf, "the story"),
	})
	sink := &stubSink{}
	history := &stubHistory{}

	s := NewScheduler(gateway, &stubNavigator{}, &stubClassifier{}, sink,
		WithMaxDepth(2),
		WithMaxFanout(1),
		WithConcurrency(1),
		WithHistory(history),
	)

	if _, err := s.Run(context.Background(), []string{testSeed}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	byURL := make(map[string]model.TaskRecord, len(history.records))
	for _, rec := range history.records {
		byURL[rec.URL] = rec
	}

	if got := byURL[testSeed].Depth; got != 0 {
		t.Errorf("seed depth = %d, want 0", got)
	}
	if got := byURL[mid].Depth; got != 1 {
		t.Errorf("section depth = %d, want 1", got)
	}
	leafRec, ok := byURL[leaf]
	if !ok {
		t.Fatal("leaf was never processed")
	}
	if leafRec.Depth != 2 {
		t.Errorf("leaf depth = %d, want 2", leafRec.Depth)
	}
	want := []string{testSeed, mid, leaf}
	if len(leafRec.Breadcrumbs) != len(want) {
		t.Fatalf("leaf breadcrumbs = %v, want %v", leafRec.Breadcrumbs, want)
	}
	for i := range want {
		if leafRec.Breadcrumbs[i] != want[i] {
			t.Errorf("leaf breadcrumbs[%d] = %q, want %q", i, leafRec.Breadcrumbs[i], want[i])
		}
	}
}
