package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/scidigest/internal/model"
)

// Gateway obtains page content for a URL, preferring the dynamic renderer
// and falling back to the static fetch. It fails when neither path yields
// sufficient content.
type Gateway interface {
	Obtain(ctx context.Context, pageURL string) (*model.RenderResult, error)
}

// Navigator decides whether to classify the current page or follow one of
// its links. A nil decision with a nil error means "no decision"; the
// scheduler treats it like a decide.
type Navigator interface {
	Decide(ctx context.Context, page *model.RenderResult, task model.CrawlTask) (*model.NavigationDecision, error)
}

// Classifier judges whether a page's content is an on-topic item. A nil
// item with a nil error means "no verdict" (e.g., the scaffolding
// pre-filter matched); the scheduler treats it as not relevant.
type Classifier interface {
	Classify(ctx context.Context, body, pageURL string) (*model.Item, error)
}

// Sink receives classified items. Implementations need no locking: the
// scheduler calls Add from its single coordinating loop only.
type Sink interface {
	Add(item model.Item)
}

// History receives one record per processed task. Optional; may be nil.
type History interface {
	RecordTask(ctx context.Context, rec model.TaskRecord) error
}

// Stats summarizes one crawl run.
type Stats struct {
	// Processed is the number of tasks that entered rendering.
	Processed int

	// Emitted is the number of relevant items sent to the sink.
	Emitted int

	// Discarded is the number of tasks dropped for render failure or
	// insufficient content.
	Discarded int

	// UniqueURLs is the number of distinct URLs marked visited.
	UniqueURLs int
}

// Scheduler is the crawl frontier state machine. It enforces the depth
// limit, the global page budget, and visited-URL dedup, and routes every
// page through render -> decide -> classify-or-follow.
//
// Design decision: Workers perform only network work and report an outcome
// struct back to the scheduler loop. The visited set, the queue, the page
// counter, and the sink are mutated exclusively on that loop, so sibling
// tasks may complete in any order without races or duplicate visits.
type Scheduler struct {
	gateway    Gateway
	navigator  Navigator
	classifier Classifier
	sink       Sink
	history    History

	// maxDepth is the deepest hop count ever scheduled.
	maxDepth int

	// maxFanout caps children spawned from an index-like page.
	maxFanout int

	// extraLinks is how many scorer extras accompany an oracle pick.
	extraLinks int

	// pagesBudget is the emergency stop: once this many tasks have started
	// processing, no further tasks are scheduled.
	pagesBudget int

	// concurrency bounds tasks in flight at once.
	concurrency int

	logger *slog.Logger

	// visited holds exact URL strings (not normalized), append-only for
	// the lifetime of one run. Owned by the scheduler loop.
	visited map[string]bool

	// processed counts tasks that entered rendering.
	processed int

	stats Stats
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithMaxDepth sets the maximum hop count from a seed. 0 = seeds only.
func WithMaxDepth(depth int) SchedulerOption {
	return func(s *Scheduler) {
		s.maxDepth = depth
	}
}

// WithMaxFanout sets the maximum children spawned from an index-like page.
func WithMaxFanout(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.maxFanout = n
	}
}

// WithExtraLinksOnFollow sets how many structural-scorer extras are
// scheduled alongside an oracle-picked link.
func WithExtraLinksOnFollow(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.extraLinks = n
	}
}

// WithPagesBudget sets the emergency page-count budget for the whole run.
func WithPagesBudget(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.pagesBudget = n
	}
}

// WithConcurrency sets the maximum number of tasks in flight at once.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithHistory sets an optional crawl-history recorder.
func WithHistory(h History) SchedulerOption {
	return func(s *Scheduler) {
		s.history = h
	}
}

// WithLogger sets the scheduler's logger.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler wired to the given collaborators.
func NewScheduler(gateway Gateway, navigator Navigator, classifier Classifier, sink Sink, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		gateway:     gateway,
		navigator:   navigator,
		classifier:  classifier,
		sink:        sink,
		maxDepth:    2,
		maxFanout:   2,
		extraLinks:  1,
		pagesBudget: 350,
		concurrency: 10,
		visited:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// outcome is what a worker reports back to the scheduler loop for one task.
type outcome struct {
	task model.CrawlTask

	// source is the render path that produced content, empty on discard.
	source model.RenderSource

	// item is the classifier verdict, nil when none was produced.
	item *model.Item

	// children are link URLs to enqueue at task.Depth+1. The loop
	// re-checks visited state and budget before scheduling them.
	children []string

	// result is the task's terminal state.
	result model.TaskOutcome
}

// Run crawls from the given seeds until the frontier drains, the page
// budget trips, or the context is cancelled. It returns run statistics; a
// cancelled context is reported via ctx.Err() after in-flight tasks finish.
func (s *Scheduler) Run(ctx context.Context, seeds []string) (Stats, error) {
	queue := make([]model.CrawlTask, 0, len(seeds))
	for _, seed := range seeds {
		queue = append(queue, model.NewSeedTask(seed))
	}

	// Workers run detached network pipelines; the loop below is the sole
	// owner of queue, visited, processed, and the sink.
	outcomes := make(chan outcome)
	var g errgroup.Group

	inflight := 0
	budgetHit := false
	for {
		for inflight < s.concurrency && len(queue) > 0 && ctx.Err() == nil {
			if s.processed >= s.pagesBudget {
				if !budgetHit {
					budgetHit = true
					s.logger.Warn("page budget exhausted, no further tasks scheduled",
						"budget", s.pagesBudget)
				}
				queue = queue[:0]
				break
			}

			task := queue[0]
			queue = queue[1:]

			// Dedup happens here, at the point processing starts, not at
			// enqueue time: the same URL may sit in the queue twice but is
			// processed once.
			if s.visited[task.URL] {
				continue
			}

			// Entering Rendering: mark visited and charge the budget.
			s.visited[task.URL] = true
			s.processed++

			s.logger.Debug("navigating", "url", task.URL, "depth", task.Depth)

			t := task
			inflight++
			g.Go(func() error {
				outcomes <- s.process(ctx, t)
				return nil
			})
		}

		if inflight == 0 {
			break
		}

		out := <-outcomes
		inflight--
		s.apply(ctx, out, &queue)
	}

	_ = g.Wait() // workers never return errors; failures degrade per task

	s.stats.Processed = s.processed
	s.stats.UniqueURLs = len(s.visited)
	return s.stats, ctx.Err()
}

// process runs one task's pipeline: render, decide, classify-or-follow.
// It never mutates scheduler state and never fails the run; every error
// degrades to a safe outcome.
func (s *Scheduler) process(ctx context.Context, task model.CrawlTask) outcome {
	page, err := s.gateway.Obtain(ctx, task.URL)
	if err != nil {
		s.logger.Warn("abandoning page", "url", task.URL, "depth", task.Depth, "error", err)
		return outcome{task: task, result: model.OutcomeDiscarded}
	}

	decision, err := s.navigator.Decide(ctx, page, task)
	if err != nil {
		// No decision. The page still rendered, so classify it rather
		// than lose it.
		s.logger.Warn("navigation oracle failed, classifying current page",
			"url", task.URL, "error", err)
		decision = nil
	}

	if decision != nil && decision.Action == model.ActionFollowLink {
		return s.follow(task, page, decision)
	}
	return s.classify(ctx, task, page)
}

// classify runs the decide branch: relevance-check the page, and fall back
// to structural link-following when it is not an on-topic item.
func (s *Scheduler) classify(ctx context.Context, task model.CrawlTask, page *model.RenderResult) outcome {
	item, err := s.classifier.Classify(ctx, page.Body, task.URL)
	if err != nil {
		s.logger.Warn("relevance check failed, falling back to link-following",
			"url", task.URL, "error", err)
		item = nil
	}

	if item != nil && item.IsRelevant {
		s.logger.Info("yielding relevant item", "url", task.URL, "depth", task.Depth)
		return outcome{task: task, source: page.Source, item: item, result: model.OutcomeEmitted}
	}

	// Not relevant (or no verdict): hand the page's links to the
	// structural scorer and branch.
	out := outcome{task: task, source: page.Source, item: item, result: model.OutcomeNotRelevant}
	if task.Depth < s.maxDepth {
		for _, cand := range FilterCandidates(page.Links, task.URL, s.maxFanout) {
			out.children = append(out.children, cand.Href)
		}
	}
	return out
}

// follow runs the follow_link branch: schedule the oracle's pick plus up to
// extraLinks scorer candidates as a hedge against a wrong pick.
func (s *Scheduler) follow(task model.CrawlTask, page *model.RenderResult, decision *model.NavigationDecision) outcome {
	out := outcome{task: task, source: page.Source, result: model.OutcomeFollowed}
	if task.Depth >= s.maxDepth {
		// The navigator should have forced a decide at max depth; this
		// guards against an oracle pick arriving with no depth budget.
		return out
	}

	picked := decision.URL
	if picked != "" {
		out.children = append(out.children, picked)
	}

	if s.extraLinks > 0 {
		for _, cand := range FilterCandidates(page.Links, task.URL, s.extraLinks+1) {
			if cand.Href == picked {
				continue
			}
			if len(out.children) >= 1+s.extraLinks {
				break
			}
			out.children = append(out.children, cand.Href)
		}
	}
	return out
}

// apply folds one worker outcome into scheduler state. It runs on the
// scheduler loop only.
func (s *Scheduler) apply(ctx context.Context, out outcome, queue *[]model.CrawlTask) {
	switch out.result {
	case model.OutcomeDiscarded:
		s.stats.Discarded++
	case model.OutcomeEmitted:
		s.stats.Emitted++
		s.sink.Add(*out.item)
	case model.OutcomeNotRelevant:
		if out.item != nil {
			// Keep negative verdicts in the debug collection so the
			// classifier can be audited offline.
			s.sink.Add(*out.item)
		}
	case model.OutcomeFollowed:
		// children carry the navigation; nothing else to record here.
	}

	for _, href := range out.children {
		if s.visited[href] {
			continue
		}
		if out.task.Depth >= s.maxDepth {
			continue
		}
		*queue = append(*queue, out.task.Child(href))
	}

	s.record(ctx, out)
}

// record persists the task's terminal state to crawl history, if enabled.
func (s *Scheduler) record(ctx context.Context, out outcome) {
	if s.history == nil {
		return
	}
	rec := model.TaskRecord{
		URL:         out.task.URL,
		Depth:       out.task.Depth,
		Source:      out.source,
		Outcome:     out.result,
		Breadcrumbs: out.task.Breadcrumbs,
		CrawledAt:   time.Now(),
	}
	if out.item != nil {
		rec.Relevant = out.item.IsRelevant
		rec.Summary = out.item.Summary
	}
	if err := s.history.RecordTask(ctx, rec); err != nil {
		s.logger.Warn("failed to record crawl history", "url", out.task.URL, "error", err)
	}
}
