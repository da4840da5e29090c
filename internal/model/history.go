package model

import "time"

// TaskOutcome is the terminal state of one processed crawl task.
type TaskOutcome string

// Task outcomes, mirroring the frontier state machine's terminal states.
const (
	// OutcomeEmitted means the page was classified relevant and its item
	// went to the result sink.
	OutcomeEmitted TaskOutcome = "emitted"

	// OutcomeNotRelevant means the classifier produced a negative verdict;
	// the scheduler branched to structural link-following.
	OutcomeNotRelevant TaskOutcome = "not_relevant"

	// OutcomeFollowed means the navigation oracle picked a link to follow.
	OutcomeFollowed TaskOutcome = "followed"

	// OutcomeDiscarded means the page failed to render or had insufficient
	// content; no item, no children.
	OutcomeDiscarded TaskOutcome = "discarded"
)

// TaskRecord is one row of crawl history: the terminal state of a processed
// task, persisted for post-run diagnostics. It plays no role in dedup or
// scheduling; the in-memory visited set is reset every run.
type TaskRecord struct {
	// URL is the processed page.
	URL string

	// Depth is the task's hop count from its seed.
	Depth int

	// Source is which render path produced the content, empty when the
	// page never rendered.
	Source RenderSource

	// Outcome is the task's terminal state.
	Outcome TaskOutcome

	// Relevant reports the classifier verdict, false when none was made.
	Relevant bool

	// Summary is the classifier's summary, empty when none was made.
	Summary string

	// Breadcrumbs is the task's URL lineage.
	Breadcrumbs []string

	// CrawledAt is when the task finished processing.
	CrawledAt time.Time
}
