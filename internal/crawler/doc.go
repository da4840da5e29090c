// Package crawler implements the crawl frontier and its supporting pieces:
// the static page fetcher, the link extractor, the structural link scorer,
// and the scheduler that ties rendering, navigation, and classification
// together.
//
// # Architecture
//
// The Scheduler owns all mutable crawl state: the task queue, the visited
// set, and the page counter. Tasks are processed by a bounded pool of
// workers, but workers only perform network work (render, decide, classify)
// and report an outcome back to the scheduler loop; every mutation of shared
// state happens on that single loop. This gives concurrent fetches without
// locks around the visited set or the result sink.
//
// # Components
//
//   - Fetcher: the static HTTP path with a robots.txt gate
//   - ExtractPage: anchor and text extraction from raw HTML
//   - Score / FilterCandidates: the pure structural link scorer
//   - Scheduler: the frontier state machine
//
// # Failure policy
//
// No failure in a single page's pipeline halts the crawl. Render and fetch
// failures discard the page; oracle failures degrade to classification;
// classifier failures degrade to structural link-following. Every recovered
// failure is logged with the offending URL.
package crawler
