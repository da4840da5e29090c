package model

// CrawlTask is one unit of work in the crawl frontier. A task is created when
// a seed is loaded or when the scheduler decides to follow a link, consumed
// exactly once by the render step, and never mutated afterwards: each hop
// produces a fresh task via Child.
type CrawlTask struct {
	// URL is the absolute URL to process.
	URL string

	// Breadcrumbs is the ordered URL lineage from the seed to this task,
	// inclusive. Used for diagnostics; depth is tracked separately because
	// the scheduler's own counter is the single depth authority.
	Breadcrumbs []string

	// Depth is the number of hops from the seed. Seeds start at 0.
	Depth int
}

// NewSeedTask creates a depth-0 task for a seed URL.
func NewSeedTask(url string) CrawlTask {
	return CrawlTask{
		URL:         url,
		Breadcrumbs: []string{url},
		Depth:       0,
	}
}

// Child creates the task for following a link from this task's page.
// The breadcrumb slice is copied so that sibling tasks never share
// backing arrays.
func (t CrawlTask) Child(url string) CrawlTask {
	crumbs := make([]string, 0, len(t.Breadcrumbs)+1)
	crumbs = append(crumbs, t.Breadcrumbs...)
	crumbs = append(crumbs, url)
	return CrawlTask{
		URL:         url,
		Breadcrumbs: crumbs,
		Depth:       t.Depth + 1,
	}
}
