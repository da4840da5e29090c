package model

// MaxAnchorTextLength is the maximum length of anchor text kept per link.
// Longer anchor text is truncated; 200 characters is plenty for the
// descriptiveness signal and keeps oracle payloads bounded.
const MaxAnchorTextLength = 200

// LinkCandidate is an anchor extracted from a page: its visible text and the
// absolute URL it points to.
type LinkCandidate struct {
	// Text is the anchor text, truncated to MaxAnchorTextLength.
	Text string `json:"text"`

	// Href is the absolute URL the anchor points to.
	Href string `json:"href"`
}

// ScoredLink pairs a LinkCandidate with its structural score. It exists only
// transiently while ranking candidates and is never persisted.
type ScoredLink struct {
	LinkCandidate

	// Score is the structural score; crawler.Disqualified marks links that
	// must never be followed.
	Score int
}

// RenderSource identifies which path produced a page's content.
type RenderSource string

// Render sources.
//
// Design decision: We tag the result with its source rather than modeling
// dynamic and static pages as separate types because downstream consumers
// treat both identically; only logging and diagnostics care where the
// content came from.
const (
	// RenderSourceDynamic means the headless renderer produced the content.
	RenderSourceDynamic RenderSource = "dynamic"

	// RenderSourceStatic means the raw HTTP fetch produced the content.
	RenderSourceStatic RenderSource = "static"
)

// RenderResult holds the content of one page for the duration of processing
// a single CrawlTask. It is ephemeral and never persisted.
type RenderResult struct {
	// URL is the page the content belongs to.
	URL string

	// Source records whether the dynamic renderer or the static fetch
	// produced this result.
	Source RenderSource

	// Body is the extracted text content of the page.
	Body string

	// Links are the anchors found on the page, in document order.
	Links []LinkCandidate
}
