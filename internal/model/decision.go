package model

// NavigationAction is the action the navigation oracle chose for a page.
type NavigationAction string

// Navigation actions. These are the only two values the oracle is allowed
// to emit; anything else is treated as no decision.
const (
	// ActionDecide means the current page looks like a content page and
	// should be classified for relevance.
	ActionDecide NavigationAction = "decide"

	// ActionFollowLink means the current page looks like an index and one
	// of its links should be followed instead.
	ActionFollowLink NavigationAction = "follow_link"
)

// NavigationDecision is the oracle's verdict for one page.
//
// For ActionFollowLink, URL is the absolute link to follow; the oracle is
// instructed to pick it from the offered links, but that contract is
// prompt-level and not mechanically enforced.
type NavigationDecision struct {
	// Action is "decide" or "follow_link".
	Action NavigationAction `json:"action"`

	// URL is the link to follow when Action is ActionFollowLink. For
	// ActionDecide it is the current page URL.
	URL string `json:"url,omitempty"`

	// Reason is the oracle's brief note, kept for diagnostics only.
	Reason string `json:"reason,omitempty"`

	// Breadcrumbs is the lineage echoed by the oracle. Logged for
	// diagnostics; never used to derive depth.
	Breadcrumbs []string `json:"breadcrumbs,omitempty"`
}

// Item is a classified content item: the relevance verdict for one page that
// reached the decide branch. Items with IsRelevant true form the canonical
// crawl output.
type Item struct {
	// IsRelevant reports whether the classifier judged the page on-topic.
	IsRelevant bool `json:"is_relevant"`

	// Summary is the classifier's short description of the page.
	Summary string `json:"summary"`

	// URL is the page URL. Always set by the caller from the actual crawl
	// URL, regardless of what the classifier returned.
	URL string `json:"url"`
}
