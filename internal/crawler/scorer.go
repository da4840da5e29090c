package crawler

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/scidigest/internal/model"
	"github.com/nao1215/scidigest/internal/urlx"
)

// Disqualified is the score sentinel for links that must never be followed:
// off-site links, mailto:/javascript: schemes, and pure in-page anchors.
const Disqualified = -999

// Score computes the structural score of one link. It is a pure function:
// no I/O, no content keywords, only URL shape and anchor-text length.
//
// Policy, in order:
//  1. Disqualify off-site links, mailto:/javascript: schemes, and bare
//     fragment anchors.
//  2. +1 for each of path depth >= 1, >= 2, >= 3 (max +3).
//  3. +1 if the path is not the root.
//  4. +1 for anchor text length >= 15, >= 30, >= 60 (max +3).
//  5. +1 if the path ends in .html or .htm.
//
// Deeper, well-described, same-site article URLs win; a "home" link on the
// root path scores zero.
func Score(href, anchorText, baseURL string) int {
	base, err := url.Parse(baseURL)
	if err != nil {
		return Disqualified
	}
	if !urlx.SameSite(href, base.Host) {
		return Disqualified
	}

	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(href, "#") {
		return Disqualified
	}

	u, err := url.Parse(href)
	if err != nil {
		return Disqualified
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	score := 0

	depth := pathDepth(path)
	if depth >= 1 {
		score++
	}
	if depth >= 2 {
		score++
	}
	if depth >= 3 {
		score++
	}

	if path != "/" {
		score++
	}

	// Descriptiveness is measured in characters, not bytes, so non-ASCII
	// anchor text is not over-counted.
	tlen := utf8.RuneCountInString(anchorText)
	if tlen >= 15 {
		score++
	}
	if tlen >= 30 {
		score++
	}
	if tlen >= 60 {
		score++
	}

	if strings.HasSuffix(path, ".html") || strings.HasSuffix(path, ".htm") {
		score++
	}

	return score
}

// pathDepth counts non-empty path segments: "/a/b/" has depth 2.
func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

// FilterCandidates ranks a page's links by structural score and returns the
// best maxOut of them. Candidates are deduplicated by href before scoring,
// disqualified links are dropped, and ties keep their original encounter
// order (stable sort).
func FilterCandidates(links []model.LinkCandidate, baseURL string, maxOut int) []model.LinkCandidate {
	if maxOut <= 0 {
		return nil
	}

	scored := make([]model.ScoredLink, 0, len(links))
	seen := make(map[string]bool, len(links))
	for _, link := range links {
		href := strings.TrimSpace(link.Href)
		if href == "" || seen[href] {
			continue
		}
		seen[href] = true

		score := Score(href, strings.TrimSpace(link.Text), baseURL)
		if score <= Disqualified {
			continue
		}
		scored = append(scored, model.ScoredLink{
			LinkCandidate: model.LinkCandidate{Text: link.Text, Href: href},
			Score:         score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > maxOut {
		scored = scored[:maxOut]
	}

	out := make([]model.LinkCandidate, len(scored))
	for i, s := range scored {
		out[i] = s.LinkCandidate
	}
	return out
}
