package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/scidigest/internal/model"
)

// ExtractPage parses HTML from r and returns the page's visible text plus up
// to limit anchor candidates, in document order with duplicate hrefs dropped.
// Relative hrefs are resolved against baseURL; anchor text is truncated to
// model.MaxAnchorTextLength.
//
// Design decision: We use goquery rather than walking x/net/html nodes by
// hand because:
//  1. It correctly handles malformed HTML common on the web
//  2. Selector-based extraction stays readable as the extraction grows
//  3. It is built on x/net/html, so parsing behavior is identical
func ExtractPage(baseURL string, r io.Reader, limit int) (string, []model.LinkCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", nil, err
	}

	links := make([]model.LinkCandidate, 0, limit)
	seen := make(map[string]bool, limit)
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return true
		}

		abs := resolveHref(base, href)
		// The HTML parser's error recovery can clone an anchor node when it
		// repairs misnested markup, so the first occurrence wins.
		if abs == "" || seen[abs] {
			return true
		}
		seen[abs] = true

		text := truncateRunes(strings.TrimSpace(sel.Text()), model.MaxAnchorTextLength)
		links = append(links, model.LinkCandidate{Text: text, Href: abs})
		return len(links) < limit
	})

	// Script and style text is markup plumbing, not page content; removing
	// it keeps the oracle payload and the content-sufficiency gate honest.
	doc.Find("script, style, noscript").Remove()
	body := strings.Join(strings.Fields(doc.Text()), " ")

	return body, links, nil
}

// resolveHref resolves an href against the page URL. Non-navigational
// schemes and in-page fragments resolve to the empty string; the scorer would
// disqualify them anyway, but dropping them here keeps them out of oracle
// payloads too.
func resolveHref(base *url.URL, href string) string {
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// truncateRunes shortens s to at most n runes without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
