package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/scidigest/internal/model"
)

// Payload limits. Body and prompt budgets keep one navigation request well
// inside model context limits even on text-heavy pages.
const (
	// navBodyLimit caps the page body included in the payload.
	navBodyLimit = 8000

	// navPromptLimit caps the whole user message.
	navPromptLimit = 9000

	// navLinkTextLimit caps anchor text per offered link.
	navLinkTextLimit = 80

	// navMaxTokens caps the oracle's reply; a decision object is tiny.
	navMaxTokens = 350
)

// navigationSystemPrompt fixes the oracle's contract: exactly two actions,
// and follow_link only for an offered URL.
const navigationSystemPrompt = `You help a crawler move from index pages to story pages about science and technology.
Return ONLY JSON with keys:
  action: "decide" | "follow_link"
  url: absolute URL if action == "follow_link" (must be one of the provided links)
  reason: brief note
  breadcrumbs: echo the breadcrumbs you were given

Pick 'decide' if the CURRENT page looks like a specific article/story (not a generic landing page).
Pick 'follow_link' if the page looks like an index and any link appears to lead to a specific article/story.
Be permissive and pragmatic. Do not invent links.`

// Navigator asks the decision oracle whether to classify the current page
// or follow one of its links.
//
// Two deterministic shortcuts bypass the oracle entirely:
//   - at the configured maximum depth the decision is forced to decide on
//     the current page, with no network call
//   - any call or parse failure surfaces as an error; the scheduler treats
//     it as "no decision" and classifies the current page
type Navigator struct {
	completer Completer

	// maxDepth is the depth at which decisions are forced to decide.
	maxDepth int

	// maxLinks caps the links offered to the oracle.
	maxLinks int

	logger *slog.Logger
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithNavigatorMaxLinks caps the links offered to the oracle.
func WithNavigatorMaxLinks(n int) NavigatorOption {
	return func(nav *Navigator) {
		if n > 0 {
			nav.maxLinks = n
		}
	}
}

// WithNavigatorLogger sets the navigator's logger.
func WithNavigatorLogger(logger *slog.Logger) NavigatorOption {
	return func(nav *Navigator) {
		nav.logger = logger
	}
}

// NewNavigator creates a Navigator over the given completion backend.
func NewNavigator(completer Completer, maxDepth int, opts ...NavigatorOption) *Navigator {
	nav := &Navigator{
		completer: completer,
		maxDepth:  maxDepth,
		maxLinks:  30,
	}
	for _, opt := range opts {
		opt(nav)
	}
	if nav.logger == nil {
		nav.logger = slog.Default()
	}
	return nav
}

// Decide returns the oracle's navigation decision for one page.
func (n *Navigator) Decide(ctx context.Context, page *model.RenderResult, task model.CrawlTask) (*model.NavigationDecision, error) {
	// Depth budget exhausted: decide here, no oracle call.
	if task.Depth >= n.maxDepth {
		return &model.NavigationDecision{
			Action:      model.ActionDecide,
			URL:         task.URL,
			Reason:      "max depth reached",
			Breadcrumbs: task.Breadcrumbs,
		}, nil
	}

	user := n.buildPrompt(page, task)
	n.logger.Debug("navigation prompt", "url", task.URL, "prompt_chars", len(user))

	raw, err := n.completer.Complete(ctx, navigationSystemPrompt, user, navMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("navigation oracle call for %s: %w", task.URL, err)
	}

	obj, err := ExtractObject(raw)
	if err != nil {
		return nil, fmt.Errorf("navigation response for %s: %w (raw: %s)", task.URL, err, clipRunes(raw, 500))
	}

	var decision model.NavigationDecision
	if err := json.Unmarshal(obj, &decision); err != nil {
		return nil, fmt.Errorf("navigation response for %s: %w", task.URL, err)
	}

	switch decision.Action {
	case model.ActionDecide:
		decision.URL = task.URL
		decision.Breadcrumbs = task.Breadcrumbs
	case model.ActionFollowLink:
		if decision.URL == "" {
			return nil, fmt.Errorf("navigation response for %s: follow_link without url", task.URL)
		}
		resolved, err := resolveAgainst(task.URL, decision.URL)
		if err != nil {
			return nil, fmt.Errorf("navigation response for %s: bad link %q: %w", task.URL, decision.URL, err)
		}
		decision.URL = resolved
		// The echoed breadcrumbs are diagnostics only; depth always comes
		// from the scheduler's own counter.
		if len(decision.Breadcrumbs) == 0 {
			decision.Breadcrumbs = task.Breadcrumbs
		}
		decision.Breadcrumbs = append(decision.Breadcrumbs, resolved)
	default:
		return nil, fmt.Errorf("navigation response for %s: unknown action %q", task.URL, decision.Action)
	}

	n.logger.Debug("navigation decision",
		"url", task.URL,
		"action", decision.Action,
		"picked", decision.URL,
		"reason", decision.Reason,
	)
	return &decision, nil
}

// buildPrompt serializes a compact content+links payload: the body snippet
// followed by a markdown-style link list the oracle can quote URLs from.
func (n *Navigator) buildPrompt(page *model.RenderResult, task model.CrawlTask) string {
	var sb strings.Builder
	sb.WriteString(clipRunes(page.Body, navBodyLimit))
	sb.WriteString("\nLinks:\n")
	for i, link := range page.Links {
		if i >= n.maxLinks {
			break
		}
		fmt.Fprintf(&sb, "- [%s](%s)\n", clipRunes(link.Text, navLinkTextLimit), link.Href)
	}

	prompt := fmt.Sprintf("Current URL: %s\n\nPage Content & Links:\n%s", task.URL, sb.String())
	return clipRunes(prompt, navPromptLimit)
}

// resolveAgainst resolves a possibly-relative link against the current page.
func resolveAgainst(pageURL, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	if u.Scheme != "" {
		return link, nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}

// clipRunes truncates s to at most n runes.
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
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
