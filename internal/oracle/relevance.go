package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/scidigest/internal/model"
)

// relevanceBodyLimit caps the page content sent to the classifier.
const relevanceBodyLimit = 9000

// relevanceMaxTokens caps the classifier's reply, which includes a short
// summary on top of the verdict.
const relevanceMaxTokens = 500

// relevanceSystemPrompt instructs the classifier to be maximally inclusive:
// false negatives lose real articles, false positives only pad the digest.
const relevanceSystemPrompt = `You are an inclusive curator of science & technology content.
Keep anything that is about science or technology—broadly defined. When unsure, mark it as relevant.

Return ONLY JSON with:
  "is_relevant": bool,
  "summary": 3-4 clear sentences,
  "url": string

Reject only obvious non-content pages (admin/login/privacy/terms), empty stubs, or pure navigation pages with no article.`

// scaffoldingPhrases marks boilerplate site pages that are never content
// items. Matching is a cheap lowercase substring test and short-circuits
// the classifier entirely: no oracle call is spent on a privacy policy.
var scaffoldingPhrases = []string{
	"privacy policy",
	"terms of use",
	"about us",
	"contact",
	"advertise with us",
	"copyright",
	"login",
	"sign up",
	"cookie policy",
	"accessibility statement",
}

// Classifier asks the relevance backend whether a page is an on-topic
// content item.
type Classifier struct {
	completer Completer
	logger    *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithClassifierLogger sets the classifier's logger.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// NewClassifier creates a Classifier over the given completion backend.
func NewClassifier(completer Completer, opts ...ClassifierOption) *Classifier {
	c := &Classifier{completer: completer}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Classify returns the relevance verdict for one page. A (nil, nil) return
// means "no verdict": the scaffolding pre-filter matched and no oracle call
// was made. The item's URL is always the given pageURL, regardless of what
// the model returned.
func (c *Classifier) Classify(ctx context.Context, body, pageURL string) (*model.Item, error) {
	if phrase := matchScaffolding(body); phrase != "" {
		c.logger.Debug("skipping scaffolding page", "url", pageURL, "phrase", phrase)
		return nil, nil
	}

	raw, err := c.completer.Complete(ctx, relevanceSystemPrompt, clipRunes(body, relevanceBodyLimit), relevanceMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("relevance check for %s: %w", pageURL, err)
	}

	obj, err := ExtractObject(raw)
	if err != nil {
		return nil, fmt.Errorf("relevance response for %s: %w (raw: %s)", pageURL, err, clipRunes(raw, 500))
	}

	// is_relevant is required; a response without it is no verdict at all.
	var verdict struct {
		IsRelevant *bool  `json:"is_relevant"`
		Summary    string `json:"summary"`
		URL        string `json:"url"`
	}
	if err := json.Unmarshal(obj, &verdict); err != nil {
		return nil, fmt.Errorf("relevance response for %s: %w", pageURL, err)
	}
	if verdict.IsRelevant == nil {
		return nil, fmt.Errorf("relevance response for %s: missing is_relevant", pageURL)
	}

	item := &model.Item{
		IsRelevant: *verdict.IsRelevant,
		Summary:    verdict.Summary,
		URL:        pageURL,
	}

	if item.IsRelevant {
		c.logger.Info("relevant", "url", pageURL)
	} else {
		c.logger.Info("not relevant", "url", pageURL, "summary", clipRunes(item.Summary, 120))
	}
	return item, nil
}

// matchScaffolding returns the first scaffolding phrase found in the
// content, or empty string when none matches.
func matchScaffolding(content string) string {
	lower := strings.ToLower(content)
	for _, phrase := range scaffoldingPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}
