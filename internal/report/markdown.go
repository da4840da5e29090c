package report

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/scidigest/internal/model"
	"github.com/nao1215/scidigest/internal/urlx"
)

// MarkdownWriter renders relevant items as a human-readable digest, grouped
// by site. This is a local report for whoever runs the crawl; downstream
// batch jobs consume the JSON artifacts instead.
type MarkdownWriter struct {
	output io.Writer

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		output: output,
		now:    time.Now,
	}
}

// Write renders the digest and returns the number of bytes produced.
func (w *MarkdownWriter) Write(items []model.Item) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Science & Technology Digest")
	md.PlainText("")
	md.PlainTextf("Generated on %s — %d items.", w.now().Format("2006-01-02"), len(items))
	md.PlainText("")

	titler := cases.Title(language.English)
	for _, site := range groupSites(items) {
		md.H2(fmt.Sprintf("%s (%s)", titler.String(siteLabel(site.name)), site.name))
		for _, item := range site.items {
			md.PlainTextf("- <%s>", item.URL)
			if summary := strings.TrimSpace(item.Summary); summary != "" {
				md.PlainTextf("  %s", summary)
			}
		}
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// siteGroup is the digest items of one site, keyed by normalized host.
type siteGroup struct {
	name  string
	items []model.Item
}

// groupSites buckets items by normalized host, sites in alphabetical order,
// items in emission order within each site.
func groupSites(items []model.Item) []siteGroup {
	buckets := make(map[string][]model.Item)
	for _, item := range items {
		buckets[siteName(item.URL)] = append(buckets[siteName(item.URL)], item)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]siteGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, siteGroup{name: name, items: buckets[name]})
	}
	return groups
}

// siteLabel is the leading host label, the part worth title-casing: the
// "nature" in "nature.example.com".
func siteLabel(host string) string {
	label, _, found := strings.Cut(host, ".")
	if !found || label == "" {
		return host
	}
	return label
}

// siteName derives a display name for an item's site.
func siteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return urlx.NormalizeHost(u.Host)
}

// WriteMarkdownFile renders the digest to a file, replacing any previous
// content.
func WriteMarkdownFile(path string, items []model.Item) error {
	f, err := os.Create(path) //nolint:gosec // output path is operator-configured
	if err != nil {
		return fmt.Errorf("failed to create markdown digest: %w", err)
	}
	if _, err := NewMarkdownWriter(f).Write(items); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write markdown digest: %w", err)
	}
	return f.Close()
}
