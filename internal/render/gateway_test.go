package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/scidigest/internal/model"
)

type stubRenderer struct {
	page  *model.RenderResult
	err   error
	calls int
}

func (r *stubRenderer) Render(_ context.Context, _ string) (*model.RenderResult, error) {
	r.calls++
	return r.page, r.err
}

type stubFetcher struct {
	page  *model.RenderResult
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (*model.RenderResult, error) {
	f.calls++
	return f.page, f.err
}

func longBody() string {
	return strings.Repeat("science content ", 20)
}

func TestGatewayObtain(t *testing.T) {
	t.Parallel()

	const pageURL = "https://news.example.com/story"

	t.Run("prefers the dynamic path", func(t *testing.T) {
		t.Parallel()

		renderer := &stubRenderer{page: &model.RenderResult{
			URL: pageURL, Source: model.RenderSourceDynamic, Body: longBody(),
		}}
		fetcher := &stubFetcher{}

		g := NewGateway(renderer, fetcher)
		got, err := g.Obtain(context.Background(), pageURL)
		if err != nil {
			t.Fatalf("Obtain() error = %v", err)
		}
		if got.Source != model.RenderSourceDynamic {
			t.Errorf("Source = %q, want dynamic", got.Source)
		}
		if fetcher.calls != 0 {
			t.Errorf("fetcher called %d times, want 0", fetcher.calls)
		}
	})

	t.Run("falls back to static on render failure", func(t *testing.T) {
		t.Parallel()

		renderer := &stubRenderer{err: errors.New("browser crashed")}
		fetcher := &stubFetcher{page: &model.RenderResult{
			URL: pageURL, Source: model.RenderSourceStatic, Body: longBody(),
		}}

		g := NewGateway(renderer, fetcher)
		got, err := g.Obtain(context.Background(), pageURL)
		if err != nil {
			t.Fatalf("Obtain() error = %v", err)
		}
		if got.Source != model.RenderSourceStatic {
			t.Errorf("Source = %q, want static", got.Source)
		}
	})

	t.Run("falls back to static on short dynamic content", func(t *testing.T) {
		t.Parallel()

		renderer := &stubRenderer{page: &model.RenderResult{
			URL: pageURL, Source: model.RenderSourceDynamic, Body: "thin page",
		}}
		fetcher := &stubFetcher{page: &model.RenderResult{
			URL: pageURL, Source: model.RenderSourceStatic, Body: longBody(),
		}}

		g := NewGateway(renderer, fetcher)
		got, err := g.Obtain(context.Background(), pageURL)
		if err != nil {
			t.Fatalf("Obtain() error = %v", err)
		}
		if got.Source != model.RenderSourceStatic {
			t.Errorf("Source = %q, want static fallback for short dynamic body", got.Source)
		}
	})

	t.Run("fails when both paths fail", func(t *testing.T) {
		t.Parallel()

		renderer := &stubRenderer{err: errors.New("browser crashed")}
		fetcher := &stubFetcher{err: errors.New("connection refused")}

		g := NewGateway(renderer, fetcher)
		if _, err := g.Obtain(context.Background(), pageURL); err == nil {
			t.Error("Obtain() error = nil, want failure when both paths fail")
		}
	})

	t.Run("fails when static content is too short", func(t *testing.T) {
		t.Parallel()

		renderer := &stubRenderer{err: errors.New("browser crashed")}
		fetcher := &stubFetcher{page: &model.RenderResult{
			URL: pageURL, Source: model.RenderSourceStatic, Body: "thin",
		}}

		g := NewGateway(renderer, fetcher)
		if _, err := g.Obtain(context.Background(), pageURL); !errors.Is(err, ErrInsufficientContent) {
			t.Errorf("Obtain() error = %v, want ErrInsufficientContent", err)
		}
	})

	t.Run("minimum length counts runes", func(t *testing.T) {
		t.Parallel()

		// 99 multibyte runes: under a gate of 100 despite being 297 bytes.
		renderer := &stubRenderer{page: &model.RenderResult{
			URL: pageURL, Source: model.RenderSourceDynamic, Body: strings.Repeat("科", 99),
		}}
		fetcher := &stubFetcher{page: &model.RenderResult{
			URL: pageURL, Source: model.RenderSourceStatic, Body: strings.Repeat("科", 100),
		}}

		g := NewGateway(renderer, fetcher, WithMinContentLength(100))
		got, err := g.Obtain(context.Background(), pageURL)
		if err != nil {
			t.Fatalf("Obtain() error = %v", err)
		}
		if got.Source != model.RenderSourceStatic {
			t.Errorf("Source = %q, want static (dynamic body one rune short)", got.Source)
		}
	})

	t.Run("custom minimum length", func(t *testing.T) {
		t.Parallel()

		renderer := &stubRenderer{page: &model.RenderResult{
			URL: pageURL, Source: model.RenderSourceDynamic, Body: "ok",
		}}
		fetcher := &stubFetcher{}

		g := NewGateway(renderer, fetcher, WithMinContentLength(1))
		got, err := g.Obtain(context.Background(), pageURL)
		if err != nil {
			t.Fatalf("Obtain() error = %v", err)
		}
		if got.Source != model.RenderSourceDynamic {
			t.Errorf("Source = %q, want dynamic with a relaxed gate", got.Source)
		}
	})
}
