package report

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/scidigest/internal/model"
)

// Sink accumulates classifier verdicts during a crawl run.
//
// Design decision: No mutex. The scheduler owns the sink and calls Add only
// from its single coordinating loop; adding locking here would suggest a
// concurrency contract the design deliberately avoids.
type Sink struct {
	// items holds every verdict in emission order, relevant or not.
	items []model.Item

	logger *slog.Logger
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithSinkLogger sets the sink's logger.
func WithSinkLogger(logger *slog.Logger) SinkOption {
	return func(s *Sink) {
		s.logger = logger
	}
}

// NewSink creates an empty Sink.
func NewSink(opts ...SinkOption) *Sink {
	s := &Sink{
		items: make([]model.Item, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Add appends one verdict to the debug collection.
func (s *Sink) Add(item model.Item) {
	s.items = append(s.items, item)
}

// Items returns a copy of every accumulated verdict.
func (s *Sink) Items() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Relevant returns the items with a positive verdict, in emission order.
func (s *Sink) Relevant() []model.Item {
	out := make([]model.Item, 0, len(s.items))
	for _, item := range s.items {
		if item.IsRelevant {
			out = append(out, item)
		}
	}
	return out
}

// Flush persists both collections: the full debug dump to debugPath and the
// relevant-only canonical output to outputPath. Both writes are full
// overwrites. The debug file is written first so that a failure writing the
// canonical file still leaves the raw verdicts on disk.
func (s *Sink) Flush(debugPath, outputPath string) error {
	if err := writeJSONFile(debugPath, s.Items()); err != nil {
		return fmt.Errorf("failed to write debug results: %w", err)
	}

	relevant := s.Relevant()
	if err := writeJSONFile(outputPath, relevant); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}

	s.logger.Info("wrote crawl output",
		"relevant", len(relevant),
		"total", len(s.items),
		"output", outputPath,
		"debug", debugPath,
	)
	return nil
}

// writeJSONFile writes items to path as a pretty-printed JSON array,
// replacing any previous content.
func writeJSONFile(path string, items []model.Item) error {
	f, err := os.Create(path) //nolint:gosec // output path is operator-configured
	if err != nil {
		return err
	}

	w := NewJSONWriter(f, WithPrettyPrint())
	if _, err := w.Write(items); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
