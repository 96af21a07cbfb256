// Package advisory carries non-fatal notices about accepted but unusual input.
// Advisories are never errors; they travel on a Sink separate from return values.
package advisory

import (
	"log/slog"
	"sync"
)

// Kind classifies an advisory.
type Kind string

const (
	UnknownActor         Kind = "unknown_actor"
	UnknownResourceClass Kind = "unknown_resource_class"
	NotesTruncated       Kind = "notes_truncated"
	FallbackPricing      Kind = "fallback_pricing"
)

// Advisory is a single notice.
type Advisory struct {
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Sink receives advisories. Implementations must be safe for concurrent use.
type Sink interface {
	Advise(a Advisory)
}

// Discard drops every advisory.
var Discard Sink = discard{}

type discard struct{}

func (discard) Advise(Advisory) {}

// LogSink writes advisories as slog warnings.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink backed by logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Advise(a Advisory) {
	s.logger.Warn(a.Message, "advisory", string(a.Kind), "subject", a.Subject)
}

// Recorder keeps advisories in memory.
type Recorder struct {
	mu   sync.Mutex
	list []Advisory
}

func (r *Recorder) Advise(a Advisory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, a)
}

// All returns a copy of the recorded advisories.
func (r *Recorder) All() []Advisory {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Advisory, len(r.list))
	copy(out, r.list)
	return out
}

// Kinds returns the kinds of recorded advisories in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, 0, len(r.list))
	for _, a := range r.list {
		kinds = append(kinds, a.Kind)
	}
	return kinds
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = nil
}

// Multi fans an advisory out to several sinks.
type Multi []Sink

func (m Multi) Advise(a Advisory) {
	for _, s := range m {
		s.Advise(a)
	}
}
