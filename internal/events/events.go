package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stagehand/internal/logging"
)

// Kind classifies an event.
type Kind string

const (
	Moved           Kind = "moved"
	Deleted         Kind = "deleted"
	Renamed         Kind = "renamed"
	MatchNotFound   Kind = "match_not_found"
	MergeIncomplete Kind = "merge_incomplete"
	// Failed records a per-file I/O error that was skipped.
	Failed Kind = "failed"
)

// Kinds lists every event kind in display order.
var Kinds = []Kind{Moved, Deleted, Renamed, MatchNotFound, MergeIncomplete, Failed}

// Mutating reports whether the event changed the tree.
func (k Kind) Mutating() bool {
	switch k {
	case Moved, Deleted, Renamed:
		return true
	default:
		return false
	}
}

// Phases of a pass, in execution order.
const (
	PhaseNormalize = "normalize"
	PhaseReconcile = "reconcile"
	PhaseGC        = "gc"
)

// Event is one observation from a pass.
type Event struct {
	Kind        Kind      `json:"kind" yaml:"kind"`
	Phase       string    `json:"phase" yaml:"phase"`
	Source      string    `json:"source" yaml:"source"`
	Destination string    `json:"destination,omitempty" yaml:"destination,omitempty"`
	Reason      string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	At          time.Time `json:"at" yaml:"at"`
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Record(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Record(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Emit stamps e and hands it to sink. A nil sink is treated as Discard.
func Emit(sink Sink, e Event) {
	if sink == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	sink.Record(e)
}

// Collector keeps every event it receives.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *Collector) Record(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

// Events returns a copy of the recorded events in arrival order.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Count returns how many events of kind k were recorded.
func (c *Collector) Count(k Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Mutations returns how many recorded events changed the tree.
func (c *Collector) Mutations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Kind.Mutating() {
			n++
		}
	}
	return n
}

// Fanout forwards each event to every non-nil sink.
func Fanout(sinks ...Sink) Sink {
	live := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return SinkFunc(func(e Event) {
		for _, s := range live {
			s.Record(e)
		}
	})
}

// LogSink writes each event to logger. Mutations log at INFO, refusals and
// failures at WARN.
func LogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = logging.NewNop()
	}
	return SinkFunc(func(e Event) {
		attrs := []logging.Attr{
			logging.String("kind", string(e.Kind)),
			logging.String(logging.FieldPath, e.Source),
		}
		if e.Phase != "" {
			attrs = append(attrs, logging.String(logging.FieldPhase, e.Phase))
		}
		if e.Destination != "" {
			attrs = append(attrs, logging.String(logging.FieldDestination, e.Destination))
		}
		if e.Reason != "" {
			attrs = append(attrs, logging.String("reason", e.Reason))
		}
		switch e.Kind {
		case MatchNotFound:
			logging.WarnWithContext(logger, "no catalog match; artifact left in place", "match_not_found",
				append(attrs,
					logging.String(logging.FieldErrorHint, "add the video to the catalog or rename the file"),
					logging.String(logging.FieldImpact, "artifact not relocated"),
				)...)
		case MergeIncomplete:
			logging.WarnWithContext(logger, "merge left entries behind", "merge_incomplete",
				append(attrs,
					logging.String(logging.FieldErrorHint, "inspect the source directory and remove leftovers by hand"),
					logging.String(logging.FieldImpact, "duplicate directory kept for inspection"),
				)...)
		case Failed:
			logging.WarnWithContext(logger, "artifact operation failed", "artifact_io_failed",
				append(attrs,
					logging.String(logging.FieldErrorHint, "check permissions and free space, then rerun"),
					logging.String(logging.FieldImpact, "artifact skipped for this pass"),
				)...)
		default:
			logger.Log(context.Background(), slog.LevelInfo, string(e.Kind), logging.Args(attrs...)...)
		}
	})
}
