package events_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"stagehand/internal/events"
	"stagehand/internal/logging"
)

func TestCollectorCounts(t *testing.T) {
	var c events.Collector
	for _, k := range []events.Kind{events.Moved, events.Moved, events.MatchNotFound, events.Renamed, events.Failed} {
		events.Emit(&c, events.Event{Kind: k, Source: "/x"})
	}
	if c.Count(events.Moved) != 2 {
		t.Fatalf("Count(moved) = %d", c.Count(events.Moved))
	}
	if c.Mutations() != 3 {
		t.Fatalf("Mutations = %d, want 3", c.Mutations())
	}
	recorded := c.Events()
	if len(recorded) != 5 || recorded[0].At.IsZero() {
		t.Fatalf("unexpected events %+v", recorded)
	}
}

func TestCollectorConcurrentRecord(t *testing.T) {
	var c events.Collector
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(events.Event{Kind: events.Deleted})
		}()
	}
	wg.Wait()
	if c.Count(events.Deleted) != 20 {
		t.Fatalf("Count = %d, want 20", c.Count(events.Deleted))
	}
}

func TestFanoutSkipsNil(t *testing.T) {
	var a, b events.Collector
	sink := events.Fanout(&a, nil, &b)
	sink.Record(events.Event{Kind: events.Renamed})
	if a.Count(events.Renamed) != 1 || b.Count(events.Renamed) != 1 {
		t.Fatal("expected both collectors to receive the event")
	}
	events.Emit(nil, events.Event{Kind: events.Moved})
}

func TestLogSinkLevels(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sink := events.LogSink(logger)
	sink.Record(events.Event{Kind: events.Moved, Phase: events.PhaseReconcile, Source: "/a", Destination: "/b"})
	sink.Record(events.Event{Kind: events.MatchNotFound, Phase: events.PhaseReconcile, Source: "/c"})

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d: %s", len(lines), content)
	}
	if !strings.Contains(lines[0], `"level":"info"`) || !strings.Contains(lines[0], `"destination":"/b"`) {
		t.Fatalf("unexpected moved record: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"warn"`) || !strings.Contains(lines[1], `"event_type":"match_not_found"`) {
		t.Fatalf("unexpected match_not_found record: %s", lines[1])
	}
}

func TestKindMutating(t *testing.T) {
	for _, k := range events.Kinds {
		want := k == events.Moved || k == events.Deleted || k == events.Renamed
		if k.Mutating() != want {
			t.Errorf("%s.Mutating() = %v", k, k.Mutating())
		}
	}
}
