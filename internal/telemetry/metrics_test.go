package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"stagehand/internal/events"
)

func TestRecordCountsByPhaseAndKind(t *testing.T) {
	m := New()
	m.Record(events.Event{Kind: events.Moved, Phase: events.PhaseReconcile})
	m.Record(events.Event{Kind: events.Moved, Phase: events.PhaseReconcile})
	m.Record(events.Event{Kind: events.Deleted, Phase: events.PhaseGC})

	if got := testutil.ToFloat64(m.eventsTotal.WithLabelValues(events.PhaseReconcile, string(events.Moved))); got != 2 {
		t.Fatalf("moved = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.eventsTotal.WithLabelValues(events.PhaseGC, string(events.Deleted))); got != 1 {
		t.Fatalf("deleted = %v, want 1", got)
	}
}

func TestTimePhase(t *testing.T) {
	m := New()
	want := errors.New("boom")
	err := m.TimePhase(events.PhaseNormalize, func() error {
		time.Sleep(5 * time.Millisecond)
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("TimePhase error = %v", err)
	}
	if got := testutil.ToFloat64(m.phaseDuration.WithLabelValues(events.PhaseNormalize)); got <= 0 {
		t.Fatalf("duration = %v, want > 0", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Record(events.Event{Kind: events.Renamed, Phase: events.PhaseNormalize})
	m.SetCatalogTitles(42)
	m.MarkRun(time.Unix(1700000000, 0), true)

	path := filepath.Join(t.TempDir(), "stagehand.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`stagehand_events_total{kind="renamed",phase="normalize"} 1`,
		"stagehand_catalog_titles 42",
		"stagehand_last_run_success 1",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("textfile missing %q:\n%s", want, text)
		}
	}

	if err := m.WriteTextfile(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Record(events.Event{Kind: events.Moved})
	m.ObservePhase("x", time.Second)
	m.MarkRun(time.Now(), false)
	if err := m.WriteTextfile("/nonexistent/x.prom"); err != nil {
		t.Fatalf("nil WriteTextfile = %v", err)
	}
	ran := false
	if err := m.TimePhase(events.PhaseGC, func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("nil TimePhase ran=%v err=%v", ran, err)
	}
}
