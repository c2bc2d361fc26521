// Package telemetry exports pass metrics in the Prometheus node-exporter
// textfile format.
package telemetry

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stagehand/internal/events"
)

// Metrics holds the collectors of one process. Each Metrics owns its
// registry, so a textfile only ever carries stagehand series.
type Metrics struct {
	registry *prometheus.Registry

	mu            sync.Mutex
	eventsTotal   *prometheus.CounterVec
	phaseDuration *prometheus.GaugeVec
	lastRun       prometheus.Gauge
	lastSuccess   prometheus.Gauge
	catalogTitles prometheus.Gauge
}

// New registers the stagehand collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	m := &Metrics{registry: registry}
	m.eventsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "stagehand_events_total",
		Help: "Events emitted by the last pass, by phase and kind",
	}, []string{"phase", "kind"})
	m.phaseDuration = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stagehand_phase_duration_seconds",
		Help: "Wall time of each phase of the last pass",
	}, []string{"phase"})
	m.lastRun = factory.NewGauge(prometheus.GaugeOpts{
		Name: "stagehand_last_run_timestamp_seconds",
		Help: "Unix time the last pass finished",
	})
	m.lastSuccess = factory.NewGauge(prometheus.GaugeOpts{
		Name: "stagehand_last_run_success",
		Help: "1 if the last pass completed, 0 if it failed",
	})
	m.catalogTitles = factory.NewGauge(prometheus.GaugeOpts{
		Name: "stagehand_catalog_titles",
		Help: "Distinct titles loaded from the catalog",
	})
	return m
}

// Record counts e. Metrics satisfies events.Sink.
func (m *Metrics) Record(e events.Event) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(e.Phase, string(e.Kind)).Inc()
}

// ObservePhase records how long phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Set(d.Seconds())
}

// TimePhase runs fn and records its duration under phase. A nil Metrics
// still runs fn.
func (m *Metrics) TimePhase(phase string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.ObservePhase(phase, time.Since(start))
	return err
}

// SetCatalogTitles records the size of the loaded catalog.
func (m *Metrics) SetCatalogTitles(n int) {
	if m == nil {
		return
	}
	m.catalogTitles.Set(float64(n))
}

// MarkRun records the finish time and outcome of a pass.
func (m *Metrics) MarkRun(finished time.Time, success bool) {
	if m == nil {
		return
	}
	m.lastRun.Set(float64(finished.Unix()))
	if success {
		m.lastSuccess.Set(1)
	} else {
		m.lastSuccess.Set(0)
	}
}

// WriteTextfile atomically replaces path with the current metric values.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("metrics textfile path is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return prometheus.WriteToTextfile(path, m.registry)
}

var _ events.Sink = (*Metrics)(nil)
