package workflow

import (
	"time"

	"stagehand/internal/events"
	"stagehand/internal/normalizer"
	"stagehand/internal/reconciler"
	"stagehand/internal/stagegc"
)

// Summary describes one pass. Phase results are nil for phases that did not
// run.
type Summary struct {
	RunID      string              `json:"run_id" yaml:"run_id"`
	Root       string              `json:"root" yaml:"root"`
	Phases     []Phase             `json:"phases" yaml:"phases"`
	DryRun     bool                `json:"dry_run" yaml:"dry_run"`
	StartedAt  time.Time           `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time           `json:"finished_at" yaml:"finished_at"`
	Normalize  *normalizer.Result  `json:"normalize,omitempty" yaml:"normalize,omitempty"`
	Reconcile  *reconciler.Result  `json:"reconcile,omitempty" yaml:"reconcile,omitempty"`
	GC         *stagegc.Result     `json:"gc,omitempty" yaml:"gc,omitempty"`
	Counts     map[events.Kind]int `json:"counts" yaml:"counts"`
}

// Duration is the wall time of the pass.
func (s Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Mutations counts events that changed the tree.
func (s Summary) Mutations() int {
	n := 0
	for kind, count := range s.Counts {
		if kind.Mutating() {
			n += count
		}
	}
	return n
}

// Warnings counts events that need an operator's attention.
func (s Summary) Warnings() int {
	return s.Counts[events.MatchNotFound] + s.Counts[events.MergeIncomplete] + s.Counts[events.Failed]
}
