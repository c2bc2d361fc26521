package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"stagehand/internal/catalog"
	"stagehand/internal/config"
	"stagehand/internal/events"
	"stagehand/internal/journal"
	"stagehand/internal/logging"
	"stagehand/internal/matcher"
	"stagehand/internal/normalizer"
	"stagehand/internal/preflight"
	"stagehand/internal/reconciler"
	"stagehand/internal/stagegc"
	"stagehand/internal/telemetry"
)

// Runner executes passes for one configuration and catalog.
type Runner struct {
	cfg     *config.Config
	index   *catalog.Index
	base    *slog.Logger
	logger  *slog.Logger
	matcher *matcher.Matcher
	journal *journal.Store
	metrics *telemetry.Metrics
	sinks   []events.Sink
	now     func() time.Time
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithJournal records every pass in store.
func WithJournal(store *journal.Store) Option {
	return func(r *Runner) { r.journal = store }
}

// WithMetrics counts events in m and writes metrics.textfile after each pass.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithSink forwards every event to sink in addition to the built-in sinks.
func WithSink(sink events.Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, sink) }
}

// NewRunner builds a runner. The scorer named by matching.scorer must be
// valid; config validation guarantees that for loaded configs.
func NewRunner(cfg *config.Config, index *catalog.Index, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("workflow runner requires a config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	scorer, err := matcher.ParseScorer(cfg.Matching.Scorer)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:     cfg,
		index:   index,
		base:    logger,
		logger:  logging.NewComponentLogger(logger, "workflow"),
		matcher: matcher.New(index, matcher.WithScorer(scorer)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunOptions selects what a pass does.
type RunOptions struct {
	// Phases to run; empty runs every phase.
	Phases []Phase
	// DryRun reports reconcile and gc changes without making them. Normalize
	// has no dry-run mode and is skipped.
	DryRun bool
}

// Run executes one pass. The returned summary is populated as far as the
// pass got, even when an error is returned.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	phases := opts.Phases
	if len(phases) == 0 {
		phases = AllPhases
	}
	summary := Summary{
		RunID:     uuid.NewString(),
		Root:      r.cfg.Paths.Root,
		Phases:    phases,
		DryRun:    opts.DryRun,
		StartedAt: r.now(),
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)

	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire lock %s: %w", r.cfg.LockPath(), err)
	}
	if !locked {
		return summary, fmt.Errorf("%w (lock %s)", ErrLocked, r.cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release pass lock", logging.Error(err))
		}
	}()

	if err := r.runPreflightChecks(ctx, logger); err != nil {
		return summary, err
	}

	r.beginJournal(ctx, logger, summary)

	collector := &events.Collector{}
	sinks := append([]events.Sink{collector, events.LogSink(logger)}, r.sinks...)
	if r.metrics != nil {
		r.metrics.SetCatalogTitles(r.index.Len())
		sinks = append(sinks, r.metrics)
	}
	sink := events.Fanout(sinks...)

	logger.Info("pass started",
		logging.String(logging.FieldEventType, "pass_start"),
		logging.String(logging.FieldPath, summary.Root),
		logging.Any("phases", phaseNames(phases)),
		logging.Bool("dry_run", opts.DryRun),
		logging.Int("catalog_titles", r.index.Len()),
	)

	runErr := r.runPhases(ctx, phases, opts.DryRun, sink, &summary)

	summary.FinishedAt = r.now()
	summary.Counts = countKinds(collector.Events())
	r.finishJournal(ctx, logger, summary, collector.Events(), runErr)
	r.writeMetrics(logger, summary.FinishedAt, runErr == nil)

	if runErr != nil {
		logging.ErrorWithContext(logger, "pass aborted", "pass_failed",
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, "fix access to the reported directory and rerun"),
			logging.String(logging.FieldImpact, "later phases were not run"),
		)
		return summary, runErr
	}
	logger.Info("pass complete",
		logging.String(logging.FieldEventType, "pass_complete"),
		logging.Int("mutations", summary.Mutations()),
		logging.Int("warnings", summary.Warnings()),
		logging.Duration("duration", summary.Duration()),
	)
	return summary, nil
}

func (r *Runner) runPhases(ctx context.Context, phases []Phase, dryRun bool, sink events.Sink, summary *Summary) error {
	for _, phase := range phases {
		phaseCtx := logging.WithPhase(ctx, string(phase))
		if phase == PhaseNormalize && dryRun {
			logger := logging.WithContext(phaseCtx, r.logger)
			logger.Info("normalize skipped in dry run", logging.String(logging.FieldEventType, "phase_skipped"))
			continue
		}

		err := r.metrics.TimePhase(string(phase), func() error {
			return r.runPhase(phaseCtx, phase, dryRun, sink, summary)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%s: %w", phase, ctxErr)
			}
			return fmt.Errorf("%w: %s: %w", ErrTraversal, phase, err)
		}
	}
	return nil
}

func (r *Runner) runPhase(ctx context.Context, phase Phase, dryRun bool, sink events.Sink, summary *Summary) error {
	suffixes := r.cfg.Suffixes()
	root := r.cfg.Paths.Root
	switch phase {
	case PhaseNormalize:
		result, err := normalizer.New(r.base, sink).Run(ctx, root)
		summary.Normalize = &result
		return err
	case PhaseReconcile:
		result, err := reconciler.New(r.matcher, suffixes, r.base, sink, reconciler.WithDryRun(dryRun)).Run(ctx, root)
		summary.Reconcile = &result
		return err
	case PhaseGC:
		result, err := stagegc.New(suffixes, r.base, sink, dryRun || r.cfg.GC.DryRun).Run(ctx, root)
		summary.GC = &result
		return err
	default:
		return fmt.Errorf("unknown phase %q", phase)
	}
}

func (r *Runner) runPreflightChecks(ctx context.Context, logger *slog.Logger) error {
	results := preflight.RunAll(ctx, r.cfg)
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "fix the reported path or update the config"),
			logging.Alert("preflight"),
		)
	}
	if err := preflight.Err(results); err != nil {
		return fmt.Errorf("%w: %w", ErrPreflight, err)
	}
	return nil
}

// The journal is an audit trail; failing to write it never fails a pass.
func (r *Runner) beginJournal(ctx context.Context, logger *slog.Logger, summary Summary) {
	if r.journal == nil {
		return
	}
	err := r.journal.BeginRun(ctx, journal.Run{
		ID:        summary.RunID,
		Root:      summary.Root,
		Phases:    phaseNames(summary.Phases),
		DryRun:    summary.DryRun,
		StartedAt: summary.StartedAt,
	})
	if err != nil {
		logging.WarnWithContext(logger, "journal unavailable for this pass", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check "+r.journal.Path()),
			logging.String(logging.FieldImpact, "pass not recorded in history"),
		)
	}
}

func (r *Runner) finishJournal(ctx context.Context, logger *slog.Logger, summary Summary, evts []events.Event, runErr error) {
	if r.journal == nil {
		return
	}
	// Recording must still happen when the pass was cancelled.
	ctx = context.WithoutCancel(ctx)
	err := r.journal.AppendEvents(ctx, summary.RunID, evts)
	if err == nil {
		err = r.journal.FinishRun(ctx, summary.RunID, summary.FinishedAt, runErr)
	}
	if err == nil && r.cfg.Journal.KeepRuns > 0 {
		var pruned int64
		pruned, err = r.journal.Prune(ctx, r.cfg.Journal.KeepRuns)
		if pruned > 0 {
			logger.Debug("pruned journal runs", logging.Int64("pruned", pruned))
		}
	}
	if err != nil {
		logging.WarnWithContext(logger, "failed to record pass in journal", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check "+r.journal.Path()),
			logging.String(logging.FieldImpact, "history for this pass is incomplete"),
		)
	}
}

func (r *Runner) writeMetrics(logger *slog.Logger, finished time.Time, success bool) {
	if r.metrics == nil {
		return
	}
	r.metrics.MarkRun(finished, success)
	if r.cfg.Metrics.Textfile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(logger, "failed to write metrics textfile", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldPath, r.cfg.Metrics.Textfile),
			logging.String(logging.FieldImpact, "metrics for this pass not exported"),
		)
	}
}

func countKinds(evts []events.Event) map[events.Kind]int {
	counts := make(map[events.Kind]int)
	for _, e := range evts {
		counts[e.Kind]++
	}
	return counts
}
