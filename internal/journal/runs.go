package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"stagehand/internal/events"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrAmbiguousRun is returned when a run id prefix names more than one run.
var ErrAmbiguousRun = errors.New("ambiguous run id")

// Run is one pass over the tree.
type Run struct {
	ID         string              `json:"id" yaml:"id"`
	Root       string              `json:"root" yaml:"root"`
	Phases     []string            `json:"phases" yaml:"phases"`
	DryRun     bool                `json:"dry_run" yaml:"dry_run"`
	Status     Status              `json:"status" yaml:"status"`
	StartedAt  time.Time           `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time           `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Error      string              `json:"error,omitempty" yaml:"error,omitempty"`
	Counts     map[events.Kind]int `json:"counts,omitempty" yaml:"counts,omitempty"`
}

// Duration is the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

var runColumns = []string{"id", "root", "phases", "dry_run", "status", "started_at", "finished_at", "error"}

// BeginRun inserts run with status running.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("begin run: id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	stmt := sq.Insert("runs").
		Columns(runColumns[:6]...).
		Values(run.ID, run.Root, strings.Join(run.Phases, ","), run.DryRun, StatusRunning, formatTime(run.StartedAt))
	if _, err := s.exec(ctx, stmt); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stamps the outcome of a run. runErr, when non-nil, marks the run
// failed.
func (s *Store) FinishRun(ctx context.Context, id string, finishedAt time.Time, runErr error) error {
	status, message := StatusCompleted, ""
	if runErr != nil {
		status, message = StatusFailed, runErr.Error()
	}
	stmt := sq.Update("runs").
		Set("status", status).
		Set("finished_at", formatTime(finishedAt)).
		Set("error", message).
		Where(sq.Eq{"id": id})
	res, err := s.exec(ctx, stmt)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %s", id)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := sq.Select(runColumns...).From("runs").OrderBy("started_at DESC", "rowid DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	runs, err := s.queryRuns(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if err := s.attachCounts(ctx, runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns the run whose id equals idPrefix or, failing that, the only
// run whose id starts with it. It returns nil when no run matches.
func (s *Store) GetRun(ctx context.Context, idPrefix string) (*Run, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return nil, nil
	}
	runs, err := s.queryRuns(ctx, sq.Select(runColumns...).From("runs").Where(sq.Eq{"id": idPrefix}))
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if len(runs) == 0 {
		runs, err = s.queryRuns(ctx, sq.Select(runColumns...).From("runs").
			Where(sq.Expr(`id LIKE ? ESCAPE '\'`, escapeLike(idPrefix)+"%")).
			OrderBy("started_at DESC").
			Limit(2))
		if err != nil {
			return nil, fmt.Errorf("get run: %w", err)
		}
	}
	switch len(runs) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: %q matches more than one run", ErrAmbiguousRun, idPrefix)
	}
	if err := s.attachCounts(ctx, runs); err != nil {
		return nil, err
	}
	return &runs[0], nil
}

// keptRuns selects the ids of the newest runs to retain.
const keptRuns = "SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?"

// Prune deletes every run beyond the newest keep, with their events. It
// returns the number of runs removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	if _, err := s.exec(ctx, sq.Delete("events").Where(sq.Expr("run_id NOT IN ("+keptRuns+")", keep))); err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	res, err := s.exec(ctx, sq.Delete("runs").Where(sq.Expr("id NOT IN ("+keptRuns+")", keep)))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

func (s *Store) queryRuns(ctx context.Context, query sq.SelectBuilder) ([]Run, error) {
	text, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run      Run
		phases   string
		started  sql.NullString
		finished sql.NullString
		message  sql.NullString
	)
	if err := rows.Scan(&run.ID, &run.Root, &phases, &run.DryRun, &run.Status, &started, &finished, &message); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if phases != "" {
		run.Phases = strings.Split(phases, ",")
	}
	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return Run{}, fmt.Errorf("run %s started_at: %w", run.ID, err)
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return Run{}, fmt.Errorf("run %s finished_at: %w", run.ID, err)
	}
	run.Error = message.String
	return run, nil
}

// attachCounts fills Counts for runs with one grouped query.
func (s *Store) attachCounts(ctx context.Context, runs []Run) error {
	if len(runs) == 0 {
		return nil
	}
	ids := make([]string, len(runs))
	byID := make(map[string]*Run, len(runs))
	for i := range runs {
		ids[i] = runs[i].ID
		byID[runs[i].ID] = &runs[i]
	}
	text, args, err := sq.Select("run_id", "kind", "COUNT(1)").
		From("events").
		Where(sq.Eq{"run_id": ids}).
		GroupBy("run_id", "kind").
		ToSql()
	if err != nil {
		return fmt.Errorf("build counts query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, text, args...)
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    string
			kind  events.Kind
			count int
		)
		if err := rows.Scan(&id, &kind, &count); err != nil {
			return fmt.Errorf("scan event count: %w", err)
		}
		run := byID[id]
		if run.Counts == nil {
			run.Counts = make(map[events.Kind]int)
		}
		run.Counts[kind] = count
	}
	return rows.Err()
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(value)
}
