package journal

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"stagehand/internal/events"
)

// insertBatch bounds the rows per INSERT so large passes stay under SQLite's
// bound-parameter limit.
const insertBatch = 100

// AppendEvents stores evts for runID after the events already recorded.
func (s *Store) AppendEvents(ctx context.Context, runID string, evts []events.Event) error {
	if len(evts) == 0 {
		return nil
	}
	var next int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq) + 1, 0) FROM events WHERE run_id = ?", runID).Scan(&next); err != nil {
		return fmt.Errorf("append events: %w", err)
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin events tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for start := 0; start < len(evts); start += insertBatch {
			end := min(start+insertBatch, len(evts))
			stmt := sq.Insert("events").Columns("run_id", "seq", "kind", "phase", "source", "destination", "reason", "at")
			for i, e := range evts[start:end] {
				stmt = stmt.Values(runID, next+start+i, e.Kind, e.Phase, e.Source, e.Destination, e.Reason, formatTime(e.At))
			}
			query, args, err := stmt.ToSql()
			if err != nil {
				return fmt.Errorf("build insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert events: %w", err)
			}
		}
		return tx.Commit()
	})
}

// RunEvents returns the events of runID in emission order. A non-empty kind
// restricts the result to that kind.
func (s *Store) RunEvents(ctx context.Context, runID string, kind events.Kind) ([]events.Event, error) {
	query := sq.Select("kind", "phase", "source", "destination", "reason", "at").
		From("events").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("seq")
	if kind != "" {
		query = query.Where(sq.Eq{"kind": kind})
	}
	text, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("run events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var (
			e           events.Event
			destination sql.NullString
			reason      sql.NullString
			at          sql.NullString
		)
		if err := rows.Scan(&e.Kind, &e.Phase, &e.Source, &destination, &reason, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Destination = destination.String
		e.Reason = reason.String
		if e.At, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("event time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
