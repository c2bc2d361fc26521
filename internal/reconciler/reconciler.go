package reconciler

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"stagehand/internal/artifact"
	"stagehand/internal/catalog"
	"stagehand/internal/events"
	"stagehand/internal/fileutil"
	"stagehand/internal/logging"
)

// Matcher resolves a filesystem title to a catalog record.
type Matcher interface {
	BestMatchRecord(title string) (catalog.Record, bool)
}

// Result tallies one reconciliation pass.
type Result struct {
	Scanned   int `json:"scanned" yaml:"scanned"`
	Placed    int `json:"placed" yaml:"placed"`
	Moved     int `json:"moved" yaml:"moved"`
	Deleted   int `json:"deleted" yaml:"deleted"`
	Unmatched int `json:"unmatched" yaml:"unmatched"`
	Failed    int `json:"failed" yaml:"failed"`
}

func (r *Result) add(other Result) {
	r.Scanned += other.Scanned
	r.Placed += other.Placed
	r.Moved += other.Moved
	r.Deleted += other.Deleted
	r.Unmatched += other.Unmatched
	r.Failed += other.Failed
}

// Reconciler places loose artifacts under a root directory.
type Reconciler struct {
	matcher  Matcher
	suffixes artifact.Suffixes
	logger   *slog.Logger
	sink     events.Sink
	dryRun   bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithDryRun reports what would change without touching the tree.
func WithDryRun(enabled bool) Option {
	return func(r *Reconciler) { r.dryRun = enabled }
}

// New builds a reconciler.
func New(m Matcher, suffixes artifact.Suffixes, logger *slog.Logger, sink events.Sink, opts ...Option) *Reconciler {
	if sink == nil {
		sink = events.Discard
	}
	r := &Reconciler{
		matcher:  m,
		suffixes: suffixes,
		logger:   logging.NewComponentLogger(logger, "reconciler"),
		sink:     sink,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles every artifact kind in pipeline order.
func (r *Reconciler) Run(ctx context.Context, root string) (Result, error) {
	var total Result
	for _, kind := range artifact.Kinds {
		result, err := r.RunKind(ctx, root, kind)
		total.add(result)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// RunKind reconciles the artifacts of one kind. Only a failure to walk the
// tree (or cancellation) is returned as an error.
func (r *Reconciler) RunKind(ctx context.Context, root string, kind artifact.Kind) (Result, error) {
	started := time.Now()
	logger := logging.WithContext(ctx, r.logger).With(logging.String("kind", kind.String()))

	var result Result
	paths, err := r.discover(root, kind)
	if err != nil {
		return result, err
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++
		r.place(root, path, &result)
	}

	logger.Info("reconciliation complete",
		logging.String(logging.FieldPath, root),
		logging.Int("scanned", result.Scanned),
		logging.Int("moved", result.Moved),
		logging.Int("deleted", result.Deleted),
		logging.Int("unmatched", result.Unmatched),
		logging.Int("failed", result.Failed),
		logging.Bool("dry_run", r.dryRun),
		logging.Duration("duration", time.Since(started)),
	)
	return result, nil
}

// discover lists regular files of kind below root, sorted, before anything
// is moved.
func (r *Reconciler) discover(root string, kind artifact.Kind) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if got, ok := r.suffixes.Classify(d.Name()); ok && got == kind {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (r *Reconciler) place(root, path string, result *Result) {
	base := filepath.Base(path)
	name, _ := r.suffixes.Parse(base)
	if name.Title == "" {
		result.Unmatched++
		r.emit(events.MatchNotFound, path, "", "no title left after removing suffix and date")
		return
	}

	dir := filepath.Dir(path)
	if placed(filepath.Base(dir), name) {
		result.Placed++
		return
	}

	rec, ok := r.matcher.BestMatchRecord(name.Title)
	if !ok {
		result.Unmatched++
		r.emit(events.MatchNotFound, path, "", fmt.Sprintf("no catalog title resembles %q", name.Title))
		return
	}

	destDir := filepath.Join(channelDir(root, path), artifact.DirName(rec.PublishedDate, name.Title))
	if destDir == dir {
		result.Placed++
		return
	}
	dest := filepath.Join(destDir, base)
	reason := fmt.Sprintf("matched catalog title %q (id %s)", rec.Title, rec.ID)

	exists, err := fileutil.Exists(dest)
	if err != nil {
		r.fail(path, dest, err, result)
		return
	}

	if r.dryRun {
		if exists {
			result.Deleted++
			r.emit(events.Deleted, path, dest, "dry-run: duplicate of existing artifact")
		} else {
			result.Moved++
			r.emit(events.Moved, path, dest, "dry-run: "+reason)
		}
		return
	}

	if exists {
		if err := os.Remove(path); err != nil {
			r.fail(path, dest, err, result)
			return
		}
		result.Deleted++
		r.emit(events.Deleted, path, dest, "duplicate of existing artifact")
		return
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		r.fail(path, dest, err, result)
		return
	}
	if err := fileutil.Move(path, dest); err != nil {
		r.fail(path, dest, err, result)
		return
	}
	result.Moved++
	r.emit(events.Moved, path, dest, reason)
}

// placed reports whether dirName is the canonical directory for name, using
// the date from the filename or, failing that, from the directory itself.
func placed(dirName string, name artifact.Name) bool {
	date := name.Date
	if date == "" {
		var ok bool
		if date, _, ok = artifact.ParseDirName(dirName); !ok {
			return false
		}
	}
	return dirName == artifact.DirName(date, name.Title)
}

// channelDir is the first directory below root on the way to path, or root
// itself for files directly under it.
func channelDir(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return root
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return root
	}
	return filepath.Join(root, parts[0])
}

func (r *Reconciler) emit(kind events.Kind, src, dst, reason string) {
	events.Emit(r.sink, events.Event{
		Kind:        kind,
		Phase:       events.PhaseReconcile,
		Source:      src,
		Destination: dst,
		Reason:      reason,
	})
}

func (r *Reconciler) fail(src, dst string, err error, result *Result) {
	result.Failed++
	r.emit(events.Failed, src, dst, err.Error())
}
