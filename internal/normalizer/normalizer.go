package normalizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"stagehand/internal/events"
	"stagehand/internal/fileutil"
	"stagehand/internal/logging"
	"stagehand/internal/textutil"
)

// Result tallies what a normalization pass changed.
type Result struct {
	Renamed    int `json:"renamed" yaml:"renamed"`
	Moved      int `json:"moved" yaml:"moved"`
	Deleted    int `json:"deleted" yaml:"deleted"`
	Incomplete int `json:"merge_incomplete" yaml:"merge_incomplete"`
	Failed     int `json:"failed" yaml:"failed"`
}

// Normalizer canonicalizes names under a root directory.
type Normalizer struct {
	logger *slog.Logger
	sink   events.Sink
}

// New returns a normalizer reporting to sink.
func New(logger *slog.Logger, sink events.Sink) *Normalizer {
	if sink == nil {
		sink = events.Discard
	}
	return &Normalizer{
		logger: logging.NewComponentLogger(logger, "normalizer"),
		sink:   sink,
	}
}

type pass struct {
	*Normalizer
	ctx    context.Context
	logger *slog.Logger
	result Result
}

// Run normalizes every name below root. The root itself is never renamed.
// A directory that cannot be read aborts the pass; failures on single entries
// are reported as events and skipped.
func (n *Normalizer) Run(ctx context.Context, root string) (Result, error) {
	started := time.Now()
	p := &pass{Normalizer: n, ctx: ctx, logger: logging.WithContext(ctx, n.logger)}
	if err := p.walk(root); err != nil {
		return p.result, err
	}
	p.logger.Info("normalization complete",
		logging.String(logging.FieldPath, root),
		logging.Int("renamed", p.result.Renamed),
		logging.Int("moved", p.result.Moved),
		logging.Int("deleted", p.result.Deleted),
		logging.Int("merge_incomplete", p.result.Incomplete),
		logging.Int("failed", p.result.Failed),
		logging.Duration("duration", time.Since(started)),
	)
	return p.result, nil
}

func (p *pass) walk(dir string) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := p.walk(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	for _, entry := range entries {
		canonical := textutil.Narrow(entry.Name())
		if canonical == entry.Name() {
			continue
		}
		if err := p.canonicalize(dir, entry, canonical); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) canonicalize(dir string, entry os.DirEntry, canonical string) error {
	src := filepath.Join(dir, entry.Name())
	dst := filepath.Join(dir, canonical)

	info, err := os.Lstat(dst)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(src, dst); err != nil {
			p.fail(src, dst, err)
			return nil
		}
		p.result.Renamed++
		p.emit(events.Renamed, src, dst, "wide characters narrowed")
		return nil
	}
	if err != nil {
		p.fail(src, dst, err)
		return nil
	}

	switch {
	case entry.IsDir() && info.IsDir():
		srcEntries, err := Snapshot(src)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", src, err)
		}
		dstEntries, err := Snapshot(dst)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", dst, err)
		}
		p.execute(Action{
			Kind:        ActionMerge,
			Source:      src,
			Destination: dst,
			Actions:     PlanMerge(src, srcEntries, dst, dstEntries),
		})
	case entry.IsDir():
		p.execute(Action{Kind: ActionConflict, Source: src, Destination: dst})
	default:
		p.execute(Action{Kind: ActionDelete, Source: src, Destination: dst})
	}
	return nil
}

func (p *pass) execute(action Action) {
	switch action.Kind {
	case ActionMove:
		if err := fileutil.Move(action.Source, action.Destination); err != nil {
			p.fail(action.Source, action.Destination, err)
			return
		}
		p.result.Moved++
		p.emit(events.Moved, action.Source, action.Destination, "merged into canonical directory")
	case ActionDelete:
		if err := os.RemoveAll(action.Source); err != nil {
			p.fail(action.Source, action.Destination, err)
			return
		}
		p.result.Deleted++
		p.emit(events.Deleted, action.Source, action.Destination, "canonical name already present")
	case ActionMerge:
		for _, child := range action.Actions {
			p.execute(child)
		}
		p.removeMerged(action.Source, action.Destination)
	case ActionConflict:
		p.result.Incomplete++
		p.emit(events.MergeIncomplete, action.Source, action.Destination, "directory collides with a file")
	}
}

// removeMerged deletes a merge source once it is empty.
func (p *pass) removeMerged(src, dst string) {
	err := os.Remove(src)
	switch {
	case err == nil:
		p.result.Deleted++
		p.emit(events.Deleted, src, dst, "merged into canonical directory")
	case errors.Is(err, unix.ENOTEMPTY) || errors.Is(err, unix.EEXIST):
		p.result.Incomplete++
		p.emit(events.MergeIncomplete, src, dst, "source directory not empty after merge")
	default:
		p.fail(src, dst, err)
	}
}

func (p *pass) emit(kind events.Kind, src, dst, reason string) {
	events.Emit(p.sink, events.Event{
		Kind:        kind,
		Phase:       events.PhaseNormalize,
		Source:      src,
		Destination: dst,
		Reason:      reason,
	})
}

func (p *pass) fail(src, dst string, err error) {
	p.result.Failed++
	p.emit(events.Failed, src, dst, err.Error())
}
