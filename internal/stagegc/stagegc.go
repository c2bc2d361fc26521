package stagegc

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"stagehand/internal/artifact"
	"stagehand/internal/events"
	"stagehand/internal/logging"
)

// Result contains the outcome of a collection pass.
type Result struct {
	Directories int      `json:"directories" yaml:"directories"`
	Removed     []string `json:"removed,omitempty" yaml:"removed,omitempty"`
	Errors      []Error  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Error pairs an audio path with the error that kept it from being removed.
type Error struct {
	Path string `json:"path" yaml:"path"`
	Err  string `json:"error" yaml:"error"`
}

// Collector deletes superseded audio below a root.
type Collector struct {
	suffixes artifact.Suffixes
	logger   *slog.Logger
	sink     events.Sink
	dryRun   bool
}

// New builds a collector. With dryRun set, deletions are reported but not
// performed.
func New(suffixes artifact.Suffixes, logger *slog.Logger, sink events.Sink, dryRun bool) *Collector {
	if sink == nil {
		sink = events.Discard
	}
	return &Collector{
		suffixes: suffixes,
		logger:   logging.NewComponentLogger(logger, "stagegc"),
		sink:     sink,
		dryRun:   dryRun,
	}
}

// directory groups the artifacts found in one directory.
type directory struct {
	audio   []string
	derived int
}

// Run scans every directory below root. Only a failure to walk the tree or
// cancellation is returned as an error.
func (c *Collector) Run(ctx context.Context, root string) (Result, error) {
	started := time.Now()
	logger := logging.WithContext(ctx, c.logger)

	var result Result
	dirs, err := c.scan(root)
	if err != nil {
		return result, err
	}

	paths := make([]string, 0, len(dirs))
	for path := range dirs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, dir := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Directories++
		group := dirs[dir]
		if len(group.audio) == 0 || group.derived == 0 {
			continue
		}
		for _, audio := range group.audio {
			c.remove(audio, &result)
		}
	}

	logger.Info("stage gc complete",
		logging.String(logging.FieldPath, root),
		logging.Int("directories", result.Directories),
		logging.Int("removed", len(result.Removed)),
		logging.Int("errors", len(result.Errors)),
		logging.Bool("dry_run", c.dryRun),
		logging.Duration("duration", time.Since(started)),
	)
	return result, nil
}

// scan collects the artifacts of every ArtifactDirectory below root. Loose
// files in channel directories belong to no single video and are skipped.
func (c *Collector) scan(root string) (map[string]*directory, error) {
	dirs := make(map[string]*directory)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		parent := filepath.Dir(path)
		if parent == filepath.Clean(root) || !artifact.IsArtifactDir(filepath.Base(parent)) {
			return nil
		}
		kind, ok := c.suffixes.Classify(d.Name())
		if !ok {
			return nil
		}
		group := dirs[parent]
		if group == nil {
			group = &directory{}
			dirs[parent] = group
		}
		if kind.Derived() {
			group.derived++
		} else {
			group.audio = append(group.audio, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return dirs, nil
}

func (c *Collector) remove(path string, result *Result) {
	reason := "superseded by derived artifact"
	if c.dryRun {
		result.Removed = append(result.Removed, path)
		c.emit(events.Deleted, path, "dry-run: "+reason)
		return
	}
	if err := os.Remove(path); err != nil {
		result.Errors = append(result.Errors, Error{Path: path, Err: err.Error()})
		c.emit(events.Failed, path, err.Error())
		return
	}
	result.Removed = append(result.Removed, path)
	c.emit(events.Deleted, path, reason)
}

func (c *Collector) emit(kind events.Kind, path, reason string) {
	events.Emit(c.sink, events.Event{
		Kind:   kind,
		Phase:  events.PhaseGC,
		Source: path,
		Reason: reason,
	})
}
