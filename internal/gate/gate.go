package gate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"stagehand/internal/artifact"
	"stagehand/internal/logging"
	"stagehand/internal/textutil"
)

// Reason explains a Decision.
type Reason string

const (
	// ReasonNew means nothing in the tree covers the title yet.
	ReasonNew Reason = "not_processed"
	// ReasonExists means a stage artifact for the title is already present.
	ReasonExists Reason = "already_processed"
	// ReasonDenylisted means the title carries a live-stream marker.
	ReasonDenylisted Reason = "denylisted"
	// ReasonEmpty means nothing was left of the title after normalization.
	ReasonEmpty Reason = "empty_title"
)

// Decision is the verdict for one candidate title.
type Decision struct {
	Title     string `json:"title" yaml:"title"`
	Candidate string `json:"candidate" yaml:"candidate"`
	Allowed   bool   `json:"allowed" yaml:"allowed"`
	Reason    Reason `json:"reason" yaml:"reason"`
	// Match is the denylist marker or the existing artifact path that caused
	// a refusal.
	Match string `json:"match,omitempty" yaml:"match,omitempty"`
}

// Gate answers "may process" questions against one tree.
type Gate struct {
	root     string
	suffixes artifact.Suffixes
	denylist []string
	logger   *slog.Logger
}

// New builds a gate. Denylist markers are matched case-insensitively.
func New(root string, suffixes artifact.Suffixes, denylist []string, logger *slog.Logger) *Gate {
	folded := make([]string, 0, len(denylist))
	for _, marker := range denylist {
		marker = strings.TrimSpace(marker)
		if marker == "" {
			continue
		}
		folded = append(folded, textutil.Fold(marker))
	}
	return &Gate{
		root:     root,
		suffixes: suffixes,
		denylist: folded,
		logger:   logging.NewComponentLogger(logger, "gate"),
	}
}

// Candidate returns the form of title used for denylist and containment tests.
func Candidate(title string) string {
	return textutil.PathSafe(textutil.Narrow(textutil.NormalizeTitle(title)))
}

// MayProcess reports whether a producer may create output for title.
func (g *Gate) MayProcess(ctx context.Context, title string) (bool, error) {
	decision, err := g.Check(ctx, title)
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}

// Check returns the full decision for title.
func (g *Gate) Check(ctx context.Context, title string) (Decision, error) {
	decisions, err := g.Filter(ctx, []string{title})
	if err != nil {
		return Decision{}, err
	}
	return decisions[0], nil
}

// Filter decides a batch of titles with a single scan of the tree. Decisions
// are returned in input order.
func (g *Gate) Filter(ctx context.Context, titles []string) ([]Decision, error) {
	logger := logging.WithContext(ctx, g.logger)
	decisions := make([]Decision, len(titles))
	var pending []int
	for i, title := range titles {
		d := Decision{Title: title, Candidate: Candidate(title)}
		switch marker, denied := g.denied(d.Candidate); {
		case d.Candidate == "":
			d.Reason = ReasonEmpty
		case denied:
			d.Reason = ReasonDenylisted
			d.Match = marker
		default:
			pending = append(pending, i)
		}
		decisions[i] = d
	}

	if len(pending) > 0 {
		if err := g.scan(ctx, decisions, pending); err != nil {
			return nil, err
		}
	}

	for _, d := range decisions {
		if d.Allowed {
			logger.Info("title not processed yet",
				logging.String("title", d.Title),
				logging.String(logging.FieldEventType, "gate_allowed"),
			)
			continue
		}
		logger.Debug("title refused",
			logging.String("title", d.Title),
			logging.String("reason", string(d.Reason)),
			logging.String("match", d.Match),
		)
	}
	return decisions, nil
}

func (g *Gate) denied(candidate string) (string, bool) {
	folded := textutil.Fold(candidate)
	for _, marker := range g.denylist {
		if strings.Contains(folded, marker) {
			return marker, true
		}
	}
	return "", false
}

// scan resolves pending decisions against recognized files below the root.
// A missing root holds no artifacts, so every pending title is allowed.
func (g *Gate) scan(ctx context.Context, decisions []Decision, pending []int) error {
	err := filepath.WalkDir(g.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() || !g.suffixes.Recognized(d.Name()) {
			return nil
		}
		name := textutil.Narrow(d.Name())
		remaining := pending[:0]
		for _, i := range pending {
			if strings.Contains(name, decisions[i].Candidate) {
				decisions[i].Reason = ReasonExists
				decisions[i].Match = path
				continue
			}
			remaining = append(remaining, i)
		}
		pending = remaining
		if len(pending) == 0 {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !(errors.Is(err, fs.ErrNotExist) && isRoot(err, g.root)) {
		return fmt.Errorf("scan %s: %w", g.root, err)
	}
	for _, i := range pending {
		decisions[i].Allowed = true
		decisions[i].Reason = ReasonNew
	}
	return nil
}

func isRoot(err error, root string) bool {
	var pathErr *fs.PathError
	return errors.As(err, &pathErr) && filepath.Clean(pathErr.Path) == filepath.Clean(root)
}
