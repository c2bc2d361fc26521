package matcher

import (
	"fmt"
	"strings"

	"stagehand/internal/catalog"
	"stagehand/internal/textutil"
)

// Scorer rates how closely candidate resembles a catalog title. Scores are
// compared only against each other; zero means unrelated.
type Scorer func(candidate, title string) float64

// Scorer names accepted by ParseScorer.
const (
	ScorerAligned = "aligned"
	ScorerTokens  = "tokens"
)

// AlignedOverlap counts indices, up to the shorter title's length, at which
// both titles hold the same character.
func AlignedOverlap(candidate, title string) float64 {
	a, b := []rune(candidate), []rune(title)
	n := min(len(a), len(b))
	score := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			score++
		}
	}
	return float64(score)
}

// TokenOverlap scores titles by the cosine similarity of their word
// fingerprints. It tolerates leading insertions that defeat AlignedOverlap.
func TokenOverlap(candidate, title string) float64 {
	return textutil.CosineSimilarity(textutil.NewFingerprint(candidate), textutil.NewFingerprint(title))
}

// ParseScorer resolves a configured scorer name.
func ParseScorer(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ScorerAligned:
		return AlignedOverlap, nil
	case ScorerTokens:
		return TokenOverlap, nil
	default:
		return nil, fmt.Errorf("unknown scorer %q", name)
	}
}

// BestMatch returns the catalog title scoring highest against candidate with
// the aligned scorer.
func BestMatch(candidate string, titles []string) (string, bool) {
	return bestMatch(AlignedOverlap, candidate, titles)
}

func bestMatch(score Scorer, candidate string, titles []string) (string, bool) {
	for _, title := range titles {
		if title == candidate {
			return title, true
		}
	}
	var (
		best      string
		bestScore float64
	)
	for _, title := range titles {
		// Strictly greater: the first title seen keeps a tie.
		if s := score(candidate, title); s > bestScore {
			best, bestScore = title, s
		}
	}
	if bestScore <= 0 {
		return "", false
	}
	return best, true
}

// Matcher resolves filesystem titles against a loaded catalog.
type Matcher struct {
	index  *catalog.Index
	titles []string
	score  Scorer
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithScorer replaces the default aligned scorer.
func WithScorer(s Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.score = s
		}
	}
}

// New builds a matcher over index. The title list is captured once since the
// index is immutable after load.
func New(index *catalog.Index, opts ...Option) *Matcher {
	m := &Matcher{index: index, titles: index.Titles(), score: AlignedOverlap}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BestMatch is the package-level BestMatch with the matcher's scorer and the
// catalog's titles.
func (m *Matcher) BestMatch(candidate string) (string, bool) {
	if m == nil {
		return "", false
	}
	return bestMatch(m.score, textutil.NormalizeTitle(candidate), m.titles)
}

// BestMatchRecord returns the catalog record for the best-matching title.
func (m *Matcher) BestMatchRecord(candidate string) (catalog.Record, bool) {
	title, ok := m.BestMatch(candidate)
	if !ok {
		return catalog.Record{}, false
	}
	return m.index.LookupExact(title)
}
