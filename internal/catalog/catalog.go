package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"stagehand/internal/artifact"
	"stagehand/internal/textutil"
)

// ErrLoad marks a catalog that is missing or malformed. It is fatal at startup.
var ErrLoad = errors.New("catalog load error")

const (
	columnTitle     = "title"
	columnPublished = "published_date"
	columnID        = "id"
)

// Record is one canonical video. Title is normalized and PublishedDate is a
// YYYY-MM-DD day.
type Record struct {
	Title         string `json:"title" yaml:"title"`
	PublishedDate string `json:"published_date" yaml:"published_date"`
	ID            string `json:"id" yaml:"id"`
}

// Index is the read-only, in-memory catalog keyed by normalized title.
type Index struct {
	records map[string]Record
	titles  []string
	skipped int
}

// NewIndex builds an index from records in order. Titles are normalized and a
// later record replaces an earlier one with the same normalized title; the
// title keeps the position where it was first seen.
func NewIndex(records []Record) *Index {
	ix := &Index{records: make(map[string]Record, len(records))}
	for _, rec := range records {
		ix.add(rec)
	}
	return ix
}

func (ix *Index) add(rec Record) bool {
	rec.Title = textutil.NormalizeTitle(rec.Title)
	if rec.Title == "" {
		ix.skipped++
		return false
	}
	if _, exists := ix.records[rec.Title]; !exists {
		ix.titles = append(ix.titles, rec.Title)
	}
	ix.records[rec.Title] = rec
	return true
}

// Load reads a CSV catalog with at least the columns title, published_date
// and id. Rows are applied in file order.
func Load(path string) (*Index, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: no catalog path configured", ErrLoad)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrLoad, path, err)
	}
	defer file.Close()

	ix, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ix, nil
}

// Read parses catalog CSV from r.
func Read(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog", ErrLoad)
		}
		return nil, fmt.Errorf("%w: read header: %w", ErrLoad, err)
	}
	columns, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	ix := &Index{records: make(map[string]Record)}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		rec := Record{
			Title: row[columns[columnTitle]],
			ID:    strings.TrimSpace(row[columns[columnID]]),
		}
		if textutil.NormalizeTitle(rec.Title) == "" {
			ix.skipped++
			continue
		}
		day, ok := artifact.PublishedDay(row[columns[columnPublished]])
		if !ok {
			return nil, fmt.Errorf("%w: line %d: invalid published_date %q", ErrLoad, line, row[columns[columnPublished]])
		}
		rec.PublishedDate = day
		ix.add(rec)
	}
	return ix, nil
}

func locateColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, 3)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	var missing []string
	for _, required := range []string{columnTitle, columnPublished, columnID} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", ErrLoad, strings.Join(missing, ", "))
	}
	return columns, nil
}

// LookupExact returns the record whose normalized title equals the normalized
// form of title.
func (ix *Index) LookupExact(title string) (Record, bool) {
	if ix == nil {
		return Record{}, false
	}
	rec, ok := ix.records[textutil.NormalizeTitle(title)]
	return rec, ok
}

// Titles returns the normalized titles in first-seen order.
func (ix *Index) Titles() []string {
	if ix == nil {
		return nil
	}
	out := make([]string, len(ix.titles))
	copy(out, ix.titles)
	return out
}

// Len returns the number of distinct titles.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.titles)
}

// Skipped returns how many rows were ignored because their title was empty.
func (ix *Index) Skipped() int {
	if ix == nil {
		return 0
	}
	return ix.skipped
}
