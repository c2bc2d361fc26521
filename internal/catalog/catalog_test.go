package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stagehand/internal/catalog"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalog(t, strings.Join([]string{
		"id,title,published_date,url",
		`abc,Episode  One,2023-01-02T10:00:00Z,https://example.com/1`,
		`def,"The ""MEV"" Panel",2021-05-06,https://example.com/2`,
		`ghi,   ,2021-05-06,https://example.com/3`,
	}, "\n"))

	ix, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ix.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ix.Len())
	}
	if ix.Skipped() != 1 {
		t.Fatalf("Skipped = %d, want 1", ix.Skipped())
	}
	rec, ok := ix.LookupExact("Episode One")
	if !ok {
		t.Fatal("expected Episode One to be found")
	}
	if rec.PublishedDate != "2023-01-02" || rec.ID != "abc" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if _, ok := ix.LookupExact(`The "MEV"   Panel`); !ok {
		t.Fatal("expected lookup to normalize its argument")
	}
	titles := ix.Titles()
	if len(titles) != 2 || titles[0] != "Episode One" || titles[1] != "The MEV Panel" {
		t.Fatalf("Titles = %v", titles)
	}
}

func TestLoadLastWriteWins(t *testing.T) {
	path := writeCatalog(t, "title,published_date,id\nA Talk,2020-01-01,first\nB Talk,2020-02-02,other\nA  Talk,2020-03-03,second\n")
	ix, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec, ok := ix.LookupExact("A Talk")
	if !ok || rec.ID != "second" || rec.PublishedDate != "2020-03-03" {
		t.Fatalf("LookupExact = %+v, %v; want second record", rec, ok)
	}
	titles := ix.Titles()
	if len(titles) != 2 || titles[0] != "A Talk" {
		t.Fatalf("Titles = %v, want first-seen order", titles)
	}
}

func TestLoadHeaderCaseAndBOM(t *testing.T) {
	path := writeCatalog(t, "\uFEFFTitle, Published_Date ,ID\nHello,2022-02-02,x\n")
	ix, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := ix.LookupExact("Hello"); !ok {
		t.Fatal("expected Hello to be loaded")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"missing column", "title,id\nA,1\n"},
		{"bad date", "title,published_date,id\nA,yesterday,1\n"},
		{"ragged row", "title,published_date,id\nA,2020-01-01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Load(writeCatalog(t, tt.content))
			if !errors.Is(err, catalog.ErrLoad) {
				t.Fatalf("Load error = %v, want ErrLoad", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := catalog.Load(filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, catalog.ErrLoad) {
		t.Fatalf("Load error = %v, want ErrLoad", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
	if _, err := catalog.Load("  "); !errors.Is(err, catalog.ErrLoad) {
		t.Fatalf("blank path error = %v, want ErrLoad", err)
	}
}

func TestNilIndex(t *testing.T) {
	var ix *catalog.Index
	if ix.Len() != 0 || ix.Skipped() != 0 || ix.Titles() != nil {
		t.Fatal("nil index should be empty")
	}
	if _, ok := ix.LookupExact("x"); ok {
		t.Fatal("nil index lookup should miss")
	}
}

func TestNewIndex(t *testing.T) {
	ix := catalog.NewIndex([]catalog.Record{
		{Title: "One", PublishedDate: "2020-01-01", ID: "1"},
		{Title: `""`, PublishedDate: "2020-01-01", ID: "2"},
	})
	if ix.Len() != 1 || ix.Skipped() != 1 {
		t.Fatalf("Len=%d Skipped=%d", ix.Len(), ix.Skipped())
	}
}
