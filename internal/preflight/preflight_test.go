package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stagehand/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(f, []byte("title,published_date,id\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableFile("catalog", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckReadableFile("catalog", filepath.Dir(f)); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckReadableFile("catalog", f+".missing"); result.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog([3]string{"Episode One", "2023-01-02", "ep1"}), testsupport.WithMetricsTextfile())
	results := RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("Err = %v", err)
	}
}

func TestRunAllReportsMissingCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	err := Err(RunAll(context.Background(), cfg))
	if err == nil || !strings.Contains(err.Error(), "Catalog") {
		t.Fatalf("Err = %v, want catalog failure", err)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}
