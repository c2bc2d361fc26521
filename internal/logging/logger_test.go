package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stagehand/internal/config"
	"stagehand/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("moved artifact", logging.String(logging.FieldComponent, "reconciler"), logging.String(logging.FieldPath, "/tree/a.mp3"))

	content := readLog(t, logPath)
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if !strings.Contains(content, "INFO [reconciler] – moved artifact") {
		t.Fatalf("unexpected header: %q", content)
	}
	if !strings.Contains(content, "- Path: /tree/a.mp3") {
		t.Fatalf("expected path field, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")
	if content := readLog(t, logPath); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestAutoFormatWritesJSONToFiles(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "auto.log")
	logger, err := logging.New(logging.Options{Format: "auto", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("pass finished", logging.Int("moved", 2))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &record); err != nil {
		t.Fatalf("expected JSON record: %v", err)
	}
	if record["msg"] != "pass finished" || record["level"] != "info" {
		t.Fatalf("unexpected record %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestFilePathReceivesJSONCopy(t *testing.T) {
	dir := t.TempDir()
	consolePath := filepath.Join(dir, "console.log")
	filePath := filepath.Join(dir, "nested", "stagehand.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{consolePath}, FilePath: filePath})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("disk nearly full")

	if !strings.Contains(readLog(t, consolePath), "WARN") {
		t.Fatal("expected console output")
	}
	if !strings.Contains(readLog(t, filePath), `"level":"warn"`) {
		t.Fatal("expected JSON copy in log file")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Logging.Format = "json"
	cfg.Logging.File = true

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")
	if !strings.Contains(readLog(t, cfg.LogPath()), "hello") {
		t.Fatal("expected record in state_dir log file")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	base, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithPhase(logging.WithRunID(context.Background(), "run-123"), "reconcile")
	logging.WithContext(ctx, base).Info("contextual log")

	content := readLog(t, logPath)
	for _, want := range []string{`"run_id":"run-123"`, `"phase":"reconcile"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in %s", want, content)
		}
	}
	if _, ok := logging.RunIDFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no run id")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "move failed", "artifact_move_failed",
		logging.Error(errors.New("permission denied")),
		logging.String(logging.FieldImpact, "artifact left in place"),
	)
	content := readLog(t, logPath)
	for _, want := range []string{`"event_type":"artifact_move_failed"`, `"error_hint":"check logs for details"`, `"impact":"artifact left in place"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in %s", want, content)
		}
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}
