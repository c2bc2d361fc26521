package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var infoBuf, warnBuf bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should not be enabled")
	}
	logger := slog.New(h).With(slog.String("key", "value"))
	logger.Info("info message")
	if infoBuf.Len() == 0 {
		t.Fatal("expected info output")
	}
	if warnBuf.Len() != 0 {
		t.Fatal("warn handler must not receive info records")
	}
	logger.Warn("warn message")
	if !bytes.Contains(warnBuf.Bytes(), []byte(`"key":"value"`)) {
		t.Fatalf("expected attrs to reach every handler, got %s", warnBuf.String())
	}
}
