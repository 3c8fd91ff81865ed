// Copyright 2024 The go-equa Authors
// Structured Leveled Logging Tests

package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTerminalHandlerFormatsLevelTimeAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewTerminalHandler(&buf, false)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	r.Add("key", "value")
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Fatalf("expected the INFO level label, got %q", out)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "key=value") {
		t.Fatalf("expected message and attrs in output, got %q", out)
	}
}

func TestGlogHandlerGatesByVerbosity(t *testing.T) {
	var buf bytes.Buffer
	g := NewGlogHandler(NewTerminalHandler(&buf, false))
	g.Verbosity(LvlWarn)

	debugRecord := slog.NewRecord(time.Now(), slog.LevelDebug, "debug msg", 0)
	if g.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug must be gated out once verbosity is raised to LvlWarn")
	}
	if err := g.Handle(context.Background(), debugRecord); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("a gated record must never reach the wrapped handler, got %q", buf.String())
	}

	warnRecord := slog.NewRecord(time.Now(), slog.LevelWarn, "warn msg", 0)
	if err := g.Handle(context.Background(), warnRecord); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "warn msg") {
		t.Fatalf("expected warn msg to reach the wrapped handler, got %q", buf.String())
	}
}

// TestGlogHandlerWithAttrsSharesVerbosityLevel pins the fix for a prior
// regression where level was a plain atomic.Int32 field copied by value in
// WithAttrs/WithGroup, silently decoupling a derived handler's verbosity
// gate from the parent's.
func TestGlogHandlerWithAttrsSharesVerbosityLevel(t *testing.T) {
	g := NewGlogHandler(NewTerminalHandler(io.Discard, false))
	child, ok := g.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*GlogHandler)
	if !ok {
		t.Fatalf("WithAttrs must return a *GlogHandler")
	}

	g.Verbosity(LvlCrit)
	if child.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("a handler derived via WithAttrs must observe verbosity changes made through the parent")
	}
}
