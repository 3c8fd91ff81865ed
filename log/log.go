// Copyright 2024 The go-equa Authors
// Structured Leveled Logging

// Package log provides geth-style leveled, structured logging on top of the
// standard library's slog, with a colorized terminal handler and an
// optional rotating file handler.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Lvl mirrors geth's glog verbosity levels.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) slogLevel() slog.Level {
	switch l {
	case LvlCrit:
		return slog.LevelError + 4
	case LvlError:
		return slog.LevelError
	case LvlWarn:
		return slog.LevelWarn
	case LvlInfo:
		return slog.LevelInfo
	case LvlDebug:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}

// Logger is the key-valued structured logging interface used throughout the
// module: log.Info("message", "key", value, ...).
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type logger struct {
	handler slog.Handler
	attrs   []any
}

// NewLogger wraps an slog.Handler as a Logger.
func NewLogger(h slog.Handler) Logger {
	return &logger{handler: h}
}

func (l *logger) log(level slog.Level, msg string, ctx []any) {
	if !l.handler.Enabled(context.Background(), level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.Add(append(append([]any{}, l.attrs...), ctx...)...)
	_ = l.handler.Handle(context.Background(), r)
}

func (l *logger) Trace(msg string, ctx ...any) { l.log(slog.LevelDebug-4, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.log(slog.LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.log(slog.LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.log(slog.LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.log(slog.LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any) {
	l.log(slog.LevelError+4, msg, ctx)
	os.Exit(1)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{handler: l.handler, attrs: append(append([]any{}, l.attrs...), ctx...)}
}

var defaultLogger atomic.Pointer[logger]

func init() {
	defaultLogger.Store(&logger{handler: NewTerminalHandler(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))})
}

// SetDefault installs l as the package-level logger used by Trace/Debug/...
func SetDefault(l Logger) {
	if lg, ok := l.(*logger); ok {
		defaultLogger.Store(lg)
	}
}

func Trace(msg string, ctx ...any) { defaultLogger.Load().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { defaultLogger.Load().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { defaultLogger.Load().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { defaultLogger.Load().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { defaultLogger.Load().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { defaultLogger.Load().Crit(msg, ctx...) }

// terminalHandler renders records as "LVL[time] msg  k=v k=v" with level
// coloring, the way geth's term handler does for interactive terminals.
type terminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	useColor bool
}

// NewTerminalHandler builds a handler writing to wr; when useColor is true
// (the teacher's main.go passes true unconditionally for os.Stderr, relying
// on go-isatty upstream to gate it) level labels are colorized via
// mattn/go-colorable's ANSI-safe writer.
func NewTerminalHandler(wr io.Writer, useColor bool) slog.Handler {
	out := wr
	if useColor {
		if f, ok := wr.(*os.File); ok {
			out = colorable.NewColorable(f)
		}
	}
	return &terminalHandler{wr: out, useColor: useColor}
}

func (h *terminalHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	label, c := levelLabel(r.Level)
	if h.useColor {
		label = c.Sprint(label)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[%s] %s", label, r.Time.Format("01-02|15:04:05.000"), r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	sb.WriteByte('\n')
	_, err := io.WriteString(h.wr, sb.String())
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *terminalHandler) WithGroup(name string) slog.Handler       { return h }

func levelLabel(lvl slog.Level) (string, *color.Color) {
	switch {
	case lvl >= slog.LevelError+4:
		return "CRIT ", color.New(color.FgMagenta, color.Bold)
	case lvl >= slog.LevelError:
		return "ERROR", color.New(color.FgRed)
	case lvl >= slog.LevelWarn:
		return "WARN ", color.New(color.FgYellow)
	case lvl >= slog.LevelInfo:
		return "INFO ", color.New(color.FgGreen)
	case lvl >= slog.LevelDebug:
		return "DEBUG", color.New(color.FgCyan)
	default:
		return "TRACE", color.New(color.FgWhite)
	}
}

// GlogHandler wraps another handler and gates it by a runtime-adjustable
// verbosity, mirroring geth's glog.GlogHandler used in
// cmd/equa-beacon-engine/main.go.
type GlogHandler struct {
	wrapped slog.Handler
	level   *atomic.Int32
}

// NewGlogHandler wraps h with a verbosity gate, defaulting to LvlInfo.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	g := &GlogHandler{wrapped: h, level: new(atomic.Int32)}
	g.level.Store(int32(LvlInfo))
	return g
}

// Verbosity sets the minimum level that will be forwarded to the wrapped
// handler.
func (g *GlogHandler) Verbosity(lvl Lvl) { g.level.Store(int32(lvl)) }

func (g *GlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= Lvl(g.level.Load()).slogLevel()
}

func (g *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if !g.Enabled(ctx, r.Level) {
		return nil
	}
	return g.wrapped.Handle(ctx, r)
}

func (g *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &GlogHandler{wrapped: g.wrapped.WithAttrs(attrs), level: g.level}
}

func (g *GlogHandler) WithGroup(name string) slog.Handler {
	return &GlogHandler{wrapped: g.wrapped.WithGroup(name), level: g.level}
}

// NewFileHandler returns a handler that writes plain slog text records into
// a size/age-rotated file at path, for long-running casper-inspect daemons
// where a terminal handler isn't appropriate.
func NewFileHandler(path string, maxSizeMB, maxBackups, maxAgeDays int) slog.Handler {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	return slog.NewTextHandler(rotator, &slog.HandlerOptions{Level: slog.LevelDebug})
}
