// Package logger provides the editor's structured logging, mirroring the
// teacher's slog-based setup: a lazily-initialized package logger, a
// filterable handler, and short Printf-style wrappers so call sites stay
// terse.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const tagKey = "tag"

// Config controls logger initialization.
type Config struct {
	LogLevel    string   // "debug", "info", "warn", "error"
	LogFilePath string   // "" = default path, "-" = stderr
	DisabledTags []string

	level   slog.Leveler
	tagsOff map[string]struct{}
}

func (c *Config) process() {
	lvl := slog.LevelInfo
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	c.level = lvl

	c.tagsOff = make(map[string]struct{}, len(c.DisabledTags))
	for _, t := range c.DisabledTags {
		c.tagsOff[t] = struct{}{}
	}
}

var (
	defaultLogger *slog.Logger
	loggerConfig  *Config
	initOnce      sync.Once
)

// Init configures the package logger. Safe to call once; later calls are
// no-ops, matching the teacher's sync.Once pattern.
func Init(cfg Config) {
	initOnce.Do(func() {
		cfg.process()
		loggerConfig = &cfg

		var out io.Writer = io.Discard
		switch cfg.LogFilePath {
		case "-":
			out = os.Stderr
		case "":
			if usr, err := user.Current(); err == nil {
				dir := filepath.Join(usr.HomeDir, ".config", "glyph")
				if err := os.MkdirAll(dir, 0o755); err == nil {
					if f, err := os.OpenFile(filepath.Join(dir, "glyph.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
						out = f
					}
				}
			}
		default:
			if f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				out = f
			}
		}

		handler := slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: cfg.level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
				}
				return a
			},
		})
		defaultLogger = slog.New(&tagFilterHandler{next: handler, cfg: loggerConfig})
	})
}

func ensureInit() {
	initOnce.Do(func() {
		cfg := Config{LogLevel: "info"}
		cfg.process()
		loggerConfig = &cfg
		defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})
}

// tagFilterHandler drops records whose "tag" attribute is disabled.
type tagFilterHandler struct {
	next slog.Handler
	cfg  *Config
}

func (h *tagFilterHandler) Enabled(ctx context.Context, lvl slog.Level) bool { return h.next.Enabled(ctx, lvl) }
func (h *tagFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &tagFilterHandler{next: h.next.WithAttrs(attrs), cfg: h.cfg}
}
func (h *tagFilterHandler) WithGroup(name string) slog.Handler {
	return &tagFilterHandler{next: h.next.WithGroup(name), cfg: h.cfg}
}
func (h *tagFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	disabled := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			if _, off := h.cfg.tagsOff[a.Value.String()]; off {
				disabled = true
			}
		}
		return true
	})
	if disabled {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func logAt(level slog.Level, format string, args ...any) {
	ensureInit()
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	pc, _, _, _ := runtime.Caller(2)
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pc)
	_ = defaultLogger.Handler().Handle(context.Background(), r)
}

func logAtTag(level slog.Level, tag, format string, args ...any) {
	ensureInit()
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	pc, _, _, _ := runtime.Caller(2)
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pc)
	r.AddAttrs(slog.String(tagKey, tag))
	_ = defaultLogger.Handler().Handle(context.Background(), r)
}

func Debugf(format string, args ...any) { logAt(slog.LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logAt(slog.LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logAt(slog.LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logAt(slog.LevelError, format, args...) }

func DebugTagf(tag, format string, args ...any) { logAtTag(slog.LevelDebug, tag, format, args...) }
func WarnTagf(tag, format string, args ...any)  { logAtTag(slog.LevelWarn, tag, format, args...) }
