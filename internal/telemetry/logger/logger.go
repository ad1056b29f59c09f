package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging interface the rest of the codebase depends on.
// It is a thin veneer over slog so call sites stay mockable in tests.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config selects level, format, and destination for a new logger.
type Config struct {
	// Level is the minimum level: debug, info, warn, or error.
	Level string
	// Format is json or text. Anything else falls back to json.
	Format string
	// Output receives the entries. Nil means os.Stderr.
	Output io.Writer
	// AddSource annotates entries with the caller's file and line.
	AddSource bool
}

// DefaultConfig is info-level JSON on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// sharedLevel backs every logger built by New so SetLevel takes effect
// process-wide, including on loggers created before the call.
var sharedLevel = new(slog.LevelVar)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func parseLevel(name string) slog.Level {
	if lv, ok := levelNames[strings.ToLower(name)]; ok {
		return lv
	}
	return slog.LevelInfo
}

// SetLevel adjusts the process-wide level at runtime. The config
// watcher calls this when the file's log level changes.
func SetLevel(name string) {
	sharedLevel.Set(parseLevel(name))
}

// GetLevel reports the current process-wide level name.
func GetLevel() string {
	switch sharedLevel.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

func (cfg Config) handler() slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     sharedLevel,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}
	if f := strings.ToLower(cfg.Format); f == "text" || f == "console" {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}

// New builds a Logger from cfg. The level becomes the process-wide
// level, so the last New (or SetLevel) wins.
func New(cfg Config) (Logger, error) {
	sharedLevel.Set(parseLevel(cfg.Level))
	return &entryLogger{sl: slog.New(cfg.handler()), ctx: context.Background()}, nil
}

// entryLogger carries the slog handler plus the context its entries
// are emitted under, so WithContext is a cheap value copy.
type entryLogger struct {
	sl  *slog.Logger
	ctx context.Context
}

func (l *entryLogger) Debug(msg string, args ...any) { l.sl.DebugContext(l.ctx, msg, args...) }
func (l *entryLogger) Info(msg string, args ...any)  { l.sl.InfoContext(l.ctx, msg, args...) }
func (l *entryLogger) Warn(msg string, args ...any)  { l.sl.WarnContext(l.ctx, msg, args...) }
func (l *entryLogger) Error(msg string, args ...any) { l.sl.ErrorContext(l.ctx, msg, args...) }

func (l *entryLogger) With(args ...any) Logger {
	return &entryLogger{sl: l.sl.With(args...), ctx: l.ctx}
}

func (l *entryLogger) WithContext(ctx context.Context) Logger {
	return &entryLogger{sl: l.sl, ctx: ctx}
}

var defaultLogger atomic.Pointer[entryLogger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l.(*entryLogger))
}

// SetDefault installs l as the process default returned by Default and
// used by the package-level logging functions.
func SetDefault(l Logger) {
	if el, ok := l.(*entryLogger); ok {
		defaultLogger.Store(el)
	}
}

// Default returns the process default logger.
func Default() Logger {
	return defaultLogger.Load()
}

// Debug logs msg at debug level on the default logger.
func Debug(msg string, args ...any) { defaultLogger.Load().Debug(msg, args...) }

// Info logs msg at info level on the default logger.
func Info(msg string, args ...any) { defaultLogger.Load().Info(msg, args...) }

// Warn logs msg at warn level on the default logger.
func Warn(msg string, args ...any) { defaultLogger.Load().Warn(msg, args...) }

// Error logs msg at error level on the default logger.
func Error(msg string, args ...any) { defaultLogger.Load().Error(msg, args...) }
