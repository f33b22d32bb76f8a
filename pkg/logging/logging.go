// Package logging is a small key/value facade over zap's sugared logger.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by Options.Format
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options control how New builds the logger
type Options struct {
	Level   string // debug, info, warn, error; default info
	Format  string // json or console; default json
	Service string // attached to every entry as "service" when set
}

// Logger is a key/value logger backed by zap's sugared logger
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a logger from opts. Console output is colored and human-oriented;
// JSON output uses zap's production encoder with ISO 8601 timestamps.
func New(opts Options) *Logger {
	var cfg zap.Config
	if strings.EqualFold(strings.TrimSpace(opts.Format), FormatConsole) {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))

	z, err := cfg.Build()
	if err != nil {
		z, _ = zap.NewProduction()
	}
	if opts.Service != "" {
		z = z.With(zap.String("service", opts.Service))
	}

	return &Logger{s: z.Sugar()}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger
func FromZap(z *zap.Logger) *Logger {
	return &Logger{s: z.Sugar()}
}

func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{s: l.s.With(keyvals...)}
}

// Named adds a sub-scope to the logger name, e.g. "storage.neo4j"
func (l *Logger) Named(name string) *Logger {
	return &Logger{s: l.s.Named(name)}
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.s.Debugw(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.s.Infow(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.s.Warnw(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...any) { l.s.Errorw(msg, keyvals...) }

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.s.Sync()
}

// ParseLevel maps LOG_LEVEL values to zap levels, defaulting to info
func ParseLevel(level string) zapcore.Level {
	var lvl zapcore.Level
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "warning":
		return zapcore.WarnLevel
	case "":
		return zapcore.InfoLevel
	default:
		if err := lvl.UnmarshalText([]byte(l)); err != nil {
			return zapcore.InfoLevel
		}
		return lvl
	}
}
