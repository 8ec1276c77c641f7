package logx

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// OutputFormat defines the log output format
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// Logger is a printf-style leveled logger backed by zap
type Logger struct {
	level  zap.AtomicLevel
	out    zapcore.WriteSyncer
	format OutputFormat
	caller bool
	fields []any
	sugar  *zap.SugaredLogger
}

// Option configures a Logger
type Option func(*Logger)

// WithLevel sets the minimum level
func WithLevel(level Level) Option {
	return func(l *Logger) { l.level.SetLevel(level.zapLevel()) }
}

// WithOutput sets the output destination
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = zapcore.AddSync(w) }
}

// WithFormat sets the output format
func WithFormat(format OutputFormat) Option {
	return func(l *Logger) { l.format = format }
}

// WithCaller enables or disables caller information
func WithCaller(show bool) Option {
	return func(l *Logger) { l.caller = show }
}

// New creates a new logger; defaults are INFO, console format, stdout
func New(opts ...Option) *Logger {
	l := &Logger{
		level:  zap.NewAtomicLevelAt(zapcore.InfoLevel),
		out:    zapcore.AddSync(os.Stdout),
		format: FormatConsole,
		caller: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.build()
	return l
}

func (l *Logger) build() {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if l.format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, l.out, l.level)
	base := zap.New(core, zap.WithCaller(l.caller))
	l.sugar = base.WithOptions(zap.AddCallerSkip(1)).Sugar().With(l.fields...)
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

// IsLevelEnabled checks if a level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	return level != OffLevel && l.level.Enabled(level.zapLevel())
}

// With returns a child logger that attaches the given key/value pairs to every entry
func (l *Logger) With(keysAndValues ...any) *Logger {
	child := &Logger{
		level:  l.level,
		out:    l.out,
		format: l.format,
		caller: l.caller,
		fields: append(append([]any{}, l.fields...), keysAndValues...),
	}
	child.build()
	return child
}

// Zap exposes the underlying zap logger for libraries that want one
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugf(msg, args...)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infof(msg, args...)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnf(msg, args...)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorf(msg, args...)
}

// Fatal logs a message at error level and exits
func (l *Logger) Fatal(msg string, args ...any) {
	l.sugar.Errorf(msg, args...)
	_ = l.sugar.Sync()
	os.Exit(1)
}

func parseFormat(s string) OutputFormat {
	if strings.ToLower(strings.TrimSpace(s)) == "json" {
		return FormatJSON
	}
	return FormatConsole
}
