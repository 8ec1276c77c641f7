package logx

import (
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *Logger
)

func init() {
	opts := []Option{}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		if level, err := ParseLevel(logLevel); err == nil {
			opts = append(opts, WithLevel(level))
		}
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		opts = append(opts, WithFormat(parseFormat(format)))
	}

	// Caller info can be disabled with LOG_CALLER=false
	if callerEnv := os.Getenv("LOG_CALLER"); callerEnv != "" {
		opts = append(opts, WithCaller(strings.ToLower(callerEnv) != "false"))
	}

	defaultLogger = New(opts...)
}

// Configure replaces the global logger; level and format use the LOG_LEVEL / LOG_FORMAT syntax
func Configure(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	SetLogger(New(WithLevel(lvl), WithFormat(parseFormat(format))))
	return nil
}

// SetLogger replaces the global logger
func SetLogger(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetLevel sets the global log level
func SetLevel(level Level) {
	GetLogger().SetLevel(level)
}

// SetOutput rebuilds the global logger writing to w, keeping level and format
func SetOutput(w io.Writer) {
	current := GetLogger()
	l := New(WithOutput(w), WithFormat(current.format), WithCaller(current.caller))
	l.level = current.level
	l.build()
	SetLogger(l)
}

// Global logging functions
func Debug(msg string, args ...any) {
	GetLogger().sugar.Debugf(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().sugar.Infof(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().sugar.Warnf(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().sugar.Errorf(msg, args...)
}

func Fatal(msg string, args ...any) {
	l := GetLogger()
	l.sugar.Errorf(msg, args...)
	_ = l.sugar.Sync()
	os.Exit(1)
}

// IsLevelEnabled checks if a level is enabled globally
func IsLevelEnabled(level Level) bool {
	return GetLogger().IsLevelEnabled(level)
}

// SetFormat rebuilds the global logger with a new output format ("json" or "console")
func SetFormat(format string) {
	current := GetLogger()
	l := New(WithOutput(current.out), WithFormat(parseFormat(format)), WithCaller(current.caller))
	l.level = current.level
	l.build()
	SetLogger(l)
}
