// Package logger provides basic logging functionalities.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines a simple interface for logging.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

// NewLogger creates a zap-backed Logger for the given level.
// loglevel could be "debug", "info", "warn", "error", "fatal"
func NewLogger(logLevel string) Logger {
	return NewZap(logLevel).Sugar()
}

// NewZap builds a console *zap.Logger writing info and below to stdout and
// errors to stderr. Components that take a *zap.Logger get theirs from here.
func NewZap(logLevel string) *zap.Logger {
	return newZapTo(logLevel, stdout, stderr)
}

// NewStderrZap builds a console *zap.Logger writing every level to stderr,
// for commands whose stdout is machine-read.
func NewStderrZap(logLevel string) *zap.Logger {
	return newZapTo(logLevel, stderr, stderr)
}

// Output sinks; tests replace them.
var (
	stdout zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
	stderr zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
)

func newZapTo(logLevel string, low, high zapcore.WriteSyncer) *zap.Logger {
	level := parseLevel(logLevel)

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(encCfg)

	lowEnabled := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l < zapcore.ErrorLevel
	})
	highEnabled := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, low, lowEnabled),
		zapcore.NewCore(enc, high, highEnabled),
	)
	return zap.New(core, zap.AddCaller())
}

func parseLevel(logLevel string) zapcore.Level {
	switch logLevel {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

var (
	mu  sync.RWMutex
	std = NewZap("info")
)

// SetGlobalLogLevel reconfigures the global std logger's level.
func SetGlobalLogLevel(logLevel string) {
	mu.Lock()
	defer mu.Unlock()
	_ = std.Sync()
	std = NewZap(logLevel)
}

// UseStderr reconfigures the global std logger to write every level to stderr.
func UseStderr(logLevel string) {
	mu.Lock()
	defer mu.Unlock()
	_ = std.Sync()
	std = NewStderrZap(logLevel)
}

// L returns the global *zap.Logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// Sync flushes the global logger. Call it before the process exits.
func Sync() {
	// stdout/stderr return EINVAL on fsync on some platforms.
	_ = L().Sync()
}

func sugar() *zap.SugaredLogger {
	return L().WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// Debug logs a debug message using the global std logger.
func Debug(args ...interface{}) {
	sugar().Debug(args...)
}

// Debugf logs a debug message with formatting.
func Debugf(format string, args ...interface{}) {
	sugar().Debugf(format, args...)
}

// Info logs an informational message using the global std logger.
func Info(args ...interface{}) {
	sugar().Info(args...)
}

// Infof logs an informational message with formatting.
func Infof(format string, args ...interface{}) {
	sugar().Infof(format, args...)
}

// Warn logs a warning.
func Warn(args ...interface{}) {
	sugar().Warn(args...)
}

// Warnf logs a warning with formatting.
func Warnf(format string, args ...interface{}) {
	sugar().Warnf(format, args...)
}

// Error logs an error message.
func Error(args ...interface{}) {
	sugar().Error(args...)
}

// Errorf logs an error message with formatting.
func Errorf(format string, args ...interface{}) {
	sugar().Errorf(format, args...)
}

// Fatal logs a fatal error message and exits.
func Fatal(args ...interface{}) {
	sugar().Fatal(args...)
}

// Fatalf logs a fatal error message with formatting and exits.
func Fatalf(format string, args ...interface{}) {
	sugar().Fatalf(format, args...)
}
