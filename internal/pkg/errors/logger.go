package errors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes leveled console logs to stderr through zap.
// Non-verbose mode shows warnings and errors; verbose mode shows everything.
// Formatted messages are passed through SanitizeErrorMessage.
type Logger struct {
	mu      sync.Mutex
	level   zap.AtomicLevel
	sugar   *zap.SugaredLogger
	verbose bool
}

var defaultLogger = NewLogger(os.Stderr, false)

// NewLogger creates a logger writing to output.
func NewLogger(output io.Writer, verbose bool) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	return &Logger{
		level:   level,
		sugar:   zap.New(newConsoleCore(output, level)).Sugar(),
		verbose: verbose,
	}
}

func newConsoleCore(output io.Writer, level zap.AtomicLevel) zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = ""
	cfg.NameKey = ""
	cfg.StacktraceKey = ""
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(output), level)
}

// SetVerbose enables or disables verbose logging on the default logger.
func SetVerbose(verbose bool) {
	defaultLogger.setVerbose(verbose)
}

// IsVerbose returns whether verbose logging is enabled.
func IsVerbose() bool {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return defaultLogger.verbose
}

// SetOutput redirects the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.sugar = zap.New(newConsoleCore(w, defaultLogger.level)).Sugar()
}

func (l *Logger) setVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
	if verbose {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(zapcore.WarnLevel)
	}
}

func (l *Logger) logger() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sugar
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger().Error(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger().Warn(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger().Info(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger().Debug(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// LogAPIRequest logs an outgoing provider request.
func (l *Logger) LogAPIRequest(provider, endpoint, model string, promptLength int) {
	l.logger().Debugw("API request",
		"provider", provider,
		"endpoint", endpoint,
		"model", model,
		"prompt_length", promptLength,
	)
}

// LogAPIResponse logs a provider response.
func (l *Logger) LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	l.logger().Debugw("API response",
		"provider", provider,
		"status", statusCode,
		"response_length", responseLength,
		"duration", duration,
	)
}

// LogGitCommand logs a git invocation.
func (l *Logger) LogGitCommand(args []string, duration time.Duration, err error) {
	if err != nil {
		l.logger().Debugw("git command failed", "args", strings.Join(args, " "), "duration", duration, "error", SanitizeErrorMessage(err.Error()))
		return
	}
	l.logger().Debugw("git command", "args", strings.Join(args, " "), "duration", duration)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func LogAPIRequest(provider, endpoint, model string, promptLength int) {
	defaultLogger.LogAPIRequest(provider, endpoint, model, promptLength)
}

// LogAPIResponse logs an API response in verbose mode.
func LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	defaultLogger.LogAPIResponse(provider, statusCode, responseLength, duration)
}

// LogGitCommand logs a git invocation in verbose mode.
func LogGitCommand(args []string, duration time.Duration, err error) {
	defaultLogger.LogGitCommand(args, duration, err)
}

// Sync flushes buffered log entries.
func Sync() {
	if err := defaultLogger.logger().Sync(); err != nil && IsVerbose() {
		fmt.Fprintln(os.Stderr, "log sync:", err)
	}
}
