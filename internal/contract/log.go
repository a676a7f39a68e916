package contract

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logger is the process-wide structured logger. It writes to stderr so that
// stdout stays clean for csv/json output.
var logger = NewLogger(os.Stderr, "warn")

// NewLogger creates a structured logger for the given writer and level.
func NewLogger(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           parseLevel(level),
		Prefix:          "greenplate",
		TimeFormat:      time.Kitchen,
		ReportTimestamp: true,
	})
}

// parseLevel converts a string level to log.Level.
func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// SetLogLevel changes the level of the process-wide logger.
func SetLogLevel(level string) {
	logger.SetLevel(parseLevel(level))
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *log.Logger) {
	logger = l
}

// Logger returns the process-wide logger.
func Logger() *log.Logger {
	return logger
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	logger.Warn(msg, "err", err)
}

// LogInfo logs an informational message with key-value pairs.
func LogInfo(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with key-value pairs.
func LogDebug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}
