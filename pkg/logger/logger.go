// Package logger provides the leveled, key-value logging interface used by
// the Feishu notifier. Any structured backend (std log, slog) can sit behind it.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// Silent suppresses all log output.
	Silent LogLevel = iota + 1
	// Error only logs error messages.
	Error
	// Warn logs warnings and errors.
	Warn
	// Info logs informational messages, warnings, and errors.
	Info
	// Debug logs all messages including debug information.
	Debug
)

// String returns the lower-case name of the level.
func (l LogLevel) String() string {
	switch l {
	case Silent:
		return "silent"
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name into a LogLevel. Unknown names yield Info.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silent", "off", "none":
		return Silent
	case "error":
		return Error
	case "warn", "warning":
		return Warn
	case "debug":
		return Debug
	default:
		return Info
	}
}

// Logger is the interface that wraps the basic logging methods.
// Arguments after msg are alternating key/value pairs.
type Logger interface {
	// LogMode returns a copy of the logger using the given level.
	LogMode(level LogLevel) Logger
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// StandardLogger writes "prefix [LEVEL] msg key=value" lines through a *log.Logger.
type StandardLogger struct {
	logger *log.Logger
	level  LogLevel
	prefix string
}

// NewStandardLogger creates a logger that writes through writer.
func NewStandardLogger(writer *log.Logger, level LogLevel, prefix string) Logger {
	return &StandardLogger{
		logger: writer,
		level:  level,
		prefix: prefix,
	}
}

// LogMode sets the log level and returns a new logger instance.
func (l *StandardLogger) LogMode(level LogLevel) Logger {
	newLogger := *l
	newLogger.level = level
	return &newLogger
}

func (l *StandardLogger) Info(msg string, args ...any) {
	l.print(Info, "INFO", msg, args...)
}

func (l *StandardLogger) Warn(msg string, args ...any) {
	l.print(Warn, "WARN", msg, args...)
}

func (l *StandardLogger) Error(msg string, args ...any) {
	l.print(Error, "ERROR", msg, args...)
}

func (l *StandardLogger) Debug(msg string, args ...any) {
	l.print(Debug, "DEBUG", msg, args...)
}

func (l *StandardLogger) print(level LogLevel, tag, msg string, args ...any) {
	if l.level < level {
		return
	}
	l.logger.Print(l.formatLog(tag, msg, args...))
}

func (l *StandardLogger) formatLog(level, msg string, args ...any) string {
	var b strings.Builder
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	for i := 0; i < len(args); i += 2 {
		var val any = "(no value)"
		if i+1 < len(args) {
			val = args[i+1]
		}
		fmt.Fprintf(&b, " %v=%v", args[i], val)
	}
	return b.String()
}

type discardLogger struct{}

func (d *discardLogger) LogMode(LogLevel) Logger { return d }
func (d *discardLogger) Info(string, ...any)     {}
func (d *discardLogger) Warn(string, ...any)     {}
func (d *discardLogger) Error(string, ...any)    {}
func (d *discardLogger) Debug(string, ...any)    {}

// Discard is a logger that discards all output.
var Discard Logger = &discardLogger{}

// New returns a default logger that writes to stderr at Info level.
func New() Logger {
	return NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags), Info, "[feishu]")
}
