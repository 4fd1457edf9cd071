package logger

import (
	"context"
	"io"
	"log/slog"
)

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
	level  LogLevel
}

// NewSlogLogger wraps l. Filtering happens both here and in l's handler.
func NewSlogLogger(l *slog.Logger, level LogLevel) Logger {
	return &SlogLogger{logger: l, level: level}
}

// NewJSONLogger returns a slog JSON logger writing to w.
func NewJSONLogger(w io.Writer, level LogLevel) Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: toSlogLevel(level)})
	return NewSlogLogger(slog.New(h), level)
}

func (s *SlogLogger) LogMode(level LogLevel) Logger {
	return &SlogLogger{logger: s.logger, level: level}
}

func (s *SlogLogger) Info(msg string, args ...any) {
	s.log(Info, msg, args...)
}

func (s *SlogLogger) Warn(msg string, args ...any) {
	s.log(Warn, msg, args...)
}

func (s *SlogLogger) Error(msg string, args ...any) {
	s.log(Error, msg, args...)
}

func (s *SlogLogger) Debug(msg string, args ...any) {
	s.log(Debug, msg, args...)
}

func (s *SlogLogger) log(level LogLevel, msg string, args ...any) {
	if s.level < level {
		return
	}
	s.logger.Log(context.Background(), toSlogLevel(level), msg, args...)
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case Debug:
		return slog.LevelDebug
	case Warn:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	case Silent:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}
