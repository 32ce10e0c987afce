package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const LevelTrace = slog.LevelDebug - 4

// ParseLevel accepts trace, debug, info, warn or warning, and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", s)
	}
}

// New builds the process logger. json selects the JSON handler used when
// output is collected by a device log.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NativeLogger lets Swift and Kotlin code write into the Go log through
// gomobile, which cannot bind *slog.Logger.
type NativeLogger struct {
	ctx    context.Context
	logger *slog.Logger
}

func NewNative(logger *slog.Logger) *NativeLogger {
	if logger == nil {
		logger = New(os.Stdout, slog.LevelDebug, true)
	}
	return &NativeLogger{
		ctx:    context.Background(),
		logger: logger.With("source", "native"),
	}
}

func (l *NativeLogger) Print(message string) {
	l.logger.Log(l.ctx, slog.LevelInfo, message)
}

func (l *NativeLogger) Trace(message string) {
	l.logger.Log(l.ctx, LevelTrace, message)
}

func (l *NativeLogger) Debug(message string) {
	l.logger.Debug(message)
}

func (l *NativeLogger) Info(message string) {
	l.logger.Info(message)
}

func (l *NativeLogger) Warning(message string) {
	l.logger.Warn(message)
}

func (l *NativeLogger) Error(message string) {
	l.logger.Error(message)
}
