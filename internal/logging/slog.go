package logging

import (
	"context"
	"io"
	"log/slog"
)

// slogLogger backs the text and json formats.
type slogLogger struct {
	l *slog.Logger
}

// newSlogLogger logs through h. A nil h discards every record.
func newSlogLogger(h slog.Handler) *slogLogger {
	if h == nil {
		h = slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})
	}
	return &slogLogger{l: slog.New(h)}
}

func (s *slogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *slogLogger) With(args ...any) Logger {
	if len(args) == 0 {
		return s
	}
	return &slogLogger{l: s.l.With(args...)}
}
