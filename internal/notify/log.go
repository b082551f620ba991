package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes notification events to the structured log. It is the default
// sink when no webhook is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink logging through the given logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit logs the event at Info level.
func (s *LogSink) Emit(ctx context.Context, event Event) error {
	s.logger.Info("notification",
		zap.String("kind", event.Kind),
		zap.String("title", event.Title),
		zap.String("message", event.Message),
		zap.String("department", event.Department),
		zap.String("priority", event.Priority),
		zap.Time("timestamp", event.Timestamp),
	)
	return nil
}
