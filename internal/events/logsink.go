package events

import (
	"context"

	"go.uber.org/zap"
)

// LogSink is an implementation of Sink that writes every event to the log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a new logging sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) RecordMappingCreated(_ context.Context, event *MappingCreatedEvent) error {
	s.logger.Info("mapping created",
		zap.Int64("id", event.ID),
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

var _ Sink = (*LogSink)(nil)
