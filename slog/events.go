package slog

import (
	"context"
	"log/slog"

	"github.com/ohmanagement/sitebot"
)

// Ensure LoggingEventSink implements sitebot.EventSink.
var _ sitebot.EventSink = (*LoggingEventSink)(nil)

// LoggingEventSink logs analytics events and forwards them to next when
// next is not nil.
type LoggingEventSink struct {
	next   sitebot.EventSink
	logger *slog.Logger
}

// NewLoggingEventSink creates a new LoggingEventSink.
func NewLoggingEventSink(next sitebot.EventSink, logger *slog.Logger) *LoggingEventSink {
	return &LoggingEventSink{next: next, logger: logger}
}

// Emit logs e at debug level and forwards it.
func (s *LoggingEventSink) Emit(ctx context.Context, e sitebot.Event) {
	attrs := []any{"event", string(e.Name), "session", e.SessionID}
	if e.Duration > 0 {
		attrs = append(attrs, "duration", e.Duration)
	}
	for k, v := range e.Attrs {
		attrs = append(attrs, k, v)
	}
	s.logger.Debug("analytics event", attrs...)

	if s.next != nil {
		s.next.Emit(ctx, e)
	}
}
