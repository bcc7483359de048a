package mock

import (
	"context"

	"github.com/ohmanagement/sitebot"
)

var _ sitebot.EventSink = (*EventSink)(nil)

// EventSink is a mock implementation of sitebot.EventSink.
type EventSink struct {
	EmitFn func(ctx context.Context, e sitebot.Event)
}

func (s *EventSink) Emit(ctx context.Context, e sitebot.Event) {
	s.EmitFn(ctx, e)
}
