package sitebot

import (
	"context"
	"time"
)

// EventName identifies an analytics event.
type EventName string

// Widget analytics events.
const (
	EventBotOpen          EventName = "bot_open"
	EventMessageSent      EventName = "message_sent"
	EventReplyStream      EventName = "reply_stream"
	EventCTAClick         EventName = "cta_click"
	EventHandoffInitiated EventName = "handoff_initiated"
)

// Event is one analytics observation emitted by the chat widget.
type Event struct {
	Name      EventName
	SessionID string
	Time      time.Time

	// Duration is set for timed events such as EventReplyStream.
	Duration time.Duration

	// Attrs holds event-specific properties, e.g. "length" or "reason".
	Attrs map[string]string
}

// EventSink receives analytics events. Emission never fails the caller.
type EventSink interface {
	Emit(ctx context.Context, e Event)
}

// Consent reports whether the visitor permitted analytics.
type Consent interface {
	Granted() bool
}

// ConsentFunc adapts a function to Consent.
type ConsentFunc func() bool

// Granted calls f.
func (f ConsentFunc) Granted() bool { return f() }

// Ensure ConsentSink implements EventSink at compile time.
var _ EventSink = (*ConsentSink)(nil)

// ConsentSink forwards events to Sink only while Consent is granted.
type ConsentSink struct {
	Sink    EventSink
	Consent Consent
}

// NewConsentSink returns a sink gated by consent.
func NewConsentSink(sink EventSink, consent Consent) *ConsentSink {
	return &ConsentSink{Sink: sink, Consent: consent}
}

// Emit forwards e when consent is granted and drops it otherwise.
func (s *ConsentSink) Emit(ctx context.Context, e Event) {
	if s.Sink == nil || s.Consent == nil || !s.Consent.Granted() {
		return
	}
	s.Sink.Emit(ctx, e)
}

// NopEventSink discards all events.
type NopEventSink struct{}

// Emit does nothing.
func (NopEventSink) Emit(context.Context, Event) {}
