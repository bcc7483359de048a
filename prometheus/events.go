// Package prometheus exports widget analytics events as Prometheus metrics.
package prometheus

import (
	"context"

	"github.com/ohmanagement/sitebot"
	"github.com/prometheus/client_golang/prometheus"
)

// Ensure EventSink implements sitebot.EventSink at compile time.
var _ sitebot.EventSink = (*EventSink)(nil)

// EventSink counts events by name and observes reply durations.
type EventSink struct {
	events   *prometheus.CounterVec
	replies  prometheus.Histogram
	handoffs *prometheus.CounterVec
}

// NewEventSink creates an EventSink and registers its collectors with reg.
func NewEventSink(reg prometheus.Registerer) (*EventSink, error) {
	s := &EventSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitebot",
			Subsystem: "widget",
			Name:      "events_total",
			Help:      "Widget analytics events by name.",
		}, []string{"event"}),
		replies: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sitebot",
			Subsystem: "widget",
			Name:      "reply_duration_seconds",
			Help:      "Time from sending a message to a completed streamed reply.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		handoffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitebot",
			Subsystem: "widget",
			Name:      "handoffs_total",
			Help:      "Handoffs to the team by reason.",
		}, []string{"reason"}),
	}
	for _, c := range []prometheus.Collector{s.events, s.replies, s.handoffs} {
		if err := reg.Register(c); err != nil {
			return nil, sitebot.Errorf(sitebot.ECONFLICT, "register collector: %v", err)
		}
	}
	return s, nil
}

// Emit records e.
func (s *EventSink) Emit(_ context.Context, e sitebot.Event) {
	s.events.WithLabelValues(string(e.Name)).Inc()
	switch e.Name {
	case sitebot.EventReplyStream:
		s.replies.Observe(e.Duration.Seconds())
	case sitebot.EventHandoffInitiated:
		s.handoffs.WithLabelValues(e.Attrs["reason"]).Inc()
	}
}
