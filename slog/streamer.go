package slog

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/ohmanagement/sitebot"
)

// Ensure LoggingStreamer implements sitebot.Streamer.
var _ sitebot.Streamer = (*LoggingStreamer)(nil)

// LoggingStreamer wraps a Streamer and logs each stream once it ends.
type LoggingStreamer struct {
	next   sitebot.Streamer
	logger *slog.Logger
}

// NewLoggingStreamer creates a new LoggingStreamer.
func NewLoggingStreamer(next sitebot.Streamer, logger *slog.Logger) *LoggingStreamer {
	return &LoggingStreamer{next: next, logger: logger}
}

// Stream delegates to the wrapped streamer. The log entry records the
// delta count, bytes and time to first delta.
func (s *LoggingStreamer) Stream(ctx context.Context, prompt *sitebot.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var (
			deltas, size int
			first        time.Duration
			err          error
		)
		begin := time.Now()
		defer func() {
			s.logger.Info("stream",
				"history", len(prompt.History),
				"deltas", deltas,
				"bytes", size,
				"first_delta", first,
				"duration", time.Since(begin),
				"err", err,
			)
		}()

		for delta, e := range s.next.Stream(ctx, prompt) {
			if e != nil {
				err = e
			} else {
				if deltas == 0 {
					first = time.Since(begin)
				}
				deltas++
				size += len(delta)
			}
			if !yield(delta, e) {
				return
			}
		}
	}
}
