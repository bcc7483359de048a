// Package gateway turns chat requests into frame streams or single JSON
// payloads. It holds no per-session state; the client sends its fallback
// count with every request.
package gateway

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ohmanagement/sitebot"
)

// Gateway answers chat requests with a provider stream.
type Gateway struct {
	Streamer          sitebot.Streamer
	Site              sitebot.SiteConfig
	HistoryLimit      int
	FallbackThreshold int
	Logger            *slog.Logger
}

// New creates a Gateway with the default history limit and threshold.
func New(streamer sitebot.Streamer, site sitebot.SiteConfig, logger *slog.Logger) *Gateway {
	return &Gateway{
		Streamer:          streamer,
		Site:              site,
		HistoryLimit:      sitebot.DefaultHistoryLimit,
		FallbackThreshold: sitebot.DefaultFallbackThreshold,
		Logger:            logger,
	}
}

// Open starts an exchange for req.
//
// A request whose fallback count reached the threshold gets an exchange
// carrying only the handoff payload, whatever its message; the provider is
// not called. Otherwise req is validated, the provider stream is opened and
// its first delta awaited, so a failure before any output is returned as an
// error and no frame is produced.
func (g *Gateway) Open(ctx context.Context, req *sitebot.ChatRequest) (*Exchange, error) {
	id := uuid.NewString()
	logger := g.logger().With("request", id)

	if req.FallbackCount >= g.threshold() {
		logger.Info("handoff", "fallback_count", req.FallbackCount)
		payload := sitebot.HandoffPayload(g.Site)
		return &Exchange{ID: id, Handoff: &payload, done: true}, nil
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt := sitebot.NewPrompt(g.Site, req, g.historyLimit())
	next, stop := iter.Pull2(g.Streamer.Stream(ctx, prompt))

	start := time.Now()
	delta, err, ok := next()
	if err != nil {
		stop()
		logger.Error("stream failed", "err", err, "duration", time.Since(start))
		return nil, err
	}

	x := &Exchange{
		ID:     id,
		next:   next,
		stop:   stop,
		site:   g.Site,
		logger: logger,
		start:  start,
	}
	if ok {
		x.pending, x.hasPending = delta, true
	}
	logger.Debug("stream opened", "history", len(prompt.History), "first_delta", time.Since(start))
	return x, nil
}

func (g *Gateway) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return g.Logger
}

func (g *Gateway) threshold() int {
	if g.FallbackThreshold <= 0 {
		return sitebot.DefaultFallbackThreshold
	}
	return g.FallbackThreshold
}

func (g *Gateway) historyLimit() int {
	if g.HistoryLimit <= 0 {
		return sitebot.DefaultHistoryLimit
	}
	return g.HistoryLimit
}

// Exchange is one request's response. Either Handoff is set and no frames
// follow, or Next produces chunk frames ending in a complete or error frame.
type Exchange struct {
	ID      string
	Handoff *sitebot.Payload

	next       func() (string, error, bool)
	stop       func()
	pending    string
	hasPending bool
	full       strings.Builder
	done       bool
	site       sitebot.SiteConfig
	logger     *slog.Logger
	start      time.Time
}

// Next returns the next frame. It returns false once the terminal frame
// has been returned.
func (x *Exchange) Next() (sitebot.Frame, bool) {
	if x.done {
		return sitebot.Frame{}, false
	}

	if x.hasPending {
		x.hasPending = false
		return x.chunk(x.pending), true
	}

	delta, err, ok := x.next()
	switch {
	case err != nil:
		x.finish()
		x.logger.Error("stream interrupted", "err", err, "received", x.full.Len(), "duration", time.Since(x.start))
		return sitebot.Frame{Type: sitebot.FrameError, Message: sitebot.ErrorPayload(x.site).Message}, true
	case !ok:
		x.finish()
		x.logger.Info("stream complete", "bytes", x.full.Len(), "duration", time.Since(x.start))
		return sitebot.Frame{Type: sitebot.FrameComplete, FullResponse: x.full.String()}, true
	default:
		return x.chunk(delta), true
	}
}

// Close releases the provider stream. It is safe to call more than once.
func (x *Exchange) Close() {
	x.finish()
}

func (x *Exchange) chunk(delta string) sitebot.Frame {
	x.full.WriteString(delta)
	return sitebot.Frame{Type: sitebot.FrameChunk, Content: delta}
}

func (x *Exchange) finish() {
	x.done = true
	if x.stop != nil {
		x.stop()
		x.stop = nil
	}
}
