// Package widget implements the chat client: it keeps the session, calls
// the gateway and falls back to canned replies or a handoff to the team.
package widget

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/session"
)

// ReplyKind tells how a reply was produced.
type ReplyKind string

// ReplyKind constants.
const (
	ReplyStream  ReplyKind = "stream"
	ReplyCanned  ReplyKind = "canned"
	ReplyHandoff ReplyKind = "handoff"
)

// Handoff reasons reported with EventHandoffInitiated.
const (
	reasonMaxAttempts = "max_attempts_reached"
	reasonServer      = "server_threshold"
)

// Reply is the bot's answer to one message.
type Reply struct {
	Kind    ReplyKind
	Text    string
	Actions []sitebot.CallToAction
}

// Widget is one visitor's chat session.
type Widget struct {
	ID        string
	Client    sitebot.ChatClient
	Session   *session.Manager
	Site      sitebot.SiteConfig
	Events    sitebot.EventSink
	Threshold int
	Logger    *slog.Logger
	Now       func() time.Time

	busy atomic.Bool
}

// New creates a Widget with a fresh session id. A nil sink drops events.
func New(client sitebot.ChatClient, sessions *session.Manager, site sitebot.SiteConfig, events sitebot.EventSink, logger *slog.Logger) *Widget {
	if events == nil {
		events = sitebot.NopEventSink{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Widget{
		ID:        uuid.NewString(),
		Client:    client,
		Session:   sessions,
		Site:      site,
		Events:    events,
		Threshold: sitebot.DefaultFallbackThreshold,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Open returns the conversation so far. An empty conversation starts with
// the configured welcome message.
func (w *Widget) Open(ctx context.Context) []sitebot.Turn {
	history := w.Session.Load(ctx)
	if len(history) == 0 && w.Site.Welcome != "" {
		w.Session.Append(ctx, w.turn(sitebot.RoleBot, w.Site.Welcome))
		history = w.Session.Load(ctx)
	}
	w.emit(ctx, sitebot.EventBotOpen, 0, nil)
	return history
}

// QuickReplies returns the suggested first messages.
func (w *Widget) QuickReplies() []string {
	return w.Site.QuickReplies
}

// Send sends message and returns the reply. Streamed text is passed to
// onDelta as it arrives; onDelta may be nil.
//
// Every failure increments the session's fallback count once. When the
// count reaches the threshold the reply is a handoff to the team;
// otherwise it is a canned reply. Send returns ECONFLICT while another
// Send is in flight and EINVALID for a blank message.
func (w *Widget) Send(ctx context.Context, message string, onDelta func(string)) (*Reply, error) {
	return w.send(ctx, message, false, onDelta)
}

// SendQuickReply is Send for a message picked from QuickReplies.
func (w *Widget) SendQuickReply(ctx context.Context, message string, onDelta func(string)) (*Reply, error) {
	return w.send(ctx, message, true, onDelta)
}

// ClickCTA records that the visitor followed action.
func (w *Widget) ClickCTA(ctx context.Context, action sitebot.CallToAction) {
	w.emit(ctx, sitebot.EventCTAClick, 0, map[string]string{
		"label":           action.Label,
		"kind":            action.Kind,
		"destination_url": action.URL,
	})
}

func (w *Widget) send(ctx context.Context, message string, quick bool, onDelta func(string)) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, sitebot.Errorf(sitebot.EINVALID, "message required")
	}
	if !w.busy.CompareAndSwap(false, true) {
		return nil, sitebot.Errorf(sitebot.ECONFLICT, "a message is already being answered")
	}
	defer w.busy.Store(false)

	w.emit(ctx, sitebot.EventMessageSent, 0, map[string]string{
		"length":      strconv.Itoa(utf8.RuneCountInString(message)),
		"quick_reply": strconv.FormatBool(quick),
	})

	req := &sitebot.ChatRequest{
		Message:       message,
		History:       sitebot.Tail(sitebot.HistoryFromTurns(w.Session.Load(ctx)), sitebot.DefaultHistoryLimit),
		FallbackCount: w.Session.FallbackCount(ctx),
	}
	w.Session.Append(ctx, w.turn(sitebot.RoleUser, message))

	start := w.Now()
	reply, err := w.exchange(ctx, req, onDelta)
	if err != nil {
		w.Logger.Warn("chat failed", "session", w.ID, "err", err)
		reply = w.fail(ctx, message)
	} else if reply.Kind == ReplyStream {
		w.Session.ResetFallback(ctx)
		w.emit(ctx, sitebot.EventReplyStream, w.Now().Sub(start), map[string]string{
			"fallback_count": "0",
		})
	}

	w.Session.Append(ctx, w.turn(sitebot.RoleBot, reply.Text))
	return reply, nil
}

// exchange performs one gateway round trip. Any outcome other than a
// complete frame or a handoff is returned as an error.
func (w *Widget) exchange(ctx context.Context, req *sitebot.ChatRequest, onDelta func(string)) (*Reply, error) {
	var sb strings.Builder
	for f, err := range w.Client.Chat(ctx, req) {
		if err != nil {
			return nil, err
		}
		switch f.Type {
		case sitebot.FrameChunk:
			sb.WriteString(f.Content)
			if onDelta != nil && f.Content != "" {
				onDelta(f.Content)
			}
		case sitebot.FrameComplete:
			text := f.FullResponse
			if text == "" {
				text = sb.String()
			}
			return &Reply{Kind: ReplyStream, Text: text}, nil
		case sitebot.FrameHandoff:
			w.emit(ctx, sitebot.EventHandoffInitiated, 0, map[string]string{
				"reason":   reasonServer,
				"attempts": strconv.Itoa(req.FallbackCount),
			})
			return w.handoff(f.Message), nil
		case sitebot.FrameError:
			return nil, sitebot.Errorf(sitebot.EUPSTREAM, "gateway error frame")
		}
	}
	return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "stream ended without completion")
}

// fail counts a failure and picks the fallback reply.
func (w *Widget) fail(ctx context.Context, message string) *Reply {
	n := w.Session.IncrementFallback(ctx)
	if n >= w.threshold() {
		w.emit(ctx, sitebot.EventHandoffInitiated, 0, map[string]string{
			"reason":   reasonMaxAttempts,
			"attempts": strconv.Itoa(n),
		})
		return w.handoff("")
	}

	canned := sitebot.MatchCanned(message, w.Site)
	reply := &Reply{Kind: ReplyCanned, Text: canned.Text}
	if canned.Action != nil {
		reply.Actions = []sitebot.CallToAction{*canned.Action}
	}
	return reply
}

func (w *Widget) handoff(message string) *Reply {
	if message == "" {
		message = sitebot.HandoffPayload(w.Site).Message
	}
	return &Reply{
		Kind:    ReplyHandoff,
		Text:    message,
		Actions: sitebot.HandoffActions(w.Site),
	}
}

func (w *Widget) threshold() int {
	if w.Threshold <= 0 {
		return sitebot.DefaultFallbackThreshold
	}
	return w.Threshold
}

func (w *Widget) turn(role sitebot.Role, content string) sitebot.Turn {
	return sitebot.Turn{Role: role, Content: content, Timestamp: w.Now().UTC()}
}

func (w *Widget) emit(ctx context.Context, name sitebot.EventName, d time.Duration, attrs map[string]string) {
	w.Events.Emit(ctx, sitebot.Event{
		Name:      name,
		SessionID: w.ID,
		Time:      w.Now().UTC(),
		Duration:  d,
		Attrs:     attrs,
	})
}
