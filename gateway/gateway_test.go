package gateway_test

import (
	"bytes"
	"context"
	"iter"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/gateway"
	"github.com/ohmanagement/sitebot/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(streamer sitebot.Streamer) *gateway.Gateway {
	return gateway.New(streamer, sitebot.DefaultConfig().Site, slog.New(slog.DiscardHandler))
}

func drain(x *gateway.Exchange) []sitebot.Frame {
	var frames []sitebot.Frame
	for {
		f, ok := x.Next()
		if !ok {
			return frames
		}
		frames = append(frames, f)
	}
}

func TestGateway_Open(t *testing.T) {
	t.Parallel()

	t.Run("streams chunks then complete with full response", func(t *testing.T) {
		t.Parallel()

		streamer := &mock.Streamer{
			StreamFn: func(context.Context, *sitebot.Prompt) iter.Seq2[string, error] {
				return mock.Deltas(nil, "Gern ", "helfe ", "ich.")
			},
		}

		x, err := newGateway(streamer).Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo"})
		require.NoError(t, err)
		defer x.Close()

		frames := drain(x)

		require.Len(t, frames, 4)
		var sb strings.Builder
		for _, f := range frames[:3] {
			assert.Equal(t, sitebot.FrameChunk, f.Type)
			sb.WriteString(f.Content)
		}
		last := frames[3]
		assert.Equal(t, sitebot.FrameComplete, last.Type)
		assert.Empty(t, last.Content)
		assert.Equal(t, sb.String(), last.FullResponse)
		assert.Equal(t, "Gern helfe ich.", last.FullResponse)
	})

	t.Run("hands off at threshold without calling the provider", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		streamer := &mock.Streamer{
			StreamFn: func(context.Context, *sitebot.Prompt) iter.Seq2[string, error] {
				calls.Add(1)
				return mock.Deltas(nil, "x")
			},
		}
		site := sitebot.DefaultConfig().Site

		x, err := newGateway(streamer).Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo", FallbackCount: 3})

		require.NoError(t, err)
		require.NotNil(t, x.Handoff)
		assert.Equal(t, sitebot.HandoffPayload(site), *x.Handoff)
		assert.Empty(t, drain(x))
		assert.Zero(t, calls.Load())
	})

	t.Run("hands off at threshold even with an empty message", func(t *testing.T) {
		t.Parallel()

		x, err := newGateway(&mock.Streamer{}).Open(context.Background(), &sitebot.ChatRequest{FallbackCount: 3})

		require.NoError(t, err)
		require.NotNil(t, x.Handoff)
		assert.Equal(t, sitebot.PayloadHandoff, x.Handoff.Type)
	})

	t.Run("below threshold calls the provider", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		streamer := &mock.Streamer{
			StreamFn: func(context.Context, *sitebot.Prompt) iter.Seq2[string, error] {
				calls.Add(1)
				return mock.Deltas(nil, "ok")
			},
		}

		x, err := newGateway(streamer).Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo", FallbackCount: 2})

		require.NoError(t, err)
		assert.Nil(t, x.Handoff)
		drain(x)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("returns error when provider fails before first delta", func(t *testing.T) {
		t.Parallel()

		streamer := &mock.Streamer{
			StreamFn: func(context.Context, *sitebot.Prompt) iter.Seq2[string, error] {
				return mock.Deltas(sitebot.Errorf(sitebot.EUPSTREAM, "quota exceeded"))
			},
		}

		x, err := newGateway(streamer).Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo"})

		assert.Nil(t, x)
		assert.Equal(t, sitebot.EUPSTREAM, sitebot.ErrorCode(err))
	})

	t.Run("mid-stream failure ends with an error frame", func(t *testing.T) {
		t.Parallel()

		streamer := &mock.Streamer{
			StreamFn: func(context.Context, *sitebot.Prompt) iter.Seq2[string, error] {
				return mock.Deltas(sitebot.Errorf(sitebot.EUNAVAILABLE, "reset"), "Teil")
			},
		}

		x, err := newGateway(streamer).Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo"})
		require.NoError(t, err)

		frames := drain(x)

		require.Len(t, frames, 2)
		assert.Equal(t, sitebot.FrameChunk, frames[0].Type)
		assert.Equal(t, sitebot.FrameError, frames[1].Type)
		assert.Equal(t, sitebot.ErrorPayload(sitebot.DefaultConfig().Site).Message, frames[1].Message)
	})

	t.Run("empty stream completes immediately", func(t *testing.T) {
		t.Parallel()

		streamer := &mock.Streamer{
			StreamFn: func(context.Context, *sitebot.Prompt) iter.Seq2[string, error] {
				return mock.Deltas(nil)
			},
		}

		x, err := newGateway(streamer).Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo"})
		require.NoError(t, err)

		frames := drain(x)

		require.Len(t, frames, 1)
		assert.Equal(t, sitebot.FrameComplete, frames[0].Type)
	})

	t.Run("rejects empty message", func(t *testing.T) {
		t.Parallel()

		_, err := newGateway(&mock.Streamer{}).Open(context.Background(), &sitebot.ChatRequest{})

		assert.Equal(t, sitebot.EINVALID, sitebot.ErrorCode(err))
	})

	t.Run("prompt carries system instruction and truncated history", func(t *testing.T) {
		t.Parallel()

		var got *sitebot.Prompt
		streamer := &mock.Streamer{
			StreamFn: func(_ context.Context, p *sitebot.Prompt) iter.Seq2[string, error] {
				got = p
				return mock.Deltas(nil, "ok")
			},
		}
		history := make([]sitebot.HistoryItem, 15)
		for i := range history {
			history[i] = sitebot.HistoryItem{Role: sitebot.RoleUser, Content: strings.Repeat("x", i+1)}
		}

		x, err := newGateway(streamer).Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo", History: history})
		require.NoError(t, err)
		x.Close()

		require.NotNil(t, got)
		assert.Equal(t, sitebot.SystemInstruction(sitebot.DefaultConfig().Site), got.System)
		require.Len(t, got.History, 10)
		assert.Equal(t, history[5], got.History[0])
		assert.Equal(t, "Hallo", got.Message)
	})

	t.Run("close releases the provider stream", func(t *testing.T) {
		t.Parallel()

		var released atomic.Bool
		streamer := &mock.Streamer{
			StreamFn: func(context.Context, *sitebot.Prompt) iter.Seq2[string, error] {
				return func(yield func(string, error) bool) {
					defer released.Store(true)
					for {
						if !yield("tick", nil) {
							return
						}
					}
				}
			},
		}

		x, err := newGateway(streamer).Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo"})
		require.NoError(t, err)
		_, ok := x.Next()
		require.True(t, ok)

		x.Close()
		x.Close()

		assert.True(t, released.Load())
		_, ok = x.Next()
		assert.False(t, ok)
	})

	t.Run("logs request id on handoff", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		g := gateway.New(&mock.Streamer{}, sitebot.DefaultConfig().Site, slog.New(slog.NewTextHandler(&buf, nil)))

		x, err := g.Open(context.Background(), &sitebot.ChatRequest{Message: "Hallo", FallbackCount: 5})
		require.NoError(t, err)

		assert.NotEmpty(t, x.ID)
		assert.Contains(t, buf.String(), "request="+x.ID)
		assert.Contains(t, buf.String(), "fallback_count=5")
	})
}
