package mock

import (
	"context"
	"iter"

	"github.com/ohmanagement/sitebot"
)

var (
	_ sitebot.Streamer   = (*Streamer)(nil)
	_ sitebot.ChatClient = (*ChatClient)(nil)
)

// Streamer is a mock implementation of sitebot.Streamer.
type Streamer struct {
	StreamFn func(ctx context.Context, prompt *sitebot.Prompt) iter.Seq2[string, error]
}

func (s *Streamer) Stream(ctx context.Context, prompt *sitebot.Prompt) iter.Seq2[string, error] {
	return s.StreamFn(ctx, prompt)
}

// ChatClient is a mock implementation of sitebot.ChatClient.
type ChatClient struct {
	ChatFn func(ctx context.Context, req *sitebot.ChatRequest) iter.Seq2[sitebot.Frame, error]
}

func (c *ChatClient) Chat(ctx context.Context, req *sitebot.ChatRequest) iter.Seq2[sitebot.Frame, error] {
	return c.ChatFn(ctx, req)
}

// Deltas returns a sequence yielding each delta, then err if non-nil.
func Deltas(err error, deltas ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, d := range deltas {
			if !yield(d, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

// Frames returns a sequence yielding each frame, then err if non-nil.
func Frames(err error, frames ...sitebot.Frame) iter.Seq2[sitebot.Frame, error] {
	return func(yield func(sitebot.Frame, error) bool) {
		for _, f := range frames {
			if !yield(f, nil) {
				return
			}
		}
		if err != nil {
			yield(sitebot.Frame{}, err)
		}
	}
}
