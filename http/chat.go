package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"mime"
	"net/http"

	"github.com/ohmanagement/sitebot"
)

// maxPayloadSize bounds non-streaming chat responses.
const maxPayloadSize = 64 * 1024

// Ensure ChatClient implements sitebot.ChatClient at compile time.
var _ sitebot.ChatClient = (*ChatClient)(nil)

// ChatClient posts chat requests to a gateway endpoint and decodes the
// streamed frames.
type ChatClient struct {
	endpoint string
	client   *http.Client
}

// NewChatClient returns a client for the gateway's chat endpoint. The
// client has no overall timeout since responses are streamed; callers
// bound requests through the context.
func NewChatClient(endpoint string) *ChatClient {
	return &ChatClient{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Chat sends req and yields the response frames in order.
//
// A JSON handoff payload is yielded as one sitebot.FrameHandoff frame. A
// JSON error payload, any other non-OK status or a transport failure is
// yielded as an error and ends the sequence.
func (c *ChatClient) Chat(ctx context.Context, req *sitebot.ChatRequest) iter.Seq2[sitebot.Frame, error] {
	return func(yield func(sitebot.Frame, error) bool) {
		body, err := json.Marshal(req)
		if err != nil {
			yield(sitebot.Frame{}, sitebot.Errorf(sitebot.EINTERNAL, "marshal chat request: %v", err))
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			yield(sitebot.Frame{}, sitebot.Errorf(sitebot.EINVALID, "invalid endpoint %q: %v", c.endpoint, err))
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			yield(sitebot.Frame{}, sitebot.Errorf(sitebot.EUNAVAILABLE, "chat request: %v", err))
			return
		}
		defer resp.Body.Close()

		mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if resp.StatusCode == http.StatusOK && mediaType == "text/event-stream" {
			for f, err := range sitebot.ReadFrames(resp.Body) {
				if !yield(f, err) || err != nil {
					return
				}
			}
			return
		}

		var p sitebot.Payload
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadSize)).Decode(&p); err != nil {
			if resp.StatusCode != http.StatusOK {
				yield(sitebot.Frame{}, sitebot.Errorf(sitebot.EUPSTREAM, "chat: HTTP %d", resp.StatusCode))
				return
			}
			yield(sitebot.Frame{}, sitebot.Errorf(sitebot.EPARSE, "decode chat payload: %v", err))
			return
		}

		if resp.StatusCode == http.StatusOK && p.Type == sitebot.PayloadHandoff {
			yield(sitebot.Frame{Type: sitebot.FrameHandoff, Message: p.Message}, nil)
			return
		}
		yield(sitebot.Frame{}, sitebot.Errorf(sitebot.EUPSTREAM, "chat: HTTP %d: %s", resp.StatusCode, p.Type))
	}
}
