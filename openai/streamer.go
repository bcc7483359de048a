// Package openai provides an OpenAI chat completions implementation of
// sitebot.Streamer.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"

	"github.com/ohmanagement/sitebot"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = openai.GPT4oMini

// Ensure Streamer implements sitebot.Streamer at compile time.
var _ sitebot.Streamer = (*Streamer)(nil)

// Streamer implements sitebot.Streamer over the OpenAI streaming API.
type Streamer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// Option configures a Streamer.
type Option func(*Streamer, *openai.ClientConfig)

// WithBaseURL overrides the API base URL, e.g. for a compatible proxy.
func WithBaseURL(url string) Option {
	return func(_ *Streamer, c *openai.ClientConfig) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(_ *Streamer, c *openai.ClientConfig) {
		c.HTTPClient = hc
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(s *Streamer, _ *openai.ClientConfig) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(s *Streamer, _ *openai.ClientConfig) {
		s.temperature = t
	}
}

// WithMaxTokens limits the answer length.
func WithMaxTokens(n int) Option {
	return func(s *Streamer, _ *openai.ClientConfig) {
		s.maxTokens = n
	}
}

// NewStreamer creates a new Streamer authenticating with apiKey.
func NewStreamer(apiKey string, opts ...Option) *Streamer {
	s := &Streamer{model: DefaultModel}
	cfg := openai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(s, &cfg)
	}
	s.client = openai.NewClientWithConfig(cfg)
	return s
}

// Stream opens a streaming completion and yields each content delta. The
// stream ends at the provider's [DONE] marker.
func (s *Streamer) Stream(ctx context.Context, prompt *sitebot.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if prompt == nil || prompt.Message == "" {
			yield("", sitebot.Errorf(sitebot.EINVALID, "message required"))
			return
		}

		stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       s.model,
			Messages:    BuildMessages(prompt),
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
		})
		if err != nil {
			yield("", streamErr(err))
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", streamErr(err))
				return
			}
			for _, choice := range resp.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !yield(choice.Delta.Content, nil) {
					return
				}
			}
		}
	}
}

// streamErr maps client errors onto sitebot error codes. Context errors
// pass through unchanged.
func streamErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return sitebot.Errorf(sitebot.EUPSTREAM, "API returned status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return sitebot.Errorf(sitebot.EUPSTREAM, "API returned status %d", reqErr.HTTPStatusCode)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return sitebot.Errorf(sitebot.EPARSE, "decode stream chunk: %v", err)
	}
	return sitebot.Errorf(sitebot.EUNAVAILABLE, "openai stream: %v", err)
}

// BuildMessages converts the prompt into chat messages: the system
// instruction first, then history, then the current message.
func BuildMessages(prompt *sitebot.Prompt) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(prompt.History)+2)
	if prompt.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}
	for _, item := range prompt.History {
		if item.Content == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if item.Role == sitebot.RoleBot {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: item.Content})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.Message,
	})
}
