package gemini

import (
	"context"
	"iter"

	"github.com/ohmanagement/sitebot"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Streamer implements sitebot.Streamer at compile time.
var _ sitebot.Streamer = (*Streamer)(nil)

// Settings holds generation parameters for a Streamer.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// Streamer implements sitebot.Streamer using Google Gemini.
type Streamer struct {
	client   *genai.Client
	settings Settings
}

// NewStreamer creates a new Streamer.
func NewStreamer(client *genai.Client, settings Settings) *Streamer {
	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	return &Streamer{client: client, settings: settings}
}

// Stream yields the text of each streamed response part as it arrives.
func (s *Streamer) Stream(ctx context.Context, prompt *sitebot.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if prompt == nil || prompt.Message == "" {
			yield("", sitebot.Errorf(sitebot.EINVALID, "message required"))
			return
		}
		if s.client == nil {
			yield("", sitebot.Errorf(sitebot.EUNAVAILABLE, "gemini client not configured"))
			return
		}

		stream := s.client.Models.GenerateContentStream(ctx, s.settings.Model,
			BuildContents(prompt), BuildConfig(prompt.System, s.settings))
		for resp, err := range stream {
			if err != nil {
				yield("", sitebot.Errorf(sitebot.EUPSTREAM, "gemini stream: %v", err))
				return
			}
			if resp == nil {
				continue
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(system string, settings Settings) *genai.GenerateContentConfig {
	temp := settings.Temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if settings.MaxTokens > 0 {
		config.MaxOutputTokens = int32(settings.MaxTokens)
	}
	return config
}

// BuildContents converts the prompt history and message into Gemini
// contents. Bot turns map to the model role.
func BuildContents(prompt *sitebot.Prompt) []*genai.Content {
	contents := make([]*genai.Content, 0, len(prompt.History)+1)
	for _, item := range prompt.History {
		if item.Content == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if item.Role == sitebot.RoleBot {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(item.Content, role))
	}
	return append(contents, genai.NewContentFromText(prompt.Message, genai.RoleUser))
}
