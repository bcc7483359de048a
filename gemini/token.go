// Package gemini provides Google Gemini implementations of sitebot.Streamer
// and sitebot.TokenCounter.
package gemini

import (
	"context"
	"strings"

	"github.com/ohmanagement/sitebot"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ sitebot.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts chunk tokens with the local Gemini tokenizer. No API
// key is needed; the tokenizer model is downloaded once and cached.
type TokenCounter struct {
	model string
	tok   *tokenizer.LocalTokenizer
}

// NewTokenCounter loads the tokenizer for model. An empty model selects
// DefaultModel. Returns EUNAVAILABLE if the tokenizer cannot be loaded.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "gemini tokenizer for %s: %v", model, err)
	}
	return &TokenCounter{model: model, tok: tok}, nil
}

// Model returns the model whose tokenizer is used.
func (tc *TokenCounter) Model() string {
	return tc.model
}

// CountTokens returns the token count of text sent as one user turn.
// Blank text counts as zero.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, nil)
	if err != nil {
		return 0, sitebot.Errorf(sitebot.EINTERNAL, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
