package sitebot

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"
)

const (
	// DefaultHistoryLimit bounds the turns kept per session and sent per request.
	DefaultHistoryLimit = 10

	// DefaultFallbackThreshold is the failure count at which chat hands off
	// to a human instead of calling the model again.
	DefaultFallbackThreshold = 3
)

// Role identifies the author of a conversation turn.
type Role string

// Role constants.
const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Turn is one message of a conversation, owned by the client session.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryItem is a turn as sent over the wire.
type HistoryItem struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HistoryFromTurns converts turns to wire history items.
func HistoryFromTurns(turns []Turn) []HistoryItem {
	items := make([]HistoryItem, 0, len(turns))
	for _, t := range turns {
		items = append(items, HistoryItem{Role: t.Role, Content: t.Content})
	}
	return items
}

// Tail returns the last n elements of s. A non-positive n returns s unchanged.
func Tail[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// ChatRequest is the body of one chat call. The gateway is stateless: the
// client sends its history and fallback count with every request.
type ChatRequest struct {
	Message       string        `json:"message"`
	History       []HistoryItem `json:"history"`
	FallbackCount int           `json:"fallbackCount"`
}

// Validate returns an error if the request contains invalid fields.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return Errorf(EINVALID, "message required")
	}
	if r.FallbackCount < 0 {
		return Errorf(EINVALID, "fallback count must not be negative")
	}
	return nil
}

// Payload types for non-streaming chat responses.
const (
	PayloadHandoff = "handoff"
	PayloadError   = "error"
)

// Payload is a single JSON response returned instead of a frame stream.
type Payload struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	ContactEmail   string `json:"contactEmail,omitempty"`
	ContactFormURL string `json:"contactFormUrl,omitempty"`
}

// HandoffPayload returns the fixed handoff payload for the site.
func HandoffPayload(site SiteConfig) Payload {
	return Payload{
		Type: PayloadHandoff,
		Message: fmt.Sprintf("Ich verbinde Sie gern mit unserem Team. Sie erreichen uns unter %s oder über unser Kontaktformular.",
			site.ContactEmail),
		ContactEmail:   site.ContactEmail,
		ContactFormURL: site.ContactFormURL,
	}
}

// ErrorPayload returns the safe payload shown for any gateway failure.
func ErrorPayload(site SiteConfig) Payload {
	return Payload{
		Type:         PayloadError,
		Message:      "Entschuldigung, es gab ein technisches Problem. Bitte versuchen Sie es erneut oder kontaktieren Sie uns direkt.",
		ContactEmail: site.ContactEmail,
	}
}

// Prompt is the full model input for one chat call.
type Prompt struct {
	System  string
	History []HistoryItem
	Message string
}

// NewPrompt builds the prompt for req using the site's system instruction
// and the last limit history items.
func NewPrompt(site SiteConfig, req *ChatRequest, limit int) *Prompt {
	return &Prompt{
		System:  SystemInstruction(site),
		History: Tail(req.History, limit),
		Message: req.Message,
	}
}

// SystemInstruction returns the fixed assistant instruction for the site.
func SystemInstruction(site SiteConfig) string {
	return fmt.Sprintf(`Du bist der Website-Assistent von %[1]s.

Stil:
- Antworte professionell und freundlich auf Deutsch (Österreich) und sprich Besucher immer mit "Sie" an.
- Halte Antworten kurz und verwende höchstens ein Emoji.
- Gib keine Code-Blöcke aus und frage keine personenbezogenen Daten ab.

Feste Auskünfte:
- Öffnungszeiten: %[2]s, der Chat ist rund um die Uhr verfügbar.
- Terminbuchung: Verweise auf das Kontaktformular unter %[3]s.
- Support: Verweise auf %[4]s.

Wenn du eine Frage nicht sicher beantworten kannst, biete den Kontakt zum Team an.`,
		site.Name, site.BusinessHours, site.ContactFormURL, site.ContactEmail)
}

// Streamer opens a token stream from a language model provider.
type Streamer interface {
	// Stream returns the model's answer as a sequence of text deltas.
	// The sequence yields a non-nil error at most once and then stops.
	// Breaking out of the sequence releases the upstream stream.
	Stream(ctx context.Context, prompt *Prompt) iter.Seq2[string, error]
}

// ChatClient sends chat requests on behalf of the client session.
type ChatClient interface {
	// Chat sends req and returns the response as frames. A JSON handoff
	// response is yielded as a single FrameHandoff frame; a JSON error
	// response or a non-OK status is yielded as an error.
	Chat(ctx context.Context, req *ChatRequest) iter.Seq2[Frame, error]
}
