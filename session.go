package sitebot

import "context"

// Session store keys.
const (
	SessionHistoryKey  = "chat_history_v1"
	SessionFallbackKey = "fallback_count_v1"
)

// SessionStore persists string entries scoped to one client session.
type SessionStore interface {
	// Get returns the value stored under key. The boolean is false when the
	// key has no value.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Clear removes every entry of the session.
	Clear(ctx context.Context) error
}
